// Package z80 implements a Zilog Z80 CPU emulator.
//
// The Z80 is an 8-bit CISC processor extending the Intel 8080 with a
// second ("shadow") register file, two 16-bit index registers (IX, IY),
// a 16-bit stack pointer and program counter, and a richer interrupt
// model (NMI plus three maskable interrupt modes).
package z80

// Registers holds the programmer-visible state of the Z80.
type Registers struct {
	A, F       uint8
	B, C       uint8
	D, E       uint8
	H, L       uint8
	A2, F2     uint8 // shadow AF'
	B2, C2     uint8 // shadow BC'
	D2, E2     uint8 // shadow DE'
	H2, L2     uint8 // shadow HL'
	IX, IY     uint16
	SP, PC     uint16
	I, R       uint8
	IFF1, IFF2 bool
	IM         uint8 // interrupt mode: 0, 1, or 2
	Halted     bool
}

// Flag bit positions in the F register.
const (
	FlagC uint8 = 0x01 // carry
	FlagN uint8 = 0x02 // subtract
	FlagP uint8 = 0x04 // parity / overflow
	FlagV       = FlagP
	Flag3 uint8 = 0x08 // undocumented, copy of bit 3 of result
	FlagH uint8 = 0x10 // half carry
	Flag5 uint8 = 0x20 // undocumented, copy of bit 5 of result
	FlagZ uint8 = 0x40 // zero
	FlagS uint8 = 0x80 // sign
)

func (r *Registers) bc() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) de() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) hl() uint16 { return uint16(r.H)<<8 | uint16(r.L) }
func (r *Registers) af() uint16 { return uint16(r.A)<<8 | uint16(r.F) }

func (r *Registers) setBC(v uint16) { r.B = uint8(v >> 8); r.C = uint8(v) }
func (r *Registers) setDE(v uint16) { r.D = uint8(v >> 8); r.E = uint8(v) }
func (r *Registers) setHL(v uint16) { r.H = uint8(v >> 8); r.L = uint8(v) }
func (r *Registers) setAF(v uint16) { r.A = uint8(v >> 8); r.F = uint8(v) }

// exx swaps BC/DE/HL with their shadow counterparts.
func (r *Registers) exx() {
	r.B, r.B2 = r.B2, r.B
	r.C, r.C2 = r.C2, r.C
	r.D, r.D2 = r.D2, r.D
	r.E, r.E2 = r.E2, r.E
	r.H, r.H2 = r.H2, r.H
	r.L, r.L2 = r.L2, r.L
}

// exAFAF swaps AF with its shadow AF'.
func (r *Registers) exAFAF() {
	r.A, r.A2 = r.A2, r.A
	r.F, r.F2 = r.F2, r.F
}
