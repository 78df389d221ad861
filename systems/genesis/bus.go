// Package genesis wires a 68000 main CPU and a Z80 audio co-processor
// to a shared bus, the 16-bit cartridge console's dual-processor
// memory map.
package genesis

import "github.com/vintage-silicon/retrocore/bus"

// Bus is the 68000's view of the console: cartridge ROM, work RAM, and
// an 8KB window onto the Z80's own address space so the main CPU can
// poke the sound co-processor's program and bus-request/reset latches.
//
//	$000000-$3FFFFF cartridge ROM
//	$A00000-$A0FFFF Z80 bank (mirrors the Z80's 8KB RAM every 0x2000)
//	$FF0000-$FFFFFF work RAM
//	everything else bus error
type Bus struct {
	rom     []byte
	workRAM [0x10000]byte
	z80RAM  [0x2000]byte

	z80BusReq bool
	z80Reset  bool

	bus.Fault
}

// NewBus builds a Genesis bus from a cartridge ROM image.
func NewBus(rom []byte) *Bus {
	return &Bus{rom: rom}
}

func (b *Bus) Read(addr uint32) uint8 {
	switch {
	case addr < 0x400000:
		if int(addr) < len(b.rom) {
			return b.rom[addr]
		}
		return 0xFF
	case addr >= 0xA00000 && addr <= 0xA0FFFF:
		return b.z80RAM[addr&0x1FFF]
	case addr >= 0xA11100 && addr <= 0xA11101:
		if b.z80BusReq {
			return 0x01
		}
		return 0x00
	case addr >= 0xFF0000:
		return b.workRAM[addr&0xFFFF]
	default:
		b.SetFault(addr)
		return 0xFF
	}
}

func (b *Bus) Write(addr uint32, val uint8) {
	switch {
	case addr < 0x400000:
		b.SetFault(addr) // cartridge ROM is not writable
	case addr >= 0xA00000 && addr <= 0xA0FFFF:
		b.z80RAM[addr&0x1FFF] = val
	case addr >= 0xA11100 && addr <= 0xA11101:
		b.z80BusReq = val&0x01 != 0
	case addr >= 0xA11200 && addr <= 0xA11201:
		b.z80Reset = val&0x01 == 0
	case addr >= 0xFF0000:
		b.workRAM[addr&0xFFFF] = val
	default:
		b.SetFault(addr)
	}
}

// PortIn/PortOut: the 68000 side of the console has no I/O port space
// of its own (controller and expansion ports are memory-mapped, out of
// scope per the bus-contract collaborators named in the spec).
func (b *Bus) PortIn(port uint16) uint8     { return 0xFF }
func (b *Bus) PortOut(port uint16, v uint8) {}

// Z80Bus is the sound co-processor's own view of the console: its 8KB
// RAM mirrored across its full 16-bit address space, with nothing else
// wired in (no YM2612/PSG behind it, the named out-of-scope
// collaborator shared with systems/mastersystem).
type Z80Bus struct {
	ram *[0x2000]byte
}

func (z *Z80Bus) Read(addr uint32) uint8      { return z.ram[addr&0x1FFF] }
func (z *Z80Bus) Write(addr uint32, val uint8) { z.ram[addr&0x1FFF] = val }
func (z *Z80Bus) PortIn(port uint16) uint8     { return 0xFF }
func (z *Z80Bus) PortOut(port uint16, v uint8) {}
func (z *Z80Bus) BusError() (uint32, bool)     { return 0, false }
func (z *Z80Bus) AckBusError()                 {}
