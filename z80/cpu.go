package z80

import (
	"log"

	"github.com/vintage-silicon/retrocore/bus"
)

// opFunc executes one decoded instruction and returns its T-state cost.
type opFunc func(c *CPU) int

// CPU is the Z80 processor.
type CPU struct {
	reg Registers
	bus bus.Bus

	cycles uint64

	// eiPending is set by EI itself and consumed at the top of the next
	// Step, before the opcode fetch: IFF1/IFF2 become set only once EI
	// has fully retired, never during the EI instruction itself.
	eiPending bool

	// eiDelay defers interrupt *acceptance* by one further instruction
	// once IFF1/IFF2 are set: the instruction right after EI always
	// runs to completion before an interrupt can be taken (Zilog Z80
	// manual, EI).
	eiDelay bool

	nmiPending bool
	intLine    bool
	intVector  uint8 // data bus value latched for IM 2 vectoring
}

// New creates a CPU wired to the given bus. The Z80 has no reset vector
// fetch: PC, I and R start at zero, IFF1/IFF2 clear, IM 0, per a cold
// RESET pulse.
func New(b bus.Bus) *CPU {
	c := &CPU{bus: b}
	c.Reset()
	return c
}

// Reset sets all registers to their power-on state.
func (c *CPU) Reset() {
	c.reg = Registers{}
	c.reg.SP = 0xFFFF
	c.cycles = 0
	c.eiPending = false
	c.eiDelay = false
	c.nmiPending = false
	c.intLine = false
}

// Registers returns a snapshot of the current register state.
func (c *CPU) Registers() Registers { return c.reg }

// SetState sets all programmer-visible registers directly, for testing.
func (c *CPU) SetState(regs Registers) {
	c.reg = regs
	c.eiPending = false
	c.eiDelay = false
}

// Cycles returns the total T-state count since the last reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Halted reports whether the CPU is parked in a HALT instruction,
// executing internal NOPs until an interrupt arrives.
func (c *CPU) Halted() bool { return c.reg.Halted }

// RaiseNMI latches a non-maskable interrupt, serviced at the start of
// the next Step regardless of IFF1.
func (c *CPU) RaiseNMI() { c.nmiPending = true }

// SetInterruptLine sets the level of the maskable interrupt line. The
// Z80's INT is level-triggered: it stays pending until the device
// driving it is satisfied (e.g. by reading the video status port) and
// ClearInterruptLine is called.
func (c *CPU) SetInterruptLine(vector uint8) {
	c.intLine = true
	c.intVector = vector
}

// ClearInterruptLine lowers the maskable interrupt line.
func (c *CPU) ClearInterruptLine() { c.intLine = false }

// Step executes one instruction (or services a pending interrupt) and
// returns the number of T-states consumed.
func (c *CPU) Step() int {
	before := c.cycles

	if c.eiPending {
		// EI retires here, before this instruction's opcode fetch:
		// IFF1/IFF2 were never visibly set during EI's own step.
		c.eiPending = false
		c.reg.IFF1 = true
		c.reg.IFF2 = true
		c.eiDelay = true
	}

	wasEI := c.eiDelay
	c.eiDelay = false

	if c.nmiPending {
		c.nmiPending = false
		c.serviceNMI()
		return int(c.cycles - before)
	}

	if c.intLine && c.reg.IFF1 && !wasEI {
		c.serviceINT()
		return int(c.cycles - before)
	}

	if c.reg.Halted {
		c.cycles += 4
		c.bumpR()
		return int(c.cycles - before)
	}

	opcode := c.fetch()

	switch opcode {
	case 0xCB:
		c.execCB()
	case 0xED:
		c.execED()
	case 0xDD:
		c.execIndexed(&c.reg.IX)
	case 0xFD:
		c.execIndexed(&c.reg.IY)
	default:
		fn := mainTable[opcode]
		if fn == nil {
			log.Printf("[z80] unimplemented opcode %02X at PC=%04X", opcode, c.reg.PC-1)
			c.cycles += 4
			break
		}
		c.cycles += uint64(fn(c))
	}

	return int(c.cycles - before)
}

// serviceNMI pushes PC, disables maskable interrupts (IFF2 preserves the
// pre-NMI IFF1 state for RETN), and jumps to the fixed vector 0x0066.
func (c *CPU) serviceNMI() {
	c.reg.Halted = false
	c.reg.IFF2 = c.reg.IFF1
	c.reg.IFF1 = false
	c.bumpR()
	c.push(c.reg.PC)
	c.reg.PC = 0x0066
	c.cycles += 11
}

// serviceINT services a maskable interrupt per the current mode.
func (c *CPU) serviceINT() {
	c.reg.Halted = false
	c.reg.IFF1 = false
	c.reg.IFF2 = false
	c.bumpR()

	switch c.reg.IM {
	case 0:
		// Mode 0: the interrupting device drives an instruction onto the
		// data bus. This core only models RST nn, the overwhelmingly
		// common case on the target systems' peripherals.
		c.push(c.reg.PC)
		c.reg.PC = uint16(c.intVector & 0x38)
		c.cycles += 13
	case 1:
		c.push(c.reg.PC)
		c.reg.PC = 0x0038
		c.cycles += 13
	case 2:
		vecAddr := uint16(c.reg.I)<<8 | uint16(c.intVector)
		c.push(c.reg.PC)
		c.reg.PC = c.readWord(vecAddr)
		c.cycles += 19
	}
}

// bumpR increments the low 7 bits of R, leaving bit 7 untouched (the
// well-known Z80 "sticky bit 7" quirk: software can set bit 7 via LD R,A
// and it survives instruction fetches).
func (c *CPU) bumpR() {
	c.reg.R = (c.reg.R & 0x80) | ((c.reg.R + 1) & 0x7F)
}

// fetch reads the opcode byte at PC, advances PC, and increments R.
func (c *CPU) fetch() uint8 {
	v := c.bus.Read(uint32(c.reg.PC))
	c.reg.PC++
	c.bumpR()
	return v
}

// fetchNoBump reads a byte at PC without touching R, for prefix and
// displacement bytes that follow the opcode fetch (only the opcode
// fetch itself increments R, not operand bytes).
func (c *CPU) fetchNoBump() uint8 {
	v := c.bus.Read(uint32(c.reg.PC))
	c.reg.PC++
	return v
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetchNoBump()
	hi := c.fetchNoBump()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) readWord(addr uint16) uint16 {
	lo := c.bus.Read(uint32(addr))
	hi := c.bus.Read(uint32(addr + 1))
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) writeWord(addr uint16, v uint16) {
	c.bus.Write(uint32(addr), uint8(v))
	c.bus.Write(uint32(addr+1), uint8(v>>8))
}

func (c *CPU) push(v uint16) {
	c.reg.SP -= 2
	c.writeWord(c.reg.SP, v)
}

func (c *CPU) pop() uint16 {
	v := c.readWord(c.reg.SP)
	c.reg.SP += 2
	return v
}
