// Package m68k implements a Motorola 68000 CPU emulator.
//
// The MC68000 is a 32-bit internal / 16-bit external CISC processor with:
//   - Eight 32-bit data registers (D0-D7)
//   - Eight 32-bit address registers (A0-A7), where A7 is the stack pointer
//   - A 32-bit program counter (24-bit external address bus)
//   - A 16-bit status register (system byte + condition code register)
//   - Dual stack pointers (USP for user mode, SSP for supervisor mode)
package m68k

import (
	"log"

	"github.com/vintage-silicon/retrocore/bus"
)

// Registers holds the programmer-visible state of the MC68000.
type Registers struct {
	D   [8]uint32 // Data registers
	A   [8]uint32 // Address registers (A7 is active stack pointer)
	PC  uint32    // Program counter
	SR  uint16    // Status register
	USP uint32    // User stack pointer (shadowed)
	SSP uint32    // Supervisor stack pointer (shadowed)
	IR  uint16    // Instruction register (first word of executing instruction)
}

// CPU is the MC68000 processor.
type CPU struct {
	reg    Registers
	bus    bus.Bus
	cycles uint64

	// The instruction register holds the first word of the currently
	// executing instruction, latched at fetch time.
	ir uint16

	stopped bool   // Set by STOP, cleared by interrupt
	halted  bool   // Set by double bus fault
	prevPC  uint32 // PC of the previous instruction (for diagnostics)

	// processingException guards against re-entering exception
	// processing for a fault raised while already servicing one
	// (a double bus fault), which halts the CPU per hardware.
	processingException bool

	// Interrupt state
	pendingIPL uint8  // Pending interrupt priority level (1-7, 0=none)
	pendingVec *uint8 // Pending interrupt vector (nil = auto-vector)
}

// New creates a CPU wired to the given bus and performs a cold reset,
// reading the initial SSP from address 0 and PC from address 4 (§6.2).
func New(b bus.Bus) *CPU {
	c := &CPU{bus: b}
	c.ResetWithBus()
	return c
}

// Reset clears all registers to their defined power-on values without
// touching the bus (spec §4.1 reset()). Supervisor mode, mask 7.
func (c *CPU) Reset() {
	c.reg = Registers{SR: 0x2700}
	c.stopped = false
	c.halted = false
	c.cycles = 0
	c.pendingIPL = 0
	c.pendingVec = nil
}

// ResetWithBus performs a cold reset including reading the reset vector:
// SSP from address 0x000000 and PC from address 0x000004 (§3.4, §6.2).
func (c *CPU) ResetWithBus() {
	c.Reset()
	ssp := bus.ReadLongBE(c.bus, 0)
	c.reg.A[7] = ssp
	c.reg.SSP = ssp
	c.reg.PC = bus.ReadLongBE(c.bus, 4)
}

// Halted returns true if the CPU is halted due to a double bus fault.
func (c *CPU) Halted() bool {
	return c.halted
}

// Stopped returns true if the CPU is waiting for an interrupt (STOP).
func (c *CPU) Stopped() bool {
	return c.stopped
}

// PC reports the address of the next instruction to be fetched.
func (c *CPU) PC() uint32 {
	return c.reg.PC
}

// Step executes a single instruction and returns the number of cycles
// consumed, or services a pending interrupt if one just became due. A
// halted CPU returns a small fixed count without touching the bus; a
// stopped CPU returns a small fixed count without advancing PC.
func (c *CPU) Step() int {
	if c.halted {
		return 4
	}

	before := c.cycles

	pending := c.pendingIPL
	c.checkInterrupt()
	if pending != 0 && c.pendingIPL == 0 {
		return int(c.cycles - before)
	}

	if c.stopped {
		c.cycles += 4
		return int(c.cycles - before)
	}

	// Instruction fetch from an odd PC is an address error.
	if c.reg.PC&1 != 0 {
		c.addressError(c.reg.PC, false)
		return int(c.cycles - before)
	}

	c.prevPC = c.reg.PC
	c.ir = c.fetchPC()
	c.reg.IR = c.ir

	handler := opcodeTable[c.ir]
	if handler == nil {
		switch c.ir >> 12 {
		case 0xA:
			c.exception(vecLineA)
		case 0xF:
			c.exception(vecLineF)
		default:
			c.exception(vecIllegalInstruction)
		}
	} else {
		handler(c)
	}

	// Post-instruction odd-PC check: catch branches/jumps to odd
	// addresses. On real hardware the prefetch pipeline would trigger
	// this during the instruction; prefetch is not modeled, so it is
	// checked here instead.
	if !c.halted && c.reg.PC&1 != 0 {
		c.addressError(c.reg.PC, false)
	}

	return int(c.cycles - before)
}

// Cycles returns the total cycle count since the last reset.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Registers returns a snapshot of the current register state.
func (c *CPU) Registers() Registers {
	return c.reg
}

// TriggerInterrupt queues an interrupt at the given priority level (0-7).
// 0 means no interrupt; 7 is non-maskable. A higher level replaces a
// lower pending level (§6.3).
func (c *CPU) TriggerInterrupt(level uint8) {
	if level > 0 && level > c.pendingIPL {
		c.pendingIPL = level
		c.pendingVec = nil
	}
}

// TriggerVectoredInterrupt is like TriggerInterrupt but supplies an
// explicit vector number instead of relying on autovectoring.
func (c *CPU) TriggerVectoredInterrupt(level, vector uint8) {
	if level > 0 && level > c.pendingIPL {
		c.pendingIPL = level
		v := vector
		c.pendingVec = &v
	}
}

// readBus reads from the bus with 24-bit address masking. Word and long
// accesses to odd addresses raise an address error (vector 3). Any fault
// latched by the bus itself is consumed as a bus error (vector 2) after
// the access completes.
func (c *CPU) readBus(sz Size, addr uint32) uint32 {
	if c.halted {
		return 0
	}
	addr &= 0xFFFFFF
	if sz != Byte && addr&1 != 0 {
		c.addressError(addr, false)
		return 0
	}

	var v uint32
	switch sz {
	case Byte:
		v = uint32(c.bus.Read(addr))
	case Word:
		v = uint32(bus.ReadWordBE(c.bus, addr))
	case Long:
		v = bus.ReadLongBE(c.bus, addr)
	}
	c.checkBusError(addr)
	return v
}

// writeBus writes to the bus with 24-bit address masking. Word and long
// accesses to odd addresses raise an address error (vector 3).
func (c *CPU) writeBus(sz Size, addr uint32, val uint32) {
	if c.halted {
		return
	}
	addr &= 0xFFFFFF
	if sz != Byte && addr&1 != 0 {
		c.addressError(addr, true)
		return
	}
	val &= sz.Mask()

	switch sz {
	case Byte:
		c.bus.Write(addr, uint8(val))
	case Word:
		bus.WriteWordBE(c.bus, addr, uint16(val))
	case Long:
		bus.WriteLongBE(c.bus, addr, val)
	}
	c.checkBusError(addr)
}

// checkBusError consumes and acknowledges a fault the bus itself latched
// during the access just performed (§4.1, §6.1), vectoring through the
// group-0 bus-error frame. A fault raised while already processing an
// exception is a double bus fault: the CPU halts.
func (c *CPU) checkBusError(addr uint32) {
	faultAddr, ok := c.bus.BusError()
	if !ok {
		return
	}
	c.bus.AckBusError()
	if c.processingException {
		log.Printf("[m68k] double bus fault at PC=%06x addr=%06x", c.reg.PC, faultAddr)
		c.halted = true
		return
	}
	log.Printf("[m68k] bus error: addr=%06x PC=%06x prevPC=%06x IR=%04x", faultAddr, c.reg.PC, c.prevPC, c.ir)
	c.exceptionGroup0(vecBusError, c.prevPC, faultAddr)
}

// addressError raises vector 3 for a misaligned word/long access or an
// odd-PC instruction fetch (§4.5, §7).
func (c *CPU) addressError(addr uint32, write bool) {
	if c.processingException {
		log.Printf("[m68k] double bus fault (address error) at PC=%06x addr=%06x", c.reg.PC, addr)
		c.halted = true
		return
	}
	log.Printf("[m68k] address error: addr=%06x write=%v PC=%06x prevPC=%06x IR=%04x", addr, write, c.reg.PC, c.prevPC, c.ir)
	c.exceptionGroup0(vecAddressError, c.prevPC, addr)
}

// fetchPC reads a 16-bit word at the current PC and advances PC by 2.
func (c *CPU) fetchPC() uint16 {
	addr := c.reg.PC
	c.reg.PC += 2
	return uint16(c.readBus(Word, addr))
}

// fetchPCLong reads a 32-bit long at the current PC and advances PC by 4.
func (c *CPU) fetchPCLong() uint32 {
	hi := c.fetchPC()
	lo := c.fetchPC()
	return uint32(hi)<<16 | uint32(lo)
}

// pushWord pushes a 16-bit word onto the active stack (A7).
func (c *CPU) pushWord(val uint16) {
	c.reg.A[7] -= 2
	c.writeBus(Word, c.reg.A[7], uint32(val))
}

// pushLong pushes a 32-bit long onto the active stack (A7).
func (c *CPU) pushLong(val uint32) {
	c.reg.A[7] -= 4
	c.writeBus(Long, c.reg.A[7], val)
}

// popWord pops a 16-bit word from the active stack (A7).
func (c *CPU) popWord() uint16 {
	val := c.readBus(Word, c.reg.A[7])
	c.reg.A[7] += 2
	return uint16(val)
}

// popLong pops a 32-bit long from the active stack (A7).
func (c *CPU) popLong() uint32 {
	val := c.readBus(Long, c.reg.A[7])
	c.reg.A[7] += 4
	return val
}

// supervisor returns true if the CPU is in supervisor mode.
func (c *CPU) supervisor() bool {
	return c.reg.SR&flagS != 0
}

// setSR sets the status register, handling stack pointer swaps
// when transitioning between supervisor and user mode (§3.2 swap
// invariant).
func (c *CPU) setSR(sr uint16) {
	oldS := c.reg.SR & flagS
	newS := sr & flagS

	if oldS != 0 && newS == 0 {
		// Leaving supervisor mode: save SSP, restore USP
		c.reg.SSP = c.reg.A[7]
		c.reg.A[7] = c.reg.USP
	} else if oldS == 0 && newS != 0 {
		// Entering supervisor mode: save USP, restore SSP
		c.reg.USP = c.reg.A[7]
		c.reg.A[7] = c.reg.SSP
	}

	// Mask to valid 68000 SR bits: T__S__III___XNZVC (0xA71F)
	c.reg.SR = sr & 0xA71F
}

// setCCR sets only the condition code register (low byte of SR).
// Only bits 0-4 (XNZVC) are valid on the 68000; bits 5-7 are always 0.
func (c *CPU) setCCR(ccr uint8) {
	c.reg.SR = (c.reg.SR & 0xFF00) | uint16(ccr&0x1F)
}

// SetState sets all programmer-visible registers directly without
// performing a hardware reset. This is intended for testing, where
// exact CPU state must be established before executing an instruction.
func (c *CPU) SetState(regs Registers) {
	c.reg.D = regs.D
	c.reg.SR = regs.SR
	c.reg.USP = regs.USP
	c.reg.SSP = regs.SSP
	c.reg.PC = regs.PC
	c.stopped = false
	c.halted = false
	c.cycles = 0
	c.pendingIPL = 0
	c.pendingVec = nil

	// A7 is the active stack pointer: SSP in supervisor mode, USP in user mode
	for i := 0; i < 7; i++ {
		c.reg.A[i] = regs.A[i]
	}
	if regs.SR&flagS != 0 {
		c.reg.A[7] = regs.SSP
	} else {
		c.reg.A[7] = regs.USP
	}
}
