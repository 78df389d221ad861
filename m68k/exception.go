package m68k

import "log"

// MC68000 exception vector numbers.
const (
	vecResetSSP           = 0
	vecResetPC            = 1
	vecBusError           = 2
	vecAddressError       = 3
	vecIllegalInstruction = 4
	vecDivideByZero       = 5
	vecCHK                = 6
	vecTRAPV              = 7
	vecPrivilegeViolation = 8
	vecTrace              = 9
	vecLineA              = 10
	vecLineF              = 11
	vecUninitialized      = 15
	vecSpuriousInterrupt  = 24
	vecAutoVector1        = 25
	vecTrap0              = 32 // TRAP #0 through TRAP #15 = vectors 32-47
)

// exception processes a 6-byte-frame exception: enters supervisor mode,
// pushes the return frame (PC + SR), reads the vector, and jumps to the
// handler (§4.5 steps 1-5). Charges ~34 cycles.
func (c *CPU) exception(vector int) {
	// Log error exceptions (vectors 2-11) for diagnostics
	if vector >= vecBusError && vector <= vecLineF {
		log.Printf("[m68k] exception %d at PC=%06x SR=%04x", vector, c.reg.PC, c.reg.SR)
	}

	c.processingException = true
	defer func() { c.processingException = false }()

	// Determine the PC to push. For group 1 fault exceptions (illegal
	// instruction, privilege violation, Line-A, Line-F), the 68000 pushes
	// the address of the faulting instruction. For all other exceptions
	// (group 2: TRAP, TRAPV, CHK, divide-by-zero; and interrupts/trace),
	// the 68000 pushes the next instruction address (current PC).
	pushPC := c.reg.PC
	switch vector {
	case vecIllegalInstruction, vecPrivilegeViolation, vecLineA, vecLineF:
		pushPC = c.prevPC
	}

	oldSR := c.reg.SR

	// Enter supervisor mode, clear trace
	if c.reg.SR&flagS == 0 {
		c.reg.USP = c.reg.A[7]
		c.reg.A[7] = c.reg.SSP
	}
	c.reg.SR = (c.reg.SR | flagS) & ^flagT

	// Push PC and old SR onto supervisor stack
	c.pushLong(pushPC)
	c.pushWord(oldSR)

	c.vectorTo(vector)
	c.cycles += 34
}

// exceptionGroup0 processes a bus-error or address-error exception: a
// 14-byte frame that additionally carries the instruction register, the
// faulting access address, and a function-code/access-type word (§4.5,
// §9 "Group-0 exception frame"). Charges ~50 cycles.
func (c *CPU) exceptionGroup0(vector int, pushPC uint32, accessAddr uint32) {
	c.processingException = true
	defer func() { c.processingException = false }()

	oldSR := c.reg.SR

	if c.reg.SR&flagS == 0 {
		c.reg.USP = c.reg.A[7]
		c.reg.A[7] = c.reg.SSP
	}
	c.reg.SR = (c.reg.SR | flagS) & ^flagT

	// Function-code/status word: a simplified function code (5 =
	// supervisor data space, 1 = user data space). Real silicon also
	// distinguishes program vs. data space and the read/write direction
	// of the faulting cycle; this core does not model separate
	// program/data address spaces, so only the supervisor/user bit is
	// meaningful here.
	fc := uint16(1)
	if oldSR&flagS != 0 {
		fc = 5
	}

	c.pushWord(fc)
	c.pushLong(accessAddr)
	c.pushWord(c.ir)
	c.pushLong(pushPC)
	c.pushWord(oldSR)

	c.vectorTo(vector)
	c.cycles += 50
}

// vectorTo reads the handler address for vector and jumps PC to it,
// falling back to the uninitialized-interrupt vector, then halting on a
// double fault, if the table entry is itself zero.
func (c *CPU) vectorTo(vector int) {
	addr := c.readBus(Long, uint32(vector)*4)
	if addr == 0 {
		addr = c.readBus(Long, vecUninitialized*4)
		if addr == 0 {
			c.halted = true
			return
		}
	}
	c.reg.PC = addr
}
