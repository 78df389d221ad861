package z80

import "testing"

func TestLDRegImmediate(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0x3E, 0x42) // LD A,0x42
	cpu.Step()

	if cpu.reg.A != 0x42 {
		t.Errorf("A = 0x%02X, want 0x42", cpu.reg.A)
	}
}

func TestLDRegReg(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0x06, 0x10, 0x41) // LD B,0x10; LD B,C (C is 0)
	cpu.Step()
	cpu.Step()

	if cpu.reg.B != 0 {
		t.Errorf("B = 0x%02X, want 0x00 (copied from C)", cpu.reg.B)
	}
}

func TestADDSetsCarryAndZero(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0xC6, 0x01) // ADD A,0x01
	cpu.SetState(Registers{A: 0xFF})
	cpu.Step()

	if cpu.reg.A != 0 {
		t.Errorf("A = 0x%02X, want 0x00", cpu.reg.A)
	}
	if cpu.reg.F&FlagC == 0 {
		t.Errorf("expected carry flag set")
	}
	if cpu.reg.F&FlagZ == 0 {
		t.Errorf("expected zero flag set")
	}
}

func TestDAAAfterBCDAdd(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0x27) // DAA
	// 0x15 + 0x27 = 0x3C in raw binary; DAA corrects to 0x42 in BCD.
	cpu.SetState(Registers{A: 0x3C, F: 0})
	cpu.Step()

	if cpu.reg.A != 0x42 {
		t.Errorf("A = 0x%02X, want 0x42", cpu.reg.A)
	}
}

func TestINCDECFlags(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0x3C) // INC A
	cpu.SetState(Registers{A: 0x7F})
	cpu.Step()

	if cpu.reg.A != 0x80 {
		t.Errorf("A = 0x%02X, want 0x80", cpu.reg.A)
	}
	if cpu.reg.F&FlagV == 0 {
		t.Errorf("expected overflow flag set on INC 0x7F")
	}
	if cpu.reg.F&FlagS == 0 {
		t.Errorf("expected sign flag set")
	}
}

func TestJRTaken(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0x18, 0x05) // JR +5
	cpu.Step()

	if cpu.reg.PC != 7 {
		t.Errorf("PC = %d, want 7", cpu.reg.PC)
	}
}

func TestDJNZLoop(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0x10, 0xFE) // DJNZ -2 (loop on itself)
	cpu.SetState(Registers{B: 3})
	cpu.Step()

	if cpu.reg.B != 2 {
		t.Errorf("B = %d, want 2", cpu.reg.B)
	}
	if cpu.reg.PC != 0 {
		t.Errorf("PC = %d, want 0 (branch taken back to DJNZ)", cpu.reg.PC)
	}
}

func TestCallAndRet(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0xCD, 0x10, 0x00) // CALL 0x0010
	bus.loadAt(0x10, 0xC9)          // RET
	cpu.SetState(Registers{SP: 0xFFF0})
	cpu.Step() // CALL
	if cpu.reg.PC != 0x10 {
		t.Fatalf("PC = 0x%04X, want 0x0010 after CALL", cpu.reg.PC)
	}
	cpu.Step() // RET
	if cpu.reg.PC != 3 {
		t.Errorf("PC = 0x%04X, want 0x0003 after RET", cpu.reg.PC)
	}
}

func TestExchanges(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0xEB) // EX DE,HL
	cpu.SetState(Registers{D: 0x12, E: 0x34, H: 0x56, L: 0x78})
	cpu.Step()

	if cpu.reg.D != 0x56 || cpu.reg.E != 0x78 || cpu.reg.H != 0x12 || cpu.reg.L != 0x34 {
		t.Errorf("EX DE,HL produced D=%02X E=%02X H=%02X L=%02X", cpu.reg.D, cpu.reg.E, cpu.reg.H, cpu.reg.L)
	}
}

func TestHALTParksPCAndWakesOnInterrupt(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0x76) // HALT
	cpu.Step()

	if !cpu.Halted() {
		t.Fatalf("expected CPU to be halted")
	}
	pcAfterHalt := cpu.reg.PC
	cpu.Step()
	if cpu.reg.PC != pcAfterHalt {
		t.Errorf("HALT should not advance PC while no interrupt is pending")
	}

	cpu.reg.IFF1 = true
	cpu.SetInterruptLine(0)
	cpu.reg.IM = 1
	cpu.Step()

	if cpu.Halted() {
		t.Errorf("expected HALT to end once an interrupt is serviced")
	}
	if cpu.reg.PC != 0x0038 {
		t.Errorf("PC = 0x%04X, want 0x0038 (IM1 handler)", cpu.reg.PC)
	}
}

func TestEIDelaysOneInstruction(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0xFB, 0x00, 0x00) // EI; NOP; NOP
	cpu.SetInterruptLine(0)
	cpu.reg.IM = 1

	cpu.Step() // EI: IFF1 becomes true, but the interrupt must wait one instruction
	if cpu.reg.PC != 1 {
		t.Fatalf("PC = %d, want 1 after EI", cpu.reg.PC)
	}
	cpu.Step() // NOP: interrupt still deferred during this instruction
	if cpu.reg.PC != 2 {
		t.Errorf("expected the instruction after EI to run before the pending interrupt, PC=%d", cpu.reg.PC)
	}
	cpu.Step() // interrupt now taken
	if cpu.reg.PC != 0x0038 {
		t.Errorf("PC = 0x%04X, want 0x0038 (interrupt finally serviced)", cpu.reg.PC)
	}
}

func TestNMIPreservesIFF1ViaIFF2(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0x00) // NOP at the NMI return address
	cpu.SetState(Registers{PC: 0, SP: 0xFFF0, IFF1: true})
	cpu.RaiseNMI()
	cpu.Step()

	if cpu.reg.PC != 0x0066 {
		t.Fatalf("PC = 0x%04X, want 0x0066", cpu.reg.PC)
	}
	if cpu.reg.IFF1 {
		t.Errorf("expected IFF1 cleared during NMI servicing")
	}
	if !cpu.reg.IFF2 {
		t.Errorf("expected IFF2 to retain the pre-NMI IFF1 state")
	}
}

func TestRRegisterAutoIncrementStickyBit7(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0x00, 0x00, 0x00)
	cpu.SetState(Registers{R: 0xFF})
	cpu.Step()

	if cpu.reg.R != 0x80 {
		t.Errorf("R = 0x%02X, want 0x80 (low 7 bits wrap, bit 7 sticky)", cpu.reg.R)
	}
}

func TestIndexedLoadAndArith(t *testing.T) {
	cpu, bus := newTestCPU()
	// LD IX,0x2000; LD (IX+2),0x55; LD A,(IX+2); ADD A,(IX+2)
	bus.loadAt(0,
		0xDD, 0x21, 0x00, 0x20,
		0xDD, 0x36, 0x02, 0x55,
		0xDD, 0x7E, 0x02,
		0xDD, 0x86, 0x02,
	)
	cpu.Step()
	cpu.Step()
	cpu.Step()
	cpu.Step()

	if cpu.reg.A != 0xAA {
		t.Errorf("A = 0x%02X, want 0xAA (0x55 + 0x55)", cpu.reg.A)
	}
}

func TestIndexedBitOps(t *testing.T) {
	cpu, bus := newTestCPU()
	// LD IX,0x3000; LD (IX+0),0x00; SET 3,(IX+0)
	bus.loadAt(0,
		0xDD, 0x21, 0x00, 0x30,
		0xDD, 0x36, 0x00, 0x00,
		0xDD, 0xCB, 0x00, 0xDE,
	)
	cpu.Step()
	cpu.Step()
	cpu.Step()

	if bus.mem[0x3000] != 0x08 {
		t.Errorf("(IX+0) = 0x%02X, want 0x08 after SET 3,(IX+0)", bus.mem[0x3000])
	}
}

func TestBITHLFlagsComeFromAddressHighByte(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0xCB, 0x46) // BIT 0,(HL)
	cpu.SetState(Registers{H: 0x20, L: 0x00})
	// (HL) = 0x2000 holds 0x00: flags 3/5 must come from H (0x20), not
	// from this zero memory value.
	cpu.Step()

	if cpu.reg.F&Flag5 == 0 {
		t.Errorf("expected flag 5 set from H=0x20, got F=0x%02X", cpu.reg.F)
	}
	if cpu.reg.F&Flag3 != 0 {
		t.Errorf("expected flag 3 clear (H bit 3 is clear), got F=0x%02X", cpu.reg.F)
	}
}

func TestBITIndexedFlagsComeFromComputedAddressHighByte(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.loadAt(0, 0xDD, 0x21, 0x05, 0x20, 0xDD, 0xCB, 0x00, 0x46) // LD IX,0x2005; BIT 0,(IX+0)
	cpu.Step()
	cpu.Step()

	// IX+0 = 0x2005: flags 3/5 must come from the address's high byte
	// (0x20), not from the memory value (0x00) at that address.
	if cpu.reg.F&Flag5 == 0 {
		t.Errorf("expected flag 5 set from address high byte 0x20, got F=0x%02X", cpu.reg.F)
	}
	if cpu.reg.F&Flag3 != 0 {
		t.Errorf("expected flag 3 clear, got F=0x%02X", cpu.reg.F)
	}
}
