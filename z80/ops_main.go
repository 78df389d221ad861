package z80

// mainTable dispatches the 256 unprefixed opcodes. Populated at package
// init time the way the teacher's m68k opcodeTable is, with small
// per-family register* functions rather than one giant switch.
var mainTable [256]opFunc

func init() {
	registerMainMisc()
	registerMainLoads()
	registerMainIncDec()
	registerMainALU()
	registerMainControl()
}

// --- misc single-byte opcodes ---

func registerMainMisc() {
	mainTable[0x00] = func(c *CPU) int { return 4 } // NOP
	mainTable[0x76] = opHALT
	mainTable[0x07] = opRLCA
	mainTable[0x0F] = opRRCA
	mainTable[0x17] = opRLA
	mainTable[0x1F] = opRRA
	mainTable[0x27] = opDAA
	mainTable[0x2F] = opCPL
	mainTable[0x37] = opSCF
	mainTable[0x3F] = opCCF
	mainTable[0x08] = opEXAFAF
	mainTable[0xD9] = opEXX
	mainTable[0xEB] = opEXDEHL
	mainTable[0xE3] = opEXSPHL
	mainTable[0xF3] = opDI
	mainTable[0xFB] = opEI
	mainTable[0xD3] = opOUTnA
	mainTable[0xDB] = opINAn
}

func opHALT(c *CPU) int {
	c.reg.Halted = true
	c.reg.PC--
	return 4
}

func opRLCA(c *CPU) int {
	carry := c.reg.A >> 7
	c.reg.A = c.reg.A<<1 | carry
	c.reg.F = (c.reg.F & (FlagS | FlagZ | FlagP)) | (c.reg.A & (Flag3 | Flag5)) | carry
	return 4
}

func opRRCA(c *CPU) int {
	carry := c.reg.A & 1
	c.reg.A = c.reg.A>>1 | carry<<7
	c.reg.F = (c.reg.F & (FlagS | FlagZ | FlagP)) | (c.reg.A & (Flag3 | Flag5)) | carry
	return 4
}

func opRLA(c *CPU) int {
	carry := c.reg.A >> 7
	oldCarry := c.reg.F & FlagC
	c.reg.A = c.reg.A<<1 | oldCarry
	c.reg.F = (c.reg.F & (FlagS | FlagZ | FlagP)) | (c.reg.A & (Flag3 | Flag5)) | carry
	return 4
}

func opRRA(c *CPU) int {
	carry := c.reg.A & 1
	oldCarry := c.reg.F & FlagC
	c.reg.A = c.reg.A>>1 | oldCarry<<7
	c.reg.F = (c.reg.F & (FlagS | FlagZ | FlagP)) | (c.reg.A & (Flag3 | Flag5)) | carry
	return 4
}

// opDAA adjusts A after a BCD addition or subtraction, following the
// half-carry/carry/N-flag driven correction table described in the
// Zilog manual.
func opDAA(c *CPU) int {
	a := c.reg.A
	correction := uint8(0)
	carry := c.reg.F&FlagC != 0
	halfCarry := c.reg.F&FlagH != 0
	sub := c.reg.F&FlagN != 0

	if halfCarry || (!sub && a&0x0F > 9) {
		correction |= 0x06
	}
	if carry || (!sub && a > 0x99) {
		correction |= 0x60
		carry = true
	}

	var result uint8
	if sub {
		result = a - correction
	} else {
		result = a + correction
	}

	newH := uint8(0)
	if sub && halfCarry && a&0x0F < 6 {
		newH = FlagH
	} else if !sub && a&0x0F+correction&0x0F > 0x0F {
		newH = FlagH
	}

	c.reg.A = result
	c.reg.F = sz53pTable[result] | newH | (c.reg.F & FlagN)
	if carry {
		c.reg.F |= FlagC
	}
	return 4
}

func opCPL(c *CPU) int {
	c.reg.A = ^c.reg.A
	c.reg.F = (c.reg.F & (FlagS | FlagZ | FlagP | FlagC)) | FlagH | FlagN | (c.reg.A & (Flag3 | Flag5))
	return 4
}

func opSCF(c *CPU) int {
	c.reg.F = (c.reg.F & (FlagS | FlagZ | FlagP)) | FlagC | (c.reg.A & (Flag3 | Flag5))
	return 4
}

func opCCF(c *CPU) int {
	oldC := c.reg.F & FlagC
	c.reg.F = (c.reg.F & (FlagS | FlagZ | FlagP)) | (oldC << 4) | (c.reg.A & (Flag3 | Flag5))
	if oldC == 0 {
		c.reg.F |= FlagC
	}
	return 4
}

func opEXAFAF(c *CPU) int { c.reg.exAFAF(); return 4 }
func opEXX(c *CPU) int    { c.reg.exx(); return 4 }

func opEXDEHL(c *CPU) int {
	c.reg.D, c.reg.H = c.reg.H, c.reg.D
	c.reg.E, c.reg.L = c.reg.L, c.reg.E
	return 4
}

func opEXSPHL(c *CPU) int {
	v := c.readWord(c.reg.SP)
	c.writeWord(c.reg.SP, c.reg.hl())
	c.reg.setHL(v)
	return 19
}

func opDI(c *CPU) int {
	c.reg.IFF1 = false
	c.reg.IFF2 = false
	return 4
}

func opEI(c *CPU) int {
	// IFF1/IFF2 are not set here: they become visible only once this
	// instruction has retired, consumed at the top of the next Step.
	c.eiPending = true
	return 4
}

// Z80 I/O addressing puts the low 8 bits of the port on the lower
// address bus byte and A on the upper byte, the same convention the
// target systems' memory maps (§6) rely on for port decoding.

func opOUTnA(c *CPU) int {
	n := c.fetchNoBump()
	port := uint16(c.reg.A)<<8 | uint16(n)
	c.bus.PortOut(port, c.reg.A)
	return 11
}

func opINAn(c *CPU) int {
	n := c.fetchNoBump()
	port := uint16(c.reg.A)<<8 | uint16(n)
	c.reg.A = c.bus.PortIn(port)
	return 11
}

// --- 8/16-bit loads ---

func registerMainLoads() {
	// LD rp,nn
	for rp := uint8(0); rp < 4; rp++ {
		rp := rp
		mainTable[rp<<4|0x01] = func(c *CPU) int {
			c.setReg16(rp, c.fetchWord())
			return 10
		}
	}

	mainTable[0x02] = func(c *CPU) int { c.bus.Write(uint32(c.reg.bc()), c.reg.A); return 7 }
	mainTable[0x12] = func(c *CPU) int { c.bus.Write(uint32(c.reg.de()), c.reg.A); return 7 }
	mainTable[0x0A] = func(c *CPU) int { c.reg.A = c.bus.Read(uint32(c.reg.bc())); return 7 }
	mainTable[0x1A] = func(c *CPU) int { c.reg.A = c.bus.Read(uint32(c.reg.de())); return 7 }

	mainTable[0x22] = func(c *CPU) int { c.writeWord(c.fetchWord(), c.reg.hl()); return 16 }
	mainTable[0x2A] = func(c *CPU) int { c.reg.setHL(c.readWord(c.fetchWord())); return 16 }
	mainTable[0x32] = func(c *CPU) int { c.bus.Write(uint32(c.fetchWord()), c.reg.A); return 13 }
	mainTable[0x3A] = func(c *CPU) int { c.reg.A = c.bus.Read(uint32(c.fetchWord())); return 13 }

	mainTable[0xF9] = func(c *CPU) int { c.reg.SP = c.reg.hl(); return 6 }

	// LD r,n
	for r := uint8(0); r < 8; r++ {
		r := r
		mainTable[r<<3|0x06] = func(c *CPU) int {
			n := c.fetchNoBump()
			c.setReg8(r, n)
			if r == 6 {
				return 10
			}
			return 7
		}
	}

	// LD r,r' (0x40-0x7F, minus 0x76 which is HALT)
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x40 | dst<<3 | src
			if opcode == 0x76 {
				continue
			}
			dst, src := dst, src
			mainTable[opcode] = func(c *CPU) int {
				c.setReg8(dst, c.getReg8(src))
				if dst == 6 || src == 6 {
					return 7
				}
				return 4
			}
		}
	}

	// PUSH rp2 / POP rp2
	for rp := uint8(0); rp < 4; rp++ {
		rp := rp
		mainTable[0xC1|rp<<4] = func(c *CPU) int { c.setReg16AF(rp, c.pop()); return 10 }
		mainTable[0xC5|rp<<4] = func(c *CPU) int { c.push(c.getReg16AF(rp)); return 11 }
	}
}

// --- INC/DEC ---

func registerMainIncDec() {
	for rp := uint8(0); rp < 4; rp++ {
		rp := rp
		mainTable[rp<<4|0x03] = func(c *CPU) int { c.setReg16(rp, c.getReg16(rp)+1); return 6 }
		mainTable[rp<<4|0x0B] = func(c *CPU) int { c.setReg16(rp, c.getReg16(rp)-1); return 6 }
	}

	for r := uint8(0); r < 8; r++ {
		r := r
		mainTable[r<<3|0x04] = func(c *CPU) int {
			v := c.getReg8(r) + 1
			c.setReg8(r, v)
			c.reg.F = (c.reg.F & FlagC) | incFlags(v)
			if r == 6 {
				return 11
			}
			return 4
		}
		mainTable[r<<3|0x05] = func(c *CPU) int {
			v := c.getReg8(r) - 1
			c.setReg8(r, v)
			c.reg.F = (c.reg.F & FlagC) | decFlags(v)
			if r == 6 {
				return 11
			}
			return 4
		}
	}

	for rp := uint8(0); rp < 4; rp++ {
		rp := rp
		mainTable[rp<<4|0x09] = func(c *CPU) int {
			result, flags := add16Flags(c.reg.hl(), c.getReg16(rp))
			c.reg.setHL(result)
			c.reg.F = (c.reg.F & (FlagS | FlagZ | FlagP)) | flags
			return 11
		}
	}
}

// --- ALU A,r / A,n and RST/CALL/JP/RET ---

func registerMainALU() {
	for op := uint8(0); op < 8; op++ {
		for r := uint8(0); r < 8; r++ {
			op, r := op, r
			opcode := 0x80 | op<<3 | r
			mainTable[opcode] = func(c *CPU) int {
				applyALU(c, op, c.getReg8(r))
				if r == 6 {
					return 7
				}
				return 4
			}
		}
	}

	for op := uint8(0); op < 8; op++ {
		op := op
		mainTable[0xC6|op<<3] = func(c *CPU) int {
			applyALU(c, op, c.fetchNoBump())
			return 7
		}
	}
}

// applyALU performs one of the eight ALU operations (ADD ADC SUB SBC
// AND XOR OR CP) selected by the 3-bit op field shared by the A,r and
// A,n opcode families.
func applyALU(c *CPU, op uint8, operand uint8) {
	switch op {
	case 0: // ADD
		r, f := addFlags(c.reg.A, operand, 0)
		c.reg.A, c.reg.F = r, f
	case 1: // ADC
		r, f := addFlags(c.reg.A, operand, c.reg.F&FlagC)
		c.reg.A, c.reg.F = r, f
	case 2: // SUB
		r, f := subFlags(c.reg.A, operand, 0)
		c.reg.A, c.reg.F = r, f
	case 3: // SBC
		r, f := subFlags(c.reg.A, operand, c.reg.F&FlagC)
		c.reg.A, c.reg.F = r, f
	case 4: // AND
		c.reg.A &= operand
		c.reg.F = sz53pTable[c.reg.A] | FlagH
	case 5: // XOR
		c.reg.A ^= operand
		c.reg.F = sz53pTable[c.reg.A]
	case 6: // OR
		c.reg.A |= operand
		c.reg.F = sz53pTable[c.reg.A]
	case 7: // CP
		c.reg.F = cpFlags(c.reg.A, operand)
	}
}

func registerMainControl() {
	mainTable[0x10] = opDJNZ
	mainTable[0x18] = opJR
	for cc := uint8(0); cc < 4; cc++ {
		cc := cc
		mainTable[0x20|cc<<3] = func(c *CPU) int { return jrCond(c, cc) }
	}

	mainTable[0xC3] = func(c *CPU) int { c.reg.PC = c.fetchWord(); return 10 }
	mainTable[0xE9] = func(c *CPU) int { c.reg.PC = c.reg.hl(); return 4 }

	for cc := uint8(0); cc < 8; cc++ {
		cc := cc
		mainTable[0xC2|cc<<3] = func(c *CPU) int {
			addr := c.fetchWord()
			if c.testCond(cc) {
				c.reg.PC = addr
			}
			return 10
		}
		mainTable[0xC0|cc<<3] = func(c *CPU) int {
			if c.testCond(cc) {
				c.reg.PC = c.pop()
				return 11
			}
			return 5
		}
		mainTable[0xC4|cc<<3] = func(c *CPU) int {
			addr := c.fetchWord()
			if c.testCond(cc) {
				c.push(c.reg.PC)
				c.reg.PC = addr
				return 17
			}
			return 10
		}
	}

	mainTable[0xCD] = func(c *CPU) int {
		addr := c.fetchWord()
		c.push(c.reg.PC)
		c.reg.PC = addr
		return 17
	}
	mainTable[0xC9] = func(c *CPU) int { c.reg.PC = c.pop(); return 10 }

	for n := uint8(0); n < 8; n++ {
		n := n
		mainTable[0xC7|n<<3] = func(c *CPU) int {
			c.push(c.reg.PC)
			c.reg.PC = uint16(n) * 8
			return 11
		}
	}
}

func opDJNZ(c *CPU) int {
	disp := int8(c.fetchNoBump())
	c.reg.B--
	if c.reg.B != 0 {
		c.reg.PC = uint16(int32(c.reg.PC) + int32(disp))
		return 13
	}
	return 8
}

func opJR(c *CPU) int {
	disp := int8(c.fetchNoBump())
	c.reg.PC = uint16(int32(c.reg.PC) + int32(disp))
	return 12
}

func jrCond(c *CPU, cc uint8) int {
	disp := int8(c.fetchNoBump())
	if c.testCond(cc) {
		c.reg.PC = uint16(int32(c.reg.PC) + int32(disp))
		return 12
	}
	return 7
}
