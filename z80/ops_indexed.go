package z80

// execIndexed handles a DD- or FD-prefixed opcode, operating on IX or IY
// in place of HL. The Z80 achieves this by simply substituting the index
// register everywhere the base opcode map references H, L or (HL); undocumented
// opcodes that don't touch HL at all fall through to the unprefixed
// handler with only the extra prefix fetch cost charged (DD NOP, DD LD B,C,
// and so on all still work, just slower).
func (c *CPU) execIndexed(ixy *uint16) {
	opcode := c.fetch()

	if opcode == 0xCB {
		c.execIndexedCB(ixy)
		return
	}

	switch opcode {
	case 0x21: // LD IX,nn
		*ixy = c.fetchWord()
		c.cycles += 14
		return
	case 0x22: // LD (nn),IX
		c.writeWord(c.fetchWord(), *ixy)
		c.cycles += 20
		return
	case 0x2A: // LD IX,(nn)
		*ixy = c.readWord(c.fetchWord())
		c.cycles += 20
		return
	case 0x23: // INC IX
		*ixy++
		c.cycles += 10
		return
	case 0x2B: // DEC IX
		*ixy--
		c.cycles += 10
		return
	case 0x09, 0x19, 0x29, 0x39: // ADD IX,rp (rp=SP substituted, HL slot means IX itself)
		rp := (opcode >> 4) & 3
		var operand uint16
		if rp == 2 {
			operand = *ixy
		} else {
			operand = c.getReg16(rp)
		}
		result, flags := add16Flags(*ixy, operand)
		*ixy = result
		c.reg.F = (c.reg.F & (FlagS | FlagZ | FlagP)) | flags
		c.cycles += 15
		return
	case 0xE1: // POP IX
		*ixy = c.pop()
		c.cycles += 14
		return
	case 0xE5: // PUSH IX
		c.push(*ixy)
		c.cycles += 15
		return
	case 0xE3: // EX (SP),IX
		v := c.readWord(c.reg.SP)
		c.writeWord(c.reg.SP, *ixy)
		*ixy = v
		c.cycles += 23
		return
	case 0xE9: // JP (IX)
		c.reg.PC = *ixy
		c.cycles += 8
		return
	case 0xF9: // LD SP,IX
		c.reg.SP = *ixy
		c.cycles += 10
		return
	case 0x34: // INC (IX+d)
		d := c.fetchNoBump()
		addr := uint32(indexedAddr(*ixy, d))
		v := c.bus.Read(addr) + 1
		c.bus.Write(addr, v)
		c.reg.F = (c.reg.F & FlagC) | incFlags(v)
		c.cycles += 23
		return
	case 0x35: // DEC (IX+d)
		d := c.fetchNoBump()
		addr := uint32(indexedAddr(*ixy, d))
		v := c.bus.Read(addr) - 1
		c.bus.Write(addr, v)
		c.reg.F = (c.reg.F & FlagC) | decFlags(v)
		c.cycles += 23
		return
	case 0x36: // LD (IX+d),n
		d := c.fetchNoBump()
		n := c.fetchNoBump()
		c.bus.Write(uint32(indexedAddr(*ixy, d)), n)
		c.cycles += 19
		return
	}

	// LD r,(IX+d) / LD (IX+d),r / LD r,IXH etc (0x40-0x7F minus 0x76)
	if opcode >= 0x40 && opcode <= 0x7F && opcode != 0x76 {
		dst := (opcode >> 3) & 7
		src := opcode & 7
		if dst == 6 {
			d := c.fetchNoBump()
			c.bus.Write(uint32(indexedAddr(*ixy, d)), c.getReg8X(src, ixy))
			c.cycles += 19
			return
		}
		if src == 6 {
			d := c.fetchNoBump()
			c.setReg8X(dst, ixy, c.bus.Read(uint32(indexedAddr(*ixy, d))))
			c.cycles += 19
			return
		}
		c.setReg8X(dst, ixy, c.getReg8X(src, ixy))
		c.cycles += 8
		return
	}

	// ALU A,(IX+d) / ALU A,IXH etc (0x80-0xBF)
	if opcode >= 0x80 && opcode <= 0xBF {
		op := (opcode >> 3) & 7
		r := opcode & 7
		if r == 6 {
			d := c.fetchNoBump()
			applyALU(c, op, c.bus.Read(uint32(indexedAddr(*ixy, d))))
			c.cycles += 19
			return
		}
		applyALU(c, op, c.getReg8X(r, ixy))
		c.cycles += 8
		return
	}

	// Anything else: fall through to the unprefixed handler (covers the
	// documented-as-undefined DD/FD forms that are equivalent to the
	// unprefixed opcode with an extra 4-cycle prefix fetch).
	fn := mainTable[opcode]
	if fn == nil {
		c.cycles += 8
		return
	}
	c.cycles += 4 + uint64(fn(c))
}

// indexedAddr computes IX+d or IY+d with d as a signed displacement.
func indexedAddr(base uint16, d uint8) uint16 {
	return uint16(int32(base) + int32(int8(d)))
}

// execIndexedCB handles the doubly-prefixed DDCB/FDCB form: displacement
// byte, then a CB-style opcode that always addresses (IX+d)/(IY+d), and
// for non-BIT opcodes additionally copies the result into one of the
// eight plain registers (the well-known undocumented "shadow" copy-back,
// where register field 6 means "(IX+d) only, no copy-back").
func (c *CPU) execIndexedCB(ixy *uint16) {
	d := c.fetchNoBump()
	opcode := c.fetchNoBump()
	addr := uint32(indexedAddr(*ixy, d))
	v := c.bus.Read(addr)
	r := opcode & 7

	switch {
	case opcode < 0x40:
		result := shiftOp(c, opcode>>3, v)
		c.bus.Write(addr, result)
		if r != 6 {
			c.setReg8(r, result)
		}
		c.cycles += 23
	case opcode < 0x80:
		bit := (opcode >> 3) & 7
		// BIT n,(IX+d)/(IY+d) derives the undocumented flags 3/5 from
		// the high byte of the computed address, not the fetched value.
		xy := uint8(addr >> 8)
		flags := (c.reg.F & FlagC) | FlagH | (xy & (Flag3 | Flag5))
		if v&(1<<bit) == 0 {
			flags |= FlagZ | FlagP
		}
		if bit == 7 && v&0x80 != 0 {
			flags |= FlagS
		}
		c.reg.F = flags
		c.cycles += 20
	case opcode < 0xC0:
		bit := (opcode >> 3) & 7
		result := v &^ (1 << bit)
		c.bus.Write(addr, result)
		if r != 6 {
			c.setReg8(r, result)
		}
		c.cycles += 23
	default:
		bit := (opcode >> 3) & 7
		result := v | (1 << bit)
		c.bus.Write(addr, result)
		if r != 6 {
			c.setReg8(r, result)
		}
		c.cycles += 23
	}
}
