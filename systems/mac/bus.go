// Package mac wires an m68k.CPU to a bus modeling the 1-bit-bitmap
// personal computer's memory map: RAM, ROM, an overlay at reset, and a
// VIA stub for reading the overlay/sound switches.
package mac

import "github.com/vintage-silicon/retrocore/bus"

// Memory map: accesses outside the regions below raise a bus error.
//
//	$000000-$3FFFFF RAM
//	$400000-$4FFFFF ROM
//	$580000-$5FFFFF SCSI (stub)
//	$900000-$BFFFFF SCC (stub)
//	$C00000-$DFFFFF IWM (stub)
//	$E80000-$EFFFFF VIA
//	$F00000-$FFFFFF phase/test space (reads 0, writes discarded)
//	everything else bus error
type Bus struct {
	ram []byte
	rom []byte

	overlay bool // ROM mirrored at $0 until the first low-RAM write

	via via

	bus.Fault
}

// NewBus creates a Mac bus with ramSize bytes of RAM, backed by rom.
func NewBus(rom []byte, ramSize int) *Bus {
	return &Bus{
		ram:     make([]byte, ramSize),
		rom:     rom,
		overlay: true,
	}
}

func (b *Bus) Read(addr uint32) uint8 {
	if b.overlay && int(addr) < len(b.rom) {
		return b.rom[addr]
	}

	switch (addr >> 20) & 0xF {
	case 0x0, 0x1, 0x2, 0x3:
		return b.readRAM(addr)
	case 0x4:
		return b.rom[int(addr&0x0FFFFF)%len(b.rom)]
	case 0x5:
		if addr >= 0x580000 {
			return 0x00 // SCSI stub
		}
		b.SetFault(addr)
		return 0xFF
	case 0x6, 0x7, 0x8:
		b.SetFault(addr)
		return 0xFF
	case 0x9, 0xA, 0xB:
		return 0x04 // SCC stub
	case 0xC, 0xD:
		return 0x1F // IWM stub
	case 0xE:
		if addr >= 0xE80000 {
			return b.via.read(addr & 0xFFFF)
		}
		b.SetFault(addr)
		return 0xFF
	case 0xF:
		return 0x00 // phase/test space
	default:
		b.SetFault(addr)
		return 0xFF
	}
}

func (b *Bus) Write(addr uint32, val uint8) {
	switch (addr >> 20) & 0xF {
	case 0x0, 0x1, 0x2, 0x3:
		b.writeRAM(addr, val)
		if b.overlay && addr < 0x8000 {
			b.overlay = false
		}
	case 0x4:
		b.SetFault(addr) // writes to ROM fault
	case 0x5:
		if addr < 0x580000 {
			b.SetFault(addr)
		}
	case 0x9, 0xA, 0xB, 0xC, 0xD:
		// SCC/IWM stubs accept and discard writes.
	case 0xE:
		if addr >= 0xE80000 {
			if enable, ok := b.via.write(addr&0xFFFF, val); ok {
				b.overlay = enable
			}
		} else {
			b.SetFault(addr)
		}
	case 0xF:
		// phase/test space, discarded
	default:
		b.SetFault(addr)
	}
}

func (b *Bus) readRAM(addr uint32) uint8 {
	if len(b.ram) == 0 {
		return 0xFF
	}
	return b.ram[int(addr)%len(b.ram)]
}

func (b *Bus) writeRAM(addr uint32, val uint8) {
	if len(b.ram) == 0 {
		return
	}
	b.ram[int(addr)%len(b.ram)] = val
}

func (b *Bus) PortIn(port uint16) uint8    { return 0xFF }
func (b *Bus) PortOut(port uint16, v uint8) {}
