// Package mastersystem wires a z80.CPU to the cartridge-console bus
// contract: a paged Sega ROM mapper, mirrored work RAM, and VDP/joypad
// port stubs.
package mastersystem

import "github.com/vintage-silicon/retrocore/bus"

// Bus implements the cartridge-console memory map:
//
//	$0000-$03FF fixed ROM header/vectors (never paged)
//	$0400-$3FFF ROM slot 0 (paged)
//	$4000-$7FFF ROM slot 1 (paged)
//	$8000-$BFFF ROM slot 2 (paged)
//	$C000-$FFFF 8KB RAM, mirrored; writes at $FFFD-$FFFF also page ROM
//
// Unlike the 68000 hosts, a real Master System has no bus-error line: an
// out-of-range access returns a floating $FF rather than faulting, so
// Bus never calls SetFault on its memory side. The Z80's port space
// carries the VDP, joypad, and V-counter instead.
type Bus struct {
	rom      []byte
	ram      [0x2000]byte
	pagedROM [3]int
	romMask  int

	vdp    vdp
	joypad uint8
	vCount uint8

	bus.Fault
}

// NewBus builds a Master System bus from a cartridge ROM image. The
// three paging slots start at banks 0, 1, 2 of the image, the Sega
// mapper's own reset state.
func NewBus(rom []byte) *Bus {
	mask := 0
	if len(rom) > 0 {
		sz := 1
		for sz < len(rom) {
			sz <<= 1
		}
		mask = sz - 1
	}
	return &Bus{
		rom:      rom,
		pagedROM: [3]int{0, 0x4000, 0x8000},
		romMask:  mask,
		joypad:   0xFF,
	}
}

func (b *Bus) Read(addr uint32) uint8 {
	a := addr & 0xFFFF
	switch {
	case a < 0x0400:
		if len(b.rom) == 0 {
			return 0xFF
		}
		return b.rom[int(a)&b.romMask]
	case a < 0x4000:
		return b.readBank(0, int(a)&0x3FFF)
	case a < 0x8000:
		return b.readBank(1, int(a)&0x3FFF)
	case a < 0xC000:
		return b.readBank(2, int(a)&0x3FFF)
	default:
		return b.ram[int(a)&0x1FFF]
	}
}

func (b *Bus) readBank(slot int, offset int) uint8 {
	if len(b.rom) == 0 {
		return 0xFF
	}
	return b.rom[(b.pagedROM[slot]+offset)&b.romMask]
}

func (b *Bus) Write(addr uint32, val uint8) {
	a := addr & 0xFFFF
	if a < 0xC000 {
		return // ROM space: cartridge mapper writes happen at $FFFC-$FFFF only
	}
	b.ram[int(a)&0x1FFF] = val
	if a >= 0xFFFC {
		b.writeMapper(a, val)
	}
}

// writeMapper implements the Sega paging registers. A write selects
// which 16KB ROM bank is visible through the corresponding slot.
func (b *Bus) writeMapper(addr uint32, val uint8) {
	bank := (int(val) * 0x4000) & b.romMask
	switch addr {
	case 0xFFFD:
		b.pagedROM[0] = bank
	case 0xFFFE:
		b.pagedROM[1] = bank
	case 0xFFFF:
		b.pagedROM[2] = bank
	}
}

func (b *Bus) PortIn(port uint16) uint8 {
	switch port & 0xFF {
	case 0x7E:
		return b.vCount
	case 0x7F:
		return 0x00
	case 0xBE:
		return b.vdp.readData()
	case 0xBF:
		return b.vdp.readStatus()
	case 0xDC:
		return b.joypad
	case 0xDD:
		return 0xFF
	default:
		return 0xFF
	}
}

func (b *Bus) PortOut(port uint16, val uint8) {
	switch port & 0xFF {
	case 0x7E, 0x7F:
		// PSG (Programmable Sound Generator): named, unimplemented.
	case 0xBE:
		b.vdp.writeData(val)
	case 0xBF:
		b.vdp.writeControl(val)
	case 0x3F:
		// I/O port control (BIOS/RAM enable): not modeled.
	}
}

// TickScanline advances the VDP's line/frame interrupt state for
// scanline y and reports whether it now wants the Z80's INT line
// asserted.
func (b *Bus) TickScanline(y int) bool {
	b.vdp.tickScanline(y)
	return b.vdp.isInterrupting()
}

// SetJoypad sets the live state of joypad port A ($DC); bit clear means
// pressed, matching the pull-up wiring the original models.
func (b *Bus) SetJoypad(v uint8) { b.joypad = v }
