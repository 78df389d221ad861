package mastersystem

import "github.com/vintage-silicon/retrocore/z80"

// System is a cartridge-based 8-bit console host: a Z80 driven by Bus,
// with a per-scanline VDP tick that raises the maskable interrupt line
// when the VDP wants servicing and drops it once the VDP's flags are
// read and cleared.
type System struct {
	CPU *z80.CPU
	Bus *Bus

	scanline int
}

// New boots a System from the given cartridge ROM image.
func New(rom []byte) *System {
	b := NewBus(rom)
	return &System{
		CPU: z80.New(b),
		Bus: b,
	}
}

// Step runs one Z80 instruction and returns its cycle cost.
func (s *System) Step() int {
	return s.CPU.Step()
}

// RunFrame steps the CPU for one 262-scanline NTSC frame's worth of
// cycles (228 Z80 T-states per line), ticking
// the VDP's line/frame interrupt state once per scanline.
func (s *System) RunFrame() {
	const cyclesPerLine = 228
	for s.scanline = 0; s.scanline < 262; s.scanline++ {
		budget := cyclesPerLine
		for budget > 0 {
			budget -= s.Step()
		}
		if s.Bus.TickScanline(s.scanline) {
			s.CPU.SetInterruptLine(0)
		} else {
			s.CPU.ClearInterruptLine()
		}
	}
}
