package mac

import "github.com/vintage-silicon/retrocore/m68k"

// System is a minimal 1-bit-bitmap personal computer host: a 68000
// running against the Bus memory map, with no video or sound
// generation of its own (Non-goal: this core stops at the bus
// contract, not a framebuffer renderer).
type System struct {
	CPU *m68k.CPU
	Bus *Bus
}

// New boots a System from the given ROM image with ramSize bytes of RAM.
func New(rom []byte, ramSize int) *System {
	b := NewBus(rom, ramSize)
	return &System{
		CPU: m68k.New(b),
		Bus: b,
	}
}

// Step runs one CPU instruction and returns its cycle cost.
func (s *System) Step() int {
	return s.CPU.Step()
}
