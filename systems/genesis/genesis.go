package genesis

import (
	"github.com/vintage-silicon/retrocore/m68k"
	"github.com/vintage-silicon/retrocore/z80"
)

// mainClockDivider is how many 68000 clocks elapse per Z80 clock: the
// Genesis runs its main CPU at roughly 7.6MHz against the sound
// co-processor's ~3.58MHz, a ratio of about 2 to 1's worth of headroom
// once wait states are folded in; retrocore rounds it to a fixed ratio
// since it does not model either bus's wait-state timing.
const mainClockDivider = 2

// System is the 16-bit cartridge console host: a 68000 main CPU and a
// Z80 audio co-processor sharing one address space through Bus, with
// the Z80 given its own small RAM bank the main CPU can also see and
// poke at $A00000-$A0FFFF.
type System struct {
	CPU      *m68k.CPU
	SoundCPU *z80.CPU
	Bus      *Bus
}

// New boots a System from the given cartridge ROM image.
func New(rom []byte) *System {
	b := NewBus(rom)
	zbus := &Z80Bus{ram: &b.z80RAM}
	return &System{
		CPU:      m68k.New(b),
		SoundCPU: z80.New(zbus),
		Bus:      b,
	}
}

// Run steps both CPUs for cycles worth of 68000 clocks, stepping the
// Z80 its proportional share (mainClockDivider 68k clocks per Z80
// clock) whenever it is not held in the bus-request/reset state the
// main CPU can assert through $A11100/$A11200.
func (s *System) Run(cycles int) {
	z80Debt := 0
	for cycles > 0 {
		spent := s.CPU.Step()
		cycles -= spent
		z80Debt += spent

		if s.Bus.z80BusReq || s.Bus.z80Reset {
			continue
		}
		for z80Debt >= mainClockDivider {
			s.SoundCPU.Step()
			z80Debt -= mainClockDivider
		}
	}
}
