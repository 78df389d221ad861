// Command retrocore is a trace launcher, not a front-end: it loads a ROM
// image into one of the three system hosts and runs it for a fixed
// number of frames, printing the final program counter and cycle count.
// There is no window, no audio, and no interactive controls.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/vintage-silicon/retrocore/systems/genesis"
	"github.com/vintage-silicon/retrocore/systems/mac"
	"github.com/vintage-silicon/retrocore/systems/mastersystem"
)

const framesToRun = 60

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <rom-path> <mac|mastersystem|genesis>\n", os.Args[0])
		os.Exit(1)
	}

	romPath, system := os.Args[1], os.Args[2]
	rom, err := os.ReadFile(romPath)
	if err != nil {
		log.Fatalf("retrocore: reading ROM: %v", err)
	}

	switch system {
	case "mac":
		runMac(rom)
	case "mastersystem":
		runMasterSystem(rom)
	case "genesis":
		runGenesis(rom)
	default:
		log.Fatalf("retrocore: unknown system %q (want mac, mastersystem, or genesis)", system)
	}
}

func runMac(rom []byte) {
	sys := mac.New(rom, 1024*1024)
	var cycles int
	for i := 0; i < framesToRun; i++ {
		for c := 0; c < 1_000_000; {
			c += sys.Step()
		}
		cycles += 1_000_000
	}
	fmt.Printf("mac: PC=0x%08X cycles=%d\n", sys.CPU.Registers().PC, sys.CPU.Cycles())
}

func runMasterSystem(rom []byte) {
	sys := mastersystem.New(rom)
	for i := 0; i < framesToRun; i++ {
		sys.RunFrame()
	}
	fmt.Printf("mastersystem: PC=0x%04X cycles=%d\n", sys.CPU.Registers().PC, sys.CPU.Cycles())
}

func runGenesis(rom []byte) {
	sys := genesis.New(rom)
	const cyclesPerFrame = 128_000 // approx one NTSC frame at the main CPU's clock
	for i := 0; i < framesToRun; i++ {
		sys.Run(cyclesPerFrame)
	}
	fmt.Printf("genesis: main PC=0x%08X cycles=%d, sound PC=0x%04X cycles=%d\n",
		sys.CPU.Registers().PC, sys.CPU.Cycles(), sys.SoundCPU.Registers().PC, sys.SoundCPU.Cycles())
}
