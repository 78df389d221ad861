package genesis

import "testing"

func TestCartridgeROMReadThrough(t *testing.T) {
	rom := make([]byte, 0x1000)
	rom[0x10] = 0x42
	b := NewBus(rom)

	if b.Read(0x10) != 0x42 {
		t.Errorf("expected ROM byte to read through at 0x10")
	}
}

func TestCartridgeROMWriteFaults(t *testing.T) {
	b := NewBus(make([]byte, 0x1000))
	b.Write(0x10, 0xFF)

	addr, ok := b.BusError()
	if !ok || addr != 0x10 {
		t.Errorf("expected a bus error writing to cartridge ROM, got ok=%v addr=%06X", ok, addr)
	}
}

func TestZ80BankMirrorsZ80RAM(t *testing.T) {
	b := NewBus(make([]byte, 0x1000))
	b.Write(0xA00010, 0x55)

	if got := b.Read(0xA02010); got != 0x55 {
		t.Errorf("Read(0xA02010) = 0x%02X, want 0x55 (mirrors 0xA00010)", got)
	}
}

func TestWorkRAMWindow(t *testing.T) {
	b := NewBus(make([]byte, 0x1000))
	b.Write(0xFF1234, 0x99)

	if b.Read(0xFF1234) != 0x99 {
		t.Errorf("expected work RAM write/read round trip")
	}
}

func TestUnmappedSpaceFaults(t *testing.T) {
	b := NewBus(make([]byte, 0x1000))
	b.Read(0x800000)

	addr, ok := b.BusError()
	if !ok || addr != 0x800000 {
		t.Errorf("expected a bus error reading unmapped space, got ok=%v addr=%06X", ok, addr)
	}
}

func TestZ80BusReqLatch(t *testing.T) {
	b := NewBus(make([]byte, 0x1000))
	b.Write(0xA11100, 0x01)
	if !b.z80BusReq {
		t.Fatalf("expected bus request latch to set")
	}
	if b.Read(0xA11100) != 0x01 {
		t.Errorf("expected bus request status to read back as asserted")
	}
	b.Write(0xA11100, 0x00)
	if b.z80BusReq {
		t.Errorf("expected bus request latch to clear")
	}
}

func TestZ80SharesRAMWithMainBus(t *testing.T) {
	b := NewBus(make([]byte, 0x1000))
	zbus := &Z80Bus{ram: &b.z80RAM}

	zbus.Write(0x0005, 0xAB)
	if got := b.Read(0xA00005); got != 0xAB {
		t.Errorf("main-bus view of Z80 RAM = 0x%02X, want 0xAB", got)
	}
}
