package mastersystem

import "testing"

func makeROM(banks int) []byte {
	rom := make([]byte, banks*0x4000)
	for i := range rom {
		rom[i] = 0xFF
	}
	return rom
}

func TestFixedHeaderNeverPages(t *testing.T) {
	b := NewBus(makeROM(4))
	b.rom[0x0010] = 0xAB
	if b.Read(0x0010) != 0xAB {
		t.Fatalf("expected fixed header to read straight from bank 0")
	}
}

func TestMapperPagesSlot1(t *testing.T) {
	b := NewBus(makeROM(4))
	b.rom[3*0x4000+0x20] = 0x77

	b.Write(0x4020, 0x11) // distinct from ROM before paging
	b.Write(0xFFFE, 3)    // page bank 3 into slot 1 ($4000-$7FFF)

	if got := b.Read(0x4020); got != 0x77 {
		t.Errorf("Read(0x4020) = 0x%02X, want 0x77 (bank 3 byte 0x20)", got)
	}
}

func TestRAMMirrorAndMapperWriteThrough(t *testing.T) {
	b := NewBus(makeROM(2))
	b.Write(0xC010, 0x42)

	if got := b.Read(0xE010); got != 0x42 {
		t.Errorf("mirrored RAM read = 0x%02X, want 0x42", got)
	}
}

func TestVDPStatusClearsOnRead(t *testing.T) {
	b := NewBus(makeROM(1))
	b.vdp.status = statusVBlank

	got := b.PortIn(0xBF)
	if got&statusVBlank == 0 {
		t.Fatalf("expected VBlank bit set on first read")
	}
	if b.vdp.status&statusVBlank != 0 {
		t.Errorf("expected VBlank bit cleared after reading status port")
	}
}

func TestVDPAddressLatchAndDataPort(t *testing.T) {
	b := NewBus(makeROM(1))
	b.PortOut(0xBF, 0x00) // low byte of address
	b.PortOut(0xBF, 0x00) // high byte + code 0 (VRAM read setup)
	b.PortOut(0xBF, 0x34) // restart latch: low byte
	b.PortOut(0xBF, 0x40) // high byte, code 1 (VRAM write)
	b.PortOut(0xBE, 0x99) // write $99 to VRAM[0x0034]

	if b.vdp.vram[0x0034] != 0x99 {
		t.Errorf("vram[0x34] = 0x%02X, want 0x99", b.vdp.vram[0x0034])
	}
}

func TestJoypadPort(t *testing.T) {
	b := NewBus(makeROM(1))
	b.SetJoypad(0xFE) // button 1 (bit 0) held
	if b.PortIn(0xDC) != 0xFE {
		t.Errorf("joypad port did not reflect SetJoypad value")
	}
}

func TestTickScanlineRaisesFrameInterrupt(t *testing.T) {
	b := NewBus(makeROM(1))
	b.vdp.regs[1] = 0x20 // enable frame interrupt

	for y := 0; y < 192; y++ {
		if b.TickScanline(y) {
			t.Fatalf("did not expect an interrupt before line 192")
		}
	}
	if !b.TickScanline(192) {
		t.Errorf("expected frame interrupt once VBlank starts at line 192")
	}
}
