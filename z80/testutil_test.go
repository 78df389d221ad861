package z80

// testBus is a flat 64KB byte-array bus with a full 64K-entry port space,
// the same shape the systems/mastersystem and systems/genesis hosts wire
// the Z80 to.
type testBus struct {
	mem   [65536]byte
	ports [65536]uint8
}

func (b *testBus) Read(addr uint32) uint8       { return b.mem[uint16(addr)] }
func (b *testBus) Write(addr uint32, val uint8) { b.mem[uint16(addr)] = val }
func (b *testBus) PortIn(port uint16) uint8     { return b.ports[port] }
func (b *testBus) PortOut(port uint16, val uint8) {
	b.ports[port] = val
}
func (b *testBus) BusError() (uint32, bool) { return 0, false }
func (b *testBus) AckBusError()             {}

func (b *testBus) loadAt(addr uint16, bytes ...uint8) {
	for i, v := range bytes {
		b.mem[int(addr)+i] = v
	}
}

func newTestCPU() (*CPU, *testBus) {
	b := &testBus{}
	cpu := New(b)
	return cpu, b
}
