// Package bus defines the uniform memory/IO-bus contract shared by the
// m68k and z80 engines. A Bus is a byte-addressable 32-bit memory plus an
// orthogonal 16-bit I/O port space; both are side-effecting (a read may
// mutate device state, e.g. clearing an interrupt-pending flag).
package bus

// Bus is the memory and port-I/O contract a CPU engine drives. Every
// implementation lives in a systems/* package; the core never assumes
// anything about what is behind it beyond this interface.
type Bus interface {
	// Read returns the byte at addr. May side-effect (e.g. a status
	// register that clears on read).
	Read(addr uint32) uint8
	// Write stores val at addr. May side-effect.
	Write(addr uint32, val uint8)

	// PortIn reads the 16-bit I/O port space. Implementations that have
	// no port space should return 0xFF.
	PortIn(port uint16) uint8
	// PortOut writes the 16-bit I/O port space. Implementations that
	// have no port space should ignore the write.
	PortOut(port uint16, val uint8)

	// BusError reports the address of the most recent failed access, if
	// any. The CPU consumes and acknowledges it after each instruction.
	BusError() (addr uint32, ok bool)
	// AckBusError clears the fault latch. Called by the CPU once it has
	// raised the corresponding exception.
	AckBusError()
}

// ReadWordBE reads a big-endian 16-bit word from two consecutive byte
// accesses, as the 68000's external bus does. No atomicity is implied.
func ReadWordBE(b Bus, addr uint32) uint16 {
	hi := uint16(b.Read(addr))
	lo := uint16(b.Read(addr + 1))
	return hi<<8 | lo
}

// WriteWordBE writes a big-endian 16-bit word as two consecutive byte
// accesses.
func WriteWordBE(b Bus, addr uint32, val uint16) {
	b.Write(addr, uint8(val>>8))
	b.Write(addr+1, uint8(val))
}

// ReadLongBE reads a big-endian 32-bit long from four consecutive byte
// accesses.
func ReadLongBE(b Bus, addr uint32) uint32 {
	hi := uint32(ReadWordBE(b, addr))
	lo := uint32(ReadWordBE(b, addr+2))
	return hi<<16 | lo
}

// WriteLongBE writes a big-endian 32-bit long as four consecutive byte
// accesses.
func WriteLongBE(b Bus, addr uint32, val uint32) {
	WriteWordBE(b, addr, uint16(val>>16))
	WriteWordBE(b, addr+2, uint16(val))
}

// ReadWordLE reads a little-endian 16-bit word from two consecutive byte
// accesses, as the Z80's external bus does.
func ReadWordLE(b Bus, addr uint32) uint16 {
	lo := uint16(b.Read(addr))
	hi := uint16(b.Read(addr + 1))
	return hi<<8 | lo
}

// WriteWordLE writes a little-endian 16-bit word as two consecutive byte
// accesses.
func WriteWordLE(b Bus, addr uint32, val uint16) {
	b.Write(addr, uint8(val))
	b.Write(addr+1, uint8(val>>8))
}

// Fault is an embeddable fault latch for Bus implementations. It mirrors
// the single mutable fault-address cell used by oxid_mac's MacBus (a
// Cell<Option<u32>> in the original Rust), translated to the core's
// single-threaded, mutable-borrow execution model (no concurrency inside
// a Bus implementation is assumed or required).
type Fault struct {
	addr uint32
	set  bool
}

// SetFault latches a fault at addr. A later SetFault before the CPU acks
// the first overwrites it; only the most recent fault is ever reported.
func (f *Fault) SetFault(addr uint32) {
	f.addr = addr
	f.set = true
}

// BusError implements Bus.BusError.
func (f *Fault) BusError() (uint32, bool) {
	return f.addr, f.set
}

// AckBusError implements Bus.AckBusError.
func (f *Fault) AckBusError() {
	f.set = false
}
