// Package devicetest provides a recording PortIO implementation for driver
// tests and the hosted emulator.
package devicetest

import "sync"

// PortWrite records a single port write.
type PortWrite struct {
	Port  uint16
	Value uint8
}

const (
	crtcIndexPort uint16 = 0x3D4
	crtcDataPort  uint16 = 0x3D5
)

// Ports is an in-memory PortIO. Writes are recorded in order and the last
// value written to each port is returned by ReadPort unless a read hook is
// installed for that port.
//
// The VGA CRT controller index/data pair (0x3D4/0x3D5) is modelled so that
// register reads return what was last programmed into the selected register.
type Ports struct {
	mu     sync.Mutex
	writes []PortWrite
	last   map[uint16]uint8

	crtcIndex uint8
	crtcRegs  [256]uint8

	// OnRead, when set, services reads instead of the last written value.
	OnRead func(port uint16) (uint8, bool)

	// OnWrite, when set, observes every write after it is recorded.
	OnWrite func(port uint16, val uint8)

	// DiscardLog disables the write log for long running users such as
	// the emulator. Register and last value tracking stay active.
	DiscardLog bool
}

// WritePort implements device.PortIO.
func (p *Ports) WritePort(port uint16, val uint8) {
	p.mu.Lock()
	if p.last == nil {
		p.last = make(map[uint16]uint8)
	}
	if !p.DiscardLog {
		p.writes = append(p.writes, PortWrite{Port: port, Value: val})
	}
	p.last[port] = val
	switch port {
	case crtcIndexPort:
		p.crtcIndex = val
	case crtcDataPort:
		p.crtcRegs[p.crtcIndex] = val
	}
	hook := p.OnWrite
	p.mu.Unlock()

	if hook != nil {
		hook(port, val)
	}
}

// ReadPort implements device.PortIO.
func (p *Ports) ReadPort(port uint16) uint8 {
	p.mu.Lock()
	hook := p.OnRead
	val := p.last[port]
	if port == crtcDataPort {
		val = p.crtcRegs[p.crtcIndex]
	}
	p.mu.Unlock()

	if hook != nil {
		if v, ok := hook(port); ok {
			return v
		}
	}

	return val
}

// Writes returns a copy of the recorded writes.
func (p *Ports) Writes() []PortWrite {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]PortWrite, len(p.writes))
	copy(out, p.writes)
	return out
}

// Register returns the value last programmed into CRT controller register
// index.
func (p *Ports) Register(index uint8) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.crtcRegs[index]
}

// Reset discards all recorded writes and register state.
func (p *Ports) Reset() {
	p.mu.Lock()
	p.writes = p.writes[:0]
	p.last = nil
	p.crtcIndex = 0
	p.crtcRegs = [256]uint8{}
	p.mu.Unlock()
}
