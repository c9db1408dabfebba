package device

import "gopherterm/kernel/cpu"

// PortIO is the capability used by drivers to talk to hardware through the
// x86 I/O port space. Drivers receive it at construction time so that tests
// can substitute a recording implementation.
type PortIO interface {
	// WritePort writes val to the given port.
	WritePort(port uint16, val uint8)

	// ReadPort reads a byte from the given port.
	ReadPort(port uint16) uint8
}

// CPUPorts implements PortIO with the in/out instructions.
type CPUPorts struct{}

// WritePort implements PortIO.
func (CPUPorts) WritePort(port uint16, val uint8) {
	cpu.PortWriteByte(port, val)
}

// ReadPort implements PortIO.
func (CPUPorts) ReadPort(port uint16) uint8 {
	return cpu.PortReadByte(port)
}
