package console

import "gopherterm/device"

const (
	// CtrlPort selects a CRT controller register; DataPort accesses it.
	CtrlPort uint16 = 0x3D4
	DataPort uint16 = 0x3D5

	regCursorStart uint8 = 0x0A
	regCursorEnd   uint8 = 0x0B
	regCursorHigh  uint8 = 0x0E
	regCursorLow   uint8 = 0x0F

	cursorDisableBit uint8 = 0x20
)

// Cursor programs the hardware text cursor through the CRT controller.
type Cursor struct {
	ports device.PortIO
	width uint32
}

// NewCursor returns a cursor controller for a screen that is width
// characters wide.
func NewCursor(ports device.PortIO, width uint32) *Cursor {
	return &Cursor{ports: ports, width: width}
}

// MoveTo places the hardware cursor at (row, col). The position is sent as a
// linear character index; out of range positions are not rejected and simply
// park the cursor off-screen.
func (c *Cursor) MoveTo(row, col uint32) {
	offset := uint16(c.width*row + col)

	c.ports.WritePort(CtrlPort, regCursorHigh)
	c.ports.WritePort(DataPort, uint8(offset>>8))
	c.ports.WritePort(CtrlPort, regCursorLow)
	c.ports.WritePort(DataPort, uint8(offset))
}

// Offset reads back the linear cursor position from the controller.
func (c *Cursor) Offset() uint16 {
	c.ports.WritePort(CtrlPort, regCursorHigh)
	high := c.ports.ReadPort(DataPort)
	c.ports.WritePort(CtrlPort, regCursorLow)
	low := c.ports.ReadPort(DataPort)

	return uint16(high)<<8 | uint16(low)
}

// Enable shows the cursor as a block spanning scanlines start to end.
func (c *Cursor) Enable(start, end uint8) {
	c.ports.WritePort(CtrlPort, regCursorStart)
	c.ports.WritePort(DataPort, (c.ports.ReadPort(DataPort)&0xc0)|(start&0x1f))
	c.ports.WritePort(CtrlPort, regCursorEnd)
	c.ports.WritePort(DataPort, (c.ports.ReadPort(DataPort)&0xe0)|(end&0x1f))
}

// Disable hides the cursor.
func (c *Cursor) Disable() {
	c.ports.WritePort(CtrlPort, regCursorStart)
	c.ports.WritePort(DataPort, cursorDisableBit)
}
