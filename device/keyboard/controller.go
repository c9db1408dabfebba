package keyboard

import (
	"io"

	"gopherterm/device"
	"gopherterm/kernel"
	"gopherterm/kernel/kfmt"
)

const (
	// DataPort and StatusPort are the PS/2 controller ports.
	DataPort   uint16 = 0x60
	StatusPort uint16 = 0x64

	statusOutputFull uint8 = 1 << 0

	// maxFlush bounds the number of stale bytes drained at init.
	maxFlush = 32
)

var errControllerStuck = &kernel.Error{Module: "ps2_keyboard", Message: "output buffer does not drain"}

// Controller polls the PS/2 controller and feeds scan codes to a Decoder.
type Controller struct {
	ports   device.PortIO
	decoder *Decoder
}

// NewController returns a polling controller that decodes into state.
func NewController(ports device.PortIO, state *State) *Controller {
	return &Controller{
		ports:   ports,
		decoder: NewDecoder(state),
	}
}

// Poll decodes one pending scan code, if any, and reports whether the shared
// state was updated.
func (c *Controller) Poll() bool {
	if c.ports.ReadPort(StatusPort)&statusOutputFull == 0 {
		return false
	}

	c.decoder.Feed(c.ports.ReadPort(DataPort))
	return true
}

// DriverName returns the name of this driver.
func (c *Controller) DriverName() string {
	return "ps2_keyboard"
}

// DriverVersion returns the version of this driver.
func (c *Controller) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit drains any bytes left in the controller output buffer.
func (c *Controller) DriverInit(w io.Writer) *kernel.Error {
	var flushed int
	for ; c.ports.ReadPort(StatusPort)&statusOutputFull != 0; flushed++ {
		if flushed == maxFlush {
			return errControllerStuck
		}
		c.ports.ReadPort(DataPort)
	}

	kfmt.Fprintf(w, "flushed %d stale bytes\n", flushed)
	return nil
}
