// Package device defines the contracts shared by the console, keyboard and
// terminal drivers.
package device

import (
	"io"

	"gopherterm/kernel"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. Any diagnostic output
	// should be written to the supplied io.Writer with kfmt.Fprintf.
	DriverInit(io.Writer) *kernel.Error
}
