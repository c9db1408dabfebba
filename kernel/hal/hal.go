// Package hal brings up the console hardware and wires it to the terminal
// and the kernel log.
package hal

import (
	"bytes"
	"unsafe"

	"gopherterm/device"
	"gopherterm/device/keyboard"
	"gopherterm/device/tty"
	"gopherterm/device/video/console"
	"gopherterm/kernel"
	"gopherterm/kernel/kfmt"
)

// managedDevices contains the devices initialized by the HAL.
type managedDevices struct {
	terminal *tty.Terminal
	keyboard *keyboard.Controller

	// activeDrivers tracks all initialized device drivers.
	activeDrivers [3]device.Driver
	driverCount   int
}

var (
	devices managedDevices
	strBuf  bytes.Buffer

	kbdState keyboard.State

	inStorage  [MaxInputCapacity]byte
	outStorage [MaxOutputCapacity]byte
	errStorage [MaxErrorCapacity]byte

	// portIO and mapFramebufferFn are replaced by tests.
	portIO           device.PortIO = device.CPUPorts{}
	mapFramebufferFn               = mapFramebuffer

	errTerminalActive      = &kernel.Error{Module: "hal", Message: "terminal already initialized"}
	errFramebufferTooSmall = &kernel.Error{Module: "hal", Message: "framebuffer smaller than the configured screen"}
)

const (
	cursorScanlineStart = 14
	cursorScanlineEnd   = 15
)

// mapFramebuffer returns a slice over size bytes of video memory at addr.
// The kernel runs with an identity mapping for the low 1M.
func mapFramebuffer(addr uintptr, size uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
}

// ActiveTerminal returns the terminal set up by InitTerminal.
func ActiveTerminal() *tty.Terminal {
	return devices.terminal
}

// ActiveDrivers returns the drivers that initialized successfully.
func ActiveDrivers() []device.Driver {
	return devices.activeDrivers[:devices.driverCount]
}

// InitTerminal creates the terminal described by cfg on the VGA hardware,
// clears the screen, redirects kernel log output to the terminal error stream
// and initializes the console and keyboard drivers.
func InitTerminal(cfg Config) *kernel.Error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	return InitTerminalWith(cfg, portIO, mapFramebufferFn(cfg.FramebufferAddr, cfg.Width*cfg.Height*2))
}

// InitTerminalWith behaves like InitTerminal but drives the supplied ports and
// framebuffer. fb must hold at least cfg.Width*cfg.Height*2 bytes.
func InitTerminalWith(cfg Config, ports device.PortIO, fb []byte) *kernel.Error {
	if devices.terminal != nil {
		return errTerminalActive
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if uint32(len(fb)) < cfg.Width*cfg.Height*2 {
		return errFramebufferTooSmall
	}

	surface := console.NewTextSurface(cfg.Width, cfg.Height, ports)
	surface.SetDefaultColors(cfg.Fg, cfg.Bg)
	cursor := console.NewCursor(ports, cfg.Width)

	term := tty.NewTerminal(surface, cursor, tty.Buffers{
		Input:  inStorage[:clampCapacity(cfg.InputCapacity, MaxInputCapacity)],
		Output: outStorage[:clampCapacity(cfg.OutputCapacity, MaxOutputCapacity)],
		Error:  errStorage[:clampCapacity(cfg.ErrorCapacity, MaxErrorCapacity)],
	})

	term.Init(&kbdState)
	if err := term.InitVideo(fb); err != nil {
		return err
	}
	term.ClearOutput()

	if cfg.Cursor {
		cursor.Enable(cursorScanlineStart, cursorScanlineEnd)
	} else {
		cursor.Disable()
	}

	devices.terminal = term
	kfmt.SetOutputSink(term.ErrWriter())

	kbd := keyboard.NewController(ports, &kbdState)
	for _, drv := range []device.Driver{surface, kbd, term} {
		if !probe(drv) {
			continue
		}

		if drv == device.Driver(kbd) {
			devices.keyboard = kbd
		}
	}

	return nil
}

// Shutdown detaches the active terminal and routes kernel log output back to
// the early buffer. A new terminal can be brought up afterwards.
func Shutdown() {
	devices = managedDevices{}
	kbdState = keyboard.State{}
	kfmt.SetOutputSink(nil)
}

// probe initializes drv, tagging its output with the driver name and
// version, and records it as active on success.
func probe(drv device.Driver) bool {
	var w = kfmt.PrefixWriter{Sink: kfmt.GetOutputSink()}

	strBuf.Reset()
	major, minor, patch := drv.DriverVersion()
	kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
	w.Prefix = strBuf.Bytes()

	if err := drv.DriverInit(&w); err != nil {
		kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
		return false
	}

	kfmt.Fprintf(&w, "initialized\n")
	if devices.driverCount < len(devices.activeDrivers) {
		devices.activeDrivers[devices.driverCount] = drv
		devices.driverCount++
	}
	return true
}

// PollKeyboard processes at most one pending keyboard event and reports
// whether one was found.
func PollKeyboard() bool {
	if devices.keyboard == nil || !devices.keyboard.Poll() {
		return false
	}

	devices.terminal.KeyboardInput()
	return true
}

func clampCapacity(capacity, max uint32) uint32 {
	switch {
	case capacity == 0:
		return 1
	case capacity > max:
		return max
	}
	return capacity
}
