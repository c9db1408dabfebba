package hal

import (
	"gopherterm/device/video/console"
	"gopherterm/kernel"
	"gopherterm/kernel/multiboot"
)

const (
	// Upper bounds for the stream capacities; they size the static
	// backing arrays.
	MaxInputCapacity  = 1024
	MaxOutputCapacity = 8192
	MaxErrorCapacity  = 2048

	// maxScreenCells is the number of cells the 16-bit CRTC cursor
	// location can address.
	maxScreenCells = 0xffff
)

var (
	errEmptyScreen    = &kernel.Error{Module: "hal", Message: "screen width and height must be non-zero"}
	errScreenTooLarge = &kernel.Error{Module: "hal", Message: "screen exceeds the cursor address range"}
)

// Config describes the terminal that InitTerminal brings up.
type Config struct {
	Width, Height   uint32
	FramebufferAddr uintptr

	Fg, Bg uint8

	InputCapacity  uint32
	OutputCapacity uint32
	ErrorCapacity  uint32

	// Cursor controls whether the hardware cursor is shown.
	Cursor bool
}

// DefaultConfig returns an 80x25 light grey on black terminal mapped at
// 0xB8000.
func DefaultConfig() Config {
	return Config{
		Width:           console.DefaultWidth,
		Height:          console.DefaultHeight,
		FramebufferAddr: console.DefaultFramebufferAddr,
		Fg:              console.DefaultFg,
		Bg:              console.DefaultBg,
		InputCapacity:   256,
		OutputCapacity:  2048,
		ErrorCapacity:   512,
		Cursor:          true,
	}
}

// Validate checks that the screen geometry is usable: both dimensions must be
// non-zero and every cell must be addressable by the hardware cursor.
func (cfg *Config) Validate() *kernel.Error {
	switch {
	case cfg.Width == 0 || cfg.Height == 0:
		return errEmptyScreen
	case uint64(cfg.Width)*uint64(cfg.Height) > maxScreenCells:
		return errScreenTooLarge
	}

	return nil
}

// ApplyBootInfo updates cfg with the text mode framebuffer reported by the
// boot loader, if any, and then applies the boot command line. Framebuffers
// in a graphics mode and text framebuffers with an unusable geometry are
// ignored.
func ApplyBootInfo(cfg *Config) {
	if fb := multiboot.GetFramebufferInfo(); fb != nil && fb.Type == multiboot.FramebufferTypeEGA {
		boot := *cfg
		boot.Width, boot.Height = fb.Width, fb.Height
		boot.FramebufferAddr = uintptr(fb.PhysAddr)
		if boot.Validate() == nil {
			*cfg = boot
		}
	}

	ParseCmdLine(cfg, multiboot.CmdLine())
}

// ParseCmdLine applies the key=value options found in a boot command line to
// cfg. Recognized keys are vga.fg, vga.bg, tty.in, tty.out, tty.err and
// cursor (on|off). Unknown keys and malformed values are ignored.
//
// The parser does not allocate so it can run before the Go allocator is up.
func ParseCmdLine(cfg *Config, cmdline string) {
	for len(cmdline) > 0 {
		var field string
		field, cmdline = nextField(cmdline)
		if field == "" {
			continue
		}

		key, value := field, field
		for i := 0; i < len(field); i++ {
			if field[i] == '=' {
				key, value = field[:i], field[i+1:]
				break
			}
		}

		switch key {
		case "vga.fg":
			if v, ok := parseUint(value, 0xf); ok {
				cfg.Fg = uint8(v)
			}
		case "vga.bg":
			if v, ok := parseUint(value, 0xf); ok {
				cfg.Bg = uint8(v)
			}
		case "tty.in":
			setCapacity(&cfg.InputCapacity, value, MaxInputCapacity)
		case "tty.out":
			setCapacity(&cfg.OutputCapacity, value, MaxOutputCapacity)
		case "tty.err":
			setCapacity(&cfg.ErrorCapacity, value, MaxErrorCapacity)
		case "cursor":
			switch value {
			case "on":
				cfg.Cursor = true
			case "off":
				cfg.Cursor = false
			}
		}
	}
}

func setCapacity(dst *uint32, value string, max uint64) {
	if v, ok := parseUint(value, max); ok && v > 0 {
		*dst = uint32(v)
	}
}

// nextField splits off the first space or tab separated field of s.
func nextField(s string) (string, string) {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}

	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' {
			return s[:i], s[i+1:]
		}
	}

	return s, ""
}

// parseUint parses a decimal or 0x-prefixed hex value no larger than max.
func parseUint(s string, max uint64) (uint64, bool) {
	base := uint64(10)
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, s = 16, s[2:]
	}

	if len(s) == 0 {
		return 0, false
	}

	var v uint64
	for i := 0; i < len(s); i++ {
		var d uint64
		switch ch := s[i]; {
		case ch >= '0' && ch <= '9':
			d = uint64(ch - '0')
		case base == 16 && ch >= 'a' && ch <= 'f':
			d = uint64(ch-'a') + 10
		case base == 16 && ch >= 'A' && ch <= 'F':
			d = uint64(ch-'A') + 10
		default:
			return 0, false
		}

		if v = v*base + d; v > max {
			return 0, false
		}
	}

	return v, true
}
