package main

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"gopherterm/kernel/hal"
)

// colorValue is a pflag.Value accepting a 4-bit VGA color index in decimal
// or 0x-prefixed hex.
type colorValue struct {
	dst *uint8
}

func (v colorValue) String() string {
	if v.dst == nil {
		return "0"
	}
	return strconv.Itoa(int(*v.dst))
}

func (v colorValue) Set(s string) error {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return errors.Wrapf(err, "invalid color %q", s)
	}
	if n > 0xf {
		return errors.Errorf("color %d out of range [0, 15]", n)
	}

	*v.dst = uint8(n)
	return nil
}

func (v colorValue) Type() string {
	return "color"
}

// configFlags collects the terminal settings exposed on the command line.
type configFlags struct {
	cmdline  string
	cfg      hal.Config
	noCursor bool
}

func newConfigFlags() *configFlags {
	return &configFlags{cfg: hal.DefaultConfig()}
}

// bind registers the terminal flags on fs.
func (f *configFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.cmdline, "cmdline", "", "boot command line, e.g. \"vga.fg=10 tty.in=64\"")
	fs.Uint32Var(&f.cfg.Width, "width", f.cfg.Width, "screen width in characters")
	fs.Uint32Var(&f.cfg.Height, "height", f.cfg.Height, "screen height in characters")
	fs.Var(colorValue{&f.cfg.Fg}, "fg", "default foreground color (0-15)")
	fs.Var(colorValue{&f.cfg.Bg}, "bg", "default background color (0-15)")
	fs.Uint32Var(&f.cfg.InputCapacity, "in", f.cfg.InputCapacity, "input stream capacity")
	fs.Uint32Var(&f.cfg.OutputCapacity, "out", f.cfg.OutputCapacity, "output stream capacity")
	fs.Uint32Var(&f.cfg.ErrorCapacity, "err", f.cfg.ErrorCapacity, "error stream capacity")
	fs.BoolVar(&f.noCursor, "no-cursor", false, "hide the hardware cursor")
}

// config returns the effective configuration. Boot command line options
// override the individual flags.
func (f *configFlags) config() (hal.Config, error) {
	cfg := f.cfg
	cfg.Cursor = !f.noCursor
	hal.ParseCmdLine(&cfg, f.cmdline)

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid screen size %dx%d", cfg.Width, cfg.Height)
	}

	return cfg, nil
}
