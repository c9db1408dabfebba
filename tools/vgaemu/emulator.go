package main

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"gopherterm/device/devicetest"
	"gopherterm/device/keyboard"
	"gopherterm/device/tty"
	"gopherterm/device/video/console"
	"gopherterm/kernel/gdt"
	"gopherterm/kernel/hal"
	"gopherterm/kernel/kfmt"
)

const (
	ps2DataPort   uint16 = 0x60
	ps2StatusPort uint16 = 0x64

	prompt = "> "
)

// ps2Buffer emulates the output buffer of a PS/2 controller.
type ps2Buffer struct {
	pending []uint8
}

func (b *ps2Buffer) push(scans ...uint8) {
	b.pending = append(b.pending, scans...)
}

func (b *ps2Buffer) onRead(port uint16) (uint8, bool) {
	switch port {
	case ps2StatusPort:
		if len(b.pending) != 0 {
			return 1, true
		}
		return 0, true
	case ps2DataPort:
		if len(b.pending) == 0 {
			return 0, true
		}
		scan := b.pending[0]
		b.pending = b.pending[1:]
		return scan, true
	}

	return 0, false
}

// emulator owns the virtual hardware behind the terminal brought up by hal.
type emulator struct {
	cfg    hal.Config
	ports  *devicetest.Ports
	ps2    *ps2Buffer
	fb     []byte
	term   *tty.Terminal
	cursor *console.Cursor

	line []byte
	quit bool
}

func newEmulator(cfg hal.Config) (*emulator, error) {
	e := &emulator{
		cfg:   cfg,
		ports: &devicetest.Ports{DiscardLog: true},
		ps2:   new(ps2Buffer),
		fb:    make([]byte, cfg.Width*cfg.Height*2),
	}
	e.ports.OnRead = e.ps2.onRead

	if err := hal.InitTerminalWith(cfg, e.ports, e.fb); err != nil {
		return nil, errors.Wrap(err, "terminal bring-up failed")
	}

	e.term = hal.ActiveTerminal()
	e.line = make([]byte, e.term.Stream(tty.StreamInput).Cap())
	e.cursor = console.NewCursor(e.ports, cfg.Width)

	kfmt.Fprintf(e.term, "\ngopherterm %dx%d; type \"help\" for a list of commands\n%s", cfg.Width, cfg.Height, prompt)
	return e, nil
}

// Close releases the terminal so another emulator can be created.
func (e *emulator) Close() {
	hal.Shutdown()
}

// press sends the make and break codes of a key through the PS/2 controller
// and runs the line handler when Enter is pressed.
func (e *emulator) press(scan uint8) {
	e.ps2.push(scan)
	hal.PollKeyboard()
	if e.term.LastKey() == keyboard.KeyEnter {
		e.runLine()
	}

	e.ps2.push(keyboard.Release(scan))
	hal.PollKeyboard()
}

// typeByte emulates the keystrokes needed to produce ch. Bytes without a key
// are dropped.
func (e *emulator) typeByte(ch byte) {
	switch ch {
	case '\r', '\n':
		e.press(keyboard.ScanEnter)
		return
	case '\b', 0x7f:
		e.press(keyboard.ScanBackspace)
		return
	case '\t':
		e.press(keyboard.ScanTab)
		return
	}

	scan, shift, ok := keyboard.ScanCode(ch)
	if !ok || e.lineFull() {
		return
	}

	if shift {
		e.ps2.push(keyboard.ScanLeftShift)
		hal.PollKeyboard()
	}

	e.press(scan)

	if shift {
		e.ps2.push(keyboard.Release(keyboard.ScanLeftShift))
		hal.PollKeyboard()
	}
}

// lineFull reports whether the input stream has no room left. Further keys
// would wrap the stream over the start of the line, so they are dropped.
func (e *emulator) lineFull() bool {
	in := e.term.Stream(tty.StreamInput)
	return in.Offset() >= in.Cap()
}

// runLine executes the line collected in the input stream.
func (e *emulator) runLine() {
	in := e.term.Stream(tty.StreamInput)
	n := in.Offset()
	e.term.CopyInput(e.line, n)
	e.term.ClearInput()

	fields := strings.Fields(string(e.line[:n]))
	if len(fields) != 0 {
		e.exec(fields[0], fields[1:])
	}

	if !e.quit {
		kfmt.Fprintf(e.term, prompt)
	}
}

func (e *emulator) exec(cmd string, args []string) {
	switch cmd {
	case "help":
		kfmt.Fprintf(e.term, "commands: help clear echo streams gdt log palette exit\n")
	case "clear":
		e.term.ClearOutput()
	case "echo":
		kfmt.Fprintf(e.term, "%s\n", strings.Join(args, " "))
	case "streams":
		for s := tty.StreamInput; s <= tty.StreamError; s++ {
			buf := e.term.Stream(s)
			kfmt.Fprintf(e.term, "%6s %5d/%d\n", s.String(), buf.Offset(), buf.Cap())
		}
	case "gdt":
		gdt.NewFlatTable().DumpTo(e.term)
	case "log":
		kfmt.Printf("[vgaemu] %s\n", strings.Join(args, " "))
	case "palette":
		if err := e.setPalette(args); err != nil {
			kfmt.Fprintf(e.term, "palette: %s\n", err.Error())
		}
	case "exit":
		e.quit = true
	default:
		kfmt.Fprintf(e.term, "unknown command: %s\n", cmd)
	}
}

// setPalette handles "palette <index> <rrggbb>".
func (e *emulator) setPalette(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: palette <index> <rrggbb>")
	}

	index, err := strconv.ParseUint(args[0], 0, 4)
	if err != nil {
		return errors.Wrap(err, "bad index")
	}

	c, err := colorful.Hex("#" + strings.TrimPrefix(args[1], "#"))
	if err != nil {
		return errors.Wrap(err, "bad color")
	}

	r, g, b := c.RGB255()
	e.term.Surface().SetPaletteColor(uint8(index), color.RGBA{R: r, G: g, B: b, A: 0xff})
	return nil
}
