package main

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"gopherterm/device/keyboard"
	"gopherterm/kernel/hal"
	"gopherterm/kernel/kfmt"
)

func newRunCmd() *cobra.Command {
	var (
		flags      = newConfigFlags()
		serialPort string
		baud       int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the terminal in the host terminal window",
		Long: `Run brings up the terminal on an emulated VGA text console and renders it
with tcell. Keys typed in the host terminal are translated to PS/2 scan codes
and delivered through the emulated keyboard controller.

A serial line can be used as an additional keyboard with --serial.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config()
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return errors.Wrap(err, "unable to create screen")
			}

			var serial *serialKeyboard
			if serialPort != "" {
				port, err := openSerial(serialPort, baud)
				if err != nil {
					return err
				}
				defer port.Close()

				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				serial = startSerialKeyboard(ctx, port)
			}

			return run(screen, cfg, serial)
		},
	}

	flags.bind(cmd.Flags())
	cmd.Flags().StringVar(&serialPort, "serial", "", "serial port to read keystrokes from")
	cmd.Flags().IntVar(&baud, "baud", 115200, "serial port baud rate")

	return cmd
}

// run drives the emulator until the user quits. serial may be nil.
func run(screen tcell.Screen, cfg hal.Config, serial *serialKeyboard) error {
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "unable to initialize screen")
	}
	defer screen.Fini()

	e, err := newEmulator(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	var serialBytes <-chan byte
	if serial != nil {
		serialBytes = serial.bytes
	}

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go screen.ChannelEvents(events, quit)
	defer close(quit)

	for e.draw(screen); !e.quit; e.draw(screen) {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			e.handleEvent(screen, ev)
		case b, ok := <-serialBytes:
			if !ok {
				serialBytes = nil
				e.serialStopped(<-serial.errc)
				continue
			}
			e.typeByte(b)
		}
	}

	return nil
}

// serialStopped logs why the serial keyboard went away.
func (e *emulator) serialStopped(err error) {
	if err != nil {
		kfmt.Printf("[vgaemu] serial keyboard stopped: %s\n", err.Error())
		return
	}

	kfmt.Printf("[vgaemu] serial keyboard closed\n")
}

// handleEvent translates host terminal events into emulated keystrokes.
func (e *emulator) handleEvent(screen tcell.Screen, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyCtrlC:
			e.quit = true
		case tcell.KeyCtrlL:
			e.term.ClearInput()
			e.term.ClearOutput()
			kfmt.Fprintf(e.term, prompt)
		case tcell.KeyEnter:
			e.press(keyboard.ScanEnter)
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			e.press(keyboard.ScanBackspace)
		case tcell.KeyTab:
			e.press(keyboard.ScanTab)
		case tcell.KeyEscape:
			e.press(keyboard.ScanEscape)
		case tcell.KeyRune:
			if r := ev.Rune(); r < 0x80 {
				e.typeByte(byte(r))
			}
		}
	}
}
