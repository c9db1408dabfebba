package main

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

const serialReadTimeout = 100 * time.Millisecond

// openSerial opens a serial line used as an alternative keyboard.
func openSerial(name string, baud int) (serial.Port, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open serial port %s", name)
	}

	if err = port.SetReadTimeout(serialReadTimeout); err != nil {
		port.Close()
		return nil, errors.Wrapf(err, "unable to set read timeout on %s", name)
	}

	return port, nil
}

// serialKeyboard is a serial line whose bytes are typed into the emulator.
// bytes is closed when the line stops; errc then yields the reason, nil for
// a clean stop.
type serialKeyboard struct {
	bytes chan byte
	errc  chan error
}

// startSerialKeyboard pumps bytes from r until ctx is cancelled or r fails.
func startSerialKeyboard(ctx context.Context, r io.Reader) *serialKeyboard {
	k := &serialKeyboard{
		bytes: make(chan byte, 64),
		errc:  make(chan error, 1),
	}

	go func() {
		k.errc <- pumpBytes(ctx, r, k.bytes)
	}()

	return k
}

// pumpBytes forwards bytes read from r to out until ctx is cancelled or r
// fails and closes out before returning. A zero length read is treated as a
// timeout. io.EOF ends the pump without an error.
func pumpBytes(ctx context.Context, r io.Reader, out chan<- byte) error {
	var buf [64]byte
	defer close(out)

	for {
		n, err := r.Read(buf[:])
		for _, b := range buf[:n] {
			select {
			case out <- b:
			case <-ctx.Done():
				return nil
			}
		}

		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return errors.Wrap(err, "serial read failed")
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}
