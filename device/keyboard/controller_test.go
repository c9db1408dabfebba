package keyboard

import (
	"bytes"
	"testing"

	"gopherterm/device/devicetest"
)

// scanQueue feeds queued scan codes through the PS/2 status/data ports.
type scanQueue struct {
	pending []uint8
}

func (q *scanQueue) read(port uint16) (uint8, bool) {
	switch port {
	case StatusPort:
		if len(q.pending) > 0 {
			return statusOutputFull, true
		}
		return 0, true
	case DataPort:
		if len(q.pending) == 0 {
			return 0, true
		}
		scan := q.pending[0]
		q.pending = q.pending[1:]
		return scan, true
	}
	return 0, false
}

func TestControllerPoll(t *testing.T) {
	q := &scanQueue{pending: []uint8{0x23, 0xa3}}
	ports := &devicetest.Ports{OnRead: q.read}

	var st State
	c := NewController(ports, &st)

	if !c.Poll() {
		t.Fatal("expected Poll to decode a pending scan code")
	}
	if st.Char != 'h' || !st.Pressed() {
		t.Fatalf("expected a press of 'h'; got %q (flags %04b)", st.Char, st.Flags)
	}

	if !c.Poll() || st.Pressed() {
		t.Fatal("expected second Poll to decode the release event")
	}

	if c.Poll() {
		t.Fatal("expected Poll to report false when no data is pending")
	}
}

func TestControllerDriverInit(t *testing.T) {
	t.Run("drains stale bytes", func(t *testing.T) {
		q := &scanQueue{pending: []uint8{0x1e, 0x9e}}
		c := NewController(&devicetest.Ports{OnRead: q.read}, &State{})

		var buf bytes.Buffer
		if err := c.DriverInit(&buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if exp, got := "flushed 2 stale bytes\n", buf.String(); got != exp {
			t.Fatalf("expected %q; got %q", exp, got)
		}
	})

	t.Run("stuck controller", func(t *testing.T) {
		ports := &devicetest.Ports{OnRead: func(uint16) (uint8, bool) { return statusOutputFull, true }}
		c := NewController(ports, &State{})

		if err := c.DriverInit(&bytes.Buffer{}); err != errControllerStuck {
			t.Fatalf("expected errControllerStuck; got %v", err)
		}
	})
}
