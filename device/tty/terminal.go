// Package tty implements the kernel terminal: it ties the VGA text surface,
// the hardware cursor and the keyboard state together and records what was
// typed and printed in three stream buffers.
//
// A Terminal is not safe for concurrent use. When keyboard dispatch runs from
// an interrupt handler the caller must mask interrupts around program output.
package tty

import (
	"io"

	"gopherterm/device/keyboard"
	"gopherterm/device/video/console"
	"gopherterm/kernel"
	"gopherterm/kernel/kfmt"
)

// State tracks the two-phase terminal initialization.
type State uint8

const (
	// StateCreated is the state of a terminal returned by NewTerminal.
	StateCreated State = iota

	// StateBound is entered by Init once a keyboard is bound. Stream
	// buffers can be cleared and copied but nothing can be displayed.
	StateBound

	// StateReady is entered by InitVideo. All operations are available.
	StateReady
)

var (
	errNotBound = &kernel.Error{Module: "tty", Message: "keyboard not bound; call Init first"}
	errNotReady = &kernel.Error{Module: "tty", Message: "video surface not initialized"}
)

// Buffers supplies the storage for the terminal stream buffers.
type Buffers struct {
	Input  []byte
	Output []byte
	Error  []byte
}

// Terminal owns a text surface, a cursor controller, a reference to the shared
// keyboard state and the input, output and error stream buffers.
type Terminal struct {
	surface *console.TextSurface
	cursor  *console.Cursor
	kbd     *keyboard.State

	width, height uint32

	streams [streamCount]*StreamBuffer

	state State
}

// NewTerminal creates a terminal that renders to surface and positions the
// hardware cursor through cursor. The surface is bound to video memory later
// by InitVideo.
func NewTerminal(surface *console.TextSurface, cursor *console.Cursor, bufs Buffers) *Terminal {
	t := &Terminal{
		surface: surface,
		cursor:  cursor,
	}

	t.width, t.height = surface.Dimensions()
	t.streams[StreamInput] = NewStreamBuffer(bufs.Input)
	t.streams[StreamOutput] = NewStreamBuffer(bufs.Output)
	t.streams[StreamError] = NewStreamBuffer(bufs.Error)

	return t
}

// Init rewinds the stream buffers, binds kbd and flags it so that the
// keyboard driver knows the terminal consumes its events.
func (t *Terminal) Init(kbd *keyboard.State) {
	for _, s := range t.streams {
		s.Rewind()
	}

	t.kbd = kbd
	t.kbd.Flags |= keyboard.FlagTerminalActive

	if t.state == StateCreated {
		t.state = StateBound
	}
}

// InitVideo binds the surface to fb, resets the cursor and colors and makes
// the terminal ready for output.
func (t *Terminal) InitVideo(fb []byte) *kernel.Error {
	if t.state == StateCreated {
		return errNotBound
	}

	t.surface.Init(fb)
	t.state = StateReady
	return nil
}

// State returns the initialization state.
func (t *Terminal) State() State {
	return t.state
}

// Surface returns the text surface driven by the terminal.
func (t *Terminal) Surface() *console.TextSurface {
	return t.surface
}

// Stream returns the buffer backing the requested stream.
func (t *Terminal) Stream(s Stream) *StreamBuffer {
	return t.streams[s]
}

// CursorPosition returns the logical cursor row and column.
func (t *Terminal) CursorPosition() (uint32, uint32) {
	return t.surface.Position()
}

// OutWrite displays ch and records it in the output stream. '\n' moves to the
// start of the next line and '\r' to the start of the current one; neither is
// recorded.
func (t *Terminal) OutWrite(ch byte) *kernel.Error {
	return t.write(ch, t.streams[StreamOutput])
}

// ErrWrite behaves like OutWrite but records ch in the error stream.
func (t *Terminal) ErrWrite(ch byte) *kernel.Error {
	return t.write(ch, t.streams[StreamError])
}

func (t *Terminal) write(ch byte, buf *StreamBuffer) *kernel.Error {
	if t.state != StateReady {
		return errNotReady
	}

	switch ch {
	case '\n':
		row, _ := t.surface.Position()
		t.surface.SetPosition(t.nextRow(row), 0)
	case '\r':
		// Only the logical column moves; the hardware cursor catches up
		// on the next write.
		row, _ := t.surface.Position()
		t.surface.SetPosition(row, 0)
		return nil
	default:
		t.put(ch, buf)
	}

	t.syncCursor()
	return nil
}

// put writes ch at the cursor, wrapping to the next line when the cursor sits
// past the last column, and records ch in buf.
func (t *Terminal) put(ch byte, buf *StreamBuffer) {
	row, col := t.surface.Position()
	if col >= t.width {
		row, col = t.nextRow(row), 0
	}

	t.surface.Put(row, col, ch)
	buf.Push(ch)
	t.surface.SetPosition(row, col+1)
}

// nextRow returns the row below row, scrolling the surface when row is the
// last visible one.
func (t *Terminal) nextRow(row uint32) uint32 {
	if row+1 < t.height {
		return row + 1
	}

	t.surface.ScrollUp()
	return t.height - 1
}

func (t *Terminal) syncCursor() {
	row, col := t.surface.Position()
	t.cursor.MoveTo(row, col)
}

// KeyboardInput handles the event currently described by the bound keyboard
// state. Only key presses are processed: Enter starts a new line, Backspace
// erases the last typed character and visible keys are echoed and recorded
// in the input stream. Other keys are ignored.
func (t *Terminal) KeyboardInput() {
	if t.state != StateReady || !t.kbd.Pressed() {
		return
	}

	switch t.kbd.Code {
	case keyboard.KeyEnter:
		t.OutWrite('\n')
	case keyboard.KeyBackspace:
		t.backspace()
	default:
		if t.kbd.Visible() {
			t.put(t.kbd.Char, t.streams[StreamInput])
			t.syncCursor()
		}
	}
}

// backspace steps the cursor back one cell, erases it and drops the last
// byte of the input stream. Nothing happens when the input stream is empty.
func (t *Terminal) backspace() {
	in := t.streams[StreamInput]
	if in.Offset() == 0 {
		return
	}

	row, col := t.surface.Position()
	switch {
	case col > 0:
		col--
	case row > 0:
		row, col = row-1, t.width-1
	}

	t.surface.Put(row, col, console.BlankGlyph)
	t.surface.SetPosition(row, col)
	in.Pop()
	t.syncCursor()
}

// ClearOutput clears the output stream and the screen and homes the cursor.
func (t *Terminal) ClearOutput() *kernel.Error {
	if t.state != StateReady {
		return errNotReady
	}

	t.streams[StreamOutput].Clear()
	t.surface.Clear()
	t.syncCursor()
	return nil
}

// ClearInput clears the input stream. The keyboard state is left untouched.
func (t *Terminal) ClearInput() {
	t.streams[StreamInput].Clear()
}

// ClearError clears the error stream.
func (t *Terminal) ClearError() {
	t.streams[StreamError].Clear()
}

// LastKey returns the logical code of the last keyboard event.
func (t *Terminal) LastKey() keyboard.Code {
	if t.kbd == nil {
		return keyboard.KeyNone
	}

	return t.kbd.Code
}

// CopyInput copies the first count bytes of the input stream into dst. The
// caller must ensure that count does not exceed the input capacity or
// len(dst).
func (t *Terminal) CopyInput(dst []byte, count uint32) {
	t.streams[StreamInput].CopyOut(dst, count)
}

// Write implements io.Writer for program output.
func (t *Terminal) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := t.OutWrite(b); err != nil {
			return i, err
		}
	}

	return len(p), nil
}

// WriteByte implements io.ByteWriter for program output.
func (t *Terminal) WriteByte(b byte) error {
	return kernel.AsError(t.OutWrite(b))
}

// ErrWriter returns an io.Writer that sends its output to the error stream.
func (t *Terminal) ErrWriter() io.Writer {
	return errWriter{t}
}

type errWriter struct {
	t *Terminal
}

func (w errWriter) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := w.t.ErrWrite(b); err != nil {
			return i, err
		}
	}

	return len(p), nil
}

// DriverName returns the name of this driver.
func (t *Terminal) DriverName() string {
	return "tty"
}

// DriverVersion returns the version of this driver.
func (t *Terminal) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit reports the stream capacities.
func (t *Terminal) DriverInit(w io.Writer) *kernel.Error {
	if t.state != StateReady {
		return errNotReady
	}

	kfmt.Fprintf(w, "streams in=%d out=%d err=%d\n",
		t.streams[StreamInput].Cap(),
		t.streams[StreamOutput].Cap(),
		t.streams[StreamError].Cap(),
	)
	return nil
}
