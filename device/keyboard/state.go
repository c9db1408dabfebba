// Package keyboard holds the shared keyboard state record and a PS/2 scan
// code decoder that fills it in.
package keyboard

// Flags describe the most recent keyboard event.
type Flags uint8

const (
	// FlagPressed is set for key press events and cleared for releases.
	FlagPressed Flags = 1 << iota

	// FlagVisible is set when Char holds a printable character.
	FlagVisible

	// FlagShift is set while either shift key is held.
	FlagShift

	// FlagTerminalActive is set by the terminal once it consumes
	// keyboard events.
	FlagTerminalActive
)

// Code is the decoded identity of a key.
type Code uint8

// Logical key codes. Keys that produce a printable character share
// KeyPrintable; the character itself is stored in State.Char.
const (
	KeyNone Code = iota
	KeyEscape
	KeyBackspace
	KeyTab
	KeyEnter
	KeyLeftCtrl
	KeyLeftShift
	KeyRightShift
	KeyLeftAlt
	KeyCapsLock
	KeyPrintable
	KeyUnknown
)

var codeNames = [...]string{
	KeyNone:       "none",
	KeyEscape:     "escape",
	KeyBackspace:  "backspace",
	KeyTab:        "tab",
	KeyEnter:      "enter",
	KeyLeftCtrl:   "lctrl",
	KeyLeftShift:  "lshift",
	KeyRightShift: "rshift",
	KeyLeftAlt:    "lalt",
	KeyCapsLock:   "capslock",
	KeyPrintable:  "printable",
	KeyUnknown:    "unknown",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown"
}

// State is the keyboard record shared between the decoder, which writes it,
// and the terminal, which only reads it.
type State struct {
	// Scan is the raw scan code of the last event.
	Scan uint8

	// Code is the logical key identity of the last event.
	Code Code

	// Char is the printable character for the last event, if any.
	Char byte

	Flags Flags
}

// Pressed reports whether the last event was a key press.
func (s *State) Pressed() bool {
	return s.Flags&FlagPressed != 0
}

// Visible reports whether the last event produced a printable character.
func (s *State) Visible() bool {
	return s.Flags&FlagVisible != 0
}
