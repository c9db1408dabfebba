package keyboard

const releaseBit uint8 = 0x80

// Make codes of the keys without a printable character.
const (
	ScanEscape     uint8 = 0x01
	ScanBackspace  uint8 = 0x0e
	ScanTab        uint8 = 0x0f
	ScanEnter      uint8 = 0x1c
	ScanLeftCtrl   uint8 = 0x1d
	ScanLeftShift  uint8 = 0x2a
	ScanRightShift uint8 = 0x36
	ScanLeftAlt    uint8 = 0x38
	ScanCapsLock   uint8 = 0x3a
)

// set1 maps PS/2 scan code set 1 make codes to unshifted characters. Zero
// entries have no printable character.
var set1 = [0x3a]byte{
	0x02: '1', '2', '3', '4', '5', '6', '7', '8', '9', '0', '-', '=',
	0x10: 'q', 'w', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p', '[', ']',
	0x1e: 'a', 's', 'd', 'f', 'g', 'h', 'j', 'k', 'l', ';', '\'', '`',
	0x2b: '\\', 'z', 'x', 'c', 'v', 'b', 'n', 'm', ',', '.', '/',
	0x39: ' ',
}

// set1Shift holds the shifted characters for set1.
var set1Shift = [0x3a]byte{
	0x02: '!', '@', '#', '$', '%', '^', '&', '*', '(', ')', '_', '+',
	0x10: 'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I', 'O', 'P', '{', '}',
	0x1e: 'A', 'S', 'D', 'F', 'G', 'H', 'J', 'K', 'L', ':', '"', '~',
	0x2b: '|', 'Z', 'X', 'C', 'V', 'B', 'N', 'M', '<', '>', '?',
	0x39: ' ',
}

// special maps non-printable make codes to logical codes. A zero entry means
// the key is not special.
var special = [0x3b]Code{
	ScanEscape:     KeyEscape,
	ScanBackspace:  KeyBackspace,
	ScanTab:        KeyTab,
	ScanEnter:      KeyEnter,
	ScanLeftCtrl:   KeyLeftCtrl,
	ScanLeftShift:  KeyLeftShift,
	ScanRightShift: KeyRightShift,
	ScanLeftAlt:    KeyLeftAlt,
	ScanCapsLock:   KeyCapsLock,
}

// Decoder turns set 1 scan codes into State updates. It tracks shift and caps
// lock so that Char reflects the active modifiers.
type Decoder struct {
	state *State

	leftShift, rightShift bool
	capsLock              bool
}

// NewDecoder returns a decoder that writes into state.
func NewDecoder(state *State) *Decoder {
	return &Decoder{state: state}
}

// Feed decodes a single scan code. Extended (0xE0 prefixed) sequences are
// reported as KeyUnknown.
func (d *Decoder) Feed(scan uint8) {
	st := d.state
	pressed := scan&releaseBit == 0
	key := scan &^ releaseBit

	st.Scan = scan
	st.Char = 0
	st.Flags &= FlagTerminalActive
	if pressed {
		st.Flags |= FlagPressed
	}

	var code Code
	if int(key) < len(special) {
		code = special[key]
	}

	switch {
	case code != KeyNone:
		st.Code = code
		switch code {
		case KeyLeftShift:
			d.leftShift = pressed
		case KeyRightShift:
			d.rightShift = pressed
		case KeyCapsLock:
			if pressed {
				d.capsLock = !d.capsLock
			}
		}
	case int(key) < len(set1) && set1[key] != 0:
		st.Code = KeyPrintable
		st.Char = d.translate(key)
		st.Flags |= FlagVisible
	default:
		st.Code = KeyUnknown
	}

	if d.leftShift || d.rightShift {
		st.Flags |= FlagShift
	}
}

func (d *Decoder) translate(key uint8) byte {
	shift := d.leftShift || d.rightShift
	ch := set1[key]
	if ch >= 'a' && ch <= 'z' && d.capsLock {
		shift = !shift
	}

	if shift {
		return set1Shift[key]
	}
	return ch
}

// Release returns the break code for the make code scan.
func Release(scan uint8) uint8 {
	return scan | releaseBit
}

// ScanCode returns the make code of the key that produces ch and whether
// shift must be held while pressing it.
func ScanCode(ch byte) (scan uint8, shift, ok bool) {
	if ch == 0 {
		return 0, false, false
	}

	for key := range set1 {
		switch ch {
		case set1[key]:
			return uint8(key), false, true
		case set1Shift[key]:
			return uint8(key), true, true
		}
	}

	return 0, false, false
}
