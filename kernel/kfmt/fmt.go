// Package kfmt provides allocation-free formatted output for the kernel. It
// can be used before the console is up: output produced while no sink is set
// is kept in a small ring buffer and replayed once SetOutputSink is called.
package kfmt

import (
	"io"
	"unsafe"
)

// numBufSize bounds the width of a single formatted number.
const numBufSize = 32

const digits = "0123456789abcdef"

var (
	errMissingArg = []byte("%!(MISSING)")
	errBadArgType = []byte("%!(BADTYPE)")
	errBadVerb    = []byte("%!(BADVERB)")
	errNoVerb     = []byte("%!(NOVERB)")
	errExtraArg   = []byte("%!(EXTRA)")
	trueValue     = []byte("true")
	falseValue    = []byte("false")

	numBuf [numBufSize]byte

	// oneByte is a shared buffer for emitting single characters without
	// slicing the format string (which would escape to the heap).
	oneByte = []byte{0}

	// earlyBuf captures output produced before an output sink is set.
	earlyBuf earlyRing

	// drainBuf is used for replaying earlyBuf into a new sink.
	drainBuf [64]byte

	outputSink io.Writer
)

// SetOutputSink makes w the target for Printf and replays any output that was
// captured while no sink was set.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w == nil {
		return
	}

	for {
		n, err := earlyBuf.Read(drainBuf[:])
		if n > 0 {
			w.Write(drainBuf[:n])
		}
		if err != nil {
			return
		}
	}
}

// GetOutputSink returns the current target for Printf.
func GetOutputSink() io.Writer {
	return outputSink
}

// Printf formats according to a format specifier and writes to the active
// output sink. The following verbs are supported:
//
//	%s  string or []byte
//	%c  a single byte or an ASCII rune
//	%d  base 10 integer, space padded
//	%x  base 16 integer (lower-case), zero padded
//	%o  base 8 integer, zero padded
//	%t  "true" or "false"
//	%%  a literal percent sign
//
// An optional decimal width may precede the verb. Printf never allocates and
// does not look for io.Stringer implementations.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes its output to w. A nil w routes the
// output to the early ring buffer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		argIndex int
		width    int
		fmtLen   = len(format)
	)

	for i := 0; i < fmtLen; i++ {
		if format[i] != '%' {
			writeByte(w, format[i])
			continue
		}

		width = 0
		for i++; i < fmtLen && format[i] >= '0' && format[i] <= '9'; i++ {
			width = width*10 + int(format[i]-'0')
		}

		if i == fmtLen {
			doWrite(w, errNoVerb)
			break
		}

		verb := format[i]
		if verb == '%' {
			writeByte(w, '%')
			continue
		}

		if argIndex >= len(args) {
			doWrite(w, errMissingArg)
			continue
		}

		arg := args[argIndex]
		argIndex++

		switch verb {
		case 'd':
			fmtInt(w, arg, 10, width)
		case 'x':
			fmtInt(w, arg, 16, width)
		case 'o':
			fmtInt(w, arg, 8, width)
		case 's':
			fmtString(w, arg, width)
		case 'c':
			fmtChar(w, arg)
		case 't':
			fmtBool(w, arg)
		default:
			doWrite(w, errBadVerb)
		}
	}

	for ; argIndex < len(args); argIndex++ {
		doWrite(w, errExtraArg)
	}
}

func fmtBool(w io.Writer, v interface{}) {
	b, ok := v.(bool)
	switch {
	case !ok:
		doWrite(w, errBadArgType)
	case b:
		doWrite(w, trueValue)
	default:
		doWrite(w, falseValue)
	}
}

func fmtChar(w io.Writer, v interface{}) {
	switch ch := v.(type) {
	case byte:
		writeByte(w, ch)
	case rune:
		if ch < 0 || ch > 0x7f {
			ch = '?'
		}
		writeByte(w, byte(ch))
	default:
		doWrite(w, errBadArgType)
	}
}

func fmtString(w io.Writer, v interface{}, width int) {
	switch s := v.(type) {
	case string:
		pad(w, ' ', width-len(s))
		for i := 0; i < len(s); i++ {
			writeByte(w, s[i])
		}
	case []byte:
		pad(w, ' ', width-len(s))
		doWrite(w, s)
	default:
		doWrite(w, errBadArgType)
	}
}

func pad(w io.Writer, ch byte, count int) {
	for ; count > 0; count-- {
		writeByte(w, ch)
	}
}

// fmtInt writes v using the requested base. Base 10 values are padded with
// spaces and the sign sits next to the digits; base 8 and 16 values are zero
// padded after the sign.
func fmtInt(w io.Writer, v interface{}, base uint64, width int) {
	var (
		uval uint64
		neg  bool
	)

	switch n := v.(type) {
	case uint8:
		uval = uint64(n)
	case uint16:
		uval = uint64(n)
	case uint32:
		uval = uint64(n)
	case uint64:
		uval = n
	case uint:
		uval = uint64(n)
	case uintptr:
		uval = uint64(n)
	case int8:
		uval, neg = abs(int64(n))
	case int16:
		uval, neg = abs(int64(n))
	case int32:
		uval, neg = abs(int64(n))
	case int64:
		uval, neg = abs(n)
	case int:
		uval, neg = abs(int64(n))
	default:
		doWrite(w, errBadArgType)
		return
	}

	if width > numBufSize-1 {
		width = numBufSize - 1
	}

	pos := numBufSize
	for {
		pos--
		numBuf[pos] = digits[uval%base]
		uval /= base
		if uval == 0 {
			break
		}
	}

	if base == 10 {
		if neg {
			pos--
			numBuf[pos] = '-'
		}
		for numBufSize-pos < width {
			pos--
			numBuf[pos] = ' '
		}
	} else {
		signLen := 0
		if neg {
			signLen = 1
		}
		for numBufSize-pos+signLen < width {
			pos--
			numBuf[pos] = '0'
		}
		if neg {
			pos--
			numBuf[pos] = '-'
		}
	}

	doWrite(w, numBuf[pos:])
}

func abs(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}

func writeByte(w io.Writer, b byte) {
	oneByte[0] = b
	doWrite(w, oneByte)
}

// doWrite hides p from escape analysis. Without it the compiler cannot tell
// that p does not escape through the io.Writer interface call and every
// Printf would allocate.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
		return
	}

	earlyBuf.Write(p)
}

// noEscape hides a pointer from escape analysis (see runtime/stubs.go).
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
