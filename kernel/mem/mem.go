// Package mem provides memory block sizes and fill helpers that work without
// the Go allocator.
package mem

// Size represents a memory block size in bytes.
type Size uint64

// Common memory block sizes.
const (
	Byte Size = 1
	Kb        = 1024 * Byte
	Mb        = 1024 * Kb
	Gb        = 1024 * Mb
)

// Memset sets every byte of buf to value. Instead of a byte loop it makes
// log2(len(buf)) copy calls.
func Memset(buf []byte, value byte) {
	if len(buf) == 0 {
		return
	}

	buf[0] = value
	fill(buf, 1)
}

// MemsetPattern repeats pattern across buf. If len(buf) is not a multiple of
// len(pattern) the last copy is truncated.
func MemsetPattern(buf, pattern []byte) {
	if n := copy(buf, pattern); n > 0 {
		fill(buf, n)
	}
}

// fill extends the first n bytes of buf over the rest of it.
func fill(buf []byte, n int) {
	for ; n < len(buf); n *= 2 {
		copy(buf[n:], buf[:n])
	}
}
