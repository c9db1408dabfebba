package kfmt

import "io"

// earlyRingSize must be a power of 2. 2048 bytes hold a full 80x25 screen of
// boot messages.
const earlyRingSize = 2048

// earlyRing buffers kernel output until a console sink is available. When
// full, the oldest bytes are discarded.
type earlyRing struct {
	buf  [earlyRingSize]byte
	head int
	size int
}

// Write appends p to the ring, overwriting the oldest bytes when full.
func (r *earlyRing) Write(p []byte) (int, error) {
	for _, b := range p {
		r.buf[(r.head+r.size)&(earlyRingSize-1)] = b
		if r.size == earlyRingSize {
			r.head = (r.head + 1) & (earlyRingSize - 1)
			continue
		}
		r.size++
	}

	return len(p), nil
}

// Read consumes up to len(p) buffered bytes. It returns io.EOF once the ring
// is empty.
func (r *earlyRing) Read(p []byte) (int, error) {
	if r.size == 0 {
		return 0, io.EOF
	}

	n := 0
	for ; n < len(p) && r.size > 0; n++ {
		p[n] = r.buf[r.head]
		r.head = (r.head + 1) & (earlyRingSize - 1)
		r.size--
	}

	return n, nil
}

// Len returns the number of buffered bytes.
func (r *earlyRing) Len() int {
	return r.size
}
