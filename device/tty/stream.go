package tty

import "gopherterm/kernel/mem"

// Stream identifies one of the terminal byte streams.
type Stream uint8

// The terminal streams.
const (
	StreamInput Stream = iota
	StreamOutput
	StreamError
	streamCount
)

// String implements fmt.Stringer.
func (s Stream) String() string {
	switch s {
	case StreamInput:
		return "input"
	case StreamOutput:
		return "output"
	case StreamError:
		return "error"
	default:
		return "unknown"
	}
}

// StreamBuffer records the history of a stream in caller supplied storage.
// Writes past the end wrap around to index 0 and overwrite the oldest bytes;
// there is no read cursor and readers copy from index 0.
type StreamBuffer struct {
	data   []byte
	offset uint32
}

// NewStreamBuffer returns a buffer backed by storage. The capacity of the
// buffer is len(storage) and must be non-zero.
func NewStreamBuffer(storage []byte) *StreamBuffer {
	return &StreamBuffer{data: storage}
}

// Cap returns the buffer capacity.
func (b *StreamBuffer) Cap() uint32 {
	return uint32(len(b.data))
}

// Offset returns the index of the next write.
func (b *StreamBuffer) Offset() uint32 {
	return b.offset
}

// Bytes returns the backing storage.
func (b *StreamBuffer) Bytes() []byte {
	return b.data
}

// Push appends v, wrapping to index 0 when the buffer is full.
func (b *StreamBuffer) Push(v byte) {
	if b.offset == uint32(len(b.data)) {
		b.offset = 0
	}

	b.data[b.offset] = v
	b.offset++
}

// Pop drops the most recently pushed byte. The offset never goes below 0 and
// the byte at the new offset is zeroed.
func (b *StreamBuffer) Pop() {
	if b.offset > 0 {
		b.offset--
	}

	b.data[b.offset] = 0
}

// CopyOut copies count bytes starting at index 0 into dst. The caller must
// ensure that count does not exceed Cap() or len(dst).
func (b *StreamBuffer) CopyOut(dst []byte, count uint32) {
	copy(dst[:count], b.data[:count])
}

// Rewind moves the write offset back to 0 without touching the contents.
func (b *StreamBuffer) Rewind() {
	b.offset = 0
}

// Clear rewinds the buffer and zero fills its storage.
func (b *StreamBuffer) Clear() {
	b.offset = 0
	mem.Memset(b.data, 0)
}
