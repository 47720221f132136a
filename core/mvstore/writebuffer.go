package mvstore

import "encoding/binary"

const minWriteBufferSize = 1024

// WriteBuffer is an auto-growing little-endian buffer with an explicit write
// position. The position can be moved backwards to patch fields whose values
// are only known after the surrounding content has been written (page length,
// check value, child position tables).
type WriteBuffer struct {
	buf []byte
	pos int
}

// NewWriteBuffer creates a buffer with the given initial capacity.
func NewWriteBuffer(capacity int) *WriteBuffer {
	if capacity < minWriteBufferSize {
		capacity = minWriteBufferSize
	}
	return &WriteBuffer{buf: make([]byte, capacity)}
}

// Position returns the current write position.
func (w *WriteBuffer) Position() int {
	return w.pos
}

// SetPosition moves the write position. Moving backwards is allowed for
// patching; bytes between the new position and the previous high-water mark
// stay in place until overwritten.
func (w *WriteBuffer) SetPosition(pos int) {
	if pos > len(w.buf) {
		w.grow(pos)
	}
	w.pos = pos
}

// Bytes returns the written content up to the current position. The returned
// slice aliases the internal buffer.
func (w *WriteBuffer) Bytes() []byte {
	return w.buf[:w.pos]
}

func (w *WriteBuffer) grow(end int) {
	size := 2 * len(w.buf)
	if size < end {
		size = end + minWriteBufferSize
	}
	buf := make([]byte, size)
	copy(buf, w.buf)
	w.buf = buf
}

// next reserves n bytes at the current position and advances past them.
func (w *WriteBuffer) next(n int) []byte {
	end := w.pos + n
	if end > len(w.buf) {
		w.grow(end)
	}
	b := w.buf[w.pos:end]
	w.pos = end
	return b
}

// PutByte appends a single byte.
func (w *WriteBuffer) PutByte(v byte) {
	w.next(1)[0] = v
}

// PutUint16 appends a little-endian uint16.
func (w *WriteBuffer) PutUint16(v uint16) {
	binary.LittleEndian.PutUint16(w.next(2), v)
}

// PutUint32 appends a little-endian uint32.
func (w *WriteBuffer) PutUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.next(4), v)
}

// PutUint64 appends a little-endian uint64.
func (w *WriteBuffer) PutUint64(v uint64) {
	binary.LittleEndian.PutUint64(w.next(8), v)
}

// PutUvarint appends an unsigned varint.
func (w *WriteBuffer) PutUvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	copy(w.next(n), tmp[:n])
}

// PutVarint appends a zig-zag encoded signed varint.
func (w *WriteBuffer) PutVarint(v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	copy(w.next(n), tmp[:n])
}

// PutBytes appends raw bytes.
func (w *WriteBuffer) PutBytes(p []byte) {
	copy(w.next(len(p)), p)
}
