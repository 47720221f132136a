package mvstore

import (
	"encoding/binary"
	"io"
)

// ReadBuffer is a bounded little-endian reader over a byte slice. A limit
// below the slice length restrains codecs that would otherwise consume the
// whole remainder of the buffer.
type ReadBuffer struct {
	buf   []byte
	pos   int
	limit int
}

// NewReadBuffer wraps b with the limit set to its full length.
func NewReadBuffer(b []byte) *ReadBuffer {
	return &ReadBuffer{buf: b, limit: len(b)}
}

// Position returns the current read position.
func (r *ReadBuffer) Position() int {
	return r.pos
}

// SetPosition moves the read position.
func (r *ReadBuffer) SetPosition(pos int) {
	r.pos = pos
}

// SetLimit caps how far reads may advance. A limit beyond the underlying
// slice is clamped.
func (r *ReadBuffer) SetLimit(limit int) {
	if limit > len(r.buf) {
		limit = len(r.buf)
	}
	r.limit = limit
}

// Remaining returns the number of readable bytes before the limit.
func (r *ReadBuffer) Remaining() int {
	return r.limit - r.pos
}

// take returns the next n bytes without copying. The count is compared
// against the remaining bytes rather than added to the position, so sizes
// decoded from untrusted input cannot overflow past the bounds check.
func (r *ReadBuffer) take(n int) ([]byte, error) {
	if n < 0 || n > r.limit-r.pos {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadByte reads a single byte.
func (r *ReadBuffer) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian uint16.
func (r *ReadBuffer) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32 reads a little-endian uint32.
func (r *ReadBuffer) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64 reads a little-endian uint64.
func (r *ReadBuffer) ReadUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadUvarint reads an unsigned varint.
func (r *ReadBuffer) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:r.limit])
	if n <= 0 {
		return 0, io.ErrUnexpectedEOF
	}
	r.pos += n
	return v, nil
}

// ReadVarint reads a zig-zag encoded signed varint.
func (r *ReadBuffer) ReadVarint() (int64, error) {
	v, n := binary.Varint(r.buf[r.pos:r.limit])
	if n <= 0 {
		return 0, io.ErrUnexpectedEOF
	}
	r.pos += n
	return v, nil
}

// ReadBytes returns the next n bytes. The returned slice aliases the
// underlying buffer.
func (r *ReadBuffer) ReadBytes(n int) ([]byte, error) {
	return r.take(n)
}
