package mvstore

import (
	"cmp"
	"fmt"
	"io"
)

// Int64Type is a DataType for signed 64-bit keys or values, stored as
// zig-zag varints.
type Int64Type struct{}

func (Int64Type) Compare(a, b int64) int {
	return cmp.Compare(a, b)
}

func (Int64Type) GetMemory(int64) int {
	return 8
}

func (Int64Type) Write(buf *WriteBuffer, storage []int64, count int) {
	for i := 0; i < count; i++ {
		buf.PutVarint(storage[i])
	}
}

func (Int64Type) Read(buf *ReadBuffer, storage []int64, count int) error {
	for i := 0; i < count; i++ {
		v, err := buf.ReadVarint()
		if err != nil {
			return fmt.Errorf("reading int64 element %d of %d: %w", i, count, err)
		}
		storage[i] = v
	}
	return nil
}

// StringType is a DataType for string keys or values, stored as
// length-prefixed bytes.
type StringType struct{}

func (StringType) Compare(a, b string) int {
	return cmp.Compare(a, b)
}

func (StringType) GetMemory(v string) int {
	// string header plus payload
	return 16 + len(v)
}

func (StringType) Write(buf *WriteBuffer, storage []string, count int) {
	for i := 0; i < count; i++ {
		buf.PutUvarint(uint64(len(storage[i])))
		buf.PutBytes([]byte(storage[i]))
	}
}

func (StringType) Read(buf *ReadBuffer, storage []string, count int) error {
	for i := 0; i < count; i++ {
		n, err := buf.ReadUvarint()
		if err != nil {
			return fmt.Errorf("reading string length, element %d of %d: %w", i, count, err)
		}
		if n > uint64(buf.Remaining()) {
			return fmt.Errorf("reading string payload, element %d of %d: length %d exceeds %d remaining: %w",
				i, count, n, buf.Remaining(), io.ErrUnexpectedEOF)
		}
		b, err := buf.ReadBytes(int(n))
		if err != nil {
			return fmt.Errorf("reading string payload, element %d of %d: %w", i, count, err)
		}
		storage[i] = string(b)
	}
	return nil
}
