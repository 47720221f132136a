package mvstore

// DataType is the codec a map supplies for its keys or values: ordering,
// binary representation and per-element memory estimation.
type DataType[T any] interface {
	// Compare returns a negative number if a sorts before b, zero if they
	// are equal and a positive number otherwise.
	Compare(a, b T) int

	// GetMemory estimates the in-memory footprint of v in bytes.
	GetMemory(v T) int

	// Write appends count elements of storage to the buffer.
	Write(buf *WriteBuffer, storage []T, count int)

	// Read decodes count elements from the buffer into storage.
	Read(buf *ReadBuffer, storage []T, count int) error
}

// BinarySearch performs an ordered binary search over the first size
// elements of storage, seeded with initialGuess from a previous search.
// The seed only shortcuts sequential access patterns; the result is
// identical to an unseeded search. A non-negative result is the index of an
// exact match; otherwise the result is the bitwise complement of the
// insertion point.
func BinarySearch[T any](dt DataType[T], key T, storage []T, size, initialGuess int) int {
	low, high := 0, size-1
	x := initialGuess - 1
	if x < 0 || x > high {
		x = high >> 1
	}
	for low <= high {
		c := dt.Compare(key, storage[x])
		switch {
		case c > 0:
			low = x + 1
		case c < 0:
			high = x - 1
		default:
			return x
		}
		x = (low + high) >> 1
	}
	return ^low
}
