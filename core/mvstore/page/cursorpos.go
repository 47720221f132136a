package page

// CursorPos is one frame of a traversal path: a page, the index within it,
// and the frame for the parent page. Chained frames describe the full path
// from the root down, so a cursor (or an update) can walk back up after
// descending.
type CursorPos[K, V any] struct {
	// Page is the page at this level of the path.
	Page Page[K, V]

	// Index is the index of the key or child within the page. A negative
	// value is the bitwise complement of the insertion point.
	Index int

	// Parent is the path frame one level up, nil at the root.
	Parent *CursorPos[K, V]
}

// NewCursorPos creates a path frame on top of parent.
func NewCursorPos[K, V any](p Page[K, V], index int, parent *CursorPos[K, V]) *CursorPos[K, V] {
	return &CursorPos[K, V]{Page: p, Index: index, Parent: parent}
}
