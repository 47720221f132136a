package page

import (
	"github.com/sergeyzolotukhin/h2database/core/mvstore"
	"github.com/sergeyzolotukhin/h2database/core/mvstore/compress"
)

// Map is the handle a page keeps to its owning map: identity, codecs, store
// access and the policy flags that drive memory accounting. The map level
// itself (versioning, root pointers, commit sequencing) lives outside this
// package.
type Map[K, V any] interface {
	// ID returns the map id recorded in every serialized page.
	ID() int

	KeyType() mvstore.DataType[K]
	ValueType() mvstore.DataType[V]

	// Store returns the owning store's capability surface.
	Store() Store

	// IsPersistent reports whether pages of this map are ever written to
	// durable storage. Non-persistent maps bypass memory accounting.
	IsPersistent() bool

	// IsMemoryEstimationAllowed reports whether per-entry memory deltas may
	// be approximated from existing estimates instead of re-evaluated.
	IsMemoryEstimationAllowed() bool

	// IsSingleWriter reports whether the map uses single-writer semantics;
	// passed through to removal and serialization accounting.
	IsSingleWriter() bool

	// ReadPage materializes the page stored at the given position.
	ReadPage(pos uint64) (Page[K, V], error)

	// ChildPageCount returns the number of children of p that carry data.
	// Ordinary maps return the raw child page count.
	ChildPageCount(p Page[K, V]) int

	EvaluateMemoryForKey(key K) int
	EvaluateMemoryForValue(value V) int
	EvaluateMemoryForKeys(keys []K, count int) int
	EvaluateMemoryForValues(values []V, count int) int
}

// Store is the slice of the owning store the page layer needs: compression
// capability and chunk-occupancy accounting for removed durable pages.
type Store interface {
	// CompressionLevel returns 0 for no compression, 1 for the fast
	// compressor, anything higher for the high-ratio compressor.
	CompressionLevel() int
	CompressorFast() compress.Compressor
	CompressorHigh() compress.Compressor

	// AccountForRemovedPage records that the durable page at pos was removed
	// at the given version, so chunk occupancy can be reclaimed safely under
	// MVCC. pageNo is -1 when the page was never materialized.
	AccountForRemovedPage(pos uint64, version int64, singleWriter bool, pageNo int)
}

// SerializationManager is supplied by the persistence pass. It owns the
// output buffer representing the chunk being written, hands out sequential
// page numbers, converts buffer coordinates into encoded positions and is
// notified after each page is serialized.
type SerializationManager interface {
	Buffer() *mvstore.WriteBuffer

	// NextPageNumber returns the 0-based sequential number of the next page
	// within the chunk.
	NextPageNumber() int

	// PagePosition encodes the final position of a page serialized at start
	// with the given length and leaf/node type.
	PagePosition(mapID, start, pageLength, pageType int) uint64

	// OnPageSerialized is invoked once per page, after its position has been
	// published. wasDeleted is set when the page was concurrently removed
	// while being stored, so live bookkeeping must treat it as already gone.
	OnPageSerialized(p PageInfo, wasDeleted bool, pageLength int, singleWriter bool)
}

// PageInfo is the non-generic view of a page exposed to serialization
// callbacks and caches.
type PageInfo interface {
	Pos() uint64
	PageNo() int
	MapID() int
	IsLeaf() bool
	Memory() int
}
