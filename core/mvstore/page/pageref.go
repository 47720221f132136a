package page

import (
	"fmt"

	"github.com/sergeyzolotukhin/h2database/core/mvstore"
)

// PageReference is a parent's handle to one child: the resident page object
// when one is held, the encoded position of its durable image, and the entry
// count of the child's subtree. Either the page or the position may be unset,
// never both, except for the empty placeholder.
type PageReference[K, V any] struct {
	page  Page[K, V]
	pos   uint64
	count int64
}

// EmptyRef returns a placeholder reference to an empty (non-existent) page.
func EmptyRef[K, V any]() *PageReference[K, V] {
	return &PageReference[K, V]{}
}

// NewPageReference creates a reference to a resident page.
func NewPageReference[K, V any](p Page[K, V]) *PageReference[K, V] {
	return &PageReference[K, V]{page: p, pos: p.Pos(), count: p.TotalCount()}
}

// NewPageReferencePos creates a reference to a durable page that is not
// resident in memory.
func NewPageReferencePos[K, V any](pos uint64, count int64) *PageReference[K, V] {
	return &PageReference[K, V]{pos: pos, count: count}
}

// Page returns the resident page object, or nil.
func (r *PageReference[K, V]) Page() Page[K, V] {
	return r.page
}

// Pos returns the encoded position of the referenced page's durable image,
// or 0 if the page has not been saved.
func (r *PageReference[K, V]) Pos() uint64 {
	return r.pos
}

// Count returns the number of entries in the referenced subtree.
func (r *PageReference[K, V]) Count() int64 {
	return r.count
}

func (r *PageReference[K, V]) isEmpty() bool {
	return r.page == nil && r.pos == 0
}

// clearPageReference drops the resident page once it is durable, so the
// subtree can be evicted from memory and re-read on demand. Incomplete pages
// are kept: they have descendants that exist nowhere else yet.
func (r *PageReference[K, V]) clearPageReference() {
	if r.page == nil {
		return
	}
	r.page.ReleaseSavedPages()
	pagePos := r.page.Pos()
	if mvstore.IsPageSaved(pagePos) {
		r.pos = pagePos
		r.page = nil
	}
}

// resetPos refreshes the recorded position from the resident page after it
// has been saved.
func (r *PageReference[K, V]) resetPos() {
	p := r.page
	if p != nil && p.IsSaved() {
		r.pos = p.Pos()
	}
}

func (r *PageReference[K, V]) String() string {
	return fmt.Sprintf("Cnt: %d, pos: %d, page: %v", r.count, r.pos, r.page)
}
