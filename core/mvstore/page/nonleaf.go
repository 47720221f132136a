package page

import (
	"fmt"
	"math"
	"strings"

	"github.com/sergeyzolotukhin/h2database/core/mvstore"
)

// NonLeaf is an internal page holding one more child reference than keys.
// The child at a given index owns the keys smaller than the key at the same
// index.
//
// A non-leaf created by CopyTo with erased child references starts
// incomplete: its children are empty placeholders to be filled in while a
// subtree is rebuilt, and it only serializes itself once SetComplete has
// been called.
type NonLeaf[K, V any] struct {
	page[K, V]
	children []*PageReference[K, V]

	// totalCount is the sum of the entry counts of all children.
	totalCount int64

	incomplete bool
}

func (n *NonLeaf[K, V]) IsLeaf() bool { return false }

func (n *NonLeaf[K, V]) nodeType() int { return mvstore.PageTypeNode }

// ChildPage returns the child page at the given index, reading it from the
// store if it is not resident.
func (n *NonLeaf[K, V]) ChildPage(index int) (Page[K, V], error) {
	ref := n.children[index]
	if p := ref.page; p != nil {
		return p, nil
	}
	if ref.pos == 0 {
		return nil, fmt.Errorf("%w: accessing empty child reference %d", mvstore.ErrInternal, index)
	}
	p, err := n.mp.ReadPage(ref.pos)
	if err != nil {
		return nil, err
	}
	// the freshly read page must be the one the reference recorded
	if p.Pos() != ref.pos || p.TotalCount() != ref.count {
		return nil, fmt.Errorf("%w: reading page at %x, expected %d entries, got %d",
			mvstore.ErrFileCorrupt, ref.pos, ref.count, p.TotalCount())
	}
	return p, nil
}

func (n *NonLeaf[K, V]) ChildPagePos(index int) uint64 {
	return n.children[index].pos
}

func (n *NonLeaf[K, V]) Counts(index int) int64 {
	return n.children[index].count
}

// SetChild replaces the child at an index, cloning the child array and
// folding the child's count delta into the total.
func (n *NonLeaf[K, V]) SetChild(index int, c Page[K, V]) {
	ref := n.children[index]
	if c == ref.page && c.Pos() == ref.pos {
		return
	}
	n.totalCount += c.TotalCount() - ref.count
	children := make([]*PageReference[K, V], len(n.children))
	copy(children, n.children)
	children[index] = NewPageReference(c)
	n.children = children
}

// InsertNode inserts a key and a child at the given index. The new child
// takes over the keys smaller than the inserted key.
func (n *NonLeaf[K, V]) InsertNode(index int, key K, childPage Page[K, V]) {
	childCount := len(n.children)
	newChildren := make([]*PageReference[K, V], childCount+1)
	mvstore.CopyWithGap(n.children, newChildren, childCount, index)
	newChildren[index] = NewPageReference(childPage)
	n.children = newChildren
	n.insertKey(index, key)
	n.totalCount += childPage.TotalCount()
	if n.isPersistent() {
		n.addMemory(memoryPointer + PageChildMemory)
	}
}

func (n *NonLeaf[K, V]) Remove(index int) {
	childCount := len(n.children)
	n.removeKey(index)
	if n.isPersistent() {
		n.addMemory(-memoryPointer - PageChildMemory)
	}
	n.totalCount -= n.children[index].count
	newChildren := make([]*PageReference[K, V], childCount-1)
	mvstore.CopyExcept(n.children, newChildren, childCount, index)
	n.children = newChildren
}

func (n *NonLeaf[K, V]) Split(at int) Page[K, V] {
	if n.IsSaved() {
		panic("page: splitting a saved page")
	}
	b := len(n.keys) - at
	bKeys := n.splitKeys(at, b-1) // the key at the split index moves up to the parent
	aChildren := make([]*PageReference[K, V], at+1)
	bChildren := make([]*PageReference[K, V], b)
	copy(aChildren, n.children[:at+1])
	copy(bChildren, n.children[at+1:])
	n.children = aChildren

	var t int64
	for _, ref := range aChildren {
		t += ref.count
	}
	n.totalCount = t
	t = 0
	for _, ref := range bChildren {
		t += ref.count
	}
	newPage := CreateNode(n.mp, bKeys, bChildren, t, 0)
	if n.isPersistent() {
		n.recalculateMemory(n)
	}
	return newPage
}

func (n *NonLeaf[K, V]) Expand([]K, []V) {
	panic("page: expanding an internal page")
}

func (n *NonLeaf[K, V]) Value(int) V {
	panic("page: internal page has no values")
}

func (n *NonLeaf[K, V]) SetValue(int, V) V {
	panic("page: internal page has no values")
}

func (n *NonLeaf[K, V]) InsertLeaf(int, K, V) {
	panic("page: internal page has no values")
}

func (n *NonLeaf[K, V]) TotalCount() int64 {
	return n.totalCount
}

func (n *NonLeaf[K, V]) calculateTotalCount() int64 {
	var t int64
	for _, ref := range n.children {
		t += ref.count
	}
	return t
}

func (n *NonLeaf[K, V]) RawChildPageCount() int {
	return len(n.children)
}

func (n *NonLeaf[K, V]) Clone() Page[K, V] {
	c := &NonLeaf[K, V]{children: n.children, totalCount: n.totalCount}
	c.init(n.mp, n.keys)
	c.memory = n.memory
	return c
}

// CopyTo produces a copy owned by the target map. With eraseChildrenRefs
// set, all children become empty placeholders and the copy stays incomplete
// until SetComplete is called.
func (n *NonLeaf[K, V]) CopyTo(target Map[K, V], eraseChildrenRefs bool) Page[K, V] {
	var c *NonLeaf[K, V]
	if eraseChildrenRefs {
		children := make([]*PageReference[K, V], len(n.children))
		for i := range children {
			children[i] = EmptyRef[K, V]()
		}
		c = &NonLeaf[K, V]{children: children, totalCount: n.totalCount, incomplete: true}
	} else {
		c = &NonLeaf[K, V]{children: n.children, totalCount: n.totalCount}
	}
	c.init(target, n.keys)
	c.memory = n.memory
	return c
}

func (n *NonLeaf[K, V]) IsComplete() bool { return !n.incomplete }

func (n *NonLeaf[K, V]) SetComplete() {
	if n.incomplete {
		n.totalCount = n.calculateTotalCount()
		n.incomplete = false
	}
}

func (n *NonLeaf[K, V]) RecalculateMemory() { n.recalculateMemory(n) }

func (n *NonLeaf[K, V]) calculateMemory() int {
	return n.keysMemory() + PageNodeMemory +
		len(n.children)*(memoryPointer+PageChildMemory)
}

func (n *NonLeaf[K, V]) DiskSpaceUsed(approximate bool) (int64, error) {
	return n.diskSpace(n, approximate)
}

func (n *NonLeaf[K, V]) RemovePage(version int64) int {
	return n.removePage(n, version)
}

// RemoveAllRecursive removes the whole subtree. Resident children are
// removed in place; durable leaves go straight to the chunk-occupancy
// tracker, durable internal pages are materialized first so their own
// subtrees get accounted.
func (n *NonLeaf[K, V]) RemoveAllRecursive(version int64) (int, error) {
	unsavedMemory := n.removePage(n, version)
	if !n.isPersistent() {
		return unsavedMemory, nil
	}
	for i, size := 0, n.mp.ChildPageCount(n); i < size; i++ {
		ref := n.children[i]
		if ref.isEmpty() {
			continue
		}
		if p := ref.page; p != nil {
			m, err := p.RemoveAllRecursive(version)
			unsavedMemory += m
			if err != nil {
				return unsavedMemory, err
			}
			continue
		}
		pagePos := ref.pos
		if mvstore.IsLeafPosition(pagePos) {
			n.mp.Store().AccountForRemovedPage(pagePos, version, n.mp.IsSingleWriter(), -1)
			continue
		}
		child, err := n.mp.ReadPage(pagePos)
		if err != nil {
			return unsavedMemory, err
		}
		m, err := child.RemoveAllRecursive(version)
		unsavedMemory += m
		if err != nil {
			return unsavedMemory, err
		}
	}
	return unsavedMemory, nil
}

// WriteUnsavedRecursive serializes this page and its unsaved descendants.
// The child position table is written twice: first with whatever positions
// are known, then patched in place once all children have been saved and
// their final positions exist. An incomplete page only descends into its
// children.
func (n *NonLeaf[K, V]) WriteUnsavedRecursive(sm SerializationManager) error {
	if n.incomplete {
		if !n.IsSaved() {
			return n.writeChildrenRecursive(sm)
		}
		return nil
	}
	if n.IsSaved() {
		return nil
	}
	patch, err := n.write(n, sm)
	if err != nil {
		return err
	}
	if err := n.writeChildrenRecursive(sm); err != nil {
		return err
	}
	buff := sm.Buffer()
	old := buff.Position()
	buff.SetPosition(patch)
	n.writeChildren(buff, false)
	buff.SetPosition(old)
	return nil
}

func (n *NonLeaf[K, V]) writeChildrenRecursive(sm SerializationManager) error {
	for _, ref := range n.children {
		if p := ref.page; p != nil {
			if err := p.WriteUnsavedRecursive(sm); err != nil {
				return err
			}
			ref.resetPos()
		}
	}
	return nil
}

// ReleaseSavedPages drops resident child references once this page is
// durable, bounding memory residency after a persistence pass.
func (n *NonLeaf[K, V]) ReleaseSavedPages() {
	if n.IsSaved() {
		for _, ref := range n.children {
			ref.clearPageReference()
		}
	}
}

func (n *NonLeaf[K, V]) writeValues(*mvstore.WriteBuffer) {}

func (n *NonLeaf[K, V]) writeChildren(buf *mvstore.WriteBuffer, withCounts bool) {
	for _, ref := range n.children {
		buf.PutUint64(ref.pos)
	}
	if withCounts {
		for _, ref := range n.children {
			buf.PutUvarint(uint64(ref.count))
		}
	}
}

func (n *NonLeaf[K, V]) readPayload(buf *mvstore.ReadBuffer, chunkID int) error {
	keyCount := len(n.keys)
	n.children = make([]*PageReference[K, V], keyCount+1)
	positions := make([]uint64, keyCount+1)
	for i := range positions {
		p, err := buf.ReadUint64()
		if err != nil {
			return fmt.Errorf("%w: chunk %d, page truncated in child position table", mvstore.ErrFileCorrupt, chunkID)
		}
		positions[i] = p
	}
	var total int64
	for i := range n.children {
		count, err := buf.ReadUvarint()
		if err != nil || count > math.MaxInt64 {
			return fmt.Errorf("%w: chunk %d, page truncated in child count table", mvstore.ErrFileCorrupt, chunkID)
		}
		total += int64(count)
		if count == 0 && positions[i] == 0 {
			n.children[i] = EmptyRef[K, V]()
		} else {
			n.children[i] = NewPageReferencePos[K, V](positions[i], int64(count))
		}
	}
	n.totalCount = total
	return nil
}

func (n *NonLeaf[K, V]) PrependCursorPos(cursorPos *CursorPos[K, V]) (*CursorPos[K, V], error) {
	child, err := n.ChildPage(0)
	if err != nil {
		return nil, err
	}
	return child.PrependCursorPos(NewCursorPos(Page[K, V](n), 0, cursorPos))
}

func (n *NonLeaf[K, V]) AppendCursorPos(cursorPos *CursorPos[K, V]) (*CursorPos[K, V], error) {
	keyCount := len(n.keys)
	child, err := n.ChildPage(keyCount)
	if err != nil {
		return nil, err
	}
	return child.AppendCursorPos(NewCursorPos(Page[K, V](n), keyCount, cursorPos))
}

func (n *NonLeaf[K, V]) String() string {
	var b strings.Builder
	n.dump(&b, "node")
	if n.incomplete {
		fmt.Fprintf(&b, "complete: %t\n", !n.incomplete)
	}
	keyCount := len(n.keys)
	for i := 0; i <= keyCount; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "[%x]", n.children[i].pos)
		if i < keyCount {
			fmt.Fprintf(&b, " %v", n.keys[i])
		}
	}
	return b.String()
}
