package page

import (
	"fmt"
	"strings"

	"github.com/sergeyzolotukhin/h2database/core/mvstore"
)

// Leaf is a bottom-level page holding one value per key.
type Leaf[K, V any] struct {
	page[K, V]
	values []V
}

func (l *Leaf[K, V]) IsLeaf() bool { return true }

func (l *Leaf[K, V]) nodeType() int { return mvstore.PageTypeLeaf }

func (l *Leaf[K, V]) Value(index int) V { return l.values[index] }

// SetValue replaces the value at an index, cloning the backing array, and
// returns the previous value.
func (l *Leaf[K, V]) SetValue(index int, value V) V {
	values := make([]V, len(l.values))
	copy(values, l.values)
	old := values[index]
	if l.isPersistent() && !l.mp.IsMemoryEstimationAllowed() {
		l.addMemory(l.mp.EvaluateMemoryForValue(value) - l.mp.EvaluateMemoryForValue(old))
	}
	values[index] = value
	l.values = values
	return old
}

// InsertLeaf inserts a key/value pair at the given index.
func (l *Leaf[K, V]) InsertLeaf(index int, key K, value V) {
	keyCount := len(l.keys)
	l.insertKey(index, key)
	newValues := make([]V, keyCount+1)
	mvstore.CopyWithGap(l.values, newValues, keyCount, index)
	newValues[index] = value
	l.values = newValues
	if l.isPersistent() {
		l.addMemory(memoryPointer + l.mp.EvaluateMemoryForValue(value))
	}
}

func (l *Leaf[K, V]) Remove(index int) {
	keyCount := len(l.keys)
	l.removeKey(index)
	if index == keyCount {
		index--
	}
	if l.isPersistent() && !l.mp.IsMemoryEstimationAllowed() {
		l.addMemory(-memoryPointer - l.mp.EvaluateMemoryForValue(l.values[index]))
	}
	newValues := make([]V, keyCount-1)
	mvstore.CopyExcept(l.values, newValues, keyCount, index)
	l.values = newValues
}

func (l *Leaf[K, V]) Split(at int) Page[K, V] {
	if l.IsSaved() {
		panic("page: splitting a saved page")
	}
	b := len(l.keys) - at
	bKeys := l.splitKeys(at, b)
	aValues := make([]V, at)
	bValues := make([]V, b)
	copy(aValues, l.values[:at])
	copy(bValues, l.values[at:])
	l.values = aValues
	newPage := CreateLeaf(l.mp, bKeys, bValues, 0)
	if l.isPersistent() {
		l.recalculateMemory(l)
	}
	return newPage
}

// Expand appends already-sorted extra key/value pairs.
func (l *Leaf[K, V]) Expand(extraKeys []K, extraValues []V) {
	keyCount := len(l.keys)
	l.expandKeys(extraKeys)
	newValues := make([]V, keyCount+len(extraValues))
	copy(newValues, l.values)
	copy(newValues[keyCount:], extraValues)
	l.values = newValues
	if l.isPersistent() {
		l.recalculateMemory(l)
	}
}

func (l *Leaf[K, V]) TotalCount() int64 {
	return int64(len(l.keys))
}

func (l *Leaf[K, V]) Clone() Page[K, V] {
	c := &Leaf[K, V]{values: l.values}
	c.init(l.mp, l.keys)
	c.memory = l.memory
	return c
}

func (l *Leaf[K, V]) CopyTo(target Map[K, V], _ bool) Page[K, V] {
	c := &Leaf[K, V]{values: l.values}
	c.init(target, l.keys)
	c.memory = l.memory
	return c
}

func (l *Leaf[K, V]) IsComplete() bool { return true }

func (l *Leaf[K, V]) SetComplete() {}

func (l *Leaf[K, V]) RecalculateMemory() { l.recalculateMemory(l) }

func (l *Leaf[K, V]) calculateMemory() int {
	return l.keysMemory() + PageLeafMemory +
		l.mp.EvaluateMemoryForValues(l.values, len(l.keys))
}

func (l *Leaf[K, V]) DiskSpaceUsed(approximate bool) (int64, error) {
	return l.diskSpace(l, approximate)
}

func (l *Leaf[K, V]) RemovePage(version int64) int {
	return l.removePage(l, version)
}

func (l *Leaf[K, V]) RemoveAllRecursive(version int64) (int, error) {
	return l.removePage(l, version), nil
}

func (l *Leaf[K, V]) WriteUnsavedRecursive(sm SerializationManager) error {
	if l.IsSaved() {
		return nil
	}
	_, err := l.write(l, sm)
	return err
}

func (l *Leaf[K, V]) ReleaseSavedPages() {}

func (l *Leaf[K, V]) writeValues(buf *mvstore.WriteBuffer) {
	l.mp.ValueType().Write(buf, l.values, len(l.keys))
}

func (l *Leaf[K, V]) writeChildren(*mvstore.WriteBuffer, bool) {}

func (l *Leaf[K, V]) readPayload(buf *mvstore.ReadBuffer, chunkID int) error {
	keyCount := len(l.keys)
	l.values = make([]V, keyCount)
	if err := l.mp.ValueType().Read(buf, l.values, keyCount); err != nil {
		return fmt.Errorf("%w: chunk %d, decoding values: %v", mvstore.ErrFileCorrupt, chunkID, err)
	}
	return nil
}

func (l *Leaf[K, V]) ChildPage(int) (Page[K, V], error) {
	return nil, fmt.Errorf("%w: leaf page has no children", mvstore.ErrInternal)
}

func (l *Leaf[K, V]) ChildPagePos(int) uint64 {
	panic("page: leaf page has no children")
}

func (l *Leaf[K, V]) Counts(int) int64 {
	panic("page: leaf page has no children")
}

func (l *Leaf[K, V]) SetChild(int, Page[K, V]) {
	panic("page: leaf page has no children")
}

func (l *Leaf[K, V]) InsertNode(int, K, Page[K, V]) {
	panic("page: leaf page has no children")
}

func (l *Leaf[K, V]) RawChildPageCount() int {
	panic("page: leaf page has no children")
}

func (l *Leaf[K, V]) PrependCursorPos(cursorPos *CursorPos[K, V]) (*CursorPos[K, V], error) {
	return NewCursorPos(Page[K, V](l), -1, cursorPos), nil
}

func (l *Leaf[K, V]) AppendCursorPos(cursorPos *CursorPos[K, V]) (*CursorPos[K, V], error) {
	return NewCursorPos(Page[K, V](l), ^len(l.keys), cursorPos), nil
}

func (l *Leaf[K, V]) String() string {
	var b strings.Builder
	l.dump(&b, "leaf")
	for i := 0; i < len(l.keys); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v:%v", l.keys[i], l.values[i])
	}
	return b.String()
}
