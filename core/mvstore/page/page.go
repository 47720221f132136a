// Package page implements B-tree pages: the shared node contract plus the
// Leaf and NonLeaf variants, parent-to-child references and the
// copy-on-write / serialization lifecycle.
//
// For internal nodes, the key at a given index is larger than the largest
// key of the child at the same index.
//
// Serialized format:
//
//	length of the serialized page in bytes (including this field): int32
//	check value: int16
//	page number (0-based sequential number within a chunk): uvarint
//	map id: uvarint
//	number of keys: uvarint
//	type: byte (bit 0: leaf/node, bit 1: compressed, bit 2: high compression)
//	children of the non-leaf node (1 more than keys)
//	compressed: bytes saved (uvarint)
//	keys
//	values of the leaf node (one for each key)
package page

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/sergeyzolotukhin/h2database/core/mvstore"
	"github.com/sergeyzolotukhin/h2database/core/mvstore/compress"
)

// Estimated in-memory footprints, in bytes. The child constant is exported
// because map-level accounting charges it when it creates references of its
// own.
const (
	memoryPointer = 8
	memoryObject  = 24
	memorySlice   = 24

	// PageChildMemory is the estimated number of bytes used per child entry.
	PageChildMemory = memoryPointer + 16

	pageBaseMemory = memoryObject + // page object
		2*memoryPointer + // map, keys
		memorySlice + // keys slice
		17 // pos, cachedCompare, memory, pageNo

	// PageNodeMemory is the estimated number of bytes used per empty
	// internal page.
	PageNodeMemory = pageBaseMemory + memoryPointer + memorySlice + 8

	// PageLeafMemory is the estimated number of bytes used per empty leaf
	// page.
	PageLeafMemory = pageBaseMemory + memoryPointer + memorySlice

	// inMemory marks pages of non-persistent maps, which bypass memory
	// accounting entirely.
	inMemory = math.MinInt32

	// Payloads at or below this size are never worth compressing.
	compressionThreshold = 16
)

// Page is one B-tree node, either a *Leaf or a *NonLeaf. The interface is
// closed: only this package implements it.
//
// Content reachable from a published root is immutable; every logical
// mutation first produces a new page object (copy-on-write at the backing
// array level), so readers walking an older root never observe a
// half-mutated page.
type Page[K, V any] interface {
	PageInfo
	fmt.Stringer

	Map() Map[K, V]

	Key(index int) K
	SetKey(index int, key K)
	KeyCount() int

	// BinarySearch returns the index of an exact match, or the bitwise
	// complement of the insertion point if the key is absent. The search is
	// seeded from the previous call's outcome; the seed never changes the
	// result.
	BinarySearch(key K) int

	Value(index int) V
	SetValue(index int, value V) V
	InsertLeaf(index int, key K, value V)
	Expand(extraKeys []K, extraValues []V)

	ChildPage(index int) (Page[K, V], error)
	ChildPagePos(index int) uint64
	Counts(index int) int64
	SetChild(index int, c Page[K, V])
	InsertNode(index int, key K, childPage Page[K, V])
	RawChildPageCount() int

	// Remove deletes the key and the value (or child) at the given index.
	// An index equal to the key count removes the last key together with
	// the entry at the given index.
	Remove(index int)

	// Split keeps entries [0, at) on this page and returns a new sibling
	// owning the entries after the split index.
	Split(at int) Page[K, V]

	TotalCount() int64

	// Clone produces a mutable copy with the position and page number reset
	// to unsaved.
	Clone() Page[K, V]

	// CopyTo produces a copy owned by a different map. With
	// eraseChildrenRefs set, children are replaced by empty placeholders
	// and the result stays incomplete until SetComplete is called; this way
	// a partially rebuilt subtree can be flushed mid-copy without violating
	// tree integrity.
	CopyTo(target Map[K, V], eraseChildrenRefs bool) Page[K, V]

	IsSaved() bool
	IsRemoved() bool
	IsComplete() bool
	SetComplete()

	AddMemory(mem int)
	RecalculateMemory()

	// DiskSpaceUsed reports the serialized footprint of this subtree; the
	// approximate form samples instead of visiting every child.
	DiskSpaceUsed(approximate bool) (int64, error)

	// RemovePage accounts for the removal of this page at the given
	// version: the negative memory adjustment for a never-saved page, or
	// zero after reporting a durable page to the chunk-occupancy tracker.
	RemovePage(version int64) int

	// RemoveAllRecursive removes the whole subtree, materializing
	// non-resident internal children as needed so every durable page gets
	// accounted individually.
	RemoveAllRecursive(version int64) (int, error)

	// WriteUnsavedRecursive serializes this page and every resident unsaved
	// descendant, children before the parent's child-position table is
	// final.
	WriteUnsavedRecursive(sm SerializationManager) error

	// ReleaseSavedPages drops in-memory child references once durable, to
	// bound memory residency after a persistence pass.
	ReleaseSavedPages()

	PrependCursorPos(cursorPos *CursorPos[K, V]) (*CursorPos[K, V], error)
	AppendCursorPos(cursorPos *CursorPos[K, V]) (*CursorPos[K, V], error)

	// closed to this package
	base() *page[K, V]
	readPayload(buf *mvstore.ReadBuffer, chunkID int) error
	writeValues(buf *mvstore.WriteBuffer)
	writeChildren(buf *mvstore.WriteBuffer, withCounts bool)
	calculateMemory() int
	nodeType() int
}

// page holds the state and logic shared by both variants.
type page[K, V any] struct {
	mp Map[K, V]

	// pos is the position of this page's saved image within a chunk,
	// PosUnsaved before the first save, or PosRemovedUnsaved if the page
	// was removed without ever being saved. A save and a concurrent removal
	// race on this one word; all transitions go through compare-and-swap.
	pos atomic.Uint64

	// pageNo is the sequential 0-based number of the page within the
	// containing chunk, -1 until assigned at write time.
	pageNo int

	// cachedCompare seeds the next binary search with the previous outcome.
	cachedCompare atomic.Int32

	// memory is the estimated in-memory footprint in the persistent case,
	// the inMemory marker otherwise.
	memory int

	// diskSpaceUsed is the serialized length of this page only, known after
	// a read or write.
	diskSpaceUsed int

	keys []K
}

func (p *page[K, V]) base() *page[K, V] { return p }

func (p *page[K, V]) init(mp Map[K, V], keys []K) {
	p.mp = mp
	p.keys = keys
	p.pageNo = -1
}

func (p *page[K, V]) initMemoryAccount(self Page[K, V], memoryCount int) {
	switch {
	case !p.mp.IsPersistent():
		p.memory = inMemory
	case memoryCount == 0:
		p.memory = self.calculateMemory()
	default:
		p.addMemory(memoryCount)
	}
}

// CreateEmptyLeaf creates a new, empty leaf page.
func CreateEmptyLeaf[K, V any](mp Map[K, V]) Page[K, V] {
	return CreateLeaf(mp, make([]K, 0), make([]V, 0), PageLeafMemory)
}

// CreateEmptyNode creates a new internal page with a single empty child
// reference.
func CreateEmptyNode[K, V any](mp Map[K, V]) Page[K, V] {
	children := []*PageReference[K, V]{EmptyRef[K, V]()}
	return CreateNode(mp, make([]K, 0), children, 0,
		PageNodeMemory+memoryPointer+PageChildMemory) // there is always one child
}

// CreateLeaf creates a new leaf page. The slices are not cloned. A memory
// count of zero triggers a full recalculation.
func CreateLeaf[K, V any](mp Map[K, V], keys []K, values []V, memory int) Page[K, V] {
	p := &Leaf[K, V]{values: values}
	p.init(mp, keys)
	p.initMemoryAccount(p, memory)
	return p
}

// CreateNode creates a new internal page. The slices are not cloned.
func CreateNode[K, V any](mp Map[K, V], keys []K, children []*PageReference[K, V], totalCount int64, memory int) Page[K, V] {
	p := &NonLeaf[K, V]{children: children, totalCount: totalCount}
	p.init(mp, keys)
	p.initMemoryAccount(p, memory)
	return p
}

// Get returns the value for the given key in the tree rooted at p, or false
// if the key is absent.
func Get[K, V any](p Page[K, V], key K) (V, bool, error) {
	for {
		index := p.BinarySearch(key)
		if p.IsLeaf() {
			if index >= 0 {
				return p.Value(index), true, nil
			}
			var zero V
			return zero, false, nil
		}
		if index < 0 {
			index = ^index
		} else {
			index++
		}
		child, err := p.ChildPage(index)
		if err != nil {
			var zero V
			return zero, false, err
		}
		p = child
	}
}

// Read deserializes a page from buf, which must be positioned at the start
// of the serialized image of the page stored at pos.
func Read[K, V any](buf *mvstore.ReadBuffer, pos uint64, mp Map[K, V]) (Page[K, V], error) {
	var p Page[K, V]
	if mvstore.IsLeafPosition(pos) {
		p = &Leaf[K, V]{}
	} else {
		p = &NonLeaf[K, V]{}
	}
	b := p.base()
	b.init(mp, nil)
	b.pos.Store(pos)
	if err := b.read(p, buf); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *page[K, V]) Map() Map[K, V] { return p.mp }

func (p *page[K, V]) MapID() int { return p.mp.ID() }

func (p *page[K, V]) Pos() uint64 { return p.pos.Load() }

func (p *page[K, V]) PageNo() int { return p.pageNo }

func (p *page[K, V]) Key(index int) K { return p.keys[index] }

func (p *page[K, V]) KeyCount() int { return len(p.keys) }

func (p *page[K, V]) IsSaved() bool { return mvstore.IsPageSaved(p.pos.Load()) }

func (p *page[K, V]) IsRemoved() bool { return mvstore.IsPageRemoved(p.pos.Load()) }

func (p *page[K, V]) isPersistent() bool { return p.memory != inMemory }

// Memory returns the tracked memory estimate, or 0 for non-persistent maps.
func (p *page[K, V]) Memory() int {
	if p.isPersistent() {
		return p.memory
	}
	return 0
}

// AddMemory adjusts the tracked memory estimate by the given delta.
func (p *page[K, V]) AddMemory(mem int) { p.addMemory(mem) }

func (p *page[K, V]) addMemory(mem int) {
	p.memory += mem
	if p.memory < 0 {
		panic(fmt.Sprintf("page: memory estimate went negative (%d)", p.memory))
	}
}

// BinarySearch searches the key in this page. Instead of always starting in
// the middle, the last found index seeds the next search.
func (p *page[K, V]) BinarySearch(key K) int {
	res := mvstore.BinarySearch(p.mp.KeyType(), key, p.keys, len(p.keys), int(p.cachedCompare.Load()))
	if res < 0 {
		p.cachedCompare.Store(int32(^res))
	} else {
		p.cachedCompare.Store(int32(res + 1))
	}
	return res
}

// SetKey replaces the key at an index, cloning the backing array.
func (p *page[K, V]) SetKey(index int, key K) {
	keys := make([]K, len(p.keys))
	copy(keys, p.keys)
	if p.isPersistent() && !p.mp.IsMemoryEstimationAllowed() {
		mem := p.mp.EvaluateMemoryForKey(key) - p.mp.EvaluateMemoryForKey(keys[index])
		p.addMemory(mem)
	}
	keys[index] = key
	p.keys = keys
}

// insertKey inserts a key into a freshly allocated key array.
func (p *page[K, V]) insertKey(index int, key K) {
	keyCount := len(p.keys)
	if index > keyCount {
		panic(fmt.Sprintf("page: insert index %d > key count %d", index, keyCount))
	}
	newKeys := make([]K, keyCount+1)
	mvstore.CopyWithGap(p.keys, newKeys, keyCount, index)
	newKeys[index] = key
	p.keys = newKeys
	if p.isPersistent() {
		p.addMemory(memoryPointer + p.mp.EvaluateMemoryForKey(key))
	}
}

// removeKey removes the key at the given index, clamping an index equal to
// the key count down to the last key.
func (p *page[K, V]) removeKey(index int) {
	keyCount := len(p.keys)
	if index == keyCount {
		index--
	}
	if p.isPersistent() && !p.mp.IsMemoryEstimationAllowed() {
		p.addMemory(-memoryPointer - p.mp.EvaluateMemoryForKey(p.keys[index]))
	}
	newKeys := make([]K, keyCount-1)
	mvstore.CopyExcept(p.keys, newKeys, keyCount, index)
	p.keys = newKeys
}

// splitKeys splits the keys into a retained array of aCount entries and a
// returned array holding the last bCount entries.
func (p *page[K, V]) splitKeys(aCount, bCount int) []K {
	keyCount := len(p.keys)
	aKeys := make([]K, aCount)
	bKeys := make([]K, bCount)
	copy(aKeys, p.keys[:aCount])
	copy(bKeys, p.keys[keyCount-bCount:])
	p.keys = aKeys
	return bKeys
}

// expandKeys appends already-sorted extra keys.
func (p *page[K, V]) expandKeys(extraKeys []K) {
	keyCount := len(p.keys)
	newKeys := make([]K, keyCount+len(extraKeys))
	copy(newKeys, p.keys)
	copy(newKeys[keyCount:], extraKeys)
	p.keys = newKeys
}

func (p *page[K, V]) recalculateMemory(self Page[K, V]) {
	if !p.isPersistent() {
		return
	}
	p.memory = self.calculateMemory()
}

func (p *page[K, V]) keysMemory() int {
	return p.mp.EvaluateMemoryForKeys(p.keys, len(p.keys))
}

// markAsRemoved flips an unsaved page to the removed-unsaved state. It
// returns true only if this call did the marking; an already saved or
// already marked page returns false.
func (p *page[K, V]) markAsRemoved() bool {
	for {
		pos := p.pos.Load()
		if mvstore.IsPageSaved(pos) || mvstore.IsPageRemoved(pos) {
			return false
		}
		if p.pos.CompareAndSwap(mvstore.PosUnsaved, mvstore.PosRemovedUnsaved) {
			return true
		}
	}
}

func (p *page[K, V]) removePage(self Page[K, V], version int64) int {
	if p.isPersistent() && self.TotalCount() > 0 {
		if p.markAsRemoved() {
			return -p.memory
		}
		// saved pages go to chunk-occupancy accounting; a page that was
		// already marked removed has been accounted by the first removal
		if pos := p.pos.Load(); mvstore.IsPageSaved(pos) {
			p.mp.Store().AccountForRemovedPage(pos, version, p.mp.IsSingleWriter(), p.pageNo)
		}
	}
	return 0
}

// write serializes this page into the buffer supplied by the serialization
// manager and publishes the resulting position. It returns the buffer
// position where the serialized child references (if any) begin, so a parent
// can backpatch them after its children have been positioned.
func (p *page[K, V]) write(self Page[K, V], sm SerializationManager) (int, error) {
	p.pageNo = sm.NextPageNumber()
	keyCount := len(p.keys)
	buff := sm.Buffer()
	start := buff.Position()
	buff.PutUint32(0) // placeholder for the page length
	buff.PutUint16(0) // placeholder for the check value
	buff.PutUvarint(uint64(p.pageNo))
	buff.PutUvarint(uint64(p.mp.ID()))
	buff.PutUvarint(uint64(keyCount))
	typePos := buff.Position()
	pageType := self.nodeType()
	buff.PutByte(byte(pageType))
	childrenPos := buff.Position()
	self.writeChildren(buff, true)
	compressStart := buff.Position()
	p.mp.KeyType().Write(buff, p.keys, keyCount)
	self.writeValues(buff)

	store := p.mp.Store()
	expLen := buff.Position() - compressStart
	if expLen > compressionThreshold {
		if level := store.CompressionLevel(); level > 0 {
			var compressor compress.Compressor
			var compressType int
			if level == 1 {
				compressor = store.CompressorFast()
				compressType = mvstore.PageCompressed
			} else {
				compressor = store.CompressorHigh()
				compressType = mvstore.PageCompressedHigh
			}
			comp := compressor.Compress(buff.Bytes()[compressStart:])
			saved := expLen - len(comp)
			// the compressed form only wins if it is shorter than the
			// plain payload including the saved-bytes prefix
			if len(comp)+mvstore.UvarintLen(uint64(saved)) < expLen {
				buff.SetPosition(typePos)
				buff.PutByte(byte(pageType | compressType))
				buff.SetPosition(compressStart)
				buff.PutUvarint(uint64(saved))
				buff.PutBytes(comp)
			}
		}
	}
	pageLength := buff.Position() - start
	pagePos := sm.PagePosition(p.mp.ID(), start, pageLength, pageType)
	if p.IsSaved() {
		return 0, fmt.Errorf("%w: page %d already stored", mvstore.ErrInternal, p.pageNo)
	}

	chunkID := mvstore.PageChunkID(pagePos)
	check := mvstore.CheckValue(chunkID) ^ mvstore.CheckValue(start) ^ mvstore.CheckValue(pageLength)
	end := buff.Position()
	buff.SetPosition(start)
	buff.PutUint32(uint32(pageLength))
	buff.PutUint16(check)
	buff.SetPosition(end)

	// Publish the position. A removal may land concurrently between
	// computing the bytes and this point; the save must still register as
	// "saved but already deleted" rather than overwrite the removal mark.
	wasDeleted := p.IsRemoved()
	for {
		expect := mvstore.PosUnsaved
		if wasDeleted {
			expect = mvstore.PosRemovedUnsaved
		}
		if p.pos.CompareAndSwap(expect, pagePos) {
			break
		}
		wasDeleted = p.IsRemoved()
	}
	lengthDecoded := mvstore.PageMaxLength(pagePos)
	if lengthDecoded != mvstore.PageLarge {
		p.diskSpaceUsed = lengthDecoded
	} else {
		p.diskSpaceUsed = pageLength
	}
	sm.OnPageSerialized(self, wasDeleted, lengthDecoded, p.mp.IsSingleWriter())
	return childrenPos, nil
}

// read deserializes the page from the buffer, validating the envelope
// against the position the page was read from.
func (p *page[K, V]) read(self Page[K, V], buff *mvstore.ReadBuffer) error {
	pos := p.pos.Load()
	chunkID := mvstore.PageChunkID(pos)
	offset := mvstore.PageOffset(pos)

	start := buff.Position()
	remaining := buff.Remaining()
	lengthRaw, err := buff.ReadUint32()
	if err != nil {
		return fmt.Errorf("%w: chunk %d, page truncated before length field", mvstore.ErrFileCorrupt, chunkID)
	}
	pageLength := int(int32(lengthRaw))
	if pageLength > remaining || pageLength < 4 {
		return fmt.Errorf("%w: chunk %d, expected page length 4..%d, got %d",
			mvstore.ErrFileCorrupt, chunkID, remaining, pageLength)
	}

	check, err := buff.ReadUint16()
	if err != nil {
		return fmt.Errorf("%w: chunk %d, page truncated before check value", mvstore.ErrFileCorrupt, chunkID)
	}
	checkTest := mvstore.CheckValue(chunkID) ^ mvstore.CheckValue(offset) ^ mvstore.CheckValue(pageLength)
	if check != checkTest {
		return fmt.Errorf("%w: chunk %d, expected check value %d, got %d",
			mvstore.ErrFileCorrupt, chunkID, checkTest, check)
	}

	pageNo, err := buff.ReadUvarint()
	if err != nil || pageNo > math.MaxInt32 {
		return fmt.Errorf("%w: chunk %d, got invalid page number %d", mvstore.ErrFileCorrupt, chunkID, pageNo)
	}
	p.pageNo = int(pageNo)

	mapID, err := buff.ReadUvarint()
	if err != nil || int(mapID) != p.mp.ID() {
		return fmt.Errorf("%w: chunk %d, expected map id %d, got %d",
			mvstore.ErrFileCorrupt, chunkID, p.mp.ID(), mapID)
	}

	kc, err := buff.ReadUvarint()
	if err != nil || kc > uint64(pageLength) {
		return fmt.Errorf("%w: chunk %d, got invalid key count %d", mvstore.ErrFileCorrupt, chunkID, kc)
	}
	keyCount := int(kc)
	p.keys = make([]K, keyCount)

	typ, err := buff.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: chunk %d, page truncated before type byte", mvstore.ErrFileCorrupt, chunkID)
	}
	leaf := int(typ)&1 == mvstore.PageTypeLeaf
	if self.IsLeaf() != leaf {
		expected := mvstore.PageTypeNode
		if self.IsLeaf() {
			expected = mvstore.PageTypeLeaf
		}
		return fmt.Errorf("%w: chunk %d, expected node type %d, got %d",
			mvstore.ErrFileCorrupt, chunkID, expected, typ)
	}

	// restrain codecs that would otherwise grab the whole remainder
	buff.SetLimit(start + pageLength)

	if !leaf {
		if err := self.readPayload(buff, chunkID); err != nil {
			return err
		}
	}
	if typ&mvstore.PageCompressed != 0 {
		var compressor compress.Compressor
		if typ&mvstore.PageCompressedHigh == mvstore.PageCompressedHigh {
			compressor = p.mp.Store().CompressorHigh()
		} else {
			compressor = p.mp.Store().CompressorFast()
		}
		saved, err := buff.ReadUvarint()
		if err != nil {
			return fmt.Errorf("%w: chunk %d, page truncated before saved-bytes field", mvstore.ErrFileCorrupt, chunkID)
		}
		// the expanded payload of a sane page is at most a couple of
		// hundred times its stored form; anything beyond that is a
		// corrupted length, not a compression ratio
		if saved > uint64(pageLength)*255 {
			return fmt.Errorf("%w: chunk %d, got invalid expanded length, %d bytes saved on a %d byte page",
				mvstore.ErrFileCorrupt, chunkID, saved, pageLength)
		}
		compLen := buff.Remaining()
		comp, err := buff.ReadBytes(compLen)
		if err != nil {
			return fmt.Errorf("%w: chunk %d, page truncated in compressed payload", mvstore.ErrFileCorrupt, chunkID)
		}
		exp := make([]byte, compLen+int(saved))
		if err := compressor.Expand(exp, comp); err != nil {
			return fmt.Errorf("%w: chunk %d, expanding page payload: %v", mvstore.ErrFileCorrupt, chunkID, err)
		}
		buff = mvstore.NewReadBuffer(exp)
	}
	if err := p.mp.KeyType().Read(buff, p.keys, keyCount); err != nil {
		return fmt.Errorf("%w: chunk %d, decoding keys: %v", mvstore.ErrFileCorrupt, chunkID, err)
	}
	if leaf {
		if err := self.readPayload(buff, chunkID); err != nil {
			return err
		}
	}
	p.diskSpaceUsed = pageLength
	if p.mp.IsPersistent() {
		p.memory = self.calculateMemory()
	} else {
		p.memory = inMemory
	}
	return nil
}

// diskSpaceUsed aggregates the serialized footprint of the subtree.
func (p *page[K, V]) diskSpace(self Page[K, V], approximate bool) (int64, error) {
	if !p.isPersistent() {
		return 0, nil
	}
	if approximate {
		return diskSpaceApproximation(self, 3, false)
	}
	return diskSpaceAccurate(self)
}

func diskSpaceAccurate[K, V any](p Page[K, V]) (int64, error) {
	r := int64(p.base().diskSpaceUsed)
	if !p.IsLeaf() {
		for i, l := 0, p.RawChildPageCount(); i < l; i++ {
			if p.ChildPagePos(i) == 0 {
				continue
			}
			child, err := p.ChildPage(i)
			if err != nil {
				return r, err
			}
			d, err := diskSpaceAccurate(child)
			if err != nil {
				return r, err
			}
			r += d
		}
	}
	return r, nil
}

// diskSpaceApproximation visits only a sampled child below maxLevel,
// scaling its contribution by the fan-out. The alternating flag varies which
// end of the child list gets sampled.
func diskSpaceApproximation[K, V any](p Page[K, V], maxLevel int, tail bool) (int64, error) {
	r := int64(p.base().diskSpaceUsed)
	if p.IsLeaf() {
		return r, nil
	}
	l := p.RawChildPageCount()
	maxLevel--
	if maxLevel == 0 && l > 4 {
		indexes := make([]int, 0, l)
		if tail {
			for i := 0; i < l; i++ {
				indexes = append(indexes, i)
			}
		} else {
			for i := l - 1; i >= 0; i-- {
				indexes = append(indexes, i)
			}
		}
		for _, i := range indexes {
			if p.ChildPagePos(i) == 0 {
				continue
			}
			child, err := p.ChildPage(i)
			if err != nil {
				return r, err
			}
			d, err := diskSpaceApproximation(child, maxLevel, tail)
			if err != nil {
				return r, err
			}
			return r + d*int64(l), nil
		}
		return r, nil
	}
	for i := 0; i < l; i++ {
		if p.ChildPagePos(i) == 0 {
			continue
		}
		child, err := p.ChildPage(i)
		if err != nil {
			return r, err
		}
		d, err := diskSpaceApproximation(child, maxLevel, tail)
		if err != nil {
			return r, err
		}
		r += d
		tail = !tail
	}
	return r, nil
}

// dump writes the shared debug header.
func (p *page[K, V]) dump(b *strings.Builder, kind string) {
	fmt.Fprintf(b, "type: %s\n", kind)
	pos := p.pos.Load()
	fmt.Fprintf(b, "pos: %x\n", pos)
	if mvstore.IsPageSaved(pos) {
		fmt.Fprintf(b, "chunk: %x", mvstore.PageChunkID(pos))
		if p.pageNo >= 0 {
			fmt.Fprintf(b, ", no: %x", p.pageNo)
		}
		b.WriteByte('\n')
	}
}
