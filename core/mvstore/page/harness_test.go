package page

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sergeyzolotukhin/h2database/core/mvstore"
	"github.com/sergeyzolotukhin/h2database/core/mvstore/compress"
)

// maxKeysPerPage is the split threshold the test put driver uses.
const maxKeysPerPage = 16

type removedPage struct {
	pos          uint64
	version      int64
	singleWriter bool
	pageNo       int
}

type testStore struct {
	compressionLevel int
	fast             compress.Compressor
	high             compress.Compressor
	removed          []removedPage
}

func newTestStore(compressionLevel int) *testStore {
	return &testStore{
		compressionLevel: compressionLevel,
		fast:             compress.NewFast(),
		high:             compress.NewHigh(),
	}
}

func (s *testStore) CompressionLevel() int               { return s.compressionLevel }
func (s *testStore) CompressorFast() compress.Compressor { return s.fast }
func (s *testStore) CompressorHigh() compress.Compressor { return s.high }

func (s *testStore) AccountForRemovedPage(pos uint64, version int64, singleWriter bool, pageNo int) {
	s.removed = append(s.removed, removedPage{pos, version, singleWriter, pageNo})
}

type testMap struct {
	id         int
	store      *testStore
	persistent bool

	keyType   mvstore.DataType[int64]
	valueType mvstore.DataType[string]

	// chunks holds the serialized chunk images by chunk id.
	chunks    map[int][]byte
	nextChunk int
}

func newTestMap(store *testStore) *testMap {
	return &testMap{
		id:         7,
		store:      store,
		persistent: true,
		keyType:    mvstore.Int64Type{},
		valueType:  mvstore.StringType{},
		chunks:     map[int][]byte{},
		nextChunk:  1,
	}
}

func (m *testMap) ID() int                             { return m.id }
func (m *testMap) KeyType() mvstore.DataType[int64]    { return m.keyType }
func (m *testMap) ValueType() mvstore.DataType[string] { return m.valueType }
func (m *testMap) Store() Store                        { return m.store }
func (m *testMap) IsPersistent() bool                  { return m.persistent }
func (m *testMap) IsMemoryEstimationAllowed() bool     { return false }
func (m *testMap) IsSingleWriter() bool                { return false }

func (m *testMap) ReadPage(pos uint64) (Page[int64, string], error) {
	chunk, ok := m.chunks[mvstore.PageChunkID(pos)]
	if !ok {
		return nil, fmt.Errorf("%w: no chunk %d", mvstore.ErrFileCorrupt, mvstore.PageChunkID(pos))
	}
	buf := mvstore.NewReadBuffer(chunk)
	buf.SetPosition(mvstore.PageOffset(pos))
	return Read[int64, string](buf, pos, m)
}

func (m *testMap) ChildPageCount(p Page[int64, string]) int {
	return p.RawChildPageCount()
}

func (m *testMap) EvaluateMemoryForKey(key int64) int {
	return m.keyType.GetMemory(key)
}

func (m *testMap) EvaluateMemoryForValue(value string) int {
	return m.valueType.GetMemory(value)
}

func (m *testMap) EvaluateMemoryForKeys(keys []int64, count int) int {
	total := 0
	for i := 0; i < count; i++ {
		total += m.keyType.GetMemory(keys[i])
	}
	return total
}

func (m *testMap) EvaluateMemoryForValues(values []string, count int) int {
	total := 0
	for i := 0; i < count; i++ {
		total += m.valueType.GetMemory(values[i])
	}
	return total
}

// testSM drives serialization into a single in-memory chunk.
type testSM struct {
	buff    *mvstore.WriteBuffer
	chunkID int
	pageNo  int

	serialized []serializedEvent
}

type serializedEvent struct {
	pos        uint64
	pageNo     int
	mapID      int
	leaf       bool
	wasDeleted bool
	pageLength int
}

func newTestSM(chunkID int) *testSM {
	return &testSM{buff: mvstore.NewWriteBuffer(0), chunkID: chunkID}
}

func (s *testSM) Buffer() *mvstore.WriteBuffer { return s.buff }

func (s *testSM) NextPageNumber() int {
	n := s.pageNo
	s.pageNo++
	return n
}

func (s *testSM) PagePosition(mapID, start, pageLength, pageType int) uint64 {
	return mvstore.ComposePagePos(s.chunkID, start, pageLength, pageType)
}

func (s *testSM) OnPageSerialized(p PageInfo, wasDeleted bool, pageLength int, singleWriter bool) {
	s.serialized = append(s.serialized, serializedEvent{
		pos:        p.Pos(),
		pageNo:     p.PageNo(),
		mapID:      p.MapID(),
		leaf:       p.IsLeaf(),
		wasDeleted: wasDeleted,
		pageLength: pageLength,
	})
}

// flush serializes the tree rooted at root into a fresh chunk and makes it
// readable through the map.
func flush(t *testing.T, m *testMap, root Page[int64, string]) *testSM {
	t.Helper()
	sm := newTestSM(m.nextChunk)
	m.nextChunk++
	require.NoError(t, root.WriteUnsavedRecursive(sm))
	m.chunks[sm.chunkID] = append([]byte(nil), sm.buff.Bytes()...)
	return sm
}

// put inserts or updates a key through a copy-on-write descent, splitting
// overfull pages on the way back up, and returns the new root.
func put(t *testing.T, m *testMap, root Page[int64, string], key int64, value string) Page[int64, string] {
	t.Helper()
	left, splitKey, right := putRec(t, root, key, value)
	if right == nil {
		return left
	}
	children := []*PageReference[int64, string]{
		NewPageReference(left),
		NewPageReference(right),
	}
	total := left.TotalCount() + right.TotalCount()
	return CreateNode(Map[int64, string](m), []int64{splitKey}, children, total, 0)
}

func putRec(t *testing.T, p Page[int64, string], key int64, value string) (Page[int64, string], int64, Page[int64, string]) {
	t.Helper()
	c := p.Clone()
	if c.IsLeaf() {
		index := c.BinarySearch(key)
		if index >= 0 {
			c.SetValue(index, value)
		} else {
			c.InsertLeaf(^index, key, value)
		}
	} else {
		index := c.BinarySearch(key)
		if index < 0 {
			index = ^index
		} else {
			index++
		}
		child, err := c.ChildPage(index)
		require.NoError(t, err)
		left, splitKey, right := putRec(t, child, key, value)
		if right != nil {
			c.SetChild(index, right)
			c.InsertNode(index, splitKey, left)
		} else {
			c.SetChild(index, left)
		}
	}
	if c.KeyCount() > maxKeysPerPage {
		at := c.KeyCount() >> 1
		splitKey := c.Key(at)
		right := c.Split(at)
		return c, splitKey, right
	}
	var zero int64
	return c, zero, nil
}

// buildTree inserts the given keys in order and returns the root.
func buildTree(t *testing.T, m *testMap, keys ...int64) Page[int64, string] {
	t.Helper()
	root := CreateEmptyLeaf(Map[int64, string](m))
	for _, k := range keys {
		root = put(t, m, root, k, valueFor(k))
	}
	return root
}

func valueFor(k int64) string {
	return fmt.Sprintf("value-%d", k)
}

// requireTreeHas verifies every key resolves to its expected value.
func requireTreeHas(t *testing.T, root Page[int64, string], keys ...int64) {
	t.Helper()
	for _, k := range keys {
		v, found, err := Get(root, k)
		require.NoError(t, err)
		require.True(t, found, "key %d missing", k)
		require.Equal(t, valueFor(k), v)
	}
}
