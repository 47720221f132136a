package pagecache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sergeyzolotukhin/h2database/core/mvstore"
)

type fakePage struct {
	pos    uint64
	pageNo int
	mapID  int
	leaf   bool
	memory int
}

func (p *fakePage) Pos() uint64  { return p.pos }
func (p *fakePage) PageNo() int  { return p.pageNo }
func (p *fakePage) MapID() int   { return p.mapID }
func (p *fakePage) IsLeaf() bool { return p.leaf }
func (p *fakePage) Memory() int  { return p.memory }

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	logger := zap.NewNop()
	c, err := New(Config{MaxBytes: 1 << 20}, logger, prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestCachePutGet(t *testing.T) {
	c := newTestCache(t)
	p := &fakePage{
		pos:    mvstore.ComposePagePos(1, 128, 100, mvstore.PageTypeLeaf),
		pageNo: 3,
		mapID:  7,
		leaf:   true,
		memory: 256,
	}
	c.Put(p)
	c.Wait()

	got, ok := c.Get(p.pos)
	require.True(t, ok)
	require.Equal(t, p.pageNo, got.PageNo())
	require.Equal(t, p.mapID, got.MapID())

	_, ok = c.Get(mvstore.ComposePagePos(2, 0, 100, mvstore.PageTypeNode))
	require.False(t, ok)

	require.Equal(t, float64(1), testutil.ToFloat64(c.hits))
	require.Equal(t, float64(1), testutil.ToFloat64(c.misses))
}

func TestCacheIgnoresUnsavedPages(t *testing.T) {
	c := newTestCache(t)
	c.Put(&fakePage{pos: mvstore.PosUnsaved, memory: 64})
	c.Wait()
	_, ok := c.Get(mvstore.PosUnsaved)
	require.False(t, ok)
}

func TestCacheRemove(t *testing.T) {
	c := newTestCache(t)
	p := &fakePage{pos: mvstore.ComposePagePos(1, 0, 50, mvstore.PageTypeLeaf), memory: 128}
	c.Put(p)
	c.Wait()

	c.Remove(p.pos)
	c.Wait()
	_, ok := c.Get(p.pos)
	require.False(t, ok)
}

func TestCacheEvictionCounter(t *testing.T) {
	c, err := New(Config{MaxBytes: 2048}, zap.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	require.Zero(t, testutil.ToFloat64(c.evictions))

	// overcommit the cost cap so admissions have to push victims out
	for i := 0; i < 64; i++ {
		c.Put(&fakePage{
			pos:    mvstore.ComposePagePos(1, i*64, 50, mvstore.PageTypeLeaf),
			memory: 512,
		})
		c.Wait()
	}
	require.Positive(t, testutil.ToFloat64(c.evictions))
}

func TestCacheRejectsBadConfig(t *testing.T) {
	_, err := New(Config{}, zap.NewNop(), nil)
	require.Error(t, err)
}
