package mvstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPagePosRoundTrip(t *testing.T) {
	cases := []struct {
		chunkID, offset, length, pageType int
	}{
		{1, 0, 30, PageTypeLeaf},
		{1, 64, 100, PageTypeNode},
		{42, 12345, 4096, PageTypeLeaf},
		{1 << 20, 1<<32 - 1, 1024 * 1024, PageTypeNode},
		{3, 512, 3 * 1024 * 1024, PageTypeLeaf},
	}
	for _, c := range cases {
		pos := ComposePagePos(c.chunkID, c.offset, c.length, c.pageType)
		require.Equal(t, c.chunkID, PageChunkID(pos))
		require.Equal(t, c.offset, PageOffset(pos))
		require.Equal(t, c.pageType, PageType(pos))
		require.GreaterOrEqual(t, PageMaxLength(pos), min(c.length, PageLarge))
		require.True(t, IsPageSaved(pos))
		require.False(t, IsPageRemoved(pos))
	}
}

func TestPageMaxLengthClasses(t *testing.T) {
	// class bounds are 32, 48, 64, 96, ... doubling every second step
	for _, c := range []struct{ length, max int }{
		{1, 32},
		{32, 32},
		{33, 48},
		{48, 48},
		{49, 64},
		{96, 96},
		{97, 128},
		{1024 * 1024, 1024 * 1024},
		{1024*1024 + 1, PageLarge},
	} {
		pos := ComposePagePos(1, 0, c.length, PageTypeLeaf)
		require.Equal(t, c.max, PageMaxLength(pos), "length %d", c.length)
	}
}

func TestPositionSentinels(t *testing.T) {
	require.False(t, IsPageSaved(PosUnsaved))
	require.False(t, IsPageSaved(PosRemovedUnsaved))
	require.False(t, IsPageRemoved(PosUnsaved))
	require.True(t, IsPageRemoved(PosRemovedUnsaved))
	require.True(t, IsLeafPosition(ComposePagePos(1, 0, 10, PageTypeLeaf)))
	require.False(t, IsLeafPosition(ComposePagePos(1, 0, 10, PageTypeNode)))
}

func TestCheckValue(t *testing.T) {
	require.Equal(t, CheckValue(42), CheckValue(42))
	require.NotEqual(t, CheckValue(42), CheckValue(43))

	// the combined page check differs when any coordinate changes
	check := CheckValue(1) ^ CheckValue(128) ^ CheckValue(200)
	require.NotEqual(t, check, CheckValue(2)^CheckValue(128)^CheckValue(200))
	require.NotEqual(t, check, CheckValue(1)^CheckValue(129)^CheckValue(200))
	require.NotEqual(t, check, CheckValue(1)^CheckValue(128)^CheckValue(201))
}

func TestUvarintLen(t *testing.T) {
	for _, c := range []struct {
		v uint64
		n int
	}{
		{0, 1}, {127, 1}, {128, 2}, {16383, 2}, {16384, 3}, {1 << 62, 9},
	} {
		require.Equal(t, c.n, UvarintLen(c.v), "value %d", c.v)
	}
}

func TestCopyHelpers(t *testing.T) {
	src := []int{1, 2, 3, 4}

	dst := make([]int, 5)
	CopyWithGap(src, dst, 4, 2)
	require.Equal(t, []int{1, 2, 0, 3, 4}, dst)

	dst = make([]int, 5)
	CopyWithGap(src, dst, 4, 0)
	require.Equal(t, []int{0, 1, 2, 3, 4}, dst)

	out := make([]int, 3)
	CopyExcept(src, out, 4, 1)
	require.Equal(t, []int{1, 3, 4}, out)

	out = make([]int, 3)
	CopyExcept(src, out, 4, 3)
	require.Equal(t, []int{1, 2, 3}, out)
}

func TestBinarySearch(t *testing.T) {
	dt := Int64Type{}
	storage := []int64{10, 20, 30, 40, 50}

	// every seed must produce the same answer
	for guess := -1; guess <= len(storage)+1; guess++ {
		require.Equal(t, 2, BinarySearch[int64](dt, 30, storage, len(storage), guess))
		require.Equal(t, ^0, BinarySearch[int64](dt, 5, storage, len(storage), guess))
		require.Equal(t, ^3, BinarySearch[int64](dt, 35, storage, len(storage), guess))
		require.Equal(t, ^5, BinarySearch[int64](dt, 99, storage, len(storage), guess))
	}

	require.Equal(t, ^0, BinarySearch[int64](dt, 1, nil, 0, 0))
}
