// Package mvstore holds the store-level primitives consumed by the page
// layer: page position encoding, check values, binary buffers and the
// data-type codec contract.
package mvstore

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Page positions pack a durable location into a single word:
//
//	chunk id    bits 38..63
//	offset      bits 6..37
//	length code bits 1..5
//	type        bit 0 (1: leaf, 0: internal node)
//
// Two values are reserved: PosUnsaved for a page that has not been written
// yet, and PosRemovedUnsaved for a page that was logically removed before it
// ever became durable.
const (
	PosUnsaved        uint64 = 0
	PosRemovedUnsaved uint64 = 1

	PageTypeNode = 0
	PageTypeLeaf = 1

	// Type byte flags on top of the leaf/node bit.
	PageCompressed     = 2
	PageCompressedHigh = 6

	// PageLarge is the decoded max length for the largest length code.
	PageLarge = 2 * 1024 * 1024

	maxLengthCode = 31
)

// ComposePagePos encodes a durable page location.
func ComposePagePos(chunkID, offset, length, pageType int) uint64 {
	code := encodePageLength(length)
	return uint64(chunkID)<<38 | uint64(offset)<<6 | uint64(code)<<1 | uint64(pageType)
}

// encodePageLength maps a byte length to its 5-bit length class. Classes
// decode to 32, 48, 64, 96, ... up to 1 MiB; anything larger gets the
// PageLarge class.
func encodePageLength(length int) int {
	if length <= 32 {
		return 0
	}
	if length <= 1024*1024 {
		for code := 1; code < maxLengthCode; code++ {
			if length <= (2+(code&1))<<((code>>1)+4) {
				return code
			}
		}
	}
	return maxLengthCode
}

// PageChunkID extracts the chunk id from a position.
func PageChunkID(pos uint64) int {
	return int(pos >> 38)
}

// PageOffset extracts the byte offset within the chunk.
func PageOffset(pos uint64) int {
	return int(pos >> 6 & 0xffffffff)
}

// PageMaxLength decodes the upper bound of the page's length class.
func PageMaxLength(pos uint64) int {
	code := int(pos>>1) & maxLengthCode
	if code == maxLengthCode {
		return PageLarge
	}
	return (2 + (code & 1)) << ((code >> 1) + 4)
}

// PageType extracts the leaf/node bit.
func PageType(pos uint64) int {
	return int(pos & 1)
}

// IsLeafPosition reports whether the position refers to a leaf page.
func IsLeafPosition(pos uint64) bool {
	return PageType(pos) == PageTypeLeaf
}

// IsPageSaved reports whether the position is a real durable location, as
// opposed to the unsaved or removed-unsaved sentinels.
func IsPageSaved(pos uint64) bool {
	return pos&^1 != 0
}

// IsPageRemoved reports whether the position is the removed-while-unsaved
// sentinel.
func IsPageRemoved(pos uint64) bool {
	return pos == PosRemovedUnsaved
}

// CheckValue folds the xxhash digest of a 32-bit quantity down to 16 bits.
// Page checksums XOR the check values of chunk id, offset and length, so a
// page read back from the wrong place fails even when its bytes are intact.
func CheckValue(x int) uint16 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(x))
	h := xxhash.Sum64(b[:])
	return uint16(h ^ h>>16 ^ h>>32 ^ h>>48)
}

// UvarintLen returns the encoded size of v as an unsigned varint.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// CopyWithGap copies oldSize elements from src to dst, leaving a one-element
// gap at gapIndex.
func CopyWithGap[T any](src, dst []T, oldSize, gapIndex int) {
	copy(dst[:gapIndex], src[:gapIndex])
	copy(dst[gapIndex+1:], src[gapIndex:oldSize])
}

// CopyExcept copies oldSize elements from src to dst, skipping the element
// at removeIndex.
func CopyExcept[T any](src, dst []T, oldSize, removeIndex int) {
	copy(dst[:removeIndex], src[:removeIndex])
	copy(dst[removeIndex:], src[removeIndex+1:oldSize])
}
