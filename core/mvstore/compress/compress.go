// Package compress provides the compression capability the page layer
// invokes when a serialized payload crosses the compression threshold. Two
// interchangeable strengths are offered: a fast compressor for level 1 and a
// high-ratio compressor for higher levels.
package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// Compressor compresses and expands page payloads. Compress returns the
// compressed block; Expand decompresses src into dst, which must have
// exactly the original length.
type Compressor interface {
	Compress(src []byte) []byte
	Expand(dst, src []byte) error
}

// NewFast returns the level-1 compressor, backed by S2.
func NewFast() Compressor {
	return fastCompressor{}
}

type fastCompressor struct{}

func (fastCompressor) Compress(src []byte) []byte {
	return s2.Encode(nil, src)
}

func (fastCompressor) Expand(dst, src []byte) error {
	out, err := s2.Decode(dst, src)
	if err != nil {
		return fmt.Errorf("s2 expand: %w", err)
	}
	return intoDst(dst, out)
}

// NewHigh returns the high-ratio compressor, backed by zstd. The encoder and
// decoder are stateless in EncodeAll/DecodeAll mode and safe for concurrent
// use.
func NewHigh() Compressor {
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	dec, _ := zstd.NewReader(nil)
	return &highCompressor{enc: enc, dec: dec}
}

type highCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func (c *highCompressor) Compress(src []byte) []byte {
	return c.enc.EncodeAll(src, nil)
}

func (c *highCompressor) Expand(dst, src []byte) error {
	out, err := c.dec.DecodeAll(src, dst[:0])
	if err != nil {
		return fmt.Errorf("zstd expand: %w", err)
	}
	return intoDst(dst, out)
}

// intoDst verifies the expanded length and copies the result into dst when
// the codec had to allocate its own output buffer.
func intoDst(dst, out []byte) error {
	if len(out) != len(dst) {
		return fmt.Errorf("expanded to %d bytes, expected %d", len(out), len(dst))
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return nil
}
