package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("page payload with plenty of repetition "), 64)

	for name, c := range map[string]Compressor{
		"fast": NewFast(),
		"high": NewHigh(),
	} {
		comp := c.Compress(payload)
		require.Less(t, len(comp), len(payload), name)

		dst := make([]byte, len(payload))
		require.NoError(t, c.Expand(dst, comp), name)
		require.Equal(t, payload, dst, name)
	}
}

func TestExpandRejectsWrongLength(t *testing.T) {
	c := NewFast()
	comp := c.Compress([]byte("some page payload, long enough to matter"))

	dst := make([]byte, 10)
	require.Error(t, c.Expand(dst, comp))
}

func TestIncompressibleInput(t *testing.T) {
	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte(i*31 + 7)
	}
	c := NewHigh()
	dst := make([]byte, len(payload))
	require.NoError(t, c.Expand(dst, c.Compress(payload)))
	require.Equal(t, payload, dst)
}
