package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferWrite(t *testing.T) {
	bb := NewByteBuffer(8)
	_, err := bb.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, bb.WriteByte('d'))
	require.Equal(t, []byte("abcd"), bb.Bytes())
	require.Equal(t, 4, bb.Len())

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
	require.Equal(t, "abcd", out.String())

	bb.Reset()
	require.Zero(t, bb.Len())
}

func TestByteBufferPoolReuse(t *testing.T) {
	p := NewByteBufferPool(16, 64)

	bb := p.Get()
	require.NotNil(t, bb)
	_, err := bb.Write([]byte("payload"))
	require.NoError(t, err)
	p.Put(bb)

	got := p.Get()
	require.Zero(t, got.Len(), "pooled buffers come back empty")
}

func TestByteBufferPoolDropsOversized(t *testing.T) {
	p := NewByteBufferPool(16, 32)

	bb := p.Get()
	_, err := bb.Write(make([]byte, 128))
	require.NoError(t, err)
	p.Put(bb) // exceeds the threshold, must not be retained

	got := p.Get()
	require.LessOrEqual(t, cap(got.B), 32, "oversized buffer was not pooled")
}

func TestSharedBatchPool(t *testing.T) {
	bb := GetBatchBuffer()
	require.NotNil(t, bb)
	require.Zero(t, bb.Len())
	PutBatchBuffer(bb)
	PutBatchBuffer(nil) // tolerated
}
