package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	data := []byte("station 42 sequence 7")

	sum := Checksum(data)
	require.NotZero(t, sum)
	require.Equal(t, sum, Checksum(data), "deterministic")
	require.True(t, Verify(data, sum))
	require.False(t, Verify(append(data, 0x00), sum))
	require.False(t, Verify(data, sum^1))
}
