package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbuslab/sensewire/format"
)

// batchLike builds input resembling a concatenated packet batch: many
// short records sharing header bytes, so real codecs should shrink it.
func batchLike(n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		buf.Write([]byte{0x08, 0x2A, byte(i >> 8), byte(i), 0x2C, 0xB9, 0x6E, 0x2D, 0x41, 0x40})
	}

	return buf.Bytes()
}

func TestCodecRoundTrip(t *testing.T) {
	types := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}

	data := batchLike(500)

	for _, ct := range types {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := ForType(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			got, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, data, got)

			if ct != format.CompressionNone {
				require.Less(t, len(compressed), len(data), "repetitive batch should shrink")
			}
		})
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionS2, format.CompressionLZ4} {
		codec, err := ForType(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Nil(t, compressed)

		got, err := codec.Decompress(nil)
		require.NoError(t, err)
		require.Nil(t, got)
	}
}

func TestForTypeUnknown(t *testing.T) {
	_, err := ForType(format.CompressionType(0x9))
	require.Error(t, err)
}

func TestDecompressCorrupted(t *testing.T) {
	garbage := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01, 0x02}

	codec, err := ForType(format.CompressionZstd)
	require.NoError(t, err)
	_, err = codec.Decompress(garbage)
	require.Error(t, err)

	codec, err = ForType(format.CompressionS2)
	require.NoError(t, err)
	_, err = codec.Decompress(garbage)
	require.Error(t, err)
}
