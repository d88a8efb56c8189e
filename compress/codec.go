// Package compress provides the payload codecs used by the packet
// archive: zstd for cold storage, S2 and LZ4 for cheap on-the-fly
// batching, and a pass-through for pre-compressed or tiny payloads.
//
// Sensor packets are small and repetitive across a batch (shared
// headers, recurring presence chains), so even the fast codecs recover
// most of the redundancy; zstd is worth its CPU only for archival.
package compress

import (
	"fmt"

	"github.com/nimbuslab/sensewire/format"
)

// Compressor compresses one concatenated packet batch.
//
// The returned slice is newly allocated and owned by the caller; the
// input is never modified. Implementations may reuse internal buffers
// and must be safe for concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm. Corrupted
// or foreign input fails with an error, never with silent garbage.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions of one algorithm.
type Codec interface {
	Compressor
	Decompressor
}

// ForType returns the codec for a wire compression type.
func ForType(t format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("compress: unsupported compression type %s", t)
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}
