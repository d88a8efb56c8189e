package compress

// ZstdCompressor provides Zstandard compression for archived packet
// batches: the best ratio of the built-in codecs at the highest CPU
// cost, suited to retention storage rather than live relaying.
//
// Two implementations back this type: the cgo build binds libzstd via
// gozstd, the pure-Go build uses klauspost/compress with pooled
// encoders and decoders. Both produce interchangeable frames.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
