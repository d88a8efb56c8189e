// Package hash wraps the xxHash64 primitives used for archive record
// integrity checks.
package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 of a payload.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Verify reports whether data hashes to the expected checksum.
func Verify(data []byte, expected uint64) bool {
	return xxhash.Sum64(data) == expected
}
