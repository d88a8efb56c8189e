// Package archive implements the gateway retention format: batches of
// sensor packets concatenated, compressed and checksummed into
// self-delimiting records on any io stream.
//
// Record layout, big-endian:
//
//	magic(2) codec(1) count(2) uncompressedLen(4) compressedLen(4)
//	checksum(8) payload(compressedLen)
//
// The payload decompresses to a sequence of length-prefixed packets:
// len(2) followed by the packet bytes, count times. The checksum is the
// xxHash64 of the compressed payload, verified before decompression.
package archive

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nimbuslab/sensewire/compress"
	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/format"
	"github.com/nimbuslab/sensewire/internal/hash"
	"github.com/nimbuslab/sensewire/internal/pool"
	"github.com/nimbuslab/sensewire/section"
)

const (
	// Magic marks the start of every archive record.
	Magic = 0x5357

	headerSize = 21

	// MaxPacketSize bounds a single archived packet; the length prefix
	// is 16 bits.
	MaxPacketSize = 0xFFFF
)

// Writer appends compressed packet batches to an io.Writer.
type Writer struct {
	w     io.Writer
	ctype format.CompressionType
	codec compress.Codec
}

// NewWriter creates a batch writer using the given compression type for
// every record it writes.
func NewWriter(w io.Writer, ctype format.CompressionType) (*Writer, error) {
	codec, err := compress.ForType(ctype)
	if err != nil {
		return nil, err
	}

	return &Writer{w: w, ctype: ctype, codec: codec}, nil
}

// WriteBatch writes one record holding the given packets. Packets
// shorter than a sensor header or longer than MaxPacketSize are
// rejected before anything is written.
func (w *Writer) WriteBatch(packets [][]byte) error {
	for _, p := range packets {
		if len(p) < section.MinPacketSize || len(p) > MaxPacketSize {
			return errs.ErrArchivePacketSize
		}
	}

	bb := pool.GetBatchBuffer()
	defer pool.PutBatchBuffer(bb)

	var prefix [2]byte
	for _, p := range packets {
		binary.BigEndian.PutUint16(prefix[:], uint16(len(p)))
		bb.Write(prefix[:])
		bb.Write(p)
	}

	compressed, err := w.codec.Compress(bb.Bytes())
	if err != nil {
		return fmt.Errorf("archive: batch compression failed: %w", err)
	}

	header := make([]byte, headerSize)
	binary.BigEndian.PutUint16(header[0:2], Magic)
	header[2] = byte(w.ctype)
	binary.BigEndian.PutUint16(header[3:5], uint16(len(packets)))
	binary.BigEndian.PutUint32(header[5:9], uint32(bb.Len()))
	binary.BigEndian.PutUint32(header[9:13], uint32(len(compressed)))
	binary.BigEndian.PutUint64(header[13:21], hash.Checksum(compressed))

	if _, err := w.w.Write(header); err != nil {
		return err
	}
	if _, err := w.w.Write(compressed); err != nil {
		return err
	}

	return nil
}

// Reader consumes archive records from an io.Reader.
type Reader struct {
	r io.Reader
}

// NewReader creates a batch reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadBatch reads the next record and returns its packets. io.EOF marks
// a clean end of the stream; a record cut off mid-way fails with
// ErrArchiveRecordShort.
func (r *Reader) ReadBatch() ([][]byte, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r.r, header); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}

		return nil, errs.ErrArchiveRecordShort
	}

	if binary.BigEndian.Uint16(header[0:2]) != Magic {
		return nil, errs.ErrArchiveBadMagic
	}

	ctype := format.CompressionType(header[2])
	count := int(binary.BigEndian.Uint16(header[3:5]))
	uncompressedLen := int(binary.BigEndian.Uint32(header[5:9]))
	compressedLen := int(binary.BigEndian.Uint32(header[9:13]))
	checksum := binary.BigEndian.Uint64(header[13:21])

	codec, err := compress.ForType(ctype)
	if err != nil {
		return nil, err
	}

	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(r.r, compressed); err != nil {
		return nil, errs.ErrArchiveRecordShort
	}

	if !hash.Verify(compressed, checksum) {
		return nil, errs.ErrArchiveChecksum
	}

	payload, err := codec.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("archive: batch decompression failed: %w", err)
	}
	if len(payload) != uncompressedLen {
		return nil, errs.ErrArchiveRecordShort
	}

	packets := make([][]byte, 0, count)
	off := 0
	for i := 0; i < count; i++ {
		if off+2 > len(payload) {
			return nil, errs.ErrArchiveRecordShort
		}
		plen := int(binary.BigEndian.Uint16(payload[off : off+2]))
		off += 2
		if off+plen > len(payload) {
			return nil, errs.ErrArchiveRecordShort
		}
		packet := make([]byte, plen)
		copy(packet, payload[off:off+plen])
		packets = append(packets, packet)
		off += plen
	}

	return packets, nil
}
