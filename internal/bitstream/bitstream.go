// Package bitstream implements MSB-first bit-level access to byte buffers.
//
// It is the only place in the module where byte/bit cursor arithmetic
// happens: the packet encoder, decoder, TLV subsystem and mesh layer all
// move through the wire image via a Writer or Reader from this package.
package bitstream

// Writer appends N-bit big-endian fields into a caller-supplied byte
// buffer, advancing a monotonically increasing bit cursor.
//
// The buffer must be zeroed by the caller before the first write; the
// writer ORs bits into place and never clears them. A write that would
// run past the buffer's capacity sets the overflow flag and writes
// nothing; callers are expected to size the buffer up front and treat
// overflow as an internal consistency failure.
type Writer struct {
	buf      []byte
	pos      int // bit cursor
	overflow bool
}

// NewWriter creates a writer over buf starting at bit 0.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// WriteBits appends the low n bits of value (n <= 32), most significant
// bit first.
func (w *Writer) WriteBits(value uint32, n int) {
	if n <= 0 {
		return
	}
	if n < 32 {
		value &= (1 << n) - 1
	}
	if w.pos+n > len(w.buf)*8 {
		w.overflow = true
		return
	}

	for n > 0 {
		byteIdx := w.pos >> 3
		bitOff := w.pos & 7
		free := 8 - bitOff

		take := n
		if take > free {
			take = free
		}

		chunk := byte(value>>(n-take)) & byte((1<<take)-1)
		w.buf[byteIdx] |= chunk << (free - take)

		w.pos += take
		n -= take
	}
}

// WriteBit appends a single bit.
func (w *Writer) WriteBit(bit uint32) {
	w.WriteBits(bit, 1)
}

// BitPos returns the current bit cursor.
func (w *Writer) BitPos() int {
	return w.pos
}

// ByteLen returns the number of bytes the cursor has touched so far,
// rounding a partial trailing byte up.
func (w *Writer) ByteLen() int {
	return (w.pos + 7) / 8
}

// Overflowed reports whether any write ran past the buffer capacity.
func (w *Writer) Overflowed() bool {
	return w.overflow
}

// Reader extracts N-bit big-endian fields from a byte buffer, advancing
// a shared bit cursor.
//
// Reads past the end of the buffer yield zero bits instead of faulting;
// the cursor still advances, so field offsets stay consistent. Callers
// that must distinguish real zeros from exhaustion check Remaining()
// before reading.
type Reader struct {
	data []byte
	pos  int // bit cursor
}

// NewReader creates a reader over data starting at bit 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBits extracts the next n bits (n <= 32), most significant first.
// Bits beyond the end of the buffer read as zero.
func (r *Reader) ReadBits(n int) uint32 {
	if n <= 0 {
		return 0
	}

	var result uint32
	for n > 0 {
		byteIdx := r.pos >> 3
		bitOff := r.pos & 7
		avail := 8 - bitOff

		take := n
		if take > avail {
			take = avail
		}

		var chunk byte
		if byteIdx < len(r.data) {
			chunk = (r.data[byteIdx] >> (avail - take)) & byte((1<<take)-1)
		}

		result = (result << take) | uint32(chunk)
		r.pos += take
		n -= take
	}

	return result
}

// ReadBit extracts a single bit.
func (r *Reader) ReadBit() uint32 {
	return r.ReadBits(1)
}

// BitPos returns the current bit cursor.
func (r *Reader) BitPos() int {
	return r.pos
}

// Remaining returns the number of unread bits left in the buffer, or
// zero when the cursor has passed the end.
func (r *Reader) Remaining() int {
	rem := len(r.data)*8 - r.pos
	if rem < 0 {
		return 0
	}

	return rem
}

// Skip advances the cursor by n bits without extracting them.
func (r *Reader) Skip(n int) {
	if n > 0 {
		r.pos += n
	}
}
