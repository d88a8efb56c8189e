// Package tlv implements the typed variable-length extension records
// appended after a packet's fixed fields.
//
// Each record travels as format(1 bit) | type(6 bits) | more(1 bit) |
// length(8 bits) | payload, where the payload is either raw bytes or
// six-bit packed text. A packet carries at most MaxRecords records.
package tlv

import (
	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/internal/bitstream"
)

const (
	// MaxRecords is the per-packet record cap.
	MaxRecords = 8
	// MaxLength is the per-record payload cap, in bytes or characters.
	MaxLength = 255
	// MaxType is the highest 6-bit record type.
	MaxType = 63

	headerBits = 16 // format + type + more + length
)

// Format selects the payload encoding of a record.
type Format uint8

const (
	FormatRaw    Format = 0 // raw bytes, 8 bits each
	FormatString Format = 1 // six-bit packed text
)

func (f Format) String() string {
	if f == FormatString {
		return "string"
	}

	return "raw"
}

// Record is one typed extension record. Exactly one of Data or Text is
// meaningful, selected by Format.
type Record struct {
	Format Format
	Type   uint8
	Data   []byte
	Text   string
}

// Raw creates a raw-bytes record.
func Raw(typ uint8, data []byte) (Record, error) {
	if typ > MaxType {
		return Record{}, errs.ErrTLVTypeTooHigh
	}
	if data == nil {
		return Record{}, errs.ErrTLVDataNil
	}
	if len(data) > MaxLength {
		return Record{}, errs.ErrTLVTooLong
	}

	return Record{Format: FormatRaw, Type: typ, Data: data}, nil
}

// String creates a six-bit packed text record. Characters outside the
// alphabet (space, a-z, 0-9, A-Z) are rejected at encode time.
func String(typ uint8, text string) (Record, error) {
	if typ > MaxType {
		return Record{}, errs.ErrTLVTypeTooHigh
	}
	if len(text) > MaxLength {
		return Record{}, errs.ErrTLVTooLong
	}
	if !validSixbit(text) {
		return Record{}, errs.ErrTLVInvalidCharacter
	}

	return Record{Format: FormatString, Type: typ, Text: text}, nil
}

// Len returns the record's wire length field: payload units, bytes for
// raw records and characters for string records.
func (r Record) Len() int {
	if r.Format == FormatString {
		return len(r.Text)
	}

	return len(r.Data)
}

// Bits returns the record's total width in the bitstream.
func (r Record) Bits() int {
	if r.Format == FormatString {
		return headerBits + 6*len(r.Text)
	}

	return headerBits + 8*len(r.Data)
}

// Pack writes the record through the bit writer. more marks whether
// another record follows.
func (r Record) Pack(w *bitstream.Writer, more bool) {
	w.WriteBits(uint32(r.Format), 1)
	w.WriteBits(uint32(r.Type), 6)
	if more {
		w.WriteBit(1)
	} else {
		w.WriteBit(0)
	}
	w.WriteBits(uint32(r.Len()), 8)

	if r.Format == FormatString {
		for i := 0; i < len(r.Text); i++ {
			code, _ := sixbitEncode(r.Text[i])
			w.WriteBits(code, 6)
		}

		return
	}
	for _, b := range r.Data {
		w.WriteBits(uint32(b), 8)
	}
}

// Read consumes one record from the reader. It returns the record and
// the more flag; ErrDecodeTruncated when the declared payload runs past
// the buffer.
func Read(r *bitstream.Reader) (Record, bool, error) {
	if r.Remaining() < headerBits {
		return Record{}, false, errs.ErrDecodeTruncated
	}

	rec := Record{Format: Format(r.ReadBit())}
	rec.Type = uint8(r.ReadBits(6))
	more := r.ReadBit() == 1
	length := int(r.ReadBits(8))

	if rec.Format == FormatString {
		if r.Remaining() < 6*length {
			return Record{}, false, errs.ErrDecodeTruncated
		}
		text := make([]byte, length)
		for i := range text {
			text[i] = sixbitDecode(r.ReadBits(6))
		}
		rec.Text = string(text)

		return rec, more, nil
	}

	if r.Remaining() < 8*length {
		return Record{}, false, errs.ErrDecodeTruncated
	}
	rec.Data = make([]byte, length)
	for i := range rec.Data {
		rec.Data[i] = byte(r.ReadBits(8))
	}

	return rec, more, nil
}

// ReadAll consumes records until the more flag clears or MaxRecords is
// reached.
func ReadAll(r *bitstream.Reader) ([]Record, error) {
	records := make([]Record, 0, 2)
	for {
		rec, more, err := Read(r)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)

		if !more || len(records) == MaxRecords {
			return records, nil
		}
	}
}
