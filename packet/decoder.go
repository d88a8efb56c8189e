package packet

import (
	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/format"
	"github.com/nimbuslab/sensewire/internal/bitstream"
	"github.com/nimbuslab/sensewire/section"
	"github.com/nimbuslab/sensewire/tlv"
	"github.com/nimbuslab/sensewire/variant"
)

// Span records where one field landed in the bitstream, for inspection
// and dump tooling.
type Span struct {
	Kind   format.FieldKind
	Offset int // bit offset from the start of the packet
	Bits   int
	Raw    uint64 // the field's undecoded bit image, right-aligned
}

// Packet is the result of decoding one buffer: the parsed header, the
// resolved layout, the presence bitmap and the decoded field values.
type Packet struct {
	Header  section.Header
	Layout  *variant.Definition
	Present format.KindSet
	HasTLV  bool
	Values  Values
	Records []tlv.Record
	Spans   []Span
	BitLen  int
}

// Has reports whether the packet carries the given field kind.
func (p *Packet) Has(k format.FieldKind) bool {
	return p.Present.Has(k)
}

// Decode parses a packet against the default variant catalog.
func Decode(data []byte) (*Packet, error) {
	return DecodeWithCatalog(data, variant.Default())
}

// DecodeWithCatalog parses a packet, resolving its variant code through
// the supplied catalog. Decoding is non-destructive and allocates its
// own result; data is not retained.
func DecodeWithCatalog(data []byte, catalog *variant.Catalog) (*Packet, error) {
	if len(data) < section.MinPacketSize {
		return nil, errs.ErrDecodeTooShort
	}

	var header section.Header
	if err := header.Parse(data); err != nil {
		return nil, err
	}
	if header.Variant == section.ReservedVariant {
		return nil, errs.ErrReservedVariant
	}

	def, err := catalog.Lookup(header.Variant)
	if err != nil {
		return nil, err
	}

	r := bitstream.NewReader(data)
	r.Skip(section.HeaderBits)

	chain, hasTLV, err := section.ReadPresence(r)
	if err != nil {
		return nil, err
	}

	p := &Packet{Header: header, Layout: def, HasTLV: hasTLV}

	for slot, s := range def.Slots {
		if !section.SlotPresent(chain, slot) {
			continue
		}

		width := s.Kind.Bits()
		if r.Remaining() < width {
			return nil, errs.ErrDecodeTruncated
		}

		offset := r.BitPos()
		raw := bitstream.NewReader(data)
		raw.Skip(offset)

		var image uint64
		for rem := width; rem > 0; {
			chunk := rem
			if chunk > 32 {
				chunk = 32
			}
			image = image<<chunk | uint64(raw.ReadBits(chunk))
			rem -= chunk
		}

		unpackField(r, s.Kind, &p.Values)
		p.Present = p.Present.Add(s.Kind)
		p.Spans = append(p.Spans, Span{Kind: s.Kind, Offset: offset, Bits: width, Raw: image})
	}

	if hasTLV {
		records, err := tlv.ReadAll(r)
		if err != nil {
			return nil, err
		}
		p.Records = records
	}

	p.BitLen = r.BitPos()

	return p, nil
}
