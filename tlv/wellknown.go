package tlv

import (
	"fmt"
	"strings"

	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/internal/bitstream"
)

// Well-known record types. Types above TypeUserData are free for
// deployment-specific use up to MaxType.
const (
	TypeVersion    = 1 // key-value string, e.g. "FW 142 HW 3"
	TypeStatus     = 2 // fixed raw layout, see Status
	TypeHealth     = 3 // fixed raw layout, see Health
	TypeDiagnostic = 4 // free-form six-bit text
	TypeUserData   = 5 // free-form raw bytes
)

const (
	statusLen = 9  // session ticks(3) lifetime ticks(3) restarts(2) reason(1)
	healthLen = 11 // cpu temp(1) millivolts(2) free heap(4) active seconds(4)
)

// Reset reason codes carried in the status record.
const (
	ResetPowerOn  = 0
	ResetWatchdog = 1
	ResetBrownout = 2
	ResetSoftware = 3
	ResetExternal = 4
)

// JoinKV joins parallel key and value lists into the space-separated
// announcement form, e.g. ("FW","HW"),("142","3") -> "FW 142 HW 3".
// Keys and values must be non-empty six-bit text without spaces.
func JoinKV(keys, values []string) (string, error) {
	if len(keys) != len(values) {
		return "", errs.ErrTLVKeyValueMismatch
	}

	parts := make([]string, 0, 2*len(keys))
	for i := range keys {
		for _, tok := range [2]string{keys[i], values[i]} {
			if tok == "" || strings.ContainsRune(tok, ' ') || !validSixbit(tok) {
				return "", errs.ErrTLVInvalidCharacter
			}
			parts = append(parts, tok)
		}
	}

	return strings.Join(parts, " "), nil
}

// SplitKV splits an announcement string back into parallel key and
// value lists.
func SplitKV(s string) (keys, values []string, err error) {
	if s == "" {
		return nil, nil, nil
	}

	tokens := strings.Fields(s)
	if len(tokens)%2 != 0 {
		return nil, nil, errs.ErrTLVKeyValueMismatch
	}

	for i := 0; i < len(tokens); i += 2 {
		keys = append(keys, tokens[i])
		values = append(values, tokens[i+1])
	}

	return keys, values, nil
}

// Version creates a TypeVersion record from parallel key/value lists.
func Version(keys, values []string) (Record, error) {
	joined, err := JoinKV(keys, values)
	if err != nil {
		return Record{}, err
	}

	return String(TypeVersion, joined)
}

// Status is the fixed raw layout of a TypeStatus record: uptime
// counters at 5-second resolution, restart count and last reset reason.
type Status struct {
	SessionSeconds  uint32
	LifetimeSeconds uint32
	RestartCount    uint16
	ResetReason     uint8
}

// NewStatus packs a status into a raw record. Second counters saturate
// at the 24-bit tick range rather than failing.
func NewStatus(s Status) (Record, error) {
	buf := make([]byte, statusLen)
	w := bitstream.NewWriter(buf)
	w.WriteBits(saturateTicks(s.SessionSeconds), 24)
	w.WriteBits(saturateTicks(s.LifetimeSeconds), 24)
	w.WriteBits(uint32(s.RestartCount), 16)
	w.WriteBits(uint32(s.ResetReason), 8)

	return Raw(TypeStatus, buf)
}

// ParseStatus unpacks a TypeStatus record.
func ParseStatus(rec Record) (Status, error) {
	if rec.Type != TypeStatus || rec.Format != FormatRaw {
		return Status{}, fmt.Errorf("tlv: record type %d is not a status record", rec.Type)
	}
	if len(rec.Data) != statusLen {
		return Status{}, fmt.Errorf("tlv: status record has length %d, want %d", len(rec.Data), statusLen)
	}

	r := bitstream.NewReader(rec.Data)

	return Status{
		SessionSeconds:  r.ReadBits(24) * 5,
		LifetimeSeconds: r.ReadBits(24) * 5,
		RestartCount:    uint16(r.ReadBits(16)),
		ResetReason:     uint8(r.ReadBits(8)),
	}, nil
}

// Health is the fixed raw layout of a TypeHealth record.
type Health struct {
	CPUTemperature   int8 // degrees Celsius
	SupplyMillivolts uint16
	FreeHeapBytes    uint32
	ActiveSeconds    uint32
}

// NewHealth packs a health snapshot into a raw record.
func NewHealth(h Health) (Record, error) {
	buf := make([]byte, healthLen)
	w := bitstream.NewWriter(buf)
	w.WriteBits(uint32(uint8(h.CPUTemperature)), 8)
	w.WriteBits(uint32(h.SupplyMillivolts), 16)
	w.WriteBits(h.FreeHeapBytes, 32)
	w.WriteBits(h.ActiveSeconds, 32)

	return Raw(TypeHealth, buf)
}

// ParseHealth unpacks a TypeHealth record.
func ParseHealth(rec Record) (Health, error) {
	if rec.Type != TypeHealth || rec.Format != FormatRaw {
		return Health{}, fmt.Errorf("tlv: record type %d is not a health record", rec.Type)
	}
	if len(rec.Data) != healthLen {
		return Health{}, fmt.Errorf("tlv: health record has length %d, want %d", len(rec.Data), healthLen)
	}

	r := bitstream.NewReader(rec.Data)

	return Health{
		CPUTemperature:   int8(r.ReadBits(8)),
		SupplyMillivolts: uint16(r.ReadBits(16)),
		FreeHeapBytes:    r.ReadBits(32),
		ActiveSeconds:    r.ReadBits(32),
	}, nil
}

// Diagnostic creates a free-form text record.
func Diagnostic(text string) (Record, error) {
	return String(TypeDiagnostic, text)
}

// UserData creates a free-form raw record.
func UserData(data []byte) (Record, error) {
	return Raw(TypeUserData, data)
}

func saturateTicks(seconds uint32) uint32 {
	ticks := seconds / 5
	if ticks > 0xFFFFFF {
		return 0xFFFFFF
	}

	return ticks
}
