package tlv

// Six-bit packed text alphabet: space=0, a-z=1..26, 0-9=27..36,
// A-Z=37..62. Code 63 is never produced by the encoder and decodes to
// the unrecognized placeholder.
const unrecognizedChar = '?'

func sixbitEncode(ch byte) (uint32, bool) {
	switch {
	case ch == ' ':
		return 0, true
	case ch >= 'a' && ch <= 'z':
		return uint32(ch-'a') + 1, true
	case ch >= '0' && ch <= '9':
		return uint32(ch-'0') + 27, true
	case ch >= 'A' && ch <= 'Z':
		return uint32(ch-'A') + 37, true
	default:
		return 0, false
	}
}

func sixbitDecode(code uint32) byte {
	switch {
	case code == 0:
		return ' '
	case code <= 26:
		return byte('a' + code - 1)
	case code <= 36:
		return byte('0' + code - 27)
	case code <= 62:
		return byte('A' + code - 37)
	default:
		return unrecognizedChar
	}
}

// validSixbit reports whether every character of s is encodable.
func validSixbit(s string) bool {
	for i := 0; i < len(s); i++ {
		if _, ok := sixbitEncode(s[i]); !ok {
			return false
		}
	}

	return true
}
