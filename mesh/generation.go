package mesh

import "github.com/nimbuslab/sensewire/errs"

const generationMod = 4096 // 12-bit counter space

// GenerationNewer reports whether 12-bit generation a is fresher than b
// under modular comparison: diff = (a - b) mod 4096, newer iff
// 0 < diff < 2048. Wraparound is handled, so generation 1 is newer than
// 4095 while 4095 is not newer than 1.
func GenerationNewer(a, b uint16) bool {
	diff := (a - b) % generationMod

	return diff > 0 && diff < generationMod/2
}

// NextGeneration advances a 12-bit generation counter with wraparound.
func NextGeneration(g uint16) uint16 {
	return (g + 1) % generationMod
}

// PackLinkRSSI quantizes a mesh link RSSI in dBm to a 4-bit code in
// 5 dBm steps from a -120 dBm floor, for embedding in neighbour
// reports and similar payloads.
func PackLinkRSSI(dbm int) (uint8, error) {
	if dbm < -120 {
		return 0, errs.ErrRSSILow
	}
	if dbm > -45 {
		return 0, errs.ErrRSSIHigh
	}

	return uint8((dbm + 120) / 5), nil
}

// UnpackLinkRSSI maps a 4-bit mesh RSSI code back to dBm.
func UnpackLinkRSSI(code uint8) int {
	return -120 + int(code&0x0F)*5
}
