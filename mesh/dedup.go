package mesh

// DedupRing suppresses duplicate mesh traffic by remembering the last
// seen (station, sequence) pairs in a fixed-capacity circular buffer.
// Oldest entries are evicted first, so a pair becomes acceptable again
// once the ring's capacity has cycled past it.
//
// The ring is mutable, non-reentrant state: confine it to a single
// receive loop or guard it with external locking.
type DedupRing struct {
	entries []dedupEntry
	head    int
	count   int
}

type dedupEntry struct {
	station  uint16
	sequence uint16
}

// DefaultDedupCapacity is the ring size used by NewDedupRing when the
// caller passes zero.
const DefaultDedupCapacity = 32

// NewDedupRing creates a ring holding up to capacity pairs.
func NewDedupRing(capacity int) *DedupRing {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}

	return &DedupRing{entries: make([]dedupEntry, capacity)}
}

// CheckAndAdd reports whether the pair is new. A new pair is recorded,
// overwriting the oldest slot when the ring is full; a duplicate leaves
// the ring untouched.
func (d *DedupRing) CheckAndAdd(station, sequence uint16) bool {
	for i := 0; i < d.count; i++ {
		e := d.entries[(d.head+i)%len(d.entries)]
		if e.station == station && e.sequence == sequence {
			return false
		}
	}

	if d.count < len(d.entries) {
		d.entries[(d.head+d.count)%len(d.entries)] = dedupEntry{station, sequence}
		d.count++

		return true
	}

	d.entries[d.head] = dedupEntry{station, sequence}
	d.head = (d.head + 1) % len(d.entries)

	return true
}

// Len returns the number of currently valid entries.
func (d *DedupRing) Len() int {
	return d.count
}

// Reset drops every recorded pair.
func (d *DedupRing) Reset() {
	d.head = 0
	d.count = 0
}
