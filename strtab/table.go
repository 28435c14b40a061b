// Package strtab implements the canonical string table: an open-addressed,
// chained hash table that returns a single shared string instance for every
// unique byte range it has seen. Interning repeated field and map-key
// values is a significant win when parsing many small documents that share
// a schema (CSV headers, JSON object keys).
package strtab

const (
	initialCapacity = 128
	loadFactor      = 0.75
)

type node struct {
	key  string
	hash uint32
	next *node
}

// Table is a thread-confined canonical string table. It is not safe for
// concurrent mutation; share one across parsers only when the caller
// provides its own coordination.
type Table struct {
	buckets   []*node
	mask      uint32
	threshold int
	size      int
}

// New returns an empty Table sized for a modest working set.
func New() *Table {
	return &Table{
		buckets:   make([]*node, initialCapacity),
		mask:      initialCapacity - 1,
		threshold: int(float64(initialCapacity) * loadFactor),
	}
}

// Size reports the number of distinct strings interned so far.
func (t *Table) Size() int {
	return t.size
}

// Intern returns the canonical string for chunk[start:end]. If an equal
// string has already been interned, the existing instance is returned;
// otherwise a new string is constructed, linked into its bucket, and
// returned. The table never returns two different instances for two equal
// byte ranges.
func (t *Table) Intern(chunk []byte, start, end int) string {
	h := hashRange(chunk, start, end)
	idx := h & t.mask
	head := t.buckets[idx]
	for n := head; n != nil; n = n.next {
		if n.hash == h && rangeEqualsString(chunk, start, end, n.key) {
			return n.key
		}
	}
	key := string(chunk[start:end])
	t.buckets[idx] = &node{key: key, hash: h, next: head}
	t.size++
	t.maybeRehash()
	return key
}

// hashRange computes the classic h = 31*h + b accumulator over a byte
// range, matching the canonicalization table's grounding hash so that
// equal ranges always land in the same bucket.
func hashRange(chunk []byte, start, end int) uint32 {
	var h uint32 = 1
	for i := start; i < end; i++ {
		h = 31*h + uint32(chunk[i])
	}
	return h
}

func rangeEqualsString(chunk []byte, start, end int, s string) bool {
	if end-start != len(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if chunk[start+i] != s[i] {
			return false
		}
	}
	return true
}

// maybeRehash doubles capacity once the load factor is exceeded, splitting
// each existing chain into a "low" and "high" list by the bit just above
// the old mask. This preserves relative order within each new chain and
// avoids the quadratic blowup of rebuilding the table from scratch.
func (t *Table) maybeRehash() {
	if t.size < t.threshold {
		return
	}
	oldBuckets := t.buckets
	oldCap := len(oldBuckets)
	newCap := oldCap * 2
	newBuckets := make([]*node, newCap)
	newMask := uint32(newCap - 1)
	highBit := uint32(oldCap)

	for _, head := range oldBuckets {
		var loHead, loTail, hiHead, hiTail *node
		for n := head; n != nil; {
			next := n.next
			if n.hash&highBit == 0 {
				if loTail == nil {
					loHead = n
				} else {
					loTail.next = n
				}
				loTail = n
			} else {
				if hiTail == nil {
					hiHead = n
				} else {
					hiTail.next = n
				}
				hiTail = n
			}
			n = next
		}
		if loTail != nil {
			loTail.next = nil
		}
		if hiTail != nil {
			hiTail.next = nil
		}
		if loHead != nil {
			newBuckets[hashOf(loHead)&newMask] = loHead
		}
		if hiHead != nil {
			newBuckets[hashOf(hiHead)&newMask] = hiHead
		}
	}
	t.buckets = newBuckets
	t.mask = newMask
	t.threshold = int(float64(newCap) * loadFactor)
}

func hashOf(n *node) uint32 {
	return n.hash
}
