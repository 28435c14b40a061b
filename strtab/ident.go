package strtab

// Ident is a namespaced identifier returned by an IdentTable in place of a
// plain string, for callers that want JSON object keys materialised as
// keyword-like symbols rather than strings.
type Ident struct {
	Namespace string
	Name      string
}

func (i Ident) String() string {
	if i.Namespace == "" {
		return i.Name
	}
	return i.Namespace + "/" + i.Name
}

type identNode struct {
	key  Ident
	hash uint32
	next *identNode
}

// IdentTable is a construction-light variant of Table: instead of
// deduplicating to a canonical Go string, it deduplicates to a canonical
// Ident value, avoiding a string allocation entirely once an identifier has
// been seen once for a given namespace.
type IdentTable struct {
	namespace string
	buckets   []*identNode
	mask      uint32
	threshold int
	size      int
}

// NewIdentTable returns an empty IdentTable whose identifiers all share ns.
func NewIdentTable(ns string) *IdentTable {
	return &IdentTable{
		namespace: ns,
		buckets:   make([]*identNode, initialCapacity),
		mask:      initialCapacity - 1,
		threshold: int(float64(initialCapacity) * loadFactor),
	}
}

// Intern returns the canonical Ident for chunk[start:end].
func (t *IdentTable) Intern(chunk []byte, start, end int) Ident {
	h := hashRange(chunk, start, end)
	idx := h & t.mask
	head := t.buckets[idx]
	for n := head; n != nil; n = n.next {
		if n.hash == h && rangeEqualsString(chunk, start, end, n.key.Name) {
			return n.key
		}
	}
	id := Ident{Namespace: t.namespace, Name: string(chunk[start:end])}
	t.buckets[idx] = &identNode{key: id, hash: h, next: head}
	t.size++
	t.maybeRehash()
	return id
}

func (t *IdentTable) maybeRehash() {
	if t.size < t.threshold {
		return
	}
	oldBuckets := t.buckets
	oldCap := len(oldBuckets)
	newCap := oldCap * 2
	newBuckets := make([]*identNode, newCap)
	newMask := uint32(newCap - 1)

	for _, head := range oldBuckets {
		var loHead, loTail, hiHead, hiTail *identNode
		for n := head; n != nil; {
			next := n.next
			if n.hash&uint32(oldCap) == 0 {
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
			newBuckets[loHead.hash&newMask] = loHead
		}
		if hiHead != nil {
			newBuckets[hiHead.hash&newMask] = hiHead
		}
	}
	t.buckets = newBuckets
	t.mask = newMask
	t.threshold = int(float64(newCap) * loadFactor)
}
