// Package charbuf implements the growable byte accumulator shared by the
// csv and json packages. It is the scratchpad tokenizers append decoded
// field and string content into before materialising a Go string.
package charbuf

import "unicode"

// Buffer is a growable byte accumulator with optional leading/trailing
// whitespace trim and an empty-to-absent policy. It mirrors the role of a
// strings.Builder but exposes the trim/nil policy the csv and json
// tokenizers need when turning accumulated bytes into field or string
// values.
type Buffer struct {
	data []byte

	// TrimLeading strips leading Unicode whitespace when materialising a string.
	TrimLeading bool
	// TrimTrailing strips trailing Unicode whitespace when materialising a string.
	TrimTrailing bool
	// NilOnEmpty reports an absent value (rather than "") for empty content.
	NilOnEmpty bool
}

// New returns a Buffer configured with the given trim/nil policy and a
// small initial capacity.
func New(trimLeading, trimTrailing, nilOnEmpty bool) *Buffer {
	return &Buffer{
		data:         make([]byte, 0, 32),
		TrimLeading:  trimLeading,
		TrimTrailing: trimTrailing,
		NilOnEmpty:   nilOnEmpty,
	}
}

// Append appends a single byte, growing the backing array geometrically.
func (b *Buffer) Append(c byte) {
	b.data = append(b.data, c)
}

// AppendRange appends chunk[start:end] verbatim.
func (b *Buffer) AppendRange(chunk []byte, start, end int) {
	if start < end {
		b.data = append(b.data, chunk[start:end]...)
	}
}

// AppendString appends s verbatim.
func (b *Buffer) AppendString(s string) {
	b.data = append(b.data, s...)
}

// Clear resets the logical length to zero without releasing capacity.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
}

// Len reports the number of bytes currently accumulated.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes exposes the accumulated content without copying. Callers must not
// retain the slice past the next Clear/Append call.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Interner produces a single shared string for a given byte range, used to
// deduplicate repeated field and key values across many parses.
type Interner interface {
	Intern(chunk []byte, start, end int) string
}

// String materialises the accumulated content into a Go string, honoring
// TrimLeading, TrimTrailing and NilOnEmpty. ok is false only when
// NilOnEmpty collapsed an empty (after trim) result to the absent value.
// When tab is non-nil the result is interned through it.
func (b *Buffer) String(tab Interner) (s string, ok bool) {
	start, end := b.trimmedBounds()
	if start == end {
		if b.NilOnEmpty {
			return "", false
		}
		return "", true
	}
	if tab != nil {
		return tab.Intern(b.data, start, end), true
	}
	return string(b.data[start:end]), true
}

// StringFromExternal is the fast path used when the buffer itself is
// empty: it builds (or interns) the string directly from an external
// chunk range, skipping the copy into the scratch buffer entirely.
func (b *Buffer) StringFromExternal(chunk []byte, start, end int, tab Interner) (string, bool) {
	if b.Len() != 0 {
		b.AppendRange(chunk, start, end)
		return b.String(tab)
	}
	if start == end {
		if b.NilOnEmpty {
			return "", false
		}
		return "", true
	}
	if tab != nil {
		return tab.Intern(chunk, start, end), true
	}
	return string(chunk[start:end]), true
}

// TrimmedEmpty reports whether the accumulated content is empty once
// TrimLeading/TrimTrailing are applied, without materialising a string.
// Callers that need to decide "is this field blank" before committing to
// Append/Clear should use this instead of comparing Len() to zero, since
// Len() reflects the untrimmed byte count.
func (b *Buffer) TrimmedEmpty() bool {
	start, end := b.trimmedBounds()
	return start == end
}

func (b *Buffer) trimmedBounds() (start, end int) {
	end = len(b.data)
	start = 0
	if b.TrimLeading {
		for start < end && isSpace(b.data[start]) {
			start++
		}
	}
	if b.TrimTrailing {
		for end > start && isSpace(b.data[end-1]) {
			end--
		}
	}
	return start, end
}

// isSpace classifies a byte as Unicode whitespace. CSV and JSON delimiters
// are always ASCII, so treating the buffer as a byte stream and classifying
// each byte independently is sufficient even though multi-byte UTF-8
// whitespace runes are not recognised here.
func isSpace(c byte) bool {
	if c < utf8RuneSelf {
		return unicode.IsSpace(rune(c))
	}
	return false
}

const utf8RuneSelf = 0x80
