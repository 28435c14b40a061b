package csv

// Dialect token kinds the row tokenizer emits, one per call.
const (
	tokEOF     = -1
	tokEOL     = -2
	tokSep     = 1
	tokQuote   = 2
	tokComment = 3
)

// noByte marks a dialect byte (Escape, Comment) as disabled.
const noByte byte = 0

// Profile selects the allocation strategy of RowReader's default row
// visitor when no Visitor is set explicitly.
type Profile int

const (
	// ProfileImmutable builds each row through a transient builder and
	// finalizes it to a fresh, independently retainable []string. This
	// is the default: every row returned by NextRow is safe to keep
	// past the next call.
	ProfileImmutable Profile = iota
	// ProfileMutable reuses one backing array across NextRow calls
	// instead of allocating a fresh slice per row. The row returned by
	// NextRow is only valid until the next NextRow call overwrites it.
	ProfileMutable
)

// Newline selects the line terminator the Writer emits.
type Newline int

const (
	// NewlineLF writes "\n" after every record (the default).
	NewlineLF Newline = iota
	// NewlineCR writes "\r" after every record.
	NewlineCR
	// NewlineCRLF writes "\r\n" after every record.
	NewlineCRLF
)

func (n Newline) bytes() []byte {
	switch n {
	case NewlineCR:
		return []byte{'\r'}
	case NewlineCRLF:
		return []byte{'\r', '\n'}
	default:
		return []byte{'\n'}
	}
}

// ColumnFilter gates which 0-based column indices the tokenizer emits
// through the row visitor. A nil *ColumnFilter accepts every column.
type ColumnFilter struct {
	allow map[int]bool
	block map[int]bool
}

// AllowColumns builds a filter that only emits the given 0-based indices.
func AllowColumns(idx ...int) *ColumnFilter {
	f := &ColumnFilter{allow: make(map[int]bool, len(idx))}
	for _, i := range idx {
		f.allow[i] = true
	}
	return f
}

// BlockColumns builds a filter that emits every column except the given
// 0-based indices.
func BlockColumns(idx ...int) *ColumnFilter {
	f := &ColumnFilter{block: make(map[int]bool, len(idx))}
	for _, i := range idx {
		f.block[i] = true
	}
	return f
}

// Test reports whether column idx should be emitted.
func (f *ColumnFilter) Test(idx int) bool {
	if f == nil {
		return true
	}
	if f.allow != nil {
		return f.allow[idx]
	}
	if f.block != nil {
		return !f.block[idx]
	}
	return true
}

// ResolveNames turns column names found in header into 0-based indices for
// an allow-list filter, matching column-allow-list resolved against the
// first row.
func ResolveNames(header []string, names ...string) *ColumnFilter {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var idx []int
	for i, h := range header {
		if want[h] {
			idx = append(idx, i)
		}
	}
	return AllowColumns(idx...)
}
