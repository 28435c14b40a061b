package csv

import (
	"errors"
	"fmt"
	"io"

	"github.com/swiftcharred/charred/charbuf"
	"github.com/swiftcharred/charred/chario"
	"github.com/swiftcharred/charred/strtab"
	"github.com/swiftcharred/charred/visitor"
)

var (
	// ErrUnterminatedQuote is returned when EOS is reached while inside a
	// quoted field.
	ErrUnterminatedQuote = errors.New("csv: unterminated quoted field")
	// ErrFieldCount is returned when a row's width does not match
	// FieldsPerRecord.
	ErrFieldCount = errors.New("csv: wrong number of fields")
	// ErrUsage is the sentinel for caller configuration mistakes. Nothing
	// in this package returns it: the dialect fields are single bytes.
	ErrUsage = errors.New("csv: invalid dialect configuration")
)

// ParseError carries the source position of a malformed-input error.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("csv: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RowReader is the supplier-based CSV row tokenizer described by the
// engine's component design: it is state-free across rows and resumable
// across chunk boundaries, emitting field values through an
// visitor.Array. Unlike Reader (the drop-in compatible entry point),
// RowReader defaults to trimming whitespace around fields, matching the
// engine's stricter supplier-API convention.
type RowReader struct {
	Separator byte
	Quote     byte
	Escape    byte // 0 disables escape handling
	Comment   byte // 0 disables comment rows

	TrimLeading  bool
	TrimTrailing bool
	NilOnEmpty   bool

	Columns *ColumnFilter

	// Visitor materializes each row. Defaults to a visitor that builds
	// []string, treating NilOnEmpty fields as "". When Visitor is nil,
	// Profile selects which default visitor is used.
	Visitor visitor.Array

	// Profile selects the default visitor's allocation strategy when
	// Visitor is nil. Zero value is ProfileImmutable.
	Profile Profile

	// Interner, if set, canonicalizes field values through a shared
	// strtab.Table instead of allocating a fresh string per field.
	Interner *strtab.Table

	r      *chario.Reader
	sb     *charbuf.Buffer
	line   int
	col    int
	done   bool
	mutRow []string
}

// NewRowReader constructs a RowReader over an already-chunked
// chario.Reader, with the engine's default dialect (comma separator,
// double-quote, no escape, '#' comments, leading/trailing trim enabled).
func NewRowReader(r *chario.Reader) *RowReader {
	return &RowReader{
		Separator:    ',',
		Quote:        '"',
		Comment:      '#',
		TrimLeading:  true,
		TrimTrailing: true,
		r:            r,
		line:         1,
	}
}

func (rr *RowReader) buffer() *charbuf.Buffer {
	if rr.sb == nil {
		rr.sb = charbuf.New(rr.TrimLeading, rr.TrimTrailing, rr.NilOnEmpty)
	}
	return rr.sb
}

func (rr *RowReader) arrayVisitor() visitor.Array {
	if rr.Visitor != nil {
		return rr.Visitor
	}
	if rr.Profile == ProfileMutable {
		return &mutableRowVisitor{buf: &rr.mutRow}
	}
	return stringRowVisitor{}
}

// NextRow parses and returns the next row. It returns io.EOF once the
// stream is exhausted; a row consisting solely of one empty field at EOF
// is treated as "no more rows" so that a trailing newline does not produce
// a spurious empty row.
func (rr *RowReader) NextRow() (any, error) {
	if rr.done {
		return nil, io.EOF
	}

	av := rr.arrayVisitor()
	sb := rr.buffer()
	sb.TrimLeading, sb.TrimTrailing, sb.NilOnEmpty = rr.TrimLeading, rr.TrimTrailing, rr.NilOnEmpty
	sb.Clear()

	row := av.NewArray()
	colIdx := 0
	enableComment := rr.Comment != noByte
	first := true
	sawAny := false
	rr.col = 1

	for {
		kind, err := rr.readToken(sb, enableComment && first)
		first = false
		if err != nil {
			return nil, err
		}
		if kind == tokQuote {
			// readToken only emits tokQuote when the quote is the field's
			// leading character; any later quote is literal and folded into
			// the bulk text by the scan loop instead.
			rr.col++
			if err := rr.readQuoted(sb); err != nil {
				return nil, err
			}
			sawAny = true
			continue
		}
		if kind == tokComment {
			rr.consumeComment()
			return rr.NextRow()
		}

		// A "\n" with nothing read yet is a blank line: skip it entirely
		// rather than emitting a one-element empty row, and without
		// tripping the true-EOF check below. A field that is only
		// whitespace counts as blank here too when trimming is on, since
		// the trimmed value is what the caller will actually see.
		if kind == tokEOL && colIdx == 0 && !sawAny && sb.TrimmedEmpty() {
			sb.Clear()
			first = true
			continue
		}

		val, ok := sb.String(internerOf(rr.Interner))
		sawAny = sawAny || (ok && len(val) > 0) || kind == tokSep || colIdx > 0
		if rr.Columns.Test(colIdx) {
			if ok {
				row = av.OnValue(row, val)
			} else {
				row = av.OnValue(row, nil)
			}
		}
		colIdx++
		sb.Clear()

		if kind == tokEOF || kind == tokEOL {
			break
		}
	}

	if !sawAny && colIdx <= 1 {
		return nil, io.EOF
	}
	return av.Finalize(row), nil
}

func internerOf(t *strtab.Table) charbuf.Interner {
	if t == nil {
		return nil
	}
	return t
}

// readToken scans from the current position for the next field separator,
// row terminator, quote-open, or comment mark, appending any unquoted
// literal text it passes over into sb. It mirrors the source's csvRead:
// the fast path is a tight loop over the cached current chunk.
func (rr *RowReader) readToken(sb *charbuf.Buffer, enableComment bool) (int, error) {
	r := rr.r
	sep, quote, escape, comment := rr.Separator, rr.Quote, rr.Escape, rr.Comment
	ec := enableComment

	buf := r.Buffer()
	for buf != nil {
		start := r.Position()
		n := len(buf)
		for pos := start; pos < n; pos++ {
			c := buf[pos]
			switch {
			case ec && c == comment:
				sb.AppendRange(buf, start, pos)
				r.SetPosition(pos + 1)
				rr.col += pos - start
				return tokComment, nil
			case escape != noByte && c == escape:
				sb.AppendRange(buf, start, pos)
				r.SetPosition(pos + 1)
				rr.col += pos - start + 1
				nc, err := r.Read()
				if err != nil {
					if err == io.EOF {
						return tokEOF, nil
					}
					return 0, err
				}
				sb.Append(nc)
				rr.col++
				buf = r.Buffer()
				n = len(buf)
				start = r.Position()
				pos = start - 1
				ec = false
				continue
			case c == quote:
				// A quote only opens a quoted section when it is the very
				// first character of the field: nothing pending in this
				// segment (pos == start) and nothing already accumulated for
				// the field (sb.Len() == 0). Otherwise it is literal text and
				// the scan continues.
				if pos == start && sb.Len() == 0 {
					sb.AppendRange(buf, start, pos)
					r.SetPosition(pos + 1)
					rr.col += pos - start
					return tokQuote, nil
				}
				ec = false
				continue
			case c == sep:
				sb.AppendRange(buf, start, pos)
				r.SetPosition(pos + 1)
				rr.col += pos - start + 1
				return tokSep, nil
			case c == '\n':
				sb.AppendRange(buf, start, pos)
				r.SetPosition(pos + 1)
				rr.line++
				rr.col = 1
				return tokEOL, nil
			case c == '\r':
				sb.AppendRange(buf, start, pos)
				nb, err := r.ReadFrom(pos + 1)
				if err != nil && err != io.EOF {
					return 0, err
				}
				if err == nil && nb != '\n' {
					_ = r.Pushback()
				}
				rr.line++
				rr.col = 1
				return tokEOL, nil
			}
			ec = false
		}
		sb.AppendRange(buf, start, n)
		rr.col += n - start
		var err error
		buf, err = r.NextBuffer()
		if err != nil {
			return 0, err
		}
	}
	rr.done = true
	return tokEOF, nil
}

// readQuoted scans the interior of a quoted field, doubling an escaped
// quote and stopping (with the closing quote consumed and the following
// byte pushed back) at the real terminator. EOS inside a quoted field is a
// recoverable *ParseError.
func (rr *RowReader) readQuoted(sb *charbuf.Buffer) error {
	r := rr.r
	quote := rr.Quote
	buf := r.Buffer()
	for buf != nil {
		start := r.Position()
		n := len(buf)
		for pos := start; pos < n; pos++ {
			if buf[pos] != quote {
				if buf[pos] == '\n' {
					rr.line++
					rr.col = 1
				} else {
					rr.col++
				}
				continue
			}
			sb.AppendRange(buf, start, pos)
			rr.col++
			nb, err := r.ReadFrom(pos + 1)
			if err != nil && err != io.EOF {
				return err
			}
			if err == nil && nb == quote {
				sb.Append(quote)
				rr.col++
				buf = r.Buffer()
				n = len(buf)
				start = r.Position()
				pos = start - 1
				continue
			}
			if err == nil {
				_ = r.Pushback()
			}
			return nil
		}
		sb.AppendRange(buf, start, n)
		var err error
		buf, err = r.NextBuffer()
		if err != nil {
			return err
		}
	}
	return rr.wrapError(rr.col, ErrUnterminatedQuote)
}

func (rr *RowReader) consumeComment() {
	r := rr.r
	buf := r.Buffer()
	for buf != nil {
		start := r.Position()
		n := len(buf)
		for pos := start; pos < n; pos++ {
			if buf[pos] == '\n' {
				r.SetPosition(pos + 1)
				rr.line++
				return
			}
			if buf[pos] == '\r' {
				nb, err := r.ReadFrom(pos + 1)
				if err == nil && nb != '\n' {
					_ = r.Pushback()
				}
				rr.line++
				return
			}
		}
		var err error
		buf, err = r.NextBuffer()
		if err != nil {
			return
		}
	}
}

func (rr *RowReader) wrapError(column int, err error) error {
	return &ParseError{Line: rr.line, Column: column, Err: err}
}

// stringRowVisitor is the default visitor.Array used by RowReader,
// materializing []string rows and folding a NilOnEmpty absent value back
// into "".
type stringRowVisitor struct{}

func (stringRowVisitor) NewArray() any { return []string{} }
func (stringRowVisitor) OnValue(arr any, value any) any {
	row := arr.([]string)
	if value == nil {
		return append(row, "")
	}
	return append(row, value.(string))
}
func (stringRowVisitor) Finalize(arr any) any { return arr.([]string) }

// mutableRowVisitor is the ProfileMutable default visitor.Array: it keeps
// one backing array across NextRow calls, truncating it to length zero
// instead of allocating a fresh slice, so a row only grows the backing
// array's capacity on the call where it first needs to. The row returned
// by Finalize aliases that backing array and is overwritten by the next
// NextRow call.
type mutableRowVisitor struct {
	buf *[]string
}

func (v *mutableRowVisitor) NewArray() any { return (*v.buf)[:0] }
func (v *mutableRowVisitor) OnValue(arr any, value any) any {
	row := arr.([]string)
	if value == nil {
		return append(row, "")
	}
	return append(row, value.(string))
}
func (v *mutableRowVisitor) Finalize(arr any) any {
	*v.buf = arr.([]string)
	return *v.buf
}
