package csv

import (
	"io"

	"github.com/swiftcharred/charred/chario"
)

const defaultBufferSize = 1 << 10 // 1024 bytes

// Reader provides high-performance CSV parsing with support for customizable
// delimiters. It is the drop-in compatible entry point: construct one with
// NewReader over any io.Reader and call Read/ReadAll exactly as before. For
// the fuller dialect (escape bytes, comment rows, column filtering, string
// interning) build a RowReader directly over a chario.Reader instead.
type Reader struct {
	src io.Reader

	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// Escape, if non-zero, is a backslash-style escape byte recognized
	// outside of quotes.
	Escape byte
	// Comment, if non-zero, marks a byte that begins a skippable comment
	// row when it is the first byte of a line.
	Comment byte
	// ReuseRecord is accepted for source compatibility with older callers
	// but no longer changes allocation strategy: the RowReader engine
	// underneath already avoids a per-field allocation pass.
	ReuseRecord bool
	// FieldsPerRecord expects each record to contain this many fields. Zero
	// captures the width of the first record.
	FieldsPerRecord int
	// TrimLeading and TrimTrailing control whitespace trimming around each
	// field. Both default to false for this compatibility entry point.
	TrimLeading  bool
	TrimTrailing bool

	rr      *RowReader
	started bool
}

// NewReader creates a Reader that consumes CSV data from r, panicking if r is
// nil. Internal buffers are set up on the first call to Read.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("csv: reader source cannot be nil")
	}
	return &Reader{
		src:   r,
		Comma: ',',
		Quote: '"',
	}
}

func (r *Reader) init() error {
	sup := chario.SkipBOM(chario.NewAllocatingSupplier(r.src, defaultBufferSize))
	cr, err := chario.NewReader(sup)
	if err != nil {
		return err
	}
	rr := NewRowReader(cr)
	rr.Separator = r.Comma
	if rr.Separator == 0 {
		rr.Separator = ','
	}
	rr.Quote = r.Quote
	if rr.Quote == 0 {
		rr.Quote = '"'
	}
	rr.Escape = r.Escape
	rr.Comment = r.Comment
	rr.TrimLeading = r.TrimLeading
	rr.TrimTrailing = r.TrimTrailing
	rr.Visitor = stringRowVisitor{}
	r.rr = rr
	return nil
}

// Read parses the next CSV record from the underlying stream. It returns dst
// containing the field values (a fresh slice on every call, whatever
// ReuseRecord is set to) and an err indicating success or failure; io.EOF
// signals that no more records remain.
func (r *Reader) Read() (dst []string, err error) {
	if r == nil || r.src == nil {
		return nil, io.EOF
	}
	if !r.started {
		r.started = true
		if err := r.init(); err != nil {
			return nil, err
		}
	}

	rec, err := r.rr.NextRow()
	if err != nil {
		return nil, err
	}
	row := rec.([]string)

	if r.FieldsPerRecord <= 0 {
		r.FieldsPerRecord = len(row)
		return row, nil
	}
	if len(row) != r.FieldsPerRecord {
		return row, ErrFieldCount
	}
	return row, nil
}

// ReadAll exhausts the reader, repeatedly calling Read to collect records
// until io.EOF and returning the accumulated records slice. On the first
// non-EOF error it returns nil records and that error.
func (r *Reader) ReadAll() (records [][]string, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}
