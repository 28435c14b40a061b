package csv

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var (
	errNilWriter      = errors.New("csv: writer is nil")
	errWriterNoTarget = errors.New("csv: writer destination cannot be nil")
)

// QuotePredicate decides whether a field must be wrapped in quotes. The
// default, NeedsQuote, only quotes fields that contain the separator,
// quote, or a line terminator.
type QuotePredicate func(field string, comma, quote byte) bool

// NeedsQuote is the default QuotePredicate: quote only when the field
// contains the separator, the quote character, or a line terminator.
func NeedsQuote(field string, comma, quote byte) bool {
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case quote, comma, '\n', '\r':
			return true
		}
	}
	return false
}

// AlwaysQuote is a QuotePredicate that quotes every field unconditionally.
func AlwaysQuote(field string, comma, quote byte) bool { return true }

// Writer provides high-throughput CSV emission with configurable
// delimiters, newline policy, and quoting rules.
type Writer struct {
	dst *bufio.Writer

	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// Newline selects the line terminator. Default is NewlineLF.
	Newline Newline
	// UseCRLF is kept for source compatibility with older callers; when
	// true it overrides Newline to NewlineCRLF.
	UseCRLF bool
	// AlwaysQuote forces quoting for all fields when enabled. Superseded
	// by QuotePredicate when that field is set explicitly.
	AlwaysQuote bool
	// QuotePredicate, if set, overrides both AlwaysQuote and the default
	// NeedsQuote predicate.
	QuotePredicate QuotePredicate

	err error
}

// NewWriter creates a new Writer with internal buffering tuned for bulk
// writes.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	return &Writer{
		dst:   bufio.NewWriterSize(w, defaultBufferSize),
		Comma: ',',
		Quote: '"',
	}
}

// Reset updates the underlying writer while preserving the configuration
// flags.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	w.err = nil
}

func (w *Writer) newline() []byte {
	if w.UseCRLF {
		return NewlineCRLF.bytes()
	}
	return w.Newline.bytes()
}

func (w *Writer) quotePredicate() QuotePredicate {
	if w.QuotePredicate != nil {
		return w.QuotePredicate
	}
	if w.AlwaysQuote {
		return AlwaysQuote
	}
	return NeedsQuote
}

// Write emits a single CSV record. The record is terminated with the
// configured newline sequence.
func (w *Writer) Write(record []string) error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}

	comma := w.Comma
	if comma == 0 {
		comma = ','
	}
	quote := w.Quote
	if quote == 0 {
		quote = '"'
	}
	needsQuote := w.quotePredicate()

	for i := range record {
		if i > 0 {
			if err := w.dst.WriteByte(comma); err != nil {
				w.err = err
				return err
			}
		}
		if err := w.writeField(record[i], comma, quote, needsQuote); err != nil {
			w.err = err
			return err
		}
	}

	if _, err := w.dst.Write(w.newline()); err != nil {
		w.err = err
		return err
	}
	return nil
}

// WriteAll writes multiple records, stopping at the first error.
func (w *Writer) WriteAll(records [][]string) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// WriteFunc streams records produced by next until it returns io.EOF,
// writing each one without requiring the caller to materialize the full
// record set up front.
func (w *Writer) WriteFunc(next func() ([]string, error)) error {
	if w == nil {
		return errNilWriter
	}
	for {
		record, err := next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

func (w *Writer) writeField(field string, comma, quote byte, needsQuote QuotePredicate) error {
	if !needsQuote(field, comma, quote) {
		_, err := w.dst.WriteString(field)
		return err
	}
	if err := w.dst.WriteByte(quote); err != nil {
		return err
	}

	start := 0
	for i := 0; i < len(field); i++ {
		if field[i] == quote {
			if start < i {
				if _, err := w.dst.WriteString(field[start:i]); err != nil {
					return err
				}
			}
			if _, err := w.dst.Write([]byte{quote, quote}); err != nil {
				return err
			}
			start = i + 1
		}
	}
	if start < len(field) {
		if _, err := w.dst.WriteString(field[start:]); err != nil {
			return err
		}
	}
	return w.dst.WriteByte(quote)
}

// ConcatStreams reads every CSV input in readers in order and writes each
// row through w, the bulk-concatenation transducer described for the
// engine's external interfaces. When skipHeaderAfterFirst is set, the
// first row of every input after the first is discarded.
func ConcatStreams(readers []io.Reader, skipHeaderAfterFirst bool, w *Writer) error {
	for i, src := range readers {
		r := NewReader(src)
		if skipHeaderAfterFirst && i > 0 {
			if _, err := r.Read(); err != nil && err != io.EOF {
				return err
			}
		}
		for {
			record, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

// Concat renders records in-memory as a single CSV-formatted string using
// the given dialect, a bulk-conversion helper for callers that already
// hold every record and want one allocation instead of a stream of
// WriteByte/WriteString calls through a bufio.Writer.
func Concat(records [][]string, comma, quote byte, newline Newline) string {
	if comma == 0 {
		comma = ','
	}
	if quote == 0 {
		quote = '"'
	}
	nl := string(newline.bytes())

	var sb strings.Builder
	for _, record := range records {
		for i, field := range record {
			if i > 0 {
				sb.WriteByte(comma)
			}
			if NeedsQuote(field, comma, quote) {
				sb.WriteByte(quote)
				start := 0
				for j := 0; j < len(field); j++ {
					if field[j] == quote {
						sb.WriteString(field[start:j])
						sb.WriteByte(quote)
						sb.WriteByte(quote)
						start = j + 1
					}
				}
				sb.WriteString(field[start:])
				sb.WriteByte(quote)
			} else {
				sb.WriteString(field)
			}
		}
		sb.WriteString(nl)
	}
	return sb.String()
}
