package chario

import (
	"errors"
	"io"
)

// ErrPushbackTooFar is returned by Pushback when the position is already at
// the start of the current chunk, so the pushback would cross a chunk
// boundary. Pushback does not count reads: repeated calls each step back
// one more byte for as long as the position stays above zero.
var ErrPushbackTooFar = errors.New("chario: pushback exceeds one byte or crosses a chunk boundary")

// Reader chains the chunks produced by a Supplier into one logical byte
// stream. It exposes the current chunk and an index into it so tokenizers
// can run tight for-loops over Buffer()[Position():] without a function
// call per byte, calling NextBuffer only when the chunk is exhausted.
//
// Between NextBuffer calls the chunk reference returned by Buffer does not
// change, so callers may cache it locally across a scan.
type Reader struct {
	supplier Supplier
	buf      []byte
	pos      int
	eos      bool
}

// NewReader constructs a Reader over supplier and loads its first chunk.
func NewReader(supplier Supplier) (*Reader, error) {
	r := &Reader{supplier: supplier}
	if _, err := r.NextBuffer(); err != nil {
		return nil, err
	}
	return r, nil
}

// Buffer returns the current chunk, or nil at end of stream.
func (r *Reader) Buffer() []byte { return r.buf }

// Position returns the index of the next unread byte within Buffer().
func (r *Reader) Position() int { return r.pos }

// SetPosition repositions within the current chunk; 0 <= pos <= len(Buffer()).
func (r *Reader) SetPosition(pos int) { r.pos = pos }

// EOS reports whether the stream is exhausted.
func (r *Reader) EOS() bool { return r.eos }

// NextBuffer advances to the next chunk, setting EOS if the supplier is
// exhausted. It returns the new chunk (nil at EOS).
func (r *Reader) NextBuffer() ([]byte, error) {
	buf, err := r.supplier.Next()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		r.buf = nil
		r.pos = -1
		r.eos = true
		return nil, nil
	}
	r.buf = buf
	r.pos = 0
	return buf, nil
}

// Read returns the next byte, or io.EOF at end of stream.
func (r *Reader) Read() (byte, error) {
	if r.eos {
		return 0, io.EOF
	}
	if r.pos < len(r.buf) {
		b := r.buf[r.pos]
		r.pos++
		return b, nil
	}
	if _, err := r.NextBuffer(); err != nil {
		return 0, err
	}
	if r.eos {
		return 0, io.EOF
	}
	return r.Read()
}

// ReadFull fills dst entirely or returns io.EOF if the stream ends first;
// it never returns a short count.
func (r *Reader) ReadFull(dst []byte) error {
	filled := 0
	for filled < len(dst) {
		if r.eos {
			return io.EOF
		}
		if r.pos >= len(r.buf) {
			if _, err := r.NextBuffer(); err != nil {
				return err
			}
			if r.eos {
				return io.EOF
			}
		}
		n := copy(dst[filled:], r.buf[r.pos:])
		r.pos += n
		filled += n
	}
	return nil
}

// ReadFrom repositions to pos within the current chunk and reads one byte,
// the combined operation the csv/json tokenizers use to peek one byte
// ahead after recording a field boundary.
func (r *Reader) ReadFrom(pos int) (byte, error) {
	r.pos = pos
	return r.Read()
}

// Pushback revokes the single most recent Read, so long as it has not
// crossed into a new chunk since. Pushing back further than the start of
// the current chunk is a programming error.
func (r *Reader) Pushback() error {
	if r.pos <= 0 {
		return ErrPushbackTooFar
	}
	r.pos--
	return nil
}

// Close closes the underlying supplier.
func (r *Reader) Close() error {
	return r.supplier.Close()
}
