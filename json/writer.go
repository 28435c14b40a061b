// Package json implements a recursive-descent JSON reader and a
// recursive-emission JSON writer over the engine's chunked character
// stream, honoring RFC 8259 with the single permissive extension that
// unpaired surrogate escapes round-trip as their raw 16-bit value.
package json

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"

	"github.com/swiftcharred/charred/charbuf"
)

// ErrNaN and ErrInf are returned by Writer.WriteNumber when asked to emit
// a non-finite float, which JSON forbids.
var (
	ErrNaN = errors.New("json: cannot encode NaN")
	ErrInf = errors.New("json: cannot encode +/-Inf")
)

// ErrNonStringKey reports a map key that is not a string. Nothing in this
// package returns it: WriteMap takes each key as KV.Key, which is a string.
var ErrNonStringKey = errors.New("json: map keys must be strings")

const jsSepLow, jsSepHigh = 0x2028, 0x2029

// ObjectCallback is invoked by WriteObject for any value that is not one
// of the writer's built-in primitives (string, number, bool, nil). It is
// responsible for recognizing host collections, coercing user-defined
// types, and calling back into WriteArray/WriteMap/WriteObject.
type ObjectCallback func(w *Writer, obj any) error

// Writer emits JSON with three independent escape switches and an
// optional indent policy, delegating non-primitive values to a
// caller-supplied ObjectCallback.
type Writer struct {
	dst *bufio.Writer

	// EscapeUnicode emits \uXXXX for any character >= 128.
	EscapeUnicode bool
	// EscapeJSSeparators emits  /  explicitly even when
	// EscapeUnicode is off.
	EscapeJSSeparators bool
	// EscapeSlash emits \/ instead of /.
	EscapeSlash bool
	// IndentStr, if non-empty, pretty-prints object entries one per
	// line, prefixed by IndentStr repeated depth times.
	IndentStr string
	// Object is consulted for any value WriteObject does not recognize
	// as a built-in primitive.
	Object ObjectCallback

	cb     *charbuf.Buffer
	indent int
	err    error
}

// NewWriter constructs a Writer with all three escape switches enabled
// and compact (non-indented) output, matching the engine's documented
// writer defaults.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		dst:                bufio.NewWriterSize(w, 4096),
		EscapeUnicode:      true,
		EscapeJSSeparators: true,
		EscapeSlash:        true,
	}
}

func (w *Writer) buffer() *charbuf.Buffer {
	if w.cb == nil {
		w.cb = charbuf.New(false, false, false)
	}
	w.cb.Clear()
	return w.cb
}

// Flush flushes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.dst.Flush()
}

func isJSSep(r rune) bool { return r == jsSepLow || r == jsSepHigh }

func appendEscape(cb *charbuf.Buffer, c byte) {
	cb.Append('\\')
	cb.Append(c)
}

func appendHexEscape(cb *charbuf.Buffer, r rune) {
	if r > 0xFFFF {
		// Above the BMP: write the UTF-16 surrogate pair as two escapes.
		r -= 0x10000
		appendHexEscape(cb, 0xD800+(r>>10))
		appendHexEscape(cb, 0xDC00+(r&0x3FF))
		return
	}
	appendEscape(cb, 'u')
	hex := fmt.Sprintf("%04x", r)
	cb.AppendString(hex)
}

// WriteString writes data as a quoted, escaped JSON string.
func (w *Writer) WriteString(data string) error {
	if w.err != nil {
		return w.err
	}
	cb := w.buffer()
	cb.Append('"')
	for _, r := range data {
		switch r {
		case '\\', '"':
			appendEscape(cb, byte(r))
		case '/':
			if w.EscapeSlash {
				appendEscape(cb, '/')
			} else {
				cb.Append('/')
			}
		case '\f':
			appendEscape(cb, 'f')
		case '\n':
			appendEscape(cb, 'n')
		case '\r':
			appendEscape(cb, 'r')
		case '\b':
			appendEscape(cb, 'b')
		case '\t':
			appendEscape(cb, 't')
		default:
			switch {
			case r < 32 || (w.EscapeJSSeparators && isJSSep(r)):
				appendHexEscape(cb, r)
			case w.EscapeUnicode && r >= 128:
				appendHexEscape(cb, r)
			default:
				cb.AppendString(string(r))
			}
		}
	}
	cb.Append('"')
	_, err := w.dst.Write(cb.Bytes())
	w.err = err
	return err
}

// WriteNumber writes n, one of the engine's supported number
// representations (int64, float64, *big.Int, *big.Float, or any type
// implementing fmt.Stringer for arbitrary-precision passthrough).
// Non-finite floats are rejected since JSON has no literal for them.
func (w *Writer) WriteNumber(n any) error {
	if w.err != nil {
		return w.err
	}
	var s string
	switch v := n.(type) {
	case int64:
		s = strconv.FormatInt(v, 10)
	case int:
		s = strconv.Itoa(v)
	case float64:
		if math.IsNaN(v) {
			w.err = ErrNaN
			return w.err
		}
		if math.IsInf(v, 0) {
			w.err = ErrInf
			return w.err
		}
		s = strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return w.WriteNumber(float64(v))
	case *big.Int:
		s = v.String()
	case *big.Float:
		if v.IsInf() {
			w.err = ErrInf
			return w.err
		}
		s = v.Text('g', -1)
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	_, err := w.dst.WriteString(s)
	w.err = err
	return err
}

func (w *Writer) writeIndent() error {
	if w.indent == 0 || w.IndentStr == "" {
		return nil
	}
	for i := 0; i < w.indent; i++ {
		if _, err := w.dst.WriteString(w.IndentStr); err != nil {
			return err
		}
	}
	return nil
}

// WriteObject dispatches primitives (string, the supported number types,
// bool, nil) inline and delegates anything else to Object.
func (w *Writer) WriteObject(obj any) error {
	if w.err != nil {
		return w.err
	}
	switch v := obj.(type) {
	case nil:
		_, w.err = w.dst.WriteString("null")
	case string:
		return w.WriteString(v)
	case bool:
		if v {
			_, w.err = w.dst.WriteString("true")
		} else {
			_, w.err = w.dst.WriteString("false")
		}
	case int, int64, float64, float32, *big.Int, *big.Float:
		return w.WriteNumber(v)
	default:
		if w.Object == nil {
			return fmt.Errorf("json: no object callback registered for %T", obj)
		}
		return w.Object(w, obj)
	}
	return w.err
}

// WriteArray writes a JSON array by repeatedly calling next until it
// returns (_, false).
func (w *Writer) WriteArray(next func() (any, bool)) error {
	if w.err != nil {
		return w.err
	}
	w.indent++
	if _, err := w.dst.WriteString("["); err != nil {
		w.err = err
		return err
	}
	first := true
	for {
		v, ok := next()
		if !ok {
			break
		}
		if !first {
			if _, err := w.dst.WriteString(","); err != nil {
				w.err = err
				return err
			}
		}
		first = false
		if err := w.WriteObject(v); err != nil {
			return err
		}
	}
	w.indent--
	if _, err := w.dst.WriteString("]"); err != nil {
		w.err = err
		return err
	}
	return nil
}

// KV is one key/value pair streamed into WriteMap.
type KV struct {
	Key   string
	Value any
}

// WriteMap writes a JSON object from the key/value pairs next produces,
// stopping when next returns (_, false). Keys are strings by the type of
// KV.Key.
func (w *Writer) WriteMap(next func() (KV, bool)) error {
	if w.err != nil {
		return w.err
	}
	hasIndent := w.IndentStr != ""
	if hasIndent && w.indent != 0 {
		if _, err := w.dst.WriteString("\n"); err != nil {
			w.err = err
			return err
		}
	}
	if err := w.writeIndent(); err != nil {
		w.err = err
		return err
	}
	if _, err := w.dst.WriteString("{"); err != nil {
		w.err = err
		return err
	}
	w.indent++
	first := true
	for {
		kv, ok := next()
		if !ok {
			break
		}
		if !first {
			if _, err := w.dst.WriteString(","); err != nil {
				w.err = err
				return err
			}
		}
		if hasIndent {
			if _, err := w.dst.WriteString("\n"); err != nil {
				w.err = err
				return err
			}
			if err := w.writeIndent(); err != nil {
				w.err = err
				return err
			}
		}
		first = false
		if err := w.WriteString(kv.Key); err != nil {
			return err
		}
		if hasIndent {
			if _, err := w.dst.WriteString(": "); err != nil {
				w.err = err
				return err
			}
		} else {
			if _, err := w.dst.WriteString(":"); err != nil {
				w.err = err
				return err
			}
		}
		if err := w.WriteObject(kv.Value); err != nil {
			return err
		}
	}
	w.indent--
	if hasIndent && !first {
		if _, err := w.dst.WriteString("\n"); err != nil {
			w.err = err
			return err
		}
		if err := w.writeIndent(); err != nil {
			w.err = err
			return err
		}
	}
	_, w.err = w.dst.WriteString("}")
	return w.err
}

// WriteMapFromGo writes a Go map[string]any as a JSON object, in Go's map
// iteration order. Values go through WriteObject, so a value that is not a
// primitive (a nested map or slice included) still needs Object.
func (w *Writer) WriteMapFromGo(m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	i := 0
	return w.WriteMap(func() (KV, bool) {
		if i >= len(keys) {
			return KV{}, false
		}
		k := keys[i]
		i++
		return KV{Key: k, Value: m[k]}, true
	})
}

// WriteSliceFromGo writes a Go []any as a JSON array.
func (w *Writer) WriteSliceFromGo(s []any) error {
	i := 0
	return w.WriteArray(func() (any, bool) {
		if i >= len(s) {
			return nil, false
		}
		v := s[i]
		i++
		return v, true
	})
}
