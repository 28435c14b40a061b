package json

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/swiftcharred/charred/charbuf"
	"github.com/swiftcharred/charred/chario"
	"github.com/swiftcharred/charred/strtab"
	"github.com/swiftcharred/charred/visitor"
)

// Category distinguishes the broad class of a parse failure, following
// the engine's error-category design: malformed input, premature
// end-of-input, and caller usage mistakes are surfaced differently so
// recovery policy can differ per category.
type Category int

const (
	// CategoryInputShape covers malformed JSON: unexpected tokens,
	// missing colons/commas, invalid numbers or escapes, non-string
	// keys, trailing commas, and empty entries.
	CategoryInputShape Category = iota
	// CategoryEndOfInput covers reaching EOS when a value was required.
	CategoryEndOfInput
	// CategoryUsage covers caller configuration mistakes.
	CategoryUsage
)

// ParseError carries a Category and source position alongside the
// underlying cause.
type ParseError struct {
	Category Category
	Line     int
	Column   int
	Err      error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("json: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var (
	ErrUnexpectedToken = errors.New("json: unexpected token")
	ErrMissingColon    = errors.New("json: expected ':' after object key")
	ErrMissingComma    = errors.New("json: expected ',' or closing bracket")
	ErrInvalidNumber   = errors.New("json: invalid number literal")
	ErrInvalidEscape   = errors.New("json: invalid string escape")
	ErrNonStringObjKey = errors.New("json: object keys must be strings")
	ErrTrailingComma   = errors.New("json: trailing comma")
	ErrEmptyEntry      = errors.New("json: empty array or object entry")
	ErrUnexpectedEOF   = errors.New("json: unexpected end of input")
)

// Profile selects the allocation strategy of the default array/object
// visitors when ArrayVisitor/ObjectVisitor are nil. ProfileRaw is named
// by the design but deliberately not implemented here; see DESIGN.md.
type Profile int

const (
	// ProfileImmutable builds each array/object through a transient
	// builder and finalizes it to a fresh, independently retainable
	// []any/map[string]any. This is the default.
	ProfileImmutable Profile = iota
	// ProfileMutable reuses one backing slice/map for the outermost
	// array/object of each ReadValue call instead of allocating a
	// fresh one; a nested array or object always gets a fresh backing
	// store regardless of profile, since its still-live parent holds
	// on to it. The top-level value returned under this profile is
	// only valid until the next ReadValue call overwrites it.
	ProfileMutable
)

// EOFPolicy controls what ReadValue does when it reaches end-of-stream
// before finding a value to parse, instead of mid-value.
type EOFPolicy int

const (
	// EOFError returns a *ParseError with CategoryEndOfInput and
	// ErrUnexpectedEOF (the default).
	EOFError EOFPolicy = iota
	// EOFValue returns a caller-fixed value instead of erroring.
	EOFValue
	// EOFThunk invokes a caller-supplied function instead of erroring.
	EOFThunk
)

// Reader is a recursive-descent JSON parser over a chunked character
// stream, producing materialized values via pluggable array/object
// visitors. A single Reader can be advanced repeatedly to read multiple
// top-level values from the same stream.
type Reader struct {
	// BigDecimal selects arbitrary-precision decimal decoding for
	// non-integer numbers instead of float64.
	BigDecimal bool
	// DoubleFn, if set, overrides the default float64 constructor for
	// non-integer, non-bigdecimal numbers.
	DoubleFn func(s string) (any, error)

	// ArrayVisitor and ObjectVisitor materialize arrays/objects. Both
	// default to builders producing []any and map[string]any. For
	// whichever of the two is nil, Profile selects which default is used.
	ArrayVisitor  visitor.Array
	ObjectVisitor visitor.Object

	// Profile selects the default visitors' allocation strategy when
	// ArrayVisitor/ObjectVisitor are nil. Zero value is ProfileImmutable.
	Profile Profile

	// KeyTable, if set, canonicalizes object keys through a shared
	// strtab.Table instead of allocating a fresh string per key.
	KeyTable *strtab.Table
	// IdentTable, if set, canonicalizes object keys to namespaced
	// identifiers instead of plain strings, for callers that want JSON
	// object keys materialized as keyword-like symbols. Takes precedence
	// over KeyTable when both are set.
	IdentTable *strtab.IdentTable
	// KeyFn, if set, is applied to each decoded key before it reaches
	// ObjectVisitor.OnKeyValue.
	KeyFn func(string) string
	// ValueFn, if set, is applied to each (key, value) pair; returning
	// visitor.Elide omits the pair from the materialized object.
	ValueFn func(key string, value any) any

	EOFPolicy EOFPolicy
	EOFValue  any
	EOFThunk  func() (any, error)

	r      *chario.Reader
	sb     *charbuf.Buffer
	line   int
	col    int
	depth  int
	arrBuf []any
	objBuf map[string]any
}

// NewReader constructs a Reader over an already-chunked chario.Reader.
func NewReader(r *chario.Reader) *Reader {
	return &Reader{r: r, line: 1, col: 1, sb: charbuf.New(false, false, false)}
}

func (jr *Reader) wrapError(cat Category, err error) error {
	return &ParseError{Category: cat, Line: jr.line, Column: jr.col, Err: err}
}

// arrayVisitor/objectVisitor pick the default visitor under ProfileMutable
// only for the outermost container of the current ReadValue call (depth
// == 1): a nested array or object is retained by its still-live parent,
// so it always gets a fresh, independently retainable backing store
// regardless of profile, and only the top-level return value is reused
// across successive ReadValue calls on the same Reader.
func (jr *Reader) arrayVisitor() visitor.Array {
	if jr.ArrayVisitor != nil {
		return jr.ArrayVisitor
	}
	if jr.Profile == ProfileMutable && jr.depth == 1 {
		return &mutableSliceVisitor{buf: &jr.arrBuf}
	}
	return sliceVisitor{}
}

func (jr *Reader) objectVisitor() visitor.Object {
	if jr.ObjectVisitor != nil {
		return jr.ObjectVisitor
	}
	if jr.Profile == ProfileMutable && jr.depth == 1 {
		return &mutableMapVisitor{buf: &jr.objBuf}
	}
	return mapVisitor{}
}

// peek returns the next byte without consuming it, or io.EOF at end of
// stream.
func (jr *Reader) peek() (byte, error) {
	b, err := jr.r.Read()
	if err != nil {
		return 0, err
	}
	_ = jr.r.Pushback()
	return b, nil
}

func (jr *Reader) advance() (byte, error) {
	b, err := jr.r.Read()
	if err != nil {
		return 0, err
	}
	if b == '\n' {
		jr.line++
		jr.col = 1
	} else {
		jr.col++
	}
	return b, nil
}

func (jr *Reader) skipWhitespace() error {
	for {
		b, err := jr.peek()
		if err != nil {
			return err
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			_, _ = jr.advance()
		default:
			return nil
		}
	}
}

// ReadValue reads and returns one complete top-level JSON value,
// consuming leading whitespace first. When the stream has nothing left to
// offer, the configured EOFPolicy decides the result: by default a
// *ParseError with CategoryEndOfInput.
func (jr *Reader) ReadValue() (any, error) {
	if err := jr.skipWhitespace(); err != nil {
		return jr.handleEOF(err)
	}
	return jr.readValue()
}

func (jr *Reader) handleEOF(err error) (any, error) {
	switch jr.EOFPolicy {
	case EOFValue:
		return jr.EOFValue, nil
	case EOFThunk:
		if jr.EOFThunk != nil {
			return jr.EOFThunk()
		}
		return nil, err
	default:
		return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
	}
}

func (jr *Reader) readValue() (any, error) {
	b, err := jr.peek()
	if err != nil {
		return jr.handleEOF(err)
	}
	switch {
	case b == '{':
		return jr.readObject()
	case b == '[':
		return jr.readArray()
	case b == '"':
		return jr.readString()
	case b == 't':
		return jr.readLiteral("true", true)
	case b == 'f':
		return jr.readLiteral("false", false)
	case b == 'n':
		return jr.readLiteral("null", nil)
	case b == '-' || (b >= '0' && b <= '9'):
		return jr.readNumber()
	default:
		return nil, jr.wrapError(CategoryInputShape, ErrUnexpectedToken)
	}
}

func (jr *Reader) readLiteral(lit string, value any) (any, error) {
	for i := 0; i < len(lit); i++ {
		b, err := jr.advance()
		if err != nil {
			return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
		}
		if b != lit[i] {
			return nil, jr.wrapError(CategoryInputShape, ErrUnexpectedToken)
		}
	}
	return value, nil
}

func (jr *Reader) expectByte(want byte) error {
	b, err := jr.advance()
	if err != nil {
		return jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
	}
	if b != want {
		return jr.wrapError(CategoryInputShape, ErrUnexpectedToken)
	}
	return nil
}

func (jr *Reader) readArray() (any, error) {
	if err := jr.expectByte('['); err != nil {
		return nil, err
	}
	jr.depth++
	defer func() { jr.depth-- }()
	av := jr.arrayVisitor()
	arr := av.NewArray()

	if err := jr.skipWhitespace(); err != nil {
		return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
	}
	b, err := jr.peek()
	if err != nil {
		return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
	}
	if b == ']' {
		_, _ = jr.advance()
		return av.Finalize(arr), nil
	}

	for {
		if err := jr.skipWhitespace(); err != nil {
			return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
		}
		v, err := jr.readValue()
		if err != nil {
			return nil, err
		}
		arr = av.OnValue(arr, v)

		if err := jr.skipWhitespace(); err != nil {
			return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
		}
		b, err := jr.advance()
		if err != nil {
			return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
		}
		switch b {
		case ',':
			if err := jr.skipWhitespace(); err != nil {
				return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
			}
			nb, err := jr.peek()
			if err == nil && nb == ']' {
				return nil, jr.wrapError(CategoryInputShape, ErrTrailingComma)
			}
			if err == nil && nb == ',' {
				return nil, jr.wrapError(CategoryInputShape, ErrEmptyEntry)
			}
			continue
		case ']':
			return av.Finalize(arr), nil
		default:
			return nil, jr.wrapError(CategoryInputShape, ErrMissingComma)
		}
	}
}

func (jr *Reader) readObject() (any, error) {
	if err := jr.expectByte('{'); err != nil {
		return nil, err
	}
	jr.depth++
	defer func() { jr.depth-- }()
	ov := jr.objectVisitor()
	obj := ov.NewObject()

	if err := jr.skipWhitespace(); err != nil {
		return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
	}
	b, err := jr.peek()
	if err != nil {
		return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
	}
	if b == '}' {
		_, _ = jr.advance()
		return ov.Finalize(obj), nil
	}

	for {
		if err := jr.skipWhitespace(); err != nil {
			return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
		}
		kb, err := jr.peek()
		if err != nil {
			return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
		}
		if kb != '"' {
			return nil, jr.wrapError(CategoryInputShape, ErrNonStringObjKey)
		}
		keyVal, err := jr.readString()
		if err != nil {
			return nil, err
		}
		key := keyVal.(string)
		switch {
		case jr.IdentTable != nil:
			key = jr.IdentTable.Intern([]byte(key), 0, len(key)).String()
		case jr.KeyTable != nil:
			key = jr.KeyTable.Intern([]byte(key), 0, len(key))
		}
		if jr.KeyFn != nil {
			key = jr.KeyFn(key)
		}

		if err := jr.skipWhitespace(); err != nil {
			return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
		}
		if err := jr.expectByte(':'); err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Err = ErrMissingColon
			}
			return nil, err
		}

		if err := jr.skipWhitespace(); err != nil {
			return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
		}
		val, err := jr.readValue()
		if err != nil {
			return nil, err
		}

		if jr.ValueFn != nil {
			out := jr.ValueFn(key, val)
			if !visitor.IsElided(out) {
				obj = ov.OnKeyValue(obj, key, out)
			}
		} else {
			obj = ov.OnKeyValue(obj, key, val)
		}

		if err := jr.skipWhitespace(); err != nil {
			return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
		}
		b, err := jr.advance()
		if err != nil {
			return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
		}
		switch b {
		case ',':
			if err := jr.skipWhitespace(); err != nil {
				return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
			}
			nb, err := jr.peek()
			if err != nil {
				return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
			}
			if nb == '}' {
				return nil, jr.wrapError(CategoryInputShape, ErrTrailingComma)
			}
			if nb == ',' {
				return nil, jr.wrapError(CategoryInputShape, ErrEmptyEntry)
			}
			continue
		case '}':
			return ov.Finalize(obj), nil
		default:
			return nil, jr.wrapError(CategoryInputShape, ErrMissingComma)
		}
	}
}

// readString decodes a quoted JSON string, returning its contents as a Go
// string (the opening/closing quotes are consumed but not included). When
// the whole string sits in the current chunk and carries no escapes, it is
// handed to charbuf.Buffer.StringFromExternal directly instead of being
// copied byte by byte into jr.sb first, the same chunk-range-scanning idiom
// the csv package's row tokenizer uses for its fields.
func (jr *Reader) readString() (any, error) {
	if err := jr.expectByte('"'); err != nil {
		return nil, err
	}
	jr.sb.Clear()

	r := jr.r
	buf := r.Buffer()
	start := r.Position()
	for buf != nil {
		n := len(buf)
		for pos := start; pos < n; pos++ {
			switch buf[pos] {
			case '"':
				r.SetPosition(pos + 1)
				jr.col += pos - start + 1
				s, _ := jr.sb.StringFromExternal(buf, start, pos, nil)
				return s, nil
			case '\\':
				jr.sb.AppendRange(buf, start, pos)
				r.SetPosition(pos + 1)
				jr.col += pos - start + 1
				esc, err := jr.advance()
				if err != nil {
					return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
				}
				decoded, err := jr.decodeEscapeSequence(esc)
				if err != nil {
					return nil, err
				}
				jr.sb.AppendString(decoded)
				buf = r.Buffer()
				n = len(buf)
				start = r.Position()
				pos = start - 1
				continue
			case '\n':
				jr.sb.AppendRange(buf, start, pos+1)
				jr.line++
				jr.col = 1
				start = pos + 1
			}
		}
		jr.sb.AppendRange(buf, start, n)
		jr.col += n - start
		var err error
		buf, err = r.NextBuffer()
		if err != nil {
			return nil, err
		}
		start = r.Position()
	}
	return nil, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
}

// decodeEscapeSequence decodes one backslash escape, given the character
// immediately following the backslash. For \u it also performs the
// high/low surrogate pairing lookahead: a high surrogate followed by
// another \u escape consumes that escape too, combining the pair into one
// rune when it forms a valid low surrogate, or decoding it as its own
// independent escape when it does not; a following \u escape that is itself
// a high surrogate gets the same lookahead, so a chain of several \u
// escapes pairs up wherever a high is directly followed by a low. Lone surrogates are emitted via their raw
// 16-bit value rather than Go's replacement-character conversion, per the
// round-trip-safety requirement for unpaired surrogates.
func (jr *Reader) decodeEscapeSequence(esc byte) (string, error) {
	switch esc {
	case '"', '\\', '/':
		return string(esc), nil
	case 'b':
		return "\b", nil
	case 'f':
		return "\f", nil
	case 'n':
		return "\n", nil
	case 'r':
		return "\r", nil
	case 't':
		return "\t", nil
	case 'u':
		r, err := jr.readUnicodeEscape()
		if err != nil {
			return "", err
		}
		var out string
		for isHighSurrogate(r) {
			nb, err := jr.peek()
			if err != nil || nb != '\\' {
				break
			}
			_, _ = jr.advance()
			nb2, err := jr.advance()
			if err != nil {
				return "", jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
			}
			if nb2 != 'u' {
				rest, err := jr.decodeEscapeSequence(nb2)
				if err != nil {
					return "", err
				}
				return out + rawRuneString(r) + rest, nil
			}
			r2, err := jr.readUnicodeEscape()
			if err != nil {
				return "", err
			}
			if isLowSurrogate(r2) {
				return out + string(combineSurrogates(r, r2)), nil
			}
			out += rawRuneString(r)
			r = r2
		}
		return out + rawRuneString(r), nil
	default:
		return "", jr.wrapError(CategoryInputShape, ErrInvalidEscape)
	}
}

// rawRuneString encodes r as a Go string, preserving lone surrogate values
// (0xD800-0xDFFF) as their literal 3-byte UTF-8-shaped encoding instead of
// the U+FFFD replacement Go's string(rune) conversion would otherwise
// substitute for a code point outside the valid-rune range.
func rawRuneString(r rune) string {
	if r >= 0xD800 && r <= 0xDFFF {
		b := [3]byte{
			byte(0xE0 | (r>>12)&0x0F),
			byte(0x80 | (r>>6)&0x3F),
			byte(0x80 | r&0x3F),
		}
		return string(b[:])
	}
	return string(r)
}

func (jr *Reader) readUnicodeEscape() (rune, error) {
	var v rune
	for i := 0; i < 4; i++ {
		b, err := jr.advance()
		if err != nil {
			return 0, jr.wrapError(CategoryEndOfInput, ErrUnexpectedEOF)
		}
		d, ok := hexDigit(b)
		if !ok {
			return 0, jr.wrapError(CategoryInputShape, ErrInvalidEscape)
		}
		v = v<<4 | rune(d)
	}
	return v, nil
}

func hexDigit(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	default:
		return 0, false
	}
}

func isHighSurrogate(r rune) bool { return r >= 0xD800 && r <= 0xDBFF }
func isLowSurrogate(r rune) bool  { return r >= 0xDC00 && r <= 0xDFFF }

func combineSurrogates(hi, lo rune) rune {
	return ((hi - 0xD800) << 10) + (lo - 0xDC00) + 0x10000
}

func (jr *Reader) readNumber() (any, error) {
	jr.sb.Clear()
	hasFrac := false

	b, err := jr.peek()
	if err == nil && b == '-' {
		jr.sb.Append(b)
		_, _ = jr.advance()
	}
	n := 0
	firstDigit := byte(0)
	for {
		b, err := jr.peek()
		if err != nil || b < '0' || b > '9' {
			break
		}
		if n == 0 {
			firstDigit = b
		}
		jr.sb.Append(b)
		_, _ = jr.advance()
		n++
	}
	if n == 0 {
		return nil, jr.wrapError(CategoryInputShape, ErrInvalidNumber)
	}
	if firstDigit == '0' && n > 1 {
		return nil, jr.wrapError(CategoryInputShape, ErrInvalidNumber)
	}
	if b, err := jr.peek(); err == nil && b == '.' {
		hasFrac = true
		jr.sb.Append(b)
		_, _ = jr.advance()
		fn := 0
		for {
			b, err := jr.peek()
			if err != nil || b < '0' || b > '9' {
				break
			}
			jr.sb.Append(b)
			_, _ = jr.advance()
			fn++
		}
		if fn == 0 {
			return nil, jr.wrapError(CategoryInputShape, ErrInvalidNumber)
		}
	}
	if b, err := jr.peek(); err == nil && (b == 'e' || b == 'E') {
		hasFrac = true
		jr.sb.Append(b)
		_, _ = jr.advance()
		if b, err := jr.peek(); err == nil && (b == '+' || b == '-') {
			jr.sb.Append(b)
			_, _ = jr.advance()
		}
		en := 0
		for {
			b, err := jr.peek()
			if err != nil || b < '0' || b > '9' {
				break
			}
			jr.sb.Append(b)
			_, _ = jr.advance()
			en++
		}
		if en == 0 {
			return nil, jr.wrapError(CategoryInputShape, ErrInvalidNumber)
		}
	}

	s, _ := jr.sb.String(nil)
	return jr.decodeNumber(s, hasFrac)
}

func (jr *Reader) decodeNumber(s string, hasFrac bool) (any, error) {
	if !hasFrac {
		if iv, err := strconv.ParseInt(s, 10, 64); err == nil {
			return iv, nil
		}
		bi, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, jr.wrapError(CategoryInputShape, ErrInvalidNumber)
		}
		return bi, nil
	}
	if jr.DoubleFn != nil {
		return jr.DoubleFn(s)
	}
	if jr.BigDecimal {
		// About 4 mantissa bits per input character keep every digit.
		bf, ok := new(big.Float).SetPrec(uint(len(s)) * 4).SetString(s)
		if !ok {
			return nil, jr.wrapError(CategoryInputShape, ErrInvalidNumber)
		}
		return bf, nil
	}
	fv, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, jr.wrapError(CategoryInputShape, ErrInvalidNumber)
	}
	if math.IsInf(fv, 0) {
		return nil, jr.wrapError(CategoryInputShape, ErrInvalidNumber)
	}
	return fv, nil
}

// sliceVisitor is the default visitor.Array, materializing []any.
type sliceVisitor struct{}

func (sliceVisitor) NewArray() any              { return []any{} }
func (sliceVisitor) OnValue(arr, value any) any { return append(arr.([]any), value) }
func (sliceVisitor) Finalize(arr any) any       { return arr.([]any) }

// mapVisitor is the default visitor.Object, materializing
// map[string]any.
type mapVisitor struct{}

func (mapVisitor) NewObject() any { return map[string]any{} }
func (mapVisitor) OnKeyValue(obj any, key string, value any) any {
	m := obj.(map[string]any)
	m[key] = value
	return m
}
func (mapVisitor) Finalize(obj any) any { return obj.(map[string]any) }

// mutableSliceVisitor is the ProfileMutable default visitor.Array for a
// top-level array value: it truncates one backing slice to length zero
// across ReadValue calls instead of allocating a fresh one. The array
// returned by Finalize aliases that backing slice and is overwritten by
// the next ReadValue call.
type mutableSliceVisitor struct {
	buf *[]any
}

func (v *mutableSliceVisitor) NewArray() any              { return (*v.buf)[:0] }
func (v *mutableSliceVisitor) OnValue(arr, value any) any { return append(arr.([]any), value) }
func (v *mutableSliceVisitor) Finalize(arr any) any {
	*v.buf = arr.([]any)
	return *v.buf
}

// mutableMapVisitor is the ProfileMutable default visitor.Object for a
// top-level object value: it clears and reuses one backing map across
// ReadValue calls instead of allocating a fresh one. The object returned
// by Finalize aliases that backing map and is overwritten by the next
// ReadValue call.
type mutableMapVisitor struct {
	buf *map[string]any
}

func (v *mutableMapVisitor) NewObject() any {
	for k := range *v.buf {
		delete(*v.buf, k)
	}
	if *v.buf == nil {
		*v.buf = map[string]any{}
	}
	return *v.buf
}
func (v *mutableMapVisitor) OnKeyValue(obj any, key string, value any) any {
	m := obj.(map[string]any)
	m[key] = value
	return m
}
func (v *mutableMapVisitor) Finalize(obj any) any {
	*v.buf = obj.(map[string]any)
	return *v.buf
}
