package json

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swiftcharred/charred/chario"
	"github.com/swiftcharred/charred/strtab"
	"github.com/swiftcharred/charred/visitor"
)

func newJSONReader(t *testing.T, input string, chunkSize int) *Reader {
	t.Helper()
	sup := chario.NewAllocatingSupplier(strings.NewReader(input), chunkSize)
	cr, err := chario.NewReader(sup)
	require.NoError(t, err)
	return NewReader(cr)
}

func TestReaderScalarLiterals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want any
	}{
		{"true", "true", true},
		{"false", "false", false},
		{"null", "null", nil},
		{"int", "42", int64(42)},
		{"negInt", "-42", int64(-42)},
		{"float", "1.5", 1.5},
		{"exponent", "1e3", 1000.0},
		{"zero", "0", int64(0)},
		{"negZero", "-0", int64(0)},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := newJSONReader(t, tc.in, 3)
			got, err := r.ReadValue()
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestReaderEmptyArrayAndObject(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, "[]", 4)
	got, err := r.ReadValue()
	require.NoError(t, err)
	require.Equal(t, []any{}, got)

	r2 := newJSONReader(t, "{}", 4)
	got2, err := r2.ReadValue()
	require.NoError(t, err)
	require.Equal(t, map[string]any{}, got2)
}

func TestReaderArrayOfValues(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, `[1, "two", null, true, [3]]`, 5)
	got, err := r.ReadValue()
	require.NoError(t, err)
	want := []any{int64(1), "two", nil, true, []any{int64(3)}}
	require.Equal(t, want, got)
}

func TestReaderObjectRoundTrip(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, `{"a": 1, "b": 2}`, 6)
	got, err := r.ReadValue()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": int64(1), "b": int64(2)}, got)
}

func TestReaderKeyFn(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, `{"a": 1, "b": 2}`, 6)
	r.KeyFn = strings.ToUpper
	got, err := r.ReadValue()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"A": int64(1), "B": int64(2)}, got)
}

func TestReaderIdentTableKeys(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, `{"a": 1}`, 6)
	r.IdentTable = strtab.NewIdentTable("kw")
	got, err := r.ReadValue()
	require.NoError(t, err)
	m := got.(map[string]any)
	require.Equal(t, int64(1), m["kw/a"])
}

func TestReaderValueFnElision(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, `{"a": 1}`, 6)
	r.ValueFn = func(key string, value any) any {
		if key == "a" {
			return visitor.Elide
		}
		return value
	}
	got, err := r.ReadValue()
	require.NoError(t, err)
	require.Equal(t, map[string]any{}, got)
}

func TestReaderStringEscapes(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, `"a\n\tbA"`, 4)
	got, err := r.ReadValue()
	require.NoError(t, err)
	require.Equal(t, "a\n\tbA", got)
}

func TestReaderSurrogatePairEscape(t *testing.T) {
	t.Parallel()

	// U+1F600 (grinning face) written as its UTF-16 surrogate pair escape.
	r := newJSONReader(t, "\"\\ud83d\\ude00\"", 4)
	got, err := r.ReadValue()
	require.NoError(t, err)
	require.Equal(t, "\U0001F600", got)
}

func TestReaderUnpairedSurrogatePassesThrough(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, `"\ud800x"`, 4)
	got, err := r.ReadValue()
	require.NoError(t, err)
	require.Equal(t, rawRuneString(0xD800)+"x", got)
}

func TestReaderStringAcrossChunkBoundaryNoEscape(t *testing.T) {
	t.Parallel()

	want := "hello world, this is a longer plain string with no escapes at all"
	for _, chunkSize := range []int{3, 5, 8, 1024} {
		r := newJSONReader(t, `"`+want+`"`, chunkSize)
		got, err := r.ReadValue()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestReaderStringWithRawNewlineAcrossChunks(t *testing.T) {
	t.Parallel()

	const input = "\"line one\nline two\""
	const want = "line one\nline two"
	for _, chunkSize := range []int{3, 6, 1024} {
		r := newJSONReader(t, input, chunkSize)
		got, err := r.ReadValue()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestReaderLineTrackingThroughStringFastPath(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, "[\"ab\ncd\", @]", 4)
	_, err := r.ReadValue()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, 2, perr.Line)
}

func TestReaderLargeIntegerPromotesToBigInt(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, "123456789012345678901234567890", 6)
	got, err := r.ReadValue()
	require.NoError(t, err)
	bi, ok := got.(*big.Int)
	require.True(t, ok)
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.Equal(t, 0, bi.Cmp(want))
}

func TestReaderMultipleTopLevelValues(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, "1 2 3", 2)
	var got []any
	for {
		v, err := r.ReadValue()
		if err != nil {
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			require.Equal(t, CategoryEndOfInput, perr.Category)
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []any{int64(1), int64(2), int64(3)}, got)
}

func TestReaderMutableProfileReusesBackingSliceAcrossTopLevelValues(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, "[1,2] [3,4]", 3)
	r.Profile = ProfileMutable

	v1, err := r.ReadValue()
	require.NoError(t, err)
	a1 := v1.([]any)
	require.Equal(t, []any{int64(1), int64(2)}, a1)

	v2, err := r.ReadValue()
	require.NoError(t, err)
	a2 := v2.([]any)
	require.Equal(t, []any{int64(3), int64(4)}, a2)

	// Both values share one backing array under ProfileMutable, so the
	// first array's contents are now the second's.
	require.Equal(t, []any{int64(3), int64(4)}, a1)
}

func TestReaderMutableProfileKeepsNestedArraysIndependent(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, `[[1,2],[3,4]]`, 3)
	r.Profile = ProfileMutable

	got, err := r.ReadValue()
	require.NoError(t, err)
	require.Equal(t, []any{[]any{int64(1), int64(2)}, []any{int64(3), int64(4)}}, got)
}

func TestReaderImmutableProfileIsDefault(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, "[1,2] [3,4]", 3)

	v1, err := r.ReadValue()
	require.NoError(t, err)
	a1 := v1.([]any)

	_, err = r.ReadValue()
	require.NoError(t, err)

	require.Equal(t, []any{int64(1), int64(2)}, a1)
}

func TestReaderEOFValuePolicy(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, "1", 4)
	r.EOFPolicy = EOFValue
	r.EOFValue = "done"

	v1, err := r.ReadValue()
	require.NoError(t, err)
	require.Equal(t, int64(1), v1)

	v2, err := r.ReadValue()
	require.NoError(t, err)
	require.Equal(t, "done", v2)
}

func TestReaderTrailingCommaIsError(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, `{"a":1,}`, 4)
	_, err := r.ReadValue()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, CategoryInputShape, perr.Category)
	require.ErrorIs(t, perr.Err, ErrTrailingComma)
}

func TestReaderNonStringKeyIsError(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, `{1:2}`, 4)
	_, err := r.ReadValue()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.ErrorIs(t, perr.Err, ErrNonStringObjKey)
}

func TestReaderInvalidNumberIsError(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, "01", 4)
	_, err := r.ReadValue()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, CategoryInputShape, perr.Category)
}

func TestReaderUnterminatedStructureIsEndOfInput(t *testing.T) {
	t.Parallel()

	r := newJSONReader(t, `{"a":1`, 4)
	_, err := r.ReadValue()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, CategoryEndOfInput, perr.Category)
}
