// Package csv is a high-throughput, zero-dependency streaming CSV engine.
// It adheres to RFC 4180, keeps allocations low for large inputs, and
// exposes precise line/column error information for malformed data.
//
// # Features
//
//   - RowReader: a resumable, supplier-based tokenizer with custom
//     separator, quote, escape, and comment bytes, optional trimming,
//     column filtering, and string interning.
//   - Reader: a drop-in compatible entry point over an io.Reader for
//     callers that do not need the fuller dialect.
//   - Writer: a buffered writer with a configurable newline policy and a
//     pluggable quoting predicate, plus a streaming reducer form and a
//     bulk-concatenation helper.
//   - Structured error reporting via ParseError, ErrUnterminatedQuote,
//     and ErrFieldCount. A quote byte that is not the first character of
//     a field is literal text, not an error.
package csv
