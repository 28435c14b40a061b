// Package visitor defines the small materialization interfaces the csv and
// json readers use to turn a stream of tokens into host values, without
// committing either reader to a specific container type.
package visitor

// Array materializes a sequence of values (a CSV row or a JSON array) into
// a caller-chosen container.
type Array interface {
	// NewArray starts a fresh array accumulator.
	NewArray() any
	// OnValue appends value to arr, returning the (possibly new) accumulator.
	OnValue(arr any, value any) any
	// Finalize converts the accumulator into its final result value.
	Finalize(arr any) any
}

// Object materializes a sequence of key/value pairs (a JSON object) into a
// caller-chosen container.
type Object interface {
	// NewObject starts a fresh object accumulator.
	NewObject() any
	// OnKeyValue adds key/value to obj, returning the (possibly new) accumulator.
	OnKeyValue(obj any, key string, value any) any
	// Finalize converts the accumulator into its final result value.
	Finalize(obj any) any
}

// elided is the type of the sentinel a value-fn returns to signal that the
// key/value pair it was given should be omitted from the materialized object.
type elided struct{}

// Elide is the canonical elided value.
var Elide any = elided{}

// IsElided reports whether v is the Elide sentinel.
func IsElided(v any) bool {
	_, ok := v.(elided)
	return ok
}
