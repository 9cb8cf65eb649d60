package vals

import (
	"encoding/json"
	"strings"

	"src.mvu.sh/pkg/persistent/hash"
)

// Valid sizes of a tuple. Larger heterogeneous aggregates are records.
const (
	minTupleLen = 2
	maxTupleLen = 3
)

// Tuple is an immutable value with two or three positional slots. The zero
// Tuple is not a valid tuple: it has no slots, and First and Second return nil.
type Tuple struct {
	elems []any
}

// NewTuple builds a tuple from 2 or 3 elements. Any other count is an
// *ArityError.
func NewTuple(elems ...any) (Tuple, error) {
	if len(elems) < minTupleLen || len(elems) > maxTupleLen {
		return Tuple{}, &ArityError{What: "tuple", ValidLow: minTupleLen,
			ValidHigh: maxTupleLen, Actual: len(elems)}
	}
	return Tuple{append([]any(nil), elems...)}, nil
}

// Pair builds a 2-tuple.
func Pair(a, b any) Tuple { return Tuple{[]any{a, b}} }

// Triple builds a 3-tuple.
func Triple(a, b, c any) Tuple { return Tuple{[]any{a, b, c}} }

// Len returns the number of slots.
func (t Tuple) Len() int { return len(t.elems) }

// Index returns the i-th element, if it exists.
func (t Tuple) Index(i int) (any, bool) {
	if i < 0 || i >= len(t.elems) {
		return nil, false
	}
	return t.elems[i], true
}

// First returns the first element.
func (t Tuple) First() any {
	v, _ := t.Index(0)
	return v
}

// Second returns the second element.
func (t Tuple) Second() any {
	v, _ := t.Index(1)
	return v
}

// Assoc returns a copy of the tuple with the i-th element replaced.
func (t Tuple) Assoc(i int, v any) (Tuple, error) {
	if i < 0 || i >= len(t.elems) {
		return Tuple{}, &OutOfRange{What: "tuple index", ValidLow: 0,
			ValidHigh: len(t.elems) - 1, Actual: i}
	}
	elems := append([]any(nil), t.elems...)
	elems[i] = v
	return Tuple{elems}, nil
}

// Elems returns the elements as a new slice.
func (t Tuple) Elems() []any { return append([]any(nil), t.elems...) }

func (t Tuple) Equal(other any) bool {
	o, ok := other.(Tuple)
	if !ok || len(t.elems) != len(o.elems) {
		return false
	}
	for i, v := range t.elems {
		if !Equal(v, o.elems[i]) {
			return false
		}
	}
	return true
}

func (t Tuple) Hash() uint32 {
	h := hash.DJBInit
	for _, v := range t.elems {
		h = hash.DJBCombine(h, Hash(v))
	}
	return h
}

func (t Tuple) Kind() string { return "tuple" }

func (t Tuple) Repr() string {
	reprs := make([]string, len(t.elems))
	for i, v := range t.elems {
		reprs[i] = Repr(v)
	}
	return "(" + strings.Join(reprs, ", ") + ")"
}

// MarshalJSON encodes the tuple as a JSON array.
func (t Tuple) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.elems)
}
