package vals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"strings"

	"src.mvu.sh/pkg/persistent/hash"
	"src.mvu.sh/pkg/persistent/vector"
)

// Seq is an immutable ordered sequence backed by a persistent vector. All
// operations return new sequences; Conj and Assoc share everything but the
// touched path with the receiver.
//
// The zero Seq is a valid empty sequence.
type Seq struct {
	v vector.Vector[any]
}

// MakeSeq returns a sequence of the given elements.
func MakeSeq(elems ...any) Seq {
	return Seq{vector.FromSlice(elems)}
}

func (s Seq) vec() vector.Vector[any] {
	if s.v == nil {
		return vector.Empty[any]()
	}
	return s.v
}

// Len returns the number of elements.
func (s Seq) Len() int {
	if s.v == nil {
		return 0
	}
	return s.v.Len()
}

// IsEmpty reports whether the sequence has no elements.
func (s Seq) IsEmpty() bool { return s.Len() == 0 }

// Index returns the i-th element, if it exists.
func (s Seq) Index(i int) (any, bool) {
	if s.v == nil {
		return nil, false
	}
	return s.v.Index(i)
}

// Conj returns a sequence with v appended.
func (s Seq) Conj(v any) Seq { return Seq{s.vec().Conj(v)} }

// Assoc returns a sequence with the i-th element replaced. Assoc at Len()
// appends.
func (s Seq) Assoc(i int, v any) (Seq, error) {
	nv := s.vec().Assoc(i, v)
	if nv == nil {
		return Seq{}, &OutOfRange{What: "sequence index", ValidLow: 0,
			ValidHigh: s.Len(), Actual: i}
	}
	return Seq{nv}, nil
}

// Slice returns the elements from i up to but not including j.
func (s Seq) Slice(i, j int) (Seq, error) {
	nv := s.vec().SubVector(i, j)
	if nv == nil {
		return Seq{}, &OutOfRange{What: "slice bounds", ValidLow: 0,
			ValidHigh: s.Len(), Actual: max(i, j)}
	}
	return Seq{nv}, nil
}

// Concat returns a sequence with the elements of o appended.
func (s Seq) Concat(o Seq) Seq {
	v := s.vec()
	o.Iterate(func(e any) bool {
		v = v.Conj(e)
		return true
	})
	return Seq{v}
}

// Iterate calls f with each element in order until f returns false.
func (s Seq) Iterate(f func(any) bool) {
	if s.v == nil {
		return
	}
	for it := s.v.Iterator(); it.HasElem(); it.Next() {
		if !f(it.Elem()) {
			return
		}
	}
}

// All returns an iterator over the elements, for use with range.
func (s Seq) All() iter.Seq[any] {
	return s.Iterate
}

// Elems returns the elements as a new slice.
func (s Seq) Elems() []any {
	elems := make([]any, 0, s.Len())
	s.Iterate(func(e any) bool {
		elems = append(elems, e)
		return true
	})
	return elems
}

// Map returns the sequence of f applied to each element.
func (s Seq) Map(f func(any) any) Seq {
	v := vector.Empty[any]()
	s.Iterate(func(e any) bool {
		v = v.Conj(f(e))
		return true
	})
	return Seq{v}
}

// Filter returns the elements for which keep returns true, in order.
func (s Seq) Filter(keep func(any) bool) Seq {
	v := vector.Empty[any]()
	s.Iterate(func(e any) bool {
		if keep(e) {
			v = v.Conj(e)
		}
		return true
	})
	return Seq{v}
}

// Reverse returns the elements in reverse order.
func (s Seq) Reverse() Seq {
	elems := s.Elems()
	slices.Reverse(elems)
	return MakeSeq(elems...)
}

// Sort returns the elements sorted stably in the order of CmpTotal: numbers
// ascending, strings lexicographically, and values of different kinds grouped
// by kind.
func (s Seq) Sort() Seq {
	return s.SortFunc(func(a, b any) int { return CmpTotal(a, b).Compare() })
}

// SortFunc returns the elements sorted stably by cmp, which follows the
// convention of slices.SortStableFunc.
func (s Seq) SortFunc(cmp func(a, b any) int) Seq {
	elems := s.Elems()
	slices.SortStableFunc(elems, cmp)
	return MakeSeq(elems...)
}

func (s Seq) Equal(other any) bool {
	o, ok := other.(Seq)
	if !ok || s.Len() != o.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	ia, ib := s.v.Iterator(), o.v.Iterator()
	for ; ia.HasElem(); ia.Next() {
		if !Equal(ia.Elem(), ib.Elem()) {
			return false
		}
		ib.Next()
	}
	return true
}

func (s Seq) Hash() uint32 {
	h := hash.DJBInit
	s.Iterate(func(e any) bool {
		h = hash.DJBCombine(h, Hash(e))
		return true
	})
	return h
}

func (s Seq) Kind() string { return "seq" }

func (s Seq) Repr() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	s.Iterate(func(e any) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(Repr(e))
		return true
	})
	sb.WriteByte(']')
	return sb.String()
}

// MarshalJSON encodes the sequence as a JSON array.
func (s Seq) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	index := 0
	var err error
	s.Iterate(func(e any) bool {
		if index > 0 {
			buf.WriteByte(',')
		}
		var elemBytes []byte
		elemBytes, err = json.Marshal(e)
		if err != nil {
			err = &marshalError{fmt.Sprintf("element %d", index), err}
			return false
		}
		buf.Write(elemBytes)
		index++
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

type marshalError struct {
	where string
	cause error
}

func (err *marshalError) Error() string {
	return fmt.Sprintf("%s: %s", err.where, err.cause)
}

func (err *marshalError) Unwrap() error { return err.cause }
