package vals

import (
	"bytes"
	"encoding/json"
	"strings"

	"src.mvu.sh/pkg/persistent/hash"
)

// Shape is the fixed, ordered set of field names of a record. Shapes are
// immutable and are shared by all records built from them.
type Shape struct {
	names []string
	index map[string]int
}

// NewShape returns a Shape with the given field names, in order. Field names
// must be non-empty and distinct.
func NewShape(names ...string) (*Shape, error) {
	s := &Shape{append([]string(nil), names...), make(map[string]int, len(names))}
	for i, name := range names {
		if name == "" {
			return nil, &ShapeMismatch{Fields: s.names, Problem: "empty field name"}
		}
		if _, dup := s.index[name]; dup {
			return nil, &ShapeMismatch{Fields: s.names, Field: name, Problem: "duplicate field"}
		}
		s.index[name] = i
	}
	return s, nil
}

// MustShape is like NewShape, but panics on error. It is meant for shapes
// declared as package-level variables.
func MustShape(names ...string) *Shape {
	s, err := NewShape(names...)
	if err != nil {
		panic(err)
	}
	return s
}

var emptyShape = MustShape()

// Len returns the number of fields.
func (s *Shape) Len() int { return len(s.names) }

// Names returns the field names in order.
func (s *Shape) Names() []string { return append([]string(nil), s.names...) }

// Index returns the position of a field.
func (s *Shape) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Has reports whether the shape has a field with the given name.
func (s *Shape) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// compatible reports whether records of s and t have the same slot layout.
func (s *Shape) compatible(t *Shape) bool {
	if s == t {
		return true
	}
	if len(s.names) != len(t.names) {
		return false
	}
	for i, name := range s.names {
		if t.names[i] != name {
			return false
		}
	}
	return true
}

func (s *Shape) noSuchField(name string) error {
	return &ShapeMismatch{Fields: s.names, Field: name, Problem: "no such field"}
}

// Make builds a record of this shape from values given in field order.
func (s *Shape) Make(values ...any) (Record, error) {
	if len(values) != len(s.names) {
		return Record{}, &ShapeMismatch{Fields: s.names,
			Problem: "wrong number of values (" + nValues(len(values)) + ")"}
	}
	return Record{s, append([]any(nil), values...)}, nil
}

// FromMap builds a record of this shape from a map, which must have exactly
// the fields of the shape.
func (s *Shape) FromMap(m map[string]any) (Record, error) {
	slots := make([]any, len(s.names))
	for name, v := range m {
		i, ok := s.index[name]
		if !ok {
			return Record{}, s.noSuchField(name)
		}
		slots[i] = v
	}
	for _, name := range s.names {
		if _, ok := m[name]; !ok {
			return Record{}, &ShapeMismatch{Fields: s.names, Field: name, Problem: "missing field"}
		}
	}
	return Record{s, slots}, nil
}

// Changes returns an empty change set for records of this shape.
func (s *Shape) Changes() Changes {
	return Changes{shape: s}
}

// Record is an immutable value with a fixed set of named fields. A record
// holds its shape and one slot per field; each slot refers to the field's
// value, so copying a record never copies field values.
//
// The zero Record is a valid record with no fields.
type Record struct {
	shape *Shape
	slots []any
}

// MakeRecord builds a record from alternating field names and values, like
// MakeRecord("count", 0, "step", 1). It panics if the arguments are malformed.
func MakeRecord(kvs ...any) Record {
	if len(kvs)%2 != 0 {
		panic("odd number of arguments to MakeRecord")
	}
	names := make([]string, len(kvs)/2)
	values := make([]any, len(kvs)/2)
	for i := range names {
		names[i] = kvs[2*i].(string)
		values[i] = kvs[2*i+1]
	}
	return Record{MustShape(names...), values}
}

// Shape returns the shape of the record.
func (r Record) Shape() *Shape {
	if r.shape == nil {
		return emptyShape
	}
	return r.shape
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.slots) }

// Get returns the value of a field.
func (r Record) Get(name string) (any, bool) {
	i, ok := r.Shape().index[name]
	if !ok {
		return nil, false
	}
	return r.slots[i], true
}

// At returns the value of the i-th field. It panics if i is out of range.
func (r Record) At(i int) any { return r.slots[i] }

// Iterate calls f with each field name and value, in field order, until f
// returns false.
func (r Record) Iterate(f func(name string, v any) bool) {
	for i, name := range r.Shape().names {
		if !f(name, r.slots[i]) {
			return
		}
	}
}

// With returns a copy of the record with one field changed.
func (r Record) With(name string, v any) (Record, error) {
	return Update(r, r.Shape().Changes().Set(name, v))
}

// WithMap returns a copy of the record with the fields in m changed.
func (r Record) WithMap(m map[string]any) (Record, error) {
	c := r.Shape().Changes()
	for name, v := range m {
		c = c.Set(name, v)
	}
	return Update(r, c)
}

// Changes is a change set: new values for some fields of one shape. It is
// built with Shape.Changes and Set; a field outside the shape is recorded as
// an error as soon as it is set, and the change set is then refused by
// Update.
//
// Changes values are immutable; Set returns a new change set.
type Changes struct {
	shape *Shape
	idx   []int
	vals  []any
	err   error
}

// Set returns a change set that also assigns v to the named field.
func (c Changes) Set(name string, v any) Changes {
	if c.err != nil {
		return c
	}
	shape := c.shape
	if shape == nil {
		shape = emptyShape
	}
	i, ok := shape.index[name]
	if !ok {
		c.err = shape.noSuchField(name)
		return c
	}
	// Full slice expressions force append to copy, so change sets derived
	// from the same parent never see each other's entries.
	c.idx = append(c.idx[:len(c.idx):len(c.idx)], i)
	c.vals = append(c.vals[:len(c.vals):len(c.vals)], v)
	return c
}

// Err returns the error recorded while building the change set, if any.
func (c Changes) Err() error { return c.err }

// Len returns the number of assignments in the change set.
func (c Changes) Len() int { return len(c.idx) }

// Update returns a record equal to r except for the fields assigned in c.
// Unchanged fields share their values with r. When a field is assigned more
// than once, the last assignment wins.
//
// It returns a *ShapeMismatch if c was built for a different shape or refers
// to a field that r does not have.
func Update(r Record, c Changes) (Record, error) {
	if c.err != nil {
		return Record{}, c.err
	}
	shape := r.Shape()
	if c.shape != nil && !shape.compatible(c.shape) {
		return Record{}, &ShapeMismatch{Fields: shape.names,
			Problem: "change set for {" + strings.Join(c.shape.names, ", ") + "} applied to record"}
	}
	slots := append([]any(nil), r.slots...)
	for j, i := range c.idx {
		slots[i] = c.vals[j]
	}
	return Record{shape, slots}, nil
}

// Field returns the named field of r as a T.
func Field[T any](r Record, name string) (T, error) {
	var zero T
	v, ok := r.Get(name)
	if !ok {
		return zero, r.Shape().noSuchField(name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, &WrongType{Field: name, Want: Kind(zero), Got: Kind(v)}
	}
	return t, nil
}

// Equal returns whether other is a record with the same fields and equal
// values. Field order does not matter. Function fields compare equal to each
// other, so they do not affect the result.
func (r Record) Equal(other any) bool {
	o, ok := other.(Record)
	if !ok || r.Len() != o.Len() {
		return false
	}
	if r.shape == o.shape {
		for i, v := range r.slots {
			if !Equal(v, o.slots[i]) {
				return false
			}
		}
		return true
	}
	for i, name := range r.Shape().names {
		v, ok := o.Get(name)
		if !ok || !Equal(r.slots[i], v) {
			return false
		}
	}
	return true
}

// Hash combines the hashes of all fields regardless of their order.
func (r Record) Hash() uint32 {
	var h uint32
	for i, name := range r.Shape().names {
		h += hash.DJB(hash.String(name), Hash(r.slots[i]))
	}
	return h
}

func (r Record) Kind() string { return "record" }

func (r Record) Repr() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range r.Shape().names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(" = ")
		sb.WriteString(Repr(r.slots[i]))
	}
	sb.WriteByte('}')
	return sb.String()
}

// MarshalJSON encodes the record as a JSON object with keys in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.Shape().names {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, _ := json.Marshal(name)
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valueBytes, err := json.Marshal(r.slots[i])
		if err != nil {
			return nil, &marshalError{name, err}
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
