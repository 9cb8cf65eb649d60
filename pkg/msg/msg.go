// Package msg implements closed sets of tagged messages.
//
// A Set is declared once with all of its variants; messages can only be built
// through the Set, so every Msg in a program is known to belong to one of the
// declared variants. The payload of a message is a vals.Record whose shape is
// fixed by its variant.
package msg

import (
	"encoding/json"
	"fmt"
	"strings"

	"src.mvu.sh/pkg/persistent/hash"
	"src.mvu.sh/pkg/vals"
)

// Variant declares one alternative of a Set: a tag and the names of its
// payload fields.
type Variant struct {
	Tag    string
	Fields []string
}

// V is a shorthand for declaring a Variant.
func V(tag string, fields ...string) Variant {
	return Variant{tag, fields}
}

// Set is a closed set of message variants. It is immutable after NewSet
// returns and safe for concurrent use.
type Set struct {
	name   string
	tags   []string
	shapes []*vals.Shape
	index  map[string]int
}

// NewSet declares a message set. Tags must be non-empty and distinct, and the
// fields of each variant must form a valid vals.Shape.
func NewSet(name string, variants ...Variant) (*Set, error) {
	s := &Set{name: name, index: make(map[string]int, len(variants))}
	for i, v := range variants {
		if v.Tag == "" {
			return nil, &BadDeclaration{Set: name, Problem: "empty tag"}
		}
		if _, dup := s.index[v.Tag]; dup {
			return nil, &BadDeclaration{Set: name, Tag: v.Tag, Problem: "duplicate tag"}
		}
		shape, err := vals.NewShape(v.Fields...)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, v.Tag, err)
		}
		s.tags = append(s.tags, v.Tag)
		s.shapes = append(s.shapes, shape)
		s.index[v.Tag] = i
	}
	return s, nil
}

// MustSet is like NewSet, but panics on error. It is meant for sets declared
// as package-level variables.
func MustSet(name string, variants ...Variant) *Set {
	s, err := NewSet(name, variants...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the name of the set.
func (s *Set) Name() string { return s.name }

// Len returns the number of variants.
func (s *Set) Len() int { return len(s.tags) }

// Tags returns all tags in declaration order.
func (s *Set) Tags() []string { return append([]string(nil), s.tags...) }

// Has reports whether the set declares a variant with the given tag.
func (s *Set) Has(tag string) bool {
	_, ok := s.index[tag]
	return ok
}

// Shape returns the payload shape of a variant.
func (s *Set) Shape(tag string) (*vals.Shape, bool) {
	i, ok := s.index[tag]
	if !ok {
		return nil, false
	}
	return s.shapes[i], true
}

func (s *Set) unknown(tag string) error {
	return &UnknownVariant{Set: s.name, Tag: tag, Valid: s.tags}
}

// New builds a message of the given variant, with payload values in the order
// of the variant's fields. An unknown tag is an *UnknownVariant error, and a
// wrong number of payload values is a *vals.ShapeMismatch.
func (s *Set) New(tag string, payload ...any) (Msg, error) {
	i, ok := s.index[tag]
	if !ok {
		return Msg{}, s.unknown(tag)
	}
	rec, err := s.shapes[i].Make(payload...)
	if err != nil {
		return Msg{}, err
	}
	return Msg{s, i, rec}, nil
}

// Must is like New, but panics on error.
func (s *Set) Must(tag string, payload ...any) Msg {
	m, err := s.New(tag, payload...)
	if err != nil {
		panic(err)
	}
	return m
}

// FromRecord builds a message from a payload record, which must have exactly
// the fields of the variant in any order.
func (s *Set) FromRecord(tag string, payload vals.Record) (Msg, error) {
	i, ok := s.index[tag]
	if !ok {
		return Msg{}, s.unknown(tag)
	}
	fields := make(map[string]any, payload.Len())
	payload.Iterate(func(name string, v any) bool {
		fields[name] = v
		return true
	})
	rec, err := s.shapes[i].FromMap(fields)
	if err != nil {
		return Msg{}, err
	}
	return Msg{s, i, rec}, nil
}

// Msg is a message: one variant of a Set together with its payload. Msg values
// are immutable.
//
// The zero Msg belongs to no set; no reducer accepts it.
type Msg struct {
	set     *Set
	variant int
	payload vals.Record
}

// Set returns the set the message belongs to, or nil for the zero Msg.
func (m Msg) Set() *Set { return m.set }

// Tag returns the tag of the message's variant.
func (m Msg) Tag() string {
	if m.set == nil {
		return ""
	}
	return m.set.tags[m.variant]
}

// Variant returns the position of the message's variant in its set.
func (m Msg) Variant() int { return m.variant }

// Payload returns the payload record.
func (m Msg) Payload() vals.Record { return m.payload }

// Get returns a payload field.
func (m Msg) Get(name string) (any, bool) { return m.payload.Get(name) }

// Is reports whether m is the given variant of set s.
func (m Msg) Is(s *Set, tag string) bool {
	return m.set == s && m.Tag() == tag
}

func (m Msg) Equal(other any) bool {
	o, ok := other.(Msg)
	return ok && m.set == o.set && m.variant == o.variant && m.payload.Equal(o.payload)
}

func (m Msg) Hash() uint32 {
	return hash.DJB(hash.String(m.Tag()), m.payload.Hash())
}

func (m Msg) Kind() string { return "msg" }

// Repr returns the tag, followed by the payload if it has fields, like
// `SetStep{step = 2}`.
func (m Msg) Repr() string {
	if m.set == nil {
		return "<msg>"
	}
	if m.payload.Len() == 0 {
		return m.Tag()
	}
	return m.Tag() + m.payload.Repr()
}

// MarshalJSON encodes the message as an object with the tag and payload.
func (m Msg) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Tag     string      `json:"tag"`
		Payload vals.Record `json:"payload"`
	}{m.Tag(), m.payload})
}

// UnknownVariant is returned when a message or a reducer case names a tag
// that its set does not declare.
type UnknownVariant struct {
	Set   string
	Tag   string
	Valid []string
}

func (e *UnknownVariant) Error() string {
	return fmt.Sprintf("unknown variant %q of %s, valid variants are %s",
		e.Tag, e.Set, strings.Join(e.Valid, ", "))
}

// BadDeclaration is returned by NewSet when the variants cannot form a set.
type BadDeclaration struct {
	Set     string
	Tag     string
	Problem string
}

func (e *BadDeclaration) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("bad declaration of %s: %s", e.Set, e.Problem)
	}
	return fmt.Sprintf("bad declaration of %s: %s %q", e.Set, e.Problem, e.Tag)
}
