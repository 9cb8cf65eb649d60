// Package reducer builds total reducers over a msg.Set.
//
// A Reducer is assembled from one case per variant of a message set. Coverage
// is checked when the Reducer is built: a missing case is a
// *NonExhaustiveMatch error from New or Build, so a program that builds its
// reducers at startup cannot reach a message it does not handle.
package reducer

import (
	"fmt"
	"strings"

	"src.mvu.sh/pkg/msg"
)

// Case computes the next state from a message of one variant and the current
// state. It must be pure: it may not perform I/O, read or write shared mutable
// state, or depend on time or randomness not carried in the message.
//
// A Case returns an error only for programmer errors, such as a payload field
// of an unexpected type.
type Case[S any] func(m msg.Msg, s S) (S, error)

// Cases maps tags to the cases handling them.
type Cases[S any] map[string]Case[S]

// Reducer is a total, pure function from a message and a state to the next
// state.
type Reducer[S any] struct {
	set   *msg.Set
	cases []Case[S]
}

// New builds a Reducer for set from cases. Every tag in set must have a case;
// otherwise New returns a *NonExhaustiveMatch listing the missing tags. A case
// for a tag outside set is a *msg.UnknownVariant error.
func New[S any](set *msg.Set, cases Cases[S]) (*Reducer[S], error) {
	for tag := range cases {
		if !set.Has(tag) {
			return nil, &msg.UnknownVariant{Set: set.Name(), Tag: tag, Valid: set.Tags()}
		}
	}
	r := &Reducer[S]{set, make([]Case[S], set.Len())}
	var missing []string
	for i, tag := range set.Tags() {
		c := cases[tag]
		if c == nil {
			missing = append(missing, tag)
			continue
		}
		r.cases[i] = c
	}
	if len(missing) > 0 {
		return nil, &NonExhaustiveMatch{Set: set.Name(), Missing: missing}
	}
	return r, nil
}

// MustNew is like New, but panics on error.
func MustNew[S any](set *msg.Set, cases Cases[S]) *Reducer[S] {
	return must(New(set, cases))
}

// Set returns the message set the reducer handles.
func (r *Reducer[S]) Set() *msg.Set { return r.set }

// Reduce applies the case for m's variant to s. A message from another set,
// including the zero msg.Msg, is a *NonExhaustiveMatch error.
func (r *Reducer[S]) Reduce(m msg.Msg, s S) (S, error) {
	if m.Set() != r.set {
		return s, &NonExhaustiveMatch{Set: r.set.Name(), Foreign: setName(m.Set()), Missing: []string{m.Tag()}}
	}
	return r.cases[m.Variant()](m, s)
}

// Func returns r.Reduce as a plain function.
func (r *Reducer[S]) Func() func(msg.Msg, S) (S, error) { return r.Reduce }

func setName(s *msg.Set) string {
	if s == nil {
		return "<none>"
	}
	return s.Name()
}

// Builder assembles a Reducer case by case.
type Builder[S any] struct {
	set   *msg.Set
	cases Cases[S]
	err   error
}

// For starts building a Reducer for set.
func For[S any](set *msg.Set) *Builder[S] {
	return &Builder[S]{set: set, cases: make(Cases[S])}
}

// On adds the case for a tag and returns the builder. Adding two cases for the
// same tag is an error reported by Build.
func (b *Builder[S]) On(tag string, c Case[S]) *Builder[S] {
	if _, dup := b.cases[tag]; dup && b.err == nil {
		b.err = fmt.Errorf("duplicate case for %s.%s", b.set.Name(), tag)
	}
	b.cases[tag] = c
	return b
}

// Build returns the Reducer, or the first error found.
func (b *Builder[S]) Build() (*Reducer[S], error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.set, b.cases)
}

// MustBuild is like Build, but panics on error.
func (b *Builder[S]) MustBuild() *Reducer[S] {
	return must(b.Build())
}

func must[S any](r *Reducer[S], err error) *Reducer[S] {
	if err != nil {
		panic(err)
	}
	return r
}

// NonExhaustiveMatch is returned when a reducer does not cover some variants
// of its message set, or is asked to reduce a message of another set.
type NonExhaustiveMatch struct {
	Set string
	// Name of the set the message came from, for messages of another set.
	Foreign string
	Missing []string
}

func (e *NonExhaustiveMatch) Error() string {
	if e.Foreign != "" {
		return fmt.Sprintf("non-exhaustive match: reducer for %s got message %q of %s",
			e.Set, strings.Join(e.Missing, ", "), e.Foreign)
	}
	return fmt.Sprintf("non-exhaustive match: reducer for %s has no case for %s",
		e.Set, strings.Join(e.Missing, ", "))
}
