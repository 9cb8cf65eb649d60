package vals

import "errors"

var errMarshalFunc = errors.New("function values cannot be encoded")

// Func is an opaque function value that can be stored in a record field. It
// is shared like any other value, but takes no part in structural
// comparisons: all Func values are Equal to each other and hash to 0, so a
// record's equality is decided by its data fields alone.
type Func struct {
	name string
	fn   any
}

// NewFunc wraps a Go function. The name is only used in Repr.
func NewFunc(name string, fn any) Func { return Func{name, fn} }

// Name returns the name given to NewFunc.
func (f Func) Name() string { return f.name }

// Value returns the wrapped Go function.
func (f Func) Value() any { return f.fn }

func (f Func) Equal(other any) bool {
	_, ok := other.(Func)
	return ok
}

func (f Func) Hash() uint32 { return 0 }

func (f Func) Kind() string { return "func" }

func (f Func) Repr() string { return "<func " + f.name + ">" }

// MarshalJSON always fails; functions have no serialized form.
func (f Func) MarshalJSON() ([]byte, error) {
	return nil, errMarshalFunc
}
