// Package vals implements the immutable value model: records with a fixed
// shape, tuples of two or three slots, persistent sequences and opaque
// function values, together with the generic operations Equal, Hash, Cmp,
// Kind and Repr over them.
//
// Scalars are represented by the builtin Go types nil, bool, int, float64 and
// string. Composite values never change after construction; every "update"
// returns a new value that shares all unchanged substructure with the
// original.
package vals

// Kinder wraps the Kind method.
type Kinder interface {
	Kind() string
}

// Kind returns the kind of a value, a short lowercase name such as "int" or
// "record". For unsupported Go types it returns the Go type name preceded by
// "!!".
func Kind(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		return "bool"
	case int:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case Kinder:
		return v.Kind()
	default:
		return "!!" + goTypeName(v)
	}
}
