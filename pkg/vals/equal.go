package vals

import (
	"math"
	"reflect"
)

// Equaler wraps the Equal method.
type Equaler interface {
	// Equal compares the receiver to another value. Two equal values must have
	// the same hash code.
	Equal(other any) bool
}

// Equal returns whether two values are structurally equal. Values built
// through different update paths are equal when all their parts are equal;
// sharing plays no role. It is implemented for the builtin scalar types, and
// types satisfying the Equaler interface (Record, Tuple, Seq, Func). For other
// types, it uses reflect.DeepEqual. Unlike ==, it treats NaN as equal to
// itself.
func Equal(x, y any) bool {
	switch x := x.(type) {
	case nil:
		return y == nil
	case bool:
		return x == y
	case int:
		return x == y
	case float64:
		// NaN equals NaN, as in Cmp, so that a state always equals itself.
		y, ok := y.(float64)
		return ok && (x == y || (math.IsNaN(x) && math.IsNaN(y)))
	case string:
		return x == y
	case Equaler:
		return x.Equal(y)
	default:
		return reflect.DeepEqual(x, y)
	}
}
