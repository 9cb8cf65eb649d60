package vals

import "math"

// Ordering relationship between two values.
type Ordering uint8

// Possible Ordering values.
const (
	CmpLess Ordering = iota
	CmpEqual
	CmpMore
	CmpUncomparable
)

// Cmp compares two values and returns the ordering relationship between them.
// Numbers are ordered numerically (an int and a float64 may compare as
// CmpEqual without being Equal), strings lexicographically by bytes, booleans
// with false before true, and tuples and sequences lexicographically by their
// elements. Everything else is CmpEqual to values it is Equal to and
// CmpUncomparable otherwise.
func Cmp(a, b any) Ordering {
	return cmpInner(a, b, Cmp)
}

func cmpInner(a, b any, recurse func(a, b any) Ordering) Ordering {
	switch a := a.(type) {
	case nil:
		if b == nil {
			return CmpEqual
		}
	case bool:
		if b, ok := b.(bool); ok {
			switch {
			case a == b:
				return CmpEqual
			case !a:
				return CmpLess
			default:
				return CmpMore
			}
		}
	case int:
		switch b := b.(type) {
		case int:
			return compareBuiltin(a, b)
		case float64:
			return compareFloat(float64(a), b)
		}
	case float64:
		switch b := b.(type) {
		case int:
			return compareFloat(a, float64(b))
		case float64:
			return compareFloat(a, b)
		}
	case string:
		if b, ok := b.(string); ok {
			return compareBuiltin(a, b)
		}
	case Tuple:
		if b, ok := b.(Tuple); ok {
			return compareElems(a.elems, b.elems, recurse)
		}
	case Seq:
		if b, ok := b.(Seq); ok {
			return compareElems(a.Elems(), b.Elems(), recurse)
		}
	default:
		if Equal(a, b) {
			return CmpEqual
		}
	}
	return CmpUncomparable
}

func compareElems(a, b []any, recurse func(a, b any) Ordering) Ordering {
	for i := 0; i < len(a) && i < len(b); i++ {
		if o := recurse(a[i], b[i]); o != CmpEqual {
			return o
		}
	}
	return compareBuiltin(len(a), len(b))
}

func compareBuiltin[T interface{ int | string }](a, b T) Ordering {
	if a < b {
		return CmpLess
	} else if a > b {
		return CmpMore
	}
	return CmpEqual
}

func compareFloat(a, b float64) Ordering {
	// For the sake of ordering, NaN's are considered equal to each
	// other and smaller than all numbers
	switch {
	case math.IsNaN(a):
		if math.IsNaN(b) {
			return CmpEqual
		}
		return CmpLess
	case math.IsNaN(b):
		return CmpMore
	case a < b:
		return CmpLess
	case a > b:
		return CmpMore
	default: // a == b
		return CmpEqual
	}
}

// CmpTotal is similar to Cmp, but uses an artificial total ordering to avoid
// returning CmpUncomparable:
//
//   - If a and b have different kinds, it compares their kinds instead, in the
//     order nil, bool, number, string, tuple, seq, record, func, others.
//
//   - If a and b have the same kind but are considered uncomparable by Cmp,
//     it returns CmpEqual instead of CmpUncomparable.
//
// It is the default ordering of Seq.Sort.
func CmpTotal(a, b any) Ordering {
	if o := compareBuiltin(kindRank(a), kindRank(b)); o != CmpEqual {
		return o
	}
	if o := cmpInner(a, b, CmpTotal); o != CmpUncomparable {
		return o
	}
	return CmpEqual
}

func kindRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int, float64:
		return 2
	case string:
		return 3
	case Tuple:
		return 4
	case Seq:
		return 5
	case Record:
		return 6
	case Func:
		return 7
	default:
		return 8
	}
}

// Compare adapts an Ordering to the convention of the standard sort and slices
// packages: negative for less, zero for equal or uncomparable, positive for
// more.
func (o Ordering) Compare() int {
	switch o {
	case CmpLess:
		return -1
	case CmpMore:
		return 1
	default:
		return 0
	}
}
