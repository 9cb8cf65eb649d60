package vals

import (
	"fmt"
	"reflect"
	"strconv"
)

// Reprer wraps the Repr method.
type Reprer interface {
	// Repr returns a single-line string representing the value. Literals are
	// preferred; values without a literal form use "<kind description>".
	Repr() string
}

// Repr returns the representation for a value: a string that reads like a
// literal of the value, such as `{count = 1, name = "x"}` for a record. It is
// implemented for the builtin scalar types and types satisfying the Reprer
// interface. For other types, it uses fmt.Sprint with the format
// "<unknown %v>".
func Repr(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return formatFloat64(v)
	case string:
		return strconv.Quote(v)
	case Reprer:
		return v.Repr()
	default:
		return fmt.Sprintf("<unknown %v>", v)
	}
}

func formatFloat64(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if _, err := strconv.Atoi(s); err == nil {
		// Keep floats distinguishable from ints.
		return s + ".0"
	}
	return s
}

func goTypeName(v any) string {
	return reflect.TypeOf(v).String()
}
