package vals

import (
	"fmt"
	"strings"
)

// ShapeMismatch is returned when a record operation refers to fields that do
// not match the record's shape. It always indicates a programming error.
type ShapeMismatch struct {
	// Fields of the shape the operation was checked against.
	Fields []string
	// The offending field, if the mismatch is about a single field.
	Field string
	// What went wrong, e.g. "no such field".
	Problem string
}

func (e *ShapeMismatch) Error() string {
	var sb strings.Builder
	sb.WriteString("shape mismatch: ")
	sb.WriteString(e.Problem)
	if e.Field != "" {
		fmt.Fprintf(&sb, " %q", e.Field)
	}
	sb.WriteString(" in {")
	sb.WriteString(strings.Join(e.Fields, ", "))
	sb.WriteString("}")
	return sb.String()
}

// ArityError is returned when a fixed-arity aggregate is built with the wrong
// number of elements.
type ArityError struct {
	What      string
	ValidLow  int
	ValidHigh int
	Actual    int
}

func (e *ArityError) Error() string {
	switch {
	case e.ValidHigh == e.ValidLow:
		return fmt.Sprintf("arity mismatch: %s must be %s, but is %s",
			e.What, nValues(e.ValidLow), nValues(e.Actual))
	case e.ValidHigh == -1:
		return fmt.Sprintf("arity mismatch: %s must be %d or more values, but is %s",
			e.What, e.ValidLow, nValues(e.Actual))
	default:
		return fmt.Sprintf("arity mismatch: %s must be %d to %d values, but is %s",
			e.What, e.ValidLow, e.ValidHigh, nValues(e.Actual))
	}
}

// OutOfRange is returned when an index is outside the valid range.
type OutOfRange struct {
	What      string
	ValidLow  int
	ValidHigh int
	Actual    int
}

func (e *OutOfRange) Error() string {
	if e.ValidHigh < e.ValidLow {
		return fmt.Sprintf("out of range: %s has no valid value, but is %d",
			e.What, e.Actual)
	}
	return fmt.Sprintf("out of range: %s must be from %d to %d, but is %d",
		e.What, e.ValidLow, e.ValidHigh, e.Actual)
}

// WrongType is returned by Field when a field holds a value of another kind.
type WrongType struct {
	Field string
	Want  string
	Got   string
}

func (e *WrongType) Error() string {
	return fmt.Sprintf("wrong type: field %q must be %s, but is %s", e.Field, e.Want, e.Got)
}

func nValues(n int) string {
	if n == 1 {
		return "1 value"
	}
	return fmt.Sprintf("%d values", n)
}
