// Package counter is a counter application built on the dispatch loop.
//
// The state is a record {count, step, errors}. Increment and Decrement move
// the count by the step, SetStep changes the step, Reset sets the count back
// to 0 and clears the errors, and Failed records a failure reason.
package counter

import (
	"src.mvu.sh/pkg/msg"
	"src.mvu.sh/pkg/reducer"
	"src.mvu.sh/pkg/vals"
)

// Messages is the message set of the counter.
var Messages = msg.MustSet("counter",
	msg.V("Increment"),
	msg.V("Decrement"),
	msg.V("Reset"),
	msg.V("SetStep", "step"),
	msg.V("Failed", "reason"))

// Messages without payloads.
var (
	Increment = Messages.Must("Increment")
	Decrement = Messages.Must("Decrement")
	Reset     = Messages.Must("Reset")
)

// SetStep returns a SetStep message.
func SetStep(step int) msg.Msg { return Messages.Must("SetStep", step) }

// Failed returns a Failed message.
func Failed(reason string) msg.Msg { return Messages.Must("Failed", reason) }

// Shape is the shape of the counter state.
var Shape = vals.MustShape("count", "step", "errors")

// Init is the initial state: a count of 0, a step of 1 and no errors.
var Init = must(Shape.Make(0, 1, vals.Seq{}))

func must(r vals.Record, err error) vals.Record {
	if err != nil {
		panic(err)
	}
	return r
}

// Reducer is the reducer of the counter.
var Reducer = reducer.For[vals.Record](Messages).
	On("Increment", func(_ msg.Msg, s vals.Record) (vals.Record, error) {
		return move(s, 1)
	}).
	On("Decrement", func(_ msg.Msg, s vals.Record) (vals.Record, error) {
		return move(s, -1)
	}).
	On("Reset", func(_ msg.Msg, s vals.Record) (vals.Record, error) {
		return vals.Update(s, Shape.Changes().Set("count", 0).Set("errors", vals.Seq{}))
	}).
	On("SetStep", func(m msg.Msg, s vals.Record) (vals.Record, error) {
		step, err := vals.Field[int](m.Payload(), "step")
		if err != nil {
			return s, err
		}
		return s.With("step", step)
	}).
	On("Failed", func(m msg.Msg, s vals.Record) (vals.Record, error) {
		reason, err := vals.Field[string](m.Payload(), "reason")
		if err != nil {
			return s, err
		}
		errs, err := vals.Field[vals.Seq](s, "errors")
		if err != nil {
			return s, err
		}
		return s.With("errors", errs.Conj(reason))
	}).
	MustBuild()

func move(s vals.Record, sign int) (vals.Record, error) {
	count, err := vals.Field[int](s, "count")
	if err != nil {
		return s, err
	}
	step, err := vals.Field[int](s, "step")
	if err != nil {
		return s, err
	}
	return s.With("count", count+sign*step)
}
