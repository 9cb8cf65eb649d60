package counter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"src.mvu.sh/pkg/codec"
	"src.mvu.sh/pkg/msg"
	"src.mvu.sh/pkg/vals"
	"src.mvu.sh/pkg/view"
)

// Render renders a state as one line of text, like
//
//	count: 3, step: 2, errors: ["bad step"]
//
// The step is only shown when it is not 1, and the errors only when there
// are some.
func Render(s vals.Record) string {
	var sb strings.Builder
	count, _ := s.Get("count")
	fmt.Fprintf(&sb, "count: %s", vals.Repr(count))
	if step, _ := s.Get("step"); step != 1 {
		fmt.Fprintf(&sb, ", step: %s", vals.Repr(step))
	}
	if errs, _ := s.Get("errors"); errs != nil {
		if seq, ok := errs.(vals.Seq); ok && !seq.IsEmpty() {
			fmt.Fprintf(&sb, ", errors: %s", seq.Repr())
		}
	}
	return sb.String()
}

// Format selects how states are rendered.
type Format int

// Available formats.
const (
	Text Format = iota
	JSON
	YAML
)

func (f Format) render(s vals.Record) string {
	var data []byte
	var err error
	switch f {
	case JSON:
		data, err = codec.EncodeJSON(s)
	case YAML:
		data, err = codec.EncodeYAML(s)
		data = append([]byte("---\n"), data...)
	default:
		return Render(s) + "\n"
	}
	if err != nil {
		return "error: " + err.Error() + "\n"
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return string(data)
}

var errStepNotPositive = errors.New("step must be a positive integer")

// NewView returns the view of the counter. Its render tree is the text to
// print for each state, including the trailing newline. The actions are
//
//   - inc, dec and reset, which take no arguments;
//   - step N, which sets the step to the positive integer N;
//   - fail REASON..., which records a failure.
func NewView(f Format) *view.View[vals.Record, string] {
	return view.New(f.render).
		On("inc", view.Const[vals.Record](Increment)).
		On("dec", view.Const[vals.Record](Decrement)).
		On("reset", view.Const[vals.Record](Reset)).
		On("step", func(_ vals.Record, args []string) (msg.Msg, error) {
			if len(args) != 1 {
				return msg.Msg{}, &vals.ArityError{What: "arguments", ValidLow: 1, ValidHigh: 1, Actual: len(args)}
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return msg.Msg{}, errStepNotPositive
			}
			return SetStep(n), nil
		}).
		On("fail", func(_ vals.Record, args []string) (msg.Msg, error) {
			if len(args) == 0 {
				return msg.Msg{}, &vals.ArityError{What: "arguments", ValidLow: 1, ValidHigh: -1, Actual: 0}
			}
			return Failed(strings.Join(args, " ")), nil
		})
}
