package counter

import (
	"strings"
	"testing"

	"src.mvu.sh/pkg/msg"
	. "src.mvu.sh/pkg/tt"
	"src.mvu.sh/pkg/vals"
)

func reduce(msgs ...msg.Msg) string {
	s := Init
	for _, m := range msgs {
		var err error
		s, err = Reducer.Reduce(m, s)
		if err != nil {
			return "error: " + err.Error()
		}
	}
	return vals.Repr(s)
}

func TestReducer(t *testing.T) {
	Test(t, Fn("reduce", reduce), Table{
		Args().Rets("{count = 0, step = 1, errors = []}"),
		Args(Increment, Increment).Rets("{count = 2, step = 1, errors = []}"),
		Args(Decrement).Rets("{count = -1, step = 1, errors = []}"),
		Args(SetStep(5), Increment, Increment, Decrement).
			Rets("{count = 5, step = 5, errors = []}"),
		Args(Failed("a"), Failed("b")).
			Rets(`{count = 0, step = 1, errors = ["a", "b"]}`),
		Args(SetStep(2), Increment, Failed("a"), Reset).
			Rets("{count = 0, step = 2, errors = []}"),
	})
}

func TestReducer_DoesNotModifyState(t *testing.T) {
	s1, _ := Reducer.Reduce(Failed("a"), Init)
	s2, _ := Reducer.Reduce(Failed("b"), s1)
	if got := vals.Repr(s1); got != `{count = 0, step = 1, errors = ["a"]}` {
		t.Errorf("s1 changed to %s", got)
	}
	if got := vals.Repr(s2); got != `{count = 0, step = 1, errors = ["a", "b"]}` {
		t.Errorf("s2 is %s", got)
	}
	if got := vals.Repr(Init); got != "{count = 0, step = 1, errors = []}" {
		t.Errorf("Init changed to %s", got)
	}
}

func TestReducer_WrongStateShape(t *testing.T) {
	_, err := Reducer.Reduce(Increment, vals.MakeRecord("count", "x", "step", 1, "errors", vals.Seq{}))
	if err == nil {
		t.Errorf("want error for a string count")
	}
}

func TestRender(t *testing.T) {
	Test(t, Fn("Render", Render), Table{
		Args(Init).Rets("count: 0"),
		Args(vals.MakeRecord("count", 3, "step", 2, "errors", vals.Seq{})).
			Rets("count: 3, step: 2"),
		Args(vals.MakeRecord("count", -1, "step", 1, "errors", vals.MakeSeq("bad"))).
			Rets(`count: -1, errors: ["bad"]`),
	})
}

func TestFormat(t *testing.T) {
	s := vals.MakeRecord("count", 1, "step", 1, "errors", vals.MakeSeq("x"))
	Test(t, Fn("render", Format.render), Table{
		Args(Text, s).Rets(`count: 1, errors: ["x"]` + "\n"),
		Args(JSON, s).Rets(`{"count":1,"step":1,"errors":["x"]}` + "\n"),
		Args(JSON, vals.MakeRecord("f", vals.NewFunc("f", nil))).
			Rets(Any),
	})
}

func TestFormat_YAML(t *testing.T) {
	got := YAML.render(Init)
	if !strings.HasPrefix(got, "---\ncount: 0\nstep: 1\nerrors:") {
		t.Errorf("got %q", got)
	}
}

func handle(action string, args ...string) (string, string) {
	m, err := NewView(Text).Handle(Init, action, args...)
	if err != nil {
		return "", err.Error()
	}
	return m.Repr(), ""
}

func TestView_Handle(t *testing.T) {
	Test(t, Fn("handle", handle), Table{
		Args("inc").Rets("Increment", ""),
		Args("dec").Rets("Decrement", ""),
		Args("reset").Rets("Reset", ""),
		Args("step", "4").Rets("SetStep{step = 4}", ""),
		Args("fail", "out", "of", "luck").Rets(`Failed{reason = "out of luck"}`, ""),

		Args("inc", "2").Rets("", "inc: takes no arguments, got 1"),
		Args("step", "0").Rets("", "step: step must be a positive integer"),
		Args("step", "x").Rets("", "step: step must be a positive integer"),
		Args("step").Rets("", "step: arity mismatch: arguments must be 1 value, but is 0 values"),
		Args("fail").Rets("", "fail: arity mismatch: arguments must be 1 or more values, but is 0 values"),
		Args("jump").Rets("", `unknown action "jump", valid actions are dec, fail, inc, reset, step`),
	})
}
