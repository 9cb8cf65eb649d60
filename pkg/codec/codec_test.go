package codec

import (
	"errors"
	"math"
	"strings"
	"testing"

	"src.mvu.sh/pkg/msg"
	. "src.mvu.sh/pkg/tt"
	"src.mvu.sh/pkg/vals"
)

var sample = vals.MakeRecord(
	"count", 2,
	"step", 1.5,
	"errors", vals.MakeSeq("timeout", "refused"),
	"pos", vals.Pair(1, "a"),
	"rgb", vals.Triple(0.5, 0.0, true),
	"nested", vals.MakeRecord("ok", false, "none", nil, "empty", vals.MakeSeq()),
)

func TestYAMLRoundTrip(t *testing.T) {
	for _, v := range []any{
		nil, true, 42, -7, 3.25, 1.0, math.Inf(-1), "", "true", "multi\nline", "1.5",
		vals.MakeSeq(1, "1", 1.0, vals.MakeSeq()),
		vals.Pair(vals.MakeRecord("a", 1), vals.MakeSeq(vals.Pair(1, 2))),
		vals.MakeRecord(),
		vals.MakeRecord("z", 1, "a", 2),
		sample,
	} {
		data, err := EncodeYAML(v)
		if err != nil {
			t.Errorf("EncodeYAML(%s): %v", vals.Repr(v), err)
			continue
		}
		got, err := DecodeYAML(data)
		if err != nil {
			t.Errorf("DecodeYAML(%q): %v", data, err)
			continue
		}
		if !vals.Equal(got, v) {
			t.Errorf("round trip of %s gave %s, via %q", vals.Repr(v), vals.Repr(got), data)
		}
		if vals.Kind(got) != vals.Kind(v) {
			t.Errorf("round trip of %s changed its kind to %s", vals.Repr(v), vals.Kind(got))
		}
	}
}

func TestYAMLRoundTrip_NaN(t *testing.T) {
	data, err := EncodeYAML(math.NaN())
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeYAML(data)
	if f, ok := got.(float64); err != nil || !ok || !math.IsNaN(f) {
		t.Errorf("got (%v, %v), want NaN", got, err)
	}
}

func TestYAMLRoundTrip_KeepsFieldOrder(t *testing.T) {
	got, err := DecodeYAML(mustEncode(t, vals.MakeRecord("z", 1, "a", 2, "m", 3)))
	if err != nil {
		t.Fatal(err)
	}
	names := got.(vals.Record).Shape().Names()
	if strings.Join(names, ",") != "z,a,m" {
		t.Errorf("field order became %v", names)
	}
}

func TestEncodeYAML_Format(t *testing.T) {
	v := vals.MakeRecord("count", 2, "step", 1.0, "pos", vals.Pair(1, "a"), "note", "true", "none", nil)
	want := "count: 2\nstep: 1.0\npos: !tuple [1, a]\nnote: \"true\"\nnone: null\n"
	if got := string(mustEncode(t, v)); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeYAML_Func(t *testing.T) {
	Test(t, Fn("EncodeYAML", EncodeYAML), Table{
		Args(vals.NewFunc("f", nil)).Rets(Any, &Unencodable{Kind: "func"}),
		Args(vals.MakeRecord("a", vals.MakeSeq(1, vals.NewFunc("f", nil)))).
			Rets(Any, &Unencodable{Kind: "func", Path: "a[1]"}),
		Args(vals.MakeRecord("a", vals.MakeRecord("b", vals.Pair(1, vals.NewFunc("f", nil))))).
			Rets(Any, &Unencodable{Kind: "func", Path: "a.b(1)"}),
		Args(struct{}{}).Rets(Any, &Unencodable{Kind: "!!struct {}"}),
	})
}

func TestDecodeYAML_HandWritten(t *testing.T) {
	Test(t, Fn("DecodeYAML", func(s string) (any, error) { return DecodeYAML([]byte(s)) }), Table{
		Args("count: 0\nstep: 1\nerrors: []\n").
			Rets(vals.MakeRecord("count", 0, "step", 1, "errors", vals.MakeSeq()), nil),
		Args("[a, 2, ~]").Rets(vals.MakeSeq("a", 2, nil), nil),
		Args("!tuple [x, y, z]").Rets(vals.Triple("x", "y", "z"), nil),
		Args("base: &b {x: 1}\ncopy: *b\n").
			Rets(vals.MakeRecord("base", vals.MakeRecord("x", 1), "copy", vals.MakeRecord("x", 1)), nil),
		Args("0x10").Rets(16, nil),
	})
}

func TestDecodeYAML_Errors(t *testing.T) {
	Test(t, Fn("DecodeYAML", func(s string) (any, error) { return DecodeYAML([]byte(s)) }), Table{
		Args("").Rets(nil, &BadDocument{Line: 1, Problem: "empty document"}),
		Args("a: 1\n2: b\n").Rets(nil, &BadDocument{Line: 2, Problem: "field names must be strings"}),
		Args("!!binary aGVsbG8=").Rets(nil, &BadDocument{Line: 1, Problem: "unsupported tag !!binary"}),
		Args("!!set {a}").Rets(nil, &BadDocument{Line: 1, Problem: "unsupported tag !!set"}),
	})

	_, err := DecodeYAML([]byte("!tuple [1]"))
	var arity *vals.ArityError
	if !errors.As(err, &arity) {
		t.Errorf("1-tuple: got %v, want *vals.ArityError", err)
	}
	_, err = DecodeYAML([]byte("{a: 1, a: 2}"))
	if err == nil {
		t.Errorf("duplicate keys decoded without error")
	}
}

func TestEncodeJSON(t *testing.T) {
	Test(t, Fn("EncodeJSON", func(v any) (string, error) {
		data, err := EncodeJSON(v)
		return string(data), err
	}), Table{
		Args(sample).Rets(`{"count":2,"step":1.5,"errors":["timeout","refused"],"pos":[1,"a"],`+
			`"rgb":[0.5,0,true],"nested":{"ok":false,"none":null,"empty":[]}}`, nil),
		Args(vals.MakeSeq(vals.NewFunc("f", nil))).Rets("", &Unencodable{Kind: "func", Path: "[0]"}),
		Args(testSet.Must("Say", "hi")).Rets(`{"tag":"Say","payload":{"text":"hi"}}`, nil),
	})
}

var testSet = msg.MustSet("test", msg.V("Ping"), msg.V("Say", "text"), msg.V("Move", "to"))

func TestMsgRoundTrip(t *testing.T) {
	for _, m := range []msg.Msg{
		testSet.Must("Ping"),
		testSet.Must("Say", "hello: world"),
		testSet.Must("Move", vals.Pair(1, 2)),
	} {
		data, err := EncodeMsg(m)
		if err != nil {
			t.Errorf("EncodeMsg(%s): %v", vals.Repr(m), err)
			continue
		}
		got, err := DecodeMsg(testSet, data)
		if err != nil || !vals.Equal(got, m) {
			t.Errorf("round trip of %s gave (%s, %v) via %q", vals.Repr(m), vals.Repr(got), err, data)
		}
	}
}

func TestEncodeMsg_Format(t *testing.T) {
	data, err := EncodeMsg(testSet.Must("Say", "hi"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "tag: Say\npayload:\n  text: hi\n"; string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}
}

func TestDecodeMsg_Errors(t *testing.T) {
	decode := func(s string) error {
		_, err := DecodeMsg(testSet, []byte(s))
		return err
	}
	var uv *msg.UnknownVariant
	if err := decode("tag: Jump\n"); !errors.As(err, &uv) {
		t.Errorf("unknown tag: got %v", err)
	}
	var sm *vals.ShapeMismatch
	if err := decode("tag: Say\npayload: {}\n"); !errors.As(err, &sm) {
		t.Errorf("missing payload field: got %v", err)
	}
	if err := decode("[1, 2]"); err == nil || !strings.Contains(err.Error(), "must be a mapping") {
		t.Errorf("sequence: got %v", err)
	}
	if err := decode("tag: Say\npayload: [1]\n"); err == nil || !strings.Contains(err.Error(), "payload must be a mapping") {
		t.Errorf("sequence payload: got %v", err)
	}
	if err := decode("payload: {}\n"); err == nil {
		t.Errorf("missing tag decoded without error")
	}
}

func mustEncode(t *testing.T, v any) []byte {
	t.Helper()
	data, err := EncodeYAML(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
