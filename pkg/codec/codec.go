// Package codec encodes values and messages as YAML and JSON.
//
// The YAML form is built from yaml.Node trees so that it is faithful to the
// value model: records become mappings with keys in field order, sequences
// become sequences, and tuples become sequences tagged !tuple. Decoding
// reverses this exactly, so DecodeYAML(EncodeYAML(v)) is Equal to v for every
// encodable v.
//
// Function values cannot be encoded.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"src.mvu.sh/pkg/msg"
	"src.mvu.sh/pkg/vals"
)

// TupleTag is the YAML tag of tuples.
const TupleTag = "!tuple"

// Unencodable is returned when a value has no encoded form.
type Unencodable struct {
	Kind string
	// Path to the value, like "errors[2]" or "pos.x".
	Path string
}

func (e *Unencodable) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cannot encode value of kind %s", e.Kind)
	}
	return fmt.Sprintf("cannot encode value of kind %s at %s", e.Kind, e.Path)
}

// BadDocument is returned when a document cannot be decoded into a value.
type BadDocument struct {
	Line    int
	Problem string
}

func (e *BadDocument) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Problem)
}

// EncodeYAML encodes a value as a YAML document.
func EncodeYAML(v any) ([]byte, error) {
	node, err := toNode(v, "")
	if err != nil {
		return nil, err
	}
	return marshalNode(node)
}

func marshalNode(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func toNode(v any, path string) (*yaml.Node, error) {
	switch v := v.(type) {
	case nil:
		return scalar("!!null", "null"), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(v)), nil
	case int:
		return scalar("!!int", strconv.Itoa(v)), nil
	case float64:
		return scalar("!!float", formatFloat(v)), nil
	case string:
		return scalar("!!str", v), nil
	case vals.Tuple:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: TupleTag, Style: yaml.FlowStyle}
		for i, elem := range v.Elems() {
			child, err := toNode(elem, fmt.Sprintf("%s(%d)", path, i))
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case vals.Seq:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		i := 0
		var err error
		v.Iterate(func(elem any) bool {
			var child *yaml.Node
			child, err = toNode(elem, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return false
			}
			node.Content = append(node.Content, child)
			i++
			return true
		})
		if err != nil {
			return nil, err
		}
		return node, nil
	case vals.Record:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		v.Iterate(func(name string, field any) bool {
			var child *yaml.Node
			child, err = toNode(field, joinPath(path, name))
			if err != nil {
				return false
			}
			node.Content = append(node.Content, scalar("!!str", name), child)
			return true
		})
		if err != nil {
			return nil, err
		}
		return node, nil
	default:
		return nil, &Unencodable{Kind: vals.Kind(v), Path: path}
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		// Keep the value a float when read back.
		s += ".0"
	}
	return s
}

// DecodeYAML decodes a YAML document produced by EncodeYAML. Untagged
// documents written by hand are accepted too, as long as they only contain
// scalars, sequences and mappings with string keys.
func DecodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &BadDocument{Line: 1, Problem: "empty document"}
	}
	return fromNode(doc.Content[0])
}

func fromNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return fromNode(node.Alias)
	case yaml.ScalarNode:
		return fromScalar(node)
	case yaml.SequenceNode:
		elems := make([]any, len(node.Content))
		for i, child := range node.Content {
			v, err := fromNode(child)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		switch node.ShortTag() {
		case TupleTag:
			t, err := vals.NewTuple(elems...)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", node.Line, err)
			}
			return t, nil
		case "!!seq":
			return vals.MakeSeq(elems...), nil
		}
	case yaml.MappingNode:
		if node.ShortTag() != "!!map" {
			break
		}
		n := len(node.Content) / 2
		names := make([]string, n)
		values := make([]any, n)
		for i := 0; i < n; i++ {
			key, value := node.Content[2*i], node.Content[2*i+1]
			if key.Kind != yaml.ScalarNode || key.ShortTag() != "!!str" {
				return nil, &BadDocument{Line: key.Line, Problem: "field names must be strings"}
			}
			names[i] = key.Value
			v, err := fromNode(value)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		shape, err := vals.NewShape(names...)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return shape.Make(values...)
	}
	return nil, &BadDocument{Line: node.Line, Problem: "unsupported tag " + node.ShortTag()}
}

func fromScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		err := node.Decode(&b)
		return b, err
	case "!!int":
		var i int
		err := node.Decode(&i)
		return i, err
	case "!!float":
		var f float64
		err := node.Decode(&f)
		return f, err
	case "!!str":
		return node.Value, nil
	}
	return nil, &BadDocument{Line: node.Line, Problem: "unsupported tag " + node.ShortTag()}
}

// EncodeJSON encodes a value as JSON. Records become objects with keys in
// field order; tuples and sequences become arrays.
func EncodeJSON(v any) ([]byte, error) {
	if err := checkEncodable(v, ""); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Reports the first value that has no encoded form, with the same errors as
// EncodeYAML.
func checkEncodable(v any, path string) error {
	var err error
	switch v := v.(type) {
	case nil, bool, int, float64, string:
	case vals.Tuple:
		for i, elem := range v.Elems() {
			if err = checkEncodable(elem, fmt.Sprintf("%s(%d)", path, i)); err != nil {
				break
			}
		}
	case vals.Seq:
		i := 0
		v.Iterate(func(elem any) bool {
			err = checkEncodable(elem, fmt.Sprintf("%s[%d]", path, i))
			i++
			return err == nil
		})
	case vals.Record:
		v.Iterate(func(name string, field any) bool {
			err = checkEncodable(field, joinPath(path, name))
			return err == nil
		})
	case msg.Msg:
		err = checkEncodable(v.Payload(), "payload")
	default:
		err = &Unencodable{Kind: vals.Kind(v), Path: path}
	}
	return err
}

// EncodeMsg encodes a message as a YAML mapping with a tag and a payload.
func EncodeMsg(m msg.Msg) ([]byte, error) {
	payload, err := toNode(m.Payload(), "payload")
	if err != nil {
		return nil, err
	}
	return marshalNode(&yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{
		scalar("!!str", "tag"), scalar("!!str", m.Tag()),
		scalar("!!str", "payload"), payload,
	}})
}

// DecodeMsg decodes a message encoded by EncodeMsg. The message must be a
// variant of set.
func DecodeMsg(set *msg.Set, data []byte) (msg.Msg, error) {
	v, err := DecodeYAML(data)
	if err != nil {
		return msg.Msg{}, err
	}
	r, ok := v.(vals.Record)
	if !ok {
		return msg.Msg{}, &BadDocument{Line: 1, Problem: "message must be a mapping, got " + vals.Kind(v)}
	}
	tag, err := vals.Field[string](r, "tag")
	if err != nil {
		return msg.Msg{}, err
	}
	payload := vals.Record{}
	if p, ok := r.Get("payload"); ok {
		if payload, ok = p.(vals.Record); !ok {
			return msg.Msg{}, &BadDocument{Line: 1, Problem: "payload must be a mapping, got " + vals.Kind(p)}
		}
	}
	return set.FromRecord(tag, payload)
}
