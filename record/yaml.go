// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// The document uses the same plain timestamp shape PyYAML and libyaml
// resolve implicitly; fractional seconds appear only when non-zero and then
// always with six digits.
const timestampLayout = "2006-01-02 15:04:05"

var timestampParseLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	"2006-01-02",
}

func formatTimestamp(t time.Time) string {
	t = t.UTC()
	s := t.Format(timestampLayout)
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}

// ParseTimestamp parses the document's timestamp scalar shape, accepting the
// space- and T-separated ISO-8601 forms as well as a bare date.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampParseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// MarshalYAML renders the record as a YAML mapping node with its fields in
// insertion order.
func (r *Record) MarshalYAML() (interface{}, error) {
	return encodeRecord(r), nil
}

// UnmarshalYAML decodes a YAML mapping node into the record, preserving the
// key order of the document.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeNode(node)
	if err != nil {
		return err
	}
	if v.Kind() != KindRecord {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, node.Tag)
	}
	r.fields = v.Record().fields
	return nil
}

func encodeRecord(r *Record) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range r.fields {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			encodeValue(f.Value))
	}
	return node
}

func encodeValue(v Value) *yaml.Node {
	switch v.Kind() {
	case KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int",
			Value: strconv.FormatUint(v.Uint(), 10)}
	case KindHexInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int",
			Value: "0x" + strconv.FormatUint(v.Uint(), 16)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str()}
	case KindTimestamp:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp",
			Value: formatTimestamp(v.Time())}
	case KindBytes:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, b := range v.ByteString() {
			node.Content = append(node.Content, encodeValue(Hex(uint64(b))))
		}
		return node
	case KindList:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if !v.IsBlock() {
			node.Style = yaml.FlowStyle
		}
		for _, el := range v.List() {
			node.Content = append(node.Content, encodeValue(el))
		}
		return node
	case KindRecord:
		return encodeRecord(v.Record())
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func decodeNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return decodeScalar(node)
	case yaml.SequenceNode:
		return decodeSequence(node)
	case yaml.MappingNode:
		rec := New()
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := decodeNode(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			rec.Set(node.Content[i].Value, v)
		}
		return Nested(rec), nil
	case yaml.AliasNode:
		return decodeNode(node.Alias)
	}
	return Value{}, fmt.Errorf("line %d: unsupported YAML node", node.Line)
}

func decodeScalar(node *yaml.Node) (Value, error) {
	switch node.Tag {
	case "!!int":
		if strings.HasPrefix(node.Value, "0x") || strings.HasPrefix(node.Value, "0X") {
			n, err := strconv.ParseUint(node.Value[2:], 16, 64)
			if err != nil {
				return Value{}, fmt.Errorf("line %d: invalid hex integer %q", node.Line, node.Value)
			}
			return Hex(n), nil
		}
		n, err := strconv.ParseUint(node.Value, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("line %d: invalid integer %q", node.Line, node.Value)
		}
		return Int(n), nil
	case "!!str":
		return Str(node.Value), nil
	case "!!timestamp":
		t, err := ParseTimestamp(node.Value)
		if err != nil {
			return Value{}, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return Time(t), nil
	}
	return Value{}, fmt.Errorf("line %d: unsupported scalar %s %q",
		node.Line, node.Tag, node.Value)
}

// decodeSequence distinguishes the two sequence flavours of the document: a
// flow sequence consisting solely of hex integer octets is an octet string,
// anything else stays a plain (flow or block) list.
func decodeSequence(node *yaml.Node) (Value, error) {
	flow := node.Style&yaml.FlowStyle != 0
	els := make([]Value, 0, len(node.Content))
	octets := flow && len(node.Content) > 0
	for _, child := range node.Content {
		v, err := decodeNode(child)
		if err != nil {
			return Value{}, err
		}
		if !v.IsHex() || v.Uint() > 0xff {
			octets = false
		}
		els = append(els, v)
	}
	if octets {
		b := make([]byte, len(els))
		for i, el := range els {
			b[i] = byte(el.Uint())
		}
		return Bytes(b), nil
	}
	if flow {
		return Flow(els...), nil
	}
	return Block(els...), nil
}
