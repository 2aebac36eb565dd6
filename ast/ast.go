// Package ast models the kind-tagged syntax tree consumed by the
// evaluator. The shape follows the JSON documents produced by the
// glayzzle/php-parser project: every node carries a "kind" string plus the
// fields that kind uses. Nodes are immutable once decoded.
package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Node kinds understood by the evaluator. Parsers emit more; unknown kinds
// are rejected at evaluation time, not at decode time.
const (
	KindProgram             = "program"
	KindExpressionStatement = "expressionstatement"
	KindAssign              = "assign"
	KindAssignRef           = "assignref"
	KindVariable            = "variable"
	KindArray               = "array"
	KindEntry               = "entry"
	KindNumber              = "number"
	KindString              = "string"
	KindBoolean             = "boolean"
	KindNullKeyword         = "nullkeyword"
	KindOffsetLookup        = "offsetlookup"
	KindGlobal              = "global"
	KindEcho                = "echo"
	KindBin                 = "bin"
	KindUnary               = "unary"
)

// Position is one point in the original source text.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Loc is the source span of a node. The parser omits it when position
// tracking is disabled.
type Loc struct {
	Source string   `json:"source,omitempty"`
	Start  Position `json:"start"`
	End    Position `json:"end"`
}

// Node is the union of all node shapes. Only the fields relevant to a
// node's kind are populated; the rest stay at their zero value.
//
// Two fields are polymorphic on the wire. Value holds the scalar payload of
// a literal (string for number nodes, string for string nodes, bool for
// boolean nodes) but holds a nested *Node for entry nodes. Name holds a
// variable's name string, or a nested *Node for dynamic names such as $$x.
type Node struct {
	Kind string `json:"kind"`
	Loc  *Loc   `json:"loc,omitempty"`
	Raw  string `json:"raw,omitempty"`

	Value any  `json:"value,omitempty"`
	Name  any  `json:"name,omitempty"`
	Byref bool `json:"byref,omitempty"`
	Curly bool `json:"curly,omitempty"`

	Expression *Node `json:"expression,omitempty"`
	What       *Node `json:"what,omitempty"`
	Offset     *Node `json:"offset,omitempty"`
	Left       *Node `json:"left,omitempty"`
	Right      *Node `json:"right,omitempty"`
	Key        *Node `json:"key,omitempty"`

	Operator  string `json:"operator,omitempty"`
	Type      string `json:"type,omitempty"`
	ShortForm bool   `json:"shortForm,omitempty"`

	Items       []*Node `json:"items,omitempty"`
	Expressions []*Node `json:"expressions,omitempty"`
	Children    []*Node `json:"children,omitempty"`
}

// UnmarshalJSON handles the polymorphic fields. php-parser encodes an
// absent subscript as "offset": false, entry values as nested nodes, and
// variable names as either strings or nodes; it also spells the reference
// flag byRef on some node kinds.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	aux := struct {
		*plain
		Offset json.RawMessage `json:"offset"`
		Value  json.RawMessage `json:"value"`
		Name   json.RawMessage `json:"name"`
		ByRef  bool            `json:"byRef"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ByRef {
		n.Byref = true
	}
	var err error
	if n.Offset, err = nodeOrNil(aux.Offset); err != nil {
		return fmt.Errorf("decoding offset: %w", err)
	}
	if n.Value, err = scalarOrNode(aux.Value); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}
	if n.Name, err = scalarOrNode(aux.Name); err != nil {
		return fmt.Errorf("decoding name: %w", err)
	}
	return nil
}

// nodeOrNil decodes raw as a node, or reports nil for absent, null, and
// false encodings.
func nodeOrNil(raw json.RawMessage) (*Node, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	child := new(Node)
	if err := json.Unmarshal(raw, child); err != nil {
		return nil, err
	}
	return child, nil
}

// scalarOrNode decodes raw as a nested node when it is an object, and as a
// plain JSON scalar otherwise.
func scalarOrNode(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '{' {
		child := new(Node)
		if err := json.Unmarshal(raw, child); err != nil {
			return nil, err
		}
		return child, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ValueNode returns the nested node held in Value, or nil when Value is a
// scalar. Entry nodes carry their element expression this way.
func (n *Node) ValueNode() *Node {
	v, _ := n.Value.(*Node)
	return v
}

// Decode reads one program document from r.
func Decode(r io.Reader) (*Node, error) {
	var n Node
	if err := json.NewDecoder(r).Decode(&n); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	if n.Kind != KindProgram {
		return nil, fmt.Errorf("expected a program document, got kind %q", n.Kind)
	}
	return &n, nil
}

// DecodeBytes reads one program document from data.
func DecodeBytes(data []byte) (*Node, error) {
	return Decode(bytes.NewReader(data))
}
