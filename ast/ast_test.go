package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeBytes(t *testing.T) {
	// Trimmed php-parser output for: $a[] = [1, "k" => $b];
	doc := `{
  "kind": "program",
  "children": [
    {
      "kind": "expressionstatement",
      "expression": {
        "kind": "assign",
        "operator": "=",
        "left": {
          "kind": "offsetlookup",
          "what": {"kind": "variable", "name": "a", "curly": false},
          "offset": false
        },
        "right": {
          "kind": "array",
          "shortForm": true,
          "items": [
            {"kind": "entry", "key": null, "value": {"kind": "number", "value": "1"}},
            {
              "kind": "entry",
              "key": {"kind": "string", "value": "k", "raw": "\"k\""},
              "value": {"kind": "variable", "name": "b", "curly": false}
            }
          ]
        }
      }
    }
  ],
  "errors": []
}`
	prog, err := DecodeBytes([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, KindProgram, prog.Kind)
	require.Len(t, prog.Children, 1)

	assign := prog.Children[0].Expression
	require.NotNil(t, assign)
	require.Equal(t, KindAssign, assign.Kind)
	require.Equal(t, "=", assign.Operator)

	// "offset": false must decode to an absent subscript.
	require.Equal(t, KindOffsetLookup, assign.Left.Kind)
	require.Nil(t, assign.Left.Offset)
	require.Equal(t, "a", assign.Left.What.Name)

	arr := assign.Right
	require.Equal(t, KindArray, arr.Kind)
	require.True(t, arr.ShortForm)
	require.Len(t, arr.Items, 2)

	first := arr.Items[0]
	require.Equal(t, KindEntry, first.Kind)
	require.Nil(t, first.Key)
	require.Equal(t, "1", first.ValueNode().Value)

	second := arr.Items[1]
	require.Equal(t, "k", second.Key.Value)
	require.Equal(t, "b", second.ValueNode().Name)
}

func TestDecodeSubscript(t *testing.T) {
	doc := `{
  "kind": "program",
  "children": [
    {
      "kind": "expressionstatement",
      "loc": {"source": null, "start": {"line": 3, "column": 0, "offset": 20}, "end": {"line": 3, "column": 12, "offset": 32}},
      "expression": {
        "kind": "offsetlookup",
        "what": {"kind": "variable", "name": "a", "curly": false},
        "offset": {"kind": "unary", "type": "-", "what": {"kind": "number", "value": "1"}}
      }
    }
  ]
}`
	prog, err := DecodeBytes([]byte(doc))
	require.NoError(t, err)

	stmt := prog.Children[0]
	require.NotNil(t, stmt.Loc)
	require.Equal(t, 3, stmt.Loc.Start.Line)

	lookup := stmt.Expression
	require.NotNil(t, lookup.Offset)
	require.Equal(t, KindUnary, lookup.Offset.Kind)
	require.Equal(t, "-", lookup.Offset.Type)
}

func TestDecodeDynamicName(t *testing.T) {
	doc := `{
  "kind": "program",
  "children": [
    {
      "kind": "expressionstatement",
      "expression": {
        "kind": "variable",
        "name": {"kind": "variable", "name": "x", "curly": false},
        "curly": false
      }
    }
  ]
}`
	prog, err := DecodeBytes([]byte(doc))
	require.NoError(t, err)

	v := prog.Children[0].Expression
	inner, ok := v.Name.(*Node)
	require.True(t, ok, "nested name should decode to a node, got %T", v.Name)
	require.Equal(t, "x", inner.Name)
}

func TestDecodeByRefSpelling(t *testing.T) {
	doc := `{
  "kind": "program",
  "children": [
    {
      "kind": "expressionstatement",
      "expression": {
        "kind": "array",
        "shortForm": true,
        "items": [
          {"kind": "entry", "key": null, "byRef": true, "value": {"kind": "variable", "name": "x", "curly": false}}
        ]
      }
    }
  ]
}`
	prog, err := DecodeBytes([]byte(doc))
	require.NoError(t, err)
	entry := prog.Children[0].Expression.Items[0]
	require.True(t, entry.Byref)
}

func TestDecodeRejectsNonProgram(t *testing.T) {
	_, err := DecodeBytes([]byte(`{"kind": "variable", "name": "a"}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "program")
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeBytes([]byte(`{"kind": "program",`))
	require.Error(t, err)
}

func TestBuilderShapesMatchWireShapes(t *testing.T) {
	built := Program(
		ExprStmt(Assign(Append(Variable("a")), Arr(Item(Number("1"))))),
	)

	assign := built.Children[0].Expression
	require.Equal(t, KindAssign, assign.Kind)
	require.Nil(t, assign.Left.Offset)
	require.Equal(t, "a", assign.Left.What.Name)
	require.Equal(t, "1", assign.Right.Items[0].ValueNode().Value)
}
