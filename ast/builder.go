package ast

// Constructors for building programs in code. Tests and fixtures use these
// instead of a parser; the shapes match what php-parser would emit.

// Program wraps statements into a program node.
func Program(children ...*Node) *Node {
	return &Node{Kind: KindProgram, Children: children}
}

// ExprStmt wraps an expression into a statement.
func ExprStmt(expr *Node) *Node {
	return &Node{Kind: KindExpressionStatement, Expression: expr}
}

// Assign builds a plain assignment.
func Assign(left, right *Node) *Node {
	return &Node{Kind: KindAssign, Operator: "=", Left: left, Right: right}
}

// AssignRef builds a reference assignment ($a =& $b).
func AssignRef(left, right *Node) *Node {
	return &Node{Kind: KindAssignRef, Left: left, Right: right}
}

// Variable builds a named variable reference.
func Variable(name string) *Node {
	return &Node{Kind: KindVariable, Name: name}
}

// Number builds a numeric literal from its source spelling.
func Number(raw string) *Node {
	return &Node{Kind: KindNumber, Value: raw}
}

// Str builds a string literal.
func Str(value string) *Node {
	return &Node{Kind: KindString, Value: value}
}

// Bool builds a boolean literal.
func Bool(value bool) *Node {
	return &Node{Kind: KindBoolean, Value: value}
}

// Null builds a null literal.
func Null() *Node {
	return &Node{Kind: KindNullKeyword}
}

// Arr builds a short-form array literal from entry nodes.
func Arr(items ...*Node) *Node {
	return &Node{Kind: KindArray, ShortForm: true, Items: items}
}

// Entry builds a keyed array entry. Pass a nil key for a positional entry.
func Entry(key, value *Node) *Node {
	return &Node{Kind: KindEntry, Key: key, Value: value}
}

// RefEntry builds a by-reference array entry ([&$x]).
func RefEntry(key, value *Node) *Node {
	return &Node{Kind: KindEntry, Key: key, Value: value, Byref: true}
}

// Item builds a positional array entry.
func Item(value *Node) *Node {
	return Entry(nil, value)
}

// Offset builds a subscript access ($a[k]).
func Offset(what, offset *Node) *Node {
	return &Node{Kind: KindOffsetLookup, What: what, Offset: offset}
}

// Append builds an empty-subscript access ($a[]).
func Append(what *Node) *Node {
	return &Node{Kind: KindOffsetLookup, What: what}
}

// Global builds a global declaration for the named variables.
func Global(names ...string) *Node {
	items := make([]*Node, 0, len(names))
	for _, name := range names {
		items = append(items, Variable(name))
	}
	return &Node{Kind: KindGlobal, Items: items}
}

// Echo builds an echo statement.
func Echo(exprs ...*Node) *Node {
	return &Node{Kind: KindEcho, Expressions: exprs}
}

// Bin builds a binary operation.
func Bin(op string, left, right *Node) *Node {
	return &Node{Kind: KindBin, Type: op, Left: left, Right: right}
}

// Unary builds a unary operation.
func Unary(op string, what *Node) *Node {
	return &Node{Kind: KindUnary, Type: op, What: what}
}
