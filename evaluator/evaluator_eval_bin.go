package evaluator

import (
	"strconv"
	"strings"

	"github.com/phpwalk/phpwalk/ast"
	"github.com/phpwalk/phpwalk/object"
)

// evalBin evaluates binary operator nodes. The logical operators
// short-circuit: the right operand is not evaluated when the left already
// decides the result.
func (e *Evaluator) evalBin() error {
	it, err := e.pop()
	if err != nil {
		return err
	}
	n := it.node
	if n.Left == nil || n.Right == nil {
		return e.newError(n, "malformed binary operation %q", n.Type)
	}

	switch n.Type {
	case "&&", "and":
		l, err := e.readOperand(n.Left)
		if err != nil {
			return err
		}
		if !toBool(l) {
			e.pushValue(FALSE)
			return nil
		}
		r, err := e.readOperand(n.Right)
		if err != nil {
			return err
		}
		e.pushValue(nativeBoolToBooleanObject(toBool(r)))
		return nil
	case "||", "or":
		l, err := e.readOperand(n.Left)
		if err != nil {
			return err
		}
		if toBool(l) {
			e.pushValue(TRUE)
			return nil
		}
		r, err := e.readOperand(n.Right)
		if err != nil {
			return err
		}
		e.pushValue(nativeBoolToBooleanObject(toBool(r)))
		return nil
	}

	l, err := e.readOperand(n.Left)
	if err != nil {
		return err
	}
	r, err := e.readOperand(n.Right)
	if err != nil {
		return err
	}
	v, err := e.binaryOp(n, n.Type, l, r)
	if err != nil {
		return err
	}
	e.pushValue(v)
	return nil
}

// evalUnary evaluates the sign and logical-not operators.
func (e *Evaluator) evalUnary() error {
	it, err := e.pop()
	if err != nil {
		return err
	}
	n := it.node
	if n.What == nil {
		return e.newError(n, "malformed unary operation %q", n.Type)
	}
	v, err := e.readOperand(n.What)
	if err != nil {
		return err
	}

	switch n.Type {
	case "-":
		if isCompound(v) {
			return e.newError(n, "Unsupported operand types")
		}
		e.pushValue(&object.Number{Value: -e.numberOf(n, v)})
	case "+":
		if isCompound(v) {
			return e.newError(n, "Unsupported operand types")
		}
		e.pushValue(&object.Number{Value: e.numberOf(n, v)})
	case "!":
		e.pushValue(nativeBoolToBooleanObject(!toBool(v)))
	default:
		return e.newError(n, "unknown unary operator %q", n.Type)
	}
	return nil
}

// readOperand evaluates one expression for its value.
func (e *Evaluator) readOperand(n *ast.Node) (object.Object, error) {
	e.push(item{node: n, intent: intentRead})
	if err := e.evaluate(); err != nil {
		return nil, err
	}
	it, err := e.pop()
	if err != nil {
		return nil, err
	}
	v := e.deref(it.value)
	if v == nil {
		return nil, e.newError(n, "operand produced no value")
	}
	return v, nil
}

func (e *Evaluator) binaryOp(n *ast.Node, op string, l, r object.Object) (object.Object, error) {
	switch op {
	case ".":
		ls, err := e.stringify(n, l)
		if err != nil {
			return nil, err
		}
		rs, err := e.stringify(n, r)
		if err != nil {
			return nil, err
		}
		return &object.String{Value: ls + rs}, nil

	case "+", "-", "*", "/", "%":
		if op == "+" {
			la, lok := l.(*object.Array)
			ra, rok := r.(*object.Array)
			if lok && rok {
				return e.arrayUnion(la, ra), nil
			}
		}
		if isCompound(l) || isCompound(r) {
			return nil, e.newError(n, "Unsupported operand types")
		}
		lf := e.numberOf(n, l)
		rf := e.numberOf(n, r)
		switch op {
		case "+":
			return &object.Number{Value: lf + rf}, nil
		case "-":
			return &object.Number{Value: lf - rf}, nil
		case "*":
			return &object.Number{Value: lf * rf}, nil
		case "/":
			if rf == 0 {
				e.warning(n, "Division by zero")
				return FALSE, nil
			}
			return &object.Number{Value: lf / rf}, nil
		default: // %
			ri := int64(rf)
			if ri == 0 {
				return nil, e.newError(n, "Modulo by zero")
			}
			return &object.Number{Value: float64(int64(lf) % ri)}, nil
		}

	case "==":
		return nativeBoolToBooleanObject(e.looseEquals(l, r)), nil
	case "!=", "<>":
		return nativeBoolToBooleanObject(!e.looseEquals(l, r)), nil
	case "===":
		return nativeBoolToBooleanObject(e.strictEquals(l, r)), nil
	case "!==":
		return nativeBoolToBooleanObject(!e.strictEquals(l, r)), nil
	case "<":
		return nativeBoolToBooleanObject(e.looseCompare(l, r) < 0), nil
	case "<=":
		return nativeBoolToBooleanObject(e.looseCompare(l, r) <= 0), nil
	case ">":
		return nativeBoolToBooleanObject(e.looseCompare(l, r) > 0), nil
	case ">=":
		return nativeBoolToBooleanObject(e.looseCompare(l, r) >= 0), nil
	}
	return nil, e.newError(n, "unknown binary operator %q", op)
}

// arrayUnion implements + on two arrays: the left operand's entries win,
// the right operand contributes only keys the left does not have.
func (e *Evaluator) arrayUnion(l, r *object.Array) *object.Array {
	out := e.table.NewArray()
	for _, k := range l.Keys() {
		v, _ := l.Get(k)
		out.Set(k, e.table.CopyValue(e.deref(v)))
	}
	for _, k := range r.Keys() {
		if _, taken := out.Get(k); taken {
			continue
		}
		v, _ := r.Get(k)
		out.Set(k, e.table.CopyValue(e.deref(v)))
	}
	return out
}

// isCompound reports whether v is an array or object payload, which the
// arithmetic operators reject.
func isCompound(v object.Object) bool {
	switch v.(type) {
	case *object.Array, *object.ObjectValue:
		return true
	}
	return false
}

// toBool applies the language's truthiness rules.
func toBool(v object.Object) bool {
	switch v := v.(type) {
	case *object.Null:
		return false
	case *object.Boolean:
		return v.Value
	case *object.Number:
		return v.Value != 0
	case *object.String:
		return v.Value != "" && v.Value != "0"
	case *object.Array:
		return v.Len() > 0
	default:
		return true
	}
}

// numberOf applies numeric conversion, reporting malformed and
// non-numeric strings the way the engine does in arithmetic context.
func (e *Evaluator) numberOf(n *ast.Node, v object.Object) float64 {
	switch v := v.(type) {
	case *object.Null:
		return 0
	case *object.Boolean:
		if v.Value {
			return 1
		}
		return 0
	case *object.Number:
		return v.Value
	case *object.String:
		f, wellFormed, numeric := leadingNumber(v.Value)
		if !numeric {
			e.warning(n, "A non-numeric value encountered")
			return 0
		}
		if !wellFormed {
			e.notice(n, "A non well formed numeric value encountered")
		}
		return f
	default:
		return 0
	}
}

// numberOfQuiet is numberOf without diagnostics, for comparison context.
func numberOfQuiet(v object.Object) float64 {
	switch v := v.(type) {
	case *object.Null:
		return 0
	case *object.Boolean:
		if v.Value {
			return 1
		}
		return 0
	case *object.Number:
		return v.Value
	case *object.String:
		f, _, _ := leadingNumber(v.Value)
		return f
	default:
		return 0
	}
}

// leadingNumber parses the longest numeric prefix of s after leading
// whitespace. numeric reports whether any prefix parsed at all;
// wellFormed reports whether the prefix covered the whole string.
func leadingNumber(s string) (f float64, wellFormed, numeric bool) {
	t := strings.TrimLeft(s, " \t\n\r\v\f")
	i := 0
	if i < len(t) && (t[i] == '+' || t[i] == '-') {
		i++
	}
	digits := 0
	for i < len(t) && t[i] >= '0' && t[i] <= '9' {
		i++
		digits++
	}
	if i < len(t) && t[i] == '.' {
		i++
		for i < len(t) && t[i] >= '0' && t[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false, false
	}
	if i < len(t) && (t[i] == 'e' || t[i] == 'E') {
		save := i
		i++
		if i < len(t) && (t[i] == '+' || t[i] == '-') {
			i++
		}
		expDigits := 0
		for i < len(t) && t[i] >= '0' && t[i] <= '9' {
			i++
			expDigits++
		}
		if expDigits == 0 {
			i = save
		}
	}
	f, err := strconv.ParseFloat(t[:i], 64)
	if err != nil {
		return 0, false, false
	}
	return f, i == len(t), true
}

// isNumericString reports whether the whole string parses as a number.
func isNumericString(s string) bool {
	_, wellFormed, numeric := leadingNumber(s)
	return numeric && wellFormed
}

// looseEquals implements the == juggling rules: booleans and nulls compare
// by truthiness, numeric strings compare numerically, arrays compare by
// unordered key/value pairs, and mixed scalars fall back to numbers.
func (e *Evaluator) looseEquals(l, r object.Object) bool {
	ls, lIsStr := l.(*object.String)
	rs, rIsStr := r.(*object.String)
	if lIsStr && rIsStr {
		if isNumericString(ls.Value) && isNumericString(rs.Value) {
			return numberOfQuiet(ls) == numberOfQuiet(rs)
		}
		return ls.Value == rs.Value
	}

	if isBoolish(l) || isBoolish(r) {
		return toBool(l) == toBool(r)
	}

	la, lIsArr := l.(*object.Array)
	ra, rIsArr := r.(*object.Array)
	if lIsArr || rIsArr {
		if !lIsArr || !rIsArr {
			return false
		}
		if la.Len() != ra.Len() {
			return false
		}
		for _, k := range la.Keys() {
			lv, _ := la.Get(k)
			rv, ok := ra.Get(k)
			if !ok {
				return false
			}
			if !e.looseEquals(e.deref(lv), e.deref(rv)) {
				return false
			}
		}
		return true
	}

	lo, lIsObj := l.(*object.ObjectValue)
	ro, rIsObj := r.(*object.ObjectValue)
	if lIsObj || rIsObj {
		return lIsObj && rIsObj && lo == ro
	}

	return numberOfQuiet(l) == numberOfQuiet(r)
}

func isBoolish(v object.Object) bool {
	switch v.(type) {
	case *object.Boolean, *object.Null:
		return true
	}
	return false
}

// strictEquals implements ===: same type, same value, arrays in the same
// order, objects by identity.
func (e *Evaluator) strictEquals(l, r object.Object) bool {
	if l.Type() != r.Type() {
		return false
	}
	switch l := l.(type) {
	case *object.Null:
		return true
	case *object.Boolean:
		return l.Value == r.(*object.Boolean).Value
	case *object.Number:
		return l.Value == r.(*object.Number).Value
	case *object.String:
		return l.Value == r.(*object.String).Value
	case *object.Array:
		ra := r.(*object.Array)
		if l.Len() != ra.Len() {
			return false
		}
		lk, rk := l.Keys(), ra.Keys()
		for i := range lk {
			if lk[i] != rk[i] {
				return false
			}
			lv, _ := l.Get(lk[i])
			rv, _ := ra.Get(rk[i])
			if !e.strictEquals(e.deref(lv), e.deref(rv)) {
				return false
			}
		}
		return true
	case *object.ObjectValue:
		return l == r.(*object.ObjectValue)
	}
	return false
}

// looseCompare orders two values: -1, 0 or 1. Arrays order by entry count
// and count as greater than any non-array.
func (e *Evaluator) looseCompare(l, r object.Object) int {
	la, lIsArr := l.(*object.Array)
	ra, rIsArr := r.(*object.Array)
	switch {
	case lIsArr && rIsArr:
		return compareInts(la.Len(), ra.Len())
	case lIsArr:
		return 1
	case rIsArr:
		return -1
	}

	ls, lIsStr := l.(*object.String)
	rs, rIsStr := r.(*object.String)
	if lIsStr && rIsStr && !(isNumericString(ls.Value) && isNumericString(rs.Value)) {
		return strings.Compare(ls.Value, rs.Value)
	}

	lf, rf := numberOfQuiet(l), numberOfQuiet(r)
	switch {
	case lf < rf:
		return -1
	case lf > rf:
		return 1
	}
	return 0
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
