package evaluator

import (
	"math"
	"regexp"
	"strconv"

	"github.com/phpwalk/phpwalk/ast"
	"github.com/phpwalk/phpwalk/object"
)

// evalOffsetLookup evaluates a subscript access. The subscript expression
// is always evaluated before the base expression; read intent produces the
// element value and write intent produces a location for the assignment
// evaluators.
func (e *Evaluator) evalOffsetLookup() error {
	it, err := e.pop()
	if err != nil {
		return err
	}
	if it.intent == intentWrite {
		return e.evalOffsetWrite(it.node, it.byref)
	}
	return e.evalOffsetRead(it.node, it.byref)
}

func (e *Evaluator) evalOffsetRead(n *ast.Node, byref bool) error {
	if n.Offset == nil {
		return e.newError(n, "Cannot use [] for reading")
	}
	key, err := e.evalKey(n.Offset)
	if err != nil {
		return err
	}

	e.push(item{node: n.What, intent: intentRead, byref: byref})
	if err := e.evaluate(); err != nil {
		return err
	}
	bit, err := e.pop()
	if err != nil {
		return err
	}
	base := e.deref(bit.value)
	if base == nil {
		base = NULL
	}

	switch base := base.(type) {
	case *object.Null:
		e.pushValue(NULL)
	case *object.Boolean, *object.Number:
		// A scalar has no subscript to read.
		e.pushValue(NULL)
	case *object.String:
		return e.readStringOffset(n, base, key, byref)
	case *object.Array:
		if v, ok := base.Get(key); ok {
			e.pushValue(e.deref(v))
			return nil
		}
		if key.IsInt {
			e.notice(n, "Undefined offset: %d", key.Int)
		} else {
			e.notice(n, "Undefined index: %s", key.Str)
		}
		e.pushValue(NULL)
	case *object.ObjectValue:
		return e.newError(n, "Cannot use object of type %s as array", base.Class)
	default:
		return e.newError(n, "cannot read an offset of %s", base.Type())
	}
	return nil
}

func (e *Evaluator) evalOffsetWrite(n *ast.Node, byref bool) error {
	var key object.Key
	hasKey := n.Offset != nil
	if hasKey {
		k, err := e.evalKey(n.Offset)
		if err != nil {
			return err
		}
		key = k
	}

	e.push(item{node: n.What, intent: intentWrite, byref: byref})
	if err := e.evaluate(); err != nil {
		return err
	}
	bit, err := e.pop()
	if err != nil {
		return err
	}
	if bit.ref == nil {
		// The base produced no usable location; propagate the skip.
		e.pushValue(NULL)
		return nil
	}
	ref := bit.ref
	if ref.CharAt >= 0 {
		return e.newError(n, "Cannot use string offset as an array")
	}

	base := e.load(ref)
	if base == nil {
		base = NULL
	}

	switch base := base.(type) {
	case *object.Null:
		// Auto-vivify: plant a fresh array at the base location right now,
		// then hand back the element location inside it.
		arr := e.table.NewArray()
		if err := e.storeContainer(ref, arr); err != nil {
			return err
		}
		e.logger.Debug("auto-vivified array", "heap", arr.ID, "env", ref.Env, "slot", ref.Slot)
		e.pushElemRef(ref, arr, key, hasKey)
	case *object.Boolean, *object.Number:
		e.warning(n, "Cannot use a scalar value as an array")
		e.pushValue(NULL)
	case *object.String:
		return e.writeStringOffset(n, ref, base, key, hasKey, byref)
	case *object.Array:
		e.pushElemRef(ref, base, key, hasKey)
	case *object.ObjectValue:
		return e.newError(n, "Cannot use object of type %s as array", base.Class)
	default:
		return e.newError(n, "cannot write an offset of %s", base.Type())
	}
	return nil
}

func (e *Evaluator) pushElemRef(base *object.Ref, arr *object.Array, key object.Key, hasKey bool) {
	if hasKey {
		e.pushRef(object.ElemRef(base.Env, base.Slot, arr, key))
		return
	}
	e.pushRef(object.AppendRef(base.Env, base.Slot, arr))
}

// evalKey evaluates a subscript expression and runs it through the key
// normalization ladder.
func (e *Evaluator) evalKey(offset *ast.Node) (object.Key, error) {
	e.push(item{node: offset, intent: intentRead})
	if err := e.evaluate(); err != nil {
		return object.Key{}, err
	}
	it, err := e.pop()
	if err != nil {
		return object.Key{}, err
	}
	return e.normalizeKey(offset, e.deref(it.value)), nil
}

// normalizeKey applies the subscript coercion ladder. It never fails:
// booleans become 0 or 1, numbers truncate toward zero, strings spelling a
// canonical decimal integer become that integer, and every other type
// degrades to the empty string key with a warning.
func (e *Evaluator) normalizeKey(n *ast.Node, v object.Object) object.Key {
	switch v := v.(type) {
	case *object.Boolean:
		if v.Value {
			return object.IntKey(1)
		}
		return object.IntKey(0)
	case *object.Number:
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return object.IntKey(0)
		}
		return object.IntKey(int64(v.Value))
	case *object.String:
		if i, ok := canonicalIntString(v.Value); ok {
			return object.IntKey(i)
		}
		return object.StrKey(v.Value)
	default:
		e.warning(n, "Illegal offset type")
		return object.StrKey("")
	}
}

// canonicalInt matches "0", "-0" and decimal integers without leading
// zeros. Spellings outside it ("08", "0x1A", "1.0", " 1") stay string
// keys.
var canonicalInt = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)

func canonicalIntString(s string) (int64, bool) {
	if !canonicalInt.MatchString(s) {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Out of range for the integer key space; keep it textual.
		return 0, false
	}
	return i, true
}

func (e *Evaluator) readStringOffset(n *ast.Node, s *object.String, key object.Key, byref bool) error {
	if byref {
		return e.newError(n, "Cannot create references to/from string offsets")
	}
	if !key.IsInt {
		e.warning(n, "Illegal string offset '%s'", key.Str)
		e.pushValue(&object.String{Value: ""})
		return nil
	}
	idx := key.Int
	if idx < 0 {
		idx += int64(len(s.Value))
	}
	if idx < 0 || idx >= int64(len(s.Value)) {
		e.notice(n, "Uninitialized string offset: %d", key.Int)
		e.pushValue(&object.String{Value: ""})
		return nil
	}
	e.pushValue(&object.String{Value: string(s.Value[idx])})
	return nil
}

func (e *Evaluator) writeStringOffset(n *ast.Node, ref *object.Ref, s *object.String, key object.Key, hasKey, byref bool) error {
	if byref {
		return e.newError(n, "Cannot create references to/from string offsets")
	}
	if !hasKey {
		return e.newError(n, "[] operator not supported for strings")
	}
	if !key.IsInt {
		e.warning(n, "Illegal string offset '%s'", key.Str)
		e.pushValue(NULL)
		return nil
	}
	at := key.Int
	if at < 0 {
		at += int64(len(s.Value))
		if at < 0 {
			e.warning(n, "Illegal string offset: %d", key.Int)
			e.pushValue(NULL)
			return nil
		}
	}
	r := *ref
	r.CharAt = int(at)
	e.pushRef(&r)
	return nil
}
