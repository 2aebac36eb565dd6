package evaluator

import (
	"github.com/phpwalk/phpwalk/ast"
	"github.com/phpwalk/phpwalk/object"
)

// evalAssign handles plain assignment. The right side is evaluated to a
// value first, then the left side in write mode; the node's own value is
// the value written. When the left side yields no usable location (for
// example a scalar subscripted as an array) the diagnostic has already
// been reported and the write is skipped.
func (e *Evaluator) evalAssign() error {
	it, err := e.pop()
	if err != nil {
		return err
	}
	n := it.node
	if n.Operator != "" && n.Operator != "=" {
		return e.newError(n, "unsupported assignment operator %q", n.Operator)
	}
	if n.Left == nil || n.Right == nil {
		return e.newError(n, "malformed assignment")
	}

	e.push(item{node: n.Right, intent: intentRead})
	if err := e.evaluate(); err != nil {
		return err
	}
	rhs, err := e.pop()
	if err != nil {
		return err
	}
	if rhs.value == nil {
		return e.newError(n.Right, "assignment source produced no value")
	}

	e.push(item{node: n.Left, intent: intentWrite})
	if err := e.evaluate(); err != nil {
		return err
	}
	lhs, err := e.pop()
	if err != nil {
		return err
	}
	if lhs.ref == nil {
		e.pushValue(NULL)
		return nil
	}

	written, err := e.store(n, lhs.ref, rhs.value)
	if err != nil {
		return err
	}
	e.pushValue(written)
	return nil
}

// evalAssignRef makes the left side an alias of the right side's storage.
// The right side is evaluated in write mode with the by-reference flag
// set, so string subscripts are rejected and missing variables or elements
// come into existence as null before being aliased.
func (e *Evaluator) evalAssignRef() error {
	it, err := e.pop()
	if err != nil {
		return err
	}
	n := it.node
	if n.Left == nil || n.Right == nil {
		return e.newError(n, "malformed reference assignment")
	}

	e.push(item{node: n.Right, intent: intentWrite, byref: true})
	if err := e.evaluate(); err != nil {
		return err
	}
	src, err := e.pop()
	if err != nil {
		return err
	}
	if src.ref == nil {
		e.pushValue(NULL)
		return nil
	}
	slot, err := e.refSlot(n.Right, src.ref)
	if err != nil {
		return err
	}

	switch n.Left.Kind {
	case ast.KindVariable:
		name, ok := n.Left.Name.(string)
		if !ok {
			return e.newError(n.Left, "dynamic variable names are not supported")
		}
		env, ok := e.table.Env(e.env)
		if !ok {
			return e.newError(n.Left, "no current environment at index %d", e.env)
		}
		env.Bindings.Bind(name, slot)
	case ast.KindOffsetLookup:
		e.push(item{node: n.Left, intent: intentWrite, byref: true})
		if err := e.evaluate(); err != nil {
			return err
		}
		dst, err := e.pop()
		if err != nil {
			return err
		}
		if dst.ref == nil {
			e.pushValue(NULL)
			return nil
		}
		if dst.ref.Elem == nil {
			return e.newError(n.Left, "cannot bind a reference into this location")
		}
		// Rebind the element itself, never the slot behind an existing
		// reference entry.
		refv := &object.Reference{Slot: slot}
		if dst.ref.Append {
			dst.ref.Elem.Append(refv)
		} else {
			dst.ref.Elem.Set(dst.ref.Key, refv)
		}
	default:
		return e.newError(n.Left, "cannot assign by reference to kind %q", n.Left.Kind)
	}

	v, ok := e.table.SlotValue(slot)
	if !ok {
		return e.newError(n, "reference target slot %d is missing", slot)
	}
	e.pushValue(e.deref(v))
	return nil
}

// refSlot resolves a write location to a slot id that can be aliased.
// Whole-slot locations alias directly. Array elements are promoted: the
// element's value moves into a fresh slot and a reference to that slot is
// left behind in the array, creating the element as null when absent.
func (e *Evaluator) refSlot(n *ast.Node, ref *object.Ref) (int, error) {
	if ref.CharAt >= 0 {
		return 0, e.newError(n, "Cannot create references to/from string offsets")
	}
	if ref.Elem == nil {
		return ref.Slot, nil
	}
	if ref.Append {
		slot := e.table.AllocSlot(NULL)
		ref.Elem.Append(&object.Reference{Slot: slot})
		return slot, nil
	}
	if cur, ok := ref.Elem.Get(ref.Key); ok {
		if r, isRef := cur.(*object.Reference); isRef {
			return r.Slot, nil
		}
		slot := e.table.AllocSlot(cur)
		ref.Elem.Set(ref.Key, &object.Reference{Slot: slot})
		return slot, nil
	}
	slot := e.table.AllocSlot(NULL)
	ref.Elem.Set(ref.Key, &object.Reference{Slot: slot})
	return slot, nil
}
