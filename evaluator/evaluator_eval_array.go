package evaluator

import (
	"github.com/phpwalk/phpwalk/ast"
	"github.com/phpwalk/phpwalk/object"
)

// evalArray builds a fresh array payload from an array literal. Entries
// evaluate in source order, key before value; keyed entries run through
// the normalization ladder, positional entries use the auto-append cursor,
// and by-reference entries store a reference to the source storage.
func (e *Evaluator) evalArray() error {
	it, err := e.pop()
	if err != nil {
		return err
	}
	n := it.node
	arr := e.table.NewArray()

	for _, entry := range n.Items {
		if entry == nil {
			continue
		}
		keyNode := (*ast.Node)(nil)
		valNode := entry
		byref := false
		if entry.Kind == ast.KindEntry {
			keyNode = entry.Key
			valNode = entry.ValueNode()
			byref = entry.Byref
		}
		if valNode == nil {
			return e.newError(entry, "array entry without a value")
		}

		var key object.Key
		hasKey := keyNode != nil
		if hasKey {
			k, err := e.evalKey(keyNode)
			if err != nil {
				return err
			}
			key = k
		}

		if byref {
			if err := e.appendRefEntry(arr, key, hasKey, valNode); err != nil {
				return err
			}
			continue
		}

		e.push(item{node: valNode, intent: intentRead})
		if err := e.evaluate(); err != nil {
			return err
		}
		vit, err := e.pop()
		if err != nil {
			return err
		}
		v := e.table.CopyValue(e.deref(vit.value))
		if hasKey {
			arr.Set(key, v)
		} else {
			arr.Append(v)
		}
	}

	e.pushValue(arr)
	return nil
}

// appendRefEntry handles [&$x] style entries: the source is resolved to a
// slot and the array stores a reference to it.
func (e *Evaluator) appendRefEntry(arr *object.Array, key object.Key, hasKey bool, valNode *ast.Node) error {
	switch valNode.Kind {
	case ast.KindVariable, ast.KindOffsetLookup:
	default:
		return e.newError(valNode, "cannot take a reference to kind %q", valNode.Kind)
	}
	e.push(item{node: valNode, intent: intentWrite, byref: true})
	if err := e.evaluate(); err != nil {
		return err
	}
	rit, err := e.pop()
	if err != nil {
		return err
	}
	if rit.ref == nil {
		if hasKey {
			arr.Set(key, NULL)
		} else {
			arr.Append(NULL)
		}
		return nil
	}
	slot, err := e.refSlot(valNode, rit.ref)
	if err != nil {
		return err
	}
	refv := &object.Reference{Slot: slot}
	if hasKey {
		arr.Set(key, refv)
	} else {
		arr.Append(refv)
	}
	return nil
}
