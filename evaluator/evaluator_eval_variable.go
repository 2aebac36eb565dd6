package evaluator

import (
	"github.com/phpwalk/phpwalk/object"
)

// evalVariable resolves a variable node against the current environment.
// Read intent produces the bound value, with a notice and null when the
// name is unbound. Write intent produces the slot location, declaring the
// name with a fresh null slot on first use.
func (e *Evaluator) evalVariable() error {
	it, err := e.pop()
	if err != nil {
		return err
	}
	n := it.node
	name, ok := n.Name.(string)
	if !ok {
		return e.newError(n, "dynamic variable names are not supported")
	}
	env, ok := e.table.Env(e.env)
	if !ok {
		return e.newError(n, "no current environment at index %d", e.env)
	}
	slot, bound := env.Bindings.Lookup(name)

	if it.intent == intentWrite {
		if !bound {
			slot = e.table.AllocSlot(NULL)
			env.Bindings.Bind(name, slot)
			e.logger.Debug("declared variable", "name", name, "slot", slot, "env", e.env)
		}
		e.pushRef(object.SlotRef(e.env, slot))
		return nil
	}

	if !bound {
		e.notice(n, "Undefined variable: %s", name)
		e.pushValue(NULL)
		return nil
	}
	v, ok := e.table.SlotValue(slot)
	if !ok {
		return e.newError(n, "binding %q points at missing slot %d", name, slot)
	}
	e.pushValue(e.deref(v))
	return nil
}
