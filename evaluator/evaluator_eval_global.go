package evaluator

import (
	"github.com/phpwalk/phpwalk/ast"
)

// evalGlobal binds each named variable in the current environment to its
// slot in the global environment, allocating the global slot as null on
// first use. After the statement the local name and the global name are
// two views of the same slot.
func (e *Evaluator) evalGlobal() error {
	it, err := e.pop()
	if err != nil {
		return err
	}
	n := it.node
	g := e.table.Global()
	cur, ok := e.table.Env(e.env)
	if !ok {
		return e.newError(n, "no current environment at index %d", e.env)
	}

	for _, v := range n.Items {
		if v == nil || v.Kind != ast.KindVariable {
			return e.newError(n, "global declarations take variables, got kind %q", nodeKind(v))
		}
		name, ok := v.Name.(string)
		if !ok {
			return e.newError(v, "dynamic variable names are not supported")
		}
		slot, bound := g.Bindings.Lookup(name)
		if !bound {
			slot = e.table.AllocSlot(NULL)
			g.Bindings.Bind(name, slot)
		}
		cur.Bindings.Bind(name, slot)
		e.logger.Debug("bound global", "name", name, "slot", slot, "env", e.env)
	}

	e.pushValue(NULL)
	return nil
}
