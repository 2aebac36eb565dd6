package object

import (
	"fmt"
	"sort"
)

// EnvKind classifies an environment in the table.
type EnvKind string

const (
	GlobalEnv    EnvKind = "global"
	FunctionEnv  EnvKind = "function"
	ClosureEnv   EnvKind = "closure"
	ClassEnv     EnvKind = "class"
	NamespaceEnv EnvKind = "namespace"
)

// Bindings is one environment's symbol table: variable name to slot id.
// A name resolves through exactly one slot id within its environment, but
// the same slot id may be bound to several names, which is how aliasing
// works.
type Bindings struct {
	vslot map[string]int
}

// NewBindings builds an empty symbol table.
func NewBindings() *Bindings {
	return &Bindings{vslot: map[string]int{}}
}

// Lookup resolves name to its slot id.
func (b *Bindings) Lookup(name string) (int, bool) {
	slot, ok := b.vslot[name]
	return slot, ok
}

// Bind points name at slot, replacing any previous binding. Rebinding is
// how reference assignment retargets a name.
func (b *Bindings) Bind(name string, slot int) {
	b.vslot[name] = slot
}

// Names returns the bound names in sorted order.
func (b *Bindings) Names() []string {
	names := make([]string, 0, len(b.vslot))
	for name := range b.vslot {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of bound names.
func (b *Bindings) Len() int { return len(b.vslot) }

// Members is the static member record of a class-like environment.
type Members struct {
	Props map[string]Object
}

// Environment is one entry in the table: a name scope of a given kind with
// a backlink to its lexical parent and per-kind child lists.
type Environment struct {
	Name      string
	Kind      EnvKind
	Index     int
	Enclosing int // table index of the lexical parent; -1 for the global env
	Bindings  *Bindings

	Functions  []int
	Closures   []int
	Classes    []int
	Namespaces []int

	// Statics is populated for class environments only.
	Statics *Members
}

// Table is the environment table plus the run's storage arenas. Index 0 is
// the global environment, created with the table and never removed. Slot
// ids (vstore) and heap ids (hstore) are table-wide, which is what lets a
// local name alias a global slot.
type Table struct {
	envs   []*Environment
	vstore []Object
	hstore []Object
}

// NewTable builds a table holding only the global environment.
func NewTable() *Table {
	t := &Table{}
	t.envs = append(t.envs, &Environment{
		Name:      "global",
		Kind:      GlobalEnv,
		Index:     0,
		Enclosing: -1,
		Bindings:  NewBindings(),
	})
	return t
}

// Global returns the global environment.
func (t *Table) Global() *Environment { return t.envs[0] }

// Env returns the environment at index i.
func (t *Table) Env(i int) (*Environment, bool) {
	if i < 0 || i >= len(t.envs) {
		return nil, false
	}
	return t.envs[i], true
}

// Len reports the number of environments.
func (t *Table) Len() int { return len(t.envs) }

// NewEnv appends an environment enclosed by the one at the given index and
// registers it in the parent's child list for its kind.
func (t *Table) NewEnv(name string, kind EnvKind, enclosing int) (*Environment, error) {
	parent, ok := t.Env(enclosing)
	if !ok {
		return nil, fmt.Errorf("no enclosing environment at index %d", enclosing)
	}
	env := &Environment{
		Name:      name,
		Kind:      kind,
		Index:     len(t.envs),
		Enclosing: enclosing,
		Bindings:  NewBindings(),
	}
	switch kind {
	case FunctionEnv:
		parent.Functions = append(parent.Functions, env.Index)
	case ClosureEnv:
		parent.Closures = append(parent.Closures, env.Index)
	case ClassEnv:
		parent.Classes = append(parent.Classes, env.Index)
		env.Statics = &Members{Props: map[string]Object{}}
	case NamespaceEnv:
		parent.Namespaces = append(parent.Namespaces, env.Index)
	default:
		return nil, fmt.Errorf("cannot create an environment of kind %q", kind)
	}
	t.envs = append(t.envs, env)
	return env, nil
}

// AllocSlot reserves a fresh slot holding v and returns its id.
func (t *Table) AllocSlot(v Object) int {
	if v == nil {
		v = &Null{}
	}
	t.vstore = append(t.vstore, v)
	return len(t.vstore) - 1
}

// SlotValue reads the value in slot id.
func (t *Table) SlotValue(id int) (Object, bool) {
	if id < 0 || id >= len(t.vstore) {
		return nil, false
	}
	return t.vstore[id], true
}

// SetSlot replaces the value in slot id.
func (t *Table) SetSlot(id int, v Object) bool {
	if id < 0 || id >= len(t.vstore) {
		return false
	}
	t.vstore[id] = v
	return true
}

// Slots reports the size of the slot arena.
func (t *Table) Slots() int { return len(t.vstore) }

// NewArray builds an empty array payload registered in the heap store.
func (t *Table) NewArray() *Array {
	arr := NewArray()
	arr.ID = t.registerHeap(arr)
	return arr
}

// NewObject builds an object payload registered in the heap store.
func (t *Table) NewObject(class string) *ObjectValue {
	obj := &ObjectValue{Class: class, Props: map[string]Object{}}
	obj.ID = t.registerHeap(obj)
	return obj
}

func (t *Table) registerHeap(payload Object) int {
	t.hstore = append(t.hstore, payload)
	return len(t.hstore) - 1
}

// HeapLen reports the size of the heap store.
func (t *Table) HeapLen() int { return len(t.hstore) }

// Heap returns the payload with the given heap id.
func (t *Table) Heap(id int) (Object, bool) {
	if id < 0 || id >= len(t.hstore) {
		return nil, false
	}
	return t.hstore[id], true
}

// CopyValue applies assignment semantics to v: array payloads are copied
// deeply (nested arrays included), reference entries inside them stay
// shared, and every other value is reused as is.
func (t *Table) CopyValue(v Object) Object {
	arr, ok := v.(*Array)
	if !ok {
		return v
	}
	cp := t.NewArray()
	cp.nextIdx = arr.nextIdx
	for _, k := range arr.keys {
		cp.keys = append(cp.keys, k)
		cp.entries[k] = t.CopyValue(arr.entries[k])
	}
	return cp
}
