package object

// Snapshot is the inspectable terminal state of a run: every environment
// with its bindings rendered, plus the arena sizes. The zero-indexed entry
// is always the global environment.
type Snapshot struct {
	Envs  []EnvSnapshot `json:"envs"`
	Slots int           `json:"slots"`
	Heap  int           `json:"heap"`
}

// EnvSnapshot is one environment's view.
type EnvSnapshot struct {
	Index     int                        `json:"index"`
	Name      string                     `json:"name"`
	Kind      EnvKind                    `json:"kind"`
	Enclosing int                        `json:"enclosing"`
	Bindings  map[string]BindingSnapshot `json:"bindings"`
}

// BindingSnapshot is one name's binding. Two names sharing a slot id are
// aliases of the same storage.
type BindingSnapshot struct {
	Slot  int    `json:"slot"`
	Value string `json:"value"`
}

// Snapshot renders the table's current state.
func (t *Table) Snapshot() *Snapshot {
	snap := &Snapshot{Slots: len(t.vstore), Heap: len(t.hstore)}
	for _, env := range t.envs {
		es := EnvSnapshot{
			Index:     env.Index,
			Name:      env.Name,
			Kind:      env.Kind,
			Enclosing: env.Enclosing,
			Bindings:  map[string]BindingSnapshot{},
		}
		for _, name := range env.Bindings.Names() {
			slot, _ := env.Bindings.Lookup(name)
			rendered := "<unset>"
			if v, ok := t.SlotValue(slot); ok {
				rendered = v.Inspect()
			}
			es.Bindings[name] = BindingSnapshot{Slot: slot, Value: rendered}
		}
		snap.Envs = append(snap.Envs, es)
	}
	return snap
}
