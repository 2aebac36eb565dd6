// Package object defines the runtime value model and the layered storage
// that backs it: per-environment symbol tables over table-owned slot and
// heap arenas.
package object

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ObjectType is a string representation of a value's runtime type.
type ObjectType string

const (
	BOOLEAN_OBJ   ObjectType = "BOOLEAN"
	NUMBER_OBJ    ObjectType = "NUMBER"
	STRING_OBJ    ObjectType = "STRING"
	ARRAY_OBJ     ObjectType = "ARRAY"
	OBJECT_OBJ    ObjectType = "OBJECT"
	NULL_OBJ      ObjectType = "NULL"
	REFERENCE_OBJ ObjectType = "REFERENCE"
)

// Object is the interface implemented by every runtime value.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// --- Boolean Object ---

// Boolean wraps a bool.
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	return strconv.FormatBool(b.Value)
}

// --- Number Object ---

// Number is the single numeric type. Every literal spelling of the same
// magnitude (decimal, hex, octal, binary, scientific) produces the same
// Number, so they all compare equal.
type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return FormatNumber(n.Value) }

// FormatNumber renders a numeric value without a decimal part when it is
// integral, the way the scripting language prints numbers.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'G', 14, 64)
}

// --- String Object ---

// String is an immutable byte string. Subscripts address single bytes.
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// --- Null Object ---

// Null is the absence of a value.
type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

// --- Reference Object ---

// Reference is a slot handle stored inside an array entry. Reads
// dereference it transparently and writes go through it, which is what
// makes array elements aliasable.
type Reference struct {
	Slot int
}

func (r *Reference) Type() ObjectType { return REFERENCE_OBJ }
func (r *Reference) Inspect() string  { return fmt.Sprintf("&slot(%d)", r.Slot) }

// --- Array Object ---

// Key identifies one array entry. After normalization a key is either an
// integer or a string.
type Key struct {
	Str   string
	Int   int64
	IsInt bool
}

// IntKey builds an integer key.
func IntKey(i int64) Key { return Key{Int: i, IsInt: true} }

// StrKey builds a string key.
func StrKey(s string) Key { return Key{Str: s} }

func (k Key) String() string {
	if k.IsInt {
		return strconv.FormatInt(k.Int, 10)
	}
	return k.Str
}

func (k Key) inspect() string {
	if k.IsInt {
		return strconv.FormatInt(k.Int, 10)
	}
	return "'" + k.Str + "'"
}

// Array is the ordered dictionary of the language: entries keep insertion
// order and an auto-append cursor tracks the next free integer key.
type Array struct {
	// ID is the payload's index in its table's heap store.
	ID int

	keys    []Key
	entries map[Key]Object
	nextIdx int64
}

// NewArray builds an empty, unregistered array. Prefer Table.NewArray so
// the payload lands in the heap store.
func NewArray() *Array {
	return &Array{entries: map[Key]Object{}}
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }

func (a *Array) Inspect() string {
	var b strings.Builder
	b.WriteString("array(")
	for i, k := range a.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.inspect())
		b.WriteString(" => ")
		b.WriteString(inspectElement(a.entries[k]))
	}
	b.WriteString(")")
	return b.String()
}

func inspectElement(v Object) string {
	if s, ok := v.(*String); ok {
		return "'" + s.Value + "'"
	}
	return v.Inspect()
}

// Get returns the entry for k.
func (a *Array) Get(k Key) (Object, bool) {
	v, ok := a.entries[k]
	return v, ok
}

// Set inserts or replaces the entry for k. A non-negative integer key at or
// past the auto-append cursor advances the cursor to key+1; negative and
// string keys never move it.
func (a *Array) Set(k Key, v Object) {
	if _, exists := a.entries[k]; !exists {
		a.keys = append(a.keys, k)
	}
	a.entries[k] = v
	if k.IsInt && k.Int >= 0 && k.Int >= a.nextIdx {
		a.nextIdx = k.Int + 1
	}
}

// Append inserts v at the auto-append cursor and returns the key it used.
func (a *Array) Append(v Object) Key {
	k := IntKey(a.nextIdx)
	a.Set(k, v)
	return k
}

// Len reports the number of entries.
func (a *Array) Len() int { return len(a.keys) }

// Keys returns the keys in insertion order.
func (a *Array) Keys() []Key {
	out := make([]Key, len(a.keys))
	copy(out, a.keys)
	return out
}

// NextIndex exposes the auto-append cursor.
func (a *Array) NextIndex() int64 { return a.nextIdx }

// --- Object Stub ---

// ObjectValue is the class-instance representation. The runtime can store
// and render one, but the evaluator rejects every dereference of it.
type ObjectValue struct {
	// ID is the payload's index in its table's heap store.
	ID int

	Class string
	Props map[string]Object
}

func (o *ObjectValue) Type() ObjectType { return OBJECT_OBJ }

func (o *ObjectValue) Inspect() string {
	names := make([]string, 0, len(o.Props))
	for name := range o.Props {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	fmt.Fprintf(&b, "object(%s)", o.Class)
	b.WriteString("{")
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(inspectElement(o.Props[name]))
	}
	b.WriteString("}")
	return b.String()
}

// --- Locations ---

// Ref is a storage location produced by write-mode evaluation: a slot in
// an environment, optionally narrowed to one array element or to one
// character of a string.
type Ref struct {
	Env  int
	Slot int

	// Elem points at the array payload containing the addressed element.
	// When nil the location is the slot itself.
	Elem   *Array
	Key    Key
	Append bool

	// CharAt is a byte offset into the string held at the location, or -1.
	CharAt int
}

// SlotRef addresses a whole slot.
func SlotRef(env, slot int) *Ref {
	return &Ref{Env: env, Slot: slot, CharAt: -1}
}

// ElemRef addresses one keyed element of an array payload reached through
// the given slot.
func ElemRef(env, slot int, arr *Array, key Key) *Ref {
	return &Ref{Env: env, Slot: slot, Elem: arr, Key: key, CharAt: -1}
}

// AppendRef addresses the auto-append position of an array payload.
func AppendRef(env, slot int, arr *Array) *Ref {
	return &Ref{Env: env, Slot: slot, Elem: arr, Append: true, CharAt: -1}
}
