// Package evaluator executes php-parser syntax trees against an
// environment table. The tree walk runs on an explicit work stack, so the
// host call stack stays flat no matter how deep the program nests.
package evaluator

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phpwalk/phpwalk/ast"
	"github.com/phpwalk/phpwalk/object"
)

// intent marks what a pending item's evaluation must produce: a value for
// reads, a storage location for writes.
type intent int

const (
	intentRead intent = iota
	intentWrite
)

func (i intent) String() string {
	if i == intentWrite {
		return "write"
	}
	return "read"
}

// item is one entry on the evaluation stack: either a pending node
// annotated with an intent, or a finished result holding a value or a
// location.
type item struct {
	node   *ast.Node
	intent intent
	byref  bool

	value object.Object
	ref   *object.Ref
}

var (
	NULL  = &object.Null{}
	TRUE  = &object.Boolean{Value: true}
	FALSE = &object.Boolean{Value: false}
)

func nativeBoolToBooleanObject(v bool) *object.Boolean {
	if v {
		return TRUE
	}
	return FALSE
}

// Config carries the evaluator's collaborators. Zero fields get working
// defaults.
type Config struct {
	Table  *object.Table
	Out    io.Writer // echo output
	Diag   io.Writer // rendered notices and warnings
	Logger *slog.Logger
}

// Evaluator runs programs. One evaluator owns one table; evaluators are
// not safe for concurrent use, but separate evaluators over separate
// tables are fully independent.
type Evaluator struct {
	table  *object.Table
	out    io.Writer
	diag   io.Writer
	logger *slog.Logger

	stack []item
	env   int

	diags []Diagnostic
}

// New builds an evaluator from cfg.
func New(cfg Config) *Evaluator {
	if cfg.Table == nil {
		cfg.Table = object.NewTable()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Diag == nil {
		cfg.Diag = os.Stderr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	return &Evaluator{
		table:  cfg.Table,
		out:    cfg.Out,
		diag:   cfg.Diag,
		logger: cfg.Logger,
	}
}

// Table returns the environment table the evaluator runs against.
func (e *Evaluator) Table() *object.Table { return e.table }

// Diagnostics returns every notice and warning reported so far, in order.
func (e *Evaluator) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(e.diags))
	copy(out, e.diags)
	return out
}

// CurrentEnv reports the index of the environment statements run in.
func (e *Evaluator) CurrentEnv() int { return e.env }

// EnterEnv switches the current environment, for callers that evaluate
// statements inside a function or class scope.
func (e *Evaluator) EnterEnv(idx int) error {
	if _, ok := e.table.Env(idx); !ok {
		return fmt.Errorf("no environment at index %d", idx)
	}
	e.env = idx
	return nil
}

func (e *Evaluator) push(it item)              { e.stack = append(e.stack, it) }
func (e *Evaluator) pushValue(v object.Object) { e.push(item{value: v}) }
func (e *Evaluator) pushRef(r *object.Ref)     { e.push(item{ref: r}) }

func (e *Evaluator) pop() (item, error) {
	if len(e.stack) == 0 {
		return item{}, e.newError(nil, "evaluation stack underflow")
	}
	it := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return it, nil
}

// Run evaluates each top-level statement of program in source order. The
// first fatal error stops the run; diagnostics never do. Between
// statements the stack must come back empty, so nothing an earlier
// statement pushed can leak into a later one.
func (e *Evaluator) Run(program *ast.Node) error {
	if program == nil {
		return fmt.Errorf("no program")
	}
	if program.Kind != ast.KindProgram {
		return e.newError(program, "expected a program node, got kind %q", program.Kind)
	}
	for _, stmt := range program.Children {
		if stmt == nil {
			continue
		}
		e.push(item{node: stmt, intent: intentRead})
		if err := e.evaluate(); err != nil {
			e.stack = e.stack[:0]
			return err
		}
		if _, err := e.pop(); err != nil {
			return err
		}
		if len(e.stack) != 0 {
			left := len(e.stack)
			e.stack = e.stack[:0]
			return e.newError(stmt, "evaluation stack not empty after statement: %d items left", left)
		}
	}
	return nil
}

// evaluate pops exactly one pending item and, by the time it returns, has
// pushed exactly one result. Literals resolve in place; compound kinds are
// re-pushed and delegated, so every sub-evaluator finds its own item on
// top of the stack.
func (e *Evaluator) evaluate() error {
	it, err := e.pop()
	if err != nil {
		return err
	}
	if it.node == nil {
		return e.newError(nil, "evaluate called on a finished result")
	}
	n := it.node
	e.logger.Debug("evaluate", "kind", n.Kind, "intent", it.intent.String(), "byref", it.byref)
	switch n.Kind {
	case ast.KindExpressionStatement:
		return e.evalExpressionStatement(n)
	case ast.KindNumber, ast.KindString, ast.KindBoolean, ast.KindNullKeyword:
		return e.evalLiteral(n)
	case ast.KindVariable:
		e.push(it)
		return e.evalVariable()
	case ast.KindAssign:
		e.push(it)
		return e.evalAssign()
	case ast.KindAssignRef:
		e.push(it)
		return e.evalAssignRef()
	case ast.KindArray:
		e.push(it)
		return e.evalArray()
	case ast.KindOffsetLookup:
		e.push(it)
		return e.evalOffsetLookup()
	case ast.KindGlobal:
		e.push(it)
		return e.evalGlobal()
	case ast.KindEcho:
		e.push(it)
		return e.evalEcho()
	case ast.KindBin:
		e.push(it)
		return e.evalBin()
	case ast.KindUnary:
		e.push(it)
		return e.evalUnary()
	default:
		return e.newError(n, "unknown node kind %q", n.Kind)
	}
}

// evalExpressionStatement evaluates the wrapped expression for its
// effects. A bare literal at statement level has none, so it is skipped
// without being evaluated at all.
func (e *Evaluator) evalExpressionStatement(n *ast.Node) error {
	expr := n.Expression
	if expr == nil {
		e.pushValue(NULL)
		return nil
	}
	switch expr.Kind {
	case ast.KindArray, ast.KindNumber, ast.KindString, ast.KindBoolean, ast.KindNullKeyword:
		e.pushValue(NULL)
		return nil
	}
	e.push(item{node: expr, intent: intentRead})
	return e.evaluate()
}

// deref unwraps reference values down to the referenced slot's value.
func (e *Evaluator) deref(v object.Object) object.Object {
	for {
		r, ok := v.(*object.Reference)
		if !ok {
			return v
		}
		inner, ok := e.table.SlotValue(r.Slot)
		if !ok {
			return NULL
		}
		v = inner
	}
}

// load reads the current value at ref's container (slot or array element),
// dereferencing references. It reports nil when the element does not exist
// yet, which is distinct from holding null.
func (e *Evaluator) load(ref *object.Ref) object.Object {
	if ref.Elem != nil {
		if ref.Append {
			return nil
		}
		if v, ok := ref.Elem.Get(ref.Key); ok {
			return e.deref(v)
		}
		return nil
	}
	if v, ok := e.table.SlotValue(ref.Slot); ok {
		return e.deref(v)
	}
	return nil
}

// storeContainer writes v into ref's container without copying. Elements
// that currently hold a reference are written through it, so every alias
// of the element observes the new value.
func (e *Evaluator) storeContainer(ref *object.Ref, v object.Object) error {
	if ref.Elem != nil {
		if ref.Append {
			ref.Elem.Append(v)
			return nil
		}
		if cur, ok := ref.Elem.Get(ref.Key); ok {
			if r, isRef := cur.(*object.Reference); isRef {
				if !e.table.SetSlot(r.Slot, v) {
					return e.newError(nil, "invalid storage slot %d", r.Slot)
				}
				return nil
			}
		}
		ref.Elem.Set(ref.Key, v)
		return nil
	}
	if !e.table.SetSlot(ref.Slot, v) {
		return e.newError(nil, "invalid storage slot %d", ref.Slot)
	}
	return nil
}

// store performs an assignment through ref and returns the value the
// assignment expression yields. Array payloads are copied in, value
// semantics.
func (e *Evaluator) store(n *ast.Node, ref *object.Ref, v object.Object) (object.Object, error) {
	if ref.CharAt >= 0 {
		return e.storeChar(n, ref, v)
	}
	cp := e.table.CopyValue(e.deref(v))
	if err := e.storeContainer(ref, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// storeChar replaces one byte of the string held at ref's container,
// padding with spaces when the offset lies past the end. The assignment
// yields the byte written.
func (e *Evaluator) storeChar(n *ast.Node, ref *object.Ref, v object.Object) (object.Object, error) {
	cur := e.load(ref)
	s, ok := cur.(*object.String)
	if !ok {
		return nil, e.newError(n, "string offset write against a non-string container")
	}
	if _, isArr := e.deref(v).(*object.Array); isArr {
		e.warning(n, "Cannot assign an array to a string offset")
		return NULL, nil
	}
	repl, err := e.stringify(n, e.deref(v))
	if err != nil {
		return nil, err
	}
	if repl == "" {
		e.warning(n, "Cannot assign an empty string to a string offset")
		return NULL, nil
	}
	b := []byte(s.Value)
	for int64(len(b)) <= int64(ref.CharAt) {
		b = append(b, ' ')
	}
	b[ref.CharAt] = repl[0]
	if err := e.storeContainer(ref, &object.String{Value: string(b)}); err != nil {
		return nil, err
	}
	return &object.String{Value: string(repl[0])}, nil
}
