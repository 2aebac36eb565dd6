// Package phpwalktest provides helpers for driving programs through the
// interpreter in tests: one fresh interpreter per run, with the echo
// output, the diagnostics and the final environment table captured for
// assertions.
package phpwalktest

import (
	"bytes"
	"io"

	"github.com/phpwalk/phpwalk"
	"github.com/phpwalk/phpwalk/ast"
	"github.com/phpwalk/phpwalk/evaluator"
	"github.com/phpwalk/phpwalk/object"
)

// Runner executes programs in isolated interpreters.
type Runner struct {
	// Globals is seeded into each interpreter's global environment.
	Globals map[string]object.Object
}

// Result provides access to the outcome of one program run.
type Result struct {
	Err    error
	Output string
	Diags  []evaluator.Diagnostic
	Table  *object.Table
}

// Run evaluates a program document built in code.
func (r *Runner) Run(program *ast.Node) *Result {
	return r.run(func(interp *phpwalk.Interp) error {
		return interp.Run(program)
	})
}

// RunJSON decodes and evaluates a php-parser JSON document.
func (r *Runner) RunJSON(src []byte) *Result {
	return r.run(func(interp *phpwalk.Interp) error {
		return interp.RunJSON(src)
	})
}

// RunFile loads and evaluates the php-parser JSON document at path.
func (r *Runner) RunFile(path string) *Result {
	return r.run(func(interp *phpwalk.Interp) error {
		return interp.RunFile(path)
	})
}

func (r *Runner) run(fn func(*phpwalk.Interp) error) *Result {
	var out bytes.Buffer
	interp, err := phpwalk.New(
		phpwalk.WithStdout(&out),
		phpwalk.WithStderr(io.Discard),
		phpwalk.WithGlobals(r.Globals),
	)
	if err != nil {
		return &Result{Err: err}
	}
	err = fn(interp)
	return &Result{
		Err:    err,
		Output: out.String(),
		Diags:  interp.Diagnostics(),
		Table:  interp.Table(),
	}
}

// Global retrieves a variable from the global environment.
func (res *Result) Global(name string) (object.Object, bool) {
	if res.Table == nil {
		return nil, false
	}
	slot, ok := res.Table.Global().Bindings.Lookup(name)
	if !ok {
		return nil, false
	}
	return res.Table.SlotValue(slot)
}

// DiagStrings renders the diagnostics in report order.
func (res *Result) DiagStrings() []string {
	out := make([]string, 0, len(res.Diags))
	for _, d := range res.Diags {
		out = append(out, d.String())
	}
	return out
}
