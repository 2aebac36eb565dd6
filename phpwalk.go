// Package phpwalk evaluates php-parser JSON syntax trees. It is the
// entry point for embedding the runtime: build an Interp, feed it a
// program, then inspect the environment table, the diagnostics and the
// echo output it produced.
package phpwalk

import (
	"fmt"
	"os"

	"github.com/phpwalk/phpwalk/ast"
	"github.com/phpwalk/phpwalk/evaluator"
	"github.com/phpwalk/phpwalk/object"
)

// Interp owns one environment table and one evaluator. Interps are
// single-threaded; run independent Interps for parallel work.
type Interp struct {
	config Config
	table  *object.Table
	eval   *evaluator.Evaluator
}

// New builds an interpreter. Options override the defaults of stdout,
// stderr and an error-level JSON logger.
func New(options ...Option) (*Interp, error) {
	i := &Interp{config: defaultConfig(), table: object.NewTable()}
	for _, opt := range options {
		if err := opt(&i.config); err != nil {
			return nil, err
		}
	}

	g := i.table.Global()
	for _, name := range sortedNames(i.config.Globals) {
		slot := i.table.AllocSlot(i.config.Globals[name])
		g.Bindings.Bind(name, slot)
	}

	i.eval = evaluator.New(evaluator.Config{
		Table:  i.table,
		Out:    i.config.Stdout,
		Diag:   i.config.Stderr,
		Logger: i.config.Logger,
	})
	return i, nil
}

// Run evaluates a decoded program document.
func (i *Interp) Run(program *ast.Node) error {
	if err := i.eval.Run(program); err != nil {
		return fmt.Errorf("evaluating program: %w", err)
	}
	return nil
}

// RunJSON decodes a php-parser JSON document and evaluates it.
func (i *Interp) RunJSON(data []byte) error {
	program, err := ast.DecodeBytes(data)
	if err != nil {
		return err
	}
	return i.Run(program)
}

// RunFile loads a php-parser JSON document from path and evaluates it.
func (i *Interp) RunFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := i.RunJSON(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Table exposes the environment table for inspection.
func (i *Interp) Table() *object.Table { return i.table }

// Evaluator exposes the evaluator, mainly so callers can create and enter
// non-global environments.
func (i *Interp) Evaluator() *evaluator.Evaluator { return i.eval }

// Diagnostics returns every notice and warning reported so far.
func (i *Interp) Diagnostics() []evaluator.Diagnostic {
	return i.eval.Diagnostics()
}
