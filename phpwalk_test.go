package phpwalk

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/phpwalk/phpwalk/ast"
	"github.com/phpwalk/phpwalk/object"
)

func TestNewDefaults(t *testing.T) {
	interp, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if interp.config.Stdout != os.Stdout {
		t.Error("default stdout is not os.Stdout")
	}
	if interp.config.Stderr != os.Stderr {
		t.Error("default stderr is not os.Stderr")
	}
	if interp.config.Logger == nil {
		t.Error("default logger is nil")
	}
	if interp.Table() == nil {
		t.Fatal("interpreter has no table")
	}
	if got := interp.Table().Global().Name; got != "global" {
		t.Errorf("global environment name = %q, want %q", got, "global")
	}
}

func TestOptionsPlumbCollaborators(t *testing.T) {
	var out, diag bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	interp, err := New(WithStdout(&out), WithStderr(&diag), WithLogger(logger))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if interp.config.Stdout != &out || interp.config.Stderr != &diag {
		t.Error("writer options did not land in the config")
	}
	if interp.config.Logger != logger {
		t.Error("logger option did not land in the config")
	}

	// The evaluator really writes through them.
	if err := interp.Run(ast.Program(
		ast.Echo(ast.Str("out")),
		ast.ExprStmt(ast.Assign(ast.Variable("x"), ast.Variable("ghost"))),
	)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "out" {
		t.Errorf("stdout = %q, want %q", out.String(), "out")
	}
	if got, want := diag.String(), "Notice: Undefined variable: ghost\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

func TestFailingOptionAbortsNew(t *testing.T) {
	boom := func(*Config) error { return fmt.Errorf("boom") }
	if _, err := New(Option(boom)); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("New() error = %v, want the option failure", err)
	}
}

func TestWithGlobalsSeedsTable(t *testing.T) {
	interp, err := New(
		WithStdout(io.Discard), WithStderr(io.Discard),
		WithGlobals(map[string]object.Object{
			"answer": &object.Number{Value: 42},
			"nilled": nil,
		}),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	g := interp.Table().Global()
	slot, ok := g.Bindings.Lookup("answer")
	if !ok {
		t.Fatal("seeded global is not bound")
	}
	v, _ := interp.Table().SlotValue(slot)
	if n, ok := v.(*object.Number); !ok || n.Value != 42 {
		t.Errorf("answer = %+v, want number 42", v)
	}

	nslot, ok := g.Bindings.Lookup("nilled")
	if !ok {
		t.Fatal("nil-seeded global is not bound")
	}
	nv, _ := interp.Table().SlotValue(nslot)
	if _, ok := nv.(*object.Null); !ok {
		t.Errorf("nilled = %+v, want null", nv)
	}

	// Programs see the seeds.
	if err := interp.Run(ast.Program(
		ast.ExprStmt(ast.Assign(ast.Variable("next"), ast.Bin("+", ast.Variable("answer"), ast.Number("1")))),
	)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	nextSlot, _ := g.Bindings.Lookup("next")
	nextV, _ := interp.Table().SlotValue(nextSlot)
	if n, ok := nextV.(*object.Number); !ok || n.Value != 43 {
		t.Errorf("next = %+v, want number 43", nextV)
	}
}

func TestSeededGlobalsUseStableSlots(t *testing.T) {
	// Seeding iterates names in sorted order, so slot layout does not
	// depend on map iteration order.
	for i := 0; i < 10; i++ {
		interp, err := New(WithGlobals(map[string]object.Object{
			"b": &object.Number{Value: 2},
			"a": &object.Number{Value: 1},
			"c": &object.Number{Value: 3},
		}))
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		g := interp.Table().Global()
		sa, _ := g.Bindings.Lookup("a")
		sb, _ := g.Bindings.Lookup("b")
		sc, _ := g.Bindings.Lookup("c")
		if !(sa < sb && sb < sc) {
			t.Fatalf("slot order = %d, %d, %d, want ascending", sa, sb, sc)
		}
	}
}

func TestRunJSON(t *testing.T) {
	var diag bytes.Buffer
	interp, err := New(WithStdout(io.Discard), WithStderr(&diag))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	src := `{
	  "kind": "program",
	  "children": [
	    {
	      "kind": "expressionstatement",
	      "expression": {
	        "kind": "assign",
	        "operator": "=",
	        "left": {"kind": "variable", "name": "a", "byref": false, "curly": false},
	        "right": {
	          "kind": "variable", "name": "missing", "byref": false, "curly": false,
	          "loc": {"start": {"line": 3, "column": 30, "offset": 64}}
	        }
	      }
	    }
	  ]
	}`
	if err := interp.RunJSON([]byte(src)); err != nil {
		t.Fatalf("RunJSON: %v", err)
	}
	if got, want := diag.String(), "Notice: Undefined variable: missing on line 3\n"; got != want {
		t.Errorf("rendered diagnostic = %q, want %q", got, want)
	}
	if len(interp.Diagnostics()) != 1 {
		t.Errorf("Diagnostics() length = %d, want 1", len(interp.Diagnostics()))
	}
}

func TestRunJSONRejectsMalformedDocuments(t *testing.T) {
	interp, err := New(WithStdout(io.Discard), WithStderr(io.Discard))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := interp.RunJSON([]byte(`{"kind": "variable"}`)); err == nil {
		t.Error("RunJSON accepted a non-program document")
	}
	if err := interp.RunJSON([]byte(`{"kind": `)); err == nil {
		t.Error("RunJSON accepted broken JSON")
	}
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.json")
	src := `{"kind":"program","children":[{"kind":"echo","expressions":[{"kind":"string","value":"filed"}],"shortForm":false}]}`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	interp, err := New(WithStdout(&out), WithStderr(io.Discard))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := interp.RunFile(path); err != nil {
		t.Fatalf("RunFile: %v", err)
	}
	if out.String() != "filed" {
		t.Errorf("output = %q, want %q", out.String(), "filed")
	}

	err = interp.RunFile(filepath.Join(dir, "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "missing.json") {
		t.Errorf("error = %v, want it to name the missing file", err)
	}
}

func TestRunWrapsFatalErrors(t *testing.T) {
	interp, err := New(WithStdout(io.Discard), WithStderr(io.Discard))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	err = interp.Run(ast.Program(
		ast.ExprStmt(ast.Assign(ast.Variable("x"), ast.Append(ast.Variable("a")))),
	))
	if err == nil {
		t.Fatal("Run succeeded, want a fatal error")
	}
	if !strings.Contains(err.Error(), "evaluating program:") {
		t.Errorf("error = %q, want the run context in it", err)
	}
	if !strings.Contains(err.Error(), "Cannot use [] for reading") {
		t.Errorf("error = %q, want the cause in it", err)
	}
}

func TestSnapshotShowsAliases(t *testing.T) {
	interp, err := New(WithStdout(io.Discard), WithStderr(io.Discard))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := interp.Run(ast.Program(
		ast.ExprStmt(ast.Assign(ast.Variable("a"), ast.Number("1"))),
		ast.ExprStmt(ast.AssignRef(ast.Variable("b"), ast.Variable("a"))),
		ast.ExprStmt(ast.Assign(ast.Variable("b"), ast.Number("2"))),
	)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap := interp.Table().Snapshot()
	if len(snap.Envs) != 1 {
		t.Fatalf("snapshot has %d environments, want 1", len(snap.Envs))
	}
	ba := snap.Envs[0].Bindings["a"]
	bb := snap.Envs[0].Bindings["b"]
	if ba.Slot != bb.Slot {
		t.Errorf("aliases diverge in the snapshot: %d vs %d", ba.Slot, bb.Slot)
	}
	if ba.Value != "2" {
		t.Errorf("snapshot value = %q, want %q", ba.Value, "2")
	}
}

func TestParallelInterpreters(t *testing.T) {
	// Separate interpreters share nothing; hammer a batch of them
	// concurrently and check every run stayed isolated.
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			var out bytes.Buffer
			interp, err := New(WithStdout(&out), WithStderr(io.Discard))
			if err != nil {
				return err
			}
			raw := fmt.Sprintf("%d", i)
			if err := interp.Run(ast.Program(
				ast.ExprStmt(ast.Assign(ast.Variable("n"), ast.Number(raw))),
				ast.ExprStmt(ast.Assign(ast.Append(ast.Variable("a")), ast.Variable("n"))),
				ast.Echo(ast.Variable("n")),
			)); err != nil {
				return err
			}
			if out.String() != raw {
				return fmt.Errorf("interp %d echoed %q", i, out.String())
			}
			slot, ok := interp.Table().Global().Bindings.Lookup("n")
			if !ok {
				return fmt.Errorf("interp %d lost its binding", i)
			}
			v, _ := interp.Table().SlotValue(slot)
			n, ok := v.(*object.Number)
			if !ok || n.Value != float64(i) {
				return fmt.Errorf("interp %d holds %+v", i, v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
