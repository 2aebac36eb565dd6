package evaluator

import (
	"fmt"

	"github.com/phpwalk/phpwalk/ast"
)

// Level classifies a diagnostic.
type Level int

const (
	LevelNotice Level = iota
	LevelWarning
)

func (l Level) String() string {
	if l == LevelWarning {
		return "Warning"
	}
	return "Notice"
}

// Diagnostic is a non-fatal runtime condition. The evaluator reports it
// and continues with the substitute value defined for the condition.
type Diagnostic struct {
	Level   Level
	Message string
	Node    *ast.Node
}

func (d Diagnostic) String() string {
	if line := nodeLine(d.Node); line > 0 {
		return fmt.Sprintf("%s: %s on line %d", d.Level, d.Message, line)
	}
	return fmt.Sprintf("%s: %s", d.Level, d.Message)
}

func (e *Evaluator) notice(n *ast.Node, format string, args ...any) {
	e.report(Diagnostic{Level: LevelNotice, Message: fmt.Sprintf(format, args...), Node: n})
}

func (e *Evaluator) warning(n *ast.Node, format string, args ...any) {
	e.report(Diagnostic{Level: LevelWarning, Message: fmt.Sprintf(format, args...), Node: n})
}

func (e *Evaluator) report(d Diagnostic) {
	e.diags = append(e.diags, d)
	if d.Level == LevelWarning {
		e.logger.Warn(d.Message, "kind", nodeKind(d.Node), "line", nodeLine(d.Node))
	} else {
		e.logger.Debug(d.Message, "kind", nodeKind(d.Node), "line", nodeLine(d.Node))
	}
	fmt.Fprintln(e.diag, d.String())
}
