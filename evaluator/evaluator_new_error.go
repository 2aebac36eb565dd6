package evaluator

import (
	"fmt"

	"github.com/phpwalk/phpwalk/ast"
)

// Error is a fatal evaluation failure. Unlike a Diagnostic it aborts the
// run.
type Error struct {
	Node    *ast.Node
	Message string
}

func (e *Error) Error() string {
	if line := nodeLine(e.Node); line > 0 {
		return fmt.Sprintf("%s on line %d", e.Message, line)
	}
	return e.Message
}

// newError builds a fatal error anchored to n. n may be nil for failures
// with no sensible source position.
func (e *Evaluator) newError(n *ast.Node, format string, args ...any) *Error {
	err := &Error{Node: n, Message: fmt.Sprintf(format, args...)}
	e.logger.Error(err.Message, "kind", nodeKind(n), "line", nodeLine(n))
	return err
}

func nodeLine(n *ast.Node) int {
	if n == nil || n.Loc == nil {
		return 0
	}
	return n.Loc.Start.Line
}

func nodeKind(n *ast.Node) string {
	if n == nil {
		return ""
	}
	return n.Kind
}
