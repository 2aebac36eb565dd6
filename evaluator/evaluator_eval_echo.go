package evaluator

import (
	"fmt"
	"io"

	"github.com/phpwalk/phpwalk/ast"
	"github.com/phpwalk/phpwalk/object"
)

// evalEcho writes each operand's string conversion to the output writer.
func (e *Evaluator) evalEcho() error {
	it, err := e.pop()
	if err != nil {
		return err
	}
	for _, expr := range it.node.Expressions {
		e.push(item{node: expr, intent: intentRead})
		if err := e.evaluate(); err != nil {
			return err
		}
		vit, err := e.pop()
		if err != nil {
			return err
		}
		v := e.deref(vit.value)
		if v == nil {
			return e.newError(expr, "echo operand produced no value")
		}
		s, err := e.stringify(expr, v)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(e.out, s); err != nil {
			return fmt.Errorf("writing echo output: %w", err)
		}
	}
	e.pushValue(NULL)
	return nil
}

// stringify applies the language's string conversion rules: null and false
// render empty, true renders "1", numbers drop an integral decimal part,
// and arrays collapse to the word "Array" with a notice. Object stubs
// cannot be converted.
func (e *Evaluator) stringify(n *ast.Node, v object.Object) (string, error) {
	switch v := v.(type) {
	case *object.Null:
		return "", nil
	case *object.Boolean:
		if v.Value {
			return "1", nil
		}
		return "", nil
	case *object.Number:
		return object.FormatNumber(v.Value), nil
	case *object.String:
		return v.Value, nil
	case *object.Array:
		e.notice(n, "Array to string conversion")
		return "Array", nil
	case *object.ObjectValue:
		return "", e.newError(n, "Object of class %s could not be converted to string", v.Class)
	default:
		return "", e.newError(n, "cannot convert %s to string", v.Type())
	}
}
