package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phpwalk/phpwalk/ast"
	"github.com/phpwalk/phpwalk/object"
)

// evalLiteral resolves a literal node to its value. Literals never need
// the stack; the dispatcher calls this directly after popping them.
func (e *Evaluator) evalLiteral(n *ast.Node) error {
	switch n.Kind {
	case ast.KindNumber:
		v, err := e.numberValue(n)
		if err != nil {
			return err
		}
		e.pushValue(v)
	case ast.KindString:
		s, ok := n.Value.(string)
		if !ok {
			return e.newError(n, "string literal with a %T value", n.Value)
		}
		e.pushValue(&object.String{Value: s})
	case ast.KindBoolean:
		b, ok := n.Value.(bool)
		if !ok {
			return e.newError(n, "boolean literal with a %T value", n.Value)
		}
		e.pushValue(nativeBoolToBooleanObject(b))
	case ast.KindNullKeyword:
		e.pushValue(NULL)
	default:
		return e.newError(n, "not a literal kind %q", n.Kind)
	}
	return nil
}

// numberValue parses a number node. php-parser carries the source spelling
// as a string; hand-written documents may carry a plain JSON number.
func (e *Evaluator) numberValue(n *ast.Node) (*object.Number, error) {
	switch v := n.Value.(type) {
	case string:
		f, err := parseNumber(v)
		if err != nil {
			return nil, e.newError(n, "invalid number literal %q", v)
		}
		return &object.Number{Value: f}, nil
	case float64:
		return &object.Number{Value: v}, nil
	default:
		return nil, e.newError(n, "number literal with a %T value", n.Value)
	}
}

// parseNumber turns a numeric literal spelling into its value. Decimal,
// hexadecimal (0x), octal (0... and 0o), binary (0b), float and scientific
// spellings all collapse into the one numeric type, so 1337, 0x539, 02471,
// 0b10100111001 and 1337e0 are the same value. Digit group underscores are
// allowed anywhere the language allows them.
func parseNumber(raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "_", "")
	if s == "" {
		return 0, fmt.Errorf("empty number literal")
	}
	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("sign without digits")
	}

	var (
		f   float64
		err error
	)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		var u uint64
		u, err = strconv.ParseUint(lower[2:], 16, 64)
		f = float64(u)
	case strings.HasPrefix(lower, "0b"):
		var u uint64
		u, err = strconv.ParseUint(lower[2:], 2, 64)
		f = float64(u)
	case strings.HasPrefix(lower, "0o"):
		var u uint64
		u, err = strconv.ParseUint(lower[2:], 8, 64)
		f = float64(u)
	case len(lower) > 1 && lower[0] == '0' && !strings.ContainsAny(lower, ".e"):
		var u uint64
		u, err = strconv.ParseUint(lower[1:], 8, 64)
		f = float64(u)
	default:
		f, err = strconv.ParseFloat(lower, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		f = -f
	}
	return f, nil
}
