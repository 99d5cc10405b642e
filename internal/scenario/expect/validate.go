package expect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var arithmeticOps = map[string]struct{}{
	"+": {}, "-": {}, "*": {}, "/": {}, "%": {}, "**": {}, "^": {}, "..": {},
}

// inspector walks a parsed assertion. It keeps the first disallowed node and
// every identifier it sees.
type inspector struct {
	err    error
	idents map[string]struct{}
}

func (v *inspector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		v.idents[n.Value] = struct{}{}
	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.StringNode,
		*ast.UnaryNode, *ast.ArrayNode, *ast.ConstantNode:
	case *ast.BinaryNode:
		if _, ok := arithmeticOps[n.Operator]; ok {
			v.fail(fmt.Errorf("arithmetic operator %q is not allowed", n.Operator))
		}
	case *ast.MemberNode, *ast.ChainNode, *ast.SliceNode:
		v.fail(fmt.Errorf("member access is not allowed"))
	case *ast.CallNode, *ast.BuiltinNode, *ast.PredicateNode:
		v.fail(fmt.Errorf("function calls are not allowed"))
	default:
		v.fail(fmt.Errorf("unsupported expression %T", n))
	}
}

func (v *inspector) fail(err error) {
	if v.err == nil {
		v.err = err
	}
}

func inspect(cond string) (*inspector, error) {
	tree, err := parser.Parse(cond)
	if err != nil {
		return nil, err
	}
	v := &inspector{idents: map[string]struct{}{}}
	ast.Walk(&tree.Node, v)
	if v.err != nil {
		return nil, v.err
	}
	return v, nil
}

// Validate rejects assertions that reach beyond comparisons and boolean logic
// over the decision variables: member access, function calls and binary
// arithmetic. Word operators (in, contains, startsWith, endsWith, matches)
// and unary minus on literals are allowed.
func Validate(cond string) error {
	if strings.TrimSpace(cond) == "" {
		return nil
	}
	_, err := inspect(cond)
	return err
}

func (v *inspector) missing(vars map[string]any) []string {
	var out []string
	for name := range v.idents {
		if _, ok := vars[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
