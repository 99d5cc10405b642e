package expect

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
)

// MissingVariablesError lists identifiers the assertion uses but vars lacks.
type MissingVariablesError struct {
	Vars []string
}

func (e *MissingVariablesError) Error() string {
	return fmt.Sprintf("missing variables [%s]", strings.Join(e.Vars, ", "))
}

// Eval runs a boolean assertion against vars. An empty assertion is true.
func Eval(cond string, vars map[string]any) (bool, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return true, nil
	}

	v, err := inspect(cond)
	if err != nil {
		return false, err
	}

	if missing := v.missing(vars); len(missing) > 0 {
		return false, &MissingVariablesError{Vars: missing}
	}

	program, err := expr.Compile(cond, expr.Env(vars), expr.AsBool())
	if err != nil {
		return false, err
	}

	out, err := expr.Run(program, vars)
	if err != nil {
		return false, err
	}

	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("assertion must evaluate to bool (got %T)", out)
	}

	return b, nil
}
