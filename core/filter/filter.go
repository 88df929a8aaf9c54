// Package filter selects elements of list results with expr-lang
// expressions, e.g. `state == "running" && size.ram >= 512`.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrNotList is returned when a filter is applied to a result that is not
// a list.
var ErrNotList = errors.New("filter applies to list results only")

// Filter is a compiled boolean expression. Object fields are variables;
// elements that are not objects are bound to "value".
type Filter struct {
	source  string
	program *vm.Program
}

var options = []expr.Option{
	expr.AllowUndefinedVariables(),
	expr.Function("lower", func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("lower requires 1 argument")
		}
		return strings.ToLower(fmt.Sprint(params[0])), nil
	}),
	expr.Function("upper", func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("upper requires 1 argument")
		}
		return strings.ToUpper(fmt.Sprint(params[0])), nil
	}),
}

// Compile parses expression.
func Compile(expression string) (*Filter, error) {
	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	return &Filter{source: expression, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.source
}

// Match reports whether item satisfies the expression.
func (f *Filter) Match(item any) (bool, error) {
	env, ok := item.(map[string]any)
	if !ok {
		env = map[string]any{"value": item}
	}
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("run filter: %w", err)
	}
	match, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", f.source, out)
	}
	return match, nil
}

// Apply returns the elements of the list v that match.
func (f *Filter) Apply(v any) ([]any, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, ErrNotList
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		match, err := f.Match(item)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, item)
		}
	}
	return out, nil
}
