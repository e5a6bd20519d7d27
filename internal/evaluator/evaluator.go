// Package evaluator defines the capability the options engine borrows from
// its host to resolve sub-expressions such as `item.name`,
// `getLabel(item)` or `dataSource(query)`, together with an implementation
// backed by the HCL expression language and cty values.
package evaluator

import (
	"context"
	"errors"
	"fmt"
)

// Evaluator resolves an expression against a set of local variables. The
// locals are layered on top of whatever outer scope the implementation holds.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, locals map[string]any) (any, error)
}

// Func is an adapter to allow the use of ordinary functions as evaluators.
type Func func(ctx context.Context, expr string, locals map[string]any) (any, error)

// Evaluate calls f(ctx, expr, locals).
func (f Func) Evaluate(ctx context.Context, expr string, locals map[string]any) (any, error) {
	return f(ctx, expr, locals)
}

// NativeFunc is a Go function callable from expressions, e.g. a label
// formatter or a data source taking a filter query.
type NativeFunc func(ctx context.Context, args ...any) (any, error)

// Scope is the outer scope expressions are evaluated in.
type Scope struct {
	Variables map[string]any
	Functions map[string]NativeFunc
}

// ErrEvaluation is matched by every *EvaluationError via errors.Is.
var ErrEvaluation = errors.New("expression evaluation failed")

// EvaluationError reports an expression that could not be resolved against
// its context, e.g. a missing attribute or a call to an unknown function.
type EvaluationError struct {
	Expression string
	Err        error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate %q: %v", e.Expression, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EvaluationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrEvaluation.
func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}
