package evaluator

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/optbind/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// builtins are the cty standard library functions available to every
// expression unless the scope shadows them with a native function.
var builtins = map[string]function.Function{
	"upper":     stdlib.UpperFunc,
	"lower":     stdlib.LowerFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"length":    stdlib.LengthFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"concat":    stdlib.ConcatFunc,
	"coalesce":  stdlib.CoalesceFunc,
	"substr":    stdlib.SubstrFunc,
	"replace":   stdlib.ReplaceFunc,
}

// HCL evaluates expressions written in HCL syntax against a Go scope.
//
// Bare variable references and calls to native functions are resolved
// directly in Go, so `item` yields the very value stored in the scope and
// `dataSource(query)` returns whatever the Go function returned. Everything
// else (attribute access, operators, templates, cty builtins) goes through
// HCL with the referenced variables converted to cty values.
type HCL struct {
	vars  map[string]any
	funcs map[string]NativeFunc

	mu     sync.Mutex
	parsed map[string]hclsyntax.Expression
}

// NewHCL creates an evaluator over the given outer scope. The scope maps are
// copied; later changes to them are not observed.
func NewHCL(scope Scope) *HCL {
	e := &HCL{
		vars:   make(map[string]any, len(scope.Variables)),
		funcs:  make(map[string]NativeFunc, len(scope.Functions)),
		parsed: make(map[string]hclsyntax.Expression),
	}
	for k, v := range scope.Variables {
		e.vars[k] = v
	}
	for k, fn := range scope.Functions {
		e.funcs[k] = fn
	}
	return e
}

// Evaluate parses src as an HCL expression and evaluates it with locals
// layered over the outer scope. Every failure is an *EvaluationError.
func (e *HCL) Evaluate(ctx context.Context, src string, locals map[string]any) (any, error) {
	expr, err := e.parse(ctx, src)
	if err != nil {
		return nil, &EvaluationError{Expression: src, Err: err}
	}

	val, err := e.eval(ctx, expr, locals)
	if err != nil {
		return nil, &EvaluationError{Expression: src, Err: err}
	}
	return val, nil
}

// parse returns the syntax tree for src, parsing it at most once.
func (e *HCL) parse(ctx context.Context, src string) (hclsyntax.Expression, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if expr, ok := e.parsed[src]; ok {
		return expr, nil
	}

	expr, diags := hclsyntax.ParseExpression([]byte(src), "expression", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, diags
	}
	ctxlog.FromContext(ctx).Debug("Parsed expression.", "expr", src, "type", fmt.Sprintf("%T", expr))
	e.parsed[src] = expr
	return expr, nil
}

// lookup resolves a root variable name, locals first.
func (e *HCL) lookup(name string, locals map[string]any) (any, bool) {
	if v, ok := locals[name]; ok {
		return v, true
	}
	v, ok := e.vars[name]
	return v, ok
}

func (e *HCL) eval(ctx context.Context, expr hclsyntax.Expression, locals map[string]any) (any, error) {
	switch x := expr.(type) {
	case *hclsyntax.ParenthesesExpr:
		return e.eval(ctx, x.Expression, locals)

	case *hclsyntax.ScopeTraversalExpr:
		if len(x.Traversal) == 1 {
			if v, ok := e.lookup(x.Traversal.RootName(), locals); ok {
				return v, nil
			}
		}

	case *hclsyntax.FunctionCallExpr:
		fn, ok := e.funcs[x.Name]
		if !ok || x.ExpandFinal {
			break
		}
		args := make([]any, 0, len(x.Args))
		for i, argExpr := range x.Args {
			arg, err := e.eval(ctx, argExpr, locals)
			if err != nil {
				return nil, fmt.Errorf("argument %d of %s(): %w", i, x.Name, err)
			}
			args = append(args, arg)
		}
		out, err := fn(ctx, args...)
		if err != nil {
			return nil, fmt.Errorf("%s(): %w", x.Name, err)
		}
		return out, nil
	}

	return e.evalCty(ctx, expr, locals)
}

// evalCty evaluates expr through HCL. Only the variables and functions the
// expression references are placed in the evaluation context.
func (e *HCL) evalCty(ctx context.Context, expr hclsyntax.Expression, locals map[string]any) (any, error) {
	roots, calls := references(expr)

	evalCtx := &hcl.EvalContext{
		Variables: make(map[string]cty.Value, len(roots)),
		Functions: make(map[string]function.Function, len(calls)),
	}
	for _, name := range roots {
		v, ok := e.lookup(name, locals)
		if !ok {
			continue
		}
		cv, err := ToCty(v)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		evalCtx.Variables[name] = cv
	}
	for _, name := range calls {
		if fn, ok := e.funcs[name]; ok {
			evalCtx.Functions[name] = nativeFunction(ctx, fn)
		} else if fn, ok := builtins[name]; ok {
			evalCtx.Functions[name] = fn
		}
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	return FromCty(val)
}

// nativeFunction exposes a NativeFunc to HCL. Arguments are converted to
// native Go values and the result back to cty.
func nativeFunction(ctx context.Context, fn NativeFunc) function.Function {
	return function.New(&function.Spec{
		VarParam: &function.Parameter{
			Name:             "args",
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowDynamicType: true,
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			natives := make([]any, 0, len(args))
			for _, arg := range args {
				native, err := FromCty(arg)
				if err != nil {
					return cty.NilVal, err
				}
				natives = append(natives, native)
			}
			out, err := fn(ctx, natives...)
			if err != nil {
				return cty.NilVal, err
			}
			return ToCty(out)
		},
	})
}
