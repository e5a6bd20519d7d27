package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	FullText string `cty:"fullText"`
	secret   string
}

func TestHCL_Evaluate(t *testing.T) {
	scope := Scope{
		Variables: map[string]any{
			"items": []any{map[string]any{"id": 1, "name": "one"}, map[string]any{"id": 2, "name": "two"}},
			"title": "outer",
		},
	}
	e := NewHCL(scope)

	testCases := []struct {
		name     string
		expr     string
		locals   map[string]any
		expected any
	}{
		{
			name:     "member access on map",
			expr:     "item.name",
			locals:   map[string]any{"item": map[string]any{"id": 3, "name": "33"}},
			expected: "33",
		},
		{
			name:     "member access on struct uses json and cty tags",
			expr:     "\"${u.name}/${u.fullText}\"",
			locals:   map[string]any{"u": user{ID: 7, Name: "ann", FullText: "Ann Smith"}},
			expected: "ann/Ann Smith",
		},
		{
			name:     "whole number becomes int",
			expr:     "item.id + 1",
			locals:   map[string]any{"item": map[string]any{"id": 3}},
			expected: 4,
		},
		{
			name:     "fraction becomes float64",
			expr:     "x / 2",
			locals:   map[string]any{"x": 3},
			expected: 1.5,
		},
		{
			name:     "locals shadow the outer scope",
			expr:     "title",
			locals:   map[string]any{"title": "inner"},
			expected: "inner",
		},
		{
			name:     "outer scope",
			expr:     "title",
			expected: "outer",
		},
		{
			name:     "index into outer collection",
			expr:     "items[1].name",
			expected: "two",
		},
		{
			name:     "stdlib builtin",
			expr:     "upper(item.name)",
			locals:   map[string]any{"item": map[string]any{"name": "abc"}},
			expected: "ABC",
		},
		{
			name:     "format builtin",
			expr:     "format(\"%s-%d\", item.name, item.id)",
			locals:   map[string]any{"item": map[string]any{"id": 5, "name": "e"}},
			expected: "e-5",
		},
		{
			name:     "tuple result",
			expr:     "[for i in items : i.id]",
			expected: []any{1, 2},
		},
		{
			name:     "null",
			expr:     "null",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Evaluate(context.Background(), tc.expr, tc.locals)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestHCL_Evaluate_IdentityFastPath(t *testing.T) {
	item := &user{ID: 1, Name: "one"}
	items := []*user{item}
	e := NewHCL(Scope{Variables: map[string]any{"items": items}})

	got, err := e.Evaluate(context.Background(), "item", map[string]any{"item": item})
	require.NoError(t, err)
	require.Same(t, item, got)

	got, err = e.Evaluate(context.Background(), "(items)", nil)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestHCL_Evaluate_NativeFunctions(t *testing.T) {
	calls := 0
	var seen []any
	item := &user{ID: 3, Name: "33"}

	e := NewHCL(Scope{
		Functions: map[string]NativeFunc{
			"getLabel": func(_ context.Context, args ...any) (any, error) {
				calls++
				seen = args
				return "label", nil
			},
			"dataSource": func(_ context.Context, args ...any) (any, error) {
				return []any{"q=" + args[0].(string)}, nil
			},
			"fail": func(context.Context, ...any) (any, error) {
				return nil, errors.New("boom")
			},
		},
	})

	t.Run("direct call receives the exact argument", func(t *testing.T) {
		got, err := e.Evaluate(context.Background(), "getLabel(item)", map[string]any{"item": item})
		require.NoError(t, err)
		assert.Equal(t, "label", got)
		assert.Equal(t, 1, calls)
		require.Len(t, seen, 1)
		require.Same(t, item, seen[0])
	})

	t.Run("nested call goes through cty", func(t *testing.T) {
		got, err := e.Evaluate(context.Background(), "upper(getLabel(item))", map[string]any{"item": item})
		require.NoError(t, err)
		assert.Equal(t, "LABEL", got)
		assert.Equal(t, 2, calls)
	})

	t.Run("data source with query", func(t *testing.T) {
		got, err := e.Evaluate(context.Background(), "dataSource(query)", map[string]any{"query": "test"})
		require.NoError(t, err)
		assert.Equal(t, []any{"q=test"}, got)
	})

	t.Run("function error is an evaluation error", func(t *testing.T) {
		_, err := e.Evaluate(context.Background(), "fail()", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEvaluation)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestHCL_Evaluate_Errors(t *testing.T) {
	e := NewHCL(Scope{})

	testCases := []struct {
		name   string
		expr   string
		locals map[string]any
	}{
		{name: "missing attribute", expr: "item.missing", locals: map[string]any{"item": map[string]any{"name": "x"}}},
		{name: "unknown variable", expr: "nothing"},
		{name: "unknown function", expr: "nope(1)"},
		{name: "syntax", expr: "item.("},
		{name: "unsupported local", expr: "item.x", locals: map[string]any{"item": make(chan int)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Evaluate(context.Background(), tc.expr, tc.locals)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEvaluation)

			var evalErr *EvaluationError
			require.ErrorAs(t, err, &evalErr)
			assert.Equal(t, tc.expr, evalErr.Expression)
		})
	}
}

func TestFunc_Evaluate(t *testing.T) {
	var gotExpr string
	var gotLocals map[string]any
	f := Func(func(_ context.Context, expr string, locals map[string]any) (any, error) {
		gotExpr, gotLocals = expr, locals
		return 42, nil
	})

	var e Evaluator = f
	got, err := e.Evaluate(context.Background(), "x", map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, "x", gotExpr)
	assert.Equal(t, map[string]any{"a": 1}, gotLocals)
}
