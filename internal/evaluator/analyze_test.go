package evaluator

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferences(t *testing.T) {
	testCases := []struct {
		expr  string
		roots []string
		funcs []string
	}{
		{expr: "item.name", roots: []string{"item"}, funcs: []string{}},
		{expr: "getLabel(item)", roots: []string{"item"}, funcs: []string{"getLabel"}},
		{expr: "upper(format(\"%s\", a.b)) == c", roots: []string{"a", "c"}, funcs: []string{"format", "upper"}},
		{expr: "{ (k(x)) = v }", roots: []string{"v", "x"}, funcs: []string{"k"}},
		{expr: "\"${lower(item.name)}!\"", roots: []string{"item"}, funcs: []string{"lower"}},
		{expr: "f(x)[0].y", roots: []string{"x"}, funcs: []string{"f"}},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			expr, diags := hclsyntax.ParseExpression([]byte(tc.expr), "", hcl.Pos{Line: 1, Column: 1})
			require.False(t, diags.HasErrors(), diags.Error())

			roots, funcs := references(expr)
			assert.Equal(t, tc.roots, roots)
			assert.Equal(t, tc.funcs, funcs)
		})
	}
}
