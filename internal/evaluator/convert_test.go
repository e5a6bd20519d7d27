package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestToCty(t *testing.T) {
	testCases := []struct {
		name     string
		in       any
		expected cty.Value
	}{
		{name: "nil", in: nil, expected: cty.NullVal(cty.DynamicPseudoType)},
		{name: "string", in: "a", expected: cty.StringVal("a")},
		{name: "int", in: 3, expected: cty.NumberIntVal(3)},
		{name: "int32 via reflect", in: int32(3), expected: cty.NumberIntVal(3)},
		{name: "uint", in: uint8(9), expected: cty.NumberUIntVal(9)},
		{name: "bool", in: true, expected: cty.True},
		{name: "slice of strings", in: []string{"a", "b"}, expected: cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})},
		{name: "nil slice", in: []string(nil), expected: cty.EmptyTupleVal},
		{
			name:     "map",
			in:       map[string]any{"id": 1},
			expected: cty.ObjectVal(map[string]cty.Value{"id": cty.NumberIntVal(1)}),
		},
		{
			name: "struct pointer",
			in:   &user{ID: 1, Name: "n", FullText: "f", secret: "s"},
			expected: cty.ObjectVal(map[string]cty.Value{
				"id":       cty.NumberIntVal(1),
				"name":     cty.StringVal("n"),
				"fullText": cty.StringVal("f"),
			}),
		},
		{name: "nil pointer", in: (*user)(nil), expected: cty.NullVal(cty.DynamicPseudoType)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToCty(tc.in)
			require.NoError(t, err)
			assert.True(t, tc.expected.RawEquals(got), "expected %#v, got %#v", tc.expected, got)
		})
	}
}

func TestToCty_Unsupported(t *testing.T) {
	_, err := ToCty(map[int]string{1: "a"})
	require.Error(t, err)

	_, err = ToCty([]any{func() {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in element 0")
}

func TestFromCty(t *testing.T) {
	obj := cty.ObjectVal(map[string]cty.Value{
		"id":    cty.NumberIntVal(2),
		"ratio": cty.NumberFloatVal(0.5),
		"tags":  cty.ListVal([]cty.Value{cty.StringVal("x")}),
		"ok":    cty.True,
		"none":  cty.NullVal(cty.String),
	})

	got, err := FromCty(obj)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":    2,
		"ratio": 0.5,
		"tags":  []any{"x"},
		"ok":    true,
		"none":  nil,
	}, got)

	got, err = FromCty(cty.UnknownVal(cty.String))
	require.NoError(t, err)
	assert.Nil(t, got)
}
