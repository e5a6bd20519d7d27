package projector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/optbind/internal/evaluator"
	"github.com/vk/optbind/internal/optexpr"
	"github.com/vk/optbind/internal/options"
)

type item struct {
	ID   int
	Name string
}

func fieldEvaluator() evaluator.Evaluator {
	return evaluator.Func(func(_ context.Context, expr string, locals map[string]any) (any, error) {
		it := locals["item"].(*item)
		switch expr {
		case "item.id":
			return it.ID, nil
		case "item.name":
			return it.Name, nil
		}
		return nil, &evaluator.EvaluationError{Expression: expr, Err: errors.New("unknown")}
	})
}

func TestProject(t *testing.T) {
	items := []*item{{ID: 1, Name: "b"}, {ID: 2, Name: "a"}, {ID: 1, Name: "dup"}}
	acc := options.Compile(optexpr.MustParse("item.name for item in items track by item.id"), fieldEvaluator())

	raw, err := ToItems(items)
	require.NoError(t, err)

	entries, err := Project(context.Background(), raw, acc)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	labels := make([]string, 0, len(entries))
	for i, e := range entries {
		labels = append(labels, e.Label)
		require.Same(t, items[i], e.OriginalModel)
	}
	assert.Equal(t, []string{"b", "a", "dup"}, labels)
	assert.Equal(t, entries[0].Key, entries[2].Key)
}

func TestProject_Empty(t *testing.T) {
	acc := options.Compile(optexpr.MustParse("item in items"), fieldEvaluator())

	entries, err := Project(context.Background(), []any{}, acc)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestProject_Error(t *testing.T) {
	acc := options.Compile(optexpr.MustParse("item.missing for item in items"), fieldEvaluator())

	entries, err := Project(context.Background(), []any{&item{}}, acc)
	require.Nil(t, entries)
	assert.ErrorIs(t, err, evaluator.ErrEvaluation)
}

func TestToItems(t *testing.T) {
	testCases := []struct {
		name     string
		in       any
		expected []any
		wantErr  bool
	}{
		{name: "nil", in: nil, expected: []any{}},
		{name: "any slice", in: []any{1, "a"}, expected: []any{1, "a"}},
		{name: "typed slice", in: []string{"a", "b"}, expected: []any{"a", "b"}},
		{name: "array", in: [2]int{1, 2}, expected: []any{1, 2}},
		{name: "map", in: map[string]any{"a": 1}, wantErr: true},
		{name: "scalar", in: "abc", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToItems(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestProjection(t *testing.T) {
	var p Projection
	assert.Equal(t, NotLoaded, p.State())
	assert.False(t, p.Loaded())
	assert.Equal(t, 0, p.Len())

	p.Set(1, []options.Entry{{Label: "a"}})
	assert.True(t, p.Loaded())
	assert.Equal(t, uint64(1), p.Seq())

	p.Set(2, []options.Entry{})
	assert.Equal(t, Loaded, p.State())
	assert.Equal(t, "loaded", p.State().String())
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, uint64(2), p.Seq())
}
