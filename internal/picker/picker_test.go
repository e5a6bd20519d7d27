package picker

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/optbind/internal/binding"
	"github.com/vk/optbind/internal/evaluator"
)

type fruit struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func fruits() []*fruit {
	return []*fruit{{1, "apple"}, {2, "banana"}, {3, "cherry"}, {4, "blueberry"}}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive feeds msg to m and then runs every returned command synchronously,
// feeding its result back, until no command is left.
func drive(t *testing.T, m *Model, msg tea.Msg) tea.Msg {
	t.Helper()
	var last tea.Msg
	for msg != nil {
		_, cmd := m.Update(msg)
		if cmd == nil {
			return last
		}
		msg = cmd()
		last = msg
	}
	return last
}

func initModel(t *testing.T, m *Model) {
	t.Helper()
	cmd := m.Init()
	require.NotNil(t, cmd)
	drive(t, m, cmd())
}

func newClientPicker(t *testing.T, model binding.Model) (*Model, []*fruit) {
	t.Helper()
	items := fruits()
	c, err := binding.New(context.Background(), binding.Params{
		Expression: "f.name for f in items track by f.id",
		Evaluator:  evaluator.NewHCL(evaluator.Scope{Variables: map[string]any{"items": items}}),
		Model:      model,
	})
	require.NoError(t, err)
	return New(context.Background(), c, "Fruit"), items
}

func TestPicker_OpenAndChoose(t *testing.T) {
	model := binding.NewValueModel(nil)
	m, items := newClientPicker(t, model)

	initModel(t, m)
	assert.Contains(t, m.View(), "apple")
	assert.Contains(t, m.View(), "cherry")

	drive(t, m, tea.KeyMsg{Type: tea.KeyDown})
	drive(t, m, tea.KeyMsg{Type: tea.KeyDown})
	drive(t, m, tea.KeyMsg{Type: tea.KeyUp})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	assert.True(t, m.Chosen())
	require.Same(t, items[1], model.Get())
}

func TestPicker_ClientFilter(t *testing.T) {
	model := binding.NewValueModel(nil)
	m, items := newClientPicker(t, model)
	initModel(t, m)

	drive(t, m, runes("b"))
	drive(t, m, runes("e"))
	assert.Equal(t, "be", m.Query())
	view := m.View()
	assert.Contains(t, view, "blueberry")
	assert.NotContains(t, view, "apple")

	drive(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "b", m.Query())

	drive(t, m, runes("lue"))
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Same(t, items[3], model.Get())
}

func TestPicker_CursorIsClamped(t *testing.T) {
	m, _ := newClientPicker(t, nil)
	initModel(t, m)

	drive(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
	for i := 0; i < 10; i++ {
		drive(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 3, m.cursor)

	drive(t, m, runes("zzz"))
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.View(), "no matches")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.Chosen())
}

func TestPicker_Quit(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m, _ := newClientPicker(t, nil)
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
		assert.False(t, m.Chosen())
	}
}

func TestPicker_ExternalFilter(t *testing.T) {
	var queries []string
	c, err := binding.New(context.Background(), binding.Params{
		Expression: "item.name for item in dataSource(query)",
		Evaluator: evaluator.NewHCL(evaluator.Scope{Functions: map[string]evaluator.NativeFunc{
			"dataSource": func(_ context.Context, args ...any) (any, error) {
				q := args[0].(string)
				queries = append(queries, q)
				return []any{map[string]any{"name": "result for " + q}}, nil
			},
		}}),
		ExternalFilter: true,
	})
	require.NoError(t, err)
	m := New(context.Background(), c, "Remote")

	initModel(t, m)
	assert.Equal(t, []string{""}, queries)

	// Two keystrokes whose loads complete out of order: only the last applies.
	_, first := m.Update(runes("a"))
	_, second := m.Update(runes("b"))
	require.NotNil(t, first)
	require.NotNil(t, second)

	secondMsg := second()
	firstMsg := first()
	m.Update(secondMsg)
	m.Update(firstMsg)

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "result for ab", entries[0].Label)
	assert.Equal(t, "ab", c.Query())
	assert.False(t, m.loading)
}

func TestPicker_LoadError(t *testing.T) {
	c, err := binding.New(context.Background(), binding.Params{
		Expression: "item in items",
		Evaluator:  evaluator.NewHCL(evaluator.Scope{Variables: map[string]any{"items": 42}}),
	})
	require.NoError(t, err)
	m := New(context.Background(), c, "Broken")

	initModel(t, m)
	require.Error(t, m.Err())
	assert.Contains(t, m.View(), "error:")
}

func TestPicker_Disabled(t *testing.T) {
	c, err := binding.New(context.Background(), binding.Params{
		Expression: "item in items",
		Evaluator:  evaluator.NewHCL(evaluator.Scope{Variables: map[string]any{"items": []any{"a"}}}),
		Disabled:   true,
	})
	require.NoError(t, err)
	m := New(context.Background(), c, "Off")

	assert.Nil(t, m.Init())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "disabled")
	assert.False(t, c.Loaded())
}
