// Package picker is an interactive terminal list driving a
// binding.Controller. Opening the picker loads the collection, typing
// filters it and enter writes the highlighted entry back to the model.
package picker

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vk/optbind/internal/binding"
	"github.com/vk/optbind/internal/config"
	"github.com/vk/optbind/internal/ctxlog"
	"github.com/vk/optbind/internal/options"
)

const defaultHeight = 10

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	queryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	selectedStyle = lipgloss.NewStyle().Italic(true)
)

// loadedMsg carries the result of a collection fetch.
type loadedMsg struct {
	req   binding.Request
	items []any
	err   error
}

// Model is the bubbletea model of the picker.
type Model struct {
	ctx    context.Context
	ctrl   *binding.Controller
	title  string
	height int

	query   string
	cursor  int
	offset  int
	loading bool
	err     error
	chosen  bool
}

// New creates a picker for ctrl. title is shown above the list.
func New(ctx context.Context, ctrl *binding.Controller, title string) *Model {
	return &Model{ctx: ctx, ctrl: ctrl, title: title, height: defaultHeight}
}

// Init opens the list unless it is disabled.
func (m *Model) Init() tea.Cmd {
	if m.ctrl.Disabled() {
		return nil
	}
	q := ""
	if m.ctrl.ExternalFilter() {
		q = m.query
	}
	return m.fetch(q)
}

// fetch begins a load and returns the command performing it.
func (m *Model) fetch(query string) tea.Cmd {
	req := m.ctrl.Begin(query)
	m.loading = true
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		items, err := ctrl.Fetch(ctx, req)
		return loadedMsg{req: req, items: items, err: err}
	}
}

// Update handles key presses and load results.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return m, m.handleLoaded(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleLoaded(msg loadedMsg) tea.Cmd {
	if msg.err != nil {
		m.loading = false
		m.err = msg.err
		return nil
	}
	applied, err := m.ctrl.Apply(m.ctx, msg.req, msg.items)
	if err != nil {
		m.err = err
	}
	if applied || err != nil {
		m.loading = false
	}
	m.clamp()
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	}
	if m.ctrl.Disabled() {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		visible := m.ctrl.Visible()
		if len(visible) == 0 {
			return m, nil
		}
		if err := m.ctrl.Change(m.ctx, visible[m.cursor]); err != nil {
			m.err = err
			return m, nil
		}
		m.chosen = true
		return m, tea.Quit
	case "up":
		m.cursor--
		m.clamp()
	case "down":
		m.cursor++
		m.clamp()
	case "backspace":
		if m.query == "" {
			return m, nil
		}
		r := []rune(m.query)
		return m, m.setQuery(string(r[:len(r)-1]))
	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 {
			return m, m.setQuery(m.query + string(msg.Runes))
		}
	}
	return m, nil
}

// setQuery updates the filter. External filtering reloads the collection
// asynchronously; client-side filtering re-ranks the loaded entries.
func (m *Model) setQuery(q string) tea.Cmd {
	m.query = q
	m.cursor, m.offset = 0, 0
	m.err = nil
	ctxlog.FromContext(m.ctx).Debug("Filter query changed.", "query", q)

	if m.ctrl.ExternalFilter() {
		return m.fetch(q)
	}
	if err := m.ctrl.Filter(m.ctx, q); err != nil {
		m.err = err
	}
	return nil
}

func (m *Model) clamp() {
	n := len(m.ctrl.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// View renders the picker.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	if sel := m.ctrl.Selected(); sel != nil {
		b.WriteString(" " + selectedStyle.Render("("+sel.SelectedLabel+")"))
	}
	b.WriteString("\n")

	if m.ctrl.Disabled() {
		b.WriteString(dimStyle.Render("disabled, esc to quit") + "\n")
		return b.String()
	}

	prompt := "> "
	if m.ctrl.Config().Type == config.TypeInput {
		prompt = "? "
	}
	b.WriteString(queryStyle.Render(prompt+m.query) + "\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}

	visible := m.ctrl.Visible()
	switch {
	case m.loading && !m.ctrl.Loaded():
		b.WriteString(dimStyle.Render("loading...") + "\n")
	case len(visible) == 0:
		b.WriteString(dimStyle.Render("no matches") + "\n")
	}

	end := min(m.offset+m.height, len(visible))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.row(visible[i], i == m.cursor) + "\n")
	}
	if len(visible) > m.height {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(visible))) + "\n")
	}
	return b.String()
}

func (m *Model) row(e options.Entry, active bool) string {
	if active {
		return cursorStyle.Render("› " + e.Label)
	}
	return "  " + e.Label
}

// Query returns the current filter query.
func (m *Model) Query() string { return m.query }

// Chosen reports whether an entry was picked.
func (m *Model) Chosen() bool { return m.chosen }

// Err returns the last load or selection error.
func (m *Model) Err() error { return m.err }

// Run runs the picker until an entry is chosen or the user quits. It reports
// whether an entry was chosen.
func Run(ctx context.Context, ctrl *binding.Controller, title string, in io.Reader, out io.Writer) (bool, error) {
	m := New(ctx, ctrl, title)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return false, fmt.Errorf("picker: %w", err)
	}
	return m.Chosen(), nil
}
