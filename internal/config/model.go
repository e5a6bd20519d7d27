package config

import (
	"fmt"
	"sort"
	"time"
)

// Model is the unified, format-agnostic representation of all loaded
// definitions.
type Model struct {
	Selects map[string]*Select
	Data    map[string]*Data
	Remotes map[string]*Remote
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Selects: make(map[string]*Select),
		Data:    make(map[string]*Data),
		Remotes: make(map[string]*Remote),
	}
}

// Select is the format-agnostic representation of a `select` block.
type Select struct {
	Name string
	// Options is the options expression, e.g. `item.name for item in items`.
	Options string
	// Selected is an optional expression yielding the initial value.
	Selected       string
	Type           SelectType
	ExternalFilter bool
	Disabled       bool
	// Config is the consumer's partial list configuration.
	Config ListConfig
}

// Data is a named collection made available to expressions.
type Data struct {
	Name string
	// Source is the file the value was read from, empty for inline values.
	Source string
	Value  any
}

// Remote describes a socket.io data source exposed to expressions as a
// function of the filter query.
type Remote struct {
	Name               string
	URL                string
	Namespace          string
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// SelectNames returns the names of all select definitions, sorted.
func (m *Model) SelectNames() []string {
	names := make([]string, 0, len(m.Selects))
	for name := range m.Selects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select looks up a select definition. An empty name is accepted when the
// model holds exactly one select.
func (m *Model) Select(name string) (*Select, error) {
	if name == "" {
		if len(m.Selects) == 1 {
			for _, s := range m.Selects {
				return s, nil
			}
		}
		return nil, fmt.Errorf("select name is required when %d selects are defined: %v", len(m.Selects), m.SelectNames())
	}
	s, ok := m.Selects[name]
	if !ok {
		return nil, fmt.Errorf("select %q is not defined, available: %v", name, m.SelectNames())
	}
	return s, nil
}
