package config

import (
	"fmt"
	"maps"

	"github.com/vk/optbind/internal/options"
)

// SelectType is the kind of control a list is presented as.
type SelectType string

const (
	TypeButton SelectType = "button"
	TypeInput  SelectType = "input"
	TypeCustom SelectType = "custom"
)

// ParseSelectType maps a definition's type attribute to a SelectType. An
// empty value means button and "dropdown" is an alias for custom.
func ParseSelectType(s string) (SelectType, error) {
	switch s {
	case "", string(TypeButton):
		return TypeButton, nil
	case string(TypeInput):
		return TypeInput, nil
	case "dropdown", string(TypeCustom):
		return TypeCustom, nil
	}
	return "", fmt.Errorf("unknown select type %q: expected button, input or dropdown", s)
}

// FilterConfig configures filtering of projected entries.
type FilterConfig struct {
	// Fn reports whether an entry is kept by the list control.
	Fn func(options.Entry) bool
}

// ListConfig is the configuration handed to a list control. Zero-valued
// fields are unset and lose to the other side in Merge.
type ListConfig struct {
	Type     SelectType
	Disabled *bool
	Selected *options.Entry
	Filter   *FilterConfig

	OnOpen   func() error
	OnFilter func(query string) error
	OnChange func(entry options.Entry) error

	// Extra holds consumer settings the engine does not interpret.
	Extra map[string]any
}

// Merge returns base with every set field of override layered on top. Extra
// maps are merged key by key, override winning. Neither argument is modified.
func Merge(base, override ListConfig) ListConfig {
	out := base
	if override.Type != "" {
		out.Type = override.Type
	}
	if override.Disabled != nil {
		out.Disabled = override.Disabled
	}
	if override.Selected != nil {
		out.Selected = override.Selected
	}
	if override.Filter != nil {
		out.Filter = override.Filter
	}
	if override.OnOpen != nil {
		out.OnOpen = override.OnOpen
	}
	if override.OnFilter != nil {
		out.OnFilter = override.OnFilter
	}
	if override.OnChange != nil {
		out.OnChange = override.OnChange
	}

	if len(base.Extra) > 0 || len(override.Extra) > 0 {
		out.Extra = make(map[string]any, len(base.Extra)+len(override.Extra))
		maps.Copy(out.Extra, base.Extra)
		maps.Copy(out.Extra, override.Extra)
	}
	return out
}

// ListConfigFromMap builds a partial ListConfig from loosely typed settings.
// `type` and `disabled` are interpreted; every other key goes to Extra.
func ListConfigFromMap(m map[string]any) (ListConfig, error) {
	var lc ListConfig
	for k, v := range m {
		switch k {
		case "type":
			s, ok := v.(string)
			if !ok {
				return ListConfig{}, fmt.Errorf("config.type must be a string, got %T", v)
			}
			t, err := ParseSelectType(s)
			if err != nil {
				return ListConfig{}, fmt.Errorf("config.type: %w", err)
			}
			lc.Type = t
		case "disabled":
			b, ok := v.(bool)
			if !ok {
				return ListConfig{}, fmt.Errorf("config.disabled must be a bool, got %T", v)
			}
			lc.Disabled = &b
		default:
			if lc.Extra == nil {
				lc.Extra = make(map[string]any)
			}
			lc.Extra[k] = v
		}
	}
	return lc, nil
}

// IsDisabled reports whether Disabled is set to true.
func (c ListConfig) IsDisabled() bool {
	return c.Disabled != nil && *c.Disabled
}
