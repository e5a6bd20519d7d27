package app

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/vk/optbind/internal/binding"
	"github.com/vk/optbind/internal/config"
	"github.com/vk/optbind/internal/ctxlog"
	"github.com/vk/optbind/internal/evaluator"
	"github.com/vk/optbind/internal/options"
	"github.com/vk/optbind/internal/picker"
	"gopkg.in/yaml.v3"
)

// Result is the rendered outcome of a run.
type Result struct {
	Select   string            `json:"select" yaml:"select"`
	Type     config.SelectType `json:"type" yaml:"type"`
	Disabled bool              `json:"disabled" yaml:"disabled"`
	Selected *options.Entry    `json:"selected" yaml:"selected"`
	Loaded   bool              `json:"loaded" yaml:"loaded"`
	Query    string            `json:"query,omitempty" yaml:"query,omitempty"`
	Entries  []options.Entry   `json:"entries" yaml:"entries"`
	Config   map[string]any    `json:"config,omitempty" yaml:"config,omitempty"`
}

// Run binds the configured select definition and writes the result.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	sel, err := a.model.Select(a.config.SelectName)
	if err != nil {
		return err
	}

	scope, closeRemotes := buildScope(a.model)
	defer func() {
		if cerr := closeRemotes(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close remote data sources: %w", cerr)
		}
	}()
	eval := evaluator.NewHCL(scope)

	var initial any
	if sel.Selected != "" {
		if initial, err = eval.Evaluate(ctx, sel.Selected, nil); err != nil {
			return fmt.Errorf("select %q: initial value: %w", sel.Name, err)
		}
	}

	ctrl, err := binding.New(ctx, binding.Params{
		Expression:     sel.Options,
		Evaluator:      eval,
		Model:          binding.NewValueModel(initial),
		ExternalFilter: sel.ExternalFilter,
		Type:           sel.Type,
		Disabled:       sel.Disabled,
		Config:         sel.Config,
	})
	if err != nil {
		return fmt.Errorf("select %q: %w", sel.Name, err)
	}

	if a.config.Interactive {
		chosen, err := picker.Run(ctx, ctrl, sel.Name, a.inR, a.outW)
		if err != nil {
			return err
		}
		if !chosen {
			a.logger.Info("Nothing chosen.")
			return nil
		}
		return a.render(a.result(sel, ctrl))
	}

	cfg := ctrl.Config()
	if a.config.Open || a.config.Query != "" {
		if err := cfg.OnOpen(); err != nil {
			return fmt.Errorf("select %q: open: %w", sel.Name, err)
		}
	}
	if a.config.Query != "" {
		if err := cfg.OnFilter(a.config.Query); err != nil {
			return fmt.Errorf("select %q: filter: %w", sel.Name, err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return a.render(a.result(sel, ctrl))
}

func (a *App) result(sel *config.Select, ctrl *binding.Controller) *Result {
	cfg := ctrl.Config()
	entries := ctrl.Visible()
	if entries == nil {
		entries = []options.Entry{}
	}
	return &Result{
		Select:   sel.Name,
		Type:     cfg.Type,
		Disabled: cfg.IsDisabled(),
		Selected: ctrl.Selected(),
		Loaded:   ctrl.Loaded(),
		Query:    ctrl.Query(),
		Entries:  entries,
		Config:   cfg.Extra,
	}
}

func (a *App) render(res *Result) error {
	switch a.config.OutputFormat {
	case "yaml":
		enc := yaml.NewEncoder(a.outW)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return enc.Close()
	default:
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, err = fmt.Fprintln(a.outW, string(out))
		return err
	}
}
