package hcl

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/optbind/internal/config"
	"github.com/vk/optbind/internal/ctxlog"
	"github.com/vk/optbind/internal/evaluator"
	"github.com/vk/optbind/internal/optexpr"
)

const (
	defaultRemoteEvent   = "options"
	defaultRemoteTimeout = 5 * time.Second
)

// isExprDefined checks if an HCL expression was actually present in the
// source. Omitted optional attributes decode to placeholder expressions with
// a zero-width range.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	isDefined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// constantValue evaluates expr without variables or functions and converts
// the result to a native Go value.
func constantValue(expr hcl.Expression) (any, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	return evaluator.FromCty(val)
}

// translateSelect converts a select block into the agnostic model. The
// options expression is parsed here so syntax errors surface at load time.
func (l *Loader) translateSelect(ctx context.Context, b *selectBlock) (*config.Select, error) {
	if _, err := optexpr.Parse(b.Options); err != nil {
		return nil, fmt.Errorf("select %q: %w", b.Name, err)
	}

	typ, err := config.ParseSelectType(b.Type)
	if err != nil {
		return nil, fmt.Errorf("select %q: %w", b.Name, err)
	}

	s := &config.Select{
		Name:           b.Name,
		Options:        b.Options,
		Selected:       b.Selected,
		Type:           typ,
		ExternalFilter: b.ExternalFilter,
		Disabled:       b.Disabled,
	}

	if isExprDefined(ctx, b.Config, "config") {
		raw, err := constantValue(b.Config)
		if err != nil {
			return nil, fmt.Errorf("select %q: config: %w", b.Name, err)
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("select %q: config must be an object, got %T", b.Name, raw)
		}
		if s.Config, err = config.ListConfigFromMap(m); err != nil {
			return nil, fmt.Errorf("select %q: %w", b.Name, err)
		}
	}
	return s, nil
}

// translateData resolves a data block to its value. Relative file paths are
// resolved against dir, the directory of the defining file.
func (l *Loader) translateData(ctx context.Context, b *dataBlock, dir string) (*config.Data, error) {
	hasValue := isExprDefined(ctx, b.Value, "value")
	switch {
	case b.File != "" && hasValue:
		return nil, fmt.Errorf("data %q: file and value are mutually exclusive", b.Name)
	case b.File == "" && !hasValue:
		return nil, fmt.Errorf("data %q: one of file or value is required", b.Name)
	}

	if hasValue {
		v, err := constantValue(b.Value)
		if err != nil {
			return nil, fmt.Errorf("data %q: %w", b.Name, err)
		}
		return &config.Data{Name: b.Name, Value: v}, nil
	}

	path := b.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	v, err := ReadDataFile(path)
	if err != nil {
		return nil, fmt.Errorf("data %q: %w", b.Name, err)
	}
	ctxlog.FromContext(ctx).Debug("Loaded data file.", "name", b.Name, "path", path)
	return &config.Data{Name: b.Name, Source: path, Value: v}, nil
}

func (l *Loader) translateRemote(b *remoteBlock) (*config.Remote, error) {
	r := &config.Remote{
		Name:               b.Name,
		URL:                b.URL,
		Namespace:          b.Namespace,
		Event:              b.Event,
		Timeout:            defaultRemoteTimeout,
		InsecureSkipVerify: b.InsecureSkipVerify,
	}
	if r.Namespace == "" {
		r.Namespace = "/"
	}
	if r.Event == "" {
		r.Event = defaultRemoteEvent
	}
	if b.Timeout != "" {
		d, err := time.ParseDuration(b.Timeout)
		if err != nil {
			return nil, fmt.Errorf("remote %q: invalid timeout: %w", b.Name, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("remote %q: timeout must be positive", b.Name)
		}
		r.Timeout = d
	}
	return r, nil
}
