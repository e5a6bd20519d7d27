// Package options compiles a parsed options expression into the functions
// that derive an entry's key, label and selected label from a single item.
package options

import (
	"context"
	"fmt"

	"github.com/vk/optbind/internal/evaluator"
	"github.com/vk/optbind/internal/optexpr"
)

// Entry is one selectable row. OriginalModel is the source item itself; the
// other fields are derived from it.
type Entry struct {
	Key           any    `json:"key" yaml:"key"`
	Label         string `json:"label" yaml:"label"`
	SelectedLabel string `json:"selectedLabel" yaml:"selectedLabel"`
	OriginalModel any    `json:"originalModel" yaml:"originalModel"`
}

// Accessor derives entry fields from items. It holds no state besides the
// descriptor and evaluator it was compiled from; nothing is cached.
type Accessor struct {
	desc *optexpr.Descriptor
	eval evaluator.Evaluator
}

// Compile binds a descriptor to an evaluator.
func Compile(desc *optexpr.Descriptor, eval evaluator.Evaluator) *Accessor {
	return &Accessor{desc: desc, eval: eval}
}

// Descriptor returns the descriptor the accessor was compiled from.
func (a *Accessor) Descriptor() *optexpr.Descriptor { return a.desc }

// OptionVariableName is the identifier items are bound to in sub-expressions.
func (a *Accessor) OptionVariableName() string { return a.desc.ItemVariableName }

func (a *Accessor) locals(item any) map[string]any {
	return map[string]any{a.desc.ItemVariableName: item}
}

// Key returns the entry key for item: the track-by expression if present,
// else the key expression, else the item itself.
func (a *Accessor) Key(ctx context.Context, item any) (any, error) {
	switch a.desc.KeySource() {
	case optexpr.KeyTrackBy:
		return a.eval.Evaluate(ctx, a.desc.TrackByExpression, a.locals(item))
	case optexpr.KeyExpression:
		return a.eval.Evaluate(ctx, a.desc.KeyExpression, a.locals(item))
	default:
		return item, nil
	}
}

// Label evaluates the label expression for item.
func (a *Accessor) Label(ctx context.Context, item any) (string, error) {
	v, err := a.eval.Evaluate(ctx, a.desc.LabelExpression, a.locals(item))
	if err != nil {
		return "", err
	}
	return text(v), nil
}

// SelectedLabel evaluates the `select as` expression for item, falling back
// to Label when the expression has none.
func (a *Accessor) SelectedLabel(ctx context.Context, item any) (string, error) {
	if !a.desc.HasSelectedLabel() {
		return a.Label(ctx, item)
	}
	v, err := a.eval.Evaluate(ctx, a.desc.SelectedLabelExpression, a.locals(item))
	if err != nil {
		return "", err
	}
	return text(v), nil
}

// Entry derives a complete entry from a single item. The label expression is
// evaluated once even when it doubles as the selected label.
func (a *Accessor) Entry(ctx context.Context, item any) (*Entry, error) {
	key, err := a.Key(ctx, item)
	if err != nil {
		return nil, err
	}
	label, err := a.Label(ctx, item)
	if err != nil {
		return nil, err
	}
	selected := label
	if a.desc.HasSelectedLabel() {
		if selected, err = a.SelectedLabel(ctx, item); err != nil {
			return nil, err
		}
	}
	return &Entry{Key: key, Label: label, SelectedLabel: selected, OriginalModel: item}, nil
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
