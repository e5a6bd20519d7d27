package binding

import (
	"context"
	"errors"
	"reflect"

	"github.com/vk/optbind/internal/config"
	"github.com/vk/optbind/internal/ctxlog"
	"github.com/vk/optbind/internal/evaluator"
	"github.com/vk/optbind/internal/fuzzy"
	"github.com/vk/optbind/internal/optexpr"
	"github.com/vk/optbind/internal/options"
	"github.com/vk/optbind/internal/projector"
)

// DefaultQueryVariable is the name the filter query is bound to when the
// collection expression is evaluated.
const DefaultQueryVariable = "query"

// Params configures a Controller.
type Params struct {
	// Expression is parsed unless Descriptor is set.
	Expression string
	Descriptor *optexpr.Descriptor

	Evaluator evaluator.Evaluator
	// Model is optional; without one the external value is always nil.
	Model Model

	ExternalFilter bool
	Type           config.SelectType
	Disabled       bool
	// Config is the consumer's partial configuration, merged over the
	// generated one.
	Config config.ListConfig

	// QueryVariable defaults to DefaultQueryVariable.
	QueryVariable string
}

// Request identifies one collection load.
type Request struct {
	Seq   uint64
	Query string
}

// Controller binds an external value to a projected option list. It is not
// safe for concurrent use, except for Fetch which reads no mutable state.
type Controller struct {
	ctx context.Context

	desc     *optexpr.Descriptor
	acc      *options.Accessor
	eval     evaluator.Evaluator
	model    Model
	external bool
	typ      config.SelectType
	disabled bool
	consumer config.ListConfig
	queryVar string

	selected *options.Entry
	query    string
	match    *fuzzy.Query
	seq      uint64
	proj     projector.Projection
}

// New compiles the options expression and derives the initial selection from
// the model. The collection is not evaluated. ctx is the context the
// callbacks of Config run with.
func New(ctx context.Context, p Params) (*Controller, error) {
	if p.Evaluator == nil {
		return nil, errors.New("binding: evaluator is required")
	}

	desc := p.Descriptor
	if desc == nil {
		var err error
		if desc, err = optexpr.Parse(p.Expression); err != nil {
			return nil, err
		}
	}

	typ := p.Type
	if typ == "" {
		typ = config.TypeButton
	}
	queryVar := p.QueryVariable
	if queryVar == "" {
		queryVar = DefaultQueryVariable
	}

	c := &Controller{
		ctx:      ctx,
		desc:     desc,
		acc:      options.Compile(desc, p.Evaluator),
		eval:     p.Evaluator,
		model:    p.Model,
		external: p.ExternalFilter,
		typ:      typ,
		disabled: p.Disabled,
		consumer: p.Config,
		queryVar: queryVar,
		match:    fuzzy.Parse(""),
	}
	if err := c.Sync(ctx); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Controller created.",
		"expr", desc.String(),
		"external_filter", c.external,
		"type", c.typ,
	)
	return c, nil
}

// Value returns the external value.
func (c *Controller) Value() any {
	if c.model == nil {
		return nil
	}
	return c.model.Get()
}

// Sync rebuilds the selection from the current external value. Call it after
// the model was changed behind the controller's back.
func (c *Controller) Sync(ctx context.Context) error {
	return c.derive(ctx, c.Value())
}

// SetValue writes v to the model and rebuilds the selection from it.
func (c *Controller) SetValue(ctx context.Context, v any) error {
	if c.model != nil {
		c.model.Set(v)
	}
	return c.derive(ctx, v)
}

// Change applies a pick from the list: the entry's original item is written
// to the model as is and the selection is rebuilt from it.
func (c *Controller) Change(ctx context.Context, entry options.Entry) error {
	ctxlog.FromContext(ctx).Debug("Selection changed.", "label", entry.Label)
	return c.SetValue(ctx, entry.OriginalModel)
}

func (c *Controller) derive(ctx context.Context, v any) error {
	if isNil(v) {
		c.selected = nil
		return nil
	}
	entry, err := c.acc.Entry(ctx, v)
	if err != nil {
		return err
	}
	c.selected = entry
	return nil
}

// Open evaluates and projects the collection. In external filter mode the
// current query is passed along; otherwise the query is empty.
func (c *Controller) Open(ctx context.Context) error {
	q := ""
	if c.external {
		q = c.query
	}
	ctxlog.FromContext(ctx).Debug("Opening list.", "query", q)
	return c.load(ctx, q)
}

// Filter records the filter query. In external filter mode the collection is
// re-evaluated with it; otherwise filtering is left to FilterFunc.
func (c *Controller) Filter(ctx context.Context, query string) error {
	c.query = query
	if !c.external {
		c.match = fuzzy.Parse(query)
		return nil
	}
	return c.load(ctx, query)
}

func (c *Controller) load(ctx context.Context, query string) error {
	req := c.Begin(query)
	items, err := c.Fetch(ctx, req)
	if err != nil {
		return err
	}
	_, err = c.Apply(ctx, req, items)
	return err
}

// Begin starts a load and makes it the only one whose result Apply accepts.
// In external filter mode query also becomes the current filter query.
func (c *Controller) Begin(query string) Request {
	c.seq++
	if c.external {
		c.query = query
	}
	return Request{Seq: c.seq, Query: query}
}

// Fetch evaluates the collection expression for req. It does not touch the
// controller's state.
func (c *Controller) Fetch(ctx context.Context, req Request) ([]any, error) {
	v, err := c.eval.Evaluate(ctx, c.desc.CollectionExpression, map[string]any{c.queryVar: req.Query})
	if err != nil {
		return nil, err
	}
	items, err := projector.ToItems(v)
	if err != nil {
		return nil, &evaluator.EvaluationError{Expression: c.desc.CollectionExpression, Err: err}
	}
	return items, nil
}

// Apply projects items as the result of req. It returns false without
// projecting when a newer request has been begun since.
func (c *Controller) Apply(ctx context.Context, req Request, items []any) (bool, error) {
	logger := ctxlog.FromContext(ctx)
	if req.Seq != c.seq {
		logger.Debug("Discarding superseded load.", "seq", req.Seq, "latest", c.seq)
		return false, nil
	}

	entries, err := projector.Project(ctx, items, c.acc)
	if err != nil {
		return false, err
	}
	c.proj.Set(req.Seq, entries)
	logger.Debug("Collection loaded.", "seq", req.Seq, "count", len(entries))
	return true, nil
}

// FilterFunc returns the predicate the list control filters entries with.
// It accepts everything in external filter mode.
func (c *Controller) FilterFunc() func(options.Entry) bool {
	if c.external {
		return func(options.Entry) bool { return true }
	}
	return func(e options.Entry) bool { return c.match.Match(e.Label) }
}

// Visible returns the entries the list should show, ranked by match quality
// in client-side filter mode.
func (c *Controller) Visible() []options.Entry {
	if c.external {
		return c.proj.Entries()
	}
	return fuzzy.Rank(c.proj.Entries(), c.query)
}

// Config returns the generated list configuration with the consumer's
// configuration merged on top.
func (c *Controller) Config() config.ListConfig {
	disabled := c.disabled
	generated := config.ListConfig{
		Type:     c.typ,
		Disabled: &disabled,
		Selected: c.Selected(),
		Filter:   &config.FilterConfig{Fn: c.FilterFunc()},
		OnOpen:   func() error { return c.Open(c.ctx) },
		OnFilter: func(q string) error { return c.Filter(c.ctx, q) },
		OnChange: func(e options.Entry) error { return c.Change(c.ctx, e) },
	}
	return config.Merge(generated, c.consumer)
}

// Selected returns a copy of the selected entry, nil when nothing is selected.
func (c *Controller) Selected() *options.Entry {
	if c.selected == nil {
		return nil
	}
	e := *c.selected
	return &e
}

// Entries returns the last projected entries.
func (c *Controller) Entries() []options.Entry { return c.proj.Entries() }

// Loaded reports whether the collection has been projected at least once.
func (c *Controller) Loaded() bool { return c.proj.Loaded() }

// Query returns the last filter query.
func (c *Controller) Query() string { return c.query }

// ExternalFilter reports whether filtering is delegated to the collection.
func (c *Controller) ExternalFilter() bool { return c.external }

// Disabled reports whether the list was configured as disabled.
func (c *Controller) Disabled() bool { return c.Config().IsDisabled() }

// Accessor returns the compiled accessor.
func (c *Controller) Accessor() *options.Accessor { return c.acc }

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
