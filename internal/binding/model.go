package binding

// Model holds the external value a controller is bound to.
type Model interface {
	Get() any
	Set(v any)
}

// ValueModel is a Model backed by a plain field.
type ValueModel struct {
	v any
}

// NewValueModel returns a model holding v.
func NewValueModel(v any) *ValueModel {
	return &ValueModel{v: v}
}

func (m *ValueModel) Get() any  { return m.v }
func (m *ValueModel) Set(v any) { m.v = v }
