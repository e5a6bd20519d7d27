package optexpr

import "strings"

// KeySource names the clause a descriptor derives entry keys from.
type KeySource int

const (
	// KeyIdentity uses the item itself as its key.
	KeyIdentity KeySource = iota
	// KeyExpression uses the left side of an `X as Y` clause.
	KeyExpression
	// KeyTrackBy uses the `track by` clause.
	KeyTrackBy
)

// String returns a human-readable name for the key source.
func (k KeySource) String() string {
	switch k {
	case KeyExpression:
		return "expression"
	case KeyTrackBy:
		return "track-by"
	default:
		return "identity"
	}
}

// Descriptor is the structured form of an options expression. It is produced
// once per expression string and never modified afterwards.
type Descriptor struct {
	// Source is the expression the descriptor was parsed from.
	Source string

	ItemVariableName     string
	CollectionExpression string

	// KeyExpression is only set for the `X as Y for X in ...` form.
	KeyExpression string
	// LabelExpression defaults to the item variable.
	LabelExpression string

	SelectedLabelExpression string
	TrackByExpression       string
}

// HasKey reports whether the expression carried an `X as Y` key clause.
func (d *Descriptor) HasKey() bool { return d.KeyExpression != "" }

// HasSelectedLabel reports whether a `select as` clause was present.
func (d *Descriptor) HasSelectedLabel() bool { return d.SelectedLabelExpression != "" }

// HasTrackBy reports whether a `track by` clause was present.
func (d *Descriptor) HasTrackBy() bool { return d.TrackByExpression != "" }

// KeySource returns the clause keys are derived from. A `track by` clause
// overrides a key expression when both are present.
func (d *Descriptor) KeySource() KeySource {
	switch {
	case d.HasTrackBy():
		return KeyTrackBy
	case d.HasKey():
		return KeyExpression
	default:
		return KeyIdentity
	}
}

// String renders the descriptor in canonical form. The `select as` clause is
// always rendered after the collection expression.
func (d *Descriptor) String() string {
	if d == nil {
		return ""
	}

	var sb strings.Builder
	if d.HasKey() {
		sb.WriteString(d.KeyExpression)
		sb.WriteString(" as ")
	}
	sb.WriteString(d.LabelExpression)
	sb.WriteString(" for ")
	sb.WriteString(d.ItemVariableName)
	sb.WriteString(" in ")
	sb.WriteString(d.CollectionExpression)
	if d.HasSelectedLabel() {
		sb.WriteString(" select as ")
		sb.WriteString(d.SelectedLabelExpression)
	}
	if d.HasTrackBy() {
		sb.WriteString(" track by ")
		sb.WriteString(d.TrackByExpression)
	}
	return sb.String()
}
