package optexpr

import (
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// parser holds the lexed expression while the clauses are split apart.
type parser struct {
	src  string
	toks []token
}

// Parse turns an options expression into a Descriptor. It returns a
// *SyntaxError when the expression matches none of the supported forms.
func Parse(expr string) (*Descriptor, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, syntaxErr(expr, "", "expression is empty")
	}

	toks, err := scan(expr)
	if err != nil {
		return nil, err
	}

	p := &parser{src: expr, toks: toks}
	if anchor := p.findAnchor(); anchor >= 0 {
		return p.parseAnchored(anchor)
	}
	return p.parseBare()
}

// MustParse is like Parse but panics if the expression is invalid.
func MustParse(expr string) *Descriptor {
	d, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return d
}

// keyword reports whether the token at i is the bare word w at depth zero.
func (p *parser) keyword(i int, w string) bool {
	if i < 0 || i >= len(p.toks) {
		return false
	}
	t := p.toks[i]
	return t.depth == 0 && t.ident && t.text == w
}

// pair reports whether the tokens at i and i+1 form the two-word clause
// keyword `first second`.
func (p *parser) pair(i int, first, second string) bool {
	return p.keyword(i, first) && p.keyword(i+1, second)
}

// findAnchor returns the index of the first `for <ident> in` sequence at
// depth zero, or -1.
func (p *parser) findAnchor() int {
	for i := range p.toks {
		if !p.keyword(i, "for") || i+2 >= len(p.toks) {
			continue
		}
		v := p.toks[i+1]
		if v.depth == 0 && v.ident && p.keyword(i+2, "in") {
			return i
		}
	}
	return -1
}

// text returns the trimmed source between two byte offsets.
func (p *parser) text(from, to int) string {
	if from >= to {
		return ""
	}
	return strings.TrimSpace(p.src[from:to])
}

// span returns the trimmed source covered by toks[from:to].
func (p *parser) span(from, to int) string {
	if from >= to {
		return ""
	}
	return p.text(p.toks[from].start, p.toks[to-1].end)
}

// parseBare handles the `item in items [track by expr]` form.
func (p *parser) parseBare() (*Descriptor, error) {
	if len(p.toks) < 2 || !p.keyword(1, "in") {
		return nil, syntaxErr(p.src, p.src, `expected "<item> in <collection>" or a "for <item> in <collection>" clause`)
	}

	item := p.toks[0]
	if item.depth != 0 || !item.ident || !hclsyntax.ValidIdentifier(item.text) {
		return nil, syntaxErr(p.src, item.text, "item variable must be a single identifier")
	}

	d := &Descriptor{
		Source:           p.src,
		ItemVariableName: item.text,
		LabelExpression:  item.text,
	}
	if err := p.parseTail(d, 2, false); err != nil {
		return nil, err
	}
	return d, nil
}

// parseAnchored handles every form that carries a `for <item> in` anchor.
func (p *parser) parseAnchored(anchor int) (*Descriptor, error) {
	d := &Descriptor{
		Source:           p.src,
		ItemVariableName: p.toks[anchor+1].text,
	}

	head := anchor
	if head == 0 {
		return nil, syntaxErr(p.src, p.span(0, min(3, len(p.toks))), `missing label expression before "for"`)
	}
	for i := 0; i < head; i++ {
		if p.pair(i, "track", "by") {
			return nil, syntaxErr(p.src, p.span(i, anchor), `"track by" must be the last clause`)
		}
	}

	// A `select as` clause may precede the anchor, as in
	// `item.name select as item.fullText for item in options`.
	for i := 0; i < head; i++ {
		if !p.pair(i, "select", "as") {
			continue
		}
		d.SelectedLabelExpression = p.text(p.toks[i+1].end, p.toks[anchor].start)
		if d.SelectedLabelExpression == "" {
			return nil, syntaxErr(p.src, p.span(i, anchor), `"select as" requires an expression`)
		}
		head = i
		break
	}
	if head == 0 {
		return nil, syntaxErr(p.src, p.span(0, anchor), `missing label expression before "select as"`)
	}

	split := -1
	for i := 0; i < head; i++ {
		if p.keyword(i, "as") {
			split = i
			break
		}
	}

	if split >= 0 {
		d.KeyExpression = p.span(0, split)
		d.LabelExpression = p.span(split+1, head)
		if d.KeyExpression == "" || d.LabelExpression == "" {
			return nil, syntaxErr(p.src, p.span(0, head), `"as" needs an expression on both sides`)
		}
	} else {
		d.LabelExpression = p.span(0, head)
	}

	if err := p.parseTail(d, anchor+3, true); err != nil {
		return nil, err
	}
	return d, nil
}

// parseTail splits `<collection> [select as expr] [track by expr]` starting
// at token index from.
func (p *parser) parseTail(d *Descriptor, from int, allowSelect bool) error {
	selectAt, trackAt := -1, -1
	for i := from; i < len(p.toks); i++ {
		switch {
		case p.pair(i, "select", "as"):
			if !allowSelect {
				return syntaxErr(p.src, p.span(i, len(p.toks)), `"select as" is not allowed in the "<item> in <collection>" form`)
			}
			if selectAt >= 0 || d.HasSelectedLabel() {
				return syntaxErr(p.src, p.span(i, len(p.toks)), `duplicate "select as" clause`)
			}
			if trackAt >= 0 {
				return syntaxErr(p.src, p.span(trackAt, len(p.toks)), `"track by" must be the last clause`)
			}
			selectAt = i
		case p.pair(i, "track", "by"):
			if trackAt >= 0 {
				return syntaxErr(p.src, p.span(i, len(p.toks)), `duplicate "track by" clause`)
			}
			trackAt = i
		}
	}

	end := len(p.toks)
	if selectAt >= 0 {
		end = selectAt
	} else if trackAt >= 0 {
		end = trackAt
	}

	d.CollectionExpression = p.span(from, end)
	if d.CollectionExpression == "" {
		return syntaxErr(p.src, p.span(max(from-1, 0), len(p.toks)), "missing collection expression")
	}

	if selectAt >= 0 {
		stop := len(p.toks)
		if trackAt >= 0 {
			stop = trackAt
		}
		d.SelectedLabelExpression = p.span(selectAt+2, stop)
		if d.SelectedLabelExpression == "" {
			return syntaxErr(p.src, p.span(selectAt, stop), `"select as" requires an expression`)
		}
	}

	if trackAt >= 0 {
		d.TrackByExpression = p.span(trackAt+2, len(p.toks))
		if d.TrackByExpression == "" {
			return syntaxErr(p.src, p.span(trackAt, len(p.toks)), `"track by" requires an expression`)
		}
	}
	return nil
}
