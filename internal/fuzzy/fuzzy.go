// Package fuzzy implements client-side filtering of option labels using the
// fzf matching algorithms and query syntax:
//
//	foo     fuzzy subsequence match
//	'foo    exact substring match
//	^foo    prefix match
//	foo$    suffix match
//	!foo    negation of any of the above
//	a b     all terms must match
//	a | b   at least one group must match
//
// Matching is case-insensitive unless a term contains an upper-case letter.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
	"github.com/vk/optbind/internal/options"
)

func init() {
	algo.Init("default")
}

type kind int

const (
	kindFuzzy kind = iota
	kindExact
	kindPrefix
	kindSuffix
)

type term struct {
	runes         []rune
	kind          kind
	negated       bool
	caseSensitive bool
}

// Query is a parsed filter query. A Query owns a scratch slab and must not be
// used from more than one goroutine at a time.
type Query struct {
	raw    string
	groups [][]term
	slab   *util.Slab
}

// Parse parses raw into a reusable query. An empty or blank query matches
// everything.
func Parse(raw string) *Query {
	q := &Query{raw: raw}
	for _, part := range strings.Split(strings.TrimSpace(raw), " | ") {
		var group []term
		for _, tok := range strings.Fields(part) {
			group = append(group, parseTerm(tok))
		}
		if len(group) > 0 {
			q.groups = append(q.groups, group)
		}
	}
	if len(q.groups) > 0 {
		q.slab = util.MakeSlab(100*1024, 2048)
	}
	return q
}

func parseTerm(tok string) term {
	t := term{kind: kindFuzzy}
	if len(tok) > 1 && tok[0] == '!' {
		t.negated = true
		tok = tok[1:]
	}
	switch {
	case len(tok) > 1 && tok[0] == '\'':
		t.kind, tok = kindExact, tok[1:]
	case len(tok) > 1 && tok[0] == '^':
		t.kind, tok = kindPrefix, tok[1:]
	case len(tok) > 1 && tok[len(tok)-1] == '$':
		t.kind, tok = kindSuffix, tok[:len(tok)-1]
	}

	t.caseSensitive = strings.IndexFunc(tok, unicode.IsUpper) >= 0
	if !t.caseSensitive {
		tok = strings.ToLower(tok)
	}
	t.runes = []rune(tok)
	return t
}

// String returns the raw query.
func (q *Query) String() string { return q.raw }

// Empty reports whether the query has no terms.
func (q *Query) Empty() bool { return len(q.groups) == 0 }

// Score scores candidate against the query. Higher is better.
func (q *Query) Score(candidate string) (int, bool) {
	if q.Empty() {
		return 0, true
	}

	best, matched := -1, false
	for _, group := range q.groups {
		if score, ok := q.scoreGroup(group, candidate); ok && score > best {
			best, matched = score, true
		}
	}
	return best, matched
}

// Match reports whether candidate satisfies the query.
func (q *Query) Match(candidate string) bool {
	_, ok := q.Score(candidate)
	return ok
}

func (q *Query) scoreGroup(group []term, candidate string) (int, bool) {
	total := 0
	for i := range group {
		score, ok := q.scoreTerm(&group[i], candidate)
		if !ok {
			return 0, false
		}
		total += score
	}
	return total, true
}

func (q *Query) scoreTerm(t *term, candidate string) (int, bool) {
	chars := util.ToChars([]byte(candidate))

	var match func(bool, bool, bool, *util.Chars, []rune, bool, *util.Slab) (algo.Result, *[]int)
	switch t.kind {
	case kindExact:
		match = algo.ExactMatchNaive
	case kindPrefix:
		match = algo.PrefixMatch
	case kindSuffix:
		match = algo.SuffixMatch
	default:
		match = algo.FuzzyMatchV2
	}

	result, _ := match(t.caseSensitive, false, true, &chars, t.runes, false, q.slab)
	matched := result.Start >= 0
	if t.negated {
		return 0, !matched
	}
	if !matched {
		return 0, false
	}
	return result.Score, true
}

// Predicate returns a function reporting whether an entry's label matches
// query.
func Predicate(query string) func(options.Entry) bool {
	q := Parse(query)
	return func(e options.Entry) bool {
		return q.Match(e.Label)
	}
}

// Rank returns the entries whose label matches query, best score first. Ties
// keep their original order. An empty query returns entries unchanged.
func Rank(entries []options.Entry, query string) []options.Entry {
	q := Parse(query)
	if q.Empty() {
		return entries
	}

	type scored struct {
		entry options.Entry
		score int
	}
	var hits []scored
	for _, e := range entries {
		if score, ok := q.Score(e.Label); ok {
			hits = append(hits, scored{entry: e, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]options.Entry, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.entry)
	}
	return out
}
