package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/optbind/internal/options"
)

func TestQuery_Match(t *testing.T) {
	testCases := []struct {
		query     string
		candidate string
		expected  bool
	}{
		{query: "", candidate: "anything", expected: true},
		{query: "   ", candidate: "anything", expected: true},
		{query: "abc", candidate: "a_b_c", expected: true},
		{query: "abc", candidate: "acb", expected: false},
		{query: "ABC", candidate: "abc", expected: false},
		{query: "abc", candidate: "ABC", expected: true},
		{query: "'bc", candidate: "abc", expected: true},
		{query: "'ac", candidate: "abc", expected: false},
		{query: "^ab", candidate: "abc", expected: true},
		{query: "^bc", candidate: "abc", expected: false},
		{query: "bc$", candidate: "abc", expected: true},
		{query: "ab$", candidate: "abc", expected: false},
		{query: "!xyz", candidate: "abc", expected: true},
		{query: "!abc", candidate: "abc", expected: false},
		{query: "a c", candidate: "abc", expected: true},
		{query: "a z", candidate: "abc", expected: false},
		{query: "z | b", candidate: "abc", expected: true},
		{query: "z | y", candidate: "abc", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.query+"/"+tc.candidate, func(t *testing.T) {
			assert.Equal(t, tc.expected, Parse(tc.query).Match(tc.candidate))
		})
	}
}

func TestPredicate(t *testing.T) {
	pred := Predicate("ali")
	assert.True(t, pred(options.Entry{Label: "Alice"}))
	assert.False(t, pred(options.Entry{Label: "Bob"}))
}

func TestRank(t *testing.T) {
	entries := []options.Entry{
		{Key: 1, Label: "xaxbxc"},
		{Key: 2, Label: "zzz"},
		{Key: 3, Label: "abc"},
	}

	ranked := Rank(entries, "abc")
	keys := make([]any, 0, len(ranked))
	for _, e := range ranked {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []any{3, 1}, keys)

	assert.Equal(t, entries, Rank(entries, ""))
}
