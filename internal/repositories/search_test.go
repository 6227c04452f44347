package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"deploy", "deploy"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
		{"", ""},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, escapeLike(tc.in), "input %q", tc.in)
	}
}

func TestSearchPatternBlankQueries(t *testing.T) {
	for _, query := range []string{"", " ", "\t\n", "   "} {
		_, ok := searchPattern(query)
		require.False(t, ok, "query %q", query)
	}
}

// Edge whitespace is part of the match, not stripped from it.
func TestSearchPatternKeepsWhitespace(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"deploy", "%deploy%"},
		{" at ", "% at %"},
		{"50%", `%50\%%`},
	}

	for _, tc := range cases {
		pattern, ok := searchPattern(tc.in)
		require.True(t, ok, "query %q", tc.in)
		require.Equal(t, tc.want, pattern, "query %q", tc.in)
	}
}
