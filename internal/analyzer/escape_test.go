package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{`a\b`, `a\\b`},
		{"^x$", `\^x\$`},
		{"and/or", `and\/or`},
		{"[b]", `\[b\]`},
		{`\^`, `\\\^`},
		{"кошка/кот", `кошка\/кот`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestEscape_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		`\`,
		`\\`,
		`^/$[]\`,
		`The cat's [bracketed] price is $5/kg ^_^ \o/`,
		`\^already\$escaped\/looking`,
		"многоязычный ^текст$ / с [разметкой]",
	}

	for _, in := range inputs {
		assert.Equal(t, in, Unescape(Escape(in)), "round trip of %q", in)
	}
}

func TestUnescape_TrailingBackslash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `ab\`, Unescape(`a\b\`))
}
