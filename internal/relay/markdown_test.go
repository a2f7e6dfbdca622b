package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "reverted vandalism",
			expected: "reverted vandalism",
		},
		{
			name:     "asterisks escaped",
			input:    "*bold* claim",
			expected: "\\*bold\\* claim",
		},
		{
			name:     "underscores escaped",
			input:    "snake_case_title",
			expected: "snake\\_case\\_title",
		},
		{
			name:     "backticks escaped",
			input:    "see `code`",
			expected: "see \\`code\\`",
		},
		{
			name:     "tildes escaped",
			input:    "~~strike~~",
			expected: "\\~\\~strike\\~\\~",
		},
		{
			name:     "backslash escaped",
			input:    `C:\temp`,
			expected: `C:\\temp`,
		},
		{
			name:     "mixed specials",
			input:    "a*b_c`d~e",
			expected: "a\\*b\\_c\\`d\\~e",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EscapeMarkdown(tt.input))
		})
	}
}

func TestEscapeMarkdown_Idempotent(t *testing.T) {
	inputs := []string{
		"*bold* and _italic_",
		"already \\*escaped\\*",
		"`code` with \\\\ backslashes",
		"plain text",
		"~mixed\\~ escapes*",
	}

	for _, input := range inputs {
		once := EscapeMarkdown(input)
		twice := EscapeMarkdown(once)
		assert.Equal(t, once, twice, "double escape changed %q", input)
	}
}

func TestEscapeMarkdown_NormalizesPartialEscapes(t *testing.T) {
	// A string escaped by an earlier pass must come out identical to the
	// same string escaped from scratch.
	raw := "mix of *raw* and \\_escaped\\_ text"
	assert.Equal(t, EscapeMarkdown(EscapeMarkdown(raw)), EscapeMarkdown(raw))
}
