package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeLinkURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no parens untouched",
			input:    "https://wiki.example.org/wiki/Main_Page",
			expected: "https://wiki.example.org/wiki/Main_Page",
		},
		{
			name:     "parens encoded",
			input:    "https://wiki.example.org/wiki/Foo_(bar)",
			expected: "https://wiki.example.org/wiki/Foo_%28bar%29",
		},
		{
			name:     "multiple parens",
			input:    "https://x/(a)(b)",
			expected: "https://x/%28a%29%28b%29",
		},
		{
			name:     "other reserved characters untouched",
			input:    "https://x/index.php?title=A&diff=0",
			expected: "https://x/index.php?title=A&diff=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EncodeLinkURL(tt.input))
		})
	}
}

func TestMdLink(t *testing.T) {
	link := mdLink("diff", "https://x/wiki/Foo_(bar)")
	assert.Equal(t, "[diff](https://x/wiki/Foo_%28bar%29)", link)
}
