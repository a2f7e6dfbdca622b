package wiki

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wikirelay/internal/config"
)

func newTestSite() *Site {
	return NewSite(config.WikiConfig{
		ServerURL:   "https://wiki.example.org",
		ArticlePath: "/wiki/$1",
		ScriptPath:  "/w",
	})
}

func TestEncodeTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "spaces become underscores",
			title:    "Main Page",
			expected: "Main_Page",
		},
		{
			name:     "namespace colon kept",
			title:    "User:Alice",
			expected: "User:Alice",
		},
		{
			name:     "subpage slash kept",
			title:    "Project:Policy/Archive 1",
			expected: "Project:Policy/Archive_1",
		},
		{
			name:     "parens kept",
			title:    "Go (language)",
			expected: "Go_(language)",
		},
		{
			name:     "question mark encoded",
			title:    "What? Why?",
			expected: "What%3F_Why%3F",
		},
		{
			name:     "ampersand encoded",
			title:    "AT&T",
			expected: "AT%26T",
		},
		{
			name:     "utf8 encoded per byte",
			title:    "Köln",
			expected: "K%C3%B6ln",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EncodeTitle(tt.title))
		})
	}
}

func TestSite_PageURL(t *testing.T) {
	site := newTestSite()
	assert.Equal(t, "https://wiki.example.org/wiki/Main_Page", site.PageURL("Main Page"))
}

func TestSite_PageURL_TrailingSlashNormalized(t *testing.T) {
	site := NewSite(config.WikiConfig{
		ServerURL:   "https://wiki.example.org/",
		ArticlePath: "/wiki/$1",
	})
	assert.Equal(t, "https://wiki.example.org/wiki/Sandbox", site.PageURL("Sandbox"))
}

func TestSite_IndexURL(t *testing.T) {
	site := newTestSite()

	assert.Equal(t,
		"https://wiki.example.org/w/index.php?title=Main_Page&action=history&curid=42",
		site.IndexURL("Main Page", "action=history&curid=42"))

	assert.Equal(t,
		"https://wiki.example.org/w/index.php?title=Sandbox",
		site.IndexURL("Sandbox", ""))
}

func TestSite_UserURL(t *testing.T) {
	site := newTestSite()
	assert.Equal(t, "https://wiki.example.org/wiki/User:Alice", site.UserURL("Alice"))
}

func TestSite_UploadURL(t *testing.T) {
	site := newTestSite()

	// md5("Photo.png") = 64d326...; the hashed directory levels come from
	// the first hex characters.
	url := site.uploadURL("Photo.png")
	assert.Regexp(t, `^https://wiki\.example\.org/w/images/[0-9a-f]/[0-9a-f]{2}/Photo\.png$`, url)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Photo.png", fileName("File:Photo.png"))
	assert.Equal(t, "My_Photo.png", fileName("File:My Photo.png"))
	assert.Equal(t, "Bare.png", fileName("Bare.png"))
}
