package wiki

import (
	"strings"

	"wikirelay/internal/config"
)

// Site builds canonical URLs for the observed wiki. Values are an
// immutable snapshot taken at startup.
type Site struct {
	serverURL   string
	articlePath string
	scriptPath  string
}

func NewSite(cfg config.WikiConfig) *Site {
	articlePath := cfg.ArticlePath
	if articlePath == "" {
		articlePath = "/wiki/$1"
	}
	return &Site{
		serverURL:   strings.TrimRight(cfg.ServerURL, "/"),
		articlePath: articlePath,
		scriptPath:  strings.TrimRight(cfg.ScriptPath, "/"),
	}
}

// PageURL is the canonical article URL for a title, e.g.
// https://wiki.example/wiki/Main_Page.
func (s *Site) PageURL(title string) string {
	return s.serverURL + strings.Replace(s.articlePath, "$1", EncodeTitle(title), 1)
}

// IndexURL is the index.php URL for a title with extra query parameters,
// used for history and diff views.
func (s *Site) IndexURL(title, query string) string {
	u := s.serverURL + s.scriptPath + "/index.php?title=" + EncodeTitle(title)
	if query != "" {
		u += "&" + query
	}
	return u
}

// UserURL is the user page URL for a performer name.
func (s *Site) UserURL(name string) string {
	return s.PageURL("User:" + name)
}

// EncodeTitle converts a display title to its URL form: spaces become
// underscores and reserved characters are percent-encoded, while the
// characters MediaWiki leaves readable in titles (:, /, and friends)
// stay as-is.
func EncodeTitle(title string) string {
	title = strings.ReplaceAll(title, " ", "_")

	var b strings.Builder
	for i := 0; i < len(title); i++ {
		c := title[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case strings.IndexByte("_:/.-~!$()*,;@", c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteString(percentEncode(c))
		}
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func percentEncode(c byte) string {
	return string([]byte{'%', upperhex[c>>4], upperhex[c&0xf]})
}
