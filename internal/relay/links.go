package relay

import "strings"

// EncodeLinkURL percent-encodes parentheses so a URL cannot prematurely
// close the surrounding [text](url) markdown link. Applied only at the
// point of embedding; the embed's own url field carries the plain URL.
func EncodeLinkURL(url string) string {
	url = strings.ReplaceAll(url, "(", "%28")
	return strings.ReplaceAll(url, ")", "%29")
}

// mdLink renders a markdown link with a paren-safe URL.
func mdLink(text, url string) string {
	return "[" + text + "](" + EncodeLinkURL(url) + ")"
}
