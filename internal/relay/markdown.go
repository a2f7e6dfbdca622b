package relay

import "strings"

// markdownSpecials are the chat-markdown control characters neutralized
// in free-text fields.
const markdownSpecials = "*_`~\\"

// EscapeMarkdown backslash-escapes markdown control characters in text.
// Already-escaped occurrences are un-escaped first so that re-processing
// never compounds backslashes: EscapeMarkdown is idempotent.
func EscapeMarkdown(text string) string {
	return escapePass(unescapePass(text))
}

func unescapePass(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) && strings.IndexByte(markdownSpecials, text[i+1]) >= 0 {
			b.WriteByte(text[i+1])
			i++
			continue
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

func escapePass(text string) string {
	var b strings.Builder
	b.Grow(len(text) * 2)
	for i := 0; i < len(text); i++ {
		if strings.IndexByte(markdownSpecials, text[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(text[i])
	}
	return b.String()
}
