package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// PlainText reduces markup to readable text for meta tags. It is never
// applied to post content, which is served exactly as stored.
func PlainText(input string) string {
	text := html.UnescapeString(stripPolicy.Sanitize(input))
	return strings.Join(strings.Fields(text), " ")
}

// Excerpt is PlainText cut to at most n runes, ending with an ellipsis when cut.
func Excerpt(input string, n int) string {
	text := PlainText(input)
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
