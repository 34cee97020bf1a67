package orchestration

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	h1Pattern      = regexp.MustCompile(`(?m)^# (.*)$`)
	h2Pattern      = regexp.MustCompile(`(?m)^## (.*)$`)
	boldPattern    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	newlinePattern = regexp.MustCompile(`\r?\n`)

	explanationPolicy = bluemonday.UGCPolicy()
)

// RenderMarkdown converts H1/H2 headers, bold spans and line breaks to HTML.
// Nothing else is recognised.
func RenderMarkdown(markdown string) string {
	html := h1Pattern.ReplaceAllString(markdown, "<h1>$1</h1>")
	html = h2Pattern.ReplaceAllString(html, "<h2>$1</h2>")
	html = boldPattern.ReplaceAllString(html, "<strong>$1</strong>")
	return newlinePattern.ReplaceAllString(html, "<br>")
}

// SanitizeHTML strips anything outside the user generated content policy.
func SanitizeHTML(html string) string {
	return explanationPolicy.Sanitize(html)
}
