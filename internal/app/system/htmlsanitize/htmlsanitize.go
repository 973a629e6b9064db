// Package htmlsanitize strips markup from user-supplied text before it is
// stored. Review notes and reviewer feedback are rendered by several
// clients, so they are kept as plain text.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag. bluemonday policies are safe for concurrent use
// once built.
var strict = bluemonday.StrictPolicy()

// PlainText removes all HTML from s, decodes entities, and trims
// surrounding whitespace.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
