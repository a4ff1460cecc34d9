// Package extract pulls placeholder tokens out of template content. It
// understands raw markup text and DOCX archives.
package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/petrodeal/docgen-cli/internal/model"
)

// Placeholder syntaxes recognized in template text. Double braces run before
// single braces so {{name}} is claimed whole; the single-brace capture of a
// double-brace token includes a brace and fails token validation anyway.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\{\{([^{}]+)\}\}`),
	regexp.MustCompile(`\$\{([^{}]+)\}`),
	regexp.MustCompile(`\{([^{}]+)\}`),
	regexp.MustCompile(`\[([^\[\]]+)\]`),
}

// Placeholders extracts the distinct placeholder tokens from text. Tokens are
// deduplicated case-insensitively; the first-seen spelling and order are
// preserved.
func Placeholders(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, pat := range placeholderPatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			token := strings.TrimSpace(m[1])
			if !model.ValidToken(token) {
				continue
			}
			key := strings.ToLower(token)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, token)
		}
	}
	return out
}

// Extract dispatches on content shape: zip-signed bytes are treated as a
// DOCX archive, anything else as raw markup text.
func Extract(content []byte) ([]string, error) {
	if bytes.HasPrefix(content, []byte("PK")) {
		return DocxPlaceholders(content)
	}
	return Placeholders(string(content)), nil
}
