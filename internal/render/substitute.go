package render

import (
	"regexp"
	"strings"

	"github.com/petrodeal/docgen-cli/internal/model"
)

// tokenPatterns compiles the four placeholder syntaxes for one token.
// Interior whitespace is tolerated and matching is case-insensitive, so
// `{{ Vessel Name }}` and `{{vessel name}}` both hit the same resolution.
func tokenPatterns(token string) []*regexp.Regexp {
	q := regexp.QuoteMeta(token)
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)\{\{\s*` + q + `\s*\}\}`),
		regexp.MustCompile(`(?i)\$\{\s*` + q + `\s*\}`),
		regexp.MustCompile(`(?i)\{\s*` + q + `\s*\}`),
		regexp.MustCompile(`(?i)\[\s*` + q + `\s*\]`),
	}
}

// substitutionValue is what a token is replaced with. Tokens without a usable
// value become a bracketed literal so the gap stays visible in the output.
func substitutionValue(res model.Resolution) string {
	if !res.Resolved() || strings.TrimSpace(res.Value) == "" {
		return "[" + res.Placeholder + "]"
	}
	return res.Value
}

// Substitute replaces every occurrence of every resolved placeholder in
// content, trying all four syntaxes per token. The escape function is applied
// to each substituted value; pass nil for plain text targets.
func Substitute(content string, resolutions []model.Resolution, escape func(string) string) string {
	for _, res := range resolutions {
		value := substitutionValue(res)
		if escape != nil {
			value = escape(value)
		}
		for _, pat := range tokenPatterns(res.Placeholder) {
			content = pat.ReplaceAllLiteralString(content, value)
		}
	}
	return content
}
