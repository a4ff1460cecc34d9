// Package render substitutes resolved placeholder values into a template and
// emits the requested output encodings. Each encoding renders independently;
// one failing never blocks the others.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"

	"github.com/petrodeal/docgen-cli/internal/extract"
	"github.com/petrodeal/docgen-cli/internal/model"
)

// DefaultMaxTemplateBytes bounds template input size.
const DefaultMaxTemplateBytes = 20 << 20

// Renderer turns template content plus resolutions into encoded documents.
type Renderer struct {
	maxTemplateBytes int64
}

// New builds a Renderer. Non-positive maxTemplateBytes falls back to the
// default.
func New(maxTemplateBytes int64) *Renderer {
	if maxTemplateBytes <= 0 {
		maxTemplateBytes = DefaultMaxTemplateBytes
	}
	return &Renderer{maxTemplateBytes: maxTemplateBytes}
}

// docxSignature is the zip magic a structured template starts with.
var docxSignature = []byte("PK")

func isDocx(content []byte) bool {
	return len(content) >= 4 && bytes.HasPrefix(content, docxSignature)
}

// Render produces one encoding of the filled template. Failures wrap
// ErrRenderFailed so the pipeline can isolate them per encoding.
func (r *Renderer) Render(tmpl *model.Template, content []byte, resolutions []model.Resolution, enc model.Encoding) ([]byte, error) {
	if !model.KnownEncoding(enc) {
		return nil, eris.Wrapf(model.ErrRenderFailed, "unknown encoding %q", enc)
	}
	if int64(len(content)) > r.maxTemplateBytes {
		return nil, eris.Wrapf(model.ErrRenderFailed, "template exceeds %d bytes", r.maxTemplateBytes)
	}

	out, err := r.render(tmpl, content, resolutions, enc)
	if err != nil {
		return nil, eris.Wrapf(model.ErrRenderFailed, "%s: %s", enc, err.Error())
	}
	return out, nil
}

func (r *Renderer) render(tmpl *model.Template, content []byte, resolutions []model.Resolution, enc model.Encoding) ([]byte, error) {
	switch enc {
	case model.EncodingDocx:
		if isDocx(content) {
			return fillDocxTemplate(content, resolutions)
		}
		filled := Substitute(string(content), resolutions, nil)
		return markupToDocx(filled)

	case model.EncodingHTML:
		if isDocx(content) {
			text, err := extract.DocxText(content)
			if err != nil {
				return nil, err
			}
			filled := Substitute(text, resolutions, nil)
			return []byte(htmlDocument(tmpl.Title, textToMarkup(filled))), nil
		}
		filled := Substitute(string(content), resolutions, nil)
		if strings.Contains(strings.ToLower(filled), "<html") {
			return []byte(filled), nil
		}
		return []byte(htmlDocument(tmpl.Title, filled)), nil

	case model.EncodingPDF:
		lines, err := r.plainLines(content, resolutions)
		if err != nil {
			return nil, err
		}
		return buildPDF(tmpl.Title, lines), nil
	}
	return nil, eris.Errorf("unknown encoding %q", enc)
}

// plainLines reduces the filled template to text lines for the PDF builder.
func (r *Renderer) plainLines(content []byte, resolutions []model.Resolution) ([]string, error) {
	var text string
	if isDocx(content) {
		extracted, err := extract.DocxText(content)
		if err != nil {
			return nil, err
		}
		text = Substitute(extracted, resolutions, nil)
	} else {
		filled := Substitute(string(content), resolutions, nil)
		text = markupToText(filled)
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// markupToText flattens markup into newline-separated block text. Plain text
// input passes through unchanged.
func markupToText(markup string) string {
	if !strings.Contains(markup, "<") {
		return markup
	}
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3", "p", "li", "tr", "div":
				if txt := strings.TrimSpace(collapseSpace(textContent(n))); txt != "" {
					b.WriteString(txt)
					b.WriteString("\n")
				}
				return
			case "script", "style", "head":
				return
			}
		}
		if n.Type == html.TextNode && n.Parent != nil && n.Parent.Data == "body" {
			if txt := strings.TrimSpace(n.Data); txt != "" {
				b.WriteString(txt)
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if b.Len() == 0 {
		return collapseSpace(textContent(doc))
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// textToMarkup wraps plain text lines in paragraph tags.
func textToMarkup(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(line))
		}
	}
	return b.String()
}

// htmlDocument wraps body markup in a full print-ready page.
func htmlDocument(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>%s</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; line-height: 1.6; color: #333; }
h1, h2 { color: #0066cc; }
h2 { border-bottom: 1px solid #ddd; padding-bottom: 5px; }
table { border-collapse: collapse; width: 100%%; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #f8f9fa; }
</style>
</head>
<body>
%s
</body>
</html>
`, html.EscapeString(title), body)
}
