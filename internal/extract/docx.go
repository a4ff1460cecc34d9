package extract

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/petrodeal/docgen-cli/internal/model"
)

var (
	wordTextPattern    = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	genericTagInterior = regexp.MustCompile(`>([^<>]+)<`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
)

// DocxText opens a DOCX archive and returns its visible text. Word stores
// text in w:t elements inside word/document.xml; when none are found the
// generic inter-tag text is used as a fallback, which tolerates templates
// produced by non-Word tooling.
func DocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrap(model.ErrUnreadableTemplate, "extract: open docx archive")
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", eris.Wrap(model.ErrUnreadableTemplate, "extract: open document.xml")
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", eris.Wrap(model.ErrUnreadableTemplate, "extract: read document.xml")
			}
			break
		}
	}
	if docXML == nil {
		return "", eris.Wrap(model.ErrUnreadableTemplate, "extract: no word/document.xml")
	}

	xml := string(docXML)
	var parts []string
	for _, m := range wordTextPattern.FindAllStringSubmatch(xml, -1) {
		if m[1] != "" {
			parts = append(parts, unescapeXML(m[1]))
		}
	}
	if len(parts) == 0 {
		for _, m := range genericTagInterior.FindAllStringSubmatch(xml, -1) {
			if t := strings.TrimSpace(m[1]); t != "" {
				parts = append(parts, unescapeXML(t))
			}
		}
	}

	text := whitespaceRun.ReplaceAllString(strings.Join(parts, " "), " ")
	return strings.TrimSpace(text), nil
}

// DocxPlaceholders extracts placeholder tokens from a DOCX archive.
func DocxPlaceholders(data []byte) ([]string, error) {
	text, err := DocxText(data)
	if err != nil {
		return nil, err
	}
	return Placeholders(text), nil
}

var xmlUnescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

func unescapeXML(s string) string {
	return xmlUnescaper.Replace(s)
}
