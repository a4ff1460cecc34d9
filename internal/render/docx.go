package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"

	"github.com/petrodeal/docgen-cli/internal/model"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string { return xmlEscaper.Replace(s) }

// fillDocxTemplate substitutes placeholders inside an uploaded DOCX: the zip
// is rewritten with a modified word/document.xml and every other entry copied
// through untouched. Values are XML-escaped before insertion.
func fillDocxTemplate(data []byte, resolutions []model.Resolution) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrap(model.ErrUnreadableTemplate, err.Error())
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	found := false
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, eris.Wrapf(err, "render: open zip entry %s", f.Name)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, eris.Wrapf(err, "render: read zip entry %s", f.Name)
		}

		if f.Name == "word/document.xml" {
			found = true
			content = []byte(Substitute(string(content), resolutions, escapeXML))
		}

		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, eris.Wrapf(err, "render: write zip entry %s", f.Name)
		}
		if _, err := w.Write(content); err != nil {
			return nil, eris.Wrapf(err, "render: write zip entry %s", f.Name)
		}
	}
	if !found {
		return nil, eris.Wrap(model.ErrUnreadableTemplate, "word/document.xml missing")
	}
	if err := zw.Close(); err != nil {
		return nil, eris.Wrap(err, "render: finalize docx")
	}
	return buf.Bytes(), nil
}

// markupToDocx converts filled markup into a fresh DOCX: h1-h3 become styled
// headings, p/strong/em become runs, ul/li become bulleted paragraphs and
// table becomes a bordered grid with a shaded header row. Element order is
// preserved.
func markupToDocx(markup string) ([]byte, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, eris.Wrap(err, "render: parse markup")
	}

	var body strings.Builder
	walkMarkup(doc, &body)
	if body.Len() == 0 {
		paragraph(&body, "", strings.TrimSpace(textContent(doc)))
	}
	return packageDocx(body.String())
}

func walkMarkup(n *html.Node, body *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1":
			paragraph(body, "Heading1", textContent(n))
			return
		case "h2":
			paragraph(body, "Heading2", textContent(n))
			return
		case "h3":
			paragraph(body, "Heading3", textContent(n))
			return
		case "p", "div":
			if txt := strings.TrimSpace(textContent(n)); txt != "" {
				styledParagraph(body, inlineRuns(n))
			}
			return
		case "li":
			paragraph(body, "", "• "+strings.TrimSpace(textContent(n)))
			return
		case "table":
			writeTable(body, n)
			return
		case "hr":
			paragraph(body, "", strings.Repeat("─", 50))
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkMarkup(c, body)
	}
}

// inlineRuns flattens an element's children into styled runs, keeping bold
// and italic from strong/b and em/i wrappers.
func inlineRuns(n *html.Node) []docxRun {
	var runs []docxRun
	var walk func(node *html.Node, bold, italic bool)
	walk = func(node *html.Node, bold, italic bool) {
		if node.Type == html.TextNode {
			if txt := strings.TrimSpace(node.Data); txt != "" {
				runs = append(runs, docxRun{text: txt, bold: bold, italic: italic})
			}
			return
		}
		b, i := bold, italic
		switch node.Data {
		case "strong", "b":
			b = true
		case "em", "i":
			i = true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c, b, i)
		}
	}
	walk(n, false, false)
	return runs
}

type docxRun struct {
	text   string
	bold   bool
	italic bool
}

func paragraph(body *strings.Builder, style, text string) {
	body.WriteString("<w:p>")
	if style != "" {
		fmt.Fprintf(body, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, style)
	}
	writeRun(body, docxRun{text: text})
	body.WriteString("</w:p>")
}

func styledParagraph(body *strings.Builder, runs []docxRun) {
	body.WriteString("<w:p>")
	for i, r := range runs {
		if i > 0 {
			r.text = " " + r.text
		}
		writeRun(body, r)
	}
	body.WriteString("</w:p>")
}

func writeRun(body *strings.Builder, r docxRun) {
	body.WriteString("<w:r>")
	if r.bold || r.italic {
		body.WriteString("<w:rPr>")
		if r.bold {
			body.WriteString("<w:b/>")
		}
		if r.italic {
			body.WriteString("<w:i/>")
		}
		body.WriteString("</w:rPr>")
	}
	fmt.Fprintf(body, `<w:t xml:space="preserve">%s</w:t>`, escapeXML(r.text))
	body.WriteString("</w:r>")
}

func writeTable(body *strings.Builder, table *html.Node) {
	body.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/>` +
		`<w:tblBorders><w:top w:val="single" w:sz="4"/><w:left w:val="single" w:sz="4"/>` +
		`<w:bottom w:val="single" w:sz="4"/><w:right w:val="single" w:sz="4"/>` +
		`<w:insideH w:val="single" w:sz="4"/><w:insideV w:val="single" w:sz="4"/></w:tblBorders></w:tblPr>`)

	firstRow := true
	var walkRows func(*html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			body.WriteString("<w:tr>")
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
					continue
				}
				body.WriteString("<w:tc><w:tcPr>")
				if firstRow || c.Data == "th" {
					body.WriteString(`<w:shd w:val="clear" w:fill="D9D9D9"/>`)
				}
				body.WriteString("</w:tcPr>")
				cell := docxRun{text: strings.TrimSpace(textContent(c)), bold: firstRow || c.Data == "th"}
				body.WriteString("<w:p>")
				writeRun(body, cell)
				body.WriteString("</w:p></w:tc>")
			}
			body.WriteString("</w:tr>")
			firstRow = false
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkRows(c)
		}
	}
	walkRows(table)
	body.WriteString("</w:tbl>")
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:rPr><w:b/><w:sz w:val="28"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:rPr><w:b/><w:sz w:val="24"/></w:rPr></w:style>
</w:styles>`

// packageDocx wraps a document body in the minimal OPC parts a DOCX needs.
func packageDocx(body string) ([]byte, error) {
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRootRels},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/document.xml", documentXML},
		{"word/styles.xml", docxStyles},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, eris.Wrapf(err, "render: create %s", p.name)
		}
		if _, err := io.WriteString(w, p.content); err != nil {
			return nil, eris.Wrapf(err, "render: write %s", p.name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, eris.Wrap(err, "render: finalize docx")
	}
	return buf.Bytes(), nil
}
