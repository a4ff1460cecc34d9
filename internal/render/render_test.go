package render

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrodeal/docgen-cli/internal/model"
)

func resolved(placeholder, value string) model.Resolution {
	return model.Resolution{
		Placeholder: placeholder,
		Value:       value,
		Tier:        model.TierAlias,
		Confidence:  100,
	}
}

func unresolved(placeholder string) model.Resolution {
	return model.Resolution{Placeholder: placeholder, Tier: model.TierUnresolved}
}

func TestSubstitute_AllSyntaxes(t *testing.T) {
	content := "a {{vessel name}} b ${vessel name} c {vessel name} d [vessel name]"
	out := Substitute(content, []model.Resolution{resolved("vessel name", "MT Altair")}, nil)
	assert.Equal(t, "a MT Altair b MT Altair c MT Altair d MT Altair", out)
}

func TestSubstitute_CaseAndWhitespaceInsensitive(t *testing.T) {
	content := "{{ Vessel Name }} and {{VESSEL NAME}}"
	out := Substitute(content, []model.Resolution{resolved("vessel name", "MT Altair")}, nil)
	assert.Equal(t, "MT Altair and MT Altair", out)
}

func TestSubstitute_UnresolvedBecomesBracketedLiteral(t *testing.T) {
	out := Substitute("sign here: {{witness}}", []model.Resolution{unresolved("witness")}, nil)
	assert.Equal(t, "sign here: [witness]", out)
}

func TestSubstitute_EscapeApplied(t *testing.T) {
	out := Substitute("{{owner}}", []model.Resolution{resolved("owner", "Smith & Sons")}, escapeXML)
	assert.Equal(t, "Smith &amp; Sons", out)
}

// buildDocx assembles an in-memory DOCX holding the given document.xml body.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	documentXML := `<?xml version="1.0"?><w:document><w:body>` + body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"word/document.xml":   documentXML,
		"[Content_Types].xml": `<Types/>`,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readZipEntry(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(content)
	}
	t.Fatalf("entry %s not found", name)
	return ""
}

func TestRender_DocxPassthroughSubstitutes(t *testing.T) {
	tmpl := &model.Template{Title: "Charter Party"}
	data := buildDocx(t, "Vessel: {{vessel name}}", "Owner: {{owner}}")
	r := New(0)

	out, err := r.Render(tmpl, data, []model.Resolution{
		resolved("vessel name", "MT Altair"),
		resolved("owner", "Smith & Sons"),
	}, model.EncodingDocx)
	require.NoError(t, err)

	doc := readZipEntry(t, out, "word/document.xml")
	assert.Contains(t, doc, "Vessel: MT Altair")
	assert.Contains(t, doc, "Owner: Smith &amp; Sons")
	// untouched entries survive the rewrite
	assert.Equal(t, "<Types/>", readZipEntry(t, out, "[Content_Types].xml"))
}

func TestRender_DocxRejectsZipWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("mimetype")
	require.NoError(t, err)
	_, err = w.Write([]byte("application/epub+zip"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r := New(0)
	_, err = r.Render(&model.Template{}, buf.Bytes(), nil, model.EncodingDocx)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRenderFailed)
}

func TestRender_MarkupToDocx(t *testing.T) {
	markup := `<h1>Charter Party</h1><p>Vessel: <strong>{{vessel name}}</strong></p>
<ul><li>first clause</li><li>second clause</li></ul>
<table><tr><th>Field</th><th>Value</th></tr><tr><td>Port</td><td>{{port}}</td></tr></table>`
	r := New(0)

	out, err := r.Render(&model.Template{Title: "Charter Party"}, []byte(markup), []model.Resolution{
		resolved("vessel name", "MT Altair"),
		resolved("port", "Rotterdam"),
	}, model.EncodingDocx)
	require.NoError(t, err)

	doc := readZipEntry(t, out, "word/document.xml")
	assert.Contains(t, doc, `<w:pStyle w:val="Heading1"/>`)
	assert.Contains(t, doc, "Charter Party")
	assert.Contains(t, doc, "MT Altair")
	assert.Contains(t, doc, "• first clause")
	assert.Contains(t, doc, "<w:tbl>")
	assert.Contains(t, doc, "Rotterdam")
	// header-row shading marks the table header
	assert.Contains(t, doc, `w:fill="D9D9D9"`)
}

func TestRender_HTMLWrapsMarkupFragment(t *testing.T) {
	r := New(0)
	out, err := r.Render(&model.Template{Title: "Bill of Lading"},
		[]byte("<p>Vessel: {{vessel name}}</p>"),
		[]model.Resolution{resolved("vessel name", "MT Altair")},
		model.EncodingHTML)
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "<title>Bill of Lading</title>")
	assert.Contains(t, page, "<p>Vessel: MT Altair</p>")
}

func TestRender_HTMLFullDocumentPassesThrough(t *testing.T) {
	r := New(0)
	content := "<html><body><p>{{vessel name}}</p></body></html>"
	out, err := r.Render(&model.Template{}, []byte(content),
		[]model.Resolution{resolved("vessel name", "MT Altair")}, model.EncodingHTML)
	require.NoError(t, err)

	assert.Equal(t, "<html><body><p>MT Altair</p></body></html>", string(out))
}

func TestRender_HTMLFromDocx(t *testing.T) {
	r := New(0)
	data := buildDocx(t, "Vessel: {{vessel name}}")
	out, err := r.Render(&model.Template{Title: "Charter Party"}, data,
		[]model.Resolution{resolved("vessel name", "MT Altair")}, model.EncodingHTML)
	require.NoError(t, err)

	assert.Contains(t, string(out), "Vessel: MT Altair")
	assert.Contains(t, string(out), "<title>Charter Party</title>")
}

func TestRender_PDF(t *testing.T) {
	r := New(0)
	out, err := r.Render(&model.Template{Title: "Charter Party"},
		[]byte("<p>Vessel: {{vessel name}}</p><p>Port: {{port}}</p>"),
		[]model.Resolution{
			resolved("vessel name", "MT Altair (Panama)"),
			resolved("port", "Rotterdam"),
		}, model.EncodingPDF)
	require.NoError(t, err)

	pdf := string(out)
	assert.True(t, strings.HasPrefix(pdf, "%PDF-1.4"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(pdf), "%%EOF"))
	assert.Contains(t, pdf, "(Charter Party) Tj")
	// parentheses in values are escaped inside the content stream
	assert.Contains(t, pdf, `MT Altair \(Panama\)`)
	assert.Contains(t, pdf, "/Count 1")
}

func TestRender_PDFPaginatesLongDocuments(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString("<p>clause line</p>")
	}
	r := New(0)
	out, err := r.Render(&model.Template{Title: "Long"}, []byte(b.String()), nil, model.EncodingPDF)
	require.NoError(t, err)

	assert.Contains(t, string(out), "/Count 4")
}

func TestRender_UnknownEncoding(t *testing.T) {
	r := New(0)
	_, err := r.Render(&model.Template{}, []byte("x"), nil, model.Encoding("rtf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRenderFailed)
}

func TestRender_OversizeTemplate(t *testing.T) {
	r := New(16)
	_, err := r.Render(&model.Template{}, make([]byte, 64), nil, model.EncodingHTML)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRenderFailed)
}
