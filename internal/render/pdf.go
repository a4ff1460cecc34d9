package render

import (
	"bytes"
	"fmt"
	"strings"
)

// PDF page geometry, US Letter with one-inch margins.
const (
	pdfPageWidth  = 612
	pdfPageHeight = 792
	pdfMarginX    = 72
	pdfTopY       = 720
	pdfBottomY    = 72
	pdfTitleSize  = 16
	pdfBodySize   = 10
	pdfLineStep   = 16
)

var pdfTextEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// buildPDF emits a minimal but structurally valid PDF: one Helvetica font,
// one content stream per page, exact xref offsets. Long inputs paginate.
func buildPDF(title string, lines []string) []byte {
	pages := paginate(lines)

	// Object numbering is fixed up front: 1 catalog, 2 page tree, 3 font,
	// then a page/content object pair per page.
	const fontObj = 3
	firstPageObj := 4
	totalObjs := 3 + 2*len(pages)

	bodies := make([]string, totalObjs+1)
	var kids []string
	for i := range pages {
		pageObj := firstPageObj + 2*i
		kids = append(kids, fmt.Sprintf("%d 0 R", pageObj))
	}
	bodies[1] = "<< /Type /Catalog /Pages 2 0 R >>"
	bodies[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))
	bodies[fontObj] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"

	for i, pageLines := range pages {
		pageObj := firstPageObj + 2*i
		contentObj := pageObj + 1
		stream := contentStream(title, pageLines, i == 0)
		bodies[pageObj] = fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>",
			pdfPageWidth, pdfPageHeight, contentObj, fontObj)
		bodies[contentObj] = fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, totalObjs+1)
	for n := 1; n <= totalObjs; n++ {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, bodies[n])
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", totalObjs+1)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= totalObjs; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", totalObjs+1, xrefStart)
	return buf.Bytes()
}

// paginate splits lines into page-sized chunks. The first page loses a few
// lines to the title block.
func paginate(lines []string) [][]string {
	perPage := (pdfTopY - pdfBottomY) / pdfLineStep
	firstPage := perPage - 3
	if len(lines) == 0 {
		return [][]string{nil}
	}

	var pages [][]string
	capacity := firstPage
	for start := 0; start < len(lines); {
		end := start + capacity
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
		start = end
		capacity = perPage
	}
	return pages
}

func contentStream(title string, lines []string, withTitle bool) string {
	var b strings.Builder
	b.WriteString("BT\n")
	fmt.Fprintf(&b, "%d %d Td\n", pdfMarginX, pdfTopY)
	if withTitle {
		fmt.Fprintf(&b, "/F1 %d Tf\n(%s) Tj\n", pdfTitleSize, pdfTextEscaper.Replace(title))
		fmt.Fprintf(&b, "0 -%d Td\n", 3*pdfLineStep)
	}
	fmt.Fprintf(&b, "/F1 %d Tf\n", pdfBodySize)
	for _, line := range lines {
		fmt.Fprintf(&b, "(%s) Tj\n0 -%d Td\n", pdfTextEscaper.Replace(line), pdfLineStep)
	}
	b.WriteString("ET\n")
	return b.String()
}
