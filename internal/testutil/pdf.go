// Package testutil builds small in-memory PDF and PPTX documents for tests.
package testutil

import (
	"bytes"
	"fmt"
	"strings"
)

// PDFLine is one line of text drawn at (X, Y) in points.
type PDFLine struct {
	Text string
	Size float64
	Bold bool
	X, Y float64
}

// PDFPage describes one page: image XObjects drawn first, then the lines.
type PDFPage struct {
	Images int
	Lines  []PDFLine
	// Raw, when set, replaces the generated content stream.
	Raw string
}

// BuildPDF assembles an uncompressed PDF with a valid cross-reference table.
// Regular text uses /Helvetica, bold text /Helvetica-Bold.
func BuildPDF(pages []PDFPage) []byte {
	const (
		catalogID = 1
		pagesID   = 2
		fontID    = 3
		boldID    = 4
		imageID   = 5
		firstPage = 6
	)

	objs := map[int]string{
		fontID:  "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		boldID:  "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>",
		imageID: "<< /Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8 /Length 1 >>\nstream\n\x00\nendstream",
	}

	var kids []string
	for i, p := range pages {
		pageID := firstPage + 2*i
		contentID := pageID + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageID))

		objs[pageID] = fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 %d 0 R /F2 %d 0 R >> /XObject << /Im1 %d 0 R >> >> "+
				"/Contents %d 0 R >>",
			pagesID, fontID, boldID, imageID, contentID)

		content := p.Raw
		if content == "" {
			content = pageContent(p)
		}
		objs[contentID] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
	}
	objs[catalogID] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesID)
	objs[pagesID] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	count := firstPage + 2*len(pages)
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, count)
	for id := 1; id < count; id++ {
		offsets[id] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", id, objs[id])
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", count)
	buf.WriteString("0000000000 65535 f \n")
	for id := 1; id < count; id++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[id])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", count, catalogID, xref)
	return buf.Bytes()
}

func pageContent(p PDFPage) string {
	var sb strings.Builder
	for i := 0; i < p.Images; i++ {
		fmt.Fprintf(&sb, "q 50 0 0 50 %d 100 cm /Im1 Do Q\n", 100+60*i)
	}
	for _, l := range p.Lines {
		font := "F1"
		if l.Bold {
			font = "F2"
		}
		fmt.Fprintf(&sb, "BT /%s %g Tf %g %g Td (%s) Tj ET\n", font, l.Size, l.X, l.Y, escapePDF(l.Text))
	}
	return sb.String()
}

func escapePDF(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
