package render

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/thywilljoshua/docstyler/internal/blocks"
	"github.com/thywilljoshua/docstyler/internal/style"
)

// Twips converts millimetres to twentieths of a point.
func Twips(mm float64) int { return int(math.Round(mm * 56.7)) }

// headingSpacing returns the space before and after a heading, in twips.
func headingSpacing(depth int) (before, after int) {
	switch {
	case depth <= 1:
		return 80, 20
	case depth == 2:
		return 60, 20
	default:
		return 40, 0
	}
}

// Placeholder is the text standing in for image n.
func Placeholder(b blocks.ContentBlock) string {
	caption := b.Caption
	if caption == "" {
		caption = fmt.Sprintf("Image %d", b.Sequence)
	}
	placement := b.Placement
	if placement == "" {
		placement = "inline"
	}
	return fmt.Sprintf("[IMAGE %d – %s – position : %s]", b.Sequence, caption, placement)
}

const (
	nsMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRel  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

// DOCX writes the classified blocks as a single-section Word document.
func DOCX(w io.Writer, title string, in []blocks.ContentBlock, st style.Config) error {
	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"docProps/core.xml", coreXML(title)},
		{"word/document.xml", documentXML(in, st)},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("docx %s: %w", p.name, err)
		}
		if _, err := io.WriteString(f, p.body); err != nil {
			return fmt.Errorf("docx %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("docx: %w", err)
	}
	return nil
}

func coreXML(title string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString("\n")
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">`)
	b.WriteString("<dc:title>")
	escape(&b, title)
	b.WriteString("</dc:title></cp:coreProperties>")
	return b.String()
}

func documentXML(in []blocks.ContentBlock, st style.Config) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<w:document xmlns:w="%s" xmlns:r="%s"><w:body>`, nsMain, nsRel)
	for _, blk := range in {
		switch {
		case blk.IsImage():
			paragraph(&b, 20, 20, []run{{text: Placeholder(blk), style: st.Placeholder}})
		case blk.Level.IsHeading():
			depth, _ := blk.Level.HeadingDepth()
			before, after := headingSpacing(depth)
			paragraph(&b, before, after, []run{{text: blk.Text, style: st.Levels[depth]}})
		default:
			paragraph(&b, 0, 0, bodyRuns(blk, st))
		}
	}
	p := st.Page
	fmt.Fprintf(&b, `<w:sectPr><w:pgSz w:w="%d" w:h="%d" w:orient="portrait"/>`, Twips(p.WidthMm), Twips(p.HeightMm))
	fmt.Fprintf(&b, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="0" w:footer="0" w:gutter="0"/>`,
		Twips(p.MarginTopMm), Twips(p.MarginRightMm), Twips(p.MarginBottomMm), Twips(p.MarginLeftMm))
	b.WriteString(`</w:sectPr></w:body></w:document>`)
	return b.String()
}

type run struct {
	text  string
	style style.Text
}

// bodyRuns keeps each segment's emphasis and color on the body font.
func bodyRuns(blk blocks.ContentBlock, st style.Config) []run {
	if len(blk.Segments) == 0 {
		return []run{{text: blk.Text, style: st.Body}}
	}
	out := make([]run, 0, len(blk.Segments))
	for _, seg := range blk.Segments {
		if seg.Text == "" {
			continue
		}
		rs := st.Body
		rs.Bold = seg.Bold
		rs.Italic = seg.Italic
		color := seg.ColorHex
		if color == "" {
			color = st.Body.Color
		}
		rs.Color = st.MapColor(color)
		out = append(out, run{text: seg.Text, style: rs})
	}
	return out
}

func paragraph(b *strings.Builder, before, after int, runs []run) {
	fmt.Fprintf(b, `<w:p><w:pPr><w:jc w:val="left"/><w:spacing w:before="%d" w:after="%d" w:line="240" w:lineRule="auto"/></w:pPr>`, before, after)
	for _, r := range runs {
		b.WriteString(`<w:r><w:rPr>`)
		fmt.Fprintf(b, `<w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s" w:cs="%[1]s"/>`, attr(r.style.Font))
		if r.style.Bold {
			b.WriteString(`<w:b/>`)
		}
		if r.style.Italic {
			b.WriteString(`<w:i/>`)
		}
		fmt.Fprintf(b, `<w:color w:val="%s"/><w:sz w:val="%d"/><w:szCs w:val="%d"/>`,
			attr(r.style.Color), r.style.HalfPoints(), r.style.HalfPoints())
		b.WriteString(`</w:rPr><w:t xml:space="preserve">`)
		escape(b, r.text)
		b.WriteString(`</w:t></w:r>`)
	}
	b.WriteString(`</w:p>`)
}

func escape(b *strings.Builder, s string) {
	// strings.Builder writes never fail.
	_ = xml.EscapeText(b, []byte(s))
}

func attr(s string) string {
	var b strings.Builder
	escape(&b, s)
	return b.String()
}
