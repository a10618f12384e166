package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

const slideNS = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

// SlideXML wraps shape elements in a slide document with a shape tree.
func SlideXML(shapes ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld ` + slideNS + `><p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		strings.Join(shapes, "") +
		`</p:spTree></p:cSld></p:sld>`
}

// TextShape returns a p:sp holding the given a:p paragraphs.
func TextShape(paragraphs ...string) string {
	return `<p:sp><p:nvSpPr><p:cNvPr id="2" name="Text"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>` +
		`<p:txBody><a:bodyPr/><a:lstStyle/>` + strings.Join(paragraphs, "") + `</p:txBody></p:sp>`
}

// PictureShape returns a p:pic element.
func PictureShape() string {
	return `<p:pic><p:nvPicPr><p:cNvPr id="3" name="Picture"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>` +
		`<p:blipFill><a:blip r:embed="rId2"/></p:blipFill><p:spPr/></p:pic>`
}

// Para returns an a:p; pPr may be empty.
func Para(pPr string, runs ...string) string {
	return `<a:p>` + pPr + strings.Join(runs, "") + `</a:p>`
}

// Run returns an a:r with the given rPr attributes and child elements.
func Run(text, attrs, children string) string {
	rPr := ""
	if attrs != "" || children != "" {
		rPr = fmt.Sprintf(`<a:rPr lang="fr-FR" %s>%s</a:rPr>`, attrs, children)
	}
	return `<a:r>` + rPr + `<a:t>` + text + `</a:t></a:r>`
}

// Color returns a solid sRGB fill for use inside a:rPr.
func Color(hex string) string {
	return `<a:solidFill><a:srgbClr val="` + hex + `"/></a:solidFill>`
}

// Latin returns a Latin typeface element for use inside a:rPr.
func Latin(face string) string {
	return `<a:latin typeface="` + face + `"/>`
}

// BuildPPTX zips slides keyed by the number in their part name. Extra
// entries are copied verbatim.
func BuildPPTX(slides map[int]string, extra map[string]string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			panic(err)
		}
	}

	write("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`)

	// Written in lexical order on purpose so readers cannot rely on entry order.
	names := make([]string, 0, len(slides))
	byName := make(map[string]string, len(slides))
	for n, body := range slides {
		name := fmt.Sprintf("ppt/slides/slide%d.xml", n)
		names = append(names, name)
		byName[name] = body
	}
	sort.Strings(names)
	for _, name := range names {
		write(name, byName[name])
	}
	for name, body := range extra {
		write(name, body)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
