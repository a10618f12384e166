package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/thywilljoshua/docstyler/internal/blocks"
)

const (
	// DefaultSlideFontSize applies when neither the run nor its paragraph
	// sets a size.
	DefaultSlideFontSize = 18
	// DefaultSlideFont applies when a run names no Latin typeface.
	DefaultSlideFont = "Aptos"

	defaultSlideColor = "000000"
)

// maxSlidePart caps the decompressed size of one slide part.
var maxSlidePart int64 = 64 << 20

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

type slidePart struct {
	index int
	file  *zip.File
}

// Slides extracts the blocks of a PPTX archive, slide by slide in numeric
// order, shapes in tree order.
func Slides(ctx context.Context, data []byte, opts Options) ([]blocks.ContentBlock, error) {
	opts.defaults()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, malformed(FormatPPTX, 0, fmt.Errorf("open zip: %w", err))
	}
	parts := slideParts(zr.File)
	if len(parts) == 0 {
		return nil, malformed(FormatPPTX, 0, errors.New("no ppt/slides/slideN.xml parts in archive"))
	}
	opts.Logger.Debug("pptx opened", "slides", len(parts), "entries", len(zr.File))

	return collect(ctx, len(parts), opts.Workers, func(ctx context.Context, n int) ([]blocks.ContentBlock, error) {
		root, err := readSlide(parts[n-1].file)
		if err != nil {
			return nil, malformed(FormatPPTX, n, err)
		}
		bs := slideBlocks(root, n)
		opts.Logger.Debug("pptx slide extracted", "slide", n, "part", parts[n-1].file.Name, "blocks", len(bs))
		return bs, nil
	})
}

// slideParts returns the slide entries sorted by the number in their name,
// so slide2 comes before slide10.
func slideParts(files []*zip.File) []slidePart {
	var parts []slidePart
	for _, f := range files {
		m := slidePartRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, slidePart{index: idx, file: f})
	}
	slices.SortStableFunc(parts, func(a, b slidePart) int { return a.index - b.index })
	return parts
}

func readSlide(f *zip.File) (*xmlNode, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(io.LimitReader(rc, maxSlidePart+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if int64(len(raw)) > maxSlidePart {
		return nil, fmt.Errorf("read %s: larger than %d bytes uncompressed", f.Name, maxSlidePart)
	}
	var root xmlNode
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Name, err)
	}
	return &root, nil
}

func slideBlocks(root *xmlNode, n int) []blocks.ContentBlock {
	tree := root.find(nsPresentation, "spTree")
	if tree == nil {
		return nil
	}
	caption := fmt.Sprintf("Figure slide %d", n)

	var out []blocks.ContentBlock
	for i := range tree.Nodes {
		shape := &tree.Nodes[i]
		if shape.is(nsPresentation, "pic") || shape.find(nsPresentation, "pic") != nil {
			out = append(out, blocks.NewImageBlock(n, caption))
			continue
		}
		for _, body := range shape.findAll(nsPresentation, "txBody") {
			for _, para := range body.findAll(nsDrawing, "p") {
				if b, ok := paragraphBlock(para, n); ok {
					out = append(out, b)
				}
			}
		}
	}
	return out
}

func paragraphBlock(para *xmlNode, n int) (blocks.ContentBlock, bool) {
	runs := para.findAll(nsDrawing, "r")
	if len(runs) == 0 {
		return blocks.ContentBlock{}, false
	}
	var def *xmlNode
	if pPr := para.find(nsDrawing, "pPr"); pPr != nil {
		def = pPr.find(nsDrawing, "defRPr")
	}

	frags := make([]blocks.TextSegment, 0, len(runs))
	for _, r := range runs {
		t := r.child(nsDrawing, "t")
		if t == nil || t.Text == "" {
			continue
		}
		rPr := r.child(nsDrawing, "rPr")
		frags = append(frags, blocks.TextSegment{
			Text: t.Text,
			Style: blocks.Style{
				FontName:   runFont(rPr),
				FontSizePt: runSize(rPr, def),
				Bold:       runFlag(rPr, def, "b"),
				Italic:     runFlag(rPr, def, "i"),
				ColorHex:   runColor(rPr),
			},
		})
	}
	return blocks.NewTextBlock(n, frags)
}

// runSize reads sz (hundredths of a point) from the run, then the paragraph
// default.
func runSize(rPr, def *xmlNode) int {
	for _, props := range []*xmlNode{rPr, def} {
		if v, ok := props.attr("sz"); ok {
			if sz, err := strconv.Atoi(v); err == nil && sz > 0 {
				return roundSize(float64(sz) / 100)
			}
		}
	}
	return DefaultSlideFontSize
}

func runFlag(rPr, def *xmlNode, name string) bool {
	for _, props := range []*xmlNode{rPr, def} {
		if v, ok := props.attr(name); ok {
			return v == "1" || strings.EqualFold(v, "true")
		}
	}
	return false
}

// runColor reads an explicit sRGB solid fill. Color is never inherited from
// the paragraph.
func runColor(rPr *xmlNode) string {
	if fill := rPr.child(nsDrawing, "solidFill"); fill != nil {
		if clr := fill.child(nsDrawing, "srgbClr"); clr != nil {
			if v, ok := clr.attr("val"); ok && v != "" {
				return blocks.NormalizeHex(v)
			}
		}
	}
	return defaultSlideColor
}

func runFont(rPr *xmlNode) string {
	if latin := rPr.child(nsDrawing, "latin"); latin != nil {
		if v, ok := latin.attr("typeface"); ok && v != "" {
			return v
		}
	}
	return DefaultSlideFont
}
