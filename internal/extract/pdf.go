package extract

import (
	"bytes"
	"context"
	"fmt"
	"math"

	rpdf "rsc.io/pdf"

	"github.com/thywilljoshua/docstyler/internal/blocks"
)

// LineTolerance is the vertical distance, in points, within which PDF text
// fragments share a line. It is measured against the first fragment of the
// line.
const LineTolerance = 3.0

// PDF extracts the blocks of a PDF document. Each page yields its image
// placeholders first, then one text block per line.
func PDF(ctx context.Context, data []byte, opts Options) (out []blocks.ContentBlock, err error) {
	opts.defaults()

	r, pages, err := openPDF(data)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("pdf opened", "pages", pages, "bytes", len(data))
	if pages == 0 {
		return nil, nil
	}

	return collect(ctx, pages, opts.Workers, func(ctx context.Context, n int) ([]blocks.ContentBlock, error) {
		bs, err := pdfPage(r, n)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debug("pdf page extracted", "page", n, "blocks", len(bs))
		return bs, nil
	})
}

// openPDF parses the trailer and counts pages. Both steps resolve objects,
// and rsc.io/pdf panics on a broken one.
func openPDF(data []byte) (r *rpdf.Reader, pages int, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, pages, err = nil, 0, malformed(FormatPDF, 0, fmt.Errorf("%v", p))
		}
	}()
	r, err = rpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, 0, malformed(FormatPDF, 0, err)
	}
	return r, r.NumPage(), nil
}

// pdfPage walks page n. rsc.io/pdf panics on malformed objects and content
// streams; the panic becomes a MalformedSourceError for the page.
func pdfPage(r *rpdf.Reader, n int) (out []blocks.ContentBlock, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, malformed(FormatPDF, n, fmt.Errorf("%v", p))
		}
	}()
	p := r.Page(n)
	if p.V.IsNull() {
		return nil, malformed(FormatPDF, n, fmt.Errorf("page object missing"))
	}

	w := newPageWalker()
	w.walk(p.V.Key("Contents"), p.Resources(), ident, 0)

	caption := fmt.Sprintf("Figure page %d", n)
	for i := 0; i < w.images; i++ {
		out = append(out, blocks.NewImageBlock(n, caption))
	}
	for _, line := range groupLines(w.frags, LineTolerance) {
		segs := make([]blocks.TextSegment, len(line))
		for i, f := range line {
			segs[i] = f.seg
		}
		if b, ok := blocks.NewTextBlock(n, segs); ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// pdfFragment is one shown string with its device-space origin.
type pdfFragment struct {
	x, y float64
	seg  blocks.TextSegment
}

type matrix [3][3]float64

var ident = matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func (x matrix) mul(y matrix) matrix {
	var z matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				z[i][j] += x[i][k] * y[k][j]
			}
		}
	}
	return z
}

func translate(tx, ty float64) matrix {
	return matrix{{1, 0, 0}, {0, 1, 0}, {tx, ty, 1}}
}

// matrixOf reads a six-element PDF matrix array.
func matrixOf(v rpdf.Value) (matrix, bool) {
	if v.Kind() != rpdf.Array || v.Len() != 6 {
		return ident, false
	}
	vals := make([]rpdf.Value, 6)
	for i := range vals {
		vals[i] = v.Index(i)
	}
	return matrixFrom(vals), true
}

// matrixFrom builds a matrix from six operands (a b c d e f).
func matrixFrom(v []rpdf.Value) matrix {
	var m matrix
	m[0][0], m[0][1] = v[0].Float64(), v[1].Float64()
	m[1][0], m[1][1] = v[2].Float64(), v[3].Float64()
	m[2][0], m[2][1] = v[4].Float64(), v[5].Float64()
	m[2][2] = 1
	return m
}

// textState is the subset of the PDF graphics state that positions text.
type textState struct {
	CTM      matrix
	Tm, Tlm  matrix
	font     rpdf.Font
	fontName string
	enc      rpdf.TextEncoding
	twoByte  bool
	Tfs      float64
	Tc, Tw   float64
	Th       float64
	TL       float64
	Trise    float64
}

// maxFormDepth bounds recursion into nested form XObjects.
const maxFormDepth = 8

// tjSpaceThreshold is the TJ adjustment (thousandths of text space) beyond
// which a gap is rendered as a space.
const tjSpaceThreshold = 200

type pageWalker struct {
	images int
	frags  []pdfFragment
}

func newPageWalker() *pageWalker { return &pageWalker{} }

// walk interprets a content stream (or an array of them) with the given
// resources, starting from ctm.
func (w *pageWalker) walk(contents, res rpdf.Value, ctm matrix, depth int) {
	if contents.Kind() == rpdf.Array {
		g := textState{CTM: ctm, Th: 1, Tm: ident, Tlm: ident}
		for i := 0; i < contents.Len(); i++ {
			g = w.interpret(contents.Index(i), res, g, depth)
		}
		return
	}
	if contents.Kind() != rpdf.Stream {
		return
	}
	w.interpret(contents, res, textState{CTM: ctm, Th: 1, Tm: ident, Tlm: ident}, depth)
}

func (w *pageWalker) interpret(strm, res rpdf.Value, g textState, depth int) textState {
	var stack []textState

	show := func(raw string) {
		if g.enc == nil {
			return
		}
		text := g.enc.Decode(raw)
		Trm := matrix{{g.Tfs * g.Th, 0, 0}, {0, g.Tfs, 0}, {0, g.Trise, 1}}.mul(g.Tm).mul(g.CTM)
		if keepFragment(text) {
			w.frags = append(w.frags, pdfFragment{
				x:   Trm[2][0],
				y:   Trm[2][1],
				seg: pdfSegment(text, g.fontName, math.Hypot(Trm[0][0], Trm[0][1])),
			})
		}
		step := 1
		if g.twoByte {
			step = 2
		}
		for i := 0; i+step <= len(raw); i += step {
			code := int(raw[i])
			if step == 2 {
				code = code<<8 | int(raw[i+1])
			}
			tx := g.font.Width(code)/1000*g.Tfs + g.Tc
			if step == 1 && raw[i] == ' ' {
				tx += g.Tw
			}
			g.Tm = translate(tx*g.Th, 0).mul(g.Tm)
		}
	}
	nextLine := func() {
		g.Tlm = translate(0, -g.TL).mul(g.Tlm)
		g.Tm = g.Tlm
	}

	rpdf.Interpret(strm, func(stk *rpdf.Stack, op string) {
		n := stk.Len()
		args := make([]rpdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		arg := func(i int) rpdf.Value {
			if i < len(args) {
				return args[i]
			}
			return rpdf.Value{}
		}

		switch op {
		case "q":
			stack = append(stack, g)
		case "Q":
			if len(stack) > 0 {
				g = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
		case "cm":
			if len(args) == 6 {
				g.CTM = matrixFrom(args).mul(g.CTM)
			}
		case "BT":
			g.Tm, g.Tlm = ident, ident
		case "Tc":
			g.Tc = arg(0).Float64()
		case "Tw":
			g.Tw = arg(0).Float64()
		case "Tz":
			g.Th = arg(0).Float64() / 100
		case "TL":
			g.TL = arg(0).Float64()
		case "Ts":
			g.Trise = arg(0).Float64()
		case "Tf":
			g.font = rpdf.Font{V: res.Key("Font").Key(arg(0).Name())}
			g.fontName = cleanFontName(g.font.BaseFont())
			g.enc = g.font.Encoder()
			g.twoByte = g.font.V.Key("Subtype").Name() == "Type0"
			g.Tfs = arg(1).Float64()
		case "Td":
			g.Tlm = translate(arg(0).Float64(), arg(1).Float64()).mul(g.Tlm)
			g.Tm = g.Tlm
		case "TD":
			g.TL = -arg(1).Float64()
			g.Tlm = translate(arg(0).Float64(), arg(1).Float64()).mul(g.Tlm)
			g.Tm = g.Tlm
		case "Tm":
			if len(args) == 6 {
				g.Tm = matrixFrom(args)
				g.Tlm = g.Tm
			}
		case "T*":
			nextLine()
		case "Tj":
			show(arg(0).RawString())
		case "'":
			nextLine()
			show(arg(0).RawString())
		case "\"":
			g.Tw = arg(0).Float64()
			g.Tc = arg(1).Float64()
			nextLine()
			show(arg(2).RawString())
		case "TJ":
			v := arg(0)
			for i := 0; i < v.Len(); i++ {
				x := v.Index(i)
				if x.Kind() == rpdf.String {
					show(x.RawString())
					continue
				}
				adj := x.Float64()
				if adj < -tjSpaceThreshold {
					w.spaceAfterLast()
				}
				g.Tm = translate(-adj/1000*g.Tfs*g.Th, 0).mul(g.Tm)
			}
		case "Do":
			w.xobject(res.Key("XObject").Key(arg(0).Name()), res, g.CTM, depth)
		}
	})
	return g
}

func (w *pageWalker) xobject(x, res rpdf.Value, ctm matrix, depth int) {
	switch x.Key("Subtype").Name() {
	case "Image":
		w.images++
	case "Form":
		if depth >= maxFormDepth {
			return
		}
		formRes := x.Key("Resources")
		if formRes.IsNull() {
			formRes = res
		}
		if m, ok := matrixOf(x.Key("Matrix")); ok {
			ctm = m.mul(ctm)
		}
		w.walk(x, formRes, ctm, depth+1)
	}
}

// spaceAfterLast appends a space to the most recent fragment when a TJ
// adjustment opens a word gap.
func (w *pageWalker) spaceAfterLast() {
	if n := len(w.frags); n > 0 {
		w.frags[n-1].seg.Text += " "
	}
}
