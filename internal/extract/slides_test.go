package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/docstyler/internal/blocks"
	tu "github.com/thywilljoshua/docstyler/internal/testutil"
)

func titleSlide(text string) string {
	return tu.SlideXML(tu.TextShape(tu.Para("", tu.Run(text, `sz="2400" b="1"`, ""))))
}

func TestSlides_NumericOrder(t *testing.T) {
	data := tu.BuildPPTX(map[int]string{
		1:  titleSlide("one"),
		10: titleSlide("ten"),
		2:  titleSlide("two"),
	}, nil)

	out, err := Slides(context.Background(), data, Options{})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, []string{"one", "two", "ten"}, []string{out[0].Text, out[1].Text, out[2].Text})
	assert.Equal(t, []int{1, 2, 3}, []int{out[0].Location, out[1].Location, out[2].Location})
}

func TestSlides_RunStyleResolution(t *testing.T) {
	slide := tu.SlideXML(tu.TextShape(
		tu.Para(`<a:pPr><a:defRPr sz="1400" b="1" i="1"/></a:pPr>`,
			tu.Run("inherited ", "", ""),
			tu.Run("explicit", `sz="2000" b="0" i="0"`, tu.Color("ee0000")+tu.Latin("Calibri")),
		),
		tu.Para("", tu.Run("fallback", "", "")),
	))
	out, err := Slides(context.Background(), tu.BuildPPTX(map[int]string{1: slide}, nil), Options{})
	require.NoError(t, err)
	require.Len(t, out, 2)

	first := out[0]
	require.Len(t, first.Segments, 2)
	inh := first.Segments[0]
	assert.Equal(t, 14, inh.FontSizePt)
	assert.True(t, inh.Bold)
	assert.True(t, inh.Italic)
	assert.Equal(t, "000000", inh.ColorHex, "color is not inherited from paragraph defaults")
	assert.Equal(t, DefaultSlideFont, inh.FontName)

	exp := first.Segments[1]
	assert.Equal(t, 20, exp.FontSizePt)
	assert.False(t, exp.Bold)
	assert.False(t, exp.Italic)
	assert.Equal(t, "EE0000", exp.ColorHex)
	assert.Equal(t, "Calibri", exp.FontName)

	assert.Equal(t, "inherited explicit", first.Text)
	assert.Equal(t, 14, first.Dominant.FontSizePt, "longest segment wins")

	fb := out[1].Segments[0]
	assert.Equal(t, DefaultSlideFontSize, fb.FontSizePt)
	assert.False(t, fb.Bold)
}

func TestSlides_MergesSameStyleRuns(t *testing.T) {
	slide := tu.SlideXML(tu.TextShape(tu.Para("",
		tu.Run("I. ", `sz="2000" b="1"`, ""),
		tu.Run("Introduction", `sz="2000" b="1"`, ""),
	)))
	out, err := Slides(context.Background(), tu.BuildPPTX(map[int]string{1: slide}, nil), Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Segments, 1)
	assert.Equal(t, "I. Introduction", out[0].Segments[0].Text)
}

func TestSlides_ImagesAndSkippedParagraphs(t *testing.T) {
	group := `<p:grpSp><p:nvGrpSpPr><p:cNvPr id="9" name="g"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		tu.PictureShape() + tu.TextShape(tu.Para("", tu.Run("hidden by picture", "", ""))) + `</p:grpSp>`

	slide1 := tu.SlideXML(
		tu.TextShape(
			tu.Para(""),
			tu.Para("", tu.Run("   ", "", "")),
			tu.Para("", tu.Run("kept", "", "")),
		),
		tu.PictureShape(),
	)
	slide2 := tu.SlideXML(group)

	out, err := Slides(context.Background(), tu.BuildPPTX(map[int]string{1: slide1, 2: slide2}, nil), Options{})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "kept", out[0].Text)

	assert.True(t, out[1].IsImage())
	assert.Equal(t, 1, out[1].Sequence)
	assert.Equal(t, "Figure slide 1", out[1].Caption)
	assert.Equal(t, blocks.PlacementRight, out[1].Placement)

	assert.True(t, out[2].IsImage())
	assert.Equal(t, 2, out[2].Sequence)
	assert.Equal(t, 2, out[2].Location)
	assert.Equal(t, "Figure slide 2", out[2].Caption)
}

func TestSlides_SlideWithoutShapeTree(t *testing.T) {
	empty := `<?xml version="1.0"?><p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld/></p:sld>`
	out, err := Slides(context.Background(), tu.BuildPPTX(map[int]string{1: empty, 2: titleSlide("x")}, nil), Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Location)
}

func TestSlides_Malformed(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		_, err := Slides(context.Background(), []byte("definitely not a zip"), Options{})
		var me *MalformedSourceError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, FormatPPTX, me.Format)
		assert.Zero(t, me.Location)
	})

	t.Run("no slide parts", func(t *testing.T) {
		data := tu.BuildPPTX(nil, map[string]string{"ppt/presentation.xml": "<p/>"})
		_, err := Slides(context.Background(), data, Options{})
		var me *MalformedSourceError
		require.ErrorAs(t, err, &me)
	})

	t.Run("broken slide xml is fatal", func(t *testing.T) {
		data := tu.BuildPPTX(map[int]string{1: titleSlide("ok"), 2: "<p:sld><unclosed"}, nil)
		out, err := Slides(context.Background(), data, Options{Workers: 4})
		assert.Nil(t, out)
		var me *MalformedSourceError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, 2, me.Location)
		assert.Contains(t, err.Error(), "slide 2")
	})
}

func TestSlides_OversizedPartIsMalformed(t *testing.T) {
	saved := maxSlidePart
	t.Cleanup(func() { maxSlidePart = saved })

	slide := titleSlide("Titre")
	maxSlidePart = int64(len(slide)) - 1
	data := tu.BuildPPTX(map[int]string{1: titleSlide("ok"), 2: slide}, nil)

	_, err := Slides(context.Background(), data, Options{})
	var me *MalformedSourceError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, FormatPPTX, me.Format)
	assert.Equal(t, 2, me.Location)
	assert.Contains(t, err.Error(), "uncompressed")

	maxSlidePart = int64(len(slide))
	out, err := Slides(context.Background(), data, Options{})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestSlides_WorkerCountDoesNotChangeOutput(t *testing.T) {
	slides := map[int]string{}
	for i := 1; i <= 12; i++ {
		slides[i] = tu.SlideXML(
			tu.TextShape(tu.Para("", tu.Run("title", `sz="2800" b="1"`, ""))),
			tu.PictureShape(),
			tu.TextShape(tu.Para("", tu.Run("body", `sz="1200"`, ""))),
		)
	}
	data := tu.BuildPPTX(slides, nil)

	serial, err := Slides(context.Background(), data, Options{Workers: 1})
	require.NoError(t, err)
	parallel, err := Slides(context.Background(), data, Options{Workers: 8})
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
	assert.Len(t, serial, 36)
	assert.Equal(t, 12, serial[len(serial)-2].Sequence)
}
