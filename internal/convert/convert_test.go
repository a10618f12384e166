package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/docstyler/internal/blocks"
	"github.com/thywilljoshua/docstyler/internal/classify"
	"github.com/thywilljoshua/docstyler/internal/extract"
	tu "github.com/thywilljoshua/docstyler/internal/testutil"
)

// twoPageCourse is a 16pt bold title followed by twenty 10pt lines split
// over two pages.
func twoPageCourse() []byte {
	first := tu.PDFPage{Images: 1, Lines: []tu.PDFLine{{Text: "Cardiologie", Size: 16, Bold: true, X: 72, Y: 780}}}
	second := tu.PDFPage{}
	for i := 0; i < 10; i++ {
		first.Lines = append(first.Lines, tu.PDFLine{Text: fmt.Sprintf("Ligne %d du cours", i+1), Size: 10, X: 72, Y: float64(740 - i*14)})
		second.Lines = append(second.Lines, tu.PDFLine{Text: fmt.Sprintf("Ligne %d du cours", i+11), Size: 10, X: 72, Y: float64(760 - i*14)})
	}
	return tu.BuildPDF([]tu.PDFPage{first, second})
}

func writeSource(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRun_PDFEndToEnd(t *testing.T) {
	src := writeSource(t, "cours.pdf", twoPageCourse())
	outDir := filepath.Join(t.TempDir(), "out")
	var logs bytes.Buffer

	res, err := Run(context.Background(), src, Config{
		OutDir:  outDir,
		Emit:    []string{"docx", "json", "mdx"},
		Workers: 3,
		Logger:  slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, extract.FormatPDF, res.Format)
	assert.Equal(t, "Cardiologie", res.Title)
	assert.Equal(t, 22, res.Blocks)
	assert.Equal(t, 1, res.Images)
	assert.Equal(t, 10, res.BodySize)
	assert.Equal(t, map[string]int{"0": 1, "body": 20, "image": 1}, res.Levels)
	require.Len(t, res.Outline, 1)
	assert.Equal(t, 1, res.Outline[0].Start)
	assert.Equal(t, 2, res.Outline[0].End)

	assert.Equal(t, []string{
		filepath.Join(outDir, "cours.docx"),
		filepath.Join(outDir, "cours.blocks.json"),
		filepath.Join(outDir, "cours", "cardiologie.mdx"),
		filepath.Join(outDir, "cours", "index.mdx"),
		filepath.Join(outDir, "cours", "docs.json"),
	}, res.Outputs)
	for _, f := range res.Outputs {
		assert.FileExists(t, f)
	}

	raw, err := os.ReadFile(filepath.Join(outDir, "cours.blocks.json"))
	require.NoError(t, err)
	var dump classify.Result
	require.NoError(t, json.Unmarshal(raw, &dump))
	require.Len(t, dump.Blocks, 22)
	assert.Equal(t, blocks.LevelImage, dump.Blocks[0].Level)
	assert.Equal(t, 1, dump.Blocks[0].Sequence)
	assert.Equal(t, blocks.Heading(0), dump.Blocks[1].Level)
	for _, b := range dump.Blocks[2:] {
		assert.Equal(t, blocks.LevelBody, b.Level, b.Text)
	}
	assert.Equal(t, "Ligne 20 du cours", dump.Blocks[21].Text)
	assert.Equal(t, 2, dump.Blocks[21].Location)

	assert.Contains(t, logs.String(), "run_id="+res.RunID)
	assert.Contains(t, logs.String(), "conversion finished")
	assert.Contains(t, logs.String(), "pdf page extracted")
}

func TestRun_PPTX(t *testing.T) {
	deck := tu.BuildPPTX(map[int]string{
		1: tu.SlideXML(tu.TextShape(
			tu.Para("", tu.Run("Neurologie", `sz="2600" b="1"`, "")),
			tu.Para("", tu.Run("Examen neurologique", `sz="1800" b="1"`, "")),
			tu.Para("", tu.Run("Texte du cours", "", "")),
		)),
		2: tu.SlideXML(tu.PictureShape(), tu.TextShape(tu.Para("", tu.Run("Suite", "", "")))),
	}, nil)
	src := writeSource(t, "neuro.pptx", deck)

	res, err := Run(context.Background(), src, Config{OutDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, extract.FormatPPTX, res.Format)
	assert.Equal(t, 18, res.BodySize)
	assert.Equal(t, "Neurologie", res.Title)
	assert.Equal(t, map[string]int{"0": 1, "6": 1, "body": 2, "image": 1}, res.Levels)
	require.Len(t, res.Outputs, 1)
	assert.Equal(t, "neuro.docx", filepath.Base(res.Outputs[0]))
}

func TestRun_FailuresWriteNothing(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		data  []byte
		limit int64
		check func(t *testing.T, err error)
	}{
		{
			name: "malformed",
			file: "broken.pdf",
			data: []byte("%PDF-1.4\nnot really a pdf"),
			check: func(t *testing.T, err error) {
				var me *extract.MalformedSourceError
				assert.ErrorAs(t, err, &me)
			},
		},
		{
			name: "empty",
			file: "blank.pdf",
			data: tu.BuildPDF([]tu.PDFPage{{}}),
			check: func(t *testing.T, err error) {
				var ee *extract.EmptyResultError
				assert.ErrorAs(t, err, &ee)
			},
		},
		{
			name: "unsupported",
			file: "notes.txt",
			data: []byte("plain text"),
			check: func(t *testing.T, err error) {
				var ue *extract.UnsupportedFormatError
				assert.ErrorAs(t, err, &ue)
			},
		},
		{
			name:  "too large",
			file:  "cours.pdf",
			data:  twoPageCourse(),
			limit: 64,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrFileTooLarge)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := filepath.Join(t.TempDir(), "out")
			_, err := Run(context.Background(), writeSource(t, tt.file, tt.data), Config{
				OutDir:      outDir,
				MaxFileSize: tt.limit,
				Logger:      slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
			})
			require.Error(t, err)
			tt.check(t, err)
			assert.NoDirExists(t, outDir)
		})
	}
}

func TestAnalyze_WorkerCountDoesNotChangeResult(t *testing.T) {
	src := writeSource(t, "cours.pdf", twoPageCourse())

	base, err := Analyze(context.Background(), src, Config{Workers: 1})
	require.NoError(t, err)
	for _, w := range []int{2, 8} {
		doc, err := Analyze(context.Background(), src, Config{Workers: w})
		require.NoError(t, err)
		assert.Equal(t, base.Classify, doc.Classify, "workers=%d", w)
	}
}

func TestAnalyze_CustomRules(t *testing.T) {
	src := writeSource(t, "cours.pdf", twoPageCourse())
	rs := classify.DefaultRuleset()
	rs.ShortTextLimit = 5

	doc, err := Analyze(context.Background(), src, Config{Rules: &rs})
	require.NoError(t, err)
	assert.Equal(t, blocks.LevelBody, doc.Classify.Blocks[1].Level, "Cardiologie is no longer short")
	assert.Equal(t, "cours", doc.Title)
}
