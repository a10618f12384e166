// Package convert runs a document through extraction, classification and
// the configured writers.
package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thywilljoshua/docstyler/internal/blocks"
	"github.com/thywilljoshua/docstyler/internal/classify"
	"github.com/thywilljoshua/docstyler/internal/config"
	"github.com/thywilljoshua/docstyler/internal/extract"
	"github.com/thywilljoshua/docstyler/internal/render"
	"github.com/thywilljoshua/docstyler/internal/style"
)

// ErrFileTooLarge is returned when the source exceeds Config.MaxFileSize.
var ErrFileTooLarge = errors.New("file too large")

func (c *Config) defaults() {
	if c.OutDir == "" {
		c.OutDir = "."
	}
	if len(c.Emit) == 0 {
		c.Emit = []string{config.EmitDOCX}
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Style == nil {
		st := style.Default()
		c.Style = &st
	}
	if c.Rules == nil {
		rs := classify.DefaultRuleset()
		c.Rules = &rs
	}
}

// Analyze reads path, extracts its blocks and classifies them. Nothing is
// written.
func Analyze(ctx context.Context, path string, cfg Config) (Document, error) {
	cfg.defaults()
	return analyze(ctx, path, cfg, cfg.Logger)
}

func analyze(ctx context.Context, path string, cfg Config, log *slog.Logger) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, err
	}
	if cfg.MaxFileSize > 0 && info.Size() > cfg.MaxFileSize {
		return Document{}, fmt.Errorf("%s: %w (%d bytes, limit %d)", path, ErrFileTooLarge, info.Size(), cfg.MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	format, err := extract.DetectFormat(path, data)
	if err != nil {
		return Document{}, err
	}
	log.Debug("source read", "format", format, "bytes", len(data))

	start := time.Now()
	bs, err := extract.Extract(ctx, format, data, extract.Options{Workers: cfg.Workers, Logger: log})
	if err != nil {
		return Document{}, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	log.Debug("extraction done", "blocks", len(bs), "elapsed", time.Since(start))

	res := classify.New(*cfg.Rules).Classify(bs)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Document{
		Name:     name,
		Title:    title(res.Blocks, name),
		Format:   format,
		Classify: res,
	}, nil
}

// title is the text of the first top-level heading, else the file name.
func title(in []blocks.ContentBlock, fallback string) string {
	best, bestDepth := fallback, blocks.MaxHeading+1
	for _, b := range in {
		if d, ok := b.Level.HeadingDepth(); ok && d < bestDepth {
			best, bestDepth = b.Text, d
			if d == 0 {
				break
			}
		}
	}
	return best
}

// Run converts the document at path and writes every output kind in
// cfg.Emit into cfg.OutDir. The DOCX and JSON outputs are rendered in memory
// before anything is written, so a source that fails to extract, classify or
// render leaves no files behind. An I/O error while writing, including one
// from the MDX site written page by page, can leave earlier outputs on disk.
func Run(ctx context.Context, path string, cfg Config) (Result, error) {
	cfg.defaults()
	runID := uuid.NewString()
	log := cfg.Logger.With("run_id", runID, "source", filepath.Base(path))
	start := time.Now()
	log.Info("conversion started", "emit", strings.Join(cfg.Emit, ","), "workers", cfg.Workers)

	doc, err := analyze(ctx, path, cfg, log)
	if err != nil {
		log.Error("conversion failed", "err", err)
		return Result{}, err
	}
	res := summarize(doc)
	res.RunID = runID
	res.Source = path
	res.OutDir = cfg.OutDir

	files, err := renderOutputs(doc, cfg)
	if err != nil {
		log.Error("render failed", "err", err)
		return Result{}, err
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return Result{}, err
	}
	for _, f := range files {
		if f.site {
			written, err := render.WriteSite(filepath.Join(cfg.OutDir, f.name), render.Site{
				Name:       cfg.SiteName,
				Title:      doc.Title,
				SlugPrefix: cfg.SlugPrefix,
			}, doc.Classify.Blocks)
			if err != nil {
				return Result{}, fmt.Errorf("write site: %w", err)
			}
			res.Outputs = append(res.Outputs, written...)
			continue
		}
		dest := filepath.Join(cfg.OutDir, f.name)
		if err := os.WriteFile(dest, f.data, 0o644); err != nil {
			return Result{}, err
		}
		res.Outputs = append(res.Outputs, dest)
	}

	log.Info("conversion finished",
		"format", doc.Format,
		"blocks", res.Blocks,
		"images", res.Images,
		"body_size", res.BodySize,
		"outputs", len(res.Outputs),
		"elapsed", time.Since(start))
	return res, nil
}

type output struct {
	name string
	data []byte
	// site outputs are a directory written by render.WriteSite.
	site bool
}

func renderOutputs(doc Document, cfg Config) ([]output, error) {
	var out []output
	for _, kind := range cfg.Emit {
		switch kind {
		case config.EmitDOCX:
			var buf bytes.Buffer
			if err := render.DOCX(&buf, doc.Title, doc.Classify.Blocks, *cfg.Style); err != nil {
				return nil, err
			}
			out = append(out, output{name: doc.Name + ".docx", data: buf.Bytes()})
		case config.EmitJSON:
			data, err := json.MarshalIndent(doc.Classify, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("encode blocks: %w", err)
			}
			out = append(out, output{name: doc.Name + ".blocks.json", data: data})
		case config.EmitMDX:
			out = append(out, output{name: doc.Name, site: true})
		default:
			return nil, fmt.Errorf("unknown output kind %q", kind)
		}
	}
	return out, nil
}

func summarize(doc Document) Result {
	res := Result{
		Format:   doc.Format,
		Title:    doc.Title,
		Blocks:   len(doc.Classify.Blocks),
		BodySize: doc.Classify.BodySize,
		Levels:   map[string]int{},
		Outline:  render.Outline(doc.Classify.Blocks),
	}
	for _, b := range doc.Classify.Blocks {
		if b.IsImage() {
			res.Images++
		}
		res.Levels[b.Level.String()]++
	}
	return res
}
