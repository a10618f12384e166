// Package extract turns PDF and PPTX bytes into an ordered sequence of
// content blocks.
//
// Both extractors work one unit (page or slide) at a time. Units may run in
// parallel; their results are stored by index and flattened in source order,
// so the output does not depend on Options.Workers.
//
// Any per-unit failure aborts the whole document with a MalformedSourceError
// carrying the unit number.
package extract

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/thywilljoshua/docstyler/internal/blocks"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
)

// Options configures extraction.
type Options struct {
	// Workers bounds how many pages or slides are processed at once
	// (default: 1).
	Workers int

	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// DetectFormat picks the format from the file name extension, falling back to
// the leading signature of data.
func DetectFormat(name string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".pptx":
		return FormatPPTX, nil
	}
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return FormatPDF, nil
	case bytes.HasPrefix(data, zipMagic):
		return FormatPPTX, nil
	}
	return "", &UnsupportedFormatError{Name: name}
}

// Extract runs the extractor for f. A document that yields no blocks returns
// an EmptyResultError.
func Extract(ctx context.Context, f Format, data []byte, opts Options) ([]blocks.ContentBlock, error) {
	var (
		out []blocks.ContentBlock
		err error
	)
	switch f {
	case FormatPDF:
		out, err = PDF(ctx, data, opts)
	case FormatPPTX:
		out, err = Slides(ctx, data, opts)
	default:
		return nil, &UnsupportedFormatError{Name: string(f)}
	}
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &EmptyResultError{Format: f}
	}
	return out, nil
}

// unitFunc extracts the blocks of the 1-based unit n.
type unitFunc func(ctx context.Context, n int) ([]blocks.ContentBlock, error)

// collect runs fn for units 1..count with at most workers in flight and
// returns their blocks sequenced in unit order.
func collect(ctx context.Context, count, workers int, fn unitFunc) ([]blocks.ContentBlock, error) {
	units := make([][]blocks.ContentBlock, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bs, err := fn(gctx, i+1)
			if err != nil {
				return err
			}
			units[i] = bs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks.Sequence(units), nil
}
