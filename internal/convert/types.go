package convert

import (
	"log/slog"

	"github.com/thywilljoshua/docstyler/internal/classify"
	"github.com/thywilljoshua/docstyler/internal/extract"
	"github.com/thywilljoshua/docstyler/internal/render"
	"github.com/thywilljoshua/docstyler/internal/style"
)

type Config struct {
	OutDir      string
	Emit        []string
	Workers     int
	MaxFileSize int64
	// Style and Rules default to style.Default and classify.DefaultRuleset.
	Style      *style.Config
	Rules      *classify.Ruleset
	SiteName   string
	SlugPrefix string
	Logger     *slog.Logger
}

// Document is a source file after extraction and classification.
type Document struct {
	Name     string
	Title    string
	Format   extract.Format
	Classify classify.Result
}

type Result struct {
	RunID    string           `json:"run_id"`
	Source   string           `json:"source"`
	Format   extract.Format   `json:"format"`
	Title    string           `json:"title"`
	Blocks   int              `json:"blocks"`
	Images   int              `json:"images"`
	BodySize int              `json:"body_size"`
	Levels   map[string]int   `json:"levels"`
	Outline  []render.Section `json:"outline"`
	Outputs  []string         `json:"outputs"`
	OutDir   string           `json:"out_dir"`
}
