package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/docstyler/internal/classify"
	"github.com/thywilljoshua/docstyler/internal/config"
	"github.com/thywilljoshua/docstyler/internal/convert"
	"github.com/thywilljoshua/docstyler/internal/extract"
	"github.com/thywilljoshua/docstyler/internal/style"
)

var cfgFile string

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docstyler",
		Short: "Rebuild the heading hierarchy of PDF and PPTX course material",
		Long: `docstyler reads a PDF or PPTX document, infers its titles, sections and
labels from font size, weight and color, and writes a styled DOCX, an MDX
docs site or a JSON block dump.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./docstyler.yaml or ~/.docstyler/docstyler.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level: debug|info|warn|error")
	root.PersistentFlags().String("style", "", "YAML style file")
	root.PersistentFlags().String("rules", "", "YAML rules file")

	root.AddCommand(convertCmd(), blocksCmd(), rulesCmd(), initCmd())
	return root
}

// settings is everything a command needs, resolved from config, flags and
// the style and rules files.
type settings struct {
	cfg    config.Config
	style  style.Config
	rules  classify.Ruleset
	logger *slog.Logger
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return settings{}, err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return settings{}, err
	}
	s := settings{
		cfg:    cfg,
		style:  style.Default(),
		rules:  classify.DefaultRuleset(),
		logger: slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})),
	}
	if cfg.StyleFile != "" {
		if s.style, err = style.Load(cfg.StyleFile); err != nil {
			return settings{}, err
		}
	}
	if cfg.RulesFile != "" {
		if s.rules, err = classify.LoadRuleset(cfg.RulesFile); err != nil {
			return settings{}, err
		}
	}
	return s, nil
}

func (s settings) convertConfig() convert.Config {
	return convert.Config{
		OutDir:      s.cfg.OutDir,
		Emit:        s.cfg.Emit,
		Workers:     s.cfg.Workers,
		MaxFileSize: s.cfg.MaxFileSize,
		Style:       &s.style,
		Rules:       &s.rules,
		SiteName:    s.cfg.SiteName,
		SlugPrefix:  s.cfg.SlugPrefix,
		Logger:      s.logger,
	}
}

// describe turns pipeline errors into a message for the terminal.
func describe(err error) string {
	var (
		malformed   *extract.MalformedSourceError
		empty       *extract.EmptyResultError
		unsupported *extract.UnsupportedFormatError
	)
	switch {
	case errors.As(err, &malformed):
		return fmt.Sprintf("the document could not be read: %v", err)
	case errors.As(err, &empty):
		return fmt.Sprintf("the document contains no extractable text or images: %v", err)
	case errors.As(err, &unsupported):
		return fmt.Sprintf("only .pdf and .pptx files are supported: %v", err)
	case errors.Is(err, convert.ErrFileTooLarge):
		return fmt.Sprintf("the document is over the size limit: %v", err)
	}
	return err.Error()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}
