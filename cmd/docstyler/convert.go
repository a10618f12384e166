package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thywilljoshua/docstyler/internal/blocks"
	"github.com/thywilljoshua/docstyler/internal/classify"
	"github.com/thywilljoshua/docstyler/internal/config"
	"github.com/thywilljoshua/docstyler/internal/convert"
	"github.com/thywilljoshua/docstyler/internal/render"
	"github.com/thywilljoshua/docstyler/internal/style"
)

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a PDF or PPTX document into styled outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			res, err := convert.Run(cmd.Context(), args[0], s.convertConfig())
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(res, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", ".", "output directory")
	cmd.Flags().StringSlice("emit", []string{config.EmitDOCX}, "outputs to write: docx,mdx,json")
	cmd.Flags().Int("workers", 4, "pages or slides processed in parallel")
	cmd.Flags().Int64("max-file-size", 50<<20, "largest accepted source file in bytes")
	cmd.Flags().String("site-name", "", "site name written to docs.json (mdx output)")
	cmd.Flags().String("slug-prefix", "", "prefix for generated page slugs (mdx output)")
	return cmd
}

// explained is one block plus the rule that set its level.
type explained struct {
	blocks.ContentBlock
	Rule string `json:"rule"`
}

func blocksCmd() *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "blocks <file>",
		Short: "Print the classified blocks of a document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			doc, err := convert.Analyze(cmd.Context(), args[0], s.convertConfig())
			if err != nil {
				return err
			}
			var v any = doc.Classify.Blocks
			if explain {
				out := make([]explained, len(doc.Classify.Blocks))
				for i, b := range doc.Classify.Blocks {
					out[i] = explained{ContentBlock: b, Rule: doc.Classify.Rules[i]}
				}
				v = struct {
					BodySize int              `json:"body_size"`
					Blocks   []explained      `json:"blocks"`
					Outline  []render.Section `json:"outline"`
				}{doc.Classify.BodySize, out, render.Flatten(render.Outline(doc.Classify.Blocks))}
			}
			b, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "include the rule behind each block and a flat outline")
	cmd.Flags().Int("workers", 4, "pages or slides processed in parallel")
	return cmd
}

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective classification rules and style as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			out := struct {
				Rules classify.Ruleset `yaml:"rules"`
				Chain []string         `yaml:"chain"`
				Style style.Config     `yaml:"style"`
			}{Rules: s.rules, Style: s.style}
			for _, r := range classify.Chain(s.rules) {
				out.Chain = append(out.Chain, r.Name)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "docstyler.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
}
