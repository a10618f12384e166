// Package config loads the application settings from defaults, an optional
// YAML file, DOCSTYLER_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Output kinds accepted in Emit.
const (
	EmitDOCX = "docx"
	EmitMDX  = "mdx"
	EmitJSON = "json"
)

// Config is the application configuration.
type Config struct {
	Workers     int      `mapstructure:"workers" yaml:"workers"`
	OutDir      string   `mapstructure:"out_dir" yaml:"out_dir"`
	Emit        []string `mapstructure:"emit" yaml:"emit"`
	StyleFile   string   `mapstructure:"style_file" yaml:"style_file"`
	RulesFile   string   `mapstructure:"rules_file" yaml:"rules_file"`
	LogLevel    string   `mapstructure:"log_level" yaml:"log_level"`
	MaxFileSize int64    `mapstructure:"max_file_size" yaml:"max_file_size"`
	SiteName    string   `mapstructure:"site_name" yaml:"site_name"`
	SlugPrefix  string   `mapstructure:"slug_prefix" yaml:"slug_prefix"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Workers:     4,
		OutDir:      ".",
		Emit:        []string{EmitDOCX},
		LogLevel:    "info",
		MaxFileSize: 50 << 20,
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"workers":       "workers",
	"out":           "out_dir",
	"emit":          "emit",
	"style":         "style_file",
	"rules":         "rules_file",
	"log-level":     "log_level",
	"max-file-size": "max_file_size",
	"site-name":     "site_name",
	"slug-prefix":   "slug_prefix",
}

// Load resolves the configuration. cfgFile may be empty, in which case
// docstyler.yaml is looked up in the working directory and $HOME/.docstyler;
// a missing file is not an error. Only flags present in flags are bound.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("workers", d.Workers)
	v.SetDefault("out_dir", d.OutDir)
	v.SetDefault("emit", d.Emit)
	v.SetDefault("style_file", d.StyleFile)
	v.SetDefault("rules_file", d.RulesFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("max_file_size", d.MaxFileSize)
	v.SetDefault("site_name", d.SiteName)
	v.SetDefault("slug_prefix", d.SlugPrefix)

	v.SetEnvPrefix("DOCSTYLER")
	v.AutomaticEnv()

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return Config{}, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docstyler")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.docstyler")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Emit = splitList(cfg.Emit)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitList lower-cases entries and splits comma-joined values, which is how
// a list arrives from an environment variable or a repeated flag.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if len(c.Emit) == 0 {
		return fmt.Errorf("emit: no output kind")
	}
	for _, e := range c.Emit {
		switch e {
		case EmitDOCX, EmitMDX, EmitJSON:
		default:
			return fmt.Errorf("emit: unknown output kind %q", e)
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lv, fmt.Errorf("log_level: %w", err)
	}
	return lv, nil
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := []byte(`# docstyler configuration
# Every key can also be set as DOCSTYLER_<KEY>, e.g. DOCSTYLER_WORKERS=8

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
