// Package config loads and saves the toolkit configuration file.
//
// Every value has a working default, so a missing config file is not an
// error: commands run with defaults and flags override whatever was loaded.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"gmdkit/internal/check"
	"gmdkit/internal/clean"
	"gmdkit/internal/csvio"
	"gmdkit/internal/gmd"
	"gmdkit/internal/speaker"
	"gmdkit/internal/split"
	"gmdkit/internal/tags"
)

// DefaultFileName is looked for in the working directory when no
// --config flag is given.
const DefaultFileName = "gmdkit.yaml"

// DefaultWrapWidth is the line width translations are wrapped to.
const DefaultWrapWidth = 50

// Config is the root configuration structure.
type Config struct {
	Merge    MergeConfig    `yaml:"merge"`
	Clean    CleanConfig    `yaml:"clean"`
	Check    CheckConfig    `yaml:"check"`
	Tags     TagsConfig     `yaml:"tags"`
	Speakers SpeakersConfig `yaml:"speakers"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MergeConfig controls how split files are discovered and combined.
type MergeConfig struct {
	Columns    []string `yaml:"columns"`     // header schema; empty means the standard 8
	Pattern    string   `yaml:"pattern"`     // split file glob, e.g. *.csv
	Sort       string   `yaml:"sort"`        // natural, lexical
	Encoding   string   `yaml:"encoding"`    // utf-8, shift-jis
	OutputDir  string   `yaml:"output_dir"`  // where the combined file is written
	OutputName string   `yaml:"output_name"` // combined file name
	Clean      bool     `yaml:"clean"`       // scrub forbidden symbols while merging
}

// CleanConfig controls text normalization.
type CleanConfig struct {
	Forbidden map[string]string `yaml:"forbidden"`  // symbol replacement table; empty means the default
	WrapWidth int               `yaml:"wrap_width"` // runes per line when wrapping
}

// CheckConfig controls translation verification.
type CheckConfig struct {
	MinLength     int    `yaml:"min_length"` // 0 disables the lower bound
	MaxLength     int    `yaml:"max_length"` // 0 disables the upper bound
	Measure       string `yaml:"measure"`    // runes, width
	QuarantineDir string `yaml:"quarantine_dir"`
}

// TagsConfig controls markup tag checking.
type TagsConfig struct {
	ListPath     string   `yaml:"list_path"`     // known-tag list, one tag per line
	MaxDistance  int      `yaml:"max_distance"`  // edit distance for typo suggestions
	BrokenTokens []string `yaml:"broken_tokens"` // opening fragments the fixer rejoins; empty means the default
}

// SpeakersConfig controls speaker name filling.
type SpeakersConfig struct {
	ArchiveDir string `yaml:"archive_dir"` // extracted game archive root
	Workers    int    `yaml:"workers"`     // files filled concurrently
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	File   string `yaml:"file"`   // empty logs to stderr
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Merge: MergeConfig{
			Pattern:    "*.csv",
			Sort:       string(split.SortNatural),
			Encoding:   string(csvio.EncodingUTF8),
			OutputDir:  ".",
			OutputName: split.DefaultOutputName,
			Clean:      true,
		},
		Clean: CleanConfig{
			WrapWidth: DefaultWrapWidth,
		},
		Check: CheckConfig{
			MinLength:     check.DefaultMinLength,
			MaxLength:     check.DefaultMaxLength,
			Measure:       string(check.MeasureRunes),
			QuarantineDir: check.DefaultQuarantineDir,
		},
		Tags: TagsConfig{
			ListPath:    tags.DefaultListPath,
			MaxDistance: 2,
		},
		Speakers: SpeakersConfig{
			Workers: speaker.DefaultWorkers,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file. A missing file returns the
// defaults so commands work out of the box.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("GMDKIT_ARCHIVE"); dir != "" {
		c.Speakers.ArchiveDir = dir
	}
	if enc := os.Getenv("GMDKIT_ENCODING"); enc != "" {
		c.Merge.Encoding = enc
	}
	if level := os.Getenv("GMDKIT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if n := os.Getenv("GMDKIT_WORKERS"); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			c.Speakers.Workers = v
		}
	}
}

// Validate checks that every enum-valued field parses and that the length
// bounds make sense together.
func (c *Config) Validate() error {
	if _, err := split.ParseSortMode(c.Merge.Sort); err != nil {
		return fmt.Errorf("merge.sort: %w", err)
	}
	if _, err := csvio.ParseEncoding(c.Merge.Encoding); err != nil {
		return fmt.Errorf("merge.encoding: %w", err)
	}
	if _, err := check.ParseMeasure(c.Check.Measure); err != nil {
		return fmt.Errorf("check.measure: %w", err)
	}
	if c.Check.MinLength < 0 || c.Check.MaxLength < 0 {
		return fmt.Errorf("check length bounds must not be negative")
	}
	if c.Check.MinLength > 0 && c.Check.MaxLength > 0 && c.Check.MinLength > c.Check.MaxLength {
		return fmt.Errorf("check.min_length %d exceeds check.max_length %d", c.Check.MinLength, c.Check.MaxLength)
	}
	if len(c.Merge.Columns) > 0 && len(c.Merge.Columns) <= gmd.ColTranslation {
		return fmt.Errorf("merge.columns must include the translation column (at least %d columns)", gmd.ColTranslation+1)
	}
	if c.Merge.OutputName == "" {
		return fmt.Errorf("merge.output_name must not be empty")
	}
	if c.Clean.WrapWidth < 0 {
		return fmt.Errorf("clean.wrap_width must not be negative")
	}
	if c.Speakers.Workers < 1 {
		return fmt.Errorf("speakers.workers must be at least 1")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}
	return nil
}

// SortMode returns the parsed merge sort mode, falling back to natural
// order on an invalid value. Validate reports the error; this accessor is
// for code paths that already validated.
func (c *Config) SortMode() split.SortMode {
	mode, err := split.ParseSortMode(c.Merge.Sort)
	if err != nil {
		return split.SortNatural
	}
	return mode
}

// Encoding returns the parsed input encoding.
func (c *Config) Encoding() csvio.Encoding {
	enc, err := csvio.ParseEncoding(c.Merge.Encoding)
	if err != nil {
		return csvio.EncodingUTF8
	}
	return enc
}

// Measure returns the parsed length measure.
func (c *Config) Measure() check.Measure {
	m, err := check.ParseMeasure(c.Check.Measure)
	if err != nil {
		return check.MeasureRunes
	}
	return m
}

// Schema returns the configured column schema, the standard one when none
// is set.
func (c *Config) Schema() gmd.Schema {
	if len(c.Merge.Columns) == 0 {
		return gmd.DefaultSchema()
	}
	return gmd.NewSchema(c.Merge.Columns)
}

// Replacer returns the forbidden-symbol replacer, the default table when
// none is configured.
func (c *Config) Replacer() *clean.Replacer {
	if len(c.Clean.Forbidden) == 0 {
		return clean.DefaultReplacer()
	}
	return clean.NewReplacer(c.Clean.Forbidden)
}

// BrokenTokens returns the tag-fixer token list, the built-in one when none
// is configured.
func (c *Config) BrokenTokens() []string {
	if len(c.Tags.BrokenTokens) == 0 {
		return tags.DefaultBrokenTokens
	}
	return c.Tags.BrokenTokens
}
