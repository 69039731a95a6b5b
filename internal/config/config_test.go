package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Merge.Sort != "natural" {
		t.Errorf("expected Sort=natural, got %s", cfg.Merge.Sort)
	}
	if cfg.Merge.Encoding != "utf-8" {
		t.Errorf("expected Encoding=utf-8, got %s", cfg.Merge.Encoding)
	}
	if cfg.Check.MinLength != 5 || cfg.Check.MaxLength != 40 {
		t.Errorf("expected length bounds 5..40, got %d..%d", cfg.Check.MinLength, cfg.Check.MaxLength)
	}
	if cfg.Clean.WrapWidth != 50 {
		t.Errorf("expected WrapWidth=50, got %d", cfg.Clean.WrapWidth)
	}
	if cfg.Tags.ListPath != "tags_extracted.txt" {
		t.Errorf("expected ListPath=tags_extracted.txt, got %s", cfg.Tags.ListPath)
	}
	if cfg.Speakers.Workers < 1 {
		t.Errorf("expected at least one worker, got %d", cfg.Speakers.Workers)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	// Ensure no env vars interfere
	t.Setenv("GMDKIT_ARCHIVE", "")
	t.Setenv("GMDKIT_ENCODING", "")
	t.Setenv("GMDKIT_LOG_LEVEL", "")
	t.Setenv("GMDKIT_WORKERS", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "gmdkit.yaml")

	cfg := Default()
	cfg.Merge.Sort = "lexical"
	cfg.Speakers.ArchiveDir = "nativePC"
	cfg.Check.MaxLength = 60

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Merge.Sort != "lexical" {
		t.Errorf("expected Sort=lexical, got %s", loaded.Merge.Sort)
	}
	if loaded.Speakers.ArchiveDir != "nativePC" {
		t.Errorf("expected ArchiveDir=nativePC, got %s", loaded.Speakers.ArchiveDir)
	}
	if loaded.Check.MaxLength != 60 {
		t.Errorf("expected MaxLength=60, got %d", loaded.Check.MaxLength)
	}
	// Untouched sections keep their defaults.
	if loaded.Clean.WrapWidth != 50 {
		t.Errorf("expected WrapWidth=50, got %d", loaded.Clean.WrapWidth)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("GMDKIT_ARCHIVE", "")
	t.Setenv("GMDKIT_ENCODING", "")
	t.Setenv("GMDKIT_LOG_LEVEL", "")
	t.Setenv("GMDKIT_WORKERS", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Merge.Sort != Default().Merge.Sort {
		t.Error("missing file should load defaults")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gmdkit.yaml")
	if err := os.WriteFile(path, []byte("merge: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}

	cfg.Merge.Sort = "shuffled"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid sort mode")
	}

	cfg = Default()
	cfg.Check.MinLength = 50
	cfg.Check.MaxLength = 40
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for inverted length bounds")
	}

	cfg = Default()
	cfg.Check.MinLength = 0
	cfg.Check.MaxLength = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero bounds disable the checks, got: %v", err)
	}

	cfg = Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid log level")
	}

	cfg = Default()
	cfg.Speakers.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero workers")
	}
}

func TestConfig_Accessors(t *testing.T) {
	cfg := Default()

	if cfg.SortMode() != "natural" {
		t.Errorf("SortMode() = %s, want natural", cfg.SortMode())
	}
	if cfg.Encoding() != "utf-8" {
		t.Errorf("Encoding() = %s, want utf-8", cfg.Encoding())
	}
	if cfg.Measure() != "runes" {
		t.Errorf("Measure() = %s, want runes", cfg.Measure())
	}

	// Invalid values fall back rather than panic; Validate catches them.
	cfg.Merge.Sort = "shuffled"
	if cfg.SortMode() != "natural" {
		t.Errorf("invalid sort should fall back to natural, got %s", cfg.SortMode())
	}
}

func TestConfig_SchemaOverride(t *testing.T) {
	cfg := Default()
	if got := cfg.Schema().Len(); got != 8 {
		t.Errorf("default schema length = %d, want 8", got)
	}

	cfg.Merge.Columns = []string{"#Id", "Jp", "En", "Extra"}
	if got := cfg.Schema().Len(); got != 4 {
		t.Errorf("configured schema length = %d, want 4", got)
	}

	// Too few columns to carry a translation.
	cfg.Merge.Columns = []string{"#Id", "En"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for schema without a translation column")
	}
}

func TestConfig_ReplacerOverride(t *testing.T) {
	cfg := Default()
	if got := cfg.Replacer().Replace("“x”"); got != `"x"` {
		t.Errorf("default replacer = %q", got)
	}

	cfg.Clean.Forbidden = map[string]string{"…": "..."}
	r := cfg.Replacer()
	if got := r.Replace("wait…"); got != "wait..." {
		t.Errorf("configured replacer = %q", got)
	}
	if got := r.Replace("“x”"); got != "“x”" {
		t.Errorf("configured table should fully replace the default, got %q", got)
	}
}

func TestConfig_BrokenTokens(t *testing.T) {
	cfg := Default()
	if len(cfg.BrokenTokens()) == 0 {
		t.Error("default token list should not be empty")
	}
	cfg.Tags.BrokenTokens = []string{"<FOO"}
	if got := cfg.BrokenTokens(); len(got) != 1 || got[0] != "<FOO" {
		t.Errorf("configured tokens = %v", got)
	}
}
