// Package check holds the read-only validation passes: translated-string
// length limits and the translation-completeness check used to gate splits
// before they reach the combined file.
package check

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"gmdkit/internal/csvio"
	"gmdkit/internal/gmd"
)

// Measure selects how string length is counted.
type Measure string

const (
	// MeasureRunes counts code points. Default, matches how contributors
	// count characters in their editors.
	MeasureRunes Measure = "runes"
	// MeasureWidth counts terminal display cells, so full-width CJK
	// characters count double. Closer to what the game's fixed-width
	// message boxes actually fit.
	MeasureWidth Measure = "width"
)

// ParseMeasure maps a config/flag string to a Measure.
func ParseMeasure(name string) (Measure, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(MeasureRunes):
		return MeasureRunes, nil
	case string(MeasureWidth):
		return MeasureWidth, nil
	}
	return "", fmt.Errorf("unknown measure %q (want runes or width)", name)
}

// Default length limits for one rendered line of quest text.
const (
	DefaultMinLength = 5
	DefaultMaxLength = 40
)

// LengthChecker flags translations outside the configured bounds.
// A zero Min or Max disables that side of the check.
type LengthChecker struct {
	Min      int
	Max      int
	Measure  Measure
	Encoding csvio.Encoding
}

// NewLengthChecker returns a checker with the project's default limits.
func NewLengthChecker() *LengthChecker {
	return &LengthChecker{
		Min:      DefaultMinLength,
		Max:      DefaultMaxLength,
		Measure:  MeasureRunes,
		Encoding: csvio.EncodingUTF8,
	}
}

// LengthViolation is one out-of-bounds translation.
type LengthViolation struct {
	Line   int // 1-based CSV line
	Length int
	Row    gmd.Row
}

// Length measures s under the checker's measure.
func (c *LengthChecker) Length(s string) int {
	if c.Measure == MeasureWidth {
		return runewidth.StringWidth(s)
	}
	return len([]rune(s))
}

// File checks every row of one CSV file. Rows too short to carry a
// translation are ignored, same as everywhere else in the kit.
func (c *LengthChecker) File(path string) ([]LengthViolation, error) {
	rows, err := csvio.ReadFile(path, c.Encoding)
	if err != nil {
		return nil, err
	}
	var violations []LengthViolation
	for i, row := range rows {
		if len(row) <= gmd.ColTranslation {
			continue
		}
		n := c.Length(row.Translation())
		if (c.Min > 0 && n < c.Min) || (c.Max > 0 && n > c.Max) {
			violations = append(violations, LengthViolation{Line: i + 1, Length: n, Row: row})
		}
	}
	return violations, nil
}

// FileStatus is the completeness verdict for one split.
type FileStatus struct {
	Path      string
	Rows      int // rows that carry a translation column
	Empty     int // translations that are blank
	Japanese  int // translations still containing Japanese text
	FirstLine int // first offending 1-based line, 0 when verified
}

// Verified reports whether every translation is present and translated.
func (s *FileStatus) Verified() bool { return s.Empty == 0 && s.Japanese == 0 }

// Verifier scans splits for untranslated or missing text in the
// translation column.
type Verifier struct {
	Encoding csvio.Encoding
}

// NewVerifier returns a Verifier with the default encoding.
func NewVerifier() *Verifier {
	return &Verifier{Encoding: csvio.EncodingUTF8}
}

// File verifies one split.
func (v *Verifier) File(path string) (*FileStatus, error) {
	rows, err := csvio.ReadFile(path, v.Encoding)
	if err != nil {
		return nil, err
	}
	status := &FileStatus{Path: path}
	for i, row := range rows {
		if len(row) <= gmd.ColTranslation {
			continue
		}
		status.Rows++
		text := row.Translation()
		bad := false
		if strings.TrimSpace(text) == "" {
			status.Empty++
			bad = true
		} else if gmd.ContainsJapanese(text) {
			status.Japanese++
			bad = true
		}
		if bad && status.FirstLine == 0 {
			status.FirstLine = i + 1
		}
	}
	return status, nil
}

// DefaultQuarantineDir is where unfinished splits are set aside.
const DefaultQuarantineDir = "V"

// Quarantine moves path into dir, creating dir if needed. Falls back to
// copy-and-delete when the rename crosses filesystems.
func Quarantine(path, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create quarantine dir %s: %w", dir, err)
	}
	dest := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dest); err == nil {
		return dest, nil
	}
	// Rename fails across filesystems; fall back to copy and delete.
	if err := copyFile(path, dest); err != nil {
		return "", fmt.Errorf("move %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("move %s: %w", path, err)
	}
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// ScrubJapanese blanks every translation that still contains Japanese text,
// in place, and returns how many rows were cleared.
func ScrubJapanese(rows []gmd.Row) int {
	cleared := 0
	for _, row := range rows {
		if len(row) <= gmd.ColTranslation {
			continue
		}
		if gmd.ContainsJapanese(row.Translation()) {
			row.SetTranslation("")
			cleared++
		}
	}
	return cleared
}
