// Package csvio reads and writes the project's CSV files. Input handling is
// deliberately forgiving: contributed splits arrive with UTF-8 BOMs, stray
// quotes, and occasionally Shift-JIS bytes from Windows tooling, and a reader
// that chokes on those helps nobody. Output is always plain UTF-8 with
// standard quoting.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"gmdkit/internal/gmd"
)

// Encoding selects how input bytes are decoded before CSV parsing.
type Encoding string

const (
	EncodingUTF8     Encoding = "utf-8"
	EncodingShiftJIS Encoding = "shift-jis"
)

// ParseEncoding maps a config/flag string to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf8", "utf-8":
		return EncodingUTF8, nil
	case "sjis", "shift-jis", "shift_jis", "cp932":
		return EncodingShiftJIS, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", name)
}

func decoder(enc Encoding) (*encoding.Decoder, error) {
	switch enc {
	case "", EncodingUTF8:
		return unicode.UTF8.NewDecoder(), nil
	case EncodingShiftJIS:
		return japanese.ShiftJIS.NewDecoder(), nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", enc)
}

// NewReader wraps r in a BOM-tolerant decoder and returns a CSV reader
// configured for split files: comma-separated, lenient about quotes, and no
// field-count enforcement (the tools do their own schema checks). Leading
// spaces are significant in game text, so they are not trimmed. BOMOverride
// strips a UTF-8 BOM and honors UTF-16 BOMs regardless of the requested
// encoding.
func NewReader(r io.Reader, enc Encoding) (*csv.Reader, error) {
	dec, err := decoder(enc)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(dec)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr, nil
}

// ReadFile loads every row of a CSV file.
func ReadFile(path string, enc Encoding) ([]gmd.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr, err := NewReader(f, enc)
	if err != nil {
		return nil, err
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	rows := make([]gmd.Row, len(records))
	for i, rec := range records {
		rows[i] = gmd.Row(rec)
	}
	return rows, nil
}

// NewWriter returns a CSV writer for w. Output uses bare LF line endings so
// repeated runs over unchanged inputs stay byte-identical across platforms.
func NewWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.UseCRLF = false
	return cw
}

// WriteFile writes rows to path, replacing any existing file.
func WriteFile(path string, rows []gmd.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	cw := NewWriter(f)
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Rewrite replaces path with rows via a temp file in the same directory, so
// an interrupted run never leaves a half-written split behind.
func Rewrite(path string, rows []gmd.Row) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cw := NewWriter(tmp)
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("write %s: %w", tmpName, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Derived returns path with suffix inserted before the extension:
// Derived("a/b.csv", "_cleaned") -> "a/b_cleaned.csv".
func Derived(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// IsCSV reports whether path has a .csv extension, any case.
func IsCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
