// Package dedupe removes repeated rows from splits and the combined file.
// Two rows are "the same message" when everything except the translation
// matches after noise stripping; which copy survives depends on which one
// actually carries a translation.
package dedupe

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"gmdkit/internal/csvio"
	"gmdkit/internal/gmd"
)

// noisePattern strips the characters that differ between otherwise identical
// rows: quotes, dashes, commas of both widths, and whitespace including the
// ideographic space Japanese text uses.
var noisePattern = regexp.MustCompile(`["'―,，\x{00A0}\x{3000}\s]`)

// normalize collapses a field for signature comparison.
func normalize(s string) string {
	return noisePattern.ReplaceAllString(s, "")
}

// sigSep joins signature fields. Unit separator never occurs in game text.
const sigSep = "\x1f"

// TranslationColumn is the column name excluded from signatures.
var TranslationColumn = gmd.DefaultColumns[gmd.ColTranslation]

// Deduper holds the shared knobs of the dedupe operations.
type Deduper struct {
	Encoding csvio.Encoding
	// IgnoreColumns are excluded from row signatures. Defaults to the
	// translation column, which is exactly the field duplicates differ in.
	IgnoreColumns []string

	logger *zap.Logger
}

// New returns a Deduper with project defaults.
func New(logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{
		Encoding:      csvio.EncodingUTF8,
		IgnoreColumns: []string{TranslationColumn},
		logger:        logger,
	}
}

func (d *Deduper) ignored() map[string]bool {
	m := make(map[string]bool, len(d.IgnoreColumns))
	for _, c := range d.IgnoreColumns {
		m[c] = true
	}
	return m
}

// splitHeader separates a leading header row from the body. Combined files
// carry a "#Index,..." header; raw splits have none and use the standard
// column names positionally.
func splitHeader(rows []gmd.Row) (headers []string, header gmd.Row, body []gmd.Row) {
	if len(rows) > 0 && strings.HasPrefix(rows[0].Field(0), "#") {
		return rows[0], rows[0], rows[1:]
	}
	return gmd.DefaultColumns, nil, rows
}

// signature builds the comparison key for one row under the given headers.
func (d *Deduper) signature(row gmd.Row, headers []string, ignore map[string]bool) string {
	fields := make([]string, 0, len(headers))
	for i, h := range headers {
		if ignore[h] || i >= len(row) {
			continue
		}
		fields = append(fields, normalize(row[i]))
	}
	return strings.Join(fields, sigSep)
}

// FileResult summarizes deduplication of a single file.
type FileResult struct {
	Output  string
	Total   int // body rows read
	Kept    int
	Removed int
}

// DefaultDedupedName is the output written next to the input file.
const DefaultDedupedName = "deduplicated.csv"

// File removes duplicate rows from one CSV file, keeping the first
// occurrence of each signature. The input is left untouched; the cleaned
// copy is written to output, or to deduplicated.csv beside the input when
// output is empty.
func (d *Deduper) File(path, output string) (*FileResult, error) {
	rows, err := csvio.ReadFile(path, d.Encoding)
	if err != nil {
		return nil, err
	}
	headers, header, body := splitHeader(rows)
	ignore := d.ignored()

	seen := make(map[string]bool, len(body))
	kept := make([]gmd.Row, 0, len(body))
	if header != nil {
		kept = append(kept, header)
	}
	for _, row := range body {
		sig := d.signature(row, headers, ignore)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		kept = append(kept, row)
	}

	if output == "" {
		output = filepath.Join(filepath.Dir(path), DefaultDedupedName)
	}
	if err := csvio.WriteFile(output, kept); err != nil {
		return nil, err
	}

	res := &FileResult{Output: output, Total: len(body)}
	res.Kept = len(kept)
	if header != nil {
		res.Kept--
	}
	res.Removed = res.Total - res.Kept
	d.logger.Info("deduplicated file",
		zap.String("input", path),
		zap.String("output", output),
		zap.Int("removed", res.Removed))
	return res, nil
}

// Diff output name, written beside the first input.
const DefaultDiffName = "missing_entries.csv"

// DiffResult lists rows present in one file but not the other.
type DiffResult struct {
	Output          string
	MissingInSecond []gmd.Row // rows of the first file absent from the second
	MissingInFirst  []gmd.Row // rows of the second file absent from the first
}

// Diff compares two CSV files by row signature over their shared columns and
// writes the rows unique to each side. Row order follows the source files.
func (d *Deduper) Diff(path1, path2, output string) (*DiffResult, error) {
	rows1, err := csvio.ReadFile(path1, d.Encoding)
	if err != nil {
		return nil, err
	}
	rows2, err := csvio.ReadFile(path2, d.Encoding)
	if err != nil {
		return nil, err
	}
	headers1, _, body1 := splitHeader(rows1)
	headers2, _, body2 := splitHeader(rows2)
	ignore := d.ignored()

	// Compare on the columns both files share, minus the ignored ones.
	in2 := make(map[string]bool, len(headers2))
	for _, h := range headers2 {
		in2[h] = true
	}
	var common []string
	for _, h := range headers1 {
		if in2[h] && !ignore[h] {
			common = append(common, h)
		}
	}

	sigOver := func(row gmd.Row, headers []string) string {
		idx := make(map[string]int, len(headers))
		for i, h := range headers {
			idx[h] = i
		}
		fields := make([]string, 0, len(common))
		for _, h := range common {
			fields = append(fields, normalize(row.Field(idx[h])))
		}
		return strings.Join(fields, sigSep)
	}

	set1 := make(map[string]bool, len(body1))
	for _, row := range body1 {
		set1[sigOver(row, headers1)] = true
	}
	set2 := make(map[string]bool, len(body2))
	for _, row := range body2 {
		set2[sigOver(row, headers2)] = true
	}

	res := &DiffResult{}
	for _, row := range body1 {
		if !set2[sigOver(row, headers1)] {
			res.MissingInSecond = append(res.MissingInSecond, row)
		}
	}
	for _, row := range body2 {
		if !set1[sigOver(row, headers2)] {
			res.MissingInFirst = append(res.MissingInFirst, row)
		}
	}

	if output == "" {
		output = filepath.Join(filepath.Dir(path1), DefaultDiffName)
	}
	if err := writeDiff(output, headers1, headers2, res); err != nil {
		return nil, err
	}
	res.Output = output
	return res, nil
}

// writeDiff writes both missing-row sections under the first file's header.
// Rows from the second file are reordered into that header's column order.
func writeDiff(path string, headers1, headers2 []string, res *DiffResult) error {
	var b strings.Builder
	cw := csvio.NewWriter(&b)
	if err := cw.Write(headers1); err != nil {
		return err
	}
	cw.Flush()

	if len(res.MissingInSecond) > 0 {
		b.WriteString("# Missing in second file:\n")
		for _, row := range res.MissingInSecond {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
	}
	if len(res.MissingInFirst) > 0 {
		b.WriteString("# Missing in first file:\n")
		for _, row := range res.MissingInFirst {
			if err := cw.Write(reorder(row, headers2, headers1)); err != nil {
				return err
			}
		}
		cw.Flush()
	}
	if err := cw.Error(); err != nil {
		return err
	}
	return writeText(path, b.String())
}

// reorder maps a row from its own header order into the target header
// order. Columns the source lacks come out empty.
func reorder(row gmd.Row, from, to []string) gmd.Row {
	idx := make(map[string]int, len(from))
	for i, h := range from {
		idx[h] = i
	}
	out := make(gmd.Row, len(to))
	for i, h := range to {
		if j, ok := idx[h]; ok {
			out[i] = row.Field(j)
		}
	}
	return out
}

func writeText(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
