// Package stats counts translation progress across split files.
package stats

import (
	"sort"
	"strings"

	"gmdkit/internal/csvio"
	"gmdkit/internal/gmd"
)

// FileCount is translation progress for one file.
type FileCount struct {
	Path       string
	Rows       int // rows with a translation column
	Translated int // rows whose translation is non-blank
}

// Percent returns the translated share, 0 for empty files.
func (c FileCount) Percent() float64 {
	if c.Rows == 0 {
		return 0
	}
	return float64(c.Translated) / float64(c.Rows) * 100
}

// Counter tallies per-file translation counts.
type Counter struct {
	Encoding csvio.Encoding
}

// NewCounter returns a Counter with the default encoding.
func NewCounter() *Counter {
	return &Counter{Encoding: csvio.EncodingUTF8}
}

// File counts one CSV file. Rows too short to carry a translation are
// ignored; a header row counts like any other row.
func (c *Counter) File(path string) (FileCount, error) {
	rows, err := csvio.ReadFile(path, c.Encoding)
	if err != nil {
		return FileCount{}, err
	}
	count := FileCount{Path: path}
	for _, row := range rows {
		if len(row) <= gmd.ColTranslation {
			continue
		}
		count.Rows++
		if strings.TrimSpace(row.Translation()) != "" {
			count.Translated++
		}
	}
	return count, nil
}

// Files counts each file and returns the results sorted by translated rows,
// busiest first. Ties break by path so reruns list identically.
func (c *Counter) Files(paths []string) ([]FileCount, error) {
	counts := make([]FileCount, 0, len(paths))
	for _, path := range paths {
		count, err := c.File(path)
		if err != nil {
			return nil, err
		}
		counts = append(counts, count)
	}
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Translated != counts[j].Translated {
			return counts[i].Translated > counts[j].Translated
		}
		return counts[i].Path < counts[j].Path
	})
	return counts, nil
}

// Total sums a set of counts.
func Total(counts []FileCount) FileCount {
	total := FileCount{Path: "total"}
	for _, c := range counts {
		total.Rows += c.Rows
		total.Translated += c.Translated
	}
	return total
}
