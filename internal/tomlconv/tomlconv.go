// Package tomlconv converts the mod's TOML translation tables into the CSV
// schema the rest of the kit works on. Each [[table]] entry becomes one CSV
// row; the header is the union of keys across all entries, in the order the
// file introduces them.
package tomlconv

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"gmdkit/internal/csvio"
	"gmdkit/internal/split"
)

// tablePattern matches [section] and [[section]] header lines.
var tablePattern = regexp.MustCompile(`(?m)^\s*\[\[?\s*([^\[\]]+?)\s*\]?\]`)

// keyPattern matches the key of a `key = value` line.
var keyPattern = regexp.MustCompile(`(?m)^\s*([A-Za-z0-9_-]+)\s*=`)

// Convert turns one TOML document into a header row plus data rows.
//
// Decoded values come from the TOML parser; key and section ordering comes
// from scanning the raw text, because a decoded map has no order left.
// Sections or keys the scan cannot see (exotic syntax) are appended in
// sorted order so output stays deterministic either way.
func Convert(data []byte) ([]string, [][]string, error) {
	// Contributed tables routinely start with a UTF-8 BOM.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}

	sections := orderedSections(data, doc)

	var entries []map[string]any
	for _, name := range sections {
		for _, entry := range tableEntries(doc[name]) {
			entries = append(entries, entry)
		}
	}

	headers := orderedKeys(data, entries)

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		row := make([]string, len(headers))
		for i, key := range headers {
			if v, ok := entry[key]; ok {
				row[i] = formatValue(v)
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// orderedSections lists the document's top-level tables in file order.
func orderedSections(data []byte, doc map[string]any) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range tablePattern.FindAllSubmatch(data, -1) {
		name := string(m[1])
		if _, exists := doc[name]; exists && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	var rest []string
	for name := range doc {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// tableEntries extracts the array-of-tables entries from one decoded value.
// Scalar or single-table sections convert to nothing, they carry no rows.
func tableEntries(v any) []map[string]any {
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []any:
		var entries []map[string]any
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				entries = append(entries, m)
			}
		}
		return entries
	}
	return nil
}

// orderedKeys builds the union of entry keys, ordered by first appearance
// in the raw text.
func orderedKeys(data []byte, entries []map[string]any) []string {
	present := make(map[string]bool)
	for _, entry := range entries {
		for k := range entry {
			present[k] = true
		}
	}

	var keys []string
	taken := make(map[string]bool)
	for _, m := range keyPattern.FindAllSubmatch(data, -1) {
		key := string(m[1])
		if present[key] && !taken[key] {
			taken[key] = true
			keys = append(keys, key)
		}
	}
	var rest []string
	for k := range present {
		if !taken[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// formatValue renders a decoded TOML value as a CSV cell.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// Converter converts whole directory trees.
type Converter struct {
	Finder *split.Finder
	logger *zap.Logger
}

// New returns a Converter with the project defaults.
func New(logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := split.NewFinder()
	f.Pattern = "*.toml"
	return &Converter{Finder: f, logger: logger}
}

// Result summarizes a directory conversion.
type Result struct {
	Converted []string // written CSV paths
	Failed    []string // inputs that did not parse
}

// File converts one TOML file to one CSV file.
func (c *Converter) File(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	headers, rows, err := Convert(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	cw := csvio.NewWriter(out)
	if err := cw.Write(headers); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			out.Close()
			return fmt.Errorf("write %s: %w", dst, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return out.Close()
}

// Dir converts every TOML file under src into a mirrored tree under dst.
// A file that fails to decode is reported and skipped, not fatal: these
// tables are hand-maintained and one bad file should not block thousands.
func (c *Converter) Dir(src, dst string) (*Result, error) {
	files, err := c.Finder.Discover([]string{src})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no TOML files found in %s", src)
	}

	res := &Result{}
	for _, file := range files {
		rel, err := filepath.Rel(src, file)
		if err != nil {
			return nil, err
		}
		outPath := filepath.Join(dst, strings.TrimSuffix(rel, filepath.Ext(rel))+".csv")
		if err := c.File(file, outPath); err != nil {
			c.logger.Warn("skipping undecodable file",
				zap.String("file", file),
				zap.Error(err))
			res.Failed = append(res.Failed, file)
			continue
		}
		res.Converted = append(res.Converted, outPath)
	}
	c.logger.Info("converted TOML tree",
		zap.String("src", src),
		zap.String("dst", dst),
		zap.Int("converted", len(res.Converted)),
		zap.Int("failed", len(res.Failed)))
	return res, nil
}
