// Package split discovers per-section translation CSV files ("splits") under
// a set of root directories and merges them into the combined gmd.csv the
// game-launcher patch tool consumes.
package split

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SortMode selects how split files are ordered within one root directory.
// The naming convention is the contributors', not ours, so it is
// configuration rather than a fixed rule.
type SortMode string

const (
	// SortNatural orders numbered files the way contributors expect:
	// 2.csv before 10.csv. This matches the project's numbered-split
	// convention and is the default.
	SortNatural SortMode = "natural"
	// SortLexical is plain byte-wise path ordering.
	SortLexical SortMode = "lexical"
)

// ParseSortMode maps a config/flag string to a SortMode.
func ParseSortMode(name string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(SortNatural):
		return SortNatural, nil
	case string(SortLexical):
		return SortLexical, nil
	}
	return "", fmt.Errorf("unknown sort mode %q (want natural or lexical)", name)
}

// Finder locates split files under root directories.
type Finder struct {
	// Pattern matches the file base name, case-insensitively. Default "*.csv".
	Pattern string
	// Sort orders files within each root. Default SortNatural.
	Sort SortMode
}

// NewFinder returns a Finder with the project defaults.
func NewFinder() *Finder {
	return &Finder{Pattern: "*.csv", Sort: SortNatural}
}

// Discover walks each directory in the order given and returns the matching
// files, ordered deterministically: directories keep their argument order,
// and files within a directory are sorted by relative path with the
// configured mode. A directory with no matches contributes nothing; a
// missing directory is an error.
func (f *Finder) Discover(dirs []string) ([]string, error) {
	var all []string
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("invalid split path: %s", dir)
		}
		files, err := f.discoverOne(dir)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	return all, nil
}

func (f *Finder) discoverOne(root string) ([]string, error) {
	pattern := strings.ToLower(f.Pattern)
	if pattern == "" {
		pattern = "*.csv"
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip dot-directories, but never the root itself (it may be ".").
			if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		ok, err := filepath.Match(pattern, strings.ToLower(d.Name()))
		if err != nil {
			return fmt.Errorf("bad split pattern %q: %w", pattern, err)
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	mode := f.Sort
	if mode == "" {
		mode = SortNatural
	}
	sort.SliceStable(files, func(i, j int) bool {
		if mode == SortLexical {
			return files[i] < files[j]
		}
		return naturalPathLess(files[i], files[j])
	})
	return files, nil
}

// naturalPathLess compares two paths segment by segment, with numeric runs
// inside a segment compared as numbers. "splits/2.csv" sorts before
// "splits/10.csv".
func naturalPathLess(a, b string) bool {
	as := strings.Split(filepath.ToSlash(a), "/")
	bs := strings.Split(filepath.ToSlash(b), "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		return naturalLess(as[i], bs[i])
	}
	return len(as) < len(bs)
}

// naturalLess compares two names by alternating digit and non-digit runs.
// Digit runs compare by value, other runs case-insensitively; ties fall back
// to the raw strings so the order stays total.
func naturalLess(a, b string) bool {
	ta, tb := tokenize(a), tokenize(b)
	for i := 0; i < len(ta) && i < len(tb); i++ {
		x, y := ta[i], tb[i]
		if x == y {
			continue
		}
		xn, xIsNum := numeric(x)
		yn, yIsNum := numeric(y)
		switch {
		case xIsNum && yIsNum:
			if xn != yn {
				return xn < yn
			}
			// Same value ("07" vs "7") or both past the overflow cap:
			// shorter run first, then raw bytes.
			if len(x) != len(y) {
				return len(x) < len(y)
			}
			return x < y
		case xIsNum != yIsNum:
			// Numbers sort before words, matching how numbered splits
			// precede named ones.
			return xIsNum
		default:
			lx, ly := strings.ToLower(x), strings.ToLower(y)
			if lx != ly {
				return lx < ly
			}
			return x < y
		}
	}
	if len(ta) != len(tb) {
		return len(ta) < len(tb)
	}
	return a < b
}

// tokenize splits a name into maximal runs of ASCII digits and non-digits.
func tokenize(s string) []string {
	var tokens []string
	start := 0
	var inDigits bool
	for i, r := range s {
		d := isDigit(r)
		if i == 0 {
			inDigits = d
			continue
		}
		if d != inDigits {
			tokens = append(tokens, s[start:i])
			start = i
			inDigits = d
		}
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// numeric parses a token as an unsigned number. Digit runs past the cap all
// report the same value; the caller breaks that tie by length then raw bytes.
func numeric(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	var n uint64
	for _, r := range s {
		if !isDigit(r) {
			return 0, false
		}
		if n > (1<<63)/10 {
			return 1 << 62, true
		}
		n = n*10 + uint64(r-'0')
	}
	return n, true
}
