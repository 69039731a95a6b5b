package dedupe

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"gmdkit/internal/csvio"
	"gmdkit/internal/gmd"
	"gmdkit/internal/split"
)

// MismatchLogName is written into the archive root when duplicate rows
// disagree on their translation.
const MismatchLogName = "mismatches.txt"

// candidate is one occurrence of a duplicated row somewhere in the archive.
type candidate struct {
	file        string
	rowIndex    int // index into that file's rows
	translation string
	arcName     string
}

// ArchiveResult summarizes a whole-archive dedupe pass.
type ArchiveResult struct {
	Files        int // CSV files scanned
	Rows         int // rows considered
	Groups       int // duplicate groups found
	Removed      int // rows deleted
	Rewritten    []string
	Mismatches   []string
	MismatchPath string // empty when no mismatches
}

// Archive deduplicates across every CSV file under root at once. Rows are
// grouped by their non-translation fields; within a group the surviving copy
// is chosen in two stages: a row with a translation beats empty ones, then
// neighboring rows' archive names break ties (a row whose neighbors belong
// to the same .arc is the one in its right place). Files that lose rows are
// rewritten in place; everything else is untouched.
func (d *Deduper) Archive(root string) (*ArchiveResult, error) {
	files, err := split.NewFinder().Discover([]string{root})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", root)
	}

	fileRows := make(map[string][]gmd.Row, len(files))
	for _, f := range files {
		rows, err := csvio.ReadFile(f, d.Encoding)
		if err != nil {
			return nil, err
		}
		fileRows[f] = rows
	}

	res := &ArchiveResult{Files: len(files)}

	// Group rows by key in first-seen order so reruns report identically.
	groups := make(map[string][]candidate)
	var order []string
	for _, f := range files {
		for i, row := range fileRows[f] {
			if len(row) <= gmd.ColArcName {
				continue
			}
			// Header rows of combined files are never duplicates of data.
			if strings.HasPrefix(row.Field(0), "#") {
				continue
			}
			res.Rows++
			key := archiveKey(row)
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], candidate{
				file:        f,
				rowIndex:    i,
				translation: strings.TrimSpace(row.Translation()),
				arcName:     row.ArcName(),
			})
		}
	}

	deletions := make(map[string][]int)
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		res.Groups++
		keep := d.resolveGroup(group, fileRows, res)
		for _, c := range group {
			if c == keep {
				continue
			}
			deletions[c.file] = append(deletions[c.file], c.rowIndex)
			res.Removed++
		}
	}

	for _, f := range files {
		idxs := deletions[f]
		if len(idxs) == 0 {
			continue
		}
		kept := deleteRows(fileRows[f], idxs)
		if err := csvio.Rewrite(f, kept); err != nil {
			return nil, err
		}
		res.Rewritten = append(res.Rewritten, f)
		d.logger.Info("removed duplicate rows",
			zap.String("file", f),
			zap.Int("removed", len(idxs)))
	}

	if len(res.Mismatches) > 0 {
		path := filepath.Join(root, MismatchLogName)
		if err := writeText(path, strings.Join(res.Mismatches, "\n")); err != nil {
			return nil, err
		}
		res.MismatchPath = path
	}
	return res, nil
}

// archiveKey is the duplicate-detection key: every field except the
// translation, space-trimmed.
func archiveKey(row gmd.Row) string {
	fields := make([]string, 0, len(row))
	for i, f := range row {
		if i == gmd.ColTranslation {
			continue
		}
		fields = append(fields, strings.TrimSpace(f))
	}
	return strings.Join(fields, sigSep)
}

// resolveGroup picks the candidate to keep. Mismatched non-empty
// translations are logged before tie-breaking.
func (d *Deduper) resolveGroup(group []candidate, fileRows map[string][]gmd.Row, res *ArchiveResult) candidate {
	var nonEmpty []candidate
	for _, c := range group {
		if c.translation != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}

	pool := group
	if len(nonEmpty) > 0 {
		distinct := make(map[string]bool)
		for _, c := range nonEmpty {
			distinct[c.translation] = true
		}
		if len(distinct) > 1 {
			var b strings.Builder
			b.WriteString("Mismatched translations in duplicate group:\n")
			for _, c := range nonEmpty {
				fmt.Fprintf(&b, "  File: %s, Row: %d, text: %q\n", c.file, c.rowIndex+1, c.translation)
			}
			res.Mismatches = append(res.Mismatches, b.String())
		}
		pool = nonEmpty
	}

	// pool keeps first-seen order, so ties go to the earliest occurrence.
	best := pool[0]
	bestScore := contextScore(fileRows[best.file], best.rowIndex, best.arcName)
	for _, c := range pool[1:] {
		score := contextScore(fileRows[c.file], c.rowIndex, c.arcName)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// contextScore counts how many of the row's immediate neighbors share its
// archive name. Being surrounded by rows of the same .arc is strong evidence
// the row is where it belongs.
func contextScore(rows []gmd.Row, index int, arcName string) int {
	score := 0
	if index-1 >= 0 && len(rows[index-1]) > gmd.ColArcName && rows[index-1].ArcName() == arcName {
		score++
	}
	if index+1 < len(rows) && len(rows[index+1]) > gmd.ColArcName && rows[index+1].ArcName() == arcName {
		score++
	}
	return score
}

// deleteRows returns rows minus the listed indices.
func deleteRows(rows []gmd.Row, idxs []int) []gmd.Row {
	drop := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		drop[i] = true
	}
	kept := make([]gmd.Row, 0, len(rows)-len(idxs))
	for i, row := range rows {
		if !drop[i] {
			kept = append(kept, row)
		}
	}
	return kept
}
