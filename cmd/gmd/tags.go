package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gmdkit/internal/csvio"
	"gmdkit/internal/report"
	"gmdkit/internal/tags"
)

// Report files the tag tools write into the working directory.
const (
	limiterReportName = "problematic_tag_limiters.txt"
	invalidReportName = "invalid_tags.txt"
	fixReportName     = "results.txt"
)

// tagsCmd groups the markup tag tools
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Markup tag validation and repair",
}

var tagsCheckCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Flag tags touching text and unbalanced delimiters",
	Long: `Scans translation cells for markup problems: a tag glued to a letter
on either side (color tags are exempt) and lone delimiters, a '<' that
never closes or a '>' with no opener. Findings go to ` + limiterReportName + `
with a slice of surrounding text per finding.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTagsCheck,
}

func runTagsCheck(cmd *cobra.Command, args []string) error {
	rep := report.New()
	for _, path := range args {
		rows, err := readRows(path)
		if err != nil {
			return err
		}
		rep.File(path)
		for i, row := range rows {
			text := row.Translation()
			for _, f := range tags.AdjacencyFindings(text) {
				rep.Line("Line %d: tag %s touches surrounding text: ...%s...", i+1, f.Tag, f.Context)
			}
			for _, f := range tags.BalanceFindings(text) {
				rep.Line("Line %d: %s: ...%s...", i+1, f.Tag, f.Context)
			}
		}
		rep.Blank()
	}
	if err := rep.Save(limiterReportName); err != nil {
		return err
	}
	fmt.Printf("%d findings -> %s\n", rep.Findings(), limiterReportName)
	return nil
}

var tagsListPath string

var tagsTyposCmd = &cobra.Command{
	Use:   "typos <file>...",
	Short: "Flag tags absent from the valid-tag list",
	Long: `Extracts every tag from the translation cells, normalizes inner
whitespace, and checks it against the valid-tag list (one tag per line).
Unknown tags go to ` + invalidReportName + `, with the nearest valid tag
suggested when one is close enough.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTagsTypos,
}

func runTagsTypos(cmd *cobra.Command, args []string) error {
	listPath := cfg.Tags.ListPath
	if tagsListPath != "" {
		listPath = tagsListPath
	}
	valid, err := tags.LoadSet(listPath)
	if err != nil {
		return err
	}
	checker := tags.NewTypoChecker(valid)
	if cfg.Tags.MaxDistance > 0 {
		checker.MaxDistance = cfg.Tags.MaxDistance
	}
	logger.Debug("loaded valid tags", zap.String("list", listPath), zap.Int("tags", valid.Len()))

	rep := report.New()
	for _, path := range args {
		rows, err := readRows(path)
		if err != nil {
			return err
		}
		rep.File(path)
		for i, row := range rows {
			for _, typo := range checker.Check(row.Translation()) {
				if typo.Suggestion != "" {
					rep.Line("Line %d: unknown tag %s (did you mean %s)", i+1, typo.Tag, typo.Suggestion)
				} else {
					rep.Line("Line %d: unknown tag %s", i+1, typo.Tag)
				}
			}
		}
		rep.Blank()
	}
	if err := rep.Save(invalidReportName); err != nil {
		return err
	}
	fmt.Printf("%d unknown tags -> %s\n", rep.Findings(), invalidReportName)
	return nil
}

var tagsFixCmd = &cobra.Command{
	Use:   "fix <file>...",
	Short: "Rejoin tags broken across lines, in place",
	Long: `Repairs translation cells where a tag was split by a line break: a
line ending with a known opening token gets the closing fragment pulled up
from the next non-blank line. Before/after cells are logged to ` + fixReportName + `;
a file is rewritten only when something changed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTagsFix,
}

func runTagsFix(cmd *cobra.Command, args []string) error {
	fixer := &tags.Fixer{Tokens: cfg.BrokenTokens()}
	rep := report.New()
	for _, path := range args {
		rows, err := readRows(path)
		if err != nil {
			return err
		}
		rep.File(path)
		fixed := 0
		for i, row := range rows {
			text := row.Translation()
			repaired, changed := fixer.Fix(text)
			if !changed {
				continue
			}
			row.SetTranslation(repaired)
			fixed++
			rep.Line("Line %d:", i+1)
			rep.Note("  before: %q", text)
			rep.Note("  after:  %q", repaired)
		}
		if fixed > 0 {
			if err := csvio.Rewrite(path, rows); err != nil {
				return err
			}
		}
		rep.Blank()
		fmt.Printf("%s: %d cells repaired\n", path, fixed)
	}
	return rep.Save(fixReportName)
}

func init() {
	tagsTyposCmd.Flags().StringVar(&tagsListPath, "tag-list", "", "Valid-tag list file (default from config)")

	tagsCmd.AddCommand(tagsCheckCmd)
	tagsCmd.AddCommand(tagsTyposCmd)
	tagsCmd.AddCommand(tagsFixCmd)
}
