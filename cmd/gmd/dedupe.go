package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gmdkit/internal/dedupe"
)

var (
	dedupeOutput string
	diffOutput   string
)

// dedupeCmd groups duplicate removal
var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate rows",
}

var dedupeFileCmd = &cobra.Command{
	Use:   "file <file>",
	Short: "Deduplicate one CSV file",
	Long: `Drops rows whose normalized signature (every column except the
translation, with quotes, dashes, commas, and whitespace stripped) repeats
an earlier row. The input stays untouched; the cleaned copy goes to
` + dedupe.DefaultDedupedName + ` beside it.`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupeFile,
}

func runDedupeFile(cmd *cobra.Command, args []string) error {
	d := dedupe.New(logger)
	d.Encoding = cfg.Encoding()
	res, err := d.File(args[0], dedupeOutput)
	if err != nil {
		return err
	}
	fmt.Printf("%d rows, %d kept, %d removed -> %s\n", res.Total, res.Kept, res.Removed, res.Output)
	return nil
}

var dedupeArchiveCmd = &cobra.Command{
	Use:   "archive <dir>",
	Short: "Deduplicate across every CSV under a tree, in place",
	Long: `Groups rows across all files by their non-translation fields and
keeps one copy per group: a translated row beats untranslated ones, a row
whose neighbors share its archive is preferred, and the earliest row breaks
remaining ties. Files that lose rows are rewritten in place. Duplicate
groups holding different non-empty translations go to ` + dedupe.MismatchLogName + `.`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupeArchive,
}

func runDedupeArchive(cmd *cobra.Command, args []string) error {
	d := dedupe.New(logger)
	d.Encoding = cfg.Encoding()
	res, err := d.Archive(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%d files, %d rows, %d duplicate groups, %d rows removed\n",
		res.Files, res.Rows, res.Groups, res.Removed)
	for _, f := range res.Rewritten {
		fmt.Printf("  rewrote %s\n", f)
	}
	if res.MismatchPath != "" {
		fmt.Printf("%d conflicting translations -> %s\n", len(res.Mismatches), res.MismatchPath)
	}
	return nil
}

// diffCmd compares two combined files
var diffCmd = &cobra.Command{
	Use:   "diff <first.csv> <second.csv>",
	Short: "Rows present in one file but missing from the other",
	Long: `Compares two CSV files by normalized row signature over their shared
columns and writes the rows unique to each side to ` + dedupe.DefaultDiffName + `,
under "# Missing in second file:" and "# Missing in first file:" markers.
A row whose translation changed is the same row; only identity fields count.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	d := dedupe.New(logger)
	d.Encoding = cfg.Encoding()
	res, err := d.Diff(args[0], args[1], diffOutput)
	if err != nil {
		return err
	}
	fmt.Printf("%d rows missing in second, %d missing in first -> %s\n",
		len(res.MissingInSecond), len(res.MissingInFirst), res.Output)
	return nil
}

func init() {
	dedupeFileCmd.Flags().StringVarP(&dedupeOutput, "output", "o", "", "Output file (default "+dedupe.DefaultDedupedName+" beside the input)")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "", "Output file (default "+dedupe.DefaultDiffName+" beside the first input)")

	dedupeCmd.AddCommand(dedupeFileCmd)
	dedupeCmd.AddCommand(dedupeArchiveCmd)
}
