package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gmdkit/internal/split"
)

var (
	mergeOutputDir string
	mergeSort      string
	mergePattern   string
	mergeClean     bool
)

// mergeCmd combines splits into the patch-ready file
var mergeCmd = &cobra.Command{
	Use:   "merge <split_dir>...",
	Short: "Merge split CSV files into the combined gmd.csv",
	Long: `Walks each given directory for split CSV files and concatenates their
rows, in directory argument order and natural file order, under a single
header line. Rows whose field count does not match the schema are skipped
and counted. Input files are never modified; forbidden symbols are replaced
on the way into the output (disable with --clean=false).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutputDir, "output_dir", "o", "", "Directory to write the combined file (default from config)")
	mergeCmd.Flags().StringVar(&mergeSort, "sort", "", "File order within a directory: natural or lexical")
	mergeCmd.Flags().StringVar(&mergePattern, "pattern", "", "Split file name pattern")
	mergeCmd.Flags().BoolVar(&mergeClean, "clean", true, "Replace forbidden symbols while merging")
}

func runMerge(cmd *cobra.Command, args []string) error {
	agg := split.New(logger)
	agg.Schema = cfg.Schema()
	agg.Encoding = cfg.Encoding()
	agg.OutputName = cfg.Merge.OutputName
	agg.Replacer = cfg.Replacer()
	agg.Clean = cfg.Merge.Clean
	agg.Finder.Sort = cfg.SortMode()
	if cfg.Merge.Pattern != "" {
		agg.Finder.Pattern = cfg.Merge.Pattern
	}

	if cmd.Flags().Changed("sort") {
		mode, err := split.ParseSortMode(mergeSort)
		if err != nil {
			return err
		}
		agg.Finder.Sort = mode
	}
	if mergePattern != "" {
		agg.Finder.Pattern = mergePattern
	}
	if cmd.Flags().Changed("clean") {
		agg.Clean = mergeClean
	}

	outDir := cfg.Merge.OutputDir
	if mergeOutputDir != "" {
		outDir = mergeOutputDir
	}

	res, err := agg.Merge(args, outDir)
	if err != nil {
		return err
	}
	fmt.Printf("Generated %s\n", res.Output)
	fmt.Printf("Merged %d rows from %d files (skipped %d)\n", res.Merged, res.Files, res.Skipped)
	return nil
}
