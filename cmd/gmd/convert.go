package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gmdkit/internal/tomlconv"
)

// convertCmd groups format conversions
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert other text formats into the CSV schema",
}

var convertTomlCmd = &cobra.Command{
	Use:   "toml <src_dir> <dst_dir>",
	Short: "Convert TOML tables to CSV files",
	Long: `Finds every .toml file under the source directory, reads its arrays
of tables, and writes one CSV per file under the destination, mirroring the
directory tree. The header is the union of keys across the file's tables in
first-seen order; missing keys become empty fields. Files that fail to
parse are reported and skipped.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvertToml,
}

func runConvertToml(cmd *cobra.Command, args []string) error {
	res, err := tomlconv.New(logger).Dir(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("%d files converted", len(res.Converted))
	if len(res.Failed) > 0 {
		fmt.Printf(", %d failed", len(res.Failed))
	}
	fmt.Println()
	for _, f := range res.Failed {
		fmt.Printf("  failed: %s\n", f)
	}
	return nil
}

func init() {
	convertCmd.AddCommand(convertTomlCmd)
}
