// Command generate_gmd merges the per-section CSV splits into the combined
// gmd.csv consumed by the patch tool. It is the merge-only entry point kept
// for contributors' existing scripts; the gmd binary carries the same merge
// plus the rest of the toolkit.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gmdkit/internal/split"
)

var (
	outputDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "generate_gmd <split_dir>...",
	Short: "Merge split CSV files into gmd.csv",
	Long: `Searches the given directories for split CSV files, orders them the
way contributors number them (2 before 10), scrubs symbols the game font
cannot draw, and writes the combined gmd.csv. The splits themselves are
never modified.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func run(cmd *cobra.Command, args []string) error {
	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
		defer logger.Sync()
	}

	res, err := split.New(logger).Merge(args, outputDir)
	if err != nil {
		return err
	}
	fmt.Printf("Generated %s\n", res.Output)
	return nil
}

func init() {
	rootCmd.Flags().StringVarP(&outputDir, "output_dir", "o", ".", "Controls where gmd.csv will be written to")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
