package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gmdkit/cmd/gmd/ui"
	"gmdkit/internal/report"
	"gmdkit/internal/stats"
)

const statsReportName = "results.txt"

// statsCmd counts translations per file
var statsCmd = &cobra.Command{
	Use:   "stats <file>...",
	Short: "Per-file translation counts",
	Long: `Counts the rows with a non-empty translation in each file, most
translated first, and prints the table. The same numbers go to ` + statsReportName + `.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	counter := stats.NewCounter()
	counter.Encoding = cfg.Encoding()

	counts, err := counter.Files(args)
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderStats(counts))

	rep := report.New()
	for _, c := range counts {
		rep.Line("%s: %d/%d translated (%.1f%%)", c.Path, c.Translated, c.Rows, c.Percent())
	}
	total := stats.Total(counts)
	rep.Line("Total: %d/%d translated (%.1f%%)", total.Translated, total.Rows, total.Percent())
	return rep.Save(statsReportName)
}
