package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gmdkit/internal/check"
	"gmdkit/internal/report"
)

const lengthReportName = "length_violations.txt"

var (
	lengthsMin     int
	lengthsMax     int
	lengthsMeasure string
)

// lengthsCmd checks translation lengths
var lengthsCmd = &cobra.Command{
	Use:   "lengths <file>...",
	Short: "Check translation lengths against the display limits",
	Long: `Flags translation cells shorter than --min or longer than --max
(either bound disabled with 0). --measure width counts East-Asian display
width, where a full-width rune takes two cells, instead of runes. Violations
go to ` + lengthReportName + `.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLengths,
}

func init() {
	lengthsCmd.Flags().IntVar(&lengthsMin, "min", check.DefaultMinLength, "Minimum length, 0 disables")
	lengthsCmd.Flags().IntVar(&lengthsMax, "max", check.DefaultMaxLength, "Maximum length, 0 disables")
	lengthsCmd.Flags().StringVar(&lengthsMeasure, "measure", "", "Length measure: runes or width")
}

func runLengths(cmd *cobra.Command, args []string) error {
	checker := check.NewLengthChecker()
	checker.Min = cfg.Check.MinLength
	checker.Max = cfg.Check.MaxLength
	checker.Measure = cfg.Measure()
	checker.Encoding = cfg.Encoding()
	if cmd.Flags().Changed("min") {
		checker.Min = lengthsMin
	}
	if cmd.Flags().Changed("max") {
		checker.Max = lengthsMax
	}
	if cmd.Flags().Changed("measure") {
		m, err := check.ParseMeasure(lengthsMeasure)
		if err != nil {
			return err
		}
		checker.Measure = m
	}

	rep := report.New()
	for _, path := range args {
		violations, err := checker.File(path)
		if err != nil {
			return err
		}
		rep.File(path)
		for _, v := range violations {
			rep.Line("Line %d: length %d: %s", v.Line, v.Length, v.Row.Translation())
		}
		rep.Blank()
	}
	if err := rep.Save(lengthReportName); err != nil {
		return err
	}
	fmt.Printf("%d violations -> %s\n", rep.Findings(), lengthReportName)
	return nil
}
