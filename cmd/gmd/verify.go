package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gmdkit/internal/check"
)

var verifyQuarantineDir string

// verifyCmd flags unfinished splits
var verifyCmd = &cobra.Command{
	Use:   "verify <file>...",
	Short: "Flag splits whose translations are incomplete",
	Long: `Checks every translation cell for emptiness or leftover Japanese
text. --quarantine moves flagged files into a holding directory (` + check.DefaultQuarantineDir + `/
unless a different one is given) so finished and unfinished splits stay
apart.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyQuarantineDir, "quarantine", "", "Move flagged files to this directory")
	verifyCmd.Flags().Lookup("quarantine").NoOptDefVal = check.DefaultQuarantineDir
}

func runVerify(cmd *cobra.Command, args []string) error {
	v := check.NewVerifier()
	v.Encoding = cfg.Encoding()

	flagged := 0
	for _, path := range args {
		st, err := v.File(path)
		if err != nil {
			return err
		}
		if st.Verified() {
			fmt.Printf("%s: ok (%d rows)\n", path, st.Rows)
			continue
		}
		flagged++
		fmt.Printf("%s: %d empty, %d untranslated (first at line %d)\n",
			path, st.Empty, st.Japanese, st.FirstLine)
		if verifyQuarantineDir != "" {
			moved, err := check.Quarantine(path, verifyQuarantineDir)
			if err != nil {
				return err
			}
			logger.Info("quarantined split", zap.String("file", path), zap.String("dest", moved))
			fmt.Printf("  moved to %s\n", moved)
		}
	}
	if flagged == 0 {
		fmt.Println("All files verified.")
	}
	return nil
}
