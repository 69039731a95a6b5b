package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gmdkit/internal/config"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gmd",
	Short: "gmd - community translation patch toolkit",
	Long: `gmd maintains the data behind the community translation patch.

It merges per-section CSV splits into the combined gmd.csv the patch tool
consumes, and carries the cleaning, validation, deduplication, speaker
filling, and TOML conversion passes contributors run over the splits.

Splits stay owned by their contributors: merge reads them without writing,
and the tools that do rewrite files say so in their help text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logger, err = buildLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		// One id per invocation so interleaved runs stay separable in a
		// shared log file. Report files never carry it.
		logger = logger.With(zap.String("run", uuid.NewString()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Format == "text" {
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	// Results print to stdout; diagnostics stay out of its way.
	zc.OutputPaths = []string{"stderr"}
	if lc.File != "" {
		zc.OutputPaths = []string{lc.File}
	}
	return zc.Build()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultFileName, "Config file (a missing file means defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(unbreakCmd)
	rootCmd.AddCommand(wrapCmd)
	rootCmd.AddCommand(slashesCmd)
	rootCmd.AddCommand(padCmd)
	rootCmd.AddCommand(scrubCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(lengthsCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(dedupeCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(speakersCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
