package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gmdkit/cmd/gmd/ui"
	"gmdkit/internal/speaker"
)

var (
	speakersArchive string
	speakersWorkers int
	speakersUI      bool
)

// speakersCmd fills the Speaker column
var speakersCmd = &cobra.Command{
	Use:   "speakers <file>...",
	Short: "Fill the Speaker column from archive metadata, in place",
	Long: `Looks up each row's NPC in the game's message metadata
(<arc>.mss.json anywhere under the archive directory) and writes the
English NPC name, or the NPC id when no name exists, into the Speaker
column. Cells that already have a speaker are left alone; rows are widened
to nine columns. Files without archive name columns fall back to matching
the metadata file by CSV file name and rows by position.

This is the one tool in the kit that rewrites its input files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpeakers,
}

func init() {
	speakersCmd.Flags().StringVar(&speakersArchive, "archive", "", "Extracted game archive root (default from config)")
	speakersCmd.Flags().IntVar(&speakersWorkers, "workers", 0, "Files filled concurrently (default from config)")
	speakersCmd.Flags().BoolVar(&speakersUI, "ui", false, "Interactive progress display")
}

func runSpeakers(cmd *cobra.Command, args []string) error {
	root := cfg.Speakers.ArchiveDir
	if speakersArchive != "" {
		root = speakersArchive
	}
	if root == "" {
		return fmt.Errorf("no archive directory (pass --archive or set speakers.archive_dir)")
	}

	index, err := speaker.BuildIndex(root, logger)
	if err != nil {
		return err
	}
	logger.Info("indexed archive metadata", zap.String("root", root), zap.Int("files", index.Len()))

	filler := speaker.NewFiller(index, logger)
	filler.Encoding = cfg.Encoding()
	filler.Workers = cfg.Speakers.Workers
	if speakersWorkers > 0 {
		filler.Workers = speakersWorkers
	}

	var reports []*speaker.FileReport
	if speakersUI {
		reports, err = ui.RunFill(cmd.Context(), filler, args)
	} else {
		reports, err = filler.FillAll(cmd.Context(), args, func(ev speaker.Event) {
			if ev.Log != "" {
				logger.Info(ev.Log, zap.String("file", ev.File))
			}
		})
	}
	if err != nil {
		return err
	}

	for _, r := range reports {
		if r == nil {
			continue
		}
		fmt.Printf("%s: %d rows, %d filled, %d already set, %d without speaker\n",
			r.Path, r.Rows, r.Filled, r.AlreadySet, r.NoSpeaker)
		for _, p := range r.Problems {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}
