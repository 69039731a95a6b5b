package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gmdkit/internal/check"
	"gmdkit/internal/clean"
	"gmdkit/internal/config"
	"gmdkit/internal/csvio"
	"gmdkit/internal/gmd"
)

// readRows loads a CSV with the configured input encoding.
func readRows(path string) ([]gmd.Row, error) {
	return csvio.ReadFile(path, cfg.Encoding())
}

// writeResult writes rows back in place or to a derived sibling file and
// returns the path written.
func writeResult(path, suffix string, rows []gmd.Row, inPlace bool) (string, error) {
	if inPlace {
		return path, csvio.Rewrite(path, rows)
	}
	out := csvio.Derived(path, suffix)
	return out, csvio.WriteFile(out, rows)
}

// cleanCmd replaces forbidden symbols
var cleanCmd = &cobra.Command{
	Use:   "clean <file>...",
	Short: "Replace forbidden symbols, in place",
	Long: `Replaces typographic symbols the game font cannot draw: curly quotes
become straight ones and the ASCII tilde becomes the full-width ～. Files
are rewritten only when something changed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	rep := cfg.Replacer()
	for _, path := range args {
		rows, err := readRows(path)
		if err != nil {
			return err
		}
		total := 0
		for _, row := range rows {
			for i, field := range row {
				cleaned, n := rep.ReplaceCount(field)
				if n > 0 {
					row[i] = cleaned
					total += n
				}
			}
		}
		if total == 0 {
			fmt.Printf("%s: already clean\n", path)
			continue
		}
		if err := csvio.Rewrite(path, rows); err != nil {
			return err
		}
		logger.Info("replaced forbidden symbols", zap.String("file", path), zap.Int("count", total))
		fmt.Printf("%s: replaced %d symbols\n", path, total)
	}
	return nil
}

var (
	unbreakAllFields bool
	unbreakInPlace   bool
)

// unbreakCmd removes line breaks
var unbreakCmd = &cobra.Command{
	Use:   "unbreak <file>...",
	Short: "Remove line breaks from translations",
	Long: `Joins multi-line translation cells into single lines, one space per
break. With --all-fields every field is flattened instead. Output goes to
<name>_cleaned.csv next to the input unless --in-place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUnbreak,
}

func runUnbreak(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		rows, err := readRows(path)
		if err != nil {
			return err
		}
		changed := 0
		for _, row := range rows {
			if unbreakAllFields {
				for i, field := range row {
					if flat := clean.StripBreaks(field); flat != field {
						row[i] = flat
						changed++
					}
				}
				continue
			}
			text := row.Translation()
			if joined := clean.JoinLines(text); joined != text {
				row.SetTranslation(joined)
				changed++
			}
		}
		out, err := writeResult(path, "_cleaned", rows, unbreakInPlace)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d cells unbroken -> %s\n", path, changed, out)
	}
	return nil
}

var (
	wrapWidth   int
	wrapInPlace bool
)

// wrapCmd word-wraps translations
var wrapCmd = &cobra.Command{
	Use:   "wrap <file>...",
	Short: "Word-wrap translations to the dialogue box width",
	Long: `Greedily wraps translation cells at the maximum line width. Existing
line breaks are kept as paragraph boundaries; a word longer than the width
gets a line of its own. Output goes to <name>_wrapped.csv unless --in-place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWrap,
}

func runWrap(cmd *cobra.Command, args []string) error {
	width := cfg.Clean.WrapWidth
	if cmd.Flags().Changed("width") {
		width = wrapWidth
	}
	for _, path := range args {
		rows, err := readRows(path)
		if err != nil {
			return err
		}
		changed := 0
		for _, row := range rows {
			text := row.Translation()
			if wrapped := clean.Wrap(text, width); wrapped != text {
				row.SetTranslation(wrapped)
				changed++
			}
		}
		out, err := writeResult(path, "_wrapped", rows, wrapInPlace)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d cells wrapped -> %s\n", path, changed, out)
	}
	return nil
}

// slashesCmd fixes Windows path separators
var slashesCmd = &cobra.Command{
	Use:   "slashes <file>...",
	Short: "Convert backslashes to forward slashes, in place",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSlashes,
}

func runSlashes(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		rows, err := readRows(path)
		if err != nil {
			return err
		}
		changed := 0
		for _, row := range rows {
			for i, field := range row {
				if fixed := clean.SlashForward(field); fixed != field {
					row[i] = fixed
					changed++
				}
			}
		}
		if changed == 0 {
			fmt.Printf("%s: no backslashes\n", path)
			continue
		}
		if err := csvio.Rewrite(path, rows); err != nil {
			return err
		}
		fmt.Printf("%s: fixed %d fields\n", path, changed)
	}
	return nil
}

var padNewline bool

// padCmd pads every field
var padCmd = &cobra.Command{
	Use:   "pad <file>...",
	Short: "Surround every field with spaces",
	Long: `Adds one leading and one trailing space to every field, the spacing
some dialogue boxes need around their text. --newline prefixes each field
with a line break instead. Output goes to <name>_padded.csv.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPad,
}

func runPad(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		rows, err := readRows(path)
		if err != nil {
			return err
		}
		for _, row := range rows {
			for i, field := range row {
				if padNewline {
					row[i] = clean.LeadingBreak(field)
				} else {
					row[i] = clean.PadField(field)
				}
			}
		}
		out := csvio.Derived(path, "_padded")
		if err := csvio.WriteFile(out, rows); err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", path, out)
	}
	return nil
}

// scrubCmd groups the destructive column scrubs
var scrubCmd = &cobra.Command{
	Use:   "scrub",
	Short: "Destructive column scrubs (in place)",
}

var scrubJPCmd = &cobra.Command{
	Use:   "jp <file>...",
	Short: "Blank translations that still contain Japanese",
	Long: `Clears the translation cell of every row where it still contains
hiragana, katakana, or kanji, leaving the cell ready for a fresh
translation. Files are rewritten in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrubJP,
}

func runScrubJP(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		rows, err := readRows(path)
		if err != nil {
			return err
		}
		n := check.ScrubJapanese(rows)
		if n == 0 {
			fmt.Printf("%s: nothing to scrub\n", path)
			continue
		}
		if err := csvio.Rewrite(path, rows); err != nil {
			return err
		}
		logger.Info("scrubbed untranslated cells", zap.String("file", path), zap.Int("count", n))
		fmt.Printf("%s: blanked %d cells\n", path, n)
	}
	return nil
}

var scrubHeaderCmd = &cobra.Command{
	Use:   "header <file>...",
	Short: "Drop the first row of each file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScrubHeader,
}

func runScrubHeader(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		rows, err := readRows(path)
		if err != nil {
			return err
		}
		if len(rows) <= 1 {
			logger.Warn("file too short to drop a header",
				zap.String("file", path),
				zap.Int("rows", len(rows)))
			fmt.Printf("%s: only %d rows, skipped\n", path, len(rows))
			continue
		}
		if err := csvio.Rewrite(path, rows[1:]); err != nil {
			return err
		}
		fmt.Printf("%s: header dropped\n", path)
	}
	return nil
}

func init() {
	unbreakCmd.Flags().BoolVar(&unbreakAllFields, "all-fields", false, "Flatten every field, not just the translation")
	unbreakCmd.Flags().BoolVar(&unbreakInPlace, "in-place", false, "Rewrite the input instead of a _cleaned copy")

	wrapCmd.Flags().IntVar(&wrapWidth, "width", config.DefaultWrapWidth, "Maximum line width in runes")
	wrapCmd.Flags().BoolVar(&wrapInPlace, "in-place", false, "Rewrite the input instead of a _wrapped copy")

	padCmd.Flags().BoolVar(&padNewline, "newline", false, "Prefix fields with a line break instead of padding with spaces")

	scrubCmd.AddCommand(scrubJPCmd)
	scrubCmd.AddCommand(scrubHeaderCmd)
}
