package split

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"gmdkit/internal/clean"
	"gmdkit/internal/csvio"
	"gmdkit/internal/gmd"
)

// DefaultOutputName is the combined file the patch tool consumes.
const DefaultOutputName = "gmd.csv"

// ErrNoSplits is returned when discovery finds no split files anywhere.
// Nothing is written in that case.
var ErrNoSplits = errors.New("no splits to merge")

// Aggregator merges split files into the combined output. Inputs are never
// modified: splits belong to whoever last edited them, so normalization
// happens in-stream on the way into the output.
type Aggregator struct {
	Finder     *Finder
	Schema     gmd.Schema
	Encoding   csvio.Encoding
	OutputName string
	// Clean applies the forbidden-symbol table to every field while
	// merging. On by default; the output must never contain symbols the
	// game font cannot draw.
	Clean    bool
	Replacer *clean.Replacer

	logger *zap.Logger
}

// Result summarizes one merge run.
type Result struct {
	Output  string // path of the combined file
	Files   int    // split files merged
	Merged  int    // well-formed rows written
	Skipped int    // malformed rows dropped
}

// New returns an Aggregator with the project defaults.
func New(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		Finder:     NewFinder(),
		Schema:     gmd.DefaultSchema(),
		Encoding:   csvio.EncodingUTF8,
		OutputName: DefaultOutputName,
		Clean:      true,
		Replacer:   clean.DefaultReplacer(),
		logger:     logger,
	}
}

// Merge discovers splits under dirs and writes the combined file into
// outputDir. Directories keep their argument order; rows keep their in-file
// order. Rows whose field count does not match the schema are skipped and
// counted, never fatal. If no splits exist at all, no output is written and
// ErrNoSplits is returned.
func (a *Aggregator) Merge(dirs []string, outputDir string) (*Result, error) {
	info, err := os.Stat(outputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("invalid output path: %s", outputDir)
	}

	files, err := a.Finder.Discover(dirs)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSplits
	}

	outPath := filepath.Join(outputDir, a.OutputName)
	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", outPath, err)
	}

	res := &Result{Output: outPath, Files: len(files)}
	if err := a.writeAll(out, files, res); err != nil {
		out.Close()
		os.Remove(outPath)
		return nil, err
	}
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("write %s: %w", outPath, err)
	}

	a.logger.Info("merged splits",
		zap.Int("files", res.Files),
		zap.Int("rows", res.Merged),
		zap.Int("skipped", res.Skipped),
		zap.String("output", outPath))
	return res, nil
}

func (a *Aggregator) writeAll(out io.Writer, files []string, res *Result) error {
	w := csvio.NewWriter(out)

	// Header first; the patch tool keys on the "#Index" lead cell.
	if _, err := fmt.Fprintln(out, a.Schema.Header()); err != nil {
		return err
	}

	for _, path := range files {
		if err := a.appendFile(w, path, res); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// appendFile streams one split into the writer, row by row, so a malformed
// record skips just itself rather than the whole file.
func (a *Aggregator) appendFile(w *csv.Writer, path string, res *Result) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open split %s: %w", path, err)
	}
	defer f.Close()

	r, err := csvio.NewReader(f, a.Encoding)
	if err != nil {
		return err
	}

	want := a.Schema.Len()
	rowNum := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		rowNum++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Skipped++
				a.logger.Warn("skipping unparseable row",
					zap.String("file", path),
					zap.Int("row", rowNum),
					zap.Error(err))
				continue
			}
			return fmt.Errorf("read split %s: %w", path, err)
		}
		if len(record) != want {
			res.Skipped++
			a.logger.Warn("skipping malformed row",
				zap.String("file", path),
				zap.Int("row", rowNum),
				zap.Int("fields", len(record)),
				zap.Int("want", want))
			continue
		}
		if a.Clean && a.Replacer != nil {
			for i, field := range record {
				record[i] = a.Replacer.Replace(field)
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row from %s: %w", path, err)
		}
		res.Merged++
	}
}
