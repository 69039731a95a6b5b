package speaker

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gmdkit/internal/csvio"
	"gmdkit/internal/gmd"
)

// Mode is how a file's rows map to metadata entries.
type Mode string

const (
	// ModeNormal uses each row's own archive name and read index.
	ModeNormal Mode = "normal"
	// ModeFallback derives the metadata file from the CSV file name and
	// the read index from row position, for files missing archive columns.
	ModeFallback Mode = "fallback"
)

// Event is one progress update from a fill run. Log-only events carry a
// message; row ticks carry Done/Total.
type Event struct {
	File  string
	Done  int
	Total int
	Log   string
}

// FileReport summarizes filling one file.
type FileReport struct {
	Path       string
	Mode       Mode
	Rows       int
	Filled     int // speaker cells newly written
	AlreadySet int // cells that had a value and were left alone
	NoSpeaker  int // rows the metadata had nothing for
	Problems   []string
}

// DefaultWorkers bounds how many files are filled at once.
const DefaultWorkers = 4

// Filler writes NPC names into the Speaker column, in place. It is the one
// tool in the kit that modifies its input files; that is its contract.
type Filler struct {
	Index    *Index
	Encoding csvio.Encoding
	Workers  int

	logger *zap.Logger
}

// NewFiller returns a Filler over the given archive index.
func NewFiller(index *Index, logger *zap.Logger) *Filler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filler{
		Index:    index,
		Encoding: csvio.EncodingUTF8,
		Workers:  DefaultWorkers,
		logger:   logger,
	}
}

// FillAll fills every file, a bounded number of them concurrently. emit may
// be nil; when set it is called from worker goroutines and must be safe for
// concurrent use. Reports come back in input order.
func (f *Filler) FillAll(ctx context.Context, paths []string, emit func(Event)) ([]*FileReport, error) {
	reports := make([]*FileReport, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	workers := f.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := f.FillFile(path, emit)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// FillFile fills one file and rewrites it. Unreadable metadata and bad read
// indices are per-row problems, not errors; only failing to read or write
// the CSV itself is fatal.
func (f *Filler) FillFile(path string, emit func(Event)) (*FileReport, error) {
	send := func(e Event) {
		if emit != nil {
			e.File = path
			emit(e)
		}
	}

	rows, err := csvio.ReadFile(path, f.Encoding)
	if err != nil {
		return nil, err
	}

	report := &FileReport{Path: path}
	if len(rows) == 0 {
		report.problem(send, "file is empty")
		return report, nil
	}

	if hasArcColumn(rows[0]) {
		report.Mode = ModeNormal
		f.fillNormal(rows, report, send)
	} else {
		report.Mode = ModeFallback
		rows = f.fillFallback(path, rows, report, send)
	}

	if err := csvio.Rewrite(path, rows); err != nil {
		return nil, err
	}
	f.logger.Info("filled speakers",
		zap.String("file", path),
		zap.String("mode", string(report.Mode)),
		zap.Int("filled", report.Filled),
		zap.Int("no_speaker", report.NoSpeaker))
	return report, nil
}

// hasArcColumn reports whether the row carries a usable archive name.
func hasArcColumn(row gmd.Row) bool {
	return len(row) > gmd.ColArcName &&
		strings.HasSuffix(strings.ToLower(row.ArcName()), ".arc")
}

func (f *Filler) fillNormal(rows []gmd.Row, report *FileReport, send func(Event)) {
	total := len(rows)
	report.Rows = total
	missing := make(map[string]bool)

	for i := range rows {
		rows[i] = rows[i].Pad(gmd.ColSpeaker + 1)
		row := rows[i]
		tick := Event{Done: i + 1, Total: total}

		if row.Speaker() != "" {
			report.AlreadySet++
			send(tick)
			continue
		}
		arc := row.ArcName()
		if !strings.HasSuffix(strings.ToLower(arc), ".arc") {
			send(tick)
			continue
		}

		docName := arc[:len(arc)-len(".arc")] + MetadataSuffix
		doc, err := f.Index.Document(docName)
		if err != nil {
			if !missing[docName] {
				missing[docName] = true
				report.problem(send, "%v (from %s)", err, arc)
			}
			report.NoSpeaker++
			send(tick)
			continue
		}

		index, err := row.ReadIndex()
		if err != nil {
			report.problem(send, "invalid read index %q", row.Field(gmd.ColReadIndex))
			report.NoSpeaker++
			send(tick)
			continue
		}

		if npc := doc.Speaker(index); npc != "" {
			row[gmd.ColSpeaker] = npc
			report.Filled++
		} else {
			report.NoSpeaker++
		}
		send(tick)
	}
}

// fillFallback appends "english" and "speaker" columns to the header row
// and fills speakers by row position: the first data row is read index 0.
func (f *Filler) fillFallback(path string, rows []gmd.Row, report *FileReport, send func(Event)) []gmd.Row {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	docName := base + MetadataSuffix

	doc, err := f.Index.Document(docName)
	if err != nil {
		report.problem(send, "%v (fallback for %s)", err, filepath.Base(path))
	}

	rows[0] = append(rows[0], "english", "speaker")
	width := len(rows[0])
	total := len(rows) - 1
	report.Rows = total

	for j := 1; j < len(rows); j++ {
		rows[j] = rows[j].Pad(width)
		row := rows[j]
		tick := Event{Done: j, Total: total}

		if strings.TrimSpace(row[width-1]) != "" {
			report.AlreadySet++
			send(tick)
			continue
		}

		npc := ""
		if doc != nil {
			npc = doc.Speaker(j - 1)
		}
		if npc != "" {
			row[width-1] = npc
			report.Filled++
		} else {
			report.NoSpeaker++
		}
		send(tick)
	}
	return rows
}

func (r *FileReport) problem(send func(Event), format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Problems = append(r.Problems, msg)
	send(Event{Log: msg})
}
