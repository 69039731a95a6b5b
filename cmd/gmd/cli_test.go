package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gmdkit/internal/config"
	"gmdkit/internal/csvio"
)

// setupCmdTest points the globals at test defaults and moves into a fresh
// directory, where the commands drop their report files.
func setupCmdTest(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()
	cfg = config.Default()

	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return dir
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func readCell(t *testing.T, path string, row, col int) string {
	t.Helper()
	rows, err := csvio.ReadFile(path, csvio.EncodingUTF8)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if row >= len(rows) || col >= len(rows[row]) {
		t.Fatalf("%s has no cell (%d,%d): %v", path, row, col, rows)
	}
	return rows[row][col]
}

func TestCleanCmd(t *testing.T) {
	setupCmdTest(t)
	writeTestFile(t, "dialog.csv", "1,GREET,「やあ」,“Hello” ~hero~,g,a,quest.arc,0\n")

	if err := runClean(&cobra.Command{}, []string{"dialog.csv"}); err != nil {
		t.Fatalf("runClean failed: %v", err)
	}
	if got := readCell(t, "dialog.csv", 0, 3); got != `"Hello" ～hero～` {
		t.Errorf("translation = %q", got)
	}

	// A second pass finds nothing and must leave the file byte-identical.
	before := readTestFile(t, "dialog.csv")
	if err := runClean(&cobra.Command{}, []string{"dialog.csv"}); err != nil {
		t.Fatalf("second runClean failed: %v", err)
	}
	if after := readTestFile(t, "dialog.csv"); after != before {
		t.Error("clean rewrote an already-clean file")
	}
}

func TestUnbreakCmd(t *testing.T) {
	setupCmdTest(t)
	unbreakAllFields = false
	unbreakInPlace = false
	defer func() { unbreakAllFields = false; unbreakInPlace = false }()

	writeTestFile(t, "dialog.csv", "1,K,ＪＰ,\"Line one\nLine two\",g,a,quest.arc,0\n")

	if err := runUnbreak(&cobra.Command{}, []string{"dialog.csv"}); err != nil {
		t.Fatalf("runUnbreak failed: %v", err)
	}
	if got := readCell(t, "dialog_cleaned.csv", 0, 3); got != "Line one Line two" {
		t.Errorf("joined translation = %q", got)
	}
	// The input keeps its break; unbreak writes a copy by default.
	if got := readCell(t, "dialog.csv", 0, 3); !strings.Contains(got, "\n") {
		t.Error("input file should be untouched")
	}
}

func TestWrapCmd(t *testing.T) {
	setupCmdTest(t)
	wrapInPlace = false
	defer func() { wrapInPlace = false }()
	cfg.Clean.WrapWidth = 10

	writeTestFile(t, "dialog.csv", "1,K,ＪＰ,hello world this is game text,g,a,quest.arc,0\n")

	if err := runWrap(&cobra.Command{}, []string{"dialog.csv"}); err != nil {
		t.Fatalf("runWrap failed: %v", err)
	}
	want := "hello\nworld this\nis game\ntext"
	if got := readCell(t, "dialog_wrapped.csv", 0, 3); got != want {
		t.Errorf("wrapped translation = %q, want %q", got, want)
	}
}

func TestSlashesCmd(t *testing.T) {
	setupCmdTest(t)
	writeTestFile(t, "dialog.csv", `1,K,ＪＰ,text,gmd\quests\q1,arc\a,quest.arc,0`+"\n")

	if err := runSlashes(&cobra.Command{}, []string{"dialog.csv"}); err != nil {
		t.Fatalf("runSlashes failed: %v", err)
	}
	if got := readCell(t, "dialog.csv", 0, 4); got != "gmd/quests/q1" {
		t.Errorf("path field = %q", got)
	}
	if got := readCell(t, "dialog.csv", 0, 5); got != "arc/a" {
		t.Errorf("arc field = %q", got)
	}
}

func TestPadCmd(t *testing.T) {
	setupCmdTest(t)
	padNewline = false
	defer func() { padNewline = false }()

	writeTestFile(t, "dialog.csv", "1,K,ＪＰ,text\n")

	if err := runPad(&cobra.Command{}, []string{"dialog.csv"}); err != nil {
		t.Fatalf("runPad failed: %v", err)
	}
	for col, want := range []string{" 1 ", " K ", " ＪＰ ", " text "} {
		if got := readCell(t, "dialog_padded.csv", 0, col); got != want {
			t.Errorf("column %d = %q, want %q", col, got, want)
		}
	}
}

func TestScrubJPCmd(t *testing.T) {
	setupCmdTest(t)
	writeTestFile(t, "dialog.csv",
		"1,A,やあ,Hi,g,a,quest.arc,0\n"+
			"2,B,さらば,まだ日本語,g,a,quest.arc,1\n")

	if err := runScrubJP(&cobra.Command{}, []string{"dialog.csv"}); err != nil {
		t.Fatalf("runScrubJP failed: %v", err)
	}
	if got := readCell(t, "dialog.csv", 0, 3); got != "Hi" {
		t.Errorf("translated row changed: %q", got)
	}
	if got := readCell(t, "dialog.csv", 1, 3); got != "" {
		t.Errorf("untranslated row not blanked: %q", got)
	}
}

func TestScrubHeaderCmd(t *testing.T) {
	setupCmdTest(t)
	writeTestFile(t, "combined.csv", "#Index,Key,MsgJp,MsgEn\n1,A,や,Hi\n")
	writeTestFile(t, "short.csv", "1,A,や,Hi\n")

	if err := runScrubHeader(&cobra.Command{}, []string{"combined.csv", "short.csv"}); err != nil {
		t.Fatalf("runScrubHeader failed: %v", err)
	}
	if got := readTestFile(t, "combined.csv"); got != "1,A,や,Hi\n" {
		t.Errorf("combined.csv = %q", got)
	}
	// A single-row file has nothing above the data to drop.
	if got := readTestFile(t, "short.csv"); got != "1,A,や,Hi\n" {
		t.Errorf("short.csv = %q", got)
	}
}

func TestTagsCheckCmd(t *testing.T) {
	setupCmdTest(t)
	writeTestFile(t, "dialog.csv",
		"1,A,ＪＰ,Hello <NAME> there,g,a,quest.arc,0\n"+
			"2,B,ＪＰ,Press<NAME> now,g,a,quest.arc,1\n"+
			"3,C,ＪＰ,Broken < tag,g,a,quest.arc,2\n")

	if err := runTagsCheck(&cobra.Command{}, []string{"dialog.csv"}); err != nil {
		t.Fatalf("runTagsCheck failed: %v", err)
	}

	want := "Processing file: dialog.csv\n" +
		strings.Repeat("-", 40) + "\n" +
		"Line 2: tag <NAME> touches surrounding text: ...Press<NAME> now...\n" +
		"Line 3: unclosed '<': ...Broken < tag...\n" +
		"\n"
	got := readTestFile(t, limiterReportName)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestTagsTyposCmd(t *testing.T) {
	setupCmdTest(t)
	tagsListPath = ""
	defer func() { tagsListPath = "" }()

	writeTestFile(t, "tags_extracted.txt", "<NAME>\n<COL RED>\n<COL OFF>\n")
	writeTestFile(t, "dialog.csv",
		"1,A,ＪＰ,Hi <NAME>.,g,a,quest.arc,0\n"+
			"2,B,ＪＰ,Hi <NMAE>.,g,a,quest.arc,1\n"+
			"3,C,ＪＰ,Use <WEPON SLOT> now,g,a,quest.arc,2\n")

	if err := runTagsTypos(&cobra.Command{}, []string{"dialog.csv"}); err != nil {
		t.Fatalf("runTagsTypos failed: %v", err)
	}

	want := "Processing file: dialog.csv\n" +
		strings.Repeat("-", 40) + "\n" +
		"Line 2: unknown tag <NMAE> (did you mean <NAME>)\n" +
		"Line 3: unknown tag <WEPON SLOT>\n" +
		"\n"
	got := readTestFile(t, invalidReportName)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestTagsFixCmd(t *testing.T) {
	setupCmdTest(t)
	before := "Press <COL\nRED> A button"
	after := "Press <COL RED>\n A button"
	writeTestFile(t, "dialog.csv", "1,A,ＪＰ,\""+before+"\",g,a,quest.arc,0\n")

	if err := runTagsFix(&cobra.Command{}, []string{"dialog.csv"}); err != nil {
		t.Fatalf("runTagsFix failed: %v", err)
	}
	if got := readCell(t, "dialog.csv", 0, 3); got != after {
		t.Errorf("repaired translation = %q, want %q", got, after)
	}

	want := "Processing file: dialog.csv\n" +
		strings.Repeat("-", 40) + "\n" +
		"Line 1:\n" +
		fmt.Sprintf("  before: %q\n", before) +
		fmt.Sprintf("  after:  %q\n", after) +
		"\n"
	got := readTestFile(t, fixReportName)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestLengthsCmd(t *testing.T) {
	setupCmdTest(t)
	writeTestFile(t, "dialog.csv",
		"1,GREET,やあ,Hi,g,a,quest.arc,0\n"+
			"2,TALK,こんにちは,A perfectly reasonable line.,g,a,quest.arc,1\n"+
			"3,RANT,長い,This translation is way too long to fit inside the box.,g,a,quest.arc,2\n")

	if err := runLengths(&cobra.Command{}, []string{"dialog.csv"}); err != nil {
		t.Fatalf("runLengths failed: %v", err)
	}

	want := "Processing file: dialog.csv\n" +
		strings.Repeat("-", 40) + "\n" +
		"Line 1: length 2: Hi\n" +
		"Line 3: length 55: This translation is way too long to fit inside the box.\n" +
		"\n"
	got := readTestFile(t, lengthReportName)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyCmd(t *testing.T) {
	setupCmdTest(t)
	verifyQuarantineDir = "V"
	defer func() { verifyQuarantineDir = "" }()

	writeTestFile(t, "done.csv", "1,A,や,Hi,g,a,quest.arc,0\n")
	writeTestFile(t, "unfinished.csv", "1,A,や,Hi,g,a,quest.arc,0\n2,B,い,,g,a,quest.arc,1\n")

	output := captureOutput(t, func() {
		if err := runVerify(&cobra.Command{}, []string{"done.csv", "unfinished.csv"}); err != nil {
			t.Fatalf("runVerify failed: %v", err)
		}
	})

	if !strings.Contains(output, "done.csv: ok (1 rows)") {
		t.Errorf("expected ok line, got: %s", output)
	}
	if !strings.Contains(output, "unfinished.csv: 1 empty, 0 untranslated (first at line 2)") {
		t.Errorf("expected violation line, got: %s", output)
	}
	if _, err := os.Stat(filepath.Join("V", "unfinished.csv")); err != nil {
		t.Errorf("flagged file not quarantined: %v", err)
	}
	if _, err := os.Stat("unfinished.csv"); !os.IsNotExist(err) {
		t.Error("flagged file should be moved, not copied")
	}
	if _, err := os.Stat("done.csv"); err != nil {
		t.Errorf("verified file must stay put: %v", err)
	}
}

func TestDedupeFileCmd(t *testing.T) {
	setupCmdTest(t)
	dedupeOutput = ""
	defer func() { dedupeOutput = "" }()

	writeTestFile(t, "input.csv",
		"1,GREET,やあ,Hi,g,a,quest.arc,0\n"+
			"2,TALK,こんにちは,Hello,g,a,quest.arc,1\n"+
			"1,GREET,やあ,Hi again,g,a,quest.arc,0\n")

	output := captureOutput(t, func() {
		if err := runDedupeFile(&cobra.Command{}, []string{"input.csv"}); err != nil {
			t.Fatalf("runDedupeFile failed: %v", err)
		}
	})
	if !strings.Contains(output, "3 rows, 2 kept, 1 removed -> deduplicated.csv") {
		t.Errorf("unexpected summary: %s", output)
	}

	deduped := readTestFile(t, "deduplicated.csv")
	lines := strings.Split(strings.TrimSuffix(deduped, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("deduplicated.csv has %d lines: %q", len(lines), deduped)
	}
	// First occurrence wins, so "Hi" survives and "Hi again" goes.
	if !strings.Contains(lines[0], "Hi") || strings.Contains(deduped, "Hi again") {
		t.Errorf("wrong survivor: %q", deduped)
	}
}

func TestDedupeArchiveCmd(t *testing.T) {
	setupCmdTest(t)
	writeTestFile(t, filepath.Join("tree", "a.csv"), "1,GREET,やあ,Hello,g,a,quest.arc,0\n")
	writeTestFile(t, filepath.Join("tree", "b.csv"), "1,GREET,やあ,,g,a,quest.arc,0\n")

	output := captureOutput(t, func() {
		if err := runDedupeArchive(&cobra.Command{}, []string{"tree"}); err != nil {
			t.Fatalf("runDedupeArchive failed: %v", err)
		}
	})

	if !strings.Contains(output, "2 files, 2 rows, 1 duplicate groups, 1 rows removed") {
		t.Errorf("unexpected summary: %s", output)
	}
	// The translated copy wins; the untranslated file loses its row.
	if got := readTestFile(t, filepath.Join("tree", "a.csv")); !strings.Contains(got, "Hello") {
		t.Errorf("a.csv lost its translated row: %q", got)
	}
	if got := readTestFile(t, filepath.Join("tree", "b.csv")); got != "" {
		t.Errorf("b.csv should be emptied: %q", got)
	}
	if _, err := os.Stat(filepath.Join("tree", "mismatches.txt")); !os.IsNotExist(err) {
		t.Error("no mismatch log expected when only one translation is set")
	}
}

func TestDiffCmd(t *testing.T) {
	setupCmdTest(t)
	diffOutput = ""
	defer func() { diffOutput = "" }()

	header := "#Index,Key,MsgJp,MsgEn,GmdPath,ArcPath,ArcName,ReadIndex\n"
	writeTestFile(t, "first.csv", header+
		"1,A,あ,Hi,g,a,quest.arc,0\n"+
			"2,B,い,Yo,g,a,quest.arc,1\n")
	writeTestFile(t, "second.csv", header+
		"1,A,あ,Hi translated differently,g,a,quest.arc,0\n"+
			"3,C,う,New,g,a,quest.arc,2\n")

	output := captureOutput(t, func() {
		if err := runDiff(&cobra.Command{}, []string{"first.csv", "second.csv"}); err != nil {
			t.Fatalf("runDiff failed: %v", err)
		}
	})
	if !strings.Contains(output, "1 rows missing in second, 1 missing in first -> missing_entries.csv") {
		t.Errorf("unexpected summary: %s", output)
	}

	want := header +
		"# Missing in second file:\n" +
		"2,B,い,Yo,g,a,quest.arc,1\n" +
		"# Missing in first file:\n" +
		"3,C,う,New,g,a,quest.arc,2\n"
	got := readTestFile(t, "missing_entries.csv")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diff file mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsCmd(t *testing.T) {
	setupCmdTest(t)
	writeTestFile(t, "a.csv", "1,A,あ,Hi,g,a,quest.arc,0\n2,B,い,Yo,g,a,quest.arc,1\n")
	writeTestFile(t, "b.csv", "1,C,う,Hey,g,a,quest.arc,0\n2,D,え,,g,a,quest.arc,1\n")

	output := captureOutput(t, func() {
		if err := runStats(&cobra.Command{}, []string{"b.csv", "a.csv"}); err != nil {
			t.Fatalf("runStats failed: %v", err)
		}
	})
	if !strings.Contains(output, "Total") {
		t.Errorf("expected a total row in the table, got: %s", output)
	}

	want := "a.csv: 2/2 translated (100.0%)\n" +
		"b.csv: 1/2 translated (50.0%)\n" +
		"Total: 3/4 translated (75.0%)\n"
	got := readTestFile(t, statsReportName)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertTomlCmd(t *testing.T) {
	setupCmdTest(t)
	writeTestFile(t, filepath.Join("src", "items.toml"), "[[entry]]\nkey = \"A\"\nnew = \"Potion\"\n")
	writeTestFile(t, filepath.Join("src", "broken.toml"), "this is ] not toml [")

	output := captureOutput(t, func() {
		if err := runConvertToml(&cobra.Command{}, []string{"src", "dst"}); err != nil {
			t.Fatalf("runConvertToml failed: %v", err)
		}
	})
	if !strings.Contains(output, "1 files converted, 1 failed") {
		t.Errorf("unexpected summary: %s", output)
	}
	if got := readTestFile(t, filepath.Join("dst", "items.csv")); got != "key,new\nA,Potion\n" {
		t.Errorf("converted CSV = %q", got)
	}
}

func TestSpeakersCmdNoArchive(t *testing.T) {
	setupCmdTest(t)
	speakersArchive = ""
	defer func() { speakersArchive = "" }()
	cfg.Speakers.ArchiveDir = ""

	err := runSpeakers(&cobra.Command{}, []string{"dialog.csv"})
	if err == nil || !strings.Contains(err.Error(), "no archive directory") {
		t.Fatalf("expected missing-archive error, got: %v", err)
	}
}

func TestSpeakersCmd(t *testing.T) {
	setupCmdTest(t)
	speakersArchive = "arc"
	speakersWorkers = 0
	speakersUI = false
	defer func() { speakersArchive = ""; speakersWorkers = 0; speakersUI = false }()

	writeTestFile(t, filepath.Join("arc", "quest.mss.json"),
		`{"NativeMsgGroupArray":[{"NpcName":{"En":"Village Elder","Jp":"村長"},"MsgData":[{"GmdIndex":0},{"GmdIndex":1}]}]}`)
	writeTestFile(t, "dialog.csv",
		"1,GREET,やあ,Hello,g,a,quest.arc,0\n"+
			"2,ASK,どう,Well?,g,a,quest.arc,1\n")

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	output := captureOutput(t, func() {
		if err := runSpeakers(cmd, []string{"dialog.csv"}); err != nil {
			t.Fatalf("runSpeakers failed: %v", err)
		}
	})
	if !strings.Contains(output, "dialog.csv: 2 rows, 2 filled, 0 already set, 0 without speaker") {
		t.Errorf("unexpected summary: %s", output)
	}

	for row := 0; row < 2; row++ {
		if got := readCell(t, "dialog.csv", row, 8); got != "Village Elder" {
			t.Errorf("row %d speaker = %q", row, got)
		}
	}
}
