package split

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSplit(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func names(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestDiscoverNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"msg_10.csv", "msg_2.csv", "msg_1.csv", "intro.csv"} {
		writeSplit(t, dir, name, "")
	}

	files, err := NewFinder().Discover([]string{dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	got := names(files)
	want := []string{"intro.csv", "msg_1.csv", "msg_2.csv", "msg_10.csv"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Discover() order = %v, want %v", got, want)
	}
}

func TestDiscoverLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"msg_10.csv", "msg_2.csv"} {
		writeSplit(t, dir, name, "")
	}

	f := NewFinder()
	f.Sort = SortLexical
	files, err := f.Discover([]string{dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	got := names(files)
	want := []string{"msg_10.csv", "msg_2.csv"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Discover() order = %v, want %v", got, want)
	}
}

func TestDiscoverPreservesArgumentOrder(t *testing.T) {
	root := t.TempDir()
	dirB := filepath.Join(root, "b")
	dirA := filepath.Join(root, "a")
	writeSplit(t, dirB, "b.csv", "")
	writeSplit(t, dirA, "a.csv", "")

	// dirB listed first on purpose: directory order follows arguments,
	// not path names.
	files, err := NewFinder().Discover([]string{dirB, dirA})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	got := names(files)
	want := []string{"b.csv", "a.csv"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Discover() order = %v, want %v", got, want)
	}
}

func TestDiscoverRecursesAndSkipsHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	writeSplit(t, dir, filepath.Join("sub", "deep.csv"), "")
	writeSplit(t, dir, "top.csv", "")
	writeSplit(t, dir, filepath.Join(".git", "ignored.csv"), "")
	writeSplit(t, dir, "notes.txt", "")

	files, err := NewFinder().Discover([]string{dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	got := names(files)
	// Paths sort component-wise, so "sub/deep.csv" lands before "top.csv".
	want := []string{"deep.csv", "top.csv"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscoverCaseInsensitivePattern(t *testing.T) {
	dir := t.TempDir()
	writeSplit(t, dir, "SHOUT.CSV", "")

	files, err := NewFinder().Discover([]string{dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Discover() found %d files, want 1", len(files))
	}
}

func TestDiscoverRejectsMissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := NewFinder().Discover([]string{missing})
	if err == nil {
		t.Fatal("Discover() expected error for missing directory")
	}
	if !strings.Contains(err.Error(), "invalid split path") {
		t.Errorf("Discover() error = %q, want mention of invalid split path", err)
	}
}

func TestDiscoverRejectsFileArgument(t *testing.T) {
	dir := t.TempDir()
	file := writeSplit(t, dir, "plain.csv", "")

	_, err := NewFinder().Discover([]string{file})
	if err == nil {
		t.Fatal("Discover() expected error for file argument")
	}
}

func TestParseSortMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SortMode
		wantErr bool
	}{
		{"natural", SortNatural, false},
		{"lexical", SortLexical, false},
		{"", SortNatural, false},
		{"random", SortNatural, true},
	}
	for _, tt := range tests {
		got, err := ParseSortMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSortMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseSortMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"msg_2", "msg_10", true},
		{"msg_10", "msg_2", false},
		{"msg_2", "msg_2", false},
		{"a10b2", "a10b10", true},
		{"chapter1", "chapter1a", true},
		{"2", "10", true},
	}
	for _, tt := range tests {
		if got := naturalLess(tt.a, tt.b); got != tt.want {
			t.Errorf("naturalLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
