// Package report accumulates the plain-text diagnostic files the validation
// tools emit (problematic_tag_limiters.txt, invalid_tags.txt,
// length_violations.txt, mismatches.txt, results.txt). A report is built in
// memory during the run and written once at the end. Content is a pure
// function of the inputs: no timestamps or ids, so reruns over unchanged
// files produce identical reports.
package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// sectionRule separates a per-file heading from its findings.
const sectionRule = 40

// Report is an in-memory diagnostic log.
type Report struct {
	buf      bytes.Buffer
	findings int
}

// New returns an empty report.
func New() *Report {
	return &Report{}
}

// File opens a per-file section, mirroring the layout contributors already
// know from the older tooling.
func (r *Report) File(path string) {
	fmt.Fprintf(&r.buf, "Processing file: %s\n%s\n", path, strings.Repeat("-", sectionRule))
}

// Line records one finding line.
func (r *Report) Line(format string, args ...any) {
	fmt.Fprintf(&r.buf, format+"\n", args...)
	r.findings++
}

// Note records a line without counting it as a finding (context, sub-detail).
func (r *Report) Note(format string, args ...any) {
	fmt.Fprintf(&r.buf, format+"\n", args...)
}

// Blank inserts an empty line between blocks.
func (r *Report) Blank() {
	r.buf.WriteByte('\n')
}

// Findings returns the number of recorded findings.
func (r *Report) Findings() int { return r.findings }

// Empty reports whether nothing was recorded at all.
func (r *Report) Empty() bool { return r.buf.Len() == 0 }

// String returns the accumulated report text.
func (r *Report) String() string { return r.buf.String() }

// Save writes the report to path. A report with zero findings is written as
// a single "No violations found." line so a contributor opening the file
// sees an answer rather than emptiness.
func (r *Report) Save(path string) error {
	content := r.buf.Bytes()
	if r.findings == 0 {
		content = []byte("No violations found.\n")
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
