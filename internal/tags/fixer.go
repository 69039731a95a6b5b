package tags

import (
	"regexp"
	"strings"
)

// DefaultBrokenTokens are the opening fragments a line can dangle with when
// an editor wrapped a tag mid-way. Order is first-match.
var DefaultBrokenTokens = []string{
	"<AREA", "<COL", "<HAVE", "<ICON", "<ITEM", "<KC", "<KCP", "<KCT", "<KCTP",
	"<NAME", "<NPC", "<QCND", "<QDEL", "<QDEL NAME", "<SPAI", "<SPOT", "<SQDI",
	"<STG", "<UNIT", "<UNTN", "<VAL",
}

// fragmentPattern grabs the tail of a split tag: the first run of non-space
// characters ending in '>' at the start of a line.
var fragmentPattern = regexp.MustCompile(`^\s*(\S+?>)`)

// Fixer rejoins tags that were broken across line breaks inside a cell.
type Fixer struct {
	Tokens []string
}

// NewFixer returns a Fixer using the default token list.
func NewFixer() *Fixer {
	return &Fixer{Tokens: DefaultBrokenTokens}
}

// Fix scans the cell line by line. A line whose trailing-space-trimmed form
// ends with a known token is missing its tag tail; the tail is pulled from
// the next non-blank line (up to and including the first '>') and appended
// with a single space. Blank lines between the halves are tolerated and
// preserved. Returns the repaired cell and whether anything changed.
func (f *Fixer) Fix(cell string) (string, bool) {
	lines := splitKeepingBlanks(cell)
	modified := false
	for i := range lines {
		if f.endToken(lines[i]) == "" {
			continue
		}
		j := i + 1
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		if j >= len(lines) {
			continue
		}
		m := fragmentPattern.FindStringSubmatchIndex(lines[j])
		if m == nil {
			continue
		}
		fragment := lines[j][m[2]:m[3]]
		lines[i] = strings.TrimRight(lines[i], " \t") + " " + fragment
		lines[j] = lines[j][m[1]:]
		modified = true
	}
	return strings.Join(lines, "\n"), modified
}

// endToken returns the token the line dangles with, or "".
func (f *Fixer) endToken(line string) string {
	stripped := strings.TrimRight(line, " \t")
	for _, token := range f.Tokens {
		if strings.HasSuffix(stripped, token) {
			return token
		}
	}
	return ""
}

// splitKeepingBlanks splits on line breaks without discarding interior blank
// lines. A single trailing break is dropped so Join round-trips cleanly.
func splitKeepingBlanks(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
