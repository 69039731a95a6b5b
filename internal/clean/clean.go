// Package clean holds the field-level text transforms the cleaning tools
// apply to translated game text: forbidden-symbol replacement, line-break
// removal and insertion, path-separator fixes, and field padding. Every
// transform is a pure function so the same input always yields the same
// output.
package clean

import (
	"sort"
	"strings"
)

// DefaultForbidden maps typographic characters contributors paste in from
// word processors to the forms the game font can render. The ASCII tilde is
// displayed as garbage in-game and must be the full-width one.
var DefaultForbidden = map[string]string{
	"“": `"`, // left curly double quote
	"”": `"`, // right curly double quote
	"‘": `'`, // left curly single quote
	"’": `'`, // right curly single quote
	"~": "～", // fullwidth tilde
}

// Replacer applies a fixed symbol-replacement table to text.
type Replacer struct {
	pairs [][2]string
	rep   *strings.Replacer
}

// NewReplacer builds a Replacer from a replacement table. The table is
// applied in one pass; keys must not overlap.
func NewReplacer(table map[string]string) *Replacer {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	flat := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, table[k]})
		flat = append(flat, k, table[k])
	}
	return &Replacer{pairs: pairs, rep: strings.NewReplacer(flat...)}
}

// DefaultReplacer returns a Replacer over DefaultForbidden.
func DefaultReplacer() *Replacer {
	return NewReplacer(DefaultForbidden)
}

// Replace applies the table to s.
func (r *Replacer) Replace(s string) string {
	return r.rep.Replace(s)
}

// ReplaceCount applies the table and reports how many symbols were replaced.
func (r *Replacer) ReplaceCount(s string) (string, int) {
	n := 0
	for _, p := range r.pairs {
		n += strings.Count(s, p[0])
	}
	if n == 0 {
		return s, 0
	}
	return r.rep.Replace(s), n
}

// StripBreaks replaces every CR and LF in s with a space, the blunt
// whole-field form used when a file must end up strictly one line per field.
func StripBreaks(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

// JoinLines collapses a multi-line field into a single line, joining the
// lines with single spaces.
func JoinLines(s string) string {
	return strings.Join(splitLines(s), " ")
}

// Wrap greedily word-wraps s at width runes per line. Existing line breaks
// are kept as paragraph boundaries; a word longer than width gets a line of
// its own rather than being split.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var out []string
	for _, line := range splitLines(s) {
		line = strings.TrimSpace(line)
		if len([]rune(line)) <= width {
			out = append(out, line)
			continue
		}
		var cur string
		for _, word := range strings.Fields(line) {
			switch {
			case cur == "":
				cur = word
			case len([]rune(cur))+1+len([]rune(word)) <= width:
				cur += " " + word
			default:
				out = append(out, cur)
				cur = word
			}
		}
		if cur != "" {
			out = append(out, cur)
		}
	}
	return strings.Join(out, "\n")
}

// SlashForward converts backslashes to forward slashes. Path fields in
// contributed rows arrive with Windows separators the patch tool rejects.
func SlashForward(s string) string {
	return strings.ReplaceAll(s, `\`, "/")
}

// PadField surrounds s with one leading and one trailing space.
func PadField(s string) string {
	return " " + s + " "
}

// LeadingBreak prefixes s with a line break.
func LeadingBreak(s string) string {
	return "\n" + s
}

// splitLines splits on \n, \r\n, or bare \r without keeping the breaks. A
// trailing break yields no empty final line.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
