// Package tags validates and repairs the in-text markup tags game strings
// carry (<NAME>, <COL ...>, <ICON ...> and friends). Tags must survive
// translation byte-exact: a typo or a delimiter glued to a word renders as
// literal text in-game.
package tags

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultListPath is where the valid-tag list extracted from the game data
// is expected to live.
const DefaultListPath = "tags_extracted.txt"

// tagPattern matches one complete tag: everything between < and > with no
// nested delimiter.
var tagPattern = regexp.MustCompile(`<[^<>]+>`)

// contextRunes is how much surrounding text a finding carries.
const contextRunes = 10

// Extract returns every complete tag in s, in order.
func Extract(s string) []string {
	return tagPattern.FindAllString(s, -1)
}

// Normalize collapses whitespace runs inside a tag so spacing differences
// don't read as distinct tags: "<NAME  1>" and "<NAME 1>" are the same tag.
func Normalize(tag string) string {
	return strings.Join(strings.Fields(tag), " ")
}

// Finding is one suspicious spot in a cell: the tag (or bare delimiter)
// plus a snippet of surrounding text.
type Finding struct {
	Tag     string
	Context string
}

// AdjacencyFindings flags tags that sit immediately next to a letter, which
// almost always means a missing space was swallowed during translation.
// Color tags are exempt: <COL ...>/<COL OFF> legitimately hug words.
func AdjacencyFindings(cell string) []Finding {
	var findings []Finding
	for _, span := range tagPattern.FindAllStringIndex(cell, -1) {
		tag := cell[span[0]:span[1]]
		content := strings.ToUpper(strings.TrimSpace(tag[1 : len(tag)-1]))
		if strings.Contains(content, "COL") {
			continue
		}
		pre, preOK := lastRuneBefore(cell, span[0])
		post, postOK := firstRuneAt(cell, span[1])
		if (preOK && unicode.IsLetter(pre)) || (postOK && unicode.IsLetter(post)) {
			findings = append(findings, Finding{Tag: tag, Context: contextAround(cell, span[0], span[1])})
		}
	}
	return findings
}

// BalanceFindings flags delimiters with no partner: a '<' that never closes
// or a '>' with no opener. Complete tags are skipped first.
func BalanceFindings(cell string) []Finding {
	spans := tagPattern.FindAllStringIndex(cell, -1)
	inTag := func(i int) bool {
		for _, s := range spans {
			if i >= s[0] && i < s[1] {
				return true
			}
		}
		return false
	}

	var findings []Finding
	for i, r := range cell {
		if r != '<' && r != '>' {
			continue
		}
		if inTag(i) {
			continue
		}
		label := "unclosed '<'"
		if r == '>' {
			label = "stray '>'"
		}
		findings = append(findings, Finding{Tag: label, Context: contextAround(cell, i, i+1)})
	}
	return findings
}

// Set is the list of tags the game actually uses, loaded from a plain text
// file with one tag per line.
type Set struct {
	ordered []string
	index   map[string]struct{}
}

// NewSet builds a Set from normalized tags, keeping first-seen order for
// deterministic suggestions.
func NewSet(tags []string) *Set {
	s := &Set{index: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		n := Normalize(t)
		if n == "" {
			continue
		}
		if _, dup := s.index[n]; dup {
			continue
		}
		s.index[n] = struct{}{}
		s.ordered = append(s.ordered, n)
	}
	return s
}

// LoadSet reads a valid-tag list file.
func LoadSet(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read tag list %s: %w", path, err)
	}
	defer f.Close()

	var tags []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			tags = append(tags, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tag list %s: %w", path, err)
	}
	return NewSet(tags), nil
}

// Len returns the number of known tags.
func (s *Set) Len() int { return len(s.ordered) }

// Contains reports whether the normalized tag is known.
func (s *Set) Contains(tag string) bool {
	_, ok := s.index[Normalize(tag)]
	return ok
}

// Suggest returns the known tag closest to the given one by edit distance,
// if any is within maxDistance. Earlier list entries win ties.
func (s *Set) Suggest(tag string, maxDistance int) (string, bool) {
	tag = Normalize(tag)
	best := ""
	bestDist := maxDistance + 1
	for _, candidate := range s.ordered {
		if d := levenshtein.ComputeDistance(tag, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best, best != ""
}

// Typo is an unknown tag, with the closest known tag when one is near.
type Typo struct {
	Tag        string
	Suggestion string
}

// TypoChecker finds tags that aren't in the valid set.
type TypoChecker struct {
	Valid *Set
	// MaxDistance bounds the edit distance for "did you mean" suggestions.
	MaxDistance int
}

// NewTypoChecker returns a checker with the default suggestion distance.
func NewTypoChecker(valid *Set) *TypoChecker {
	return &TypoChecker{Valid: valid, MaxDistance: 2}
}

// Check extracts the tags in cell and returns the unknown ones.
func (c *TypoChecker) Check(cell string) []Typo {
	var typos []Typo
	for _, tag := range Extract(cell) {
		n := Normalize(tag)
		if c.Valid.Contains(n) {
			continue
		}
		t := Typo{Tag: n}
		if suggestion, ok := c.Valid.Suggest(n, c.MaxDistance); ok {
			t.Suggestion = suggestion
		}
		typos = append(typos, t)
	}
	return typos
}

// contextAround returns up to contextRunes runes either side of the byte
// span [start, end).
func contextAround(s string, start, end int) string {
	lo := start
	for i := 0; i < contextRunes && lo > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(s[:lo])
		lo -= size
	}
	hi := end
	for i := 0; i < contextRunes && hi < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[hi:])
		hi += size
	}
	return s[lo:hi]
}

func lastRuneBefore(s string, i int) (rune, bool) {
	if i <= 0 {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return r, r != utf8.RuneError
}

func firstRuneAt(s string, i int) (rune, bool) {
	if i >= len(s) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r, r != utf8.RuneError
}
