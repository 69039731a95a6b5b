// Package gmd defines the row and column model shared by every tool in the
// kit: the fixed column schema of the combined translation file and the
// per-column roles the cleaning and validation passes rely on.
package gmd

import (
	"strconv"
	"strings"
	"unicode"
)

// Column positions in the standard schema. Index 3 (the translation) is the
// column nearly every tool operates on.
const (
	ColIndex       = 0 // running index, first header cell spelled "#Index"
	ColKey         = 1 // message key
	ColOriginal    = 2 // MsgJp, source text
	ColTranslation = 3 // MsgEn, translated text
	ColGmdPath     = 4 // path of the message file inside the game data
	ColArcPath     = 5 // path of the containing archive
	ColArcName     = 6 // archive file name, ends in ".arc"
	ColReadIndex   = 7 // message position within the archive
	ColSpeaker     = 8 // optional speaker name column
)

// DefaultColumns is the 8-column schema of the combined file and of every
// split, in order. The leading "#" on the first column marks the header line
// for the consuming patch tool.
var DefaultColumns = []string{
	"#Index", "Key", "MsgJp", "MsgEn", "GmdPath", "ArcPath", "ArcName", "ReadIndex",
}

// SpeakerColumn is appended by the speaker-filling tool.
const SpeakerColumn = "Speaker"

// Schema is an ordered set of column names. A row is well-formed for a
// schema iff its field count equals the schema length.
type Schema struct {
	Columns []string
}

// DefaultSchema returns the standard 8-column schema.
func DefaultSchema() Schema {
	return Schema{Columns: append([]string(nil), DefaultColumns...)}
}

// ExtendedSchema returns the 9-column schema including the speaker column.
func ExtendedSchema() Schema {
	s := DefaultSchema()
	s.Columns = append(s.Columns, SpeakerColumn)
	return s
}

// NewSchema builds a schema from explicit column names.
func NewSchema(columns []string) Schema {
	return Schema{Columns: append([]string(nil), columns...)}
}

// Len returns the expected field count.
func (s Schema) Len() int { return len(s.Columns) }

// Header returns the header line written at the top of the combined file.
func (s Schema) Header() string { return strings.Join(s.Columns, ",") }

// Valid reports whether the row's field count matches the schema.
func (s Schema) Valid(row Row) bool { return len(row) == len(s.Columns) }

/// Row is one record of game text: an ordered tuple of string fields.
type Row []string

// Field returns the field at i, or "" when the row is too short.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Translation returns the translated-text field.
func (r Row) Translation() string { return r.Field(ColTranslation) }

// SetTranslation replaces the translated-text field. Rows shorter than the
// translation column are left untouched.
func (r Row) SetTranslation(text string) {
	if len(r) > ColTranslation {
		r[ColTranslation] = text
	}
}

// ArcName returns the archive name field with surrounding space trimmed.
func (r Row) ArcName() string { return strings.TrimSpace(r.Field(ColArcName)) }

// ReadIndex parses the read-index field.
func (r Row) ReadIndex() (int, error) {
	return strconv.Atoi(strings.TrimSpace(r.Field(ColReadIndex)))
}

// Speaker returns the speaker field with surrounding space trimmed.
func (r Row) Speaker() string { return strings.TrimSpace(r.Field(ColSpeaker)) }

// Pad extends the row with empty fields up to n columns.
func (r Row) Pad(n int) Row {
	for len(r) < n {
		r = append(r, "")
	}
	return r
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	return append(Row(nil), r...)
}

// ContainsJapanese reports whether s contains hiragana, katakana, or kanji.
// Used to spot untranslated text left in the translation column.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}
