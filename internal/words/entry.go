// internal/words/entry.go
//
// Dictionary entries and reading normalization.
//
// A reading is a katakana transcription. Before any rule looks at it, the
// reading is normalized once so that the first and last units are always
// full-size kana:
//   - trailing long-vowel marks (ー) are stripped
//   - small kana (ァ, ッ, ャ, ...) are mapped to their full-size forms
//
// Letters are runes, never bytes: katakana is three bytes in UTF-8.

package words

import (
	"strings"
	"unicode/utf8"
)

const (
	// LongVowelMark is the katakana elongation marker.
	LongVowelMark = 'ー'
	// TerminalSound ends the game when a played word's reading ends with it.
	TerminalSound = 'ン'
)

// smallToFull maps the 12 small katakana to their full-size forms.
var smallToFull = map[rune]rune{
	'ァ': 'ア', 'ィ': 'イ', 'ゥ': 'ウ', 'ェ': 'エ', 'ォ': 'オ',
	'ヵ': 'カ', 'ヶ': 'ケ',
	'ッ': 'ツ',
	'ャ': 'ヤ', 'ュ': 'ユ', 'ョ': 'ヨ',
	'ヮ': 'ワ',
}

// Entry is a single dictionary word.
type Entry struct {
	Text    string `json:"text"`    // display form, e.g. 林檎
	Reading string `json:"reading"` // normalized katakana, e.g. リンゴ
}

// NewEntry builds an Entry with a normalized reading.
func NewEntry(text, reading string) Entry {
	return Entry{Text: text, Reading: Normalize(reading)}
}

// Normalize strips trailing long-vowel marks and enlarges small kana.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(reading string) string {
	reading = strings.TrimRight(reading, string(LongVowelMark))
	return strings.Map(func(r rune) rune {
		if full, ok := smallToFull[r]; ok {
			return full
		}
		return r
	}, reading)
}

// IsSmallKana reports whether r is one of the small katakana Normalize replaces.
func IsSmallKana(r rune) bool {
	_, ok := smallToFull[r]
	return ok
}

// FirstLetter returns the first unit of the reading, or 0 if it is empty.
func (e Entry) FirstLetter() rune {
	r, size := utf8.DecodeRuneInString(e.Reading)
	if size == 0 {
		return 0
	}
	return r
}

// LastLetter returns the last unit of the reading, or 0 if it is empty.
func (e Entry) LastLetter() rune {
	r, size := utf8.DecodeLastRuneInString(e.Reading)
	if size == 0 {
		return 0
	}
	return r
}

// EndsWithTerminal reports whether the reading ends in ン.
func (e Entry) EndsWithTerminal() bool {
	return e.LastLetter() == TerminalSound
}

// HasPrefix reports whether the reading starts with unit.
func (e Entry) HasPrefix(unit rune) bool {
	return unit != 0 && e.FirstLetter() == unit
}
