// internal/words/index.go
//
// Index is the read-only word collection a game plays against.
//
// Lookups return copies of entries, so game history never aliases the index.
// Order is preserved from the source and duplicates are tolerated; exact
// lookups return the first match.

package words

import "errors"

// ErrEmptyIndex is returned when an Index would hold no entries.
var ErrEmptyIndex = errors.New("words: index is empty")

// Index is an immutable, non-empty list of normalized entries.
// It is safe for concurrent use as long as its Picker is.
type Index struct {
	entries []Entry
	picker  Picker
}

// NewIndex copies entries into a new Index. A nil picker means CryptoPicker.
func NewIndex(entries []Entry, picker Picker) (*Index, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyIndex
	}
	if picker == nil {
		picker = CryptoPicker{}
	}
	return &Index{
		entries: append([]Entry(nil), entries...),
		picker:  picker,
	}, nil
}

// Len reports the number of entries.
func (x *Index) Len() int { return len(x.entries) }

// Entries returns a copy of all entries in source order.
func (x *Index) Entries() []Entry {
	return append([]Entry(nil), x.entries...)
}

// Lookup returns the first entry whose text or reading equals s exactly.
func (x *Index) Lookup(s string) (Entry, bool) {
	for _, e := range x.entries {
		if e.Text == s || e.Reading == s {
			return e, true
		}
	}
	return Entry{}, false
}

// Random draws uniformly from the whole index.
func (x *Index) Random() Entry {
	return x.entries[x.picker.PickUniform(len(x.entries))]
}

// RandomWithPrefix draws uniformly from entries whose reading starts with unit.
// It reports false when no entry qualifies.
func (x *Index) RandomWithPrefix(unit rune) (Entry, bool) {
	return x.pick(func(e Entry) bool { return e.HasPrefix(unit) })
}

// RandomSeed draws uniformly from entries that can open a game, i.e. those
// whose reading does not end in the terminal sound.
func (x *Index) RandomSeed() (Entry, bool) {
	return x.pick(func(e Entry) bool { return !e.EndsWithTerminal() })
}

// Seeds returns the seed-eligible entries in source order.
func (x *Index) Seeds() []Entry {
	return x.filter(func(e Entry) bool { return !e.EndsWithTerminal() })
}

func (x *Index) pick(keep func(Entry) bool) (Entry, bool) {
	candidates := x.filter(keep)
	if len(candidates) == 0 {
		return Entry{}, false
	}
	return candidates[x.picker.PickUniform(len(candidates))], true
}

func (x *Index) filter(keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range x.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
