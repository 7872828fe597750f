// internal/words/loader.go
//
// Dictionary loading.
//
// Sources:
//   - "unidic":  general vocabulary (nouns)
//   - "pokemon": Pokémon species names
//
// Each source is read from a configured JSON file if one is set, otherwise
// from the copy embedded in the binary (assets/words/<source>.json). The
// file format is {"items":[{"text":"林檎","reading":"リンゴ"}, ...]}.
//
// Readings are normalized on decode and entries with an empty reading are
// dropped. A loaded Index is cached per source for the lifetime of the Loader.

package words

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/shiritori/assets"
)

// Source names a dictionary collection.
type Source string

const (
	SourceUnidic  Source = "unidic"
	SourcePokemon Source = "pokemon"
)

// ErrUnknownSource is returned for a source name the loader does not know.
var ErrUnknownSource = errors.New("words: unknown source")

var knownSources = []Source{SourceUnidic, SourcePokemon}

// Sources lists the known dictionary sources.
func Sources() []Source {
	return append([]Source(nil), knownSources...)
}

// ParseSource validates a source name (case-insensitive, trimmed).
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range knownSources {
		if k == src {
			return src, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// fileFormat is the on-disk dictionary shape.
type fileFormat struct {
	Items []Entry `json:"items"`
}

// Decode reads a JSON dictionary and returns normalized entries.
func Decode(r io.Reader) ([]Entry, error) {
	var f fileFormat
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	out := make([]Entry, 0, len(f.Items))
	for _, it := range f.Items {
		e := NewEntry(strings.TrimSpace(it.Text), strings.TrimSpace(it.Reading))
		if e.Reading == "" {
			continue
		}
		if e.Text == "" {
			e.Text = e.Reading
		}
		out = append(out, e)
	}
	return out, nil
}

// Loader resolves sources to indexes, caching each one.
type Loader struct {
	files  map[Source]string // optional override paths
	picker Picker

	mu      sync.Mutex
	indexes map[Source]*Index
}

// NewLoader creates a Loader. files may map a source to a JSON file path;
// unmapped sources fall back to the embedded dictionaries. A nil picker
// means CryptoPicker.
func NewLoader(files map[Source]string, picker Picker) *Loader {
	f := make(map[Source]string, len(files))
	for k, v := range files {
		if v != "" {
			f[k] = v
		}
	}
	return &Loader{files: f, picker: picker, indexes: make(map[Source]*Index)}
}

// Load returns the Index for src, reading it on first use.
func (l *Loader) Load(src Source) (*Index, error) {
	if _, err := ParseSource(string(src)); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if idx, ok := l.indexes[src]; ok {
		return idx, nil
	}

	entries, err := l.read(src)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src, err)
	}
	idx, err := NewIndex(entries, l.picker)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src, err)
	}
	l.indexes[src] = idx
	return idx, nil
}

func (l *Loader) read(src Source) ([]Entry, error) {
	var rc io.ReadCloser
	if path, ok := l.files[src]; ok {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		rc = f
	} else {
		f, err := assets.Dictionary(string(src))
		if err != nil {
			return nil, err
		}
		rc = f
	}
	defer rc.Close()
	return Decode(rc)
}

// Stats returns entry counts for every source that has been loaded.
func (l *Loader) Stats() map[Source]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[Source]int, len(l.indexes))
	for src, idx := range l.indexes {
		out[src] = idx.Len()
	}
	return out
}
