package words

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Picker chooses an index in [0, n) uniformly. n is always > 0.
type Picker interface {
	PickUniform(n int) int
}

// PickerFunc adapts a plain function to Picker.
type PickerFunc func(n int) int

// PickUniform calls f(n).
func (f PickerFunc) PickUniform(n int) int { return f(n) }

// CryptoPicker draws from crypto/rand. It is the default for live games.
type CryptoPicker struct{}

// PickUniform returns a cryptographically random index in [0, n).
func (CryptoPicker) PickUniform(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	return int(v.Int64())
}

// seededPicker is a deterministic PCG-backed Picker, safe for concurrent use.
type seededPicker struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededPicker returns a reproducible Picker for the given seed.
func NewSeededPicker(seed uint64) Picker {
	return &seededPicker{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *seededPicker) PickUniform(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}
