package random

import (
	"encoding/binary"
	mathrand "math/rand/v2"

	"github.com/google/uuid"
)

// SeededRandom is a reproducible Random. Two instances created with the same
// seed produce the same sequence of values, including IDs.
// Not safe for concurrent use.
type SeededRandom struct {
	src *mathrand.ChaCha8
	rng *mathrand.Rand
}

// NewSeeded creates a SeededRandom from the given seed
func NewSeeded(seed uint64) *SeededRandom {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	src := mathrand.NewChaCha8(key)
	return &SeededRandom{
		src: src,
		rng: mathrand.New(src),
	}
}

// Intn returns a random int in [0, n)
func (r *SeededRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.IntN(n)
}

// Float64 returns a random float in [0, 1)
func (r *SeededRandom) Float64() float64 {
	return r.rng.Float64()
}

// NewID returns a UUID drawn from the seeded stream
func (r *SeededRandom) NewID() string {
	id, err := uuid.NewRandomFromReader(r.src)
	if err != nil {
		// ChaCha8 reads never fail
		return uuid.NewString()
	}
	return id.String()
}
