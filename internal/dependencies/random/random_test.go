package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededRandomIsReproducible(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(100), b.Intn(100))
		assert.Equal(t, a.Float64(), b.Float64())
	}
	assert.Equal(t, a.NewID(), b.NewID())
}

func TestSeededRandomDiffersAcrossSeeds(t *testing.T) {
	a := NewSeeded(1)
	b := NewSeeded(2)

	assert.NotEqual(t, a.NewID(), b.NewID())
}

func TestFloat64InRange(t *testing.T) {
	for _, r := range []Random{New(), NewSeeded(7)} {
		for i := 0; i < 200; i++ {
			f := r.Float64()
			assert.GreaterOrEqual(t, f, 0.0)
			assert.Less(t, f, 1.0)
		}
	}
}

func TestIntnNonPositive(t *testing.T) {
	assert.Equal(t, 0, New().Intn(0))
	assert.Equal(t, 0, NewSeeded(1).Intn(-3))
}
