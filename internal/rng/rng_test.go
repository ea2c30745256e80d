package rng

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSeed(t *testing.T) {
	assert.Equal(t, DeriveSeed(42, PhaseThemes), DeriveSeed(42, PhaseThemes))
	assert.NotEqual(t, DeriveSeed(42, PhaseThemes), DeriveSeed(42, PhaseBudget))
	assert.NotEqual(t, DeriveSeed(42, PhaseThemes), DeriveSeed(43, PhaseThemes))
}

func TestForPhaseReproducible(t *testing.T) {
	a := ForPhase(99, PhaseGold)
	b := ForPhase(99, PhaseGold)
	for i := 0; i < 20; i++ {
		require.Equal(t, a.Int63(), b.Int63())
	}
}

func TestPickEmpty(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	_, ok := Pick[string](r, nil)
	assert.False(t, ok)
	assert.Equal(t, -1, PickIndex(r, nil))
}

func TestPickSkipsZeroWeights(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	choices := []Choice[string]{
		{Item: "never", Weight: 0},
		{Item: "always", Weight: 5},
		{Item: "negative", Weight: -2},
	}
	for i := 0; i < 200; i++ {
		got, ok := Pick(r, choices)
		require.True(t, ok)
		require.Equal(t, "always", got)
	}
}

func TestPickUniformFallback(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	choices := []Choice[int]{{Item: 1}, {Item: 2}, {Item: 3}}
	seen := map[int]int{}
	for i := 0; i < 300; i++ {
		got, ok := Pick(r, choices)
		require.True(t, ok)
		seen[got]++
	}
	assert.Len(t, seen, 3, "every candidate should be reachable when all weights are zero")
}

func TestPickFollowsWeights(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	counts := make([]int, 2)
	for i := 0; i < 10000; i++ {
		counts[PickIndex(r, []float64{1, 9})]++
	}
	ratio := float64(counts[1]) / 10000
	assert.InDelta(t, 0.9, ratio, 0.03)
}

func TestChance(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	assert.False(t, Chance(r, 0))
	assert.True(t, Chance(r, 1))
	hits := 0
	for i := 0; i < 5000; i++ {
		if Chance(r, 0.4) {
			hits++
		}
	}
	assert.InDelta(t, 0.4, float64(hits)/5000, 0.03)
}
