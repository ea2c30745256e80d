// Package rng holds the randomness helpers shared by every allocation phase:
// deterministic per-phase reseeding and cumulative weighted selection.
package rng

import (
	"encoding/binary"
	"math/rand"

	"golang.org/x/crypto/blake2b"
)

// Phase names used to derive independent streams from one floor seed.
const (
	PhaseThemes     = "themes"
	PhaseBudget     = "budget"
	PhaseEncounters = "encounters"
	PhaseSpawn      = "spawn"
	PhaseTreasure   = "treasure"
	PhaseLoot       = "loot"
	PhaseGold       = "gold"
	PhaseOutOfDepth = "out_of_depth"
)

// DeriveSeed mixes a floor seed with a phase name. Changing how one phase
// consumes randomness never shifts the stream of another.
func DeriveSeed(seed int64, phase string) int64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	sum := blake2b.Sum256(append(buf[:], phase...))
	return int64(binary.LittleEndian.Uint64(sum[:8]))
}

// ForPhase returns a fresh generator for the given phase of a floor.
func ForPhase(seed int64, phase string) *rand.Rand {
	return rand.New(rand.NewSource(DeriveSeed(seed, phase)))
}

// Choice pairs a candidate with its selection weight.
type Choice[T any] struct {
	Item   T
	Weight float64
}

// Pick performs cumulative-sum weighted selection. Non-positive weights are
// never chosen unless every weight is non-positive, in which case the pick is
// uniform over all candidates. ok is false only for an empty slice.
func Pick[T any](r *rand.Rand, choices []Choice[T]) (item T, ok bool) {
	if len(choices) == 0 {
		return item, false
	}

	total := 0.0
	for _, c := range choices {
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	if total <= 0 {
		return choices[r.Intn(len(choices))].Item, true
	}

	roll := r.Float64() * total
	cumulative := 0.0
	last := -1
	for i, c := range choices {
		if c.Weight <= 0 {
			continue
		}
		cumulative += c.Weight
		last = i
		if roll < cumulative {
			return c.Item, true
		}
	}
	// Float rounding can leave roll == total
	return choices[last].Item, true
}

// PickIndex is Pick over bare weights, returning the chosen index or -1.
func PickIndex(r *rand.Rand, weights []float64) int {
	choices := make([]Choice[int], len(weights))
	for i, w := range weights {
		choices[i] = Choice[int]{Item: i, Weight: w}
	}
	idx, ok := Pick(r, choices)
	if !ok {
		return -1
	}
	return idx
}

// Chance reports whether a Bernoulli trial with probability p succeeds.
func Chance(r *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float64() < p
}
