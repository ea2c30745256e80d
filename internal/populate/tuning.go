// Package populate fills a generated floor with encounters, treasure, gold,
// the exit, uniques and out-of-depth intrusions while keeping every region's
// threat budget exactly accounted for.
package populate

import "errors"

var (
	// ErrNoRegions is returned when the provider has no region data.
	ErrNoRegions = errors.New("no regions to populate")

	// ErrCorruptRegionGraph is returned when region data is inconsistent.
	ErrCorruptRegionGraph = errors.New("corrupt region graph")

	// ErrInvalidDepth is returned for floor depths below 1.
	ErrInvalidDepth = errors.New("invalid floor depth")
)

// Tuning holds the allocator constants.
type Tuning struct {
	EncounterSpacing       int     // minimum distance between encounter centers in a region
	EncounterAttempts      int     // consecutive failed placements before a region is abandoned
	ThemeClusterChance     float64 // chance to copy an adjacent region's theme
	GuardedTreasureRegions int     // most dangerous regions that receive guarded treasure
	MinCreatures           int
	MinUtilization         float64
	LootAttempts           int // item picks per region while scattering loot
	LairRadius             int // lair centers stay this close to the centroid
	RingMin                int
	RingMax                int
	NearestK               int // center placement picks among this many nearest tiles
	DefaultEncounterWeight float64
}

// DefaultTuning returns the stock allocator constants.
func DefaultTuning() Tuning {
	return Tuning{
		EncounterSpacing:       6,
		EncounterAttempts:      10,
		ThemeClusterChance:     0.4,
		GuardedTreasureRegions: 3,
		MinCreatures:           1,
		MinUtilization:         0.5,
		LootAttempts:           32,
		LairRadius:             3,
		RingMin:                2,
		RingMax:                5,
		NearestK:               5,
		DefaultEncounterWeight: 10,
	}
}
