package populate

import (
	"math/rand"
)

// GoldPile records one placed pile.
type GoldPile struct {
	Amount   int  `json:"amount" yaml:"amount"`
	Guarded  bool `json:"guarded" yaml:"guarded"`
	RegionID int  `json:"region" yaml:"region"`
}

// GoldPlacer splits the gold budget into guarded and scattered piles.
type GoldPlacer struct{}

// PileRange returns the base pile size range for a depth. Depths below 1 use
// the depth 1 range.
func PileRange(depth int) (lo, hi int) {
	depth = max(depth, 1)
	return 2 + 3*depth, 8 + 6*depth
}

// Place rolls the gold budget and a pile count, sends a third of the piles to
// the most dangerous regions, and scatters the rest. Piles never exceed what
// is left of the budget. It returns the piles in placement order.
func (GoldPlacer) Place(fs *FloorState, r *rand.Rand) []GoldPile {
	remaining := fs.Config.GoldBudget.Roll(r)
	fs.Summary.GoldBudget = remaining
	if remaining <= 0 {
		return nil
	}

	piles := 3 + fs.Depth/2
	if !fs.Config.GoldPiles.IsZero() {
		piles = fs.Config.GoldPiles.RollRange(r)
	}
	if piles <= 0 {
		return nil
	}
	lo, hi := PileRange(fs.Depth)

	var placed []GoldPile
	drop := func(st *RegionSpawnData, amount int, guarded bool) bool {
		amount = min(amount, remaining)
		if amount <= 0 {
			return false
		}
		pick := fs.randomFreeTile
		if guarded {
			pick = fs.edgeOrFreeTile
		}
		pos, ok := pick(st.Region, r)
		if !ok {
			return false
		}
		if _, ok := fs.spawnGold(amount, pos); !ok {
			return false
		}
		remaining -= amount
		placed = append(placed, GoldPile{Amount: amount, Guarded: guarded, RegionID: st.Region.ID})
		return true
	}

	// Guarded piles go round-robin over the top third of regions by threat.
	var dangerous []*RegionSpawnData
	byThreat := regionsByThreat(fs, true)
	for _, st := range byThreat[:max(1, (len(byThreat)+2)/3)] {
		if st.TotalThreat() > 0 {
			dangerous = append(dangerous, st)
		}
	}
	guarded := 0
	if len(dangerous) > 0 {
		guarded = (piles + 2) / 3
		for i := 0; i < guarded; i++ {
			st := dangerous[i%len(dangerous)]
			amount := lo + r.Intn(hi-lo+1) + st.TotalThreat()/5
			drop(st, amount, true)
		}
	}

	for i := guarded; i < piles && remaining > 0; i++ {
		st := fs.Regions[fs.Order[r.Intn(len(fs.Order))]]
		drop(st, lo+r.Intn(hi-lo+1), false)
	}
	return placed
}
