package populate

import (
	"math/rand"

	"github.com/lawnchairsociety/floorpop/internal/catalog"
)

// LootDistributor scatters the remaining item budget, safest regions first.
type LootDistributor struct {
	Attempts int
}

// Distribute gives each region an even share of what is left of the item
// budget, capped by a threat-tiered rarity ceiling.
func (d LootDistributor) Distribute(fs *FloorState, r *rand.Rand) {
	regions := regionsByThreat(fs, false)
	for i, st := range regions {
		if fs.itemRemaining <= 0 {
			break
		}
		left := len(regions) - i
		share := (fs.itemRemaining + left - 1) / left

		ceiling := LootCeiling(st.TotalThreat())
		band := make([]catalog.Rarity, 0, len(catalog.Rarities))
		for _, rarity := range catalog.Rarities {
			if rarity <= ceiling {
				band = append(band, rarity)
			}
		}

		for attempt := 0; attempt < d.Attempts && share > 0; attempt++ {
			it, ok := pickItem(fs, band, min(share, fs.itemRemaining), r)
			if !ok {
				break
			}
			pos, ok := fs.randomFreeTile(st.Region, r)
			if !ok {
				break
			}
			if _, ok := fs.spawnItem(it.ID, pos); !ok {
				continue
			}
			share -= it.Cost()
			fs.itemRemaining -= it.Cost()
		}
	}
	fs.Summary.ItemBudgetSpent = fs.Summary.ItemBudget - fs.itemRemaining
}
