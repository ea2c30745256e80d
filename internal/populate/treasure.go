package populate

import (
	"math/rand"
	"sort"

	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/rng"
)

// GuardedBand returns the rarity pool for treasure guarded by the given
// amount of threat.
func GuardedBand(threat int) []catalog.Rarity {
	switch {
	case threat >= 16:
		return []catalog.Rarity{catalog.Rare, catalog.Epic}
	case threat >= 8:
		return []catalog.Rarity{catalog.Uncommon, catalog.Rare}
	default:
		return []catalog.Rarity{catalog.Common, catalog.Uncommon}
	}
}

// LootCeiling returns the best rarity scattered loot may have in a region
// holding the given threat.
func LootCeiling(threat int) catalog.Rarity {
	switch {
	case threat > 15:
		return catalog.Rare
	case threat > 5:
		return catalog.Uncommon
	default:
		return catalog.Common
	}
}

// pickItem chooses a rarity from band weighted by the floor config, then an
// item of that rarity uniformly. Only items costing at most maxCost are
// considered; rarities with no such item are skipped.
func pickItem(fs *FloorState, band []catalog.Rarity, maxCost int, r *rand.Rand) (catalog.ItemTemplate, bool) {
	if maxCost <= 0 {
		return catalog.ItemTemplate{}, false
	}

	pools := make(map[catalog.Rarity][]catalog.ItemTemplate, len(band))
	var choices []rng.Choice[catalog.Rarity]
	for _, rarity := range band {
		var affordable []catalog.ItemTemplate
		for _, it := range fs.Catalog.ItemsByRarity(rarity, fs.Depth) {
			if it.Cost() <= maxCost {
				affordable = append(affordable, it)
			}
		}
		if len(affordable) == 0 {
			continue
		}
		pools[rarity] = affordable
		choices = append(choices, rng.Choice[catalog.Rarity]{Item: rarity, Weight: fs.Config.RarityWeights.Weight(rarity)})
	}

	rarity, ok := rng.Pick(r, choices)
	if !ok {
		return catalog.ItemTemplate{}, false
	}
	pool := pools[rarity]
	return pool[r.Intn(len(pool))], true
}

// regionsByThreat returns region states sorted by total threat, descending
// when desc is set, ties broken by id.
func regionsByThreat(fs *FloorState, desc bool) []*RegionSpawnData {
	out := make([]*RegionSpawnData, 0, len(fs.Order))
	for _, id := range fs.Order {
		out = append(out, fs.Regions[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].TotalThreat(), out[j].TotalThreat()
		if desc {
			return ti > tj
		}
		return ti < tj
	})
	return out
}

// TreasurePlacer puts one guarded item in each of the most threatening regions.
type TreasurePlacer struct {
	Regions int
}

// Place rolls the floor's item budget and spends part of it on guarded
// treasure. The rest is left for the LootDistributor.
func (p TreasurePlacer) Place(fs *FloorState, r *rand.Rand) {
	fs.itemRemaining = fs.Config.ItemBudget.Roll(r)
	fs.Summary.ItemBudget = fs.itemRemaining

	guarded := 0
	for _, st := range regionsByThreat(fs, true) {
		if guarded == p.Regions || fs.itemRemaining <= 0 {
			break
		}
		threat := st.TotalThreat()
		if threat <= 0 {
			break
		}

		it, ok := pickItem(fs, GuardedBand(threat), fs.itemRemaining, r)
		if !ok {
			fs.warn("No item fits guarded treasure", "region", st.Region.ID, "threat", threat)
			continue
		}
		pos, ok := fs.edgeOrFreeTile(st.Region, r)
		if !ok {
			continue
		}
		if _, ok := fs.spawnItem(it.ID, pos); !ok {
			continue
		}
		fs.itemRemaining -= it.Cost()
		fs.Summary.GuardedItems++
		guarded++
	}
}
