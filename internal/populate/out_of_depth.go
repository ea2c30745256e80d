package populate

import (
	"math/rand"
	"sort"

	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/rng"
)

// OutOfDepthSpawner occasionally drops one creature from a deeper floor's
// pools onto this floor.
type OutOfDepthSpawner struct{}

// Spawn makes a single trial against the floor's out-of-depth chance. The
// creature's threat is bonus threat outside the region budget.
func (OutOfDepthSpawner) Spawn(fs *FloorState, r *rand.Rand) {
	if !rng.Chance(r, fs.Config.OutOfDepthChance) {
		return
	}

	deeperDepth := fs.Depth + fs.Config.OutOfDepthOffset
	deeper, ok := fs.Catalog.FloorConfig(deeperDepth)
	if !ok || deeper.Depth <= fs.Depth {
		deeper = catalog.DefaultFloorConfig(deeperDepth)
	}

	candidates := outOfDepthCandidates(fs, deeper, deeperDepth)
	if len(candidates) == 0 {
		fs.warn("No out-of-depth candidates", "depth", fs.Depth, "deeper", deeperDepth)
		return
	}

	// Strongest first; pick uniformly from the top third.
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Threat > candidates[j].Threat })
	top := candidates[:max(1, len(candidates)/3)]
	ct := top[r.Intn(len(top))]

	for _, st := range middleRegions(fs) {
		pos, ok := fs.edgeOrFreeTile(st.Region, r)
		if !ok {
			continue
		}
		if _, ok := fs.spawnCreature(ct.ID, pos); !ok {
			return
		}
		st.BonusThreat += ct.Threat
		fs.Summary.OutOfDepth = ct.ID
		return
	}
	fs.warn("No free tile for out-of-depth creature", "creature", ct.ID)
}

// outOfDepthCandidates returns deeper-pool creatures stronger than this
// floor's ceiling, or failing that, those meeting the deeper floor's minimum.
func outOfDepthCandidates(fs *FloorState, deeper catalog.FloorSpawnConfig, deeperDepth int) []catalog.CreatureTemplate {
	ceiling := fs.Config.MaxThreat
	if ceiling <= 0 {
		for _, ct := range poolCreatures(fs.Catalog, fs.Config, fs.Depth) {
			ceiling = max(ceiling, ct.Threat)
		}
	}

	pool := poolCreatures(fs.Catalog, deeper, deeperDepth)
	var above, fallback []catalog.CreatureTemplate
	for _, ct := range pool {
		if ct.Threat > ceiling {
			above = append(above, ct)
		}
		if ct.Threat >= deeper.MinThreat {
			fallback = append(fallback, ct)
		}
	}
	if len(above) > 0 {
		return above
	}
	return fallback
}

// poolCreatures gathers the distinct non-unique members of a floor's themes,
// sorted by id.
func poolCreatures(cat *catalog.Catalog, cfg catalog.FloorSpawnConfig, depth int) []catalog.CreatureTemplate {
	var themes []string
	for _, row := range cfg.ThemeTable() {
		themes = append(themes, row.ID)
	}
	if len(themes) == 0 {
		for _, th := range cat.ThemesForDepth(depth) {
			themes = append(themes, th.ID)
		}
	}

	seen := make(map[string]bool)
	var out []catalog.CreatureTemplate
	for _, id := range themes {
		for _, ct := range themeMembers(cat, id) {
			if !seen[ct.ID] {
				seen[ct.ID] = true
				out = append(out, ct)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// middleRegions returns the middle third of the regions by entrance
// distance, median first, then outward.
func middleRegions(fs *FloorState) []*RegionSpawnData {
	ids := append([]int(nil), fs.Order...)
	sort.SliceStable(ids, func(i, j int) bool {
		return fs.AverageDistance(ids[i]) < fs.AverageDistance(ids[j])
	})

	n := len(ids)
	lo, hi := n/3, n-n/3
	if lo >= hi {
		lo, hi = 0, n
	}
	mid := n / 2
	out := []*RegionSpawnData{fs.Regions[ids[mid]]}
	for step := 1; len(out) < hi-lo; step++ {
		if i := mid - step; i >= lo {
			out = append(out, fs.Regions[ids[i]])
		}
		if i := mid + step; i < hi {
			out = append(out, fs.Regions[ids[i]])
		}
	}
	return out
}
