package populate

import (
	"math/rand"

	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/rng"
)

// ThemeAssigner gives every region a faction theme, clustering neighbours.
type ThemeAssigner struct {
	ClusterChance float64
}

// Assign sets Theme on every region. Regions stay themeless only when the
// floor has no themes at all.
func (a ThemeAssigner) Assign(fs *FloorState, r *rand.Rand) {
	choices := a.availableThemes(fs)
	if len(choices) == 0 {
		fs.warn("No themes available for floor, regions left themeless", "depth", fs.Depth)
		return
	}

	available := make(map[string]bool, len(choices))
	for _, c := range choices {
		available[c.Item] = true
	}

	for _, id := range fs.Order {
		st := fs.Regions[id]

		if hinted := st.Region.HintedTheme(); hinted != "" {
			if _, ok := fs.Catalog.Theme(hinted); ok {
				st.Theme = hinted
				st.ThemeOverridden = true
				continue
			}
			fs.warn("Spawn hint names unknown theme, ignoring", "region", id, "theme", hinted)
		}

		if rng.Chance(r, a.ClusterChance) {
			if theme, ok := neighbourTheme(fs, st, available, r); ok {
				st.Theme = theme
				continue
			}
		}

		theme, _ := rng.Pick(r, choices)
		st.Theme = theme
	}
}

// availableThemes returns the floor's weighted theme table, or every theme
// valid at this depth with equal weight when the table is empty.
func (a ThemeAssigner) availableThemes(fs *FloorState) []rng.Choice[string] {
	var choices []rng.Choice[string]
	for _, row := range fs.Config.ThemeTable() {
		if row.Weight > 0 {
			choices = append(choices, rng.Choice[string]{Item: row.ID, Weight: row.Weight})
		}
	}
	if len(choices) > 0 {
		return choices
	}

	for _, th := range fs.Catalog.ThemesForDepth(fs.Depth) {
		choices = append(choices, rng.Choice[string]{Item: th.ID, Weight: 1})
	}
	return choices
}

// neighbourTheme picks uniformly among the themes of already-themed
// neighbours that belong to the floor's available set.
func neighbourTheme(fs *FloorState, st *RegionSpawnData, available map[string]bool, r *rand.Rand) (string, bool) {
	var candidates []string
	for _, nid := range st.Neighbors {
		n, ok := fs.Regions[nid]
		if !ok || n.Theme == "" || !available[n.Theme] {
			continue
		}
		candidates = append(candidates, n.Theme)
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[r.Intn(len(candidates))], true
}

// themeMembers returns the theme's creatures eligible for ordinary spawning.
func themeMembers(cat *catalog.Catalog, themeID string) []catalog.CreatureTemplate {
	th, ok := cat.Theme(themeID)
	if !ok {
		return nil
	}
	out := make([]catalog.CreatureTemplate, 0, len(th.Creatures))
	for _, cid := range th.Creatures {
		if ct, ok := cat.Creature(cid); ok && !ct.Unique {
			out = append(out, ct)
		}
	}
	return out
}
