package populate

import (
	"math/rand"

	"codeberg.org/anaseto/gruid"
	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/rng"
)

// EncounterPlacer reserves spaced encounter centers in each region until the
// region's budget is spoken for or the attempt cap is hit.
type EncounterPlacer struct {
	Spacing       int
	MaxAttempts   int
	LairRadius    int
	DefaultWeight float64
}

type weightedTemplate struct {
	tmpl   catalog.EncounterTemplate
	weight float64
}

// Place records SpawnedEncounter stubs on every themed region with budget.
// No threat is consumed here; the spawner pays for what it actually spawns.
func (p EncounterPlacer) Place(fs *FloorState, r *rand.Rand) {
	table := p.templateTable(fs)
	if len(table) == 0 {
		fs.warn("No encounter templates available", "depth", fs.Depth)
		return
	}

	for _, id := range fs.Order {
		st := fs.Regions[id]
		if st.Theme == "" || st.RemainingBudget <= 0 {
			continue
		}

		var candidates []weightedTemplate
		for _, wt := range table {
			if st.Region.Area() >= wt.tmpl.MinArea {
				candidates = append(candidates, wt)
			}
		}
		p.placeInRegion(fs, st, candidates, r)
		st.Processed = true
	}
}

func (p EncounterPlacer) placeInRegion(fs *FloorState, st *RegionSpawnData, candidates []weightedTemplate, r *rand.Rand) {
	reserved := 0
	for attempts := 0; attempts < p.MaxAttempts; {
		available := st.RemainingBudget - reserved
		if available <= 0 {
			return
		}

		var choices []rng.Choice[catalog.EncounterTemplate]
		for _, wt := range candidates {
			if wt.tmpl.MinBudget > available {
				continue
			}
			choices = append(choices, rng.Choice[catalog.EncounterTemplate]{
				Item:   wt.tmpl,
				Weight: wt.weight * fitMultiplier(wt.tmpl, st, available),
			})
		}
		tmpl, ok := rng.Pick(r, choices)
		if !ok {
			return
		}

		center, ok := p.chooseCenter(fs, st, tmpl, r)
		if !ok {
			attempts++
			continue
		}

		st.Encounters = append(st.Encounters, &SpawnedEncounter{
			Template: tmpl,
			Theme:    st.Theme,
			RegionID: st.Region.ID,
			Center:   center,
		})
		fs.Summary.EncountersPlaced++
		reserved += max(1, tmpl.MinBudget)
		attempts = 0
	}
}

// templateTable returns the floor's weighted encounter table, or every
// template at the default weight when none is configured.
func (p EncounterPlacer) templateTable(fs *FloorState) []weightedTemplate {
	var table []weightedTemplate
	for _, row := range fs.Config.EncounterTable() {
		tmpl, ok := fs.Catalog.Encounter(row.ID)
		if !ok {
			fs.warn("Floor config references unknown encounter", "depth", fs.Depth, "template", row.ID)
			continue
		}
		if row.Weight > 0 {
			table = append(table, weightedTemplate{tmpl: tmpl, weight: row.Weight})
		}
	}
	if len(table) > 0 {
		return table
	}

	for _, tmpl := range fs.Catalog.Encounters() {
		table = append(table, weightedTemplate{tmpl: tmpl, weight: p.DefaultWeight})
	}
	return table
}

// fitMultiplier favours templates suited to the region.
func fitMultiplier(tmpl catalog.EncounterTemplate, st *RegionSpawnData, available int) float64 {
	m := 1.0
	if tmpl.PrefersTag(st.Region.Tag) {
		m *= 1.5
	}
	if 2*tmpl.MaxBudget > available {
		m *= 1.25
	}
	if tmpl.Type == catalog.EncounterAmbush && st.DangerLevel > 1.2 {
		m *= 1.3
	}
	return m
}

// chooseCenter picks a free tile from the template's candidate set that keeps
// the configured spacing from every encounter already in the region.
func (p EncounterPlacer) chooseCenter(fs *FloorState, st *RegionSpawnData, tmpl catalog.EncounterTemplate, r *rand.Rand) (gruid.Point, bool) {
	var pool []gruid.Point
	switch {
	case tmpl.PreferEdges:
		pool = st.Region.Edges
	case tmpl.Type == catalog.EncounterLair:
		pool = withinRadius(st.Region.Tiles, st.Region.Centroid, p.LairRadius)
	default:
		pool = st.Region.Tiles
	}

	candidates := append([]gruid.Point(nil), pool...)
	r.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	minSq := p.Spacing * p.Spacing
	for _, c := range candidates {
		if !fs.Occupied.IsFree(c) {
			continue
		}
		if spacedFrom(c, st.Encounters, minSq) {
			return c, true
		}
	}
	return gruid.Point{}, false
}

func spacedFrom(p gruid.Point, encounters []*SpawnedEncounter, minSq int) bool {
	for _, e := range encounters {
		if distSq(p, e.Center) < minSq {
			return false
		}
	}
	return true
}

func withinRadius(tiles []gruid.Point, center gruid.Point, radius int) []gruid.Point {
	var out []gruid.Point
	for _, t := range tiles {
		if distSq(t, center) <= radius*radius {
			out = append(out, t)
		}
	}
	return out
}

func distSq(a, b gruid.Point) int {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y
}
