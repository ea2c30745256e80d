package populate

import (
	"math/rand"
	"sort"

	"codeberg.org/anaseto/gruid"
	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/region"
)

// PlacementContext is what a Placer needs to position one creature.
type PlacementContext struct {
	Center   gruid.Point
	Occupied *Occupancy
	Rand     *rand.Rand
}

// Placer selects a tile for one encounter member.
type Placer interface {
	SelectPosition(rg *region.Region, ctx *PlacementContext) (gruid.Point, bool)
}

// PlacerRegistry maps placement strategies to their Placer. It is resolved
// once when the Populator is built.
type PlacerRegistry struct {
	placers  map[catalog.Placement]Placer
	fallback Placer
}

// NewPlacerRegistry registers the built-in strategies.
func NewPlacerRegistry(t Tuning) *PlacerRegistry {
	return &PlacerRegistry{
		placers: map[catalog.Placement]Placer{
			catalog.PlacementCenter:      nearestPlacer{k: t.NearestK},
			catalog.PlacementSurrounding: ringPlacer{inner: t.RingMin, outer: t.RingMax},
			catalog.PlacementEdge:        edgePlacer{k: t.NearestK},
			catalog.PlacementFormation:   formationPlacer{},
			catalog.PlacementRandom:      randomPlacer{},
		},
		fallback: nearestPlacer{k: 1},
	}
}

// Register installs or replaces the Placer for a strategy.
func (pr *PlacerRegistry) Register(p catalog.Placement, placer Placer) {
	pr.placers[p] = placer
}

// SelectPosition runs the strategy's Placer and falls back to the nearest
// free tile to the center when the strategy finds nothing.
func (pr *PlacerRegistry) SelectPosition(p catalog.Placement, rg *region.Region, ctx *PlacementContext) (gruid.Point, bool) {
	if placer, ok := pr.placers[p]; ok {
		if pos, ok := placer.SelectPosition(rg, ctx); ok {
			return pos, true
		}
	}
	return pr.fallback.SelectPosition(rg, ctx)
}

// byCenterDistance sorts tiles by squared distance to center, keeping
// row-major order among ties.
func byCenterDistance(tiles []gruid.Point, center gruid.Point) []gruid.Point {
	out := append([]gruid.Point(nil), tiles...)
	sort.SliceStable(out, func(i, j int) bool { return distSq(out[i], center) < distSq(out[j], center) })
	return out
}

// nearestPlacer picks randomly among the k free tiles nearest the center.
type nearestPlacer struct {
	k int
}

func (p nearestPlacer) SelectPosition(rg *region.Region, ctx *PlacementContext) (gruid.Point, bool) {
	free := byCenterDistance(ctx.Occupied.FreeTiles(rg.Tiles), ctx.Center)
	return pickNearest(free, p.k, ctx.Rand)
}

// ringPlacer picks a free tile between inner and outer tiles from the center.
type ringPlacer struct {
	inner, outer int
}

func (p ringPlacer) SelectPosition(rg *region.Region, ctx *PlacementContext) (gruid.Point, bool) {
	var band []gruid.Point
	for _, t := range ctx.Occupied.FreeTiles(rg.Tiles) {
		if d := distSq(t, ctx.Center); d >= p.inner*p.inner && d <= p.outer*p.outer {
			band = append(band, t)
		}
	}
	if len(band) == 0 {
		return gruid.Point{}, false
	}
	return band[ctx.Rand.Intn(len(band))], true
}

// edgePlacer picks among the k free edge tiles nearest the center.
type edgePlacer struct {
	k int
}

func (p edgePlacer) SelectPosition(rg *region.Region, ctx *PlacementContext) (gruid.Point, bool) {
	free := byCenterDistance(ctx.Occupied.FreeTiles(rg.Edges), ctx.Center)
	return pickNearest(free, p.k, ctx.Rand)
}

// formationPlacer fills the center row outward, then the rows behind and in
// front of it, so members line up.
type formationPlacer struct{}

func (formationPlacer) SelectPosition(rg *region.Region, ctx *PlacementContext) (gruid.Point, bool) {
	free := ctx.Occupied.FreeTiles(rg.Tiles)
	if len(free) == 0 {
		return gruid.Point{}, false
	}
	sort.Slice(free, func(i, j int) bool {
		di, dj := free[i].Sub(ctx.Center), free[j].Sub(ctx.Center)
		if abs(di.Y) != abs(dj.Y) {
			return abs(di.Y) < abs(dj.Y)
		}
		if di.Y != dj.Y {
			return di.Y > dj.Y
		}
		if abs(di.X) != abs(dj.X) {
			return abs(di.X) < abs(dj.X)
		}
		return di.X < dj.X
	})
	return free[0], true
}

// randomPlacer picks any free tile.
type randomPlacer struct{}

func (randomPlacer) SelectPosition(rg *region.Region, ctx *PlacementContext) (gruid.Point, bool) {
	free := ctx.Occupied.FreeTiles(rg.Tiles)
	if len(free) == 0 {
		return gruid.Point{}, false
	}
	return free[ctx.Rand.Intn(len(free))], true
}

func pickNearest(sorted []gruid.Point, k int, r *rand.Rand) (gruid.Point, bool) {
	if len(sorted) == 0 {
		return gruid.Point{}, false
	}
	k = min(max(k, 1), len(sorted))
	if k == 1 {
		return sorted[0], true
	}
	return sorted[r.Intn(k)], true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
