package region

import (
	"errors"
	"fmt"
	"sort"

	"codeberg.org/anaseto/gruid"
	"codeberg.org/anaseto/gruid/paths"
)

// RegionMeta is the designer data attached to a region id.
type RegionMeta struct {
	Tag   string
	Hints []SpawnHint
}

// Grid is a Provider backed by a row-major tile→region-id grid.
type Grid struct {
	size        gruid.Point
	ids         []int
	regions     []*Region
	entrance    gruid.Point
	dist        []int // -1 where unreachable
	connections []Connection
}

// gridPath implements paths.Pather over the walkable tiles of a grid.
type gridPath struct {
	passable func(gruid.Point) bool
	nbs      paths.Neighbors
}

func (gp *gridPath) Neighbors(p gruid.Point) []gruid.Point {
	return gp.nbs.Cardinal(p, gp.passable)
}

// NewGrid builds a Grid. ids holds one region id per tile in row-major order,
// NoRegion for walls. The entrance must be a walkable tile.
func NewGrid(size gruid.Point, ids []int, entrance gruid.Point, meta map[int]RegionMeta) (*Grid, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("invalid grid size %v", size)
	}
	if len(ids) != size.X*size.Y {
		return nil, fmt.Errorf("grid has %d tiles, expected %d", len(ids), size.X*size.Y)
	}

	g := &Grid{
		size:     size,
		ids:      append([]int(nil), ids...),
		entrance: entrance,
	}
	if !g.walkable(entrance) {
		return nil, fmt.Errorf("entrance %v is not on a walkable tile", entrance)
	}

	tiles := make(map[int][]gruid.Point)
	for i, id := range g.ids {
		if id == NoRegion {
			continue
		}
		if id < 0 {
			return nil, fmt.Errorf("invalid region id %d at index %d", id, i)
		}
		tiles[id] = append(tiles[id], gruid.Point{X: i % size.X, Y: i / size.X})
	}
	if len(tiles) == 0 {
		return nil, errors.New("grid has no walkable tiles")
	}

	regionIDs := make([]int, 0, len(tiles))
	for id := range tiles {
		regionIDs = append(regionIDs, id)
	}
	sort.Ints(regionIDs)

	for _, id := range regionIDs {
		r := g.buildRegion(id, tiles[id])
		if m, ok := meta[id]; ok {
			r.Tag = m.Tag
			r.Hints = append([]SpawnHint(nil), m.Hints...)
		}
		g.regions = append(g.regions, r)
	}

	g.computeDistances()
	return g, nil
}

// SetConnections records explicit region links used for adjacency.
func (g *Grid) SetConnections(conns []Connection) {
	g.connections = append([]Connection(nil), conns...)
}

func (g *Grid) buildRegion(id int, tiles []gruid.Point) *Region {
	r := &Region{ID: id, Tiles: tiles}

	minP, maxP := tiles[0], tiles[0]
	sumX, sumY := 0, 0
	for _, t := range tiles {
		minP.X, minP.Y = min(minP.X, t.X), min(minP.Y, t.Y)
		maxP.X, maxP.Y = max(maxP.X, t.X), max(maxP.Y, t.Y)
		sumX += t.X
		sumY += t.Y

		for _, d := range []gruid.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			if g.idAt(t.Add(d)) != id {
				r.Edges = append(r.Edges, t)
				break
			}
		}
	}
	r.Bounds = gruid.NewRange(minP.X, minP.Y, maxP.X+1, maxP.Y+1)

	// Non-convex regions may not contain their mean, so snap to a real tile.
	n := len(tiles)
	mean := gruid.Point{X: (sumX + n/2) / n, Y: (sumY + n/2) / n}
	best := tiles[0]
	bestDist := paths.DistanceManhattan(best, mean)
	for _, t := range tiles[1:] {
		if d := paths.DistanceManhattan(t, mean); d < bestDist {
			best, bestDist = t, d
		}
	}
	r.Centroid = best
	return r
}

func (g *Grid) computeDistances() {
	maxCost := g.size.X * g.size.Y
	pr := paths.NewPathRange(gruid.NewRange(0, 0, g.size.X, g.size.Y))
	pr.BreadthFirstMap(&gridPath{passable: g.walkable}, []gruid.Point{g.entrance}, maxCost)

	g.dist = make([]int, len(g.ids))
	for i := range g.dist {
		p := gruid.Point{X: i % g.size.X, Y: i / g.size.X}
		d := pr.BreadthFirstMapAt(p)
		if g.ids[i] == NoRegion || d > maxCost {
			g.dist[i] = -1
			continue
		}
		g.dist[i] = d
	}
}

func (g *Grid) index(p gruid.Point) (int, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= g.size.X || p.Y >= g.size.Y {
		return 0, false
	}
	return p.Y*g.size.X + p.X, true
}

func (g *Grid) idAt(p gruid.Point) int {
	i, ok := g.index(p)
	if !ok {
		return NoRegion
	}
	return g.ids[i]
}

func (g *Grid) walkable(p gruid.Point) bool {
	return g.idAt(p) != NoRegion
}

// Regions returns every region sorted by id.
func (g *Grid) Regions() []*Region {
	return g.regions
}

// RegionIDAt returns the region owning p, or NoRegion.
func (g *Grid) RegionIDAt(p gruid.Point) int {
	return g.idAt(p)
}

// Size returns the grid dimensions.
func (g *Grid) Size() gruid.Point {
	return g.size
}

// Entrance returns the entry position.
func (g *Grid) Entrance() gruid.Point {
	return g.entrance
}

// EntranceDistance returns the BFS distance from the entrance to p.
func (g *Grid) EntranceDistance(p gruid.Point) (int, bool) {
	i, ok := g.index(p)
	if !ok || g.dist[i] < 0 {
		return 0, false
	}
	return g.dist[i], true
}

// Connections returns the explicit region links, if any were set.
func (g *Grid) Connections() []Connection {
	return g.connections
}
