// Package region models the floor partition the allocator works over: regions
// of connected walkable tiles, their adjacency, and the entrance distance field.
package region

import (
	"sort"

	"codeberg.org/anaseto/gruid"
	"codeberg.org/anaseto/gruid/paths"
)

// NoRegion is returned by RegionIDAt for tiles outside every region.
const NoRegion = -1

// Region tags with allocator-specific meaning.
const (
	TagEntrance     = "entrance"
	TagBossRoom     = "boss_room"
	TagTreasureRoom = "treasure_room"
)

// SpawnHint is a designer-authored instruction attached to a region.
type SpawnHint struct {
	Theme string `yaml:"theme"` // forces the region's faction theme
}

// Region is an immutable group of connected walkable tiles.
type Region struct {
	ID       int
	Tiles    []gruid.Point // row-major order
	Edges    []gruid.Point // tiles with a cardinal neighbour outside the region
	Centroid gruid.Point   // region tile nearest the mean position
	Bounds   gruid.Range
	Tag      string
	Hints    []SpawnHint
}

// Area returns the number of tiles in the region.
func (r *Region) Area() int {
	return len(r.Tiles)
}

// HintedTheme returns the first theme named by a spawn hint, or "".
func (r *Region) HintedTheme() string {
	for _, h := range r.Hints {
		if h.Theme != "" {
			return h.Theme
		}
	}
	return ""
}

// Contains reports whether p is one of the region's tiles.
func (r *Region) Contains(p gruid.Point) bool {
	if !p.In(r.Bounds) {
		return false
	}
	for _, t := range r.Tiles {
		if t == p {
			return true
		}
	}
	return false
}

// Provider supplies the region partition of one floor.
type Provider interface {
	// Regions returns every region sorted by id.
	Regions() []*Region
	// RegionIDAt returns the id of the region owning p, or NoRegion.
	RegionIDAt(p gruid.Point) int
	// Size returns the dimensions of the tile grid.
	Size() gruid.Point
	// Entrance returns the floor's entry position.
	Entrance() gruid.Point
	// EntranceDistance returns the walking distance from the entrance to p.
	// ok is false when no distance field is available or p is unreachable.
	EntranceDistance(p gruid.Point) (dist int, ok bool)
}

// Connection is an explicit link between two regions (a door or corridor).
type Connection struct {
	A int `yaml:"a"`
	B int `yaml:"b"`
}

// Connector is implemented by providers that know their region links
// explicitly instead of relying on tile adjacency.
type Connector interface {
	Connections() []Connection
}

// Adjacency returns each region's neighbour ids, sorted. Explicit connections
// are used when the provider offers any; otherwise regions are adjacent when
// two of their tiles touch cardinally.
func Adjacency(p Provider) map[int][]int {
	sets := make(map[int]map[int]bool)
	link := func(a, b int) {
		if a == b || a == NoRegion || b == NoRegion {
			return
		}
		if sets[a] == nil {
			sets[a] = make(map[int]bool)
		}
		if sets[b] == nil {
			sets[b] = make(map[int]bool)
		}
		sets[a][b] = true
		sets[b][a] = true
	}

	var conns []Connection
	if c, ok := p.(Connector); ok {
		conns = c.Connections()
	}
	if len(conns) > 0 {
		for _, c := range conns {
			link(c.A, c.B)
		}
	} else {
		size := p.Size()
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				pt := gruid.Point{X: x, Y: y}
				id := p.RegionIDAt(pt)
				if id == NoRegion {
					continue
				}
				if x+1 < size.X {
					link(id, p.RegionIDAt(gruid.Point{X: x + 1, Y: y}))
				}
				if y+1 < size.Y {
					link(id, p.RegionIDAt(gruid.Point{X: x, Y: y + 1}))
				}
			}
		}
	}

	adj := make(map[int][]int, len(p.Regions()))
	for _, r := range p.Regions() {
		ids := make([]int, 0, len(sets[r.ID]))
		for id := range sets[r.ID] {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		adj[r.ID] = ids
	}
	return adj
}

// AverageDistance is the mean entrance distance over the region's tiles. When
// no tile has a known distance it falls back to the Manhattan distance between
// the centroid and the entrance.
func AverageDistance(p Provider, r *Region) float64 {
	total, n := 0, 0
	for _, t := range r.Tiles {
		if d, ok := p.EntranceDistance(t); ok {
			total += d
			n++
		}
	}
	if n == 0 {
		return float64(paths.DistanceManhattan(r.Centroid, p.Entrance()))
	}
	return float64(total) / float64(n)
}

// Distance returns the entrance distance of p, falling back to Manhattan
// distance when the field has no value for it.
func Distance(p Provider, pt gruid.Point) int {
	if d, ok := p.EntranceDistance(pt); ok {
		return d
	}
	return paths.DistanceManhattan(pt, p.Entrance())
}
