package populate

import (
	"log/slog"
	"math/rand"
	"sort"

	"codeberg.org/anaseto/gruid"
	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/entity"
	"github.com/lawnchairsociety/floorpop/internal/region"
)

// RegionSpawnData is the mutable allocator state of one region. It lives for
// a single Populate call.
type RegionSpawnData struct {
	Region          *region.Region
	Theme           string // "" when no theme could be assigned
	ThemeOverridden bool
	DangerLevel     float64
	AllocatedBudget int
	RemainingBudget int
	SpawnedThreat   int // threat paid from the allocated budget
	BonusThreat     int // uniques and out-of-depth spawns, outside the budget
	Neighbors       []int
	Encounters      []*SpawnedEncounter
	Processed       bool
}

// Allocate sets the region's share of the floor budget. Threat already
// spawned stays accounted for.
func (s *RegionSpawnData) Allocate(amount int) {
	s.AllocatedBudget = amount
	s.RemainingBudget = amount - s.SpawnedThreat
}

// ConsumeBudget subtracts cost from the remaining budget. It fails and leaves
// the state untouched when cost is negative or exceeds the remaining budget.
func (s *RegionSpawnData) ConsumeBudget(cost int) bool {
	if cost < 0 || cost > s.RemainingBudget {
		return false
	}
	s.RemainingBudget -= cost
	s.SpawnedThreat += cost
	return true
}

// TotalThreat is all threat present in the region, bonus spawns included.
func (s *RegionSpawnData) TotalThreat() int {
	return s.SpawnedThreat + s.BonusThreat
}

// SpawnedCreature is one member of an encounter.
type SpawnedCreature struct {
	Handle     entity.Handle
	CreatureID string
	Role       string
	Threat     int // effective threat after the slot multiplier
	Archetypes catalog.ArchetypeSet
}

// SpawnedEncounter records a placed encounter. The placer fills the stub and
// the spawner adds creatures.
type SpawnedEncounter struct {
	Template    catalog.EncounterTemplate
	Theme       string
	RegionID    int
	Center      gruid.Point
	Creatures   []SpawnedCreature
	TotalThreat int
	Leader      entity.ID // 0 when no leader slot was filled
	Success     bool
	Error       string
}

// Occupancy is the set of tiles taken during one Populate call. It also
// consults the registry for entities that existed beforehand.
type Occupancy struct {
	taken    map[gruid.Point]bool
	registry entity.Registry
}

// NewOccupancy creates an empty set backed by registry (which may be nil).
func NewOccupancy(registry entity.Registry) *Occupancy {
	return &Occupancy{
		taken:    make(map[gruid.Point]bool),
		registry: registry,
	}
}

// IsFree reports whether nothing occupies p.
func (o *Occupancy) IsFree(p gruid.Point) bool {
	if o.taken[p] {
		return false
	}
	return o.registry == nil || !o.registry.IsPositionOccupied(p)
}

// Mark records p as occupied.
func (o *Occupancy) Mark(p gruid.Point) {
	o.taken[p] = true
}

// Len returns how many tiles were marked.
func (o *Occupancy) Len() int {
	return len(o.taken)
}

// FreeTiles filters tiles to unoccupied ones, preserving order.
func (o *Occupancy) FreeTiles(tiles []gruid.Point) []gruid.Point {
	out := make([]gruid.Point, 0, len(tiles))
	for _, t := range tiles {
		if o.IsFree(t) {
			out = append(out, t)
		}
	}
	return out
}

// FloorState is everything the phases share during one Populate call.
type FloorState struct {
	Depth    int
	Seed     int64
	Final    bool
	Config   catalog.FloorSpawnConfig
	Catalog  *catalog.Catalog
	Provider region.Provider
	Regions  map[int]*RegionSpawnData
	Order    []int // region ids, ascending
	Occupied *Occupancy
	Factory  entity.Factory
	Registry entity.Registry
	Summary  *Summary
	Tuning   Tuning
	Log      *slog.Logger

	itemRemaining int
	avgDistance   map[int]float64
}

// newFloorState builds per-region state from the provider.
func newFloorState(req FloorRequest, cfg catalog.FloorSpawnConfig, cat *catalog.Catalog, tuning Tuning, log *slog.Logger, summary *Summary) *FloorState {
	fs := &FloorState{
		Depth:       req.Depth,
		Seed:        req.Seed,
		Final:       req.Final || cfg.Final,
		Config:      cfg,
		Catalog:     cat,
		Provider:    req.Provider,
		Regions:     make(map[int]*RegionSpawnData),
		Occupied:    NewOccupancy(req.Registry),
		Factory:     req.Factory,
		Registry:    req.Registry,
		Summary:     summary,
		Tuning:      tuning,
		Log:         log,
		avgDistance: make(map[int]float64),
	}

	adjacency := region.Adjacency(req.Provider)
	for _, r := range req.Provider.Regions() {
		fs.Regions[r.ID] = &RegionSpawnData{
			Region:    r,
			Neighbors: adjacency[r.ID],
		}
		fs.Order = append(fs.Order, r.ID)
		fs.avgDistance[r.ID] = region.AverageDistance(req.Provider, r)
	}
	sort.Ints(fs.Order)
	return fs
}

// AverageDistance returns the cached mean entrance distance of a region.
func (fs *FloorState) AverageDistance(id int) float64 {
	return fs.avgDistance[id]
}

// warn logs a configuration or placement problem and records it in the summary.
func (fs *FloorState) warn(msg string, args ...any) {
	fs.Log.Warn(msg, args...)
	fs.Summary.addWarning(msg, args...)
}

// spawnCreature creates and registers a creature, marking its tile.
func (fs *FloorState) spawnCreature(creatureID string, pos gruid.Point) (entity.Handle, bool) {
	h, err := fs.Factory.CreateCreature(creatureID, pos)
	if err != nil {
		fs.warn("Failed to create creature", "creature", creatureID, "error", err.Error())
		return entity.Handle{}, false
	}
	if !fs.register(h) {
		return entity.Handle{}, false
	}
	fs.Summary.CreaturesSpawned++
	return h, true
}

// spawnItem creates and registers an item.
func (fs *FloorState) spawnItem(itemID string, pos gruid.Point) (entity.Handle, bool) {
	h, err := fs.Factory.CreateItem(itemID, pos)
	if err != nil {
		fs.warn("Failed to create item", "item", itemID, "error", err.Error())
		return entity.Handle{}, false
	}
	if !fs.register(h) {
		return entity.Handle{}, false
	}
	fs.Summary.ItemsPlaced++
	return h, true
}

// spawnGold creates and registers a gold pile.
func (fs *FloorState) spawnGold(amount int, pos gruid.Point) (entity.Handle, bool) {
	h, err := fs.Factory.CreateGold(amount, pos)
	if err != nil {
		fs.warn("Failed to create gold pile", "amount", amount, "error", err.Error())
		return entity.Handle{}, false
	}
	if !fs.register(h) {
		return entity.Handle{}, false
	}
	fs.Summary.GoldPiles++
	fs.Summary.GoldPlaced += amount
	return h, true
}

// spawnFeature creates and registers a map feature.
func (fs *FloorState) spawnFeature(featureID string, pos gruid.Point) (entity.Handle, bool) {
	h, err := fs.Factory.CreateFeature(featureID, pos)
	if err != nil {
		fs.warn("Failed to create feature", "feature", featureID, "error", err.Error())
		return entity.Handle{}, false
	}
	if !fs.register(h) {
		return entity.Handle{}, false
	}
	return h, true
}

func (fs *FloorState) register(h entity.Handle) bool {
	if err := fs.Registry.AddEntity(h); err != nil {
		fs.warn("Failed to register entity", "template", h.TemplateID, "error", err.Error())
		return false
	}
	fs.Occupied.Mark(h.Pos)
	return true
}

// randomFreeTile picks a uniformly random unoccupied tile of r.
func (fs *FloorState) randomFreeTile(rg *region.Region, r *rand.Rand) (gruid.Point, bool) {
	free := fs.Occupied.FreeTiles(rg.Tiles)
	if len(free) == 0 {
		return gruid.Point{}, false
	}
	return free[r.Intn(len(free))], true
}

// edgeOrFreeTile prefers a random free edge tile, falling back to any free tile.
func (fs *FloorState) edgeOrFreeTile(rg *region.Region, r *rand.Rand) (gruid.Point, bool) {
	if edges := fs.Occupied.FreeTiles(rg.Edges); len(edges) > 0 {
		return edges[r.Intn(len(edges))], true
	}
	return fs.randomFreeTile(rg, r)
}
