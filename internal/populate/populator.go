package populate

import (
	"fmt"
	"math/rand"
	"sync"

	"codeberg.org/anaseto/gruid"
	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/clock"
	"github.com/lawnchairsociety/floorpop/internal/entity"
	"github.com/lawnchairsociety/floorpop/internal/logger"
	"github.com/lawnchairsociety/floorpop/internal/region"
	"github.com/lawnchairsociety/floorpop/internal/rng"
)

// FloorRequest describes one floor to populate.
type FloorRequest struct {
	Depth    int
	Seed     int64
	Final    bool // place the terminal objective instead of the exit
	Provider region.Provider
	Factory  entity.Factory
	Registry entity.Registry
}

// Observer is notified after every successful Populate call.
type Observer interface {
	FloorPopulated(s *Summary)
}

// Options configures a Populator. Zero values select the defaults.
type Options struct {
	Tuning    Tuning
	Clock     clock.Clock
	Tracker   *UniqueTracker
	Observers []Observer

	// IndependentFloors treats every Populate call as its own run, so uniques
	// are not remembered between floors. Ignored when Tracker is set.
	IndependentFloors bool
}

// Populator runs the allocation phases in order over one floor at a time.
type Populator struct {
	catalog *catalog.Catalog
	tuning  Tuning
	clock   clock.Clock
	tracker *UniqueTracker

	themes     ThemeAssigner
	budget     BudgetAllocator
	placer     EncounterPlacer
	spawner    *EncounterSpawner
	treasure   TreasurePlacer
	loot       LootDistributor
	gold       GoldPlacer
	stairs     StairsSpawner
	uniques    UniqueMonsterSpawner
	outOfDepth OutOfDepthSpawner

	mu        sync.RWMutex
	observers []Observer
}

// New creates a Populator over an immutable catalog.
func New(cat *catalog.Catalog, opts Options) *Populator {
	t := opts.Tuning
	if t == (Tuning{}) {
		t = DefaultTuning()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	tracker := opts.Tracker
	if tracker == nil && !opts.IndependentFloors {
		// Without a store the tracker cannot fail to load.
		tracker, _ = NewUniqueTracker(nil, "")
	}

	return &Populator{
		catalog: cat,
		tuning:  t,
		clock:   clk,
		tracker: tracker,

		themes: ThemeAssigner{ClusterChance: t.ThemeClusterChance},
		placer: EncounterPlacer{
			Spacing:       t.EncounterSpacing,
			MaxAttempts:   t.EncounterAttempts,
			LairRadius:    t.LairRadius,
			DefaultWeight: t.DefaultEncounterWeight,
		},
		spawner: &EncounterSpawner{
			Matcher: NewArchetypeMatcher(cat),
			Placers: NewPlacerRegistry(t),
			AI:      AIConfigurator{WaypointSpacing: max(2, t.EncounterSpacing/2)},
		},
		treasure: TreasurePlacer{Regions: t.GuardedTreasureRegions},
		loot:     LootDistributor{Attempts: t.LootAttempts},
		uniques:  UniqueMonsterSpawner{Tracker: tracker},

		observers: append([]Observer(nil), opts.Observers...),
	}
}

// AddObserver registers an observer for subsequent floors.
func (p *Populator) AddObserver(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, o)
}

// Placers exposes the placement strategy registry so callers can install
// their own strategies before populating.
func (p *Populator) Placers() *PlacerRegistry {
	return p.spawner.Placers
}

// Populate fills one floor. Configuration gaps and spatial dead ends become
// warnings in the summary; only missing or inconsistent region data is an error.
func (p *Populator) Populate(req FloorRequest) (*Summary, error) {
	start := p.clock.Now()

	if req.Depth < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, req.Depth)
	}
	if req.Provider == nil {
		return nil, ErrNoRegions
	}
	if req.Factory == nil || req.Registry == nil {
		return nil, fmt.Errorf("populate depth %d: factory and registry are required", req.Depth)
	}
	if err := validateRegions(req.Provider); err != nil {
		return nil, err
	}

	log := logger.With("populate").With("depth", req.Depth, "seed", req.Seed)
	summary := newSummary(req.Depth, req.Seed, req.Final)
	if p.tracker != nil {
		summary.RunID = p.tracker.RunID()
	}

	cfg, ok := p.catalog.FloorConfig(req.Depth)
	if !ok {
		cfg = catalog.DefaultFloorConfig(req.Depth)
		log.Warn("No floor config for depth, using defaults")
		summary.addWarning("No floor config for depth, using defaults", "depth", req.Depth)
	}

	fs := newFloorState(req, cfg, p.catalog, p.tuning, log, summary)
	summary.Final = fs.Final
	phase := func(name string) *rand.Rand { return rng.ForPhase(req.Seed, name) }

	p.themes.Assign(fs, phase(rng.PhaseThemes))
	p.budget.Allocate(fs, phase(rng.PhaseBudget))
	CalculateDangerLevels(fs)
	p.placer.Place(fs, phase(rng.PhaseEncounters))
	p.spawner.Spawn(fs, phase(rng.PhaseSpawn))
	// Treasure is ranked by encounter threat only; bonus spawns come later.
	p.treasure.Place(fs, phase(rng.PhaseTreasure))
	p.loot.Distribute(fs, phase(rng.PhaseLoot))
	summary.Gold = p.gold.Place(fs, phase(rng.PhaseGold))
	p.stairs.Place(fs)
	p.uniques.Spawn(fs)
	p.outOfDepth.Spawn(fs, phase(rng.PhaseOutOfDepth))

	summary.collect(fs)
	p.validate(fs)
	summary.Elapsed = p.clock.Now().Sub(start)

	log.Info("Floor populated",
		"regions", summary.Regions,
		"budget", summary.PowerBudget,
		"spent", summary.BudgetSpent,
		"encounters", summary.EncountersPlaced,
		"creatures", summary.CreaturesSpawned,
		"items", summary.ItemsPlaced,
		"gold", summary.GoldPlaced,
		"warnings", len(summary.Warnings))

	p.mu.RLock()
	observers := append([]Observer(nil), p.observers...)
	p.mu.RUnlock()
	for _, o := range observers {
		o.FloorPopulated(summary)
	}
	return summary, nil
}

// validate records post-generation problems as warnings.
func (p *Populator) validate(fs *FloorState) {
	if fs.Summary.CreaturesSpawned < p.tuning.MinCreatures {
		fs.warn("Floor has fewer creatures than required",
			"creatures", fs.Summary.CreaturesSpawned, "min", p.tuning.MinCreatures)
	}
	if !fs.Summary.ExitPlaced {
		fs.warn("Floor has no exit", "depth", fs.Depth)
	}
	if fs.Summary.PowerBudget > 0 && fs.Summary.Utilization() < p.tuning.MinUtilization {
		fs.warn("Low budget utilization",
			"spent", fs.Summary.BudgetSpent, "budget", fs.Summary.PowerBudget)
	}
	for _, id := range fs.Order {
		if fs.Regions[id].Theme == "" {
			fs.warn("Region left without a theme", "region", id)
		}
	}
}

// validateRegions rejects providers whose regions do not form a consistent
// partition of the grid.
func validateRegions(p region.Provider) error {
	regions := p.Regions()
	if len(regions) == 0 {
		return ErrNoRegions
	}

	ids := make(map[int]bool, len(regions))
	owner := make(map[gruid.Point]int)
	for _, r := range regions {
		if r == nil {
			return fmt.Errorf("%w: nil region", ErrCorruptRegionGraph)
		}
		if r.ID < 0 {
			return fmt.Errorf("%w: negative region id %d", ErrCorruptRegionGraph, r.ID)
		}
		if ids[r.ID] {
			return fmt.Errorf("%w: duplicate region id %d", ErrCorruptRegionGraph, r.ID)
		}
		ids[r.ID] = true
		if len(r.Tiles) == 0 {
			return fmt.Errorf("%w: region %d has no tiles", ErrCorruptRegionGraph, r.ID)
		}
		for _, t := range r.Tiles {
			if prev, ok := owner[t]; ok {
				return fmt.Errorf("%w: tile %v claimed by regions %d and %d", ErrCorruptRegionGraph, t, prev, r.ID)
			}
			owner[t] = r.ID
			if got := p.RegionIDAt(t); got != r.ID {
				return fmt.Errorf("%w: tile %v of region %d maps to %d", ErrCorruptRegionGraph, t, r.ID, got)
			}
		}
	}
	return nil
}
