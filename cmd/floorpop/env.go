package main

import (
	"fmt"

	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/config"
	"github.com/lawnchairsociety/floorpop/internal/entity"
	"github.com/lawnchairsociety/floorpop/internal/logger"
	"github.com/lawnchairsociety/floorpop/internal/populate"
	"github.com/lawnchairsociety/floorpop/internal/region"
	"github.com/lawnchairsociety/floorpop/internal/rng"
	"github.com/lawnchairsociety/floorpop/internal/store"
)

// environment is what every subcommand loads before populating floors.
type environment struct {
	catalog *catalog.Catalog
	layout  *region.Grid
	tuning  populate.Tuning
}

func loadEnvironment(cfg *config.Config, layoutPath string) (*environment, error) {
	cat, err := catalog.LoadDir(cfg.ContentDir)
	if err != nil {
		return nil, err
	}
	grid, err := region.LoadLayout(layoutPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout %s: %w", layoutPath, err)
	}
	logger.Info("Layout loaded", "path", layoutPath, "regions", len(grid.Regions()))
	return &environment{catalog: cat, layout: grid, tuning: cfg.Tuning()}, nil
}

// floorRequest builds the request for one floor of a run. Each depth gets its
// own seed derived from the run seed.
func (env *environment) floorRequest(runSeed int64, depth int, final bool) (populate.FloorRequest, *entity.World) {
	world := entity.NewWorld()
	return populate.FloorRequest{
		Depth:    depth,
		Seed:     floorSeed(runSeed, depth),
		Final:    final,
		Provider: env.layout,
		Factory:  world,
		Registry: world,
	}, world
}

func floorSeed(runSeed int64, depth int) int64 {
	return rng.DeriveSeed(runSeed, fmt.Sprintf("floor/%d", depth))
}

// openStore opens the configured store. It returns nil when persistence is
// disabled.
func openStore(cfg *config.Config) (*store.Store, error) {
	sc, ok := cfg.StoreConfig()
	if !ok {
		return nil, nil
	}
	s, err := store.Open(sc)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}
