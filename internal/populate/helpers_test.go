package populate

import (
	"log/slog"
	"testing"

	"codeberg.org/anaseto/gruid"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/dice"
	"github.com/lawnchairsociety/floorpop/internal/entity"
	"github.com/lawnchairsociety/floorpop/internal/region"
)

// stripeGrid builds a grid whose row y belongs to region rows[y]. The
// entrance is the top-left tile.
func stripeGrid(t testing.TB, width int, rows []int, meta map[int]region.RegionMeta) *region.Grid {
	t.Helper()
	ids := make([]int, 0, width*len(rows))
	for _, id := range rows {
		for x := 0; x < width; x++ {
			ids = append(ids, id)
		}
	}
	g, err := region.NewGrid(gruid.Point{X: width, Y: len(rows)}, ids, gruid.Point{}, meta)
	require.NoError(t, err)
	return g
}

// scenarioGrid is the 10x10 three-region floor: areas 10, 30 and 60.
func scenarioGrid(t testing.TB) *region.Grid {
	return stripeGrid(t, 10, []int{0, 1, 1, 1, 2, 2, 2, 2, 2, 2}, nil)
}

func goblinContent() catalog.Content {
	return catalog.Content{
		Creatures: map[string]catalog.CreatureTemplate{
			"goblin": {
				Name:   "Goblin",
				Type:   "goblinoid",
				Threat: 2,
				Stats:  catalog.Stats{Strength: 8, Dexterity: 14, Constitution: 8, Intelligence: 6},
			},
			"goblin_chief": {
				Name:   "Goblin Chief",
				Type:   "goblinoid",
				Threat: 3,
				Stats:  catalog.Stats{Strength: 14, Dexterity: 10, Constitution: 12, Intelligence: 8},
			},
		},
		Items: map[string]catalog.ItemTemplate{
			"potion": {Rarity: catalog.Common, Value: 1},
			"dagger": {Rarity: catalog.Uncommon, Value: 2},
			"amulet": {Rarity: catalog.Rare, Value: 4},
		},
		Themes: map[string]catalog.FactionTheme{
			"goblinoid": {Name: "Goblinoid", Creatures: []string{"goblin", "goblin_chief"}},
		},
		Encounters: map[string]catalog.EncounterTemplate{
			"warband": {
				MinArea:   12,
				MinBudget: 5,
				MaxBudget: 8,
				Slots:     []catalog.EncounterSlot{{Role: "member", Count: dice.Range(2, 3)}},
			},
		},
		Floors: []catalog.FloorSpawnConfig{{
			Depth:       1,
			PowerBudget: dice.Flat(20),
			ItemBudget:  dice.Flat(6),
			GoldBudget:  dice.Flat(40),
			Themes:      map[string]float64{"goblinoid": 1},
			Encounters:  map[string]float64{"warband": 1},
		}},
	}
}

func buildCatalog(t testing.TB, content catalog.Content) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Build(content)
	require.NoError(t, err)
	return cat
}

// newTestState prepares a FloorState the way Populate does, without running
// any phase.
func newTestState(t testing.TB, cat *catalog.Catalog, p region.Provider, depth int, seed int64) (*FloorState, *entity.World) {
	t.Helper()
	cfg, ok := cat.FloorConfig(depth)
	if !ok {
		cfg = catalog.DefaultFloorConfig(depth)
	}
	world := entity.NewWorld()
	req := FloorRequest{Depth: depth, Seed: seed, Provider: p, Factory: world, Registry: world}
	log := slog.New(slog.DiscardHandler)
	return newFloorState(req, cfg, cat, DefaultTuning(), log, newSummary(depth, seed, false)), world
}
