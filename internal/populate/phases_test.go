package populate

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/dice"
	"github.com/lawnchairsociety/floorpop/internal/entity"
	"github.com/lawnchairsociety/floorpop/internal/region"
)

func TestThemeAssignerHintOverride(t *testing.T) {
	content := goblinContent()
	content.Themes["undead"] = catalog.FactionTheme{Creatures: []string{"goblin"}}
	g := stripeGrid(t, 10, []int{0, 1, 1, 2, 2}, map[int]region.RegionMeta{
		1: {Hints: []region.SpawnHint{{Theme: "undead"}}},
		2: {Hints: []region.SpawnHint{{Theme: "missing"}}},
	})
	fs, _ := newTestState(t, buildCatalog(t, content), g, 1, 1)

	ThemeAssigner{ClusterChance: 0.4}.Assign(fs, rand.New(rand.NewSource(1)))

	assert.Equal(t, "undead", fs.Regions[1].Theme)
	assert.True(t, fs.Regions[1].ThemeOverridden)
	assert.False(t, fs.Regions[2].ThemeOverridden)
	assert.NotEmpty(t, fs.Regions[2].Theme)
	assert.NotEmpty(t, fs.Summary.Warnings, "unknown hinted theme is reported")
}

func TestThemeAssignerClusters(t *testing.T) {
	content := goblinContent()
	content.Themes["undead"] = catalog.FactionTheme{Creatures: []string{"goblin"}}
	content.Floors[0].Themes = map[string]float64{"goblinoid": 1, "undead": 1}
	cat := buildCatalog(t, content)
	rows := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	same := func(chance float64) int {
		n := 0
		for seed := int64(0); seed < 200; seed++ {
			fs, _ := newTestState(t, cat, stripeGrid(t, 4, rows, nil), 1, seed)
			ThemeAssigner{ClusterChance: chance}.Assign(fs, rand.New(rand.NewSource(seed)))
			for i := 1; i < len(rows); i++ {
				if fs.Regions[i].Theme == fs.Regions[i-1].Theme {
					n++
				}
			}
		}
		return n
	}
	assert.Greater(t, same(0.9), same(0))
}

func TestThemeAssignerNoThemes(t *testing.T) {
	content := goblinContent()
	content.Themes = nil
	fs, _ := newTestState(t, buildCatalog(t, content), scenarioGrid(t), 1, 1)

	ThemeAssigner{ClusterChance: 0.4}.Assign(fs, rand.New(rand.NewSource(1)))
	for _, id := range fs.Order {
		assert.Empty(t, fs.Regions[id].Theme)
	}
	assert.NotEmpty(t, fs.Summary.Warnings)
}

func TestRarityTiers(t *testing.T) {
	assert.Equal(t, []catalog.Rarity{catalog.Rare, catalog.Epic}, GuardedBand(16))
	assert.Equal(t, []catalog.Rarity{catalog.Uncommon, catalog.Rare}, GuardedBand(8))
	assert.Equal(t, []catalog.Rarity{catalog.Common, catalog.Uncommon}, GuardedBand(7))

	assert.Equal(t, catalog.Rare, LootCeiling(16))
	assert.Equal(t, catalog.Uncommon, LootCeiling(6))
	assert.Equal(t, catalog.Common, LootCeiling(5))
}

// threatened prepares the scenario floor with fixed spawned threat per region.
func threatened(t *testing.T, content catalog.Content, seed int64, threat ...int) (*FloorState, *entity.World) {
	t.Helper()
	fs, world := newTestState(t, buildCatalog(t, content), scenarioGrid(t), 1, seed)
	for i, id := range fs.Order {
		st := fs.Regions[id]
		st.Allocate(threat[i])
		require.True(t, st.ConsumeBudget(threat[i]))
	}
	return fs, world
}

func TestTreasureAndLootStayWithinItemBudget(t *testing.T) {
	for seed := int64(0); seed < 30; seed++ {
		content := goblinContent()
		content.Floors[0].ItemBudget = dice.Flat(int(seed % 12))
		fs, world := threatened(t, content, seed, 2, 9, 17)
		r := rand.New(rand.NewSource(seed))

		TreasurePlacer{Regions: 3}.Place(fs, r)
		assert.LessOrEqual(t, fs.Summary.GuardedItems, 3)
		LootDistributor{Attempts: 32}.Distribute(fs, r)

		spent := 0
		for _, h := range world.Entities() {
			require.Equal(t, entity.KindItem, h.Kind)
			it, ok := fs.Catalog.Item(h.TemplateID)
			require.True(t, ok)
			spent += it.Cost()
		}
		assert.LessOrEqual(t, spent, fs.Summary.ItemBudget, "seed %d", seed)
		assert.Equal(t, spent, fs.Summary.ItemBudgetSpent)
		assert.GreaterOrEqual(t, fs.itemRemaining, 0)
	}
}

func TestTreasureGuardedRarity(t *testing.T) {
	content := goblinContent()
	content.Items["crown"] = catalog.ItemTemplate{Rarity: catalog.Epic, Value: 5}
	content.Floors[0].ItemBudget = dice.Flat(100)
	fs, world := threatened(t, content, 1, 0, 0, 17)

	TreasurePlacer{Regions: 3}.Place(fs, rand.New(rand.NewSource(4)))

	require.Equal(t, 1, fs.Summary.GuardedItems, "only regions with threat are guarded")
	items := world.Entities()
	require.Len(t, items, 1)
	it, _ := fs.Catalog.Item(items[0].TemplateID)
	assert.Contains(t, []catalog.Rarity{catalog.Rare, catalog.Epic}, it.Rarity)
	assert.True(t, fs.Regions[2].Region.Contains(items[0].Pos))
}

func TestGoldPlacement(t *testing.T) {
	for seed := int64(0); seed < 40; seed++ {
		content := goblinContent()
		content.Floors[0].GoldBudget = dice.Flat(10 + int(seed)*3)
		content.Floors[0].GoldPiles = dice.Range(3, 9)
		fs, world := threatened(t, content, seed, 0, 5, 20)

		piles := GoldPlacer{}.Place(fs, rand.New(rand.NewSource(seed)))

		sum := 0
		seenScattered := false
		for _, p := range piles {
			assert.Positive(t, p.Amount)
			sum += p.Amount
			if !p.Guarded {
				seenScattered = true
				continue
			}
			assert.False(t, seenScattered, "seed %d: guarded pile after scattered ones", seed)
			assert.Equal(t, 2, p.RegionID, "only the top third by threat is guarded")
		}
		assert.LessOrEqual(t, sum, fs.Summary.GoldBudget, "seed %d", seed)
		assert.Equal(t, sum, fs.Summary.GoldPlaced)
		assert.Equal(t, len(piles), world.Count(entity.KindGold))
	}
}

func TestGoldPlacementNoBudget(t *testing.T) {
	content := goblinContent()
	content.Floors[0].GoldBudget = dice.Expr{}
	fs, world := threatened(t, content, 1, 1, 1, 1)

	assert.Empty(t, GoldPlacer{}.Place(fs, rand.New(rand.NewSource(1))))
	assert.Zero(t, world.Count(entity.KindGold))
}

func TestPileRangeGrowsWithDepth(t *testing.T) {
	lo1, hi1 := PileRange(1)
	lo5, hi5 := PileRange(5)
	assert.Less(t, lo1, lo5)
	assert.Less(t, hi1, hi5)
	assert.Less(t, lo5, hi5)

	lo, hi := PileRange(-3)
	assert.Equal(t, lo1, lo)
	assert.Equal(t, hi1, hi)
}

func TestGoldPlacementNegativeDepth(t *testing.T) {
	fs, world := newTestState(t, buildCatalog(t, goblinContent()), scenarioGrid(t), 1, 1)
	fs.Depth = -3

	piles := GoldPlacer{}.Place(fs, rand.New(rand.NewSource(1)))
	assert.NotEmpty(t, piles)
	assert.Equal(t, len(piles), world.Count(entity.KindGold))
}

func TestStairsAtLeastMedianDistance(t *testing.T) {
	for seed := int64(0); seed < 30; seed++ {
		r := rand.New(rand.NewSource(seed))
		rows := make([]int, 6+r.Intn(10))
		id := 0
		for y := range rows {
			if y > 0 && r.Intn(2) == 0 {
				id++
			}
			rows[y] = id
		}
		fs, world := newTestState(t, buildCatalog(t, goblinContent()), stripeGrid(t, 5+r.Intn(5), rows, nil), 1, seed)

		require.True(t, StairsSpawner{}.Place(fs))
		require.Equal(t, 1, world.Count(entity.KindFeature))

		dists := make([]float64, 0, len(fs.Order))
		for _, id := range fs.Order {
			dists = append(dists, fs.AverageDistance(id))
		}
		sort.Float64s(dists)
		median := dists[len(dists)/2]
		if len(dists)%2 == 0 {
			median = (dists[len(dists)/2-1] + dists[len(dists)/2]) / 2
		}
		assert.GreaterOrEqual(t, fs.AverageDistance(fs.Summary.ExitRegion), median, "seed %d", seed)

		exit := world.Entities()[0]
		assert.Equal(t, catalog.DefaultExitID, exit.TemplateID)
		assert.Equal(t, fs.Summary.ExitRegion, fs.Provider.RegionIDAt(exit.Pos))
	}
}

func TestStairsFinalFloorObjective(t *testing.T) {
	fs, world := newTestState(t, buildCatalog(t, goblinContent()), scenarioGrid(t), 1, 1)
	fs.Final = true

	require.True(t, StairsSpawner{}.Place(fs))
	exit := world.Entities()[0]
	assert.Equal(t, catalog.DefaultObjectiveID, exit.TemplateID)
	assert.Equal(t, 2, fs.Summary.ExitRegion)
	// Farthest tile of the bottom row from the top-left entrance.
	assert.Equal(t, 9, exit.Pos.X)
	assert.Equal(t, 9, exit.Pos.Y)
}

type memUniqueStore struct {
	runs map[string][]string
	fail bool
}

func (m *memUniqueStore) MarkUniqueSpawned(runID, creatureID string) error {
	if m.fail {
		return errors.New("store down")
	}
	m.runs[runID] = append(m.runs[runID], creatureID)
	return nil
}

func (m *memUniqueStore) SpawnedUniques(runID string) ([]string, error) {
	if m.fail {
		return nil, errors.New("store down")
	}
	return m.runs[runID], nil
}

func (m *memUniqueStore) ResetRun(runID string) error {
	delete(m.runs, runID)
	return nil
}

func TestUniqueTracker(t *testing.T) {
	store := &memUniqueStore{runs: map[string][]string{"run-1": {"king"}}}
	ut, err := NewUniqueTracker(store, "run-1")
	require.NoError(t, err)

	assert.True(t, ut.HasSpawned("king"), "state is loaded from the store")
	assert.False(t, ut.HasSpawned("queen"))

	first, err := ut.MarkSpawned("queen")
	require.NoError(t, err)
	assert.True(t, first)
	again, err := ut.MarkSpawned("queen")
	require.NoError(t, err)
	assert.False(t, again)
	assert.Equal(t, []string{"king", "queen"}, ut.Spawned())
	assert.Equal(t, []string{"king", "queen"}, store.runs["run-1"])

	require.NoError(t, ut.ResetForNewRun("run-2"))
	assert.Equal(t, "run-2", ut.RunID())
	assert.False(t, ut.HasSpawned("king"))
	assert.Empty(t, ut.Spawned())

	store.fail = true
	_, err = NewUniqueTracker(store, "run-3")
	assert.Error(t, err)
}

func TestUniqueSpawnerOncePerRun(t *testing.T) {
	content := goblinContent()
	content.Creatures["goblin_king"] = catalog.CreatureTemplate{Name: "Goblin King", Threat: 9, Unique: true}
	content.Floors[0].Uniques = []string{"goblin_king"}
	cat := buildCatalog(t, content)

	ut, err := NewUniqueTracker(nil, "run")
	require.NoError(t, err)
	spawner := UniqueMonsterSpawner{Tracker: ut}

	fs, world := newTestState(t, cat, scenarioGrid(t), 1, 1)
	spawner.Spawn(fs)
	require.Equal(t, []string{"goblin_king"}, fs.Summary.Uniques)
	require.Equal(t, 1, world.Count(entity.KindCreature))
	// Largest of the farthest regions, at its centroid.
	king := world.Entities()[0]
	assert.Equal(t, fs.Regions[2].Region.Centroid, king.Pos)
	assert.Equal(t, 9, fs.Regions[2].BonusThreat)
	assert.Zero(t, fs.Regions[2].SpawnedThreat, "uniques do not consume the budget")

	// Second floor of the same run: already spawned.
	fs, world = newTestState(t, cat, scenarioGrid(t), 2, 2)
	spawner.Spawn(fs)
	assert.Empty(t, fs.Summary.Uniques)
	assert.Zero(t, world.Count(entity.KindCreature))

	require.NoError(t, ut.ResetForNewRun("next"))
	fs, world = newTestState(t, cat, scenarioGrid(t), 1, 3)
	spawner.Spawn(fs)
	assert.Equal(t, []string{"goblin_king"}, fs.Summary.Uniques)
	assert.Equal(t, 1, world.Count(entity.KindCreature))
}

func TestUniqueSpawnerSkipsRepeatedIDs(t *testing.T) {
	content := goblinContent()
	content.Creatures["goblin_king"] = catalog.CreatureTemplate{Threat: 9, Unique: true}

	fs, world := newTestState(t, buildCatalog(t, content), scenarioGrid(t), 1, 1)
	fs.Config.Uniques = []string{"goblin_king", "goblin_king"}

	UniqueMonsterSpawner{}.Spawn(fs)
	assert.Equal(t, []string{"goblin_king"}, fs.Summary.Uniques)
	assert.Equal(t, 1, world.Count(entity.KindCreature))
	assert.Equal(t, 9, fs.Regions[2].BonusThreat)
}

func TestUniqueSpawnerCentroidTaken(t *testing.T) {
	content := goblinContent()
	content.Creatures["goblin_king"] = catalog.CreatureTemplate{Threat: 9, Unique: true}
	content.Floors[0].Uniques = []string{"goblin_king"}

	fs, world := newTestState(t, buildCatalog(t, content), scenarioGrid(t), 1, 1)
	centroid := fs.Regions[2].Region.Centroid
	fs.Occupied.Mark(centroid)

	UniqueMonsterSpawner{}.Spawn(fs)
	require.Equal(t, 1, world.Count(entity.KindCreature))
	pos := world.Entities()[0].Pos
	assert.NotEqual(t, centroid, pos)
	d := pos.Sub(centroid)
	assert.Equal(t, 1, abs(d.X)+abs(d.Y), "nearest free tile by Manhattan distance")
}

func TestOutOfDepthSpawner(t *testing.T) {
	content := goblinContent()
	content.Creatures["ogre"] = catalog.CreatureTemplate{Name: "Ogre", Threat: 8}
	content.Creatures["troll"] = catalog.CreatureTemplate{Name: "Troll", Threat: 12}
	content.Themes["giants"] = catalog.FactionTheme{Creatures: []string{"ogre", "troll", "goblin"}}
	content.Floors[0].OutOfDepthChance = 1
	content.Floors = append(content.Floors, catalog.FloorSpawnConfig{
		Depth:  3,
		Themes: map[string]float64{"giants": 1},
	})
	cat := buildCatalog(t, content)

	for seed := int64(0); seed < 10; seed++ {
		fs, world := newTestState(t, cat, scenarioGrid(t), 1, seed)
		OutOfDepthSpawner{}.Spawn(fs, rand.New(rand.NewSource(seed)))

		// Above the goblinoid ceiling of 3 are ogre and troll; the top third
		// of two candidates is the troll alone.
		require.Equal(t, "troll", fs.Summary.OutOfDepth)
		require.Equal(t, 1, world.Count(entity.KindCreature))
		// Middle region by entrance distance.
		assert.Equal(t, 12, fs.Regions[1].BonusThreat)
	}
}

func TestOutOfDepthNeverWhenChanceZero(t *testing.T) {
	fs, world := newTestState(t, buildCatalog(t, goblinContent()), scenarioGrid(t), 1, 1)
	fs.Config.OutOfDepthChance = 0
	OutOfDepthSpawner{}.Spawn(fs, rand.New(rand.NewSource(1)))
	assert.Empty(t, fs.Summary.OutOfDepth)
	assert.Zero(t, world.Count(entity.KindCreature))
}
