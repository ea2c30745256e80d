package populate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/floorpop/internal/dice"
	"github.com/lawnchairsociety/floorpop/internal/region"
)

func TestConsumeBudget(t *testing.T) {
	st := &RegionSpawnData{}
	st.Allocate(10)

	assert.True(t, st.ConsumeBudget(4))
	assert.Equal(t, 6, st.RemainingBudget)
	assert.Equal(t, 4, st.SpawnedThreat)

	assert.False(t, st.ConsumeBudget(7), "cost above remaining must be rejected")
	assert.Equal(t, 6, st.RemainingBudget)
	assert.Equal(t, 4, st.SpawnedThreat)

	assert.False(t, st.ConsumeBudget(-1))
	assert.Equal(t, 6, st.RemainingBudget)

	assert.True(t, st.ConsumeBudget(6))
	assert.Equal(t, 0, st.RemainingBudget)
	assert.True(t, st.ConsumeBudget(0))
	assert.False(t, st.ConsumeBudget(1))
	assert.Equal(t, st.AllocatedBudget, st.RemainingBudget+st.SpawnedThreat)
}

func TestAllocateKeepsSpawnedThreat(t *testing.T) {
	st := &RegionSpawnData{}
	st.Allocate(5)
	require.True(t, st.ConsumeBudget(3))

	st.Allocate(8)
	assert.Equal(t, 5, st.RemainingBudget)
	assert.Equal(t, st.AllocatedBudget, st.RemainingBudget+st.SpawnedThreat)
}

func TestDistributeConservesTotal(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := 1 + r.Intn(8)
		shares := make([]float64, n)
		areas := make([]int, n)
		sum := 0.0
		for j := range shares {
			areas[j] = 1 + r.Intn(80)
			shares[j] = float64(areas[j]) * (0.05 + r.Float64()*2)
			sum += shares[j]
		}
		total := r.Intn(60)

		alloc := distribute(total, shares, sum, areas)
		got := 0
		for _, a := range alloc {
			assert.GreaterOrEqual(t, a, 0)
			got += a
		}
		assert.Equal(t, total, got, "shares=%v areas=%v", shares, areas)
	}
}

func TestDistributeMinimumForLargeRegions(t *testing.T) {
	// The big region dominates, but the 9-tile region still gets 1.
	alloc := distribute(10, []float64{1000, 4.5}, 1004.5, []int{100, 9})
	assert.Equal(t, []int{9, 1}, alloc)

	// Regions under 9 tiles can end up empty.
	alloc = distribute(10, []float64{1000, 4}, 1004, []int{100, 8})
	assert.Equal(t, []int{10, 0}, alloc)
}

func TestDistributeRemainderGoesToLargest(t *testing.T) {
	// Three equal shares of 10: 3 each, remainder 1 to the largest area.
	alloc := distribute(10, []float64{1, 1, 1}, 3, []int{20, 40, 30})
	assert.Equal(t, []int{3, 4, 3}, alloc)
}

func TestRegionWeight(t *testing.T) {
	g := stripeGrid(t, 10, []int{0, 1, 1, 1, 2, 2, 2, 2, 2, 2}, map[int]region.RegionMeta{
		2: {Tag: region.TagBossRoom},
	})
	regions := g.Regions()

	small := &RegionSpawnData{Region: regions[0], Neighbors: []int{1}}
	middle := &RegionSpawnData{Region: regions[1], Neighbors: []int{0, 2}}
	boss := &RegionSpawnData{Region: regions[2], Neighbors: []int{1}}

	assert.InDelta(t, (1.0+0.2)*0.5, RegionWeight(small, 0, 10), 1e-9)
	assert.InDelta(t, 1.15, RegionWeight(middle, 5, 10), 1e-9)
	assert.InDelta(t, 1.0+0.3+0.2+1.0, RegionWeight(boss, 10, 10), 1e-9)

	hub := &RegionSpawnData{Region: regions[1], Neighbors: []int{0, 2, 3, 4}}
	assert.InDelta(t, 0.9, RegionWeight(hub, 0, 10), 1e-9)
}

func TestBudgetAllocatorScenario(t *testing.T) {
	fs, _ := newTestState(t, buildCatalog(t, goblinContent()), scenarioGrid(t), 1, 1)

	total := BudgetAllocator{}.Allocate(fs, rand.New(rand.NewSource(1)))
	require.Equal(t, 20, total)
	assert.Equal(t, 20, fs.Summary.PowerBudget)

	// Weighted areas are roughly 6.6 / 35.3 / 90: floors 1/5/13 plus the
	// remainder unit for the largest region.
	assert.Equal(t, 1, fs.Regions[0].AllocatedBudget)
	assert.Equal(t, 5, fs.Regions[1].AllocatedBudget)
	assert.Equal(t, 14, fs.Regions[2].AllocatedBudget)
}

func TestBudgetConservationAcrossSeeds(t *testing.T) {
	content := goblinContent()
	for seed := int64(0); seed < 40; seed++ {
		r := rand.New(rand.NewSource(seed))
		rows := make([]int, 4+r.Intn(10))
		id := 0
		for y := range rows {
			if y > 0 && r.Intn(3) == 0 {
				id++
			}
			rows[y] = id
		}
		content.Floors[0].PowerBudget = dice.Flat(r.Intn(80))

		fs, _ := newTestState(t, buildCatalog(t, content), stripeGrid(t, 6+r.Intn(6), rows, nil), 1, seed)
		total := BudgetAllocator{}.Allocate(fs, r)

		sum := 0
		for _, id := range fs.Order {
			st := fs.Regions[id]
			assert.GreaterOrEqual(t, st.RemainingBudget, 0)
			sum += st.AllocatedBudget
		}
		assert.Equal(t, total, sum, "seed %d", seed)
	}
}

func TestDangerLevelsBounded(t *testing.T) {
	g := stripeGrid(t, 10, []int{0, 1, 1, 2, 2, 3, 3, 3}, map[int]region.RegionMeta{
		0: {Tag: region.TagEntrance},
		3: {Tag: region.TagBossRoom},
	})
	fs, _ := newTestState(t, buildCatalog(t, goblinContent()), g, 1, 1)
	CalculateDangerLevels(fs)

	for _, id := range fs.Order {
		d := fs.Regions[id].DangerLevel
		assert.GreaterOrEqual(t, d, 0.5)
		assert.LessOrEqual(t, d, 2.0)
	}
	// Entrance dead end: 1.2 + 4.5/10.5 - 0.5 - 0.5.
	assert.InDelta(t, 0.2+4.5/10.5, fs.Regions[0].DangerLevel, 1e-9)
	assert.Equal(t, 2.0, fs.Regions[3].DangerLevel)
	assert.Less(t, fs.Regions[1].DangerLevel, fs.Regions[2].DangerLevel)
}

func TestIsolationDanger(t *testing.T) {
	assert.Equal(t, 1.2, IsolationDanger(0))
	assert.Equal(t, 1.2, IsolationDanger(1))
	assert.Equal(t, 1.0, IsolationDanger(2))
	assert.Equal(t, 1.0, IsolationDanger(3))
	assert.Equal(t, 0.9, IsolationDanger(4))
	assert.Equal(t, 0.9, IsolationDanger(6))
}

func TestDangerLevelFollowsIsolationAnchor(t *testing.T) {
	// Five stacked stripes: the ends are dead ends, the rest have two neighbours.
	g := stripeGrid(t, 4, []int{0, 1, 2, 3, 4}, nil)
	fs, _ := newTestState(t, buildCatalog(t, goblinContent()), g, 1, 1)
	CalculateDangerLevels(fs)

	norm := fs.AverageDistance(2) / maxAverageDistance(fs)
	assert.InDelta(t, 1.0+norm-0.5, fs.Regions[2].DangerLevel, 1e-9)
	// Farthest dead end: 1.2 + 1 - 0.5.
	assert.InDelta(t, 1.7, fs.Regions[4].DangerLevel, 1e-9)
}
