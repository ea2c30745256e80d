package populate

import (
	"math"
	"math/rand"
	"sort"

	"github.com/lawnchairsociety/floorpop/internal/region"
)

const (
	smallRegionArea   = 16 // regions below this get half weight
	minimumBudgetArea = 9  // regions at least this big always get 1 budget
	minRegionWeight   = 0.05
)

var tagWeight = map[string]float64{
	region.TagBossRoom:     1.0,
	region.TagTreasureRoom: 0.5,
	region.TagEntrance:     -0.5,
}

var tagDanger = map[string]float64{
	region.TagBossRoom:     0.5,
	region.TagTreasureRoom: 0.2,
	region.TagEntrance:     -0.5,
}

// BudgetAllocator rolls the floor threat budget and splits it across regions.
type BudgetAllocator struct{}

// Allocate rolls the power budget and distributes it proportionally to
// area × weight. The sum of allocations always equals the rolled total.
func (BudgetAllocator) Allocate(fs *FloorState, r *rand.Rand) int {
	total := fs.Config.PowerBudget.Roll(r)
	fs.Summary.PowerBudget = total

	shares := make([]float64, len(fs.Order))
	areas := make([]int, len(fs.Order))
	sum := 0.0
	maxDist := maxAverageDistance(fs)
	for i, id := range fs.Order {
		st := fs.Regions[id]
		areas[i] = st.Region.Area()
		shares[i] = float64(areas[i]) * RegionWeight(st, fs.AverageDistance(id), maxDist)
		sum += shares[i]
	}

	alloc := distribute(total, shares, sum, areas)
	for i, id := range fs.Order {
		fs.Regions[id].Allocate(alloc[i])
	}
	return total
}

// RegionWeight computes the danger weight of a region from its normalized
// entrance distance, connectivity, tag and size.
func RegionWeight(st *RegionSpawnData, avgDist, maxDist float64) float64 {
	w := 1.0 + 0.3*normalize(avgDist, maxDist)

	switch n := len(st.Neighbors); {
	case n <= 1:
		w += 0.2
	case n >= 4:
		w -= 0.1
	}

	w += tagWeight[st.Region.Tag]
	if st.Region.Area() < smallRegionArea {
		w *= 0.5
	}
	return math.Max(w, minRegionWeight)
}

// distribute floors each proportional share, guarantees 1 to regions of at
// least minimumBudgetArea tiles, then settles the difference with the rolled
// total one unit at a time, largest regions first.
func distribute(total int, shares []float64, sum float64, areas []int) []int {
	alloc := make([]int, len(shares))
	if total <= 0 || len(shares) == 0 {
		return alloc
	}

	allocated := 0
	for i, s := range shares {
		if sum > 0 {
			alloc[i] = int(math.Floor(float64(total) * s / sum))
		}
		if alloc[i] == 0 && areas[i] >= minimumBudgetArea {
			alloc[i] = 1
		}
		allocated += alloc[i]
	}

	largest := make([]int, len(shares))
	for i := range largest {
		largest[i] = i
	}
	sort.SliceStable(largest, func(a, b int) bool { return areas[largest[a]] > areas[largest[b]] })

	remainder := total - allocated
	for remainder > 0 {
		for _, i := range largest {
			if remainder == 0 {
				break
			}
			alloc[i]++
			remainder--
		}
	}

	// Minimum grants can overshoot; take units back from the largest regions,
	// sparing the minimums while possible.
	for keep := 1; remainder < 0 && keep >= 0; keep-- {
		for progressed := true; remainder < 0 && progressed; {
			progressed = false
			for _, i := range largest {
				if remainder == 0 {
					break
				}
				if alloc[i] > keep {
					alloc[i]--
					remainder++
					progressed = true
				}
			}
		}
	}
	return alloc
}

// IsolationDanger is the danger anchor for a region's connectivity: 1.2 for
// dead ends, 0.9 for hubs with four or more neighbours, 1.0 otherwise.
func IsolationDanger(neighbors int) float64 {
	switch {
	case neighbors <= 1:
		return 1.2
	case neighbors >= 4:
		return 0.9
	}
	return 1.0
}

// CalculateDangerLevels sets a continuous danger level in [0.5, 2.0] on every
// region. A region halfway out from the entrance with no tag sits exactly on
// its isolation anchor; distance moves it by up to 0.5 either way.
func CalculateDangerLevels(fs *FloorState) {
	maxDist := maxAverageDistance(fs)
	for _, id := range fs.Order {
		st := fs.Regions[id]
		danger := IsolationDanger(len(st.Neighbors)) +
			normalize(fs.AverageDistance(id), maxDist) - 0.5 +
			tagDanger[st.Region.Tag]

		st.DangerLevel = math.Min(2.0, math.Max(0.5, danger))
	}
}

func maxAverageDistance(fs *FloorState) float64 {
	m := 0.0
	for _, id := range fs.Order {
		m = math.Max(m, fs.AverageDistance(id))
	}
	return m
}

func normalize(v, maxV float64) float64 {
	if maxV <= 0 {
		return 0
	}
	return v / maxV
}
