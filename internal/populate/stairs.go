package populate

import (
	"codeberg.org/anaseto/gruid"
	"github.com/lawnchairsociety/floorpop/internal/region"
)

// StairsSpawner places the floor's single exit as far from the entrance as
// the region graph allows.
type StairsSpawner struct{}

// Place puts the exit (or the objective on a final floor) in the region with
// the highest average entrance distance. It reports whether anything was placed.
func (StairsSpawner) Place(fs *FloorState) bool {
	st := farthestRegion(fs)
	if st == nil {
		fs.warn("No region available for the exit", "depth", fs.Depth)
		return false
	}

	pos, ok := farthestFreeTile(fs, st.Region.Edges)
	if !ok {
		pos, ok = farthestFreeTile(fs, st.Region.Tiles)
	}
	if !ok {
		fs.warn("No free tile for the exit", "region", st.Region.ID)
		return false
	}

	featureID := fs.Config.ExitID
	if fs.Final {
		featureID = fs.Config.ObjectiveID
	}
	if _, ok := fs.spawnFeature(featureID, pos); !ok {
		return false
	}
	fs.Summary.ExitPlaced = true
	fs.Summary.ExitRegion = st.Region.ID
	fs.Summary.ExitFeature = featureID
	return true
}

// farthestRegion returns the region with the highest average entrance
// distance, ignoring the entrance's own region unless it is the only one.
func farthestRegion(fs *FloorState) *RegionSpawnData {
	entranceRegion := fs.Provider.RegionIDAt(fs.Provider.Entrance())

	var best *RegionSpawnData
	bestDist := -1.0
	for _, id := range fs.Order {
		if id == entranceRegion && len(fs.Order) > 1 {
			continue
		}
		if d := fs.AverageDistance(id); d > bestDist {
			best, bestDist = fs.Regions[id], d
		}
	}
	return best
}

// farthestFreeTile returns the unoccupied tile with the greatest entrance
// distance, keeping the first one among ties.
func farthestFreeTile(fs *FloorState, tiles []gruid.Point) (gruid.Point, bool) {
	var best gruid.Point
	bestDist := -1
	for _, t := range fs.Occupied.FreeTiles(tiles) {
		if d := region.Distance(fs.Provider, t); d > bestDist {
			best, bestDist = t, d
		}
	}
	return best, bestDist >= 0
}
