package populate

import (
	"fmt"
	"sort"
	"sync"

	"codeberg.org/anaseto/gruid"
	"codeberg.org/anaseto/gruid/paths"
)

// UniqueStore persists which unique creatures a run has spawned.
type UniqueStore interface {
	MarkUniqueSpawned(runID, creatureID string) error
	SpawnedUniques(runID string) ([]string, error)
	ResetRun(runID string) error
}

// UniqueTracker is the run-scoped set of unique creatures already spawned.
// The store is optional; without one the set lives in memory only.
type UniqueTracker struct {
	store   UniqueStore
	mu      sync.RWMutex
	runID   string
	spawned map[string]bool
}

// NewUniqueTracker creates a tracker for runID and loads what the store
// already recorded for it.
func NewUniqueTracker(store UniqueStore, runID string) (*UniqueTracker, error) {
	ut := &UniqueTracker{
		store:   store,
		runID:   runID,
		spawned: make(map[string]bool),
	}

	if err := ut.loadState(); err != nil {
		return nil, err
	}

	return ut, nil
}

// loadState fills the cache from the store.
func (ut *UniqueTracker) loadState() error {
	if ut.store == nil {
		return nil
	}
	ids, err := ut.store.SpawnedUniques(ut.runID)
	if err != nil {
		return fmt.Errorf("failed to load spawned uniques for run %s: %w", ut.runID, err)
	}
	for _, id := range ids {
		ut.spawned[id] = true
	}
	return nil
}

// RunID returns the run the tracker currently records.
func (ut *UniqueTracker) RunID() string {
	ut.mu.RLock()
	defer ut.mu.RUnlock()
	return ut.runID
}

// HasSpawned returns true if the creature already appeared in this run.
func (ut *UniqueTracker) HasSpawned(creatureID string) bool {
	ut.mu.RLock()
	defer ut.mu.RUnlock()
	return ut.spawned[creatureID]
}

// MarkSpawned records a unique spawn. It returns false when the creature was
// already marked.
func (ut *UniqueTracker) MarkSpawned(creatureID string) (bool, error) {
	ut.mu.Lock()
	defer ut.mu.Unlock()

	if ut.spawned[creatureID] {
		return false, nil
	}
	if ut.store != nil {
		if err := ut.store.MarkUniqueSpawned(ut.runID, creatureID); err != nil {
			return false, err
		}
	}
	ut.spawned[creatureID] = true
	return true, nil
}

// Spawned returns the recorded creature ids, sorted.
func (ut *UniqueTracker) Spawned() []string {
	ut.mu.RLock()
	defer ut.mu.RUnlock()

	ids := make([]string, 0, len(ut.spawned))
	for id := range ut.spawned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResetForNewRun clears the set and switches to runID, making every unique
// eligible again.
func (ut *UniqueTracker) ResetForNewRun(runID string) error {
	ut.mu.Lock()
	defer ut.mu.Unlock()

	if ut.store != nil {
		if err := ut.store.ResetRun(runID); err != nil {
			return err
		}
	}
	ut.runID = runID
	ut.spawned = make(map[string]bool)
	return nil
}

// UniqueMonsterSpawner places each of the floor's unique creatures at most
// once per run.
type UniqueMonsterSpawner struct {
	Tracker *UniqueTracker
}

// Spawn places the floor's uniques that the run has not seen yet. Their
// threat is bonus threat outside the region budget.
func (s UniqueMonsterSpawner) Spawn(fs *FloorState) {
	if len(fs.Config.Uniques) == 0 {
		return
	}

	seen := make(map[string]bool, len(fs.Config.Uniques))
	for _, id := range fs.Config.Uniques {
		if seen[id] || (s.Tracker != nil && s.Tracker.HasSpawned(id)) {
			continue
		}
		seen[id] = true
		ct, ok := fs.Catalog.Creature(id)
		if !ok {
			fs.warn("Unknown unique creature", "creature", id)
			continue
		}

		st, pos, ok := uniqueSpot(fs)
		if !ok {
			fs.warn("No free tile for unique creature", "creature", id)
			return
		}
		if _, ok := fs.spawnCreature(ct.ID, pos); !ok {
			continue
		}
		if s.Tracker != nil {
			if _, err := s.Tracker.MarkSpawned(ct.ID); err != nil {
				fs.warn("Failed to record unique spawn", "creature", ct.ID, "error", err.Error())
			}
		}
		st.BonusThreat += ct.Threat
		fs.Summary.Uniques = append(fs.Summary.Uniques, ct.ID)
	}
}

// uniqueSpot picks the largest region among the farthest third by entrance
// distance that still has room, and a tile at or nearest its centroid.
func uniqueSpot(fs *FloorState) (*RegionSpawnData, gruid.Point, bool) {
	ids := append([]int(nil), fs.Order...)
	sort.SliceStable(ids, func(i, j int) bool {
		return fs.AverageDistance(ids[i]) > fs.AverageDistance(ids[j])
	})
	// Reorder the farthest third in place so the largest comes first; the
	// nearer regions stay behind it as fallbacks.
	far := ids[:max(1, (len(ids)+2)/3)]
	sort.SliceStable(far, func(i, j int) bool {
		return fs.Regions[far[i]].Region.Area() > fs.Regions[far[j]].Region.Area()
	})

	for _, id := range ids {
		st := fs.Regions[id]
		if pos, ok := nearestFreeTo(fs, st.Region.Tiles, st.Region.Centroid); ok {
			return st, pos, true
		}
	}
	return nil, gruid.Point{}, false
}

// nearestFreeTo returns the free tile closest to target by Manhattan distance.
func nearestFreeTo(fs *FloorState, tiles []gruid.Point, target gruid.Point) (gruid.Point, bool) {
	if fs.Occupied.IsFree(target) {
		for _, t := range tiles {
			if t == target {
				return t, true
			}
		}
	}
	var best gruid.Point
	bestDist := -1
	for _, t := range fs.Occupied.FreeTiles(tiles) {
		if d := paths.DistanceManhattan(t, target); bestDist < 0 || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best, bestDist >= 0
}
