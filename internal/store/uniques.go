package store

import "fmt"

// MarkUniqueSpawned records that a unique creature appeared in a run.
// Marking the same creature twice is not an error.
func (s *Store) MarkUniqueSpawned(runID, creatureID string) error {
	_, err := s.db.Exec(s.qb.Build(`
		INSERT INTO unique_spawns (run_id, creature_id, spawned_at)
		VALUES (?, ?, ?)
		ON CONFLICT (run_id, creature_id) DO NOTHING
	`), runID, creatureID, s.clock.Now().UTC())
	if err != nil && !s.dialect.IsDuplicateKeyError(err) {
		return fmt.Errorf("mark unique %s in run %s: %w", creatureID, runID, err)
	}
	return nil
}

// SpawnedUniques returns the unique creature ids recorded for a run, sorted.
func (s *Store) SpawnedUniques(runID string) ([]string, error) {
	rows, err := s.db.Query(s.qb.Build(`
		SELECT creature_id FROM unique_spawns
		WHERE run_id = ?
		ORDER BY creature_id ASC
	`), runID)
	if err != nil {
		return nil, fmt.Errorf("load uniques for run %s: %w", runID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ResetRun forgets every unique recorded for a run.
func (s *Store) ResetRun(runID string) error {
	if _, err := s.db.Exec(s.qb.Build(`DELETE FROM unique_spawns WHERE run_id = ?`), runID); err != nil {
		return fmt.Errorf("reset run %s: %w", runID, err)
	}
	return nil
}
