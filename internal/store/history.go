package store

import (
	"fmt"
	"time"

	"github.com/lawnchairsociety/floorpop/internal/logger"
	"github.com/lawnchairsociety/floorpop/internal/populate"
)

// FloorRecord is one populated floor of a run.
type FloorRecord struct {
	RunID      string
	Depth      int
	Seed       int64
	Summary    string // JSON-encoded populate.Summary
	RecordedAt time.Time
}

// RecordFloor stores a floor summary, replacing any earlier record for the
// same run and depth.
func (s *Store) RecordFloor(runID string, depth int, seed int64, summaryJSON []byte) error {
	_, err := s.db.Exec(s.qb.Build(`
		INSERT INTO floor_history (run_id, depth, seed, summary, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (run_id, depth) DO UPDATE SET
			seed = excluded.seed,
			summary = excluded.summary,
			recorded_at = excluded.recorded_at
	`), runID, depth, seed, string(summaryJSON), s.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("record floor %d of run %s: %w", depth, runID, err)
	}
	return nil
}

// FloorHistory returns a run's floors ordered by depth.
func (s *Store) FloorHistory(runID string) ([]FloorRecord, error) {
	rows, err := s.db.Query(s.qb.Build(`
		SELECT run_id, depth, seed, summary, recorded_at
		FROM floor_history
		WHERE run_id = ?
		ORDER BY depth ASC
	`), runID)
	if err != nil {
		return nil, fmt.Errorf("load history for run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []FloorRecord
	for rows.Next() {
		var rec FloorRecord
		if err := rows.Scan(&rec.RunID, &rec.Depth, &rec.Seed, &rec.Summary, &rec.RecordedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// HistoryRecorder is a populate.Observer that writes every summary to the
// floor history.
type HistoryRecorder struct {
	Store *Store
}

// FloorPopulated records the summary. Failures are logged, not returned.
func (h HistoryRecorder) FloorPopulated(s *populate.Summary) {
	if s.RunID == "" {
		logger.Debug("Skipping history for floor without run id", "depth", s.Depth)
		return
	}
	data, err := s.JSON()
	if err != nil {
		logger.Warning("Failed to encode floor summary", "depth", s.Depth, "error", err)
		return
	}
	if err := h.Store.RecordFloor(s.RunID, s.Depth, s.Seed, data); err != nil {
		logger.Warning("Failed to record floor", "run", s.RunID, "depth", s.Depth, "error", err)
	}
}
