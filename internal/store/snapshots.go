package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"atlas/internal/domain"
)

// SaveSnapshot upserts the session snapshot for its chat context.
func (s *SQLStore) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snap.ContextID, err)
	}
	q := fmt.Sprintf(`
		INSERT INTO snapshots (context_id, payload, updated_at) VALUES (%s, %s, %s)
		ON CONFLICT (context_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		s.bind(1), s.bind(2), s.bind(3),
	)
	if _, err := s.db.ExecContext(ctx, q, snap.ContextID, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.ContextID, err)
	}
	return nil
}

// LoadSnapshots returns every persisted session snapshot. Rows that no longer
// unmarshal are skipped rather than blocking a restart.
func (s *SQLStore) LoadSnapshots(ctx context.Context) ([]domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM snapshots")
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.Snapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		var snap domain.Snapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			continue
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}

// DeleteSnapshot removes the snapshot for a finished session.
func (s *SQLStore) DeleteSnapshot(ctx context.Context, contextID string) error {
	q := fmt.Sprintf("DELETE FROM snapshots WHERE context_id = %s", s.bind(1))
	if _, err := s.db.ExecContext(ctx, q, contextID); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", contextID, err)
	}
	return nil
}
