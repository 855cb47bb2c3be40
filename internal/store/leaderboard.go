package store

import (
	"context"
	"fmt"

	"atlas/internal/ports"
)

// RecordWin increments the winner's tally for the chat context.
func (s *SQLStore) RecordWin(ctx context.Context, contextID, playerID string) error {
	q := fmt.Sprintf(`
		INSERT INTO leaderboard (context_id, player_id, wins) VALUES (%s, %s, 1)
		ON CONFLICT (context_id, player_id) DO UPDATE SET wins = leaderboard.wins + 1`,
		s.bind(1), s.bind(2),
	)
	if _, err := s.db.ExecContext(ctx, q, contextID, playerID); err != nil {
		return fmt.Errorf("record win for %s: %w", playerID, err)
	}
	return nil
}

// TopWinners returns the context's best players, highest wins first. Ties
// break on player id so the ordering is stable.
func (s *SQLStore) TopWinners(ctx context.Context, contextID string, limit int) ([]ports.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	q := fmt.Sprintf(
		"SELECT player_id, wins FROM leaderboard WHERE context_id = %s ORDER BY wins DESC, player_id LIMIT %s",
		s.bind(1), s.bind(2),
	)
	rows, err := s.db.QueryContext(ctx, q, contextID, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []ports.LeaderboardEntry
	for rows.Next() {
		var e ports.LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.Wins); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return entries, nil
}

// ResetLeaderboard clears the win table for one context.
func (s *SQLStore) ResetLeaderboard(ctx context.Context, contextID string) error {
	q := fmt.Sprintf("DELETE FROM leaderboard WHERE context_id = %s", s.bind(1))
	if _, err := s.db.ExecContext(ctx, q, contextID); err != nil {
		return fmt.Errorf("reset leaderboard: %w", err)
	}
	return nil
}
