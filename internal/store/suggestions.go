package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"atlas/internal/geo"
	"atlas/internal/ports"
)

// ErrSuggestionNotFound is returned when approving or rejecting an unknown
// suggestion id.
var ErrSuggestionNotFound = errors.New("store: suggestion not found")

// AddSuggestion queues an unknown place name for review. Names already in the
// corpus or already pending are dropped silently.
func (s *SQLStore) AddSuggestion(ctx context.Context, name, suggestedBy string) error {
	name = strings.TrimSpace(name)
	if geo.Normalize(name) == "" {
		return ErrInvalidPlaceName
	}
	known, err := s.HasPlace(ctx, name)
	if err != nil {
		return err
	}
	if known {
		return nil
	}
	q := fmt.Sprintf(`
		INSERT INTO suggestions (id, name, suggested_by, created_at) VALUES (%s, %s, %s, %s)
		ON CONFLICT (name) DO NOTHING`,
		s.bind(1), s.bind(2), s.bind(3), s.bind(4),
	)
	_, err = s.db.ExecContext(ctx, q, uuid.NewString(), name, suggestedBy, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert suggestion %q: %w", name, err)
	}
	return nil
}

// ListSuggestions returns pending suggestions, oldest first.
func (s *SQLStore) ListSuggestions(ctx context.Context, limit int) ([]ports.Suggestion, error) {
	if limit <= 0 {
		limit = 20
	}
	q := fmt.Sprintf(
		"SELECT id, name, suggested_by FROM suggestions ORDER BY created_at, id LIMIT %s",
		s.bind(1),
	)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	var out []ports.Suggestion
	for rows.Next() {
		var sg ports.Suggestion
		if err := rows.Scan(&sg.ID, &sg.Name, &sg.SuggestedBy); err != nil {
			return nil, fmt.Errorf("scan suggestion row: %w", err)
		}
		out = append(out, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}
	return out, nil
}

// ApproveSuggestion promotes a pending suggestion into the corpus and removes
// it from the queue.
func (s *SQLStore) ApproveSuggestion(ctx context.Context, id string) error {
	name, err := s.takeSuggestion(ctx, id)
	if err != nil {
		return err
	}
	return s.AddPlace(ctx, name)
}

// RejectSuggestion discards a pending suggestion.
func (s *SQLStore) RejectSuggestion(ctx context.Context, id string) error {
	_, err := s.takeSuggestion(ctx, id)
	return err
}

func (s *SQLStore) takeSuggestion(ctx context.Context, id string) (string, error) {
	q := fmt.Sprintf("SELECT name FROM suggestions WHERE id = %s", s.bind(1))
	var name string
	err := s.db.QueryRowContext(ctx, q, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSuggestionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup suggestion %s: %w", id, err)
	}
	del := fmt.Sprintf("DELETE FROM suggestions WHERE id = %s", s.bind(1))
	if _, err := s.db.ExecContext(ctx, del, id); err != nil {
		return "", fmt.Errorf("delete suggestion %s: %w", id, err)
	}
	return name, nil
}
