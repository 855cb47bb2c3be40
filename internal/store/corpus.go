package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"atlas/internal/geo"
)

// ErrInvalidPlaceName is returned when a candidate place normalizes to the
// empty string.
var ErrInvalidPlaceName = errors.New("store: place name has no letters")

// CorpusNames returns the display spellings of every place in the corpus,
// ordered by their normalized form.
func (s *SQLStore) CorpusNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT display FROM geography ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query corpus: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var display string
		if err := rows.Scan(&display); err != nil {
			return nil, fmt.Errorf("scan corpus row: %w", err)
		}
		names = append(names, display)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus: %w", err)
	}
	return names, nil
}

// CountPlaces returns the corpus size.
func (s *SQLStore) CountPlaces(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM geography").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count corpus: %w", err)
	}
	return n, nil
}

// AddPlace inserts one place. The first spelling of a normalized name wins;
// inserting the same place again is a no-op.
func (s *SQLStore) AddPlace(ctx context.Context, display string) error {
	display = strings.TrimSpace(display)
	normalized := geo.Normalize(display)
	if normalized == "" {
		return ErrInvalidPlaceName
	}
	q := fmt.Sprintf(
		"INSERT INTO geography (name, display, added_at) VALUES (%s, %s, %s) ON CONFLICT (name) DO NOTHING",
		s.bind(1), s.bind(2), s.bind(3),
	)
	if _, err := s.db.ExecContext(ctx, q, normalized, display, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert place %q: %w", display, err)
	}
	return nil
}

// SeedCorpus bulk-inserts places inside one transaction, skipping entries
// that normalize to nothing or collide with existing names. It returns the
// number of rows actually added.
func (s *SQLStore) SeedCorpus(ctx context.Context, names []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed tx: %w", err)
	}
	q := fmt.Sprintf(
		"INSERT INTO geography (name, display, added_at) VALUES (%s, %s, %s) ON CONFLICT (name) DO NOTHING",
		s.bind(1), s.bind(2), s.bind(3),
	)
	now := time.Now().UTC()
	added := 0
	for _, display := range names {
		display = strings.TrimSpace(display)
		normalized := geo.Normalize(display)
		if normalized == "" {
			continue
		}
		res, err := tx.ExecContext(ctx, q, normalized, display, now)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("seed place %q: %w", display, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed tx: %w", err)
	}
	return added, nil
}

// HasPlace reports whether the normalized form of name is in the corpus.
func (s *SQLStore) HasPlace(ctx context.Context, name string) (bool, error) {
	normalized := geo.Normalize(name)
	if normalized == "" {
		return false, nil
	}
	q := fmt.Sprintf("SELECT 1 FROM geography WHERE name = %s", s.bind(1))
	var one int
	err := s.db.QueryRowContext(ctx, q, normalized).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup place %q: %w", name, err)
	}
	return true, nil
}
