package ports

import (
	"context"

	"atlas/internal/domain"
)

// LeaderboardEntry is a single row of the per-context win table.
type LeaderboardEntry struct {
	PlayerID string
	Wins     int
}

// LeaderboardPort records game outcomes per chat context.
type LeaderboardPort interface {
	// RecordWin increments the win count for a player in a context.
	RecordWin(ctx context.Context, contextID, playerID string) error

	// TopWinners returns the best players for a context, highest wins first.
	TopWinners(ctx context.Context, contextID string, limit int) ([]LeaderboardEntry, error)

	// ResetLeaderboard clears the win table for a context.
	ResetLeaderboard(ctx context.Context, contextID string) error
}

// Suggestion is a place name proposed by a player for corpus review.
type Suggestion struct {
	ID          string
	Name        string
	SuggestedBy string
}

// SuggestionPort queues unknown place names for review and promotes approved
// ones into the corpus.
type SuggestionPort interface {
	// AddSuggestion queues a place name; duplicate pending names are dropped.
	AddSuggestion(ctx context.Context, name, suggestedBy string) error

	// ListSuggestions returns pending suggestions, oldest first.
	ListSuggestions(ctx context.Context, limit int) ([]Suggestion, error)

	// ApproveSuggestion inserts the suggested place into the corpus and
	// removes it from the queue.
	ApproveSuggestion(ctx context.Context, id string) error

	// RejectSuggestion discards a pending suggestion.
	RejectSuggestion(ctx context.Context, id string) error
}

// SnapshotPort persists session snapshots for crash recovery. The engine only
// produces and consumes snapshots; storage format is the store's concern.
type SnapshotPort interface {
	SaveSnapshot(ctx context.Context, snap domain.Snapshot) error
	LoadSnapshots(ctx context.Context) ([]domain.Snapshot, error)
	DeleteSnapshot(ctx context.Context, contextID string) error
}
