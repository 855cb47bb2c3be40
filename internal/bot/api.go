package bot

import (
	"atlas/internal/domain"
	"atlas/internal/geo"
)

// maxScan caps how many candidate names a strategy examines for a letter.
// Letters like 's' hold hundreds of thousands of names; scanning them all
// every bot turn would stall the session loop.
const maxScan = 512

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	// PickName chooses an unused name matching the session's required letter.
	// Returns false when the strategy finds no playable name, which costs the
	// bot its turn (timeout strike).
	PickName(sess *domain.Session, index *geo.Index) (string, bool)
}
