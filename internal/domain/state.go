package domain

// Phase represents the lifecycle stage of an Atlas session.
type Phase string

const (
	// PhaseWaiting is the pre-game state where players can join the lobby.
	PhaseWaiting Phase = "waiting"
	// PhaseActive is the state where turns are in progress.
	PhaseActive Phase = "active"
	// PhaseFinished is the state after the game concludes.
	PhaseFinished Phase = "finished"
)

// Player holds state for a participant in the session.
type Player struct {
	ID          string
	DisplayName string
	Strikes     int
	Eliminated  bool
	IsBot       bool
}

// Session holds authoritative state for a single Atlas game tied to one chat context.
//
// Players keeps join order and doubles as the circular turn order; eliminated
// players stay in the slice (their strikes remain visible in status output) but
// are skipped when the turn advances.
type Session struct {
	ContextID string
	Phase     Phase

	Players   []*Player
	TurnIndex int

	// RequiredLetter is the letter the next accepted name must start with.
	// Zero means unconstrained: the opening move accepts any valid name.
	RequiredLetter rune

	// UsedNames records accepted names (normalized) in insertion order.
	UsedNames []string
	used      map[string]bool

	WinnerID   string
	MaxStrikes int
}

// NewSession creates a waiting session for the given chat context.
func NewSession(contextID string, maxStrikes int) *Session {
	return &Session{
		ContextID:  contextID,
		Phase:      PhaseWaiting,
		used:       make(map[string]bool),
		MaxStrikes: maxStrikes,
	}
}

// FindPlayer returns the player with the given id, or nil.
func (s *Session) FindPlayer(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil before the game starts.
func (s *Session) CurrentPlayer() *Player {
	if len(s.Players) == 0 || s.TurnIndex < 0 || s.TurnIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.TurnIndex]
}

// ActivePlayers returns the non-eliminated players in turn order.
func (s *Session) ActivePlayers() []*Player {
	var active []*Player
	for _, p := range s.Players {
		if !p.Eliminated {
			active = append(active, p)
		}
	}
	return active
}

// ActiveCount returns the number of non-eliminated players.
func (s *Session) ActiveCount() int {
	n := 0
	for _, p := range s.Players {
		if !p.Eliminated {
			n++
		}
	}
	return n
}

// AdvanceTurn moves TurnIndex to the next non-eliminated player. If no player
// remains active the index is left unchanged.
func (s *Session) AdvanceTurn() {
	if s.ActiveCount() == 0 {
		return
	}
	for {
		s.TurnIndex = (s.TurnIndex + 1) % len(s.Players)
		if !s.Players[s.TurnIndex].Eliminated {
			return
		}
	}
}

// HasUsed reports whether the normalized name was already accepted this session.
func (s *Session) HasUsed(normalized string) bool {
	return s.used[normalized]
}

// MarkUsed records a normalized name as consumed for the rest of the session.
func (s *Session) MarkUsed(normalized string) {
	if s.used[normalized] {
		return
	}
	s.used[normalized] = true
	s.UsedNames = append(s.UsedNames, normalized)
}
