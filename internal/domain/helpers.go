package domain

// LabelPayload produces the values needed for match label advertisement.
type LabelPayload struct {
	Open    bool   `json:"open"`
	Game    string `json:"game"`
	Phase   string `json:"phase"`
	Players int    `json:"players"`
}

// ComputeLabel derives the advertised label from session state.
func ComputeLabel(s *Session) LabelPayload {
	return LabelPayload{
		Open:    s.Phase == PhaseWaiting,
		Game:    "atlas",
		Phase:   string(s.Phase),
		Players: len(s.Players),
	}
}

// Snapshot is a serializable copy of session state, used for status output
// and crash-recovery persistence.
type Snapshot struct {
	ContextID      string           `json:"context_id"`
	Phase          Phase            `json:"phase"`
	Players        []PlayerSnapshot `json:"players"`
	TurnIndex      int              `json:"turn_index"`
	RequiredLetter string           `json:"required_letter,omitempty"`
	UsedNames      []string         `json:"used_names,omitempty"`
	WinnerID       string           `json:"winner_id,omitempty"`
	MaxStrikes     int              `json:"max_strikes"`
}

// PlayerSnapshot mirrors Player for serialization.
type PlayerSnapshot struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Strikes     int    `json:"strikes"`
	Eliminated  bool   `json:"eliminated"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// TakeSnapshot copies the session into its serializable form.
func (s *Session) TakeSnapshot() Snapshot {
	snap := Snapshot{
		ContextID:  s.ContextID,
		Phase:      s.Phase,
		TurnIndex:  s.TurnIndex,
		WinnerID:   s.WinnerID,
		MaxStrikes: s.MaxStrikes,
	}
	if s.RequiredLetter != 0 {
		snap.RequiredLetter = string(s.RequiredLetter)
	}
	snap.UsedNames = append([]string(nil), s.UsedNames...)
	for _, p := range s.Players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Strikes:     p.Strikes,
			Eliminated:  p.Eliminated,
			IsBot:       p.IsBot,
		})
	}
	return snap
}

// RestoreSession rebuilds a session from a snapshot.
func RestoreSession(snap Snapshot) *Session {
	s := NewSession(snap.ContextID, snap.MaxStrikes)
	s.Phase = snap.Phase
	s.TurnIndex = snap.TurnIndex
	s.WinnerID = snap.WinnerID
	if snap.RequiredLetter != "" {
		s.RequiredLetter = []rune(snap.RequiredLetter)[0]
	}
	for _, name := range snap.UsedNames {
		s.MarkUsed(name)
	}
	for _, p := range snap.Players {
		s.Players = append(s.Players, &Player{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Strikes:     p.Strikes,
			Eliminated:  p.Eliminated,
			IsBot:       p.IsBot,
		})
	}
	return s
}
