package app

import (
	"strings"

	"atlas/internal/domain"
	"atlas/internal/geo"
)

// Rules captures the per-session game policy.
type Rules struct {
	MaxStrikes        int
	MinPlayers        int
	ForbidDeadLetters bool
}

// Service contains Atlas use-cases operating on domain state. It is stateless
// apart from the shared read-only name index, so a single Service is safe to
// use from every session as long as each session serializes its own calls.
type Service struct {
	index *geo.Index
	rules Rules
}

// NewService constructs a Service over the shared name index.
func NewService(index *geo.Index, rules Rules) *Service {
	if rules.MaxStrikes <= 0 {
		rules.MaxStrikes = DefaultMaxStrikes
	}
	if rules.MinPlayers <= 0 {
		rules.MinPlayers = DefaultMinPlayers
	}
	return &Service{index: index, rules: rules}
}

// Rules returns the effective rules after defaulting.
func (s *Service) Rules() Rules {
	return s.rules
}

// Index exposes the shared read-only name index (for bot strategies and
// status queries).
func (s *Service) Index() *geo.Index {
	return s.index
}

// NewSession creates a waiting session for a chat context.
func (s *Service) NewSession(contextID string) *domain.Session {
	return domain.NewSession(contextID, s.rules.MaxStrikes)
}

// Join adds a player to the waiting lobby.
func (s *Service) Join(sess *domain.Session, playerID, displayName string, isBot bool) ([]Event, error) {
	if sess.Phase == domain.PhaseFinished {
		return nil, ErrSessionFinished
	}
	if sess.Phase != domain.PhaseWaiting {
		return nil, ErrWrongPhase
	}
	if sess.FindPlayer(playerID) != nil {
		return nil, ErrAlreadyJoined
	}
	if displayName == "" {
		displayName = playerID
	}
	sess.Players = append(sess.Players, &domain.Player{
		ID:          playerID,
		DisplayName: displayName,
		IsBot:       isBot,
	})
	return []Event{{
		Kind: EventPlayerJoined,
		Payload: PlayerJoinedPayload{
			PlayerID:    playerID,
			DisplayName: displayName,
			IsBot:       isBot,
			LobbySize:   len(sess.Players),
		},
	}}, nil
}

// Start locks the lobby and begins the game. The opening move accepts any
// valid name, so the required letter starts unconstrained.
func (s *Service) Start(sess *domain.Session) ([]Event, error) {
	if sess.Phase == domain.PhaseFinished {
		return nil, ErrSessionFinished
	}
	if sess.Phase != domain.PhaseWaiting {
		return nil, ErrWrongPhase
	}
	if len(sess.Players) < s.rules.MinPlayers {
		return nil, ErrTooFewPlayers
	}

	sess.Phase = domain.PhaseActive
	sess.TurnIndex = 0
	sess.RequiredLetter = 0

	order := make([]string, 0, len(sess.Players))
	for _, p := range sess.Players {
		order = append(order, p.ID)
	}
	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{TurnOrder: order, FirstPlayerID: order[0]},
	}}
	return append(events, s.turnPrompt(sess)), nil
}

// Submit processes the current player's candidate name. A valid name is
// recorded, sets the next required letter, and passes the turn; an invalid one
// (unknown, wrong letter, or already used) costs a strike. Strikes and
// timeouts never change the required letter: the next player answers the same
// letter with a fresh clock.
func (s *Service) Submit(sess *domain.Session, playerID, raw string) ([]Event, error) {
	if sess.Phase == domain.PhaseFinished {
		return nil, ErrSessionFinished
	}
	if sess.Phase != domain.PhaseActive {
		return nil, ErrWrongPhase
	}
	player := sess.FindPlayer(playerID)
	if player == nil || player.Eliminated {
		return nil, ErrUnknownPlayer
	}
	if current := sess.CurrentPlayer(); current == nil || current.ID != playerID {
		return nil, ErrNotYourTurn
	}

	raw = strings.TrimSpace(raw)
	normalized := geo.Normalize(raw)
	if normalized == "" {
		return nil, ErrEmptySubmission
	}

	if sess.RequiredLetter != 0 && geo.FirstLetter(raw) != sess.RequiredLetter {
		return s.applyStrike(sess, player, raw, ReasonWrongLetter), nil
	}
	if !s.index.Contains(normalized) {
		return s.applyStrike(sess, player, raw, ReasonUnknownName), nil
	}
	if sess.HasUsed(normalized) {
		return s.applyStrike(sess, player, raw, ReasonAlreadyUsed), nil
	}

	terminal := geo.TerminalLetter(raw)
	if s.rules.ForbidDeadLetters {
		blocked := func(n string) bool { return n == normalized || sess.HasUsed(n) }
		if !s.index.HasContinuation(terminal, blocked) {
			return nil, ErrDeadLetter
		}
	}

	sess.MarkUsed(normalized)
	sess.RequiredLetter = terminal
	sess.AdvanceTurn()

	display, ok := s.index.Display(normalized)
	if !ok {
		display = raw
	}
	events := []Event{{
		Kind: EventMoveAccepted,
		Payload: MoveAcceptedPayload{
			PlayerID:       playerID,
			Name:           display,
			NextPlayerID:   sess.CurrentPlayer().ID,
			RequiredLetter: string(terminal),
		},
	}}
	return append(events, s.turnPrompt(sess)), nil
}

// Timeout applies the turn-clock expiry for the current player: one strike,
// no candidate name, same-letter rule.
func (s *Service) Timeout(sess *domain.Session) ([]Event, error) {
	if sess.Phase == domain.PhaseFinished {
		return nil, ErrSessionFinished
	}
	if sess.Phase != domain.PhaseActive {
		return nil, ErrWrongPhase
	}
	player := sess.CurrentPlayer()
	if player == nil {
		return nil, ErrUnknownPlayer
	}
	return s.applyStrike(sess, player, "", ReasonTimeout), nil
}

// Leave removes a player. In the waiting lobby the player simply drops out;
// mid-game the player is eliminated immediately without consuming a strike.
func (s *Service) Leave(sess *domain.Session, playerID string) ([]Event, error) {
	if sess.Phase == domain.PhaseFinished {
		return nil, ErrSessionFinished
	}
	player := sess.FindPlayer(playerID)
	if player == nil {
		return nil, ErrUnknownPlayer
	}

	if sess.Phase == domain.PhaseWaiting {
		for i, p := range sess.Players {
			if p.ID == playerID {
				sess.Players = append(sess.Players[:i], sess.Players[i+1:]...)
				break
			}
		}
		return []Event{{
			Kind:    EventPlayerLeft,
			Payload: PlayerLeftPayload{PlayerID: playerID},
		}}, nil
	}

	if player.Eliminated {
		return nil, ErrUnknownPlayer
	}
	wasCurrent := sess.CurrentPlayer() != nil && sess.CurrentPlayer().ID == playerID
	player.Eliminated = true

	events := []Event{{
		Kind:    EventPlayerLeft,
		Payload: PlayerLeftPayload{PlayerID: playerID, Eliminated: true},
	}}

	if over, ev := s.checkGameOver(sess); over {
		return append(events, ev...), nil
	}
	if wasCurrent {
		sess.AdvanceTurn()
		events = append(events, s.turnPrompt(sess))
	}
	return events, nil
}

// Cancel aborts the session from any live phase.
func (s *Service) Cancel(sess *domain.Session) ([]Event, error) {
	if sess.Phase == domain.PhaseFinished {
		return nil, ErrSessionFinished
	}
	sess.Phase = domain.PhaseFinished
	return []Event{{
		Kind:    EventGameOver,
		Payload: GameOverPayload{Aborted: true},
	}}, nil
}

// applyStrike penalizes the player, eliminates at the strike cap, and either
// ends the game or passes the turn with the required letter unchanged.
func (s *Service) applyStrike(sess *domain.Session, player *domain.Player, name string, reason RejectReason) []Event {
	if player.Strikes < sess.MaxStrikes {
		player.Strikes++
	}

	events := []Event{{
		Kind: EventMoveRejected,
		Payload: MoveRejectedPayload{
			PlayerID: player.ID,
			Name:     name,
			Reason:   reason,
			Strikes:  player.Strikes,
		},
	}}

	if player.Strikes >= sess.MaxStrikes && !player.Eliminated {
		player.Eliminated = true
		events = append(events, Event{
			Kind:    EventPlayerEliminated,
			Payload: PlayerEliminatedPayload{PlayerID: player.ID},
		})
	}

	if over, ev := s.checkGameOver(sess); over {
		return append(events, ev...)
	}

	sess.AdvanceTurn()
	return append(events, s.turnPrompt(sess))
}

// checkGameOver finishes the session when at most one active player remains.
func (s *Service) checkGameOver(sess *domain.Session) (bool, []Event) {
	active := sess.ActivePlayers()
	switch len(active) {
	case 1:
		sess.Phase = domain.PhaseFinished
		sess.WinnerID = active[0].ID
		return true, []Event{{
			Kind:    EventGameOver,
			Payload: GameOverPayload{WinnerID: active[0].ID},
		}}
	case 0:
		sess.Phase = domain.PhaseFinished
		return true, []Event{{
			Kind:    EventGameOver,
			Payload: GameOverPayload{},
		}}
	default:
		return false, nil
	}
}

// Prompt rebuilds the turn prompt for the current player. The session runtime
// uses it to re-announce the turn after restoring an active game.
func (s *Service) Prompt(sess *domain.Session) Event {
	return s.turnPrompt(sess)
}

func (s *Service) turnPrompt(sess *domain.Session) Event {
	letter := ""
	if sess.RequiredLetter != 0 {
		letter = string(sess.RequiredLetter)
	}
	return Event{
		Kind: EventTurnPrompt,
		Payload: TurnPromptPayload{
			PlayerID:       sess.CurrentPlayer().ID,
			RequiredLetter: letter,
		},
	}
}
