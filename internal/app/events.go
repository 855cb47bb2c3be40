package app

// EventKind identifies emitted engine events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined     EventKind = "player_joined"
	EventPlayerLeft       EventKind = "player_left"
	EventGameStarted      EventKind = "game_started"
	EventTurnPrompt       EventKind = "turn_prompt"
	EventMoveAccepted     EventKind = "move_accepted"
	EventMoveRejected     EventKind = "move_rejected"
	EventPlayerEliminated EventKind = "player_eliminated"
	EventGameOver         EventKind = "game_over"
)

// Event is an engine event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

// RejectReason classifies why a submission consumed a strike.
type RejectReason string

const (
	ReasonUnknownName RejectReason = "unknown_name"
	ReasonWrongLetter RejectReason = "wrong_letter"
	ReasonAlreadyUsed RejectReason = "already_used"
	ReasonTimeout     RejectReason = "timeout"
)

type PlayerJoinedPayload struct {
	PlayerID    string
	DisplayName string
	IsBot       bool
	LobbySize   int
}

type PlayerLeftPayload struct {
	PlayerID string
	// Eliminated is true when the player left an active game and was removed
	// from the turn order, as opposed to leaving the waiting lobby.
	Eliminated bool
}

type GameStartedPayload struct {
	TurnOrder     []string
	FirstPlayerID string
}

// TurnPromptPayload announces whose turn it is. Deadline is the unix time the
// turn clock expires; the session runtime fills it in when it arms the clock.
type TurnPromptPayload struct {
	PlayerID       string
	RequiredLetter string // empty means any letter is accepted
	Deadline       int64
}

type MoveAcceptedPayload struct {
	PlayerID       string
	Name           string // canonical display spelling
	NextPlayerID   string
	RequiredLetter string
}

type MoveRejectedPayload struct {
	PlayerID string
	Name     string // empty on timeout
	Reason   RejectReason
	Strikes  int
}

type PlayerEliminatedPayload struct {
	PlayerID string
}

// GameOverPayload ends the session. An empty WinnerID means a draw or abort.
type GameOverPayload struct {
	WinnerID string
	Aborted  bool
}
