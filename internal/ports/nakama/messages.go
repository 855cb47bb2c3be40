package nakama

// Client -> Server request payloads. All match messages are JSON encoded.

// SubmitNameRequest carries the place name a player answers with.
type SubmitNameRequest struct {
	Name string `json:"name"`
}

// Server -> Client event payloads.

type PlayerJoinedEvent struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	IsBot       bool   `json:"is_bot,omitempty"`
	LobbySize   int    `json:"lobby_size"`
}

type PlayerLeftEvent struct {
	PlayerID   string `json:"player_id"`
	Eliminated bool   `json:"eliminated"`
}

type GameStartedEvent struct {
	TurnOrder     []string `json:"turn_order"`
	FirstPlayerID string   `json:"first_player_id"`
}

type TurnPromptEvent struct {
	PlayerID       string `json:"player_id"`
	RequiredLetter string `json:"required_letter,omitempty"`
	Deadline       int64  `json:"deadline"`
}

type MoveAcceptedEvent struct {
	PlayerID       string `json:"player_id"`
	Name           string `json:"name"`
	NextPlayerID   string `json:"next_player_id"`
	RequiredLetter string `json:"required_letter"`
}

type MoveRejectedEvent struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`
	Reason   string `json:"reason"`
	Strikes  int    `json:"strikes"`
}

type PlayerEliminatedEvent struct {
	PlayerID string `json:"player_id"`
}

type GameOverEvent struct {
	WinnerID string `json:"winner_id,omitempty"`
	Aborted  bool   `json:"aborted,omitempty"`
}

// GameErrorEvent is sent privately to a player whose request was refused.
type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
