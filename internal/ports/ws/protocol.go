// Package ws is the standalone websocket gateway for Atlas. Each connected
// client belongs to one room (a chat context); engine events for the room are
// fanned out as JSON envelopes.
package ws

import (
	"encoding/json"

	"atlas/internal/app"
)

// Client -> Server message types.
const (
	MsgHello       = "hello"
	MsgJoin        = "join"
	MsgStart       = "start"
	MsgSubmit      = "submit"
	MsgAddBot      = "add_bot"
	MsgCancel      = "cancel"
	MsgLeaderboard = "leaderboard"
	MsgSuggest     = "suggest"
)

// Server -> Client message types. Engine events reuse their event kind as the
// envelope type.
const (
	MsgWelcome           = "welcome"
	MsgError             = "error"
	MsgLeaderboardResult = "leaderboard_result"
)

// Envelope frames every websocket message.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

// Hello is the first message a client sends after connecting.
type Hello struct {
	V    int    `json:"v"`              // protocol version
	Room string `json:"room"`           // room code to join
	Name string `json:"name,omitempty"` // optional display name
}

// Submit carries a place name answer.
type Submit struct {
	Name string `json:"name"`
}

// Suggest proposes a place name for corpus review.
type Suggest struct {
	Name string `json:"name"`
}

// Welcome acknowledges a join.
type Welcome struct {
	PlayerID string `json:"player_id"`
	Room     string `json:"room"`
}

// ErrorMsg reports a refused request to one client.
type ErrorMsg struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// LeaderboardEntry is one row of a leaderboard reply.
type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Wins     int    `json:"wins"`
}

// LeaderboardResult answers a leaderboard query.
type LeaderboardResult struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// Engine event payloads on the wire.

type PlayerJoined struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	IsBot       bool   `json:"is_bot,omitempty"`
	LobbySize   int    `json:"lobby_size"`
}

type PlayerLeft struct {
	PlayerID   string `json:"player_id"`
	Eliminated bool   `json:"eliminated"`
}

type GameStarted struct {
	TurnOrder     []string `json:"turn_order"`
	FirstPlayerID string   `json:"first_player_id"`
}

type TurnPrompt struct {
	PlayerID       string `json:"player_id"`
	RequiredLetter string `json:"required_letter,omitempty"`
	Deadline       int64  `json:"deadline"`
}

type MoveAccepted struct {
	PlayerID       string `json:"player_id"`
	Name           string `json:"name"`
	NextPlayerID   string `json:"next_player_id"`
	RequiredLetter string `json:"required_letter"`
}

type MoveRejected struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`
	Reason   string `json:"reason"`
	Strikes  int    `json:"strikes"`
}

type PlayerEliminated struct {
	PlayerID string `json:"player_id"`
}

type GameOver struct {
	WinnerID string `json:"winner_id,omitempty"`
	Aborted  bool   `json:"aborted,omitempty"`
}

// eventPayload maps an engine event to its envelope type and wire payload.
func eventPayload(ev app.Event) (string, any, bool) {
	switch p := ev.Payload.(type) {
	case app.PlayerJoinedPayload:
		return string(ev.Kind), PlayerJoined{p.PlayerID, p.DisplayName, p.IsBot, p.LobbySize}, true
	case app.PlayerLeftPayload:
		return string(ev.Kind), PlayerLeft{p.PlayerID, p.Eliminated}, true
	case app.GameStartedPayload:
		return string(ev.Kind), GameStarted{p.TurnOrder, p.FirstPlayerID}, true
	case app.TurnPromptPayload:
		return string(ev.Kind), TurnPrompt{p.PlayerID, p.RequiredLetter, p.Deadline}, true
	case app.MoveAcceptedPayload:
		return string(ev.Kind), MoveAccepted{p.PlayerID, p.Name, p.NextPlayerID, p.RequiredLetter}, true
	case app.MoveRejectedPayload:
		return string(ev.Kind), MoveRejected{p.PlayerID, p.Name, string(p.Reason), p.Strikes}, true
	case app.PlayerEliminatedPayload:
		return string(ev.Kind), PlayerEliminated{p.PlayerID}, true
	case app.GameOverPayload:
		return string(ev.Kind), GameOver{p.WinnerID, p.Aborted}, true
	default:
		return "", nil, false
	}
}
