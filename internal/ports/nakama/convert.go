package nakama

import (
	"atlas/internal/app"
)

// eventToWire maps an engine event to its op code and JSON wire payload.
// Unknown kinds return ok=false and are dropped by the caller.
func eventToWire(ev app.Event) (int64, any, bool) {
	switch p := ev.Payload.(type) {
	case app.PlayerJoinedPayload:
		return OpPlayerJoined, PlayerJoinedEvent{
			PlayerID:    p.PlayerID,
			DisplayName: p.DisplayName,
			IsBot:       p.IsBot,
			LobbySize:   p.LobbySize,
		}, true
	case app.PlayerLeftPayload:
		return OpPlayerLeft, PlayerLeftEvent{
			PlayerID:   p.PlayerID,
			Eliminated: p.Eliminated,
		}, true
	case app.GameStartedPayload:
		return OpGameStarted, GameStartedEvent{
			TurnOrder:     p.TurnOrder,
			FirstPlayerID: p.FirstPlayerID,
		}, true
	case app.TurnPromptPayload:
		return OpTurnPrompt, TurnPromptEvent{
			PlayerID:       p.PlayerID,
			RequiredLetter: p.RequiredLetter,
			Deadline:       p.Deadline,
		}, true
	case app.MoveAcceptedPayload:
		return OpMoveAccepted, MoveAcceptedEvent{
			PlayerID:       p.PlayerID,
			Name:           p.Name,
			NextPlayerID:   p.NextPlayerID,
			RequiredLetter: p.RequiredLetter,
		}, true
	case app.MoveRejectedPayload:
		return OpMoveRejected, MoveRejectedEvent{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Reason:   string(p.Reason),
			Strikes:  p.Strikes,
		}, true
	case app.PlayerEliminatedPayload:
		return OpPlayerEliminated, PlayerEliminatedEvent{
			PlayerID: p.PlayerID,
		}, true
	case app.GameOverPayload:
		return OpGameOver, GameOverEvent{
			WinnerID: p.WinnerID,
			Aborted:  p.Aborted,
		}, true
	default:
		return 0, nil, false
	}
}
