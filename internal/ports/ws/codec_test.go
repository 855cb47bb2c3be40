package ws

import (
	"testing"

	"atlas/internal/app"
)

func TestCodecRoundTrip(t *testing.T) {
	data, err := Encode(MsgSubmit, Submit{Name: "Madrid"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if env.T != MsgSubmit {
		t.Fatalf("type = %q, want %q", env.T, MsgSubmit)
	}
	msg, err := DecodePayload[Submit](env)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if msg.Name != "Madrid" {
		t.Fatalf("name = %q, want Madrid", msg.Name)
	}
}

func TestCodecEmptyPayload(t *testing.T) {
	data, err := Encode(MsgStart, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if len(env.P) != 0 {
		t.Fatalf("payload = %q, want empty", env.P)
	}
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	if _, err := DecodeEnvelope([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed frame")
	}
	if _, err := DecodeEnvelope([]byte(`{"p":{}}`)); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestEventPayloadMapping(t *testing.T) {
	cases := []struct {
		ev   app.Event
		want string
	}{
		{app.Event{Kind: app.EventPlayerJoined, Payload: app.PlayerJoinedPayload{PlayerID: "p1"}}, "player_joined"},
		{app.Event{Kind: app.EventPlayerLeft, Payload: app.PlayerLeftPayload{PlayerID: "p1"}}, "player_left"},
		{app.Event{Kind: app.EventGameStarted, Payload: app.GameStartedPayload{FirstPlayerID: "p1"}}, "game_started"},
		{app.Event{Kind: app.EventTurnPrompt, Payload: app.TurnPromptPayload{PlayerID: "p1"}}, "turn_prompt"},
		{app.Event{Kind: app.EventMoveAccepted, Payload: app.MoveAcceptedPayload{Name: "India"}}, "move_accepted"},
		{app.Event{Kind: app.EventMoveRejected, Payload: app.MoveRejectedPayload{Reason: app.ReasonWrongLetter}}, "move_rejected"},
		{app.Event{Kind: app.EventPlayerEliminated, Payload: app.PlayerEliminatedPayload{PlayerID: "p1"}}, "player_eliminated"},
		{app.Event{Kind: app.EventGameOver, Payload: app.GameOverPayload{WinnerID: "p1"}}, "game_over"},
	}
	for _, tc := range cases {
		got, _, ok := eventPayload(tc.ev)
		if !ok {
			t.Fatalf("eventPayload(%s): not mapped", tc.ev.Kind)
		}
		if got != tc.want {
			t.Fatalf("eventPayload(%s) = %q, want %q", tc.ev.Kind, got, tc.want)
		}
	}
	if _, _, ok := eventPayload(app.Event{Kind: "mystery", Payload: 42}); ok {
		t.Fatal("unknown payload should not map")
	}
}
