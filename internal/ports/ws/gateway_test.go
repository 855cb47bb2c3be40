package ws

import (
	"context"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"atlas/internal/app"
	"atlas/internal/domain"
	"atlas/internal/geo"
	"atlas/internal/ports"
	"atlas/internal/session"
	"atlas/internal/store"
)

var gatewayCorpus = []string{
	"India", "Agra", "Amsterdam", "Madrid", "Delhi", "Dresden", "Nairobi", "Iowa",
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type memLeaderboard struct {
	mu   sync.Mutex
	wins map[string]map[string]int
}

func newMemLeaderboard() *memLeaderboard {
	return &memLeaderboard{wins: make(map[string]map[string]int)}
}

func (m *memLeaderboard) RecordWin(_ context.Context, contextID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.wins[contextID] == nil {
		m.wins[contextID] = make(map[string]int)
	}
	m.wins[contextID][playerID]++
	return nil
}

func (m *memLeaderboard) TopWinners(_ context.Context, contextID string, limit int) ([]ports.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ports.LeaderboardEntry
	for id, wins := range m.wins[contextID] {
		out = append(out, ports.LeaderboardEntry{PlayerID: id, Wins: wins})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Wins > out[j].Wins })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLeaderboard) ResetLeaderboard(_ context.Context, contextID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wins, contextID)
	return nil
}

type memSuggestions struct {
	mu    sync.Mutex
	items []ports.Suggestion
}

func (m *memSuggestions) AddSuggestion(_ context.Context, name, suggestedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, ports.Suggestion{ID: name, Name: name, SuggestedBy: suggestedBy})
	return nil
}

func (m *memSuggestions) ListSuggestions(_ context.Context, limit int) ([]ports.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]ports.Suggestion(nil), m.items...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memSuggestions) ApproveSuggestion(_ context.Context, id string) error {
	return m.remove(id)
}

func (m *memSuggestions) RejectSuggestion(_ context.Context, id string) error {
	return m.remove(id)
}

func (m *memSuggestions) remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return store.ErrSuggestionNotFound
}

type memSnapshots struct {
	mu    sync.Mutex
	snaps map[string]domain.Snapshot
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{snaps: make(map[string]domain.Snapshot)}
}

func (m *memSnapshots) SaveSnapshot(_ context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.ContextID] = snap
	return nil
}

func (m *memSnapshots) LoadSnapshots(_ context.Context) ([]domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Snapshot
	for _, s := range m.snaps {
		out = append(out, s)
	}
	return out, nil
}

func (m *memSnapshots) DeleteSnapshot(_ context.Context, contextID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, contextID)
	return nil
}

type gatewayFixture struct {
	gateway     *Gateway
	server      *httptest.Server
	leaderboard *memLeaderboard
	suggestions *memSuggestions
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	index, err := geo.Build(gatewayCorpus)
	if err != nil {
		t.Fatalf("geo.Build: %v", err)
	}
	svc := app.NewService(index, app.Rules{})
	lb := newMemLeaderboard()
	sug := &memSuggestions{}
	gw := NewGateway(lb, sug, nopLogger{})
	reg := session.NewRegistry(svc, session.Config{TurnDuration: 5 * time.Second}, gw, lb, newMemSnapshots(), nopLogger{})
	gw.Bind(reg)
	srv := httptest.NewServer(gw.Handler())
	t.Cleanup(func() {
		srv.Close()
		gw.Close()
	})
	return &gatewayFixture{gateway: gw, server: srv, leaderboard: lb, suggestions: sug}
}

func (f *gatewayFixture) dial(t *testing.T, room, name string) (*websocket.Conn, string) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	sendMsg(t, conn, MsgHello, Hello{V: 1, Room: room, Name: name})
	env := waitFor(t, conn, MsgWelcome)
	welcome, err := DecodePayload[Welcome](env)
	if err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if welcome.Room != room {
		t.Fatalf("welcome room = %q, want %q", welcome.Room, room)
	}
	return conn, welcome.PlayerID
}

func sendMsg(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	data, err := Encode(typ, payload)
	if err != nil {
		t.Fatalf("encode %s: %v", typ, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// waitFor reads frames until one of the wanted type arrives, skipping
// interleaved broadcasts.
func waitFor(t *testing.T, conn *websocket.Conn, typ string) Envelope {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		env, err := DecodeEnvelope(data)
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if env.T == typ {
			return env
		}
	}
	t.Fatalf("no %s frame before deadline", typ)
	return Envelope{}
}

func TestGatewayGameFlow(t *testing.T) {
	f := newGatewayFixture(t)

	alice, aliceID := f.dial(t, "room-1", "alice")
	bob, bobID := f.dial(t, "room-1", "bob")

	env := waitFor(t, alice, string(app.EventPlayerJoined))
	joined, _ := DecodePayload[PlayerJoined](env)
	if joined.PlayerID != aliceID || joined.LobbySize != 1 {
		t.Fatalf("unexpected first join %+v", joined)
	}
	env = waitFor(t, alice, string(app.EventPlayerJoined))
	joined, _ = DecodePayload[PlayerJoined](env)
	if joined.PlayerID != bobID || joined.LobbySize != 2 {
		t.Fatalf("unexpected second join %+v", joined)
	}

	sendMsg(t, alice, MsgStart, nil)
	env = waitFor(t, alice, string(app.EventGameStarted))
	started, _ := DecodePayload[GameStarted](env)
	if started.FirstPlayerID != aliceID {
		t.Fatalf("first player = %q, want %q", started.FirstPlayerID, aliceID)
	}
	env = waitFor(t, alice, string(app.EventTurnPrompt))
	prompt, _ := DecodePayload[TurnPrompt](env)
	if prompt.PlayerID != aliceID || prompt.RequiredLetter != "" {
		t.Fatalf("unexpected opening prompt %+v", prompt)
	}

	sendMsg(t, alice, MsgSubmit, Submit{Name: "India"})
	env = waitFor(t, alice, string(app.EventMoveAccepted))
	accepted, _ := DecodePayload[MoveAccepted](env)
	if accepted.Name != "India" || accepted.RequiredLetter != "a" || accepted.NextPlayerID != bobID {
		t.Fatalf("unexpected acceptance %+v", accepted)
	}

	// Wrong letter strikes bob; the turn passes with the letter unchanged.
	sendMsg(t, bob, MsgSubmit, Submit{Name: "Madrid"})
	env = waitFor(t, alice, string(app.EventMoveRejected))
	rejected, _ := DecodePayload[MoveRejected](env)
	if rejected.PlayerID != bobID || rejected.Reason != "wrong_letter" || rejected.Strikes != 1 {
		t.Fatalf("unexpected rejection %+v", rejected)
	}
	env = waitFor(t, alice, string(app.EventTurnPrompt))
	prompt, _ = DecodePayload[TurnPrompt](env)
	if prompt.PlayerID != aliceID || prompt.RequiredLetter != "a" {
		t.Fatalf("unexpected prompt after strike %+v", prompt)
	}

	sendMsg(t, alice, MsgSubmit, Submit{Name: "Agra"})
	env = waitFor(t, alice, string(app.EventMoveAccepted))
	accepted, _ = DecodePayload[MoveAccepted](env)
	if accepted.Name != "Agra" || accepted.NextPlayerID != bobID {
		t.Fatalf("unexpected acceptance %+v", accepted)
	}

	// Second strike eliminates bob; alice wins.
	sendMsg(t, bob, MsgSubmit, Submit{Name: "Delhi"})
	env = waitFor(t, alice, string(app.EventPlayerEliminated))
	eliminated, _ := DecodePayload[PlayerEliminated](env)
	if eliminated.PlayerID != bobID {
		t.Fatalf("eliminated = %q, want %q", eliminated.PlayerID, bobID)
	}
	env = waitFor(t, alice, string(app.EventGameOver))
	over, _ := DecodePayload[GameOver](env)
	if over.WinnerID != aliceID {
		t.Fatalf("winner = %q, want %q", over.WinnerID, aliceID)
	}

	// Finished games feed the leaderboard, queryable over the same socket.
	// The win is recorded after the game_over broadcast, so poll briefly.
	recorded := false
	for deadline := time.Now().Add(2 * time.Second); time.Now().Before(deadline); {
		sendMsg(t, alice, MsgLeaderboard, nil)
		env = waitFor(t, alice, MsgLeaderboardResult)
		result, _ := DecodePayload[LeaderboardResult](env)
		if len(result.Entries) == 1 {
			if result.Entries[0].PlayerID != aliceID || result.Entries[0].Wins != 1 {
				t.Fatalf("unexpected leaderboard %+v", result)
			}
			recorded = true
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !recorded {
		t.Fatal("win never reached the leaderboard")
	}

	// Rejoin opens a fresh lobby in the same room.
	sendMsg(t, alice, MsgJoin, nil)
	env = waitFor(t, alice, string(app.EventPlayerJoined))
	joined, _ = DecodePayload[PlayerJoined](env)
	if joined.PlayerID != aliceID || joined.LobbySize != 1 {
		t.Fatalf("unexpected rejoin %+v", joined)
	}
}

func TestGatewayRejectsBadFrames(t *testing.T) {
	f := newGatewayFixture(t)
	conn, _ := f.dial(t, "room-2", "alice")

	sendMsg(t, conn, "mystery", nil)
	env := waitFor(t, conn, MsgError)
	msg, _ := DecodePayload[ErrorMsg](env)
	if msg.Code != CodeBadRequest {
		t.Fatalf("code = %d, want %d", msg.Code, CodeBadRequest)
	}

	// Starting alone is refused.
	sendMsg(t, conn, MsgStart, nil)
	env = waitFor(t, conn, MsgError)
	msg, _ = DecodePayload[ErrorMsg](env)
	if msg.Code != CodeTooFewPlayers {
		t.Fatalf("code = %d, want %d", msg.Code, CodeTooFewPlayers)
	}
}

func TestGatewayHelloRequired(t *testing.T) {
	f := newGatewayFixture(t)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sendMsg(t, conn, MsgStart, nil)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the server to close a connection that skips hello")
	}
}

func TestGatewaySuggestionQueue(t *testing.T) {
	f := newGatewayFixture(t)
	conn, playerID := f.dial(t, "room-3", "alice")

	sendMsg(t, conn, MsgSuggest, Suggest{Name: "Atlantis"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		items, _ := f.suggestions.ListSuggestions(context.Background(), 0)
		if len(items) == 1 {
			if items[0].Name != "Atlantis" || items[0].SuggestedBy != playerID {
				t.Fatalf("unexpected suggestion %+v", items[0])
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("suggestion never recorded")
}

func TestGatewayDisconnectLeaves(t *testing.T) {
	f := newGatewayFixture(t)
	alice, _ := f.dial(t, "room-4", "alice")
	bob, bobID := f.dial(t, "room-4", "bob")

	bob.Close()
	env := waitFor(t, alice, string(app.EventPlayerLeft))
	left, _ := DecodePayload[PlayerLeft](env)
	if left.PlayerID != bobID || left.Eliminated {
		t.Fatalf("unexpected leave %+v", left)
	}
}
