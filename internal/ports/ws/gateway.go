package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"atlas/internal/app"
	"atlas/internal/ports"
	"atlas/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	// sendBuffer bounds the per-client outbound queue; a client that cannot
	// keep up is dropped rather than stalling the room.
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Error codes carried by MsgError envelopes.
const (
	CodeBadRequest      = 1
	CodeWrongPhase      = 2
	CodeAlreadyJoined   = 3
	CodeTooFewPlayers   = 4
	CodeUnknownPlayer   = 5
	CodeNotYourTurn     = 6
	CodeEmptySubmission = 7
	CodeDeadLetter      = 8
	CodeSessionFinished = 9
	CodeInternal        = 10
)

// Gateway serves the websocket endpoint and fans engine events out to the
// clients of each room. It implements ports.Notifier, so the session registry
// can be wired to it directly.
type Gateway struct {
	registry    *session.Registry
	leaderboard ports.LeaderboardPort
	suggestions ports.SuggestionPort
	logger      session.Logger

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

// NewGateway builds a gateway without a registry; call Bind once the registry
// exists. The two reference each other, so one side has to come second.
func NewGateway(leaderboard ports.LeaderboardPort, suggestions ports.SuggestionPort, logger session.Logger) *Gateway {
	return &Gateway{
		leaderboard: leaderboard,
		suggestions: suggestions,
		logger:      logger,
		rooms:       make(map[string]map[*client]struct{}),
	}
}

// Bind attaches the session registry the gateway drives.
func (g *Gateway) Bind(reg *session.Registry) {
	g.registry = reg
}

// Notify implements ports.Notifier by delivering one engine event to the
// room's connected clients. Events with recipients go only to those players.
func (g *Gateway) Notify(contextID string, ev app.Event) {
	t, payload, ok := eventPayload(ev)
	if !ok {
		g.logger.Warn("ws: unmapped event kind %q", ev.Kind)
		return
	}
	data, err := Encode(t, payload)
	if err != nil {
		g.logger.Error("ws: encode event %q: %v", t, err)
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.rooms[contextID] {
		if len(ev.Recipients) > 0 && !contains(ev.Recipients, c.playerID) {
			continue
		}
		c.trySend(data)
	}
}

// Handler returns the HTTP mux for the gateway: the websocket endpoint plus a
// liveness probe.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	g.registerAdmin(mux)
	return mux
}

// Close drops every connected client.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for room, clients := range g.rooms {
		for c := range clients {
			c.close()
		}
		delete(g.rooms, room)
	}
}

func (g *Gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("ws: upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c, err := g.handshake(conn)
	if err != nil {
		g.logger.Debug("ws: handshake rejected: %v", err)
		conn.Close()
		return
	}

	go c.writeLoop()
	g.readLoop(c)
}

// handshake reads the hello frame, seats the player, and registers the client
// for room fan-out. The client joins the room map before the engine join so it
// sees its own player_joined event.
func (g *Gateway) handshake(conn *websocket.Conn) (*client, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	env, err := DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	if env.T != MsgHello {
		return nil, errors.New("first message must be hello")
	}
	hello, err := DecodePayload[Hello](env)
	if err != nil {
		return nil, err
	}
	if hello.Room == "" {
		return nil, errors.New("hello requires a room")
	}

	c := &client{
		gateway:  g,
		conn:     conn,
		room:     hello.Room,
		playerID: uuid.NewString(),
		name:     hello.Name,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
	if c.name == "" {
		c.name = "Player-" + c.playerID[:8]
	}

	g.mu.Lock()
	clients, ok := g.rooms[c.room]
	if !ok {
		clients = make(map[*client]struct{})
		g.rooms[c.room] = clients
	}
	clients[c] = struct{}{}
	g.mu.Unlock()

	welcome, err := Encode(MsgWelcome, Welcome{PlayerID: c.playerID, Room: c.room})
	if err != nil {
		g.drop(c)
		return nil, err
	}
	c.trySend(welcome)

	if err := g.joinRoom(c); err != nil {
		g.drop(c)
		return nil, err
	}
	g.logger.Info("ws: %s joined room %s as %q", c.playerID, c.room, c.name)
	return c, nil
}

// joinRoom seats the client in the room's current lobby. A session that
// finished between lookup and join is retried once against its replacement.
func (g *Gateway) joinRoom(c *client) error {
	for attempt := 0; attempt < 2; attempt++ {
		sess := g.registry.GetOrCreate(c.room)
		err := sess.Join(c.playerID, c.name)
		if errors.Is(err, app.ErrSessionFinished) {
			continue
		}
		if errors.Is(err, app.ErrAlreadyJoined) {
			return nil
		}
		return err
	}
	return app.ErrSessionFinished
}

func (g *Gateway) readLoop(c *client) {
	defer g.drop(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Debug("ws: %s read error: %v", c.playerID, err)
			}
			return
		}
		env, err := DecodeEnvelope(data)
		if err != nil {
			g.sendError(c, CodeBadRequest, err.Error())
			continue
		}
		g.handleMessage(c, env)
	}
}

func (g *Gateway) handleMessage(c *client, env Envelope) {
	switch env.T {
	case MsgJoin:
		if err := g.joinRoom(c); err != nil {
			g.sendError(c, errorCode(err), err.Error())
		}
	case MsgStart:
		g.command(c, func(s *session.Session) error { return s.Start() })
	case MsgSubmit:
		msg, err := DecodePayload[Submit](env)
		if err != nil {
			g.sendError(c, CodeBadRequest, err.Error())
			return
		}
		g.command(c, func(s *session.Session) error { return s.Submit(c.playerID, msg.Name) })
	case MsgAddBot:
		g.command(c, func(s *session.Session) error {
			_, err := s.AddBot()
			return err
		})
	case MsgCancel:
		g.command(c, func(s *session.Session) error { return s.Cancel() })
	case MsgLeaderboard:
		g.handleLeaderboard(c)
	case MsgSuggest:
		g.handleSuggest(c, env)
	default:
		g.sendError(c, CodeBadRequest, "unknown message type "+env.T)
	}
}

// command resolves the room's current session and runs one engine command
// against it, reporting refusals back to the issuing client only.
func (g *Gateway) command(c *client, fn func(*session.Session) error) {
	sess, err := g.registry.Get(c.room)
	if err != nil {
		g.sendError(c, CodeSessionFinished, "no active session; send join first")
		return
	}
	if err := fn(sess); err != nil {
		g.sendError(c, errorCode(err), err.Error())
	}
}

func (g *Gateway) handleLeaderboard(c *client) {
	if g.leaderboard == nil {
		g.sendError(c, CodeInternal, "leaderboard unavailable")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := g.leaderboard.TopWinners(ctx, c.room, 10)
	if err != nil {
		g.logger.Error("ws: leaderboard query for %s: %v", c.room, err)
		g.sendError(c, CodeInternal, "leaderboard unavailable")
		return
	}
	result := LeaderboardResult{Entries: make([]LeaderboardEntry, 0, len(rows))}
	for _, row := range rows {
		result.Entries = append(result.Entries, LeaderboardEntry{PlayerID: row.PlayerID, Wins: row.Wins})
	}
	data, err := Encode(MsgLeaderboardResult, result)
	if err != nil {
		g.logger.Error("ws: encode leaderboard: %v", err)
		return
	}
	c.trySend(data)
}

func (g *Gateway) handleSuggest(c *client, env Envelope) {
	if g.suggestions == nil {
		g.sendError(c, CodeInternal, "suggestions unavailable")
		return
	}
	msg, err := DecodePayload[Suggest](env)
	if err != nil {
		g.sendError(c, CodeBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.suggestions.AddSuggestion(ctx, msg.Name, c.playerID); err != nil {
		g.logger.Error("ws: suggestion from %s: %v", c.playerID, err)
		g.sendError(c, CodeInternal, "suggestion not recorded")
	}
}

// drop unregisters the client, removes the player from the room's session, and
// closes the socket. Safe to call more than once.
func (g *Gateway) drop(c *client) {
	g.mu.Lock()
	if clients, ok := g.rooms[c.room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(g.rooms, c.room)
		}
	}
	g.mu.Unlock()

	if sess, err := g.registry.Get(c.room); err == nil {
		if err := sess.Leave(c.playerID); err != nil && !errors.Is(err, app.ErrUnknownPlayer) &&
			!errors.Is(err, app.ErrSessionFinished) {
			g.logger.Warn("ws: leave %s from %s: %v", c.playerID, c.room, err)
		}
	}
	c.close()
}

func (g *Gateway) sendError(c *client, code int, message string) {
	data, err := Encode(MsgError, ErrorMsg{Code: code, Message: message})
	if err != nil {
		return
	}
	c.trySend(data)
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, app.ErrWrongPhase):
		return CodeWrongPhase
	case errors.Is(err, app.ErrAlreadyJoined):
		return CodeAlreadyJoined
	case errors.Is(err, app.ErrTooFewPlayers):
		return CodeTooFewPlayers
	case errors.Is(err, app.ErrUnknownPlayer):
		return CodeUnknownPlayer
	case errors.Is(err, app.ErrNotYourTurn):
		return CodeNotYourTurn
	case errors.Is(err, app.ErrEmptySubmission):
		return CodeEmptySubmission
	case errors.Is(err, app.ErrDeadLetter):
		return CodeDeadLetter
	case errors.Is(err, app.ErrSessionFinished):
		return CodeSessionFinished
	default:
		return CodeInternal
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// client is one websocket connection bound to a room and a player identity.
type client struct {
	gateway  *Gateway
	conn     *websocket.Conn
	room     string
	playerID string
	name     string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// trySend queues a frame without blocking; a full queue drops the frame and
// the client, which will notice on its next read.
func (c *client) trySend(data []byte) {
	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.gateway.logger.Warn("ws: %s send queue full, dropping client", c.playerID)
		c.close()
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
