package session

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"atlas/internal/app"
	"atlas/internal/bot"
	"atlas/internal/domain"
	"atlas/internal/ports"
)

// Logger is the minimal structured logger the runtime needs. The Nakama
// runtime.Logger satisfies it directly.
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Config tunes the session runtime.
type Config struct {
	// TurnDuration is the per-turn window before a timeout strike.
	TurnDuration time.Duration
	// BotMinDelay/BotMaxDelay bracket how long a bot waits before acting.
	BotMinDelay time.Duration
	BotMaxDelay time.Duration
	// BotLevel selects the strategy for bots added to lobbies.
	BotLevel bot.BotLevel
}

func (c Config) withDefaults() Config {
	if c.TurnDuration <= 0 {
		c.TurnDuration = 30 * time.Second
	}
	if c.BotMinDelay <= 0 {
		c.BotMinDelay = time.Second
	}
	if c.BotMaxDelay < c.BotMinDelay {
		c.BotMaxDelay = c.BotMinDelay + 2*time.Second
	}
	return c
}

// Session is the per-context runtime wrapper around the domain state machine.
// All mutation happens on the run goroutine: commands, the turn-clock expiry,
// and bot moves funnel through one inbox, so moves and timeouts for a session
// are applied one at a time in admission order.
type Session struct {
	contextID string
	svc       *app.Service
	cfg       Config

	state *domain.Session
	clock *TurnClock

	notifier    ports.Notifier
	leaderboard ports.LeaderboardPort
	snapshots   ports.SnapshotPort
	logger      Logger

	inbox    chan command
	quit     chan struct{}
	stopOnce sync.Once

	bots map[string]*bot.Agent
	rng  *rand.Rand

	// onFinished is invoked once, on the run goroutine, when the session
	// reaches the finished phase. The registry uses it to unregister.
	onFinished func(contextID string)
}

type command interface{}

type joinCmd struct {
	playerID    string
	displayName string
	reply       chan error
}

type addBotCmd struct {
	reply chan addBotResult
}

type addBotResult struct {
	playerID string
	err      error
}

type startCmd struct {
	reply chan error
}

type submitCmd struct {
	playerID string
	raw      string
	reply    chan error
}

type leaveCmd struct {
	playerID string
	reply    chan error
}

type cancelCmd struct {
	reply chan error
}

type snapshotCmd struct {
	reply chan domain.Snapshot
}

// expireCmd is posted by the turn clock. gen identifies the arming cycle; a
// stale generation means a move was accepted after the clock fired and the
// expiry must be discarded.
type expireCmd struct {
	gen uint64
}

// botActCmd is the scheduled move of a bot whose turn came up.
type botActCmd struct {
	playerID string
	gen      uint64
}

// rearmCmd restarts the turn clock on a session restored mid-game.
type rearmCmd struct {
	reply chan struct{}
}

func newSession(contextID string, state *domain.Session, svc *app.Service, cfg Config,
	notifier ports.Notifier, leaderboard ports.LeaderboardPort, snapshots ports.SnapshotPort,
	logger Logger, onFinished func(string)) *Session {
	return &Session{
		contextID:   contextID,
		svc:         svc,
		cfg:         cfg.withDefaults(),
		state:       state,
		clock:       NewTurnClock(),
		notifier:    notifier,
		leaderboard: leaderboard,
		snapshots:   snapshots,
		logger:      logger,
		inbox:       make(chan command),
		quit:        make(chan struct{}),
		bots:        make(map[string]*bot.Agent),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		onFinished:  onFinished,
	}
}

// ContextID returns the chat context this session belongs to.
func (s *Session) ContextID() string {
	return s.contextID
}

func (s *Session) run() {
	for {
		select {
		case <-s.quit:
			return
		case cmd := <-s.inbox:
			s.handle(cmd)
		}
	}
}

// post delivers a command to the run goroutine, failing fast once the session
// finished. The inbox is unbuffered: a successful send means the command will
// be handled and its reply delivered.
func (s *Session) post(cmd command) error {
	select {
	case s.inbox <- cmd:
		return nil
	case <-s.quit:
		return app.ErrSessionFinished
	}
}

// Join adds a player to the waiting lobby.
func (s *Session) Join(playerID, displayName string) error {
	cmd := joinCmd{playerID: playerID, displayName: displayName, reply: make(chan error, 1)}
	if err := s.post(cmd); err != nil {
		return err
	}
	return <-cmd.reply
}

// AddBot seats a bot agent in the waiting lobby and returns its player id.
func (s *Session) AddBot() (string, error) {
	cmd := addBotCmd{reply: make(chan addBotResult, 1)}
	if err := s.post(cmd); err != nil {
		return "", err
	}
	res := <-cmd.reply
	return res.playerID, res.err
}

// Start locks the lobby and begins the game.
func (s *Session) Start() error {
	cmd := startCmd{reply: make(chan error, 1)}
	if err := s.post(cmd); err != nil {
		return err
	}
	return <-cmd.reply
}

// Submit processes a candidate name from a player. Strikes are reported via
// notifications, not errors; the error return covers wrong-state, bystander,
// empty, and dead-letter cases only.
func (s *Session) Submit(playerID, raw string) error {
	cmd := submitCmd{playerID: playerID, raw: raw, reply: make(chan error, 1)}
	if err := s.post(cmd); err != nil {
		return err
	}
	return <-cmd.reply
}

// Leave removes a player from the lobby or eliminates them mid-game.
func (s *Session) Leave(playerID string) error {
	cmd := leaveCmd{playerID: playerID, reply: make(chan error, 1)}
	if err := s.post(cmd); err != nil {
		return err
	}
	return <-cmd.reply
}

// Cancel aborts the session.
func (s *Session) Cancel() error {
	cmd := cancelCmd{reply: make(chan error, 1)}
	if err := s.post(cmd); err != nil {
		return err
	}
	return <-cmd.reply
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() (domain.Snapshot, error) {
	cmd := snapshotCmd{reply: make(chan domain.Snapshot, 1)}
	if err := s.post(cmd); err != nil {
		return domain.Snapshot{}, err
	}
	return <-cmd.reply, nil
}

// rearm blocks until the restored session has rebuilt its bots and restarted
// its turn clock.
func (s *Session) rearm() {
	cmd := rearmCmd{reply: make(chan struct{})}
	if err := s.post(cmd); err != nil {
		return
	}
	<-cmd.reply
}

func (s *Session) handle(cmd command) {
	switch c := cmd.(type) {
	case joinCmd:
		events, err := s.svc.Join(s.state, c.playerID, c.displayName, false)
		c.reply <- err
		s.dispatch(events)
	case addBotCmd:
		s.handleAddBot(c)
	case startCmd:
		events, err := s.svc.Start(s.state)
		c.reply <- err
		s.dispatch(events)
	case submitCmd:
		events, err := s.svc.Submit(s.state, c.playerID, c.raw)
		c.reply <- err
		s.dispatch(events)
	case leaveCmd:
		events, err := s.svc.Leave(s.state, c.playerID)
		c.reply <- err
		s.dispatch(events)
	case cancelCmd:
		events, err := s.svc.Cancel(s.state)
		c.reply <- err
		s.dispatch(events)
	case snapshotCmd:
		c.reply <- s.state.TakeSnapshot()
	case expireCmd:
		s.handleExpire(c)
	case botActCmd:
		s.handleBotAct(c)
	case rearmCmd:
		s.handleRearm(c)
	}
}

func (s *Session) handleAddBot(c addBotCmd) {
	agent, err := bot.NewAgent(len(s.bots), s.cfg.BotLevel, s.rng)
	if err != nil {
		c.reply <- addBotResult{err: err}
		return
	}
	events, err := s.svc.Join(s.state, agent.ID, agent.Name, true)
	if err != nil {
		c.reply <- addBotResult{err: err}
		return
	}
	s.bots[agent.ID] = agent
	c.reply <- addBotResult{playerID: agent.ID}
	s.dispatch(events)
}

// handleRearm rebuilds bot agents and re-announces the current turn after a
// restore. Dispatching the prompt restarts the clock with a full duration.
func (s *Session) handleRearm(c rearmCmd) {
	defer close(c.reply)
	n := 0
	for _, p := range s.state.Players {
		if !p.IsBot {
			continue
		}
		brain, err := bot.NewBrain(s.cfg.BotLevel, s.rng)
		if err != nil {
			s.logger.Warn("session %s: cannot rebuild bot %s: %v", s.contextID, p.ID, err)
			continue
		}
		s.bots[p.ID] = &bot.Agent{ID: p.ID, Name: p.DisplayName, Strategy: brain}
		n++
	}
	if n > 0 {
		s.logger.Debug("session %s: rebuilt %d bot agents", s.contextID, n)
	}
	if s.state.Phase != domain.PhaseActive || s.state.CurrentPlayer() == nil {
		return
	}
	s.dispatch([]app.Event{s.svc.Prompt(s.state)})
}

func (s *Session) handleExpire(c expireCmd) {
	if c.gen != s.clock.Generation() {
		// A move was admitted first and re-armed the clock; this expiry lost
		// the race and must not strike anyone.
		s.logger.Debug("session %s: discarding stale turn expiry (gen %d)", s.contextID, c.gen)
		return
	}
	events, err := s.svc.Timeout(s.state)
	if err != nil {
		s.logger.Debug("session %s: timeout ignored: %v", s.contextID, err)
		return
	}
	s.logger.Info("session %s: turn expired", s.contextID)
	s.dispatch(events)
}

func (s *Session) handleBotAct(c botActCmd) {
	if c.gen != s.clock.Generation() {
		return
	}
	current := s.state.CurrentPlayer()
	if current == nil || current.ID != c.playerID {
		return
	}
	agent, ok := s.bots[c.playerID]
	if !ok {
		return
	}
	name, found := agent.Play(s.state, s.svc.Index())
	if !found {
		// Nothing playable; let the clock strike the bot.
		s.logger.Debug("session %s: bot %s found no playable name", s.contextID, c.playerID)
		return
	}
	events, err := s.svc.Submit(s.state, c.playerID, name)
	if err != nil {
		s.logger.Warn("session %s: bot %s submission failed: %v", s.contextID, c.playerID, err)
		return
	}
	s.dispatch(events)
}

// dispatch arms the clock for turn prompts, forwards events to the chat
// layer, and finalizes the session on game over.
func (s *Session) dispatch(events []app.Event) {
	finished := false
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case app.TurnPromptPayload:
			deadline, gen := s.clock.Start(s.cfg.TurnDuration, s.expire)
			p.Deadline = deadline.Unix()
			ev.Payload = p
			s.scheduleBot(p.PlayerID, gen)
		case app.GameOverPayload:
			finished = true
		}
		s.notifier.Notify(s.contextID, ev)
	}
	if len(events) > 0 && !finished {
		s.persist()
	}
	if finished {
		s.finish()
	}
}

// expire runs on the timer goroutine; it only posts into the inbox.
func (s *Session) expire(gen uint64) {
	select {
	case s.inbox <- expireCmd{gen: gen}:
	case <-s.quit:
	}
}

func (s *Session) scheduleBot(playerID string, gen uint64) {
	if _, ok := s.bots[playerID]; !ok {
		return
	}
	delay := s.cfg.BotMinDelay
	if spread := s.cfg.BotMaxDelay - s.cfg.BotMinDelay; spread > 0 {
		delay += time.Duration(s.rng.Int63n(int64(spread)))
	}
	time.AfterFunc(delay, func() {
		select {
		case s.inbox <- botActCmd{playerID: playerID, gen: gen}:
		case <-s.quit:
		}
	})
}

func (s *Session) persist() {
	if s.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.snapshots.SaveSnapshot(ctx, s.state.TakeSnapshot()); err != nil {
		s.logger.Warn("session %s: snapshot save failed: %v", s.contextID, err)
	}
}

// finish stops the clock, records the outcome, and shuts down the run loop.
func (s *Session) finish() {
	s.clock.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if winner := s.state.WinnerID; winner != "" && s.leaderboard != nil && !bot.IsBot(winner) {
		if err := s.leaderboard.RecordWin(ctx, s.contextID, winner); err != nil {
			s.logger.Warn("session %s: record win failed: %v", s.contextID, err)
		}
	}
	if s.snapshots != nil {
		if err := s.snapshots.DeleteSnapshot(ctx, s.contextID); err != nil {
			s.logger.Warn("session %s: snapshot delete failed: %v", s.contextID, err)
		}
	}

	if s.onFinished != nil {
		s.onFinished(s.contextID)
	}
	s.stop()
	s.logger.Info("session %s: finished (winner=%q)", s.contextID, s.state.WinnerID)
}

// stop halts the run loop and the clock. Idempotent; the registry calls it as
// a safety net even when the session already finished itself.
func (s *Session) stop() {
	s.clock.Cancel()
	s.stopOnce.Do(func() { close(s.quit) })
}
