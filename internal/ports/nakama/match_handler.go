package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"atlas/internal/app"
	"atlas/internal/bot"
	"atlas/internal/config"
	"atlas/internal/domain"
	"atlas/internal/geo"

	"github.com/heroiclabs/nakama-common/runtime"
)

// The name index is built once per process from the corpus file and shared by
// every match; it is read-only after Build.
var (
	serviceOnce sync.Once
	service     *app.Service
	serviceErr  error
)

func sharedService(env map[string]string, logger runtime.Logger) (*app.Service, error) {
	serviceOnce.Do(func() {
		if path, ok := env["atlas_game_config"]; ok && path != "" {
			if err := config.LoadGameConfig(path); err != nil {
				logger.Warn("Could not load game config: %v", err)
			}
		}
		corpusPath := env["atlas_corpus_path"]
		if corpusPath == "" {
			corpusPath = "data/places.tsv"
		}
		names, err := geo.LoadNamesFile(corpusPath)
		if err != nil {
			serviceErr = err
			return
		}
		index, err := geo.Build(names)
		if err != nil {
			serviceErr = err
			return
		}
		service = app.NewService(index, app.Rules{
			MaxStrikes:        config.StrikeLimit(),
			MinPlayers:        config.MinPlayers(),
			ForbidDeadLetters: config.ForbidDeadLetters(),
		})
		logger.Info("Atlas corpus loaded: %d names", index.Len())
	})
	return service, serviceErr
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"`
	Sess      *domain.Session             `json:"-"`

	BotsEnabled bool                  `json:"bots_enabled"`
	BotMinDelay int                   `json:"bot_min_delay"` // Min seconds a bot waits
	BotMaxDelay int                   `json:"bot_max_delay"` // Max seconds a bot waits
	BotLevel    bot.BotLevel          `json:"bot_level"`
	Bots        map[string]*bot.Agent `json:"-"`

	// TurnSeconds is the per-turn answer window; TurnDeadlineTick is the tick
	// at which the current turn times out (0 when no turn is armed). The match
	// runs at one tick per second so ticks are seconds.
	TurnSeconds      int   `json:"turn_seconds"`
	TurnDeadlineTick int64 `json:"turn_deadline_tick"`
	BotWaitUntil     int64 `json:"bot_wait_until"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	svc, err := sharedService(env, logger)
	if err != nil {
		logger.Error("MatchInit: Could not build name index: %v", err)
		return nil, 0, ""
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	state := &MatchState{
		Tick:        time.Now().Unix(),
		Presences:   make(map[string]runtime.Presence),
		App:         svc,
		Sess:        svc.NewSession(matchID),
		Bots:        make(map[string]*bot.Agent),
		TurnSeconds: int(config.TurnDuration() / time.Second),
	}

	if gc := config.GetGameConfig(); gc != nil {
		state.BotsEnabled = gc.BotsEnabled
		if gc.BotLevel == "smart" {
			state.BotLevel = bot.BotLevelSmart
		}
	}
	minDelay, maxDelay := config.BotDelays()
	state.BotMinDelay = int(minDelay / time.Second)
	state.BotMaxDelay = int(maxDelay / time.Second)

	// Environment overrides for bot tuning.
	if val, ok := env["atlas_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["atlas_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["atlas_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if state.BotMinDelay <= 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay + 2
	}

	tickRate := 1 // 1 tick per second drives the turn clock
	return state, tickRate, marshalLabel(state.Sess, logger)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Reconnects are always allowed; new players only while the lobby is open.
	if matchState.Sess.FindPlayer(presence.GetUserId()) != nil {
		return state, true, ""
	}
	if matchState.Sess.Phase != domain.PhaseWaiting {
		return state, false, "game in progress"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		if matchState.Sess.FindPlayer(p.GetUserId()) != nil {
			logger.Debug("MatchJoin: %s reconnected.", p.GetUserId())
			continue
		}
		events, err := matchState.App.Join(matchState.Sess, p.GetUserId(), p.GetUsername(), false)
		if err != nil {
			logger.Warn("MatchJoin: Could not seat %s: %v", p.GetUserId(), err)
			continue
		}
		mh.dispatchEvents(matchState, dispatcher, logger, tick, events)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		events, err := matchState.App.Leave(matchState.Sess, p.GetUserId())
		if err != nil {
			logger.Debug("MatchLeave: %s not seated: %v", p.GetUserId(), err)
			continue
		}
		logger.Debug("MatchLeave: %s left.", p.GetUserId())
		mh.dispatchEvents(matchState, dispatcher, logger, tick, events)
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(matchState, dispatcher, logger, tick, msg)
		case OpSubmitName:
			mh.handleSubmitName(matchState, dispatcher, logger, tick, msg)
		case OpAddBot:
			mh.handleAddBot(matchState, dispatcher, logger, tick, msg)
		case OpCancelGame:
			mh.handleCancelGame(matchState, dispatcher, logger, tick, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	// Turn clock: the current player ran out of time.
	if matchState.Sess.Phase == domain.PhaseActive &&
		matchState.TurnDeadlineTick > 0 && tick >= matchState.TurnDeadlineTick {
		matchState.TurnDeadlineTick = 0
		events, err := matchState.App.Timeout(matchState.Sess)
		if err != nil {
			logger.Debug("MatchLoop: timeout ignored: %v", err)
		} else {
			logger.Info("MatchLoop: Turn expired at tick %d.", tick)
			mh.dispatchEvents(matchState, dispatcher, logger, tick, events)
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(matchState, dispatcher, logger, tick)
	}

	return matchState
}

func (mh *matchHandler) handleStartGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Sess.FindPlayer(senderID) == nil {
		mh.sendError(state, dispatcher, logger, senderID, 403, "join the lobby first")
		return
	}
	events, err := state.App.Start(state.Sess)
	if err != nil {
		logger.Warn("StartGame: %s could not start: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	logger.Info("StartGame: %s started with %d players.", senderID, len(state.Sess.Players))
	mh.dispatchEvents(state, dispatcher, logger, tick, events)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleSubmitName(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	var req SubmitNameRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("SubmitName: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed request")
		return
	}
	events, err := state.App.Submit(state.Sess, senderID, req.Name)
	if err != nil {
		logger.Debug("SubmitName: %s rejected outright: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	mh.dispatchEvents(state, dispatcher, logger, tick, events)
}

func (mh *matchHandler) handleAddBot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !state.BotsEnabled {
		mh.sendError(state, dispatcher, logger, senderID, 400, "bots are disabled")
		return
	}
	agent, err := bot.NewAgent(len(state.Bots), state.BotLevel, nil)
	if err != nil {
		logger.Error("AddBot: %v", err)
		return
	}
	events, err := state.App.Join(state.Sess, agent.ID, agent.Name, true)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Bots[agent.ID] = agent
	logger.Info("AddBot: %s added %s.", senderID, agent.Name)
	mh.dispatchEvents(state, dispatcher, logger, tick, events)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleCancelGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Sess.FindPlayer(senderID) == nil {
		mh.sendError(state, dispatcher, logger, senderID, 403, "join the lobby first")
		return
	}
	events, err := state.App.Cancel(state.Sess)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	logger.Info("CancelGame: %s aborted the session.", senderID)
	mh.dispatchEvents(state, dispatcher, logger, tick, events)
}

func (mh *matchHandler) processBots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64) {
	if state.Sess.Phase != domain.PhaseActive {
		state.BotWaitUntil = 0
		return
	}
	current := state.Sess.CurrentPlayer()
	if current == nil || !current.IsBot {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = tick + int64(delay)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", current.ID, state.BotWaitUntil, tick)
		return
	}
	if tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[current.ID]
	if !exists {
		logger.Warn("processBots: No agent for %s.", current.ID)
		return
	}
	name, found := agent.Play(state.Sess, state.App.Index())
	if !found {
		// Nothing playable; the turn clock will strike the bot.
		logger.Debug("processBots: Bot %s found no playable name.", current.ID)
		return
	}
	events, err := state.App.Submit(state.Sess, current.ID, name)
	if err != nil {
		logger.Error("processBots: Bot %s submission failed: %v", current.ID, err)
		return
	}
	mh.dispatchEvents(state, dispatcher, logger, tick, events)
}

// dispatchEvents arms the turn clock on prompts, resets the session to a
// fresh lobby on game over, and broadcasts each event as JSON.
func (mh *matchHandler) dispatchEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, events []app.Event) {
	finished := false
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case app.TurnPromptPayload:
			state.TurnDeadlineTick = tick + int64(state.TurnSeconds)
			state.BotWaitUntil = 0
			p.Deadline = time.Now().Unix() + int64(state.TurnSeconds)
			ev.Payload = p
		case app.GameOverPayload:
			finished = true
		}

		opCode, wire, ok := eventToWire(ev)
		if !ok {
			logger.Warn("Unknown event kind: %v", ev.Kind)
			continue
		}
		bytes, err := json.Marshal(wire)
		if err != nil {
			logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}

		// Determine recipients (default to broadcast).
		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := state.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			// Intended recipients exist but none are connected (e.g. bots);
			// do not fall back to broadcasting.
			if len(recipients) == 0 {
				continue
			}
		}
		dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
	}

	if finished {
		// Back to an open lobby for the next round; seated players re-join by
		// sending a new start, keeping the match id stable for the room.
		contextID := state.Sess.ContextID
		state.Sess = state.App.NewSession(contextID)
		state.Bots = make(map[string]*bot.Agent)
		state.TurnDeadlineTick = 0
		state.BotWaitUntil = 0
		for _, p := range state.Presences {
			if ev, err := state.App.Join(state.Sess, p.GetUserId(), p.GetUsername(), false); err == nil {
				mh.dispatchEvents(state, dispatcher, logger, tick, ev)
			}
		}
		mh.updateLabel(state, dispatcher, logger)
	}
}

// sendError sends a GameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(GameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal GameErrorEvent: %v", err)
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func marshalLabel(sess *domain.Session, logger runtime.Logger) string {
	labelBytes, err := json.Marshal(domain.ComputeLabel(sess))
	if err != nil {
		logger.Error("Failed to marshal label: %v", err)
		return ""
	}
	return string(labelBytes)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label := marshalLabel(state.Sess, logger)
	if label == "" {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
