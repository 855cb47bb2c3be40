package session

import (
	"context"
	"errors"
	"sync"

	"atlas/internal/app"
	"atlas/internal/domain"
	"atlas/internal/ports"
)

// ErrSessionExists is returned by Create when a live session already occupies
// the chat context.
var ErrSessionExists = errors.New("session already exists for context")

// ErrSessionNotFound is returned by Get for contexts with no live session.
var ErrSessionNotFound = errors.New("no session for context")

// Registry keys live sessions by chat context and guarantees at most one
// waiting-or-active session per context. Finished sessions remove themselves.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	svc         *app.Service
	cfg         Config
	notifier    ports.Notifier
	leaderboard ports.LeaderboardPort
	snapshots   ports.SnapshotPort
	logger      Logger
}

// NewRegistry constructs a registry. leaderboard and snapshots may be nil
// when persistence is not wired.
func NewRegistry(svc *app.Service, cfg Config, notifier ports.Notifier,
	leaderboard ports.LeaderboardPort, snapshots ports.SnapshotPort, logger Logger) *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		svc:         svc,
		cfg:         cfg,
		notifier:    notifier,
		leaderboard: leaderboard,
		snapshots:   snapshots,
		logger:      logger,
	}
}

// GetOrCreate returns the live session for the context, creating a waiting
// one if none exists. Used by join/start command semantics.
func (r *Registry) GetOrCreate(contextID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[contextID]; ok {
		return s
	}
	return r.startLocked(r.svc.NewSession(contextID))
}

// Create makes a fresh waiting session and fails if the context already has a
// live one. Used by force-new command semantics.
func (r *Registry) Create(contextID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[contextID]; ok {
		return nil, ErrSessionExists
	}
	return r.startLocked(r.svc.NewSession(contextID)), nil
}

// Get returns the live session for the context.
func (r *Registry) Get(contextID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[contextID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops the session for a context and stops its clock as a safety net
// even if the session already cancelled it on finish.
func (r *Registry) Remove(contextID string) {
	r.mu.Lock()
	s, ok := r.sessions[contextID]
	delete(r.sessions, contextID)
	r.mu.Unlock()
	if ok {
		s.stop()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Restore recreates sessions from persisted snapshots, re-arming turn clocks
// for games that were active when the process stopped.
func (r *Registry) Restore(ctx context.Context) error {
	if r.snapshots == nil {
		return nil
	}
	snaps, err := r.snapshots.LoadSnapshots(ctx)
	if err != nil {
		return err
	}
	var rearm []*Session
	r.mu.Lock()
	for _, snap := range snaps {
		if snap.Phase == domain.PhaseFinished {
			continue
		}
		if _, ok := r.sessions[snap.ContextID]; ok {
			continue
		}
		s := r.startLocked(domain.RestoreSession(snap))
		if snap.Phase == domain.PhaseActive {
			rearm = append(rearm, s)
		}
		r.logger.Info("restored session %s (phase=%s)", snap.ContextID, snap.Phase)
	}
	r.mu.Unlock()
	for _, s := range rearm {
		s.rearm()
	}
	return nil
}

// startLocked registers a session and launches its run goroutine. Callers
// hold r.mu. The removal callback only mutates the map; Session.finish
// handles clock shutdown itself.
func (r *Registry) startLocked(state *domain.Session) *Session {
	s := newSession(state.ContextID, state, r.svc, r.cfg,
		r.notifier, r.leaderboard, r.snapshots, r.logger, r.unregister)
	r.sessions[state.ContextID] = s
	go s.run()
	return s
}

func (r *Registry) unregister(contextID string) {
	r.mu.Lock()
	delete(r.sessions, contextID)
	r.mu.Unlock()
}
