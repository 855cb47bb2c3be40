package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"atlas/internal/store"
)

// registerAdmin wires the suggestion-review and leaderboard maintenance
// endpoints. Approved names land in the corpus store; the in-memory index
// picks them up on the next process start.
func (g *Gateway) registerAdmin(mux *http.ServeMux) {
	mux.HandleFunc("/admin/suggestions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if g.suggestions == nil {
			http.Error(w, "suggestions unavailable", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := adminCtx(r)
		defer cancel()
		items, err := g.suggestions.ListSuggestions(ctx, 100)
		if err != nil {
			g.logger.Error("ws: list suggestions: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(items)
	})

	mux.HandleFunc("/admin/suggestions/approve", func(w http.ResponseWriter, r *http.Request) {
		g.resolveSuggestion(w, r, true)
	})
	mux.HandleFunc("/admin/suggestions/reject", func(w http.ResponseWriter, r *http.Request) {
		g.resolveSuggestion(w, r, false)
	})

	mux.HandleFunc("/admin/leaderboard/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		room := r.URL.Query().Get("room")
		if room == "" {
			http.Error(w, "missing room", http.StatusBadRequest)
			return
		}
		if g.leaderboard == nil {
			http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := adminCtx(r)
		defer cancel()
		if err := g.leaderboard.ResetLeaderboard(ctx, room); err != nil {
			g.logger.Error("ws: reset leaderboard %s: %v", room, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (g *Gateway) resolveSuggestion(w http.ResponseWriter, r *http.Request, approve bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	if g.suggestions == nil {
		http.Error(w, "suggestions unavailable", http.StatusServiceUnavailable)
		return
	}
	ctx, cancel := adminCtx(r)
	defer cancel()
	var err error
	if approve {
		err = g.suggestions.ApproveSuggestion(ctx, id)
	} else {
		err = g.suggestions.RejectSuggestion(ctx, id)
	}
	switch {
	case errors.Is(err, store.ErrSuggestionNotFound):
		http.Error(w, "suggestion not found", http.StatusNotFound)
	case err != nil:
		g.logger.Error("ws: resolve suggestion %s: %v", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func adminCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}
