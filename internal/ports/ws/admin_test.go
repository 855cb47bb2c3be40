package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"atlas/internal/ports"
)

func TestAdminSuggestionReview(t *testing.T) {
	f := newGatewayFixture(t)
	f.suggestions.AddSuggestion(context.Background(), "Atlantis", "p1")
	f.suggestions.AddSuggestion(context.Background(), "Mordor", "p2")

	resp, err := http.Get(f.server.URL + "/admin/suggestions")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var items []ports.Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Atlantis" {
		t.Fatalf("unexpected list %+v", items)
	}

	resp, err = http.Post(f.server.URL+"/admin/suggestions/approve?id="+items[0].ID, "", nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("approve status = %d", resp.StatusCode)
	}

	resp, err = http.Post(f.server.URL+"/admin/suggestions/reject?id=missing", "", nil)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("reject missing status = %d", resp.StatusCode)
	}

	left, _ := f.suggestions.ListSuggestions(context.Background(), 0)
	if len(left) != 1 || left[0].Name != "Mordor" {
		t.Fatalf("unexpected remaining %+v", left)
	}
}

func TestAdminLeaderboardReset(t *testing.T) {
	f := newGatewayFixture(t)
	f.leaderboard.RecordWin(context.Background(), "room-9", "p1")

	resp, err := http.Post(f.server.URL+"/admin/leaderboard/reset?room=room-9", "", nil)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("reset status = %d", resp.StatusCode)
	}
	rows, _ := f.leaderboard.TopWinners(context.Background(), "room-9", 10)
	if len(rows) != 0 {
		t.Fatalf("leaderboard not cleared: %+v", rows)
	}

	if resp, err = http.Get(f.server.URL + "/admin/leaderboard/reset?room=room-9"); err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want 405", resp.StatusCode)
	}
}
