package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/prediction-league-poc/internal/league-service/bets"
	"github.com/radieske/prediction-league-poc/internal/league-service/dto"
	"github.com/radieske/prediction-league-poc/internal/league-service/model"
	"github.com/radieske/prediction-league-poc/internal/league-service/repo"
	"github.com/radieske/prediction-league-poc/internal/league-service/wildcard"
	"github.com/radieske/prediction-league-poc/pkg/contracts/status"
)

var testNow = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

type memStore struct {
	matches map[int64]model.Match
	bets    map[string]model.Bet
}

func (m *memStore) GetMatch(_ context.Context, id int64) (model.Match, error) {
	mt, ok := m.matches[id]
	if !ok {
		return model.Match{}, repo.ErrNotFound
	}
	return mt, nil
}

func (m *memStore) SetBettable(_ context.Context, id int64, bettable bool) error {
	mt := m.matches[id]
	mt.Bettable = bettable
	m.matches[id] = mt
	return nil
}

func (m *memStore) GetBet(_ context.Context, userID string, matchID int64) (model.Bet, bool, error) {
	b, ok := m.bets[userID]
	return b, ok && b.MatchID == matchID, nil
}

func (m *memStore) ListBetsForUser(_ context.Context, userID string) ([]model.Bet, error) {
	if b, ok := m.bets[userID]; ok {
		return []model.Bet{b}, nil
	}
	return nil, nil
}

func (m *memStore) ListMatchesByID(_ context.Context, ids []int64) ([]model.Match, error) {
	var out []model.Match
	for _, id := range ids {
		if mt, ok := m.matches[id]; ok {
			out = append(out, mt)
		}
	}
	return out, nil
}

func (m *memStore) UpsertBet(_ context.Context, b model.Bet) (model.Bet, error) {
	if b.ID == "" {
		b.ID = "bet-1"
	}
	m.bets[b.UserID] = b
	return b, nil
}

func (m *memStore) ListVisibleMatches(context.Context) ([]model.Match, error) {
	var out []model.Match
	for _, mt := range m.matches {
		out = append(out, mt)
	}
	return out, nil
}

func intp(v int) *int { return &v }

func newTestServer() (*Server, *memStore) {
	store := &memStore{
		matches: map[int64]model.Match{
			1: {ID: 1, Status: status.NotStarted, Kickoff: testNow.Add(time.Hour), Visible: true, Bettable: true},
			2: {ID: 2, Status: status.FirstHalf, HomeGoals: intp(1), AwayGoals: intp(0), Kickoff: testNow.Add(-time.Hour), Visible: true},
		},
		bets: make(map[string]model.Bet),
	}
	svc := bets.NewService(zap.NewNop(), store, wildcard.Tracker{Max: 3}, nil)
	svc.Now = func() time.Time { return testNow }
	return NewServer(zap.NewNop(), nil, svc, store), store
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestPlaceBetOK(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequest(t, srv, http.MethodPost, "/v1/bets",
		`{"user_id":"u1","match_id":1,"predicted_home":2,"predicted_away":1}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var resp dto.BetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.BetID == "" || resp.PredictedHome != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestPlaceBetErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown match", `{"user_id":"u1","match_id":99,"predicted_home":1,"predicted_away":0}`, http.StatusNotFound},
		{"closed match", `{"user_id":"u1","match_id":2,"predicted_home":1,"predicted_away":0}`, http.StatusConflict},
		{"missing user", `{"match_id":1,"predicted_home":1,"predicted_away":0}`, http.StatusBadRequest},
		{"negative goals", `{"user_id":"u1","match_id":1,"predicted_home":-1,"predicted_away":0}`, http.StatusBadRequest},
		{"bad json", `{not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer()
			rec := doRequest(t, srv, http.MethodPost, "/v1/bets", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestGetUserBets(t *testing.T) {
	srv, store := newTestServer()
	store.bets["u1"] = model.Bet{ID: "b1", UserID: "u1", MatchID: 1, PredictedHome: 2, PredictedAway: 1}

	rec := doRequest(t, srv, http.MethodGet, "/v1/users/u1/bets", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.UserBetsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Bets) != 1 {
		t.Errorf("len(bets) = %d, want 1", len(resp.Bets))
	}
	if resp.WildcardsRemaining != 3 {
		t.Errorf("wildcards_remaining = %d, want 3", resp.WildcardsRemaining)
	}
}

func TestMatchesByPhase(t *testing.T) {
	matches := []model.Match{
		{ID: 1, Status: status.FullTime},
		{ID: 2, Status: status.FirstHalf},
		{ID: 3, Status: status.NotStarted},
		{ID: 4, Status: status.Interrupted},
	}

	resp := MatchesByPhase(matches)

	if len(resp.Ongoing) != 2 {
		t.Errorf("len(ongoing) = %d, want 2 (interrupted counts as live)", len(resp.Ongoing))
	}
	if len(resp.Scheduled) != 1 || resp.Scheduled[0].MatchID != 3 {
		t.Errorf("scheduled = %+v, want match 3", resp.Scheduled)
	}
	if len(resp.Finished) != 1 || resp.Finished[0].MatchID != 1 {
		t.Errorf("finished = %+v, want match 1", resp.Finished)
	}
}
