package bets

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/prediction-league-poc/internal/league-service/model"
	"github.com/radieske/prediction-league-poc/internal/league-service/repo"
	"github.com/radieske/prediction-league-poc/internal/league-service/wildcard"
	"github.com/radieske/prediction-league-poc/pkg/contracts/status"
)

var frozenNow = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

// fakeStore guarda partidas e palpites em memória e conta escritas.
type fakeStore struct {
	matches map[int64]model.Match
	bets    map[string]model.Bet

	upserts     int
	setBettable []int64
	nextBetID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matches: make(map[int64]model.Match),
		bets:    make(map[string]model.Bet),
	}
}

func betKey(userID string, matchID int64) string {
	return fmt.Sprintf("%s:%d", userID, matchID)
}

func (f *fakeStore) GetMatch(_ context.Context, matchID int64) (model.Match, error) {
	m, ok := f.matches[matchID]
	if !ok {
		return model.Match{}, repo.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) SetBettable(_ context.Context, matchID int64, bettable bool) error {
	m, ok := f.matches[matchID]
	if !ok {
		return repo.ErrNotFound
	}
	m.Bettable = bettable
	f.matches[matchID] = m
	f.setBettable = append(f.setBettable, matchID)
	return nil
}

func (f *fakeStore) GetBet(_ context.Context, userID string, matchID int64) (model.Bet, bool, error) {
	b, ok := f.bets[betKey(userID, matchID)]
	return b, ok, nil
}

func (f *fakeStore) ListBetsForUser(_ context.Context, userID string) ([]model.Bet, error) {
	var out []model.Bet
	for _, b := range f.bets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListMatchesByID(_ context.Context, matchIDs []int64) ([]model.Match, error) {
	var out []model.Match
	for _, id := range matchIDs {
		if m, ok := f.matches[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertBet(_ context.Context, b model.Bet) (model.Bet, error) {
	f.upserts++
	if b.ID == "" {
		f.nextBetID++
		b.ID = fmt.Sprintf("bet-%d", f.nextBetID)
	}
	b.UpdatedAt = frozenNow
	f.bets[betKey(b.UserID, b.MatchID)] = b
	return b, nil
}

func (f *fakeStore) addMatch(id int64, st status.Status, bettable bool, kickoff time.Time) {
	f.matches[id] = model.Match{
		ID:       id,
		HomeTeam: "Home",
		AwayTeam: "Away",
		Status:   st,
		Kickoff:  kickoff,
		Visible:  true,
		Bettable: bettable,
	}
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return nil
}

func newTestService(store *fakeStore) (*Service, *fakeInvalidator) {
	inv := &fakeInvalidator{}
	svc := NewService(zap.NewNop(), store, wildcard.Tracker{Max: 3}, inv)
	svc.Now = func() time.Time { return frozenNow }
	return svc, inv
}

func TestSubmitMatchNotFound(t *testing.T) {
	svc, _ := newTestService(newFakeStore())

	_, err := svc.Submit(context.Background(), "u1", 99, 1, 0, false)
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("err = %v, want ErrMatchNotFound", err)
	}
}

func TestSubmitClosedMatch(t *testing.T) {
	store := newFakeStore()
	store.addMatch(1, status.FirstHalf, false, frozenNow.Add(-time.Hour))
	svc, inv := newTestService(store)

	_, err := svc.Submit(context.Background(), "u1", 1, 1, 0, false)
	if !errors.Is(err, ErrBetsClosed) {
		t.Fatalf("err = %v, want ErrBetsClosed", err)
	}
	if store.upserts != 0 {
		t.Errorf("upserts = %d, want 0", store.upserts)
	}
	if inv.calls != 0 {
		t.Errorf("invalidate calls = %d, want 0", inv.calls)
	}
}

// Flag bettable atrasada: a partida já começou mas o sync ainda não fechou a
// janela. A submissão rejeita e corrige a flag no armazenamento.
func TestSubmitStaleBettableFlagSelfHeals(t *testing.T) {
	store := newFakeStore()
	store.addMatch(1, status.NotStarted, true, frozenNow.Add(-time.Minute))
	svc, _ := newTestService(store)

	_, err := svc.Submit(context.Background(), "u1", 1, 1, 0, false)
	if !errors.Is(err, ErrBetsClosed) {
		t.Fatalf("err = %v, want ErrBetsClosed", err)
	}
	if len(store.setBettable) != 1 || store.setBettable[0] != 1 {
		t.Errorf("setBettable calls = %v, want [1]", store.setBettable)
	}
	if store.matches[1].Bettable {
		t.Error("match still bettable after self-heal")
	}
}

// Início exatamente agora também fecha a janela.
func TestSubmitAtKickoffIsClosed(t *testing.T) {
	store := newFakeStore()
	store.addMatch(1, status.NotStarted, true, frozenNow)
	svc, _ := newTestService(store)

	_, err := svc.Submit(context.Background(), "u1", 1, 1, 0, false)
	if !errors.Is(err, ErrBetsClosed) {
		t.Fatalf("err = %v, want ErrBetsClosed", err)
	}
}

func TestSubmitCreatesAndUpdates(t *testing.T) {
	store := newFakeStore()
	store.addMatch(1, status.NotStarted, true, frozenNow.Add(time.Hour))
	svc, inv := newTestService(store)
	ctx := context.Background()

	created, err := svc.Submit(ctx, "u1", 1, 2, 1, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created bet has empty ID")
	}

	updated, err := svc.Submit(ctx, "u1", 1, 3, 0, false)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("update changed bet ID: %s -> %s", created.ID, updated.ID)
	}
	if updated.PredictedHome != 3 || updated.PredictedAway != 0 {
		t.Errorf("updated prediction = %dx%d, want 3x0",
			updated.PredictedHome, updated.PredictedAway)
	}
	if store.upserts != 2 {
		t.Errorf("upserts = %d, want 2", store.upserts)
	}
	if inv.calls != 2 {
		t.Errorf("invalidate calls = %d, want 2", inv.calls)
	}
}

// Reenvio byte a byte igual é no-op: sem escrita, sem invalidação, sem erro.
func TestSubmitIdenticalResubmissionIsNoOp(t *testing.T) {
	store := newFakeStore()
	store.addMatch(1, status.NotStarted, true, frozenNow.Add(time.Hour))
	svc, inv := newTestService(store)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "u1", 1, 2, 1, true)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second, err := svc.Submit(ctx, "u1", 1, 2, 1, true)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("resubmit returned different bet: %s vs %s", second.ID, first.ID)
	}
	if store.upserts != 1 {
		t.Errorf("upserts = %d, want 1 (resubmission must not write)", store.upserts)
	}
	if inv.calls != 1 {
		t.Errorf("invalidate calls = %d, want 1", inv.calls)
	}
}

func TestSubmitWildcardBudgetExhausted(t *testing.T) {
	store := newFakeStore()
	// Três curingas já travados em partidas encerradas.
	for i := int64(1); i <= 3; i++ {
		store.addMatch(i, status.FullTime, false, frozenNow.Add(-time.Duration(i)*24*time.Hour))
		store.bets[betKey("u1", i)] = model.Bet{
			ID: fmt.Sprintf("old-%d", i), UserID: "u1", MatchID: i,
			PredictedHome: 1, UseWildcard: true,
		}
	}
	store.addMatch(10, status.NotStarted, true, frozenNow.Add(time.Hour))
	svc, _ := newTestService(store)

	_, err := svc.Submit(context.Background(), "u1", 10, 1, 0, true)
	if !errors.Is(err, ErrWildcardsExhausted) {
		t.Fatalf("err = %v, want ErrWildcardsExhausted", err)
	}

	// Sem curinga o palpite entra normalmente.
	if _, err := svc.Submit(context.Background(), "u1", 10, 1, 0, false); err != nil {
		t.Fatalf("submit without wildcard: %v", err)
	}
}

// Curinga em partida agendada não travou: pode ser movido pra outro palpite.
func TestSubmitWildcardOnScheduledMatchDoesNotLock(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 3; i++ {
		store.addMatch(i, status.NotStarted, true, frozenNow.Add(time.Duration(i)*time.Hour))
		store.bets[betKey("u1", i)] = model.Bet{
			ID: fmt.Sprintf("old-%d", i), UserID: "u1", MatchID: i,
			PredictedHome: 1, UseWildcard: true,
		}
	}
	store.addMatch(10, status.NotStarted, true, frozenNow.Add(time.Hour))
	svc, _ := newTestService(store)

	if _, err := svc.Submit(context.Background(), "u1", 10, 1, 0, true); err != nil {
		t.Fatalf("submit: %v", err)
	}
}

// Editar um palpite que já usa curinga não reconsome o orçamento.
func TestSubmitEditKeepsWildcardWithoutRecount(t *testing.T) {
	store := newFakeStore()
	// Dois travados mais o palpite em edição: contagem ingênua estouraria.
	for i := int64(1); i <= 2; i++ {
		store.addMatch(i, status.FullTime, false, frozenNow.Add(-24*time.Hour))
		store.bets[betKey("u1", i)] = model.Bet{
			ID: fmt.Sprintf("old-%d", i), UserID: "u1", MatchID: i,
			PredictedHome: 1, UseWildcard: true,
		}
	}
	store.addMatch(10, status.NotStarted, true, frozenNow.Add(time.Hour))
	store.bets[betKey("u1", 10)] = model.Bet{
		ID: "editing", UserID: "u1", MatchID: 10,
		PredictedHome: 1, UseWildcard: true,
	}
	svc, _ := newTestService(store)

	saved, err := svc.Submit(context.Background(), "u1", 10, 2, 2, true)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if saved.ID != "editing" {
		t.Errorf("edit changed bet ID to %s", saved.ID)
	}
}

func TestUserBets(t *testing.T) {
	store := newFakeStore()
	store.addMatch(1, status.FullTime, false, frozenNow.Add(-24*time.Hour))
	store.addMatch(2, status.NotStarted, true, frozenNow.Add(time.Hour))
	store.bets[betKey("u1", 1)] = model.Bet{
		ID: "b1", UserID: "u1", MatchID: 1, UseWildcard: true,
	}
	store.bets[betKey("u1", 2)] = model.Bet{
		ID: "b2", UserID: "u1", MatchID: 2, UseWildcard: true,
	}
	svc, _ := newTestService(store)

	userBets, remaining, err := svc.UserBets(context.Background(), "u1")
	if err != nil {
		t.Fatalf("UserBets: %v", err)
	}
	if len(userBets) != 2 {
		t.Errorf("len(bets) = %d, want 2", len(userBets))
	}
	// Só o curinga da partida encerrada travou.
	if remaining != 2 {
		t.Errorf("remaining = %d, want 2", remaining)
	}
}
