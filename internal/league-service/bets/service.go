package bets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/prediction-league-poc/internal/league-service/model"
	"github.com/radieske/prediction-league-poc/internal/league-service/repo"
	"github.com/radieske/prediction-league-poc/internal/league-service/wildcard"
	"github.com/radieske/prediction-league-poc/pkg/contracts/status"
)

var (
	// ErrMatchNotFound: o match_id informado não existe.
	ErrMatchNotFound = errors.New("match not found")
	// ErrBetsClosed: a partida já começou ou a janela foi fechada.
	ErrBetsClosed = errors.New("bets are closed for this match")
	// ErrWildcardsExhausted: o usuário já travou todos os curingas.
	ErrWildcardsExhausted = errors.New("no wildcards remaining")
)

// Store é o acesso a dados que a validação de palpites precisa.
type Store interface {
	GetMatch(ctx context.Context, matchID int64) (model.Match, error)
	SetBettable(ctx context.Context, matchID int64, bettable bool) error
	GetBet(ctx context.Context, userID string, matchID int64) (model.Bet, bool, error)
	ListBetsForUser(ctx context.Context, userID string) ([]model.Bet, error)
	ListMatchesByID(ctx context.Context, matchIDs []int64) ([]model.Match, error)
	UpsertBet(ctx context.Context, b model.Bet) (model.Bet, error)
}

// Invalidator derruba o snapshot de classificação após uma escrita.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service valida e grava palpites. A sequência ler-validar-gravar roda em
// seção crítica por (user_id, match_id); submissões de chaves diferentes
// não se bloqueiam.
type Service struct {
	Log       *zap.Logger
	Store     Store
	Wildcards wildcard.Tracker
	Snapshot  Invalidator      // opcional
	Now       func() time.Time // injetável nos testes

	OnAccepted func()             // métricas
	OnRejected func(reason string) // métricas, por motivo

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(log *zap.Logger, store Store, wc wildcard.Tracker, snap Invalidator) *Service {
	return &Service{
		Log:       log,
		Store:     store,
		Wildcards: wc,
		Snapshot:  snap,
		Now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockFor devolve o mutex da chave (user, match). Os mutexes não são
// liberados do mapa; a cardinalidade é limitada por usuários x partidas.
func (s *Service) lockFor(userID string, matchID int64) *sync.Mutex {
	key := fmt.Sprintf("%s:%d", userID, matchID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *Service) reject(reason string, err error) error {
	if s.OnRejected != nil {
		s.OnRejected(reason)
	}
	return err
}

// Submit cria ou atualiza o palpite de um usuário pra uma partida.
//
// Regras, nesta ordem: partida existe; janela aberta; início ainda no
// futuro (flag velha é corrigida no banco antes de rejeitar); reenvio
// idêntico é no-op; ligar curinga exige orçamento. A gravação é um upsert
// atômico que preserva a identidade do palpite.
func (s *Service) Submit(ctx context.Context, userID string, matchID int64, predHome, predAway int, useWildcard bool) (model.Bet, error) {
	l := s.lockFor(userID, matchID)
	l.Lock()
	defer l.Unlock()

	m, err := s.Store.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Bet{}, s.reject("not_found", ErrMatchNotFound)
		}
		return model.Bet{}, s.reject("repo", fmt.Errorf("get match: %w", err))
	}

	if !m.Bettable {
		return model.Bet{}, s.reject("closed", ErrBetsClosed)
	}

	// Flag bettable pode estar velha se o sync ainda não rodou. Corrige no
	// banco antes de rejeitar, pra próxima leitura já vir travada.
	if !s.Now().Before(m.Kickoff) {
		if err := s.Store.SetBettable(ctx, matchID, false); err != nil {
			s.Log.Warn("failed to self-heal bettable flag",
				zap.Int64("match_id", matchID), zap.Error(err))
		}
		return model.Bet{}, s.reject("closed", ErrBetsClosed)
	}

	existing, exists, err := s.Store.GetBet(ctx, userID, matchID)
	if err != nil {
		return model.Bet{}, s.reject("repo", fmt.Errorf("get bet: %w", err))
	}

	// Reenvio idêntico: devolve o que já está gravado, sem escrita nova e
	// sem recontagem de curinga.
	if exists &&
		existing.PredictedHome == predHome &&
		existing.PredictedAway == predAway &&
		existing.UseWildcard == useWildcard {
		return existing, nil
	}

	turningWildcardOn := useWildcard && !(exists && existing.UseWildcard)
	if turningWildcardOn {
		ok, err := s.canUseWildcard(ctx, userID, matchID)
		if err != nil {
			return model.Bet{}, s.reject("repo", err)
		}
		if !ok {
			return model.Bet{}, s.reject("wildcards", ErrWildcardsExhausted)
		}
	}

	bet := model.Bet{
		UserID:        userID,
		MatchID:       matchID,
		PredictedHome: predHome,
		PredictedAway: predAway,
		UseWildcard:   useWildcard,
	}
	if exists {
		bet.ID = existing.ID
	}

	saved, err := s.Store.UpsertBet(ctx, bet)
	if err != nil {
		return model.Bet{}, s.reject("repo", fmt.Errorf("upsert bet: %w", err))
	}

	if s.Snapshot != nil {
		if err := s.Snapshot.Invalidate(ctx); err != nil {
			s.Log.Warn("standings snapshot invalidate failed", zap.Error(err))
		}
	}
	if s.OnAccepted != nil {
		s.OnAccepted()
	}
	return saved, nil
}

// canUseWildcard apura o orçamento sobre todos os palpites do usuário,
// excluindo o da partida em edição.
func (s *Service) canUseWildcard(ctx context.Context, userID string, matchID int64) (bool, error) {
	userBets, statusByMatch, err := s.userBetsWithStatuses(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.Wildcards.CanUse(userBets, statusByMatch, matchID), nil
}

// UserBets devolve os palpites do usuário e quantos curingas ele ainda tem.
func (s *Service) UserBets(ctx context.Context, userID string) ([]model.Bet, int, error) {
	userBets, statusByMatch, err := s.userBetsWithStatuses(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return userBets, s.Wildcards.Remaining(userBets, statusByMatch), nil
}

func (s *Service) userBetsWithStatuses(ctx context.Context, userID string) ([]model.Bet, map[int64]status.Status, error) {
	userBets, err := s.Store.ListBetsForUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list user bets: %w", err)
	}
	ids := make([]int64, 0, len(userBets))
	for _, b := range userBets {
		ids = append(ids, b.MatchID)
	}
	matches, err := s.Store.ListMatchesByID(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("list matches: %w", err)
	}
	statusByMatch := make(map[int64]status.Status, len(matches))
	for _, m := range matches {
		statusByMatch[m.ID] = m.Status
	}
	return userBets, statusByMatch, nil
}
