package standings

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/prediction-league-poc/internal/league-service/model"
)

// Store é o acesso de leitura que o agregador precisa dos repositórios.
type Store interface {
	ListVisibleMatches(ctx context.Context) ([]model.Match, error)
	ListBetsForMatches(ctx context.Context, matchIDs []int64) ([]model.Bet, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

// Snapshot é o cache do retrato da classificação (Redis). Opcional: nil
// desliga o cache.
type Snapshot interface {
	Get(ctx context.Context, dst any) (bool, error)
	Set(ctx context.Context, v any) error
}

// Service responde a classificação corrente, preferencialmente do snapshot.
// Falha de cache nunca derruba o render: cai pro cálculo direto.
type Service struct {
	Log   *zap.Logger
	Store Store
	Cache Snapshot
	Agg   Aggregator

	OnCacheHit  func() // métricas
	OnCacheMiss func()
}

// Current devolve a classificação ordenada e ranqueada.
func (s *Service) Current(ctx context.Context) ([]Entry, error) {
	if s.Cache != nil {
		var cached []Entry
		ok, err := s.Cache.Get(ctx, &cached)
		if err != nil {
			s.Log.Warn("standings snapshot read failed", zap.Error(err))
		} else if ok {
			if s.OnCacheHit != nil {
				s.OnCacheHit()
			}
			return cached, nil
		}
	}
	if s.OnCacheMiss != nil {
		s.OnCacheMiss()
	}

	matches, err := s.Store.ListVisibleMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	bets, err := s.Store.ListBetsForMatches(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	users, err := s.Store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	entries := s.Agg.Compute(matches, bets, users)

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, entries); err != nil {
			s.Log.Warn("standings snapshot write failed", zap.Error(err))
		}
	}
	return entries, nil
}
