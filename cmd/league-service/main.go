package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/prediction-league-poc/internal/league-service/bets"
	lcache "github.com/radieske/prediction-league-poc/internal/league-service/cache"
	lhttp "github.com/radieske/prediction-league-poc/internal/league-service/http"
	"github.com/radieske/prediction-league-poc/internal/league-service/repo"
	"github.com/radieske/prediction-league-poc/internal/league-service/standings"
	"github.com/radieske/prediction-league-poc/internal/league-service/wildcard"
	sharedcache "github.com/radieske/prediction-league-poc/internal/shared/cache"
	"github.com/radieske/prediction-league-poc/internal/shared/config"
	"github.com/radieske/prediction-league-poc/internal/shared/db"
	"github.com/radieske/prediction-league-poc/internal/shared/logger"
	"github.com/radieske/prediction-league-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Métricas Prometheus da API
	betsAccepted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "league_bets_accepted_total", Help: "palpites aceitos"})
	betsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "league_bets_rejected_total", Help: "palpites rejeitados por motivo"}, []string{"reason"})
	snapshotHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "league_standings_snapshot_hits_total", Help: "standings servidos do snapshot"})
	snapshotMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "league_standings_snapshot_misses_total", Help: "standings recalculados"})
	prometheus.MustRegister(betsAccepted, betsRejected, snapshotHits, snapshotMisses)

	// deps
	repository := repo.NewPostgres(pg)
	snapshot := lcache.New(rdb, cfg.StandingsTTL)
	tracker := wildcard.Tracker{Max: cfg.MaxWildcards}

	standingsSvc := &standings.Service{
		Log:   log,
		Store: repository,
		Cache: snapshot,
		Agg: standings.Aggregator{
			Log:        log,
			Wildcards:  tracker,
			FormWindow: cfg.FormWindow,
		},
		OnCacheHit:  func() { snapshotHits.Inc() },
		OnCacheMiss: func() { snapshotMisses.Inc() },
	}

	betsSvc := bets.NewService(log, repository, tracker, snapshot)
	betsSvc.OnAccepted = func() { betsAccepted.Inc() }
	betsSvc.OnRejected = func(reason string) { betsRejected.WithLabelValues(reason).Inc() }

	// HTTP público
	api := lhttp.NewServer(log, standingsSvc, betsSvc, repository)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	log.Info("league-service listening",
		zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)),
		zap.Int("max_wildcards", cfg.MaxWildcards),
		zap.Int("form_window", cfg.FormWindow),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
