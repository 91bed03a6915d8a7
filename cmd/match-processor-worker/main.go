package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	lcache "github.com/radieske/prediction-league-poc/internal/league-service/cache"
	"github.com/radieske/prediction-league-poc/internal/match-processor/consumer"
	"github.com/radieske/prediction-league-poc/internal/match-processor/repository"
	sharedcache "github.com/radieske/prediction-league-poc/internal/shared/cache"
	"github.com/radieske/prediction-league-poc/internal/shared/config"
	"github.com/radieske/prediction-league-poc/internal/shared/db"
	skafka "github.com/radieske/prediction-league-poc/internal/shared/kafka"
	"github.com/radieske/prediction-league-poc/internal/shared/logger"
	"github.com/radieske/prediction-league-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// O snapshot aqui só é invalidado; o TTL fica por conta de quem grava.
	snapshot := lcache.New(redisClient, cfg.StandingsTTL)
	repo := repository.NewPostgresRepo(pg)

	// Consumer Kafka (consumer group match-processor)
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  "match-processor",
		Topic:    cfg.TopicMatchUpdates,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// DLQ para mensagens que não decodificam
	var dlqWriter *kafka.Writer
	if cfg.TopicMatchUpdatesDLQ != "" {
		dlqWriter = skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchUpdatesDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_proc_messages_consumed_total", Help: "mensagens consumidas"})
	persisted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_proc_db_writes_total", Help: "partidas gravadas no banco"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "match_proc_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persisted, errorsBy)

	proc := &consumer.Processor{
		Log:      log,
		Reader:   reader,
		Repo:     repo,
		Snapshot: snapshot,
		DLQ:      dlqWriter,

		OnConsumed:  func() { consumed.Inc() },
		OnPersisted: func() { persisted.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Métricas e health: saudável só com Postgres e Redis alcançáveis.
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("match-processor started", zap.String("topic", cfg.TopicMatchUpdates))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("match-processor stopped")
}
