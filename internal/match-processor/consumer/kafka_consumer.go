package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/prediction-league-poc/internal/match-processor/repository"
	"github.com/radieske/prediction-league-poc/pkg/contracts/events"
)

// Snapshot derruba o retrato de classificação após persistir uma partida.
type Snapshot interface {
	Invalidate(ctx context.Context) error
}

// Processor consome atualizações de partidas do Kafka, persiste no banco e
// invalida o snapshot de classificação. Mensagens que não decodificam vão
// pra DLQ em vez de travar o consumo.
type Processor struct {
	Log      *zap.Logger
	Reader   *kafka.Reader
	Repo     *repository.PostgresRepo
	Snapshot Snapshot
	DLQ      *kafka.Writer // opcional

	OnConsumed  func()       // métricas (counter++)
	OnPersisted func()       // métricas
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.MatchUpdate
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message, sending to DLQ", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			p.sendToDLQ(ctx, m)
			continue
		}

		if err := p.Repo.UpsertMatch(ctx, ev); err != nil {
			p.Log.Warn("db upsert failed", zap.Int64("match_id", ev.MatchID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_upsert")
			}
			continue
		}
		if p.OnPersisted != nil {
			p.OnPersisted()
		}

		// Placar ou status mudou: o retrato de classificação está velho.
		if p.Snapshot != nil {
			inCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
			if err := p.Snapshot.Invalidate(inCtx); err != nil {
				p.Log.Warn("snapshot invalidate failed", zap.Error(err))
				if p.OnError != nil {
					p.OnError("cache")
				}
			}
			cancel()
		}
	}
}

func (p *Processor) sendToDLQ(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	wCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.DLQ.WriteMessages(wCtx, kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()}); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("dlq")
		}
	}
}
