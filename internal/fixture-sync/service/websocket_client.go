package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/prediction-league-poc/internal/fixture-sync/publisher"
	"github.com/radieske/prediction-league-poc/pkg/contracts/events"
)

// WSClient consome atualizações de fixtures do provedor via WebSocket e
// repassa cada uma ao tópico Kafka. O worker não interpreta o evento; quem
// decide fechamento de palpites e visibilidade é o match-processor.
type WSClient struct {
	URL       string
	Log       *zap.Logger
	Publisher *publisher.KafkaPublisher
}

const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

// Start mantém a conexão com o provedor, reconectando com backoff
// exponencial limitado. Só retorna com o contexto cancelado.
func (c *WSClient) Start(ctx context.Context) {
	wait := reconnectBase
	for {
		err := c.connectAndListen(ctx)
		if ctx.Err() != nil {
			c.Log.Info("context canceled, stopping WS client")
			return
		}
		if err != nil {
			c.Log.Warn("provider connection lost",
				zap.Duration("retry_in", wait), zap.Error(err))
		} else {
			// fechamento limpo: reconecta do zero sem penalizar o backoff
			wait = reconnectBase
		}

		select {
		case <-ctx.Done():
			c.Log.Info("context canceled, stopping WS client")
			return
		case <-time.After(wait):
		}
		wait *= 2
		if wait > reconnectMax {
			wait = reconnectMax
		}
	}
}

func (c *WSClient) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	c.Log.Info("connected to fixture provider WS", zap.String("url", c.URL))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var update events.MatchUpdate
		if err := json.Unmarshal(message, &update); err != nil {
			c.Log.Warn("dropping invalid provider message", zap.Error(err))
			continue
		}
		if update.MatchID <= 0 {
			c.Log.Warn("dropping provider message without match id")
			continue
		}

		// Falha de publicação não derruba a conexão; o snapshot seguinte do
		// provedor cobre o evento perdido.
		if err := c.Publisher.Publish(ctx, update); err != nil {
			c.Log.Error("failed to publish to Kafka",
				zap.Int64("match_id", update.MatchID), zap.Error(err))
		}
	}
}
