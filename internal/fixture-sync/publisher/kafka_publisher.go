package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/prediction-league-poc/pkg/contracts/events"
)

// KafkaPublisher envia os eventos de partida do provedor para o tópico de
// atualizações. A chave de toda mensagem é o match_id, então as atualizações
// de uma partida ficam ordenadas dentro da partição.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, env string, log *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not provided")
	}

	// O compose local sobe um broker só e sem auto-criação confiável; os
	// demais ambientes já têm os tópicos provisionados.
	if env == "local" || env == "dev" {
		if err := ensureTopic(brokers[0], topic, log); err != nil {
			return nil, fmt.Errorf("ensure topic %s: %w", topic, err)
		}
	}

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           10 * time.Second,
		},
		log: log,
	}, nil
}

// ensureTopic cria o tópico via controller do cluster, com partição e
// replicação de single-broker. Tópico já existente não é erro.
func ensureTopic(broker string, topic string, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("resolve controller: %w", err)
	}

	cconn, err := kafka.DialContext(ctx, "tcp",
		net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer cconn.Close()

	err = cconn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	switch {
	case err == nil:
		log.Info("kafka topic created", zap.String("topic", topic))
	case strings.Contains(err.Error(), "already exists"):
		// nada a fazer
	default:
		return err
	}
	return nil
}

// Publish serializa o evento e grava no tópico, chaveado pelo match_id.
func (p *KafkaPublisher) Publish(ctx context.Context, e events.MatchUpdate) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal match update: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.MatchID, 10)),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		p.log.Error("failed to publish match update",
			zap.Int64("match_id", e.MatchID), zap.Error(err))
		return err
	}

	p.log.Debug("published match update",
		zap.Int64("match_id", e.MatchID),
		zap.String("status", e.Status),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
