package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "standings:current"

// StandingsCache guarda o retrato JSON da classificação no Redis.
// O TTL é um teto; escritas (palpite aceito, partida atualizada) invalidam
// explicitamente antes dele vencer.
type StandingsCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(c *redis.Client, ttl time.Duration) *StandingsCache {
	return &StandingsCache{Client: c, TTL: ttl}
}

func (c *StandingsCache) Get(ctx context.Context, dst any) (bool, error) {
	b, err := c.Client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *StandingsCache) Set(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, snapshotKey, b, c.TTL).Err()
}

// Invalidate derruba o snapshot após qualquer escrita que mude a conta.
func (c *StandingsCache) Invalidate(ctx context.Context) error {
	return c.Client.Del(ctx, snapshotKey).Err()
}
