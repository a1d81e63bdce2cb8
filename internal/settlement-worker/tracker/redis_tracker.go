package tracker

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// KeyStatus é o hash betID -> último status publicado
const KeyStatus = "settlement:status"

// RedisTracker guarda o último status conhecido de cada aposta no Redis, pra
// que o worker só publique mudanças mesmo depois de reiniciar
type RedisTracker struct {
	Client *redis.Client
	Key    string
}

func NewRedisTracker(c *redis.Client) *RedisTracker {
	return &RedisTracker{Client: c, Key: KeyStatus}
}

func (t *RedisTracker) All(ctx context.Context) (map[string]string, error) {
	return t.Client.HGetAll(ctx, t.Key).Result()
}

// Apply grava os status novos e remove as apostas que sumiram, numa transação
func (t *RedisTracker) Apply(ctx context.Context, set map[string]string, remove []string) error {
	if len(set) == 0 && len(remove) == 0 {
		return nil
	}
	_, err := t.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if len(set) > 0 {
			pairs := make([]any, 0, 2*len(set))
			for id, st := range set {
				pairs = append(pairs, id, st)
			}
			p.HSet(ctx, t.Key, pairs...)
		}
		if len(remove) > 0 {
			p.HDel(ctx, t.Key, remove...)
		}
		return nil
	})
	return err
}

func (t *RedisTracker) Reset(ctx context.Context) error {
	return t.Client.Del(ctx, t.Key).Err()
}
