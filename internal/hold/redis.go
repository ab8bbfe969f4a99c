package hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const scanBatch = 100

type RedisRepository struct {
	client    *redis.Client
	namespace string
	now       func() time.Time
	log       *zap.Logger
}

func NewRedisRepository(client *redis.Client, namespace string, log *zap.Logger) *RedisRepository {
	return &RedisRepository{
		client:    client,
		namespace: namespace,
		now:       time.Now,
		log:       logger.OrNop(log),
	}
}

func (r *RedisRepository) Hold(ctx context.Context, lines []domain.CartLine, tableRef string) (string, error) {
	held, err := newHeld(lines, tableRef, r.now())
	if err != nil {
		return "", err
	}
	data, err := encode(held)
	if err != nil {
		return "", err
	}

	// no TTL: held carts live until restored or deleted
	if err := r.client.Set(ctx, holdKey(r.namespace, held.ID), data, 0).Err(); err != nil {
		return "", fmt.Errorf("redis set failed: %w", err)
	}
	return held.ID, nil
}

func (r *RedisRepository) List(ctx context.Context) ([]domain.HeldTransaction, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, keyPrefix(r.namespace)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan failed: %w", err)
	}

	held := make([]domain.HeldTransaction, 0, len(keys))
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		values, err := r.client.MGet(ctx, keys[start:end]...).Result()
		if err != nil {
			return nil, fmt.Errorf("redis mget failed: %w", err)
		}
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				continue // deleted between scan and mget
			}
			h, err := decode([]byte(raw))
			if err != nil {
				r.log.Debug("skipping held entry", zap.String("key", keys[start+i]), zap.Error(err))
				continue
			}
			held = append(held, *h)
		}
	}

	sortNewestFirst(held)
	return held, nil
}

func (r *RedisRepository) Retrieve(ctx context.Context, id string) (*domain.HeldTransaction, error) {
	data, err := r.client.Get(ctx, holdKey(r.namespace, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	h, err := decode(data)
	if err != nil {
		r.log.Debug("held entry unreadable", zap.String("hold_id", id), zap.Error(err))
		return nil, nil
	}
	return h, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, holdKey(r.namespace, id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
