package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// UpdateChannel is the pub/sub channel carrying entity-update notifications
// for downstream consumers (admin UI, cache invalidation).
const UpdateChannel = "campaign-updates"

// UpdateMessage describes a single entity mutation.
type UpdateMessage struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id"`
}

// RedisStore wraps a redis client used for update notifications.
type RedisStore struct {
	Client *redis.Client
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
	}

	// Add OpenTelemetry instrumentation to Redis client
	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// NotifyUpdate publishes an update message for the given entity mutation.
// Notification failures are reported to the caller but must never abort the
// request that triggered them.
func (r *RedisStore) NotifyUpdate(ctx context.Context, entity, action, id string) error {
	if r == nil || r.Client == nil {
		return nil
	}
	payload, err := json.Marshal(UpdateMessage{Entity: entity, Action: action, ID: id})
	if err != nil {
		return fmt.Errorf("marshal update message: %w", err)
	}
	if err := r.Client.Publish(ctx, UpdateChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish update message: %w", err)
	}
	return nil
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
