package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/camp-registration/internal/config"
)

const webhookDedupTTL = 72 * time.Hour

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// MarkWebhookEvent records a provider event id and reports whether it was
// seen before. Used for webhook replay protection; when Redis is down the
// event is treated as new so processing is never blocked.
func (r *Redis) MarkWebhookEvent(ctx context.Context, provider, eventID string) (seen bool) {
	if r == nil || r.Client == nil || eventID == "" {
		return false
	}
	key := "webhook:" + provider + ":" + eventID
	set, err := r.Client.SetNX(ctx, key, 1, webhookDedupTTL).Result()
	if err != nil {
		return false
	}
	return !set
}

// UnmarkWebhookEvent forgets a provider event id so the provider's retry is
// processed again after a failed delivery.
func (r *Redis) UnmarkWebhookEvent(ctx context.Context, provider, eventID string) {
	if r == nil || r.Client == nil || eventID == "" {
		return
	}
	r.Client.Del(ctx, "webhook:"+provider+":"+eventID)
}
