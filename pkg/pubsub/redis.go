package pubsub

import (
	"context"
	"fmt"

	"github.com/Alwanly/heroku-ranger/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type redisPublisher struct {
	client *redis.Client
	logger *logger.CanonicalLogger
}

// NewRedisPublisher connects to redis and fails fast when the server is unreachable.
func NewRedisPublisher(ctx context.Context, cfg RedisConfig, log *logger.CanonicalLogger) (Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	log.Info("redis client initialized", logger.String("addr", cfg.Addr))

	return &redisPublisher{client: client, logger: log}, nil
}

// Publish publishes a message to a Redis channel
func (r *redisPublisher) Publish(ctx context.Context, channel string, message string) error {
	if err := r.client.Publish(ctx, channel, message).Err(); err != nil {
		r.logger.WithError(err).Error("failed to publish message to redis", logger.String("channel", channel))
		return err
	}
	return nil
}

// Close closes the Redis connection
func (r *redisPublisher) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.WithError(err).Error("failed to close redis client")
		return err
	}
	return nil
}
