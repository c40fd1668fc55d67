package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parilka/internal/config"
	"parilka/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisMembershipCache кэш ответов membership-service и счетчики
// ограничения частоты входа.
type RedisMembershipCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	return redis.NewClient(options)
}

func NewRedisMembershipCache(client *redis.Client, ttl time.Duration) *RedisMembershipCache {
	return &RedisMembershipCache{
		client: client,
		ttl:    ttl,
	}
}

// GetMembership возвращает кэшированный абонемент или nil при промахе.
func (r *RedisMembershipCache) GetMembership(ctx context.Context, userID string) (*models.Membership, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	key := membershipKey(userID)
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership from redis: %w", err)
	}

	var membership models.Membership
	if err := json.Unmarshal([]byte(val), &membership); err != nil {
		return nil, fmt.Errorf("failed to unmarshal membership: %w", err)
	}
	return &membership, nil
}

func (r *RedisMembershipCache) SetMembership(ctx context.Context, userID string, m *models.Membership) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal membership: %w", err)
	}
	if err := r.client.Set(ctx, membershipKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set membership in redis: %w", err)
	}
	return nil
}

// CheckRateLimit инкрементирует счетчик key и сообщает, уложился ли
// вызывающий в limit за окно window.
func (r *RedisMembershipCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	redisKey := fmt.Sprintf("rate_limit:%s", key)
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, redisKey, window)
	}

	return count <= int64(limit), nil
}

func membershipKey(userID string) string {
	return fmt.Sprintf("membership:%s", userID)
}

// Ping проверяет соединение с Redis.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
