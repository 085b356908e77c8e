package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/paywallet-ledger/internal/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// redisCommands is the subset of *redis.Client the store uses.
type redisCommands interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisClient connects to Redis and verifies connectivity with PING.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisStore keeps sessions in Redis with the TTL enforced by key expiry, so
// every API replica sees the same sessions.
type RedisStore struct {
	client redisCommands
	ttl    time.Duration
}

func NewRedisStore(client redisCommands, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, accountID int64) (*Session, error) {
	token := uuid.NewString()
	expiresAt := time.Now().Add(s.ttl)

	if err := s.client.Set(ctx, keyPrefix+token, strconv.FormatInt(accountID, 10), s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &Session{Token: token, AccountID: accountID, ExpiresAt: expiresAt}, nil
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (int64, error) {
	value, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("failed to resolve session: %w", err)
	}

	accountID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value %q: %w", value, err)
	}
	return accountID, nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
