package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"userlist/internal/application/common"
)

const usersListKey = "users:list"

type RedisConfig struct {
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisService caches the rendered user directory. A service with a nil
// client is a valid, disabled cache: reads miss and writes are dropped.
type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(ctx context.Context, cfg RedisConfig, logger *zap.Logger) *RedisService {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opt *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			logger.Warn("invalid REDIS_URL, cache disabled", zap.Error(err))
			return &RedisService{}
		}
		opt = parsed
	case cfg.Host != "":
		port := cfg.Port
		if port == "" {
			port = "6379"
		}
		opt = &redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	default:
		logger.Info("redis not configured, cache disabled")
		return &RedisService{}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis connection failed, cache disabled", zap.String("addr", opt.Addr), zap.Error(err))
		_ = client.Close()
		return &RedisService{}
	}

	logger.Info("connected to redis", zap.String("addr", opt.Addr))
	return NewRedisServiceWithClient(client, cfg.TTL)
}

func NewRedisServiceWithClient(client *redis.Client, ttl time.Duration) *RedisService {
	return &RedisService{client: client, ttl: ttl}
}

func (r *RedisService) Enabled() bool {
	return r != nil && r.client != nil
}

// GetUsers reports ok=false on a cache miss.
func (r *RedisService) GetUsers(ctx context.Context) ([]*common.UserResult, bool, error) {
	if !r.Enabled() {
		return nil, false, nil
	}
	raw, err := r.client.Get(ctx, usersListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", usersListKey, err)
	}

	var users []*common.UserResult
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, false, fmt.Errorf("decode cached users: %w", err)
	}
	return users, true, nil
}

func (r *RedisService) SetUsers(ctx context.Context, users []*common.UserResult) error {
	if !r.Enabled() {
		return nil
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, usersListKey, raw, r.ttl).Err()
}

func (r *RedisService) InvalidateUsers(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Del(ctx, usersListKey).Err()
}

func (r *RedisService) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Close()
}
