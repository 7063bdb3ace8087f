package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/logger"
)

const keyPrefix = "authdemo:session:"

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, ttl: ttl}
}

// Connect dials addr and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	logger.Get().Info().Str("addr", addr).Msg("redis connected")
	return rdb, nil
}

func (rs *RedisStore) key(id string) string {
	return keyPrefix + id
}

func (rs *RedisStore) Create(ctx context.Context, user models.SessionUser) (string, error) {
	log := logger.Get()
	data, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := rs.redis.Set(ctx, rs.key(id), data, rs.ttl).Err(); err != nil {
		log.Error().Err(err).Msg("failed on redis.Set")
		return "", err
	}
	log.Debug().Str("username", user.Username).Msg("session created")
	return id, nil
}

func (rs *RedisStore) Get(ctx context.Context, id string) (models.SessionUser, error) {
	log := logger.Get()
	res, err := rs.redis.Get(ctx, rs.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.SessionUser{}, ErrNotFound
		}
		log.Error().Err(err).Msg("failed on redis.Get")
		return models.SessionUser{}, err
	}
	var user models.SessionUser
	if err := json.Unmarshal(res, &user); err != nil {
		log.Error().Err(err).Msg("can't unmarshal session")
		return models.SessionUser{}, fmt.Errorf("decode session: %w", err)
	}
	return user, nil
}

func (rs *RedisStore) Delete(ctx context.Context, id string) error {
	if err := rs.redis.Del(ctx, rs.key(id)).Err(); err != nil {
		logger.Get().Error().Err(err).Msg("failed on redis.Del")
		return err
	}
	return nil
}
