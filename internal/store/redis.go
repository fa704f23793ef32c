package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ittullos/authgate/internal/auth"
	"github.com/ittullos/authgate/internal/config"
	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client     *redis.Client
	sessionTTL time.Duration
}

func NewRedisStore(cfg config.RedisConfig, sessionTTL time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.New("failed to connect to Redis: " + err.Error())
	}

	return &RedisStore{client: client, sessionTTL: sessionTTL}, nil
}

func (rs *RedisStore) PutSession(ctx context.Context, correlationID string, session auth.AuthSession, tokens auth.TokenPresence) error {
	sessionData, err := json.Marshal(session)
	if err != nil {
		return err
	}
	tokenData, err := json.Marshal(tokens)
	if err != nil {
		return err
	}

	// Single round trip, both keys or neither.
	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, sessionKey(correlationID), sessionData, rs.sessionTTL)
	pipe.Set(ctx, tokensKey(correlationID), tokenData, rs.sessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (rs *RedisStore) GetSession(ctx context.Context, correlationID string) (*auth.AuthSession, error) {
	data, err := rs.client.Get(ctx, sessionKey(correlationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session auth.AuthSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (rs *RedisStore) GetTokenPresence(ctx context.Context, correlationID string) (*auth.TokenPresence, error) {
	data, err := rs.client.Get(ctx, tokensKey(correlationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var tokens auth.TokenPresence
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (rs *RedisStore) SetPendingRedirect(ctx context.Context, correlationID, path string) error {
	return rs.client.Set(ctx, redirectKey(correlationID), path, redirectTTL).Err()
}

func (rs *RedisStore) TakePendingRedirect(ctx context.Context, correlationID string) (string, error) {
	path, err := rs.client.GetDel(ctx, redirectKey(correlationID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return path, nil
}

func (rs *RedisStore) SetLoginState(ctx context.Context, state string, data []byte, ttl time.Duration) error {
	return rs.client.Set(ctx, loginKey(state), data, ttl).Err()
}

func (rs *RedisStore) TakeLoginState(ctx context.Context, state string) ([]byte, error) {
	data, err := rs.client.GetDel(ctx, loginKey(state)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (rs *RedisStore) SetCSRFToken(ctx context.Context, token string, ttl time.Duration) error {
	return rs.client.Set(ctx, csrfKey(token), "1", ttl).Err()
}

func (rs *RedisStore) TakeCSRFToken(ctx context.Context, token string) (bool, error) {
	_, err := rs.client.GetDel(ctx, csrfKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (rs *RedisStore) Clear(ctx context.Context, correlationID string) error {
	// One DEL covers all session-scoped keys atomically.
	return rs.client.Del(ctx,
		sessionKey(correlationID),
		tokensKey(correlationID),
		redirectKey(correlationID),
	).Err()
}

func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
