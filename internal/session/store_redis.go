package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "bizdir/pkg/domain-errors"
)

const keyPrefix = "bizdir:session:"

// RedisStore persists sessions as JSON values with a TTL, one key per browser
// session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a redis-backed session store. Sessions expire after ttl;
// every save refreshes the expiry so active wizards stay alive.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "read session", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "decode session", err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "encode session", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID, raw, s.ttl).Err(); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "write session", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "delete session", err)
	}
	return nil
}
