package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisStoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.store = NewRedis(client, time.Hour)
}

func (s *RedisStoreSuite) TestSaveAndGet() {
	ctx := context.Background()
	sess := New("companies-house", time.Now())
	sess.SetValues("user-account", map[string]string{"email": "a@b.com"})
	sess.Extra.IsAnonymousIngress = true

	s.Require().NoError(s.store.Save(ctx, sess))

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, got.ID)
	s.Equal("companies-house", got.Flow)
	s.True(got.Extra.IsAnonymousIngress)
	s.Equal("a@b.com", got.Values("user-account")["email"])
}

func (s *RedisStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), "no-such-id")
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	sess := New("individual", time.Now())
	s.Require().NoError(s.store.Save(ctx, sess))
	s.Require().NoError(s.store.Delete(ctx, sess.ID))

	_, err := s.store.Get(ctx, sess.ID)
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *RedisStoreSuite) TestTTLExpiry() {
	ctx := context.Background()
	sess := New("sole-trader", time.Now())
	s.Require().NoError(s.store.Save(ctx, sess))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.store.Get(ctx, sess.ID)
	s.Require().ErrorIs(err, ErrNotFound)
}

func TestMemoryStoreMirrorsRedisSemantics(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	sess := New("companies-house", time.Now())
	sess.SetValues("user-account", map[string]string{"email": "a@b.com"})
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)

	// Mutating the returned session must not leak back into the store.
	got.SetValues("user-account", map[string]string{"email": "mutated@b.com"})
	again, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", again.Values("user-account")["email"])

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
