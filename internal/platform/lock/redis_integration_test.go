//go:build integration

package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"evidentia/pkg/testutil/containers"
)

type RedisLockSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisLockSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockSuite))
}

func (s *RedisLockSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisLockSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLockSuite) TestExclusive() {
	a := NewRedis(s.redis.Client, time.Second, WithRetryInterval(5*time.Millisecond))
	b := NewRedis(s.redis.Client, time.Second, WithRetryInterval(5*time.Millisecond))

	unlock, err := a.Lock(context.Background(), "record-1")
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = b.Lock(ctx, "record-1")
	s.ErrorIs(err, ErrNotAcquired)

	unlock()
	unlockB, err := b.Lock(context.Background(), "record-1")
	s.Require().NoError(err)
	unlockB()
}

func (s *RedisLockSuite) TestExpiredLockIsNotReleasedByOldHolder() {
	l := NewRedis(s.redis.Client, 50*time.Millisecond, WithRetryInterval(5*time.Millisecond))
	stale, err := l.Lock(context.Background(), "record-2")
	s.Require().NoError(err)
	time.Sleep(100 * time.Millisecond)

	fresh, err := l.Lock(context.Background(), "record-2")
	s.Require().NoError(err)
	stale()

	n, err := s.redis.Client.Exists(context.Background(), "evidentia:lock:record-2").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), n, "old holder must not delete the new holder's lock")
	fresh()
}
