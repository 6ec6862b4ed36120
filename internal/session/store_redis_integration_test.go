//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"portalgate/internal/session"
	"portalgate/internal/slo"
	"portalgate/pkg/platform/sentinel"
	"portalgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = session.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func makeSession(id string) *session.Session {
	return &session.Session{
		ID: id,
		Principal: &session.Principal{
			SubjectID:   "subject-1",
			SessionType: "citizen",
			Roles:       []string{"ROLE_USER"},
			Attributes:  map[string][]string{"roles": {"user"}},
		},
		FederationKey: &session.FederationKey{NameID: "U1", SessionIndex: "S1"},
		LogoutToken:   &slo.Token{Value: id, ExpiresAt: time.Now().Add(2 * time.Hour)},
		DeviceName:    "Chrome on Linux",
		ClientIP:      "203.0.113.7",
		CreatedAt:     time.Now().UTC(),
	}
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, makeSession("sid-1"), time.Hour))

	got, err := s.store.Get(ctx, "sid-1")
	s.Require().NoError(err)
	s.Equal("sid-1", got.ID)
	s.Equal("subject-1", got.Principal.SubjectID)
	s.Equal("U1", got.FederationKey.NameID)
	s.Require().NotNil(got.LogoutToken)
	s.Equal("sid-1", got.LogoutToken.Value)
	s.WithinDuration(time.Now().Add(time.Hour), got.ExpiresAt, 5*time.Second)
}

func (s *RedisStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), "ghost")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestTTLExpiry() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, makeSession("sid-1"), 200*time.Millisecond))

	time.Sleep(400 * time.Millisecond)
	_, err := s.store.Get(ctx, "sid-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestTouchExtends() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, makeSession("sid-1"), 500*time.Millisecond))
	s.Require().NoError(s.store.Touch(ctx, "sid-1", time.Hour))

	time.Sleep(700 * time.Millisecond)
	got, err := s.store.Get(ctx, "sid-1")
	s.Require().NoError(err)
	s.Equal("sid-1", got.ID)
}

func (s *RedisStoreSuite) TestTouchMissing() {
	s.ErrorIs(s.store.Touch(context.Background(), "ghost", time.Hour), sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestDestroy() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, makeSession("sid-1"), time.Hour))
	s.Require().NoError(s.store.Destroy(ctx, "sid-1"))

	_, err := s.store.Get(ctx, "sid-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.NoError(s.store.Destroy(ctx, "sid-1"))
}
