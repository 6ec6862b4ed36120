package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"portalgate/pkg/platform/sentinel"
	"portalgate/pkg/requestcontext"
)

var storeOpDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "portalgate_session_store_op_duration_ms",
	Help:    "Latency of session store operations in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
}, []string{"op"})

// RedisStore is the shared-store session implementation used in production.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	defer observeStore("get", time.Now())

	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, Key(id))
	ttlCmd := pipe.PTTL(ctx, Key(id))
	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%w: session get: %v", sentinel.ErrUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(getCmd.Val()), &sess); err != nil {
		return nil, fmt.Errorf("%w: corrupt session record: %v", sentinel.ErrInvalidState, err)
	}
	sess.ID = id
	if ttl := ttlCmd.Val(); ttl > 0 {
		sess.ExpiresAt = requestcontext.Now(ctx).Add(ttl)
	}
	return &sess, nil
}

func (s *RedisStore) Set(ctx context.Context, sess *Session, ttl time.Duration) error {
	defer observeStore("set", time.Now())

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, Key(sess.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: session set: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	defer observeStore("destroy", time.Now())

	if err := s.client.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("%w: session destroy: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Touch(ctx context.Context, id string, ttl time.Duration) error {
	defer observeStore("touch", time.Now())

	ok, err := s.client.Expire(ctx, Key(id), ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: session touch: %v", sentinel.ErrUnavailable, err)
	}
	if !ok {
		return sentinel.ErrNotFound
	}
	return nil
}

func observeStore(op string, start time.Time) {
	storeOpDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
