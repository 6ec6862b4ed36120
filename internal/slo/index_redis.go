package slo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"portalgate/pkg/platform/sentinel"
)

var indexOpDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "portalgate_slo_index_op_duration_ms",
	Help:    "Latency of logout-token index operations in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
}, []string{"op"})

// RedisIndex is the shared-store implementation of the logout-token index.
// This is the production implementation; every gateway instance sees the
// same entries.
type RedisIndex struct {
	client *redis.Client
}

// NewRedisIndex constructs a Redis-backed logout-token index.
func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{client: client}
}

func (i *RedisIndex) Put(ctx context.Context, key, sessionID string, ttl time.Duration) error {
	defer observe("put", time.Now())
	if err := i.client.Set(ctx, key, sessionID, ttl).Err(); err != nil {
		return fmt.Errorf("%w: index put: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (i *RedisIndex) Lookup(ctx context.Context, key string) (string, error) {
	defer observe("lookup", time.Now())
	sessionID, err := i.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: index lookup: %v", sentinel.ErrUnavailable, err)
	}
	return sessionID, nil
}

func (i *RedisIndex) Delete(ctx context.Context, key string) error {
	defer observe("delete", time.Now())
	if err := i.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: index delete: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func observe(op string, start time.Time) {
	indexOpDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
