package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const revokedTokenKeyPrefix = "trl:jti:"

// RedisTRL shares revocation state between instances. Keys expire with the
// token so no sweeper is needed.
type RedisTRL struct {
	client          *redis.Client
	checkDurationMs prometheus.Histogram
}

type RedisTRLOption func(*RedisTRL)

// WithRegisterer records check latency on reg.
func WithRegisterer(reg prometheus.Registerer) RedisTRLOption {
	return func(t *RedisTRL) {
		t.checkDurationMs = promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "redhope_is_token_revoked_duration_ms",
			Help:    "Latency of token revocation checks in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		})
	}
}

func NewRedisTRL(client *redis.Client, opts ...RedisTRLOption) *RedisTRL {
	trl := &RedisTRL{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(trl)
		}
	}
	return trl
}

func (t *RedisTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	return t.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if t.checkDurationMs != nil {
		start := time.Now()
		defer func() {
			t.checkDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
		}()
	}

	if jti == "" {
		return false, nil
	}
	err := t.client.Get(ctx, revokedTokenKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
