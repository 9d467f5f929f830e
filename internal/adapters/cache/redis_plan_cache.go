package cache

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	DefaultPlanTTL = 24 * time.Hour
	keyPrefix      = "wgups:plan:"
)

// RedisPlanCache stores dispatch snapshots as JSON under their input fingerprint.
type RedisPlanCache struct {
	Client *redis.Client
	TTL    time.Duration
	Log    zerolog.Logger
}

func NewRedisPlanCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisPlanCache {
	if ttl <= 0 {
		ttl = DefaultPlanTTL
	}
	return &RedisPlanCache{Client: client, TTL: ttl, Log: log}
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("connect redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: ping: %w", err)
	}
	return client, nil
}

func planKey(fingerprint string) string { return keyPrefix + fingerprint }

// Fetch the snapshot stored for fingerprint.
func (c *RedisPlanCache) Get(ctx context.Context, fingerprint string) (_ domain.PlanSnapshot, _ bool, err error) {
	defer obs.Time(ctx, c.Log, "plan.cache.Get")(&err)

	if c.Client == nil {
		return domain.PlanSnapshot{}, false, errors.New("get plan cache: client is nil")
	}
	if strings.TrimSpace(fingerprint) == "" {
		return domain.PlanSnapshot{}, false, errors.New("get plan cache: fingerprint must not be empty")
	}

	raw, err := c.Client.Get(ctx, planKey(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PlanSnapshot{}, false, nil
	}
	if err != nil {
		return domain.PlanSnapshot{}, false, fmt.Errorf("get plan cache: %w", err)
	}

	var snap domain.PlanSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.PlanSnapshot{}, false, fmt.Errorf("get plan cache: decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Store snapshot under its fingerprint, replacing any previous plan.
func (c *RedisPlanCache) Put(ctx context.Context, snapshot domain.PlanSnapshot) (err error) {
	defer obs.Time(ctx, c.Log, "plan.cache.Put")(&err)

	if c.Client == nil {
		return errors.New("put plan cache: client is nil")
	}
	if strings.TrimSpace(snapshot.Fingerprint) == "" {
		return errors.New("put plan cache: fingerprint must not be empty")
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("put plan cache: encode snapshot: %w", err)
	}
	if err := c.Client.Set(ctx, planKey(snapshot.Fingerprint), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("put plan cache: %w", err)
	}
	return nil
}
