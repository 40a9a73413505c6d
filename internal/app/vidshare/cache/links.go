package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"vidshare.local/internal/app/vidshare"
	"vidshare.local/internal/platform/metrics"
)

const notFoundSentinel = "__nil__"

// LinkCache caches link records on the resolve path (L1 ristretto, L2
// redis). Records are safe to cache because every field except the counters
// is immutable, and expiry is evaluated against the stored expiresAt at read
// time, so a cached expired link still reports EXPIRED. Counters always come
// from postgres.
type LinkCache struct {
	client   *redis.Client
	local    *LocalCache
	ttl      time.Duration
	emptyTTL time.Duration
}

func NewLinkCache(client *redis.Client, local *LocalCache) *LinkCache {
	return &LinkCache{
		client:   client,
		local:    local,
		ttl:      time.Hour,
		emptyTTL: 30 * time.Second,
	}
}

// Get returns the cached record for code. found reports a cache hit of any
// kind; a hit with rec==nil is a negative entry (known missing).
func (c *LinkCache) Get(ctx context.Context, code string) (rec *vidshare.LinkRecord, found bool, err error) {
	if c.local != nil {
		if payload, ok := c.local.Get(code); ok {
			if payload == notFoundSentinel {
				metrics.CacheOperations.WithLabelValues("l1", "hit_negative").Inc()
				return nil, true, nil
			}
			metrics.CacheOperations.WithLabelValues("l1", "hit").Inc()
			return decode(payload)
		}
	}

	key := "link:" + code
	payload, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		metrics.CacheOperations.WithLabelValues("l2", "miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if payload == notFoundSentinel {
		metrics.CacheOperations.WithLabelValues("l2", "hit_negative").Inc()
		if c.local != nil {
			c.local.SetNotFound(code)
		}
		return nil, true, nil
	}
	metrics.CacheOperations.WithLabelValues("l2", "hit").Inc()
	if c.local != nil {
		c.local.Set(code, payload)
	}
	return decode(payload)
}

func (c *LinkCache) Set(ctx context.Context, code string, rec vidshare.LinkRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	payload := string(data)
	if c.local != nil {
		c.local.Set(code, payload)
	}
	return c.client.Set(ctx, "link:"+code, payload, c.ttl).Err()
}

// SetNotFound writes an explicit negative entry so unknown codes cannot hammer
// postgres. An empty string would be ambiguous with a miss, hence the
// sentinel.
func (c *LinkCache) SetNotFound(ctx context.Context, code string) error {
	if c.local != nil {
		c.local.SetNotFound(code)
	}
	return c.client.Set(ctx, "link:"+code, notFoundSentinel, c.emptyTTL).Err()
}

func (c *LinkCache) Delete(ctx context.Context, code string) error {
	if c.local != nil {
		c.local.Del(code)
	}
	return c.client.Del(ctx, "link:"+code).Err()
}

func (c *LinkCache) Close() {
	if c.local != nil {
		c.local.Close()
		slog.Info("local link cache closed")
	}
}

func decode(payload string) (*vidshare.LinkRecord, bool, error) {
	var rec vidshare.LinkRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		// Treat a corrupt entry as a miss; the DB remains authoritative.
		slog.Error("link cache: bad payload", "err", err)
		return nil, false, nil
	}
	return &rec, true, nil
}
