package invoice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-billing/internal/common"
	"github.com/noah-isme/backend-billing/internal/tax"
)

// Cache memoises computed totals in Redis, keyed by a content hash of the
// request. The engine is O(n) so this exists purely to absorb the UI's
// per-keystroke preview traffic, not to make results cheaper to derive.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a totals cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key derives the cache key for a compute request under a resolved
// relationship. Identical invoices hash identically regardless of who asks.
func (c *Cache) Key(req ComputeRequest, rel tax.Relationship) string {
	payload, err := json.Marshal(struct {
		Rel tax.Relationship `json:"rel"`
		Req ComputeRequest   `json:"req"`
	}{Rel: rel, Req: req})
	if err != nil {
		return ""
	}
	return "billing:invoice:totals:" + common.Sha256Hex(string(payload))
}

// GetDetail loads a cached detail view. It reports whether the key existed.
func (c *Cache) GetDetail(ctx context.Context, key string) (DetailView, bool, error) {
	var view DetailView
	if c == nil || c.client == nil || key == "" {
		return view, false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return view, false, nil
		}
		return view, false, err
	}
	if err := json.Unmarshal(data, &view); err != nil {
		return view, false, err
	}
	return view, true, nil
}

// SetDetail stores a detail view under the key with the configured TTL.
func (c *Cache) SetDetail(ctx context.Context, key string, view DetailView) error {
	if c == nil || c.client == nil || key == "" || c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
