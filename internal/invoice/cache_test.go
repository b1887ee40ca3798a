package invoice

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-billing/internal/tax"
)

func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCacheKeyStableAndRelationshipSensitive(t *testing.T) {
	c := NewCache(nil, 0)
	req := ComputeRequest{
		CustomerStateCode: "KA",
		Items:             []LineItemInput{{Qty: 1, UnitRate: 100, TaxRate: 18}},
	}

	k1 := c.Key(req, tax.IntraState)
	k2 := c.Key(req, tax.IntraState)
	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "billing:invoice:totals:"))

	assert.NotEqual(t, k1, c.Key(req, tax.InterState))

	req.DiscountValue = 10
	assert.NotEqual(t, k1, c.Key(req, tax.IntraState))
}

func TestCacheRoundTrip(t *testing.T) {
	mr, client := testRedis(t)
	c := NewCache(client, time.Minute)
	ctx := context.Background()

	key := c.Key(ComputeRequest{CustomerStateCode: "KA"}, tax.IntraState)
	view := DetailView{SubTotal: "100.00", Total: "118.00", Breakdown: []BreakdownView{}}

	_, ok, err := c.GetDetail(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetDetail(ctx, key, view))

	got, ok, err := c.GetDetail(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, view, got)

	assert.Greater(t, mr.TTL(key), time.Duration(0))
}

func TestCacheNilClientIsNoop(t *testing.T) {
	c := NewCache(nil, time.Minute)
	ctx := context.Background()

	_, ok, err := c.GetDetail(ctx, "billing:invoice:totals:x")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetDetail(ctx, "billing:invoice:totals:x", DetailView{}))
}
