package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-billing/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":        "postgres://localhost/billing",
		"REDIS_URL":           "redis://localhost:6379",
		"BUSINESS_STATE_CODE": "KA",
		"PORT":                "",
		"TOTALS_CACHE_TTL":    "",
		"CURRENCY_CODE":       "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "INR", cfg.CurrencyCode)
	require.Equal(t, "KA", cfg.BusinessStateCode)
	require.Equal(t, 5*time.Minute, cfg.TotalsCacheTTL)
	require.Equal(t, 20, cfg.InvoiceListPerPage)
}

func TestLoadRequiresBusinessState(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":        "postgres://localhost/billing",
		"REDIS_URL":           "redis://localhost:6379",
		"BUSINESS_STATE_CODE": "",
	})
	require.Error(t, err)
}

func TestHTTPAddrPassthrough(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":        "postgres://localhost/billing",
		"REDIS_URL":           "redis://localhost:6379",
		"BUSINESS_STATE_CODE": "KA",
		"PORT":                ":9090",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
}
