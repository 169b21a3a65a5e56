package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/storefront?sslmode=disable",
		"REDIS_URL":    "redis://localhost:6379/0",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "INR", cfg.CurrencyCode)
	require.Equal(t, 1800, cfg.PricingTaxRateBPS)
	require.Equal(t, int64(500000), cfg.FreeShippingThreshold)
	require.Equal(t, int64(20000), cfg.ShippingFlatFee)
	require.Equal(t, 168*time.Hour, cfg.CartTTL)
	require.Equal(t, 720*time.Hour, cfg.WishlistTTL)
	require.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	require.Equal(t, 20, cfg.CatalogDefaultLimit)
	require.Equal(t, 100, cfg.CatalogMaxLimit)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.Equal(t, 120, cfg.RateLimitMax)
	require.Equal(t, int64(1<<20), cfg.BodyLimitBytes)
	require.Empty(t, cfg.EventWebhookURL)
	require.Equal(t, 5*time.Second, cfg.EventWebhookTimeout)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["APP_ENV"] = "production"
	env["PORT"] = "9090"
	env["CURRENCY_CODE"] = "USD"
	env["PRICING_TAX_RATE_BPS"] = "700"
	env["PRICING_FREE_SHIPPING_THRESHOLD"] = "100000"
	env["PRICING_SHIPPING_FLAT_FEE"] = "4500"
	env["CART_TTL"] = "24h"
	env["CORS_ALLOWED_ORIGINS"] = "https://shop.example.com, https://admin.example.com"
	env["EVENT_WEBHOOK_URL"] = "https://hooks.example.com/events"

	cfg, err := LoadForTests(env)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.AppEnv)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "USD", cfg.CurrencyCode)
	require.Equal(t, 700, cfg.PricingTaxRateBPS)
	require.Equal(t, int64(100000), cfg.FreeShippingThreshold)
	require.Equal(t, int64(4500), cfg.ShippingFlatFee)
	require.Equal(t, 24*time.Hour, cfg.CartTTL)
	require.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "https://hooks.example.com/events", cfg.EventWebhookURL)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	env := baseEnv()
	env["DATABASE_URL"] = ""

	_, err := LoadForTests(env)
	require.Error(t, err)
}

func TestLoadRequiresRedisURL(t *testing.T) {
	env := baseEnv()
	env["REDIS_URL"] = ""

	_, err := LoadForTests(env)
	require.Error(t, err)
}

func TestLoadRejectsNegativeTaxRate(t *testing.T) {
	env := baseEnv()
	env["PRICING_TAX_RATE_BPS"] = "-1"

	_, err := LoadForTests(env)
	require.Error(t, err)
}

func TestMalformedDurationFallsBack(t *testing.T) {
	env := baseEnv()
	env["CART_TTL"] = "not-a-duration"

	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, 168*time.Hour, cfg.CartTTL)
}
