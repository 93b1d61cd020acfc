package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GATEWAY_URL", "")
	t.Setenv("TOKEN_STORE", "")
	t.Setenv("PREVIEW_DEBOUNCE", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.GatewayURL)
	assert.Equal(t, TokenStoreMemory, cfg.TokenStore)
	assert.Equal(t, 800*time.Millisecond, cfg.PreviewDebounce)
	assert.True(t, cfg.ShippingFallbackFee.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GATEWAY_URL", "https://api.example.test/")
	t.Setenv("TOKEN_STORE", "Redis")
	t.Setenv("PREVIEW_DEBOUNCE", "250ms")
	t.Setenv("SHIPPING_FALLBACK_FEE", "45000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test, https://b.test,")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "https://api.example.test", cfg.GatewayURL)
	assert.Equal(t, TokenStoreRedis, cfg.TokenStore)
	assert.Equal(t, 250*time.Millisecond, cfg.PreviewDebounce)
	assert.True(t, cfg.ShippingFallbackFee.Equal(decimal.NewFromInt(45000)))
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PREVIEW_DEBOUNCE", "soon")
	t.Setenv("SHIPPING_FALLBACK_FEE", "-1")
	t.Setenv("DEVELOPMENT", "maybe")

	cfg := Load()

	assert.Equal(t, 800*time.Millisecond, cfg.PreviewDebounce)
	assert.True(t, cfg.ShippingFallbackFee.Equal(decimal.NewFromInt(30000)))
	assert.True(t, cfg.Development)
}

func TestUpdateDatabaseURLWithSSL(t *testing.T) {
	cfg := &Config{DBSSLMode: "verify-full", DBSSLRootCert: "/certs/ca.pem"}

	got := updateDatabaseURLWithSSL("postgres://u:p@db:5432/app?sslmode=disable&connect_timeout=5", cfg)

	assert.Equal(t, "postgres://u:p@db:5432/app?connect_timeout=5&sslmode=verify-full&sslrootcert=/certs/ca.pem", got)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}
