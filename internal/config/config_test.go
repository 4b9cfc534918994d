package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "portfolio")
	t.Setenv("DB_NAME", "crypto")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("COINGECKO_BASE_URL", "http://localhost:9999/api/v3")
	t.Setenv("IS_PROD", "true")

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "portfolio", cfg.DBUser)
	assert.Equal(t, "crypto", cfg.DBName)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "http://localhost:9999/api/v3", cfg.CoinGeckoURL)
	assert.True(t, cfg.IsProd)
}

func TestLoadConfigDefaultsCoinGeckoURL(t *testing.T) {
	t.Setenv("COINGECKO_BASE_URL", "")

	cfg := LoadConfig()
	assert.Equal(t, DefaultCoinGeckoURL, cfg.CoinGeckoURL)
}

func TestLoadConfigIgnoresBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 0, cfg.RedisDB)
}
