package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOT_ADMIN_ID", "555")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, int64(555), cfg.Bot.AdminID)
	assert.Equal(t, "auto", cfg.Bot.UpdateMode)
	assert.Equal(t, 6, cfg.Catalog.PageSize)
	assert.Equal(t, 10, cfg.Catalog.HistoryLimit)
	assert.Equal(t, 24*time.Hour, cfg.Catalog.SessionTTL)
	assert.Equal(t, 720*time.Hour, cfg.Cart.TTL)
	assert.Empty(t, cfg.Redis.Addr, "no Redis unless configured")
}

func TestNewRedisWithoutAddr(t *testing.T) {
	client, err := NewRedis(&RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisUnreachable(t *testing.T) {
	client, err := NewRedis(&RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("CATALOG_PAGE_SIZE", "-3")
	t.Setenv("NAV_HISTORY_LIMIT", "4")
	t.Setenv("NAV_SESSION_TTL", "bogus")
	t.Setenv("CART_TTL", "48h")
	t.Setenv("BOT_UPDATE_MODE", "Webhook")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Catalog.PageSize)
	assert.Equal(t, 4, cfg.Catalog.HistoryLimit)
	assert.Equal(t, 24*time.Hour, cfg.Catalog.SessionTTL)
	assert.Equal(t, 48*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, "webhook", cfg.Bot.UpdateMode)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Pass: "p", Host: "h", Port: "3306", Name: "shop", Charset: "utf8mb4"}
	assert.Equal(t, "u:p@tcp(h:3306)/shop?charset=utf8mb4&parseTime=True&loc=Local", d.DSN())
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		l, err := NewLogger(env)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}
