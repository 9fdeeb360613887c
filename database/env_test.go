package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfigUnsupported(t *testing.T) {
	_, err := NewFromConfig(&ConnectionConfig{Type: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type: oracle")

	_, err = NewFromConfig(nil)
	assert.Error(t, err)
}

func TestNewFromConfigEnvOverrides(t *testing.T) {
	t.Setenv("DB_TYPE", "pgx")
	t.Setenv("DB_HOST", "pg.local")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_SLOW_QUERY_MS", "150")
	t.Setenv("DB_HEALTH_TABLES", "posts,users")

	cfg := DefaultConnectionConfig()
	cfg.Type = "mysql"
	m, err := NewFromConfig(cfg)
	require.NoError(t, err)

	got := m.Config()
	assert.Equal(t, "pgx", got.Type)
	assert.Equal(t, "pg.local", got.Host)
	assert.Equal(t, 6543, got.Port)
	assert.Equal(t, 150*time.Millisecond, got.SlowQueryTime)
	assert.Equal(t, []string{"posts", "users"}, got.Tables)
	assert.Nil(t, m.DB())
}

func TestApplyEnvKeepsValuesOnBadInput(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("DB_SLOW_QUERY_MS", "")
	t.Setenv("DB_ENABLE_RECONNECT", "false")
	t.Setenv("DB_RECONNECT_INTERVAL", "2s")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90")
	t.Setenv("DB_ENABLE_QUERY_LOG", "1")

	cfg := DefaultConnectionConfig()
	ApplyEnv(cfg)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.SlowQueryTime)
	assert.False(t, cfg.EnableReconnect)
	assert.Equal(t, 2*time.Second, cfg.ReconnectInterval)
	assert.Equal(t, 90*time.Second, cfg.ConnMaxLifetime)
	assert.True(t, cfg.EnableQueryLog)
}
