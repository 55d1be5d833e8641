package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, int64(100), cfg.Gateway.MinOrderMinor)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_abc")
	t.Setenv("PAYSTACK_MIN_ORDER_MINOR", "5000")
	t.Setenv("REOPEN_AFTER_DISPUTE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 5433, cfg.DB.Port)
	require.Equal(t, "sk_test_abc", cfg.Gateway.SecretKey)
	require.Equal(t, int64(5000), cfg.Gateway.MinOrderMinor)
	require.True(t, cfg.Engine.ReopenAfterDispute)
}

func TestDSNPrefersURL(t *testing.T) {
	c := DBConfig{
		Host: "localhost", Port: 5432, User: "wb", Password: "pw", Name: "workbridge",
	}
	require.Contains(t, c.DSN(), "host=localhost")

	c.URL = "postgres://wb:pw@db:5432/workbridge"
	require.Equal(t, "postgres://wb:pw@db:5432/workbridge", c.DSN())
}
