package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "NODE_ENV", "SESSION_TTL"} {
		t.Setenv(k, "x")
		require.NoError(t, os.Unsetenv(k))
	}

	c, err := Parse()
	require.NoError(t, err)
	require.Equal(t, "5175", c.Port)
	require.Equal(t, 24*time.Hour, c.SessionTTL)
	require.False(t, c.Production())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("DB_PATH", "./data/saves.db")

	c, err := Parse()
	require.NoError(t, err)
	require.Equal(t, "8080", c.Port)
	require.Equal(t, 30*time.Minute, c.SessionTTL)
	require.True(t, c.LogPretty)
	require.Equal(t, "./data/saves.db", c.DBPath)
}

func TestParseRequiresSecretInProduction(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Parse()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	c, err := Parse()
	require.NoError(t, err)
	require.True(t, c.Production())
}
