package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/klarbill-gateway/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvDefaults(t *testing.T) {
	for _, v := range []string{"PORT", "STORE", "BACKEND_URL", "BACKEND_TIMEOUT", "SESSION_MAX_AGE", "ALLOWED_ORIGINS"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, config.StoreBolt, c.GetStore())
	require.Equal(t, "http://localhost:8000", c.GetBackendURL())
	require.Equal(t, 30*time.Second, c.GetBackendTimeout())
	require.Equal(t, 30*24*time.Hour, c.GetMaxSessionAge())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:3000"))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("STORE", "MEMORY")
	t.Setenv("BACKEND_URL", "http://backend:8000/")
	t.Setenv("BACKEND_TIMEOUT", "bogus")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_MIRRORING", "false")
	c := config.New()

	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, config.StoreMemory, c.GetStore())
	require.Equal(t, "http://backend:8000", c.GetBackendURL())
	require.Equal(t, 30*time.Second, c.GetBackendTimeout())
	require.False(t, c.GetLogMirroring())
	origins := c.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example"))
	require.True(t, origins.IsAllowedOrigin("https://b.example"))
	require.False(t, origins.IsAllowedOrigin("https://c.example"))
}

func TestStoreSelection(t *testing.T) {
	t.Setenv("STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://klarbill@db/klarbill")
	c := config.New()
	require.Equal(t, config.StorePostgres, c.GetStore())
	require.Equal(t, "postgres://klarbill@db/klarbill", c.GetDatabaseURL())

	t.Setenv("STORE", "redis")
	require.Equal(t, config.StoreBolt, config.New().GetStore())
}
