package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/users")
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.True(t, cfg.DBAutoMigrate)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, 15, cfg.LoginRateWindowMinutes)
	assert.Equal(t, 10, cfg.LoginRateMax)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/users")
	t.Setenv("SESSION_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_OriginsAndProduction(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/users")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}
