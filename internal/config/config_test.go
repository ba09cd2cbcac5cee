package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"student-auth/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "unit")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "unit", cfg.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./school.db", cfg.Database.Path)
	assert.Equal(t, 12, cfg.Hasher.Cost)
	assert.Equal(t, config.EventsNone, cfg.Events.Driver)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "unit")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_USER", "school")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("HASHER_COST", "10")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, config.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "school", cfg.Database.User)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, 10, cfg.Hasher.Cost)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("ENV", "unit")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "7070"
  cors_origins:
    - https://school.example.com
database:
  driver: postgres
  host: db.internal
events:
  driver: nats
  nats:
    url: nats://nats.internal:4222
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, []string{"https://school.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, config.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, config.EventsNATS, cfg.Events.Driver)
	assert.Equal(t, "nats://nats.internal:4222", cfg.Events.NATS.URL)
	assert.Equal(t, "students.registered", cfg.Events.NATS.Subject)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_UnsupportedDrivers(t *testing.T) {
	t.Setenv("ENV", "unit")

	t.Run("database", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		_, err := config.Load("")
		assert.ErrorContains(t, err, "unsupported database driver")
	})

	t.Run("events", func(t *testing.T) {
		t.Setenv("EVENTS_DRIVER", "rabbitmq")
		_, err := config.Load("")
		assert.ErrorContains(t, err, "unsupported events driver")
	})
}
