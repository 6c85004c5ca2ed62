package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
jwt:
  secret: file-secret
  expiry: 2h
scheduling:
  slot_minutes: 15
  day_start_hour: 8
  day_end_hour: 18
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 15, cfg.Scheduling.SlotMinutes)
	assert.Equal(t, 8, cfg.Scheduling.DayStartHour)

	// untouched sections keep their defaults
	assert.Equal(t, 100, cfg.Pagination.MaxLimit)
	assert.Equal(t, 90, cfg.Scheduling.MaxAdvanceDays)
	assert.Equal(t, 5*time.Second, cfg.Outbox.PollInterval)
	assert.False(t, cfg.SMTP.Enabled())
	assert.True(t, cfg.JWT.SharedRevocation)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: file-secret\n")
	t.Setenv("HOSPITAL_JWT_SECRET", "env-secret")
	t.Setenv("HOSPITAL_SCHEDULING_SLOT_MINUTES", "20")
	t.Setenv("HOSPITAL_SMTP_HOST", "smtp.example.com")
	t.Setenv("HOSPITAL_JWT_SHARED_REVOCATION", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 20, cfg.Scheduling.SlotMinutes)
	assert.True(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.JWT.SharedRevocation)
}

func TestLoadRequiresSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret is required")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateScheduling(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:     ServerConfig{Port: 8080},
			JWT:        JWTConfig{Secret: "s", Expiry: time.Hour},
			Pagination: PaginationConfig{MaxLimit: 100},
			Scheduling: SchedulingConfig{SlotMinutes: 30, DayStartHour: 9, DayEndHour: 17, MaxAdvanceDays: 90},
			Outbox:     OutboxConfig{BatchSize: 10},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Scheduling.SlotMinutes = 7
	assert.ErrorContains(t, cfg.Validate(), "slot_minutes")

	cfg = valid()
	cfg.Scheduling.DayStartHour = 17
	assert.ErrorContains(t, cfg.Validate(), "day hours")

	cfg = valid()
	cfg.Server.Port = 0
	assert.ErrorContains(t, cfg.Validate(), "server.port")
}
