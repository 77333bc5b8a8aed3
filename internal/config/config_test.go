package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{"DB_DSN": "postgres://localhost/db"}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, ClaimAtomic, cfg.ClaimStrategy)
	assert.Equal(t, 10*time.Minute, cfg.NotifyCooldown)
	assert.Equal(t, 30*time.Second, cfg.NotifyPollInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
	assert.Empty(t, cfg.AdminTelegramIDs)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{
		"STORE":              "memory",
		"CLAIM_STRATEGY":     "Verify",
		"NOTIFY_COOLDOWN":    "90s",
		"ADMIN_TELEGRAM_IDS": "101, 202,,303",
		"ENV":                "production",
	}))
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, ClaimVerify, cfg.ClaimStrategy)
	assert.Equal(t, 90*time.Second, cfg.NotifyCooldown)
	assert.Equal(t, []int64{101, 202, 303}, cfg.AdminTelegramIDs)
	assert.True(t, cfg.IsAdmin(202))
	assert.False(t, cfg.IsAdmin(404))
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without dsn", map[string]string{}},
		{"unknown store", map[string]string{"STORE": "mongo"}},
		{"unknown strategy", map[string]string{"STORE": "memory", "CLAIM_STRATEGY": "yolo"}},
		{"bad cooldown", map[string]string{"STORE": "memory", "NOTIFY_COOLDOWN": "soon"}},
		{"negative poll", map[string]string{"STORE": "memory", "NOTIFY_POLL_INTERVAL": "-1s"}},
		{"bad admin id", map[string]string{"STORE": "memory", "ADMIN_TELEGRAM_IDS": "12,abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envFrom(tt.env))
			assert.Error(t, err)
		})
	}
}
