package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("KITCHEN_DB_DSN", "file::memory:")
	t.Setenv("KITCHEN_JWT_SECRET", "secret")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 90*time.Second, cfg.LivenessWindow)
	assert.Equal(t, NotifierMemory, cfg.NotifierTransport)
	assert.True(t, cfg.DBAutoMigrate)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("KITCHEN_DB_DSN", "file::memory:")
	t.Setenv("KITCHEN_JWT_SECRET", "")

	_, err := LoadConfig()

	require.ErrorContains(t, err, "KITCHEN_JWT_SECRET")
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		DBDSN:             "file::memory:",
		JWTSecret:         "secret",
		HeartbeatInterval: 30 * time.Second,
		LivenessWindow:    90 * time.Second,
		NotifierTransport: NotifierMemory,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"window not above interval", func(c *Config) { c.LivenessWindow = c.HeartbeatInterval }, "liveness window"},
		{"redis without url", func(c *Config) { c.NotifierTransport = NotifierRedis }, "KITCHEN_REDIS_URL"},
		{"amqp without url", func(c *Config) { c.NotifierTransport = NotifierAMQP }, "KITCHEN_AMQP_URL"},
		{"unknown notifier", func(c *Config) { c.NotifierTransport = "kafka" }, "unknown notifier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
