package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ServiceURL:     "https://picture-book.example.com",
		Port:           "8080",
		ProjectID:      "my-project",
		LocationID:     "us-central1",
		VoicevoxURL:    DefaultVoicevoxURL,
		VoicevoxAPIKey: "secret",
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PROJECT_ID", "book-project")
	t.Setenv("LOCATION", "us-central1")
	t.Setenv("VOICEVOX_API_KEY", "k")
	t.Setenv("IMAGE_RATE_INTERVAL", "250ms")

	cfg := LoadConfig()

	assert.Equal(t, "book-project", cfg.ProjectID)
	assert.Equal(t, "us-central1", cfg.LocationID)
	assert.Equal(t, "k", cfg.VoicevoxAPIKey)
	assert.Equal(t, 250*time.Millisecond, cfg.ImageRateInterval)
	assert.Equal(t, DefaultImageModel, cfg.ImageModel)
	assert.Equal(t, DefaultVoicevoxURL, cfg.VoicevoxURL)
	assert.Equal(t, ShutdownTimeout, cfg.ShutdownTimeout)
}

func TestLoadConfig_InvalidRateInterval(t *testing.T) {
	t.Setenv("IMAGE_RATE_INTERVAL", "soon")
	assert.Zero(t, LoadConfig().ImageRateInterval)
}

func TestValidateEssentialConfig(t *testing.T) {
	require.NoError(t, ValidateEssentialConfig(validConfig()))

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"PROJECT_ID 未設定", func(c *Config) { c.ProjectID = "" }},
		{"LOCATION 未設定", func(c *Config) { c.LocationID = "" }},
		{"VOICEVOX_API_KEY 未設定", func(c *Config) { c.VoicevoxAPIKey = "" }},
		{"SERVICE_URL が平文", func(c *Config) { c.ServiceURL = "http://picture-book.example.com" }},
		{"VOICEVOX_URL が平文", func(c *Config) { c.VoicevoxURL = "http://tts.example.com/audio/" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, ValidateEssentialConfig(cfg))
		})
	}

	assert.Error(t, ValidateEssentialConfig(nil))
}
