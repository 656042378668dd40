package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "facility.db", cfg.StorePath)
	assert.Equal(t, 5*time.Second, cfg.SaveInterval)
	assert.Equal(t, int64(500), cfg.HourlyRate)
	assert.Equal(t, int64(300), cfg.MinimumFee)
	assert.Equal(t, "RWF", cfg.Currency)
	assert.Equal(t, 20, cfg.InitialCapacity)
	assert.Equal(t, "openai", cfg.InsightsProvider)
	assert.Equal(t, "anthropic", cfg.FallbackProvider)
	assert.Empty(t, cfg.OpenAIAPIKey)
	assert.Empty(t, cfg.AnthropicAPIKey)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_PATH", "/var/lib/facility/state.db")
	t.Setenv("SAVE_INTERVAL_SECONDS", "30")
	t.Setenv("HOURLY_RATE", "800")
	t.Setenv("MIN_FEE", "400")
	t.Setenv("CURRENCY", "USD")
	t.Setenv("FACILITY_CAPACITY", "50")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "/var/lib/facility/state.db", cfg.StorePath)
	assert.Equal(t, 30*time.Second, cfg.SaveInterval)
	assert.Equal(t, int64(800), cfg.HourlyRate)
	assert.Equal(t, int64(400), cfg.MinimumFee)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 50, cfg.InitialCapacity)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("HOURLY_RATE", "free")
	t.Setenv("FACILITY_CAPACITY", "many")
	t.Setenv("SAVE_INTERVAL_SECONDS", "")

	cfg := Load()

	assert.Equal(t, int64(500), cfg.HourlyRate)
	assert.Equal(t, 20, cfg.InitialCapacity)
	assert.Equal(t, 5*time.Second, cfg.SaveInterval)
}
