package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         string
	Environment  string
	StorePath    string
	SaveInterval time.Duration

	// Tariff policy. Amounts are whole currency units.
	HourlyRate int64
	MinimumFee int64
	Currency   string

	// Slots provisioned on first start (ignored when state is restored).
	InitialCapacity int

	// Insights (summarization) providers.
	InsightsProvider string
	InsightsModel    string
	FallbackProvider string
	FallbackModel    string
	OpenAIAPIKey     string
	AnthropicAPIKey  string

	OTelServiceName string
	OTelEndpoint    string
}

func Load() *Config {
	return &Config{
		Port:         envOr("APP_PORT", "8080"),
		Environment:  envOr("APP_ENV", "development"),
		StorePath:    envOr("STORE_PATH", "facility.db"),
		SaveInterval: time.Duration(envOrInt("SAVE_INTERVAL_SECONDS", 5)) * time.Second,

		HourlyRate: envOrInt64("HOURLY_RATE", 500),
		MinimumFee: envOrInt64("MIN_FEE", 300),
		Currency:   envOr("CURRENCY", "RWF"),

		InitialCapacity: envOrInt("FACILITY_CAPACITY", 20),

		InsightsProvider: envOr("INSIGHTS_PROVIDER", "openai"),
		InsightsModel:    envOr("INSIGHTS_MODEL", "gpt-4.1-mini"),
		FallbackProvider: envOr("FALLBACK_PROVIDER", "anthropic"),
		FallbackModel:    envOr("FALLBACK_MODEL", "claude-haiku-4-5-20251001"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),

		OTelServiceName: envOr("OTEL_SERVICE_NAME", "parking-facility"),
		OTelEndpoint:    envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envOrInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}
