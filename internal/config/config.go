package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const DefaultMistralURL = "https://api.mistral.ai/v1/chat/completions"

type Config struct {
	// Server
	Port string
	Env  string

	// Mistral AI
	MistralAPIKey      string
	MistralURL         string
	MistralModel       string
	MistralTemperature float64
	MistralMaxTokens   int

	// Chat view
	ChatProxyURL string
	ChatLocale   string

	// Telemetry
	OTLPEndpoint string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	port := getEnvOrDefault("PORT", "3000")

	cfg := &Config{
		Port:               port,
		Env:                getEnvOrDefault("ENV", "development"),
		MistralAPIKey:      os.Getenv("MISTRAL_API_KEY"),
		MistralURL:         getEnvOrDefault("MISTRAL_API_URL", DefaultMistralURL),
		MistralModel:       getEnvOrDefault("MISTRAL_MODEL", "mistral-tiny"),
		MistralTemperature: getEnvAsFloatOrDefault("MISTRAL_TEMPERATURE", 0.7),
		MistralMaxTokens:   getEnvAsIntOrDefault("MISTRAL_MAX_TOKENS", 1000),
		ChatProxyURL:       getEnvOrDefault("CHAT_PROXY_URL", fmt.Sprintf("http://localhost:%s/api/chat", port)),
		ChatLocale:         getEnvOrDefault("CHAT_LOCALE", "zh"),
		OTLPEndpoint:       getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", fmt.Sprintf("http://localhost:%s", port)),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
