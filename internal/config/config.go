package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

//go:embed persona.txt
var defaultSystemPrompt string

type Config struct {
	// Server
	Port     string
	Env      string
	LogDebug bool

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Anthropic
	AnthropicAPIKey    string
	AnthropicAPIURL    string
	AnthropicModel     string
	AnthropicMaxTokens int
	AnthropicTimeout   time.Duration
	SystemPromptFile   string

	// Owner
	OwnerName  string
	OwnerEmail string

	// SMTP
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Admin inbox; disabled when empty
	AdminJWTSecret string

	NotifyWorkers        int
	// Unread inbox digest; disabled when zero
	UnreadDigestInterval time.Duration

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		LogDebug:             getEnvAsBoolOrDefault("LOG_DEBUG", false),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		RedisURL:             mustGetEnv("REDIS_URL"),
		AnthropicAPIKey:      mustGetEnv("ANTHROPIC_API_KEY"),
		AnthropicAPIURL:      mustGetEnv("ANTHROPIC_API_URL"),
		AnthropicModel:       mustGetEnv("ANTHROPIC_MODEL"),
		AnthropicMaxTokens:   getEnvAsIntOrDefault("ANTHROPIC_MAX_TOKENS", 1024),
		AnthropicTimeout:     time.Duration(getEnvAsIntOrDefault("ANTHROPIC_TIMEOUT_SECONDS", 30)) * time.Second,
		SystemPromptFile:     getEnvOrDefault("SYSTEM_PROMPT_FILE", ""),
		OwnerName:            getEnvOrDefault("OWNER_NAME", "Alex"),
		OwnerEmail:           mustGetEnv("OWNER_EMAIL"),
		SMTPHost:             getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:             getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:             getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:             getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom:             getEnvOrDefault("SMTP_FROM", "noreply@portfolio.dev"),
		AdminJWTSecret:       getEnvOrDefault("ADMIN_JWT_SECRET", ""),
		NotifyWorkers:        getEnvAsIntOrDefault("NOTIFY_WORKERS", 2),
		UnreadDigestInterval: time.Duration(getEnvAsIntOrDefault("UNREAD_DIGEST_HOURS", 24)) * time.Hour,
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:4200"),
	}

	return cfg
}

// LoadSystemPrompt returns the persona instruction text sent with every chat
// request. An empty path selects the built-in persona.
func LoadSystemPrompt(path string) (string, error) {
	if path == "" {
		return defaultSystemPrompt, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt file: %w", err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("system prompt file %s is empty", path)
	}
	return string(b), nil
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
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

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
