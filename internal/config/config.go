package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	DiscordToken string

	// Owner account that receives tribute alerts via DM.
	// Optional: when empty, alerts are logged but never delivered.
	OwnerID string

	// OpenAI
	OpenAIAPIKey string
	OpenAIModel  string

	// Database
	DatabasePath string

	// Tribute alert rate limiting
	TributeCooldownSeconds int
	CooldownCacheSize      int

	// Reply generation
	ReplyTimeoutSeconds int

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken: os.Getenv("DISCORD_BOT_TOKEN"),
		OwnerID:      os.Getenv("OWNER_ID"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		DatabasePath: getEnvOrDefault("DATABASE_PATH", "./data/seraphina.db"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:      getEnvOrDefault("LOG_FILE", "./seraphina.log"),
	}

	var err error
	if cfg.TributeCooldownSeconds, err = getEnvInt("TRIBUTE_COOLDOWN_SECONDS", 300); err != nil {
		return nil, err
	}
	if cfg.CooldownCacheSize, err = getEnvInt("COOLDOWN_CACHE_SIZE", 1024); err != nil {
		return nil, err
	}
	if cfg.ReplyTimeoutSeconds, err = getEnvInt("REPLY_TIMEOUT_SECONDS", 30); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
