package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Pipeline PipelineConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port               int
	RateLimitPerMinute int
	MaxUploadBytes     int64
}

type OpenAIConfig struct {
	APIKey      string
	VisionModel string
}

type GeminiConfig struct {
	APIKey     string
	ImageModel string
}

type PipelineConfig struct {
	MaxAttempts         int
	AcceptanceThreshold int
	ImageSeed           int
	SubjectPrecheck     bool
}

// RedisConfig is optional: an empty host disables the rate limiter.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnvInt("SERVER_PORT", 8080),
			RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
			MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			VisionModel: getEnv("VISION_MODEL", "gpt-4o"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			ImageModel: getEnv("IMAGE_MODEL", "gemini-2.5-flash-image"),
		},
		Pipeline: PipelineConfig{
			MaxAttempts:         getEnvInt("MAX_ATTEMPTS", 3),
			AcceptanceThreshold: getEnvInt("ACCEPTANCE_THRESHOLD", 85),
			ImageSeed:           getEnvInt("IMAGE_SEED", 12345),
			SubjectPrecheck:     getEnvBool("SUBJECT_PRECHECK", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.Pipeline.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be at least 1")
	}
	if c.Pipeline.AcceptanceThreshold < 0 || c.Pipeline.AcceptanceThreshold > 100 {
		return fmt.Errorf("ACCEPTANCE_THRESHOLD must be within [0,100]")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
