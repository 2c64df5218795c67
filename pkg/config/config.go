// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the analysis pipeline.
type Config struct {
	OpenAI   OpenAIConfig
	Research ResearchConfig
	Paths    PathsConfig
	Store    StoreConfig
}

// OpenAIConfig configures the chat-completion analyst.
type OpenAIConfig struct {
	APIKey      string  `validate:"required"`
	Model       string  `validate:"required"`
	Temperature float64 `validate:"gte=0,lte=2"`
	MaxRetries  int     `validate:"gte=1,lte=10"`
	BaseDelay   time.Duration
}

// ResearchConfig configures the web-research generator. The API key may be
// empty; research steps then record an error marker instead of sourced
// content.
type ResearchConfig struct {
	APIKey     string
	Model      string `validate:"required"`
	MaxRetries int    `validate:"gte=1,lte=10"`
	BaseDelay  time.Duration
}

// PathsConfig locates the transcript inputs and the analysis output.
type PathsConfig struct {
	TranscriptText string `validate:"required"`
	TranscriptJSON string `validate:"required"`
	Output         string `validate:"required"`
	CacheDir       string `validate:"required"`
}

// StoreConfig selects the checkpoint store backend.
type StoreConfig struct {
	Backend     string `validate:"oneof=fs memory sqlite postgres"`
	SQLitePath  string
	PostgresDSN string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		OpenAI: OpenAIConfig{
			APIKey:      getEnvWithDefault("OPENAI_API_KEY", ""),
			Model:       getEnvWithDefault("OPENAI_MODEL", "gpt-4o"),
			Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.3),
			MaxRetries:  getEnvAsInt("OPENAI_MAX_RETRIES", 5),
			BaseDelay:   getEnvAsDuration("OPENAI_RETRY_BASE_DELAY", time.Second),
		},
		Research: ResearchConfig{
			APIKey:     getEnvWithDefault("PERPLEXITY_API_KEY", ""),
			Model:      getEnvWithDefault("PERPLEXITY_MODEL", "sonar"),
			MaxRetries: getEnvAsInt("PERPLEXITY_MAX_RETRIES", 3),
			BaseDelay:  getEnvAsDuration("PERPLEXITY_RETRY_BASE_DELAY", time.Second),
		},
		Paths: PathsConfig{
			TranscriptText: getEnvWithDefault("TRANSCRIPT_TXT", "data/transcription.txt"),
			TranscriptJSON: getEnvWithDefault("TRANSCRIPT_JSON", "data/transcription.json"),
			Output:         getEnvWithDefault("ANALYSIS_OUTPUT", "data/comprehensive_analysis.json"),
			CacheDir:       getEnvWithDefault("ANALYSIS_CACHE_DIR", "data/.analysis_cache"),
		},
		Store: StoreConfig{
			Backend:     getEnvWithDefault("CHECKPOINT_STORE", "fs"),
			SQLitePath:  getEnvWithDefault("CHECKPOINT_SQLITE_PATH", "data/checkpoints.db"),
			PostgresDSN: getEnvWithDefault("CHECKPOINT_POSTGRES_DSN", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks structural constraints plus cross-field requirements the
// tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Store.Backend == "postgres" && c.Store.PostgresDSN == "" {
		return fmt.Errorf("CHECKPOINT_POSTGRES_DSN is required for the postgres store")
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
