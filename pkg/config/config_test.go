package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 5, cfg.OpenAI.MaxRetries)
	assert.Equal(t, time.Second, cfg.OpenAI.BaseDelay)
	assert.Equal(t, "sonar", cfg.Research.Model)
	assert.Equal(t, 3, cfg.Research.MaxRetries)
	assert.Equal(t, "fs", cfg.Store.Backend)
	assert.Equal(t, "data/comprehensive_analysis.json", cfg.Paths.Output)
	assert.Equal(t, "data/.analysis_cache", cfg.Paths.CacheDir)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_TEMPERATURE", "0.7")
	t.Setenv("CHECKPOINT_STORE", "sqlite")
	t.Setenv("ANALYSIS_OUTPUT", "/tmp/out.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 0.7, cfg.OpenAI.Temperature)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/out.json", cfg.Paths.Output)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CHECKPOINT_STORE", "redis")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRequiresDSNForPostgres(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CHECKPOINT_STORE", "postgres")
	t.Setenv("CHECKPOINT_POSTGRES_DSN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECKPOINT_POSTGRES_DSN")
}
