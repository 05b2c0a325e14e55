package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("loads default configuration", func(t *testing.T) {
		cfg, err := Load()

		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		// Check server defaults
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8000, cfg.Server.Port)
		assert.Equal(t, "release", cfg.Server.Mode)

		// Check model defaults
		assert.Equal(t, "cardiffnlp/twitter-roberta-base-sentiment-latest", cfg.Model.Name)
		assert.Equal(t, 512, cfg.Model.MaxTextLength)
		assert.Equal(t, 10, cfg.Model.BatchSizeLimit)
		assert.False(t, cfg.Model.EnableCache)

		// Check backend defaults
		assert.Equal(t, "http://localhost:8500", cfg.Backend.URL)
		assert.Equal(t, 30*time.Second, cfg.Backend.InferenceTimeout)
		assert.Equal(t, 5*time.Minute, cfg.Backend.LoadTimeout)
		assert.Equal(t, 4, cfg.Backend.InferenceConcurrency)

		// Check redis defaults
		assert.Equal(t, "localhost", cfg.Redis.Host)
		assert.Equal(t, 6379, cfg.Redis.Port)
		assert.Equal(t, "", cfg.Redis.Password)
		assert.Equal(t, 0, cfg.Redis.DB)

		// Check log defaults
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)

		// Check metrics and health defaults
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, 0, cfg.Metrics.Port)
		assert.Equal(t, 80.0, cfg.Health.MemoryWarnPercent)
		assert.Equal(t, 90.0, cfg.Health.MemoryCriticalPercent)
	})

	t.Run("reads from environment variables", func(t *testing.T) {
		os.Setenv("PORT", "9090")
		os.Setenv("MODEL_NAME", "distilbert-base-uncased-finetuned-sst-2-english")
		os.Setenv("MAX_TEXT_LENGTH", "256")
		os.Setenv("BATCH_SIZE_LIMIT", "5")
		os.Setenv("LOG_LEVEL", "debug")
		defer func() {
			os.Unsetenv("PORT")
			os.Unsetenv("MODEL_NAME")
			os.Unsetenv("MAX_TEXT_LENGTH")
			os.Unsetenv("BATCH_SIZE_LIMIT")
			os.Unsetenv("LOG_LEVEL")
		}()

		cfg, err := Load()

		assert.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "distilbert-base-uncased-finetuned-sst-2-english", cfg.Model.Name)
		assert.Equal(t, 256, cfg.Model.MaxTextLength)
		assert.Equal(t, 5, cfg.Model.BatchSizeLimit)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		os.Setenv("MAX_TEXT_LENGTH", "0")
		defer os.Unsetenv("MAX_TEXT_LENGTH")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("rejects inverted memory thresholds", func(t *testing.T) {
		os.Setenv("MEMORY_WARN_PERCENT", "95")
		defer os.Unsetenv("MEMORY_WARN_PERCENT")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)

	t.Run("rejects empty model name", func(t *testing.T) {
		bad := *cfg
		bad.Model.Name = ""
		assert.Error(t, bad.Validate())
	})

	t.Run("rejects empty backend URL", func(t *testing.T) {
		bad := *cfg
		bad.Backend.URL = ""
		assert.Error(t, bad.Validate())
	})

	t.Run("rejects non-positive concurrency", func(t *testing.T) {
		bad := *cfg
		bad.Backend.InferenceConcurrency = 0
		assert.Error(t, bad.Validate())
	})
}
