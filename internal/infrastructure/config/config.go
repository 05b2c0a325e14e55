package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration. It is populated once at
// startup from the environment and passed explicitly to the components that
// need it; request handlers never read the environment directly.
type Config struct {
	Server  ServerConfig
	Model   ModelConfig
	Backend BackendConfig
	Redis   RedisConfig
	Log     LogConfig
	Metrics MetricsConfig
	Health  HealthConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port int
	Mode string
}

// ModelConfig holds model and request-constraint configuration
type ModelConfig struct {
	Name           string
	MaxTextLength  int
	BatchSizeLimit int
	EnableCache    bool
	CacheTTL       time.Duration
}

// BackendConfig holds inference backend configuration
type BackendConfig struct {
	URL                  string
	InferenceTimeout     time.Duration
	LoadTimeout          time.Duration
	InferenceConcurrency int
	WarmupText           string
}

// RedisConfig holds redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig holds metrics exposition configuration
type MetricsConfig struct {
	Enabled bool
	// Port runs a dedicated metrics listener when non-zero; otherwise
	// /metrics is served on the main server port.
	Port int
}

// HealthConfig holds health check thresholds
type HealthConfig struct {
	MemoryWarnPercent     float64
	MemoryCriticalPercent float64
	CheckTimeout          time.Duration
}

// Load reads configuration from the environment, applies defaults and
// validates eagerly. Invalid configuration is fatal: the caller must not
// serve traffic on error.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")

	v.SetDefault("model.name", "cardiffnlp/twitter-roberta-base-sentiment-latest")
	v.SetDefault("model.maxtextlength", 512)
	v.SetDefault("model.batchsizelimit", 10)
	v.SetDefault("model.enablecache", false)
	v.SetDefault("model.cachettl", time.Hour)

	v.SetDefault("backend.url", "http://localhost:8500")
	v.SetDefault("backend.inferencetimeout", 30*time.Second)
	v.SetDefault("backend.loadtimeout", 5*time.Minute)
	v.SetDefault("backend.inferenceconcurrency", 4)
	v.SetDefault("backend.warmuptext", "This is a test.")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 0)

	v.SetDefault("health.memorywarnpercent", 80.0)
	v.SetDefault("health.memorycriticalpercent", 90.0)
	v.SetDefault("health.checktimeout", 5*time.Second)
}

// bindEnv maps the recognized environment variables onto config keys.
// The names are part of the deployment contract.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("server.host", "HOST")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.mode", "GIN_MODE")

	_ = v.BindEnv("model.name", "MODEL_NAME")
	_ = v.BindEnv("model.maxtextlength", "MAX_TEXT_LENGTH")
	_ = v.BindEnv("model.batchsizelimit", "BATCH_SIZE_LIMIT")
	_ = v.BindEnv("model.enablecache", "ENABLE_MODEL_CACHE")
	_ = v.BindEnv("model.cachettl", "CACHE_TTL")

	_ = v.BindEnv("backend.url", "ML_SERVICE_URL")
	_ = v.BindEnv("backend.inferencetimeout", "INFERENCE_TIMEOUT")
	_ = v.BindEnv("backend.loadtimeout", "MODEL_LOAD_TIMEOUT")
	_ = v.BindEnv("backend.inferenceconcurrency", "INFERENCE_CONCURRENCY")

	_ = v.BindEnv("redis.host", "REDIS_HOST")
	_ = v.BindEnv("redis.port", "REDIS_PORT")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")

	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.format", "LOG_FORMAT")

	_ = v.BindEnv("metrics.enabled", "ENABLE_METRICS")
	_ = v.BindEnv("metrics.port", "METRICS_PORT")

	_ = v.BindEnv("health.memorywarnpercent", "MEMORY_WARN_PERCENT")
	_ = v.BindEnv("health.memorycriticalpercent", "MEMORY_CRITICAL_PERCENT")
	_ = v.BindEnv("health.checktimeout", "HEALTH_CHECK_TIMEOUT")
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model name must not be empty")
	}
	if c.Model.MaxTextLength <= 0 {
		return fmt.Errorf("max text length must be positive, got %d", c.Model.MaxTextLength)
	}
	if c.Model.BatchSizeLimit <= 0 {
		return fmt.Errorf("batch size limit must be positive, got %d", c.Model.BatchSizeLimit)
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("ML service URL must not be empty")
	}
	if c.Backend.InferenceConcurrency <= 0 {
		return fmt.Errorf("inference concurrency must be positive, got %d", c.Backend.InferenceConcurrency)
	}
	if c.Health.MemoryWarnPercent <= 0 || c.Health.MemoryWarnPercent > 100 {
		return fmt.Errorf("memory warn percent out of range: %v", c.Health.MemoryWarnPercent)
	}
	if c.Health.MemoryCriticalPercent <= c.Health.MemoryWarnPercent || c.Health.MemoryCriticalPercent > 100 {
		return fmt.Errorf("memory critical percent must be in (%v, 100], got %v",
			c.Health.MemoryWarnPercent, c.Health.MemoryCriticalPercent)
	}
	return nil
}
