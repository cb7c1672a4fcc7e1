package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	Worker    WorkerConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port" envconfig:"SERVER_PORT"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds" envconfig:"SERVER_TIMEOUT_SECONDS"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type RedisConfig struct {
	URL string `mapstructure:"url" envconfig:"REDIS_URL"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret" envconfig:"JWT_SECRET"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string `mapstructure:"username" envconfig:"SMTP_USERNAME"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
	Enabled  bool   `mapstructure:"enabled" envconfig:"SMTP_ENABLED"`
}

type WorkerConfig struct {
	PollInterval time.Duration `mapstructure:"pollInterval" envconfig:"WORKER_POLL_INTERVAL"`
	BatchSize    int           `mapstructure:"batchSize" envconfig:"WORKER_BATCH_SIZE"`
	MaxRetries   int           `mapstructure:"maxRetries" envconfig:"WORKER_MAX_RETRIES"`
	RetentionAge time.Duration `mapstructure:"retentionAge" envconfig:"WORKER_RETENTION_AGE"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requestsPerSecond" envconfig:"RATE_LIMIT_RPS"`
	Burst             int     `mapstructure:"burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoadConfig reads config.yaml and then overlays CAREAPI_-prefixed
// environment variables, so deployments can override any file value
// without editing it.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("careapi", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.TimeoutSeconds == 0 {
		cfg.Server.TimeoutSeconds = 30
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Worker.PollInterval == 0 {
		cfg.Worker.PollInterval = 5 * time.Second
	}
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 100
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.RetentionAge == 0 {
		cfg.Worker.RetentionAge = 7 * 24 * time.Hour
	}
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 50
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 100
	}
}
