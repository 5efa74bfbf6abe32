package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Engine   EngineConfig   `yaml:"engine"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig enables the search result cache; an empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// KafkaConfig enables reservation event publishing; empty Brokers disable
// it.
type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	EventsTopic string   `yaml:"events_topic"`
	GroupID     string   `yaml:"group_id"`
}

type EngineConfig struct {
	// MaxAttempts caps serializable retries per operation; 0 retries until
	// a non-transient outcome.
	MaxAttempts       int `yaml:"max_attempts"`
	RetryBackoffMS    int `yaml:"retry_backoff_ms"`
	MaxRetryBackoffMS int `yaml:"max_retry_backoff_ms"`
	// CreateRetryBudget is the process-wide retry budget shared by all
	// create-user operations.
	CreateRetryBudget     int `yaml:"create_retry_budget"`
	SearchCacheTTLSeconds int `yaml:"search_cache_ttl_seconds"`
}

func (e EngineConfig) RetryBackoff() time.Duration {
	return time.Duration(e.RetryBackoffMS) * time.Millisecond
}

func (e EngineConfig) MaxRetryBackoff() time.Duration {
	return time.Duration(e.MaxRetryBackoffMS) * time.Millisecond
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Engine.MaxAttempts == 0 {
		c.Engine.MaxAttempts = 10
	}
	if c.Engine.RetryBackoffMS == 0 {
		c.Engine.RetryBackoffMS = 10
	}
	if c.Engine.MaxRetryBackoffMS == 0 {
		c.Engine.MaxRetryBackoffMS = 1000
	}
	if c.Engine.CreateRetryBudget == 0 {
		c.Engine.CreateRetryBudget = 3
	}
	if c.Engine.SearchCacheTTLSeconds == 0 {
		c.Engine.SearchCacheTTLSeconds = 60
	}
}
