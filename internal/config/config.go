package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// SourceConfig holds marketplace source configuration
type SourceConfig struct {
	BaseURLs             map[string]string `mapstructure:"base_urls"`
	Timeout              int               `mapstructure:"timeout"`
	MaxRetries           int               `mapstructure:"max_retries"`
	MaxWorkers           int               `mapstructure:"max_workers"`
	MaxRequestsPerSecond int               `mapstructure:"max_requests_per_second"`
	Proxies              []string          `mapstructure:"proxies"`
}

// CatalogConfig holds the category document location
type CatalogConfig struct {
	DocumentPath string `mapstructure:"document_path"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config.yaml file not found in current directory")
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("source.timeout", 30)
	viper.SetDefault("source.max_retries", 3)
	viper.SetDefault("source.max_workers", 10)
	viper.SetDefault("source.max_requests_per_second", 5)

	viper.SetDefault("catalog.document_path", "./categories.json")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "aggregator")
	viper.SetDefault("database.user", "aggregator_user")
	viper.SetDefault("database.password", "aggregator_pass")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "redis_pass")
	viper.SetDefault("redis.database", 0)
	viper.SetDefault("redis.consumer_group", "aggregator_consumer")
	viper.SetDefault("redis.min_idle_time", 120)
}
