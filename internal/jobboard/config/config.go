// Package config loads service settings from a YAML file, letting
// environment variables of the same name override any key.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath is used when CONFIG_PATH is not set.
var DefaultPath = filepath.Join("internal", "jobboard", "config", "config.yaml")

// Config struct for YAML configuration
type Config struct {
	HTTPPort         int           `mapstructure:"HTTP_PORT"`
	GRPCPort         int           `mapstructure:"GRPC_PORT"`
	AuthPort         int           `mapstructure:"AUTH_PORT"`
	DBHost           string        `mapstructure:"DB_HOST"`
	DBPort           int           `mapstructure:"DB_PORT"`
	DBUser           string        `mapstructure:"DB_USER"`
	DBPassword       string        `mapstructure:"DB_PASSWORD"`
	DBName           string        `mapstructure:"DB_NAME"`
	DBSSLMode        string        `mapstructure:"DB_SSLMODE"`
	DBConnectTimeout time.Duration `mapstructure:"DB_CONNECT_TIMEOUT"`
	KafkaBrokers     []string      `mapstructure:"KAFKA_BROKERS"`
	Topic            string        `mapstructure:"TOPIC"`
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	TokenTTL         time.Duration `mapstructure:"TOKEN_TTL"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

// defaults registers every key, so that a variable set only in the
// environment is still picked up.
func defaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("GRPC_PORT", 50051)
	v.SetDefault("AUTH_PORT", 8081)
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", "30s")
	v.SetDefault("KAFKA_BROKERS", []string{})
	v.SetDefault("TOPIC", "jobboard.events")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads the file named by CONFIG_PATH, or DefaultPath, and applies
// environment overrides.
func Load() (*Config, error) {
	path := DefaultPath
	if v, ok := os.LookupEnv("CONFIG_PATH"); ok && v != "" {
		path = v
	}
	return LoadFile(path)
}

// LoadFile reads the YAML file at path through viper. Environment variables
// named like the file keys take precedence over the file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	defaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.KafkaBrokers = cleanList(cfg.KafkaBrokers)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// cleanList trims every item and drops empty ones. A comma separated
// environment value leaves both behind.
func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("missing variable: JWT_SECRET"))
	}
	if c.DBHost == "" {
		errs = append(errs, fmt.Errorf("missing variable: DB_HOST"))
	}
	if c.DBName == "" {
		errs = append(errs, fmt.Errorf("missing variable: DB_NAME"))
	}
	if c.HTTPPort <= 0 || c.GRPCPort <= 0 {
		errs = append(errs, fmt.Errorf("invalid ports: HTTP_PORT=%d GRPC_PORT=%d", c.HTTPPort, c.GRPCPort))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("invalid TOKEN_TTL: %s", c.TokenTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// KafkaEnabled reports whether events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
