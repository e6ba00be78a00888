package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrConfiguration wraps every configuration loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// EnvPrefix is the prefix for environment overrides, e.g. BOT_DATABASE_PATH.
const EnvPrefix = "BOT"

// LoadConfig loads and validates configuration from:
//  1. Default values
//  2. the YAML file at path, if it exists
//  3. BOT_* environment variables (the bot token is also read from BOT_TOKEN)
func LoadConfig(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

// Load resolves configuration the same way as LoadConfig without validating
// it. Commands that only touch part of the configuration validate that part.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("telegram.token", "BOT_TOKEN", "BOT_TELEGRAM_TOKEN"); err != nil {
		return nil, fmt.Errorf("%w: failed to bind token env: %v", ErrConfiguration, err)
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Validate checks the database section on its own.
func (d DatabaseConfig) Validate() error {
	if err := validator.New().Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("Configuration file not found, using defaults and environment", "path", path)
			return nil
		}
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	slog.Debug("Configuration file loaded", "path", path)
	return nil
}
