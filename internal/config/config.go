// Package config provides configuration loading, validation, and management
// for the bot. Values come from defaults, an optional YAML file and BOT_*
// environment variables, in increasing order of precedence.
package config

import (
	"time"
)

// Config defines the application configuration parameters for all components.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Codes     CodesConfig     `mapstructure:"codes"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credential and access list.
type TelegramConfig struct {
	Token          string  `mapstructure:"token"            validate:"required"`
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids" validate:"dive,gt=0"`
}

// DatabaseConfig selects the account store backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite bbolt"`
	Path   string `mapstructure:"path"   validate:"required"`
}

// CodesConfig selects how authentication codes are derived.
type CodesConfig struct {
	Algorithm string        `mapstructure:"algorithm" validate:"oneof=steam totp"`
	Digits    int           `mapstructure:"digits"    validate:"oneof=6 8"`
	Period    time.Duration `mapstructure:"period"    validate:"min=1s,max=5m"`
}

// RefreshConfig tunes message rendering and transient notices.
// An empty Timezone renders times in the host's local zone.
type RefreshConfig struct {
	NoticeDelay time.Duration `mapstructure:"notice_delay" validate:"min=0s,max=1h"`
	Timezone    string        `mapstructure:"timezone"     validate:"omitempty,timezone"`
}

// SchedulerConfig lists the recurring tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig schedules one task either every Interval or on a cron Schedule
// (with seconds field). Interval wins when both are set.
type TaskConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval" validate:"omitempty,min=1s"`
	Schedule string        `mapstructure:"schedule" validate:"required_without=Interval"`
}

// HTTPConfig enables the health and metrics endpoint when ListenAddr is set.
type HTTPConfig struct {
	ListenAddr string `mapstructure:"listen_addr" validate:"omitempty,hostname_port"`
}

// MessagesConfig holds user-facing texts.
type MessagesConfig struct {
	Welcome       string `mapstructure:"welcome"        validate:"required"`
	Usage         string `mapstructure:"usage"          validate:"required"`
	AccountExists string `mapstructure:"account_exists" validate:"required"`
	InvalidSecret string `mapstructure:"invalid_secret" validate:"required"`
	GeneralError  string `mapstructure:"general_error"  validate:"required"`
	NotAuthorized string `mapstructure:"not_authorized" validate:"required"`
}

// Location resolves Refresh.Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Refresh.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Refresh.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
