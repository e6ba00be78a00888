package config

import "time"

// Task names known to the scheduler.
const (
	TaskCodeRefresh      = "code_refresh"
	TaskStoreMaintenance = "store_maintenance"
)

const (
	defaultRefreshInterval = 10 * time.Second
	defaultNoticeDelay     = 5 * time.Second
	defaultCodePeriod      = 30 * time.Second
)

var defaults = map[string]any{
	"logger.level": "info",
	"logger.json":  false,

	"telegram.allowed_user_ids": []int64{},

	"database.driver": "sqlite",
	"database.path":   "./database.db",

	"codes.algorithm": "steam",
	"codes.digits":    6,
	"codes.period":    defaultCodePeriod,

	"refresh.notice_delay": defaultNoticeDelay,
	"refresh.timezone":     "",

	"scheduler.tasks." + TaskCodeRefresh + ".enabled":       true,
	"scheduler.tasks." + TaskCodeRefresh + ".interval":      defaultRefreshInterval,
	"scheduler.tasks." + TaskCodeRefresh + ".schedule":      "",
	"scheduler.tasks." + TaskStoreMaintenance + ".enabled":  true,
	"scheduler.tasks." + TaskStoreMaintenance + ".interval": time.Duration(0),
	"scheduler.tasks." + TaskStoreMaintenance + ".schedule": "0 0 4 * * *",

	"http.listen_addr": "",

	"messages.welcome":        "Hello, I'm a steam code bot",
	"messages.usage":          `Usage: /code "<account_name>" "<token>"`,
	"messages.account_exists": "Token already exists",
	"messages.invalid_secret": "Invalid token. Provide the account's shared secret.",
	"messages.general_error":  "Failed to save the account. Please try again later.",
	"messages.not_authorized": "You are not authorized to use this bot.",
}
