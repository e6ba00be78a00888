package config

import "slices"

// IsUserAuthorized reports whether userID may use the bot. An empty
// allow-list admits everyone.
func (c *Config) IsUserAuthorized(userID int64) bool {
	if len(c.Telegram.AllowedUserIDs) == 0 {
		return true
	}
	return slices.Contains(c.Telegram.AllowedUserIDs, userID)
}
