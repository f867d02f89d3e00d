package cfg

import (
	"time"
)

type Cfg struct {
	// Telegram configuration
	BotToken string
	ChatID   int64

	// Forum configuration
	FeedURL   string
	ForumURL  string
	UserAgent string

	// Application configuration
	DBPath           string
	RulesFile        string
	PollInterval     int
	FetchTimeout     int
	MaxBackoff       int
	DeliveriesPerMin int
	Port             string
	APIAccessKey     string

	// Application metadata
	Debug   bool
	Version string
}

// GetPollInterval returns the poll interval as time.Duration
func (c *Cfg) GetPollInterval() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// GetFetchTimeout returns the fetch timeout as time.Duration
func (c *Cfg) GetFetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

// GetMaxBackoff returns the maximum retry delay as time.Duration
func (c *Cfg) GetMaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoff) * time.Second
}
