package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Telegram configuration
	BotToken string `long:"bot-token" env:"BOT_TOKEN" description:"Telegram bot token (required)" required:"true"`
	ChatID   int64  `long:"chat-id" env:"CHAT_ID" description:"Telegram chat ID notifications are sent to (required)" required:"true"`

	// Forum configuration
	FeedURL   string `long:"feed-url" env:"FEED_URL" default:"https://www.chiefdelphi.com/latest.rss" description:"Forum latest-posts RSS feed URL"`
	ForumURL  string `long:"forum-url" env:"FORUM_URL" default:"https://www.chiefdelphi.com" description:"Forum base URL, used for author profile links"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"delphiwatch/1.0" description:"User agent string for HTTP requests"`

	// Application configuration
	DBPath           string `long:"db-path" env:"DB_PATH" default:"./data/delphiwatch.db" description:"SQLite database path"`
	RulesFile        string `long:"rules-file" env:"RULES_FILE" default:"./rules.yml" description:"YAML file with keyword and author rules"`
	PollInterval     int    `long:"poll-interval" env:"POLL_INTERVAL" default:"15" description:"Fetch cycle interval in seconds (minimum 5)"`
	FetchTimeout     int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	MaxBackoff       int    `long:"max-backoff" env:"MAX_BACKOFF" default:"300" description:"Maximum retry delay after fetch failures, in seconds"`
	DeliveriesPerMin int    `long:"deliveries-per-min" env:"DELIVERIES_PER_MIN" default:"20" description:"Maximum notifications sent per minute"`
	Port             string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey     string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`
	Debug            bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		BotToken:         raw.BotToken,
		ChatID:           raw.ChatID,
		FeedURL:          raw.FeedURL,
		ForumURL:         raw.ForumURL,
		UserAgent:        raw.UserAgent,
		DBPath:           raw.DBPath,
		RulesFile:        raw.RulesFile,
		PollInterval:     raw.PollInterval,
		FetchTimeout:     raw.FetchTimeout,
		MaxBackoff:       raw.MaxBackoff,
		DeliveriesPerMin: raw.DeliveriesPerMin,
		Port:             raw.Port,
		APIAccessKey:     raw.APIAccessKey,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	if cfg.PollInterval < 5 {
		return fmt.Errorf("poll interval must be at least 5 seconds, got %d", cfg.PollInterval)
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %d", cfg.FetchTimeout)
	}
	if cfg.MaxBackoff < cfg.PollInterval {
		return fmt.Errorf("max backoff (%d) must not be smaller than the poll interval (%d)", cfg.MaxBackoff, cfg.PollInterval)
	}
	if cfg.DeliveriesPerMin <= 0 {
		return fmt.Errorf("deliveries per minute must be positive, got %d", cfg.DeliveriesPerMin)
	}
	return nil
}
