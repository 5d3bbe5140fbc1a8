package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment (and .env when present).
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`
	Prefix       string `env:"PREFIX" envDefault:"!"`

	DailyPhrasesChannelID string `env:"DAILY_PHRASES_CHANNEL_ID"`
	DailyPhrasesSchedule  string `env:"DAILY_PHRASES_SCHEDULE" envDefault:"0 8 * * *"`
	PhrasesPath           string `env:"PHRASES_PATH" envDefault:"frases_motivacionales.json"`

	KeepAliveAddr    string `env:"KEEPALIVE_ADDR" envDefault:":3000"`
	KeepAliveMessage string `env:"KEEPALIVE_MESSAGE" envDefault:"Bot activo"`

	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"30s"`
	ReadyTimeout   time.Duration `env:"READY_TIMEOUT" envDefault:"20s"`
	SettleDelay    time.Duration `env:"SETTLE_DELAY" envDefault:"1s"`
	ResolveTimeout time.Duration `env:"RESOLVE_TIMEOUT" envDefault:"30s"`
	Volume         float64       `env:"VOLUME" envDefault:"0.5"`

	YouTubeProxy string `env:"YOUTUBE_PROXY"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`
}

// LoadDotEnv loads .env into the process environment. A missing file is not an error:
// the system environment is used as is.
func LoadDotEnv(paths ...string) (loaded bool) {
	if err := godotenv.Load(paths...); err != nil {
		return false
	}
	return true
}

// New parses the environment into a Config and validates it.
func New() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the bot cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Prefix == "" {
		errs = append(errs, errors.New("PREFIX must not be empty"))
	}
	if c.Volume <= 0 || c.Volume > 1 {
		errs = append(errs, fmt.Errorf("VOLUME must be in (0,1], got %v", c.Volume))
	}
	for name, d := range map[string]time.Duration{
		"CONNECT_TIMEOUT": c.ConnectTimeout,
		"READY_TIMEOUT":   c.ReadyTimeout,
		"RESOLVE_TIMEOUT": c.ResolveTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if c.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("SETTLE_DELAY must not be negative, got %v", c.SettleDelay))
	}
	return errors.Join(errs...)
}

// DailyPhrasesEnabled reports whether the daily phrase job should be scheduled.
func (c *Config) DailyPhrasesEnabled() bool {
	return c.DailyPhrasesChannelID != ""
}
