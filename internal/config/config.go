package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, with dots in keys
// replaced by underscores: db.dsn is read from NOTIPREFS_DB_DSN.
const EnvPrefix = "NOTIPREFS"

type Config struct {
	Addr      string
	DB        DBConfig
	Log       LogConfig
	Auth      AuthConfig
	Backfill  BackfillConfig
	RateLimit RateLimitConfig
}

type DBConfig struct {
	Driver string
	DSN    string
}

type LogConfig struct {
	Level  string
	Format string
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type BackfillConfig struct {
	// Schedule is a cron spec. Empty disables the periodic sweep.
	Schedule string
}

type RateLimitConfig struct {
	LoginRPS   float64
	LoginBurst int
}

var defaults = map[string]any{
	"addr":                  ":8080",
	"db.driver":             "sqlite",
	"db.dsn":                "notiprefs.db",
	"log.level":             "info",
	"log.format":            "text",
	"auth.secret":           "",
	"auth.token_ttl":        "168h",
	"backfill.schedule":     "@every 1h",
	"ratelimit.login_rps":   1.0,
	"ratelimit.login_burst": 5,
}

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"addr":       "addr",
	"db-driver":  "db.driver",
	"db-dsn":     "db.dsn",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// Load reads configuration from flags, the environment (after loading .env
// if present) and defaults, in that order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// Missing .env is fine; existing variables are never overridden.
	_ = godotenv.Load()

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	ttl, err := time.ParseDuration(v.GetString("auth.token_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid auth.token_ttl: %w", err)
	}

	cfg := &Config{
		Addr: v.GetString("addr"),
		DB: DBConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("db.driver"))),
			DSN:    v.GetString("db.dsn"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Auth: AuthConfig{
			Secret:   v.GetString("auth.secret"),
			TokenTTL: ttl,
		},
		Backfill: BackfillConfig{
			Schedule: strings.TrimSpace(v.GetString("backfill.schedule")),
		},
		RateLimit: RateLimitConfig{
			LoginRPS:   v.GetFloat64("ratelimit.login_rps"),
			LoginBurst: v.GetInt("ratelimit.login_burst"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid db.driver %q: must be sqlite or postgres", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db.dsn is required")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.RateLimit.LoginRPS <= 0 || c.RateLimit.LoginBurst <= 0 {
		return errors.New("ratelimit.login_rps and ratelimit.login_burst must be positive")
	}
	return nil
}

// RequireSecret reports an error when no token signing secret is configured.
// Only commands that issue or verify tokens need one.
func (c *Config) RequireSecret() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required (set %s_AUTH_SECRET)", EnvPrefix)
	}
	return nil
}
