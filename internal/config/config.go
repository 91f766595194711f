package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// minSessionSecret is the shortest HMAC key accepted for session tokens.
const minSessionSecret = 32

// devSessionSecret is only used when ENV=development and no secret is set.
const devSessionSecret = "development-only-session-secret-change-me"

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32         `mapstructure:"DB_MIN_CONNS"`
	SessionSecret       string        `mapstructure:"SESSION_SECRET"`
	SessionCookieSecure bool          `mapstructure:"SESSION_COOKIE_SECURE"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`
	RateLimitRPS        float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int           `mapstructure:"RATE_LIMIT_BURST"`
	LoginRatePerMin     float64       `mapstructure:"LOGIN_RATE_PER_MIN"`
	LoginRateBurst      int           `mapstructure:"LOGIN_RATE_BURST"`
	BodyLimit           string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MigrationsDir       string        `mapstructure:"MIGRATIONS_DIR"`
	AdminUsername       string        `mapstructure:"ADMIN_USERNAME"`
	AdminPassword       string        `mapstructure:"ADMIN_PASSWORD"`
	TLSEnabled          bool          `mapstructure:"TLS_ENABLED"`
	TLSCertFile         string        `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile          string        `mapstructure:"TLS_KEY_FILE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_TTL", "0s")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("LOGIN_RATE_PER_MIN", 10)
	v.SetDefault("LOGIN_RATE_BURST", 5)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "0s")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"SESSION_SECRET", "SESSION_COOKIE_SECURE", "SESSION_TTL",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOGIN_RATE_PER_MIN", "LOGIN_RATE_BURST",
		"BODY_LIMIT", "REQUEST_TIMEOUT", "MIGRATIONS_DIR", "ADMIN_USERNAME", "ADMIN_PASSWORD",
		"TLS_ENABLED", "TLS_CERT_FILE", "TLS_KEY_FILE",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() && cfg.SessionSecret == "" {
		log.Println("WARNING: SESSION_SECRET is not set; using the development-only secret.")
		log.Println("WARNING: Sessions signed with it are forgeable. Do NOT use this outside development.")
		cfg.SessionSecret = devSessionSecret
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// a session secret of at least 32 bytes is mandatory, and production requires
// secure session cookies.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < minSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes, got %d", minSessionSecret, len(c.SessionSecret))
	}
	if !c.IsDev() && c.SessionSecret == devSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set explicitly when ENV=%q", c.Env)
	}
	if c.IsProduction() && !c.SessionCookieSecure {
		return fmt.Errorf("SESSION_COOKIE_SECURE must be true in production")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative, got %s", c.SessionTTL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	// TLS validation: when TLS is enabled, cert and key files must be specified.
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}

	return nil
}
