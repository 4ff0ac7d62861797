package precinct

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a precinct site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Little Bamiyan")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Description for RSS and meta tags

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/precinct.db")
	StaticDir    string `yaml:"static_dir"`    // Uploaded images live under <StaticDir>/uploads (default "public")

	SessionSecret string `yaml:"session_secret"` // Required: cookie session secret
	AuthSecret    string `yaml:"auth_secret"`    // Required: token signing secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	MetricsEnabled bool          `yaml:"metrics_enabled"` // Serve /metrics
	InstanceTTL    time.Duration `yaml:"instance_ttl"`    // Idle page instance lifetime (default 30m)
	SessionTTL     time.Duration `yaml:"session_ttl"`     // Admin session lifetime (default 12h)

	LoginAttempts int           `yaml:"login_attempts"` // Failed logins allowed per window (default 5)
	LoginWindow   time.Duration `yaml:"login_window"`   // default 1m
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Little Bamiyan"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "Melbourne's Hazara cultural precinct on Thomas Street, Dandenong."
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/precinct.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.InstanceTTL == 0 {
		c.InstanceTTL = 30 * time.Minute
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 12 * time.Hour
	}
	if c.LoginAttempts == 0 {
		c.LoginAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
}

// Validate reports missing required settings.
func (c SiteConfig) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("precinct: SessionSecret is required"))
	}
	if c.AuthSecret == "" {
		errs = append(errs, errors.New("precinct: AuthSecret is required"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a SiteConfig from an optional YAML file, an optional
// .env file and the environment, in that order of precedence (lowest first).
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	c.Name = EnvOr("SITE_NAME", c.Name)
	c.URL = EnvOr("SITE_URL", c.URL)
	c.Description = EnvOr("SITE_DESCRIPTION", c.Description)
	c.Addr = EnvOr("ADDR", c.Addr)
	c.DatabasePath = EnvOr("DATABASE_PATH", c.DatabasePath)
	c.StaticDir = EnvOr("STATIC_DIR", c.StaticDir)
	c.SessionSecret = EnvOr("SESSION_SECRET", c.SessionSecret)
	c.AuthSecret = EnvOr("AUTH_SECRET", c.AuthSecret)

	var err error
	if c.CookieSecure, err = envBool("COOKIE_SECURE", c.CookieSecure); err != nil {
		return err
	}
	if c.MetricsEnabled, err = envBool("METRICS_ENABLED", c.MetricsEnabled); err != nil {
		return err
	}
	if c.InstanceTTL, err = envDuration("INSTANCE_TTL", c.InstanceTTL); err != nil {
		return err
	}
	if c.SessionTTL, err = envDuration("SESSION_TTL", c.SessionTTL); err != nil {
		return err
	}
	return nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the application logger (default no-op).
func WithLogger(log *zap.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithRegistry sets where metrics are registered. Defaults to a fresh
// registry served at /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.metrics = reg
	}
}
