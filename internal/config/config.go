package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"-"`

	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`
	SessionTTLHours             int `toml:"session_ttl_hours"`
	TargetsCacheSizeMB          int `toml:"targets_cache_size_mb"`

	Gate GateConfig `toml:"gate"`
}

type GateConfig struct {
	HomePath       string   `toml:"home_path"`
	LoginPath      string   `toml:"login_path"`
	OnboardingPath string   `toml:"onboarding_path"`
	DashboardPath  string   `toml:"dashboard_path"`
	PublicPaths    []string `toml:"public_paths"`
	// how long a route query waits for the gate to leave the loading state
	SettleTimeoutMs int `toml:"settle_timeout_ms"`
	// unmount gates of sessions not queried for this long
	IdleTimeoutMin int `toml:"idle_timeout_min"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (g GateConfig) SettleTimeout() time.Duration {
	return time.Duration(g.SettleTimeoutMs) * time.Millisecond
}

func (g GateConfig) IdleTimeout() time.Duration {
	return time.Duration(g.IdleTimeoutMin) * time.Minute
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(env)
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config for env [%s]: %w", env, err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 24 * 7
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
	if c.TargetsCacheSizeMB == 0 {
		c.TargetsCacheSizeMB = 10
	}
	if c.Gate.HomePath == "" {
		c.Gate.HomePath = "/"
	}
	if c.Gate.LoginPath == "" {
		c.Gate.LoginPath = "/login"
	}
	if c.Gate.OnboardingPath == "" {
		c.Gate.OnboardingPath = "/onboarding"
	}
	if c.Gate.DashboardPath == "" {
		c.Gate.DashboardPath = "/app/nutrition"
	}
	if len(c.Gate.PublicPaths) == 0 {
		c.Gate.PublicPaths = []string{c.Gate.HomePath, c.Gate.LoginPath, "/register"}
	}
	if c.Gate.SettleTimeoutMs == 0 {
		c.Gate.SettleTimeoutMs = 2000
	}
	if c.Gate.IdleTimeoutMin == 0 {
		c.Gate.IdleTimeoutMin = 30
	}
}

func (c *Config) validate() error {
	if c.Port <= 0 {
		return errors.New("port must be set")
	}
	if c.Gate.OnboardingPath == c.Gate.DashboardPath {
		return errors.New("gate onboarding and dashboard paths must differ")
	}
	return nil
}
