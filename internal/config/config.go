package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

const (
	defaultPort             = 9000
	defaultTimezone         = "UTC"
	defaultMutationsPerMin  = 120
	defaultPlanCacheSizeMB  = 8
	defaultPlanCacheTTLSec  = 60
	defaultPostgresPort     = "5432"
	defaultPostgresUser     = "postgres"
	defaultRedisPort        = "6379"
	defaultMetricsPort      = "9091"
	defaultMetricsHost      = "localhost"
	defaultPostgresHost     = "localhost"
	defaultRedisHost        = "localhost"
	defaultPostgresDBName   = "fitcoach"
	defaultLogLevel         = "info"
	defaultAllowedOriginDev = "http://localhost:3000"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// all calendar days are normalized to midnight in this location
	Timezone string `toml:"timezone"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	RunMigrations  bool   `toml:"run_migrations"`

	// redis (mutation rate limiting), mutations_per_min = 0 disables the limiter
	RedisHost       string `toml:"redis_host"`
	RedisPort       string `toml:"redis_port"`
	MutationsPerMin int    `toml:"mutations_per_min"`

	// active nutrition plan cache, plan_cache_ttl_sec = 0 disables it
	PlanCacheSizeMB int `toml:"plan_cache_size_mb"`
	PlanCacheTTLSec int `toml:"plan_cache_ttl_sec"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	AllowedOrigins []string `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

// Secrets are never read from the TOML file.
type Secrets struct {
	JWTSecret        string `env:"JWT_SECRET, required"`
	SentryDSN        string `env:"SENTRY_DSN"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED, default=false"`
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		if t.Development == nil {
			return nil, errors.New("development config missing")
		}
		t.Development.Environment = "development"
		return t.Development, nil
	case "prod", "production":
		if t.Production == nil {
			return nil, errors.New("production config missing")
		}
		t.Production.Environment = "production"
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path, picks the section for env,
// applies defaults and validates the result.
func Load(env, path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(env, string(raw))
}

func Parse(env, data string) (*Config, error) {
	var t Toml
	meta, err := toml.Decode(data, &t)
	if err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults(func(key string) bool {
		return meta.IsDefined(cfg.Environment, key)
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills unset values. Switches where 0 means disabled keep an explicit 0,
// so isDefined reports whether a key was written in the config section.
func (c *Config) applyDefaults(isDefined func(key string) bool) {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.PostgresHost == "" {
		c.PostgresHost = defaultPostgresHost
	}
	if c.PostgresPort == "" {
		c.PostgresPort = defaultPostgresPort
	}
	if c.PostgresDBName == "" {
		c.PostgresDBName = defaultPostgresDBName
	}
	if c.PostgresUser == "" {
		c.PostgresUser = defaultPostgresUser
	}
	if c.RedisHost == "" {
		c.RedisHost = defaultRedisHost
	}
	if c.RedisPort == "" {
		c.RedisPort = defaultRedisPort
	}
	if c.MutationsPerMin == 0 && !isDefined("mutations_per_min") {
		c.MutationsPerMin = defaultMutationsPerMin
	}
	if c.PlanCacheSizeMB == 0 {
		c.PlanCacheSizeMB = defaultPlanCacheSizeMB
	}
	if c.PlanCacheTTLSec == 0 && !isDefined("plan_cache_ttl_sec") {
		c.PlanCacheTTLSec = defaultPlanCacheTTLSec
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = defaultMetricsHost
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = defaultMetricsPort
	}
	if len(c.AllowedOrigins) == 0 && c.Environment == "development" {
		c.AllowedOrigins = []string{defaultAllowedOriginDev}
	}
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.MutationsPerMin < 0 {
		return fmt.Errorf("invalid mutations_per_min: %d", c.MutationsPerMin)
	}
	if c.PlanCacheTTLSec < 0 {
		return fmt.Errorf("invalid plan_cache_ttl_sec: %d", c.PlanCacheTTLSec)
	}
	return nil
}

// Location returns the configured timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) PlanCacheTTL() time.Duration {
	return time.Duration(c.PlanCacheTTLSec) * time.Second
}

// LoadSecrets reads secrets from the environment. A missing JWT_SECRET is an error:
// the service refuses to start with a default signing key.
func LoadSecrets(ctx context.Context, lookuper envconfig.Lookuper) (*Secrets, error) {
	var s Secrets
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &s,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}
	if strings.TrimSpace(s.JWTSecret) == "" {
		return nil, errors.New("load secrets: JWT_SECRET is blank")
	}
	return &s, nil
}
