package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/corplearn/corplearn-backend/pkg/logger"
)

// Config is the full application configuration, loaded from a YAML file
// selected by APP_ENV with environment-variable overrides for secrets.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	CORS     CORSConfig     `yaml:"cors"`
	Review   ReviewConfig   `yaml:"review"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Env  string `yaml:"env"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type JWTConfig struct {
	Secret    string        `yaml:"secret"`
	ExpiresIn time.Duration `yaml:"expires_in"`
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// ReviewConfig carries the workflow policy knobs.
type ReviewConfig struct {
	// PendingPolicy is "replace" or "reject"; see service.Policy.
	PendingPolicy string `yaml:"pending_policy"`
	// ArchiveOnFirstReject archives an entity whose first submission is
	// rejected instead of returning it to no_content.
	ArchiveOnFirstReject *bool `yaml:"archive_on_first_reject"`
}

// Load reads the YAML config at path and applies env overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (set JWT_SECRET or jwt.secret)")
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "local"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 3306
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.JWT.ExpiresIn == 0 {
		cfg.JWT.ExpiresIn = 24 * time.Hour
	}
	if cfg.Review.PendingPolicy == "" {
		cfg.Review.PendingPolicy = "replace"
	}
	if cfg.Review.ArchiveOnFirstReject == nil {
		t := true
		cfg.Review.ArchiveOnFirstReject = &t
	}
}

// applyEnvOverrides lets secrets and connection details come from the
// environment, so config files stay checked-in and credential-free.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
}

// IsDevelopment reports whether the server runs in a development
// environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "local" || c.Server.Env == "development"
}

// LogResolved logs the non-secret resolved configuration at startup.
func LogResolved(c *Config) {
	logger.Get().Info().
		Str("env", c.Server.Env).
		Int("port", c.Server.Port).
		Str("db_host", c.Database.Host).
		Str("db_name", c.Database.Name).
		Str("redis_host", c.Redis.Host).
		Str("pending_policy", c.Review.PendingPolicy).
		Msg("configuration loaded")
}
