// Package config loads service settings from the environment. Configuration
// is read once at startup into a Config value that is passed by reference
// into constructors; nothing reads the environment after Load returns.
package config

import (
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type JWTConfig struct {
	Secret        string `koanf:"jwt_secret"`
	Algorithm     string `koanf:"jwt_algorithm"`
	ExpireMinutes int    `koanf:"jwt_expire_minutes"`
}

type Config struct {
	Environment string `koanf:"environment"`
	Host        string `koanf:"host"`
	Port        string `koanf:"port"`
	LogLevel    string `koanf:"log_level"`
	DatabaseURI string `koanf:"database_uri"`
	AdminEmail  string `koanf:"admin_email"`
	JWT         JWTConfig
}

// Load reads the environment and validates the result. Missing secrets fail
// here, at startup, not at first use.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, errors.Wrap(err, "[config.Load]")
	}

	cfg := &Config{
		Environment: EnvProduction,
		Host:        "0.0.0.0",
		Port:        "8000",
		LogLevel:    "info",
		JWT: JWTConfig{
			Algorithm:     "HS256",
			ExpireMinutes: 1440,
		},
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "[config.Load] unmarshal")
	}
	if err := k.Unmarshal("", &cfg.JWT); err != nil {
		return nil, errors.Wrap(err, "[config.Load] unmarshal jwt")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("[config.Load] JWT_SECRET is required")
	}
	if c.AdminEmail == "" {
		return errors.New("[config.Load] ADMIN_EMAIL is required")
	}
	if c.JWT.ExpireMinutes <= 0 {
		return errors.New("[config.Load] JWT_EXPIRE_MINUTES must be positive")
	}
	// Development mode may run on the in-memory store; everything else needs
	// a database.
	if c.DatabaseURI == "" && !c.IsDevelopment() {
		return errors.New("[config.Load] DATABASE_URI is required outside development")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, EnvDevelopment)
}

// ListenAddr is the host:port the HTTP server binds.
func (c *Config) ListenAddr() string {
	return c.Host + ":" + c.Port
}
