// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the service. Defaults suit local development.
type Config struct {
	HTTP      HTTPConfig
	DB        DBConfig
	Auth      AuthConfig
	Audit     AuditConfig
	CORSAllow string `env:"CORS_ALLOW_ORIGIN" envDefault:"*"`
}

// HTTPConfig holds server settings. WriteTimeout defaults to 0 because a
// nonzero value would cut off long-lived /live event streams.
type HTTPConfig struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"0"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"volunteerhub"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"20"`
	MinConns int32  `env:"DB_MIN_CONNS" envDefault:"2"`
}

// DSN builds a libpq-compatible connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// AuthConfig gates the administrator role by a single fixed email and
// signs session tokens. Extra accounts may sign in but never gain the
// admin role.
type AuthConfig struct {
	AdminEmail    string            `env:"ADMIN_EMAIL" envDefault:"admin@volunteer-app.com"`
	AdminPassword string            `env:"ADMIN_PASSWORD,unset"`
	Accounts      map[string]string `env:"AUTH_ACCOUNTS" envKeyValSeparator:":"`
	JWTSecret     string            `env:"JWT_SECRET,unset" envDefault:"dev-only-secret"`
	SessionTTL    time.Duration     `env:"SESSION_TTL" envDefault:"12h"`
}

// AuditConfig drives the occupancy consistency auditor.
type AuditConfig struct {
	Interval time.Duration `env:"AUDIT_INTERVAL" envDefault:"5m"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
