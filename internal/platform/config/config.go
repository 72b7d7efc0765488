// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, auth) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/huynhtran/opsboard/internal/platform/sec"
)

// # Configuration Schema

// Config holds all runtime configuration for the Opsboard API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Key-Value Store (Redis) — lockout counters
	RedisURL string `env:"REDIS_URL,required"`

	// SessionSecret signs session tokens. Rotating it invalidates every
	// outstanding session at once.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// Sign-in throttling
	MaxFailedAttempts int `env:"AUTH_MAX_FAILED_ATTEMPTS" envDefault:"5"`
	LockoutMinutes    int `env:"AUTH_LOCKOUT_MINUTES"     envDefault:"15"`

	// SessionLifetimeSeconds bounds how long an issued token verifies (8h).
	SessionLifetimeSeconds int `env:"AUTH_SESSION_LIFETIME_SECONDS" envDefault:"28800"`

	// Bootstrap owner account, seeded on first start when no owner exists.
	BootstrapUsername   string `env:"BOOTSTRAP_USERNAME"   envDefault:"owner"`
	BootstrapPassphrase string `env:"BOOTSTRAP_PASSPHRASE"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// Besides presence checks, it validates values the security core depends
// on: the signing secret length and the positivity of the lockout knobs.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if len(cfg.SessionSecret) < sec.MinSecretLen {
		return nil, fmt.Errorf("config: SESSION_SECRET must be at least %d bytes, got %d", sec.MinSecretLen, len(cfg.SessionSecret))
	}

	if cfg.MaxFailedAttempts < 1 {
		return nil, fmt.Errorf("config: AUTH_MAX_FAILED_ATTEMPTS must be positive, got %d", cfg.MaxFailedAttempts)
	}

	if cfg.LockoutMinutes < 1 {
		return nil, fmt.Errorf("config: AUTH_LOCKOUT_MINUTES must be positive, got %d", cfg.LockoutMinutes)
	}

	if cfg.SessionLifetimeSeconds < 1 {
		return nil, fmt.Errorf("config: AUTH_SESSION_LIFETIME_SECONDS must be positive, got %d", cfg.SessionLifetimeSeconds)
	}

	return cfg, nil
}

// # Derived Values

// LockoutDuration returns the configured lockout window as a [time.Duration].
func (c *Config) LockoutDuration() time.Duration {
	return time.Duration(c.LockoutMinutes) * time.Minute
}

// SessionLifetime returns the configured session lifetime as a [time.Duration].
func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionLifetimeSeconds) * time.Second
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
