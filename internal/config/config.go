// Package config loads the server configuration from a YAML file with
// environment-variable overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port          string        `yaml:"port"`
	DatabaseDSN   string        `yaml:"database_dsn"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTIssuer     string        `yaml:"jwt_issuer"`
	AccessTTL     time.Duration `yaml:"access_ttl"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl"`
	LogLevel      string        `yaml:"log_level"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Port:       "8080",
		JWTIssuer:  "pacomprar",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		LogLevel:   "info",
	}
}

// Load reads the YAML file at path (skipped when path is empty or missing)
// and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: jwt secret is required")
	}
	if cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("config: database dsn is required")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PACOMPRAR_PORT")
	setString(&c.DatabaseDSN, "PACOMPRAR_DATABASE_DSN")
	setString(&c.RedisAddr, "PACOMPRAR_REDIS_ADDR")
	setString(&c.RedisPassword, "PACOMPRAR_REDIS_PASSWORD")
	setString(&c.JWTSecret, "PACOMPRAR_JWT_SECRET")
	setString(&c.JWTIssuer, "PACOMPRAR_JWT_ISSUER")
	setDuration(&c.AccessTTL, "PACOMPRAR_ACCESS_TTL")
	setDuration(&c.RefreshTTL, "PACOMPRAR_REFRESH_TTL")
	setString(&c.LogLevel, "PACOMPRAR_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
