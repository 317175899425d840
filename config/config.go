// Package config defines the application configuration structures.
//
// Separated from cmd to allow other packages (ai, data, ssh, tui) to
// depend on config without importing Cobra.
package config

import (
	"strconv"
	"strings"
)

// PostgresConfig describes a Postgres data source.
type PostgresConfig struct {
	Host     string    `yaml:"host"`
	Port     int       `yaml:"port"`
	User     string    `yaml:"user"`
	Password string    `yaml:"password,omitempty"`
	Database string    `yaml:"database"`
	SSLMode  string    `yaml:"ssl_mode"`
	SSH      SSHConfig `yaml:"ssh,omitempty"`
}

// SSHConfig holds SSH tunnel settings.
type SSHConfig struct {
	Enabled       bool   `yaml:"enabled,omitempty"`
	Host          string `yaml:"host,omitempty"`
	Port          int    `yaml:"port,omitempty"`
	User          string `yaml:"user,omitempty"`
	KeyPath       string `yaml:"key_path,omitempty"`
	KeyPassphrase string `yaml:"key_passphrase,omitempty"`
	KnownHosts    string `yaml:"known_hosts,omitempty"` // defaults to ~/.ssh/known_hosts
	Insecure      bool   `yaml:"insecure,omitempty"`    // skip host key verification
}

// DSN builds a pgx-compatible connection string.
// When SSH tunnel is active, the caller should override Host/Port
// with the local tunnel endpoint.
func (c PostgresConfig) DSN() string {
	parts := []string{
		"host=" + quoteDSN(c.Host),
		"port=" + strconv.Itoa(c.Port),
		"user=" + quoteDSN(c.User),
	}
	if c.Password != "" {
		parts = append(parts, "password="+quoteDSN(c.Password))
	}
	parts = append(parts, "dbname="+quoteDSN(c.Database))
	if c.SSLMode != "" {
		parts = append(parts, "sslmode="+c.SSLMode)
	}
	return strings.Join(parts, " ")
}

// DefaultPostgres returns a local Postgres source with sensible defaults.
func DefaultPostgres() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Database: "postgres",
		SSLMode:  "disable",
		SSH:      SSHConfig{Port: 22},
	}
}

// quoteDSN single-quotes values that libpq would otherwise split.
func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
