// Package config handles configuration for the reposync daemon,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

// Config holds runtime settings for reposyncd.
//
// Fields:
//   - DataDir: directory owning the database, socket, pid file and logs.
//   - Socket: listen address, "unix:<path>" or "host:port". Empty means
//     a unix socket inside DataDir.
//   - DatabaseDSN: empty selects SQLite inside DataDir; a postgres:// DSN
//     selects PostgreSQL through pgx.
//   - LogLevel / LogFormat / LogFile: slog settings. Empty LogFile logs to stdout.
//   - HandshakeTimeout: bound on the server handshake done before a clone
//     is accepted.
//   - RepoCacheSize: number of repo records kept in the LRU cache.
//   - ShutdownGrace: time allowed for in-flight RPCs on shutdown.
type Config struct {
	DataDir          string
	Socket           string
	DatabaseDSN      string
	LogLevel         string
	LogFormat        string
	LogFile          string
	HandshakeTimeout time.Duration
	RepoCacheSize    int
	ShutdownGrace    time.Duration
}

const (
	socketName = "reposyncd.sock"
	dbName     = "reposync.db"
	pidName    = "reposyncd.pid"
)

// LoadDefaults populates Config with defaults suitable for a single user.
func (c *Config) LoadDefaults() {
	c.DataDir = defaultDataDir()
	c.Socket = ""
	c.DatabaseDSN = ""
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.LogFile = ""
	c.HandshakeTimeout = 10 * time.Second
	c.RepoCacheSize = 128
	c.ShutdownGrace = 5 * time.Second
}

func defaultDataDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return "reposync-data"
	}
	return filepath.Join(home, ".reposync", "data")
}

// SocketAddr returns the configured listen address, defaulting to a unix
// socket in DataDir.
func (c *Config) SocketAddr() string {
	if c.Socket != "" {
		return c.Socket
	}
	return "unix:" + filepath.Join(c.DataDir, socketName)
}

// UsesPostgres reports whether DatabaseDSN selects the PostgreSQL store.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseDSN, "postgres://") || strings.HasPrefix(c.DatabaseDSN, "postgresql://")
}

// SQLitePath is the database file used when DatabaseDSN is not postgres.
func (c *Config) SQLitePath() string {
	if c.DatabaseDSN != "" && !c.UsesPostgres() {
		return c.DatabaseDSN
	}
	return filepath.Join(c.DataDir, dbName)
}

func (c *Config) PidFile() string {
	return filepath.Join(c.DataDir, pidName)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if expanded, err := homedir.Expand(cfg.DataDir); err == nil {
		cfg.DataDir = expanded
	}
	return cfg, nil
}
