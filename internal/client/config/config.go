package config

import (
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
)

// Config holds runtime settings for the reposync CLI.
//
// Fields:
//   - ConfDir: directory holding the datadir pointer and device id.
//   - Socket: daemon address. Empty means the unix socket inside the data
//     directory recorded in ConfDir.
//   - Timeout: bound on every daemon call.
//   - ServerURL / Username: account defaults for commands that talk to
//     the remote server.
//   - DaemonBinary: executable started by "reposync start".
//   - LogLevel: level of diagnostics written to stderr.
type Config struct {
	ConfDir      string
	Socket       string
	Timeout      time.Duration
	ServerURL    string
	Username     string
	DaemonBinary string
	LogLevel     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ConfDir = defaultConfDir()
	c.Socket = ""
	c.Timeout = 10 * time.Second
	c.ServerURL = ""
	c.Username = ""
	c.DaemonBinary = "reposyncd"
	c.LogLevel = "warn"
}

func defaultConfDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".reposync"
	}
	return filepath.Join(home, ".reposync")
}

// LoadConfig applies defaults and then the environment, optionally
// seeded from envFile. Flags are applied later, when cobra parses them
// into the fields bound by BindFlags.
func LoadConfig(envFile string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, envFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExpandConfDir resolves a leading "~" in ConfDir and makes it absolute.
func (c *Config) ExpandConfDir() error {
	dir, err := homedir.Expand(c.ConfDir)
	if err != nil {
		return err
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return err
	}
	c.ConfDir = dir
	return nil
}
