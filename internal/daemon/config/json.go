package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/reposync/internal/flagx"
	"github.com/dmitrijs2005/reposync/internal/timex"
	"github.com/tidwall/jsonc"
)

// JsonConfig is the on-disk shape of the daemon config file. Comments
// are allowed. Durations accept "10s" style strings or nanoseconds.
// Only keys present in the file override the current values.
type JsonConfig struct {
	DataDir          *string         `json:"data_dir"`
	Socket           *string         `json:"socket"`
	DatabaseDSN      *string         `json:"database_dsn"`
	LogLevel         *string         `json:"log_level"`
	LogFormat        *string         `json:"log_format"`
	LogFile          *string         `json:"log_file"`
	HandshakeTimeout *timex.Duration `json:"handshake_timeout"`
	RepoCacheSize    *int            `json:"repo_cache_size"`
	ShutdownGrace    *timex.Duration `json:"shutdown_grace"`
}

// parseJson overlays the file named by -c/-config onto config. Without
// the flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	setString(&config.DataDir, c.DataDir)
	setString(&config.Socket, c.Socket)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogFile, c.LogFile)
	if c.HandshakeTimeout != nil {
		config.HandshakeTimeout = c.HandshakeTimeout.Duration
	}
	if c.RepoCacheSize != nil {
		config.RepoCacheSize = *c.RepoCacheSize
	}
	if c.ShutdownGrace != nil {
		config.ShutdownGrace = c.ShutdownGrace.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
