package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "REPOSYNC_"

// parseEnv overlays cfg with REPOSYNC_* values. Values in envFile are
// used only when the process environment does not set the same key. A
// missing envFile is not an error.
func parseEnv(cfg *Config, envFile string) error {
	fileVars := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	lookup := func(name string) (string, bool) {
		key := envPrefix + name
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	strs := map[string]*string{
		"CONFDIR":   &cfg.ConfDir,
		"SOCKET":    &cfg.Socket,
		"SERVER":    &cfg.ServerURL,
		"USER":      &cfg.Username,
		"DAEMON":    &cfg.DaemonBinary,
		"LOG_LEVEL": &cfg.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	if v, ok := lookup("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", envPrefix, err)
		}
		cfg.Timeout = d
	}
	return nil
}
