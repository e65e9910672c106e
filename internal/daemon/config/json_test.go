package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reposyncd.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	t.Run("loads from json with comments", func(t *testing.T) {
		path := writeTempJSON(t, `{
			// local socket
			"socket": "unix:/run/reposync.sock",
			"database_dsn": "postgres://localhost/reposync",
			"handshake_timeout": "3s",
			"repo_cache_size": 16,
			"shutdown_grace": 2000000000, /* nanoseconds */
		}`)

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, "unix:/run/reposync.sock", cfg.Socket)
		assert.Equal(t, "postgres://localhost/reposync", cfg.DatabaseDSN)
		assert.Equal(t, 3*time.Second, cfg.HandshakeTimeout)
		assert.Equal(t, 16, cfg.RepoCacheSize)
		assert.Equal(t, 2*time.Second, cfg.ShutdownGrace)
		assert.Equal(t, "info", cfg.LogLevel, "keys absent from the file keep their value")
	})

	t.Run("no config flag leaves values alone", func(t *testing.T) {
		cfg := &Config{DataDir: "/keep"}
		require.NoError(t, parseJson(cfg, []string{"-d", "/other"}))
		assert.Equal(t, "/keep", cfg.DataDir)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeTempJSON(t, `{ this is not valid json`)
		require.Error(t, parseJson(&Config{}, []string{"-c", path}))
	})

	t.Run("missing file", func(t *testing.T) {
		require.Error(t, parseJson(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}))
	})
}
