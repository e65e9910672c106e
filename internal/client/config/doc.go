// Package config loads runtime configuration for the reposync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. An optional env file read with godotenv, then REPOSYNC_* variables
//     from the process environment, which win over the file.
//  3. Persistent command-line flags bound by (*Config).BindFlags.
//
// # Environment
//
//	REPOSYNC_CONFDIR   config directory (default ~/.reposync)
//	REPOSYNC_SOCKET    daemon address, "unix:<path>" or "host:port"
//	REPOSYNC_TIMEOUT   per-call timeout, e.g. "10s"
//	REPOSYNC_SERVER    default server URL
//	REPOSYNC_USER      default account name
//	REPOSYNC_DAEMON    path of the reposyncd binary
//	REPOSYNC_LOG_LEVEL diagnostics level on stderr
package config
