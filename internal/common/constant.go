// Package common contains shared constants and sentinel errors used across
// reposync components.
package common

// TransferTokenHeaderName is the HTTP header carrying the short-lived
// transfer token on requests the daemon makes to the sync server.
const TransferTokenHeaderName = "Seafile-Repo-Token"

// AutoSyncConfigKey is the daemon config key holding the global auto-sync
// switch ("true"/"false"). Absent means enabled.
const AutoSyncConfigKey = "auto_sync_enabled"

// Config keys the CLI stores in the daemon to remember the account it was
// last used with.
const (
	ServerURLConfigKey = "server_url"
	UsernameConfigKey  = "username"
	TokenConfigKey     = "token"
)
