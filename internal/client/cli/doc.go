// Package cli implements the reposync command-line client.
//
// Each subcommand maps to one client workflow or one daemon call:
//
//	init              create the config directory and the daemon data directory
//	start / stop      launch the daemon and wait for it, or ask it to exit
//	list              libraries synced by the daemon
//	list-remote       libraries on the server
//	status            clone and sync progress, optionally polled with --watch
//	download          fetch a library into a new folder
//	download-by-name  same, looked up by name
//	sync              bind a library to an existing folder
//	desync            stop syncing a folder
//	create            create a library on the server
//	config            read or write a daemon config value
//
// Failed daemon calls are printed and the process exits 0. Missing
// arguments, an uninitialized config directory and validation errors exit
// non-zero.
package cli
