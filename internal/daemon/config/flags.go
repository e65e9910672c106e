package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/reposync/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-d string     data directory
//	-s string     listen socket ("unix:/path" or "host:port")
//	-b string     database DSN
//	-l string     log level
//	-f string     log file
//	-t duration   handshake timeout
//	-n int        repo cache size
//	-g duration   shutdown grace period
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-s", "-b", "-l", "-f", "-t", "-n", "-g"})

	fs := flag.NewFlagSet("reposyncd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.DataDir, "d", config.DataDir, "data directory")
	fs.StringVar(&config.Socket, "s", config.Socket, "listen socket")
	fs.StringVar(&config.DatabaseDSN, "b", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFile, "f", config.LogFile, "log file")
	fs.DurationVar(&config.HandshakeTimeout, "t", config.HandshakeTimeout, "handshake timeout")
	fs.IntVar(&config.RepoCacheSize, "n", config.RepoCacheSize, "repo cache size")
	fs.DurationVar(&config.ShutdownGrace, "g", config.ShutdownGrace, "shutdown grace period")

	return fs.Parse(args)
}
