package config

import "github.com/spf13/pflag"

// BindFlags registers the global flags on fs with the current values as
// defaults, so flags given on the command line win over the environment.
//
//	-c, --confdir string     config directory
//	    --socket string      daemon address
//	    --timeout duration   per-call timeout
//	    --log-level string   diagnostics level
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.ConfDir, "confdir", "c", c.ConfDir, "config directory")
	fs.StringVar(&c.Socket, "socket", c.Socket, `daemon address ("unix:<path>" or "host:port")`)
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "timeout of each daemon call")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "diagnostics level (debug, info, warn, error)")
}
