package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/reposync/internal/client/client"
	"github.com/dmitrijs2005/reposync/internal/client/confdir"
	"github.com/spf13/cobra"
)

func (a *App) newInitCmd() *cobra.Command {
	var dataDir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config directory and the daemon data directory",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			d, err := confdir.Init(a.config.ConfDir, dataDir)
			if err != nil {
				return err
			}
			dd, err := d.DataDir()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Initialized config directory %s\nData directory: %s\n", d.Path, dd)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataDir, "datadir", "d", "", "daemon data directory (default <confdir>/data)")
	return cmd
}

func (a *App) newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon and wait until it answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.confDir()
			if err != nil {
				return err
			}
			dataDir, err := d.DataDir()
			if err != nil {
				return err
			}
			return a.withDaemon(func(c client.Client) error {
				ctx := cmd.Context()
				if c.Ping(ctx) == nil {
					fmt.Fprintln(a.out, "Daemon is already running")
					return nil
				}

				args := []string{"-d", dataDir}
				if a.config.Socket != "" {
					args = append(args, "-s", a.config.Socket)
				}
				a.logger.Info(ctx, "starting daemon", "binary", a.config.DaemonBinary, "args", args)
				if err := a.startDaemon(a.config.DaemonBinary, args...); err != nil {
					return a.bestEffort(fmt.Errorf("starting %s: %w", a.config.DaemonBinary, err))
				}
				if err := a.waitForDaemon(ctx, c); err != nil {
					return a.bestEffort(err)
				}
				fmt.Fprintln(a.out, "Daemon started")
				return nil
			})
		},
	}
}

// waitForDaemon pings until the daemon answers or the call timeout elapses.
func (a *App) waitForDaemon(ctx context.Context, c client.Client) error {
	deadline := a.clock.Now().Add(a.config.Timeout)
	for {
		err := c.Ping(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if a.clock.Now().After(deadline) {
			return fmt.Errorf("daemon did not answer within %s: %w", a.config.Timeout, err)
		}
		a.clock.Sleep(pingInterval)
	}
}

func (a *App) newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Ask the daemon to exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDaemon(func(c client.Client) error {
				if err := c.Shutdown(cmd.Context()); err != nil {
					return a.bestEffort(err)
				}
				fmt.Fprintln(a.out, "Daemon stopped")
				return nil
			})
		},
	}
}
