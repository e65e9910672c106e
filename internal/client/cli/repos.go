package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/reposync/internal/client/client"
	"github.com/dmitrijs2005/reposync/internal/client/services"
	"github.com/spf13/cobra"
)

func newTable(w io.Writer, header string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	return tw
}

func (a *App) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List libraries synced by the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDaemon(func(c client.Client) error {
				repos, err := c.GetRepoList(cmd.Context(), -1, -1)
				if err != nil {
					return a.bestEffort(err)
				}
				tw := newTable(a.out, "Name\tID\tPath")
				for _, r := range repos {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.ID, r.Worktree)
				}
				return tw.Flush()
			})
		},
	}
}

func (a *App) newListRemoteCmd() *cobra.Command {
	var af accountFlags
	cmd := &cobra.Command{
		Use:   "list-remote",
		Short: "List libraries on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDaemon(func(c client.Client) error {
				ctx := cmd.Context()
				accounts, err := a.accounts(c)
				if err != nil {
					return err
				}
				acc, err := accounts.Resolve(ctx, af.account())
				if err != nil {
					return a.bestEffort(err)
				}
				tok, err := accounts.Token(ctx, acc)
				if err != nil {
					return a.bestEffort(err)
				}
				r, err := a.remotes(acc.ServerURL)
				if err != nil {
					return err
				}
				repos, err := r.ListRepos(ctx, tok)
				if err != nil {
					return a.bestEffort(err)
				}
				tw := newTable(a.out, "Name\tID")
				for _, repo := range repos {
					fmt.Fprintf(tw, "%s\t%s\n", repo.Name, repo.ID)
				}
				return tw.Flush()
			})
		},
	}
	af.bind(cmd.Flags(), a.config)
	return cmd
}

func (a *App) newStatusCmd() *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show clone and sync progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDaemon(func(c client.Client) error {
				svc := services.NewStatusService(c)
				if !watch {
					lines, err := svc.Report(cmd.Context())
					if err != nil {
						return a.bestEffort(err)
					}
					return a.printStatus(lines)
				}

				first := true
				return a.bestEffort(svc.Watch(cmd.Context(), interval, func(lines []services.StatusLine) error {
					if !first {
						fmt.Fprintln(a.out)
					}
					first = false
					return a.printStatus(lines)
				}))
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep polling until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval with --watch")
	return cmd
}

func (a *App) printStatus(lines []services.StatusLine) error {
	tw := newTable(a.out, "Name\tStatus\tProgress")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, l.State, l.Detail)
	}
	return tw.Flush()
}

func (a *App) newConfigCmd() *cobra.Command {
	var key, value string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or write a daemon config value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDaemon(func(c client.Client) error {
				ctx := cmd.Context()
				if cmd.Flags().Changed("value") {
					return a.bestEffort(c.SetConfig(ctx, key, value))
				}
				v, err := c.GetConfig(ctx, key)
				if err != nil {
					return a.bestEffort(err)
				}
				fmt.Fprintln(a.out, v)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "config key")
	cmd.Flags().StringVarP(&value, "value", "v", "", "new value; omit to print the current one")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
