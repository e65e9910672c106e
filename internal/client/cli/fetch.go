package cli

import (
	"fmt"

	"github.com/dmitrijs2005/reposync/internal/client/client"
	"github.com/dmitrijs2005/reposync/internal/client/remote"
	"github.com/dmitrijs2005/reposync/internal/client/services"
	"github.com/spf13/cobra"
)

// fetchFlags are shared by download, download-by-name and sync.
type fetchFlags struct {
	accountFlags
	library   string
	dir       string
	libPasswd string
}

func (f *fetchFlags) request(cmd *cobra.Command) services.FetchRequest {
	req := services.FetchRequest{Account: f.account(), RepoID: f.library, Dir: f.dir}
	if cmd.Flags().Changed("libpasswd") {
		p := f.libPasswd
		req.LibPasswd = &p
	}
	return req
}

func (a *App) bindFetch(cmd *cobra.Command, f *fetchFlags, dirUsage string) {
	f.bind(cmd.Flags(), a.config)
	cmd.Flags().StringVarP(&f.dir, "dir", "d", ".", dirUsage)
	cmd.Flags().StringVarP(&f.libPasswd, "libpasswd", "e", "", "library password")
}

// runFetch runs one download workflow and reports the started repo.
func (a *App) runFetch(cmd *cobra.Command, what string,
	fn func(ds services.DownloadService) (string, error)) error {
	return a.withDaemon(func(c client.Client) error {
		ds, err := a.downloads(c)
		if err != nil {
			return err
		}
		id, err := fn(ds)
		if err != nil {
			return a.bestEffort(err)
		}
		fmt.Fprintf(a.out, "Started %s of library %s\n", what, id)
		return nil
	})
}

func (a *App) newDownloadCmd() *cobra.Command {
	var f fetchFlags
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a library into a new folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFetch(cmd, "download", func(ds services.DownloadService) (string, error) {
				return ds.Download(cmd.Context(), f.request(cmd))
			})
		},
	}
	a.bindFetch(cmd, &f, "parent directory of the new folder")
	cmd.Flags().StringVarP(&f.library, "library", "l", "", "library id")
	_ = cmd.MarkFlagRequired("library")
	return cmd
}

func (a *App) newDownloadByNameCmd() *cobra.Command {
	var (
		f    fetchFlags
		name string
	)
	cmd := &cobra.Command{
		Use:   "download-by-name",
		Short: "Download a library, looked up by name, into a new folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFetch(cmd, "download", func(ds services.DownloadService) (string, error) {
				return ds.DownloadByName(cmd.Context(), f.request(cmd), name)
			})
		},
	}
	a.bindFetch(cmd, &f, "parent directory of the new folder")
	cmd.Flags().StringVarP(&name, "libraryname", "L", "", "library name")
	_ = cmd.MarkFlagRequired("libraryname")
	return cmd
}

func (a *App) newSyncCmd() *cobra.Command {
	var f fetchFlags
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync a library with an existing folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFetch(cmd, "sync", func(ds services.DownloadService) (string, error) {
				return ds.Sync(cmd.Context(), f.request(cmd))
			})
		},
	}
	a.bindFetch(cmd, &f, "local folder")
	cmd.Flags().StringVarP(&f.library, "library", "l", "", "library id")
	_ = cmd.MarkFlagRequired("library")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func (a *App) newDesyncCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "desync",
		Short: "Stop syncing a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDaemon(func(c client.Client) error {
				ds, err := a.downloads(c)
				if err != nil {
					return err
				}
				r, err := ds.Desync(cmd.Context(), dir)
				if err != nil {
					return a.bestEffort(err)
				}
				fmt.Fprintf(a.out, "Desynchronized %s (%s)\n", r.Name, r.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "synced folder")
	return cmd
}

func (a *App) newCreateCmd() *cobra.Command {
	var (
		af accountFlags
		cr remote.CreateRepoRequest
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a library on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDaemon(func(c client.Client) error {
				ds, err := a.downloads(c)
				if err != nil {
					return err
				}
				id, err := ds.Create(cmd.Context(), af.account(), cr)
				if err != nil {
					return a.bestEffort(err)
				}
				fmt.Fprintln(a.out, id)
				return nil
			})
		},
	}
	af.bind(cmd.Flags(), a.config)
	cmd.Flags().StringVarP(&cr.Name, "name", "n", "", "library name")
	cmd.Flags().StringVarP(&cr.Desc, "desc", "t", "", "library description")
	cmd.Flags().StringVarP(&cr.Passwd, "libpasswd", "e", "", "library password, makes the library encrypted")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
