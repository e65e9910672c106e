package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/reposync/internal/client/config"
	"github.com/dmitrijs2005/reposync/internal/client/services"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envFile is read from the working directory when present.
const envFile = ".env"

// Execute runs the CLI with args and returns the process exit status.
func Execute(args []string, in io.Reader, out, errOut io.Writer) int {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewApp(cfg, in, out, errOut).Command()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}
	return 0
}

// Command builds the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "reposync",
		Short: "Command-line client of the reposync daemon",

		// Errors are printed once by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	a.config.BindFlags(root.PersistentFlags())
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.AddCommand(
		a.newInitCmd(),
		a.newStartCmd(),
		a.newStopCmd(),
		a.newListCmd(),
		a.newListRemoteCmd(),
		a.newStatusCmd(),
		a.newDownloadCmd(),
		a.newDownloadByNameCmd(),
		a.newSyncCmd(),
		a.newDesyncCmd(),
		a.newCreateCmd(),
		a.newConfigCmd(),
	)
	return root
}

// accountFlags are the options of commands that talk to the server.
type accountFlags struct {
	server   string
	user     string
	password string
	token    string
	otp      string
}

func (f *accountFlags) bind(fs *pflag.FlagSet, c *config.Config) {
	fs.StringVarP(&f.server, "server", "s", c.ServerURL, "server URL")
	fs.StringVarP(&f.user, "username", "u", c.Username, "account username")
	fs.StringVarP(&f.password, "password", "p", "", "account password")
	fs.StringVarP(&f.token, "token", "T", "", "auth token, skips the password")
	fs.StringVarP(&f.otp, "tfa", "a", "", "two-factor authentication code")
}

func (f *accountFlags) account() services.Account {
	return services.Account{
		ServerURL: f.server,
		Username:  f.user,
		Password:  f.password,
		Token:     f.token,
		OTP:       f.otp,
	}
}
