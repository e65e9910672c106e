package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dmitrijs2005/reposync/internal/buildinfo"
	"github.com/dmitrijs2005/reposync/internal/client/client"
	"github.com/dmitrijs2005/reposync/internal/client/confdir"
	"github.com/dmitrijs2005/reposync/internal/client/config"
	"github.com/dmitrijs2005/reposync/internal/client/services"
	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/logging"
	"github.com/jonboulle/clockwork"
)

// daemonSocketName is the socket the daemon opens in its data directory
// when no explicit address is configured.
const daemonSocketName = "reposyncd.sock"

// pingInterval paces the readiness checks of "start".
const pingInterval = 200 * time.Millisecond

type App struct {
	config *config.Config
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	logger logging.Logger
	clock  clockwork.Clock

	// Seams replaced in tests.
	dial        func(address string, timeout time.Duration) (client.Client, error)
	remotes     services.RemoteFactory
	prompt      services.Prompter
	startDaemon func(name string, args ...string) error
	hostname    func() (string, error)
}

func NewApp(c *config.Config, in io.Reader, out, errOut io.Writer) *App {
	return &App{
		config: c,
		in:     in,
		out:    out,
		errOut: errOut,
		logger: logging.Nop(),
		clock:  clockwork.NewRealClock(),
		dial: func(address string, timeout time.Duration) (client.Client, error) {
			return client.NewGRPCClient(address, timeout)
		},
		prompt:      newTermPrompter(in, errOut),
		startDaemon: startDetached,
		hostname:    os.Hostname,
	}
}

// setup runs after flags are parsed: it finalizes the config and the logger.
func (a *App) setup() error {
	if err := a.config.ExpandConfDir(); err != nil {
		return err
	}
	l, err := logging.New(a.errOut, a.config.LogLevel, "text")
	if err != nil {
		return err
	}
	a.logger = l.With("module", "cli")
	if a.remotes == nil {
		a.remotes = services.HTTPRemotes(a.config.Timeout)
	}
	return nil
}

func (a *App) confDir() (*confdir.Dir, error) {
	return confdir.Open(a.config.ConfDir)
}

// daemonAddress is the configured socket or the one inside the data
// directory recorded by init.
func (a *App) daemonAddress() (string, error) {
	if a.config.Socket != "" {
		return a.config.Socket, nil
	}
	d, err := a.confDir()
	if err != nil {
		return "", err
	}
	dataDir, err := d.DataDir()
	if err != nil {
		return "", err
	}
	return "unix:" + filepath.Join(dataDir, daemonSocketName), nil
}

func (a *App) connect() (client.Client, error) {
	addr, err := a.daemonAddress()
	if err != nil {
		return nil, err
	}
	a.logger.Debug(context.Background(), "connecting to daemon", "address", addr)
	return a.dial(addr, a.config.Timeout)
}

// withDaemon connects to the daemon for the duration of fn.
func (a *App) withDaemon(fn func(c client.Client) error) error {
	c, err := a.connect()
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func (a *App) device(d *confdir.Dir) (services.Device, error) {
	id, err := d.DeviceID()
	if err != nil {
		return services.Device{}, err
	}
	host, err := a.hostname()
	if err != nil {
		host = "unknown"
	}
	return services.Device{
		ID:              id,
		Name:            host,
		Platform:        "linux-cli",
		PlatformVersion: runtime.GOOS + "/" + runtime.GOARCH,
		ClientVersion:   buildinfo.ClientVersion(),
	}, nil
}

func (a *App) accounts(c client.Client) (services.AccountService, error) {
	d, err := a.confDir()
	if err != nil {
		return nil, err
	}
	dev, err := a.device(d)
	if err != nil {
		return nil, err
	}
	return services.NewAccountService(c, a.remotes, a.prompt, dev, a.clock, a.logger), nil
}

func (a *App) downloads(c client.Client) (services.DownloadService, error) {
	acc, err := a.accounts(c)
	if err != nil {
		return nil, err
	}
	return services.NewDownloadService(c, acc, a.remotes, a.prompt, a.logger), nil
}

// fatal reports whether err should end the process with a non-zero
// status rather than being printed.
func fatal(err error) bool {
	return errors.Is(err, common.ErrorValidation) ||
		errors.Is(err, common.ErrorInvalidConfigKey) ||
		errors.Is(err, confdir.ErrNotInitialized) ||
		errors.Is(err, confdir.ErrNoDataDir)
}

// bestEffort prints err and swallows it unless it is a setup or
// validation failure.
func (a *App) bestEffort(err error) error {
	if err == nil || fatal(err) {
		return err
	}
	a.logger.Debug(context.Background(), "command failed", "error", err)
	fmt.Fprintf(a.errOut, "error: %v\n", err)
	return nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
