// Package daemon wires the reposync daemon together: storage, the task
// manager, the sync engine and the gRPC service, and runs them until a
// signal or a Shutdown call arrives.
package daemon

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dmitrijs2005/reposync/internal/daemon/config"
	"github.com/dmitrijs2005/reposync/internal/daemon/engine"
	"github.com/dmitrijs2005/reposync/internal/daemon/repositories/repomanager"
	"github.com/dmitrijs2005/reposync/internal/daemon/services"
	"github.com/dmitrijs2005/reposync/internal/filex"
	"github.com/dmitrijs2005/reposync/internal/logging"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/reposync/internal/daemon/grpc"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	logFile       io.Closer
	db            *sql.DB
	repoService   *services.RepoService
	configService *services.ConfigService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := filex.EnsureDir(c.DataDir); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	app := &App{config: c}
	if err := app.initLogger(); err != nil {
		return nil, err
	}

	dsn := c.DatabaseDSN
	if !c.UsesPostgres() {
		dsn = c.SQLitePath()
	}
	db, m, err := repomanager.Open(ctx, c.UsesPostgres(), dsn)
	if err != nil {
		app.closeLog()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	eng := engine.NewLocal(app.logger, c.HandshakeTimeout)
	rs, err := services.NewRepoService(db, m, eng, clockwork.NewRealClock(), app.logger, services.RepoOptions{
		HandshakeTimeout: c.HandshakeTimeout,
		CacheSize:        c.RepoCacheSize,
	})
	if err != nil {
		_ = db.Close()
		app.closeLog()
		return nil, err
	}
	app.repoService = rs
	app.configService = services.NewConfigService(db, m, app.logger)
	return app, nil
}

// initLogger logs to stdout, or to LogFile. A relative LogFile lives in
// the logs directory under DataDir.
func (app *App) initLogger() error {
	var w io.Writer = os.Stdout
	if app.config.LogFile != "" {
		path := app.config.LogFile
		if !filepath.IsAbs(path) {
			dir, err := filex.EnsureSubDir(app.config.DataDir, "logs")
			if err != nil {
				return fmt.Errorf("log dir: %w", err)
			}
			path = filepath.Join(dir, path)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w, app.logFile = f, f
	}

	l, err := logging.New(w, app.config.LogLevel, app.config.LogFormat)
	if err != nil {
		app.closeLog()
		return err
	}
	app.logger = l
	return nil
}

func (app *App) closeLog() {
	if app.logFile != nil {
		_ = app.logFile.Close()
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) writePidFile() error {
	return os.WriteFile(app.config.PidFile(), []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

// Run serves until ctx is canceled, a signal arrives or a client calls
// Shutdown, then releases everything NewApp acquired.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "data_dir", app.config.DataDir)
	app.initSignalHandler(ctx, cancelFunc)

	defer app.close(ctx)

	if err := app.repoService.Restore(ctx); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if err := app.writePidFile(); err != nil {
		app.logger.Warn(ctx, "cannot write pid file", "error", err)
	}

	s := gs.NewServer(app.config.SocketAddr(), app.config.ShutdownGrace, app.logger,
		app.repoService, app.configService, cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Run(gctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
	}
	app.logger.Info(context.Background(), "Stopped")
	return err
}

func (app *App) close(ctx context.Context) {
	if err := app.repoService.Close(); err != nil {
		app.logger.Warn(ctx, "engine close", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}
	_ = os.Remove(app.config.PidFile())
	app.closeLog()
}
