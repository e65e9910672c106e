// Package grpc exposes the daemon services over gRPC using the hand
// written Syncd service descriptor and the CBOR codec.
package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dmitrijs2005/reposync/internal/daemon/services"
	"github.com/dmitrijs2005/reposync/internal/logging"
	"github.com/dmitrijs2005/reposync/internal/netx"
	"github.com/dmitrijs2005/reposync/internal/proto"
	"google.golang.org/grpc"
)

type Server struct {
	proto.UnimplementedSyncdServer
	address  string
	grace    time.Duration
	repos    *services.RepoService
	config   *services.ConfigService
	logger   logging.Logger
	shutdown func()
}

// NewServer builds a server for address ("unix:<path>" or "host:port").
// shutdown is invoked after a Shutdown RPC has been answered.
func NewServer(address string, grace time.Duration, l logging.Logger, rs *services.RepoService,
	cs *services.ConfigService, shutdown func()) *Server {
	return &Server{
		address:  address,
		grace:    grace,
		logger:   l.With("module", "grpc_server"),
		repos:    rs,
		config:   cs,
		shutdown: shutdown,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ep, err := netx.ParseEndpoint(s.address)
	if err != nil {
		return err
	}
	lis, err := ep.Listen()
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "Starting gRPC server", "address", ep.String())
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then stops gracefully. In-flight
// calls get the grace period before connections are closed.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoveryInterceptor, s.loggingInterceptor))
	proto.RegisterSyncdServer(srv, s)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		s.stop(srv)
	}()

	err := srv.Serve(lis)
	cancel()
	<-stopped
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

func (s *Server) stop(srv *grpc.Server) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()

	if s.grace <= 0 {
		<-done
		return
	}
	t := time.NewTimer(s.grace)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
		srv.Stop()
	}
}
