// Package server runs the engine's two receivers on their sockets and
// coordinates startup and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const (
	// maxMessageSize caps OTLP export payloads on the gRPC receiver.
	maxMessageSize = 16 * 1024 * 1024

	shutdownTimeout = 5 * time.Second
)

// Server owns the gRPC and HTTP listeners of the engine.
type Server struct {
	grpcAddr string
	httpAddr string
	logger   *zap.Logger

	grpcServer *grpc.Server
	httpServer *http.Server

	grpcLis net.Listener
	httpLis net.Listener
}

// New creates a Server for the given addresses. handler carries the whole
// HTTP surface; register is called once with the gRPC server instance to
// attach the export services.
func New(grpcAddr, httpAddr string, handler http.Handler, register func(*grpc.Server), logger *zap.Logger) *Server {
	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
	)
	register(grpcServer)

	return &Server{
		grpcAddr:   grpcAddr,
		httpAddr:   httpAddr,
		logger:     logger,
		grpcServer: grpcServer,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Bind claims both listening sockets without serving yet. It is separate
// from Run so a port conflict surfaces as a startup error, not a crash of a
// running process. Calling Bind again after success is a no-op.
func (s *Server) Bind() error {
	if s.grpcLis != nil {
		return nil
	}

	grpcLis, err := net.Listen("tcp", s.grpcAddr)
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", s.grpcAddr, err)
	}
	httpLis, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		grpcLis.Close()
		return fmt.Errorf("http listen on %s: %w", s.httpAddr, err)
	}

	s.grpcLis = grpcLis
	s.httpLis = httpLis
	return nil
}

// GRPCAddr returns the bound gRPC address once Bind has succeeded.
func (s *Server) GRPCAddr() string {
	if s.grpcLis == nil {
		return s.grpcAddr
	}
	return s.grpcLis.Addr().String()
}

// HTTPAddr returns the bound HTTP address once Bind has succeeded.
func (s *Server) HTTPAddr() string {
	if s.httpLis == nil {
		return s.httpAddr
	}
	return s.httpLis.Addr().String()
}

// Run binds if necessary, serves both receivers and blocks until ctx is
// cancelled or one of the servers fails, then shuts both down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Bind(); err != nil {
		return err
	}

	s.logger.Info("otlp grpc receiver listening", zap.String("addr", s.GRPCAddr()))
	s.logger.Info("otlp http receiver listening", zap.String("addr", s.HTTPAddr()))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.grpcServer.Serve(s.grpcLis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.httpServer.Serve(s.httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.shutdown()
		return nil
	})

	return g.Wait()
}

// shutdown stops accepting new connections and waits for in-flight export
// requests. WebSocket sessions ride hijacked connections and end with the
// process, matching the desktop lifecycle.
func (s *Server) shutdown() {
	s.logger.Info("shutting down receivers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http shutdown incomplete", zap.Error(err))
		_ = s.httpServer.Close()
	}

	s.grpcServer.GracefulStop()
}
