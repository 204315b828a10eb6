package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/Indomitable/opentelemetry-inspect/internal/config"
	"github.com/Indomitable/opentelemetry-inspect/internal/processor"
	"github.com/Indomitable/opentelemetry-inspect/internal/pubsub"
	"github.com/Indomitable/opentelemetry-inspect/internal/receiver"
	"github.com/Indomitable/opentelemetry-inspect/internal/server"
	"github.com/Indomitable/opentelemetry-inspect/internal/ws"
)

const version = "0.1.0"

var logger *zap.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:   "otelinspect",
		Short: "OpenTelemetry Inspect - live OTLP inspector engine",
		Long: `Engine of the OpenTelemetry inspector: receives OTLP logs, traces and
metrics over gRPC and HTTP, normalizes every record and streams it to
connected WebSocket clients in real time.`,
		RunE: run,
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("Starting OpenTelemetry Inspect engine",
		zap.String("version", version),
		zap.String("grpc_addr", cfg.Server.GRPCAddr),
		zap.String("http_addr", cfg.Server.HTTPAddr),
		zap.String("static_dir", cfg.Static.Dir),
	)

	manager := pubsub.NewManager(logger)
	proc := processor.New(manager, logger)
	hub := ws.NewHub(manager, logger)
	mux := receiver.NewMux(receiver.NewHTTPReceiver(proc, logger), hub, cfg.Static.Dir)

	srv := server.New(cfg.Server.GRPCAddr, cfg.Server.HTTPAddr, mux, func(g *grpc.Server) {
		receiver.RegisterGRPC(g, proc)
	}, logger)

	// Claim both sockets before reporting the engine as started; a port
	// conflict is a startup failure, not a runtime one.
	if err := srv.Bind(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info("Shutdown complete")
	return nil
}
