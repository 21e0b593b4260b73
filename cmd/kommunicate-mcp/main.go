package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"kommunicate-mcp-go/internal/server"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var stdout io.Writer = os.Stdout

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "kommunicate-mcp:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, ok, err := parseOptions(args)
	if err != nil || !ok {
		return err
	}
	if opts.Version {
		fmt.Fprintln(stdout, Version)
		return nil
	}

	cfg, err := server.LoadConfig(opts.ConfigFile)
	if err != nil {
		return err
	}
	opts.apply(&cfg)

	// stdout carries the protocol in stdio mode, so logs always go to stderr
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().
		Timestamp().
		Logger()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	srv, err := server.New(cfg, Version, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv.Start(ctx)
	defer srv.Stop()

	if cfg.Transport == server.TransportStdio {
		logger.Info().Str("version", Version).Msg("Starting Kommunicate MCP server on stdio")
		if err := srv.ServeStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio transport: %w", err)
		}
		return nil
	}

	return serveHTTP(ctx, cfg.Addr, srv.Handler(), logger)
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", addr).
			Str("version", Version).
			Msg("Starting Kommunicate MCP server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
