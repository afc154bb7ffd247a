// Package main implements the entry point for the semkernel query
// server. It bulk-loads an optional triples file into an in-memory
// engine, computes reasoning closures, and serves queries over NATS
// request/reply with Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/semkernel/config"
	"github.com/c360/semkernel/engine"
	"github.com/c360/semkernel/metric"
	"github.com/c360/semkernel/service"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semkernel"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := initializeConfiguration(cliCfg)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	// Metrics registry is shared by the engine and the service.
	registry := metric.NewRegistry()

	eng, err := engine.New(cfg, logger, engine.WithMetrics(registry))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer func() { _ = eng.Close() }()

	// Bulk load, then compute closures, then serve. All writes happen
	// here; the service surface is read-only.
	if cliCfg.DataPath != "" {
		if err := loadTriples(eng, cliCfg.DataPath, logger); err != nil {
			return fmt.Errorf("load data: %w", err)
		}
	}
	if err := eng.ComputeClosures(); err != nil {
		return fmt.Errorf("compute closures: %w", err)
	}

	conn, err := connectNATS(cliCfg.NATSURL, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	svc, err := service.New(conn, eng, service.DefaultConfig(), logger,
		service.WithMetrics(registry))
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	var metricsServer *metric.Server
	if cliCfg.MetricsPort > 0 {
		metricsServer = metric.NewServer(cliCfg.MetricsPort, "/metrics", registry)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		slog.Info("Metrics server started", "port", cliCfg.MetricsPort)
	}

	if err := svc.Start(); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	stats := eng.Stats()
	slog.Info("semkernel started",
		"triples", stats.Triples,
		"interned", stats.InternedStrings,
		"reasoner_state", stats.ReasonerState)

	return waitForShutdown(svc, metricsServer, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting semkernel (semantic data engine)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// initializeConfiguration loads and validates configuration
func initializeConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	if cliCfg.ConfigPath == "" {
		cfg := config.DefaultConfig()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid default configuration: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// connectNATS establishes the NATS connection with retry backoff
func connectNATS(url string, logger *slog.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(appName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	logger.Info("Connected to NATS", "url", conn.ConnectedUrl())
	return conn, nil
}

// waitForShutdown blocks until a termination signal, then drains
func waitForShutdown(svc *service.Service, metricsServer *metric.Server, timeout time.Duration) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := svc.Stop(); err != nil {
		slog.Error("Error stopping service", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			slog.Error("Error stopping metrics server", "error", err)
		}
	}

	slog.Info("semkernel shutdown complete")
	return nil
}
