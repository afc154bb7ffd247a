package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	DataPath        string
	LogLevel        string
	LogFormat       string
	NATSURL         string
	MetricsPort     int
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SEMKERNEL_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: SEMKERNEL_CONFIG)")

	flag.StringVar(&cfg.DataPath, "data",
		getEnv("SEMKERNEL_DATA", ""),
		"Path to triples file loaded at startup (env: SEMKERNEL_DATA)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SEMKERNEL_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: SEMKERNEL_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SEMKERNEL_LOG_FORMAT", "json"),
		"Log format: json, text (env: SEMKERNEL_LOG_FORMAT)")

	flag.StringVar(&cfg.NATSURL, "nats-url",
		getEnv("SEMKERNEL_NATS_URL", "nats://localhost:4222"),
		"NATS server URL (env: SEMKERNEL_NATS_URL)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("SEMKERNEL_METRICS_PORT", 9090),
		"Prometheus scrape port, 0 to disable (env: SEMKERNEL_METRICS_PORT)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("SEMKERNEL_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: SEMKERNEL_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()
	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if cfg.DataPath != "" {
		if _, err := os.Stat(cfg.DataPath); err != nil {
			return fmt.Errorf("data file not found: %s", cfg.DataPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Semantic Data Engine

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Serve a triples file with default configuration
  %s --data=/path/to/triples.txt

  # Run with custom capacities and text logging
  %s --config=/etc/semkernel/config.yaml --log-level=debug --log-format=text

  # Run with environment variables
  export SEMKERNEL_NATS_URL=nats://broker:4222
  export SEMKERNEL_LOG_LEVEL=debug
  %s

  # Validate configuration only
  %s --config=/etc/semkernel/config.yaml --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
