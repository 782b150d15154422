package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-pdf-forms/internal/config"
	"github.com/a3tai/mcp-pdf-forms/internal/logging"
	"github.com/a3tai/mcp-pdf-forms/internal/mcp"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging builds the process logger. In stdio mode only warnings and
// errors are kept unless debug is enabled, and everything goes to stderr.
func setupLogging(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if cfg.IsStdioMode() && !cfg.IsDebug() && (level == "info" || level == "") {
		level = "warn"
	}
	return logging.New(level, cfg.LogFormat)
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, server *mcp.Server, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

// runStdioMode handles stdio mode execution. The parent process controls
// the lifecycle; the server returns when stdin closes.
func runStdioMode(ctx context.Context, server *mcp.Server, _ *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}

func run(cfg *config.Config, logger *zap.Logger) error {
	server, err := mcp.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		return runServerMode(ctx, server, logger)
	}
	return runStdioMode(ctx, server, logger)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting", zap.Stringer("config", cfg))

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP PDF Forms\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
