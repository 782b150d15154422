package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-pdf-forms/internal/config"
	"github.com/a3tai/mcp-pdf-forms/internal/descriptions"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/document"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/security"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	paths     *security.PathValidator
	loader    document.Loader
	logger    *zap.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	paths, err := security.NewPathValidator(cfg.WorkDirectory)
	if err != nil {
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:    cfg,
		paths:     paths,
		loader:    document.NewPDFCPULoader(false),
		logger:    logger,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// MCPServer exposes the underlying protocol server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(batchTool(toolFillForm, descriptions.PDFFillFormDescription), s.handleFillForm)
	s.mcpServer.AddTool(batchTool(toolCreateField, descriptions.PDFCreateFieldDescription), s.handleCreateField)
	s.mcpServer.AddTool(batchTool(toolGetFormFields, descriptions.PDFGetFormFieldsDescription), s.handleGetFormFields)

	s.mcpServer.AddTool(mcp.NewTool(
		toolExtractText,
		mcp.WithDescription(descriptions.PDFExtractTextDescription),
		mcp.WithString("path",
			mcp.Description("Path of the PDF, relative to the work directory"),
		),
		mcp.WithString("data",
			mcp.Description("Base64 PDF content, used when path is empty"),
		),
	), s.handleExtractText)
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves the protocol on stdin/stdout until ctx is done
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Info("starting stdio server", zap.String("work_directory", s.paths.Root()))

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the protocol over HTTP with server-sent events
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	s.logger.Info("starting http server", zap.String("address", addr), zap.String("work_directory", s.paths.Root()))

	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	}
}
