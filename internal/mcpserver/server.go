package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"strings"

	"github.com/Conceptual-Machines/sfx-api/internal/logger"
	"github.com/Conceptual-Machines/sfx-api/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "soundraw-sfx-generator"
	ServerVersion = "1.0.0"
)

// SfxService is the pipeline the tools delegate to
type SfxService interface {
	Generate(ctx context.Context, req models.SfxRequest) (*models.SfxResult, error)
	CreateVariation(ctx context.Context, req models.VariationRequest) (*models.VariationResult, error)
	GenerateBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResult, error)
	AccountUsage(ctx context.Context) (json.RawMessage, error)
}

// Server exposes the SFX pipeline as MCP tools
type Server struct {
	service SfxService
	core    *server.MCPServer
}

func NewServer(service SfxService) *Server {
	s := &Server{
		service: service,
		core: server.NewMCPServer(
			ServerName,
			ServerVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	s.core.AddTool(generateSfxTool(), s.handle(s.generate))
	s.core.AddTool(createVariationTool(), s.handle(s.createVariation))
	s.core.AddTool(generateBatchTool(), s.handle(s.generateBatch))
	s.core.AddTool(accountUsageTool(), s.handle(s.accountUsage))

	return s
}

// Handler returns the streamable HTTP transport. It runs stateless, so
// clients need no Mcp-Session-Id between calls.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.core, server.WithStateLess(true))
}

// Serve runs the newline-delimited stdio transport until r is exhausted or
// ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	logger.Info("MCP server listening on stdio", logger.Fields{
		"name":    ServerName,
		"version": ServerVersion,
	})

	stdio := server.NewStdioServer(s.core)
	stdio.SetErrorLogger(stdlog.New(errorLogWriter{}, "", 0))
	return stdio.Listen(ctx, r, w)
}

type toolFunc func(ctx context.Context, request mcp.CallToolRequest) (interface{}, error)

// handle turns a pipeline call into a tool result: indented JSON on success,
// an error-flagged "Error: <message>" otherwise.
func (s *Server) handle(fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tool := request.Params.Name
		logger.Info("MCP tool call", logger.Fields{"tool": tool})

		result, err := fn(ctx, request)
		if err != nil {
			logger.Error("Tool execution failed", err, logger.Fields{"tool": tool})
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}

		text, err := indentJSON(result)
		if err != nil {
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func (s *Server) generate(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var req models.SfxRequest
	if err := bindArguments(request, &req); err != nil {
		return nil, err
	}
	return s.service.Generate(ctx, req)
}

func (s *Server) createVariation(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var req models.VariationRequest
	if err := bindArguments(request, &req); err != nil {
		return nil, err
	}
	return s.service.CreateVariation(ctx, req)
}

func (s *Server) generateBatch(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var req models.BatchRequest
	if err := bindArguments(request, &req); err != nil {
		return nil, err
	}
	return s.service.GenerateBatch(ctx, req)
}

func (s *Server) accountUsage(ctx context.Context, _ mcp.CallToolRequest) (interface{}, error) {
	return s.service.AccountUsage(ctx)
}

func bindArguments(request mcp.CallToolRequest, dst interface{}) error {
	if err := request.BindArguments(dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// indentJSON encodes v with two-space indentation and without HTML escaping,
// since integration snippets contain angle brackets.
func indentJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// errorLogWriter routes the stdio transport's error log into the logger
type errorLogWriter struct{}

func (errorLogWriter) Write(p []byte) (int, error) {
	logger.Warn("MCP stdio transport error", logger.Fields{
		"message": strings.TrimSpace(string(p)),
	})
	return len(p), nil
}
