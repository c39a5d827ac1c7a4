package mcp

import (
	"log/slog"

	"github.com/guillermoBallester/asksql/internal/core/port"
	"github.com/guillermoBallester/asksql/internal/core/service"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"
)

// Services groups what the tools call into.
type Services struct {
	Conversation *service.Conversation
	Generation   *service.GenerationService
	Query        *service.QueryService

	// ReadOnly reports that the executor itself refuses writes (postgres
	// read-only transaction or dry-run). When false, tools that execute SQL
	// are annotated as destructive.
	ReadOnly bool
}

// NewServer creates an MCPServer exposing the assistant as tools.
func NewServer(version string, svc Services, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithHooks(ToolCallHooks(logger, tracer, inst)),
	)

	RegisterTools(s, svc)

	return s
}
