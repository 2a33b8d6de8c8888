// Package mcp exposes Aria to MCP clients (Claude Desktop, IDE agents) over
// the streamable HTTP transport.
package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/mcp/tools"
)

const instructions = `Aria answers questions about a retail sales warehouse.
Prefer ask_question for business questions; it plans and runs its own queries.
Use get_schema and run_query only when you need the raw tables. run_query accepts a single read-only SELECT.`

// Server owns the MCP tool registry for one engine process.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer registers every tool deps can back. Deps without a Version or
// Logger inherit version and a child of logger.
func NewServer(name, version string, deps *tools.Deps, logger *zap.Logger) *Server {
	if deps.Version == "" {
		deps.Version = version
	}
	if deps.Logger == nil {
		deps.Logger = logger.Named("mcp")
	}

	s := &Server{
		mcp: server.NewMCPServer(name, version,
			server.WithToolCapabilities(true),
			server.WithInstructions(instructions),
			server.WithRecovery(),
		),
		logger: logger,
	}
	tools.RegisterAll(s.mcp, deps)
	return s
}

func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Handler returns the stateless streamable HTTP transport; the router mounts it at /mcp.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true))
}
