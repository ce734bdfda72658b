// Package mcpserver exposes clone detection as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/doppelscan/doppel/internal/resultstore"
)

// Server wraps the MCP server and registers the doppel tools.
type Server struct {
	server  *mcp.Server
	results *resultstore.Store
}

// NewServer creates an MCP server with the detection tools registered.
func NewServer(version string) (*Server, error) {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "doppel",
			Version: version,
		},
		nil,
	)

	results, err := resultstore.New(resultstore.DefaultCapacity, resultstore.DefaultTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{server: server, results: results}
	s.registerTools()
	s.registerPrompts()
	return s, nil
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	defer s.results.Close()
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds the detection tools to the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_clones",
		Description: describeDetectClones(),
	}, s.handleDetectClones)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_clone_result",
		Description: describeGetCloneResult(),
	}, s.handleGetCloneResult)
}
