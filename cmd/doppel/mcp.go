package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/doppelscan/doppel/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes clone detection
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "doppel": {
        "command": "doppel",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - detect_clones      Find exact, renamed, and near-miss duplicates
  - get_clone_result   Page through a stored untruncated result`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	server, err := mcpserver.NewServer(version)
	if err != nil {
		return err
	}
	return server.Run(context.Background())
}
