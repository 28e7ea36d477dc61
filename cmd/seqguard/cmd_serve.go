package main

import (
	"context"

	"github.com/spf13/cobra"

	"seqguard/internal/logging"
	mcpserver "seqguard/internal/mcp"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing deliver_signal and
describe_pipeline. The server exits when its parent process goes away.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}
	srv := mcpserver.NewServer(p, version)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting seqguard MCP server over stdio", "pipeline", p.Name(), "nodes", len(p.Nodes()))
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
