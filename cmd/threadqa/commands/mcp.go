package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"threadqa/internal/mcp"
)

// NewMCPCmd creates the MCP command.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents.

Runs threadqa as an MCP (Model Context Protocol) server on stdio, exposing
the ask_subthreads and search_subthreads tools. Logs go to stderr.`,
		Example: `  threadqa mcp

  # claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "threadqa": {"command": "threadqa", "args": ["mcp"]}
  #   }
  # }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, os.Stderr)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					slog.Warn("Error during close", "error", err)
				}
			}()

			server := mcpserver.NewMCPServer("threadqa", versionInfo.Version)
			mcp.RegisterTools(server, a.Engine, a.Retriever)

			slog.Info("MCP server starting on stdio", "subthreads", a.Corpus.Len())

			serverErr := make(chan error, 1)
			go func() {
				serverErr <- mcpserver.ServeStdio(server)
			}()

			select {
			case <-ctx.Done():
				slog.Info("Shutdown signal received")
			case err := <-serverErr:
				if err != nil {
					return fmt.Errorf("MCP server error: %w", err)
				}
			}
			return nil
		},
	}

	return cmd
}
