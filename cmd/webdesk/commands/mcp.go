package commands

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/WebDesk/internal/api"
	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/mcp"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/spf13/cobra"
)

var mcpTransport string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the shell to agents over MCP",
	Long: `Run a shell in-process and expose it as Model Context Protocol tools:
list_windows, toggle_window, focus_window, move_window, close_all and
resize_viewport. The streamable-http transport listens on the server port.`,
	Example: `  # Serve over stdio for a local agent
  webdesk mcp

  # Serve over streamable HTTP
  webdesk mcp --transport streamable-http --port 8081`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVar(&mcpTransport, "transport", mcp.TransportStdio, "transport (stdio or streamable-http)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	// stdout carries the protocol on stdio
	logger.InitWriter(os.Stderr, cfg.LogLevel, false)

	sh, err := shell.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer sh.Stop()

	server := mcp.NewServer(sh, api.Version)
	return server.Serve(mcp.Config{
		Transport: mcpTransport,
		Port:      cfg.ServerPort,
	})
}
