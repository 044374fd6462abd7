package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/WebDesk/internal/api"
	"github.com/bryanchriswhite/WebDesk/internal/display"
	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/output"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/spf13/cobra"
)

var servePretty bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WebDesk server",
	Long: `Start the WebDesk HTTP server.

The server owns the window state of the shell and exposes it through a REST
API, a websocket event stream and an MJPEG preview of the rendered layout.`,
	Example: `  # Start server on default port (8080)
  webdesk serve

  # Start server on custom port
  webdesk serve --port 9090

  # Start with specific config file
  webdesk serve --config /path/to/config.yaml

  # Start with debug logging
  webdesk serve --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&servePretty, "pretty", true, "human-readable console logs instead of JSON")
}

func runServe(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, servePretty)
	log := logger.WithComponent("serve")

	log.Info().
		Str("path", configMgr.GetConfigPath()).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	sh, err := shell.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer sh.Stop()

	// Rendered layout preview
	renderer := display.NewRenderer(cfg.Viewport.Width, cfg.Viewport.Height)
	var out output.Output
	var stream *output.MJPEGOutput
	if cfg.Stream.Enabled {
		stream = output.NewMJPEGOutput(output.Config{
			Width:   cfg.Viewport.Width,
			Height:  cfg.Viewport.Height,
			FPS:     cfg.Stream.FPS,
			Quality: cfg.Stream.Quality,
		})
		if err := stream.Start(); err != nil {
			return fmt.Errorf("failed to start MJPEG output: %w", err)
		}
		defer stream.Stop()
		out = stream
	}

	displayMgr := display.NewManager(sh, renderer, out, cfg.Stream.FPS)
	if err := displayMgr.Start(); err != nil {
		return fmt.Errorf("failed to start display: %w", err)
	}
	defer displayMgr.Stop()

	server := api.NewServer(sh, configMgr, displayMgr, stream)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(cfg.ServerPort)
	}()

	log.Info().
		Str("session", sh.Session()).
		Str("ui", fmt.Sprintf("http://localhost:%d", cfg.ServerPort)).
		Str("api", fmt.Sprintf("http://localhost:%d/api", cfg.ServerPort)).
		Msg("WebDesk is running, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigChan:
	}

	log.Info().Msg("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
