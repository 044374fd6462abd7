package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/tui"
	"github.com/spf13/cobra"
)

var tuiLogFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the shell in the terminal",
	Long: `Run a shell in-process and draw it in the terminal.

Click a dock launcher to open its window, drag windows by their title bar,
right-click for context menus. Press q or Esc to quit.`,
	Example: `  # Run with logs written to a file
  webdesk tui --log-file /tmp/webdesk.log`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&tuiLogFile, "log-file", "", "write logs to this file (logs are discarded by default)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	// Logs must stay off the screen being drawn
	var logOut io.Writer = io.Discard
	if tuiLogFile != "" {
		f, err := os.OpenFile(tuiLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger.InitWriter(logOut, cfg.LogLevel, false)

	sh, err := shell.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer sh.Stop()

	screen, err := tui.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	app := tui.New(sh, screen)
	if err := app.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer app.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}
