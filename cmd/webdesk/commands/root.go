package commands

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/WebDesk/internal/api"
	"github.com/bryanchriswhite/WebDesk/internal/config"
	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "webdesk",
		Short: "WebDesk - window manager for a simulated desktop shell",
		Long: `WebDesk owns the window state of a desktop shell rendered in a browser
or a terminal: which windows are open, their stacking order, where they
sit on screen and where their open animation starts from.

Features:
  • Open, close, focus and drag windows with stable z-ordering
  • Positions remembered across close and reopen
  • Launch origins taken from dock controls and the start menu
  • Start menu and context menus
  • REST API and websocket event stream
  • MJPEG preview of the rendered layout
  • Terminal front-end and MCP tools for agents`,
		Version:       api.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/webdesk/config.yaml)")
	rootCmd.PersistentFlags().Int("port", 0, "server port (default is 8080)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("server_port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig opens the config file and applies the --port and --log-level
// overrides. The overrides are not saved.
func loadConfig() (*config.Manager, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config manager: %w", err)
	}

	if port := viper.GetInt("server_port"); viper.IsSet("server_port") && port > 0 {
		configMgr.SetPort(port)
	}
	if level := viper.GetString("log_level"); viper.IsSet("log_level") && level != "" {
		if !logger.ValidLevel(level) {
			return nil, fmt.Errorf("invalid log level: %s (use: debug, info, warn, error)", level)
		}
		configMgr.SetLogLevel(level)
	}
	return configMgr, nil
}
