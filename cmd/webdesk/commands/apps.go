package commands

import (
	"fmt"

	"github.com/bryanchriswhite/WebDesk/internal/config"
	"github.com/spf13/cobra"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Manage the application catalogue",
	Long:  `Add or remove the applications the shell offers. Changes apply on the next start.`,
}

var appsAddCmd = &cobra.Command{
	Use:   "add ID TITLE",
	Short: "Add an application",
	Long: `Add an application to the catalogue. By default it launches from the
start menu; --launcher binds it to a dock control of its own.`,
	Example: `  # Add a notes app to the start menu
  webdesk apps add notes "Notes"

  # Add a chat app with its own dock button, opened at start
  webdesk apps add chat "Chat" --launcher chat-dock --open-at-start`,
	Args: cobra.ExactArgs(2),
	RunE: runAppsAdd,
}

var appsRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove an application",
	Example: `  # Remove the arcade
  webdesk apps remove snake`,
	Args: cobra.ExactArgs(1),
	RunE: runAppsRemove,
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the application catalogue",
	RunE:  runAppsList,
}

var (
	appLauncher    string
	appOffsetX     int
	appOffsetY     int
	appOpenAtStart bool
	appHidden      bool
)

func init() {
	rootCmd.AddCommand(appsCmd)
	appsCmd.AddCommand(appsAddCmd)
	appsCmd.AddCommand(appsRemoveCmd)
	appsCmd.AddCommand(appsListCmd)

	appsAddCmd.Flags().StringVar(&appLauncher, "launcher", config.LauncherStartMenu, "control the app launches from")
	appsAddCmd.Flags().IntVar(&appOffsetX, "offset-x", 0, "horizontal offset from the centred default position")
	appsAddCmd.Flags().IntVar(&appOffsetY, "offset-y", 0, "vertical offset from the centred default position")
	appsAddCmd.Flags().BoolVar(&appOpenAtStart, "open-at-start", false, "open the app when the shell starts")
	appsAddCmd.Flags().BoolVar(&appHidden, "hidden", false, "leave the app out of the start menu")
}

func runAppsAdd(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app := config.AppConfig{
		ID:          args[0],
		Title:       args[1],
		Launcher:    appLauncher,
		OffsetX:     appOffsetX,
		OffsetY:     appOffsetY,
		OpenAtStart: appOpenAtStart,
		InMenu:      !appHidden,
	}
	if err := configMgr.AddApp(app); err != nil {
		return fmt.Errorf("failed to add app: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Added '%s'\n", app.ID)
	return nil
}

func runAppsRemove(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := configMgr.RemoveApp(args[0]); err != nil {
		return fmt.Errorf("failed to remove app: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Removed '%s'\n", args[0])
	return nil
}

func runAppsList(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg := configMgr.Get()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Applications:")
	for _, app := range cfg.Apps {
		flags := ""
		if app.OpenAtStart {
			flags += " [open at start]"
		}
		if !app.InMenu {
			flags += " [hidden]"
		}
		fmt.Fprintf(out, "  • %-10s %-28s %s%s\n", app.ID, app.Title, app.Launcher, flags)
	}

	fmt.Fprintln(out, "\nControls:")
	for _, name := range cfg.Controls() {
		fmt.Fprintf(out, "  • %s\n", name)
	}
	return nil
}
