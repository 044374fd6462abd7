package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bryanchriswhite/WebDesk/internal/client"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/window"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "Inspect and drive the windows of a running server",
	Long: `Talk to a running WebDesk server over its REST API.

The server defaults to http://localhost:<server_port> from the config file.`,
}

var windowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List windows",
	Long:  `List every window with its open state, phase, z-index and position.`,
	Example: `  # List windows in table format (default)
  webdesk windows list

  # List only open windows as JSON
  webdesk windows list --open --format json

  # Ask another server
  webdesk windows list --server http://desk.local:9090`,
	RunE: runWindowsList,
}

var windowsToggleCmd = &cobra.Command{
	Use:   "toggle ID",
	Short: "Open a closed window or close an open one",
	Example: `  # Open the terminal
  webdesk windows toggle terminal`,
	Args: cobra.ExactArgs(1),
	RunE: runWindowsToggle,
}

var windowsFocusCmd = &cobra.Command{
	Use:   "focus ID",
	Short: "Bring an open window to the front",
	Args:  cobra.ExactArgs(1),
	RunE:  runWindowsFocus,
}

var windowsCloseAllCmd = &cobra.Command{
	Use:   "close-all",
	Short: "Close every open window",
	RunE:  runWindowsCloseAll,
}

var (
	windowsServer string
	windowsFormat string
	windowsOpen   bool
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	activeStyle = cellStyle.Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	closedStyle = cellStyle.Foreground(lipgloss.Color("241"))
)

func init() {
	rootCmd.AddCommand(windowsCmd)
	windowsCmd.AddCommand(windowsListCmd)
	windowsCmd.AddCommand(windowsToggleCmd)
	windowsCmd.AddCommand(windowsFocusCmd)
	windowsCmd.AddCommand(windowsCloseAllCmd)

	windowsCmd.PersistentFlags().StringVar(&windowsServer, "server", "", "server URL (default is http://localhost:<server_port>)")
	windowsListCmd.Flags().StringVarP(&windowsFormat, "format", "f", "table", "output format (table or json)")
	windowsListCmd.Flags().BoolVar(&windowsOpen, "open", false, "show only open windows")
}

func newClient() (*client.Client, error) {
	server := windowsServer
	if server == "" {
		configMgr, err := loadConfig()
		if err != nil {
			return nil, err
		}
		server = fmt.Sprintf("http://localhost:%d", configMgr.GetPort())
	}
	return client.New(server)
}

func runWindowsList(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	views, err := c.Windows(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}

	if windowsOpen {
		filtered := make([]shell.WindowView, 0, len(views))
		for _, v := range views {
			if v.Open {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	switch windowsFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(views)
	case "table":
		fmt.Fprintln(cmd.OutOrStdout(), renderWindows(views))
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", windowsFormat)
	}
}

// renderWindows lays the windows out as a table, the active one
// highlighted and closed ones dimmed
func renderWindows(views []shell.WindowView) string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		z := "-"
		if v.Open {
			z = strconv.Itoa(v.ZIndex)
		}
		rows = append(rows, []string{
			string(v.ID),
			v.Title,
			yesNo(v.Open),
			v.Phase.String(),
			z,
			fmt.Sprintf("%g,%g", v.Position.X, v.Position.Y),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "OPEN", "PHASE", "Z", "POSITION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row < 0 || row >= len(views):
				return cellStyle
			case views[row].Active:
				return activeStyle
			case !views[row].Open:
				return closedStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func runWindowsToggle(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	v, err := c.Toggle(context.Background(), window.ID(args[0]))
	if err != nil {
		return fmt.Errorf("failed to toggle %s: %w", args[0], err)
	}
	state := "closed"
	if v.Open {
		state = "opened"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s %s\n", v.Title, state)
	return nil
}

func runWindowsFocus(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	v, err := c.Focus(context.Background(), window.ID(args[0]))
	if err != nil {
		return fmt.Errorf("failed to focus %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s focused (z-index %d)\n", v.Title, v.ZIndex)
	return nil
}

func runWindowsCloseAll(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	n, err := c.CloseAll(context.Background())
	if err != nil {
		return fmt.Errorf("failed to close windows: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Closed %d window(s)\n", n)
	return nil
}
