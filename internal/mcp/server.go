package mcp

import (
	"context"
	"fmt"
	"math"

	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/window"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

// Transports understood by Serve
const (
	TransportStdio = "stdio"
	TransportHTTP  = "streamable-http"
)

// Config holds MCP server configuration
type Config struct {
	Transport string
	Port      int
}

// Server exposes the shell to agents as MCP tools
type Server struct {
	shell *shell.Shell
	mcp   *mcpserver.MCPServer
}

// windowEntry is the YAML shape of one window in tool results
type windowEntry struct {
	ID       string  `yaml:"id"`
	Title    string  `yaml:"title"`
	Open     bool    `yaml:"open"`
	Phase    string  `yaml:"phase,omitempty"`
	Active   bool    `yaml:"active,omitempty"`
	ZIndex   int     `yaml:"z_index"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Dragging bool    `yaml:"dragging,omitempty"`
}

// NewServer creates an MCP server with every window tool registered
func NewServer(sh *shell.Shell, version string) *Server {
	s := &Server{
		shell: sh,
		mcp:   mcpserver.NewMCPServer("webdesk", version),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying mcp-go server
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// Serve runs the server on the configured transport until it fails
func (s *Server) Serve(cfg Config) error {
	log := logger.WithComponent("mcp")
	switch cfg.Transport {
	case TransportStdio, "":
		log.Info().Msg("Serving MCP over stdio")
		return mcpserver.ServeStdio(s.mcp)
	case TransportHTTP:
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info().Str("addr", addr).Msg("Serving MCP over streamable HTTP")
		return mcpserver.NewStreamableHTTPServer(s.mcp).Start(addr)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("list_windows",
			mcp.WithDescription("List every desktop window with its open state, stacking order and position"),
			mcp.WithBoolean("open_only", mcp.Description("Only list windows that are open")),
		),
		s.handleList,
	)

	s.mcp.AddTool(
		mcp.NewTool("toggle_window",
			mcp.WithDescription("Open a closed window or close an open one, as clicking its launcher would"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Window id (e.g. 'settings', 'terminal')")),
		),
		s.handleToggle,
	)

	s.mcp.AddTool(
		mcp.NewTool("focus_window",
			mcp.WithDescription("Bring an open window to the top of the stack"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Window id")),
		),
		s.handleFocus,
	)

	s.mcp.AddTool(
		mcp.NewTool("move_window",
			mcp.WithDescription("Drag an open window by its title bar. The offset is relative to its current position."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Window id")),
			mcp.WithNumber("dx", mcp.Description("Horizontal offset in pixels")),
			mcp.WithNumber("dy", mcp.Description("Vertical offset in pixels")),
		),
		s.handleMove,
	)

	s.mcp.AddTool(
		mcp.NewTool("close_all",
			mcp.WithDescription("Close every open window"),
		),
		s.handleCloseAll,
	)

	s.mcp.AddTool(
		mcp.NewTool("resize_viewport",
			mcp.WithDescription("Report a new viewport size. Windows that were never opened are centred in it."),
			mcp.WithNumber("width", mcp.Required(), mcp.Description("Viewport width in pixels")),
			mcp.WithNumber("height", mcp.Required(), mcp.Description("Viewport height in pixels")),
		),
		s.handleResize,
	)
}

func toText(v interface{}) *mcp.CallToolResult {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(b))
}

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

func entryFor(v shell.WindowView) windowEntry {
	e := windowEntry{
		ID:       string(v.ID),
		Title:    v.Title,
		Open:     v.Open,
		Active:   v.Active,
		ZIndex:   v.ZIndex,
		X:        v.Position.X,
		Y:        v.Position.Y,
		Dragging: v.Dragging,
	}
	if v.Mounted {
		e.Phase = v.Phase.String()
	}
	return e
}

// windowResult answers a window tool with the window's new state
func (s *Server) windowResult(id window.ID) *mcp.CallToolResult {
	v, err := s.shell.Window(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return toText(entryFor(v))
}

func (s *Server) handleList(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	openOnly := boolParam(request.GetArguments(), "open_only", false)

	st := s.shell.State()
	entries := make([]windowEntry, 0, len(st.Windows))
	for _, v := range st.Windows {
		if openOnly && !v.Open {
			continue
		}
		entries = append(entries, entryFor(v))
	}
	return toText(entries), nil
}

func (s *Server) handleToggle(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := window.ID(stringParam(request.GetArguments(), "id", ""))
	if err := s.shell.Toggle(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.windowResult(id), nil
}

func (s *Server) handleFocus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := window.ID(stringParam(request.GetArguments(), "id", ""))
	if err := s.shell.Focus(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.windowResult(id), nil
}

// handleMove replays a whole title-bar gesture: press, one move, release
func (s *Server) handleMove(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := window.ID(stringParam(params, "id", ""))
	offset := window.Point{
		X: floatParam(params, "dx", 0),
		Y: floatParam(params, "dy", 0),
	}

	if err := s.shell.PointerDown(id, window.RegionTitleBar); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.shell.DragMove(id, 1, offset); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.shell.DragEnd(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.windowResult(id), nil
}

func (s *Server) handleCloseAll(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := s.shell.CloseAll()
	return toText(map[string]int{"closed": n}), nil
}

func (s *Server) handleResize(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	w := floatParam(params, "width", math.NaN())
	h := floatParam(params, "height", math.NaN())
	if math.IsNaN(w) || math.IsNaN(h) {
		return mcp.NewToolResultError("width and height are required"), nil
	}
	if err := s.shell.Resize(w, h); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st := s.shell.State()
	return toText(map[string]float64{
		"width":  st.Viewport.Width,
		"height": st.Viewport.Height,
	}), nil
}
