package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bryanchriswhite/WebDesk/internal/config"
	"github.com/bryanchriswhite/WebDesk/internal/display"
	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/output"
	"github.com/bryanchriswhite/WebDesk/internal/overlay"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/window"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// Server represents the HTTP API server
type Server struct {
	router     *mux.Router
	shell      *shell.Shell
	configMgr  *config.Manager
	displayMgr *display.Manager
	stream     *output.MJPEGOutput
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// NewServer creates a new API server. configMgr, displayMgr and stream may
// be nil; their endpoints then report the feature as unavailable.
func NewServer(sh *shell.Shell, configMgr *config.Manager, displayMgr *display.Manager, stream *output.MJPEGOutput) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		shell:      sh,
		configMgr:  configMgr,
		displayMgr: displayMgr,
		stream:     stream,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // the shell client may be served from anywhere
			},
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Windows
	api.HandleFunc("/windows", s.handleListWindows).Methods("GET")
	api.HandleFunc("/windows/close-all", s.handleCloseAll).Methods("POST")
	api.HandleFunc("/windows/{id}", s.handleGetWindow).Methods("GET")
	api.HandleFunc("/windows/{id}/toggle", s.windowAction(s.shell.Toggle)).Methods("POST")
	api.HandleFunc("/windows/{id}/open", s.windowAction(s.shell.Open)).Methods("POST")
	api.HandleFunc("/windows/{id}/close", s.windowAction(s.shell.Close)).Methods("POST")
	api.HandleFunc("/windows/{id}/focus", s.windowAction(s.shell.Focus)).Methods("POST")
	api.HandleFunc("/windows/{id}/pointer", s.handlePointerDown).Methods("POST")
	api.HandleFunc("/windows/{id}/drag", s.handleDrag).Methods("POST")
	api.HandleFunc("/windows/{id}/animation", s.handleAnimationDone).Methods("POST")
	api.HandleFunc("/windows/{id}/minimize", s.ignoredAction(s.shell.Minimize)).Methods("POST")
	api.HandleFunc("/windows/{id}/maximize", s.ignoredAction(s.shell.Maximize)).Methods("POST")

	// Layout input
	api.HandleFunc("/viewport", s.handleResize).Methods("PUT")
	api.HandleFunc("/controls", s.handleListControls).Methods("GET")
	api.HandleFunc("/controls/{name}", s.handleReportControl).Methods("PUT")
	api.HandleFunc("/pointer", s.handlePointerAt).Methods("POST")

	// Overlays
	api.HandleFunc("/overlays", s.handleGetOverlay).Methods("GET")
	api.HandleFunc("/overlays/start-menu", s.handleStartMenu).Methods("POST")
	api.HandleFunc("/overlays/context-menu", s.handleContextMenu).Methods("POST")
	api.HandleFunc("/overlays/dismiss", s.handleDismiss).Methods("POST")
	api.HandleFunc("/overlays/activate", s.handleActivate).Methods("POST")

	// State
	api.HandleFunc("/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/events", s.handleEvents)
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")

	// Rendered layout
	api.HandleFunc("/snapshot.png", s.handleSnapshot).Methods("GET")
	api.HandleFunc("/stream", s.handleStream).Methods("GET")
	api.HandleFunc("/stream/stats", s.handleStreamStats).Methods("GET")

	// Health check
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/viewer", s.handleViewer).Methods("GET")
	s.router.HandleFunc("/", s.handleIndex)
}

// Handler returns the HTTP handler with CORS applied
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.router)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.WithComponent("api").Info().Msgf("Starting server on http://localhost%s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a server started with Start
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// enableCORS adds CORS headers
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps shell errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, window.ErrUnknownWindow), errors.Is(err, shell.ErrUnknownControl):
		return http.StatusNotFound
	case errors.Is(err, shell.ErrNotOpen), errors.Is(err, shell.ErrNotDragging),
		errors.Is(err, window.ErrNotMounted), errors.Is(err, overlay.ErrNoOverlay):
		return http.StatusConflict
	case errors.Is(err, shell.ErrInvalidViewport), errors.Is(err, overlay.ErrNoSuchItem):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.WithComponent("api").Error().Err(err).Msg("Request failed")
	} else {
		logger.WithComponent("api").Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched
// when optional is set.
func decodeBody(r *http.Request, v interface{}, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) && optional {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body required")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func windowID(r *http.Request) window.ID {
	return window.ID(mux.Vars(r)["id"])
}

// respondWindow writes the current view of a window
func (s *Server) respondWindow(w http.ResponseWriter, id window.ID) {
	v, err := s.shell.Window(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HTTP Handlers

func (s *Server) handleListWindows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.State().Windows)
}

func (s *Server) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	s.respondWindow(w, windowID(r))
}

// windowAction adapts a shell operation on one window to a handler that
// replies with the window's new view
func (s *Server) windowAction(op func(window.ID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := windowID(r)
		if err := op(id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		s.respondWindow(w, id)
	}
}

func (s *Server) ignoredAction(op func(window.ID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := op(windowID(r)); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "ignored"})
	}
}

func (s *Server) handleCloseAll(w http.ResponseWriter, r *http.Request) {
	n := s.shell.CloseAll()
	writeJSON(w, http.StatusOK, map[string]int{"closed": n})
}

func (s *Server) handlePointerDown(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Region string `json:"region"`
	}
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	region, ok := window.ParseRegion(req.Region)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown region %q", req.Region))
		return
	}

	id := windowID(r)
	if err := s.shell.PointerDown(id, region); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.respondWindow(w, id)
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phase string  `json:"phase"`
		Seq   uint64  `json:"seq"`
		DX    float64 `json:"dx"`
		DY    float64 `json:"dy"`
	}
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := windowID(r)
	switch req.Phase {
	case "move":
		accepted, err := s.shell.DragMove(id, req.Seq, window.Point{X: req.DX, Y: req.DY})
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"accepted": accepted})
	case "end":
		pos, err := s.shell.DragEnd(id)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]window.Point{"position": pos})
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("drag phase must be move or end, got %q", req.Phase))
	}
}

func (s *Server) handleAnimationDone(w http.ResponseWriter, r *http.Request) {
	phase, err := s.shell.AnimationDone(windowID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]window.Phase{"phase": phase})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req window.Size
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.shell.Resize(req.Width, req.Height); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleListControls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"controls": s.shell.Controls(),
		"bounds":   s.shell.State().Controls,
	})
}

func (s *Server) handleReportControl(w http.ResponseWriter, r *http.Request) {
	var rect window.Rect
	if err := decodeBody(r, &rect, false); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.shell.ReportControl(mux.Vars(r)["name"], rect); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rect)
}

func (s *Server) handlePointerAt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Button string  `json:"button"`
	}
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	button, err := shell.ParseButton(req.Button)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	hit, err := s.shell.PointerAt(window.Point{X: req.X, Y: req.Y}, button)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, hit)
}

func (s *Server) handleGetOverlay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]*overlay.View{"overlay": s.shell.Overlay()})
}

func (s *Server) handleStartMenu(w http.ResponseWriter, r *http.Request) {
	open := s.shell.ToggleStartMenu()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"open":    open,
		"overlay": s.shell.Overlay(),
	})
}

func (s *Server) handleContextMenu(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Kind   string  `json:"kind"`
		Window string  `json:"window"`
	}
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	kind, err := overlay.ParseMenuKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p := window.Point{X: req.X, Y: req.Y}
	if err := s.shell.ShowContextMenu(kind, p, window.ID(req.Window)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*overlay.View{"overlay": s.shell.Overlay()})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"dismissed": s.shell.DismissOverlays()})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index  *int   `json:"index"`
		Action string `json:"action"`
	}
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var action overlay.Action
	var err error
	switch {
	case req.Index != nil:
		action, err = s.shell.ActivateOverlay(*req.Index)
	case req.Action != "":
		parsed, perr := overlay.ParseAction(req.Action)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr)
			return
		}
		action, err = s.shell.ActivateOverlayAction(parsed)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("index or action is required"))
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"action": action.String()})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.State())
}

// handleEvents streams the current state and then every shell event over
// a websocket
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithComponent("api").Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := s.shell.Subscribe()
	defer s.shell.Unsubscribe(updates)

	if err := conn.WriteJSON(map[string]interface{}{"type": "state", "state": s.shell.State()}); err != nil {
		logger.WithComponent("api").Debug().Err(err).Msg("WebSocket write failed")
		return
	}

	// the reader notices the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				logger.WithComponent("api").Debug().Err(err).Msg("WebSocket write failed")
				return
			}
		}
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.configMgr == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("no configuration file in use"))
		return
	}
	writeJSON(w, http.StatusOK, s.configMgr.Get())
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.stream == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("stream disabled"))
		return
	}
	s.stream.GetHTTPHandler()(w, r)
}

// handleViewer serves the stream alone, scaled to the browser window
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	if s.stream == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("stream disabled"))
		return
	}
	s.stream.GetViewerHandler()(w, r)
}

func (s *Server) handleStreamStats(w http.ResponseWriter, r *http.Request) {
	if s.stream == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("stream disabled"))
		return
	}
	s.stream.GetStatsHandler()(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
		"session": s.shell.Session(),
	})
}
