package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bryanchriswhite/WebDesk/internal/config"
	"github.com/bryanchriswhite/WebDesk/internal/output"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/window"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*Server, *shell.Shell) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Animation.Auto = false
	cfg.Viewport = config.SizeConfig{Width: 1280, Height: 800}
	sh, err := shell.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sh.Stop)
	return NewServer(sh, nil, nil, nil), sh
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s, sh := newTestServer(t)
	rec := do(t, s, "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["status"] != "healthy" || body["session"] != sh.Session() {
		t.Errorf("body = %v", body)
	}
}

func TestToggleAndGetWindow(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, "POST", "/api/windows/music/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d: %s", rec.Code, rec.Body)
	}
	var v shell.WindowView
	decode(t, rec, &v)
	if !v.Open || v.ZIndex != 51 {
		t.Errorf("music = %+v", v)
	}

	rec = do(t, s, "GET", "/api/windows/music", "")
	var raw map[string]interface{}
	decode(t, rec, &raw)
	if raw["phase"] != "entering" {
		t.Errorf("phase = %v", raw["phase"])
	}

	rec = do(t, s, "GET", "/api/windows", "")
	var all []shell.WindowView
	decode(t, rec, &all)
	if len(all) != 9 {
		t.Errorf("windows = %d", len(all))
	}
}

func TestErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{"POST", "/api/windows/nope/toggle", "", http.StatusNotFound},
		{"GET", "/api/windows/nope", "", http.StatusNotFound},
		{"POST", "/api/windows/music/focus", "", http.StatusConflict},
		{"POST", "/api/windows/settings/drag", `{"phase":"sideways"}`, http.StatusBadRequest},
		{"POST", "/api/windows/settings/drag", `not json`, http.StatusBadRequest},
		{"POST", "/api/windows/settings/drag", ``, http.StatusBadRequest},
		{"POST", "/api/windows/settings/drag", `{"phase":"end"}`, http.StatusConflict},
		{"POST", "/api/windows/settings/pointer", `{"region":"roof"}`, http.StatusBadRequest},
		{"PUT", "/api/viewport", `{"width":0,"height":10}`, http.StatusBadRequest},
		{"PUT", "/api/controls/taskbar", `{"x":1,"y":1,"width":1,"height":1}`, http.StatusNotFound},
		{"POST", "/api/pointer", `{"x":1,"y":1,"button":"middle"}`, http.StatusBadRequest},
		{"POST", "/api/overlays/activate", `{"index":0}`, http.StatusConflict},
		{"POST", "/api/overlays/activate", `{}`, http.StatusBadRequest},
		{"POST", "/api/overlays/activate", `{"action":"explode:settings"}`, http.StatusBadRequest},
		{"POST", "/api/overlays/context-menu", `{"kind":"window","window":"music"}`, http.StatusConflict},
		{"POST", "/api/overlays/context-menu", `{"kind":"taskbar"}`, http.StatusBadRequest},
		{"POST", "/api/windows/nope/animation", "", http.StatusNotFound},
		{"GET", "/api/config", "", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
			var body map[string]string
			decode(t, rec, &body)
			if body["error"] == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestDragOverHTTP(t *testing.T) {
	s, sh := newTestServer(t)
	// settings opens at start at (165,100) in a 1280x800 viewport

	if rec := do(t, s, "POST", "/api/windows/settings/pointer", `{"region":"titlebar"}`); rec.Code != http.StatusOK {
		t.Fatalf("pointer: %d %s", rec.Code, rec.Body)
	}

	rec := do(t, s, "POST", "/api/windows/settings/drag", `{"phase":"move","seq":2,"dx":10,"dy":20}`)
	var moved map[string]bool
	decode(t, rec, &moved)
	if !moved["accepted"] {
		t.Error("move rejected")
	}
	rec = do(t, s, "POST", "/api/windows/settings/drag", `{"phase":"move","seq":1,"dx":99,"dy":99}`)
	decode(t, rec, &moved)
	if moved["accepted"] {
		t.Error("stale move accepted")
	}

	rec = do(t, s, "POST", "/api/windows/settings/drag", `{"phase":"end"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("end: %d %s", rec.Code, rec.Body)
	}
	var ended map[string]window.Point
	decode(t, rec, &ended)
	want := window.Point{X: 175, Y: 120}
	if ended["position"] != want {
		t.Errorf("position = %v, want %v", ended["position"], want)
	}

	v, _ := sh.Window("settings")
	if v.Position != want {
		t.Errorf("shell position = %v", v.Position)
	}
}

func TestAnimationAndIgnoredRequests(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, "POST", "/api/windows/settings/animation", "")
	var body map[string]string
	decode(t, rec, &body)
	if body["phase"] != "idle" {
		t.Errorf("phase = %v", body)
	}

	rec = do(t, s, "POST", "/api/windows/settings/maximize", "")
	if rec.Code != http.StatusAccepted {
		t.Errorf("maximize status = %d", rec.Code)
	}
}

func TestOverlayEndpoints(t *testing.T) {
	s, sh := newTestServer(t)

	rec := do(t, s, "POST", "/api/overlays/context-menu", `{"x":1270,"y":10,"kind":"desktop"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("context menu: %d %s", rec.Code, rec.Body)
	}
	ov := sh.Overlay()
	if ov == nil || ov.Bounds.X != 1060 {
		t.Fatalf("overlay = %+v", ov)
	}

	rec = do(t, s, "POST", "/api/overlays/activate", `{"index":1}`)
	var body map[string]string
	decode(t, rec, &body)
	if body["action"] != "toggle:gallery" {
		t.Errorf("action = %v", body)
	}
	if v, _ := sh.Window("gallery"); !v.Open {
		t.Error("gallery not opened")
	}

	// entries can also be picked by their action
	if rec := do(t, s, "POST", "/api/overlays/context-menu", `{"x":10,"y":10,"kind":"desktop"}`); rec.Code != http.StatusOK {
		t.Fatalf("context menu: %d", rec.Code)
	}
	if rec := do(t, s, "POST", "/api/overlays/activate", `{"action":"toggle:snake"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("action not on the menu: status %d", rec.Code)
	}
	rec = do(t, s, "POST", "/api/overlays/activate", `{"action":"toggle:gallery"}`)
	decode(t, rec, &body)
	if body["action"] != "toggle:gallery" {
		t.Errorf("action = %v", body)
	}
	if v, _ := sh.Window("gallery"); v.Open {
		t.Error("second gallery toggle left it open")
	}

	rec = do(t, s, "POST", "/api/overlays/start-menu", "")
	var start map[string]interface{}
	decode(t, rec, &start)
	if start["open"] != true {
		t.Errorf("start menu = %v", start)
	}

	rec = do(t, s, "POST", "/api/overlays/dismiss", "")
	var dismissed map[string]bool
	decode(t, rec, &dismissed)
	if !dismissed["dismissed"] {
		t.Error("nothing dismissed")
	}
}

func TestPointerAndControls(t *testing.T) {
	s, sh := newTestServer(t)

	rec := do(t, s, "PUT", "/api/controls/music-dock", `{"x":600,"y":750,"width":40,"height":40}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("report control: %d %s", rec.Code, rec.Body)
	}

	rec = do(t, s, "POST", "/api/pointer", `{"x":620,"y":770}`)
	var hit shell.Hit
	decode(t, rec, &hit)
	if hit.Target != shell.TargetControl || hit.Control != "music-dock" {
		t.Errorf("hit = %+v", hit)
	}
	v, _ := sh.Window("music")
	if !v.Open || v.LaunchOrigin != (window.Point{X: 620, Y: 770}) {
		t.Errorf("music = %+v", v)
	}

	rec = do(t, s, "PUT", "/api/viewport", `{"width":1920,"height":1080}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("resize: %d", rec.Code)
	}
	if vp := sh.State().Viewport; vp.Width != 1920 {
		t.Errorf("viewport = %+v", vp)
	}

	rec = do(t, s, "POST", "/api/windows/close-all", "")
	var closed map[string]int
	decode(t, rec, &closed)
	if closed["closed"] != 2 {
		t.Errorf("closed = %v", closed)
	}
}

func TestSnapshot(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, "GET", "/api/snapshot.png", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 1280 || img.Bounds().Dy() != 800 {
		t.Errorf("snapshot size = %v", img.Bounds())
	}
}

func TestEventsWebsocket(t *testing.T) {
	s, sh := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial struct {
		Type  string      `json:"type"`
		State shell.State `json:"state"`
	}
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatal(err)
	}
	if initial.Type != "state" || initial.State.Session != sh.Session() {
		t.Fatalf("initial = %+v", initial)
	}

	if err := sh.Toggle("terminal"); err != nil {
		t.Fatal(err)
	}
	var ev shell.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != shell.EventOpened || ev.Window != "terminal" {
		t.Errorf("event = %+v", ev)
	}
}

func TestStreamDisabled(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := do(t, s, "GET", "/api/stream", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
	if rec := do(t, s, "GET", "/", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "WebDesk") {
		t.Errorf("index = %d", rec.Code)
	}
	if rec := do(t, s, "GET", "/viewer", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("viewer status = %d", rec.Code)
	}
}

func TestViewer(t *testing.T) {
	_, sh := newTestServer(t)
	stream := output.NewMJPEGOutput(output.Config{Width: 320, Height: 200})
	s := NewServer(sh, nil, nil, stream)

	rec := do(t, s, "GET", "/viewer", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("viewer status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `src="/api/stream"`) {
		t.Errorf("viewer does not embed the stream: %s", rec.Body)
	}
}

func TestCloseButtonOverHTTP(t *testing.T) {
	s, sh := newTestServer(t)
	if rec := do(t, s, "POST", "/api/windows/settings/pointer", `{"region":"close"}`); rec.Code != http.StatusOK {
		t.Fatalf("pointer: %d %s", rec.Code, rec.Body)
	}
	v, err := sh.Window("settings")
	if err != nil {
		t.Fatal(err)
	}
	if v.Open {
		t.Error("close button press left settings open")
	}
}
