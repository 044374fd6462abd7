package tui

import (
	"math"
	"testing"

	"github.com/bryanchriswhite/WebDesk/internal/config"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/window"
	"github.com/gdamore/tcell/v2"
)

// With the default 1920x1080 viewport on an 80x24 screen a cell is 24
// logical pixels wide and 1080/23 tall.
const rowHeight = 1080.0 / 23

func newTestApp(t *testing.T) (*App, *shell.Shell, tcell.SimulationScreen) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Animation.Auto = false
	for i := range cfg.Apps {
		cfg.Apps[i].OpenAtStart = false
	}
	sh, err := shell.New(cfg)
	if err != nil {
		t.Fatalf("shell.New: %v", err)
	}
	t.Cleanup(sh.Stop)

	screen := tcell.NewSimulationScreen("UTF-8")
	app := New(sh, screen)
	if err := app.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(80, 24)
	app.HandleEvent(tcell.NewEventResize(80, 24))
	app.Draw()
	t.Cleanup(app.Fini)
	return app, sh, screen
}

func click(a *App, x, y int) {
	a.HandleEvent(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	a.HandleEvent(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
}

func contentAt(s tcell.SimulationScreen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func TestDockReportsControls(t *testing.T) {
	_, sh, _ := newTestApp(t)

	controls := sh.State().Controls
	for _, name := range []string{config.StartButton, "settings-button", "music-dock"} {
		if _, ok := controls[name]; !ok {
			t.Errorf("control %s not reported", name)
		}
	}

	// " Start " occupies cells 0-6, " Settings " cells 8-17
	settings := controls["settings-button"]
	if settings.X != 8*24 || settings.Width != 10*24 {
		t.Errorf("settings-button = %+v", settings)
	}
}

func TestDockLaunchesWindow(t *testing.T) {
	app, sh, screen := newTestApp(t)

	click(app, 10, 23)
	app.Draw()

	v, err := sh.Window("settings")
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if !v.Open || !v.Active {
		t.Fatalf("settings = %v, want open and active", v)
	}
	if v.LaunchOrigin.X != 312 {
		t.Errorf("launch origin x = %v, want the settings button centre 312", v.LaunchOrigin.X)
	}

	// The window sits at (485,240): cells 20.. on row 5, title from cell 21
	if r := contentAt(screen, 21, 5); r != 'S' {
		t.Errorf("title cell = %q, want 'S'", r)
	}
	if r := contentAt(screen, 1, 23); r != 'S' {
		t.Errorf("dock cell = %q, want 'S'", r)
	}
}

func TestTitleBarDrag(t *testing.T) {
	app, sh, _ := newTestApp(t)
	if err := sh.Open("settings"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	app.Draw()

	app.HandleEvent(tcell.NewEventMouse(30, 5, tcell.Button1, tcell.ModNone))
	if app.drag == nil || app.drag.id != "settings" {
		t.Fatalf("press on the title row did not start a drag: %+v", app.drag)
	}
	app.HandleEvent(tcell.NewEventMouse(35, 7, tcell.Button1, tcell.ModNone))

	v, _ := sh.Window("settings")
	if !v.Dragging {
		t.Fatal("window not dragging after move")
	}

	app.HandleEvent(tcell.NewEventMouse(35, 7, tcell.ButtonNone, tcell.ModNone))
	v, _ = sh.Window("settings")
	if v.Dragging {
		t.Error("window still dragging after release")
	}
	if v.Position.X != 605 || math.Abs(v.Position.Y-(240+2*rowHeight)) > 1e-9 {
		t.Errorf("position = %+v, want (605, %v)", v.Position, 240+2*rowHeight)
	}
}

func TestBodyPressDoesNotDrag(t *testing.T) {
	app, sh, _ := newTestApp(t)
	if err := sh.Open("settings"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := sh.Open("terminal"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	app.Draw()

	// Row 8 is inside settings but above terminal's body; terminal is
	// offset by (50,50) so cell (21,8) only hits settings
	app.HandleEvent(tcell.NewEventMouse(21, 8, tcell.Button1, tcell.ModNone))
	if app.drag != nil {
		t.Errorf("body press started a drag: %+v", app.drag)
	}
	if active := sh.State().Active; active != "settings" {
		t.Errorf("active = %s, want settings", active)
	}
}

func TestTitleBarButtons(t *testing.T) {
	app, sh, screen := newTestApp(t)
	if err := sh.Open("settings"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	app.Draw()

	if len(app.windows) != 1 {
		t.Fatalf("drawn windows = %d", len(app.windows))
	}
	c := app.windows[0].cells
	if r := contentAt(screen, c.x1, c.y0); r != 'x' {
		t.Fatalf("close glyph = %q", r)
	}

	click(app, c.x1-2, c.y0)
	if v, _ := sh.Window("settings"); !v.Open || app.drag != nil {
		t.Errorf("minimize glyph: open=%v drag=%+v", v.Open, app.drag)
	}

	click(app, c.x1, c.y0)
	v, _ := sh.Window("settings")
	if v.Open || v.Phase != window.PhaseExiting {
		t.Errorf("settings after close glyph = %v", v)
	}
}

func TestCloseMidDrag(t *testing.T) {
	app, sh, _ := newTestApp(t)
	if err := sh.Open("settings"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	app.Draw()

	app.HandleEvent(tcell.NewEventMouse(30, 5, tcell.Button1, tcell.ModNone))
	if err := sh.Close("settings"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	app.HandleEvent(tcell.NewEventMouse(40, 9, tcell.Button1, tcell.ModNone))
	if app.drag != nil {
		t.Error("drag survived the window closing")
	}
	app.HandleEvent(tcell.NewEventMouse(40, 9, tcell.ButtonNone, tcell.ModNone))

	if _, err := sh.AnimationDone("settings"); err != nil {
		t.Fatalf("AnimationDone: %v", err)
	}
	if err := sh.Open("settings"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	v, _ := sh.Window("settings")
	if v.Position != (window.Point{X: 485, Y: 240}) {
		t.Errorf("position after reopen = %+v, want the pre-drag (485,240)", v.Position)
	}
}

func TestStartMenu(t *testing.T) {
	app, sh, _ := newTestApp(t)

	click(app, 2, 23)
	app.Draw()
	if app.menu == nil || app.menu.view.Kind != "start-menu" {
		t.Fatalf("start menu not drawn: %+v", app.menu)
	}

	// Title on the row below the top edge, then one item per row
	row := app.menu.itemRows[0]
	click(app, 3, row)
	app.Draw()

	if app.menu != nil {
		t.Error("menu still shown after activating an item")
	}
	v, _ := sh.Window("settings")
	if !v.Open {
		t.Error("first start menu item did not open settings")
	}
}

func TestQuitKeys(t *testing.T) {
	app, _, _ := newTestApp(t)

	tests := []struct {
		name string
		ev   *tcell.EventKey
		want bool
	}{
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), false},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), false},
		{"ctrl-c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), false},
		{"other", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := app.HandleEvent(tt.ev); got != tt.want {
				t.Errorf("HandleEvent(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
