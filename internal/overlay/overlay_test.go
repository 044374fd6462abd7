package overlay

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/bryanchriswhite/WebDesk/internal/window"
)

var viewport = window.Size{Width: 1280, Height: 800}

func TestClampMenu(t *testing.T) {
	tests := []struct {
		name string
		in   window.Point
		want window.Point
	}{
		{"inside", window.Point{X: 100, Y: 100}, window.Point{X: 100, Y: 100}},
		{"right edge", window.Point{X: 1200, Y: 100}, window.Point{X: 1060, Y: 100}},
		{"bottom edge", window.Point{X: 100, Y: 700}, window.Point{X: 100, Y: 600}},
		{"corner", window.Point{X: 1279, Y: 799}, window.Point{X: 1060, Y: 600}},
		{"exactly fits", window.Point{X: 1060, Y: 600}, window.Point{X: 1060, Y: 600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampMenu(tt.in, viewport); got != tt.want {
				t.Errorf("ClampMenu(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewContextMenu(t *testing.T) {
	m, err := NewContextMenu(MenuWindow, window.Point{X: 1250, Y: 10}, viewport, "terminal", "Terminal")
	if err != nil {
		t.Fatalf("NewContextMenu: %v", err)
	}
	if m.Kind() != KindContextMenu {
		t.Errorf("kind = %s", m.Kind())
	}
	if m.Bounds().X != 1060 {
		t.Errorf("expected clamped x 1060, got %v", m.Bounds().X)
	}
	if m.Title() != "Terminal" {
		t.Errorf("title = %q", m.Title())
	}

	want := []string{"minimize:terminal", "maximize:terminal", "close:terminal"}
	for i, item := range m.Items() {
		if item.Action.String() != want[i] {
			t.Errorf("item %d action = %s, want %s", i, item.Action, want[i])
		}
	}

	if _, err := NewContextMenu(MenuWindow, window.Point{}, viewport, "", ""); err == nil {
		t.Error("expected error for window menu without target")
	}
	if _, err := NewContextMenu("bogus", window.Point{}, viewport, "", ""); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestStartMenuBounds(t *testing.T) {
	r := StartMenuBounds(640, viewport)
	if r.X != 480 || r.Y != 800-90-550 || r.Width != 320 || r.Height != 550 {
		t.Errorf("unexpected bounds %+v", r)
	}

	r = StartMenuBounds(40, viewport)
	if r.X != StartMenuMargin {
		t.Errorf("expected left margin clamp, got %v", r.X)
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("toggle:settings")
	if err != nil || a.Verb != VerbToggle || a.Window != "settings" {
		t.Errorf("ParseAction(toggle:settings) = %+v, %v", a, err)
	}
	if a, err := ParseAction("noop"); err != nil || a.Verb != VerbNoop {
		t.Errorf("ParseAction(noop) = %+v, %v", a, err)
	}
	for _, bad := range []string{"toggle", "launch:x", ""} {
		if _, err := ParseAction(bad); err == nil {
			t.Errorf("ParseAction(%q) expected error", bad)
		}
	}
}

func TestManagerSingleSlot(t *testing.T) {
	m := NewManager()
	if _, ok := m.Active(); ok {
		t.Fatal("expected no active overlay")
	}

	start := NewStartMenu(640, viewport, []Item{
		{Label: "Settings", Action: Action{Verb: VerbToggle, Window: "settings"}},
	})
	m.Show(start)
	if !m.IsActive(KindStartMenu) {
		t.Fatal("start menu not active")
	}

	ctx, err := NewContextMenu(MenuDesktop, window.Point{X: 10, Y: 10}, viewport, "", "")
	if err != nil {
		t.Fatal(err)
	}
	m.Show(ctx)
	if m.IsActive(KindStartMenu) {
		t.Error("start menu still active after context menu shown")
	}
	if !m.IsActive(KindContextMenu) {
		t.Error("context menu not active")
	}

	if !m.Contains(window.Point{X: 20, Y: 20}) {
		t.Error("expected point inside context menu")
	}
	if m.Contains(window.Point{X: 500, Y: 500}) {
		t.Error("expected point outside context menu")
	}

	if !m.DismissAll() {
		t.Error("DismissAll reported nothing to dismiss")
	}
	if m.DismissAll() {
		t.Error("second DismissAll reported an overlay")
	}
	if m.View() != nil {
		t.Error("expected nil view after dismiss")
	}
}

func TestManagerActivate(t *testing.T) {
	m := NewManager()
	if _, err := m.Activate(0); !errors.Is(err, ErrNoOverlay) {
		t.Errorf("expected ErrNoOverlay, got %v", err)
	}

	ctx, err := NewContextMenu(MenuDesktop, window.Point{X: 10, Y: 10}, viewport, "", "")
	if err != nil {
		t.Fatal(err)
	}
	m.Show(ctx)

	if _, err := m.Activate(99); !errors.Is(err, ErrNoSuchItem) {
		t.Errorf("expected ErrNoSuchItem, got %v", err)
	}

	idx, ok := m.ItemAt(ctx.ItemRect(1).Center())
	if !ok || idx != 1 {
		t.Fatalf("ItemAt = %d, %v", idx, ok)
	}
	if i, err := m.IndexOf(ctx.Items()[1].Action); err != nil || i != 1 {
		t.Errorf("IndexOf = %d, %v", i, err)
	}
	if _, err := m.IndexOf(Action{Verb: VerbClose, Window: "snake"}); !errors.Is(err, ErrNoSuchItem) {
		t.Errorf("expected ErrNoSuchItem, got %v", err)
	}

	action, err := m.Activate(idx)
	if err != nil {
		t.Fatal(err)
	}
	if action.Verb != VerbToggle || action.Window != GalleryWindow {
		t.Errorf("unexpected action %s", action)
	}
	if _, ok := m.Active(); ok {
		t.Error("overlay still active after activation")
	}
}

func TestRenderDrawsOverlay(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1280, 800))
	m := NewManager()
	ctx, err := NewContextMenu(MenuMusic, window.Point{X: 100, Y: 100}, viewport, "", "")
	if err != nil {
		t.Fatal(err)
	}
	m.Show(ctx)
	if err := m.Render(img); err != nil {
		t.Fatal(err)
	}

	if img.RGBAAt(150, 250).A == 0 {
		t.Error("expected menu background to be drawn")
	}
	if img.RGBAAt(50, 50) != (color.RGBA{}) {
		t.Error("expected pixels outside the menu untouched")
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 200); got != "short" {
		t.Errorf("got %q", got)
	}
	got := TruncateText("a rather long window title", 70)
	if MeasureText(got) > 70 {
		t.Errorf("%q is wider than 70px", got)
	}
}
