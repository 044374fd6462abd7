package window

import "testing"

func TestCaptureCentre(t *testing.T) {
	c := &ReportedControl{}
	if _, ok := Capture(c); ok {
		t.Error("expected unmeasured control to fail capture")
	}

	c.Report(Rect{X: 100, Y: 1000, Width: 48, Height: 48})
	p, ok := Capture(c)
	if !ok {
		t.Fatal("expected capture to succeed")
	}
	if p != (Point{X: 124, Y: 1024}) {
		t.Errorf("unexpected centre %+v", p)
	}
}

func TestMenuAnchor(t *testing.T) {
	button := &ReportedControl{}
	anchor := MenuAnchor{Button: button, Lift: DefaultMenuLift}

	if _, ok := Capture(anchor); ok {
		t.Error("expected anchor without measured button to fail")
	}

	button.Report(Rect{X: 600, Y: 1010, Width: 48, Height: 48})
	p, ok := Capture(anchor)
	if !ok {
		t.Fatal("expected capture to succeed")
	}
	if p != (Point{X: 624, Y: 960}) {
		t.Errorf("unexpected anchor point %+v", p)
	}
}

func TestResolverSharedOrigin(t *testing.T) {
	button := &ReportedControl{}
	anchor := MenuAnchor{Button: button, Lift: DefaultMenuLift}

	o := NewOriginResolver(nil)
	o.Bind("terminal", anchor)
	o.Bind("files", anchor)

	button.Report(Rect{X: 0, Y: 500, Width: 100, Height: 40})
	o.Recompute()

	if o.Origin("terminal") != o.Origin("files") {
		t.Error("expected menu-launched windows to share one origin")
	}
}

func TestResolverFallback(t *testing.T) {
	viewport := Size{Width: 1600, Height: 900}
	o := NewOriginResolver(viewport.Center)
	o.Bind("music", &ReportedControl{})

	if got := o.Origin("music"); got != (Point{X: 800, Y: 450}) {
		t.Errorf("expected viewport centre fallback, got %+v", got)
	}
	if got := o.Origin("unbound"); got != (Point{X: 800, Y: 450}) {
		t.Errorf("expected fallback for unbound window, got %+v", got)
	}
}

func TestResolverKeepsLastMeasurement(t *testing.T) {
	c := &ReportedControl{}
	c.Report(Rect{X: 0, Y: 0, Width: 10, Height: 10})

	o := NewOriginResolver(nil)
	o.Bind("settings", c)
	o.Recompute()

	c.Report(Rect{X: 100, Y: 100, Width: 10, Height: 10})
	if got := o.Origin("settings"); got != (Point{X: 5, Y: 5}) {
		t.Errorf("expected stale origin until recompute, got %+v", got)
	}
	if got := o.Refresh("settings"); got != (Point{X: 105, Y: 105}) {
		t.Errorf("expected refreshed origin, got %+v", got)
	}
}

func TestTransformOrigin(t *testing.T) {
	got := TransformOrigin(Point{X: 500, Y: 1000}, Point{X: 200, Y: 300})
	if got != (Point{X: 300, Y: 700}) {
		t.Errorf("unexpected transform origin %+v", got)
	}
}
