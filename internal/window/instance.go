package window

import "fmt"

// Phase is the lifecycle stage of a mounted window
type Phase int

const (
	// PhaseEntering is the open animation, growing out of the launch origin.
	PhaseEntering Phase = iota
	// PhaseIdle is a settled window that can be dragged and focused.
	PhaseIdle
	// PhaseExiting is the close animation, shrinking back to the launch origin.
	PhaseExiting
	// PhaseUnmounted is terminal; the instance is gone from the render tree.
	PhaseUnmounted
)

// String returns a string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseEntering:
		return "entering"
	case PhaseIdle:
		return "idle"
	case PhaseExiting:
		return "exiting"
	case PhaseUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// MarshalText lets phases serialise by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name
func (p *Phase) UnmarshalText(b []byte) error {
	for _, candidate := range []Phase{PhaseEntering, PhaseIdle, PhaseExiting, PhaseUnmounted} {
		if candidate.String() == string(b) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Region is the part of a window that received a pointer event
type Region int

const (
	// RegionBody is the pane content area.
	RegionBody Region = iota
	// RegionTitleBar is the draggable header.
	RegionTitleBar
	// RegionMinimize, RegionMaximize and RegionClose are the buttons at
	// the right end of the title bar. They swallow the pointer: pressing
	// them neither focuses the window nor starts a drag.
	RegionMinimize
	RegionMaximize
	RegionClose
)

// String returns a string representation of the region.
func (r Region) String() string {
	switch r {
	case RegionBody:
		return "body"
	case RegionTitleBar:
		return "titlebar"
	case RegionMinimize:
		return "minimize"
	case RegionMaximize:
		return "maximize"
	case RegionClose:
		return "close"
	default:
		return "unknown"
	}
}

// IsControl reports whether r is one of the title bar buttons
func (r Region) IsControl() bool {
	return r == RegionMinimize || r == RegionMaximize || r == RegionClose
}

// ParseRegion converts a region name back to a Region
func ParseRegion(s string) (Region, bool) {
	switch s {
	case "body", "":
		return RegionBody, true
	case "titlebar", "title":
		return RegionTitleBar, true
	case "minimize":
		return RegionMinimize, true
	case "maximize":
		return RegionMaximize, true
	case "close":
		return RegionClose, true
	default:
		return RegionBody, false
	}
}

// TitleBarHeight is the height of the draggable header
const TitleBarHeight = 40

// ControlsWidth is the width of the button cluster at the right end of the
// title bar
const ControlsWidth = 110

// ControlButtonWidth is the pitch of one button in the cluster. The first
// button starts controlsInset into it; the outer buttons absorb the slack.
const (
	ControlButtonWidth = 32
	controlsInset      = 6
)

var controlRegions = [...]Region{RegionMinimize, RegionMaximize, RegionClose}

// ControlRect returns the hit rectangle of a title bar button
func ControlRect(bounds Rect, r Region) (Rect, bool) {
	cluster := bounds.X + bounds.Width - ControlsWidth
	for i, cr := range controlRegions {
		if cr != r {
			continue
		}
		x0 := cluster + controlsInset + float64(i*ControlButtonWidth)
		x1 := x0 + ControlButtonWidth
		if i == 0 {
			x0 = cluster
		}
		if i == len(controlRegions)-1 {
			x1 = bounds.X + bounds.Width
		}
		return Rect{X: x0, Y: bounds.Y, Width: x1 - x0, Height: TitleBarHeight}, true
	}
	return Rect{}, false
}

// Host receives the side effects of a window instance. The shell
// controller implements it; instances never touch shared stores directly.
type Host interface {
	// FocusWindow raises the window to the top of the stack.
	FocusWindow(id ID)
	// CommitPosition stores the window's absolute position.
	CommitPosition(id ID, p Point)
	// Unmounted reports that the close animation finished.
	Unmounted(id ID)
}

// Instance is one mounted window. Its base position and launch origin are
// frozen at mount; dragging accumulates an offset on top of the base.
type Instance struct {
	id     ID
	host   Host
	phase  Phase
	base   Point
	launch Point

	// committed is the sum of finished drag gestures, gesture the offset of
	// the one in progress.
	committed Point
	gesture   Point
	dragging  bool
	dragSeq   uint64
}

// Mount creates an instance in the entering phase
func Mount(id ID, host Host, base, launch Point) *Instance {
	return &Instance{
		id:     id,
		host:   host,
		phase:  PhaseEntering,
		base:   base,
		launch: launch,
	}
}

// ID returns the window this instance shows
func (w *Instance) ID() ID {
	return w.id
}

// Phase returns the current lifecycle phase
func (w *Instance) Phase() Phase {
	return w.phase
}

// Dragging reports whether a title-bar drag is in progress
func (w *Instance) Dragging() bool {
	return w.dragging
}

// LaunchOrigin returns the launch point frozen at mount
func (w *Instance) LaunchOrigin() Point {
	return w.launch
}

// Position returns the live absolute position, including any drag in
// progress
func (w *Instance) Position() Point {
	return w.base.Add(w.committed).Add(w.gesture)
}

// Bounds returns the live on-screen rectangle for a pane of the given size
func (w *Instance) Bounds(pane Size) Rect {
	return RectAt(w.Position(), pane)
}

// TransformOrigin returns the launch origin relative to the live position
func (w *Instance) TransformOrigin() Point {
	return TransformOrigin(w.launch, w.Position())
}

// Interactive reports whether the instance still takes input
func (w *Instance) Interactive() bool {
	return w.phase == PhaseEntering || w.phase == PhaseIdle
}

// PointerDown focuses the window and, on the title bar, arms a drag.
// Presses on the title bar buttons do neither. The phase does not change.
// It returns false once the window is closing.
func (w *Instance) PointerDown(region Region) bool {
	if !w.Interactive() {
		return false
	}
	if region.IsControl() {
		return true
	}
	w.host.FocusWindow(w.id)
	if region == RegionTitleBar {
		w.dragging = true
		w.gesture = Point{}
		w.dragSeq = 0
	}
	return true
}

// DragMove sets the offset of the current gesture, measured from where
// the drag started. seq must grow with every move of a gesture; moves that
// arrive late are dropped.
func (w *Instance) DragMove(seq uint64, offset Point) bool {
	if !w.dragging || !w.Interactive() {
		return false
	}
	if seq != 0 && seq <= w.dragSeq {
		return false
	}
	if seq != 0 {
		w.dragSeq = seq
	}
	w.gesture = offset
	return true
}

// DragEnd commits the gesture and reports the new absolute position
func (w *Instance) DragEnd() (Point, bool) {
	if !w.dragging || !w.Interactive() {
		return Point{}, false
	}
	w.committed = w.committed.Add(w.gesture)
	w.gesture = Point{}
	w.dragging = false
	p := w.Position()
	w.host.CommitPosition(w.id, p)
	return p, true
}

// RequestClose starts the exit animation. The position reported back is
// the last committed one; an unfinished drag is discarded. Closing while
// entering reverses the open animation from wherever it is.
func (w *Instance) RequestClose() bool {
	if !w.Interactive() {
		return false
	}
	w.gesture = Point{}
	w.dragging = false
	w.host.CommitPosition(w.id, w.Position())
	w.phase = PhaseExiting
	return true
}

// AnimationDone advances past the running animation: entering settles to
// idle, exiting unmounts.
func (w *Instance) AnimationDone() Phase {
	switch w.phase {
	case PhaseEntering:
		w.phase = PhaseIdle
	case PhaseExiting:
		w.phase = PhaseUnmounted
		w.host.Unmounted(w.id)
	}
	return w.phase
}

// Supersede unmounts the instance without animation, for when a new
// instance of the same window replaces one that is still exiting.
func (w *Instance) Supersede() {
	if w.phase == PhaseUnmounted {
		return
	}
	w.dragging = false
	w.gesture = Point{}
	w.phase = PhaseUnmounted
	w.host.Unmounted(w.id)
}

// HitRegion classifies a point inside the window's bounds
func HitRegion(bounds Rect, p Point) Region {
	if p.Y < bounds.Y+TitleBarHeight {
		off := p.X - (bounds.X + bounds.Width - ControlsWidth)
		if off >= 0 {
			i := int((off - controlsInset) / ControlButtonWidth)
			i = max(0, min(i, len(controlRegions)-1))
			return controlRegions[i]
		}
		return RegionTitleBar
	}
	return RegionBody
}
