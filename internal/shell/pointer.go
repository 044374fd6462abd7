package shell

import (
	"fmt"
	"strings"

	"github.com/bryanchriswhite/WebDesk/internal/config"
	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/overlay"
	"github.com/bryanchriswhite/WebDesk/internal/window"
)

// Button is the pointer button of a press
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// ParseButton accepts "left"/"primary" and "right"/"secondary"; empty is
// primary
func ParseButton(s string) (Button, error) {
	switch strings.ToLower(s) {
	case "", "left", "primary", "0":
		return ButtonPrimary, nil
	case "right", "secondary", "2":
		return ButtonSecondary, nil
	default:
		return ButtonPrimary, fmt.Errorf("unknown pointer button %q", s)
	}
}

// Target is what a global pointer press landed on
type Target string

const (
	TargetOverlay Target = "overlay"
	TargetControl Target = "control"
	TargetWindow  Target = "window"
	TargetDesktop Target = "desktop"
)

// Hit describes how a global pointer press was routed
type Hit struct {
	Target  Target    `json:"target" yaml:"target"`
	Window  window.ID `json:"window,omitempty" yaml:"window,omitempty"`
	Region  string    `json:"region,omitempty" yaml:"region,omitempty"`
	Control string    `json:"control,omitempty" yaml:"control,omitempty"`
	Action  string    `json:"action,omitempty" yaml:"action,omitempty"`
}

// extraMenuItems are start menu entries with no window behind them
var extraMenuItems = []overlay.Item{
	{Label: "Monitor", Action: overlay.Action{Verb: overlay.VerbNoop}},
	{Label: "Mail", Action: overlay.Action{Verb: overlay.VerbNoop}},
}

// PointerAt routes a pointer press at p in viewport coordinates. Layers
// are tried top-down: the active overlay, the dock controls, then windows
// from the top of the stack. A press outside the active overlay dismisses
// it. Windows are focused before this returns.
func (s *Shell) PointerAt(p window.Point, button Button) (Hit, error) {
	s.lock()
	defer s.unlock()

	if s.overlays.Contains(p) {
		hit := Hit{Target: TargetOverlay}
		if button != ButtonPrimary {
			return hit, nil
		}
		idx, ok := s.overlays.ItemAt(p)
		if !ok {
			return hit, nil
		}
		action, err := s.activateLocked(idx)
		hit.Action = action.String()
		return hit, err
	}

	if name, ok := s.controlAtLocked(p); ok {
		hit := Hit{Target: TargetControl, Control: name}
		return hit, s.pressControlLocked(name, p, button)
	}

	s.dismissLocked()

	if inst, region, ok := s.windowAtLocked(p); ok {
		id := inst.ID()
		hit := Hit{Target: TargetWindow, Window: id, Region: region.String()}
		if button == ButtonPrimary {
			s.pressWindowLocked(inst, region)
			return hit, nil
		}
		if region.IsControl() {
			return hit, nil
		}
		// secondary presses focus without arming a drag
		inst.PointerDown(window.RegionBody)
		if region == window.RegionTitleBar {
			return hit, s.showContextMenuLocked(overlay.MenuWindow, p, id)
		}
		return hit, nil
	}

	if button == ButtonSecondary {
		return Hit{Target: TargetDesktop}, s.showContextMenuLocked(overlay.MenuDesktop, p, "")
	}
	return Hit{Target: TargetDesktop}, nil
}

// windowAtLocked finds the topmost interactive window under p
func (s *Shell) windowAtLocked(p window.Point) (*window.Instance, window.Region, bool) {
	order := s.stack.Order()
	pane := s.positions.Pane()
	for i := len(order) - 1; i >= 0; i-- {
		inst, ok := s.instances[order[i]]
		if !ok || !inst.Interactive() {
			continue
		}
		bounds := inst.Bounds(pane)
		if bounds.Contains(p) {
			return inst, window.HitRegion(bounds, p), true
		}
	}
	return nil, window.RegionBody, false
}

func (s *Shell) controlAtLocked(p window.Point) (string, bool) {
	for _, name := range s.controlNames {
		if r, ok := s.controls[name].Bounds(); ok && r.Contains(p) {
			return name, true
		}
	}
	return "", false
}

// pressControlLocked handles a press on a dock control: the start button
// toggles the start menu, other launchers toggle their app, and a
// secondary press on the music launcher opens its context menu. Every
// other press only dismisses the active overlay.
func (s *Shell) pressControlLocked(name string, p window.Point, button Button) error {
	if name == config.StartButton {
		if button == ButtonPrimary {
			s.toggleStartMenuLocked()
		} else {
			s.dismissLocked()
		}
		return nil
	}

	var target window.ID
	for _, app := range s.apps {
		if app.Launcher == name {
			target = window.ID(app.ID)
			break
		}
	}
	if button == ButtonSecondary && target == overlay.MusicWindow {
		return s.showContextMenuLocked(overlay.MenuMusic, p, "")
	}
	s.dismissLocked()
	if target == "" || button == ButtonSecondary {
		return nil
	}
	return s.toggleLocked(target)
}

// ToggleStartMenu opens the start menu, or closes it if it is showing.
// It reports whether the menu is now open.
func (s *Shell) ToggleStartMenu() bool {
	s.lock()
	defer s.unlock()
	return s.toggleStartMenuLocked()
}

func (s *Shell) toggleStartMenuLocked() bool {
	if s.overlays.IsActive(overlay.KindStartMenu) {
		s.dismissLocked()
		return false
	}

	anchorX := s.positions.Viewport().Center().X
	if p, ok := window.Capture(s.controls[config.StartButton]); ok {
		anchorX = p.X
	}

	var items []overlay.Item
	for _, app := range s.apps {
		if app.InMenu {
			items = append(items, overlay.Item{
				Label:  app.Title,
				Action: overlay.Action{Verb: overlay.VerbToggle, Window: window.ID(app.ID)},
			})
		}
	}
	items = append(items, extraMenuItems...)

	s.overlays.Show(overlay.NewStartMenu(anchorX, s.positions.Viewport(), items))
	s.emit(EventOverlay, "").Detail = string(overlay.KindStartMenu)
	return true
}

// ShowContextMenu opens a context menu at p. Window menus need an open
// target window.
func (s *Shell) ShowContextMenu(kind overlay.MenuKind, p window.Point, target window.ID) error {
	s.lock()
	defer s.unlock()
	return s.showContextMenuLocked(kind, p, target)
}

func (s *Shell) showContextMenuLocked(kind overlay.MenuKind, p window.Point, target window.ID) error {
	var title string
	if kind == overlay.MenuWindow {
		if err := s.checkKnown(target); err != nil {
			return err
		}
		entry, _ := s.registry.Entry(target)
		if !entry.Open {
			return fmt.Errorf("%w: %s", ErrNotOpen, target)
		}
		title = entry.Title
	}

	menu, err := overlay.NewContextMenu(kind, p, s.positions.Viewport(), target, title)
	if err != nil {
		return err
	}
	s.overlays.Show(menu)
	s.emit(EventOverlay, target).Detail = string(overlay.KindContextMenu) + ":" + string(kind)
	return nil
}

// DismissOverlays closes the active overlay. It reports whether one was open.
func (s *Shell) DismissOverlays() bool {
	s.lock()
	defer s.unlock()
	return s.dismissLocked()
}

func (s *Shell) dismissLocked() bool {
	if !s.overlays.DismissAll() {
		return false
	}
	s.emit(EventOverlay, "").Detail = "dismissed"
	return true
}

// ActivateOverlay picks entry index of the active overlay and carries out
// its action
func (s *Shell) ActivateOverlay(index int) (overlay.Action, error) {
	s.lock()
	defer s.unlock()
	return s.activateLocked(index)
}

// ActivateOverlayAction carries out the entry of the active overlay that
// carries action a. Actions the overlay does not offer are rejected.
func (s *Shell) ActivateOverlayAction(a overlay.Action) (overlay.Action, error) {
	s.lock()
	defer s.unlock()

	idx, err := s.overlays.IndexOf(a)
	if err != nil {
		return a, err
	}
	return s.activateLocked(idx)
}

func (s *Shell) activateLocked(index int) (overlay.Action, error) {
	action, err := s.overlays.Activate(index)
	if err != nil {
		return action, err
	}
	s.emit(EventOverlay, action.Window).Detail = "activated:" + action.String()

	switch action.Verb {
	case overlay.VerbToggle:
		return action, s.toggleLocked(action.Window)
	case overlay.VerbClose:
		if err := s.checkKnown(action.Window); err != nil {
			return action, err
		}
		if s.registry.IsOpen(action.Window) {
			s.closeLocked(action.Window)
		}
	case overlay.VerbMinimize, overlay.VerbMaximize:
		logger.WithComponent("shell").Debug().
			Str("window", string(action.Window)).
			Msgf("Ignoring %s request", action.Verb)
	}
	return action, nil
}

// Overlay returns the active overlay, if any
func (s *Shell) Overlay() *overlay.View {
	return s.overlays.View()
}
