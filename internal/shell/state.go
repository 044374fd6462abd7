package shell

import (
	"fmt"

	"github.com/bryanchriswhite/WebDesk/internal/overlay"
	"github.com/bryanchriswhite/WebDesk/internal/window"
)

// WindowView is a read-only snapshot of one window
type WindowView struct {
	ID    window.ID `json:"id" yaml:"id"`
	Title string    `json:"title" yaml:"title"`
	Open  bool      `json:"open" yaml:"open"`

	// Phase is "unmounted" for windows with no instance
	Phase    window.Phase `json:"phase" yaml:"phase"`
	Mounted  bool         `json:"mounted" yaml:"mounted"`
	Dragging bool         `json:"dragging" yaml:"dragging"`
	Active   bool         `json:"active" yaml:"active"`
	ZIndex   int          `json:"z_index" yaml:"z_index"`

	Position        window.Point `json:"position" yaml:"position"`
	Bounds          window.Rect  `json:"bounds" yaml:"bounds"`
	LaunchOrigin    window.Point `json:"launch_origin" yaml:"launch_origin"`
	TransformOrigin window.Point `json:"transform_origin" yaml:"transform_origin"`
}

// State is a read-only snapshot of the whole shell
type State struct {
	Session  string      `json:"session" yaml:"session"`
	Version  uint64      `json:"version" yaml:"version"`
	Viewport window.Size `json:"viewport" yaml:"viewport"`
	Pane     window.Size `json:"pane" yaml:"pane"`
	BaseZ    int         `json:"base_z" yaml:"base_z"`

	// Stack lists the open windows bottom to top
	Stack   []window.ID   `json:"stack" yaml:"stack"`
	Active  window.ID     `json:"active,omitempty" yaml:"active,omitempty"`
	Windows []WindowView  `json:"windows" yaml:"windows"`
	Overlay *overlay.View `json:"overlay,omitempty" yaml:"overlay,omitempty"`

	Controls map[string]window.Rect `json:"controls,omitempty" yaml:"controls,omitempty"`
}

// Window returns the view of one window from the snapshot
func (st State) Window(id window.ID) (WindowView, bool) {
	for _, w := range st.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return WindowView{}, false
}

// Mounted returns the mounted windows in paint order: exiting windows
// first (they sit at the base z-index), then the stack bottom to top.
func (st State) Mounted() []WindowView {
	var exiting, stacked []WindowView
	for _, w := range st.Windows {
		if !w.Mounted || w.Open {
			continue
		}
		exiting = append(exiting, w)
	}
	for _, id := range st.Stack {
		if w, ok := st.Window(id); ok && w.Mounted {
			stacked = append(stacked, w)
		}
	}
	return append(exiting, stacked...)
}

// State returns a snapshot of the shell
func (s *Shell) State() State {
	s.lock()
	defer s.unlock()

	st := State{
		Session:  s.session,
		Version:  s.version,
		Viewport: s.positions.Viewport(),
		Pane:     s.positions.Pane(),
		BaseZ:    s.stack.BaseZ(),
		Stack:    s.stack.Order(),
		Overlay:  s.overlays.View(),
		Controls: make(map[string]window.Rect),
	}
	if top, ok := s.stack.Top(); ok {
		st.Active = top
	}
	for _, id := range s.registry.IDs() {
		st.Windows = append(st.Windows, s.viewLocked(id))
	}
	for name, c := range s.controls {
		if r, ok := c.Bounds(); ok {
			st.Controls[name] = r
		}
	}
	return st
}

// Window returns a snapshot of one window
func (s *Shell) Window(id window.ID) (WindowView, error) {
	s.lock()
	defer s.unlock()

	if err := s.checkKnown(id); err != nil {
		return WindowView{}, err
	}
	return s.viewLocked(id), nil
}

func (s *Shell) viewLocked(id window.ID) WindowView {
	entry, _ := s.registry.Entry(id)
	pane := s.positions.Pane()

	v := WindowView{
		ID:     id,
		Title:  entry.Title,
		Open:   entry.Open,
		Phase:  window.PhaseUnmounted,
		Active: s.stack.IsTop(id),
		ZIndex: s.stack.ZIndexOf(id),
	}

	if inst, ok := s.instances[id]; ok {
		v.Mounted = true
		v.Phase = inst.Phase()
		v.Dragging = inst.Dragging()
		v.Position = inst.Position()
		v.LaunchOrigin = inst.LaunchOrigin()
		v.TransformOrigin = inst.TransformOrigin()
	} else {
		v.Position = s.positions.Peek(id)
		v.LaunchOrigin = s.origins.Origin(id)
		v.TransformOrigin = window.TransformOrigin(v.LaunchOrigin, v.Position)
	}
	v.Bounds = window.RectAt(v.Position, pane)
	return v
}

// String renders the view as one log-friendly line
func (v WindowView) String() string {
	return fmt.Sprintf("%s open=%t phase=%s z=%d at (%.0f,%.0f)",
		v.ID, v.Open, v.Phase, v.ZIndex, v.Position.X, v.Position.Y)
}
