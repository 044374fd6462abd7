package overlay

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/bryanchriswhite/WebDesk/internal/window"
)

var (
	// ErrNoOverlay is returned when an operation needs an active overlay
	ErrNoOverlay = errors.New("no active overlay")
	// ErrNoSuchItem is returned for an out-of-range menu item
	ErrNoSuchItem = errors.New("no such menu item")
)

// Kind names a type of transient overlay
type Kind string

const (
	KindStartMenu   Kind = "start-menu"
	KindContextMenu Kind = "context-menu"
)

// Verb is what activating a menu item asks the shell to do
type Verb string

const (
	VerbToggle   Verb = "toggle"
	VerbClose    Verb = "close"
	VerbMinimize Verb = "minimize"
	VerbMaximize Verb = "maximize"
	VerbNoop     Verb = "noop"
)

// Action is a verb plus the window it applies to
type Action struct {
	Verb   Verb      `json:"verb" yaml:"verb"`
	Window window.ID `json:"window,omitempty" yaml:"window,omitempty"`
}

// String renders the action as "verb:window", or just the verb
func (a Action) String() string {
	if a.Window == "" {
		return string(a.Verb)
	}
	return string(a.Verb) + ":" + string(a.Window)
}

// ParseAction is the inverse of Action.String
func ParseAction(s string) (Action, error) {
	verb, id, _ := strings.Cut(s, ":")
	switch Verb(verb) {
	case VerbNoop:
		return Action{Verb: VerbNoop}, nil
	case VerbToggle, VerbClose, VerbMinimize, VerbMaximize:
		if id == "" {
			return Action{}, fmt.Errorf("action %q needs a window", s)
		}
		return Action{Verb: Verb(verb), Window: window.ID(id)}, nil
	default:
		return Action{}, fmt.Errorf("unknown action %q", s)
	}
}

// Item is one entry of a menu
type Item struct {
	Label  string `json:"label" yaml:"label"`
	Action Action `json:"action" yaml:"action"`
}

// Surface is a transient overlay drawn above every window
type Surface interface {
	// Kind returns the overlay type
	Kind() Kind

	// Bounds returns the on-screen rectangle of the overlay
	Bounds() window.Rect

	// Items returns the activatable entries in display order
	Items() []Item

	// ItemAt returns the index of the entry under p
	ItemAt(p window.Point) (int, bool)

	// Render draws the overlay onto the provided image
	Render(img *image.RGBA) error
}

// View is the serialisable form of a surface
type View struct {
	Kind   Kind        `json:"kind" yaml:"kind"`
	Title  string      `json:"title,omitempty" yaml:"title,omitempty"`
	Bounds window.Rect `json:"bounds" yaml:"bounds"`
	Items  []Item      `json:"items" yaml:"items"`
}

// Describe converts a surface into a View
func Describe(s Surface) View {
	v := View{
		Kind:   s.Kind(),
		Bounds: s.Bounds(),
		Items:  append([]Item(nil), s.Items()...),
	}
	if m, ok := s.(*Menu); ok {
		v.Title = m.Title()
	}
	return v
}
