package overlay

import (
	"fmt"
	"math"

	"github.com/bryanchriswhite/WebDesk/internal/window"
)

// MenuKind selects the entries of a context menu
type MenuKind string

const (
	MenuDesktop MenuKind = "desktop"
	MenuMusic   MenuKind = "music"
	MenuWindow  MenuKind = "window"
)

// ParseMenuKind validates a context menu kind; empty means desktop
func ParseMenuKind(s string) (MenuKind, error) {
	switch MenuKind(s) {
	case "", MenuDesktop:
		return MenuDesktop, nil
	case MenuMusic, MenuWindow:
		return MenuKind(s), nil
	default:
		return "", fmt.Errorf("unknown context menu kind %q", s)
	}
}

// Well-known windows the desktop and music menus point at
const (
	GalleryWindow window.ID = "gallery"
	MusicWindow   window.ID = "music"
)

func noop(label string) Item {
	return Item{Label: label, Action: Action{Verb: VerbNoop}}
}

// NewContextMenu builds the context menu of the given kind opened at p.
// Window menus act on target and show title as their heading.
func NewContextMenu(kind MenuKind, p window.Point, viewport window.Size, target window.ID, title string) (*Menu, error) {
	var heading string
	var items []Item

	switch kind {
	case MenuDesktop:
		items = []Item{
			noop("Next Wallpaper"),
			{Label: "Wallpaper Library", Action: Action{Verb: VerbToggle, Window: GalleryWindow}},
			noop("Refresh"),
			noop("Display Settings"),
			noop("Shut down"),
		}
	case MenuMusic:
		heading = "Music Player"
		items = []Item{
			{Label: "Open Music App", Action: Action{Verb: VerbToggle, Window: MusicWindow}},
			noop("Play"),
			noop("Next Track"),
		}
	case MenuWindow:
		if target == "" {
			return nil, fmt.Errorf("window context menu needs a target window")
		}
		heading = title
		items = []Item{
			{Label: "Minimize", Action: Action{Verb: VerbMinimize, Window: target}},
			{Label: "Maximize", Action: Action{Verb: VerbMaximize, Window: target}},
			{Label: "Close", Action: Action{Verb: VerbClose, Window: target}},
		}
	default:
		return nil, fmt.Errorf("unknown context menu kind %q", kind)
	}

	at := ClampMenu(p, viewport)
	bounds := window.Rect{X: at.X, Y: at.Y, Width: ContextMenuWidth, Height: ContextMenuHeight}
	return NewMenu(KindContextMenu, heading, bounds, items), nil
}

// StartMenuBounds places the start menu horizontally centred on anchorX,
// never closer than StartMenuMargin to the left edge, above the dock.
func StartMenuBounds(anchorX float64, viewport window.Size) window.Rect {
	return window.Rect{
		X:      math.Max(StartMenuMargin, anchorX-StartMenuWidth/2),
		Y:      viewport.Height - StartMenuBottom - StartMenuHeight,
		Width:  StartMenuWidth,
		Height: StartMenuHeight,
	}
}

// NewStartMenu builds the start menu for the given launcher entries
func NewStartMenu(anchorX float64, viewport window.Size, items []Item) *Menu {
	return NewMenu(KindStartMenu, "Start", StartMenuBounds(anchorX, viewport), items)
}
