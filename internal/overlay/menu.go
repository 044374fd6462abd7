package overlay

import (
	"image"
	"image/color"

	"github.com/bryanchriswhite/WebDesk/internal/window"
)

const (
	// ContextMenuWidth and ContextMenuHeight are the footprint kept inside
	// the viewport when placing a context menu.
	ContextMenuWidth  = 220
	ContextMenuHeight = 200

	// StartMenuWidth and StartMenuHeight size the start menu panel
	StartMenuWidth  = 320
	StartMenuHeight = 550
	// StartMenuBottom is the gap between the start menu and the screen
	// bottom, leaving room for the dock.
	StartMenuBottom = 90
	// StartMenuMargin is the minimum distance from the left screen edge
	StartMenuMargin = 16

	itemHeight  = 30
	menuPadding = 6
	titleHeight = 26
)

var (
	menuBackground = color.RGBA{20, 20, 20, 255}
	menuBorder     = color.RGBA{70, 70, 70, 255}
	menuText       = color.RGBA{225, 225, 225, 255}
	menuTitleText  = color.RGBA{130, 130, 130, 255}
	menuOpacity    = 0.92
)

// Menu is a vertical list of items in a fixed rectangle. Both the start
// menu and context menus are menus.
type Menu struct {
	kind   Kind
	title  string
	bounds window.Rect
	items  []Item
}

// NewMenu creates a menu. Most callers want NewContextMenu or NewStartMenu.
func NewMenu(kind Kind, title string, bounds window.Rect, items []Item) *Menu {
	return &Menu{
		kind:   kind,
		title:  title,
		bounds: bounds,
		items:  append([]Item(nil), items...),
	}
}

// Kind returns the overlay type
func (m *Menu) Kind() Kind {
	return m.kind
}

// Title returns the heading shown above the items, if any
func (m *Menu) Title() string {
	return m.title
}

// Bounds returns the menu rectangle
func (m *Menu) Bounds() window.Rect {
	return m.bounds
}

// Items returns the menu entries
func (m *Menu) Items() []Item {
	return m.items
}

func (m *Menu) firstItemY() float64 {
	y := m.bounds.Y + menuPadding
	if m.title != "" {
		y += titleHeight
	}
	return y
}

// ItemRect returns the rectangle of entry i
func (m *Menu) ItemRect(i int) window.Rect {
	return window.Rect{
		X:      m.bounds.X + menuPadding,
		Y:      m.firstItemY() + float64(i*itemHeight),
		Width:  m.bounds.Width - 2*menuPadding,
		Height: itemHeight,
	}
}

// ItemAt returns the index of the entry under p
func (m *Menu) ItemAt(p window.Point) (int, bool) {
	for i := range m.items {
		if m.ItemRect(i).Contains(p) {
			return i, true
		}
	}
	return 0, false
}

// Render draws the menu
func (m *Menu) Render(img *image.RGBA) error {
	x, y := int(m.bounds.X), int(m.bounds.Y)
	w, h := int(m.bounds.Width), int(m.bounds.Height)

	DrawRectangle(img, x-1, y-1, w+2, h+2, menuBorder, menuOpacity)
	DrawRectangle(img, x, y, w, h, menuBackground, menuOpacity)

	if m.title != "" {
		DrawText(img, TruncateText(m.title, w-2*menuPadding), x+menuPadding+4, y+menuPadding+6, menuTitleText)
	}

	for i, item := range m.items {
		r := m.ItemRect(i)
		if r.Y+r.Height > m.bounds.Y+m.bounds.Height {
			break
		}
		ty := int(r.Y) + (itemHeight-LineHeight)/2
		DrawText(img, TruncateText(item.Label, int(r.Width)-8), int(r.X)+4, ty, menuText)
	}
	return nil
}

// ClampMenu moves a context menu opened at p so its full footprint stays
// inside the viewport.
func ClampMenu(p window.Point, viewport window.Size) window.Point {
	if p.X+ContextMenuWidth > viewport.Width {
		p.X = viewport.Width - ContextMenuWidth
	}
	if p.Y+ContextMenuHeight > viewport.Height {
		p.Y = viewport.Height - ContextMenuHeight
	}
	return p
}
