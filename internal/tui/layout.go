package tui

import (
	"math"

	"github.com/bryanchriswhite/WebDesk/internal/config"
	"github.com/bryanchriswhite/WebDesk/internal/overlay"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/window"
)

// cellRect is an inclusive rectangle of terminal cells
type cellRect struct {
	x0, y0, x1, y1 int
}

func (r cellRect) contains(x, y int) bool {
	return x >= r.x0 && x <= r.x1 && y >= r.y0 && y <= r.y1
}

func (r cellRect) empty() bool {
	return r.x1 < r.x0 || r.y1 < r.y0
}

// drawnWindow remembers where a window was painted so presses on its
// cells can be mapped back into the matching window region
type drawnWindow struct {
	view  shell.WindowView
	cells cellRect
}

// drawnMenu remembers the rows the overlay items were painted on
type drawnMenu struct {
	view     overlay.View
	cells    cellRect
	itemRows []int
}

// dockButton is one launcher in the bottom row
type dockButton struct {
	name  string
	label string
	cells cellRect
}

// grid maps the logical viewport onto the desktop part of the terminal.
// The last row is the dock and lies just below the viewport.
type grid struct {
	cols, rows int
	sx, sy     float64
}

func newGrid(cols, rows int, viewport window.Size) grid {
	g := grid{cols: cols, rows: rows, sx: 1, sy: 1}
	desk := rows - 1
	if cols > 0 && viewport.Width > 0 {
		g.sx = viewport.Width / float64(cols)
	}
	if desk > 0 && viewport.Height > 0 {
		g.sy = viewport.Height / float64(desk)
	}
	return g
}

func (g grid) deskRows() int {
	return g.rows - 1
}

// point returns the logical centre of a cell
func (g grid) point(x, y int) window.Point {
	return window.Point{
		X: (float64(x) + 0.5) * g.sx,
		Y: (float64(y) + 0.5) * g.sy,
	}
}

// cells returns the cells covered by a logical rectangle, clipped to the
// desktop area
func (g grid) cells(r window.Rect) cellRect {
	c := cellRect{
		x0: int(math.Floor(r.X / g.sx)),
		y0: int(math.Floor(r.Y / g.sy)),
		x1: int(math.Ceil((r.X+r.Width)/g.sx)) - 1,
		y1: int(math.Ceil((r.Y+r.Height)/g.sy)) - 1,
	}
	return g.clip(c)
}

func (g grid) clip(c cellRect) cellRect {
	c.x0 = max(c.x0, 0)
	c.y0 = max(c.y0, 0)
	c.x1 = min(c.x1, g.cols-1)
	c.y1 = min(c.y1, g.deskRows()-1)
	return c
}

// titleRow is the row a window's title bar is painted on
func (g grid) titleRow(b window.Rect) int {
	return int(math.Floor(b.Y / g.sy))
}

// dockLabels names each control after the first app it launches
func dockLabels(apps []config.AppConfig, names []string) []dockButton {
	buttons := make([]dockButton, 0, len(names))
	for _, name := range names {
		label := name
		if name == config.StartButton {
			label = "Start"
		} else {
			for _, app := range apps {
				if app.Launcher == name {
					label = app.Title
					break
				}
			}
		}
		buttons = append(buttons, dockButton{name: name, label: " " + label + " "})
	}
	return buttons
}

// layoutDock places the buttons left to right on the dock row
func (g grid) layoutDock(buttons []dockButton) {
	x := 0
	row := g.rows - 1
	for i := range buttons {
		w := len([]rune(buttons[i].label))
		buttons[i].cells = cellRect{x0: x, y0: row, x1: min(x+w, g.cols) - 1, y1: row}
		x += w + 1
	}
}

// dockRect converts a dock button to the logical rectangle reported to
// the shell. Unlike desktop cells it is not clipped to the viewport.
func (g grid) dockRect(b dockButton) window.Rect {
	return window.Rect{
		X:      float64(b.cells.x0) * g.sx,
		Y:      float64(b.cells.y0) * g.sy,
		Width:  float64(b.cells.x1-b.cells.x0+1) * g.sx,
		Height: g.sy,
	}
}

// menuCells sizes an overlay so every item gets its own row, keeping it
// inside the desktop area
func (g grid) menuCells(v overlay.View) (cellRect, []int) {
	c := g.cells(v.Bounds)
	header := 1
	if v.Title != "" {
		header = 2
	}
	need := header + len(v.Items) + 1
	if c.y1-c.y0+1 < need {
		c.y1 = c.y0 + need - 1
		if over := c.y1 - (g.deskRows() - 1); over > 0 {
			c.y0 = max(c.y0-over, 0)
			c.y1 = c.y0 + need - 1
		}
		c = g.clip(c)
	}

	rows := make([]int, len(v.Items))
	for i := range v.Items {
		rows[i] = c.y0 + header + i
	}
	return c, rows
}

// target maps a press on cell (x, y) to the logical point the shell should
// see. Cells of painted windows and menus resolve to a point inside the
// part drawn there, so the terminal and the hit test agree.
func (a *App) target(x, y int) window.Point {
	p := a.grid.point(x, y)

	if m := a.menu; m != nil && m.cells.contains(x, y) {
		menu := overlay.NewMenu(m.view.Kind, m.view.Title, m.view.Bounds, m.view.Items)
		for i, row := range m.itemRows {
			if row == y {
				return menu.ItemRect(i).Center()
			}
		}
		return window.Point{X: m.view.Bounds.X + 1, Y: m.view.Bounds.Y + 1}
	}

	for _, b := range a.dock {
		if b.cells.contains(x, y) {
			return a.grid.dockRect(b).Center()
		}
	}

	for i := len(a.windows) - 1; i >= 0; i-- {
		w := a.windows[i]
		if !w.view.Open || !w.cells.contains(x, y) {
			continue
		}
		b := w.view.Bounds
		if y == a.grid.titleRow(b) && x >= w.cells.x1-2 {
			// the "_□x" glyphs drawn at the end of the title row
			r := [...]window.Region{window.RegionMinimize, window.RegionMaximize, window.RegionClose}[x-(w.cells.x1-2)]
			rect, _ := window.ControlRect(b, r)
			return rect.Center()
		}
		p.X = math.Max(b.X, math.Min(p.X, b.X+b.Width-1))
		if y == a.grid.titleRow(b) {
			p.Y = b.Y + window.TitleBarHeight/2
		} else {
			p.Y = math.Max(p.Y, b.Y+window.TitleBarHeight)
			p.Y = math.Min(p.Y, b.Y+b.Height-1)
		}
		return p
	}
	return p
}
