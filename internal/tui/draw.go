package tui

import (
	"github.com/bryanchriswhite/WebDesk/internal/overlay"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/window"
	"github.com/gdamore/tcell/v2"
)

var (
	desktopStyle  = tcell.StyleDefault.Background(tcell.NewRGBColor(18, 32, 58))
	bodyStyle     = tcell.StyleDefault.Background(tcell.NewRGBColor(30, 30, 30)).Foreground(tcell.ColorSilver)
	titleStyle    = tcell.StyleDefault.Background(tcell.NewRGBColor(60, 60, 60)).Foreground(tcell.ColorWhite)
	activeStyle   = tcell.StyleDefault.Background(tcell.NewRGBColor(59, 130, 246)).Foreground(tcell.ColorWhite)
	exitingStyle  = tcell.StyleDefault.Background(tcell.NewRGBColor(45, 45, 45)).Foreground(tcell.ColorGray)
	menuStyle     = tcell.StyleDefault.Background(tcell.NewRGBColor(20, 20, 20)).Foreground(tcell.ColorWhite)
	menuTitle     = menuStyle.Foreground(tcell.ColorGray)
	dockStyle     = tcell.StyleDefault.Background(tcell.NewRGBColor(10, 10, 10)).Foreground(tcell.ColorSilver)
	launcherStyle = tcell.StyleDefault.Background(tcell.NewRGBColor(50, 50, 50)).Foreground(tcell.ColorWhite)
	openStyle     = launcherStyle.Underline(true)
)

// Draw paints the current shell state: desktop, windows back to front,
// the active overlay and the dock
func (a *App) Draw() {
	st := a.shell.State()
	cols, rows := a.screen.Size()
	if g := newGrid(cols, rows, st.Viewport); g != a.grid {
		a.resize()
		st = a.shell.State()
	}

	a.screen.Clear()
	a.fill(cellRect{0, 0, a.grid.cols - 1, a.grid.deskRows() - 1}, ' ', desktopStyle)

	a.windows = a.windows[:0]
	for _, w := range st.Mounted() {
		cells := a.grid.cells(w.Bounds)
		if cells.empty() {
			continue
		}
		a.drawWindow(w, cells)
		a.windows = append(a.windows, drawnWindow{view: w, cells: cells})
	}

	a.menu = nil
	if st.Overlay != nil {
		a.menu = a.drawMenu(*st.Overlay)
	}

	a.drawDock(st)
	a.screen.Show()
}

func (a *App) fill(c cellRect, r rune, style tcell.Style) {
	for y := c.y0; y <= c.y1; y++ {
		for x := c.x0; x <= c.x1; x++ {
			a.screen.SetContent(x, y, r, nil, style)
		}
	}
}

// text writes s from (x, y), stopping before column limit
func (a *App) text(x, y, limit int, s string, style tcell.Style) int {
	for _, r := range s {
		if x >= limit {
			break
		}
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func (a *App) drawWindow(w shell.WindowView, c cellRect) {
	head := titleStyle
	body := bodyStyle
	switch {
	case !w.Open:
		head, body = exitingStyle, exitingStyle
	case w.Active:
		head = activeStyle
	}

	a.fill(c, ' ', body)
	title := cellRect{c.x0, c.y0, c.x1, c.y0}
	if a.grid.titleRow(w.Bounds) == c.y0 {
		a.fill(title, ' ', head)
		a.text(c.x0+1, c.y0, c.x1-4, w.Title, head)
		a.text(c.x1-2, c.y0, c.x1+1, "_□x", head)
	}

	if c.y1 > c.y0 {
		for x := c.x0; x <= c.x1; x++ {
			a.screen.SetContent(x, c.y1, '─', nil, body)
		}
		for y := c.y0 + 1; y < c.y1; y++ {
			a.screen.SetContent(c.x0, y, '│', nil, body)
			a.screen.SetContent(c.x1, y, '│', nil, body)
		}
	}
	if w.Phase == window.PhaseEntering || w.Phase == window.PhaseExiting {
		a.text(c.x0+2, min(c.y0+2, c.y1), c.x1, w.Phase.String()+"…", body)
	}
}

func (a *App) drawMenu(v overlay.View) *drawnMenu {
	cells, rows := a.grid.menuCells(v)
	if cells.empty() {
		return nil
	}
	a.fill(cells, ' ', menuStyle)
	if v.Title != "" {
		a.text(cells.x0+1, cells.y0+1, cells.x1, v.Title, menuTitle)
	}
	for i, item := range v.Items {
		if rows[i] > cells.y1 {
			break
		}
		a.text(cells.x0+2, rows[i], cells.x1, item.Label, menuStyle)
	}
	return &drawnMenu{view: v, cells: cells, itemRows: rows}
}

func (a *App) drawDock(st shell.State) {
	row := a.grid.rows - 1
	a.fill(cellRect{0, row, a.grid.cols - 1, row}, ' ', dockStyle)

	open := make(map[string]bool)
	for _, app := range a.shell.Apps() {
		if w, ok := st.Window(window.ID(app.ID)); ok && w.Open {
			open[app.Launcher] = true
		}
	}
	for _, b := range a.dock {
		style := launcherStyle
		if open[b.name] {
			style = openStyle
		}
		a.text(b.cells.x0, row, b.cells.x1+1, b.label, style)
	}
}
