package tui

import (
	"context"
	"errors"

	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/window"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
)

// drag is a title-bar gesture in progress, in cell coordinates
type drag struct {
	id     window.ID
	startX int
	startY int
	seq    uint64
}

// App draws a shell onto a terminal and feeds mouse input back into it
type App struct {
	shell  *shell.Shell
	screen tcell.Screen
	log    *zerolog.Logger

	grid    grid
	windows []drawnWindow
	menu    *drawnMenu
	dock    []dockButton

	buttons tcell.ButtonMask
	drag    *drag
}

// New creates a front-end for sh. The screen is initialised by Init.
func New(sh *shell.Shell, screen tcell.Screen) *App {
	return &App{
		shell:  sh,
		screen: screen,
		log:    logger.WithComponent("tui"),
	}
}

// NewScreen creates the terminal screen for New
func NewScreen() (tcell.Screen, error) {
	return tcell.NewScreen()
}

// Init prepares the screen and reports the dock layout to the shell
func (a *App) Init() error {
	if err := a.screen.Init(); err != nil {
		return err
	}
	a.screen.EnableMouse()
	a.screen.HideCursor()
	a.resize()
	a.Draw()
	return nil
}

// Fini restores the terminal
func (a *App) Fini() {
	a.screen.Fini()
}

// Run processes terminal input and shell events until the user quits or
// ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	events := a.shell.Subscribe()
	defer a.shell.Unsubscribe(events)

	input := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(input)
				return
			}
			input <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-input:
			if !ok {
				return nil
			}
			if !a.HandleEvent(ev) {
				return nil
			}
			a.Draw()
		case <-events:
			a.Draw()
		}
	}
}

// HandleEvent applies one terminal event. It returns false when the user
// asked to quit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		a.handleMouse(x, y, ev.Buttons())
	case *tcell.EventResize:
		a.screen.Sync()
		a.resize()
	}
	return true
}

func (a *App) handleMouse(x, y int, buttons tcell.ButtonMask) {
	prev := a.buttons
	a.buttons = buttons & (tcell.Button1 | tcell.Button2)

	switch {
	case buttons&tcell.Button1 != 0 && prev&tcell.Button1 == 0:
		a.press(x, y, shell.ButtonPrimary)
	case buttons&tcell.Button2 != 0 && prev&tcell.Button2 == 0:
		a.press(x, y, shell.ButtonSecondary)
	case buttons&tcell.Button1 != 0 && a.drag != nil:
		a.move(x, y)
	case buttons&tcell.Button1 == 0 && prev&tcell.Button1 != 0 && a.drag != nil:
		a.release()
	}
}

func (a *App) press(x, y int, button shell.Button) {
	hit, err := a.shell.PointerAt(a.target(x, y), button)
	if err != nil {
		a.log.Debug().Err(err).Int("x", x).Int("y", y).Msg("Press rejected")
		return
	}
	a.drag = nil
	if button == shell.ButtonPrimary && hit.Target == shell.TargetWindow &&
		hit.Region == window.RegionTitleBar.String() {
		a.drag = &drag{id: hit.Window, startX: x, startY: y}
	}
}

func (a *App) move(x, y int) {
	d := a.drag
	d.seq++
	offset := window.Point{
		X: float64(x-d.startX) * a.grid.sx,
		Y: float64(y-d.startY) * a.grid.sy,
	}
	if _, err := a.shell.DragMove(d.id, d.seq, offset); err != nil {
		a.log.Debug().Err(err).Str("window", string(d.id)).Msg("Drag move rejected")
		a.drag = nil
	}
}

func (a *App) release() {
	d := a.drag
	a.drag = nil
	if _, err := a.shell.DragEnd(d.id); err != nil {
		// Closing mid-drag already discarded the gesture
		if !errors.Is(err, shell.ErrNotOpen) && !errors.Is(err, shell.ErrNotDragging) {
			a.log.Warn().Err(err).Str("window", string(d.id)).Msg("Drag end failed")
		}
	}
}

// resize recomputes the cell grid and reports the dock buttons as the
// shell's launcher controls
func (a *App) resize() {
	cols, rows := a.screen.Size()
	st := a.shell.State()
	a.grid = newGrid(cols, rows, st.Viewport)

	a.dock = dockLabels(a.shell.Apps(), a.shell.Controls())
	a.grid.layoutDock(a.dock)
	for _, b := range a.dock {
		if b.cells.empty() {
			continue
		}
		if err := a.shell.ReportControl(b.name, a.grid.dockRect(b)); err != nil {
			a.log.Warn().Err(err).Str("control", b.name).Msg("Failed to report control")
		}
	}
}
