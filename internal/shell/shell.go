// Package shell owns the window manager state of a desktop session: which
// windows are open, their stacking order, positions, launch origins, the
// mounted window instances and the transient overlays. Every write goes
// through a Shell method, serialised by one mutex; readers get copies.
package shell

import (
	"fmt"
	"sync"
	"time"

	"github.com/bryanchriswhite/WebDesk/internal/config"
	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/overlay"
	"github.com/bryanchriswhite/WebDesk/internal/window"
	"github.com/google/uuid"
)

// Shell is the single owner of the window manager state
type Shell struct {
	mu      sync.Mutex
	session string
	version uint64
	pending []Event

	apps      []config.AppConfig
	registry  *window.Registry
	stack     *window.Stack
	positions *window.PositionStore
	origins   *window.OriginResolver
	controls  map[string]*window.ReportedControl
	instances map[window.ID]*window.Instance
	overlays  *overlay.Manager

	// controlNames keeps the controls in declaration order
	controlNames []string

	openDuration  time.Duration
	closeDuration time.Duration
	autoAnimate   bool
	timers        map[window.ID]*time.Timer
	stopped       bool

	listeners   []chan Event
	listenersMu sync.RWMutex

	// deliverMu is taken before mu is released so batches reach
	// subscribers in Version order
	deliverMu sync.Mutex
}

// New creates a shell from the configuration and opens the apps marked
// open_at_start
func New(cfg *config.Config) (*Shell, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shell config: %w", err)
	}

	s := &Shell{
		session:       uuid.NewString(),
		apps:          append([]config.AppConfig(nil), cfg.Apps...),
		stack:         window.NewStack(cfg.BaseZ),
		controls:      make(map[string]*window.ReportedControl),
		instances:     make(map[window.ID]*window.Instance),
		overlays:      overlay.NewManager(),
		openDuration:  time.Duration(cfg.Animation.OpenMS) * time.Millisecond,
		closeDuration: time.Duration(cfg.Animation.CloseMS) * time.Millisecond,
		autoAnimate:   cfg.Animation.Auto,
		timers:        make(map[window.ID]*time.Timer),
	}

	viewport := window.Size{Width: float64(cfg.Viewport.Width), Height: float64(cfg.Viewport.Height)}
	pane := window.Size{Width: float64(cfg.Pane.Width), Height: float64(cfg.Pane.Height)}
	s.positions = window.NewPositionStore(viewport, pane)
	s.origins = window.NewOriginResolver(func() window.Point {
		return s.positions.Viewport().Center()
	})

	s.controlNames = cfg.Controls()
	for _, name := range s.controlNames {
		s.controls[name] = &window.ReportedControl{}
	}

	lift := float64(cfg.MenuLift)
	if lift == 0 {
		lift = window.DefaultMenuLift
	}
	menuAnchor := window.MenuAnchor{Button: s.controls[config.StartButton], Lift: lift}

	entries := make([]window.Entry, 0, len(s.apps))
	for _, app := range s.apps {
		id := window.ID(app.ID)
		entries = append(entries, window.Entry{ID: id, Title: app.Title})
		s.positions.SetOffset(id, window.Point{X: float64(app.OffsetX), Y: float64(app.OffsetY)})
		if app.Launcher == config.LauncherStartMenu {
			s.origins.Bind(id, menuAnchor)
		} else {
			s.origins.Bind(id, s.controls[app.Launcher])
		}
	}

	registry, err := window.NewRegistry(s.stack, entries...)
	if err != nil {
		return nil, err
	}
	s.registry = registry

	s.lock()
	for _, app := range s.apps {
		if app.OpenAtStart {
			s.openLocked(window.ID(app.ID))
		}
	}
	s.unlock()

	logger.WithComponent("shell").Info().
		Str("session", s.session).
		Int("apps", len(s.apps)).
		Float64("viewport_width", viewport.Width).
		Float64("viewport_height", viewport.Height).
		Bool("auto_animate", s.autoAnimate).
		Msg("Shell started")

	return s, nil
}

// Session returns the session ID stamped on state and events
func (s *Shell) Session() string {
	return s.session
}

// Apps returns the application catalogue
func (s *Shell) Apps() []config.AppConfig {
	return append([]config.AppConfig(nil), s.apps...)
}

// Stop cancels pending animation timers. The shell stays readable.
func (s *Shell) Stop() {
	s.lock()
	defer s.unlock()

	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	logger.WithComponent("shell").Info().Str("session", s.session).Msg("Shell stopped")
}

func (s *Shell) checkKnown(id window.ID) error {
	if !s.registry.Known(id) {
		return fmt.Errorf("%w: %s", window.ErrUnknownWindow, id)
	}
	return nil
}

// Toggle closes an open window or opens a closed one
func (s *Shell) Toggle(id window.ID) error {
	s.lock()
	defer s.unlock()
	return s.toggleLocked(id)
}

func (s *Shell) toggleLocked(id window.ID) error {
	if err := s.checkKnown(id); err != nil {
		return err
	}
	if s.registry.IsOpen(id) {
		s.closeLocked(id)
	} else {
		s.openLocked(id)
	}
	return nil
}

// Open opens a window, or focuses it if it is already open
func (s *Shell) Open(id window.ID) error {
	s.lock()
	defer s.unlock()

	if err := s.checkKnown(id); err != nil {
		return err
	}
	if s.registry.IsOpen(id) {
		s.focusLocked(id)
		return nil
	}
	s.openLocked(id)
	return nil
}

// openLocked measures the launchers, marks the window open and on top,
// mounts a fresh instance at its stored position and clears the overlays.
func (s *Shell) openLocked(id window.ID) {
	s.origins.Recompute()
	if err := s.registry.Open(id); err != nil {
		logger.WithComponent("shell").Error().Err(err).Msg("Failed to open window")
		return
	}

	pos := s.positions.Get(id)
	launch := s.origins.Origin(id)

	if old, ok := s.instances[id]; ok {
		old.Supersede()
	}
	inst := window.Mount(id, host{s}, pos, launch)
	s.instances[id] = inst

	if s.overlays.DismissAll() {
		s.emit(EventOverlay, "").Detail = "dismissed"
	}

	ev := s.emit(EventOpened, id)
	ev.Phase = inst.Phase().String()
	ev.Position = &pos

	logger.WithComponent("shell").Info().
		Str("window", string(id)).
		Float64("x", pos.X).
		Float64("y", pos.Y).
		Float64("origin_x", launch.X).
		Float64("origin_y", launch.Y).
		Msg("Window opened")

	s.scheduleAnimation(inst, s.openDuration)
}

// Close starts closing an open window. Closing a closed window does nothing.
func (s *Shell) Close(id window.ID) error {
	s.lock()
	defer s.unlock()

	if err := s.checkKnown(id); err != nil {
		return err
	}
	if s.registry.IsOpen(id) {
		s.closeLocked(id)
	}
	return nil
}

// closeLocked marks the window closed, drops it from the stack and starts
// the exit animation of its instance.
func (s *Shell) closeLocked(id window.ID) {
	if err := s.registry.Close(id); err != nil {
		logger.WithComponent("shell").Error().Err(err).Msg("Failed to close window")
		return
	}

	ev := s.emit(EventClosed, id)
	if inst, ok := s.instances[id]; ok && inst.RequestClose() {
		pos := s.positions.Peek(id)
		ev.Phase = inst.Phase().String()
		ev.Position = &pos
		s.scheduleAnimation(inst, s.closeDuration)
	}

	logger.WithComponent("shell").Info().Str("window", string(id)).Msg("Window closing")
}

// Focus raises an open window to the top
func (s *Shell) Focus(id window.ID) error {
	s.lock()
	defer s.unlock()

	if err := s.checkKnown(id); err != nil {
		return err
	}
	if !s.registry.IsOpen(id) {
		return fmt.Errorf("%w: %s", ErrNotOpen, id)
	}
	s.focusLocked(id)
	return nil
}

func (s *Shell) focusLocked(id window.ID) {
	if s.stack.IsTop(id) {
		return
	}
	s.stack.Focus(id)
	s.emit(EventFocused, id)
}

// CloseAll closes every open window at once
func (s *Shell) CloseAll() int {
	s.lock()
	defer s.unlock()

	open := s.stack.Order()
	for _, id := range open {
		s.closeLocked(id)
	}
	s.overlays.DismissAll()
	s.emit(EventCloseAll, "").Detail = fmt.Sprintf("%d", len(open))

	logger.WithComponent("shell").Info().Int("closed", len(open)).Msg("Closed all windows")
	return len(open)
}

// Resize records a new viewport size. Windows already placed keep their
// positions; launchers are re-measured.
func (s *Shell) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidViewport, width, height)
	}

	s.lock()
	defer s.unlock()

	s.positions.SetViewport(window.Size{Width: width, Height: height})
	s.origins.Recompute()
	s.emit(EventViewport, "").Detail = fmt.Sprintf("%vx%v", width, height)

	logger.WithComponent("shell").Debug().
		Float64("width", width).
		Float64("height", height).
		Msg("Viewport resized")
	return nil
}

// ReportControl records the measured bounds of a launcher control
func (s *Shell) ReportControl(name string, r window.Rect) error {
	s.lock()
	defer s.unlock()

	c, ok := s.controls[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownControl, name)
	}
	c.Report(r)
	s.origins.Recompute()
	s.emit(EventControl, "").Detail = name
	return nil
}

// Controls returns the names of the launcher controls, start button first
func (s *Shell) Controls() []string {
	return append([]string(nil), s.controlNames...)
}

// instanceLocked returns the interactive instance of an open window
func (s *Shell) instanceLocked(id window.ID) (*window.Instance, error) {
	if err := s.checkKnown(id); err != nil {
		return nil, err
	}
	inst, ok := s.instances[id]
	if !ok || !s.registry.IsOpen(id) || !inst.Interactive() {
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, id)
	}
	return inst, nil
}

// PointerDown routes a pointer press inside a window. The window is
// focused before this returns; a press on the title bar arms a drag. The
// close button closes the window, minimize and maximize are ignored.
func (s *Shell) PointerDown(id window.ID, region window.Region) error {
	s.lock()
	defer s.unlock()

	inst, err := s.instanceLocked(id)
	if err != nil {
		return err
	}
	s.pressWindowLocked(inst, region)
	return nil
}

func (s *Shell) pressWindowLocked(inst *window.Instance, region window.Region) {
	if !inst.PointerDown(region) {
		return
	}
	switch region {
	case window.RegionClose:
		s.closeLocked(inst.ID())
	case window.RegionMinimize, window.RegionMaximize:
		logger.WithComponent("shell").Debug().
			Str("window", string(inst.ID())).
			Msgf("Ignoring %s request", region)
	}
}

// DragMove updates the offset of the drag in progress. It reports false
// when the move was dropped as stale or no drag is armed.
func (s *Shell) DragMove(id window.ID, seq uint64, offset window.Point) (bool, error) {
	s.lock()
	defer s.unlock()

	inst, err := s.instanceLocked(id)
	if err != nil {
		return false, err
	}
	if !inst.DragMove(seq, offset) {
		return false, nil
	}
	pos := inst.Position()
	ev := s.emit(EventMoved, id)
	ev.Position = &pos
	ev.Detail = "drag"
	return true, nil
}

// DragEnd finishes a drag and stores the window's new position
func (s *Shell) DragEnd(id window.ID) (window.Point, error) {
	s.lock()
	defer s.unlock()

	inst, err := s.instanceLocked(id)
	if err != nil {
		return window.Point{}, err
	}
	pos, ok := inst.DragEnd()
	if !ok {
		return window.Point{}, fmt.Errorf("%w: %s", ErrNotDragging, id)
	}
	ev := s.emit(EventMoved, id)
	ev.Position = &pos
	ev.Detail = "commit"

	logger.WithComponent("shell").Debug().
		Str("window", string(id)).
		Float64("x", pos.X).
		Float64("y", pos.Y).
		Msg("Window moved")
	return pos, nil
}

// AnimationDone reports that the running open or close animation of a
// window finished
func (s *Shell) AnimationDone(id window.ID) (window.Phase, error) {
	s.lock()
	defer s.unlock()

	if err := s.checkKnown(id); err != nil {
		return window.PhaseUnmounted, err
	}
	inst, ok := s.instances[id]
	if !ok {
		return window.PhaseUnmounted, fmt.Errorf("%w: %s", window.ErrNotMounted, id)
	}
	return s.advanceLocked(inst), nil
}

func (s *Shell) advanceLocked(inst *window.Instance) window.Phase {
	id := inst.ID()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}

	before := inst.Phase()
	phase := inst.AnimationDone()
	if phase != before && phase == window.PhaseIdle {
		s.emit(EventPhase, id).Phase = phase.String()
	}
	return phase
}

// Minimize is accepted for any known window and ignored
func (s *Shell) Minimize(id window.ID) error {
	return s.ignored(id, "minimize")
}

// Maximize is accepted for any known window and ignored
func (s *Shell) Maximize(id window.ID) error {
	return s.ignored(id, "maximize")
}

func (s *Shell) ignored(id window.ID, what string) error {
	s.lock()
	defer s.unlock()

	if err := s.checkKnown(id); err != nil {
		return err
	}
	logger.WithComponent("shell").Debug().
		Str("window", string(id)).
		Msgf("Ignoring %s request", what)
	return nil
}

// scheduleAnimation finishes the instance's current animation after d
// when the shell completes animations itself
func (s *Shell) scheduleAnimation(inst *window.Instance, d time.Duration) {
	if !s.autoAnimate || s.stopped {
		return
	}
	id := inst.ID()
	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	phase := inst.Phase()
	s.timers[id] = time.AfterFunc(d, func() {
		s.lock()
		defer s.unlock()

		// the timer may have lost a race with a newer instance or a
		// client-reported completion
		if s.instances[id] != inst || inst.Phase() != phase {
			return
		}
		s.advanceLocked(inst)
	})
}

// host carries instance side effects back into the shell. Its methods run
// with s.mu held.
type host struct {
	s *Shell
}

func (h host) FocusWindow(id window.ID) {
	if h.s.registry.IsOpen(id) {
		h.s.focusLocked(id)
	}
}

func (h host) CommitPosition(id window.ID, p window.Point) {
	h.s.positions.Set(id, p)
}

func (h host) Unmounted(id window.ID) {
	delete(h.s.instances, id)
	if t, ok := h.s.timers[id]; ok {
		t.Stop()
		delete(h.s.timers, id)
	}
	h.s.emit(EventUnmounted, id).Phase = window.PhaseUnmounted.String()
	logger.WithComponent("shell").Debug().Str("window", string(id)).Msg("Window unmounted")
}
