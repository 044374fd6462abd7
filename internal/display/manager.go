package display

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/output"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
)

// StateSource supplies shell snapshots
type StateSource interface {
	State() shell.State
}

// keepAlive is how often an unchanged layout is re-sent so stream viewers
// that joined late get a frame
const keepAlive = 2 * time.Second

// Manager renders the shell layout at a fixed rate and feeds the frames
// to an output
type Manager struct {
	source   StateSource
	renderer *Renderer
	out      output.Output
	fps      int

	running  bool
	mu       sync.RWMutex
	stopChan chan struct{}
	done     chan struct{}

	currentImage *image.RGBA
	lastVersion  uint64
	lastSession  string
	lastFrame    time.Time
}

// NewManager creates a new display manager
func NewManager(source StateSource, renderer *Renderer, out output.Output, fps int) *Manager {
	if fps <= 0 {
		fps = 10
	}
	return &Manager{
		source:   source,
		renderer: renderer,
		out:      out,
		fps:      fps,
	}
}

// Start launches the update loop
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("display already running")
	}

	m.stopChan = make(chan struct{})
	m.done = make(chan struct{})
	m.running = true
	go m.UpdateLoop()

	w, h := m.renderer.Size()
	logger.WithComponent("display").Info().
		Int("width", w).
		Int("height", h).
		Int("fps", m.fps).
		Msg("Display renderer started")
	return nil
}

// Stop ends the update loop and waits for it to exit
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopChan)
	done := m.done
	m.mu.Unlock()

	<-done
	logger.WithComponent("display").Info().Msg("Display renderer stopped")
}

// IsRunning returns whether the update loop is running
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Snapshot renders the current state immediately
func (m *Manager) Snapshot() *image.RGBA {
	return m.renderer.Render(m.source.State())
}

// CurrentImage returns the last frame produced by the loop
func (m *Manager) CurrentImage() *image.RGBA {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentImage
}

// Tick renders a frame if the state changed since the last one, or if the
// keep-alive interval passed. It reports whether a frame was produced.
func (m *Manager) Tick(now time.Time) bool {
	st := m.source.State()

	m.mu.RLock()
	changed := st.Version != m.lastVersion || st.Session != m.lastSession || m.currentImage == nil
	stale := now.Sub(m.lastFrame) >= keepAlive
	m.mu.RUnlock()

	if !changed && !stale {
		return false
	}

	frame := m.renderer.Render(st)

	m.mu.Lock()
	m.currentImage = frame
	m.lastVersion = st.Version
	m.lastSession = st.Session
	m.lastFrame = now
	m.mu.Unlock()

	if m.out != nil && m.out.IsRunning() {
		if err := m.out.WriteFrame(frame); err != nil {
			logger.WithComponent("display").Error().
				Err(err).
				Str("output", m.out.Name()).
				Msg("Failed to write frame")
		}
	}
	return true
}

// UpdateLoop renders frames at the configured rate until Stop
func (m *Manager) UpdateLoop() {
	defer close(m.done)

	updateInterval := time.Second / time.Duration(m.fps)
	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()

	logger.WithComponent("display").Info().
		Int("fps", m.fps).
		Dur("interval", updateInterval).
		Msg("Display update loop started")

	for {
		select {
		case <-m.stopChan:
			return
		case now := <-ticker.C:
			if m.Tick(now) {
				logger.WithComponent("display").Trace().Msg("Frame rendered")
			}
		}
	}
}
