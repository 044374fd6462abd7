package overlay

import (
	"fmt"
	"image"
	"sync"

	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/window"
)

// Manager holds the single active overlay slot. Showing an overlay
// replaces whichever one was active, so a context menu and the start menu
// are never open together.
type Manager struct {
	active Surface
	mu     sync.RWMutex
}

// NewManager creates a new overlay manager
func NewManager() *Manager {
	return &Manager{}
}

// Show makes s the active overlay
func (m *Manager) Show(s Surface) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		logger.WithComponent("overlay").Debug().
			Str("replaced", string(m.active.Kind())).
			Msg("Replacing active overlay")
	}
	m.active = s
	logger.WithComponent("overlay").Debug().
		Str("kind", string(s.Kind())).
		Msg("Overlay shown")
}

// Active returns the active overlay
func (m *Manager) Active() (Surface, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active, m.active != nil
}

// IsActive reports whether an overlay of the given kind is showing
func (m *Manager) IsActive(kind Kind) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active != nil && m.active.Kind() == kind
}

// DismissAll closes the active overlay. It reports whether one was open.
func (m *Manager) DismissAll() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return false
	}
	logger.WithComponent("overlay").Debug().
		Str("kind", string(m.active.Kind())).
		Msg("Overlay dismissed")
	m.active = nil
	return true
}

// Contains reports whether p falls inside the active overlay. Pointer
// presses inside it must not dismiss it.
func (m *Manager) Contains(p window.Point) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active != nil && m.active.Bounds().Contains(p)
}

// ItemAt returns the index of the active overlay's entry under p
func (m *Manager) ItemAt(p window.Point) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return 0, false
	}
	return m.active.ItemAt(p)
}

// Activate picks entry index of the active overlay, dismisses the overlay
// and returns the entry's action for the caller to carry out.
func (m *Manager) Activate(index int) (Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return Action{}, ErrNoOverlay
	}
	items := m.active.Items()
	if index < 0 || index >= len(items) {
		return Action{}, fmt.Errorf("%w: %d of %d", ErrNoSuchItem, index, len(items))
	}

	item := items[index]
	logger.WithComponent("overlay").Info().
		Str("kind", string(m.active.Kind())).
		Str("item", item.Label).
		Str("action", item.Action.String()).
		Msg("Overlay item activated")
	m.active = nil
	return item.Action, nil
}

// IndexOf returns the index of the first entry of the active overlay that
// carries action a
func (m *Manager) IndexOf(a Action) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.active == nil {
		return 0, ErrNoOverlay
	}
	for i, item := range m.active.Items() {
		if item.Action == a {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrNoSuchItem, a)
}

// View returns the serialisable form of the active overlay
func (m *Manager) View() *View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return nil
	}
	v := Describe(m.active)
	return &v
}

// Render draws the active overlay onto the provided image
func (m *Manager) Render(img *image.RGBA) error {
	m.mu.RLock()
	active := m.active
	m.mu.RUnlock()

	if active == nil {
		return nil
	}
	if err := active.Render(img); err != nil {
		logger.WithComponent("overlay").Warn().
			Err(err).
			Str("kind", string(active.Kind())).
			Msg("Failed to render overlay")
		return err
	}
	return nil
}
