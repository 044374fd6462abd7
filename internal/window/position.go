package window

// DefaultPaneSize is the fixed size of every window pane
var DefaultPaneSize = Size{Width: 950, Height: 600}

// PositionStore keeps the last known top-left corner of every window for
// the lifetime of the session. A window's first read assigns it a default
// centred in the viewport as it is at that moment; later reads return the
// stored value even if the viewport has changed since.
type PositionStore struct {
	viewport  Size
	pane      Size
	offsets   map[ID]Point
	positions map[ID]Point
}

// NewPositionStore creates a store for the given viewport and pane size
func NewPositionStore(viewport, pane Size) *PositionStore {
	if pane.Width <= 0 || pane.Height <= 0 {
		pane = DefaultPaneSize
	}
	return &PositionStore{
		viewport:  viewport,
		pane:      pane,
		offsets:   make(map[ID]Point),
		positions: make(map[ID]Point),
	}
}

// SetOffset shifts the default position of id, e.g. so a terminal does not
// open exactly on top of a centred settings window.
func (s *PositionStore) SetOffset(id ID, offset Point) {
	s.offsets[id] = offset
}

// Get returns the stored position of id, assigning the centred default on
// the first call.
func (s *PositionStore) Get(id ID) Point {
	if p, ok := s.positions[id]; ok {
		return p
	}
	p := s.Default(id)
	s.positions[id] = p
	return p
}

// Peek returns what Get would return without assigning anything
func (s *PositionStore) Peek(id ID) Point {
	if p, ok := s.positions[id]; ok {
		return p
	}
	return s.Default(id)
}

// Default computes the centred position of id for the current viewport
func (s *PositionStore) Default(id ID) Point {
	return Point{
		X: (s.viewport.Width-s.pane.Width)/2 + s.offsets[id].X,
		Y: (s.viewport.Height-s.pane.Height)/2 + s.offsets[id].Y,
	}
}

// Set overwrites the position of id
func (s *PositionStore) Set(id ID, p Point) {
	s.positions[id] = p
}

// Assigned reports whether id has a stored position
func (s *PositionStore) Assigned(id ID) bool {
	_, ok := s.positions[id]
	return ok
}

// SetViewport records a new viewport size. Stored positions do not move.
func (s *PositionStore) SetViewport(viewport Size) {
	s.viewport = viewport
}

// Viewport returns the current viewport size
func (s *PositionStore) Viewport() Size {
	return s.viewport
}

// Pane returns the window pane size
func (s *PositionStore) Pane() Size {
	return s.pane
}
