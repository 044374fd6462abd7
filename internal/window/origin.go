package window

// Control is an on-screen launcher (dock icon, start button) whose bounds
// can be measured. ok is false until the control has been laid out.
type Control interface {
	Bounds() (r Rect, ok bool)
}

// ReportedControl is a control whose bounds are pushed by the client that
// renders it.
type ReportedControl struct {
	rect Rect
	set  bool
}

// Report records the latest measured bounds
func (c *ReportedControl) Report(r Rect) {
	c.rect = r
	c.set = true
}

// Bounds returns the last reported bounds
func (c *ReportedControl) Bounds() (Rect, bool) {
	return c.rect, c.set
}

// DefaultMenuLift is how far above the start button start-menu launches
// originate.
const DefaultMenuLift = 50

// MenuAnchor is the single launch point shared by every start-menu entry:
// horizontally centred on the start button, Lift pixels above its top edge.
type MenuAnchor struct {
	Button Control
	Lift   float64
}

// Bounds returns a zero-size rectangle at the anchor point
func (a MenuAnchor) Bounds() (Rect, bool) {
	if a.Button == nil {
		return Rect{}, false
	}
	r, ok := a.Button.Bounds()
	if !ok {
		return Rect{}, false
	}
	return Rect{X: r.X + r.Width/2, Y: r.Y - a.Lift}, true
}

// Capture measures the centre of a control. It caches nothing.
func Capture(c Control) (Point, bool) {
	if c == nil {
		return Point{}, false
	}
	r, ok := c.Bounds()
	if !ok {
		return Point{}, false
	}
	return r.Center(), true
}

// OriginResolver maps each window to the launcher it animates from and
// keeps the most recent measurement of that launcher.
type OriginResolver struct {
	bindings map[ID]Control
	origins  map[ID]Point
	fallback func() Point
}

// NewOriginResolver creates a resolver. fallback supplies the origin used
// when a launcher has not been measured yet; nil means (0,0).
func NewOriginResolver(fallback func() Point) *OriginResolver {
	if fallback == nil {
		fallback = func() Point { return Point{} }
	}
	return &OriginResolver{
		bindings: make(map[ID]Control),
		origins:  make(map[ID]Point),
		fallback: fallback,
	}
}

// Bind sets the launcher for id. Several windows may share one control.
func (o *OriginResolver) Bind(id ID, c Control) {
	o.bindings[id] = c
}

// Refresh re-measures the launcher of id and returns the new origin
func (o *OriginResolver) Refresh(id ID) Point {
	p, ok := Capture(o.bindings[id])
	if !ok {
		p = o.fallback()
	}
	o.origins[id] = p
	return p
}

// Recompute re-measures every bound launcher
func (o *OriginResolver) Recompute() {
	for id := range o.bindings {
		o.Refresh(id)
	}
}

// Origin returns the last measured origin of id, measuring it if it has
// never been measured.
func (o *OriginResolver) Origin(id ID) Point {
	if p, ok := o.origins[id]; ok {
		return p
	}
	return o.Refresh(id)
}

// TransformOrigin returns the launch point in the window's local
// coordinates, for use as the CSS transform-origin of open/close
// animations.
func TransformOrigin(launch, pos Point) Point {
	return launch.Sub(pos)
}
