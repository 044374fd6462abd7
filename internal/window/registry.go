package window

import "fmt"

// Entry is the registry record of one application slot. Entries are
// created at start-up, including for windows that start closed, and are
// never deleted.
type Entry struct {
	ID    ID     `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Open  bool   `json:"open" yaml:"open"`
}

// Registry tracks the fixed set of windows and their open flags. Opening
// and closing keep the stack consistent: a window is in the stack exactly
// when it is open.
type Registry struct {
	order   []ID
	entries map[ID]*Entry
	stack   *Stack
}

// NewRegistry declares the set of known windows. Duplicate IDs are
// rejected since an ID must map to exactly one semantic window.
func NewRegistry(stack *Stack, entries ...Entry) (*Registry, error) {
	r := &Registry{
		order:   make([]ID, 0, len(entries)),
		entries: make(map[ID]*Entry, len(entries)),
		stack:   stack,
	}

	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("window entry with empty ID")
		}
		if _, exists := r.entries[e.ID]; exists {
			return nil, fmt.Errorf("window %q declared twice", e.ID)
		}
		entry := &Entry{ID: e.ID, Title: e.Title}
		r.entries[e.ID] = entry
		r.order = append(r.order, e.ID)
	}

	return r, nil
}

// Known reports whether id was declared at start-up
func (r *Registry) Known(id ID) bool {
	_, ok := r.entries[id]
	return ok
}

// Open marks id open and focuses it. Opening an open window refocuses it.
func (r *Registry) Open(id ID) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.Open = true
	r.stack.Focus(id)
	return nil
}

// Close marks id closed and drops it from the stack
func (r *Registry) Close(id ID) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.Open = false
	r.stack.Remove(id)
	return nil
}

// IsOpen reports whether id is open. Unknown IDs are never open.
func (r *Registry) IsOpen(id ID) bool {
	e, ok := r.entries[id]
	return ok && e.Open
}

// Entry returns a copy of the record for id
func (r *Registry) Entry(id ID) (Entry, error) {
	e, err := r.lookup(id)
	if err != nil {
		return Entry{}, err
	}
	return *e, nil
}

// IDs returns every known window in declaration order
func (r *Registry) IDs() []ID {
	out := make([]ID, len(r.order))
	copy(out, r.order)
	return out
}

// OpenIDs returns the open windows in declaration order
func (r *Registry) OpenIDs() []ID {
	out := make([]ID, 0, len(r.order))
	for _, id := range r.order {
		if r.entries[id].Open {
			out = append(out, id)
		}
	}
	return out
}

func (r *Registry) lookup(id ID) (*Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWindow, id)
	}
	return e, nil
}
