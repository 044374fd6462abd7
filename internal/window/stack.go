package window

// Stack is the focus order of open windows. The last element is the
// topmost, active window. Z-indices are derived from positions in the
// order and are never stored.
type Stack struct {
	baseZ int
	order []ID
}

// NewStack creates an empty stack whose bottom window sits at baseZ
func NewStack(baseZ int) *Stack {
	return &Stack{
		baseZ: baseZ,
		order: make([]ID, 0),
	}
}

// Focus moves id to the top. Every other window keeps its relative order.
func (s *Stack) Focus(id ID) {
	if n := len(s.order); n > 0 && s.order[n-1] == id {
		return
	}
	s.Remove(id)
	s.order = append(s.order, id)
}

// Remove drops id from the stack if present
func (s *Stack) Remove(id ID) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
}

// ZIndexOf returns baseZ plus the stack position of id. Windows that are
// not in the stack (closing or closed) get baseZ.
func (s *Stack) ZIndexOf(id ID) int {
	i := s.indexOf(id)
	if i < 0 {
		return s.baseZ
	}
	return s.baseZ + i
}

// IsTop reports whether id is the active window
func (s *Stack) IsTop(id ID) bool {
	top, ok := s.Top()
	return ok && top == id
}

// Top returns the active window, if any
func (s *Stack) Top() (ID, bool) {
	if len(s.order) == 0 {
		return "", false
	}
	return s.order[len(s.order)-1], true
}

// Contains reports whether id is in the stack
func (s *Stack) Contains(id ID) bool {
	return s.indexOf(id) >= 0
}

// Order returns a copy of the stack, bottom first
func (s *Stack) Order() []ID {
	out := make([]ID, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of stacked windows
func (s *Stack) Len() int {
	return len(s.order)
}

// BaseZ returns the z-index of the bottom window
func (s *Stack) BaseZ() int {
	return s.baseZ
}

func (s *Stack) indexOf(id ID) int {
	for i, w := range s.order {
		if w == id {
			return i
		}
	}
	return -1
}
