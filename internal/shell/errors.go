package shell

import "errors"

var (
	// ErrNotOpen is returned when an operation needs an open, interactive window
	ErrNotOpen = errors.New("window not open")
	// ErrNotDragging is returned by DragEnd without a drag in progress
	ErrNotDragging = errors.New("window not being dragged")
	// ErrUnknownControl is returned for a launcher control the shell does not know
	ErrUnknownControl = errors.New("unknown control")
	// ErrInvalidViewport is returned for a non-positive viewport size
	ErrInvalidViewport = errors.New("invalid viewport size")
)
