package window

import "errors"

// ErrUnknownWindow is returned when an ID was not declared at start-up.
var ErrUnknownWindow = errors.New("unknown window")

// ErrNotMounted is returned when an operation needs a live window instance.
var ErrNotMounted = errors.New("window not mounted")
