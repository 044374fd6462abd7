// Package window holds the per-window state of the desktop shell: which
// windows exist and are open, their stacking order, their last known
// positions, the launch points they animate from, and the lifecycle of a
// mounted window instance.
//
// Nothing in this package is safe for concurrent use. The shell controller
// owns every value and serialises access to them.
package window
