package output

import (
	"image"
)

// Frame defaults applied by WithDefaults
const (
	DefaultFPS     = 10
	DefaultQuality = 90
)

// Output consumes rendered layout frames. The display manager writes one
// frame per layout change plus a periodic keep-alive.
type Output interface {
	Start() error
	Stop() error

	// WriteFrame hands over a frame. It must not block on slow consumers.
	WriteFrame(frame *image.RGBA) error

	Name() string
	IsRunning() bool
}

// Config sizes the frames an output expects
type Config struct {
	Width  int
	Height int
	FPS    int

	// Quality is the JPEG quality for encoding outputs, 1-100
	Quality int
}

// WithDefaults fills unset or out-of-range rate and quality values
func (c Config) WithDefaults() Config {
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = DefaultQuality
	}
	return c
}
