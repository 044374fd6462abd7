package display

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/bryanchriswhite/WebDesk/internal/overlay"
	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/window"
)

var (
	wallpaperTop    = color.RGBA{18, 24, 48, 255}
	wallpaperBottom = color.RGBA{48, 20, 60, 255}
	paneColor       = color.RGBA{30, 30, 34, 255}
	borderColor     = color.RGBA{80, 80, 90, 255}
	titleColor      = color.RGBA{44, 44, 52, 255}
	activeColor     = color.RGBA{59, 130, 246, 255}
	titleText       = color.RGBA{230, 230, 230, 255}
	mutedText       = color.RGBA{150, 150, 160, 255}
	controlColor    = color.RGBA{255, 255, 255, 40}
	closeColor      = color.RGBA{239, 68, 68, 255}
	originColor     = color.RGBA{250, 204, 21, 255}
)

// Renderer draws shell state snapshots as images
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer producing frames of the given size. The
// layout is scaled to fit, keeping its aspect ratio.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// Size returns the frame size
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Render draws the state at logical resolution and scales it to the frame
// size
func (r *Renderer) Render(st shell.State) *image.RGBA {
	layout := RenderLayout(st)
	if r.width <= 0 || r.height <= 0 || layout.Bounds().Dx() == r.width && layout.Bounds().Dy() == r.height {
		return layout
	}
	return fit(layout, r.width, r.height)
}

// RenderLayout draws the state at its logical viewport resolution: the
// wallpaper, mounted windows back to front, the dock controls and the
// active overlay on top.
func RenderLayout(st shell.State) *image.RGBA {
	w, h := int(st.Viewport.Width), int(st.Viewport.Height)
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	drawWallpaper(img)

	for _, v := range st.Mounted() {
		drawWindow(img, v)
	}

	for name, rect := range st.Controls {
		drawControl(img, name, rect)
	}

	if st.Overlay != nil {
		menu := overlay.NewMenu(st.Overlay.Kind, st.Overlay.Title, st.Overlay.Bounds, st.Overlay.Items)
		menu.Render(img)
	}
	return img
}

func drawWallpaper(img *image.RGBA) {
	b := img.Bounds()
	height := b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		c := lerp(wallpaperTop, wallpaperBottom, float64(y)/float64(height))
		draw.Draw(img, image.Rect(b.Min.X, y, b.Max.X, y+1), image.NewUniform(c), image.Point{}, draw.Src)
	}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}

// windowOpacity fades windows that are animating in or out
func windowOpacity(p window.Phase) float64 {
	switch p {
	case window.PhaseEntering:
		return 0.8
	case window.PhaseExiting:
		return 0.4
	default:
		return 1
	}
}

func drawWindow(img *image.RGBA, v shell.WindowView) {
	x, y := int(v.Bounds.X), int(v.Bounds.Y)
	w, h := int(v.Bounds.Width), int(v.Bounds.Height)
	opacity := windowOpacity(v.Phase)

	overlay.DrawRectangle(img, x-1, y-1, w+2, h+2, borderColor, opacity)
	overlay.DrawRectangle(img, x, y, w, h, paneColor, opacity)

	bar := titleColor
	if v.Active {
		bar = activeColor
	}
	overlay.DrawRectangle(img, x, y, w, window.TitleBarHeight, bar, opacity)

	textY := y + (window.TitleBarHeight-overlay.LineHeight)/2
	title := overlay.TruncateText(v.Title, w-window.ControlsWidth-24)
	overlay.DrawText(img, title, x+12, textY, titleText)

	// minimize, maximize, close
	cx := x + w - window.ControlsWidth + 10
	for i := 0; i < 3; i++ {
		c := controlColor
		if i == 2 {
			c = closeColor
		}
		overlay.DrawRectangle(img, cx+i*32, y+12, 20, 16, c, opacity)
	}

	if v.Dragging {
		overlay.DrawText(img, "moving", x+12, y+window.TitleBarHeight+8, mutedText)
	}

	if v.Phase == window.PhaseEntering || v.Phase == window.PhaseExiting {
		// mark the launch origin the animation runs from or to
		o := v.LaunchOrigin
		overlay.DrawRectangle(img, int(o.X)-3, int(o.Y)-3, 6, 6, originColor, 1)
	}
}

func drawControl(img *image.RGBA, name string, r window.Rect) {
	if r.Empty() {
		return
	}
	x, y := int(r.X), int(r.Y)
	w, h := int(r.Width), int(r.Height)
	overlay.DrawRectangle(img, x, y, w, h, controlColor, 1)
	label := overlay.TruncateText(name, w-4)
	overlay.DrawText(img, label, x+2, y+(h-overlay.LineHeight)/2, mutedText)
}

// fit scales src into a width x height frame, letterboxed on black
func fit(src *image.RGBA, width, height int) *image.RGBA {
	bounds := src.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	scaleX := float64(width) / float64(srcWidth)
	scaleY := float64(height) / float64(srcHeight)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	dstWidth := int(float64(srcWidth) * scale)
	dstHeight := int(float64(srcHeight) * scale)
	offsetX := (width - dstWidth) / 2
	offsetY := (height - dstHeight) / 2

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)
	scaleImage(out, image.Rect(offsetX, offsetY, offsetX+dstWidth, offsetY+dstHeight), src, bounds)
	return out
}

// scaleImage performs simple nearest-neighbor scaling
func scaleImage(dst *image.RGBA, dstRect image.Rectangle, src *image.RGBA, srcRect image.Rectangle) {
	dstWidth := dstRect.Dx()
	dstHeight := dstRect.Dy()
	srcWidth := srcRect.Dx()
	srcHeight := srcRect.Dy()
	if dstWidth <= 0 || dstHeight <= 0 {
		return
	}

	for dy := 0; dy < dstHeight; dy++ {
		sy := srcRect.Min.Y + (dy*srcHeight)/dstHeight
		for dx := 0; dx < dstWidth; dx++ {
			sx := srcRect.Min.X + (dx*srcWidth)/dstWidth
			dst.SetRGBA(dstRect.Min.X+dx, dstRect.Min.Y+dy, src.RGBAAt(sx, sy))
		}
	}
}
