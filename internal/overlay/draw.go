package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LineHeight is the pixel height of one line of basicfont text
const LineHeight = 13

// BlendImage blends a source image onto a destination image at the given
// position with the specified opacity
func BlendImage(dst *image.RGBA, src image.Image, x, y int, opacity float64) {
	srcBounds := src.Bounds()
	dstBounds := dst.Bounds()

	for sy := srcBounds.Min.Y; sy < srcBounds.Max.Y; sy++ {
		dy := y + (sy - srcBounds.Min.Y)
		if dy < dstBounds.Min.Y || dy >= dstBounds.Max.Y {
			continue
		}

		for sx := srcBounds.Min.X; sx < srcBounds.Max.X; sx++ {
			dx := x + (sx - srcBounds.Min.X)
			if dx < dstBounds.Min.X || dx >= dstBounds.Max.X {
				continue
			}

			sr, sg, sb, sa := src.At(sx, sy).RGBA()
			alpha := float64(sa) * opacity / 65535.0
			if alpha <= 0 {
				continue
			}

			dr, dg, db, da := dst.At(dx, dy).RGBA()
			dstAlpha := float64(da) / 65535.0
			outAlpha := alpha + dstAlpha*(1-alpha)
			if outAlpha <= 0 {
				continue
			}

			// src channels are premultiplied, so scale them by opacity only
			blend := func(s, d uint32) uint8 {
				v := (float64(s)*opacity + float64(d)*(1-alpha)) / 257
				if v > 255 {
					v = 255
				}
				return uint8(v)
			}
			dst.SetRGBA(dx, dy, color.RGBA{
				R: blend(sr, dr),
				G: blend(sg, dg),
				B: blend(sb, db),
				A: uint8(outAlpha * 255),
			})
		}
	}
}

// DrawRectangle draws a filled rectangle with the specified color and opacity
func DrawRectangle(dst *image.RGBA, x, y, width, height int, c color.Color, opacity float64) {
	if width <= 0 || height <= 0 {
		return
	}
	if opacity >= 1 {
		if _, _, _, a := c.RGBA(); a == 0xffff {
			draw.Draw(dst, image.Rect(x, y, x+width, y+height), image.NewUniform(c), image.Point{}, draw.Src)
			return
		}
	}
	tmp := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(tmp, tmp.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	BlendImage(dst, tmp, x, y, opacity)
}

// MeasureText returns the pixel width of text in the basic font
func MeasureText(text string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(text).Ceil()
}

// DrawText draws one line of text with its top-left corner at x, y
func DrawText(dst *image.RGBA, text string, x, y int, c color.Color) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y + LineHeight - 2)},
	}
	d.DrawString(text)
}

// TruncateText shortens text with a trailing ".." so it fits in width pixels
func TruncateText(text string, width int) string {
	if MeasureText(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		s := string(runes) + ".."
		if MeasureText(s) <= width {
			return s
		}
	}
	return ""
}
