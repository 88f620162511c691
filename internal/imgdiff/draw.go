package imgdiff

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	regionColor  = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// annotate outlines the differing region and captions the image.
func annotate(img *image.RGBA, region image.Rectangle, caption string) {
	r := region.Inset(-2).Intersect(img.Bounds())
	drawRectangle(img, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, regionColor)
	// basicfont.Face7x13 ascent is 11 pixels
	drawTextWithOutline(img, caption, 4, 4+11, textColor, outlineColor)
}

// drawRectangle draws a rectangle outline, clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	b := img.Bounds()
	x1, y1 = max(x1, b.Min.X), max(y1, b.Min.Y)
	x2, y2 = min(x2, b.Max.X), min(y2, b.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return
	}
	for x := x1; x < x2; x++ {
		img.Set(x, y1, c)
		img.Set(x, y2-1, c)
	}
	for y := y1; y < y2; y++ {
		img.Set(x1, y, c)
		img.Set(x2-1, y, c)
	}
}

// drawTextWithOutline draws text with its baseline starting at (x, y),
// surrounded by a one-pixel outline so it reads on any background.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, fg, outline color.Color) {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawText(img, text, x+dx, y+dy, outline)
		}
	}
	drawText(img, text, x, y, fg)
}

func drawText(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
