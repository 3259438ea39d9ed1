// Package canvas provides the rasterization target for the document tree:
// an RGBA surface with path fill/stroke operations backed by rasterx.
package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// MaxDim is the maximum pixel dimension (width or height) of a canvas. This
// prevents OOM from hostile markup with enormous size attributes (e.g.
// width="100000" height="100000" would otherwise allocate ~37 GB for the
// RGBA buffer). 8192 is consistent with common GPU texture limits.
const MaxDim = 8192

// Canvas is the paint target threaded through tree rasterization. The tree
// never inspects it - nodes only issue draw calls against it.
type Canvas struct {
	img    *image.RGBA
	raster *rasterx.Dasher
	width  int
	height int
}

// New creates a canvas of the given size filled with the background color.
// Dimensions are clamped to [1, MaxDim]. A nil background leaves the surface
// transparent.
func New(width, height int, background color.Color) *Canvas {
	width = min(max(width, 1), MaxDim)
	height = min(max(height, 1), MaxDim)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if background != nil {
		draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	}

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	return &Canvas{
		img:    img,
		raster: rasterx.NewDasher(width, height, scanner),
		width:  width,
		height: height,
	}
}

// Width returns canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Image exposes the rendered surface.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Fill paints the path interior with the given color.
func (c *Canvas) Fill(p *Path, col color.Color) {
	if p == nil || p.Empty() {
		return
	}
	filler := &c.raster.Filler
	filler.Clear()
	filler.SetColor(col)
	p.AddTo(filler)
	filler.Draw()
	filler.Clear()
}

// Stroke paints the path outline with the given color and stroke width.
func (c *Canvas) Stroke(p *Path, col color.Color, width float64) {
	if p == nil || p.Empty() || width <= 0 {
		return
	}
	c.raster.Clear()
	c.raster.SetColor(col)
	c.raster.SetStroke(
		fixed.Int26_6(width*64), fixed.Int26_6(10*64),
		rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round,
		nil, 0)
	p.AddTo(c.raster)
	c.raster.Draw()
	c.raster.Clear()
}

// DrawImage composites src over the canvas with its top-left corner at (x, y).
func (c *Canvas) DrawImage(src image.Image, x, y int) {
	b := src.Bounds()
	dst := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(c.img, dst, src, b.Min, draw.Over)
}

// DrawText renders a string with the built-in bitmap face, (x, y) being the
// baseline origin.
func (c *Canvas) DrawText(s string, x, y float64, col color.Color) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixp(x, y),
	}
	d.DrawString(s)
}
