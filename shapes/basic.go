package shapes

import (
	"vgr/canvas"
	"vgr/css"
	"vgr/dom"
)

// Rect is an axis-aligned rectangle leaf.
type Rect struct {
	dom.Base
	X, Y, W, H float64
	Attrs      css.Style
}

// NewRect creates a rectangle at (x, y) with the given size.
func NewRect(x, y, w, h float64) *Rect {
	return &Rect{X: x, Y: y, W: w, H: h}
}

func (r *Rect) Rasterize(ctx *dom.Context) error {
	p := resolvePaint(r, r.Attrs)
	if !p.visible || r.W <= 0 || r.H <= 0 {
		return nil
	}
	paintPath(ctx, canvas.Rect(r.X, r.Y, r.W, r.H), p)
	return nil
}

// Circle is a circle leaf.
type Circle struct {
	dom.Base
	CX, CY, R float64
	Attrs     css.Style
}

// NewCircle creates a circle centered at (cx, cy) with radius r.
func NewCircle(cx, cy, r float64) *Circle {
	return &Circle{CX: cx, CY: cy, R: r}
}

func (c *Circle) Rasterize(ctx *dom.Context) error {
	p := resolvePaint(c, c.Attrs)
	if !p.visible || c.R <= 0 {
		return nil
	}
	paintPath(ctx, canvas.Circle(c.CX, c.CY, c.R), p)
	return nil
}

// Ellipse is an axis-aligned ellipse leaf.
type Ellipse struct {
	dom.Base
	CX, CY, RX, RY float64
	Attrs          css.Style
}

// NewEllipse creates an ellipse centered at (cx, cy) with the given radii.
func NewEllipse(cx, cy, rx, ry float64) *Ellipse {
	return &Ellipse{CX: cx, CY: cy, RX: rx, RY: ry}
}

func (e *Ellipse) Rasterize(ctx *dom.Context) error {
	p := resolvePaint(e, e.Attrs)
	if !p.visible || e.RX <= 0 || e.RY <= 0 {
		return nil
	}
	paintPath(ctx, canvas.Ellipse(e.CX, e.CY, e.RX, e.RY), p)
	return nil
}

// Line is a single segment leaf. Lines have no interior, only a stroke
// paints anything.
type Line struct {
	dom.Base
	X1, Y1, X2, Y2 float64
	Attrs          css.Style
}

// NewLine creates a segment from (x1, y1) to (x2, y2).
func NewLine(x1, y1, x2, y2 float64) *Line {
	return &Line{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func (l *Line) Rasterize(ctx *dom.Context) error {
	p := resolvePaint(l, l.Attrs)
	p.hasFill = false
	if !p.visible || !p.hasStroke {
		return nil
	}
	paintPath(ctx, canvas.Segment(l.X1, l.Y1, l.X2, l.Y2), p)
	return nil
}

// Polyline is an open polygonal chain leaf.
type Polyline struct {
	dom.Base
	Points []float64 // x1 y1 x2 y2 ...
	Attrs  css.Style
}

// NewPolyline creates a polyline through the given coordinate pairs.
func NewPolyline(points []float64) *Polyline {
	return &Polyline{Points: points}
}

func (pl *Polyline) Rasterize(ctx *dom.Context) error {
	p := resolvePaint(pl, pl.Attrs)
	if !p.visible {
		return nil
	}
	paintPath(ctx, canvas.Polyline(pl.Points), p)
	return nil
}

// Polygon is a closed polygonal chain leaf.
type Polygon struct {
	dom.Base
	Points []float64
	Attrs  css.Style
}

// NewPolygon creates a polygon through the given coordinate pairs.
func NewPolygon(points []float64) *Polygon {
	return &Polygon{Points: points}
}

func (pg *Polygon) Rasterize(ctx *dom.Context) error {
	p := resolvePaint(pg, pg.Attrs)
	if !p.visible {
		return nil
	}
	paintPath(ctx, canvas.Polygon(pg.Points), p)
	return nil
}
