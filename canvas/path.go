package canvas

import (
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

type pathVerb int

const (
	verbMove pathVerb = iota
	verbLine
	verbQuad
	verbCube
	verbClose
)

type pathOp struct {
	verb pathVerb
	pts  [3]fixed.Point26_6
}

// Path is a recorded outline that can be replayed onto any rasterx adder.
// It implements rasterx.Adder itself, so rasterx shape helpers (AddRect,
// AddCircle, AddEllipse) can build paths directly.
type Path struct {
	ops []pathOp
}

func fixp(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// Empty returns true when the path has no recorded operations.
func (p *Path) Empty() bool { return len(p.ops) == 0 }

// Start begins a new subpath. Part of rasterx.Adder.
func (p *Path) Start(a fixed.Point26_6) {
	p.ops = append(p.ops, pathOp{verb: verbMove, pts: [3]fixed.Point26_6{a}})
}

// Line adds a straight segment. Part of rasterx.Adder.
func (p *Path) Line(b fixed.Point26_6) {
	p.ops = append(p.ops, pathOp{verb: verbLine, pts: [3]fixed.Point26_6{b}})
}

// QuadBezier adds a quadratic segment. Part of rasterx.Adder.
func (p *Path) QuadBezier(b, c fixed.Point26_6) {
	p.ops = append(p.ops, pathOp{verb: verbQuad, pts: [3]fixed.Point26_6{b, c}})
}

// CubeBezier adds a cubic segment. Part of rasterx.Adder.
func (p *Path) CubeBezier(b, c, d fixed.Point26_6) {
	p.ops = append(p.ops, pathOp{verb: verbCube, pts: [3]fixed.Point26_6{b, c, d}})
}

// Stop ends the current subpath. Part of rasterx.Adder.
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		p.ops = append(p.ops, pathOp{verb: verbClose})
	}
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) { p.Start(fixp(x, y)) }

// LineTo adds a line segment to (x, y).
func (p *Path) LineTo(x, y float64) { p.Line(fixp(x, y)) }

// QuadTo adds a quadratic segment with control (cx, cy) ending at (x, y).
func (p *Path) QuadTo(cx, cy, x, y float64) { p.QuadBezier(fixp(cx, cy), fixp(x, y)) }

// CubeTo adds a cubic segment with controls (c1x, c1y), (c2x, c2y) ending at (x, y).
func (p *Path) CubeTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.CubeBezier(fixp(c1x, c1y), fixp(c2x, c2y), fixp(x, y))
}

// Close closes the current subpath.
func (p *Path) Close() { p.Stop(true) }

// AddTo replays the recorded operations onto a.
func (p *Path) AddTo(a rasterx.Adder) {
	for _, op := range p.ops {
		switch op.verb {
		case verbMove:
			a.Start(op.pts[0])
		case verbLine:
			a.Line(op.pts[0])
		case verbQuad:
			a.QuadBezier(op.pts[0], op.pts[1])
		case verbCube:
			a.CubeBezier(op.pts[0], op.pts[1], op.pts[2])
		case verbClose:
			a.Stop(true)
		}
	}
	a.Stop(false)
}

var _ rasterx.Adder = (*Path)(nil)

// Rect records an axis-aligned rectangle as a closed subpath.
func Rect(x, y, w, h float64) *Path {
	p := &Path{}
	rasterx.AddRect(x, y, x+w, y+h, 0, p)
	return p
}

// Circle records a circle approximated with cubic beziers.
func Circle(cx, cy, r float64) *Path {
	p := &Path{}
	rasterx.AddCircle(cx, cy, r, p)
	return p
}

// Ellipse records an axis-aligned ellipse.
func Ellipse(cx, cy, rx, ry float64) *Path {
	p := &Path{}
	rasterx.AddEllipse(cx, cy, rx, ry, 0, p)
	return p
}

// Polyline records an open polygonal chain through the points. Points are
// consumed pairwise, a trailing odd coordinate is ignored.
func Polyline(coords []float64) *Path {
	p := &Path{}
	if len(coords) < 4 {
		return p
	}
	p.MoveTo(coords[0], coords[1])
	for i := 3; i < len(coords); i += 2 {
		p.LineTo(coords[i-1], coords[i])
	}
	return p
}

// Polygon records a closed polygonal chain through the points.
func Polygon(coords []float64) *Path {
	p := Polyline(coords)
	if !p.Empty() {
		p.Close()
	}
	return p
}

// Segment records a single line segment.
func Segment(x1, y1, x2, y2 float64) *Path {
	p := &Path{}
	p.MoveTo(x1, y1)
	p.LineTo(x2, y2)
	return p
}
