package shapes

import (
	"go.uber.org/zap"

	"vgr/canvas"
	"vgr/css"
	"vgr/dom"
)

// Path is a free-form outline leaf described by SVG-style path data.
type Path struct {
	dom.Base
	Data  string
	Attrs css.Style
}

// NewPath creates a path leaf from raw path data.
func NewPath(data string) *Path {
	return &Path{Data: data}
}

// Rasterize parses the path data and paints it. Malformed or partially
// supported data degrades to the segments parsed so far with a warning,
// matching the permissive posture of the rest of the tree.
func (ph *Path) Rasterize(ctx *dom.Context) error {
	p := resolvePaint(ph, ph.Attrs)
	if !p.visible {
		return nil
	}

	outline, err := canvas.ParsePathData(ph.Data)
	if err != nil && ctx != nil && ctx.Log != nil {
		ctx.Log.Warn("partial path data", zap.Error(err))
	}
	paintPath(ctx, outline, p)
	return nil
}
