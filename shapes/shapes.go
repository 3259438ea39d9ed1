// Package shapes implements the drawable leaf nodes of the document tree:
// basic geometry, path data, text and embedded images. Each shape resolves
// its effective style through the owning container's cascade, layered over
// its own presentation attributes, and paints itself into the rasterization
// context.
package shapes

import (
	"image/color"

	"vgr/canvas"
	"vgr/css"
	"vgr/dom"
)

// effectiveStyle layers the cascade result over presentation attributes.
// Attributes are the weakest source; inline declarations already sit on top
// of the cascade inside ComputedStyle.
func effectiveStyle(n dom.Node, attrs css.Style) css.Style {
	st := attrs.Clone()
	for k, v := range dom.ComputedStyle(n) {
		st[k] = v
	}
	return st
}

// paint is the resolved painting state of a single shape.
type paint struct {
	fill        color.RGBA
	hasFill     bool
	stroke      color.RGBA
	hasStroke   bool
	strokeWidth float64
	visible     bool
}

// resolvePaint computes the painting state for a shape. Fill defaults to
// black when unspecified, stroke is off unless declared. "visibility: hidden"
// and "display: none" suppress the single shape without touching siblings.
func resolvePaint(n dom.Node, attrs css.Style) paint {
	st := effectiveStyle(n, attrs)

	p := paint{visible: true, strokeWidth: st.Number("stroke-width", 1)}
	if st.Keyword("visibility") == "hidden" || st.Keyword("display") == "none" {
		p.visible = false
	}

	opacity := clamp01(st.Number("opacity", 1))

	if v, ok := st.Get("fill"); ok {
		if c, colOK := canvas.ParseColor(v.Raw); colOK {
			p.fill = c
			p.hasFill = true
		}
	} else {
		p.fill = color.RGBA{0, 0, 0, 255}
		p.hasFill = true
	}
	if p.hasFill {
		p.fill = canvas.WithOpacity(p.fill, opacity*clamp01(st.Number("fill-opacity", 1)))
	}

	if v, ok := st.Get("stroke"); ok {
		if c, colOK := canvas.ParseColor(v.Raw); colOK {
			p.stroke = canvas.WithOpacity(c, opacity*clamp01(st.Number("stroke-opacity", 1)))
			p.hasStroke = true
		}
	}
	return p
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// paintPath fills then strokes the path per the resolved state. Fill before
// stroke matches SVG paint order.
func paintPath(ctx *dom.Context, path *canvas.Path, p paint) {
	if ctx == nil || ctx.Canvas == nil || path == nil || path.Empty() {
		return
	}
	if p.hasFill {
		ctx.Canvas.Fill(path, p.fill)
	}
	if p.hasStroke && p.strokeWidth > 0 {
		ctx.Canvas.Stroke(path, p.stroke, p.strokeWidth)
	}
}
