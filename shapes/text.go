package shapes

import (
	"strings"

	"vgr/css"
	"vgr/dom"
)

// Text is a text leaf painted with the built-in bitmap face. (x, y) is the
// baseline origin of the first glyph.
type Text struct {
	dom.Base
	X, Y    float64
	Content string
	Attrs   css.Style
}

// NewText creates a text leaf at the given baseline origin.
func NewText(x, y float64, content string) *Text {
	return &Text{X: x, Y: y, Content: content}
}

func (t *Text) Rasterize(ctx *dom.Context) error {
	p := resolvePaint(t, t.Attrs)
	s := strings.TrimSpace(t.Content)
	if !p.visible || !p.hasFill || s == "" {
		return nil
	}
	if ctx == nil || ctx.Canvas == nil {
		return nil
	}
	ctx.Canvas.DrawText(s, t.X, t.Y, p.fill)
	return nil
}
