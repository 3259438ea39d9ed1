package shapes

import (
	"image/color"
	"testing"

	"vgr/canvas"
	"vgr/css"
	"vgr/dom"
)

func newContext(size int) *dom.Context {
	return dom.NewContext(canvas.New(size, size, color.RGBA{255, 255, 255, 255}), nil)
}

func attr(raw string) css.Value {
	return css.Value{Raw: raw, Keyword: raw}
}

func TestRectFillsDefaultBlack(t *testing.T) {
	ctx := newContext(20)
	r := NewRect(5, 5, 10, 10)

	if err := r.Rasterize(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.Canvas.Image().RGBAAt(10, 10); (got != color.RGBA{0, 0, 0, 255}) {
		t.Errorf("interior pixel = %v, expected default black fill", got)
	}
}

func TestRectFillAttr(t *testing.T) {
	ctx := newContext(20)
	r := NewRect(5, 5, 10, 10)
	r.Attrs = css.Style{"fill": attr("red")}

	if err := r.Rasterize(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.Canvas.Image().RGBAAt(10, 10); (got != color.RGBA{255, 0, 0, 255}) {
		t.Errorf("interior pixel = %v, expected red", got)
	}
}

func TestFillNonePaintsNothing(t *testing.T) {
	ctx := newContext(20)
	r := NewRect(5, 5, 10, 10)
	r.Attrs = css.Style{"fill": attr("none")}

	if err := r.Rasterize(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.Canvas.Image().RGBAAt(10, 10); (got != color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel = %v, fill:none should leave the background", got)
	}
}

func TestVisibilityHiddenSkipsShape(t *testing.T) {
	ctx := newContext(20)
	r := NewRect(5, 5, 10, 10)
	r.Attrs = css.Style{"visibility": attr("hidden")}

	if err := r.Rasterize(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.Canvas.Image().RGBAAt(10, 10); (got != color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel = %v, hidden shape painted", got)
	}
}

func TestCascadeOverridesAttrs(t *testing.T) {
	root := dom.NewContainer()
	root.IngestStyleRules(css.NewParser(nil).Parse([]byte(".hot { fill: red }")).Flatten(20, 20))

	r := NewRect(5, 5, 10, 10)
	r.Attrs = css.Style{"fill": attr("blue")}
	r.SetPattern(css.NewPattern(".hot"))
	root.Attach(r)

	ctx := newContext(20)
	if err := root.Rasterize(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.Canvas.Image().RGBAAt(10, 10); (got != color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel = %v, cascade rule should beat the presentation attribute", got)
	}
}

func TestLineNeedsStroke(t *testing.T) {
	ctx := newContext(20)
	l := NewLine(0, 10, 20, 10)

	if err := l.Rasterize(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.Canvas.Image().RGBAAt(10, 10); (got != color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel = %v, a line without stroke should paint nothing", got)
	}

	l.Attrs = css.Style{"stroke": attr("blue"), "stroke-width": {Raw: "2", Value: 2}}
	if err := l.Rasterize(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.Canvas.Image().RGBAAt(10, 10); got.B != 255 || got.R == 255 {
		t.Errorf("pixel = %v, expected blue stroke", got)
	}
}

func TestPolygonFill(t *testing.T) {
	ctx := newContext(20)
	pg := NewPolygon([]float64{2, 2, 18, 2, 10, 18})
	pg.Attrs = css.Style{"fill": attr("green")}

	if err := pg.Rasterize(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.Canvas.Image().RGBAAt(10, 6); got.G == 0 {
		t.Errorf("pixel inside triangle = %v, expected green", got)
	}
}

func TestPathPartialDataStillPaints(t *testing.T) {
	ctx := newContext(20)
	// rectangle outline followed by an unsupported arc command
	ph := NewPath("M 2 2 L 18 2 L 18 18 L 2 18 Z A 1 1 0 0 1 5 5")
	ph.Attrs = css.Style{"fill": attr("red")}

	if err := ph.Rasterize(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.Canvas.Image().RGBAAt(10, 10); (got != color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel = %v, partial path should still fill the closed part", got)
	}
}

func TestTextPaintsPixels(t *testing.T) {
	ctx := newContext(40)
	tx := NewText(2, 20, "Hi")

	if err := tx.Rasterize(ctx); err != nil {
		t.Fatal(err)
	}
	painted := false
	for y := range 40 {
		for x := range 40 {
			if ctx.Canvas.Image().RGBAAt(x, y).R < 255 {
				painted = true
			}
		}
	}
	if !painted {
		t.Error("text left the canvas untouched")
	}
}

func TestImageMissingAssetSkipped(t *testing.T) {
	ctx := newContext(20)
	im := NewImage(0, 0, 10, 10, "does-not-exist.png")

	if err := im.Rasterize(ctx); err != nil {
		t.Errorf("missing asset should be skipped, got %v", err)
	}
	if got := ctx.Canvas.Image().RGBAAt(5, 5); (got != color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel = %v, expected untouched background", got)
	}
}

func TestOpacityScalesFill(t *testing.T) {
	p := resolvePaint(NewRect(0, 0, 1, 1), css.Style{
		"fill":    attr("red"),
		"opacity": {Raw: "0.5", Value: 0.5},
	})
	if !p.hasFill {
		t.Fatal("fill missing")
	}
	if p.fill.A != 127 || p.fill.R != 127 {
		t.Errorf("half-opacity red = %v", p.fill)
	}
}
