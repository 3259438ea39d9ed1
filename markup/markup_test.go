package markup

import (
	"image/color"
	"testing"

	"vgr/dom"
	"vgr/shapes"
)

func TestParseGeometry(t *testing.T) {
	doc, err := NewParser(nil).Parse([]byte(`<vg width="120" height="80" background="#000"/>`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Width != 120 || doc.Height != 80 {
		t.Errorf("size = %dx%d, expected 120x80", doc.Width, doc.Height)
	}
	if bg := doc.Background(); (bg != color.RGBA{0, 0, 0, 255}) {
		t.Errorf("background = %v, expected black", bg)
	}
}

func TestParseDefaults(t *testing.T) {
	doc, err := NewParser(nil).Parse([]byte(`<vg/>`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Width != DefaultWidth || doc.Height != DefaultHeight {
		t.Errorf("size = %dx%d, expected defaults", doc.Width, doc.Height)
	}
	if bg := doc.Background(); (bg != color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background = %v, expected white", bg)
	}
}

func TestParseRejectsBadRoot(t *testing.T) {
	if _, err := NewParser(nil).Parse([]byte(`<svg width="10"/>`)); err == nil {
		t.Error("expected error for a non-vg root")
	}
	if _, err := NewParser(nil).Parse([]byte(`not xml at all <<<`)); err == nil {
		t.Error("expected error for malformed XML")
	}
}

func TestParseTreeShape(t *testing.T) {
	src := `<vg width="100" height="100">
  <style>.accent { fill: red }</style>
  <g id="layer">
    <rect x="1" y="2" width="3" height="4" class="accent"/>
    <circle cx="10" cy="10" r="5"/>
  </g>
  <unknown-element/>
  <text x="5" y="20">hello</text>
</vg>`
	doc, err := NewParser(nil).Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	// style, g, text; the unknown element is dropped
	if doc.Root.ChildCount() != 3 {
		t.Fatalf("root has %d children, expected 3", doc.Root.ChildCount())
	}

	g, ok := doc.Root.ChildAt(1).(*dom.Container)
	if !ok {
		t.Fatalf("second child is %T, expected a container", doc.Root.ChildAt(1))
	}
	if g.ChildCount() != 2 {
		t.Errorf("group has %d children, expected 2", g.ChildCount())
	}

	r, ok := g.ChildAt(0).(*shapes.Rect)
	if !ok {
		t.Fatalf("group child 0 is %T, expected a rect", g.ChildAt(0))
	}
	if r.X != 1 || r.Y != 2 || r.W != 3 || r.H != 4 {
		t.Errorf("rect geometry = %v %v %v %v", r.X, r.Y, r.W, r.H)
	}

	tx, ok := doc.Root.ChildAt(2).(*shapes.Text)
	if !ok {
		t.Fatalf("third child is %T, expected text", doc.Root.ChildAt(2))
	}
	if tx.Content != "hello" {
		t.Errorf("text content = %q", tx.Content)
	}
}

func TestStyleElementReachesShapes(t *testing.T) {
	src := `<vg width="100" height="100">
  <style>.accent { fill: red }</style>
  <rect x="0" y="0" width="10" height="10" class="accent"/>
</vg>`
	doc, err := NewParser(nil).Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	r := doc.Root.ChildAt(1)
	if got := dom.ComputedStyle(r).Keyword("fill"); got != "red" {
		t.Errorf("computed fill = %q, expected stylesheet rule to apply", got)
	}
}

func TestElementSelectorMatchesTag(t *testing.T) {
	src := `<vg width="100" height="100">
  <style>rect { fill: green }</style>
  <rect x="0" y="0" width="10" height="10"/>
</vg>`
	doc, err := NewParser(nil).Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if got := dom.ComputedStyle(doc.Root.ChildAt(1)).Keyword("fill"); got != "green" {
		t.Errorf("computed fill = %q, expected element selector to match", got)
	}
}

func TestInlineStyleWinsOverStylesheet(t *testing.T) {
	src := `<vg width="100" height="100">
  <style>.accent { fill: red }</style>
  <rect x="0" y="0" width="10" height="10" class="accent" style="fill: blue"/>
</vg>`
	doc, err := NewParser(nil).Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if got := dom.ComputedStyle(doc.Root.ChildAt(1)).Keyword("fill"); got != "blue" {
		t.Errorf("computed fill = %q, expected inline style to win", got)
	}
}

func TestMediaQueryFiltersOnCanvasSize(t *testing.T) {
	src := `<vg width="50" height="50">
  <style>
    .accent { fill: red }
    @media (min-width: 100px) { .accent { fill: blue } }
  </style>
  <rect x="0" y="0" width="10" height="10" class="accent"/>
</vg>`
	doc, err := NewParser(nil).Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if got := dom.ComputedStyle(doc.Root.ChildAt(1)).Keyword("fill"); got != "red" {
		t.Errorf("computed fill = %q, 50px canvas must not take the 100px media branch", got)
	}
}

func TestParsePoints(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"0,0 10,0 10,10", 6},
		{"0 0 10 0", 4},
		{"", 0},
		{"1,2,garbage,4", 2},
	}
	for _, c := range cases {
		if got := len(parsePoints(c.raw)); got != c.want {
			t.Errorf("parsePoints(%q) = %d values, expected %d", c.raw, got, c.want)
		}
	}
}

func TestRenderEndToEnd(t *testing.T) {
	src := `<vg width="20" height="20" background="white">
  <style>.hot { fill: red }</style>
  <rect x="5" y="5" width="10" height="10" class="hot"/>
</vg>`
	doc, err := NewParser(nil).Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	c := doc.NewCanvas()
	if err := doc.Root.Rasterize(dom.NewContext(c, nil)); err != nil {
		t.Fatal(err)
	}
	if got := c.Image().RGBAAt(10, 10); (got != color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel = %v, expected red from the stylesheet", got)
	}
	if got := c.Image().RGBAAt(1, 1); (got != color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel = %v, expected white background", got)
	}
}
