// Package markup parses vector-image XML into a document tree. The root
// element is <vg>, groups are <g>, <style> elements carry CSS text folded
// into their owning container, and the remaining elements are shape leaves.
// Unknown elements are skipped, not fatal.
package markup

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"vgr/canvas"
	"vgr/css"
	"vgr/dom"
	"vgr/shapes"
)

// Defaults when the root carries no size attributes.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// Document is a parsed markup file: the tree root plus the canvas geometry
// taken from the root element.
type Document struct {
	Root       *dom.Container
	Width      int
	Height     int
	background string
}

// Background returns the canvas background color declared on the root
// element, white when absent or unparsable.
func (d *Document) Background() color.Color {
	if c, ok := canvas.ParseColor(d.background); ok {
		return c
	}
	return color.RGBA{255, 255, 255, 255}
}

// NewCanvas allocates a canvas matching the document's declared geometry.
func (d *Document) NewCanvas() *canvas.Canvas {
	return canvas.New(d.Width, d.Height, d.Background())
}

// Parser builds document trees from markup. Safe to reuse across documents.
type Parser struct {
	log *zap.Logger
	css *css.Parser

	// BaseDir resolves relative image hrefs, usually the directory of the
	// markup file.
	BaseDir string

	// DefaultStyle is CSS applied to the root before the document's own
	// style elements, so document rules override it per selector key.
	DefaultStyle []byte
}

// NewParser creates a markup parser. A nil logger is replaced with a no-op
// one.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("markup"), css: css.NewParser(log)}
}

// Parse reads a complete markup document. The root element must be <vg>;
// anything below it degrades gracefully.
func (p *Parser) Parse(data []byte) (*Document, error) {
	xml := etree.NewDocument()
	if err := xml.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("reading markup: %w", err)
	}

	root := xml.Root()
	if root == nil {
		return nil, fmt.Errorf("markup has no root element")
	}
	if root.Tag != "vg" {
		return nil, fmt.Errorf("unexpected root element <%s>, expected <vg>", root.Tag)
	}

	doc := &Document{
		Width:      int(attrFloat(root, "width", DefaultWidth)),
		Height:     int(attrFloat(root, "height", DefaultHeight)),
		background: root.SelectAttrValue("background", ""),
	}

	doc.Root = dom.NewContainer()
	p.decorate(doc.Root, root)
	if len(p.DefaultStyle) > 0 {
		sheet := p.css.Parse(p.DefaultStyle, "default")
		doc.Root.IngestStyleRules(sheet.Flatten(float64(doc.Width), float64(doc.Height)))
	}
	p.buildChildren(doc.Root, root, doc)
	return doc, nil
}

func (p *Parser) buildChildren(parent *dom.Container, el *etree.Element, doc *Document) {
	for _, child := range el.ChildElements() {
		if n := p.buildElement(child, doc); n != nil {
			parent.Attach(n)
		}
	}
}

func (p *Parser) buildElement(el *etree.Element, doc *Document) dom.Node {
	switch el.Tag {
	case "g":
		g := dom.NewContainer()
		p.decorate(g, el)
		p.buildChildren(g, el, doc)
		return g

	case "style":
		w, h := float64(doc.Width), float64(doc.Height)
		return dom.NewStyleElement(el.Text(), func(raw string) *css.RuleSet {
			return p.css.Parse([]byte(raw)).Flatten(w, h)
		})

	case "rect":
		s := shapes.NewRect(
			attrFloat(el, "x", 0), attrFloat(el, "y", 0),
			attrFloat(el, "width", 0), attrFloat(el, "height", 0))
		s.Attrs = p.presentation(el)
		p.decorate(s, el)
		return s

	case "circle":
		s := shapes.NewCircle(
			attrFloat(el, "cx", 0), attrFloat(el, "cy", 0),
			attrFloat(el, "r", 0))
		s.Attrs = p.presentation(el)
		p.decorate(s, el)
		return s

	case "ellipse":
		s := shapes.NewEllipse(
			attrFloat(el, "cx", 0), attrFloat(el, "cy", 0),
			attrFloat(el, "rx", 0), attrFloat(el, "ry", 0))
		s.Attrs = p.presentation(el)
		p.decorate(s, el)
		return s

	case "line":
		s := shapes.NewLine(
			attrFloat(el, "x1", 0), attrFloat(el, "y1", 0),
			attrFloat(el, "x2", 0), attrFloat(el, "y2", 0))
		s.Attrs = p.presentation(el)
		p.decorate(s, el)
		return s

	case "polyline":
		s := shapes.NewPolyline(parsePoints(el.SelectAttrValue("points", "")))
		s.Attrs = p.presentation(el)
		p.decorate(s, el)
		return s

	case "polygon":
		s := shapes.NewPolygon(parsePoints(el.SelectAttrValue("points", "")))
		s.Attrs = p.presentation(el)
		p.decorate(s, el)
		return s

	case "path":
		s := shapes.NewPath(el.SelectAttrValue("d", ""))
		s.Attrs = p.presentation(el)
		p.decorate(s, el)
		return s

	case "text":
		s := shapes.NewText(attrFloat(el, "x", 0), attrFloat(el, "y", 0), el.Text())
		s.Attrs = p.presentation(el)
		p.decorate(s, el)
		return s

	case "image":
		s := shapes.NewImage(
			attrFloat(el, "x", 0), attrFloat(el, "y", 0),
			attrFloat(el, "width", 0), attrFloat(el, "height", 0),
			el.SelectAttrValue("href", ""))
		s.BaseDir = p.BaseDir
		s.Attrs = p.presentation(el)
		p.decorate(s, el)
		return s
	}

	p.log.Debug("skipping unknown element", zap.String("tag", el.Tag))
	return nil
}

// decorate sets the node state every element kind shares: the style pattern
// derived from tag/id/class and declarations from an inline style attribute.
func (p *Parser) decorate(n dom.Node, el *etree.Element) {
	type patterned interface {
		SetPattern(*css.Pattern)
		SetInline([]css.Declaration)
	}
	pn := n.(patterned)

	pn.SetPattern(css.PatternFromAttrs(
		el.Tag,
		el.SelectAttrValue("id", ""),
		el.SelectAttrValue("class", "")))

	if inline := el.SelectAttrValue("style", ""); inline != "" {
		pn.SetInline(p.css.ParseDeclarations([]byte(inline)))
	}
}

// presentationAttrs are the attributes copied into a shape's base style.
// They lose to any cascade rule and to inline style.
var presentationAttrs = []string{
	"fill", "stroke", "stroke-width",
	"opacity", "fill-opacity", "stroke-opacity",
	"visibility", "display",
}

func (p *Parser) presentation(el *etree.Element) css.Style {
	var st css.Style
	for _, name := range presentationAttrs {
		raw := el.SelectAttrValue(name, "")
		if raw == "" {
			continue
		}
		if st == nil {
			st = css.Style{}
		}
		st[name] = css.ValueFromString(raw)
	}
	return st
}

func attrFloat(el *etree.Element, name string, def float64) float64 {
	raw := strings.TrimSpace(el.SelectAttrValue(name, ""))
	if raw == "" {
		return def
	}
	raw = strings.TrimSuffix(raw, "px")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

// parsePoints splits a points attribute into coordinates. Commas and
// whitespace both separate values.
func parsePoints(raw string) []float64 {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return out
		}
		out = append(out, v)
	}
	return out
}
