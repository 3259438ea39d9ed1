package shapes

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"

	"vgr/css"
	"vgr/dom"
)

// defaultSVGSize is used when an embedded SVG has no usable viewBox.
const defaultSVGSize = 1024

// Image is an embedded-asset leaf referencing a raster or SVG file. The
// asset is loaded and decoded lazily on first paint and cached; relative
// hrefs resolve against BaseDir.
type Image struct {
	dom.Base
	X, Y    float64
	W, H    float64 // target size; 0 keeps the intrinsic dimension
	Href    string
	BaseDir string
	Attrs   css.Style

	decoded image.Image
	loadErr error
	tried   bool
}

// NewImage creates an image leaf placing the asset's top-left at (x, y).
func NewImage(x, y, w, h float64, href string) *Image {
	return &Image{X: x, Y: y, W: w, H: h, Href: href}
}

// Rasterize decodes the referenced asset and composites it over the canvas.
// A missing or undecodable asset is logged and skipped, one bad reference
// must not abort the whole document.
func (im *Image) Rasterize(ctx *dom.Context) error {
	p := resolvePaint(im, im.Attrs)
	if !p.visible {
		return nil
	}
	if ctx == nil || ctx.Canvas == nil {
		return nil
	}

	src, err := im.load()
	if err != nil {
		if ctx.Log != nil {
			ctx.Log.Warn("skipping image asset", zap.String("href", im.Href), zap.Error(err))
		}
		return nil
	}
	ctx.Canvas.DrawImage(src, int(math.Round(im.X)), int(math.Round(im.Y)))
	return nil
}

func (im *Image) load() (image.Image, error) {
	if im.tried {
		return im.decoded, im.loadErr
	}
	im.tried = true
	im.decoded, im.loadErr = im.decode()
	return im.decoded, im.loadErr
}

func (im *Image) decode() (image.Image, error) {
	if im.Href == "" {
		return nil, fmt.Errorf("image has no href")
	}

	path := im.Href
	if !filepath.IsAbs(path) && im.BaseDir != "" {
		path = filepath.Join(im.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if isSVG(path, data) {
		return im.rasterizeSVG(data)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, fmt.Errorf("unrecognized image format in %q", im.Href)
	}
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s %q: %w", kind.Extension, im.Href, err)
	}
	return im.fit(src), nil
}

// fit resizes src to the requested box. One zero dimension keeps aspect
// ratio, both zero keeps intrinsic size.
func (im *Image) fit(src image.Image) image.Image {
	w, h := int(math.Round(im.W)), int(math.Round(im.H))
	if w <= 0 && h <= 0 {
		return src
	}
	return imaging.Resize(src, max(w, 0), max(h, 0), imaging.Lanczos)
}

func (im *Image) rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	w := int(math.Round(im.W))
	h := int(math.Round(im.H))
	if w <= 0 {
		w = int(math.Ceil(icon.ViewBox.W))
	}
	if h <= 0 {
		h = int(math.Ceil(icon.ViewBox.H))
	}
	if w <= 0 {
		w = defaultSVGSize
	}
	if h <= 0 {
		h = defaultSVGSize
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

// isSVG sniffs for SVG, which is XML and invisible to magic-number
// detection.
func isSVG(path string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return true
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg"))
}
