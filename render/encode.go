package render

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	"vgr/config"
)

// encode writes img to w in the requested output format.
func encode(w io.Writer, img image.Image, format config.OutputFmt, jpegQuality int) error {
	switch format {
	case config.OutputFmtPng:
		return imaging.Encode(w, img, imaging.PNG)
	case config.OutputFmtJpeg:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	default:
		return fmt.Errorf("unsupported output format %s", format)
	}
}
