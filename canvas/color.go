package canvas

import (
	"image/color"
	"strconv"
	"strings"
)

// namedColors is the keyword subset we support. Anything fancier should be
// written as #rrggbb or rgb() in the markup.
var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"silver":  {192, 192, 192, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"pink":    {255, 192, 203, 255},
	"brown":   {165, 42, 42, 255},
	"lime":    {0, 255, 0, 255},
	"navy":    {0, 0, 128, 255},
	"teal":    {0, 128, 128, 255},
	"maroon":  {128, 0, 0, 255},
	"olive":   {128, 128, 0, 255},
}

// ParseColor parses a CSS color value: a known name, #rgb, #rrggbb,
// rgb(r, g, b) or rgba(r, g, b, a). "none" and "transparent" parse as
// not-a-color - callers use that to suppress painting.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "none" || s == "transparent":
		return color.RGBA{}, false
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseRGBFunc(s[4:len(s)-1], false)
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseRGBFunc(s[5:len(s)-1], true)
	}
	c, ok := namedColors[s]
	return c, ok
}

func parseHexColor(hex string) (color.RGBA, bool) {
	var r, g, b uint64
	var err error
	switch len(hex) {
	case 3:
		if r, err = strconv.ParseUint(strings.Repeat(hex[0:1], 2), 16, 8); err != nil {
			return color.RGBA{}, false
		}
		if g, err = strconv.ParseUint(strings.Repeat(hex[1:2], 2), 16, 8); err != nil {
			return color.RGBA{}, false
		}
		if b, err = strconv.ParseUint(strings.Repeat(hex[2:3], 2), 16, 8); err != nil {
			return color.RGBA{}, false
		}
	case 6:
		if r, err = strconv.ParseUint(hex[0:2], 16, 8); err != nil {
			return color.RGBA{}, false
		}
		if g, err = strconv.ParseUint(hex[2:4], 16, 8); err != nil {
			return color.RGBA{}, false
		}
		if b, err = strconv.ParseUint(hex[4:6], 16, 8); err != nil {
			return color.RGBA{}, false
		}
	default:
		return color.RGBA{}, false
	}
	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}, true
}

func parseRGBFunc(args string, hasAlpha bool) (color.RGBA, bool) {
	parts := strings.Split(args, ",")
	want := 3
	if hasAlpha {
		want = 4
	}
	if len(parts) != want {
		return color.RGBA{}, false
	}

	var ch [3]uint8
	for i := range 3 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, false
		}
		ch[i] = uint8(v)
	}

	a := 255.0
	if hasAlpha {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || v < 0 || v > 1 {
			return color.RGBA{}, false
		}
		a = v * 255
	}
	return WithOpacity(color.RGBA{ch[0], ch[1], ch[2], 255}, a/255), true
}

// WithOpacity scales the color by an opacity in [0, 1]. Channels are
// alpha-premultiplied, so all four are scaled.
func WithOpacity(c color.RGBA, opacity float64) color.RGBA {
	if opacity >= 1 {
		return c
	}
	if opacity < 0 {
		opacity = 0
	}
	return color.RGBA{
		R: uint8(float64(c.R) * opacity),
		G: uint8(float64(c.G) * opacity),
		B: uint8(float64(c.B) * opacity),
		A: uint8(float64(c.A) * opacity),
	}
}
