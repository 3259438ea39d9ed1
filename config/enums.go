package config

// Specification of requested raster output type.
// ENUM(png, jpeg)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtPng:
		return ".png"
	case OutputFmtJpeg:
		return ".jpg"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
