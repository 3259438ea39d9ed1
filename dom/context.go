package dom

import (
	"go.uber.org/zap"

	"vgr/canvas"
)

// Context is the paint target threaded through rasterization. The tree never
// inspects the canvas, it only forwards the context to children; leaves issue
// draw calls against it.
type Context struct {
	Canvas *canvas.Canvas
	Log    *zap.Logger
}

// NewContext wraps a canvas for a rasterization pass. A nil logger is
// replaced with a no-op one.
func NewContext(c *canvas.Canvas, log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{Canvas: c, Log: log}
}
