package state

import (
	"time"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		// applied to every document before its own style elements,
		// replaced when render.stylesheet_path is configured
		DefaultStyle: []byte(`vg {
  fill: black;
}
text {
  fill: black;
}
line {
  stroke: black;
  stroke-width: 1;
}
polyline {
  fill: none;
  stroke: black;
  stroke-width: 1;
}
`),
	}
}
