package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	cli "github.com/urfave/cli/v3"

	"vgr/dom"
	"vgr/markup"
	"vgr/shapes"
	"vgr/state"
)

// Dump parses a single markup document and prints its tree to stdout: node
// kinds, style patterns and fully resolved styles. Useful for debugging
// stylesheets without looking at pixels.
func Dump(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("dump")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open markup source: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(selectReader(f, env.CodePage))
	if err != nil {
		return fmt.Errorf("unable to read markup source: %w", err)
	}

	parser := markup.NewParser(log)
	parser.BaseDir = filepath.Dir(src)
	parser.DefaultStyle = env.DefaultStyle

	doc, err := parser.Parse(data)
	if err != nil {
		return fmt.Errorf("unable to parse markup source: %w", err)
	}

	fmt.Fprintf(os.Stdout, "document %dx%d (%s)\n", doc.Width, doc.Height, src)
	dumpNode(os.Stdout, doc.Root, 0)
	return nil
}

func dumpNode(w io.Writer, n dom.Node, depth int) {
	indent := strings.Repeat("  ", depth)

	fmt.Fprintf(w, "%s%s", indent, nodeKind(n))
	if p := n.Pattern(); p != nil {
		fmt.Fprintf(w, " pattern=%q", p.String())
	}
	if st := dom.ComputedStyle(n); len(st) > 0 {
		keys := make([]string, 0, len(st))
		for k := range st {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+st[k].Raw)
		}
		fmt.Fprintf(w, " style={%s}", strings.Join(parts, "; "))
	}
	fmt.Fprintln(w)

	if c, ok := n.(*dom.Container); ok {
		for i := 0; i < c.ChildCount(); i++ {
			dumpNode(w, c.ChildAt(i), depth+1)
		}
	}
}

func nodeKind(n dom.Node) string {
	switch n.(type) {
	case *dom.Container:
		return "container"
	case *dom.StyleElement:
		return "style"
	case *shapes.Rect:
		return "rect"
	case *shapes.Circle:
		return "circle"
	case *shapes.Ellipse:
		return "ellipse"
	case *shapes.Line:
		return "line"
	case *shapes.Polyline:
		return "polyline"
	case *shapes.Polygon:
		return "polygon"
	case *shapes.Path:
		return "path"
	case *shapes.Text:
		return "text"
	case *shapes.Image:
		return "image"
	default:
		return fmt.Sprintf("%T", n)
	}
}
