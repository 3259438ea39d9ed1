package canvas

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePathData parses SVG-style path data ("d" attribute) into a Path.
// Supported commands: M/m, L/l, H/h, V/v, C/c, S/s, Q/q, T/t, Z/z.
// On malformed data or an unsupported command the path built so far is
// returned together with an error, so callers can degrade to partial output.
func ParsePathData(d string) (*Path, error) {
	p := &parserState{path: &Path{}}
	if err := p.run(d); err != nil {
		return p.path, err
	}
	return p.path, nil
}

type parserState struct {
	path *Path

	x, y           float64 // current point
	startX, startY float64 // subpath start for Z
	ctlX, ctlY     float64 // last control point for S/T reflection
	lastCmd        byte
}

func (p *parserState) run(d string) error {
	lex := lexer{data: d}
	for {
		cmd, ok := lex.nextCommand()
		if !ok {
			return nil
		}
		if err := p.command(cmd, &lex); err != nil {
			return err
		}
	}
}

func (p *parserState) command(cmd byte, lex *lexer) error {
	rel := cmd >= 'a'
	upper := cmd &^ 0x20 // ASCII uppercase

	switch upper {
	case 'M':
		args, err := lex.numbers(2)
		if err != nil {
			return err
		}
		p.moveTo(rel, args[0], args[1])
		// subsequent coordinate pairs are implicit line-tos
		for lex.peekNumber() {
			if args, err = lex.numbers(2); err != nil {
				return err
			}
			p.lineTo(rel, args[0], args[1])
		}

	case 'L':
		for first := true; first || lex.peekNumber(); first = false {
			args, err := lex.numbers(2)
			if err != nil {
				return err
			}
			p.lineTo(rel, args[0], args[1])
		}

	case 'H':
		for first := true; first || lex.peekNumber(); first = false {
			args, err := lex.numbers(1)
			if err != nil {
				return err
			}
			x := args[0]
			if rel {
				x += p.x
			}
			p.absLineTo(x, p.y)
		}

	case 'V':
		for first := true; first || lex.peekNumber(); first = false {
			args, err := lex.numbers(1)
			if err != nil {
				return err
			}
			y := args[0]
			if rel {
				y += p.y
			}
			p.absLineTo(p.x, y)
		}

	case 'C':
		for first := true; first || lex.peekNumber(); first = false {
			args, err := lex.numbers(6)
			if err != nil {
				return err
			}
			p.cubeTo(rel, args[0], args[1], args[2], args[3], args[4], args[5])
		}

	case 'S':
		for first := true; first || lex.peekNumber(); first = false {
			args, err := lex.numbers(4)
			if err != nil {
				return err
			}
			c1x, c1y := p.reflectedControl('C')
			c2x, c2y, x, y := args[0], args[1], args[2], args[3]
			if rel {
				c2x, c2y, x, y = c2x+p.x, c2y+p.y, x+p.x, y+p.y
			}
			p.absCubeTo(c1x, c1y, c2x, c2y, x, y)
		}

	case 'Q':
		for first := true; first || lex.peekNumber(); first = false {
			args, err := lex.numbers(4)
			if err != nil {
				return err
			}
			p.quadTo(rel, args[0], args[1], args[2], args[3])
		}

	case 'T':
		for first := true; first || lex.peekNumber(); first = false {
			args, err := lex.numbers(2)
			if err != nil {
				return err
			}
			cx, cy := p.reflectedControl('Q')
			x, y := args[0], args[1]
			if rel {
				x, y = x+p.x, y+p.y
			}
			p.absQuadTo(cx, cy, x, y)
		}

	case 'Z':
		p.path.Close()
		p.x, p.y = p.startX, p.startY

	default:
		return fmt.Errorf("unsupported path command %q", string(cmd))
	}

	p.lastCmd = upper
	return nil
}

func (p *parserState) moveTo(rel bool, x, y float64) {
	if rel {
		x, y = x+p.x, y+p.y
	}
	p.path.MoveTo(x, y)
	p.x, p.y = x, y
	p.startX, p.startY = x, y
}

func (p *parserState) lineTo(rel bool, x, y float64) {
	if rel {
		x, y = x+p.x, y+p.y
	}
	p.absLineTo(x, y)
}

func (p *parserState) absLineTo(x, y float64) {
	p.path.LineTo(x, y)
	p.x, p.y = x, y
}

func (p *parserState) cubeTo(rel bool, c1x, c1y, c2x, c2y, x, y float64) {
	if rel {
		c1x, c1y = c1x+p.x, c1y+p.y
		c2x, c2y = c2x+p.x, c2y+p.y
		x, y = x+p.x, y+p.y
	}
	p.absCubeTo(c1x, c1y, c2x, c2y, x, y)
}

func (p *parserState) absCubeTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.path.CubeTo(c1x, c1y, c2x, c2y, x, y)
	p.ctlX, p.ctlY = c2x, c2y
	p.x, p.y = x, y
}

func (p *parserState) quadTo(rel bool, cx, cy, x, y float64) {
	if rel {
		cx, cy = cx+p.x, cy+p.y
		x, y = x+p.x, y+p.y
	}
	p.absQuadTo(cx, cy, x, y)
}

func (p *parserState) absQuadTo(cx, cy, x, y float64) {
	p.path.QuadTo(cx, cy, x, y)
	p.ctlX, p.ctlY = cx, cy
	p.x, p.y = x, y
}

// reflectedControl returns the control point for smooth curve commands: the
// previous control point mirrored over the current point, or the current
// point when the previous command was not of the matching kind.
func (p *parserState) reflectedControl(kind byte) (float64, float64) {
	match := p.lastCmd == kind
	if kind == 'C' {
		match = match || p.lastCmd == 'S'
	} else {
		match = match || p.lastCmd == 'T'
	}
	if !match {
		return p.x, p.y
	}
	return 2*p.x - p.ctlX, 2*p.y - p.ctlY
}

// lexer splits path data into command letters and numbers.
type lexer struct {
	data string
	pos  int
}

func (l *lexer) skipSeparators() {
	for l.pos < len(l.data) {
		switch l.data[l.pos] {
		case ' ', '\t', '\n', '\r', ',':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) nextCommand() (byte, bool) {
	l.skipSeparators()
	if l.pos >= len(l.data) {
		return 0, false
	}
	c := l.data[l.pos]
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		l.pos++
		return c, true
	}
	return 0, false
}

// peekNumber reports whether the next token is numeric (an implicit repeat
// of the current command).
func (l *lexer) peekNumber() bool {
	l.skipSeparators()
	if l.pos >= len(l.data) {
		return false
	}
	c := l.data[l.pos]
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func (l *lexer) numbers(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range n {
		v, err := l.number()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (l *lexer) number() (float64, error) {
	l.skipSeparators()
	start := l.pos
	seenDot, seenExp := false, false
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenExp && l.pos > start:
			seenExp = true
		case (c == '-' || c == '+') && (l.pos == start ||
			l.data[l.pos-1] == 'e' || l.data[l.pos-1] == 'E'):
		default:
			goto done
		}
		l.pos++
	}
done:
	if l.pos == start {
		return 0, fmt.Errorf("expected number at offset %d in %q", l.pos, truncate(l.data))
	}
	v, err := strconv.ParseFloat(l.data[start:l.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number at offset %d: %w", start, err)
	}
	return v, nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}
