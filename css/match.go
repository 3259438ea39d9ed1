package css

import (
	"regexp"
	"strings"
)

// Pattern is the compiled style matcher of a tree node, derived from its
// element name, id and class attributes. A pattern tests selector keys:
// a node with id "t" and class "a" matches the keys "#t" and ".a".
// The zero pattern does not exist - nodes without any attributes to match
// carry a nil *Pattern, which matches nothing.
type Pattern struct {
	raw string
	re  *regexp.Regexp
}

// NewPattern compiles a matcher from the given selector tokens (element
// names, "#id" and ".class" strings). Returns nil when there is nothing to
// match against.
func NewPattern(tokens ...string) *Pattern {
	quoted := make([]string, 0, len(tokens))
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		kept = append(kept, t)
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	if len(quoted) == 0 {
		return nil
	}
	return &Pattern{
		raw: strings.Join(kept, "|"),
		re:  regexp.MustCompile("^(?:" + strings.Join(quoted, "|") + ")$"),
	}
}

// PatternFromAttrs builds a pattern from markup attributes: the element
// name, an optional id and whitespace-separated class list.
func PatternFromAttrs(element, id, class string) *Pattern {
	tokens := make([]string, 0, 4)
	if element != "" {
		tokens = append(tokens, element)
	}
	if id != "" {
		tokens = append(tokens, "#"+id)
	}
	for _, c := range strings.Fields(class) {
		tokens = append(tokens, "."+c)
	}
	return NewPattern(tokens...)
}

// Matches reports whether the selector key is covered by this pattern.
// Compound keys like "rect.accent" match only when every part does.
func (p *Pattern) Matches(key string) bool {
	if p == nil {
		return false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	start := 0
	for i := 1; i < len(key); i++ {
		if key[i] != '.' {
			continue
		}
		if !p.re.MatchString(key[start:i]) {
			return false
		}
		start = i
	}
	return p.re.MatchString(key[start:])
}

// String returns the token list the pattern was compiled from.
func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.raw
}
