// Package css implements the style-rule model for vector markup: a tolerant
// CSS parser, selector-keyed rule sets with deterministic ordering, and the
// pattern matching used by the document tree to find applicable rules.
package css

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	orderedmap "github.com/elliotchance/orderedmap/v3"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "1.5", "#ff0000", "none")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "px", "%", "pt", etc.
	Keyword string  // Keyword if applicable: "none", "hidden", "black", etc.
}

// IsNumeric returns true if the value has a numeric component.
// This includes explicit zero values like "0" or "0px".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	if v.Raw != "" && v.Keyword == "" {
		first := rune(v.Raw[0])
		if unicode.IsDigit(first) || first == '.' || first == '-' || first == '+' {
			return true
		}
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// ValueFromString builds a Value from a bare attribute string, splitting a
// leading number from its unit when present. Used for presentation
// attributes, which carry the same value grammar as declarations but arrive
// outside any stylesheet.
func ValueFromString(raw string) Value {
	raw = strings.TrimSpace(raw)
	v := Value{Raw: raw}
	if raw == "" {
		return v
	}

	i := 0
	for i < len(raw) {
		c := raw[i]
		if (c >= '0' && c <= '9') || c == '.' || (i == 0 && (c == '-' || c == '+')) {
			i++
			continue
		}
		break
	}
	if i > 0 {
		if f, err := strconv.ParseFloat(raw[:i], 64); err == nil {
			v.Value = f
			v.Unit = strings.TrimSpace(raw[i:])
			return v
		}
	}
	v.Keyword = strings.ToLower(raw)
	return v
}

// Declaration is a single property declaration inside a rule. Order of
// declarations within a rule is significant: later declarations with the
// same property name win when a rule is applied.
type Declaration struct {
	Property string
	Value    Value
}

// Selector represents a parsed simple CSS selector.
type Selector struct {
	Raw     string // Original selector string, used as the rule-set key
	Element string // Element name (e.g., "rect", "g") or empty
	ID      string // ID without hash (e.g., "title") or empty
	Class   string // Class name without dot (e.g., "accent") or empty
}

// IsSimple returns true if this is a simple selector we can match against
// node patterns (element, id, or class).
func (s Selector) IsSimple() bool {
	return s.Element != "" || s.ID != "" || s.Class != ""
}

// Rule represents a single CSS rule (selector + ordered declarations).
type Rule struct {
	Selector     Selector
	Declarations []Declaration
	SourceLine   int // Line number in source for diagnostics
}

// MediaFeature is a single condition in a @media query. Only dimensional
// features evaluated against the canvas size are supported.
type MediaFeature struct {
	Name  string  // "min-width", "max-width", "min-height", "max-height"
	Value float64 // Pixel value
}

// MediaQuery represents a parsed @media query condition evaluated against
// canvas dimensions.
type MediaQuery struct {
	Raw      string // Original media query string
	Type     string // Media type: "all", "screen" or empty
	Negated  bool   // true if "not" modifier was used on main type
	Features []MediaFeature
}

// Evaluate returns true if this media query matches a canvas of the given
// size. Unknown media types never match, dimensional features use AND logic.
func (mq MediaQuery) Evaluate(width, height float64) bool {
	typeMatches := true
	switch strings.ToLower(mq.Type) {
	case "", "all", "screen":
	default:
		typeMatches = false
	}
	if mq.Negated {
		typeMatches = !typeMatches
	}
	if !typeMatches {
		return false
	}

	for _, f := range mq.Features {
		var ok bool
		switch strings.ToLower(f.Name) {
		case "min-width":
			ok = width >= f.Value
		case "max-width":
			ok = width <= f.Value
		case "min-height":
			ok = height >= f.Value
		case "max-height":
			ok = height <= f.Value
		default:
			ok = false
		}
		if !ok {
			return false
		}
	}
	return true
}

// MediaBlock represents a @media block with its query and nested rules.
type MediaBlock struct {
	Query MediaQuery
	Rules []Rule
}

// StylesheetItem is a single top-level item in a stylesheet.
// Exactly one of Rule or MediaBlock is non-nil.
type StylesheetItem struct {
	Rule       *Rule
	MediaBlock *MediaBlock
}

// Stylesheet represents a parsed stylesheet with source order preserved.
type Stylesheet struct {
	Items    []StylesheetItem
	Warnings []string // Warnings for unsupported features
}

// RulesBySelector returns all top-level rules matching the given selector string.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, item := range s.Items {
		if item.Rule != nil && item.Rule.Selector.Raw == selector {
			matches = append(matches, *item.Rule)
		}
	}
	return matches
}

// Flatten converts the stylesheet into a RuleSet for a canvas of the given
// size. Items are visited in source order, @media blocks contribute their
// rules only when the query matches. A later rule with a selector key already
// present replaces the previous declarations for that key wholesale - there
// is no per-declaration merge at this level.
func (s *Stylesheet) Flatten(width, height float64) *RuleSet {
	rs := NewRuleSet()
	for _, item := range s.Items {
		switch {
		case item.Rule != nil:
			rs.Put(item.Rule.Selector.Raw, item.Rule.Declarations)
		case item.MediaBlock != nil:
			if !item.MediaBlock.Query.Evaluate(width, height) {
				continue
			}
			for _, rule := range item.MediaBlock.Rules {
				rs.Put(rule.Selector.Raw, rule.Declarations)
			}
		}
	}
	return rs
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, item := range s.Items {
		var n int
		var err error

		switch {
		case item.MediaBlock != nil:
			n, err = writeMediaBlock(w, item.MediaBlock)
		case item.Rule != nil:
			n, err = writeRule(w, item.Rule, "")
		}

		total += int64(n)
		if err != nil {
			return total, err
		}

		if i < len(s.Items)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeRule(w io.Writer, rule *Rule, indent string) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, rule.Selector.Raw)
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range rule.Declarations {
		n, err = fmt.Fprintf(w, "%s  %s: %s;\n", indent, d.Property, d.Value.Raw)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}

func writeMediaBlock(w io.Writer, mb *MediaBlock) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "@media %s {\n", mb.Query.Raw)
	total += n
	if err != nil {
		return total, err
	}
	for i := range mb.Rules {
		n, err = writeRule(w, &mb.Rules[i], "  ")
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}

// RuleSet maps selector keys to ordered declaration lists. Key iteration
// order is insertion order - the cascade depends on deterministic iteration,
// a plain map would randomize which of several matching keys wins.
type RuleSet struct {
	m *orderedmap.OrderedMap[string, []Declaration]
}

// NewRuleSet creates an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{m: orderedmap.NewOrderedMap[string, []Declaration]()}
}

// Put stores declarations under the selector key, replacing any previous
// declarations for that key wholesale. A replaced key keeps its original
// position in iteration order.
func (rs *RuleSet) Put(key string, decls []Declaration) {
	rs.m.Set(key, decls)
}

// Get returns the declarations stored under key.
func (rs *RuleSet) Get(key string) ([]Declaration, bool) {
	return rs.m.Get(key)
}

// Len returns the number of selector keys.
func (rs *RuleSet) Len() int {
	return rs.m.Len()
}

// Keys returns selector keys in insertion order.
func (rs *RuleSet) Keys() []string {
	keys := make([]string, 0, rs.m.Len())
	for el := rs.m.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

// Merge folds other into rs key by key. For a key present in both the
// incoming declarations replace the existing ones wholesale.
func (rs *RuleSet) Merge(other *RuleSet) {
	if other == nil {
		return
	}
	for el := other.m.Front(); el != nil; el = el.Next() {
		rs.m.Set(el.Key, el.Value)
	}
}

// Style is a computed property mapping produced by cascade resolution.
// It never aliases rule-set internals - merges always copy.
type Style map[string]Value

// Get returns the value of the named property.
func (s Style) Get(property string) (Value, bool) {
	v, ok := s[property]
	return v, ok
}

// Keyword returns the keyword value of the named property or empty string.
// For properties stored as raw strings the raw text is returned.
func (s Style) Keyword(property string) string {
	v, ok := s[property]
	if !ok {
		return ""
	}
	if v.Keyword != "" {
		return v.Keyword
	}
	return v.Raw
}

// Number returns the numeric value of the named property, or def when the
// property is absent or not numeric.
func (s Style) Number(property string, def float64) float64 {
	v, ok := s[property]
	if !ok || !v.IsNumeric() {
		return def
	}
	return v.Value
}

// Apply merges declarations into the style, later declarations overwriting
// earlier values for the same property name.
func (s Style) Apply(decls []Declaration) {
	for _, d := range decls {
		s[d.Property] = d.Value
	}
}

// Clone returns an independent copy of the style.
func (s Style) Clone() Style {
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
