package dom

import (
	"vgr/css"
)

// RuleParser turns raw CSS text into a rule set. Implementations must
// tolerate malformed input by returning an empty or partial rule set.
type RuleParser func(raw string) *css.RuleSet

// StyleCarrier is the capability a node advertises to have its rules folded
// into the owning container at attach time. Checked once on attach, so new
// node kinds can carry styles without the container knowing their type.
type StyleCarrier interface {
	Node
	StyleRules() *css.RuleSet
}

// StyleElement is a leaf holding raw CSS text. It paints nothing; its whole
// effect is the rule set the owning container ingests when it is attached.
type StyleElement struct {
	Base
	raw    string
	parse  RuleParser
	parsed *css.RuleSet
}

// NewStyleElement creates a style element over raw CSS text. The parser is
// invoked lazily, once, on first StyleRules call.
func NewStyleElement(raw string, parse RuleParser) *StyleElement {
	return &StyleElement{raw: raw, parse: parse}
}

// Raw returns the element's CSS text as written in the markup.
func (e *StyleElement) Raw() string { return e.raw }

// StyleRules parses the raw text on first call and caches the result. With
// no parser wired the rule set is empty.
func (e *StyleElement) StyleRules() *css.RuleSet {
	if e.parsed == nil {
		if e.parse != nil {
			e.parsed = e.parse(e.raw)
		}
		if e.parsed == nil {
			e.parsed = css.NewRuleSet()
		}
	}
	return e.parsed
}

// Rasterize is a no-op, style elements have no visual form.
func (e *StyleElement) Rasterize(*Context) error { return nil }

var _ StyleCarrier = (*StyleElement)(nil)
