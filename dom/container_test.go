package dom_test

import (
	"testing"

	"vgr/css"
	"vgr/dom"
)

// paintLeaf counts Rasterize calls, standing in for a shape node.
type paintLeaf struct {
	dom.Base
	paints int
}

func (l *paintLeaf) Rasterize(*dom.Context) error {
	l.paints++
	return nil
}

func parseRules(t *testing.T, raw string) *css.RuleSet {
	t.Helper()
	sheet := css.NewParser(nil).Parse([]byte(raw))
	return sheet.Flatten(100, 100)
}

func styleParser(t *testing.T) dom.RuleParser {
	return func(raw string) *css.RuleSet { return parseRules(t, raw) }
}

func TestAttachSetsParent(t *testing.T) {
	root := dom.NewContainer()
	leaf := &paintLeaf{}

	root.Attach(leaf)

	if leaf.Parent() != root {
		t.Error("attached leaf does not point back at its container")
	}
	if root.ChildCount() != 1 || root.ChildAt(0) != dom.Node(leaf) {
		t.Errorf("children = %d, expected exactly the attached leaf", root.ChildCount())
	}
}

func TestAttachChaining(t *testing.T) {
	root := dom.NewContainer()
	root.Attach(&paintLeaf{}).Attach(&paintLeaf{}).Attach(&paintLeaf{})
	if root.ChildCount() != 3 {
		t.Errorf("chained attach produced %d children, expected 3", root.ChildCount())
	}
}

func TestReparentingAtomicity(t *testing.T) {
	a := dom.NewContainer()
	b := dom.NewContainer()
	leaf := &paintLeaf{}

	a.Attach(leaf)
	b.Attach(leaf)

	if leaf.Parent() != b {
		t.Error("reparented leaf should point at the new container")
	}
	if a.ChildCount() != 0 {
		t.Errorf("old container still has %d children", a.ChildCount())
	}
	if b.ChildCount() != 1 {
		t.Errorf("new container has %d children, expected 1", b.ChildCount())
	}
}

func TestSelfAttachNoop(t *testing.T) {
	c := dom.NewContainer()
	c.Attach(&paintLeaf{})

	c.Attach(c)

	if c.ChildCount() != 1 {
		t.Errorf("self-attach changed children: %d", c.ChildCount())
	}
	if c.Parent() != nil {
		t.Error("self-attach set a parent link")
	}
}

func TestReattachDirectChildNoop(t *testing.T) {
	c := dom.NewContainer()
	first := &paintLeaf{}
	second := &paintLeaf{}
	c.Attach(first).Attach(second)

	c.Attach(first)

	if c.ChildCount() != 2 {
		t.Fatalf("re-attach changed child count: %d", c.ChildCount())
	}
	if c.ChildAt(0) != dom.Node(first) || c.ChildAt(1) != dom.Node(second) {
		t.Error("re-attach reordered children")
	}
}

func TestAttachNilNoop(t *testing.T) {
	c := dom.NewContainer()
	c.Attach(nil)
	if c.ChildCount() != 0 {
		t.Errorf("nil attach added a child: %d", c.ChildCount())
	}
}

func TestDetachPreservesOrder(t *testing.T) {
	c := dom.NewContainer()
	first := &paintLeaf{}
	second := &paintLeaf{}
	third := &paintLeaf{}
	c.Attach(first).Attach(second).Attach(third)

	c.Detach(second)

	if c.ChildCount() != 2 {
		t.Fatalf("child count = %d, expected 2", c.ChildCount())
	}
	if c.ChildAt(0) != dom.Node(first) || c.ChildAt(1) != dom.Node(third) {
		t.Error("detach broke relative order of remaining children")
	}
	if second.Parent() != nil {
		t.Error("detached node still has a parent link")
	}
}

func TestDetachAt(t *testing.T) {
	c := dom.NewContainer()
	first := &paintLeaf{}
	second := &paintLeaf{}
	c.Attach(first).Attach(second)

	c.DetachAt(0)

	if c.ChildCount() != 1 || c.ChildAt(0) != dom.Node(second) {
		t.Error("DetachAt(0) should leave only the second child")
	}
	if first.Parent() != nil {
		t.Error("detached node still has a parent link")
	}
}

func TestDetachUnresolvableNoop(t *testing.T) {
	c := dom.NewContainer()
	c.Attach(&paintLeaf{})

	c.Detach(&paintLeaf{}) // never attached
	c.Detach(nil)
	c.DetachAt(-1)
	c.DetachAt(5)

	if c.ChildCount() != 1 {
		t.Errorf("unresolvable detach changed children: %d", c.ChildCount())
	}
}

func TestChildAtOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ChildAt out of range should panic, not return a default")
		}
	}()
	dom.NewContainer().ChildAt(0)
}

func TestIngestOverwriteByKey(t *testing.T) {
	c := dom.NewContainer()
	c.IngestStyleRules(parseRules(t, ".a { color: red; width: 5 } .b { color: green }"))
	c.IngestStyleRules(parseRules(t, ".a { color: blue }"))

	st := c.ResolveStyleByPattern(css.NewPattern(".a"))
	if got := st.Keyword("color"); got != "blue" {
		t.Errorf("color = %q, expected later rule set to replace the key wholesale", got)
	}
	if _, ok := st.Get("width"); ok {
		t.Error("width survived a wholesale key replacement")
	}

	st = c.ResolveStyleByPattern(css.NewPattern(".b"))
	if got := st.Keyword("color"); got != "green" {
		t.Errorf("unrelated key lost its declarations: color = %q", got)
	}
}

func TestCascadePrecedence(t *testing.T) {
	ancestor := dom.NewContainer()
	descendant := dom.NewContainer()
	ancestor.Attach(descendant)

	ancestor.IngestStyleRules(parseRules(t, ".a { color: red; fill: black }"))
	descendant.IngestStyleRules(parseRules(t, ".a { color: blue }"))

	pat := css.NewPattern(".a")

	st := descendant.ResolveStyleByPattern(pat)
	if got := st.Keyword("color"); got != "blue" {
		t.Errorf("resolving from descendant: color = %q, expected descendant to win", got)
	}
	if got := st.Keyword("fill"); got != "black" {
		t.Errorf("ancestor-only property lost in cascade: fill = %q", got)
	}

	st = ancestor.ResolveStyleByPattern(pat)
	if got := st.Keyword("color"); got != "red" {
		t.Errorf("resolving from ancestor alone: color = %q, expected red", got)
	}
}

func TestLaterKeyWinsWithinContainer(t *testing.T) {
	c := dom.NewContainer()
	c.IngestStyleRules(parseRules(t, ".a { color: red } .b { color: blue }"))

	// pattern matching both keys, the later one in rule-set order wins
	st := c.ResolveStyleByPattern(css.NewPattern(".a", ".b"))
	if got := st.Keyword("color"); got != "blue" {
		t.Errorf("color = %q, expected later matching key to win", got)
	}
}

func TestCompoundSelectorRuleApplies(t *testing.T) {
	c := dom.NewContainer()
	c.IngestStyleRules(parseRules(t, "rect { fill: black } rect.accent { fill: blue }"))

	st := c.ResolveStyleByPattern(css.PatternFromAttrs("rect", "", "accent"))
	if got := st.Keyword("fill"); got != "blue" {
		t.Errorf("fill = %q, expected compound rule to reach the matching node", got)
	}

	st = c.ResolveStyleByPattern(css.PatternFromAttrs("rect", "", ""))
	if got := st.Keyword("fill"); got != "black" {
		t.Errorf("fill = %q, compound rule must not apply without the class", got)
	}

	st = c.ResolveStyleByPattern(css.PatternFromAttrs("circle", "", "accent"))
	if len(st) != 0 {
		t.Errorf("resolved %d properties, compound rule must not apply to another element", len(st))
	}
}

func TestNilPatternShortCircuit(t *testing.T) {
	c := dom.NewContainer()
	c.IngestStyleRules(parseRules(t, ".a { color: red }"))

	st := c.ResolveStyleByPattern(nil)
	if len(st) != 0 {
		t.Errorf("nil pattern resolved to %d properties, expected none", len(st))
	}
}

func TestResolveResultDoesNotAliasRules(t *testing.T) {
	c := dom.NewContainer()
	c.IngestStyleRules(parseRules(t, ".a { color: red }"))
	pat := css.NewPattern(".a")

	st := c.ResolveStyleByPattern(pat)
	st["color"] = css.Value{Raw: "mutated", Keyword: "mutated"}

	again := c.ResolveStyleByPattern(pat)
	if got := again.Keyword("color"); got != "red" {
		t.Errorf("mutating a returned style leaked into internals: color = %q", got)
	}
}

func TestComputedStyleForLeaf(t *testing.T) {
	root := dom.NewContainer()
	root.IngestStyleRules(parseRules(t, ".x { fill: green }"))

	leaf := &paintLeaf{}
	leaf.SetPattern(css.NewPattern(".x"))
	root.Attach(leaf)

	if got := dom.ComputedStyle(leaf).Keyword("fill"); got != "green" {
		t.Errorf("leaf computed fill = %q, expected green", got)
	}

	orphan := &paintLeaf{}
	orphan.SetPattern(css.NewPattern(".x"))
	if st := dom.ComputedStyle(orphan); len(st) != 0 {
		t.Errorf("unattached leaf resolved %d properties, expected none", len(st))
	}
}

func TestInlineStyleAppliesLast(t *testing.T) {
	root := dom.NewContainer()
	root.IngestStyleRules(parseRules(t, ".x { fill: green }"))

	leaf := &paintLeaf{}
	leaf.SetPattern(css.NewPattern(".x"))
	leaf.SetInline([]css.Declaration{{Property: "fill", Value: css.Value{Raw: "red", Keyword: "red"}}})
	root.Attach(leaf)

	if got := dom.ComputedStyle(leaf).Keyword("fill"); got != "red" {
		t.Errorf("inline fill = %q, expected inline declaration to win", got)
	}
}

func TestStyleElementFoldsOnAttach(t *testing.T) {
	c := dom.NewContainer()
	c.Attach(dom.NewStyleElement(".a { color: red }", styleParser(t)))

	st := c.ResolveStyleByPattern(css.NewPattern(".a"))
	if got := st.Keyword("color"); got != "red" {
		t.Errorf("color = %q, style element rules were not ingested on attach", got)
	}
}

func TestDisplayNonePrunesSubtree(t *testing.T) {
	root := dom.NewContainer()

	hidden := dom.NewContainer()
	hidden.SetPattern(css.NewPattern(".h"))
	hidden.Attach(dom.NewStyleElement(".h { display: none }", styleParser(t)))
	root.Attach(hidden)

	leaf := &paintLeaf{}
	hidden.Attach(leaf)

	nested := &paintLeaf{}
	inner := dom.NewContainer()
	inner.Attach(nested)
	hidden.Attach(inner)

	if err := root.Rasterize(dom.NewContext(nil, nil)); err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if leaf.paints != 0 || nested.paints != 0 {
		t.Errorf("display:none subtree painted: leaf=%d nested=%d", leaf.paints, nested.paints)
	}
}

func TestRasterizeVisitsChildrenInOrder(t *testing.T) {
	root := dom.NewContainer()
	first := &paintLeaf{}
	second := &paintLeaf{}
	root.Attach(first).Attach(second)

	if err := root.Rasterize(dom.NewContext(nil, nil)); err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if first.paints != 1 || second.paints != 1 {
		t.Errorf("paint counts = %d, %d, expected each child visited once", first.paints, second.paints)
	}
}

// Tree A -> B -> C where B both carries the hiding rule and matches it:
// B's display check must cut the traversal before C paints.
func TestHiddenBranchEndToEnd(t *testing.T) {
	a := dom.NewContainer()

	b := dom.NewContainer()
	b.SetPattern(css.NewPattern(".x"))
	a.Attach(b)
	b.Attach(dom.NewStyleElement(".x{display:none}", styleParser(t)))

	c := &paintLeaf{}
	c.SetPattern(css.NewPattern(".x"))
	b.Attach(c)

	if err := a.Rasterize(dom.NewContext(nil, nil)); err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if c.paints != 0 {
		t.Errorf("leaf painted %d times under a display:none branch, expected 0", c.paints)
	}
	t.Logf("display check on the branch container suppressed %d descendants", b.ChildCount())
}
