package dom

import (
	"vgr/css"
)

// Container is a tree node that owns an ordered list of children and a local
// rule set accumulated from attached style elements. Insertion order of
// children defines both tree structure and paint order.
//
// Containers are not safe for concurrent use. Callers serialize mutation and
// traversal.
type Container struct {
	Base
	children []Node
	rules    *css.RuleSet
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{rules: css.NewRuleSet()}
}

// Attach appends n to the container's children and takes ownership. Attaching
// the container to itself or re-attaching a direct child is a no-op. A node
// owned by another container is detached from it first, so a node is never a
// child of two containers. Style-carrying nodes have their rules folded into
// the container's local rule set on attach. Returns the container for
// chaining.
func (c *Container) Attach(n Node) *Container {
	if n == nil || Node(c) == n {
		return c
	}
	b := n.base()
	if b.parent == c {
		return c
	}
	if b.parent != nil {
		b.parent.Detach(n)
	}
	c.children = append(c.children, n)
	b.parent = c

	if sc, ok := n.(StyleCarrier); ok {
		c.IngestStyleRules(sc.StyleRules())
	}
	return c
}

// Detach removes n from the container's children, clearing its parent link
// and preserving the relative order of the rest. Detaching a node that is
// not a direct child is a no-op.
func (c *Container) Detach(n Node) {
	if n == nil {
		return
	}
	for i, child := range c.children {
		if child == n {
			c.DetachAt(i)
			return
		}
	}
}

// DetachAt removes the child at index i. Out-of-range indices are a no-op.
func (c *Container) DetachAt(i int) {
	if i < 0 || i >= len(c.children) {
		return
	}
	c.children[i].base().parent = nil
	c.children = append(c.children[:i], c.children[i+1:]...)
}

// ChildCount returns the number of children.
func (c *Container) ChildCount() int { return len(c.children) }

// ChildAt returns the child at index i. The index must be in
// [0, ChildCount()); out-of-range access panics. Callers check ChildCount
// first, a silently clamped index would corrupt paint order downstream.
func (c *Container) ChildAt(i int) Node { return c.children[i] }

// IngestStyleRules merges rs into the container's local rules key by key.
// For a selector key present in both, the incoming declarations replace the
// existing ones wholesale.
func (c *Container) IngestStyleRules(rs *css.RuleSet) {
	c.rules.Merge(rs)
}

// ResolveStyleForNode resolves the cascade for n's own pattern.
func (c *Container) ResolveStyleForNode(n Node) css.Style {
	if n == nil {
		return css.Style{}
	}
	return c.ResolveStyleByPattern(n.Pattern())
}

// ResolveStyleByPattern walks the parent chain to the root, then applies
// matching local rules on the way back down. Ancestor declarations land
// first, so deeper containers win on conflicting property names; among
// matching keys within one container, later keys in rule-set order win. A
// nil pattern resolves to an empty style, a node with no id and no classes
// matches nothing. The result never aliases the container's rule set.
func (c *Container) ResolveStyleByPattern(p *css.Pattern) css.Style {
	if p == nil {
		return css.Style{}
	}

	var st css.Style
	if c.parent != nil {
		st = c.parent.ResolveStyleByPattern(p)
	} else {
		st = css.Style{}
	}

	for _, key := range c.rules.Keys() {
		if !p.Matches(key) {
			continue
		}
		if decls, ok := c.rules.Get(key); ok {
			st.Apply(decls)
		}
	}
	return st
}

// Rasterize walks the subtree in child order. A container whose computed
// display is "none" skips itself and its entire subtree; visibility is left
// to leaves, it hides a single shape without suppressing siblings.
func (c *Container) Rasterize(ctx *Context) error {
	if ComputedStyle(c).Keyword("display") == "none" {
		return nil
	}
	for _, child := range c.children {
		if err := child.Rasterize(ctx); err != nil {
			return err
		}
	}
	return nil
}
