// Package dom models the markup-derived document tree: container nodes
// owning ordered children, style-rule accumulation from style elements, and
// the cascading pattern resolution that answers "what styles apply to this
// node". Rasterization is a pre-order walk over the same tree.
package dom

import (
	"vgr/css"
)

// Node is any member of the document tree. Concrete node types embed Base,
// which supplies the parent link and style pattern; the unexported base
// accessor keeps the tree wiring (attach, detach) inside this package.
type Node interface {
	// Parent returns the owning container, nil for a root or unattached node.
	Parent() *Container
	// Pattern returns the node's style matcher derived from its id and class
	// attributes, nil when the node has neither.
	Pattern() *css.Pattern
	// Rasterize paints the node into the context. Containers recurse into
	// children, leaves issue draw calls, style elements do nothing.
	Rasterize(ctx *Context) error

	base() *Base
}

// Base carries the per-node state shared by all node kinds. Embed it in a
// concrete node type to satisfy the Node interface plumbing.
type Base struct {
	parent  *Container
	pattern *css.Pattern
	inline  []css.Declaration
}

func (b *Base) base() *Base { return b }

// Parent returns the owning container. The link is maintained exclusively
// by Container.Attach and Container.Detach.
func (b *Base) Parent() *Container { return b.parent }

// Pattern returns the node's style matcher.
func (b *Base) Pattern() *css.Pattern { return b.pattern }

// SetPattern sets the matcher derived from the node's id/class attributes.
func (b *Base) SetPattern(p *css.Pattern) { b.pattern = p }

// SetInline sets declarations from an inline style attribute. They apply on
// top of everything the cascade produces.
func (b *Base) SetInline(decls []css.Declaration) { b.inline = decls }

// ComputedStyle resolves the effective style of a node. A container resolves
// its own pattern through its cascade chain, any other node asks its parent,
// an unattached node gets an empty style. Inline declarations are applied
// last. The returned map is always a fresh copy.
func ComputedStyle(n Node) css.Style {
	var st css.Style
	switch t := n.(type) {
	case *Container:
		st = t.ResolveStyleByPattern(t.Pattern())
	default:
		if p := n.Parent(); p != nil {
			st = p.ResolveStyleForNode(n)
		} else {
			st = css.Style{}
		}
	}
	st.Apply(n.base().inline)
	return st
}
