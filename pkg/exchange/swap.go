package exchange

import (
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// Swap inserts markup relative to target according to mode and returns the
// swapped region and the top-level nodes that were inserted.
//
// For outerHTML the region is the target's former parent, since the target
// itself is gone.
func Swap(doc *vdom.Document, target *vdom.VNode, mode, markup string) (*vdom.VNode, []*vdom.VNode, error) {
	if mode == SwapNone {
		return target, nil, nil
	}
	nodes, err := vdom.ParseFragment(markup)
	if err != nil {
		return nil, nil, err
	}

	switch mode {
	case SwapOuter:
		parent := target.Parent
		if parent == nil {
			// A detached target cannot be replaced; fall back to its content.
			doc.ReplaceChildren(target, nodes)
			return target, nodes, nil
		}
		doc.ReplaceNode(target, nodes)
		return parent, nodes, nil
	case SwapBeforeEnd:
		for _, n := range nodes {
			doc.AppendChild(target, n)
		}
	case SwapAfterBegin:
		for i, n := range nodes {
			doc.InsertChild(target, n, i)
		}
	default:
		doc.ReplaceChildren(target, nodes)
	}
	return target, nodes, nil
}
