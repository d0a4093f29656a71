package vdom

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func Walk(n *VNode, fn func(*VNode) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// FindAll returns every element in n's subtree (n included) matching pred.
func FindAll(n *VNode, pred func(*VNode) bool) []*VNode {
	var out []*VNode
	Walk(n, func(v *VNode) bool {
		if v.IsElement() && pred(v) {
			out = append(out, v)
		}
		return true
	})
	return out
}

// FindByID returns the first element with the given id attribute.
func FindByID(n *VNode, id string) *VNode {
	var found *VNode
	Walk(n, func(v *VNode) bool {
		if found != nil {
			return false
		}
		if v.IsElement() && v.Attr("id") == id {
			found = v
			return false
		}
		return true
	})
	return found
}

// WithAttr returns a predicate matching elements that carry attribute key.
func WithAttr(key string) func(*VNode) bool {
	return func(v *VNode) bool { return v.HasAttr(key) }
}

// Contains reports whether descendant is ancestor or lies beneath it.
func Contains(ancestor, descendant *VNode) bool {
	for n := descendant; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Clone returns a detached deep copy of n. Handles are not copied, so the
// clone is invisible to any Document until adopted.
func Clone(n *VNode) *VNode {
	if n == nil {
		return nil
	}
	c := &VNode{
		Kind: n.Kind,
		Tag:  n.Tag,
		Text: n.Text,
	}
	if n.Props != nil {
		c.Props = make(Props, len(n.Props))
		for k, v := range n.Props {
			c.Props[k] = v
		}
	}
	if len(n.Children) > 0 {
		c.Children = make([]*VNode, len(n.Children))
		for i, child := range n.Children {
			cc := Clone(child)
			cc.Parent = c
			c.Children[i] = cc
		}
	}
	return c
}
