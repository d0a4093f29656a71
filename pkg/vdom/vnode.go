package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <li>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// VNode is a node of the headless element tree.
//
// Nodes are mutated only through a Document so every change is recorded.
// Parent is maintained by the Document; a node with a nil Parent is detached.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes
	Children []*VNode // Child nodes
	Parent   *VNode   // Owning element, nil when detached
	Text     string   // For KindText
	HID      string   // Node handle, assigned by Document.Adopt
}

// Props holds element attributes.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// IsElement reports whether v is a non-nil element node.
func (v *VNode) IsElement() bool {
	return v != nil && v.Kind == KindElement
}

// Index returns the position of v among its parent's children, or -1.
func (v *VNode) Index() int {
	if v == nil || v.Parent == nil {
		return -1
	}
	for i, c := range v.Parent.Children {
		if c == v {
			return i
		}
	}
	return -1
}

// ElementChildren returns the element children of v, skipping text nodes.
func (v *VNode) ElementChildren() []*VNode {
	if v == nil {
		return nil
	}
	out := make([]*VNode, 0, len(v.Children))
	for _, c := range v.Children {
		if c.IsElement() {
			out = append(out, c)
		}
	}
	return out
}
