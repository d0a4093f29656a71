package vdom

import "fmt"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// createElement creates a new VNode with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, string.
// Children built here are linked to their parent but not yet adopted by a
// Document; see Document.Adopt.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	appendChild := func(c *VNode) {
		if c == nil {
			return
		}
		if c.Kind == KindFragment {
			for _, fc := range c.Children {
				fc.Parent = node
				node.Children = append(node.Children, fc)
			}
			return
		}
		c.Parent = node
		node.Children = append(node.Children, c)
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			if v.Key != "" {
				node.Props[v.Key] = v.Value
			}
		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					node.Props[a.Key] = a.Value
				}
			}
		case *VNode:
			appendChild(v)
		case []*VNode:
			for _, c := range v {
				appendChild(c)
			}
		case string:
			appendChild(Text(v))
		}
	}

	return node
}

// El creates an element with an arbitrary tag.
func El(tag string, args ...any) *VNode { return createElement(tag, args) }

// Div creates a <div> element.
func Div(args ...any) *VNode { return createElement("div", args) }

// Span creates a <span> element.
func Span(args ...any) *VNode { return createElement("span", args) }

// Ul creates a <ul> element.
func Ul(args ...any) *VNode { return createElement("ul", args) }

// Li creates a <li> element.
func Li(args ...any) *VNode { return createElement("li", args) }

// Button creates a <button> element.
func Button(args ...any) *VNode { return createElement("button", args) }

// Input creates an <input> element.
func Input(args ...any) *VNode { return createElement("input", args) }

// Form creates a <form> element.
func Form(args ...any) *VNode { return createElement("form", args) }

// Anchor creates an <a> element.
func Anchor(args ...any) *VNode { return createElement("a", args) }

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups children without a wrapper element.
func Fragment(children ...*VNode) *VNode {
	node := &VNode{Kind: KindFragment}
	for _, c := range children {
		if c != nil {
			node.Children = append(node.Children, c)
		}
	}
	return node
}
