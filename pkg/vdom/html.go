package vdom

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses an HTML fragment as the children of a <div>.
// Comments and doctype nodes are dropped; whitespace-only text is kept only
// when it sits between inline content.
func ParseFragment(markup string) ([]*VNode, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*VNode, 0, len(nodes))
	for _, n := range nodes {
		if v := fromHTML(n); v != nil {
			out = append(out, v)
		}
	}
	return out, nil
}

func fromHTML(n *html.Node) *VNode {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return Text(n.Data)
	case html.ElementNode:
		v := &VNode{
			Kind:  KindElement,
			Tag:   n.Data,
			Props: make(Props, len(n.Attr)),
		}
		for _, a := range n.Attr {
			v.Props[a.Key] = a.Val
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if cv := fromHTML(c); cv != nil {
				cv.Parent = v
				v.Children = append(v.Children, cv)
			}
		}
		return v
	default:
		return nil
	}
}

// RenderHTML renders n and its subtree as HTML. Attributes are emitted in
// sorted order so output is deterministic.
func RenderHTML(n *VNode) string {
	var b strings.Builder
	renderHTML(&b, n)
	return b.String()
}

func renderHTML(b *strings.Builder, n *VNode) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText:
		b.WriteString(html.EscapeString(n.Text))
	case KindFragment:
		for _, c := range n.Children {
			renderHTML(b, c)
		}
	case KindElement:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		keys := make([]string, 0, len(n.Props))
		for k := range n.Props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			val, _ := n.LookupAttr(k)
			b.WriteByte(' ')
			b.WriteString(k)
			if val != "" {
				b.WriteString(`="`)
				b.WriteString(html.EscapeString(val))
				b.WriteByte('"')
			}
		}
		b.WriteByte('>')
		if IsVoidElement(n.Tag) {
			return
		}
		for _, c := range n.Children {
			renderHTML(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}
