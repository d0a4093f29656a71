package exchange

import (
	"net/url"
	"strings"

	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// Attribute names.
const (
	AttrGet     = "hx-get"
	AttrPost    = "hx-post"
	AttrTarget  = "hx-target"
	AttrSwap    = "hx-swap"
	AttrTrigger = "hx-trigger"
)

// Swap modes.
const (
	SwapInner      = "innerHTML"
	SwapOuter      = "outerHTML"
	SwapBeforeEnd  = "beforeend"
	SwapAfterBegin = "afterbegin"
	SwapNone       = "none"
)

// TriggerDebounced is the synthetic event emitted by the debounce
// coordinator.
const TriggerDebounced = "debounced"

// Verb returns the HTTP verb and URL an element requests, or ok=false when
// the element issues no request.
func Verb(elt *vdom.VNode) (verb, u string, ok bool) {
	if u, ok := elt.LookupAttr(AttrGet); ok {
		return "GET", u, true
	}
	if u, ok := elt.LookupAttr(AttrPost); ok {
		return "POST", u, true
	}
	return "", "", false
}

// Triggers returns the events that issue elt's request.
func Triggers(elt *vdom.VNode) []string {
	if t := elt.AttrList(AttrTrigger); len(t) > 0 {
		return t
	}
	switch elt.Tag {
	case "form":
		return []string{"submit"}
	case "input", "select", "textarea":
		return []string{"change"}
	default:
		return []string{"click"}
	}
}

// Qualifies reports whether event name issues elt's request.
func Qualifies(elt *vdom.VNode, name string) bool {
	if _, _, ok := Verb(elt); !ok {
		return false
	}
	for _, t := range Triggers(elt) {
		if t == name {
			return true
		}
	}
	return false
}

// SwapMode returns elt's swap mode, defaulting to innerHTML.
func SwapMode(elt *vdom.VNode) string {
	mode := strings.Fields(elt.Attr(AttrSwap))
	if len(mode) == 0 {
		return SwapInner
	}
	switch mode[0] {
	case SwapInner, SwapOuter, SwapBeforeEnd, SwapAfterBegin, SwapNone:
		return mode[0]
	default:
		return SwapInner
	}
}

// ResolveTarget finds the swap target for elt within root. An unresolvable
// selector falls back to elt itself.
func ResolveTarget(root, elt *vdom.VNode) *vdom.VNode {
	sel := strings.TrimSpace(elt.Attr(AttrTarget))
	switch {
	case sel == "" || sel == "this":
		return elt
	case strings.HasPrefix(sel, "#"):
		if t := vdom.FindByID(root, sel[1:]); t != nil {
			return t
		}
	case strings.HasPrefix(sel, "closest "):
		tag := strings.TrimSpace(strings.TrimPrefix(sel, "closest "))
		for n := elt.Parent; n != nil; n = n.Parent {
			if n.Tag == tag {
				return n
			}
		}
	}
	return elt
}

// Values collects the named values an element contributes to its request:
// the element's own name/value pair, or every named input beneath a form.
func Values(elt *vdom.VNode) url.Values {
	v := url.Values{}
	if elt == nil {
		return v
	}
	if elt.Tag == "form" {
		vdom.Walk(elt, func(n *vdom.VNode) bool {
			if n != elt && isField(n) {
				v.Add(n.Attr("name"), n.Attr("value"))
			}
			return true
		})
		return v
	}
	if isField(elt) {
		v.Set(elt.Attr("name"), elt.Attr("value"))
	}
	return v
}

func isField(n *vdom.VNode) bool {
	if !n.IsElement() || n.Attr("name") == "" {
		return false
	}
	switch n.Tag {
	case "input", "select", "textarea", "button":
		return true
	}
	return false
}
