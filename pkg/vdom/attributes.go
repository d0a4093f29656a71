package vdom

import (
	"fmt"
	"strconv"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", "") }

// A creates an arbitrary attribute.
func A(key string, value any) Attr { return attr(key, value) }

// Attr returns the string form of attribute key, or "" when absent.
func (v *VNode) Attr(key string) string {
	s, _ := v.LookupAttr(key)
	return s
}

// LookupAttr returns the string form of attribute key and whether it is present.
func (v *VNode) LookupAttr(key string) (string, bool) {
	if v == nil || v.Props == nil {
		return "", false
	}
	raw, ok := v.Props[key]
	if !ok || raw == nil {
		return "", false
	}
	switch val := raw.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return fmt.Sprint(val), true
	}
}

// HasAttr reports whether attribute key is present.
func (v *VNode) HasAttr(key string) bool {
	_, ok := v.LookupAttr(key)
	return ok
}

// AttrInt parses attribute key as an integer, returning def when absent or invalid.
func (v *VNode) AttrInt(key string, def int) int {
	s, ok := v.LookupAttr(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// AttrFloat parses attribute key as a float, returning def when absent or invalid.
func (v *VNode) AttrFloat(key string, def float64) float64 {
	s, ok := v.LookupAttr(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "px")), 64)
	if err != nil {
		return def
	}
	return f
}

// AttrBool reports a boolean attribute. A present attribute with an empty
// value counts as true, as in HTML; "false" and "0" count as false.
func (v *VNode) AttrBool(key string) bool {
	s, ok := v.LookupAttr(key)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "false", "0", "off", "no":
		return false
	}
	return true
}

// AttrList splits a comma or space separated attribute into its parts.
func (v *VNode) AttrList(key string) []string {
	s, ok := v.LookupAttr(key)
	if !ok {
		return nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// HasClass reports whether the class attribute contains name.
func (v *VNode) HasClass(name string) bool {
	for _, c := range strings.Fields(v.Attr("class")) {
		if c == name {
			return true
		}
	}
	return false
}
