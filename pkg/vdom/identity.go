package vdom

import "strconv"

// IdentityAttr is the attribute carrying an item's stable identity.
const IdentityAttr = "data-item-id"

// IdentityGenerator hands out explicit, monotonically increasing item
// identities. Identities start at 1; zero means "unassigned".
type IdentityGenerator struct {
	last int
}

// NewIdentityGenerator creates a new IdentityGenerator.
func NewIdentityGenerator() *IdentityGenerator {
	return &IdentityGenerator{}
}

// Next returns the next unused identity.
func (g *IdentityGenerator) Next() int {
	g.last++
	return g.last
}

// Observe records an identity assigned elsewhere so Next never repeats it.
func (g *IdentityGenerator) Observe(id int) {
	if id > g.last {
		g.last = id
	}
}

// Current returns the last identity handed out or observed.
func (g *IdentityGenerator) Current() int {
	return g.last
}

// Reset resets the generator to its initial state.
func (g *IdentityGenerator) Reset() {
	g.last = 0
}

// ItemID returns the identity carried by n and whether it has one.
func ItemID(n *VNode) (int, bool) {
	s, ok := n.LookupAttr(IdentityAttr)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ObserveAll records every identity carried in root's subtree so gen never
// hands one of them out.
func ObserveAll(root *VNode, gen *IdentityGenerator) {
	Walk(root, func(n *VNode) bool {
		if id, ok := ItemID(n); ok {
			gen.Observe(id)
		}
		return true
	})
}

// AssignIdentity stamps a fresh identity onto n through doc.
func AssignIdentity(doc *Document, n *VNode, gen *IdentityGenerator) int {
	id := gen.Next()
	doc.SetAttr(n, IdentityAttr, strconv.Itoa(id))
	return id
}
