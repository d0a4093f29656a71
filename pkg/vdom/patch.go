package vdom

import "fmt"

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set/update attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchInsertNode  PatchOp = 0x04 // Insert new node
	PatchRemoveNode  PatchOp = 0x05 // Remove node
	PatchMoveNode    PatchOp = 0x06 // Move node to new position
	PatchReplaceNode PatchOp = 0x07 // Replace node entirely
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchMoveNode:
		return "MoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	default:
		return "Unknown"
	}
}

// Patch represents a single DOM operation that was applied.
type Patch struct {
	Op       PatchOp // Operation type
	HID      string  // Target node handle
	Key      string  // Attribute key (for SetAttr/RemoveAttr)
	Value    string  // New value
	Index    int     // Insert position
	ParentID string  // Parent for InsertNode/MoveNode
}

// HIDGenerator generates node handles ("n1", "n2", ...).
type HIDGenerator struct {
	counter uint32
}

// NewHIDGenerator creates a new HIDGenerator.
func NewHIDGenerator() *HIDGenerator {
	return &HIDGenerator{}
}

// Next returns the next handle.
func (g *HIDGenerator) Next() string {
	g.counter++
	return fmt.Sprintf("n%d", g.counter)
}

// Current returns the current counter value without incrementing.
func (g *HIDGenerator) Current() uint32 {
	return g.counter
}

// Document owns a tree and applies every mutation to it, recording one Patch
// per mutation. It is not safe for concurrent use; like the rest of the engine
// it is driven from a single scheduler goroutine.
type Document struct {
	Root    *VNode
	hids    *HIDGenerator
	byHID   map[string]*VNode
	patches []Patch
}

// NewDocument wraps root, assigning handles to every node in the tree.
func NewDocument(root *VNode) *Document {
	d := &Document{
		Root:  root,
		hids:  NewHIDGenerator(),
		byHID: make(map[string]*VNode),
	}
	d.Adopt(root)
	return d
}

// Adopt assigns handles to n and its descendants and links parent pointers.
// Adoption is bookkeeping and records no patch.
func (d *Document) Adopt(n *VNode) {
	if n == nil {
		return
	}
	if n.HID == "" {
		n.HID = d.hids.Next()
	}
	d.byHID[n.HID] = n
	for _, c := range n.Children {
		c.Parent = n
		d.Adopt(c)
	}
}

// FindByHID returns the node with the given handle, or nil.
func (d *Document) FindByHID(hid string) *VNode {
	return d.byHID[hid]
}

// Patches returns the mutation log.
func (d *Document) Patches() []Patch {
	return d.patches
}

// Mutations returns the number of recorded mutations.
func (d *Document) Mutations() int {
	return len(d.patches)
}

// ResetLog clears the mutation log.
func (d *Document) ResetLog() {
	d.patches = d.patches[:0]
}

func (d *Document) record(p Patch) {
	d.patches = append(d.patches, p)
}

// AppendChild appends child to parent, moving it if already attached.
func (d *Document) AppendChild(parent, child *VNode) {
	if parent == nil || child == nil {
		return
	}
	idx := len(parent.Children)
	if child.Parent == parent {
		idx--
	}
	d.InsertChild(parent, child, idx)
}

// InsertChild inserts child into parent at index. A child that is already
// attached elsewhere is moved, which counts as a single mutation. Inserting a
// child at the position it already occupies is a no-op.
func (d *Document) InsertChild(parent, child *VNode, index int) {
	if parent == nil || child == nil {
		return
	}
	op := PatchInsertNode
	if child.Parent != nil {
		if child.Parent == parent && index < len(parent.Children) && parent.Children[index] == child {
			return
		}
		op = PatchMoveNode
		detach(child)
	}
	if index < 0 || index > len(parent.Children) {
		index = len(parent.Children)
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = child
	child.Parent = parent
	d.Adopt(child)
	d.record(Patch{Op: op, HID: child.HID, Index: index, ParentID: parent.HID})
}

// RemoveChild detaches n from its parent.
func (d *Document) RemoveChild(n *VNode) {
	if n == nil || n.Parent == nil {
		return
	}
	parent := n.Parent
	detach(n)
	d.record(Patch{Op: PatchRemoveNode, HID: n.HID, ParentID: parent.HID})
}

// ReplaceChildren removes every child of parent and appends children.
func (d *Document) ReplaceChildren(parent *VNode, children []*VNode) {
	if parent == nil {
		return
	}
	for len(parent.Children) > 0 {
		d.RemoveChild(parent.Children[len(parent.Children)-1])
	}
	for _, c := range children {
		d.AppendChild(parent, c)
	}
}

// ReplaceNode substitutes replacements for old in old's parent.
func (d *Document) ReplaceNode(old *VNode, replacements []*VNode) {
	if old == nil || old.Parent == nil {
		return
	}
	parent := old.Parent
	idx := old.Index()
	detach(old)
	d.record(Patch{Op: PatchReplaceNode, HID: old.HID, Index: idx, ParentID: parent.HID})
	for i, r := range replacements {
		d.InsertChild(parent, r, idx+i)
	}
}

// SetAttr sets an attribute, recording a patch only when the value changes.
func (d *Document) SetAttr(n *VNode, key, value string) {
	if n == nil {
		return
	}
	if cur, ok := n.LookupAttr(key); ok && cur == value {
		return
	}
	if n.Props == nil {
		n.Props = make(Props)
	}
	n.Props[key] = value
	d.record(Patch{Op: PatchSetAttr, HID: n.HID, Key: key, Value: value})
}

// RemoveAttr removes an attribute if present.
func (d *Document) RemoveAttr(n *VNode, key string) {
	if n == nil || !n.HasAttr(key) {
		return
	}
	delete(n.Props, key)
	d.record(Patch{Op: PatchRemoveAttr, HID: n.HID, Key: key})
}

// SetText replaces a text node's content.
func (d *Document) SetText(n *VNode, text string) {
	if n == nil || n.Kind != KindText || n.Text == text {
		return
	}
	n.Text = text
	d.record(Patch{Op: PatchSetText, HID: n.HID, Value: text})
}

func detach(n *VNode) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for i, c := range parent.Children {
		if c == n {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			break
		}
	}
	n.Parent = nil
}
