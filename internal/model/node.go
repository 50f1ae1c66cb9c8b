package model

import (
	"encoding/json"
	"fmt"
)

// HierarchyNode is one level of a taxonomy tree. A nil Children slice marks a
// leaf (the exported JSON has no "children" key); branches always carry a
// non-nil slice, even when empty.
type HierarchyNode struct {
	UID      string
	Name     string
	Status   Status
	Children []*HierarchyNode
	// Extra keeps every other exported field so it survives the round trip.
	Extra map[string]json.RawMessage
}

// NewBranch creates an empty branch node.
func NewBranch(uid, name string) *HierarchyNode {
	return &HierarchyNode{UID: uid, Name: name, Children: []*HierarchyNode{}}
}

// IsLeaf reports whether the node is a test-case leaf.
func (n *HierarchyNode) IsLeaf() bool {
	return n.Children == nil
}

// FindChild returns the direct child with the given UID.
func (n *HierarchyNode) FindChild(uid string) *HierarchyNode {
	for _, child := range n.Children {
		if child.UID == uid {
			return child
		}
	}

	return nil
}

// AppendChild adds child to the end of the children list.
func (n *HierarchyNode) AppendChild(child *HierarchyNode) {
	if n.Children == nil {
		n.Children = []*HierarchyNode{}
	}

	n.Children = append(n.Children, child)
}

// CloneBranch copies the node's own fields into a fresh branch without
// children.
func (n *HierarchyNode) CloneBranch() *HierarchyNode {
	return &HierarchyNode{
		UID:      n.UID,
		Name:     n.Name,
		Status:   n.Status,
		Children: []*HierarchyNode{},
		Extra:    cloneExtra(n.Extra),
	}
}

// Clone deep-copies the node and its subtree.
func (n *HierarchyNode) Clone() *HierarchyNode {
	clone := &HierarchyNode{
		UID:    n.UID,
		Name:   n.Name,
		Status: n.Status,
		Extra:  cloneExtra(n.Extra),
	}

	if n.Children != nil {
		clone.Children = make([]*HierarchyNode, 0, len(n.Children))
		for _, child := range n.Children {
			clone.Children = append(clone.Children, child.Clone())
		}
	}

	return clone
}

// Walk visits the node and its descendants depth-first. depth is 0 for n.
func (n *HierarchyNode) Walk(fn func(node *HierarchyNode, depth int)) {
	n.walk(fn, 0)
}

func (n *HierarchyNode) walk(fn func(node *HierarchyNode, depth int), depth int) {
	fn(n, depth)

	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// LeafCount returns the number of leaves below n.
func (n *HierarchyNode) LeafCount() int {
	count := 0

	n.Walk(func(node *HierarchyNode, _ int) {
		if node.IsLeaf() {
			count++
		}
	})

	return count
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *HierarchyNode) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if err := takeString(fields, "uid", &n.UID); err != nil {
		return err
	}

	if err := takeString(fields, "name", &n.Name); err != nil {
		return err
	}

	var status string
	if err := takeString(fields, "status", &status); err != nil {
		return err
	}

	n.Status = Status(status)

	if raw, ok := fields["children"]; ok {
		var children []*HierarchyNode
		if err := json.Unmarshal(raw, &children); err != nil {
			return fmt.Errorf("children of %q: %w", n.UID, err)
		}

		if children == nil {
			children = []*HierarchyNode{}
		}

		n.Children = children

		delete(fields, "children")
	}

	if len(fields) > 0 {
		n.Extra = fields
	}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (n HierarchyNode) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Extra)+4)
	for key, value := range n.Extra {
		out[key] = value
	}

	out["uid"] = n.UID
	out["name"] = n.Name

	if n.Status != "" {
		out["status"] = n.Status
	}

	if n.Children != nil {
		out["children"] = n.Children
	}

	return json.Marshal(out)
}

func takeString(fields map[string]json.RawMessage, key string, dst *string) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}

	delete(fields, key)

	if string(raw) == "null" {
		return nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}

	return nil
}

func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}

	clone := make(map[string]json.RawMessage, len(extra))
	for key, value := range extra {
		clone[key] = append(json.RawMessage(nil), value...)
	}

	return clone
}
