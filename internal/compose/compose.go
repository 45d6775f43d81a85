// Package compose rebuilds the hierarchical family structure from the flat
// node store, producing the renderable tree the view walks.
package compose

import (
	"github.com/meowlet/family-tree-fe/internal/model"
	"github.com/meowlet/family-tree-fe/internal/store"
)

// RenderNode is one person slot in the render tree: the node, its resolved
// spouse (nil when unpaired, dangling, or asymmetric), and the children in
// source order.
type RenderNode struct {
	Node     *model.Node
	Spouse   *model.Node
	Children []*RenderNode
}

// Compose builds the render tree rooted at rootID. ok is false when rootID
// does not resolve to a node, which is distinct from an empty tree: the
// caller presents the root-creation flow instead of an error.
//
// The walk is bounded by a visited set so malformed parent links (the server
// gives no acyclicity guarantee the client can see) terminate instead of
// recursing forever.
func Compose(st *store.Store, rootID string) (root *RenderNode, ok bool) {
	n := st.Node(rootID)
	if n == nil {
		return nil, false
	}
	visited := make(map[string]struct{}, st.Len())
	return build(st, n, visited), true
}

func build(st *store.Store, n *model.Node, visited map[string]struct{}) *RenderNode {
	visited[n.ID] = struct{}{}
	rn := &RenderNode{
		Node:   n,
		Spouse: st.Spouse(n),
	}
	for _, child := range st.Children(n.ID) {
		if _, seen := visited[child.ID]; seen {
			continue
		}
		rn.Children = append(rn.Children, build(st, child, visited))
	}
	return rn
}

// Count returns the number of nodes in the render tree (spouses excluded),
// mostly useful in tests and diagnostics.
func Count(rn *RenderNode) int {
	if rn == nil {
		return 0
	}
	total := 1
	for _, c := range rn.Children {
		total += Count(c)
	}
	return total
}
