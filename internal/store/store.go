// Package store normalizes the flat node list of a tree into lookup indices.
// A Store is a pure function of its input: building one never mutates the
// source slice, and all lookups tolerate dangling references.
package store

import "github.com/meowlet/family-tree-fe/internal/model"

// Store indexes a tree's nodes by id and by parent.
type Store struct {
	byID             map[string]*model.Node
	childrenByParent map[string][]*model.Node
	order            []string // insertion order of surviving ids
}

// New builds a Store from the raw node sequence as fetched. Duplicate ids are
// resolved last-write-wins; the duplicate keeps its original position.
func New(nodes []model.Node) *Store {
	s := &Store{
		byID:             make(map[string]*model.Node, len(nodes)),
		childrenByParent: make(map[string][]*model.Node),
	}
	for i := range nodes {
		n := nodes[i] // copy, the store owns its nodes
		if _, seen := s.byID[n.ID]; !seen {
			s.order = append(s.order, n.ID)
		}
		s.byID[n.ID] = &n
	}
	for _, id := range s.order {
		n := s.byID[id]
		if n.ParentNodeID != "" {
			s.childrenByParent[n.ParentNodeID] = append(s.childrenByParent[n.ParentNodeID], n)
		}
	}
	return s
}

// Node returns the node with the given id, or nil.
func (s *Store) Node(id string) *model.Node {
	if s == nil || id == "" {
		return nil
	}
	return s.byID[id]
}

// Children returns the nodes whose parent is parentID, in source order.
// No children is an empty slice, never an error.
func (s *Store) Children(parentID string) []*model.Node {
	if s == nil {
		return nil
	}
	return s.childrenByParent[parentID]
}

// Spouse resolves a node's spouse. It returns nil when the node has no spouse
// set, when the reference dangles, or when the pairing is asymmetric; a broken
// pairing renders as unpaired rather than failing.
func (s *Store) Spouse(n *model.Node) *model.Node {
	if s == nil || n == nil || n.SpouseID == "" {
		return nil
	}
	sp := s.byID[n.SpouseID]
	if sp == nil || sp.SpouseID != n.ID {
		return nil
	}
	return sp
}

// Len is the number of distinct nodes in the store.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IDs returns every node id in insertion order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All returns every node in insertion order.
func (s *Store) All() []*model.Node {
	if s == nil {
		return nil
	}
	out := make([]*model.Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
