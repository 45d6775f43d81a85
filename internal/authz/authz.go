// Package authz computes which nodes of a tree the current viewer may edit.
//
// The result is advisory only: it decides which controls the UI offers, while
// the real access decision is re-made by the API on every mutation. Nothing
// here is a security boundary.
package authz

import (
	"github.com/meowlet/family-tree-fe/internal/model"
	"github.com/meowlet/family-tree-fe/internal/store"
)

// Set is the ephemeral set of editable node ids for one viewer session. It is
// recomputed wholesale whenever the node list or the viewer changes.
type Set struct {
	full bool
	ids  map[string]struct{}
}

// Full reports whether the viewer has full access to the whole tree
// (creator or admin).
func (s *Set) Full() bool { return s != nil && s.full }

// Allows reports whether the viewer may mutate the given node.
func (s *Set) Allows(nodeID string) bool {
	if s == nil {
		return false
	}
	if s.full {
		return true
	}
	_, ok := s.ids[nodeID]
	return ok
}

// Len is the number of explicitly granted node ids.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Resolve computes the authorization set for viewerID over the given tree.
//
// Creator and admins get full access without traversal. Anyone else gets the
// subtree grant rooted at their own node: the node itself, its spouse (a
// terminal grant, the spouse's other relatives are not followed), and every
// descendant through parent links together with each descendant's spouse.
// A viewer with no node in the tree gets an empty set.
func Resolve(st *store.Store, viewerID string, tree model.FamilyTree) *Set {
	if viewerID != "" {
		if tree.CreatorUserID == viewerID {
			return fullSet(st)
		}
		for _, admin := range tree.AdminUserIDs {
			if admin == viewerID {
				return fullSet(st)
			}
		}
	}

	s := &Set{ids: make(map[string]struct{})}
	own := ownNode(st, viewerID)
	if own == nil {
		return s
	}
	grant(st, s, own)
	return s
}

func fullSet(st *store.Store) *Set {
	s := &Set{full: true, ids: make(map[string]struct{}, st.Len())}
	for _, id := range st.IDs() {
		s.ids[id] = struct{}{}
	}
	return s
}

func ownNode(st *store.Store, viewerID string) *model.Node {
	if viewerID == "" {
		return nil
	}
	for _, n := range st.All() {
		if n.User != nil && n.User.ID == viewerID {
			return n
		}
	}
	return nil
}

// grant marks n, its spouse, and recurses into n's children. The visited
// check through s.ids bounds the walk on malformed parent data.
func grant(st *store.Store, s *Set, n *model.Node) {
	if _, seen := s.ids[n.ID]; seen {
		return
	}
	s.ids[n.ID] = struct{}{}
	if n.SpouseID != "" {
		if sp := st.Node(n.SpouseID); sp != nil {
			s.ids[sp.ID] = struct{}{}
		}
	}
	for _, child := range st.Children(n.ID) {
		grant(st, s, child)
	}
}
