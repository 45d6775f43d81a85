// Package model defines the domain entities the client receives from the
// family-tree API. Field tags follow the backend's wire names.
package model

// User is an account record. Nodes reference a User; a node whose User is
// gone is tombstoned but stays in the tree for its descendants.
type User struct {
	ID        string `json:"_id"`
	UserName  string `json:"userName"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// NodeKind discriminates the two node states every render and authorization
// branch has to handle.
type NodeKind int

const (
	// LiveNode has an associated user and is editable as a person.
	LiveNode NodeKind = iota
	// TombstonedNode lost its user to a soft delete; it remains structurally
	// present for descendants and is only eligible for a force delete.
	TombstonedNode
)

// Node is a person's placement within exactly one family tree.
// Date fields are ISO date strings ("2006-01-02"); empty means unset.
type Node struct {
	ID           string `json:"_id"`
	FamilyTreeID string `json:"familyTree"`
	User         *User  `json:"user"`
	ParentNodeID string `json:"parentNode"`
	SpouseID     string `json:"spouse"`
	Gender       bool   `json:"gender"` // true = male, display styling only
	BirthDate    string `json:"birthDate"`
	DeathDate    string `json:"deathDate"`
	MarriageDate string `json:"marriageDate"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// Kind reports whether the node is live or tombstoned.
func (n *Node) Kind() NodeKind {
	if n.User == nil {
		return TombstonedNode
	}
	return LiveNode
}

// DisplayName is the person's name, or a placeholder for tombstoned nodes.
func (n *Node) DisplayName() string {
	if n.User == nil {
		return "(removed)"
	}
	return n.User.FullName
}

// FamilyTree is the tree header record.
type FamilyTree struct {
	ID            string   `json:"_id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	CreatorUserID string   `json:"creator"`
	AdminUserIDs  []string `json:"admin"`
	RootNodeID    string   `json:"rootNode"`
}

// TreeData is the full payload of GET tree/{id}: the header plus the flat
// node list the store, resolver and composer are built from.
type TreeData struct {
	TreeInfo  FamilyTree `json:"treeInfo"`
	TreeNodes []Node     `json:"treeNodes"`
}

// TreeList is the payload of GET tree.
type TreeList struct {
	CreatedTrees []FamilyTree `json:"createdTrees"`
	MemberTrees  []FamilyTree `json:"memberTrees"`
}
