// Package treeview owns the transient state of one tree view and orchestrates
// every mutation against the backend. It is the only layer that issues writes.
//
// A Controller is driven from the UI event loop: synchronous transitions
// (opening forms, hover, selection) run inside event handlers, blocking
// operations (Load, the Submit* family, Delete) run inside the view's async
// block. WebAssembly executes both on the same thread; the busy flag and the
// epoch counter are what keep interleavings sane, not locks.
package treeview

import (
	"context"
	"fmt"

	"github.com/meowlet/family-tree-fe/internal/api"
	"github.com/meowlet/family-tree-fe/internal/authz"
	"github.com/meowlet/family-tree-fe/internal/compose"
	"github.com/meowlet/family-tree-fe/internal/errs"
	"github.com/meowlet/family-tree-fe/internal/model"
	"github.com/meowlet/family-tree-fe/internal/store"
)

// API is the slice of the REST client the controller needs. *api.Client
// satisfies it; tests substitute a fake.
type API interface {
	Me(ctx context.Context) (model.User, error)
	Tree(ctx context.Context, treeID string) (model.TreeData, error)
	SearchUsers(ctx context.Context, query string) ([]model.User, error)
	SignUpTemp(ctx context.Context, p api.TempUserParams) (string, error)
	CreateNode(ctx context.Context, p api.NodeParams) (model.Node, error)
	UpdateNode(ctx context.Context, nodeID string, u api.NodeUpdate) error
	PairSpouse(ctx context.Context, firstID, secondID, marriageDate string) error
	DeleteNode(ctx context.Context, nodeID string) error
	ForceDeleteNode(ctx context.Context, nodeID string) error
}

// FormKind is the single explicit value describing which modal, if any, is
// open. The kinds are mutually exclusive by construction.
type FormKind int

const (
	FormNone FormKind = iota
	FormAdd
	FormEdit
	FormSpouse
)

// Controller holds one tree view's data and transient UI state.
type Controller struct {
	api    API
	treeID string

	viewer  model.User
	tree    model.FamilyTree
	store   *store.Store
	auth    *authz.Set
	root    *compose.RenderNode
	hasRoot bool
	loaded  bool

	form     FormKind
	targetID string // parent node for FormAdd, subject node for FormEdit/FormSpouse
	hoverID  string

	// search-as-you-type state shared by the open form
	query          string
	results        []model.User
	selectedUserID string
	marriageDate   string

	busy  bool
	epoch int // bumped whenever the open form is discarded; stales late responses
}

// New creates a controller for one tree.
func New(a API, treeID string) *Controller {
	return &Controller{api: a, treeID: treeID}
}

// ---- read side ----

func (c *Controller) Loaded() bool               { return c.loaded }
func (c *Controller) Viewer() model.User         { return c.viewer }
func (c *Controller) TreeInfo() model.FamilyTree { return c.tree }
func (c *Controller) Root() *compose.RenderNode  { return c.root }

// HasRoot distinguishes "tree with nodes" from "root still to be created".
func (c *Controller) HasRoot() bool { return c.hasRoot }

// Node looks a node up by id.
func (c *Controller) Node(id string) *model.Node { return c.store.Node(id) }

// Allows reports whether the viewer may mutate the node.
func (c *Controller) Allows(nodeID string) bool { return c.auth.Allows(nodeID) }

// HasUser reports whether some node in the tree already references userID.
// The edit form uses it to keep one account from holding two placements.
func (c *Controller) HasUser(userID string) bool {
	if userID == "" {
		return false
	}
	for _, n := range c.store.All() {
		if n.User != nil && n.User.ID == userID {
			return true
		}
	}
	return false
}

// FullAccess reports creator/admin access over the whole tree.
func (c *Controller) FullAccess() bool { return c.auth.Full() }

func (c *Controller) Form() FormKind      { return c.form }
func (c *Controller) TargetID() string    { return c.targetID }
func (c *Controller) Target() *model.Node { return c.store.Node(c.targetID) }

func (c *Controller) HoverID() string          { return c.hoverID }
func (c *Controller) Query() string            { return c.query }
func (c *Controller) Results() []model.User    { return c.results }
func (c *Controller) SelectedUserID() string   { return c.selectedUserID }
func (c *Controller) MarriageDate() string     { return c.marriageDate }

// Busy reports a mutation in flight; the triggering control stays disabled
// while it is set.
func (c *Controller) Busy() bool { return c.busy }

// ---- synchronous transitions ----

// Hover sets the hovered node; empty clears it.
func (c *Controller) Hover(nodeID string) { c.hoverID = nodeID }

// OpenAdd opens the add-child form under parentID. Offered only for
// authorized parents, but re-checked here.
func (c *Controller) OpenAdd(parentID string) {
	if !c.auth.Allows(parentID) && !c.auth.Full() {
		return
	}
	c.discardForm()
	c.form = FormAdd
	c.targetID = parentID
}

// OpenRootCreation opens the add form in create-root mode. Only meaningful
// while the tree has no root.
func (c *Controller) OpenRootCreation() {
	if c.hasRoot {
		return
	}
	c.discardForm()
	c.form = FormAdd
	c.targetID = ""
}

// OpenEdit opens the edit form over nodeID.
func (c *Controller) OpenEdit(nodeID string) {
	if !c.auth.Allows(nodeID) {
		return
	}
	c.discardForm()
	c.form = FormEdit
	c.targetID = nodeID
	if n := c.store.Node(nodeID); n != nil && n.User != nil {
		c.selectedUserID = n.User.ID
	}
}

// OpenSpouse opens the pair-spouse form for nodeID.
func (c *Controller) OpenSpouse(nodeID string) {
	if !c.auth.Allows(nodeID) {
		return
	}
	c.discardForm()
	c.form = FormSpouse
	c.targetID = nodeID
}

// Close discards the open form and all pending local edits. Any response
// still in flight for the discarded form is dropped when it lands.
func (c *Controller) Close() { c.discardForm() }

func (c *Controller) discardForm() {
	c.form = FormNone
	c.targetID = ""
	c.query = ""
	c.results = nil
	c.selectedUserID = ""
	c.marriageDate = ""
	c.epoch++
}

// SetQuery updates the open form's search text. Clearing the text also
// clears stale results immediately, with no request.
func (c *Controller) SetQuery(q string) {
	c.query = q
	if q == "" {
		c.results = nil
	}
}

// SelectUser picks a search result.
func (c *Controller) SelectUser(userID string) { c.selectedUserID = userID }

// SetMarriageDate sets the pending marriage date ("" for none).
func (c *Controller) SetMarriageDate(d string) { c.marriageDate = d }

// ---- blocking operations ----

// Load fetches the viewer identity and the tree, then rebuilds the store,
// the authorization set, and the render tree.
func (c *Controller) Load(ctx context.Context) error {
	me, err := c.api.Me(ctx)
	if err != nil {
		return err
	}
	c.viewer = me
	return c.refresh(ctx)
}

// refresh refetches the tree and recomputes everything derived from it.
// Derived state is replaced wholesale; there is no incremental merge.
func (c *Controller) refresh(ctx context.Context) error {
	td, err := c.api.Tree(ctx, c.treeID)
	if err != nil {
		return err
	}
	c.tree = td.TreeInfo
	c.store = store.New(td.TreeNodes)
	c.auth = authz.Resolve(c.store, c.viewer.ID, c.tree)
	c.root, c.hasRoot = compose.Compose(c.store, c.tree.RootNodeID)
	c.loaded = true
	return nil
}

// Search runs the user search for the current query. If the form was closed
// or retyped while the request was out, the late response is dropped.
func (c *Controller) Search(ctx context.Context) error {
	q := c.query
	if q == "" {
		return nil
	}
	epoch := c.epoch
	users, err := c.api.SearchUsers(ctx, q)
	if err != nil {
		return err
	}
	if epoch != c.epoch || c.query != q {
		return nil
	}
	c.results = users
	return nil
}

// begin marks a mutation in flight. It must run synchronously in the event
// handler that triggered the mutation, before any await point, so a second
// click can never race past it.
func (c *Controller) begin() error {
	if c.busy {
		return errs.ErrBusy
	}
	c.busy = true
	return nil
}

func (c *Controller) finish() { c.busy = false }

// Person is the add-form payload: either an existing user picked from
// search, or a brand-new placeholder person to invent.
type Person struct {
	ExistingUserID string
	NewUser        *api.TempUserParams
}

// NodeFields are the person-independent node attributes shared by the add
// and edit forms.
type NodeFields struct {
	Gender       bool
	BirthDate    string
	DeathDate    string
	SpouseID     string
	MarriageDate string
}

// SubmitAdd creates a node under the form's parent (or the tree's
// pre-assigned root when in root-creation mode).
//
// When the person is brand new this is a two-step sequence: create the
// placeholder user, then the node. The two are not atomic; if the node call
// fails the placeholder user is left behind, and the error says so.
func (c *Controller) SubmitAdd(ctx context.Context, person Person, fields NodeFields) error {
	if c.form != FormAdd {
		return nil
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()
	epoch := c.epoch

	userID := person.ExistingUserID
	if person.NewUser != nil {
		id, err := c.api.SignUpTemp(ctx, *person.NewUser)
		if err != nil {
			return err
		}
		userID = id
	}

	p := api.NodeParams{
		FamilyTreeID: c.treeID,
		UserID:       userID,
		ParentNodeID: c.targetID,
		Gender:       fields.Gender,
		BirthDate:    fields.BirthDate,
		DeathDate:    fields.DeathDate,
		SpouseID:     fields.SpouseID,
		MarriageDate: fields.MarriageDate,
	}
	if c.targetID == "" && !c.hasRoot {
		p.NodeID = c.tree.RootNodeID
	}

	if _, err := c.api.CreateNode(ctx, p); err != nil {
		if person.NewUser != nil {
			return fmt.Errorf("person record was created but adding the node failed: %w", err)
		}
		return err
	}
	return c.settle(ctx, epoch)
}

// SubmitEdit sends the edit form as a partial update of the target node.
func (c *Controller) SubmitEdit(ctx context.Context, fields NodeFields) error {
	if c.form != FormEdit {
		return nil
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()
	epoch := c.epoch

	err := c.api.UpdateNode(ctx, c.targetID, api.NodeUpdate{
		UserID:       c.selectedUserID,
		Gender:       fields.Gender,
		BirthDate:    fields.BirthDate,
		DeathDate:    fields.DeathDate,
		SpouseID:     fields.SpouseID,
		MarriageDate: fields.MarriageDate,
	})
	if err != nil {
		return err
	}
	return c.settle(ctx, epoch)
}

// SubmitSpouse pairs the form's target with the selected user's node in a
// single request; the server performs the symmetric update.
func (c *Controller) SubmitSpouse(ctx context.Context) error {
	if c.form != FormSpouse || c.targetID == "" || c.selectedUserID == "" {
		return nil
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()
	epoch := c.epoch

	if err := c.api.PairSpouse(ctx, c.targetID, c.selectedUserID, c.marriageDate); err != nil {
		return err
	}
	return c.settle(ctx, epoch)
}

// Delete removes a node, picking the variant from the node's current state:
// soft delete while a user is attached, force delete once tombstoned.
func (c *Controller) Delete(ctx context.Context, nodeID string) error {
	n := c.store.Node(nodeID)
	if n == nil {
		return errs.ErrNotFound
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()
	epoch := c.epoch

	var err error
	switch n.Kind() {
	case model.LiveNode:
		err = c.api.DeleteNode(ctx, nodeID)
	case model.TombstonedNode:
		err = c.api.ForceDeleteNode(ctx, nodeID)
	}
	if err != nil {
		return err
	}
	return c.settle(ctx, epoch)
}

// settle finalizes a successful mutation: reset the form, refetch. When the
// view moved on mid-flight (epoch changed) the result is simply dropped.
func (c *Controller) settle(ctx context.Context, epoch int) error {
	if epoch != c.epoch {
		return nil
	}
	c.discardForm()
	return c.refresh(ctx)
}
