package treeview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meowlet/family-tree-fe/internal/api"
	"github.com/meowlet/family-tree-fe/internal/errs"
	"github.com/meowlet/family-tree-fe/internal/model"
)

type fakeAPI struct {
	me        model.User
	meErr     error
	tree      model.TreeData
	treeErr   error
	treeCalls int

	searchIn  []string
	searchOut []model.User
	searchErr error
	onSearch  func()

	tempIn  []api.TempUserParams
	tempOut string
	tempErr error

	createIn  []api.NodeParams
	createErr error

	updateID  string
	updateIn  *api.NodeUpdate
	updateErr error

	pairIn  []string // firstID, secondID, marriageDate triples flattened
	pairErr error

	deleted      []string
	forceDeleted []string
	deleteErr    error

	// onCreate runs inside CreateNode, before returning; lets tests close
	// the form "while the request is in flight".
	onCreate func()
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) Me(context.Context) (model.User, error) { return f.me, f.meErr }

func (f *fakeAPI) Tree(context.Context, string) (model.TreeData, error) {
	f.treeCalls++
	return f.tree, f.treeErr
}

func (f *fakeAPI) SearchUsers(_ context.Context, q string) ([]model.User, error) {
	f.searchIn = append(f.searchIn, q)
	if f.onSearch != nil {
		f.onSearch()
	}
	return f.searchOut, f.searchErr
}

func (f *fakeAPI) SignUpTemp(_ context.Context, p api.TempUserParams) (string, error) {
	f.tempIn = append(f.tempIn, p)
	return f.tempOut, f.tempErr
}

func (f *fakeAPI) CreateNode(_ context.Context, p api.NodeParams) (model.Node, error) {
	f.createIn = append(f.createIn, p)
	if f.onCreate != nil {
		f.onCreate()
	}
	return model.Node{ID: "new-node"}, f.createErr
}

func (f *fakeAPI) UpdateNode(_ context.Context, id string, u api.NodeUpdate) error {
	f.updateID, f.updateIn = id, &u
	return f.updateErr
}

func (f *fakeAPI) PairSpouse(_ context.Context, a, b, d string) error {
	f.pairIn = append(f.pairIn, a, b, d)
	return f.pairErr
}

func (f *fakeAPI) DeleteNode(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeAPI) ForceDeleteNode(_ context.Context, id string) error {
	f.forceDeleted = append(f.forceDeleted, id)
	return f.deleteErr
}

func liveNode(id, parent, userID string) model.Node {
	return model.Node{
		ID:           id,
		FamilyTreeID: "t1",
		ParentNodeID: parent,
		User:         &model.User{ID: userID, FullName: "User " + userID},
	}
}

func familyFixture() model.TreeData {
	return model.TreeData{
		TreeInfo: model.FamilyTree{
			ID:            "t1",
			Name:          "Ours",
			CreatorUserID: "creator",
			RootNodeID:    "R",
		},
		TreeNodes: []model.Node{
			liveNode("R", "", "user-r"),
			liveNode("A", "R", "user-a"),
			liveNode("B", "R", "user-b"),
			{ID: "T", FamilyTreeID: "t1", ParentNodeID: "R"}, // tombstoned
		},
	}
}

func loadedController(t *testing.T, f *fakeAPI) *Controller {
	t.Helper()
	c := New(f, "t1")
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestLoad_BuildsDerivedState(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "user-a"}, tree: familyFixture()}
	c := loadedController(t, f)

	assert.True(t, c.Loaded())
	assert.True(t, c.HasRoot())
	require.NotNil(t, c.Root())
	assert.Equal(t, "R", c.Root().Node.ID)
	assert.False(t, c.FullAccess())
	assert.True(t, c.Allows("A"))
	assert.False(t, c.Allows("B"))
}

func TestLoad_MissingRootEntersRootCreationMode(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}}
	f.tree = model.TreeData{
		TreeInfo: model.FamilyTree{ID: "t1", CreatorUserID: "creator", RootNodeID: "pre-root"},
	}
	c := loadedController(t, f)

	assert.True(t, c.Loaded())
	assert.False(t, c.HasRoot())
	assert.Nil(t, c.Root())

	c.OpenRootCreation()
	assert.Equal(t, FormAdd, c.Form())
	assert.Empty(t, c.TargetID())
}

func TestOpenForms_AuthorizationGate(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "user-a"}, tree: familyFixture()}
	c := loadedController(t, f)

	c.OpenEdit("B") // not authorized
	assert.Equal(t, FormNone, c.Form())

	c.OpenEdit("A")
	assert.Equal(t, FormEdit, c.Form())
	assert.Equal(t, "A", c.TargetID())
	assert.Equal(t, "user-a", c.SelectedUserID())

	c.Close()
	assert.Equal(t, FormNone, c.Form())
	assert.Empty(t, c.SelectedUserID())
}

func TestSubmitAdd_ExistingUser(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}, tree: familyFixture()}
	c := loadedController(t, f)

	c.OpenAdd("A")
	c.SelectUser("user-x")
	err := c.SubmitAdd(context.Background(), Person{ExistingUserID: "user-x"}, NodeFields{
		Gender:    true,
		BirthDate: "2001-05-06",
	})
	require.NoError(t, err)

	require.Len(t, f.createIn, 1)
	p := f.createIn[0]
	assert.Equal(t, "t1", p.FamilyTreeID)
	assert.Equal(t, "user-x", p.UserID)
	assert.Equal(t, "A", p.ParentNodeID)
	assert.Empty(t, p.NodeID)
	assert.Empty(t, f.tempIn, "no temp signup for an existing user")

	assert.Equal(t, FormNone, c.Form(), "success resets to idle")
	assert.Equal(t, 2, f.treeCalls, "success triggers a refetch")
}

func TestSubmitAdd_NewPersonTwoStep(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}, tree: familyFixture(), tempOut: "temp-user-1"}
	c := loadedController(t, f)

	c.OpenAdd("A")
	err := c.SubmitAdd(context.Background(), Person{
		NewUser: &api.TempUserParams{FullName: "Great Aunt", HomeTown: "Hue"},
	}, NodeFields{})
	require.NoError(t, err)

	require.Len(t, f.tempIn, 1)
	assert.Equal(t, "Great Aunt", f.tempIn[0].FullName)
	require.Len(t, f.createIn, 1)
	assert.Equal(t, "temp-user-1", f.createIn[0].UserID)
}

func TestSubmitAdd_NodeFailureAfterUserCreationReportsOrphan(t *testing.T) {
	f := &fakeAPI{
		me:        model.User{ID: "creator"},
		tree:      familyFixture(),
		tempOut:   "temp-user-1",
		createErr: errors.New("server exploded"),
	}
	c := loadedController(t, f)

	c.OpenAdd("A")
	err := c.SubmitAdd(context.Background(), Person{NewUser: &api.TempUserParams{FullName: "X"}}, NodeFields{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "person record was created")
	assert.ErrorContains(t, err, "server exploded")

	assert.Equal(t, FormAdd, c.Form(), "failure leaves state unchanged")
	assert.Equal(t, 1, f.treeCalls, "no refetch on failure")
}

func TestSubmitAdd_RootCreationUsesPreassignedID(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}}
	f.tree = model.TreeData{
		TreeInfo: model.FamilyTree{ID: "t1", CreatorUserID: "creator", RootNodeID: "pre-root"},
	}
	c := loadedController(t, f)

	c.OpenRootCreation()
	require.NoError(t, c.SubmitAdd(context.Background(), Person{ExistingUserID: "u1"}, NodeFields{}))

	require.Len(t, f.createIn, 1)
	assert.Equal(t, "pre-root", f.createIn[0].NodeID)
	assert.Empty(t, f.createIn[0].ParentNodeID)
}

func TestSubmitAdd_LateResponseAfterCloseIsDropped(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}, tree: familyFixture()}
	c := loadedController(t, f)

	c.OpenAdd("A")
	f.onCreate = func() { c.Close() } // form closes while the request is out

	require.NoError(t, c.SubmitAdd(context.Background(), Person{ExistingUserID: "u1"}, NodeFields{}))
	assert.Equal(t, 1, f.treeCalls, "dropped result must not refetch")
}

func TestSubmitEdit_PartialUpdate(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "user-a"}, tree: familyFixture()}
	c := loadedController(t, f)

	c.OpenEdit("A")
	c.SelectUser("user-y")
	err := c.SubmitEdit(context.Background(), NodeFields{
		Gender:    false,
		BirthDate: "1980-03-04",
		DeathDate: "", // stays empty, client transmits null
	})
	require.NoError(t, err)

	assert.Equal(t, "A", f.updateID)
	require.NotNil(t, f.updateIn)
	assert.Equal(t, "user-y", f.updateIn.UserID)
	assert.Equal(t, "1980-03-04", f.updateIn.BirthDate)
	assert.Equal(t, FormNone, c.Form())
	assert.Equal(t, 2, f.treeCalls)
}

func TestSubmitSpouse(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "user-a"}, tree: familyFixture()}
	c := loadedController(t, f)

	c.OpenSpouse("A")
	c.SelectUser("node-of-spouse")
	c.SetMarriageDate("2015-06-07")
	require.NoError(t, c.SubmitSpouse(context.Background()))

	assert.Equal(t, []string{"A", "node-of-spouse", "2015-06-07"}, f.pairIn)
	assert.Equal(t, FormNone, c.Form())
	assert.Empty(t, c.MarriageDate())
}

func TestSubmitSpouse_WithoutSelectionIsNoop(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "user-a"}, tree: familyFixture()}
	c := loadedController(t, f)

	c.OpenSpouse("A")
	require.NoError(t, c.SubmitSpouse(context.Background()))
	assert.Empty(t, f.pairIn)
}

func TestDelete_PicksVariantFromNodeState(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}, tree: familyFixture()}
	c := loadedController(t, f)

	require.NoError(t, c.Delete(context.Background(), "A"))
	assert.Equal(t, []string{"A"}, f.deleted)
	assert.Empty(t, f.forceDeleted)

	require.NoError(t, c.Delete(context.Background(), "T"))
	assert.Equal(t, []string{"T"}, f.forceDeleted, "tombstoned node takes the force endpoint")
	assert.Equal(t, []string{"A"}, f.deleted)
}

func TestDelete_UnknownNode(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}, tree: familyFixture()}
	c := loadedController(t, f)

	err := c.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestBusy_BlocksDuplicateSubmission(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}, tree: familyFixture()}
	c := loadedController(t, f)

	c.busy = true // a mutation is in flight
	err := c.Delete(context.Background(), "A")
	assert.ErrorIs(t, err, errs.ErrBusy)
	assert.Empty(t, f.deleted)

	c.busy = false
	require.NoError(t, c.Delete(context.Background(), "A"))
}

func TestSearch_EmptyQueryMakesNoRequest(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}, tree: familyFixture()}
	c := loadedController(t, f)

	c.OpenSpouse("R")
	c.SetQuery("")
	require.NoError(t, c.Search(context.Background()))
	assert.Empty(t, f.searchIn)
	assert.Empty(t, c.Results())
}

func TestSearch_ClearingQueryDropsStaleResults(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}, tree: familyFixture(),
		searchOut: []model.User{{ID: "u9", FullName: "Found"}}}
	c := loadedController(t, f)

	c.OpenSpouse("R")
	c.SetQuery("fo")
	require.NoError(t, c.Search(context.Background()))
	require.Len(t, c.Results(), 1)

	c.SetQuery("")
	assert.Empty(t, c.Results())
}

func TestSearch_LateResponseForOldQueryDropped(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}, tree: familyFixture(),
		searchOut: []model.User{{ID: "u9"}}}
	c := loadedController(t, f)

	c.OpenSpouse("R")
	c.SetQuery("old")
	f.onSearch = func() { c.SetQuery("new") } // user keeps typing mid-request

	require.NoError(t, c.Search(context.Background()))
	assert.Empty(t, c.Results(), "stale response for a retyped query is dropped")
	assert.Equal(t, []string{"old"}, f.searchIn)
}

func TestSearch_LateResponseAfterCloseDropped(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}, tree: familyFixture(),
		searchOut: []model.User{{ID: "u9"}}}
	c := loadedController(t, f)

	c.OpenSpouse("R")
	c.SetQuery("fo")
	f.onSearch = func() { c.Close() }

	require.NoError(t, c.Search(context.Background()))
	assert.Empty(t, c.Results())
}

func TestFailedMutationLeavesDerivedStateIdentical(t *testing.T) {
	f := &fakeAPI{me: model.User{ID: "creator"}, tree: familyFixture(),
		createErr: errors.New("boom")}
	c := loadedController(t, f)

	rootBefore := c.Root()
	allowsBBefore := c.Allows("B")

	c.OpenAdd("A")
	err := c.SubmitAdd(context.Background(), Person{ExistingUserID: "u1"}, NodeFields{})
	require.Error(t, err)

	assert.Same(t, rootBefore, c.Root(), "render tree untouched on failure")
	assert.Equal(t, allowsBBefore, c.Allows("B"))
	assert.Equal(t, 1, f.treeCalls)
}
