package main

import (
	"context"
	"errors"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/meowlet/family-tree-fe/internal/compose"
	"github.com/meowlet/family-tree-fe/internal/errs"
	"github.com/meowlet/family-tree-fe/internal/model"
	"github.com/meowlet/family-tree-fe/internal/treeview"
)

// TreeView renders one family tree and hosts its interaction state. All data
// and authorization logic lives in the controller; this component translates
// browser events into controller calls and draws whatever the controller
// holds.
type TreeView struct {
	app.Compo

	treeID string
	ctrl   *treeview.Controller

	errMsg  string // page-level load failure
	formErr string // mutation failure, shown inside the open modal

	// add/edit form fields local to the view
	formGender   bool
	formBirth    string
	formDeath    string
	formMarriage string
	newUserMode  bool
	newUserName  string
	newUserBio   string
	newUserTown  string
}

func (v *TreeView) OnMount(ctx app.Context) { v.loadFromURL(ctx) }
func (v *TreeView) OnNav(ctx app.Context)   { v.loadFromURL(ctx) }

func (v *TreeView) loadFromURL(ctx app.Context) {
	path := ctx.Page().URL().Path
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "tree" {
		v.treeID = parts[1]
	}
	if v.treeID == "" {
		return
	}
	v.ctrl = treeview.New(backend, v.treeID)
	v.load(ctx)
}

func (v *TreeView) load(ctx app.Context) {
	ctrl := v.ctrl
	ctx.Async(func() {
		err := ctrl.Load(context.Background())
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				v.fail(ctx, err, true)
				return
			}
			v.errMsg = ""
			if !ctrl.HasRoot() {
				ctrl.OpenRootCreation()
			}
		})
	})
}

// mutate runs one blocking controller operation off the render path. The
// controller refuses overlapping mutations on its own; the triggering
// control is also disabled through ctrl.Busy().
func (v *TreeView) mutate(ctx app.Context, op func(context.Context) error) {
	ctx.Async(func() {
		err := op(context.Background())
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				v.fail(ctx, err, false)
				return
			}
			v.formErr = ""
			v.resetFormFields()
		})
	})
}

func (v *TreeView) fail(ctx app.Context, err error, pageLevel bool) {
	if errors.Is(err, errs.ErrUnauthorized) {
		ctx.Navigate("/signin")
		return
	}
	app.Log("tree view:", err)
	if pageLevel {
		v.errMsg = err.Error()
	} else {
		v.formErr = err.Error()
	}
}

func (v *TreeView) resetFormFields() {
	v.formGender = false
	v.formBirth = ""
	v.formDeath = ""
	v.formMarriage = ""
	v.newUserMode = false
	v.newUserName = ""
	v.newUserBio = ""
	v.newUserTown = ""
}

// ---- event handlers ----

func (v *TreeView) onAddClick(nodeID string) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		v.resetFormFields()
		v.formErr = ""
		v.ctrl.OpenAdd(nodeID)
	}
}

func (v *TreeView) onEditClick(nodeID string) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		v.resetFormFields()
		v.formErr = ""
		v.ctrl.OpenEdit(nodeID)
		if n := v.ctrl.Node(nodeID); n != nil {
			v.formGender = n.Gender
			v.formBirth = n.BirthDate
			v.formDeath = n.DeathDate
			v.formMarriage = n.MarriageDate
		}
	}
}

func (v *TreeView) onSpouseClick(nodeID string) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		v.resetFormFields()
		v.formErr = ""
		v.ctrl.OpenSpouse(nodeID)
	}
}

func (v *TreeView) onDeleteClick(nodeID string) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		if !app.Window().Call("confirm", "Are you sure you want to delete this node?").Bool() {
			return
		}
		v.mutate(ctx, func(c context.Context) error {
			return v.ctrl.Delete(c, nodeID)
		})
	}
}

func (v *TreeView) onCancelForm(ctx app.Context, e app.Event) {
	v.ctrl.Close()
	v.formErr = ""
	v.resetFormFields()
}

func (v *TreeView) onSearchInput(ctx app.Context, e app.Event) {
	q := e.Get("target").Get("value").String()
	v.ctrl.SetQuery(q)
	if q == "" {
		return
	}
	ctrl := v.ctrl
	ctx.Async(func() {
		if err := ctrl.Search(context.Background()); err != nil {
			app.Log("user search:", err)
		}
		ctx.Dispatch(func(app.Context) {})
	})
}

// ---- render ----

func (v *TreeView) Render() app.UI {
	if v.ctrl == nil || (!v.ctrl.Loaded() && v.errMsg == "") {
		return app.Div().Class("loading").Text("Loading...")
	}
	if v.errMsg != "" {
		return app.Div().Class("error").Text(v.errMsg)
	}

	ctrl := v.ctrl
	return app.Div().Class("tree-container").Body(
		&Navbar{},
		app.H1().Text(ctrl.TreeInfo().Name),
		app.P().Class("tree-description").Text(ctrl.TreeInfo().Description),

		app.If(ctrl.HasRoot(), func() app.UI {
			return v.renderNode(ctrl.Root(), true)
		}).Else(func() app.UI {
			// no root yet: the add form runs inline in create-root mode
			return app.Div().Class("root-creation").Body(
				app.H2().Text("Start this tree"),
				v.renderAddForm(),
			)
		}),

		app.If(ctrl.HasRoot() && ctrl.Form() == treeview.FormAdd, func() app.UI {
			return v.modal(v.renderAddForm())
		}),
		app.If(ctrl.Form() == treeview.FormEdit, func() app.UI {
			return v.modal(v.renderEditForm())
		}),
		app.If(ctrl.Form() == treeview.FormSpouse, func() app.UI {
			return v.modal(v.renderSpouseForm())
		}),
	)
}

func (v *TreeView) modal(content app.UI) app.UI {
	return app.Div().Class("modal").Body(
		app.Div().Class("modal-content").Body(content),
	)
}

// renderNode draws one render-tree slot: the person, the paired spouse, and
// the children below. direct tells whether this node descends from the
// viewer's own grant, which gates the add-child button like the hover menu.
func (v *TreeView) renderNode(rn *compose.RenderNode, direct bool) app.UI {
	ctrl := v.ctrl
	n := rn.Node

	showAdd := ctrl.FullAccess() || (direct && ctrl.Allows(n.ID))
	showSpouse := ctrl.FullAccess() || (rn.Spouse == nil && ctrl.Allows(n.ID))

	return app.Div().Class("node-container").Body(
		app.Div().Class("node-row").Body(
			v.renderPerson(n, personButtons{add: showAdd, spouse: showSpouse, del: true, edit: true}),
			app.If(rn.Spouse != nil, func() app.UI {
				return app.Div().Class("spouse-pair").Body(
					app.Div().Class("spouse-connector"),
					v.renderPerson(rn.Spouse, personButtons{del: true, edit: true}),
				)
			}),
		),
		app.If(len(rn.Children) > 0, func() app.UI {
			childDirect := ctrl.FullAccess() || ctrl.Allows(n.ID)
			return app.Div().Class("children-container").Body(
				app.Range(rn.Children).Slice(func(i int) app.UI {
					return v.renderNode(rn.Children[i], childDirect)
				}),
			)
		}),
	)
}

type personButtons struct {
	edit   bool
	add    bool
	spouse bool
	del    bool
}

func (v *TreeView) renderPerson(n *model.Node, btns personButtons) app.UI {
	ctrl := v.ctrl

	cls := "node"
	if n.Gender {
		cls += " male-node"
	} else {
		cls += " female-node"
	}
	switch n.Kind() {
	case model.TombstonedNode:
		cls += " tombstoned"
	case model.LiveNode:
	}

	hovered := ctrl.HoverID() == n.ID
	canEdit := ctrl.Allows(n.ID)

	return app.Div().
		Class(cls).
		OnMouseEnter(func(ctx app.Context, e app.Event) { ctrl.Hover(n.ID) }).
		OnMouseLeave(func(ctx app.Context, e app.Event) { ctrl.Hover("") }).
		Body(
			app.A().Href("/node/"+n.ID).Class("node-name").Text(n.DisplayName()),
			app.If(hovered && canEdit, func() app.UI {
				return app.Div().Class("button-container").Body(
					app.If(btns.edit && n.Kind() == model.LiveNode, func() app.UI {
						return app.Button().Class("edit-button").Title("Edit").Text("✎").
							Disabled(ctrl.Busy()).
							OnClick(v.onEditClick(n.ID))
					}),
					app.If(btns.add, func() app.UI {
						return app.Button().Class("add-button").Title("Add child").Text("+").
							Disabled(ctrl.Busy()).
							OnClick(v.onAddClick(n.ID))
					}),
					app.If(btns.spouse, func() app.UI {
						return app.Button().Class("add-spouse-button").Title("Add spouse").Text("♥").
							Disabled(ctrl.Busy()).
							OnClick(v.onSpouseClick(n.ID))
					}),
					app.If(btns.del, func() app.UI {
						return app.Button().Class("delete-button").Title("Delete").Text("🗑").
							Disabled(ctrl.Busy()).
							OnClick(v.onDeleteClick(n.ID))
					}),
				)
			}),
		)
}
