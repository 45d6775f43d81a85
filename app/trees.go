package main

import (
	"context"
	"errors"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/meowlet/family-tree-fe/internal/errs"
	"github.com/meowlet/family-tree-fe/internal/model"
)

// TreeListPage lists the viewer's trees, split into created and member, and
// hosts the create-tree modal.
type TreeListPage struct {
	app.Compo

	trees  model.TreeList
	loaded bool
	errMsg string

	modalOpen   bool
	newName     string
	newDesc     string
	modalErr    string
	submitting  bool
}

func (p *TreeListPage) OnMount(ctx app.Context) { p.load(ctx) }
func (p *TreeListPage) OnNav(ctx app.Context)   { p.load(ctx) }

func (p *TreeListPage) load(ctx app.Context) {
	ctx.Async(func() {
		trees, err := backend.Trees(context.Background())
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				if errors.Is(err, errs.ErrUnauthorized) {
					ctx.Navigate("/signin")
					return
				}
				p.errMsg = err.Error()
				return
			}
			p.trees = trees
			p.loaded = true
			p.errMsg = ""
		})
	})
}

func (p *TreeListPage) onCreate(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if strings.TrimSpace(p.newName) == "" {
		p.modalErr = "Tree name is required"
		return
	}
	if strings.TrimSpace(p.newDesc) == "" {
		p.modalErr = "Tree description is required"
		return
	}
	if p.submitting {
		return
	}
	p.submitting = true

	name, desc := p.newName, p.newDesc
	ctx.Async(func() {
		_, err := backend.CreateTree(context.Background(), name, desc)
		ctx.Dispatch(func(ctx app.Context) {
			p.submitting = false
			if err != nil {
				p.modalErr = err.Error()
				return
			}
			p.modalOpen = false
			p.newName = ""
			p.newDesc = ""
			p.modalErr = ""
			p.load(ctx)
		})
	})
}

func (p *TreeListPage) onDelete(treeID string) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		if !app.Window().Call("confirm", "Are you sure you want to delete this family tree?").Bool() {
			return
		}
		ctx.Async(func() {
			_, err := backend.DeleteTree(context.Background(), treeID)
			ctx.Dispatch(func(ctx app.Context) {
				if err != nil {
					app.Log("delete tree:", err)
					p.errMsg = err.Error()
					return
				}
				p.load(ctx)
			})
		})
	}
}

func (p *TreeListPage) Render() app.UI {
	if p.errMsg != "" {
		return app.Div().Class("error").Text(p.errMsg)
	}
	if !p.loaded {
		return app.Div().Class("loading").Text("Loading...")
	}

	return app.Div().Class("tree-list-container").Body(
		&Navbar{},
		app.Div().Class("header").Body(
			app.H1().Text("My Family Trees"),
			app.Button().Class("create-button").Text("Create New Tree").
				OnClick(func(ctx app.Context, e app.Event) { p.modalOpen = true }),
		),

		app.H2().Text("Created Family Trees"),
		p.renderTrees(p.trees.CreatedTrees, "You don't have any family trees yet."),

		app.H2().Text("Member Family Trees"),
		p.renderTrees(p.trees.MemberTrees, "You don't have any family trees that you are a member of."),

		app.If(p.modalOpen, func() app.UI {
			return p.renderCreateModal()
		}),
	)
}

func (p *TreeListPage) renderTrees(trees []model.FamilyTree, emptyText string) app.UI {
	if len(trees) == 0 {
		return app.P().Class("no-trees").Text(emptyText)
	}
	return app.Div().Class("tree-list").Body(
		app.Range(trees).Slice(func(i int) app.UI {
			tree := trees[i]
			return app.Div().Class("tree-item").Body(
				app.H2().Class("tree-name").Body(
					app.A().Href("/tree/"+tree.ID).Text(tree.Name),
				),
				app.P().Class("tree-description").Text(tree.Description),
				app.Button().Class("delete-button").Text("Delete").
					OnClick(p.onDelete(tree.ID)),
			)
		}),
	)
}

func (p *TreeListPage) renderCreateModal() app.UI {
	return app.Div().Class("modal").Body(
		app.Div().Class("modal-content").Body(
			app.H2().Text("Create New Family Tree"),
			app.Form().OnSubmit(p.onCreate).Body(
				app.Label().Text("Tree Name:"),
				app.Input().Type("text").Value(p.newName).
					OnInput(func(ctx app.Context, e app.Event) {
						p.newName = e.Get("target").Get("value").String()
					}),
				app.Label().Text("Tree Description:"),
				app.Textarea().Text(p.newDesc).
					OnInput(func(ctx app.Context, e app.Event) {
						p.newDesc = e.Get("target").Get("value").String()
					}),
				app.If(p.modalErr != "", func() app.UI {
					return app.Div().Class("error").Text(p.modalErr)
				}),
				app.Div().Class("modal-buttons").Body(
					app.Button().Type("submit").Disabled(p.submitting).Text("Create Tree"),
					app.Button().Type("button").Text("Cancel").
						OnClick(func(ctx app.Context, e app.Event) {
							p.modalOpen = false
							p.modalErr = ""
						}),
				),
			),
		),
	)
}
