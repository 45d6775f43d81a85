package main

import (
	"context"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/meowlet/family-tree-fe/internal/api"
	"github.com/meowlet/family-tree-fe/internal/model"
	"github.com/meowlet/family-tree-fe/internal/treeview"
)

// userSearchField is the search-as-you-type block shared by the forms:
// a text input plus a select over the current results.
func (v *TreeView) userSearchField(label string, filter func(model.User) bool) app.UI {
	ctrl := v.ctrl
	results := ctrl.Results()
	if filter != nil {
		kept := results[:0:0]
		for _, u := range results {
			if filter(u) {
				kept = append(kept, u)
			}
		}
		results = kept
	}

	return app.Div().Class("user-search").Body(
		app.Label().Text(label),
		app.Input().
			Type("text").
			Placeholder("Enter name or username").
			Value(ctrl.Query()).
			OnInput(v.onSearchInput),
		app.If(len(results) > 0, func() app.UI {
			return app.Select().
				OnChange(func(ctx app.Context, e app.Event) {
					ctrl.SelectUser(e.Get("target").Get("value").String())
				}).
				Body(
					app.Option().Value("").Text("Choose a user"),
					app.Range(results).Slice(func(i int) app.UI {
						u := results[i]
						return app.Option().
							Value(u.ID).
							Selected(u.ID == ctrl.SelectedUserID()).
							Text(u.FullName + " (" + u.UserName + ")")
					}),
				)
		}),
	)
}

// nodeFieldsFieldset renders gender and the date inputs bound to the view's
// local form fields.
func (v *TreeView) nodeFieldsFieldset(withMarriage bool) app.UI {
	gender := "false"
	if v.formGender {
		gender = "true"
	}
	return app.FieldSet().Body(
		app.Legend().Text("Node Information"),
		app.Label().Text("Gender:"),
		app.Select().
			OnChange(func(ctx app.Context, e app.Event) {
				v.formGender = e.Get("target").Get("value").String() == "true"
			}).
			Body(
				app.Option().Value("false").Selected(gender == "false").Text("Female"),
				app.Option().Value("true").Selected(gender == "true").Text("Male"),
			),
		app.Label().Text("Birth Date:"),
		app.Input().Type("date").Value(v.formBirth).
			OnInput(func(ctx app.Context, e app.Event) {
				v.formBirth = e.Get("target").Get("value").String()
			}),
		app.Label().Text("Death Date (optional):"),
		app.Input().Type("date").Value(v.formDeath).
			OnInput(func(ctx app.Context, e app.Event) {
				v.formDeath = e.Get("target").Get("value").String()
			}),
		app.If(withMarriage, func() app.UI {
			return app.Div().Body(
				app.Label().Text("Marriage Date (optional):"),
				app.Input().Type("date").Value(v.formMarriage).
					OnInput(func(ctx app.Context, e app.Event) {
						v.formMarriage = e.Get("target").Get("value").String()
					}),
			)
		}),
	)
}

func (v *TreeView) formActions(submitLabel string) app.UI {
	return app.Div().Class("form-actions").Body(
		app.If(v.formErr != "", func() app.UI {
			return app.Div().Class("error").Text(v.formErr)
		}),
		app.Button().Type("submit").Disabled(v.ctrl.Busy()).Text(submitLabel),
		app.Button().Type("button").Text("Cancel").OnClick(v.onCancelForm),
	)
}

// ---- add ----

func (v *TreeView) renderAddForm() app.UI {
	return app.Form().Class("add-node-form").OnSubmit(v.onSubmitAdd).Body(
		app.H2().Text("Add New Node"),
		app.FieldSet().Body(
			app.Legend().Text("User Selection"),
			app.If(!v.newUserMode, func() app.UI {
				return v.userSearchField("Search for existing user:", nil)
			}),
			app.Button().Type("button").
				Text(newUserToggleLabel(v.newUserMode)).
				OnClick(func(ctx app.Context, e app.Event) {
					v.newUserMode = !v.newUserMode
					v.ctrl.SelectUser("")
				}),
		),
		app.If(v.newUserMode, func() app.UI {
			return app.FieldSet().Body(
				app.Legend().Text("New Person"),
				app.Label().Text("Full Name:"),
				app.Input().Type("text").Value(v.newUserName).
					OnInput(func(ctx app.Context, e app.Event) {
						v.newUserName = e.Get("target").Get("value").String()
					}),
				app.Label().Text("Bio:"),
				app.Textarea().Text(v.newUserBio).
					OnInput(func(ctx app.Context, e app.Event) {
						v.newUserBio = e.Get("target").Get("value").String()
					}),
				app.Label().Text("Home Town:"),
				app.Input().Type("text").Value(v.newUserTown).
					OnInput(func(ctx app.Context, e app.Event) {
						v.newUserTown = e.Get("target").Get("value").String()
					}),
			)
		}),
		v.nodeFieldsFieldset(true),
		v.formActions("Add Node"),
	)
}

func newUserToggleLabel(on bool) string {
	if on {
		return "Pick Existing User"
	}
	return "Create New Person"
}

func (v *TreeView) onSubmitAdd(ctx app.Context, e app.Event) {
	e.PreventDefault()

	var person treeview.Person
	if v.newUserMode {
		if strings.TrimSpace(v.newUserName) == "" {
			v.formErr = "Full name is required"
			return
		}
		person.NewUser = &api.TempUserParams{
			FullName: v.newUserName,
			Bio:      v.newUserBio,
			HomeTown: v.newUserTown,
		}
	} else {
		if v.ctrl.SelectedUserID() == "" {
			v.formErr = "Search and select a user, or create a new person"
			return
		}
		person.ExistingUserID = v.ctrl.SelectedUserID()
	}

	fields := treeview.NodeFields{
		Gender:       v.formGender,
		BirthDate:    v.formBirth,
		DeathDate:    v.formDeath,
		MarriageDate: v.formMarriage,
	}
	v.mutate(ctx, func(c context.Context) error {
		return v.ctrl.SubmitAdd(c, person, fields)
	})
}

// ---- edit ----

func (v *TreeView) renderEditForm() app.UI {
	ctrl := v.ctrl
	target := ctrl.Target()

	current := "(none)"
	if target != nil && target.User != nil {
		current = target.User.FullName + " (Current)"
	}

	return app.Form().Class("edit-node-form").OnSubmit(v.onSubmitEdit).Body(
		app.H2().Text("Edit Node"),
		app.FieldSet().Body(
			app.Legend().Text("User Selection"),
			app.Div().Class("current-user").Text(current),
			// users already placed in this tree are not offered, except the
			// node's own current user
			v.userSearchField("Search for a different user:", func(u model.User) bool {
				if target != nil && target.User != nil && u.ID == target.User.ID {
					return true
				}
				return !ctrl.HasUser(u.ID)
			}),
		),
		v.nodeFieldsFieldset(true),
		v.formActions("Update Node"),
	)
}

func (v *TreeView) onSubmitEdit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	fields := treeview.NodeFields{
		Gender:       v.formGender,
		BirthDate:    v.formBirth,
		DeathDate:    v.formDeath,
		MarriageDate: v.formMarriage,
	}
	v.mutate(ctx, func(c context.Context) error {
		return v.ctrl.SubmitEdit(c, fields)
	})
}

// ---- spouse ----

func (v *TreeView) renderSpouseForm() app.UI {
	ctrl := v.ctrl
	return app.Form().Class("add-spouse-form").OnSubmit(v.onSubmitSpouse).Body(
		app.H2().Text("Add Spouse"),
		v.userSearchField("Search for spouse:", nil),
		app.Label().Text("Marriage Date:"),
		app.Input().Type("date").Value(ctrl.MarriageDate()).
			OnInput(func(ctx app.Context, e app.Event) {
				ctrl.SetMarriageDate(e.Get("target").Get("value").String())
			}),
		v.formActions("Add Spouse"),
	)
}

func (v *TreeView) onSubmitSpouse(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if v.ctrl.SelectedUserID() == "" {
		v.formErr = "Search and select a spouse first"
		return
	}
	v.mutate(ctx, func(c context.Context) error {
		return v.ctrl.SubmitSpouse(c)
	})
}
