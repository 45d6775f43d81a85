package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/meowlet/family-tree-fe/internal/errs"
	"github.com/meowlet/family-tree-fe/internal/model"
)

// formatDate turns an ISO timestamp or date into a short display date;
// empty in, "N/A" out.
func formatDate(s string) string {
	if s == "" {
		return "N/A"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}

func infoField(label, value string) app.UI {
	return app.Div().Class("field").Body(
		app.Span().Class("label").Text(label),
		app.Span().Class("value").Text(value),
	)
}

// ProfilePage shows the signed-in user and hosts logout.
type ProfilePage struct {
	app.Compo

	user   model.User
	loaded bool
	errMsg string
}

func (p *ProfilePage) OnMount(ctx app.Context) { p.load(ctx) }
func (p *ProfilePage) OnNav(ctx app.Context)   { p.load(ctx) }

func (p *ProfilePage) load(ctx app.Context) {
	ctx.Async(func() {
		user, err := backend.Me(context.Background())
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				if errors.Is(err, errs.ErrUnauthorized) {
					ctx.Navigate("/signin")
					return
				}
				p.errMsg = "Failed to load user data"
				app.Log("profile:", err)
				return
			}
			p.user = user
			p.loaded = true
		})
	})
}

func (p *ProfilePage) onLogout(ctx app.Context, e app.Event) {
	backend.SignOut()
	ctx.Reload()
}

func (p *ProfilePage) Render() app.UI {
	if p.errMsg != "" {
		return app.Div().Class("error").Text(p.errMsg)
	}
	if !p.loaded {
		return app.Div().Class("loading").Text("Loading...")
	}
	u := p.user
	return app.Div().Class("profile-container").Body(
		&Navbar{},
		app.H1().Text("User Profile"),
		app.Div().Class("card").Body(
			infoField("Full Name:", u.FullName),
			infoField("Username:", u.UserName),
			infoField("Email:", u.Email),
			infoField("Member Since:", formatDate(u.CreatedAt)),
		),
		app.Button().Class("logout-button").Text("Logout").OnClick(p.onLogout),
	)
}

// NodeInfoPage is the read-only view of a single node, tombstone-aware.
type NodeInfoPage struct {
	app.Compo

	nodeID string
	node   model.Node
	loaded bool
	errMsg string
}

func (p *NodeInfoPage) OnMount(ctx app.Context) { p.loadFromURL(ctx) }
func (p *NodeInfoPage) OnNav(ctx app.Context)   { p.loadFromURL(ctx) }

func (p *NodeInfoPage) loadFromURL(ctx app.Context) {
	parts := strings.Split(strings.Trim(ctx.Page().URL().Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "node" {
		p.nodeID = parts[1]
	}
	if p.nodeID == "" {
		return
	}
	nodeID := p.nodeID
	ctx.Async(func() {
		node, err := backend.NodeInfo(context.Background(), nodeID)
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				if errors.Is(err, errs.ErrUnauthorized) {
					ctx.Navigate("/signin")
					return
				}
				p.errMsg = err.Error()
				return
			}
			p.node = node
			p.loaded = true
		})
	})
}

func (p *NodeInfoPage) Render() app.UI {
	if p.errMsg != "" {
		return app.Div().Class("error").Text(p.errMsg)
	}
	if !p.loaded {
		return app.Div().Class("loading").Text("Loading...")
	}

	n := p.node
	gender := "Female"
	if n.Gender {
		gender = "Male"
	}

	name, userName, email, since := "N/A", "N/A", "N/A", "N/A"
	switch n.Kind() {
	case model.LiveNode:
		name = n.User.FullName
		userName = n.User.UserName
		email = n.User.Email
		since = formatDate(n.User.CreatedAt)
	case model.TombstonedNode:
	}

	return app.Div().Class("node-info-container").Body(
		&Navbar{},
		app.H1().Text("Information"),
		app.Div().Class("card").Body(
			infoField("Full Name:", name),
			infoField("Username:", userName),
			infoField("Email:", email),
			infoField("Gender:", gender),
			infoField("Birth Date:", formatDate(n.BirthDate)),
			infoField("Death Date:", formatDate(n.DeathDate)),
			infoField("Marriage Date:", formatDate(n.MarriageDate)),
			infoField("Member Since:", since),
		),
	)
}
