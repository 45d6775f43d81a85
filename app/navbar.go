package main

import (
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

type navItem struct {
	text string
	href string
}

// Navbar is the shared top navigation. Items depend on whether a session
// token is present.
type Navbar struct {
	app.Compo
}

func (n *Navbar) Render() app.UI {
	items := []navItem{
		{"Home", "/"},
		{"Login", "/signin"},
		{"Register", "/signup"},
	}
	if signedIn() {
		items = []navItem{
			{"Home", "/"},
			{"Trees", "/tree"},
			{"My Account", "/me"},
		}
	}

	path := "/"
	if app.IsClient {
		path = app.Window().URL().Path
	}

	return app.Div().Class("navbar").Body(
		app.Ul().Class("nav-list").Body(
			app.Range(items).Slice(func(i int) app.UI {
				item := items[i]
				cls := "nav-item"
				if item.href == path || (item.href != "/" && strings.HasPrefix(path, item.href)) {
					cls += " active"
				}
				return app.Li().Class(cls).Body(
					app.A().Class("nav-link").Href(item.href).Text(item.text),
				)
			}),
		),
	)
}
