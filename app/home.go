package main

import "github.com/maxence-charriere/go-app/v10/pkg/app"

// HomePage is the landing banner.
type HomePage struct {
	app.Compo
}

func (p *HomePage) Render() app.UI {
	return app.Main().Class("home").Body(
		&Navbar{},
		app.Div().Class("banner").Body(
			app.H1().Class("banner-title").Text("Family Tree Management"),
			app.P().Class("banner-subtitle").Text("Keep every branch of your family in one place"),
			app.Button().Class("banner-button").Text("Make your own tree now").
				OnClick(func(ctx app.Context, e app.Event) {
					if signedIn() {
						ctx.Navigate("/tree")
						return
					}
					ctx.Navigate("/signup")
				}),
		),
	)
}
