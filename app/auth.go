package main

import (
	"context"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/meowlet/family-tree-fe/internal/api"
)

// SignInPage exchanges credentials for a session token.
type SignInPage struct {
	app.Compo

	identifier string
	password   string
	loading    bool
	errMsg     string
}

func (p *SignInPage) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if msg := validateSignIn(p.identifier, p.password); msg != "" {
		p.errMsg = msg
		return
	}
	if p.loading {
		return
	}
	p.loading = true

	identifier, password := p.identifier, p.password
	ctx.Async(func() {
		err := backend.SignIn(context.Background(), identifier, password)
		ctx.Dispatch(func(ctx app.Context) {
			p.loading = false
			if err != nil {
				p.errMsg = err.Error()
				return
			}
			ctx.Navigate("/")
		})
	})
}

func validateSignIn(identifier, password string) string {
	if len(strings.TrimSpace(identifier)) < 3 {
		return "Username or email must be at least 3 characters"
	}
	if len(password) < 6 {
		return "Password must be at least 6 characters"
	}
	return ""
}

func (p *SignInPage) Render() app.UI {
	label := "Sign in"
	if p.loading {
		label = "Signing in..."
	}
	return app.Div().Class("auth-container").Body(
		&Navbar{},
		app.H1().Text("Your story begins here"),
		app.Form().Class("auth-form").OnSubmit(p.onSubmit).Body(
			app.Label().Text("Username/Email"),
			app.Input().Type("text").Value(p.identifier).
				OnInput(func(ctx app.Context, e app.Event) {
					p.identifier = e.Get("target").Get("value").String()
				}),
			app.Label().Text("Password"),
			app.Input().Type("password").Value(p.password).
				OnInput(func(ctx app.Context, e app.Event) {
					p.password = e.Get("target").Get("value").String()
				}),
			app.If(p.errMsg != "", func() app.UI {
				return app.P().Class("error").Text(p.errMsg)
			}),
			app.Button().Type("submit").Disabled(p.loading).Text(label),
			app.A().Href("/forget").Class("forget-link").Text("Forgot password?"),
		),
	)
}

// SignUpPage registers a new account.
type SignUpPage struct {
	app.Compo

	userName        string
	email           string
	fullName        string
	password        string
	passwordConfirm string
	loading         bool
	errMsg          string
}

func (p *SignUpPage) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if msg := p.validate(); msg != "" {
		p.errMsg = msg
		return
	}
	if p.loading {
		return
	}
	p.loading = true

	params := api.SignUpParams{
		UserName: p.userName,
		Email:    p.email,
		FullName: p.fullName,
		Password: p.password,
	}
	ctx.Async(func() {
		err := backend.SignUp(context.Background(), params)
		ctx.Dispatch(func(ctx app.Context) {
			p.loading = false
			if err != nil {
				p.errMsg = err.Error()
				return
			}
			ctx.Navigate("/")
		})
	})
}

func (p *SignUpPage) validate() string {
	if len(strings.TrimSpace(p.userName)) < 3 {
		return "Username must be at least 3 characters"
	}
	if !strings.Contains(p.email, "@") {
		return "Invalid email address"
	}
	if strings.TrimSpace(p.fullName) == "" {
		return "Full name is required"
	}
	if len(p.password) < 6 {
		return "Password must be at least 6 characters"
	}
	if p.password != p.passwordConfirm {
		return "Passwords do not match"
	}
	return ""
}

func (p *SignUpPage) Render() app.UI {
	label := "Sign up"
	if p.loading {
		label = "Signing up..."
	}
	field := func(labelText, typ string, val string, set func(string)) app.UI {
		return app.Div().Class("input-group").Body(
			app.Label().Text(labelText),
			app.Input().Type(typ).Value(val).
				OnInput(func(ctx app.Context, e app.Event) {
					set(e.Get("target").Get("value").String())
				}),
		)
	}
	return app.Div().Class("auth-container").Body(
		&Navbar{},
		app.H1().Text("Your story begins here"),
		app.Form().Class("auth-form").OnSubmit(p.onSubmit).Body(
			field("Username", "text", p.userName, func(s string) { p.userName = s }),
			field("Email", "text", p.email, func(s string) { p.email = s }),
			field("Full Name", "text", p.fullName, func(s string) { p.fullName = s }),
			field("Password", "password", p.password, func(s string) { p.password = s }),
			field("Confirm Password", "password", p.passwordConfirm, func(s string) { p.passwordConfirm = s }),
			app.If(p.errMsg != "", func() app.UI {
				return app.P().Class("error").Text(p.errMsg)
			}),
			app.Button().Type("submit").Disabled(p.loading).Text(label),
		),
	)
}

// ForgetPage requests a password reset email.
type ForgetPage struct {
	app.Compo

	identifier string
	loading    bool
	errMsg     string
	sentMsg    string
}

func (p *ForgetPage) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if strings.TrimSpace(p.identifier) == "" {
		p.errMsg = "Enter your username or email"
		return
	}
	if p.loading {
		return
	}
	p.loading = true

	identifier := p.identifier
	ctx.Async(func() {
		msg, err := backend.RequestPasswordReset(context.Background(), identifier)
		ctx.Dispatch(func(ctx app.Context) {
			p.loading = false
			if err != nil {
				p.errMsg = err.Error()
				return
			}
			p.errMsg = ""
			p.sentMsg = msg
			if p.sentMsg == "" {
				p.sentMsg = "Check your email for the reset link"
			}
		})
	})
}

func (p *ForgetPage) Render() app.UI {
	return app.Div().Class("auth-container").Body(
		&Navbar{},
		app.H1().Text("Reset your password"),
		app.Form().Class("auth-form").OnSubmit(p.onSubmit).Body(
			app.Label().Text("Username/Email"),
			app.Input().Type("text").Value(p.identifier).
				OnInput(func(ctx app.Context, e app.Event) {
					p.identifier = e.Get("target").Get("value").String()
				}),
			app.If(p.errMsg != "", func() app.UI {
				return app.P().Class("error").Text(p.errMsg)
			}),
			app.If(p.sentMsg != "", func() app.UI {
				return app.P().Class("success").Text(p.sentMsg)
			}),
			app.Button().Type("submit").Disabled(p.loading).Text("Send reset link"),
		),
	)
}

// ResetPage sets a new password using the token from the reset URL.
type ResetPage struct {
	app.Compo

	token    string
	password string
	loading  bool
	errMsg   string
}

func (p *ResetPage) OnMount(ctx app.Context) { p.loadFromURL(ctx) }
func (p *ResetPage) OnNav(ctx app.Context)   { p.loadFromURL(ctx) }

func (p *ResetPage) loadFromURL(ctx app.Context) {
	parts := strings.Split(strings.Trim(ctx.Page().URL().Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "reset" {
		p.token = parts[1]
	}
}

func (p *ResetPage) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if len(p.password) < 6 {
		p.errMsg = "Password must be at least 6 characters"
		return
	}
	if p.loading {
		return
	}
	p.loading = true

	token, password := p.token, p.password
	ctx.Async(func() {
		_, err := backend.ResetPassword(context.Background(), token, password)
		ctx.Dispatch(func(ctx app.Context) {
			p.loading = false
			if err != nil {
				p.errMsg = err.Error()
				return
			}
			ctx.Navigate("/signin")
		})
	})
}

func (p *ResetPage) Render() app.UI {
	return app.Div().Class("auth-container").Body(
		&Navbar{},
		app.H1().Text("Choose a new password"),
		app.Form().Class("auth-form").OnSubmit(p.onSubmit).Body(
			app.Label().Text("New Password"),
			app.Input().Type("password").Value(p.password).
				OnInput(func(ctx app.Context, e app.Event) {
					p.password = e.Get("target").Get("value").String()
				}),
			app.If(p.errMsg != "", func() app.UI {
				return app.P().Class("error").Text(p.errMsg)
			}),
			app.Button().Type("submit").Disabled(p.loading).Text("Reset password"),
		),
	)
}
