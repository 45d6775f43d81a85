package main

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/meowlet/family-tree-fe/internal/api"
)

const tokenKey = "accessToken"

// localTokenStore keeps the access token in the browser's localStorage.
type localTokenStore struct{}

func (localTokenStore) Token() string {
	v := app.Window().Get("localStorage").Call("getItem", tokenKey)
	if !v.Truthy() {
		return ""
	}
	return v.String()
}

func (localTokenStore) SetToken(tok string) error {
	app.Window().Get("localStorage").Call("setItem", tokenKey, tok)
	return nil
}

func (localTokenStore) ClearToken() {
	app.Window().Get("localStorage").Call("removeItem", tokenKey)
}

// signedIn reports whether a usable token is present. Used for navbar state
// and page guards; the server still re-checks every request.
func signedIn() bool {
	return api.TokenAlive(localTokenStore{}.Token())
}
