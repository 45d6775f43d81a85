package main

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/meowlet/family-tree-fe/internal/api"
)

// backend is the REST client every page shares. The host binary proxies
// /api/* to the real backend, so the client always talks same-origin.
var backend = api.New("/api", localTokenStore{})

func main() {
	app.Route("/", func() app.Composer { return &HomePage{} })
	app.Route("/signin", func() app.Composer { return &SignInPage{} })
	app.Route("/signup", func() app.Composer { return &SignUpPage{} })
	app.Route("/forget", func() app.Composer { return &ForgetPage{} })
	app.RouteWithRegexp(`^/reset/.+$`, func() app.Composer { return &ResetPage{} })
	app.Route("/tree", func() app.Composer { return &TreeListPage{} })
	app.RouteWithRegexp(`^/tree/.+$`, func() app.Composer { return &TreeView{} })
	app.RouteWithRegexp(`^/node/.+$`, func() app.Composer { return &NodeInfoPage{} })
	app.Route("/me", func() app.Composer { return &ProfilePage{} })
	app.RunWhenOnBrowser()
}
