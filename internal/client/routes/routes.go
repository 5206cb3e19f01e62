// Package routes holds the navigation tables of both consoles and the
// authentication guard in front of them.
package routes

import (
	"errors"
	"fmt"
	"strings"
)

var ErrRouteNotFound = errors.New("route not found")

// LoginPath is where guarded routes redirect.
const LoginPath = "/login"

type Route struct {
	Path  string
	Name  string
	Title string
	// Public routes skip the guard.
	Public bool
}

// Table is an ordered route list.
type Table []Route

// Lookup finds the route registered for path.
func (t Table) Lookup(path string) (Route, error) {
	path = normalize(path)
	for _, r := range t {
		if r.Path == path {
			return r, nil
		}
	}
	return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
}

// Resolve applies the guard: a non-public route requested while logged out
// resolves to the login route.
func (t Table) Resolve(path string, loggedIn bool) (Route, error) {
	r, err := t.Lookup(path)
	if err != nil {
		return Route{}, err
	}
	if r.Public || loggedIn {
		return r, nil
	}
	return t.Lookup(LoginPath)
}

// ByName finds a route by its name, case-insensitively.
func (t Table) ByName(name string) (Route, bool) {
	for _, r := range t {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Route{}, false
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// AdminRoutes is the admin console navigation; everything except login is
// guarded.
var AdminRoutes = Table{
	{Path: LoginPath, Name: "Login", Title: "Login", Public: true},
	{Path: "/", Name: "Dashboard", Title: "Dashboard"},
	{Path: "/users", Name: "Users", Title: "Users"},
	{Path: "/forms", Name: "Forms", Title: "Forms"},
	{Path: "/invites", Name: "Invites", Title: "Invite codes"},
	{Path: "/orders", Name: "Orders", Title: "Orders"},
	{Path: "/pricing", Name: "Pricing", Title: "Pricing plans"},
	{Path: "/logs", Name: "Logs", Title: "Signature logs"},
}

// PluginRoutes is the plugin console navigation; it has no guard.
var PluginRoutes = Table{
	{Path: "/", Name: "Home", Title: "Share form", Public: true},
	{Path: "/sign", Name: "Sign", Title: "Sign", Public: true},
}
