// Package router maps client paths onto pages and applies route guards.
package router

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/postboard/internal/client/guard"
	"github.com/dmitrijs2005/postboard/internal/client/session"
)

const maxHops = 8

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrRedirectLoop  = errors.New("too many redirects")
)

// Route is one page. Redirect, when set, makes the route an alias.
// Path segments starting with ':' capture a parameter.
type Route struct {
	Path     string
	Title    string
	Guard    guard.Guard
	Redirect string
}

// Resolution is where a navigation ended up.
type Resolution struct {
	Route  Route
	Path   string
	Params map[string]string
	// Redirects lists every path visited before Path.
	Redirects []string
}

type Router struct {
	routes []Route
}

func New(routes ...Route) *Router {
	return &Router{routes: routes}
}

// Default is the bulletin board's page table.
func Default() *Router {
	authed := guard.Authenticated
	return New(
		Route{Path: "/", Redirect: guard.LoginPath},
		Route{Path: guard.LoginPath, Title: "Login"},
		Route{Path: guard.AdminLoginPath, Title: "Admin login"},
		Route{Path: "/register", Title: "Register"},
		Route{Path: "/forgot-password", Title: "Forgot password"},
		Route{Path: "/reset-password", Title: "Reset password"},
		Route{Path: "/home", Title: "Board", Guard: authed},
		Route{Path: "/posts/:id", Title: "Post", Guard: authed},
		Route{Path: "/create-post", Title: "New post", Guard: guard.Chain(authed, guard.Subscription)},
		Route{Path: "/my-page", Title: "My page", Guard: authed},
		Route{Path: guard.SubscriptionPath, Title: "Subscription", Guard: authed},
		Route{Path: "/admin", Title: "Admin dashboard", Guard: guard.Admin},
	)
}

func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Resolve follows aliases and guard redirects from path until a page can be
// shown to the session in s.
func (r *Router) Resolve(path string, s session.Snapshot) (*Resolution, error) {
	var visited []string
	current := normalize(path)

	for hop := 0; hop <= maxHops; hop++ {
		route, params, ok := r.match(current)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, current)
		}

		next := route.Redirect
		if next == "" && route.Guard != nil {
			next = route.Guard.Check(s).Redirect
		}
		if next == "" {
			return &Resolution{Route: route, Path: current, Params: params, Redirects: visited}, nil
		}

		visited = append(visited, current)
		current = normalize(next)
	}
	return nil, fmt.Errorf("%w: %s", ErrRedirectLoop, strings.Join(visited, " -> "))
}

func (r *Router) match(path string) (Route, map[string]string, bool) {
	segs := split(path)
	for _, route := range r.routes {
		pattern := split(route.Path)
		if len(pattern) != len(segs) {
			continue
		}
		params := map[string]string{}
		ok := true
		for i, p := range pattern {
			if strings.HasPrefix(p, ":") {
				params[p[1:]] = segs[i]
				continue
			}
			if p != segs[i] {
				ok = false
				break
			}
		}
		if ok {
			return route, params, true
		}
	}
	return Route{}, nil, false
}

// normalize drops the query string and trailing slash and ensures a leading
// slash.
func normalize(path string) string {
	path, _, _ = strings.Cut(strings.TrimSpace(path), "?")
	path = "/" + strings.Trim(path, "/")
	return path
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
