package router

import (
	"testing"

	"github.com/dmitrijs2005/postboard/internal/client/guard"
	"github.com/dmitrijs2005/postboard/internal/client/models"
	"github.com/dmitrijs2005/postboard/internal/client/session"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Resolve(t *testing.T) {
	anonymous := session.Snapshot{}
	member := session.Snapshot{Token: "t", User: &models.User{ID: 1, Role: models.RoleUser, SubscriptionStatus: models.SubscriptionActive}}
	lapsed := session.Snapshot{Token: "t", User: &models.User{ID: 2, Role: models.RoleUser, SubscriptionStatus: models.SubscriptionCanceled}}
	admin := session.Snapshot{Token: "t", User: &models.User{ID: 3, Role: models.RoleAdmin}}

	tests := []struct {
		name      string
		path      string
		snap      session.Snapshot
		wantPath  string
		redirects []string
		params    map[string]string
	}{
		{name: "root goes to login", path: "/", snap: anonymous, wantPath: "/login", redirects: []string{"/"}},
		{name: "public page", path: "/register", snap: anonymous, wantPath: "/register"},
		{name: "anonymous home", path: "/home", snap: anonymous, wantPath: "/login", redirects: []string{"/home"}},
		{name: "member home", path: "/home/", snap: member, wantPath: "/home"},
		{name: "anonymous admin", path: "/admin", snap: anonymous, wantPath: "/admin-login-page", redirects: []string{"/admin"}},
		{name: "member admin", path: "/admin", snap: member, wantPath: "/admin-login-page", redirects: []string{"/admin"}},
		{name: "admin dashboard", path: "/admin", snap: admin, wantPath: "/admin"},
		{name: "lapsed create post", path: "/create-post", snap: lapsed, wantPath: "/subscription", redirects: []string{"/create-post"}},
		{name: "anonymous create post", path: "/create-post", snap: anonymous, wantPath: "/login", redirects: []string{"/create-post"}},
		{name: "member create post", path: "/create-post", snap: member, wantPath: "/create-post"},
		{name: "post params", path: "/posts/42?x=1", snap: member, wantPath: "/posts/42", params: map[string]string{"id": "42"}},
		{name: "reset with query", path: "reset-password?token=abc", snap: anonymous, wantPath: "/reset-password"},
	}

	r := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Resolve(tt.path, tt.snap)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, res.Path)
			assert.Empty(t, cmp.Diff(tt.redirects, res.Redirects, cmpopts.EquateEmpty()))
			assert.Empty(t, cmp.Diff(tt.params, res.Params, cmpopts.EquateEmpty()))
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	_, err := Default().Resolve("/nope", session.Snapshot{})
	require.ErrorIs(t, err, ErrRouteNotFound)

	r := New(Route{Path: "/a", Redirect: "/missing"})
	_, err = r.Resolve("/a", session.Snapshot{})
	require.ErrorIs(t, err, ErrRouteNotFound)
}

func TestResolve_Loop(t *testing.T) {
	r := New(
		Route{Path: "/a", Redirect: "/b"},
		Route{Path: "/b", Guard: guard.Func(func(session.Snapshot) guard.Decision { return guard.RedirectTo("/a") })},
	)
	_, err := r.Resolve("/a", session.Snapshot{})
	require.ErrorIs(t, err, ErrRedirectLoop)
}

func TestRoutes_ReturnsCopy(t *testing.T) {
	r := Default()
	routes := r.Routes()
	routes[0].Path = "/changed"
	assert.Equal(t, "/", r.Routes()[0].Path)
}
