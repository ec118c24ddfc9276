package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postboard/internal/client/guard"
	"github.com/dmitrijs2005/postboard/internal/client/models"
	"github.com/dmitrijs2005/postboard/internal/client/router"
)

// Go navigates to path and renders the page the router settles on.
func (a *App) Go(ctx context.Context, path string) error {
	res, err := a.router.Resolve(path, a.session.Snapshot())
	if err != nil {
		if errors.Is(err, router.ErrRouteNotFound) {
			printlnFn("Page not found:", path)
			return nil
		}
		return err
	}

	if len(res.Redirects) > 0 {
		printlnFn(fmt.Sprintf("%s redirected to %s", res.Redirects[0], res.Path))
	}
	a.current = res
	a.render(res)
	return nil
}

func (a *App) render(res *router.Resolution) {
	snap := a.session.Snapshot()
	u := snap.User

	printlnFn("== " + res.Route.Title + " ==")
	switch res.Route.Path {
	case guard.LoginPath:
		printlnFn("Type 'login' to sign in, 'register' to create an account or 'forgot' to reset your password.")
	case guard.AdminLoginPath:
		printlnFn("Administrators sign in here with 'admin-login'.")
	case "/register":
		printlnFn("Type 'register' to create an account.")
	case "/forgot-password":
		printlnFn("Type 'forgot' to receive a password reset link.")
	case "/reset-password":
		printlnFn("Type 'reset' and paste the token from the reset email.")
	case "/home":
		printlnFn(fmt.Sprintf("Hello, %s.", displayName(u)))
	case "/posts/:id":
		printlnFn("Post #" + res.Params["id"])
	case "/create-post":
		printlnFn("Your subscription is active; you can publish posts.")
	case "/my-page":
		printUser(u)
	case guard.SubscriptionPath:
		printlnFn("Subscription status:", subscriptionStatus(u))
		if !u.HasActiveSubscription() {
			printlnFn("An active subscription is required to publish posts.")
		}
	case "/admin":
		printlnFn(fmt.Sprintf("Signed in as administrator %s.", u.Email))
	}
}

func printUser(u *models.User) {
	printlnFn("Email:       ", u.Email)
	printlnFn("Display name:", u.DisplayName)
	printlnFn("Role:        ", u.Role)
	printlnFn("Subscription:", subscriptionStatus(u))
	if u.Bio != "" {
		printlnFn("Bio:         ", u.Bio)
	}
}

func displayName(u *models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

func subscriptionStatus(u *models.User) string {
	if u.SubscriptionStatus == "" {
		return string(models.SubscriptionInactive)
	}
	return string(u.SubscriptionStatus)
}
