// Package guard decides, from a session snapshot alone, whether a page may be
// shown or where the visitor should be sent instead. Guards never touch the
// network.
package guard

import "github.com/dmitrijs2005/postboard/internal/client/session"

const (
	LoginPath        = "/login"
	AdminLoginPath   = "/admin-login-page"
	SubscriptionPath = "/subscription"
)

// Decision is either Allow (empty Redirect) or a redirect target.
type Decision struct {
	Redirect string
}

var Allow = Decision{}

func RedirectTo(path string) Decision {
	return Decision{Redirect: path}
}

func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

type Guard interface {
	Check(s session.Snapshot) Decision
}

// Func adapts a plain function to Guard.
type Func func(s session.Snapshot) Decision

func (f Func) Check(s session.Snapshot) Decision {
	return f(s)
}

// Authenticated lets any logged-in visitor through.
var Authenticated Guard = Func(func(s session.Snapshot) Decision {
	if !s.IsAuthenticated() {
		return RedirectTo(LoginPath)
	}
	return Allow
})

// Admin requires a logged-in administrator. Everyone else, including
// logged-in regular users, goes to the admin login page.
var Admin Guard = Func(func(s session.Snapshot) Decision {
	if !s.IsAuthenticated() || !s.User.IsAdministrator() {
		return RedirectTo(AdminLoginPath)
	}
	return Allow
})

// Subscription requires an active subscription. It is meant to be chained
// after Authenticated; on its own an anonymous visitor is sent to billing.
var Subscription Guard = Func(func(s session.Snapshot) Decision {
	if !s.User.HasActiveSubscription() {
		return RedirectTo(SubscriptionPath)
	}
	return Allow
})

// Chain runs guards in order and returns the first redirect.
func Chain(guards ...Guard) Guard {
	return Func(func(s session.Snapshot) Decision {
		for _, g := range guards {
			if d := g.Check(s); !d.Allowed() {
				return d
			}
		}
		return Allow
	})
}
