package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/postboard/internal/client/guard"
	"github.com/dmitrijs2005/postboard/internal/client/session"
	"github.com/dmitrijs2005/postboard/internal/common"
)

// handleError is the top-level handler for command results. A forced logout
// (the backend rejected the held token) resynchronizes the session from the
// already cleared store and sends the user to the login page; anything else
// is reported and the session is left alone.
func (a *App) handleError(ctx context.Context, err error) {
	invalidated := a.invalidated.Swap(false)

	if errors.Is(err, common.ErrSessionInvalidated) || invalidated {
		printlnFn("Your session is no longer valid. Please log in again.")
		a.session.Restore(ctx)
		if navErr := a.Go(ctx, guard.LoginPath); navErr != nil {
			a.logger.Error(ctx, "navigation after forced logout failed", "error", navErr)
		}
		return
	}
	if err == nil {
		return
	}

	var serr *session.Error
	if errors.As(err, &serr) {
		printlnFn("Error:", serr.Message)
		return
	}
	a.logger.Warn(ctx, "command failed", "error", err)
	printlnFn("Error:", err)
}
