// Package credentials is the durable projection of the session: the bearer
// token and a JSON copy of the user record, kept in two fixed slots.
//
// Storage failures are never reported to callers. They are logged and the
// store behaves as if nothing were stored.
package credentials

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/postboard/internal/client/models"
)

const (
	TokenKey = "token"
	UserKey  = "user"
)

// Store persists exactly two slots, token and user.
type Store interface {
	// Write stores both slots together.
	Write(ctx context.Context, token string, user *models.User)
	// Read returns whatever is stored; each value is independently absent.
	Read(ctx context.Context) (token string, user *models.User)
	// Token returns just the token slot.
	Token(ctx context.Context) string
	// Clear removes both slots unconditionally.
	Clear(ctx context.Context)
}

// decodeUser turns the serialized user slot back into a record. An empty or
// JSON null slot yields (nil, nil).
func decodeUser(raw []byte) (*models.User, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
