package session

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/postboard/internal/client/models"
	"github.com/dmitrijs2005/postboard/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields of the bearer token the client looks at.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Validator decides whether a stored credential is still usable without
// contacting the backend. The signature is not checked; the backend stays
// the authority on every request.
type Validator struct {
	now    func() time.Time
	parser *jwt.Parser
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now, parser: jwt.NewParser()}
}

// Decode reads the claims of token.
func (v *Validator) Decode(token string) (*Claims, error) {
	var claims Claims
	if _, _, err := v.parser.ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return &claims, nil
}

// Check accepts (token, user) and returns the user to start the session
// with, or an error matching ErrTokenMalformedOrExpired.
func (v *Validator) Check(token string, user *models.User) (*models.User, error) {
	if token == "" || user == nil {
		return nil, fmt.Errorf("%w: incomplete credential", ErrTokenMalformedOrExpired)
	}

	claims, err := v.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformedOrExpired, err)
	}

	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: %w: no exp claim", ErrTokenMalformedOrExpired, common.ErrInvalidToken)
	}
	// exp is whole seconds; a token expiring this very second is already stale.
	if !claims.ExpiresAt.Time.After(v.now()) {
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformedOrExpired, common.ErrTokenExpired)
	}

	if claims.UserID != 0 && user.ID != 0 && claims.UserID != user.ID {
		return nil, fmt.Errorf("%w: token issued for user %d, stored user is %d",
			ErrTokenMalformedOrExpired, claims.UserID, user.ID)
	}

	return user.Clone(), nil
}
