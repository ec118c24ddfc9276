package gatewaytest

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/postboard/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	secret := []byte("k")
	u := models.User{ID: 42, Email: "a@b.com", Role: models.RoleAdmin}

	tok, err := GenerateToken(u, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("k")
	tok, err := GenerateToken(models.User{ID: 1}, secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	require.Error(t, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken(models.User{ID: 1}, []byte("right"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong"))
	require.Error(t, err)
}

func TestGenerateToken_DefaultsRoleFromAdminFlag(t *testing.T) {
	secret := []byte("k")
	tok, err := GenerateToken(models.User{ID: 1, IsAdmin: true}, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestServer_Helpers(t *testing.T) {
	s := New(t)
	u := s.AddUser("A@B.com", "pw", "A", models.RoleUser, models.SubscriptionActive)

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "pw", s.Password("a@b.com"))
	assert.Empty(t, s.ResetToken("a@b.com"))
	assert.Equal(t, 0, s.LogoutCalls())
	assert.Contains(t, s.BaseURL(), "/api")
}
