package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/postboard/internal/client/credentials"
	"github.com/dmitrijs2005/postboard/internal/client/models"
	"github.com/dmitrijs2005/postboard/internal/client/transport"
	"github.com/dmitrijs2005/postboard/internal/common"
	"github.com/dmitrijs2005/postboard/internal/gatewaytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, gw *gatewaytest.Server) (*HTTPClient, *credentials.MemoryStore) {
	t.Helper()
	store := credentials.NewMemoryStore()
	hc := &http.Client{Transport: transport.New(store), Timeout: 5 * time.Second}
	return NewHTTPClient(gw.BaseURL(), WithHTTPClient(hc)), store
}

func TestHTTPClient_Login(t *testing.T) {
	gw := gatewaytest.New(t)
	u := gw.AddUser("a@b.com", "pw", "A", models.RoleUser, models.SubscriptionActive)
	c, _ := newClient(t, gw)

	resp, err := c.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.Equal(t, models.SubscriptionActive, resp.User.SubscriptionStatus)
}

func TestHTTPClient_LoginBadCredentialsKeepsStore(t *testing.T) {
	gw := gatewaytest.New(t)
	gw.AddUser("a@b.com", "pw", "A", models.RoleUser, models.SubscriptionActive)
	c, store := newClient(t, gw)
	store.Write(context.Background(), "existing", &models.User{ID: 99})

	_, err := c.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, common.ErrSessionInvalidated))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid email or password", apiErr.Message)
	assert.Equal(t, "existing", store.Token(context.Background()))
}

func TestHTTPClient_AdminLoginRejectsRegularUser(t *testing.T) {
	gw := gatewaytest.New(t)
	gw.AddUser("u@b.com", "pw", "U", models.RoleUser, models.SubscriptionActive)
	gw.AddUser("root@b.com", "pw", "Root", models.RoleAdmin, models.SubscriptionActive)
	c, _ := newClient(t, gw)

	_, err := c.AdminLogin(context.Background(), LoginRequest{Email: "u@b.com", Password: "pw"})
	require.ErrorIs(t, err, ErrUnauthorized)

	resp, err := c.AdminLogin(context.Background(), LoginRequest{Email: "root@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, resp.User.IsAdministrator())
}

func TestHTTPClient_RegisterDuplicate(t *testing.T) {
	gw := gatewaytest.New(t)
	c, _ := newClient(t, gw)
	ctx := context.Background()

	u, err := c.Register(ctx, RegisterRequest{Email: "n@b.com", Password: "password1", DisplayName: "N"})
	require.NoError(t, err)
	assert.Equal(t, "N", u.DisplayName)

	_, err = c.Register(ctx, RegisterRequest{Email: "n@b.com", Password: "password1", DisplayName: "N"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "email already registered", apiErr.Message)
}

func TestHTTPClient_ProtectedCallsUseStoredToken(t *testing.T) {
	gw := gatewaytest.New(t)
	u := gw.AddUser("a@b.com", "pw", "A", models.RoleUser, models.SubscriptionActive)
	c, store := newClient(t, gw)
	ctx := context.Background()

	resp, err := c.Login(ctx, LoginRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	store.Write(ctx, resp.AccessToken, resp.User)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	updated, err := c.UpdateProfile(ctx, UpdateProfileRequest{DisplayName: "Alice", Bio: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.DisplayName)

	require.NoError(t, c.ChangePassword(ctx, ChangePasswordRequest{CurrentPassword: "pw", NewPassword: "longer-pw"}))
	assert.Equal(t, "longer-pw", gw.Password("a@b.com"))
}

func TestHTTPClient_RevokedTokenForcesLogout(t *testing.T) {
	gw := gatewaytest.New(t)
	gw.AddUser("a@b.com", "pw", "A", models.RoleUser, models.SubscriptionActive)
	c, store := newClient(t, gw)
	ctx := context.Background()

	resp, err := c.Login(ctx, LoginRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	store.Write(ctx, resp.AccessToken, resp.User)
	gw.Revoke(resp.AccessToken)

	_, err = c.Me(ctx)
	require.ErrorIs(t, err, common.ErrSessionInvalidated)
	assert.Empty(t, store.Token(ctx))
}

func TestHTTPClient_LogoutSendsExplicitToken(t *testing.T) {
	gw := gatewaytest.New(t)
	gw.AddUser("a@b.com", "pw", "A", models.RoleUser, models.SubscriptionActive)
	c, _ := newClient(t, gw)
	ctx := context.Background()

	resp, err := c.Login(ctx, LoginRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx, resp.AccessToken))
	assert.Equal(t, 1, gw.LogoutCalls())

	err = c.Logout(ctx, resp.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized, "token was revoked by the first logout")
	assert.False(t, errors.Is(err, common.ErrSessionInvalidated))
}

func TestHTTPClient_PasswordReset(t *testing.T) {
	gw := gatewaytest.New(t)
	gw.AddUser("a@b.com", "pw", "A", models.RoleUser, models.SubscriptionActive)
	c, _ := newClient(t, gw)
	ctx := context.Background()

	msg, err := c.ForgotPassword(ctx, ForgotPasswordRequest{Email: "a@b.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Message)

	tok := gw.ResetToken("a@b.com")
	require.NotEmpty(t, tok)

	_, err = c.ResetPassword(ctx, ResetPasswordRequest{Token: "bogus", NewPassword: "newpassword"})
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.ResetPassword(ctx, ResetPasswordRequest{Token: tok, NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.Equal(t, "newpassword", gw.Password("a@b.com"))
}

func TestHTTPClient_MalformedLoginResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no token", body: `{"user":{"id":1}}`},
		{name: "no user", body: `{"access_token":"t"}`},
		{name: "not json", body: `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL).Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw"})
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestHTTPClient_AcceptsLegacyTokenField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"legacy","user":{"id":5}}`))
	}))
	defer srv.Close()

	resp, err := NewHTTPClient(srv.URL).Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "legacy", resp.AccessToken)
	assert.Equal(t, int64(5), resp.User.ID)
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		message string
	}{
		{name: "forbidden json", status: 403, body: `{"message":"admins only"}`, want: ErrForbidden, message: "admins only"},
		{name: "server error text", status: 500, body: "db down\n", want: ErrUnavailable, message: "db down"},
		{name: "error field", status: 502, body: `{"error":"upstream"}`, want: ErrUnavailable, message: "upstream"},
		{name: "empty body", status: 503, body: "", want: ErrUnavailable, message: "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL).Me(context.Background())
			require.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestHTTPClient_NetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url, WithTimeout(time.Second)).Me(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_DeadlineStaysMatchable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPClient(srv.URL, WithTimeout(5*time.Second)).Me(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
