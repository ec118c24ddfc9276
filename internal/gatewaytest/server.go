// Package gatewaytest runs an in-memory stand-in for the bulletin-board auth
// gateway on an httptest server. It speaks the same JSON and status codes as
// the real backend and lets tests revoke tokens or break logout on demand.
package gatewaytest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/postboard/internal/client/models"
	"github.com/go-chi/chi/v5"
)

type account struct {
	user     models.User
	password string
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	secret      []byte
	ttl         time.Duration
	nextID      int64
	accounts    map[string]*account
	revoked     map[string]struct{}
	resetTokens map[string]string
	logoutCalls int
	failLogout  bool
}

// New starts a gateway that is shut down when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret:      []byte("gatewaytest-secret"),
		ttl:         15 * time.Minute,
		accounts:    make(map[string]*account),
		revoked:     make(map[string]struct{}),
		resetTokens: make(map[string]string),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root, the equivalent of "http://host/api".
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login(false))
		r.Post("/admin/login", s.login(true))
		r.Post("/auth/register", s.register)
		r.Post("/auth/forgot-password", s.forgotPassword)
		r.Post("/auth/reset-password", s.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/auth/logout", s.logout)
			r.Post("/user/change-password", s.changePassword)
			r.Put("/user/profile", s.updateProfile)
			r.Get("/me", s.me)
		})
	})
	return r
}

// AddUser registers an account directly and returns its record.
func (s *Server) AddUser(email, password, displayName string, role models.Role, sub models.SubscriptionStatus) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, password, displayName, role, sub)
}

func (s *Server) addUserLocked(email, password, displayName string, role models.Role, sub models.SubscriptionStatus) models.User {
	s.nextID++
	now := time.Now().UTC().Truncate(time.Second)
	u := models.User{
		ID:                 s.nextID,
		Email:              email,
		DisplayName:        displayName,
		Role:               role,
		IsAdmin:            role == models.RoleAdmin,
		SubscriptionStatus: sub,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.accounts[strings.ToLower(email)] = &account{user: u, password: password}
	return u
}

// IssueToken mints a token outside the login flow, e.g. an expired one.
func (s *Server) IssueToken(u models.User, validity time.Duration) string {
	tok, err := GenerateToken(u, s.secret, validity)
	if err != nil {
		panic(err)
	}
	return tok
}

// Revoke makes the backend reject token from now on.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = struct{}{}
}

// FailLogout makes the logout endpoint answer 500.
func (s *Server) FailLogout(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLogout = fail
}

func (s *Server) LogoutCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutCalls
}

// ResetToken returns the last password-reset token mailed to email.
func (s *Server) ResetToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, e := range s.resetTokens {
		if e == strings.ToLower(email) {
			return tok
		}
	}
	return ""
}

// Password exposes the current password so tests can assert changes.
func (s *Server) Password(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[strings.ToLower(email)]; ok {
		return a.password
	}
	return ""
}

type ctxKey struct{}

type principal struct {
	email string
	token string
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := ParseToken(token, s.secret)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		_, revoked := s.revoked[token]
		s.mu.Unlock()
		if revoked {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, principal{email: strings.ToLower(claims.Email), token: token})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) current(r *http.Request) (*account, principal, bool) {
	p, _ := r.Context().Value(ctxKey{}).(principal)
	a, ok := s.accounts[p.email]
	return a, p, ok
}

func (s *Server) login(adminOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		a, ok := s.accounts[strings.ToLower(req.Email)]
		s.mu.Unlock()

		if !ok || a.password != req.Password {
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		if !a.user.IsActive {
			http.Error(w, "account is deactivated", http.StatusUnauthorized)
			return
		}
		if adminOnly && !a.user.IsAdministrator() {
			http.Error(w, "admin access required", http.StatusUnauthorized)
			return
		}

		tok, err := GenerateToken(a.user, s.secret, s.ttl)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access_token": tok, "user": a.user})
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[strings.ToLower(req.Email)]; exists {
		http.Error(w, "email already registered", http.StatusBadRequest)
		return
	}
	u := s.addUserLocked(req.Email, req.Password, req.DisplayName, models.RoleUser, models.SubscriptionInactive)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logoutCalls++
	if s.failLogout {
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	_, p, _ := s.current(r)
	s.revoked[p.token] = struct{}{}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if _, ok := s.accounts[strings.ToLower(req.Email)]; ok {
		b := make([]byte, 16)
		_, _ = rand.Read(b)
		s.resetTokens[hex.EncodeToString(b)] = strings.ToLower(req.Email)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset email sent"})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		http.Error(w, "Token and password are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.resetTokens[req.Token]
	if !ok {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}
	delete(s.resetTokens, req.Token)
	s.accounts[email].password = req.NewPassword
	writeJSON(w, http.StatusOK, map[string]string{"message": "password has been reset"})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, _, ok := s.current(r)
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if a.password != req.CurrentPassword {
		http.Error(w, "current password is incorrect", http.StatusBadRequest)
		return
	}
	a.password = req.NewPassword
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
		Bio         string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, _, ok := s.current(r)
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	a.user.DisplayName = req.DisplayName
	a.user.Bio = req.Bio
	a.user.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, _, ok := s.current(r)
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a.user)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
