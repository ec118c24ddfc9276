package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/postboard/internal/client/client"
	"github.com/dmitrijs2005/postboard/internal/client/credentials"
	"github.com/dmitrijs2005/postboard/internal/client/models"
	"github.com/dmitrijs2005/postboard/internal/common"
	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/go-playground/validator/v10"
)

const defaultLogoutTimeout = 3 * time.Second

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Snapshot is a copy of the session at one point in time. Mutating it has
// no effect on the Service.
type Snapshot struct {
	User      *models.User
	Token     string
	IsLoading bool
}

func (s Snapshot) State() State {
	if s.User != nil && s.Token != "" {
		return Authenticated
	}
	return Unauthenticated
}

func (s Snapshot) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// Service is the single owner of the session. Safe for concurrent use.
type Service struct {
	gateway       client.Client
	store         credentials.Store
	validator     *Validator
	validate      *validator.Validate
	logger        logging.Logger
	logoutTimeout time.Duration

	mu      sync.Mutex
	user    *models.User
	token   string
	loading bool
	// gen counts login, logout and user updates. Restore drops its result
	// when one of them landed while it was reading the store.
	gen       uint64
	listeners []func(Snapshot)
}

type Option func(*Service)

func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.validator = NewValidator(now) }
}

// WithLogoutTimeout bounds the backend logout notification.
func WithLogoutTimeout(d time.Duration) Option {
	return func(s *Service) { s.logoutTimeout = d }
}

func NewService(gateway client.Client, store credentials.Store, opts ...Option) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Service{
		gateway:       gateway,
		store:         store,
		validator:     NewValidator(nil),
		validate:      v,
		logger:        logging.Discard(),
		logoutTimeout: defaultLogoutTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns the current session.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// OnChange registers fn to be called after every transition, outside the
// service lock.
func (s *Service) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) snapshotLocked() Snapshot {
	return Snapshot{User: s.user.Clone(), Token: s.token, IsLoading: s.loading}
}

// commitLocked captures the state to publish; call publish after unlocking.
func (s *Service) commitLocked() (Snapshot, []func(Snapshot)) {
	ls := make([]func(Snapshot), len(s.listeners))
	copy(ls, s.listeners)
	return s.snapshotLocked(), ls
}

func publish(snap Snapshot, ls []func(Snapshot)) {
	for _, fn := range ls {
		fn(snap)
	}
}

// Restore loads the stored credential and starts the session from it when
// it passes the validator. A rejected credential is cleared from the store
// and the session starts unauthenticated. It is also how memory is brought
// back in line after the transport forced a logout. A transition that
// completes while the store is being read wins over the restored state.
func (s *Service) Restore(ctx context.Context) Snapshot {
	s.mu.Lock()
	s.loading = true
	gen := s.gen
	snap, ls := s.commitLocked()
	s.mu.Unlock()
	publish(snap, ls)

	token, user := s.store.Read(ctx)
	accepted, err := s.validator.Check(token, user)
	rejected := err != nil && (token != "" || user != nil)

	s.mu.Lock()
	s.loading = false
	superseded := s.gen != gen
	if !superseded {
		if err != nil {
			s.store.Clear(ctx)
			token = ""
		}
		s.user = accepted
		s.token = token
	}
	snap, ls = s.commitLocked()
	s.mu.Unlock()
	publish(snap, ls)

	switch {
	case superseded:
		s.logger.Debug(ctx, "restore superseded by a newer transition")
	case rejected:
		s.logger.Info(ctx, "stored credential rejected", "error", err)
	case snap.IsAuthenticated():
		s.logger.Debug(ctx, "session restored", "user_id", snap.User.ID)
	}
	return snap
}

// Login exchanges credentials for a session. On failure the session is left
// unchanged and the error matches ErrAuthenticationFailed.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	return s.exchange(ctx, email, password, s.gateway.Login)
}

// AdminLogin is Login against the admin endpoint. The backend alone decides
// who is an admin.
func (s *Service) AdminLogin(ctx context.Context, email, password string) (*models.User, error) {
	return s.exchange(ctx, email, password, s.gateway.AdminLogin)
}

type loginFunc func(ctx context.Context, req client.LoginRequest) (*client.LoginResponse, error)

func (s *Service) exchange(ctx context.Context, email, password string, login loginFunc) (*models.User, error) {
	req := client.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ErrAuthenticationFailed, err)
	}

	resp, err := login(ctx, req)
	if err != nil {
		s.logger.Info(ctx, "login rejected", "email", req.Email, "error", err)
		return nil, s.failure(ErrAuthenticationFailed, err)
	}

	s.mu.Lock()
	s.gen++
	s.store.Write(ctx, resp.AccessToken, resp.User)
	s.user = resp.User.Clone()
	s.token = resp.AccessToken
	snap, ls := s.commitLocked()
	s.mu.Unlock()
	publish(snap, ls)

	s.logger.Info(ctx, "logged in", "user_id", resp.User.ID, "role", resp.User.Role)
	return resp.User.Clone(), nil
}

// Register creates an account. It does not log in.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	req := client.RegisterRequest{
		Email:       strings.TrimSpace(email),
		Password:    password,
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ErrRegistrationFailed, err)
	}

	user, err := s.gateway.Register(ctx, req)
	if err != nil {
		return nil, s.failure(ErrRegistrationFailed, err)
	}
	return user, nil
}

// Logout ends the session locally, then tells the backend. Local logout
// cannot fail; the backend notification is best-effort and bounded by the
// logout timeout even when ctx is already done.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.gen++
	s.user = nil
	s.token = ""
	s.store.Clear(ctx)
	snap, ls := s.commitLocked()
	s.mu.Unlock()
	publish(snap, ls)

	if token == "" {
		return
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.logoutTimeout)
	defer cancel()
	if err := s.gateway.Logout(nctx, token); err != nil {
		s.logger.Warn(ctx, "backend logout notification failed", "error", err)
	}
}

// UpdateUser replaces the held user record and writes it through to the
// store. The token is left as is.
func (s *Service) UpdateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return &Error{Kind: ErrAccountRequestFailed, Message: "user record is required"}
	}

	s.mu.Lock()
	if s.user == nil || s.token == "" {
		s.mu.Unlock()
		return &Error{Kind: ErrNotAuthenticated, Message: "not logged in"}
	}
	s.gen++
	s.store.Write(ctx, s.token, user)
	s.user = user.Clone()
	snap, ls := s.commitLocked()
	s.mu.Unlock()
	publish(snap, ls)
	return nil
}

// ForgotPassword asks the backend to mail a reset link and returns its
// confirmation message.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	req := client.ForgotPasswordRequest{Email: strings.TrimSpace(email)}
	if err := s.validate.Struct(req); err != nil {
		return "", s.invalid(ErrAccountRequestFailed, err)
	}
	resp, err := s.gateway.ForgotPassword(ctx, req)
	if err != nil {
		return "", s.failure(ErrAccountRequestFailed, err)
	}
	return resp.Message, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	req := client.ResetPasswordRequest{Token: strings.TrimSpace(token), NewPassword: newPassword}
	if err := s.validate.Struct(req); err != nil {
		return "", s.invalid(ErrAccountRequestFailed, err)
	}
	resp, err := s.gateway.ResetPassword(ctx, req)
	if err != nil {
		return "", s.failure(ErrAccountRequestFailed, err)
	}
	return resp.Message, nil
}

func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	if !s.Snapshot().IsAuthenticated() {
		return &Error{Kind: ErrNotAuthenticated, Message: "not logged in"}
	}
	req := client.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	if err := s.validate.Struct(req); err != nil {
		return s.invalid(ErrAccountRequestFailed, err)
	}
	if err := s.gateway.ChangePassword(ctx, req); err != nil {
		return s.failure(ErrAccountRequestFailed, err)
	}
	return nil
}

// UpdateProfile saves display name and bio on the backend and adopts the
// returned record.
func (s *Service) UpdateProfile(ctx context.Context, displayName, bio string) (*models.User, error) {
	if !s.Snapshot().IsAuthenticated() {
		return nil, &Error{Kind: ErrNotAuthenticated, Message: "not logged in"}
	}
	req := client.UpdateProfileRequest{DisplayName: strings.TrimSpace(displayName), Bio: bio}
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ErrAccountRequestFailed, err)
	}
	user, err := s.gateway.UpdateProfile(ctx, req)
	if err != nil {
		return nil, s.failure(ErrAccountRequestFailed, err)
	}
	if err := s.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Refresh re-reads the current user from the backend, e.g. after the
// subscription changed elsewhere.
func (s *Service) Refresh(ctx context.Context) (*models.User, error) {
	if !s.Snapshot().IsAuthenticated() {
		return nil, &Error{Kind: ErrNotAuthenticated, Message: "not logged in"}
	}
	user, err := s.gateway.Me(ctx)
	if err != nil {
		return nil, s.failure(ErrAccountRequestFailed, err)
	}
	if err := s.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) failure(kind, err error) error {
	return &Error{Kind: kind, Message: userMessage(err), Err: err}
}

func (s *Service) invalid(kind, err error) error {
	return &Error{Kind: kind, Message: validationMessage(err), Err: err}
}

// userMessage turns a gateway error into text for the user.
func userMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, common.ErrSessionInvalidated):
		return "session expired, please log in again"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, client.ErrMalformedResponse):
		return "unexpected response from server"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	default:
		return "request failed"
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid input"
	}

	fe := verrs[0]
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from the current password", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
