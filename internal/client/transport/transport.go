// Package transport implements the authenticated request pipeline: an
// http.RoundTripper that attaches the stored bearer token to every outbound
// request and turns a 401 into a forced logout.
//
// The forced logout clears the credential store and fails the request with an
// error matching common.ErrSessionInvalidated. It never touches in-memory
// session state; the top-level handler that observes the error is expected
// to resynchronize (see session.Service.Restore).
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/postboard/internal/common"
	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/google/uuid"
)

// TokenStore is the slice of the credential store the pipeline needs.
type TokenStore interface {
	Token(ctx context.Context) string
	Clear(ctx context.Context)
}

type credentialMode int

const (
	modeStored credentialMode = iota
	modeAnonymous
	modeExplicit
)

type credentialKey struct{}

type credential struct {
	mode  credentialMode
	token string
}

// Anonymous marks a request as a public exchange (login, register, password
// reset). No bearer is attached and a 401 is returned to the caller as an
// ordinary response, since it means "bad credentials" there.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, credentialKey{}, credential{mode: modeAnonymous})
}

// WithToken attaches token instead of the stored one. A 401 is returned as
// an ordinary response; the store is left alone because token is detached
// from it (used by the best-effort logout notification).
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, credential{mode: modeExplicit, token: token})
}

func credentialFrom(ctx context.Context) credential {
	c, _ := ctx.Value(credentialKey{}).(credential)
	return c
}

// InvalidatedError is returned by RoundTrip when the backend rejected the
// stored token.
type InvalidatedError struct {
	Method    string
	Path      string
	RequestID string
}

func (e *InvalidatedError) Error() string {
	return fmt.Sprintf("%s %s (request %s): %s", e.Method, e.Path, e.RequestID, common.ErrSessionInvalidated)
}

func (e *InvalidatedError) Unwrap() error {
	return common.ErrSessionInvalidated
}

type Transport struct {
	store         TokenStore
	base          http.RoundTripper
	logger        logging.Logger
	onInvalidated func(ctx context.Context)
	newRequestID  func() string
}

type Option func(*Transport)

// WithBase sets the next RoundTripper. Defaults to http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) { t.base = rt }
}

func WithLogger(l logging.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// WithInvalidationHook registers fn to run after every forced logout.
// fn may be called concurrently and more than once for one invalidation.
func WithInvalidationHook(fn func(ctx context.Context)) Option {
	return func(t *Transport) { t.onInvalidated = fn }
}

func New(store TokenStore, opts ...Option) *Transport {
	t := &Transport{
		store:        store,
		base:         http.DefaultTransport,
		logger:       logging.Discard(),
		newRequestID: uuid.NewString,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	cred := credentialFrom(ctx)

	r := req.Clone(ctx)
	if r.Header.Get(common.RequestIDHeaderName) == "" {
		r.Header.Set(common.RequestIDHeaderName, t.newRequestID())
	}
	requestID := r.Header.Get(common.RequestIDHeaderName)

	var token string
	switch cred.mode {
	case modeStored:
		token = t.store.Token(ctx)
	case modeExplicit:
		token = cred.token
	}
	if token != "" {
		r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	} else {
		r.Header.Del(common.AuthorizationHeaderName)
	}

	resp, err := t.base.RoundTrip(r)
	if err != nil {
		return nil, err
	}

	log := t.logger.With("method", r.Method, "path", r.URL.Path, "status", resp.StatusCode, "request_id", requestID)

	switch {
	case resp.StatusCode == http.StatusUnauthorized && cred.mode == modeStored:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()

		t.store.Clear(ctx)
		log.Warn(ctx, "backend rejected stored token, credentials cleared")
		if t.onInvalidated != nil {
			t.onInvalidated(ctx)
		}
		return nil, &InvalidatedError{Method: r.Method, Path: r.URL.Path, RequestID: requestID}

	case resp.StatusCode == http.StatusForbidden:
		log.Warn(ctx, "access denied")

	case resp.StatusCode >= http.StatusInternalServerError:
		log.Error(ctx, "server error")
	}

	return resp, nil
}
