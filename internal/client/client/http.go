package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/postboard/internal/client/models"
	"github.com/dmitrijs2005/postboard/internal/client/transport"
	"github.com/dmitrijs2005/postboard/internal/common"
)

const maxErrorBody = 4 << 10

// HTTPClient talks JSON to the gateway under BaseURL (e.g. "http://localhost:8080/api").
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Callers normally pass
// one whose Transport is a *transport.Transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// loginWire tolerates both the documented access_token field and the legacy
// token field.
type loginWire struct {
	AccessToken string       `json:"access_token"`
	Token       string       `json:"token"`
	User        *models.User `json:"user"`
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	return c.login(ctx, "/auth/login", req)
}

func (c *HTTPClient) AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	return c.login(ctx, "/admin/login", req)
}

func (c *HTTPClient) login(ctx context.Context, path string, req LoginRequest) (*LoginResponse, error) {
	var out loginWire
	if err := c.do(transport.Anonymous(ctx), http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}

	token := out.AccessToken
	if token == "" {
		token = out.Token
	}
	if token == "" {
		return nil, fmt.Errorf("%w: login response without token", ErrMalformedResponse)
	}
	if out.User == nil {
		return nil, fmt.Errorf("%w: login response without user", ErrMalformedResponse)
	}
	return &LoginResponse{AccessToken: token, User: out.User}, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	var out models.User
	if err := c.do(transport.Anonymous(ctx), http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(transport.WithToken(ctx, token), http.MethodPost, "/auth/logout", nil, nil)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(transport.Anonymous(ctx), http.MethodPost, "/auth/forgot-password", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(transport.Anonymous(ctx), http.MethodPost, "/auth/reset-password", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/user/change-password", req, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPut, "/user/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	switch {
	case errors.Is(err, common.ErrSessionInvalidated):
		return err
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

// readErrorMessage extracts a message from either a JSON body
// ({"message": ...} or {"error": ...}) or a plain-text body.
func readErrorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(raw))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
