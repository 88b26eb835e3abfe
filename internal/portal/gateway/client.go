// Package gateway is the portal's single HTTP client for the LMS REST API.
// Every request carries the stored bearer credential when one exists, and
// every failure surfaces as *Error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulearn/lms/internal/core/domain"
	"github.com/edulearn/lms/internal/portal/tokenstore"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// Client talks to the LMS API on behalf of one portal session.
type Client struct {
	baseURL string
	store   tokenstore.Store
	http    *http.Client
	retry   RetryConfig
	breaker BreakerConfig
	log     zerolog.Logger

	transport *transport
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithRetry(rc RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

func WithBreaker(bc BreakerConfig) Option {
	return func(c *Client) { c.breaker = bc }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a Client for baseURL that reads its credential from store.
func New(baseURL string, store tokenstore.Store, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		http:    &http.Client{Timeout: 30 * time.Second},
		retry:   DefaultRetryConfig(),
		breaker: DefaultBreakerConfig(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.transport = newTransport(c.http, c.retry, c.breaker, c.log)
	return c
}

// envelope is the response body shape shared by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Token   string          `json:"token,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// do sends one request and decodes the envelope of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Message: "invalid request payload", Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Message: "invalid request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(ctx, req)

	resp, err := c.transport.do(ctx, req)
	if err != nil {
		var se *serverError
		if errors.As(err, &se) {
			env := parseEnvelope(se.body)
			return nil, statusError(se.status, env.Message, env.Error)
		}
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, networkError(err)
	}

	env := parseEnvelope(raw)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, env.Message, env.Error)
	}
	return &env, nil
}

// authorize attaches the stored credential. A store failure sends the
// request anonymously.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	credential, ok, err := c.store.Load(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("token store unavailable, sending anonymous request")
		return
	}
	if ok {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
}

func parseEnvelope(raw []byte) envelope {
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return env
}

// decode unmarshals one envelope field into out. A malformed success body is
// reported with the status it arrived with.
func decode(raw json.RawMessage, out any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return &Error{Status: http.StatusOK, Message: "empty response from server"}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Status: http.StatusOK, Message: "invalid response from server", Err: err}
	}
	return nil
}

func (c *Client) getData(ctx context.Context, path string, out any) error {
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decode(env.Data, out)
}

func (c *Client) sendData(ctx context.Context, method, path string, body, out any) error {
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(env.Data, out)
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return fmt.Sprintf("%s?%s", path, query.Encode())
}

// ── Auth ──────────────────────────────────────────────────────────────────────

// AuthResult is what login and register return.
type AuthResult struct {
	Token string
	User  *domain.User
}

// RegisterRequest is forwarded to the server as-is.
type RegisterRequest struct {
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Role      domain.Role `json:"role,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return authResult(env)
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*AuthResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/register", in)
	if err != nil {
		return nil, err
	}
	return authResult(env)
}

func authResult(env *envelope) (*AuthResult, error) {
	if env.Token == "" {
		return nil, &Error{Status: http.StatusOK, Message: "response carried no token"}
	}
	var user domain.User
	if err := decode(env.User, &user); err != nil {
		return nil, err
	}
	return &AuthResult{Token: env.Token, User: &user}, nil
}

// Logout asks the server to revoke the current credential.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/auth/logout", nil)
	return err
}

// Me returns the user the stored credential belongs to.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.getData(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ForgotPassword returns the server's confirmation message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	env, err := c.do(ctx, http.MethodPut, "/auth/reset-password/"+url.PathEscape(token), map[string]string{"password": password})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *Client) UpdateDetails(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	var user domain.User
	if err := c.sendData(ctx, http.MethodPut, "/auth/update-details", patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdatePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	env, err := c.do(ctx, http.MethodPut, "/auth/update-password", map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
