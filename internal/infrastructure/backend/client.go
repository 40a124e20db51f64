// Package backend is the REST client of the remote knowledge sharing API.
//
// Authenticated calls carry the prefixed session token in a custom header
// (no Bearer scheme). Every request carries an X-Request-ID.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
	"github.com/noteapp/client/internal/pkg/metrics"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultTokenHeader = "token"
	requestIDHeader    = "X-Request-ID"
	maxErrorBody       = 4 << 10
)

// Config captures the settings of the backend client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	TokenHeader string
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client implements ports.Backend over HTTP+JSON.
type Client struct {
	base   string
	header string
	http   *http.Client
	log    zerolog.Logger
}

var _ ports.Backend = (*Client)(nil)

func NewClient(cfg Config, log zerolog.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	header := cfg.TokenHeader
	if header == "" {
		header = defaultTokenHeader
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		header: header,
		http:   hc,
		log:    log,
	}
}

// --- Identity ---

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registrationBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, creds ports.Credentials) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, request{
		op: "login", method: http.MethodPost, path: "/users/login", credentials: true,
		body: credentialsBody{Email: creds.Email, Password: creds.Password},
	}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, reg ports.Registration) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, request{
		op: "register", method: http.MethodPost, path: "/users/register",
		body: registrationBody{Name: reg.Name, Email: reg.Email, Password: reg.Password},
	}, &out)
	return out, err
}

func (c *Client) AdminLogin(ctx context.Context, creds ports.Credentials) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, request{
		op: "admin_login", method: http.MethodPost, path: "/admin/login", credentials: true,
		body: credentialsBody{Email: creds.Email, Password: creds.Password},
	}, &out)
	return out, err
}

func (c *Client) ForgotPassword(ctx context.Context, d domain.IdentityDomain, email string) error {
	return c.do(ctx, request{
		op: "forgot_password", method: http.MethodPost, path: identityPath(d) + "/forget-password",
		body: map[string]string{"email": email},
	}, nil)
}

func (c *Client) VerifyResetCode(ctx context.Context, d domain.IdentityDomain, email, code string) error {
	return c.do(ctx, request{
		op: "verify_code", method: http.MethodPost, path: identityPath(d) + "/verify-code",
		body: map[string]string{"email": email, "forgetCode": code},
	}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, d domain.IdentityDomain, email, code, newPassword string) error {
	return c.do(ctx, request{
		op: "reset_password", method: http.MethodPost, path: identityPath(d) + "/reset-password",
		body: map[string]string{"email": email, "forgetCode": code, "password": newPassword},
	}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error {
	return c.do(ctx, request{
		op: "change_password", method: http.MethodPatch, path: "/users/change-password", token: token,
		verifiesPassword: true,
		body:             map[string]string{"oldPassword": oldPassword, "newPassword": newPassword},
	}, nil)
}

// --- Interactions ---

func (c *Client) ToggleLike(ctx context.Context, token, postID string) (domain.LikeResult, error) {
	var out domain.LikeResult
	err := c.do(ctx, request{
		op: "toggle_like", method: http.MethodPost, path: postPath(postID, "like"), token: token,
	}, &out)
	return out, err
}

func (c *Client) ToggleSave(ctx context.Context, token, postID string) (bool, error) {
	var out struct {
		Saved bool `json:"saved"`
	}
	err := c.do(ctx, request{
		op: "toggle_save", method: http.MethodPost, path: postPath(postID, "save"), token: token,
	}, &out)
	return out.Saved, err
}

func (c *Client) ListComments(ctx context.Context, token, postID string) ([]domain.Comment, error) {
	var out struct {
		Comments []domain.Comment `json:"comments"`
	}
	err := c.do(ctx, request{
		op: "list_comments", method: http.MethodGet, path: postPath(postID, "comments"), token: token,
	}, &out)
	if out.Comments == nil {
		out.Comments = []domain.Comment{}
	}
	return out.Comments, err
}

func (c *Client) AddComment(ctx context.Context, token, postID, content string) (domain.Comment, error) {
	var out struct {
		Comment domain.Comment `json:"comment"`
	}
	err := c.do(ctx, request{
		op: "add_comment", method: http.MethodPost, path: postPath(postID, "comments"), token: token,
		body: map[string]string{"content": content},
	}, &out)
	return out.Comment, err
}

func (c *Client) DeleteComment(ctx context.Context, token, postID, commentID string) error {
	return c.do(ctx, request{
		op: "delete_comment", method: http.MethodDelete,
		path: postPath(postID, "comments") + "/" + url.PathEscape(commentID), token: token,
	}, nil)
}

// --- Transport ---

type request struct {
	op     string
	method string
	path   string
	token  string
	body   any
	// credentials marks login calls, whose 4xx replies mean bad credentials.
	credentials bool
	// verifiesPassword marks calls that check a password the user typed, so
	// a 401/403 reply is about that password and not the session token.
	verifiesPassword bool
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", r.op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.base+r.path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set(c.header, domain.NormalizeToken(r.token))
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(r.op, "error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("%s: %w: %w", r.op, domain.ErrBackend, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestDuration.WithLabelValues(r.op, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	c.log.Debug().
		Str("op", r.op).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(r, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: decode: %w: %w", r.op, domain.ErrBackend, err)
	}
	return nil
}

func (c *Client) statusError(r request, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	code := resp.StatusCode
	switch {
	case r.credentials && code >= 400 && code < 500:
		return fmt.Errorf("%s: %w: %s", r.op, domain.ErrInvalidCredentials, msg)
	case (code == http.StatusUnauthorized || code == http.StatusForbidden) && !r.verifiesPassword:
		return fmt.Errorf("%s: %w: %s", r.op, domain.ErrUnauthorized, msg)
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: %w: %s", r.op, domain.ErrNotFound, msg)
	case code == http.StatusBadRequest, code == http.StatusUnauthorized, code == http.StatusForbidden,
		code == http.StatusConflict, code == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", r.op, &domain.RejectedError{Status: code, Message: msg})
	}
	return fmt.Errorf("%s: %w: status %d: %s", r.op, domain.ErrBackend, code, msg)
}

func identityPath(d domain.IdentityDomain) string {
	if d == domain.DomainAdmin {
		return "/admin"
	}
	return "/users"
}

func postPath(postID, suffix string) string {
	return "/posts/" + url.PathEscape(postID) + "/" + suffix
}
