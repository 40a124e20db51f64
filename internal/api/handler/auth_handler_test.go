package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
	"github.com/noteapp/client/internal/core/service"
	"github.com/noteapp/client/internal/infrastructure/db/memory"
)

type stubAuthService struct {
	loginFn  func(ctx context.Context, creds ports.Credentials) (domain.Session, error)
	forgotFn func(ctx context.Context, d domain.IdentityDomain, email string) error
	calls    int
}

func (s *stubAuthService) Login(ctx context.Context, creds ports.Credentials) (domain.Session, error) {
	s.calls++
	return s.loginFn(ctx, creds)
}

func (s *stubAuthService) Register(ctx context.Context, reg ports.Registration) (domain.Session, error) {
	s.calls++
	return domain.Session{Domain: domain.DomainMember, Presence: domain.PresencePresent, Token: "noteApp__r", Profile: domain.Profile{"name": reg.Name}}, nil
}

func (s *stubAuthService) Logout(context.Context) error      { s.calls++; return nil }
func (s *stubAuthService) AdminLogout(context.Context) error { s.calls++; return nil }

func (s *stubAuthService) AdminLogin(ctx context.Context, creds ports.Credentials) (domain.Session, error) {
	s.calls++
	return s.loginFn(ctx, creds)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, d domain.IdentityDomain, email string) error {
	s.calls++
	return s.forgotFn(ctx, d, email)
}

func (s *stubAuthService) VerifyResetCode(context.Context, domain.IdentityDomain, string) error {
	s.calls++
	return nil
}

func (s *stubAuthService) ResetPassword(context.Context, domain.IdentityDomain, string) error {
	s.calls++
	return domain.ErrNoResetInProgress
}

func (s *stubAuthService) AbandonReset(context.Context) error { s.calls++; return nil }

func (s *stubAuthService) ChangePassword(context.Context, string, string) error {
	s.calls++
	return nil
}

// stubSessions serves two real session stores over an in-memory KV.
type stubSessions struct {
	member *service.SessionStore
	admin  *service.SessionStore
}

func newStubSessions() *stubSessions {
	kv := memory.NewStore()
	s := &stubSessions{
		member: service.NewSessionStore(domain.DomainMember, kv, zerolog.Nop()),
		admin:  service.NewSessionStore(domain.DomainAdmin, kv, zerolog.Nop()),
	}
	s.member.Hydrate(context.Background())
	s.admin.Hydrate(context.Background())
	return s
}

func (s *stubSessions) Session(d domain.IdentityDomain) ports.SessionStore {
	if d == domain.DomainAdmin {
		return s.admin
	}
	return s.member
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, creds ports.Credentials) (domain.Session, error) {
			if creds.Email != "ada@example.com" || creds.Password != "s3cret" {
				t.Fatalf("unexpected credentials: %+v", creds)
			}
			return domain.Session{
				Domain:   domain.DomainMember,
				Presence: domain.PresencePresent,
				Token:    "noteApp__abc",
				Profile:  domain.Profile{"name": "Ada"},
			}, nil
		},
	}
	h := NewAuthHandler(stub, newStubSessions())

	c, rec := newJSONContext(http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "noteApp__abc") {
		t.Fatal("token leaked into the response")
	}

	var resp sessionView
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Authenticated || resp.Presence != "present" || resp.Profile.String("name") != "Ada" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_ValidationFailure(t *testing.T) {
	stub := &stubAuthService{}
	h := NewAuthHandler(stub, newStubSessions())

	for _, body := range []string{`{"email":"not-an-email","password":"x"}`, `{"email":"a@b.co"}`, `{`} {
		c, _ := newJSONContext(http.MethodPost, "/api/auth/login", body)
		if code := httpCode(t, h.Login(c)); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, code)
		}
	}
	if stub.calls != 0 {
		t.Fatal("service called with an invalid form")
	}
}

func TestAuthHandler_Login_ServiceErrorPropagates(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.Credentials) (domain.Session, error) {
			return domain.Session{}, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, newStubSessions())

	c, _ := newJSONContext(http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"bad"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Register(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, newStubSessions())

	c, _ := newJSONContext(http.MethodPost, "/api/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"s3cret","confirmPassword":"other"}`)
	if code := httpCode(t, h.Register(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched confirmation, got %d", code)
	}

	c, rec := newJSONContext(http.MethodPost, "/api/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"s3cret","confirmPassword":"s3cret"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_ForgotPassword_Domain(t *testing.T) {
	var gotDomain domain.IdentityDomain
	stub := &stubAuthService{
		forgotFn: func(_ context.Context, d domain.IdentityDomain, _ string) error {
			gotDomain = d
			return nil
		},
	}
	h := NewAuthHandler(stub, newStubSessions())

	c, rec := newJSONContext(http.MethodPost, "/", `{"email":"root@example.com"}`)
	c.SetParamNames("domain")
	c.SetParamValues("admin")
	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted || gotDomain != domain.DomainAdmin {
		t.Fatalf("unexpected result: %d %s", rec.Code, gotDomain)
	}

	c, _ = newJSONContext(http.MethodPost, "/", `{"email":"root@example.com"}`)
	c.SetParamNames("domain")
	c.SetParamValues("guest")
	if code := httpCode(t, h.ForgotPassword(c)); code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown domain, got %d", code)
	}
}

func TestAuthHandler_Sessions(t *testing.T) {
	sessions := newStubSessions()
	_, _ = sessions.admin.Update(context.Background(), map[string]any{"token": "adm", "admin": map[string]any{"name": "Root"}})
	h := NewAuthHandler(&stubAuthService{}, sessions)

	c, rec := newJSONContext(http.MethodGet, "/api/session", "")
	if err := h.Sessions(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp sessionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Member.Authenticated || resp.Member.Presence != "absent" {
		t.Fatalf("unexpected member view: %+v", resp.Member)
	}
	if !resp.Admin.Authenticated || resp.Admin.Profile.String("name") != "Root" {
		t.Fatalf("unexpected admin view: %+v", resp.Admin)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	stub := &stubAuthService{}
	h := NewAuthHandler(stub, newStubSessions())

	c, rec := newJSONContext(http.MethodPost, "/api/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || stub.calls != 1 {
		t.Fatalf("unexpected result: %d calls=%d", rec.Code, stub.calls)
	}
}
