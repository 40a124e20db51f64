package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/noteapp/client/internal/app"
	"github.com/noteapp/client/internal/infrastructure/backend"
	"github.com/noteapp/client/internal/infrastructure/db/memory"
)

// fakeBackend is the remote API as seen by the gateway.
type fakeBackend struct {
	mu        sync.Mutex
	lastToken string
	paths     []string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.lastToken = r.Header.Get("token")
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/users/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc","name":"Ada","email":"ada@example.com"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/users/register":
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Email already registered"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/admin/forget-password":
		_, _ = w.Write([]byte(`{"message":"code sent"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/admin/verify-code":
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid reset code"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/posts/p1/like":
		_, _ = w.Write([]byte(`{"liked":true,"likesCount":3}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no route"}`))
	}
}

func (f *fakeBackend) token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastToken
}

func (f *fakeBackend) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.paths {
		if p == call {
			return true
		}
	}
	return false
}

func newTestGateway(t *testing.T) (*echo.Echo, *app.App, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	client := backend.NewClient(backend.Config{BaseURL: srv.URL}, zerolog.Nop())
	a := app.New(memory.NewStore(), client, zerolog.Nop(), app.Options{CheckExpiry: true})
	e := NewRouter(a, zerolog.Nop(), Options{Registry: prometheus.NewRegistry()})
	return e, a, fb
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != location {
		t.Fatalf("expected 302 to %s, got %d %q", location, rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestRouter_BeforeHydration(t *testing.T) {
	e, _, _ := newTestGateway(t)

	if rec := do(e, http.MethodGet, "/profile", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("gated screen before hydration: expected 204, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/admin/dashboard/flagged", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("nested admin screen before hydration: expected 204, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/login", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"loading"`) {
		t.Fatalf("anonymous screen before hydration: expected placeholder, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodGet, "/team", ""); rec.Code != http.StatusOK {
		t.Fatalf("public screen must render before hydration, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readiness before hydration: expected 503, got %d", rec.Code)
	}
}

func TestRouter_MemberJourney(t *testing.T) {
	e, a, fb := newTestGateway(t)
	a.Hydrate(context.Background())

	if rec := do(e, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("readiness after hydration: expected 200, got %d", rec.Code)
	}
	expectRedirect(t, do(e, http.MethodGet, "/profile", ""), "/login")
	expectRedirect(t, do(e, http.MethodGet, "/admin/dashboard", ""), "/admin/login")

	if rec := do(e, http.MethodPost, "/api/posts/p1/like", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("like without session: expected 401, got %d", rec.Code)
	}

	if rec := do(e, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad credentials: expected 401, got %d %s", rec.Code, rec.Body.String())
	}
	if a.Member.IsAuthenticated() {
		t.Fatal("rejected login established a session")
	}

	rec := do(e, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d %s", rec.Code, rec.Body.String())
	}

	expectRedirect(t, do(e, http.MethodGet, "/login", ""), "/")
	if rec := do(e, http.MethodGet, "/profile", ""); rec.Code != http.StatusOK {
		t.Fatalf("profile after login: expected 200, got %d", rec.Code)
	}
	// Member login does not open admin screens.
	expectRedirect(t, do(e, http.MethodGet, "/admin/dashboard/products", ""), "/admin/login")

	rec = do(e, http.MethodPost, "/api/posts/p1/like", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("like: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if fb.token() != "noteApp__abc" {
		t.Fatalf("backend got token %q", fb.token())
	}

	rec = do(e, http.MethodGet, "/posts/p1", "")
	var screen struct {
		Screen       string `json:"screen"`
		Interactions struct {
			Liked     bool `json:"liked"`
			LikeCount int  `json:"likeCount"`
		} `json:"interactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &screen); err != nil {
		t.Fatalf("invalid screen json: %v", err)
	}
	if screen.Screen != "post_detail" || !screen.Interactions.Liked || screen.Interactions.LikeCount != 3 {
		t.Fatalf("unexpected post screen: %+v", screen)
	}

	if rec := do(e, http.MethodPost, "/api/auth/logout", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}
	expectRedirect(t, do(e, http.MethodGet, "/profile", ""), "/login")
}

func TestRouter_NotFound(t *testing.T) {
	e, a, _ := newTestGateway(t)
	a.Hydrate(context.Background())

	rec := do(e, http.MethodGet, "/does-not-exist", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"not_found"`) {
		t.Fatalf("expected not_found screen, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/nothing", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("expected JSON 404 for unknown action, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_Operations(t *testing.T) {
	e, _, _ := newTestGateway(t)

	if rec := do(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
}

func TestRouter_RegisterConflict(t *testing.T) {
	e, a, _ := newTestGateway(t)
	a.Hydrate(context.Background())

	rec := do(e, http.MethodPost, "/api/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"s3cret","confirmPassword":"s3cret"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("taken email: expected 409, got %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "{\"error\":\"Email already registered\"}\n" {
		t.Fatalf("expected the backend message, got %q", got)
	}
	if a.Member.IsAuthenticated() {
		t.Fatal("rejected registration established a session")
	}
}

func TestRouter_AdminPasswordReset(t *testing.T) {
	e, a, fb := newTestGateway(t)
	a.Hydrate(context.Background())

	// /api/admin/password/* shares the /api/admin/ prefix with the static login route.
	rec := do(e, http.MethodPost, "/api/admin/password/forgot", `{"email":"root@example.com"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("forgot: expected 202, got %d %s", rec.Code, rec.Body.String())
	}
	if !fb.called("POST /admin/forget-password") {
		t.Fatal("forgot password did not reach the admin backend route")
	}

	rec = do(e, http.MethodPost, "/api/admin/password/verify", `{"code":"000000"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid reset code") {
		t.Fatalf("wrong code: expected 400 with backend message, got %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(e, http.MethodPost, "/api/robot/password/forgot", `{"email":"root@example.com"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown domain: expected 404, got %d", rec.Code)
	}
}
