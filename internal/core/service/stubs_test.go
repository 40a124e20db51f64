package service

import (
	"context"
	"errors"
	"sync"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub storage
// ---------------------------------------------------------------------------

var errStorage = errors.New("storage unavailable")

type stubKV struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error // if set, Get returns this error
	setErr  error // if set, Set returns this error
	sets    map[string]int
	deletes map[string]int
}

func newStubKV() *stubKV {
	return &stubKV{
		data:    make(map[string]string),
		sets:    make(map[string]int),
		deletes: make(map[string]int),
	}
}

func (s *stubKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.sets[key]++
	return nil
}

func (s *stubKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	s.deletes[key]++
	return nil
}

func (s *stubKV) Ping(context.Context) error { return nil }
func (s *stubKV) Close() error               { return nil }

func (s *stubKV) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *stubKV) setCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[key]
}

// ---------------------------------------------------------------------------
// Stub backend
// ---------------------------------------------------------------------------

// stubBackend answers from the fields below. gate, when set, blocks every
// call until it is closed so tests can observe the in-flight state.
type stubBackend struct {
	mu    sync.Mutex
	gate  chan struct{}
	calls map[string]int
	err   error // if set, every call fails with it

	loginReply      map[string]any
	adminLoginReply map[string]any
	like            domain.LikeResult
	saved           bool
	comments        []domain.Comment
	created         domain.Comment

	lastToken string
	lastReset [3]string // email, code, password
}

func newStubBackend() *stubBackend {
	return &stubBackend{calls: make(map[string]int)}
}

var _ ports.Backend = (*stubBackend)(nil)

func (b *stubBackend) enter(op, token string) error {
	b.mu.Lock()
	b.calls[op]++
	if token != "" {
		b.lastToken = token
	}
	gate, err := b.gate, b.err
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (b *stubBackend) count(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *stubBackend) Login(_ context.Context, _ ports.Credentials) (map[string]any, error) {
	if err := b.enter("login", ""); err != nil {
		return nil, err
	}
	return b.loginReply, nil
}

func (b *stubBackend) Register(_ context.Context, _ ports.Registration) (map[string]any, error) {
	if err := b.enter("register", ""); err != nil {
		return nil, err
	}
	return b.loginReply, nil
}

func (b *stubBackend) AdminLogin(_ context.Context, _ ports.Credentials) (map[string]any, error) {
	if err := b.enter("admin_login", ""); err != nil {
		return nil, err
	}
	return b.adminLoginReply, nil
}

func (b *stubBackend) ForgotPassword(_ context.Context, _ domain.IdentityDomain, _ string) error {
	return b.enter("forgot", "")
}

func (b *stubBackend) VerifyResetCode(_ context.Context, _ domain.IdentityDomain, _, _ string) error {
	return b.enter("verify", "")
}

func (b *stubBackend) ResetPassword(_ context.Context, _ domain.IdentityDomain, email, code, password string) error {
	b.mu.Lock()
	b.lastReset = [3]string{email, code, password}
	b.mu.Unlock()
	return b.enter("reset", "")
}

func (b *stubBackend) ChangePassword(_ context.Context, token, _, _ string) error {
	return b.enter("change_password", token)
}

func (b *stubBackend) ToggleLike(_ context.Context, token, _ string) (domain.LikeResult, error) {
	if err := b.enter("like", token); err != nil {
		return domain.LikeResult{}, err
	}
	return b.like, nil
}

func (b *stubBackend) ToggleSave(_ context.Context, token, _ string) (bool, error) {
	if err := b.enter("save", token); err != nil {
		return false, err
	}
	return b.saved, nil
}

func (b *stubBackend) ListComments(_ context.Context, token, _ string) ([]domain.Comment, error) {
	if err := b.enter("list_comments", token); err != nil {
		return nil, err
	}
	return b.comments, nil
}

func (b *stubBackend) AddComment(_ context.Context, token, _, _ string) (domain.Comment, error) {
	if err := b.enter("add_comment", token); err != nil {
		return domain.Comment{}, err
	}
	return b.created, nil
}

func (b *stubBackend) DeleteComment(_ context.Context, token, _, _ string) error {
	return b.enter("delete_comment", token)
}

// fixedPresence is a PresenceSource / TokenSource with a settable state.
type fixedPresence struct {
	presence domain.Presence
	token    string
}

func (f *fixedPresence) Presence() domain.Presence { return f.presence }
func (f *fixedPresence) Token() string             { return f.token }
func (f *fixedPresence) IsAuthenticated() bool {
	return f.presence == domain.PresencePresent && domain.TokenBody(f.token) != ""
}
