package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
	"github.com/noteapp/client/internal/pkg/metrics"
)

var (
	errCorruptRecord = errors.New("corrupt session record")
	errStaleToken    = errors.New("session token expired")
)

// envelopeKeys are nested identity objects flattened into the profile.
// Admin replies carry {token, admin: {...}}.
var envelopeKeys = []string{"admin", "user"}

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is the source of truth for who is logged in within one
// identity domain. It is safe for concurrent use.
type SessionStore struct {
	mu          sync.RWMutex
	dom         domain.IdentityDomain
	session     domain.Session
	store       ports.KVStore
	log         zerolog.Logger
	checkExpiry bool
	now         func() time.Time
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithExpiryCheck toggles rejection of persisted JWT tokens whose exp has passed.
func WithExpiryCheck(enabled bool) SessionOption {
	return func(s *SessionStore) { s.checkExpiry = enabled }
}

// WithClock overrides the time source used for the expiry check.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore returns a store for d in the unknown state. Call Hydrate
// once at startup.
func NewSessionStore(d domain.IdentityDomain, store ports.KVStore, log zerolog.Logger, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		dom:         d,
		session:     domain.Session{Domain: d, Presence: domain.PresenceUnknown},
		store:       store,
		log:         log.With().Str("domain", string(d)).Logger(),
		checkExpiry: true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) Domain() domain.IdentityDomain {
	return s.dom
}

// Hydrate reads the persisted record once. A missing, unreadable, corrupt or
// expired record leaves the session absent; corrupt and expired records are
// removed. Calls after the first transition out of unknown are no-ops.
func (s *SessionStore) Hydrate(ctx context.Context) domain.Presence {
	if p := s.Presence(); p != domain.PresenceUnknown {
		return p
	}

	key := s.dom.StorageKey()
	raw, found, readErr := s.store.Get(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Update or Clear may have run while storage was being read.
	if s.session.Presence != domain.PresenceUnknown {
		return s.session.Presence
	}

	transition := "hydrate_absent"
	switch {
	case readErr != nil:
		s.log.Warn().Err(readErr).Msg("session storage unreadable, treating as logged out")
		s.setAbsent()
	case !found:
		s.setAbsent()
	default:
		sess, err := s.decode(raw)
		if err != nil {
			transition = "hydrate_corrupt"
			if errors.Is(err, errStaleToken) {
				transition = "hydrate_stale"
			}
			s.log.Debug().Err(err).Msg("discarding persisted session")
			if delErr := s.store.Delete(ctx, key); delErr != nil {
				s.log.Warn().Err(delErr).Msg("failed to remove persisted session")
			}
			s.setAbsent()
			break
		}
		transition = "hydrate_present"
		s.session = sess
	}

	metrics.SessionTransitionsTotal.WithLabelValues(string(s.dom), transition).Inc()
	return s.session.Presence
}

// Update installs a fresh login/registration reply. The token is normalized
// and the remaining fields (including a nested admin/user object) become the
// profile. A payload without a token returns domain.ErrMissingToken and
// leaves the session untouched.
func (s *SessionStore) Update(ctx context.Context, payload map[string]any) (domain.Session, error) {
	tok, _ := payload["token"].(string)
	tok = strings.TrimSpace(tok)
	if domain.TokenBody(tok) == "" {
		return domain.Session{}, fmt.Errorf("update %s session: %w", s.dom, domain.ErrMissingToken)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = domain.Session{
		Domain:   s.dom,
		Presence: domain.PresencePresent,
		Token:    domain.NormalizeToken(tok),
		Profile:  flattenProfile(payload),
	}
	s.persist(ctx)

	metrics.SessionTransitionsTotal.WithLabelValues(string(s.dom), "update").Inc()
	s.log.Info().Str("name", s.session.Profile.String("name")).Msg("session established")
	return s.snapshot(), nil
}

// UpdateProfile merges edited identity fields into a present session,
// keeping its token.
func (s *SessionStore) UpdateProfile(ctx context.Context, fields domain.Profile) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Presence != domain.PresencePresent {
		return domain.Session{}, domain.ErrNotAuthenticated
	}

	profile := s.session.Profile.Clone()
	for k, v := range fields {
		if k == "token" {
			continue
		}
		profile[k] = v
	}
	s.session.Profile = profile
	s.persist(ctx)

	metrics.SessionTransitionsTotal.WithLabelValues(string(s.dom), "profile_update").Inc()
	return s.snapshot(), nil
}

// Clear logs the domain out and removes its persisted record. It is safe to
// call without a session; the in-memory state is reset even when storage
// fails.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setAbsent()
	metrics.SessionTransitionsTotal.WithLabelValues(string(s.dom), "clear").Inc()

	if err := s.store.Delete(ctx, s.dom.StorageKey()); err != nil {
		return fmt.Errorf("clear %s session: %w", s.dom, err)
	}
	return nil
}

// Snapshot returns a copy of the current session.
func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *SessionStore) Presence() domain.Presence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Presence
}

// Token returns the normalized token, or "" when absent.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated()
}

func (s *SessionStore) snapshot() domain.Session {
	out := s.session
	if out.Profile != nil {
		out.Profile = out.Profile.Clone()
	}
	return out
}

func (s *SessionStore) setAbsent() {
	s.session = domain.Session{Domain: s.dom, Presence: domain.PresenceAbsent}
}

// persist writes {...profile, token}. A storage failure keeps the in-memory
// session; it only costs the next process a fresh login.
func (s *SessionStore) persist(ctx context.Context) {
	record := s.session.Profile.Clone()
	record["token"] = s.session.Token

	data, err := json.Marshal(record)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode session record")
		return
	}
	if err := s.store.Set(ctx, s.dom.StorageKey(), string(data)); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist session")
	}
}

func (s *SessionStore) decode(raw string) (domain.Session, error) {
	var record map[string]any
	if err := json.Unmarshal([]byte(raw), &record); err != nil || record == nil {
		return domain.Session{}, errCorruptRecord
	}

	tok, _ := record["token"].(string)
	if domain.TokenBody(tok) == "" {
		return domain.Session{}, errCorruptRecord
	}
	if s.checkExpiry && s.expired(domain.TokenBody(tok)) {
		return domain.Session{}, errStaleToken
	}

	return domain.Session{
		Domain:   s.dom,
		Presence: domain.PresencePresent,
		Token:    domain.NormalizeToken(tok),
		Profile:  flattenProfile(record),
	}, nil
}

// expired reports whether body is a JWT whose exp lies in the past. Tokens
// that are not JWTs are opaque and never expire client-side.
func (s *SessionStore) expired(body string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(body, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.now())
}

func flattenProfile(payload map[string]any) domain.Profile {
	profile := make(domain.Profile, len(payload))
	for k, v := range payload {
		if k == "token" || isEnvelope(k, v) {
			continue
		}
		profile[k] = v
	}
	for _, key := range envelopeKeys {
		nested, ok := payload[key].(map[string]any)
		if !ok {
			continue
		}
		for k, v := range nested {
			if k != "token" {
				profile[k] = v
			}
		}
	}
	return profile
}

func isEnvelope(key string, v any) bool {
	if _, ok := v.(map[string]any); !ok {
		return false
	}
	for _, k := range envelopeKeys {
		if k == key {
			return true
		}
	}
	return false
}
