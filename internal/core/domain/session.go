package domain

import "strings"

// TokenPrefix is prepended to every token before it is stored or sent to the backend.
const TokenPrefix = "noteApp__"

// Presence is the hydration state of a session.
type Presence int

const (
	// PresenceUnknown means persisted storage has not been read yet.
	PresenceUnknown Presence = iota
	PresenceAbsent
	PresencePresent
)

func (p Presence) String() string {
	switch p {
	case PresenceAbsent:
		return "absent"
	case PresencePresent:
		return "present"
	default:
		return "unknown"
	}
}

// IdentityDomain separates member and admin sessions. The two never share
// storage or state.
type IdentityDomain string

const (
	DomainMember IdentityDomain = "member"
	DomainAdmin  IdentityDomain = "admin"
)

// StorageKey is the persisted key holding the session record of d.
func (d IdentityDomain) StorageKey() string {
	if d == DomainAdmin {
		return "adminData"
	}
	return "userData"
}

// Profile is the identity payload returned by the backend at login. Its
// shape differs between member and admin replies so it is kept open.
type Profile map[string]any

// Clone returns a shallow copy of p.
func (p Profile) Clone() Profile {
	if p == nil {
		return Profile{}
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String returns the string value stored under key, or "".
func (p Profile) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Session is a point-in-time view of one identity domain.
type Session struct {
	Domain   IdentityDomain `json:"domain"`
	Presence Presence       `json:"-"`
	Token    string         `json:"-"`
	Profile  Profile        `json:"profile,omitempty"`
}

// IsAuthenticated reports presence == present with a usable token.
func (s Session) IsAuthenticated() bool {
	return s.Presence == PresencePresent && TokenBody(s.Token) != ""
}

// NormalizeToken prepends TokenPrefix unless t already carries it.
// Applying it twice is the same as applying it once.
func NormalizeToken(t string) string {
	if strings.HasPrefix(t, TokenPrefix) {
		return t
	}
	return TokenPrefix + t
}

// TokenBody strips TokenPrefix, returning the opaque part issued by the backend.
func TokenBody(t string) string {
	return strings.TrimPrefix(t, TokenPrefix)
}
