package ports

import (
	"context"

	"github.com/noteapp/client/internal/core/domain"
)

// SessionStore holds the identity of one domain (member or admin).
type SessionStore interface {
	Domain() domain.IdentityDomain
	Hydrate(ctx context.Context) domain.Presence
	Update(ctx context.Context, payload map[string]any) (domain.Session, error)
	UpdateProfile(ctx context.Context, fields domain.Profile) (domain.Session, error)
	Clear(ctx context.Context) error
	Snapshot() domain.Session
	Presence() domain.Presence
	Token() string
	IsAuthenticated() bool
}

// AuthService drives session transitions from backend replies.
type AuthService interface {
	Login(ctx context.Context, creds Credentials) (domain.Session, error)
	Register(ctx context.Context, reg Registration) (domain.Session, error)
	Logout(ctx context.Context) error
	AdminLogin(ctx context.Context, creds Credentials) (domain.Session, error)
	AdminLogout(ctx context.Context) error

	ForgotPassword(ctx context.Context, d domain.IdentityDomain, email string) error
	VerifyResetCode(ctx context.Context, d domain.IdentityDomain, code string) error
	ResetPassword(ctx context.Context, d domain.IdentityDomain, newPassword string) error
	AbandonReset(ctx context.Context) error
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
}

// InteractionService mirrors like/save/comment state per post.
type InteractionService interface {
	Get(entityID string) domain.InteractionRecord
	RecordInteraction(ctx context.Context, entityID string, kind domain.InteractionKind, value bool) error
	Reconcile(ctx context.Context, entityID string, auth domain.Authoritative)

	ToggleLike(ctx context.Context, postID string) (domain.InteractionRecord, error)
	ToggleSave(ctx context.Context, postID string) (domain.InteractionRecord, error)
	ToggleComments(ctx context.Context, postID string) (domain.InteractionRecord, error)
	RefreshComments(ctx context.Context, postID string) (domain.InteractionRecord, error)
	AddComment(ctx context.Context, postID, content string) (domain.InteractionRecord, error)
	DeleteComment(ctx context.Context, postID, commentID string) (domain.InteractionRecord, error)
}
