package ports

import (
	"context"

	"github.com/noteapp/client/internal/core/domain"
)

// Credentials carries a login request.
type Credentials struct {
	Email    string
	Password string
}

// Registration carries a member sign-up request.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// Backend is the remote knowledge sharing API. Tokens passed in are already
// normalized with domain.TokenPrefix.
type Backend interface {
	// Login returns the raw identity payload ({token, ...fields}).
	Login(ctx context.Context, creds Credentials) (map[string]any, error)
	Register(ctx context.Context, reg Registration) (map[string]any, error)
	// AdminLogin returns {token, admin: {...}}.
	AdminLogin(ctx context.Context, creds Credentials) (map[string]any, error)

	ForgotPassword(ctx context.Context, d domain.IdentityDomain, email string) error
	VerifyResetCode(ctx context.Context, d domain.IdentityDomain, email, code string) error
	ResetPassword(ctx context.Context, d domain.IdentityDomain, email, code, newPassword string) error
	ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error

	ToggleLike(ctx context.Context, token, postID string) (domain.LikeResult, error)
	ToggleSave(ctx context.Context, token, postID string) (saved bool, err error)
	ListComments(ctx context.Context, token, postID string) ([]domain.Comment, error)
	AddComment(ctx context.Context, token, postID, content string) (domain.Comment, error)
	DeleteComment(ctx context.Context, token, postID, commentID string) error
}
