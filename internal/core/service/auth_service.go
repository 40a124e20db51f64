package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
)

// KeyResetPassword holds the transient forgot/reset password bridge.
const KeyResetPassword = "resetPasswordData"

// AuthService implements login, registration, logout and the password
// flows of both identity domains. Sessions only change after the backend
// accepts a request.
type AuthService struct {
	backend ports.Backend
	member  ports.SessionStore
	admin   ports.SessionStore
	store   ports.KVStore
	log     zerolog.Logger
	busy    *inflight
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(backend ports.Backend, member, admin ports.SessionStore, store ports.KVStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		backend: backend,
		member:  member,
		admin:   admin,
		store:   store,
		log:     log,
		busy:    newInflight(),
	}
}

func (s *AuthService) Login(ctx context.Context, creds ports.Credentials) (domain.Session, error) {
	return s.login(ctx, s.member, "login", creds, s.backend.Login)
}

func (s *AuthService) AdminLogin(ctx context.Context, creds ports.Credentials) (domain.Session, error) {
	return s.login(ctx, s.admin, "admin_login", creds, s.backend.AdminLogin)
}

func (s *AuthService) login(
	ctx context.Context,
	sessions ports.SessionStore,
	action string,
	creds ports.Credentials,
	call func(context.Context, ports.Credentials) (map[string]any, error),
) (domain.Session, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	release, ok := s.busy.acquire(action)
	if !ok {
		return domain.Session{}, fmt.Errorf("%s: %w", action, domain.ErrBusy)
	}
	defer release()

	payload, err := call(ctx, creds)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", action, err)
	}

	sess, err := sessions.Update(ctx, payload)
	if err != nil {
		s.log.Error().Err(err).Str("action", action).Msg("backend reply violates login contract")
		return domain.Session{}, err
	}
	return sess, nil
}

func (s *AuthService) Register(ctx context.Context, reg ports.Registration) (domain.Session, error) {
	if strings.TrimSpace(reg.Email) == "" || reg.Password == "" || strings.TrimSpace(reg.Name) == "" {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	release, ok := s.busy.acquire("register")
	if !ok {
		return domain.Session{}, fmt.Errorf("register: %w", domain.ErrBusy)
	}
	defer release()

	payload, err := s.backend.Register(ctx, reg)
	if err != nil {
		return domain.Session{}, fmt.Errorf("register: %w", err)
	}

	sess, err := s.member.Update(ctx, payload)
	if err != nil {
		s.log.Error().Err(err).Msg("backend reply violates registration contract")
		return domain.Session{}, err
	}
	return sess, nil
}

// Logout clears the member session only.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.member.Clear(ctx)
}

// AdminLogout clears the admin session only.
func (s *AuthService) AdminLogout(ctx context.Context) error {
	return s.admin.Clear(ctx)
}

// ForgotPassword asks the backend to mail a reset code and remembers the
// email for the following screens.
func (s *AuthService) ForgotPassword(ctx context.Context, d domain.IdentityDomain, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ErrInvalidCredentials
	}

	release, ok := s.busy.acquire("forgot:" + string(d))
	if !ok {
		return fmt.Errorf("forgot password: %w", domain.ErrBusy)
	}
	defer release()

	if err := s.backend.ForgotPassword(ctx, d, email); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	return s.saveReset(ctx, domain.ResetPasswordData{Domain: d, Email: email})
}

// VerifyResetCode checks code with the backend and stores it for ResetPassword.
func (s *AuthService) VerifyResetCode(ctx context.Context, d domain.IdentityDomain, code string) error {
	data, err := s.loadReset(ctx, d)
	if err != nil {
		return err
	}

	release, ok := s.busy.acquire("verify:" + string(d))
	if !ok {
		return fmt.Errorf("verify reset code: %w", domain.ErrBusy)
	}
	defer release()

	if err := s.backend.VerifyResetCode(ctx, d, data.Email, code); err != nil {
		return fmt.Errorf("verify reset code: %w", err)
	}
	data.ForgetCode = code
	return s.saveReset(ctx, data)
}

// ResetPassword completes the flow and drops the bridge record.
func (s *AuthService) ResetPassword(ctx context.Context, d domain.IdentityDomain, newPassword string) error {
	data, err := s.loadReset(ctx, d)
	if err != nil {
		return err
	}
	if data.ForgetCode == "" {
		return domain.ErrNoResetInProgress
	}

	release, ok := s.busy.acquire("reset:" + string(d))
	if !ok {
		return fmt.Errorf("reset password: %w", domain.ErrBusy)
	}
	defer release()

	if err := s.backend.ResetPassword(ctx, d, data.Email, data.ForgetCode, newPassword); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return s.AbandonReset(ctx)
}

// AbandonReset drops the bridge record, e.g. when the user leaves the flow.
func (s *AuthService) AbandonReset(ctx context.Context) error {
	if err := s.store.Delete(ctx, KeyResetPassword); err != nil {
		return fmt.Errorf("clear reset data: %w", err)
	}
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if !s.member.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}

	release, ok := s.busy.acquire("change_password")
	if !ok {
		return fmt.Errorf("change password: %w", domain.ErrBusy)
	}
	defer release()

	if err := s.backend.ChangePassword(ctx, s.member.Token(), oldPassword, newPassword); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (s *AuthService) saveReset(ctx context.Context, data domain.ResetPasswordData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode reset data: %w", err)
	}
	if err := s.store.Set(ctx, KeyResetPassword, string(raw)); err != nil {
		return fmt.Errorf("save reset data: %w", err)
	}
	return nil
}

// loadReset returns the bridge record of d. A corrupt record is removed.
func (s *AuthService) loadReset(ctx context.Context, d domain.IdentityDomain) (domain.ResetPasswordData, error) {
	raw, found, err := s.store.Get(ctx, KeyResetPassword)
	if err != nil {
		return domain.ResetPasswordData{}, fmt.Errorf("load reset data: %w", err)
	}
	if !found {
		return domain.ResetPasswordData{}, domain.ErrNoResetInProgress
	}

	var data domain.ResetPasswordData
	if err := json.Unmarshal([]byte(raw), &data); err != nil || data.Email == "" {
		_ = s.store.Delete(ctx, KeyResetPassword)
		return domain.ResetPasswordData{}, domain.ErrNoResetInProgress
	}
	if data.Domain != "" && data.Domain != d {
		return domain.ResetPasswordData{}, domain.ErrNoResetInProgress
	}
	return data, nil
}
