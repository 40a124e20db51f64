package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    Sessions
}

func NewAuthHandler(authService ports.AuthService, sessions Sessions) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name            string `json:"name"            validate:"required,max=80"`
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"        validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,nefield=OldPassword"`
}

type sessionsResponse struct {
	Member sessionView `json:"member"`
	Admin  sessionView `json:"admin"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login authenticates a member and establishes the member session.
//
// @Summary      Member login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionView
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.Login(c.Request().Context(), ports.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viewOf(sess))
}

// Register creates a member account and logs it in.
//
// @Summary      Member registration
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  sessionView
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.Register(c.Request().Context(), ports.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, viewOf(sess))
}

// Logout clears the member session.
//
// @Summary      Member logout
// @Tags         auth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminLogin authenticates an admin and establishes the admin session.
//
// @Summary      Admin login
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionView
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/admin/login [post]
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.AdminLogin(c.Request().Context(), ports.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viewOf(sess))
}

// AdminLogout clears the admin session.
//
// @Summary      Admin logout
// @Tags         admin
// @Success      204
// @Router       /api/admin/logout [post]
func (h *AuthHandler) AdminLogout(c echo.Context) error {
	if err := h.authService.AdminLogout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Sessions reports both identity domains.
//
// @Summary      Current sessions
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionsResponse
// @Router       /api/session [get]
func (h *AuthHandler) Sessions(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionsResponse{
		Member: viewOf(h.sessions.Session(domain.DomainMember).Snapshot()),
		Admin:  viewOf(h.sessions.Session(domain.DomainAdmin).Snapshot()),
	})
}

// ForgotPassword starts a password reset for :domain.
//
// @Summary      Request a reset code
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        domain  path      string                 true  "member or admin"
// @Param        body    body      forgotPasswordRequest  true  "Account email"
// @Success      202     {object}  messageResponse
// @Router       /api/{domain}/password/forgot [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	d, err := domainParam(c)
	if err != nil {
		return err
	}
	var req forgotPasswordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), d, req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "reset code sent"})
}

// VerifyResetCode checks the code mailed to the user.
//
// @Summary      Verify a reset code
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        domain  path      string             true  "member or admin"
// @Param        body    body      verifyCodeRequest  true  "Reset code"
// @Success      200     {object}  messageResponse
// @Router       /api/{domain}/password/verify [post]
func (h *AuthHandler) VerifyResetCode(c echo.Context) error {
	d, err := domainParam(c)
	if err != nil {
		return err
	}
	var req verifyCodeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.authService.VerifyResetCode(c.Request().Context(), d, req.Code); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "code verified"})
}

// ResetPassword sets the new password after a verified code.
//
// @Summary      Reset password
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        domain  path      string                true  "member or admin"
// @Param        body    body      resetPasswordRequest  true  "New password"
// @Success      200     {object}  messageResponse
// @Router       /api/{domain}/password/reset [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	d, err := domainParam(c)
	if err != nil {
		return err
	}
	var req resetPasswordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.Request().Context(), d, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// AbandonReset drops an unfinished reset.
//
// @Summary      Abandon a password reset
// @Tags         password
// @Param        domain  path  string  true  "member or admin"
// @Success      204
// @Router       /api/{domain}/password/reset [delete]
func (h *AuthHandler) AbandonReset(c echo.Context) error {
	if _, err := domainParam(c); err != nil {
		return err
	}
	if err := h.authService.AbandonReset(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword updates the logged-in member's password.
//
// @Summary      Change password
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  map[string]string
// @Router       /api/password/change [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password changed"})
}
