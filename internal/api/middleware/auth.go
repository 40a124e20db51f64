package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/noteapp/client/internal/core/ports"
)

// RequireSession rejects API actions while the session of sessions is not
// authenticated. Unlike Guard it never redirects: JSON callers get a 401.
func RequireSession(sessions ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !sessions.IsAuthenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
			}
			return next(c)
		}
	}
}
