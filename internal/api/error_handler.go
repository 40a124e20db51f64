package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/noteapp/client/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, validation, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// User-caused backend rejections keep the backend's message.
	var rej *domain.RejectedError
	if errors.As(err, &rej) {
		if rej.Status == http.StatusConflict {
			return http.StatusConflict, rej.Message
		}
		return http.StatusBadRequest, rej.Message
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not logged in"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "session rejected, please log in again"
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "request already in progress"
	case errors.Is(err, domain.ErrNoResetInProgress):
		return http.StatusConflict, "no password reset in progress"
	case errors.Is(err, domain.ErrInvalidKind):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrMissingToken):
		// Contract violation by the backend: worth an error log.
		log.Error().Err(err).Str("path", c.Path()).Msg("backend reply without token")
		return http.StatusBadGateway, "unexpected reply from backend"
	case errors.Is(err, domain.ErrBackend):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend call failed")
		return http.StatusBadGateway, "backend unavailable, please retry"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
