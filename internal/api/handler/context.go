package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
)

// sessionView is the public face of a session. The token never leaves the process.
type sessionView struct {
	Domain        string         `json:"domain"`
	Presence      string         `json:"presence"`
	Authenticated bool           `json:"authenticated"`
	Profile       domain.Profile `json:"profile,omitempty"`
}

func viewOf(s domain.Session) sessionView {
	return sessionView{
		Domain:        string(s.Domain),
		Presence:      s.Presence.String(),
		Authenticated: s.IsAuthenticated(),
		Profile:       s.Profile,
	}
}

// bindValid binds the request body into req and runs the echo validator.
// Both failures are reported as 400 before any service call.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// domainParam reads the :domain path segment ("member" or "admin").
func domainParam(c echo.Context) (domain.IdentityDomain, error) {
	switch d := domain.IdentityDomain(c.Param("domain")); d {
	case domain.DomainMember, domain.DomainAdmin:
		return d, nil
	}
	return "", echo.NewHTTPError(http.StatusNotFound, "unknown identity domain")
}

// Sessions resolves the store of an identity domain.
type Sessions interface {
	Session(d domain.IdentityDomain) ports.SessionStore
}
