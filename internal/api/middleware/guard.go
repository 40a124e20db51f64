package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/service"
)

// RouteKey is the echo context key holding the matched domain.Route.
const RouteKey = "route"

type placeholder struct {
	Screen string `json:"screen"`
}

// Guard gates one screen (or a group of nested screens) behind the route's
// requirement:
//   - Allow renders the screen.
//   - RedirectToLogin / RedirectToHome answer 302 to the domain's path.
//   - Pending renders nothing (204) on gated screens and a loading
//     placeholder on anonymous-only screens; it never redirects.
func Guard(g *service.RouteGuard, route domain.Route) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := g.Evaluate(route)
			c.Response().Header().Set("X-Guard-Decision", decision.String())

			switch decision {
			case domain.Allow:
				c.Set(RouteKey, route)
				return next(c)
			case domain.Pending:
				c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
				if route.Requirement == domain.RequiresAnonymous {
					return c.JSON(http.StatusOK, placeholder{Screen: "loading"})
				}
				return c.NoContent(http.StatusNoContent)
			default:
				return c.Redirect(http.StatusFound, g.Target(route, decision))
			}
		}
	}
}
