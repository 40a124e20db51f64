package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
)

// ScreenHandler renders the screen envelope a front end mounts once the
// guard allowed the navigation.
type ScreenHandler struct {
	sessions     Sessions
	interactions ports.InteractionService
}

func NewScreenHandler(sessions Sessions, interactions ports.InteractionService) *ScreenHandler {
	return &ScreenHandler{sessions: sessions, interactions: interactions}
}

type screenResponse struct {
	Screen       string                    `json:"screen"`
	Path         string                    `json:"path"`
	Params       map[string]string         `json:"params,omitempty"`
	Session      sessionView               `json:"session"`
	Interactions *domain.InteractionRecord `json:"interactions,omitempty"`
}

// Render returns the handler of route.
func (h *ScreenHandler) Render(route domain.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, h.envelope(c, route))
	}
}

// NotFound renders the public 404 screen.
func (h *ScreenHandler) NotFound(route domain.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, h.envelope(c, route))
	}
}

func (h *ScreenHandler) envelope(c echo.Context, route domain.Route) screenResponse {
	resp := screenResponse{
		Screen:  route.Name,
		Path:    c.Request().URL.Path,
		Session: viewOf(h.sessions.Session(route.Domain).Snapshot()),
	}

	if names := c.ParamNames(); len(names) > 0 {
		resp.Params = make(map[string]string, len(names))
		for _, n := range names {
			resp.Params[n] = c.Param(n)
		}
	}

	// Post screens start from the mirror so flags survive a reload.
	if id := c.Param("id"); id != "" && h.interactions != nil {
		rec := h.interactions.Get(id)
		resp.Interactions = &rec
	}
	return resp
}
