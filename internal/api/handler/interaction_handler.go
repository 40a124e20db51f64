package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
)

// InteractionHandler exposes the interaction mirror of posts.
type InteractionHandler struct {
	service ports.InteractionService
}

func NewInteractionHandler(service ports.InteractionService) *InteractionHandler {
	return &InteractionHandler{service: service}
}

type addCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// Get returns the mirrored state of a post without calling the backend.
//
// @Summary      Mirrored interactions of a post
// @Tags         interactions
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  domain.InteractionRecord
// @Router       /api/posts/{id}/interactions [get]
func (h *InteractionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Get(c.Param("id")))
}

// Like toggles the like on a post.
//
// @Summary      Toggle like
// @Tags         interactions
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  domain.InteractionRecord
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/posts/{id}/like [post]
func (h *InteractionHandler) Like(c echo.Context) error {
	return h.respond(c, h.service.ToggleLike)
}

// Save toggles the saved flag on a post.
//
// @Summary      Toggle save
// @Tags         interactions
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  domain.InteractionRecord
// @Router       /api/posts/{id}/save [post]
func (h *InteractionHandler) Save(c echo.Context) error {
	return h.respond(c, h.service.ToggleSave)
}

// ToggleComments opens or closes the comment panel of a post.
//
// @Summary      Toggle comment panel
// @Tags         interactions
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  domain.InteractionRecord
// @Router       /api/posts/{id}/comments/toggle [post]
func (h *InteractionHandler) ToggleComments(c echo.Context) error {
	return h.respond(c, h.service.ToggleComments)
}

// Comments refetches the comment list of a post.
//
// @Summary      Refresh comments
// @Tags         interactions
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  domain.InteractionRecord
// @Router       /api/posts/{id}/comments [get]
func (h *InteractionHandler) Comments(c echo.Context) error {
	return h.respond(c, h.service.RefreshComments)
}

// AddComment posts a comment.
//
// @Summary      Add comment
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Post ID"
// @Param        body  body      addCommentRequest  true  "Comment"
// @Success      201   {object}  domain.InteractionRecord
// @Router       /api/posts/{id}/comments [post]
func (h *InteractionHandler) AddComment(c echo.Context) error {
	var req addCommentRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	rec, err := h.service.AddComment(c.Request().Context(), c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

// DeleteComment removes a comment.
//
// @Summary      Delete comment
// @Tags         interactions
// @Produce      json
// @Param        id         path      string  true  "Post ID"
// @Param        commentID  path      string  true  "Comment ID"
// @Success      200        {object}  domain.InteractionRecord
// @Router       /api/posts/{id}/comments/{commentID} [delete]
func (h *InteractionHandler) DeleteComment(c echo.Context) error {
	rec, err := h.service.DeleteComment(c.Request().Context(), c.Param("id"), c.Param("commentID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *InteractionHandler) respond(c echo.Context, action func(context.Context, string) (domain.InteractionRecord, error)) error {
	rec, err := action(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}
