package user

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/telemed-api/internal/middleware"
	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/internal/service/user"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
	"github.com/jwalitptl/telemed-api/pkg/httputil"
)

type Handler struct {
	service *user.Service
}

func NewHandler(service *user.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the account endpoints. Every route requires a
// session, including the practitioner directory; the admin gate on
// listing and deactivation is applied by the caller.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	users := r.Group("/users")
	{
		users.GET("/me", h.Me)
		users.PUT("/me", h.UpdateProfile)
		users.GET("/practitioners", h.ListPractitioners)
		users.GET("", adminOnly, h.List)
		users.DELETE("/:id", adminOnly, h.Deactivate)
	}
}

func (h *Handler) Me(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	u, err := h.service.Get(c.Request.Context(), requester.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, u)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), requester, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, u)
}

func (h *Handler) List(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	users, err := h.service.List(c.Request.Context(), requester)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, users, len(users))
}

func (h *Handler) ListPractitioners(c *gin.Context) {
	practitioners, err := h.service.ListPractitioners(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, practitioners, len(practitioners))
}

func (h *Handler) Deactivate(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid user ID"))
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), requester, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "account deactivated")
}
