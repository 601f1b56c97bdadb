package consultation

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/telemed-api/internal/middleware"
	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/internal/service/consultation"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
	"github.com/jwalitptl/telemed-api/pkg/httputil"
)

type Handler struct {
	service *consultation.Service
}

func NewHandler(service *consultation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	consultations := r.Group("/consultations")
	{
		consultations.POST("", h.Create)
		consultations.GET("", h.List)
		consultations.GET("/:id", h.Get)
		consultations.PUT("/:id", h.Update)
		consultations.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	var req model.CreateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}

	created, err := h.service.Create(c.Request.Context(), requester, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) List(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	consultations, err := h.service.List(c.Request.Context(), requester)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, consultations, len(consultations))
}

func (h *Handler) Get(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid consultation ID"))
		return
	}

	detail, err := h.service.Get(c.Request.Context(), requester, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, detail)
}

func (h *Handler) Update(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid consultation ID"))
		return
	}

	var req model.UpdateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}

	detail, err := h.service.Update(c.Request.Context(), requester, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, detail)
}

func (h *Handler) Delete(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid consultation ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), requester, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "consultation deleted")
}
