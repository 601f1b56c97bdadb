package prescription

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/telemed-api/internal/middleware"
	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/internal/service/prescription"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
	"github.com/jwalitptl/telemed-api/pkg/httputil"
)

type Handler struct {
	service *prescription.Service
}

func NewHandler(service *prescription.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the prescription endpoints. Writes additionally
// pass the practitioner role gate supplied by the caller; the service
// still checks consultation authorship.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, practitionerOnly gin.HandlerFunc) {
	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.POST("", practitionerOnly, h.Create)
		prescriptions.GET("", h.List)
		prescriptions.GET("/:id", h.Get)
		prescriptions.PUT("/:id", practitionerOnly, h.Update)
		prescriptions.DELETE("/:id", practitionerOnly, h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	var req model.CreatePrescriptionRequest
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

	prescriptions, err := h.service.List(c.Request.Context(), requester)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, prescriptions, len(prescriptions))
}

func (h *Handler) Get(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid prescription ID"))
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
		httputil.RespondWithError(c, apperrors.Validation("invalid prescription ID"))
		return
	}

	var req model.UpdatePrescriptionRequest
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
		httputil.RespondWithError(c, apperrors.Validation("invalid prescription ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), requester, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "prescription deleted")
}
