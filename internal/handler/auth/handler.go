package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/telemed-api/internal/middleware"
	"github.com/jwalitptl/telemed-api/internal/model"
	"github.com/jwalitptl/telemed-api/internal/service/auth"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
	"github.com/jwalitptl/telemed-api/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the unauthenticated auth endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/reset-password", h.ResetPassword)
	}
}

// RegisterProtectedRoutes mounts the endpoints that need a valid session.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/logout", h.Logout)
		authGroup.PUT("/password", h.ChangePassword)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	token, ok := middleware.TokenFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "logged out")
}

func (h *Handler) ChangePassword(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Authentication("authentication required"))
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), requester, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "password updated")
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "if the account exists, a reset email has been sent")
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "password has been reset")
}
