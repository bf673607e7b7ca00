package insurer

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medcabinet/api/internal/middleware"
	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/service/insurer"
	apperrors "github.com/medcabinet/api/pkg/errors"
	"github.com/medcabinet/api/pkg/httputil"
)

type Handler struct {
	service *insurer.Service
}

func NewHandler(service *insurer.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	insurers := r.Group("/insurers", middleware.RequireStaff())
	{
		insurers.GET("", h.ListInsurers)
		insurers.GET("/:id", h.GetInsurer)
		insurers.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateInsurer)
		insurers.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteInsurer)
	}
}

func (h *Handler) CreateInsurer(c *gin.Context) {
	var req model.CreateInsurerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	ins, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, ins)
}

func (h *Handler) GetInsurer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid insurer ID", err))
		return
	}

	ins, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ins)
}

func (h *Handler) ListInsurers(c *gin.Context) {
	insurers, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, insurers)
}

func (h *Handler) DeleteInsurer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid insurer ID", err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "insurer deleted"})
}
