package consultation

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medcabinet/api/internal/middleware"
	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/service/consultation"
	apperrors "github.com/medcabinet/api/pkg/errors"
	"github.com/medcabinet/api/pkg/httputil"
)

type Handler struct {
	service *consultation.Service
}

func NewHandler(service *consultation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	consultations := r.Group("/consultations", middleware.RequireRole(model.RoleDoctor, model.RoleAdmin))
	{
		consultations.POST("", h.CreateConsultation)
		consultations.GET("/:id", h.GetConsultation)
		consultations.POST("/:id/close", h.CloseConsultation)
		consultations.POST("/:id/acts", h.AddAct)
		consultations.GET("/:id/acts", h.ListConsultationActs)
	}

	acts := r.Group("/medical-acts")
	{
		acts.GET("", h.ListActs)
		acts.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateAct)
	}
}

func (h *Handler) CreateConsultation(c *gin.Context) {
	var req model.CreateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	cons, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, cons)
}

func (h *Handler) GetConsultation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid consultation ID", err))
		return
	}

	cons, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cons)
}

func (h *Handler) CloseConsultation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid consultation ID", err))
		return
	}

	if err := h.service.Close(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "consultation closed"})
}

func (h *Handler) AddAct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid consultation ID", err))
		return
	}

	var req model.AddConsultationActRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	ca, err := h.service.AddAct(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, ca)
}

func (h *Handler) ListConsultationActs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid consultation ID", err))
		return
	}

	acts, err := h.service.ListConsultationActs(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, acts)
}

func (h *Handler) CreateAct(c *gin.Context) {
	var req model.CreateMedicalActRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	act, err := h.service.CreateAct(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, act)
}

func (h *Handler) ListActs(c *gin.Context) {
	acts, err := h.service.ListActs(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, acts)
}
