package record

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medcabinet/api/internal/middleware"
	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/service/record"
	apperrors "github.com/medcabinet/api/pkg/errors"
	"github.com/medcabinet/api/pkg/httputil"
)

type Handler struct {
	service *record.Service
}

func NewHandler(service *record.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/patients/:id/record", middleware.RequireRole(model.RoleDoctor, model.RoleAdmin))
	{
		records.GET("", h.GetRecord)
		records.POST("/diseases", h.AddDisease)
		records.POST("/vaccines", h.AddVaccine)
		records.POST("/allergies", h.AddAllergy)
	}

	catalog := r.Group("/catalog", middleware.RequireRole(model.RoleDoctor, model.RoleAdmin))
	{
		catalog.GET("/diseases", h.ListDiseases)
		catalog.POST("/diseases", h.CreateDisease)
		catalog.GET("/vaccines", h.ListVaccines)
		catalog.POST("/vaccines", h.CreateVaccine)
		catalog.GET("/allergies", h.ListAllergies)
		catalog.POST("/allergies", h.CreateAllergy)
	}
}

func patientID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}

	detail, err := h.service.GetByPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, detail)
}

func (h *Handler) AddDisease(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}

	var req model.AddRecordDiseaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	entry, err := h.service.AddDisease(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, entry)
}

func (h *Handler) AddVaccine(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}

	var req model.AddRecordVaccineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	entry, err := h.service.AddVaccine(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, entry)
}

func (h *Handler) AddAllergy(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}

	var req model.AddRecordAllergyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	entry, err := h.service.AddAllergy(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, entry)
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) CreateDisease(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	disease, err := h.service.CreateDisease(c.Request.Context(), req.Name)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, disease)
}

func (h *Handler) ListDiseases(c *gin.Context) {
	diseases, err := h.service.ListDiseaseCatalog(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, diseases)
}

func (h *Handler) CreateVaccine(c *gin.Context) {
	var vaccine model.Vaccine
	if err := c.ShouldBindJSON(&vaccine); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	if err := h.service.CreateVaccine(c.Request.Context(), &vaccine); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, vaccine)
}

func (h *Handler) ListVaccines(c *gin.Context) {
	vaccines, err := h.service.ListVaccineCatalog(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, vaccines)
}

func (h *Handler) CreateAllergy(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	allergy, err := h.service.CreateAllergy(c.Request.Context(), req.Name)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, allergy)
}

func (h *Handler) ListAllergies(c *gin.Context) {
	allergies, err := h.service.ListAllergyCatalog(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, allergies)
}
