package prescription

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medcabinet/api/internal/middleware"
	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/service/prescription"
	apperrors "github.com/medcabinet/api/pkg/errors"
	"github.com/medcabinet/api/pkg/httputil"
)

type Handler struct {
	service *prescription.Service
}

func NewHandler(service *prescription.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctorOnly := middleware.RequireRole(model.RoleDoctor, model.RoleAdmin)

	prescriptions := r.Group("/prescriptions", doctorOnly)
	{
		prescriptions.POST("", h.CreatePrescription)
	}

	r.GET("/consultations/:id/prescriptions", doctorOnly, h.ListPrescriptions)
	r.GET("/consultations/:id/lab-orders", doctorOnly, h.ListLabTestOrders)
	r.GET("/consultations/:id/imaging-orders", doctorOnly, h.ListImagingOrders)

	labs := r.Group("/lab-tests", doctorOnly)
	{
		labs.GET("", h.ListLabTests)
		labs.POST("", h.CreateLabTest)
		labs.POST("/orders", h.OrderLabTest)
	}

	imaging := r.Group("/imaging-exams", doctorOnly)
	{
		imaging.GET("", h.ListImagingExams)
		imaging.POST("", h.CreateImagingExam)
		imaging.POST("/orders", h.OrderImaging)
	}
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	p, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, p)
}

func consultationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid consultation ID", err))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	id, ok := consultationID(c)
	if !ok {
		return
	}

	prescriptions, err := h.service.ListByConsultation(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, prescriptions)
}

func (h *Handler) CreateLabTest(c *gin.Context) {
	var test model.LabTest
	if err := c.ShouldBindJSON(&test); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	if err := h.service.CreateLabTest(c.Request.Context(), &test); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, test)
}

func (h *Handler) ListLabTests(c *gin.Context) {
	tests, err := h.service.ListLabTests(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, tests)
}

func (h *Handler) OrderLabTest(c *gin.Context) {
	var req model.CreateLabTestOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	order, err := h.service.OrderLabTest(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, order)
}

func (h *Handler) ListLabTestOrders(c *gin.Context) {
	id, ok := consultationID(c)
	if !ok {
		return
	}

	orders, err := h.service.ListLabTestOrders(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, orders)
}

func (h *Handler) CreateImagingExam(c *gin.Context) {
	var exam model.ImagingExam
	if err := c.ShouldBindJSON(&exam); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	if err := h.service.CreateImagingExam(c.Request.Context(), &exam); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, exam)
}

func (h *Handler) ListImagingExams(c *gin.Context) {
	exams, err := h.service.ListImagingExams(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, exams)
}

func (h *Handler) OrderImaging(c *gin.Context) {
	var req model.CreateImagingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	order, err := h.service.OrderImaging(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, order)
}

func (h *Handler) ListImagingOrders(c *gin.Context) {
	id, ok := consultationID(c)
	if !ok {
		return
	}

	orders, err := h.service.ListImagingOrders(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, orders)
}
