package appointment

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medcabinet/api/internal/middleware"
	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/service/appointment"
	apperrors "github.com/medcabinet/api/pkg/errors"
	"github.com/medcabinet/api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.BookAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/today", middleware.RequireStaff(), h.ListToday)
		appointments.GET("/waiting-room", middleware.RequireStaff(), h.ListWaitingRoom)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id/slot", h.RebindAppointment)
		appointments.PATCH("/:id/status", middleware.RequireStaff(), h.UpdateStatus)
		appointments.DELETE("/:id", h.CancelAppointment)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	// Patients can only book for themselves.
	if user, ok := middleware.CurrentUser(c); ok && user.Role == model.RolePatient {
		if user.PatientID == nil || *user.PatientID != req.PatientID {
			httputil.RespondWithError(c, apperrors.Forbidden("patients can only book their own appointments"))
			return
		}
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

// ownAppointment guards patient-role callers: they may only read or
// change appointments bound to their own patient record. Staff roles
// pass through.
func (h *Handler) ownAppointment(c *gin.Context, id uuid.UUID) bool {
	user, ok := middleware.CurrentUser(c)
	if !ok || user.Role != model.RolePatient {
		return true
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return false
	}
	if user.PatientID == nil || apt.PatientID != *user.PatientID {
		httputil.RespondWithError(c, apperrors.Forbidden("patients can only access their own appointments"))
		return false
	}
	return true
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}
	if !h.ownAppointment(c, id) {
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) RebindAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}
	if !h.ownAppointment(c, id) {
		return
	}

	var req model.RebindAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.Rebind(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

type updateStatusRequest struct {
	Status model.AppointmentStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}
	if !h.ownAppointment(c, id) {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "appointment cancelled"})
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}
	if doctorID := c.Query("doctor_id"); doctorID != "" {
		id, err := uuid.Parse(doctorID)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor_id", err))
			return
		}
		filters.DoctorID = id
	}
	if patientID := c.Query("patient_id"); patientID != "" {
		id, err := uuid.Parse(patientID)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid patient_id", err))
			return
		}
		filters.PatientID = id
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}

	// Patients only see their own appointments.
	if user, ok := middleware.CurrentUser(c); ok && user.Role == model.RolePatient {
		if user.PatientID == nil {
			httputil.RespondWithSuccess(c, []*model.Appointment{})
			return
		}
		filters.PatientID = *user.PatientID
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) ListToday(c *gin.Context) {
	appointments, err := h.service.ListToday(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) ListWaitingRoom(c *gin.Context) {
	appointments, err := h.service.ListWaitingRoom(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}
