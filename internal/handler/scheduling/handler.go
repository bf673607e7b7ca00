package scheduling

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medcabinet/api/internal/middleware"
	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/service/scheduling"
	apperrors "github.com/medcabinet/api/pkg/errors"
	"github.com/medcabinet/api/pkg/httputil"
)

type Handler struct {
	service *scheduling.Service
}

func NewHandler(service *scheduling.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	days := r.Group("/working-days", middleware.RequireRole(model.RoleDoctor, model.RoleAdmin))
	{
		days.POST("", h.DeclareWorkingDay)
		days.GET("", h.ListWorkingDays)
		days.GET("/:id", h.GetWorkingDay)
		days.PUT("/:id", h.UpdateWorkingDay)
		days.DELETE("/:id", h.RemoveWorkingDay)
	}

	slots := r.Group("/slots")
	{
		slots.GET("", h.ListSlots)
		slots.GET("/available", h.ListAvailableSlots)
	}
}

// parseWindow parses a date plus a start and end clock time into
// concrete timestamps on that date.
func parseWindow(dateStr, startStr, endStr string) (date, start, end time.Time, err error) {
	date, err = time.Parse(model.DateOnly, dateStr)
	if err != nil {
		return date, start, end, apperrors.Validation("date must be YYYY-MM-DD")
	}
	start, err = parseClock(date, startStr)
	if err != nil {
		return date, start, end, err
	}
	end, err = parseClock(date, endStr)
	return date, start, end, err
}

func parseClock(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(model.TimeOnly, clock)
	if err != nil {
		return time.Time{}, apperrors.Validation("times must be HH:MM")
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func (h *Handler) DeclareWorkingDay(c *gin.Context) {
	var req model.DeclareWorkingDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	date, start, end, err := parseWindow(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resp, err := h.service.DeclareWorkingDay(c.Request.Context(), req.DoctorID, date, start, end)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, resp)
}

func (h *Handler) GetWorkingDay(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid working day ID", err))
		return
	}

	day, err := h.service.GetWorkingDay(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, day)
}

func (h *Handler) UpdateWorkingDay(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid working day ID", err))
		return
	}

	var req model.UpdateWorkingDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	day, err := h.service.GetWorkingDay(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	start, err := parseClock(day.Date, req.StartTime)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	end, err := parseClock(day.Date, req.EndTime)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resp, err := h.service.UpdateWorkingDay(c.Request.Context(), id, start, end)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) RemoveWorkingDay(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid working day ID", err))
		return
	}

	if err := h.service.RemoveWorkingDay(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "working day removed"})
}

func (h *Handler) ListWorkingDays(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor_id", err))
		return
	}

	from, to, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	days, err := h.service.ListWorkingDays(c.Request.Context(), doctorID, from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, days)
}

// parseRange defaults to the coming week.
func parseRange(fromStr, toStr string) (from, to time.Time, err error) {
	now := time.Now()
	year, month, day := now.Date()
	from = time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	to = from.AddDate(0, 0, 7)
	if fromStr != "" {
		from, err = time.Parse(model.DateOnly, fromStr)
		if err != nil {
			return from, to, apperrors.Validation("from must be YYYY-MM-DD")
		}
	}
	if toStr != "" {
		to, err = time.Parse(model.DateOnly, toStr)
		if err != nil {
			return from, to, apperrors.Validation("to must be YYYY-MM-DD")
		}
	}
	return from, to, nil
}

func (h *Handler) ListSlots(c *gin.Context) {
	doctorID, date, err := slotQuery(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	slots, err := h.service.ListSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

func (h *Handler) ListAvailableSlots(c *gin.Context) {
	doctorID, date, err := slotQuery(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	slots, err := h.service.ListAvailableSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

func slotQuery(c *gin.Context) (uuid.UUID, time.Time, error) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		return uuid.Nil, time.Time{}, apperrors.BadRequest("invalid doctor_id", err)
	}
	date, err := time.Parse(model.DateOnly, c.Query("date"))
	if err != nil {
		return uuid.Nil, time.Time{}, apperrors.Validation("date must be YYYY-MM-DD")
	}
	return doctorID, date, nil
}
