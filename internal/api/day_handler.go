package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"daylog/internal/api/middleware"
	"daylog/internal/database"
	"daylog/internal/daylog"
)

// DayHandler serves the daily log endpoints.
type DayHandler struct {
	days *daylog.Service
}

func NewDayHandler(days *daylog.Service) *DayHandler {
	return &DayHandler{days: days}
}

type dayResponse struct {
	Date              string             `json:"date"`
	TimeIn            *string            `json:"time_in"`
	TimeOut           *string            `json:"time_out"`
	Activities        []activityResponse `json:"activities"`
	SpecialActivities []activityResponse `json:"special_activities"`
}

type activityResponse struct {
	ID        uint    `json:"id"`
	Content   string  `json:"content"`
	Category  *string `json:"category"`
	TimeStart *string `json:"time_start"`
	TimeEnd   *string `json:"time_end"`
}

type saveDayRequest struct {
	TimeIn                    *string                `json:"time_in"`
	TimeOut                   *string                `json:"time_out"`
	Activities                []daylog.ActivityInput `json:"activities"`
	SpecialActivities         []daylog.ActivityInput `json:"special_activities"`
	DeletedActivityIDs        []uint                 `json:"deleted_activity_ids"`
	DeletedSpecialActivityIDs []uint                 `json:"deleted_special_activity_ids"`
}

// SaveDay reconciles one date with the submitted desired state.
func (h *DayHandler) SaveDay(c *gin.Context) {
	var req saveDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	in := daylog.ReconcileInput{
		Date:                      c.Param("date"),
		TimeIn:                    req.TimeIn,
		TimeOut:                   req.TimeOut,
		Activities:                req.Activities,
		SpecialActivities:         req.SpecialActivities,
		DeletedActivityIDs:        req.DeletedActivityIDs,
		DeletedSpecialActivityIDs: req.DeletedSpecialActivityIDs,
	}

	day, err := h.days.Reconcile(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, daylog.ErrInvalidDate),
			errors.Is(err, daylog.ErrInvalidTime),
			errors.Is(err, daylog.ErrEmptyContent):
			BadRequest(c, err.Error())
		default:
			middleware.LoggerFromContext(c).Error("reconcile day failed", slog.Any("error", err))
			Internal(c, "failed to save day")
		}
		return
	}

	c.JSON(http.StatusOK, newDayResponse(*day))
}

// GetDay returns one date's log.
func (h *DayHandler) GetDay(c *gin.Context) {
	day, err := h.days.GetByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		switch {
		case errors.Is(err, daylog.ErrInvalidDate):
			BadRequest(c, err.Error())
		case errors.Is(err, daylog.ErrDayNotFound):
			NotFound(c, "day not found")
		default:
			middleware.LoggerFromContext(c).Error("query day failed", slog.Any("error", err))
			Internal(c, "failed to query day")
		}
		return
	}

	c.JSON(http.StatusOK, newDayResponse(*day))
}

// ListDays returns every logged day inside [from, to].
func (h *DayHandler) ListDays(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		BadRequest(c, "from and to query parameters are required")
		return
	}

	days, err := h.days.ListRange(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, daylog.ErrInvalidDate) {
			BadRequest(c, err.Error())
			return
		}
		middleware.LoggerFromContext(c).Error("list days failed", slog.Any("error", err))
		Internal(c, "failed to list days")
		return
	}

	items := make([]dayResponse, 0, len(days))
	for _, day := range days {
		items = append(items, newDayResponse(day))
	}
	c.JSON(http.StatusOK, items)
}

// DeleteDay removes one date and everything it owns.
func (h *DayHandler) DeleteDay(c *gin.Context) {
	err := h.days.DeleteDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		switch {
		case errors.Is(err, daylog.ErrInvalidDate):
			BadRequest(c, err.Error())
		case errors.Is(err, daylog.ErrDayNotFound):
			NotFound(c, "day not found")
		default:
			middleware.LoggerFromContext(c).Error("delete day failed", slog.Any("error", err))
			Internal(c, "failed to delete day")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func newDayResponse(day database.Day) dayResponse {
	resp := dayResponse{
		Date:              day.Date,
		TimeIn:            day.TimeIn,
		TimeOut:           day.TimeOut,
		Activities:        make([]activityResponse, 0, len(day.Activities)),
		SpecialActivities: make([]activityResponse, 0, len(day.SpecialActivities)),
	}
	for _, a := range day.Activities {
		resp.Activities = append(resp.Activities, activityResponse{
			ID: a.ID, Content: a.Content, Category: a.Category,
			TimeStart: a.TimeStart, TimeEnd: a.TimeEnd,
		})
	}
	for _, a := range day.SpecialActivities {
		resp.SpecialActivities = append(resp.SpecialActivities, activityResponse{
			ID: a.ID, Content: a.Content, Category: a.Category,
			TimeStart: a.TimeStart, TimeEnd: a.TimeEnd,
		})
	}
	return resp
}
