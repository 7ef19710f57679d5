package api

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// ScheduleRequest is used for both create and update; on update, omitted
// fields keep their value.
type ScheduleRequest struct {
	Date        string        `json:"date"` // YYYY-MM-DD
	Time        string        `json:"time"` // HH:MM, 24-hour
	Description string        `json:"description"`
	Flight      domain.Flight `json:"flight"`
}

func (r ScheduleRequest) toInput() service.ScheduleInput {
	return service.ScheduleInput{Date: r.Date, Time: r.Time, Description: r.Description, Flight: r.Flight}
}

// ScheduleSession godoc
// @Summary Schedule an upcoming PT session
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body ScheduleRequest true "Session"
// @Success 201 {object} domain.ScheduledSession
// @Failure 403 {object} gin.H "Only PT leaders, the UFPM and the creator may schedule"
// @Router /schedule [post]
func (h *ScheduleHandler) ScheduleSession(c *gin.Context) {
	actorID, ok := currentMember(c)
	if !ok {
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	session, err := h.scheduleService.Schedule(c.Request.Context(), actorID, req.toInput())
	if err != nil {
		respondServiceError(c, err, "schedule PT session")
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *ScheduleHandler) UpdateSession(c *gin.Context) {
	actorID, ok := currentMember(c)
	if !ok {
		return
	}
	sessionID, ok := objectIDParam(c, "sessionId", "session")
	if !ok {
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	session, err := h.scheduleService.Update(c.Request.Context(), actorID, sessionID, req.toInput())
	if err != nil {
		respondServiceError(c, err, "update PT session")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *ScheduleHandler) CancelSession(c *gin.Context) {
	actorID, ok := currentMember(c)
	if !ok {
		return
	}
	sessionID, ok := objectIDParam(c, "sessionId", "session")
	if !ok {
		return
	}
	if err := h.scheduleService.Cancel(c.Request.Context(), actorID, sessionID); err != nil {
		respondServiceError(c, err, "cancel PT session")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUpcoming lists sessions from ?from (default today) on.
func (h *ScheduleHandler) GetUpcoming(c *gin.Context) {
	viewerID, ok := currentMember(c)
	if !ok {
		return
	}
	from := time.Now().UTC()
	if raw := c.Query("from"); raw != "" {
		d, err := time.Parse(domain.SessionDateLayout, raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, service.ErrInvalidDate.Error())
			return
		}
		from = d
	}
	sessions, err := h.scheduleService.Upcoming(c.Request.Context(), viewerID, from)
	if err != nil {
		respondServiceError(c, err, "list upcoming PT sessions")
		return
	}
	c.JSON(http.StatusOK, sessions)
}
