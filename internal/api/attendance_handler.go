package api

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AttendanceHandler struct {
	attendanceService service.AttendanceService
}

func NewAttendanceHandler(attendanceService service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

type ToggleAttendanceRequest struct {
	MemberID string `json:"memberId" binding:"required"`
	Date     string `json:"date" binding:"required"` // YYYY-MM-DD
}

// ToggleAttendance godoc
// @Summary Mark or unmark a member at their flight's PT session
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param mark body ToggleAttendanceRequest true "Member and day"
// @Success 200 {object} service.AttendanceResult
// @Failure 403 {object} gin.H "Only PT leaders, the UFPM and the creator may mark attendance"
// @Router /attendance/toggle [post]
func (h *AttendanceHandler) ToggleAttendance(c *gin.Context) {
	actorID, ok := currentMember(c)
	if !ok {
		return
	}
	var req ToggleAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid member ID format.")
		return
	}

	result, err := h.attendanceService.ToggleAttendance(c.Request.Context(), actorID, memberID, req.Date)
	if err != nil {
		respondServiceError(c, err, "toggle attendance")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCompliance reports attendance for the week containing ?date (default
// today) against the requirement of ?memberId (default the caller).
func (h *AttendanceHandler) GetCompliance(c *gin.Context) {
	memberID, ok := currentMember(c)
	if !ok {
		return
	}
	if raw := c.Query("memberId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid member ID format.")
			return
		}
		memberID = id
	}
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		d, err := time.Parse(domain.SessionDateLayout, raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, service.ErrInvalidDate.Error())
			return
		}
		day = d
	}

	compliance, err := h.attendanceService.WeeklyCompliance(c.Request.Context(), memberID, day)
	if err != nil {
		respondServiceError(c, err, "compute compliance")
		return
	}
	c.JSON(http.StatusOK, compliance)
}

// DeleteSession removes a PT session along with its attendance marks.
func (h *AttendanceHandler) DeleteSession(c *gin.Context) {
	actorID, ok := currentMember(c)
	if !ok {
		return
	}
	sessionID, ok := objectIDParam(c, "sessionId", "session")
	if !ok {
		return
	}
	if err := h.attendanceService.DeleteSession(c.Request.Context(), actorID, sessionID); err != nil {
		respondServiceError(c, err, "delete PT session")
		return
	}
	c.Status(http.StatusNoContent)
}
