package api

import (
	"alcyxob/flighttrack/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

type DefaultSessionsRequest struct {
	SessionsPerWeek int `json:"sessionsPerWeek" binding:"required"`
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "load settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SetDefaultSessions godoc
// @Summary Set the weekly PT requirement new members start with
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param settings body DefaultSessionsRequest true "Sessions per week (1-7)"
// @Success 200 {object} domain.Settings
// @Failure 403 {object} gin.H "Creator and UFPM only"
// @Router /settings/default-sessions [put]
func (h *SettingsHandler) SetDefaultSessions(c *gin.Context) {
	actorID, ok := currentMember(c)
	if !ok {
		return
	}
	var req DefaultSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	settings, err := h.settingsService.SetDefaultSessionsPerWeek(c.Request.Context(), actorID, req.SessionsPerWeek)
	if err != nil {
		respondServiceError(c, err, "update settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}
