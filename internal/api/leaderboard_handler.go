package api

import (
	"alcyxob/flighttrack/internal/achievement"
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	leaderboardService service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GetLeaderboard godoc
// @Summary Rank members by activity score
// @Tags Leaderboard
// @Produce json
// @Security BearerAuth
// @Param flight query string false "Only this flight"
// @Success 200 {array} service.LeaderboardEntry
// @Router /leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.leaderboardService.Rank(c.Request.Context(), domain.Flight(c.Query("flight")))
	if err != nil {
		respondServiceError(c, err, "rank members")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListAchievements returns the static achievement catalog.
func ListAchievements(c *gin.Context) {
	c.JSON(http.StatusOK, achievement.All())
}
