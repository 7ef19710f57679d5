package api

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

type LogWorkoutRequest struct {
	Date          string               `json:"date"` // YYYY-MM-DD, defaults to today
	Type          domain.WorkoutType   `json:"type" binding:"required"`
	Duration      int                  `json:"duration" binding:"required,gt=0"`
	Distance      *float64             `json:"distance" binding:"omitempty,gte=0"`
	Calories      *int                 `json:"calories" binding:"omitempty,gte=0"`
	Source        domain.WorkoutSource `json:"source"`
	ScreenshotKey string               `json:"screenshotKey"`
	IsPrivate     bool                 `json:"isPrivate"`
}

// LogWorkout godoc
// @Summary Log a workout
// @Description A screenshot must be uploaded first via /workouts/screenshot-upload-url.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body LogWorkoutRequest true "Workout"
// @Success 201 {object} service.LogResult
// @Failure 400 {object} gin.H "Invalid workout or missing screenshot"
// @Router /workouts [post]
func (h *WorkoutHandler) LogWorkout(c *gin.Context) {
	memberID, ok := currentMember(c)
	if !ok {
		return
	}
	var req LogWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	in := service.LogWorkoutInput{
		Type:          req.Type,
		DurationMin:   req.Duration,
		DistanceMiles: req.Distance,
		Calories:      req.Calories,
		Source:        req.Source,
		ScreenshotKey: req.ScreenshotKey,
		IsPrivate:     req.IsPrivate,
	}
	if req.Date != "" {
		d, err := time.Parse(domain.SessionDateLayout, req.Date)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
			return
		}
		in.Date = d
	}

	result, err := h.workoutService.Log(c.Request.Context(), memberID, in)
	if err != nil {
		respondServiceError(c, err, "log workout")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	viewerID, ok := currentMember(c)
	if !ok {
		return
	}
	memberID, ok := memberIDParam(c)
	if !ok {
		return
	}
	workouts, err := h.workoutService.List(c.Request.Context(), viewerID, memberID)
	if err != nil {
		respondServiceError(c, err, "list workouts")
		return
	}
	c.JSON(http.StatusOK, workouts)
}

func (h *WorkoutHandler) RequestScreenshotUploadURL(c *gin.Context) {
	memberID, ok := currentMember(c)
	if !ok {
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ticket, err := h.workoutService.RequestScreenshotUploadURL(c.Request.Context(), memberID, req.ContentType)
	if err != nil {
		respondServiceError(c, err, "generate upload URL")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GetScreenshot redirects to a short-lived download URL.
func (h *WorkoutHandler) GetScreenshot(c *gin.Context) {
	viewerID, ok := currentMember(c)
	if !ok {
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}
	url, err := h.workoutService.ScreenshotURL(c.Request.Context(), viewerID, workoutID)
	if err != nil {
		respondServiceError(c, err, "generate download URL")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}
