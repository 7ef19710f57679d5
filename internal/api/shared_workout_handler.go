package api

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SharedWorkoutHandler struct {
	sharedWorkoutService service.SharedWorkoutService
}

func NewSharedWorkoutHandler(sharedWorkoutService service.SharedWorkoutService) *SharedWorkoutHandler {
	return &SharedWorkoutHandler{sharedWorkoutService: sharedWorkoutService}
}

type ShareWorkoutRequest struct {
	Name        string             `json:"name" binding:"required"`
	Type        domain.WorkoutType `json:"type" binding:"required"`
	Duration    int                `json:"duration"`  // minutes, defaults to 30
	Intensity   int                `json:"intensity"` // 1-10, defaults to 5
	Description string             `json:"description"`
	IsMultiStep bool               `json:"isMultiStep"`
	Steps       []string           `json:"steps"`
}

type RateWorkoutRequest struct {
	Rating domain.Rating `json:"rating" binding:"required"`
}

// SharedWorkoutResponse adds the caller's own vote and favorite to a workout.
type SharedWorkoutResponse struct {
	domain.SharedWorkout
	Popularity int           `json:"popularity"`
	MyRating   domain.Rating `json:"myRating"`
	Favorited  bool          `json:"favorited"`
}

func mapSharedWorkout(w *domain.SharedWorkout, viewerID primitive.ObjectID) SharedWorkoutResponse {
	return SharedWorkoutResponse{
		SharedWorkout: *w,
		Popularity:    w.Popularity(),
		MyRating:      w.RatingBy(viewerID),
		Favorited:     w.FavoritedByMember(viewerID),
	}
}

// ShareWorkout godoc
// @Summary Publish a workout plan to the squadron library
// @Tags SharedWorkouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body ShareWorkoutRequest true "Workout plan"
// @Success 201 {object} SharedWorkoutResponse
// @Failure 400 {object} gin.H "Invalid workout plan"
// @Router /shared-workouts [post]
func (h *SharedWorkoutHandler) ShareWorkout(c *gin.Context) {
	memberID, ok := currentMember(c)
	if !ok {
		return
	}
	var req ShareWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	workout, err := h.sharedWorkoutService.Share(c.Request.Context(), memberID, service.ShareWorkoutInput{
		Name:        req.Name,
		Type:        req.Type,
		DurationMin: req.Duration,
		Intensity:   req.Intensity,
		Description: req.Description,
		IsMultiStep: req.IsMultiStep,
		Steps:       req.Steps,
	})
	if err != nil {
		respondServiceError(c, err, "share workout")
		return
	}
	c.JSON(http.StatusCreated, mapSharedWorkout(workout, memberID))
}

// ListSharedWorkouts supports ?type, ?scope=all|mine|favorites,
// ?sort=newest|popular|duration and ?search.
func (h *SharedWorkoutHandler) ListSharedWorkouts(c *gin.Context) {
	viewerID, ok := currentMember(c)
	if !ok {
		return
	}
	workouts, err := h.sharedWorkoutService.List(c.Request.Context(), viewerID, service.SharedWorkoutQuery{
		Type:   domain.WorkoutType(c.Query("type")),
		Scope:  c.Query("scope"),
		Sort:   c.Query("sort"),
		Search: c.Query("search"),
	})
	if err != nil {
		respondServiceError(c, err, "list shared workouts")
		return
	}
	resp := make([]SharedWorkoutResponse, len(workouts))
	for i := range workouts {
		resp[i] = mapSharedWorkout(&workouts[i], viewerID)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SharedWorkoutHandler) DeleteSharedWorkout(c *gin.Context) {
	actorID, ok := currentMember(c)
	if !ok {
		return
	}
	workoutID, ok := objectIDParam(c, "workoutId", "workout")
	if !ok {
		return
	}
	if err := h.sharedWorkoutService.Delete(c.Request.Context(), actorID, workoutID); err != nil {
		respondServiceError(c, err, "delete shared workout")
		return
	}
	c.Status(http.StatusNoContent)
}

// RateWorkout takes {"rating": "up"|"down"|"none"}.
func (h *SharedWorkoutHandler) RateWorkout(c *gin.Context) {
	memberID, ok := currentMember(c)
	if !ok {
		return
	}
	workoutID, ok := objectIDParam(c, "workoutId", "workout")
	if !ok {
		return
	}
	var req RateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	workout, err := h.sharedWorkoutService.Rate(c.Request.Context(), memberID, workoutID, req.Rating)
	if err != nil {
		respondServiceError(c, err, "rate workout")
		return
	}
	c.JSON(http.StatusOK, mapSharedWorkout(workout, memberID))
}

func (h *SharedWorkoutHandler) ToggleFavorite(c *gin.Context) {
	memberID, ok := currentMember(c)
	if !ok {
		return
	}
	workoutID, ok := objectIDParam(c, "workoutId", "workout")
	if !ok {
		return
	}
	workout, err := h.sharedWorkoutService.ToggleFavorite(c.Request.Context(), memberID, workoutID)
	if err != nil {
		respondServiceError(c, err, "toggle favorite")
		return
	}
	c.JSON(http.StatusOK, mapSharedWorkout(workout, memberID))
}
