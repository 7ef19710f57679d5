package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Intensity bounds for a shared workout, on a 1 (easy) to 10 scale.
const (
	MinIntensity = 1
	MaxIntensity = 10
)

// Rating is a member's vote on a shared workout.
type Rating string

const (
	RatingUp   Rating = "up"
	RatingDown Rating = "down"
	RatingNone Rating = "none" // withdraws any earlier vote
)

// Valid reports whether r is a known rating.
func (r Rating) Valid() bool {
	return r == RatingUp || r == RatingDown || r == RatingNone
}

// SharedWorkout is a workout plan a member published to the squadron
// library. A member appears in at most one of ThumbsUp and ThumbsDown.
type SharedWorkout struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Type        WorkoutType          `bson:"type" json:"type"`
	DurationMin int                  `bson:"durationMin" json:"duration"`
	Intensity   int                  `bson:"intensity" json:"intensity"`
	Description string               `bson:"description" json:"description"`
	IsMultiStep bool                 `bson:"isMultiStep" json:"isMultiStep"`
	Steps       []string             `bson:"steps" json:"steps"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	Squadron    string               `bson:"squadron" json:"squadron"`
	ThumbsUp    []primitive.ObjectID `bson:"thumbsUp" json:"thumbsUp"`
	ThumbsDown  []primitive.ObjectID `bson:"thumbsDown" json:"thumbsDown"`
	FavoritedBy []primitive.ObjectID `bson:"favoritedBy" json:"favoritedBy"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
}

// Popularity is up votes minus down votes.
func (w *SharedWorkout) Popularity() int {
	return len(w.ThumbsUp) - len(w.ThumbsDown)
}

// RatingBy returns memberID's current vote.
func (w *SharedWorkout) RatingBy(memberID primitive.ObjectID) Rating {
	switch {
	case containsID(w.ThumbsUp, memberID):
		return RatingUp
	case containsID(w.ThumbsDown, memberID):
		return RatingDown
	}
	return RatingNone
}

// FavoritedByMember reports whether memberID saved the workout.
func (w *SharedWorkout) FavoritedByMember(memberID primitive.ObjectID) bool {
	return containsID(w.FavoritedBy, memberID)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
