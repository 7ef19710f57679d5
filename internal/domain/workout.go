package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutType categorises a logged workout.
type WorkoutType string

const (
	WorkoutRunning     WorkoutType = "Running"
	WorkoutWalking     WorkoutType = "Walking"
	WorkoutCycling     WorkoutType = "Cycling"
	WorkoutStrength    WorkoutType = "Strength"
	WorkoutHIIT        WorkoutType = "HIIT"
	WorkoutSwimming    WorkoutType = "Swimming"
	WorkoutSports      WorkoutType = "Sports"
	WorkoutCardio      WorkoutType = "Cardio"
	WorkoutFlexibility WorkoutType = "Flexibility"
	WorkoutOther       WorkoutType = "Other"
)

// WorkoutTypes lists every workout type.
var WorkoutTypes = []WorkoutType{
	WorkoutRunning, WorkoutWalking, WorkoutCycling, WorkoutStrength, WorkoutHIIT,
	WorkoutSwimming, WorkoutSports, WorkoutCardio, WorkoutFlexibility, WorkoutOther,
}

// Valid reports whether t is a known workout type.
func (t WorkoutType) Valid() bool {
	for _, known := range WorkoutTypes {
		if t == known {
			return true
		}
	}
	return false
}

// WorkoutSource records where a workout entry came from.
type WorkoutSource string

const (
	SourceManual      WorkoutSource = "manual"
	SourceScreenshot  WorkoutSource = "screenshot"
	SourceAppleHealth WorkoutSource = "apple_health"
	SourceStrava      WorkoutSource = "strava"
	SourceGarmin      WorkoutSource = "garmin"
)

// Workout is a single logged training session.
type Workout struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID      primitive.ObjectID `bson:"memberId" json:"memberId"`
	Date          time.Time          `bson:"date" json:"date"`
	Type          WorkoutType        `bson:"type" json:"type"`
	DurationMin   int                `bson:"durationMin" json:"duration"`
	DistanceMiles *float64           `bson:"distanceMiles,omitempty" json:"distance,omitempty"`
	Calories      *int               `bson:"calories,omitempty" json:"calories,omitempty"`
	Source        WorkoutSource      `bson:"source" json:"source"`
	ScreenshotKey string             `bson:"screenshotKey" json:"-"` // S3 object key; proof is mandatory
	IsPrivate     bool               `bson:"isPrivate" json:"isPrivate"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
