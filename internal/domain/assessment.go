package domain

import (
	"time"

	"alcyxob/flighttrack/internal/scoring"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComponentResult is one scored part of a recorded assessment.
type ComponentResult struct {
	Test  string       `bson:"test" json:"test"`
	Unit  scoring.Unit `bson:"unit" json:"unit"`
	Value float64      `bson:"value" json:"value"`
	Score int          `bson:"score" json:"score"`
}

// AssessmentComponents holds the raw detail behind an overall score.
type AssessmentComponents struct {
	Aerobic  ComponentResult `bson:"aerobic" json:"aerobic"`
	Strength ComponentResult `bson:"strength" json:"strength"`
	Core     ComponentResult `bson:"core" json:"core"`
}

// FitnessAssessment is one entry in a member's assessment history.
type FitnessAssessment struct {
	ID           primitive.ObjectID   `bson:"id" json:"id"`
	Date         time.Time            `bson:"date" json:"date"`
	Gender       scoring.Gender       `bson:"gender" json:"gender"`
	OverallScore int                  `bson:"overallScore" json:"overallScore"`
	Status       scoring.Status       `bson:"status" json:"status"`
	Components   AssessmentComponents `bson:"components" json:"components"`
	ReportKey    string               `bson:"reportKey,omitempty" json:"-"` // S3 key of the uploaded PDF, if any
	IsPrivate    bool                 `bson:"isPrivate" json:"isPrivate"`
	RecordedAt   time.Time            `bson:"recordedAt" json:"recordedAt"`
}
