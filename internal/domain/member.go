package domain

import (
	"time"

	"alcyxob/flighttrack/internal/scoring"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountType distinguishes what a member is allowed to manage.
type AccountType string

const (
	AccountCreator  AccountType = "flighttrack_creator"
	AccountUFPM     AccountType = "ufpm"
	AccountPTL      AccountType = "ptl"
	AccountStandard AccountType = "standard"
)

// Flight is the sub-unit a member trains with.
type Flight string

const (
	FlightAvatar   Flight = "Avatar"
	FlightBomber   Flight = "Bomber"
	FlightCryptid  Flight = "Cryptid"
	FlightDoom     Flight = "Doom"
	FlightEwok     Flight = "Ewok"
	FlightFoxhound Flight = "Foxhound"
	FlightADF      Flight = "ADF"
	FlightDET      Flight = "DET"
)

// Flights lists every flight in roster order.
var Flights = []Flight{FlightAvatar, FlightBomber, FlightCryptid, FlightDoom, FlightEwok, FlightFoxhound, FlightADF, FlightDET}

// Valid reports whether f is a known flight.
func (f Flight) Valid() bool {
	for _, known := range Flights {
		if f == known {
			return true
		}
	}
	return false
}

// DefaultSquadron is the only squadron the tracker serves.
const DefaultSquadron = "392 IS"

// Member is a squadron member and the owner of all tracked PT data.
type Member struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Rank         string             `bson:"rank" json:"rank"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	Email        string             `bson:"email" json:"email"`    // unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // never exposed
	Flight       Flight             `bson:"flight" json:"flight"`
	Squadron     string             `bson:"squadron" json:"squadron"`
	AccountType  AccountType        `bson:"accountType" json:"accountType"`
	Gender       scoring.Gender     `bson:"gender,omitempty" json:"gender,omitempty"`

	PTLPendingApproval bool `bson:"ptlPendingApproval" json:"ptlPendingApproval"`

	// Running totals, incremented as workouts are logged.
	ExerciseMinutes int     `bson:"exerciseMinutes" json:"exerciseMinutes"`
	DistanceRun     float64 `bson:"distanceRun" json:"distanceRun"`
	CaloriesBurned  int     `bson:"caloriesBurned" json:"caloriesBurned"`

	// Append-only; see repository.MemberRepository.AppendAssessment.
	FitnessAssessments []FitnessAssessment `bson:"fitnessAssessments" json:"fitnessAssessments"`
	Achievements       []string            `bson:"achievements" json:"achievements"`

	RequiredPTSessionsPerWeek int `bson:"requiredPTSessionsPerWeek" json:"requiredPTSessionsPerWeek"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DisplayName renders "rank first last".
func (m *Member) DisplayName() string {
	return m.Rank + " " + m.FirstName + " " + m.LastName
}

// LatestAssessment returns the most recently recorded assessment, if any.
func (m *Member) LatestAssessment() *FitnessAssessment {
	if len(m.FitnessAssessments) == 0 {
		return nil
	}
	return &m.FitnessAssessments[len(m.FitnessAssessments)-1]
}

// HasAchievement reports whether the member already holds id.
func (m *Member) HasAchievement(id string) bool {
	for _, a := range m.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// CanManagePTL reports whether an account may approve or revoke PT leaders.
func CanManagePTL(t AccountType) bool {
	return t == AccountCreator || t == AccountUFPM
}

// CanEditAttendance reports whether an account may mark PT attendance.
func CanEditAttendance(t AccountType) bool {
	return t == AccountCreator || t == AccountUFPM || t == AccountPTL
}

// IsAdmin reports whether an account has squadron-wide admin access.
func IsAdmin(t AccountType) bool {
	return CanManagePTL(t)
}
