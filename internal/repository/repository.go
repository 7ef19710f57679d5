package repository

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/scoring"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound = RepositoryError("not found")
	ErrConflict = RepositoryError("already exists")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// MemberFilter narrows List results. Zero values match everything.
type MemberFilter struct {
	Flight domain.Flight
}

// ProfileUpdate carries the member-editable profile fields.
type ProfileUpdate struct {
	Rank      string
	FirstName string
	LastName  string
	Flight    domain.Flight
	Gender    scoring.Gender
}

// MemberRepository is the persisted member collection. Apart from
// ReplaceAccountType every method touches a single member document, so each
// write is atomic per member.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	List(ctx context.Context, filter MemberFilter) ([]domain.Member, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) error
	SetAccountType(ctx context.Context, id primitive.ObjectID, accountType domain.AccountType, ptlPending bool) error
	// ReplaceAccountType moves every member holding `from` to `to`.
	ReplaceAccountType(ctx context.Context, from, to domain.AccountType) error

	// AppendAssessment pushes onto the history and replaces the required
	// session count in one update, returning the member as it was just
	// before the update. History is never rewritten.
	AppendAssessment(ctx context.Context, id primitive.ObjectID, assessment domain.FitnessAssessment, requiredSessions int) (*domain.Member, error)
	// GetByAssessmentID finds the member whose history holds assessmentID.
	GetByAssessmentID(ctx context.Context, assessmentID primitive.ObjectID) (*domain.Member, error)
	SetAssessmentPrivacy(ctx context.Context, id primitive.ObjectID, private bool) error
	AddAchievements(ctx context.Context, id primitive.ObjectID, achievementIDs ...string) error
	// IncrementTotals adds to the running workout totals and returns the
	// updated member.
	IncrementTotals(ctx context.Context, id primitive.ObjectID, minutes int, miles float64, calories int) (*domain.Member, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutRepository stores logged workouts.
type WorkoutRepository interface {
	// Create returns ErrConflict when the screenshot key is already attached
	// to another workout.
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Workout, error) // newest first
	CountByMember(ctx context.Context, memberID primitive.ObjectID) (int, error)
	DistinctTypes(ctx context.Context, memberID primitive.ObjectID) ([]domain.WorkoutType, error)
}

// PTSessionRepository stores PT formations and attendance.
type PTSessionRepository interface {
	Create(ctx context.Context, session *domain.PTSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PTSession, error)
	GetByFlightAndDate(ctx context.Context, flight domain.Flight, date string) (*domain.PTSession, error)
	// ToggleAttendee adds memberID if absent, removes it if present, and
	// returns the session as stored afterwards.
	ToggleAttendee(ctx context.Context, sessionID, memberID primitive.ObjectID) (*domain.PTSession, error)
	// ListAttended returns sessions memberID attended with from <= date <= to
	// (YYYY-MM-DD, inclusive).
	ListAttended(ctx context.Context, memberID primitive.ObjectID, from, to string) ([]domain.PTSession, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ScheduleUpdate carries the editable fields of a scheduled session. Empty
// strings leave a field unchanged.
type ScheduleUpdate struct {
	Date        string
	Time        string
	Description string
	Flight      domain.Flight
}

// ScheduledSessionRepository stores announced upcoming PT sessions.
type ScheduledSessionRepository interface {
	Create(ctx context.Context, session *domain.ScheduledSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduledSession, error)
	Update(ctx context.Context, id primitive.ObjectID, update ScheduleUpdate) (*domain.ScheduledSession, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ListFrom returns sessions dated on or after from (YYYY-MM-DD), soonest
	// first. An empty flight matches every flight.
	ListFrom(ctx context.Context, from string, flight domain.Flight) ([]domain.ScheduledSession, error)
}

// SharedWorkoutFilter narrows List results. Zero values match everything.
type SharedWorkoutFilter struct {
	Squadron    string
	Type        domain.WorkoutType
	CreatedBy   primitive.ObjectID
	FavoritedBy primitive.ObjectID
}

// SharedWorkoutRepository stores the squadron workout library.
type SharedWorkoutRepository interface {
	Create(ctx context.Context, workout *domain.SharedWorkout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SharedWorkout, error)
	List(ctx context.Context, filter SharedWorkoutFilter) ([]domain.SharedWorkout, error) // newest first
	Delete(ctx context.Context, id primitive.ObjectID) error
	// SetRating records memberID's vote, clearing the opposite one, and
	// returns the workout as stored afterwards.
	SetRating(ctx context.Context, id, memberID primitive.ObjectID, rating domain.Rating) (*domain.SharedWorkout, error)
	// ToggleFavorite adds memberID to the favorites if absent, removes it if
	// present, and returns the workout as stored afterwards.
	ToggleFavorite(ctx context.Context, id, memberID primitive.ObjectID) (*domain.SharedWorkout, error)
}

// SettingsRepository stores the single squadron settings document.
type SettingsRepository interface {
	// Get returns ErrNotFound until settings are first saved.
	Get(ctx context.Context) (*domain.Settings, error)
	Save(ctx context.Context, settings *domain.Settings) error
}
