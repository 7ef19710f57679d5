package service

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/events"
	"alcyxob/flighttrack/internal/observability"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidDate     = errors.New("date must be formatted YYYY-MM-DD")
	ErrSessionNotFound = errors.New("PT session not found")
)

// AttendanceResult is the session after a toggle and where the member ended up.
type AttendanceResult struct {
	Session domain.PTSession `json:"session"`
	Present bool             `json:"present"`
}

// Compliance compares a week's attendance with the member's requirement.
type Compliance struct {
	MemberID  primitive.ObjectID `json:"memberId"`
	WeekStart string             `json:"weekStart"` // Monday
	WeekEnd   string             `json:"weekEnd"`   // Sunday
	Attended  int                `json:"attended"`
	Required  int                `json:"required"`
	Met       bool               `json:"met"`
}

type AttendanceService interface {
	// ToggleAttendance marks memberID present at their flight's PT on date,
	// or clears the mark if already present.
	ToggleAttendance(ctx context.Context, actorID, memberID primitive.ObjectID, date string) (*AttendanceResult, error)
	WeeklyCompliance(ctx context.Context, memberID primitive.ObjectID, day time.Time) (*Compliance, error)
	// DeleteSession removes a session and with it every attendance mark.
	DeleteSession(ctx context.Context, actorID, sessionID primitive.ObjectID) error
}

type attendanceService struct {
	memberRepo  repository.MemberRepository
	sessionRepo repository.PTSessionRepository
	publisher   events.Publisher
}

func NewAttendanceService(memberRepo repository.MemberRepository, sessionRepo repository.PTSessionRepository, publisher events.Publisher) AttendanceService {
	return &attendanceService{
		memberRepo:  memberRepo,
		sessionRepo: sessionRepo,
		publisher:   publisher,
	}
}

func (s *attendanceService) ToggleAttendance(ctx context.Context, actorID, memberID primitive.ObjectID, date string) (*AttendanceResult, error) {
	if _, err := time.Parse(domain.SessionDateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	actor, err := loadMember(ctx, s.memberRepo, actorID)
	if err != nil {
		return nil, err
	}
	if !domain.CanEditAttendance(actor.AccountType) {
		return nil, ErrPermissionDenied
	}
	member, err := loadMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionFor(ctx, member.Flight, date, actorID)
	if err != nil {
		return nil, err
	}
	session, err = s.sessionRepo.ToggleAttendee(ctx, session.ID, memberID)
	if err != nil {
		return nil, fmt.Errorf("toggle attendee: %w", err)
	}

	present := session.Attended(memberID)
	observability.RecordAttendance(present)
	publish(ctx, s.publisher, events.New(events.AttendanceToggled, memberID.Hex(), map[string]any{
		"sessionId": session.ID.Hex(),
		"date":      session.Date,
		"flight":    session.Flight,
		"present":   present,
		"markedBy":  actorID.Hex(),
	}))
	return &AttendanceResult{Session: *session, Present: present}, nil
}

// sessionFor returns the flight's session on date, creating it on first use.
func (s *attendanceService) sessionFor(ctx context.Context, flight domain.Flight, date string, createdBy primitive.ObjectID) (*domain.PTSession, error) {
	session, err := s.sessionRepo.GetByFlightAndDate(ctx, flight, date)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	session = &domain.PTSession{Date: date, Flight: flight, CreatedBy: createdBy}
	if _, err := s.sessionRepo.Create(ctx, session); err != nil {
		// Another leader created it first.
		if errors.Is(err, repository.ErrConflict) {
			return s.sessionRepo.GetByFlightAndDate(ctx, flight, date)
		}
		return nil, err
	}
	return session, nil
}

func (s *attendanceService) DeleteSession(ctx context.Context, actorID, sessionID primitive.ObjectID) error {
	actor, err := loadMember(ctx, s.memberRepo, actorID)
	if err != nil {
		return err
	}
	if !domain.CanEditAttendance(actor.AccountType) {
		return ErrPermissionDenied
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	log.Printf("INFO: %s deleted the %s PT session on %s (%d attendees)", actor.Email, session.Flight, session.Date, len(session.Attendees))
	return nil
}

func (s *attendanceService) WeeklyCompliance(ctx context.Context, memberID primitive.ObjectID, day time.Time) (*Compliance, error) {
	member, err := loadMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return nil, err
	}
	start, end := weekBounds(day)
	sessions, err := s.sessionRepo.ListAttended(ctx, memberID, start, end)
	if err != nil {
		return nil, err
	}
	return &Compliance{
		MemberID:  memberID,
		WeekStart: start,
		WeekEnd:   end,
		Attended:  len(sessions),
		Required:  member.RequiredPTSessionsPerWeek,
		Met:       len(sessions) >= member.RequiredPTSessionsPerWeek,
	}, nil
}

// weekBounds returns the Monday and Sunday of the week containing day.
func weekBounds(day time.Time) (string, string) {
	offset := (int(day.Weekday()) + 6) % 7
	monday := time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, day.Location())
	return monday.Format(domain.SessionDateLayout), monday.AddDate(0, 0, 6).Format(domain.SessionDateLayout)
}
