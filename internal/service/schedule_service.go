package service

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/events"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrScheduledSessionNotFound = errors.New("scheduled session not found")
	ErrInvalidTime              = errors.New("time must be formatted HH:MM (24-hour)")
)

// ScheduleInput describes an upcoming session. On update, empty fields are
// left unchanged.
type ScheduleInput struct {
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	Description string
	Flight      domain.Flight // defaults to the leader's flight on create
}

type ScheduleService interface {
	Schedule(ctx context.Context, actorID primitive.ObjectID, in ScheduleInput) (*domain.ScheduledSession, error)
	Update(ctx context.Context, actorID, sessionID primitive.ObjectID, in ScheduleInput) (*domain.ScheduledSession, error)
	Cancel(ctx context.Context, actorID, sessionID primitive.ObjectID) error
	// Upcoming lists sessions from today on. Leaders see every flight,
	// everyone else only their own.
	Upcoming(ctx context.Context, viewerID primitive.ObjectID, today time.Time) ([]domain.ScheduledSession, error)
}

type scheduleService struct {
	memberRepo    repository.MemberRepository
	scheduledRepo repository.ScheduledSessionRepository
	publisher     events.Publisher
}

func NewScheduleService(memberRepo repository.MemberRepository, scheduledRepo repository.ScheduledSessionRepository, publisher events.Publisher) ScheduleService {
	return &scheduleService{
		memberRepo:    memberRepo,
		scheduledRepo: scheduledRepo,
		publisher:     publisher,
	}
}

// leader loads actorID and requires attendance rights.
func (s *scheduleService) leader(ctx context.Context, actorID primitive.ObjectID) (*domain.Member, error) {
	actor, err := loadMember(ctx, s.memberRepo, actorID)
	if err != nil {
		return nil, err
	}
	if !domain.CanEditAttendance(actor.AccountType) {
		return nil, ErrPermissionDenied
	}
	return actor, nil
}

// normalize trims and checks whichever fields are set.
func (in ScheduleInput) normalize() (ScheduleInput, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Date != "" {
		if _, err := time.Parse(domain.SessionDateLayout, in.Date); err != nil {
			return in, ErrInvalidDate
		}
	}
	if in.Time != "" {
		if _, err := time.Parse(domain.SessionTimeLayout, in.Time); err != nil || len(in.Time) != len(domain.SessionTimeLayout) {
			return in, ErrInvalidTime
		}
	}
	if in.Flight != "" && !in.Flight.Valid() {
		return in, fmt.Errorf("%w: unknown flight %q", ErrInvalidInput, in.Flight)
	}
	return in, nil
}

func (s *scheduleService) Schedule(ctx context.Context, actorID primitive.ObjectID, in ScheduleInput) (*domain.ScheduledSession, error) {
	actor, err := s.leader(ctx, actorID)
	if err != nil {
		return nil, err
	}
	in, err = in.normalize()
	if err != nil {
		return nil, err
	}
	switch {
	case in.Date == "":
		return nil, ErrInvalidDate
	case in.Time == "":
		return nil, ErrInvalidTime
	case in.Description == "":
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if in.Flight == "" {
		in.Flight = actor.Flight
	}

	session := &domain.ScheduledSession{
		Date:        in.Date,
		Time:        in.Time,
		Description: in.Description,
		Flight:      in.Flight,
		CreatedBy:   actorID,
	}
	if _, err := s.scheduledRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create scheduled session: %w", err)
	}

	publish(ctx, s.publisher, events.New(events.SessionScheduled, actorID.Hex(), map[string]any{
		"scheduledSessionId": session.ID.Hex(),
		"flight":             session.Flight,
		"date":               session.Date,
		"time":               session.Time,
	}))
	return session, nil
}

func (s *scheduleService) Update(ctx context.Context, actorID, sessionID primitive.ObjectID, in ScheduleInput) (*domain.ScheduledSession, error) {
	if _, err := s.leader(ctx, actorID); err != nil {
		return nil, err
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	session, err := s.scheduledRepo.Update(ctx, sessionID, repository.ScheduleUpdate{
		Date:        in.Date,
		Time:        in.Time,
		Description: in.Description,
		Flight:      in.Flight,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduledSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *scheduleService) Cancel(ctx context.Context, actorID, sessionID primitive.ObjectID) error {
	if _, err := s.leader(ctx, actorID); err != nil {
		return err
	}
	session, err := s.scheduledRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrScheduledSessionNotFound
		}
		return err
	}
	if err := s.scheduledRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrScheduledSessionNotFound
		}
		return err
	}
	publish(ctx, s.publisher, events.New(events.SessionCancelled, actorID.Hex(), map[string]any{
		"scheduledSessionId": session.ID.Hex(),
		"flight":             session.Flight,
		"date":               session.Date,
	}))
	return nil
}

func (s *scheduleService) Upcoming(ctx context.Context, viewerID primitive.ObjectID, today time.Time) ([]domain.ScheduledSession, error) {
	viewer, err := loadMember(ctx, s.memberRepo, viewerID)
	if err != nil {
		return nil, err
	}
	flight := viewer.Flight
	if domain.CanEditAttendance(viewer.AccountType) {
		flight = ""
	}
	return s.scheduledRepo.ListFrom(ctx, today.Format(domain.SessionDateLayout), flight)
}
