package service

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettingsService interface {
	// Get returns the stored settings, or the configured defaults when none
	// have been saved yet.
	Get(ctx context.Context) (*domain.Settings, error)
	// SetDefaultSessionsPerWeek changes the requirement new members start
	// with. Creator and UFPM only.
	SetDefaultSessionsPerWeek(ctx context.Context, actorID primitive.ObjectID, sessions int) (*domain.Settings, error)
}

type settingsService struct {
	memberRepo      repository.MemberRepository
	settingsRepo    repository.SettingsRepository
	defaultSessions int
}

func NewSettingsService(memberRepo repository.MemberRepository, settingsRepo repository.SettingsRepository, defaultSessions int) SettingsService {
	if defaultSessions < domain.MinSessionsPerWeek || defaultSessions > domain.MaxSessionsPerWeek {
		defaultSessions = 3
	}
	return &settingsService{
		memberRepo:      memberRepo,
		settingsRepo:    settingsRepo,
		defaultSessions: defaultSessions,
	}
}

func (s *settingsService) Get(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.Settings{DefaultPTSessionsPerWeek: s.defaultSessions}, nil
	}
	return settings, err
}

func (s *settingsService) SetDefaultSessionsPerWeek(ctx context.Context, actorID primitive.ObjectID, sessions int) (*domain.Settings, error) {
	actor, err := loadMember(ctx, s.memberRepo, actorID)
	if err != nil {
		return nil, err
	}
	if !domain.IsAdmin(actor.AccountType) {
		return nil, ErrPermissionDenied
	}
	if sessions < domain.MinSessionsPerWeek || sessions > domain.MaxSessionsPerWeek {
		return nil, fmt.Errorf("%w: sessions per week must be between %d and %d",
			ErrInvalidInput, domain.MinSessionsPerWeek, domain.MaxSessionsPerWeek)
	}

	settings := &domain.Settings{
		DefaultPTSessionsPerWeek: sessions,
		UpdatedBy:                actorID,
		UpdatedAt:                time.Now().UTC(),
	}
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}
	log.Printf("INFO: %s set the default PT requirement to %d sessions per week", actor.Email, sessions)
	return settings, nil
}
