package service

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/events"
	"alcyxob/flighttrack/internal/repository"
	"alcyxob/flighttrack/internal/repository/memory"
	"alcyxob/flighttrack/internal/scoring"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://storage.test/put/" + key, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/get/" + key, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

type fixture struct {
	members   repository.MemberRepository
	workouts  repository.WorkoutRepository
	sessions  repository.PTSessionRepository
	scheduled repository.ScheduledSessionRepository
	shared    repository.SharedWorkoutRepository
	settings  repository.SettingsRepository
	storage   *fakeStorage
	events    *events.Recorder
}

func newFixture() *fixture {
	db := memory.NewDB()
	return &fixture{
		members:   memory.NewMemberRepository(db),
		workouts:  memory.NewWorkoutRepository(db),
		sessions:  memory.NewPTSessionRepository(db),
		scheduled: memory.NewScheduledSessionRepository(db),
		shared:    memory.NewSharedWorkoutRepository(db),
		settings:  memory.NewSettingsRepository(db),
		storage:   &fakeStorage{},
		events:    &events.Recorder{},
	}
}

func (f *fixture) settingsService() SettingsService {
	return NewSettingsService(f.members, f.settings, 3)
}

// addMember stores a member directly, bypassing registration.
func (f *fixture) addMember(t *testing.T, last string, accountType domain.AccountType, flight domain.Flight) primitive.ObjectID {
	t.Helper()
	id, err := f.members.Create(context.Background(), &domain.Member{
		Rank:                      "SrA",
		FirstName:                 "Test",
		LastName:                  last,
		Email:                     last + "@us.af.mil",
		PasswordHash:              "hash",
		Flight:                    flight,
		Squadron:                  domain.DefaultSquadron,
		AccountType:               accountType,
		Gender:                    scoring.Male,
		RequiredPTSessionsPerWeek: 3,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) member(t *testing.T, id primitive.ObjectID) *domain.Member {
	t.Helper()
	m, err := f.members.GetByID(context.Background(), id)
	require.NoError(t, err)
	return m
}
