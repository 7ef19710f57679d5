package service

import (
	"alcyxob/flighttrack/internal/achievement"
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/events"
	"alcyxob/flighttrack/internal/repository"
	"alcyxob/flighttrack/internal/storage"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func screenshot(t *testing.T, memberID primitive.ObjectID) string {
	t.Helper()
	key, err := storage.ScreenshotKey(memberID.Hex(), "image/png")
	require.NoError(t, err)
	return key
}

func ptr[T any](v T) *T { return &v }

func TestLogWorkoutTotalsAndAchievements(t *testing.T) {
	f := newFixture()
	svc := NewWorkoutService(f.members, f.workouts, f.storage, f.events)
	ctx := context.Background()
	id := f.addMember(t, "Runner", domain.AccountStandard, domain.FlightFoxhound)

	res, err := svc.Log(ctx, id, LogWorkoutInput{
		Type:          domain.WorkoutRunning,
		DurationMin:   45,
		DistanceMiles: ptr(101.5),
		Calories:      ptr(600),
		ScreenshotKey: screenshot(t, id),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceScreenshot, res.Workout.Source)
	assert.False(t, res.Workout.ID.IsZero())

	var ids []achievement.ID
	for _, a := range res.NewAchievements {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []achievement.ID{achievement.FirstWorkout, achievement.HundredMiles}, ids)

	m := f.member(t, id)
	assert.Equal(t, 45, m.ExerciseMinutes)
	assert.InDelta(t, 101.5, m.DistanceRun, 1e-9)
	assert.Equal(t, 600, m.CaloriesBurned)

	assert.Len(t, f.events.OfType(events.WorkoutLogged), 1)
	assert.Len(t, f.events.OfType(events.AchievementEarned), 2)

	// Totals accumulate; earned milestones are not awarded twice.
	res, err = svc.Log(ctx, id, LogWorkoutInput{
		Type:          domain.WorkoutRunning,
		DurationMin:   15,
		ScreenshotKey: screenshot(t, id),
	})
	require.NoError(t, err)
	assert.Empty(t, res.NewAchievements)
	assert.Equal(t, 60, f.member(t, id).ExerciseMinutes)
}

func TestLogWorkoutVariety(t *testing.T) {
	f := newFixture()
	svc := NewWorkoutService(f.members, f.workouts, f.storage, f.events)
	ctx := context.Background()
	id := f.addMember(t, "Mixer", domain.AccountStandard, domain.FlightFoxhound)

	types := []domain.WorkoutType{domain.WorkoutRunning, domain.WorkoutCycling, domain.WorkoutHIIT, domain.WorkoutSwimming, domain.WorkoutStrength}
	var last *LogResult
	for _, wt := range types {
		var err error
		last, err = svc.Log(ctx, id, LogWorkoutInput{Type: wt, DurationMin: 20, ScreenshotKey: screenshot(t, id)})
		require.NoError(t, err)
	}
	require.Len(t, last.NewAchievements, 1)
	assert.Equal(t, achievement.Variety, last.NewAchievements[0].ID)
}

func TestLogWorkoutValidation(t *testing.T) {
	f := newFixture()
	svc := NewWorkoutService(f.members, f.workouts, f.storage, f.events)
	ctx := context.Background()
	id := f.addMember(t, "Lazy", domain.AccountStandard, domain.FlightFoxhound)
	other := f.addMember(t, "Other", domain.AccountStandard, domain.FlightFoxhound)

	cases := []struct {
		name string
		in   LogWorkoutInput
		want error
	}{
		{"unknown type", LogWorkoutInput{Type: "Yoga", DurationMin: 10, ScreenshotKey: screenshot(t, id)}, ErrInvalidWorkout},
		{"zero duration", LogWorkoutInput{Type: domain.WorkoutWalking, ScreenshotKey: screenshot(t, id)}, ErrInvalidWorkout},
		{"negative distance", LogWorkoutInput{Type: domain.WorkoutWalking, DurationMin: 10, DistanceMiles: ptr(-1.0), ScreenshotKey: screenshot(t, id)}, ErrInvalidWorkout},
		{"no screenshot", LogWorkoutInput{Type: domain.WorkoutWalking, DurationMin: 10}, ErrScreenshotRequired},
		{"someone else's screenshot", LogWorkoutInput{Type: domain.WorkoutWalking, DurationMin: 10, ScreenshotKey: screenshot(t, other)}, ErrInvalidScreenshotKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Log(ctx, id, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	n, err := f.workouts.CountByMember(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
}

type failingWorkoutRepo struct {
	repository.WorkoutRepository
}

func (failingWorkoutRepo) Create(context.Context, *domain.Workout) (primitive.ObjectID, error) {
	return primitive.NilObjectID, errors.New("write failed")
}

func TestLogWorkoutRemovesScreenshotOnFailure(t *testing.T) {
	f := newFixture()
	svc := NewWorkoutService(f.members, failingWorkoutRepo{f.workouts}, f.storage, f.events)
	id := f.addMember(t, "Unlucky", domain.AccountStandard, domain.FlightFoxhound)
	key := screenshot(t, id)

	_, err := svc.Log(context.Background(), id, LogWorkoutInput{Type: domain.WorkoutCardio, DurationMin: 30, ScreenshotKey: key})
	require.Error(t, err)
	assert.Equal(t, []string{key}, f.storage.deleted)
	assert.Zero(t, f.member(t, id).ExerciseMinutes)
	assert.Empty(t, f.events.Events())
}

func TestLogWorkoutRejectsReusedScreenshot(t *testing.T) {
	f := newFixture()
	svc := NewWorkoutService(f.members, f.workouts, f.storage, f.events)
	ctx := context.Background()
	id := f.addMember(t, "Reuser", domain.AccountStandard, domain.FlightFoxhound)
	key := screenshot(t, id)

	first, err := svc.Log(ctx, id, LogWorkoutInput{Type: domain.WorkoutCardio, DurationMin: 30, ScreenshotKey: key})
	require.NoError(t, err)

	_, err = svc.Log(ctx, id, LogWorkoutInput{Type: domain.WorkoutCardio, DurationMin: 30, ScreenshotKey: key})
	assert.ErrorIs(t, err, ErrScreenshotInUse)
	assert.Empty(t, f.storage.deleted, "the first workout still needs its screenshot")
	assert.Equal(t, 30, f.member(t, id).ExerciseMinutes)

	url, err := svc.ScreenshotURL(ctx, id, first.Workout.ID)
	require.NoError(t, err)
	assert.Contains(t, url, key)
}

type failingTotalsRepo struct {
	repository.MemberRepository
	failures int
}

func (r *failingTotalsRepo) IncrementTotals(ctx context.Context, id primitive.ObjectID, minutes int, miles float64, calories int) (*domain.Member, error) {
	if r.failures > 0 {
		r.failures--
		return nil, errors.New("write failed")
	}
	return r.MemberRepository.IncrementTotals(ctx, id, minutes, miles, calories)
}

func TestLogWorkoutUndoesWorkoutWhenTotalsFail(t *testing.T) {
	f := newFixture()
	members := &failingTotalsRepo{MemberRepository: f.members, failures: 1}
	svc := NewWorkoutService(members, f.workouts, f.storage, f.events)
	ctx := context.Background()
	id := f.addMember(t, "Retry", domain.AccountStandard, domain.FlightFoxhound)
	key := screenshot(t, id)
	in := LogWorkoutInput{Type: domain.WorkoutRunning, DurationMin: 40, DistanceMiles: ptr(4.0), ScreenshotKey: key}

	_, err := svc.Log(ctx, id, in)
	require.Error(t, err)
	n, err := f.workouts.CountByMember(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n, "workout without totals is removed")
	assert.Empty(t, f.storage.deleted, "screenshot is kept for the retry")
	assert.Empty(t, f.events.Events())

	res, err := svc.Log(ctx, id, in)
	require.NoError(t, err)
	assert.Equal(t, key, res.Workout.ScreenshotKey)
	n, err = f.workouts.CountByMember(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 40, f.member(t, id).ExerciseMinutes)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, ...events.Event) error {
	return errors.New("broker down")
}

func TestLogWorkoutSurvivesPublishFailure(t *testing.T) {
	f := newFixture()
	svc := NewWorkoutService(f.members, f.workouts, f.storage, failingPublisher{})
	id := f.addMember(t, "Steady", domain.AccountStandard, domain.FlightFoxhound)

	res, err := svc.Log(context.Background(), id, LogWorkoutInput{Type: domain.WorkoutCardio, DurationMin: 30, ScreenshotKey: screenshot(t, id)})
	require.NoError(t, err)
	assert.NotEmpty(t, res.NewAchievements)
}

func TestListWorkoutsHidesPrivate(t *testing.T) {
	f := newFixture()
	svc := NewWorkoutService(f.members, f.workouts, f.storage, f.events)
	ctx := context.Background()
	owner := f.addMember(t, "Owner", domain.AccountStandard, domain.FlightFoxhound)
	peer := f.addMember(t, "Peer", domain.AccountStandard, domain.FlightFoxhound)
	ptl := f.addMember(t, "Leader", domain.AccountPTL, domain.FlightFoxhound)

	day := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	public, err := svc.Log(ctx, owner, LogWorkoutInput{Date: day, Type: domain.WorkoutWalking, DurationMin: 30, ScreenshotKey: screenshot(t, owner)})
	require.NoError(t, err)
	hidden, err := svc.Log(ctx, owner, LogWorkoutInput{Date: day.AddDate(0, 0, 1), Type: domain.WorkoutSports, DurationMin: 60, ScreenshotKey: screenshot(t, owner), IsPrivate: true})
	require.NoError(t, err)

	mine, err := svc.List(ctx, owner, owner)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, hidden.Workout.ID, mine[0].ID, "newest first")

	theirs, err := svc.List(ctx, peer, owner)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, public.Workout.ID, theirs[0].ID)

	leaders, err := svc.List(ctx, ptl, owner)
	require.NoError(t, err)
	assert.Len(t, leaders, 2)

	_, err = svc.ScreenshotURL(ctx, peer, hidden.Workout.ID)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)

	url, err := svc.ScreenshotURL(ctx, peer, public.Workout.ID)
	require.NoError(t, err)
	assert.Contains(t, url, public.Workout.ScreenshotKey)

	_, err = svc.ScreenshotURL(ctx, owner, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestRequestScreenshotUploadURL(t *testing.T) {
	f := newFixture()
	svc := NewWorkoutService(f.members, f.workouts, f.storage, f.events)
	id := f.addMember(t, "Uploader", domain.AccountStandard, domain.FlightFoxhound)

	ticket, err := svc.RequestScreenshotUploadURL(context.Background(), id, "image/jpeg")
	require.NoError(t, err)
	assert.True(t, storage.OwnsScreenshot(id.Hex(), ticket.ObjectKey))
	assert.Contains(t, ticket.UploadURL, ticket.ObjectKey)

	_, err = svc.RequestScreenshotUploadURL(context.Background(), id, "application/zip")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
