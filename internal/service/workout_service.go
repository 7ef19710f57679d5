package service

import (
	"alcyxob/flighttrack/internal/achievement"
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/events"
	"alcyxob/flighttrack/internal/observability"
	"alcyxob/flighttrack/internal/repository"
	"alcyxob/flighttrack/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrInvalidWorkout       = errors.New("invalid workout")
	ErrScreenshotRequired   = errors.New("a screenshot is required as proof of the workout")
	ErrInvalidScreenshotKey = errors.New("screenshot key was not issued to this member")
	ErrScreenshotInUse      = errors.New("screenshot is already attached to another workout")
)

// LogWorkoutInput is a workout as entered by the member.
type LogWorkoutInput struct {
	Date          time.Time
	Type          domain.WorkoutType
	DurationMin   int
	DistanceMiles *float64
	Calories      *int
	Source        domain.WorkoutSource
	ScreenshotKey string
	IsPrivate     bool
}

// LogResult is the stored workout and whatever it unlocked.
type LogResult struct {
	Workout         domain.Workout            `json:"workout"`
	NewAchievements []achievement.Achievement `json:"newAchievements"`
}

type WorkoutService interface {
	Log(ctx context.Context, memberID primitive.ObjectID, in LogWorkoutInput) (*LogResult, error)
	List(ctx context.Context, viewerID, memberID primitive.ObjectID) ([]domain.Workout, error)
	RequestScreenshotUploadURL(ctx context.Context, memberID primitive.ObjectID, contentType string) (*UploadTicket, error)
	ScreenshotURL(ctx context.Context, viewerID, workoutID primitive.ObjectID) (string, error)
}

type workoutService struct {
	memberRepo  repository.MemberRepository
	workoutRepo repository.WorkoutRepository
	fileStorage storage.FileStorage
	publisher   events.Publisher
}

func NewWorkoutService(
	memberRepo repository.MemberRepository,
	workoutRepo repository.WorkoutRepository,
	fileStorage storage.FileStorage,
	publisher events.Publisher,
) WorkoutService {
	return &workoutService{
		memberRepo:  memberRepo,
		workoutRepo: workoutRepo,
		fileStorage: fileStorage,
		publisher:   publisher,
	}
}

func validateWorkout(memberID primitive.ObjectID, in LogWorkoutInput) error {
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidWorkout, in.Type)
	}
	if in.DurationMin <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidWorkout)
	}
	if in.DistanceMiles != nil && *in.DistanceMiles < 0 {
		return fmt.Errorf("%w: distance cannot be negative", ErrInvalidWorkout)
	}
	if in.Calories != nil && *in.Calories < 0 {
		return fmt.Errorf("%w: calories cannot be negative", ErrInvalidWorkout)
	}
	if in.ScreenshotKey == "" {
		return ErrScreenshotRequired
	}
	if !storage.OwnsScreenshot(memberID.Hex(), in.ScreenshotKey) {
		return ErrInvalidScreenshotKey
	}
	return nil
}

// Log stores a workout, adds it to the member's running totals and awards
// count, distance, calorie and variety achievements.
func (s *workoutService) Log(ctx context.Context, memberID primitive.ObjectID, in LogWorkoutInput) (*LogResult, error) {
	if err := validateWorkout(memberID, in); err != nil {
		return nil, err
	}
	if in.Source == "" {
		in.Source = domain.SourceScreenshot
	}
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}
	if _, err := loadMember(ctx, s.memberRepo, memberID); err != nil {
		return nil, err
	}

	workout := &domain.Workout{
		MemberID:      memberID,
		Date:          in.Date,
		Type:          in.Type,
		DurationMin:   in.DurationMin,
		DistanceMiles: in.DistanceMiles,
		Calories:      in.Calories,
		Source:        in.Source,
		ScreenshotKey: in.ScreenshotKey,
		IsPrivate:     in.IsPrivate,
	}
	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		// The object belongs to the workout that already holds the key.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrScreenshotInUse
		}
		if delErr := s.fileStorage.DeleteObject(ctx, in.ScreenshotKey); delErr != nil {
			log.Printf("WARN: Orphaned screenshot %s: %v", in.ScreenshotKey, delErr)
		}
		return nil, fmt.Errorf("create workout: %w", err)
	}
	workout.ID = workoutID

	miles, calories := 0.0, 0
	if in.DistanceMiles != nil {
		miles = *in.DistanceMiles
	}
	if in.Calories != nil {
		calories = *in.Calories
	}
	member, err := s.memberRepo.IncrementTotals(ctx, memberID, in.DurationMin, miles, calories)
	if err != nil {
		// Drop the workout so it is not counted without its totals. The
		// screenshot stays so the member can retry with the same key.
		if delErr := s.workoutRepo.Delete(ctx, workoutID); delErr != nil {
			log.Printf("ERROR: Workout %s stored without totals: %v", workoutID.Hex(), delErr)
		}
		return nil, fmt.Errorf("increment totals: %w", err)
	}
	observability.RecordWorkout(string(workout.Type))

	count, err := s.workoutRepo.CountByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	types, err := s.workoutRepo.DistinctTypes(ctx, memberID)
	if err != nil {
		return nil, err
	}

	var candidates []achievement.ID
	candidates = append(candidates, achievement.ForWorkoutCount(count)...)
	candidates = append(candidates, achievement.ForTotals(member.DistanceRun, member.CaloriesBurned)...)
	candidates = append(candidates, achievement.ForVariety(len(types))...)
	earned, err := grantAchievements(ctx, s.memberRepo, memberID, achievement.Award(member.Achievements, candidates...))
	if err != nil {
		return nil, err
	}

	evts := []events.Event{events.New(events.WorkoutLogged, memberID.Hex(), map[string]any{
		"workoutId": workout.ID.Hex(),
		"type":      workout.Type,
		"duration":  workout.DurationMin,
		"miles":     miles,
		"calories":  calories,
	})}
	publish(ctx, s.publisher, append(evts, achievementEvents(memberID, earned)...)...)

	return &LogResult{Workout: *workout, NewAchievements: earned}, nil
}

// List returns a member's workouts newest first. Other members only see the
// ones not marked private.
func (s *workoutService) List(ctx context.Context, viewerID, memberID primitive.ObjectID) ([]domain.Workout, error) {
	viewer, err := loadMember(ctx, s.memberRepo, viewerID)
	if err != nil {
		return nil, err
	}
	if _, err := loadMember(ctx, s.memberRepo, memberID); err != nil {
		return nil, err
	}
	workouts, err := s.workoutRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if seesPrivate(viewer, memberID) {
		return workouts, nil
	}
	visible := make([]domain.Workout, 0, len(workouts))
	for _, w := range workouts {
		if !w.IsPrivate {
			visible = append(visible, w)
		}
	}
	return visible, nil
}

func (s *workoutService) RequestScreenshotUploadURL(ctx context.Context, memberID primitive.ObjectID, contentType string) (*UploadTicket, error) {
	if _, err := loadMember(ctx, s.memberRepo, memberID); err != nil {
		return nil, err
	}
	key, err := storage.ScreenshotKey(memberID.Hex(), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &UploadTicket{UploadURL: url, ObjectKey: key, ExpiresAt: time.Now().UTC().Add(storage.DefaultPresignedURLExpiry)}, nil
}

// ScreenshotURL presigns a GET for a workout's proof screenshot.
func (s *workoutService) ScreenshotURL(ctx context.Context, viewerID, workoutID primitive.ObjectID) (string, error) {
	viewer, err := loadMember(ctx, s.memberRepo, viewerID)
	if err != nil {
		return "", err
	}
	w, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrWorkoutNotFound
		}
		return "", err
	}
	if w.IsPrivate && !seesPrivate(viewer, w.MemberID) {
		return "", ErrWorkoutNotFound
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, w.ScreenshotKey, storage.DefaultPresignedURLExpiry)
}
