package service

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/events"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSharedWorkoutNotFound = errors.New("shared workout not found")
	ErrInvalidSharedWorkout  = errors.New("invalid shared workout")
)

const (
	defaultSharedDuration  = 30
	defaultSharedIntensity = 5
)

// ShareWorkoutInput is a workout plan as submitted to the library.
type ShareWorkoutInput struct {
	Name        string
	Type        domain.WorkoutType
	DurationMin int // 0 means 30
	Intensity   int // 0 means 5
	Description string
	IsMultiStep bool
	Steps       []string
}

// Library views.
const (
	ScopeAll       = "all"
	ScopeMine      = "mine"
	ScopeFavorites = "favorites"
)

// Library orderings.
const (
	SortNewest   = "newest"
	SortPopular  = "popular"
	SortDuration = "duration"
)

// SharedWorkoutQuery narrows and orders the library. Zero values list
// everything newest first.
type SharedWorkoutQuery struct {
	Type   domain.WorkoutType
	Scope  string
	Sort   string
	Search string // case-insensitive match on name, description or type
}

type SharedWorkoutService interface {
	Share(ctx context.Context, memberID primitive.ObjectID, in ShareWorkoutInput) (*domain.SharedWorkout, error)
	// List returns the viewer's squadron library.
	List(ctx context.Context, viewerID primitive.ObjectID, q SharedWorkoutQuery) ([]domain.SharedWorkout, error)
	// Delete is allowed for the author, the creator and the UFPM.
	Delete(ctx context.Context, actorID, workoutID primitive.ObjectID) error
	// Rate records an up or down vote, replacing any earlier vote by the
	// same member. RatingNone withdraws it.
	Rate(ctx context.Context, memberID, workoutID primitive.ObjectID, rating domain.Rating) (*domain.SharedWorkout, error)
	ToggleFavorite(ctx context.Context, memberID, workoutID primitive.ObjectID) (*domain.SharedWorkout, error)
}

type sharedWorkoutService struct {
	memberRepo repository.MemberRepository
	sharedRepo repository.SharedWorkoutRepository
	publisher  events.Publisher
}

func NewSharedWorkoutService(memberRepo repository.MemberRepository, sharedRepo repository.SharedWorkoutRepository, publisher events.Publisher) SharedWorkoutService {
	return &sharedWorkoutService{
		memberRepo: memberRepo,
		sharedRepo: sharedRepo,
		publisher:  publisher,
	}
}

func normalizeShared(in ShareWorkoutInput) (ShareWorkoutInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidSharedWorkout)
	}
	if !in.Type.Valid() {
		return in, fmt.Errorf("%w: unknown type %q", ErrInvalidSharedWorkout, in.Type)
	}
	switch {
	case in.DurationMin == 0:
		in.DurationMin = defaultSharedDuration
	case in.DurationMin < 0:
		return in, fmt.Errorf("%w: duration must be positive", ErrInvalidSharedWorkout)
	}
	if in.Intensity == 0 {
		in.Intensity = defaultSharedIntensity
	}
	if in.Intensity < domain.MinIntensity || in.Intensity > domain.MaxIntensity {
		return in, fmt.Errorf("%w: intensity must be between %d and %d",
			ErrInvalidSharedWorkout, domain.MinIntensity, domain.MaxIntensity)
	}

	if !in.IsMultiStep {
		in.Steps = []string{}
		return in, nil
	}
	steps := make([]string, 0, len(in.Steps))
	for _, step := range in.Steps {
		if step = strings.TrimSpace(step); step != "" {
			steps = append(steps, step)
		}
	}
	if len(steps) == 0 {
		return in, fmt.Errorf("%w: a multi-step workout needs at least one step", ErrInvalidSharedWorkout)
	}
	in.Steps = steps
	return in, nil
}

func (s *sharedWorkoutService) Share(ctx context.Context, memberID primitive.ObjectID, in ShareWorkoutInput) (*domain.SharedWorkout, error) {
	in, err := normalizeShared(in)
	if err != nil {
		return nil, err
	}
	member, err := loadMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return nil, err
	}

	workout := &domain.SharedWorkout{
		Name:        in.Name,
		Type:        in.Type,
		DurationMin: in.DurationMin,
		Intensity:   in.Intensity,
		Description: in.Description,
		IsMultiStep: in.IsMultiStep,
		Steps:       in.Steps,
		CreatedBy:   memberID,
		Squadron:    squadronOf(member),
	}
	if _, err := s.sharedRepo.Create(ctx, workout); err != nil {
		return nil, fmt.Errorf("create shared workout: %w", err)
	}

	publish(ctx, s.publisher, events.New(events.WorkoutShared, memberID.Hex(), map[string]any{
		"sharedWorkoutId": workout.ID.Hex(),
		"name":            workout.Name,
		"type":            workout.Type,
	}))
	return workout, nil
}

func squadronOf(m *domain.Member) string {
	if m.Squadron == "" {
		return domain.DefaultSquadron
	}
	return m.Squadron
}

func (s *sharedWorkoutService) List(ctx context.Context, viewerID primitive.ObjectID, q SharedWorkoutQuery) ([]domain.SharedWorkout, error) {
	if q.Type != "" && !q.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, q.Type)
	}
	viewer, err := loadMember(ctx, s.memberRepo, viewerID)
	if err != nil {
		return nil, err
	}

	filter := repository.SharedWorkoutFilter{Squadron: squadronOf(viewer), Type: q.Type}
	switch q.Scope {
	case "", ScopeAll:
	case ScopeMine:
		filter.CreatedBy = viewerID
	case ScopeFavorites:
		filter.FavoritedBy = viewerID
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", ErrInvalidInput, q.Scope)
	}
	var less func(a, b *domain.SharedWorkout) bool
	switch q.Sort {
	case "", SortNewest:
	case SortPopular:
		less = func(a, b *domain.SharedWorkout) bool { return a.Popularity() > b.Popularity() }
	case SortDuration:
		less = func(a, b *domain.SharedWorkout) bool { return a.DurationMin < b.DurationMin }
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, q.Sort)
	}

	workouts, err := s.sharedRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		matched := workouts[:0]
		for _, w := range workouts {
			if strings.Contains(strings.ToLower(w.Name), term) ||
				strings.Contains(strings.ToLower(w.Description), term) ||
				strings.Contains(strings.ToLower(string(w.Type)), term) {
				matched = append(matched, w)
			}
		}
		workouts = matched
	}
	// Stable, so ties keep the store's newest-first order.
	if less != nil {
		sort.SliceStable(workouts, func(i, j int) bool { return less(&workouts[i], &workouts[j]) })
	}
	return workouts, nil
}

func (s *sharedWorkoutService) Delete(ctx context.Context, actorID, workoutID primitive.ObjectID) error {
	actor, err := loadMember(ctx, s.memberRepo, actorID)
	if err != nil {
		return err
	}
	workout, err := s.get(ctx, workoutID)
	if err != nil {
		return err
	}
	if workout.CreatedBy != actorID && !domain.IsAdmin(actor.AccountType) {
		return ErrPermissionDenied
	}
	if err := s.sharedRepo.Delete(ctx, workoutID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSharedWorkoutNotFound
		}
		return err
	}
	if workout.CreatedBy != actorID {
		log.Printf("INFO: %s deleted shared workout %q", actor.Email, workout.Name)
	}
	return nil
}

func (s *sharedWorkoutService) Rate(ctx context.Context, memberID, workoutID primitive.ObjectID, rating domain.Rating) (*domain.SharedWorkout, error) {
	if !rating.Valid() {
		return nil, fmt.Errorf("%w: unknown rating %q", ErrInvalidInput, rating)
	}
	if _, err := loadMember(ctx, s.memberRepo, memberID); err != nil {
		return nil, err
	}
	workout, err := s.sharedRepo.SetRating(ctx, workoutID, memberID, rating)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSharedWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

func (s *sharedWorkoutService) ToggleFavorite(ctx context.Context, memberID, workoutID primitive.ObjectID) (*domain.SharedWorkout, error) {
	if _, err := loadMember(ctx, s.memberRepo, memberID); err != nil {
		return nil, err
	}
	workout, err := s.sharedRepo.ToggleFavorite(ctx, workoutID, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSharedWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

func (s *sharedWorkoutService) get(ctx context.Context, id primitive.ObjectID) (*domain.SharedWorkout, error) {
	w, err := s.sharedRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSharedWorkoutNotFound
		}
		return nil, err
	}
	return w, nil
}
