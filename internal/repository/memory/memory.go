// Package memory provides map-backed repositories for local development and
// tests. Writes hold a single lock, so each call is atomic and the last
// writer for a member wins.
package memory

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB is the shared backing store for every in-memory repository.
type DB struct {
	mu        sync.RWMutex
	members   map[primitive.ObjectID]*domain.Member
	workouts  map[primitive.ObjectID]*domain.Workout
	sessions  map[primitive.ObjectID]*domain.PTSession
	scheduled map[primitive.ObjectID]*domain.ScheduledSession
	shared    map[primitive.ObjectID]*domain.SharedWorkout
	settings  *domain.Settings
}

// NewDB returns an empty store.
func NewDB() *DB {
	return &DB{
		members:   make(map[primitive.ObjectID]*domain.Member),
		workouts:  make(map[primitive.ObjectID]*domain.Workout),
		sessions:  make(map[primitive.ObjectID]*domain.PTSession),
		scheduled: make(map[primitive.ObjectID]*domain.ScheduledSession),
		shared:    make(map[primitive.ObjectID]*domain.SharedWorkout),
	}
}

// cloneMember deep-copies the slices so callers never alias stored state.
func cloneMember(m *domain.Member) *domain.Member {
	c := *m
	c.FitnessAssessments = append([]domain.FitnessAssessment{}, m.FitnessAssessments...)
	c.Achievements = append([]string{}, m.Achievements...)
	return &c
}

func cloneSession(s *domain.PTSession) *domain.PTSession {
	c := *s
	c.Attendees = append([]primitive.ObjectID{}, s.Attendees...)
	return &c
}

// --- Members ---

type memberRepository struct{ db *DB }

// NewMemberRepository returns a MemberRepository backed by db.
func NewMemberRepository(db *DB) repository.MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(_ context.Context, member *domain.Member) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, m := range r.db.members {
		if strings.EqualFold(m.Email, member.Email) {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	member.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now
	r.db.members[member.ID] = cloneMember(member)
	return member.ID, nil
}

func (r *memberRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Member, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	m, ok := r.db.members[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneMember(m), nil
}

func (r *memberRepository) GetByEmail(_ context.Context, email string) (*domain.Member, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, m := range r.db.members {
		if strings.EqualFold(m.Email, email) {
			return cloneMember(m), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memberRepository) List(_ context.Context, filter repository.MemberFilter) ([]domain.Member, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]domain.Member, 0, len(r.db.members))
	for _, m := range r.db.members {
		if filter.Flight != "" && m.Flight != filter.Flight {
			continue
		}
		out = append(out, *cloneMember(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

// mutate runs fn against the stored member under the write lock.
func (r *memberRepository) mutate(id primitive.ObjectID, fn func(m *domain.Member)) (*domain.Member, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.members[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(m)
	m.UpdatedAt = time.Now().UTC()
	return cloneMember(m), nil
}

func (r *memberRepository) UpdateProfile(_ context.Context, id primitive.ObjectID, u repository.ProfileUpdate) error {
	_, err := r.mutate(id, func(m *domain.Member) {
		if u.Rank != "" {
			m.Rank = u.Rank
		}
		if u.FirstName != "" {
			m.FirstName = u.FirstName
		}
		if u.LastName != "" {
			m.LastName = u.LastName
		}
		if u.Flight != "" {
			m.Flight = u.Flight
		}
		if u.Gender != "" {
			m.Gender = u.Gender
		}
	})
	return err
}

func (r *memberRepository) SetAccountType(_ context.Context, id primitive.ObjectID, t domain.AccountType, ptlPending bool) error {
	_, err := r.mutate(id, func(m *domain.Member) {
		m.AccountType = t
		m.PTLPendingApproval = ptlPending
	})
	return err
}

func (r *memberRepository) ReplaceAccountType(_ context.Context, from, to domain.AccountType) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, m := range r.db.members {
		if m.AccountType == from {
			m.AccountType = to
			m.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

func (r *memberRepository) AppendAssessment(_ context.Context, id primitive.ObjectID, a domain.FitnessAssessment, requiredSessions int) (*domain.Member, error) {
	var before *domain.Member
	_, err := r.mutate(id, func(m *domain.Member) {
		before = cloneMember(m)
		m.FitnessAssessments = append(m.FitnessAssessments, a)
		m.RequiredPTSessionsPerWeek = requiredSessions
	})
	if err != nil {
		return nil, err
	}
	return before, nil
}

func (r *memberRepository) GetByAssessmentID(_ context.Context, assessmentID primitive.ObjectID) (*domain.Member, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, m := range r.db.members {
		for _, fa := range m.FitnessAssessments {
			if fa.ID == assessmentID {
				return cloneMember(m), nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memberRepository) SetAssessmentPrivacy(_ context.Context, id primitive.ObjectID, private bool) error {
	_, err := r.mutate(id, func(m *domain.Member) {
		for i := range m.FitnessAssessments {
			m.FitnessAssessments[i].IsPrivate = private
		}
	})
	return err
}

func (r *memberRepository) AddAchievements(_ context.Context, id primitive.ObjectID, ids ...string) error {
	_, err := r.mutate(id, func(m *domain.Member) {
		for _, a := range ids {
			if !m.HasAchievement(a) {
				m.Achievements = append(m.Achievements, a)
			}
		}
	})
	return err
}

func (r *memberRepository) IncrementTotals(_ context.Context, id primitive.ObjectID, minutes int, miles float64, calories int) (*domain.Member, error) {
	return r.mutate(id, func(m *domain.Member) {
		m.ExerciseMinutes += minutes
		m.DistanceRun += miles
		m.CaloriesBurned += calories
	})
}

func (r *memberRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.members[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.members, id)
	return nil
}

// --- Workouts ---

type workoutRepository struct{ db *DB }

// NewWorkoutRepository returns a WorkoutRepository backed by db.
func NewWorkoutRepository(db *DB) repository.WorkoutRepository {
	return &workoutRepository{db: db}
}

func (r *workoutRepository) Create(_ context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.workouts {
		if existing.ScreenshotKey == w.ScreenshotKey {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	w.ID = primitive.NewObjectID()
	w.CreatedAt = time.Now().UTC()
	c := *w
	r.db.workouts[w.ID] = &c
	return w.ID, nil
}

func (r *workoutRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	w, ok := r.db.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *w
	return &c, nil
}

func (r *workoutRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.workouts, id)
	return nil
}

func (r *workoutRepository) ListByMember(_ context.Context, memberID primitive.ObjectID) ([]domain.Workout, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []domain.Workout{}
	for _, w := range r.db.workouts {
		if w.MemberID == memberID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *workoutRepository) CountByMember(_ context.Context, memberID primitive.ObjectID) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n := 0
	for _, w := range r.db.workouts {
		if w.MemberID == memberID {
			n++
		}
	}
	return n, nil
}

func (r *workoutRepository) DistinctTypes(_ context.Context, memberID primitive.ObjectID) ([]domain.WorkoutType, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	seen := map[domain.WorkoutType]bool{}
	out := []domain.WorkoutType{}
	for _, w := range r.db.workouts {
		if w.MemberID == memberID && !seen[w.Type] {
			seen[w.Type] = true
			out = append(out, w.Type)
		}
	}
	return out, nil
}

// --- PT sessions ---

type ptSessionRepository struct{ db *DB }

// NewPTSessionRepository returns a PTSessionRepository backed by db.
func NewPTSessionRepository(db *DB) repository.PTSessionRepository {
	return &ptSessionRepository{db: db}
}

func (r *ptSessionRepository) Create(_ context.Context, s *domain.PTSession) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.sessions {
		if existing.Flight == s.Flight && existing.Date == s.Date {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	s.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.db.sessions[s.ID] = cloneSession(s)
	return s.ID, nil
}

func (r *ptSessionRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PTSession, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	s, ok := r.db.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneSession(s), nil
}

func (r *ptSessionRepository) GetByFlightAndDate(_ context.Context, flight domain.Flight, date string) (*domain.PTSession, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, s := range r.db.sessions {
		if s.Flight == flight && s.Date == date {
			return cloneSession(s), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ptSessionRepository) ToggleAttendee(_ context.Context, sessionID, memberID primitive.ObjectID) (*domain.PTSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	kept := s.Attendees[:0:0]
	removed := false
	for _, id := range s.Attendees {
		if id == memberID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		kept = append(kept, memberID)
	}
	s.Attendees = kept
	s.UpdatedAt = time.Now().UTC()
	return cloneSession(s), nil
}

func (r *ptSessionRepository) ListAttended(_ context.Context, memberID primitive.ObjectID, from, to string) ([]domain.PTSession, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []domain.PTSession{}
	for _, s := range r.db.sessions {
		if s.Date >= from && s.Date <= to && s.Attended(memberID) {
			out = append(out, *cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *ptSessionRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.sessions, id)
	return nil
}

// --- Scheduled sessions ---

type scheduledSessionRepository struct{ db *DB }

// NewScheduledSessionRepository returns a ScheduledSessionRepository backed by db.
func NewScheduledSessionRepository(db *DB) repository.ScheduledSessionRepository {
	return &scheduledSessionRepository{db: db}
}

func (r *scheduledSessionRepository) Create(_ context.Context, s *domain.ScheduledSession) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	c := *s
	r.db.scheduled[s.ID] = &c
	return s.ID, nil
}

func (r *scheduledSessionRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ScheduledSession, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	s, ok := r.db.scheduled[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (r *scheduledSessionRepository) Update(_ context.Context, id primitive.ObjectID, u repository.ScheduleUpdate) (*domain.ScheduledSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.scheduled[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u.Date != "" {
		s.Date = u.Date
	}
	if u.Time != "" {
		s.Time = u.Time
	}
	if u.Description != "" {
		s.Description = u.Description
	}
	if u.Flight != "" {
		s.Flight = u.Flight
	}
	s.UpdatedAt = time.Now().UTC()
	c := *s
	return &c, nil
}

func (r *scheduledSessionRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.scheduled[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.scheduled, id)
	return nil
}

func (r *scheduledSessionRepository) ListFrom(_ context.Context, from string, flight domain.Flight) ([]domain.ScheduledSession, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []domain.ScheduledSession{}
	for _, s := range r.db.scheduled {
		if s.Date < from || (flight != "" && s.Flight != flight) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

// --- Shared workouts ---

type sharedWorkoutRepository struct{ db *DB }

// NewSharedWorkoutRepository returns a SharedWorkoutRepository backed by db.
func NewSharedWorkoutRepository(db *DB) repository.SharedWorkoutRepository {
	return &sharedWorkoutRepository{db: db}
}

func cloneShared(w *domain.SharedWorkout) *domain.SharedWorkout {
	c := *w
	c.Steps = append([]string{}, w.Steps...)
	c.ThumbsUp = append([]primitive.ObjectID{}, w.ThumbsUp...)
	c.ThumbsDown = append([]primitive.ObjectID{}, w.ThumbsDown...)
	c.FavoritedBy = append([]primitive.ObjectID{}, w.FavoritedBy...)
	return &c
}

// without returns ids minus id, always as a fresh slice.
func without(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func (r *sharedWorkoutRepository) Create(_ context.Context, w *domain.SharedWorkout) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	w.ID = primitive.NewObjectID()
	w.CreatedAt = time.Now().UTC()
	r.db.shared[w.ID] = cloneShared(w)
	return w.ID, nil
}

func (r *sharedWorkoutRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.SharedWorkout, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	w, ok := r.db.shared[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneShared(w), nil
}

func (r *sharedWorkoutRepository) List(_ context.Context, f repository.SharedWorkoutFilter) ([]domain.SharedWorkout, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []domain.SharedWorkout{}
	for _, w := range r.db.shared {
		switch {
		case f.Squadron != "" && w.Squadron != f.Squadron,
			f.Type != "" && w.Type != f.Type,
			!f.CreatedBy.IsZero() && w.CreatedBy != f.CreatedBy,
			!f.FavoritedBy.IsZero() && !w.FavoritedByMember(f.FavoritedBy):
			continue
		}
		out = append(out, *cloneShared(w))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *sharedWorkoutRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.shared[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.shared, id)
	return nil
}

func (r *sharedWorkoutRepository) SetRating(_ context.Context, id, memberID primitive.ObjectID, rating domain.Rating) (*domain.SharedWorkout, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	w, ok := r.db.shared[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w.ThumbsUp = without(w.ThumbsUp, memberID)
	w.ThumbsDown = without(w.ThumbsDown, memberID)
	switch rating {
	case domain.RatingUp:
		w.ThumbsUp = append(w.ThumbsUp, memberID)
	case domain.RatingDown:
		w.ThumbsDown = append(w.ThumbsDown, memberID)
	}
	return cloneShared(w), nil
}

func (r *sharedWorkoutRepository) ToggleFavorite(_ context.Context, id, memberID primitive.ObjectID) (*domain.SharedWorkout, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	w, ok := r.db.shared[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if w.FavoritedByMember(memberID) {
		w.FavoritedBy = without(w.FavoritedBy, memberID)
	} else {
		w.FavoritedBy = append(w.FavoritedBy, memberID)
	}
	return cloneShared(w), nil
}

// --- Settings ---

type settingsRepository struct{ db *DB }

// NewSettingsRepository returns a SettingsRepository backed by db.
func NewSettingsRepository(db *DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(_ context.Context) (*domain.Settings, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if r.db.settings == nil {
		return nil, repository.ErrNotFound
	}
	c := *r.db.settings
	return &c, nil
}

func (r *settingsRepository) Save(_ context.Context, s *domain.Settings) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c := *s
	r.db.settings = &c
	return nil
}
