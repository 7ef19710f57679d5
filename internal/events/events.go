// Package events publishes domain events (assessments recorded, achievements
// earned, workouts logged or shared, attendance marked, sessions scheduled)
// for downstream consumers such as notification workers.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type names an event.
type Type string

const (
	AssessmentRecorded Type = "assessment.recorded"
	AchievementEarned  Type = "achievement.earned"
	WorkoutLogged      Type = "workout.logged"
	AttendanceToggled  Type = "attendance.toggled"
	SessionScheduled   Type = "pt_session.scheduled"
	SessionCancelled   Type = "pt_session.cancelled"
	WorkoutShared      Type = "shared_workout.posted"
)

// Event is the envelope published for every domain change.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	MemberID   string    `json:"memberId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(t Type, memberID string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		MemberID:   memberID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, evts ...Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, evts ...Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evts...)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType filters Events by type.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
