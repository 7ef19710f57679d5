package service

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/events"
	"alcyxob/flighttrack/internal/observability"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions shared by every service ---
var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
)

// UploadTicket is a presigned PUT the client uploads to directly.
type UploadTicket struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// loadMember maps repository.ErrNotFound to ErrMemberNotFound.
func loadMember(ctx context.Context, repo repository.MemberRepository, id primitive.ObjectID) (*domain.Member, error) {
	m, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

// seesPrivate reports whether viewer may see memberID's private entries:
// the member themself, PT leaders and admins.
func seesPrivate(viewer *domain.Member, memberID primitive.ObjectID) bool {
	return viewer.ID == memberID || domain.CanEditAttendance(viewer.AccountType)
}

// visibleAssessments drops private entries the viewer may not see.
func visibleAssessments(viewer *domain.Member, m *domain.Member) []domain.FitnessAssessment {
	if seesPrivate(viewer, m.ID) {
		return m.FitnessAssessments
	}
	out := make([]domain.FitnessAssessment, 0, len(m.FitnessAssessments))
	for _, fa := range m.FitnessAssessments {
		if !fa.IsPrivate {
			out = append(out, fa)
		}
	}
	return out
}

// publish delivers events without failing the caller; the state change they
// describe has already been persisted.
func publish(ctx context.Context, pub events.Publisher, evts ...events.Event) {
	if len(evts) == 0 {
		return
	}
	if err := pub.Publish(ctx, evts...); err != nil {
		observability.RecordPublishFailure()
		log.Printf("WARN: Failed to publish %d event(s) (first %s): %v", len(evts), evts[0].Type, err)
	}
}
