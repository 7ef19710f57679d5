package service

import (
	"alcyxob/flighttrack/internal/achievement"
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/events"
	"alcyxob/flighttrack/internal/observability"
	"alcyxob/flighttrack/internal/repository"
	"alcyxob/flighttrack/internal/scoring"
	"alcyxob/flighttrack/internal/storage"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidGender      = errors.New("gender must be male or female")
	ErrInvalidTest        = errors.New("unknown test variant")
	ErrInvalidValue       = errors.New("measurement must be a finite, non-negative number")
	ErrInvalidReportKey   = errors.New("report key was not issued to this member")
	ErrNoAssessments      = errors.New("member has no recorded assessments")
	ErrFutureAssessment   = errors.New("assessment date is in the future")
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrNoReport           = errors.New("assessment has no uploaded report")
)

// Dates up to a day ahead are accepted to absorb time zone differences.
const maxAssessmentLeadway = 24 * time.Hour

// AssessmentInput is one set of raw results, as entered by the member.
type AssessmentInput struct {
	Gender        scoring.Gender
	Date          time.Time
	AerobicTest   scoring.AerobicTest
	AerobicValue  float64
	StrengthTest  scoring.StrengthTest
	StrengthValue float64
	CoreTest      scoring.CoreTest
	CoreValue     float64
	ReportKey     string
}

// RecordResult is what Record persisted plus the achievements it unlocked.
type RecordResult struct {
	Assessment       domain.FitnessAssessment  `json:"assessment"`
	RequiredSessions int                       `json:"requiredPTSessionsPerWeek"`
	NewAchievements  []achievement.Achievement `json:"newAchievements"`
}

type AssessmentService interface {
	// Calculate scores input without persisting anything.
	Calculate(in AssessmentInput) (*scoring.Breakdown, error)
	Record(ctx context.Context, actorID, memberID primitive.ObjectID, in AssessmentInput) (*RecordResult, error)
	History(ctx context.Context, viewerID, memberID primitive.ObjectID) ([]domain.FitnessAssessment, error)
	// TogglePrivacy flips the member's assessment visibility and returns the
	// new setting.
	TogglePrivacy(ctx context.Context, memberID primitive.ObjectID) (bool, error)
	RequestReportUploadURL(ctx context.Context, memberID primitive.ObjectID, contentType string) (*UploadTicket, error)
	// ReportURL presigns a GET for an assessment's uploaded PDF. Assessments
	// hidden from the viewer by History are reported as not found.
	ReportURL(ctx context.Context, viewerID, assessmentID primitive.ObjectID) (string, error)
}

type assessmentService struct {
	memberRepo  repository.MemberRepository
	fileStorage storage.FileStorage
	publisher   events.Publisher
	now         func() time.Time
}

func NewAssessmentService(memberRepo repository.MemberRepository, fileStorage storage.FileStorage, publisher events.Publisher) AssessmentService {
	return &assessmentService{
		memberRepo:  memberRepo,
		fileStorage: fileStorage,
		publisher:   publisher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// scoringInput checks every user-supplied field so the scoring tables never
// see an unknown gender, variant or unit.
func scoringInput(in AssessmentInput) (scoring.Input, error) {
	if !in.Gender.Valid() {
		return scoring.Input{}, ErrInvalidGender
	}
	if !in.AerobicTest.Valid() {
		return scoring.Input{}, fmt.Errorf("%w: aerobic %q", ErrInvalidTest, in.AerobicTest)
	}
	if !in.StrengthTest.Valid() {
		return scoring.Input{}, fmt.Errorf("%w: strength %q", ErrInvalidTest, in.StrengthTest)
	}
	if !in.CoreTest.Valid() {
		return scoring.Input{}, fmt.Errorf("%w: core %q", ErrInvalidTest, in.CoreTest)
	}
	for _, v := range []float64{in.AerobicValue, in.StrengthValue, in.CoreValue} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return scoring.Input{}, ErrInvalidValue
		}
	}
	return scoring.Input{
		Gender:       in.Gender,
		AerobicTest:  in.AerobicTest,
		AerobicRaw:   scoring.Measure(in.AerobicTest.Unit(), in.AerobicValue),
		StrengthTest: in.StrengthTest,
		StrengthRaw:  scoring.Measure(in.StrengthTest.Unit(), in.StrengthValue),
		CoreTest:     in.CoreTest,
		CoreRaw:      scoring.Measure(in.CoreTest.Unit(), in.CoreValue),
	}, nil
}

func (s *assessmentService) Calculate(in AssessmentInput) (*scoring.Breakdown, error) {
	si, err := scoringInput(in)
	if err != nil {
		return nil, err
	}
	b := scoring.Evaluate(si)
	return &b, nil
}

// Record appends a scored assessment to the member's history, replaces their
// weekly PT requirement and awards any assessment achievements.
func (s *assessmentService) Record(ctx context.Context, actorID, memberID primitive.ObjectID, in AssessmentInput) (*RecordResult, error) {
	if actorID != memberID {
		actor, err := loadMember(ctx, s.memberRepo, actorID)
		if err != nil {
			return nil, err
		}
		if !domain.IsAdmin(actor.AccountType) {
			return nil, ErrPermissionDenied
		}
	}
	member, err := loadMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return nil, err
	}

	if in.Gender == "" {
		in.Gender = member.Gender
	}
	si, err := scoringInput(in)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if in.Date.IsZero() {
		in.Date = now
	}
	if in.Date.After(now.Add(maxAssessmentLeadway)) {
		return nil, ErrFutureAssessment
	}
	if in.ReportKey != "" && !storage.OwnsReport(memberID.Hex(), in.ReportKey) {
		return nil, ErrInvalidReportKey
	}

	b := scoring.Evaluate(si)

	private := false
	if latest := member.LatestAssessment(); latest != nil {
		private = latest.IsPrivate
	}

	fa := domain.FitnessAssessment{
		ID:           primitive.NewObjectID(),
		Date:         in.Date,
		Gender:       in.Gender,
		OverallScore: b.Overall,
		Status:       b.Status,
		Components: domain.AssessmentComponents{
			Aerobic:  domain.ComponentResult{Test: string(in.AerobicTest), Unit: si.AerobicRaw.Unit(), Value: in.AerobicValue, Score: b.Aerobic},
			Strength: domain.ComponentResult{Test: string(in.StrengthTest), Unit: si.StrengthRaw.Unit(), Value: in.StrengthValue, Score: b.Strength},
			Core:     domain.ComponentResult{Test: string(in.CoreTest), Unit: si.CoreRaw.Unit(), Value: in.CoreValue, Score: b.Core},
		},
		ReportKey:  in.ReportKey,
		IsPrivate:  private,
		RecordedAt: now,
	}

	before, err := s.memberRepo.AppendAssessment(ctx, memberID, fa, b.RequiredSessions)
	if err != nil {
		return nil, fmt.Errorf("append assessment: %w", err)
	}
	observability.RecordAssessment(string(b.Status), b.Overall)

	// The predecessor comes from the same write, so concurrent records each
	// compare against the assessment they actually followed.
	var previous *int
	if latest := before.LatestAssessment(); latest != nil {
		prev := latest.OverallScore
		previous = &prev
	}
	fresh := achievement.Award(before.Achievements, achievement.ForAssessment(previous, b.Overall)...)
	earned, err := grantAchievements(ctx, s.memberRepo, memberID, fresh)
	if err != nil {
		return nil, err
	}

	evts := []events.Event{events.New(events.AssessmentRecorded, memberID.Hex(), map[string]any{
		"assessmentId":     fa.ID.Hex(),
		"overallScore":     fa.OverallScore,
		"status":           fa.Status,
		"requiredSessions": b.RequiredSessions,
	})}
	evts = append(evts, achievementEvents(memberID, earned)...)
	publish(ctx, s.publisher, evts...)

	return &RecordResult{Assessment: fa, RequiredSessions: b.RequiredSessions, NewAchievements: earned}, nil
}

func (s *assessmentService) History(ctx context.Context, viewerID, memberID primitive.ObjectID) ([]domain.FitnessAssessment, error) {
	viewer, err := loadMember(ctx, s.memberRepo, viewerID)
	if err != nil {
		return nil, err
	}
	m, err := loadMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return nil, err
	}
	return visibleAssessments(viewer, m), nil
}

// TogglePrivacy sets every assessment to the opposite of the latest one's
// visibility, so a mixed history converges to a single setting.
func (s *assessmentService) TogglePrivacy(ctx context.Context, memberID primitive.ObjectID) (bool, error) {
	m, err := loadMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return false, err
	}
	latest := m.LatestAssessment()
	if latest == nil {
		return false, ErrNoAssessments
	}
	private := !latest.IsPrivate
	if err := s.memberRepo.SetAssessmentPrivacy(ctx, memberID, private); err != nil {
		return false, err
	}
	return private, nil
}

func (s *assessmentService) RequestReportUploadURL(ctx context.Context, memberID primitive.ObjectID, contentType string) (*UploadTicket, error) {
	if _, err := loadMember(ctx, s.memberRepo, memberID); err != nil {
		return nil, err
	}
	key, err := storage.ReportKey(memberID.Hex(), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &UploadTicket{UploadURL: url, ObjectKey: key, ExpiresAt: s.now().Add(storage.DefaultPresignedURLExpiry)}, nil
}

func (s *assessmentService) ReportURL(ctx context.Context, viewerID, assessmentID primitive.ObjectID) (string, error) {
	viewer, err := loadMember(ctx, s.memberRepo, viewerID)
	if err != nil {
		return "", err
	}
	owner, err := s.memberRepo.GetByAssessmentID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAssessmentNotFound
		}
		return "", err
	}
	for _, fa := range visibleAssessments(viewer, owner) {
		if fa.ID != assessmentID {
			continue
		}
		if fa.ReportKey == "" {
			return "", ErrNoReport
		}
		return s.fileStorage.GeneratePresignedDownloadURL(ctx, fa.ReportKey, storage.DefaultPresignedURLExpiry)
	}
	return "", ErrAssessmentNotFound
}

// grantAchievements persists ids and returns their catalog entries.
func grantAchievements(ctx context.Context, repo repository.MemberRepository, memberID primitive.ObjectID, ids []achievement.ID) ([]achievement.Achievement, error) {
	earned := []achievement.Achievement{}
	if len(ids) == 0 {
		return earned, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}
	if err := repo.AddAchievements(ctx, memberID, raw...); err != nil {
		return nil, fmt.Errorf("add achievements: %w", err)
	}
	for _, id := range ids {
		if a, ok := achievement.Get(id); ok {
			earned = append(earned, a)
			observability.RecordAchievement(string(id))
		}
	}
	return earned, nil
}

func achievementEvents(memberID primitive.ObjectID, earned []achievement.Achievement) []events.Event {
	out := make([]events.Event, 0, len(earned))
	for _, a := range earned {
		out = append(out, events.New(events.AchievementEarned, memberID.Hex(), map[string]any{
			"achievementId": a.ID,
			"name":          a.Name,
		}))
	}
	return out
}
