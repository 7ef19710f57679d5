package service

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidAccountChange = errors.New("account type change not allowed for this member")
	ErrCannotRemoveMember   = errors.New("this member cannot be removed")
)

type MemberService interface {
	Get(ctx context.Context, viewerID, memberID primitive.ObjectID) (*domain.Member, error)
	List(ctx context.Context, viewerID primitive.ObjectID, flight domain.Flight) ([]domain.Member, error)
	UpdateProfile(ctx context.Context, actorID, memberID primitive.ObjectID, update repository.ProfileUpdate) (*domain.Member, error)

	// PT leader management, creator and UFPM only.
	ApprovePTL(ctx context.Context, actorID, memberID primitive.ObjectID) error
	RejectPTL(ctx context.Context, actorID, memberID primitive.ObjectID) error
	RevokePTL(ctx context.Context, actorID, memberID primitive.ObjectID) error

	// SetUFPM is creator only. The previous UFPM, if any, becomes standard.
	SetUFPM(ctx context.Context, actorID, memberID primitive.ObjectID) error

	// Remove deletes a member's account. Creator and UFPM only; the creator
	// and the acting admin themself cannot be removed.
	Remove(ctx context.Context, actorID, memberID primitive.ObjectID) error
}

type memberService struct {
	memberRepo repository.MemberRepository
}

func NewMemberService(memberRepo repository.MemberRepository) MemberService {
	return &memberService{memberRepo: memberRepo}
}

// Get returns a member with private assessments hidden from other viewers.
func (s *memberService) Get(ctx context.Context, viewerID, memberID primitive.ObjectID) (*domain.Member, error) {
	viewer, err := loadMember(ctx, s.memberRepo, viewerID)
	if err != nil {
		return nil, err
	}
	m, err := loadMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return nil, err
	}
	m.FitnessAssessments = visibleAssessments(viewer, m)
	return m, nil
}

// List returns the roster, optionally narrowed to one flight.
func (s *memberService) List(ctx context.Context, viewerID primitive.ObjectID, flight domain.Flight) ([]domain.Member, error) {
	if flight != "" && !flight.Valid() {
		return nil, fmt.Errorf("%w: unknown flight %q", ErrInvalidInput, flight)
	}
	viewer, err := loadMember(ctx, s.memberRepo, viewerID)
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.List(ctx, repository.MemberFilter{Flight: flight})
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].FitnessAssessments = visibleAssessments(viewer, &members[i])
	}
	return members, nil
}

// UpdateProfile lets members edit themselves and admins edit anyone.
func (s *memberService) UpdateProfile(ctx context.Context, actorID, memberID primitive.ObjectID, update repository.ProfileUpdate) (*domain.Member, error) {
	actor, err := loadMember(ctx, s.memberRepo, actorID)
	if err != nil {
		return nil, err
	}
	if actorID != memberID && !domain.IsAdmin(actor.AccountType) {
		return nil, ErrPermissionDenied
	}
	if update.Flight != "" && !update.Flight.Valid() {
		return nil, fmt.Errorf("%w: unknown flight %q", ErrInvalidInput, update.Flight)
	}
	if update.Gender != "" && !update.Gender.Valid() {
		return nil, fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, update.Gender)
	}

	if err := s.memberRepo.UpdateProfile(ctx, memberID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return loadMember(ctx, s.memberRepo, memberID)
}

func (s *memberService) ApprovePTL(ctx context.Context, actorID, memberID primitive.ObjectID) error {
	return s.changePTL(ctx, actorID, memberID, domain.AccountStandard, domain.AccountPTL)
}

func (s *memberService) RejectPTL(ctx context.Context, actorID, memberID primitive.ObjectID) error {
	return s.changePTL(ctx, actorID, memberID, domain.AccountStandard, domain.AccountStandard)
}

func (s *memberService) RevokePTL(ctx context.Context, actorID, memberID primitive.ObjectID) error {
	return s.changePTL(ctx, actorID, memberID, domain.AccountPTL, domain.AccountStandard)
}

// changePTL moves a member holding `from` to `to` and clears any pending
// PTL request.
func (s *memberService) changePTL(ctx context.Context, actorID, memberID primitive.ObjectID, from, to domain.AccountType) error {
	actor, err := loadMember(ctx, s.memberRepo, actorID)
	if err != nil {
		return err
	}
	if !domain.CanManagePTL(actor.AccountType) {
		return ErrPermissionDenied
	}
	target, err := loadMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return err
	}
	if target.AccountType != from {
		return ErrInvalidAccountChange
	}

	if err := s.memberRepo.SetAccountType(ctx, memberID, to, false); err != nil {
		return err
	}
	log.Printf("INFO: %s changed %s from %s to %s", actor.Email, target.Email, from, to)
	return nil
}

func (s *memberService) SetUFPM(ctx context.Context, actorID, memberID primitive.ObjectID) error {
	actor, err := loadMember(ctx, s.memberRepo, actorID)
	if err != nil {
		return err
	}
	if actor.AccountType != domain.AccountCreator {
		return ErrPermissionDenied
	}
	target, err := loadMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return err
	}
	if target.AccountType == domain.AccountCreator {
		return ErrInvalidAccountChange
	}

	if err := s.memberRepo.ReplaceAccountType(ctx, domain.AccountUFPM, domain.AccountStandard); err != nil {
		return err
	}
	if err := s.memberRepo.SetAccountType(ctx, memberID, domain.AccountUFPM, false); err != nil {
		return err
	}
	log.Printf("INFO: %s is now the UFPM", target.Email)
	return nil
}

func (s *memberService) Remove(ctx context.Context, actorID, memberID primitive.ObjectID) error {
	actor, err := loadMember(ctx, s.memberRepo, actorID)
	if err != nil {
		return err
	}
	if !domain.IsAdmin(actor.AccountType) {
		return ErrPermissionDenied
	}
	target, err := loadMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return err
	}
	if target.AccountType == domain.AccountCreator || actorID == memberID {
		return ErrCannotRemoveMember
	}

	if err := s.memberRepo.Delete(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	log.Printf("INFO: %s removed %s", actor.Email, target.Email)
	return nil
}
