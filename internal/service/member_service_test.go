package service

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPTLLifecycle(t *testing.T) {
	f := newFixture()
	svc := NewMemberService(f.members)
	ctx := context.Background()
	creator := f.addMember(t, "Creator", domain.AccountCreator, domain.FlightAvatar)
	ufpm := f.addMember(t, "Ufpm", domain.AccountUFPM, domain.FlightAvatar)
	candidate := f.addMember(t, "Candidate", domain.AccountStandard, domain.FlightAvatar)
	require.NoError(t, f.members.SetAccountType(ctx, candidate, domain.AccountStandard, true))

	assert.ErrorIs(t, svc.ApprovePTL(ctx, candidate, candidate), ErrPermissionDenied)

	require.NoError(t, svc.ApprovePTL(ctx, ufpm, candidate))
	m := f.member(t, candidate)
	assert.Equal(t, domain.AccountPTL, m.AccountType)
	assert.False(t, m.PTLPendingApproval)

	assert.ErrorIs(t, svc.ApprovePTL(ctx, creator, candidate), ErrInvalidAccountChange)

	require.NoError(t, svc.RevokePTL(ctx, creator, candidate))
	assert.Equal(t, domain.AccountStandard, f.member(t, candidate).AccountType)
	assert.ErrorIs(t, svc.RevokePTL(ctx, creator, candidate), ErrInvalidAccountChange)

	assert.ErrorIs(t, svc.ApprovePTL(ctx, creator, primitive.NewObjectID()), ErrMemberNotFound)
}

func TestRejectPTLClearsPendingFlag(t *testing.T) {
	f := newFixture()
	svc := NewMemberService(f.members)
	ctx := context.Background()
	creator := f.addMember(t, "Creator", domain.AccountCreator, domain.FlightAvatar)
	candidate := f.addMember(t, "Candidate", domain.AccountStandard, domain.FlightAvatar)
	require.NoError(t, f.members.SetAccountType(ctx, candidate, domain.AccountStandard, true))

	require.NoError(t, svc.RejectPTL(ctx, creator, candidate))
	m := f.member(t, candidate)
	assert.Equal(t, domain.AccountStandard, m.AccountType)
	assert.False(t, m.PTLPendingApproval)
}

func TestSetUFPMDemotesPrevious(t *testing.T) {
	f := newFixture()
	svc := NewMemberService(f.members)
	ctx := context.Background()
	creator := f.addMember(t, "Creator", domain.AccountCreator, domain.FlightAvatar)
	oldUFPM := f.addMember(t, "Old", domain.AccountUFPM, domain.FlightAvatar)
	next := f.addMember(t, "Next", domain.AccountPTL, domain.FlightBomber)

	assert.ErrorIs(t, svc.SetUFPM(ctx, oldUFPM, next), ErrPermissionDenied)
	assert.ErrorIs(t, svc.SetUFPM(ctx, creator, creator), ErrInvalidAccountChange)

	require.NoError(t, svc.SetUFPM(ctx, creator, next))
	assert.Equal(t, domain.AccountUFPM, f.member(t, next).AccountType)
	assert.Equal(t, domain.AccountStandard, f.member(t, oldUFPM).AccountType)
	assert.Equal(t, domain.AccountCreator, f.member(t, creator).AccountType)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	svc := NewMemberService(f.members)
	ctx := context.Background()
	self := f.addMember(t, "Self", domain.AccountStandard, domain.FlightAvatar)
	other := f.addMember(t, "Other", domain.AccountStandard, domain.FlightAvatar)
	admin := f.addMember(t, "Admin", domain.AccountUFPM, domain.FlightAvatar)

	m, err := svc.UpdateProfile(ctx, self, self, repository.ProfileUpdate{Rank: "TSgt", Flight: domain.FlightDET})
	require.NoError(t, err)
	assert.Equal(t, "TSgt", m.Rank)
	assert.Equal(t, domain.FlightDET, m.Flight)
	assert.Equal(t, "Self", m.LastName, "empty fields are left alone")

	_, err = svc.UpdateProfile(ctx, other, self, repository.ProfileUpdate{Rank: "Gen"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.UpdateProfile(ctx, admin, self, repository.ProfileUpdate{Flight: "Nowhere"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	m, err = svc.UpdateProfile(ctx, admin, self, repository.ProfileUpdate{FirstName: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", m.FirstName)
}

func TestListFiltersFlightAndPrivateAssessments(t *testing.T) {
	f := newFixture()
	svc := NewMemberService(f.members)
	assessments := NewAssessmentService(f.members, f.storage, f.events)
	ctx := context.Background()
	viewer := f.addMember(t, "Viewer", domain.AccountStandard, domain.FlightCryptid)
	owner := f.addMember(t, "Owner", domain.AccountStandard, domain.FlightCryptid)
	f.addMember(t, "Elsewhere", domain.AccountStandard, domain.FlightDoom)

	_, err := assessments.Record(ctx, owner, owner, input(10, 50, 50))
	require.NoError(t, err)
	_, err = assessments.TogglePrivacy(ctx, owner)
	require.NoError(t, err)

	members, err := svc.List(ctx, viewer, domain.FlightCryptid)
	require.NoError(t, err)
	require.Len(t, members, 2)
	for _, m := range members {
		assert.Equal(t, domain.FlightCryptid, m.Flight)
		assert.Empty(t, m.FitnessAssessments)
	}

	got, err := svc.Get(ctx, owner, owner)
	require.NoError(t, err)
	assert.Len(t, got.FitnessAssessments, 1)

	_, err = svc.List(ctx, viewer, "Nowhere")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRemoveMember(t *testing.T) {
	f := newFixture()
	svc := NewMemberService(f.members)
	ctx := context.Background()
	creator := f.addMember(t, "Creator", domain.AccountCreator, domain.FlightAvatar)
	ufpm := f.addMember(t, "Ufpm", domain.AccountUFPM, domain.FlightAvatar)
	ptl := f.addMember(t, "Leader", domain.AccountPTL, domain.FlightAvatar)
	leaving := f.addMember(t, "Leaving", domain.AccountStandard, domain.FlightAvatar)

	assert.ErrorIs(t, svc.Remove(ctx, ptl, leaving), ErrPermissionDenied)
	assert.ErrorIs(t, svc.Remove(ctx, ufpm, creator), ErrCannotRemoveMember)
	assert.ErrorIs(t, svc.Remove(ctx, ufpm, ufpm), ErrCannotRemoveMember)

	require.NoError(t, svc.Remove(ctx, ufpm, leaving))
	_, err := f.members.GetByID(ctx, leaving)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, svc.Remove(ctx, creator, leaving), ErrMemberNotFound)

	require.NoError(t, svc.Remove(ctx, creator, ufpm))
	members, err := svc.List(ctx, creator, "")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}
