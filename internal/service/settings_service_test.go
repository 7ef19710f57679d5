package service

import (
	"alcyxob/flighttrack/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFallBackToConfiguredDefault(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, err := NewSettingsService(f.members, f.settings, 2).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.DefaultPTSessionsPerWeek)

	s, err = NewSettingsService(f.members, f.settings, 0).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.DefaultPTSessionsPerWeek, "out-of-range config falls back to 3")
}

func TestSetDefaultSessionsPerWeek(t *testing.T) {
	f := newFixture()
	svc := f.settingsService()
	ctx := context.Background()
	ufpm := f.addMember(t, "Ufpm", domain.AccountUFPM, domain.FlightDoom)
	ptl := f.addMember(t, "Leader", domain.AccountPTL, domain.FlightDoom)

	_, err := svc.SetDefaultSessionsPerWeek(ctx, ptl, 4)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	for _, bad := range []int{0, 8, -1} {
		_, err = svc.SetDefaultSessionsPerWeek(ctx, ufpm, bad)
		assert.ErrorIs(t, err, ErrInvalidInput, "%d", bad)
	}

	saved, err := svc.SetDefaultSessionsPerWeek(ctx, ufpm, 4)
	require.NoError(t, err)
	assert.Equal(t, ufpm, saved.UpdatedBy)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, got.DefaultPTSessionsPerWeek)

	// Members registered from now on start with the new requirement;
	// existing members keep theirs.
	auth := NewAuthService(f.members, svc, testSecret, time.Hour)
	m, err := auth.Register(ctx, registration("late@us.af.mil"))
	require.NoError(t, err)
	assert.Equal(t, 4, m.RequiredPTSessionsPerWeek)
	assert.Equal(t, 3, f.member(t, ptl).RequiredPTSessionsPerWeek)
}
