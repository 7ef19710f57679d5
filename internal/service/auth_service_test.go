package service

import (
	"alcyxob/flighttrack/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func registration(email string) RegisterInput {
	return RegisterInput{
		Rank:      "SSgt",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     email,
		Password:  "correct-horse",
		Flight:    domain.FlightBomber,
		Gender:    "female",
	}
}

func TestRegister(t *testing.T) {
	f := newFixture()
	svc := NewAuthService(f.members, f.settingsService(), testSecret, time.Hour)
	ctx := context.Background()

	first, err := svc.Register(ctx, registration("First@US.af.mil"))
	require.NoError(t, err)
	assert.Equal(t, domain.AccountCreator, first.AccountType, "first member bootstraps the squadron")
	assert.Equal(t, "first@us.af.mil", first.Email)
	assert.Empty(t, first.PasswordHash)
	assert.Equal(t, 3, first.RequiredPTSessionsPerWeek)
	assert.Equal(t, domain.DefaultSquadron, first.Squadron)

	in := registration("second@us.af.mil")
	in.RequestPTL = true
	second, err := svc.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStandard, second.AccountType)
	assert.True(t, second.PTLPendingApproval)

	stored := f.member(t, second.ID)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, in.Password, stored.PasswordHash)

	_, err = svc.Register(ctx, registration("SECOND@us.af.mil"))
	assert.ErrorIs(t, err, ErrMemberAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture()
	svc := NewAuthService(f.members, f.settingsService(), testSecret, time.Hour)

	cases := map[string]func(*RegisterInput){
		"short password": func(in *RegisterInput) { in.Password = "short" },
		"missing email":  func(in *RegisterInput) { in.Email = " " },
		"missing name":   func(in *RegisterInput) { in.LastName = "" },
		"unknown flight": func(in *RegisterInput) { in.Flight = "Zulu" },
		"unknown gender": func(in *RegisterInput) { in.Gender = "x" },
	}
	for name, mod := range cases {
		t.Run(name, func(t *testing.T) {
			in := registration("v@us.af.mil")
			mod(&in)
			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture()
	svc := NewAuthService(f.members, f.settingsService(), testSecret, time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registration("jane@us.af.mil"))
	require.NoError(t, err)

	token, member, err := svc.Login(ctx, "JANE@us.af.mil", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, member.ID)
	assert.Empty(t, member.PasswordHash)

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, registered.ID.Hex(), claims.MemberID)
	assert.Equal(t, domain.AccountCreator, claims.AccountType)
	assert.Equal(t, "flighttrack", claims.Issuer)

	_, _, err = svc.Login(ctx, "jane@us.af.mil", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "nobody@us.af.mil", "correct-horse")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewAuthServicePanicsWithoutSecret(t *testing.T) {
	f := newFixture()
	assert.Panics(t, func() { NewAuthService(f.members, f.settingsService(), "", time.Hour) })
}
