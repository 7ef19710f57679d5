package service

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/repository"
	"alcyxob/flighttrack/internal/scoring"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrMemberAlreadyExists  = errors.New("member with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

const minPasswordLength = 8

// RegisterInput is what a new member supplies at sign-up.
type RegisterInput struct {
	Rank       string
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Flight     domain.Flight
	Gender     scoring.Gender
	RequestPTL bool // leaves the account standard until an admin approves
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Member, error)
	Login(ctx context.Context, email, password string) (token string, member *domain.Member, err error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	memberRepo    repository.MemberRepository
	settings      SettingsService
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService. New members start
// with the squadron's current default PT requirement from settings.
func NewAuthService(memberRepo repository.MemberRepository, settings SettingsService, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		memberRepo:    memberRepo,
		settings:      settings,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register creates a standard account. The very first member becomes the
// squadron's creator account so somebody can approve PT leaders.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.Member, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, fmt.Errorf("%w: first name, last name, email and password are required", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if !in.Flight.Valid() {
		return nil, fmt.Errorf("%w: unknown flight %q", ErrInvalidInput, in.Flight)
	}
	if in.Gender != "" && !in.Gender.Valid() {
		return nil, fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, in.Gender)
	}

	_, err := s.memberRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrMemberAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	accountType := domain.AccountStandard
	existing, err := s.memberRepo.List(ctx, repository.MemberFilter{})
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		accountType = domain.AccountCreator
		log.Printf("INFO: First member %s registered as %s", email, accountType)
	}

	member := &domain.Member{
		Rank:                      strings.TrimSpace(in.Rank),
		FirstName:                 strings.TrimSpace(in.FirstName),
		LastName:                  strings.TrimSpace(in.LastName),
		Email:                     email,
		PasswordHash:              string(hashedPassword),
		Flight:                    in.Flight,
		Squadron:                  domain.DefaultSquadron,
		AccountType:               accountType,
		Gender:                    in.Gender,
		PTLPendingApproval:        in.RequestPTL && accountType == domain.AccountStandard,
		RequiredPTSessionsPerWeek: settings.DefaultPTSessionsPerWeek,
	}

	memberID, err := s.memberRepo.Create(ctx, member)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMemberAlreadyExists
		}
		return nil, err
	}
	member.ID = memberID
	member.PasswordHash = ""
	return member, nil
}

// Login handles member authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, member *domain.Member, err error) {
	if email == "" || password == "" {
		err = fmt.Errorf("%w: email and password cannot be empty", ErrInvalidInput)
		return
	}

	member, err = s.memberRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err = s.generateJWT(member)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	member.PasswordHash = ""
	return token, member, nil
}

// --- JWT Helper ---

// Claims is the JWT payload shared with the API middleware.
type Claims struct {
	MemberID    string             `json:"uid"`
	AccountType domain.AccountType `json:"accountType"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(member *domain.Member) (string, error) {
	now := time.Now()
	claims := &Claims{
		MemberID:    member.ID.Hex(),
		AccountType: member.AccountType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "flighttrack",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
