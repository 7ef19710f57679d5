package api

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/scoring"
	"alcyxob/flighttrack/internal/service"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Rank       string         `json:"rank"`
	FirstName  string         `json:"firstName" binding:"required"`
	LastName   string         `json:"lastName" binding:"required"`
	Email      string         `json:"email" binding:"required,email"`
	Password   string         `json:"password" binding:"required,min=8"`
	Flight     domain.Flight  `json:"flight" binding:"required"`
	Gender     scoring.Gender `json:"gender" binding:"omitempty,oneof=male female"`
	RequestPTL bool           `json:"requestPTL"`
}

// MemberResponse excludes sensitive info like the password hash.
type MemberResponse struct {
	ID                        string                     `json:"id"`
	Rank                      string                     `json:"rank"`
	FirstName                 string                     `json:"firstName"`
	LastName                  string                     `json:"lastName"`
	DisplayName               string                     `json:"displayName"`
	Email                     string                     `json:"email"`
	Flight                    domain.Flight              `json:"flight"`
	Squadron                  string                     `json:"squadron"`
	AccountType               domain.AccountType         `json:"accountType"`
	Gender                    scoring.Gender             `json:"gender,omitempty"`
	PTLPendingApproval        bool                       `json:"ptlPendingApproval"`
	ExerciseMinutes           int                        `json:"exerciseMinutes"`
	DistanceRun               float64                    `json:"distanceRun"`
	CaloriesBurned            int                        `json:"caloriesBurned"`
	FitnessAssessments        []domain.FitnessAssessment `json:"fitnessAssessments"`
	Achievements              []string                   `json:"achievements"`
	RequiredPTSessionsPerWeek int                        `json:"requiredPTSessionsPerWeek"`
	CreatedAt                 time.Time                  `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token  string         `json:"token"`
	Member MemberResponse `json:"member"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new squadron member
// @Tags Auth
// @Accept json
// @Produce json
// @Param member body RegisterRequest true "Registration details"
// @Success 201 {object} MemberResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	member, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Rank:       req.Rank,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		Flight:     req.Flight,
		Gender:     req.Gender,
		RequestPTL: req.RequestPTL,
	})
	if err != nil {
		respondServiceError(c, err, "register member")
		return
	}

	c.JSON(http.StatusCreated, MapMemberToResponse(member))
}

// Login godoc
// @Summary Log in a member
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} gin.H "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, member, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "log in")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:  token,
		Member: MapMemberToResponse(member),
	})
}

// MapMemberToResponse converts a domain Member to a MemberResponse DTO.
func MapMemberToResponse(m *domain.Member) MemberResponse {
	assessments := m.FitnessAssessments
	if assessments == nil {
		assessments = []domain.FitnessAssessment{}
	}
	achievements := m.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	return MemberResponse{
		ID:                        m.ID.Hex(),
		Rank:                      m.Rank,
		FirstName:                 m.FirstName,
		LastName:                  m.LastName,
		DisplayName:               m.DisplayName(),
		Email:                     m.Email,
		Flight:                    m.Flight,
		Squadron:                  m.Squadron,
		AccountType:               m.AccountType,
		Gender:                    m.Gender,
		PTLPendingApproval:        m.PTLPendingApproval,
		ExerciseMinutes:           m.ExerciseMinutes,
		DistanceRun:               m.DistanceRun,
		CaloriesBurned:            m.CaloriesBurned,
		FitnessAssessments:        assessments,
		Achievements:              achievements,
		RequiredPTSessionsPerWeek: m.RequiredPTSessionsPerWeek,
		CreatedAt:                 m.CreatedAt,
	}
}
