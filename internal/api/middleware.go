package api

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/service"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextMemberIDKey    = "memberID"
	ContextAccountTypeKey = "accountType"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims := &service.Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			}
			return
		}

		if !token.Valid || claims.MemberID == "" || claims.AccountType == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}

		c.Set(ContextMemberIDKey, claims.MemberID)
		c.Set(ContextAccountTypeKey, claims.AccountType)
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// AccountTypeMiddleware rejects tokens whose account type is not listed.
// Must run AFTER AuthMiddleware. Services re-check against the stored
// member, so a stale token can never widen access.
func AccountTypeMiddleware(allowed ...domain.AccountType) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountType, err := getAccountTypeFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		for _, a := range allowed {
			if accountType == a {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: account type '%s' does not have permission", accountType))
	}
}

// getMemberIDFromContext returns the authenticated member's id.
func getMemberIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	idRaw, exists := c.Get(ContextMemberIDKey)
	if !exists {
		return primitive.NilObjectID, errors.New("member ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid member ID type in context")
	}
	return primitive.ObjectIDFromHex(idStr)
}

func getAccountTypeFromContext(c *gin.Context) (domain.AccountType, error) {
	raw, exists := c.Get(ContextAccountTypeKey)
	if !exists {
		return "", errors.New("account type not found in context")
	}
	t, ok := raw.(domain.AccountType)
	if !ok {
		return "", errors.New("invalid account type in context")
	}
	return t, nil
}

// currentMember aborts with 401 when the token carries no usable member id.
func currentMember(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := getMemberIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify member from token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// memberIDParam parses :memberId, aborting with 400 on a malformed id.
func memberIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	return objectIDParam(c, "memberId", "member")
}

func objectIDParam(c *gin.Context, param, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID format.", what))
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondServiceError maps service sentinel errors onto HTTP status codes.
func respondServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidGender),
		errors.Is(err, service.ErrInvalidTest),
		errors.Is(err, service.ErrInvalidValue),
		errors.Is(err, service.ErrInvalidReportKey),
		errors.Is(err, service.ErrFutureAssessment),
		errors.Is(err, service.ErrInvalidWorkout),
		errors.Is(err, service.ErrScreenshotRequired),
		errors.Is(err, service.ErrInvalidScreenshotKey),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidTime),
		errors.Is(err, service.ErrInvalidSharedWorkout):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, service.ErrAssessmentNotFound),
		errors.Is(err, service.ErrNoReport),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrScheduledSessionNotFound),
		errors.Is(err, service.ErrSharedWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMemberAlreadyExists),
		errors.Is(err, service.ErrInvalidAccountChange),
		errors.Is(err, service.ErrNoAssessments),
		errors.Is(err, service.ErrScreenshotInUse),
		errors.Is(err, service.ErrCannotRemoveMember):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		log.Printf("ERROR: Failed to %s: %v", action, err)
		abortWithError(c, http.StatusInternalServerError, "Failed to "+action+".")
	}
}
